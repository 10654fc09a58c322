package model

import "time"

type Direction string

const (
	Outgoing Direction = "OUTGOING"
	Incoming Direction = "INCOMING"
)

// Relation type tags used by the organisational graph.
const (
	AsMinister      = "AS_MINISTER"
	AsDepartment    = "AS_DEPARTMENT"
	AsAppointed     = "AS_APPOINTED"
	RenamedTo       = "RENAMED_TO"
	AsPresident     = "AS_PRESIDENT"
	AsPrimeMinister = "AS_PRIME_MINISTER"
	AsCategory      = "AS_CATEGORY"
)

type Relation struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	RelatedEntityID string     `json:"relatedEntityId"`
	StartTime       time.Time  `json:"startTime"`
	EndTime         *time.Time `json:"endTime,omitempty"` // nil while the relation is still active
	Direction       Direction  `json:"direction"`
}

// Open reports whether the relation has no end time.
func (r Relation) Open() bool {
	return r.EndTime == nil
}

// ZeroLength reports whether the relation starts and ends at the same instant.
func (r Relation) ZeroLength() bool {
	return r.EndTime != nil && r.StartTime.Equal(*r.EndTime)
}

// StartsAt reports whether the relation started exactly at t.
func (r Relation) StartsAt(t time.Time) bool {
	return r.StartTime.Equal(t)
}

// ActiveAt reports whether t falls inside [StartTime, EndTime).
func (r Relation) ActiveAt(t time.Time) bool {
	if t.Before(r.StartTime) {
		return false
	}
	return r.EndTime == nil || t.Before(*r.EndTime)
}

// RelationFilter selects relations of one entity. ActiveAt is a point-in-time filter
// applied by the backend.
type RelationFilter struct {
	Name      string     `json:"name"`
	Direction Direction  `json:"direction,omitempty"`
	ActiveAt  *time.Time `json:"activeAt,omitempty"`
}

// EffectiveDirection defaults an unset direction to Outgoing.
func (f RelationFilter) EffectiveDirection() Direction {
	if f.Direction == "" {
		return Outgoing
	}
	return f.Direction
}
