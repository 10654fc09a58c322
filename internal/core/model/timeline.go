package model

import "time"

// TimelineEntry is one "who held what, when" interval. A nil MinisterID marks a gap no
// appointment or presidency covered.
type TimelineEntry struct {
	MinistryID   string
	MinistryName string
	MinisterID   *string
	MinisterName string
	Start        time.Time
	End          time.Time // far-future sentinel while open
}

func (e TimelineEntry) Filled() bool {
	return e.MinisterID != nil
}

// TimelineView is the rendered form of a TimelineEntry.
type TimelineView struct {
	MinistryID   string  `json:"ministryId"`
	MinistryName string  `json:"ministryName"`
	MinisterID   *string `json:"ministerId"`
	MinisterName string  `json:"ministerName,omitempty"`
	Period       string  `json:"period"`
	Unfilled     bool    `json:"unfilled,omitempty"`
}
