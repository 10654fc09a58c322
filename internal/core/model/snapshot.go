package model

type Person struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsNew       bool   `json:"isNew"`
	IsPresident bool   `json:"isPresident"`
}

type Portfolio struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	IsNew     bool     `json:"isNew"`
	Ministers []Person `json:"ministers"`
}

type PortfolioSnapshot struct {
	CabinetMinistries        int         `json:"NoOfCabinetMinistries"`
	StateMinistries          int         `json:"NoOfStateMinistries"`
	NewMinistries            int         `json:"newMinistries"`
	NewMinisters             int         `json:"newMinisters"`
	MinistriesUnderPresident int         `json:"ministriesUnderPresident"`
	Portfolios               []Portfolio `json:"portfolioList"`
}

type Department struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsNew   bool   `json:"isNew"`
	HasData bool   `json:"hasData"`
}

type DepartmentSnapshot struct {
	TotalDepartments int          `json:"totalDepartments"`
	NewDepartments   int          `json:"newDepartments"`
	Departments      []Department `json:"departmentList"`
}

type PrimeMinister struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	IsNew bool   `json:"isNew"`
	Term  string `json:"term"`
}
