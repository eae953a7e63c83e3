package models

type Department struct {
	BaseModel
	Name string `gorm:"type:varchar(150);uniqueIndex;not null" json:"name"`
}

// Position is an open role; it supplies the default job title and department
// of candidates hired into it.
type Position struct {
	BaseModel
	Title        string      `gorm:"type:varchar(150);not null" json:"title"`
	DepartmentID *string     `gorm:"type:varchar(36)" json:"department_id,omitempty"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}
