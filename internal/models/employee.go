package models

import "time"

// Employee is created from a hired candidate. CandidateID is unique so a
// candidate can produce at most one employee.
type Employee struct {
	BaseModel
	CandidateID     *string        `gorm:"type:varchar(36);uniqueIndex" json:"candidate_id,omitempty"`
	FirstName       string         `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName        string         `gorm:"type:varchar(100)" json:"last_name"`
	Email           string         `gorm:"type:varchar(255);not null" json:"email"`
	Phone           *string        `gorm:"type:varchar(50)" json:"phone,omitempty"`
	JobTitle        string         `gorm:"type:varchar(150)" json:"job_title"`
	DepartmentID    *string        `gorm:"type:varchar(36)" json:"department_id,omitempty"`
	Bio             string         `gorm:"type:text" json:"bio"`
	Status          EmployeeStatus `gorm:"type:varchar(20);not null" json:"status"`
	StartDate       time.Time      `json:"start_date"`
	AnniversaryDate time.Time      `json:"anniversary_date"`

	Tasks []EmployeeTask `gorm:"foreignKey:EmployeeID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
}

// EmployeeTask is a per-employee copy of a checklist item taken at hire time.
type EmployeeTask struct {
	BaseModel
	EmployeeID      string     `gorm:"type:varchar(36);not null;index" json:"employee_id"`
	ChecklistItemID *string    `gorm:"type:varchar(36)" json:"checklist_item_id,omitempty"`
	Title           string     `gorm:"type:varchar(255);not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	SortOrder       int        `json:"sort_order"`
	Status          TaskStatus `gorm:"type:varchar(20);not null" json:"status"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}
