package models

// Checklist is a reusable template of onboarding or offboarding steps.
type Checklist struct {
	BaseModel
	Name  string          `gorm:"type:varchar(150);not null" json:"name"`
	Type  ChecklistType   `gorm:"type:varchar(20);not null;index" json:"type"`
	Items []ChecklistItem `gorm:"foreignKey:ChecklistID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

type ChecklistItem struct {
	BaseModel
	ChecklistID string `gorm:"type:varchar(36);not null;index" json:"checklist_id"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	SortOrder   int    `gorm:"not null;default:0" json:"sort_order"`
}
