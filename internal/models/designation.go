package models

import "time"

type Designation struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Level     string    `gorm:"type:varchar(50);not null;default:''" json:"level"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	Active    bool      `gorm:"column:is_active;not null" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
