package model

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	Id                    string                      `gorm:"type:varchar(64);primaryKey"`
	Name                  string                      `gorm:"type:varchar(255);not null"`
	InvestigationIds      datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	ActiveInvestigationId *string                     `gorm:"type:varchar(64)"`
	CreatedAt             time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt             time.Time                   `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "graph_users"
}
