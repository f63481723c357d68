package model

import (
	"time"

	"gorm.io/datatypes"
)

type Investigation struct {
	Id             string                      `gorm:"type:varchar(64);primaryKey"`
	Name           string                      `gorm:"type:varchar(255);not null"`
	PivotIds       datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	DetachedPivots datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	ModifiedOn     *time.Time
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (Investigation) TableName() string {
	return "investigations"
}
