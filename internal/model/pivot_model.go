package model

import (
	"time"

	"gorm.io/datatypes"
)

type Pivot struct {
	Id            string         `gorm:"type:varchar(64);primaryKey"`
	Fields        datatypes.JSON `gorm:"type:jsonb"`
	Enabled       bool           `gorm:"default:false"`
	ResultCount   int            `gorm:"default:0"`
	Results       datatypes.JSON `gorm:"type:jsonb"`
	ResultSummary datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
}

func (Pivot) TableName() string {
	return "pivots"
}
