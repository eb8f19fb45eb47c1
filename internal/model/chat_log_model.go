package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChatLog struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Question   string         `gorm:"type:text;not null"`
	SubQueries datatypes.JSON `gorm:"type:jsonb"`
	Decisions  datatypes.JSON `gorm:"type:jsonb"`
	Documents  datatypes.JSON `gorm:"type:jsonb"`
	Generation string         `gorm:"type:text"`
	Status     string         `gorm:"type:varchar(20);not null;index"`
	Error      string         `gorm:"type:text"`
	LatencyMs  int64          `gorm:"default:0"`
	CreatedAt  time.Time      `gorm:"autoCreateTime;index"`
}

func (ChatLog) TableName() string {
	return "chat_logs"
}
