package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	ChatLogStatusAnswered = "answered"
	ChatLogStatusFailed   = "failed"
)

type ChatLogDecision struct {
	Source string `json:"source"`
	Query  string `json:"query"`
}

// ChatLog is the audit record of one answered (or failed) question.
type ChatLog struct {
	Id         uuid.UUID
	Question   string
	SubQueries []string
	Decisions  []ChatLogDecision
	Documents  []string
	Generation string
	Status     string
	Error      string
	LatencyMs  int64
	CreatedAt  time.Time
}
