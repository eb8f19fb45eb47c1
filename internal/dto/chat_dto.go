package dto

import (
	"time"

	"github.com/google/uuid"
)

type ChatRequest struct {
	Question string `json:"question" validate:"required,max=2000"`
}

type DecisionDTO struct {
	Source string `json:"source"`
	Query  string `json:"query"`
}

type ChatResponse struct {
	Id         uuid.UUID     `json:"id"`
	Generation string        `json:"generation"`
	Documents  []string      `json:"documents"`
	Decisions  []DecisionDTO `json:"decisions,omitempty"`
	LatencyMs  int64         `json:"latency_ms"`
}

// ChatAnsweredMessage is the payload published on the in-process bus after every question.
type ChatAnsweredMessage struct {
	Id         uuid.UUID     `json:"id"`
	Question   string        `json:"question"`
	SubQueries []string      `json:"sub_queries,omitempty"`
	Decisions  []DecisionDTO `json:"decisions"`
	Documents  []string      `json:"documents"`
	Generation string        `json:"generation"`
	Status     string        `json:"status"`
	Error      string        `json:"error,omitempty"`
	LatencyMs  int64         `json:"latency_ms"`
	CreatedAt  time.Time     `json:"created_at"`
}

type ChatLogResponse struct {
	Id         uuid.UUID     `json:"id"`
	Question   string        `json:"question"`
	Decisions  []DecisionDTO `json:"decisions"`
	Generation string        `json:"generation"`
	Status     string        `json:"status"`
	Error      string        `json:"error,omitempty"`
	LatencyMs  int64         `json:"latency_ms"`
	CreatedAt  time.Time     `json:"created_at"`
}

type GetChatLogsRequest struct {
	Status string `query:"status" validate:"omitempty,oneof=answered failed"`
	Query  string `query:"q" validate:"omitempty,max=200"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=200"`
	Offset int    `query:"offset" validate:"omitempty,min=0"`
}

type GetChatLogsResponse struct {
	Total int64              `json:"total"`
	Items []*ChatLogResponse `json:"items"`
}
