package mapper

import (
	"encoding/json"

	"shate-rag-be/internal/entity"
	"shate-rag-be/internal/model"

	"gorm.io/datatypes"
)

type ChatLogMapper struct{}

func NewChatLogMapper() *ChatLogMapper {
	return &ChatLogMapper{}
}

func (m *ChatLogMapper) ToModel(e *entity.ChatLog) *model.ChatLog {
	if e == nil {
		return nil
	}
	return &model.ChatLog{
		Id:         e.Id,
		Question:   e.Question,
		SubQueries: toJSON(e.SubQueries),
		Decisions:  toJSON(e.Decisions),
		Documents:  toJSON(e.Documents),
		Generation: e.Generation,
		Status:     e.Status,
		Error:      e.Error,
		LatencyMs:  e.LatencyMs,
		CreatedAt:  e.CreatedAt,
	}
}

func (m *ChatLogMapper) ToEntity(c *model.ChatLog) *entity.ChatLog {
	if c == nil {
		return nil
	}
	e := &entity.ChatLog{
		Id:         c.Id,
		Question:   c.Question,
		Generation: c.Generation,
		Status:     c.Status,
		Error:      c.Error,
		LatencyMs:  c.LatencyMs,
		CreatedAt:  c.CreatedAt,
	}
	fromJSON(c.SubQueries, &e.SubQueries)
	fromJSON(c.Decisions, &e.Decisions)
	fromJSON(c.Documents, &e.Documents)
	return e
}

func (m *ChatLogMapper) ToEntities(models []*model.ChatLog) []*entity.ChatLog {
	entities := make([]*entity.ChatLog, len(models))
	for i, c := range models {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func toJSON(v interface{}) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(raw)
}

func fromJSON(raw datatypes.JSON, dst interface{}) {
	if len(raw) == 0 {
		return
	}
	_ = json.Unmarshal(raw, dst)
}
