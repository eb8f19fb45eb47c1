package specification

import (
	"strings"

	"gorm.io/gorm"
)

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// QuestionContains matches a case-insensitive fragment of the asked question.
type QuestionContains struct {
	Text string
}

func (s QuestionContains) Apply(db *gorm.DB) *gorm.DB {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s.Text)
	return db.Where("question ILIKE ?", "%"+escaped+"%")
}
