package quiz

import (
	"errors"
	"fmt"
)

// Question is a single multiple-choice entry of a catalog.
type Question struct {
	Order        int      `json:"order"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct"`
}

// Catalog is the fixed, ordered question list a session walks through.
type Catalog struct {
	Title     string
	Questions []Question
}

var ErrEmptyCatalog = errors.New("catalog has no questions")

// Validate checks every question has at least two options and an in-range
// correct index.
func (c Catalog) Validate() error {
	if len(c.Questions) == 0 {
		return ErrEmptyCatalog
	}
	for i, q := range c.Questions {
		if len(q.Options) < 2 {
			return fmt.Errorf("question %d: need at least 2 options, got %d", i, len(q.Options))
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return fmt.Errorf("question %d: correct index %d out of range", i, q.CorrectIndex)
		}
	}
	return nil
}

// Len returns the number of questions.
func (c Catalog) Len() int {
	return len(c.Questions)
}

// Snapshot is a read-only copy of a session's progress.
type Snapshot struct {
	CurrentIndex  int         `json:"current_index"`
	QuestionCount int         `json:"question_count"`
	Answers       map[int]int `json:"answers"`
	Complete      bool        `json:"complete"`
	Score         int         `json:"score"`
}
