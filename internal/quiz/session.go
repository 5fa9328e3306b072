package quiz

import "fmt"

// Session tracks navigation and recorded answers over a catalog.
// Invalid transitions are rejected by returning false and leave the session
// untouched. A Session is not safe for concurrent use.
type Session struct {
	catalog Catalog
	current int
	answers map[int]int
}

// NewSession starts a session at the first question with no answers.
func NewSession(catalog Catalog) (*Session, error) {
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &Session{
		catalog: catalog,
		answers: make(map[int]int),
	}, nil
}

// Catalog returns the catalog the session was built from.
func (s *Session) Catalog() Catalog {
	return s.catalog
}

// CurrentIndex returns the active question index, or the question count once
// complete.
func (s *Session) CurrentIndex() int {
	return s.current
}

// Complete reports whether navigation moved past the last question.
func (s *Session) Complete() bool {
	return s.current == s.catalog.Len()
}

// Current returns the active question. ok is false once complete.
func (s *Session) Current() (Question, bool) {
	if s.Complete() {
		return Question{}, false
	}
	return s.catalog.Questions[s.current], true
}

// AnswerFor returns the choice recorded for index, if any.
func (s *Session) AnswerFor(index int) (int, bool) {
	choice, ok := s.answers[index]
	return choice, ok
}

// Answer records choice for the question at index. Answering the active
// question moves to the next one, except on the last question, which stays
// put so the answer can be reviewed before finishing.
func (s *Session) Answer(index, choice int) bool {
	if s.Complete() {
		return false
	}
	if index < 0 || index >= s.catalog.Len() {
		return false
	}
	if choice < 0 || choice >= len(s.catalog.Questions[index].Options) {
		return false
	}

	_, answered := s.answers[index]
	s.answers[index] = choice

	if !answered && index == s.current && s.current < s.catalog.Len()-1 {
		s.current++
	}
	return true
}

// Previous steps back one question.
func (s *Session) Previous() bool {
	if s.current == 0 || s.Complete() {
		return false
	}
	s.current--
	return true
}

// Next steps forward one question; stepping past the last completes the
// session.
func (s *Session) Next() bool {
	if s.Complete() {
		return false
	}
	s.current++
	return true
}

// Score counts recorded answers matching their question's correct index.
func (s *Session) Score() int {
	score := 0
	for index, choice := range s.answers {
		if s.catalog.Questions[index].CorrectIndex == choice {
			score++
		}
	}
	return score
}

// Reset restarts a completed session.
func (s *Session) Reset() bool {
	if !s.Complete() {
		return false
	}
	s.current = 0
	s.answers = make(map[int]int)
	return true
}

// Snapshot copies the session state.
func (s *Session) Snapshot() Snapshot {
	answers := make(map[int]int, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	return Snapshot{
		CurrentIndex:  s.current,
		QuestionCount: s.catalog.Len(),
		Answers:       answers,
		Complete:      s.Complete(),
		Score:         s.Score(),
	}
}
