package session

import (
	"time"

	"github.com/newthinker/scribe/internal/core"
)

// Status represents the session lifecycle state. Transitions are
// strictly forward; only the explicit abandon path leaves the main line.
type Status string

const (
	StatusDraft           Status = "draft"
	StatusAwaitingAnswers Status = "awaiting_answers"
	StatusReadyToGenerate Status = "ready_to_generate"
	StatusFinalized       Status = "finalized"
	StatusAbandoned       Status = "abandoned"
)

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusFinalized || s == StatusAbandoned
}

// Question is one issued clarifying question.
type Question struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// UserAnswer is one collected answer. Insertion order is the round order.
type UserAnswer struct {
	QuestionID string    `json:"question_id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	AnsweredAt time.Time `json:"answered_at"`
}

// Session tracks one document-generation conversation from initial
// request to finalized document.
type Session struct {
	ID             string         `json:"id"`
	TaskType       core.TaskType  `json:"task_type"`
	InitialRequest string         `json:"initial_request"`
	Status         Status         `json:"status"`
	Questions      []Question     `json:"questions"`
	Answers        []UserAnswer   `json:"answers"`
	Context        map[string]any `json:"context,omitempty"`
	Document       *core.Document `json:"document,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Ready reports whether every issued question has a corresponding answer.
func (s *Session) Ready() bool {
	if len(s.Questions) == 0 {
		return false
	}
	answered := make(map[string]bool, len(s.Answers))
	for _, a := range s.Answers {
		answered[a.QuestionID] = true
	}
	for _, q := range s.Questions {
		if !answered[q.ID] {
			return false
		}
	}
	return true
}

// Answered reports whether the given question id already has an answer.
func (s *Session) Answered(questionID string) bool {
	for _, a := range s.Answers {
		if a.QuestionID == questionID {
			return true
		}
	}
	return false
}

// QuestionByID returns the issued question with the given id.
func (s *Session) QuestionByID(id string) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Clone returns a deep copy so store callers never share mutable state.
func (s *Session) Clone() *Session {
	clone := *s
	clone.Questions = append([]Question(nil), s.Questions...)
	clone.Answers = append([]UserAnswer(nil), s.Answers...)
	if s.Context != nil {
		clone.Context = make(map[string]any, len(s.Context))
		for k, v := range s.Context {
			clone.Context[k] = v
		}
	}
	if s.Document != nil {
		doc := *s.Document
		doc.Sections = append([]core.DocumentSection(nil), s.Document.Sections...)
		doc.Warnings = append([]string(nil), s.Document.Warnings...)
		doc.Sources = append([]string(nil), s.Document.Sources...)
		clone.Document = &doc
	}
	return &clone
}
