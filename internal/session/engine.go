// internal/session/engine.go
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/newthinker/scribe/internal/assembler"
	"github.com/newthinker/scribe/internal/core"
	"github.com/newthinker/scribe/internal/metrics"
	"github.com/newthinker/scribe/internal/storage/archive"
	"go.uber.org/zap"
)

// Generator is the slice of the routed client the engine needs.
type Generator interface {
	Generate(ctx context.Context, req core.GenerationRequest, strategy core.Strategy) (*core.GenerationResult, error)
}

// DocAssembler produces the final document for a finalize-bound session.
type DocAssembler interface {
	Assemble(ctx context.Context, req assembler.Request) *core.Document
}

// AnswerInput is one submitted answer.
type AnswerInput struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

// Config holds engine settings.
type Config struct {
	MaxQuestions int
	Strategy     core.Strategy
}

// Engine drives the question, answer, finalize protocol. Mutating
// operations on the same session are serialized through a per-session
// lock; unrelated sessions proceed in parallel.
type Engine struct {
	generator Generator
	store     Store
	assembler DocAssembler
	archive   archive.Storage // optional cold storage for finalized documents
	metrics   *metrics.Registry
	logger    *zap.Logger
	cfg       Config

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	now   func() time.Time
}

// NewEngine creates a session engine.
func NewEngine(generator Generator, store Store, docs DocAssembler, cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxQuestions <= 0 {
		cfg.MaxQuestions = 5
	}
	if cfg.Strategy == "" {
		cfg.Strategy = core.StrategyBalanced
	}
	return &Engine{
		generator: generator,
		store:     store,
		assembler: docs,
		logger:    logger,
		cfg:       cfg,
		locks:     make(map[string]*sync.Mutex),
		now:       time.Now,
	}
}

// WithArchive attaches cold storage for finalized documents.
func (e *Engine) WithArchive(storage archive.Storage) *Engine {
	e.archive = storage
	return e
}

// WithMetrics attaches a metrics registry.
func (e *Engine) WithMetrics(reg *metrics.Registry) *Engine {
	e.metrics = reg
	return e
}

// lockSession acquires the per-session lock and returns its release.
func (e *Engine) lockSession(id string) func() {
	e.mu.Lock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// forgetLock drops a session's lock entry once it is terminal, so the
// map does not grow with every session ever started. Terminal sessions
// only see reads, which the store guards itself.
func (e *Engine) forgetLock(id string) {
	e.mu.Lock()
	delete(e.locks, id)
	e.mu.Unlock()
}

// Start allocates a new session, generates its clarifying questions, and
// transitions it to awaiting answers. It fails with the routed client's
// aggregate error when every provider is exhausted.
func (e *Engine) Start(ctx context.Context, taskType core.TaskType, initialRequest string, sessionContext map[string]any) (*Session, error) {
	if !taskType.IsValid() {
		return nil, core.WrapError(core.ErrInvalidTaskType, fmt.Errorf("%q", taskType))
	}
	if initialRequest == "" {
		return nil, core.WrapError(core.ErrInvalidAnswer, fmt.Errorf("initial request must not be empty"))
	}

	now := e.now().UTC()
	s := &Session{
		ID:             uuid.NewString(),
		TaskType:       taskType,
		InitialRequest: initialRequest,
		Status:         StatusDraft,
		Context:        sessionContext,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := e.store.Save(ctx, s); err != nil {
		return nil, err
	}

	result, err := e.generator.Generate(ctx, core.GenerationRequest{
		SystemPrompt: questionSystemPrompt,
		Prompt:       questionPrompt(taskType, initialRequest, sessionContext, e.cfg.MaxQuestions),
		Temperature:  0.3,
		MaxTokens:    1024,
		JSONMode:     true,
	}, e.cfg.Strategy)
	if err != nil {
		// The session stays in draft; an external policy may abandon it.
		return nil, err
	}

	questions := parseQuestions(result.Content, e.cfg.MaxQuestions)
	if len(questions) == 0 {
		// The model answered in unusable prose; issue a generic question
		// rather than failing the whole start.
		questions = []Question{{ID: "q1", Text: "What are the key requirements and constraints for this work?"}}
	}

	s.Questions = questions
	s.Status = StatusAwaitingAnswers
	s.UpdatedAt = e.now().UTC()
	if err := e.store.Save(ctx, s); err != nil {
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.SessionStarted()
		e.metrics.RecordSession(string(taskType), string(StatusAwaitingAnswers))
	}
	e.logger.Info("session started",
		zap.String("session", s.ID),
		zap.String("task_type", string(taskType)),
		zap.Int("questions", len(questions)))

	return s.Clone(), nil
}

// Answer appends answers to a session and recomputes readiness. Partial
// submission across multiple calls is supported; the session transitions
// to ready once every issued question is answered.
func (e *Engine) Answer(ctx context.Context, sessionID string, answers []AnswerInput) (*Session, error) {
	unlock := e.lockSession(sessionID)
	defer unlock()

	s, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.Status != StatusAwaitingAnswers {
		return nil, core.WrapError(core.ErrInvalidState,
			fmt.Errorf("session %s is %s, expected %s", sessionID, s.Status, StatusAwaitingAnswers))
	}
	if len(answers) == 0 {
		return nil, core.WrapError(core.ErrInvalidAnswer, fmt.Errorf("no answers supplied"))
	}

	// Validate the whole batch before mutating anything.
	inCall := make(map[string]bool, len(answers))
	for _, a := range answers {
		if inCall[a.QuestionID] {
			return nil, core.WrapError(core.ErrInvalidAnswer,
				fmt.Errorf("duplicate question id %q in one call", a.QuestionID))
		}
		inCall[a.QuestionID] = true

		if _, ok := s.QuestionByID(a.QuestionID); !ok {
			return nil, core.WrapError(core.ErrInvalidAnswer,
				fmt.Errorf("unknown question id %q", a.QuestionID))
		}
		if s.Answered(a.QuestionID) {
			return nil, core.WrapError(core.ErrInvalidAnswer,
				fmt.Errorf("question %q already answered", a.QuestionID))
		}
	}

	now := e.now().UTC()
	for _, a := range answers {
		q, _ := s.QuestionByID(a.QuestionID)
		s.Answers = append(s.Answers, UserAnswer{
			QuestionID: a.QuestionID,
			Question:   q.Text,
			Answer:     a.Answer,
			AnsweredAt: now,
		})
	}

	if s.Ready() {
		s.Status = StatusReadyToGenerate
	}
	s.UpdatedAt = now
	if err := e.store.Save(ctx, s); err != nil {
		return nil, err
	}

	e.logger.Info("answers recorded",
		zap.String("session", s.ID),
		zap.Int("answered", len(s.Answers)),
		zap.Int("issued", len(s.Questions)),
		zap.Bool("ready", s.Status == StatusReadyToGenerate))

	return s.Clone(), nil
}

// Finalize assembles the document and marks the session finalized.
// Calling it again on a finalized session returns the stored document
// without issuing any further generation calls.
func (e *Engine) Finalize(ctx context.Context, sessionID, additionalRequirements string) (*core.Document, error) {
	unlock := e.lockSession(sessionID)
	defer unlock()

	s, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.Status == StatusFinalized {
		e.forgetLock(sessionID)
		return s.Document, nil
	}
	if s.Status != StatusReadyToGenerate {
		return nil, core.WrapError(core.ErrInvalidState,
			fmt.Errorf("session %s is %s, expected %s", sessionID, s.Status, StatusReadyToGenerate))
	}

	answers := make([]assembler.QuestionAnswer, len(s.Answers))
	for i, a := range s.Answers {
		answers[i] = assembler.QuestionAnswer{Question: a.Question, Answer: a.Answer}
	}

	doc := e.assembler.Assemble(ctx, assembler.Request{
		SessionID:              s.ID,
		TaskType:               s.TaskType,
		InitialRequest:         s.InitialRequest,
		Answers:                answers,
		Context:                s.Context,
		AdditionalRequirements: additionalRequirements,
	})

	s.Document = doc
	s.Status = StatusFinalized
	s.UpdatedAt = e.now().UTC()
	if err := e.store.Save(ctx, s); err != nil {
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.SessionEnded()
		e.metrics.RecordSession(string(s.TaskType), string(StatusFinalized))
		e.metrics.DocumentFinalized()
	}
	e.logger.Info("session finalized",
		zap.String("session", s.ID),
		zap.Int("sections", len(doc.Sections)),
		zap.Int("warnings", len(doc.Warnings)))

	e.archiveDocument(ctx, s, doc)
	e.forgetLock(s.ID)

	return doc, nil
}

// Abandon moves a non-terminal session to the abandoned state. The
// timeout policy that decides when to call this lives outside the engine.
func (e *Engine) Abandon(ctx context.Context, sessionID string) (*Session, error) {
	unlock := e.lockSession(sessionID)
	defer unlock()

	s, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.Status.IsTerminal() {
		return nil, core.WrapError(core.ErrInvalidState,
			fmt.Errorf("session %s is already %s", sessionID, s.Status))
	}

	s.Status = StatusAbandoned
	s.UpdatedAt = e.now().UTC()
	if err := e.store.Save(ctx, s); err != nil {
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.SessionEnded()
		e.metrics.RecordSession(string(s.TaskType), string(StatusAbandoned))
	}
	e.logger.Info("session abandoned", zap.String("session", s.ID))
	e.forgetLock(s.ID)

	return s.Clone(), nil
}

// Get returns a session by id.
func (e *Engine) Get(ctx context.Context, sessionID string) (*Session, error) {
	return e.store.Load(ctx, sessionID)
}

// List returns all sessions, newest first.
func (e *Engine) List(ctx context.Context) ([]Session, error) {
	return e.store.List(ctx)
}

// archiveDocument writes the rendered document to cold storage. Failures
// are logged, never surfaced: the caller already holds the document.
func (e *Engine) archiveDocument(ctx context.Context, s *Session, doc *core.Document) {
	if e.archive == nil {
		return
	}
	path := fmt.Sprintf("documents/%s/%s.md", s.TaskType, s.ID)
	if err := e.archive.Write(ctx, path, []byte(doc.Content)); err != nil {
		e.logger.Warn("archiving document failed",
			zap.String("session", s.ID),
			zap.String("path", path),
			zap.Error(err))
	}
}
