// internal/assembler/assembler.go
package assembler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/newthinker/scribe/internal/core"
	"github.com/newthinker/scribe/internal/metrics"
	"go.uber.org/zap"
)

// Generator is the slice of the routed client the assembler needs.
type Generator interface {
	Generate(ctx context.Context, req core.GenerationRequest, strategy core.Strategy) (*core.GenerationResult, error)
}

// QuestionAnswer is one collected clarifying answer, in round order.
type QuestionAnswer struct {
	Question string
	Answer   string
}

// Request carries everything a finalize-bound session contributes to the
// document.
type Request struct {
	SessionID              string
	TaskType               core.TaskType
	InitialRequest         string
	Answers                []QuestionAnswer
	Context                map[string]any
	AdditionalRequirements string
}

// Assembler drafts each template section through the routed client and
// composes the final document. Section failures become placeholders plus
// warnings, never whole-document failures.
type Assembler struct {
	generator Generator
	strategy  core.Strategy
	metrics   *metrics.Registry
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a document assembler.
func New(generator Generator, strategy core.Strategy, reg *metrics.Registry, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{
		generator: generator,
		strategy:  strategy,
		metrics:   reg,
		logger:    logger,
		now:       time.Now,
	}
}

// Assemble drafts every section of the task type's template concurrently
// and joins them in template order.
func (a *Assembler) Assemble(ctx context.Context, req Request) *core.Document {
	sections := Template(req.TaskType)
	drafts := make([]core.DocumentSection, len(sections))
	failures := make([]string, len(sections))

	var wg sync.WaitGroup
	for i, spec := range sections {
		wg.Add(1)
		go func(i int, spec SectionSpec) {
			defer wg.Done()
			content, err := a.draftSection(ctx, req, spec)
			if err != nil {
				a.logger.Warn("section draft failed",
					zap.String("session", req.SessionID),
					zap.String("section", spec.Name),
					zap.Error(err))
				drafts[i] = core.DocumentSection{
					Name:    spec.Name,
					Content: fmt.Sprintf("[section generation failed: %v]", err),
					Failed:  true,
				}
				failures[i] = fmt.Sprintf("section %q: %v", spec.Name, err)
				if a.metrics != nil {
					a.metrics.RecordSection("failure")
				}
				return
			}
			drafts[i] = core.DocumentSection{Name: spec.Name, Content: content}
			if a.metrics != nil {
				a.metrics.RecordSection("success")
			}
		}(i, spec)
	}
	wg.Wait()

	var warnings []string
	for _, f := range failures {
		if f != "" {
			warnings = append(warnings, f)
		}
	}

	doc := &core.Document{
		SessionID: req.SessionID,
		TaskType:  req.TaskType,
		Title:     title(req),
		CreatedAt: a.now().UTC(),
		Sources:   sources(req.Context),
		Sections:  drafts,
		Warnings:  warnings,
	}
	doc.Content = render(doc)
	return doc
}

func (a *Assembler) draftSection(ctx context.Context, req Request, spec SectionSpec) (string, error) {
	result, err := a.generator.Generate(ctx, core.GenerationRequest{
		SystemPrompt: sectionSystemPrompt,
		Prompt:       sectionPrompt(req, spec),
		Temperature:  0.4,
		MaxTokens:    1024,
	}, a.strategy)
	if err != nil {
		return "", err
	}
	content := strings.TrimSpace(result.Content)
	if content == "" {
		return "", fmt.Errorf("empty section draft")
	}
	return content, nil
}

const sectionSystemPrompt = "You are a senior engineer writing one section of a technical design document (RFC). " +
	"Write only the body of the requested section in markdown, without repeating the section heading."

func sectionPrompt(req Request, spec SectionSpec) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## Task Type: %s\n\n", req.TaskType))
	sb.WriteString(fmt.Sprintf("## Request:\n%s\n\n", req.InitialRequest))

	if len(req.Answers) > 0 {
		sb.WriteString("## Clarifications:\n")
		for _, qa := range req.Answers {
			sb.WriteString(fmt.Sprintf("- Q: %s\n  A: %s\n", qa.Question, qa.Answer))
		}
		sb.WriteString("\n")
	}

	if len(req.Context) > 0 {
		sb.WriteString("## Accumulated Context:\n")
		keys := make([]string, 0, len(req.Context))
		for k := range req.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("- %s: %v\n", k, req.Context[k]))
		}
		sb.WriteString("\n")
	}

	if req.AdditionalRequirements != "" {
		sb.WriteString(fmt.Sprintf("## Additional Requirements:\n%s\n\n", req.AdditionalRequirements))
	}

	sb.WriteString(fmt.Sprintf("Write the %q section. %s\n", spec.Name, spec.Purpose))
	return sb.String()
}

func title(req Request) string {
	t := strings.TrimSpace(req.InitialRequest)
	if len(t) > 80 {
		t = t[:80]
	}
	return t
}

// sources extracts retrieved snippet names from the session context, if
// the retrieval collaborator supplied any.
func sources(context map[string]any) []string {
	raw, ok := context["sources"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			result = append(result, fmt.Sprintf("%v", item))
		}
		return result
	}
	return nil
}

// render composes the metadata header and the sections, in template
// order, into the final markdown content.
func render(doc *core.Document) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", doc.Title))
	sb.WriteString(fmt.Sprintf("- Task type: %s\n", doc.TaskType))
	sb.WriteString(fmt.Sprintf("- Created: %s\n", doc.CreatedAt.Format(time.RFC3339)))
	if len(doc.Sources) > 0 {
		sb.WriteString(fmt.Sprintf("- Sources: %s\n", strings.Join(doc.Sources, ", ")))
	}
	sb.WriteString("\n")

	for _, section := range doc.Sections {
		sb.WriteString(fmt.Sprintf("## %s\n\n%s\n\n", section.Name, section.Content))
	}

	return sb.String()
}
