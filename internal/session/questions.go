package session

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/newthinker/scribe/internal/core"
)

const questionSystemPrompt = "You are a senior engineer gathering requirements before writing a technical design document. " +
	"Given a one-line request, produce the clarifying questions whose answers you need. " +
	`Respond with JSON: {"questions":[{"id":"q1","question":"..."}]}.`

// questionPrompt builds the prompt that asks the model for clarifying
// questions.
func questionPrompt(taskType core.TaskType, initialRequest string, context map[string]any, maxQuestions int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## Task Type: %s\n\n", taskType))
	sb.WriteString(fmt.Sprintf("## Request:\n%s\n\n", initialRequest))

	if len(context) > 0 {
		sb.WriteString("## Known Context:\n")
		keys := make([]string, 0, len(context))
		for k := range context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("- %s: %v\n", k, context[k]))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Ask at most %d clarifying questions. Only ask what you cannot infer.\n", maxQuestions))
	return sb.String()
}

// questionList is the JSON contract for model-produced questions.
type questionList struct {
	Questions []struct {
		ID       string `json:"id"`
		Question string `json:"question"`
	} `json:"questions"`
}

// parseQuestions extracts questions from model output. JSON is the
// expected contract; plain lists are a fallback for models that answer
// in prose. Question ids are unique and never empty.
func parseQuestions(content string, maxQuestions int) []Question {
	var parsed questionList
	if err := json.Unmarshal([]byte(content), &parsed); err == nil && len(parsed.Questions) > 0 {
		questions := make([]Question, 0, len(parsed.Questions))
		seen := make(map[string]bool)
		for i, q := range parsed.Questions {
			text := strings.TrimSpace(q.Question)
			if text == "" {
				continue
			}
			id := strings.TrimSpace(q.ID)
			// A positional replacement can itself collide with an id the
			// model already used; keep counting until one is free.
			for n := i + 1; id == "" || seen[id]; n++ {
				id = fmt.Sprintf("q%d", n)
			}
			seen[id] = true
			questions = append(questions, Question{ID: id, Text: text})
			if len(questions) == maxQuestions {
				break
			}
		}
		if len(questions) > 0 {
			return questions
		}
	}

	return parseQuestionLines(content, maxQuestions)
}

// parseQuestionLines treats bullet or numbered lines as questions.
func parseQuestionLines(content string, maxQuestions int) []Question {
	var questions []Question
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789.) ")
		if line == "" || !strings.Contains(line, "?") {
			continue
		}
		questions = append(questions, Question{
			ID:   fmt.Sprintf("q%d", len(questions)+1),
			Text: line,
		})
		if len(questions) == maxQuestions {
			break
		}
	}
	return questions
}
