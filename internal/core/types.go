package core

import "time"

// ProviderKind identifies one LLM backend
type ProviderKind string

const (
	ProviderClaude ProviderKind = "claude"
	ProviderOpenAI ProviderKind = "openai"
	ProviderOllama ProviderKind = "ollama"
)

// Strategy selects the comparator used to order candidate providers
type Strategy string

const (
	StrategyCost     Strategy = "cost"
	StrategyQuality  Strategy = "quality"
	StrategyBalanced Strategy = "balanced"
	StrategyPriority Strategy = "priority"
)

// IsValid checks if the strategy is one of the supported values
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyCost, StrategyQuality, StrategyBalanced, StrategyPriority:
		return true
	}
	return false
}

// TaskType represents the kind of technical document a session produces
type TaskType string

const (
	TaskArchitectureDesign    TaskType = "architecture_design"
	TaskAPIDesign             TaskType = "api_design"
	TaskIntegration           TaskType = "integration"
	TaskPerformance           TaskType = "performance"
	TaskSecurityReview        TaskType = "security_review"
	TaskDatabaseDesign        TaskType = "database_design"
	TaskFeatureImplementation TaskType = "feature_implementation"
	TaskTechnicalAnalysis     TaskType = "technical_analysis"
)

// IsValid checks if the task type is one of the supported values
func (t TaskType) IsValid() bool {
	switch t {
	case TaskArchitectureDesign, TaskAPIDesign, TaskIntegration, TaskPerformance,
		TaskSecurityReview, TaskDatabaseDesign, TaskFeatureImplementation, TaskTechnicalAnalysis:
		return true
	}
	return false
}

// GenerationRequest holds the parameters for one generation call
type GenerationRequest struct {
	Prompt        string
	SystemPrompt  string
	Temperature   float64
	TopP          float64
	MaxTokens     int
	StopSequences []string
	JSONMode      bool
}

// GenerationResult holds the outcome of one generation call
type GenerationResult struct {
	Content          string
	Provider         ProviderKind
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	ResponseTime     time.Duration
	CostUSD          float64
	Metadata         map[string]any
}

// DocumentSection is one named subdivision of a generated document
type DocumentSection struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Failed  bool   `json:"failed,omitempty"`
}

// Document is the assembled output of a finalized session
type Document struct {
	SessionID string            `json:"session_id"`
	TaskType  TaskType          `json:"task_type"`
	Title     string            `json:"title"`
	CreatedAt time.Time         `json:"created_at"`
	Sources   []string          `json:"sources,omitempty"`
	Sections  []DocumentSection `json:"sections"`
	Warnings  []string          `json:"warnings,omitempty"`
	Content   string            `json:"content"`
}
