package assembler

import "github.com/newthinker/scribe/internal/core"

// SectionSpec names one section of a document template and tells the
// drafting prompt what the section is for.
type SectionSpec struct {
	Name    string
	Purpose string
}

// baseSections is the default RFC shape shared by most task types.
var baseSections = []SectionSpec{
	{Name: "Summary", Purpose: "One-paragraph summary of the request and the proposed outcome."},
	{Name: "Context", Purpose: "Current state, constraints, and why this work is needed now."},
	{Name: "Goals", Purpose: "Concrete goals and explicit non-goals."},
	{Name: "Design", Purpose: "The proposed design, covering components, data flow, and interfaces."},
	{Name: "Trade-offs and Risks", Purpose: "Alternatives considered, trade-offs taken, and known risks."},
	{Name: "Implementation Plan", Purpose: "Ordered, reviewable steps to deliver the design."},
	{Name: "Success Metrics", Purpose: "How success is measured after rollout."},
}

// templates maps each task type to its fixed, ordered section list.
var templates = map[core.TaskType][]SectionSpec{
	core.TaskArchitectureDesign:    baseSections,
	core.TaskAPIDesign:             insertAfter(baseSections, "Design", SectionSpec{Name: "API Reference", Purpose: "Endpoint-by-endpoint contract: paths, payloads, status codes, errors."}),
	core.TaskIntegration:           insertAfter(baseSections, "Design", SectionSpec{Name: "Failure Modes", Purpose: "Behavior when the integrated system is slow, down, or returns bad data."}),
	core.TaskPerformance:           insertAfter(baseSections, "Context", SectionSpec{Name: "Baseline Measurements", Purpose: "Current measured performance and the target numbers."}),
	core.TaskFeatureImplementation: baseSections,
	core.TaskTechnicalAnalysis: {
		{Name: "Summary", Purpose: "One-paragraph summary of the question under analysis and the conclusion."},
		{Name: "Context", Purpose: "Background and why the analysis is needed."},
		{Name: "Findings", Purpose: "What the analysis found, with supporting evidence."},
		{Name: "Options", Purpose: "Viable options with their trade-offs."},
		{Name: "Recommendation", Purpose: "The recommended option and the reasoning behind it."},
	},
	core.TaskSecurityReview: {
		{Name: "Summary", Purpose: "One-paragraph summary of the review scope and overall posture."},
		{Name: "Context", Purpose: "System under review, trust boundaries, and assets."},
		{Name: "Threat Model", Purpose: "Actors, attack surfaces, and abuse scenarios."},
		{Name: "Findings", Purpose: "Identified weaknesses, ordered by severity."},
		{Name: "Recommendations", Purpose: "Concrete remediations mapped to findings."},
		{Name: "Residual Risks", Purpose: "Risks accepted after remediation."},
	},
	core.TaskDatabaseDesign: insertAfter(
		insertAfter(baseSections, "Design", SectionSpec{Name: "Schema", Purpose: "Tables, columns, indexes, and relationships."}),
		"Schema", SectionSpec{Name: "Migration Plan", Purpose: "How to migrate existing data with rollback steps."}),
}

// Template returns the fixed section list for a task type.
func Template(taskType core.TaskType) []SectionSpec {
	if t, ok := templates[taskType]; ok {
		return t
	}
	return baseSections
}

func insertAfter(sections []SectionSpec, after string, spec SectionSpec) []SectionSpec {
	result := make([]SectionSpec, 0, len(sections)+1)
	for _, s := range sections {
		result = append(result, s)
		if s.Name == after {
			result = append(result, spec)
		}
	}
	return result
}
