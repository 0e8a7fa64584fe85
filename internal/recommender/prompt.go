package recommender

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"
)

const PromptVersion = "recommendation_v1"

//go:embed prompts/recommendation_v1.tmpl
var promptText string

var promptTemplate = template.Must(template.New(PromptVersion).Parse(promptText))

var ErrInvalidReport = errors.New("report is not valid JSON")

// BuildPrompt renders the recommendation prompt. insights must be valid JSON;
// it is re-indented with two spaces.
func BuildPrompt(s Snapshot, insights json.RawMessage, p Probabilities) (string, error) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, insights, "", "  "); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	var b strings.Builder
	err := promptTemplate.Execute(&b, struct {
		Snapshot      Snapshot
		Insights      string
		Probabilities Probabilities
	}{s, pretty.String(), p})
	if err != nil {
		return "", fmt.Errorf("render %s: %w", PromptVersion, err)
	}
	return b.String(), nil
}

// LoadReport reads a report produced by the agent.
func LoadReport(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	return ParseReport(data)
}

// ParseReport accepts a report with or without a surrounding markdown code fence.
func ParseReport(data []byte) (json.RawMessage, error) {
	s := strings.TrimSpace(string(data))
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
	}
	if !json.Valid([]byte(s)) {
		return nil, ErrInvalidReport
	}
	return json.RawMessage(s), nil
}
