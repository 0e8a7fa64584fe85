package agent

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

// ReportPromptVersion identifies the rendered contract in prompts/report_v1.tmpl.
const ReportPromptVersion = "report_v1"

//go:embed prompts/report_v1.tmpl
var reportTemplateText string

var reportTemplate = template.Must(template.New(ReportPromptVersion).
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(reportTemplateText))

// ReportInput is everything the report prompt depends on.
type ReportInput struct {
	Team      string
	SourceURL string
	Matches   []string
	// SiteContext is optional text scraped from the official site.
	SiteContext string
}

// BuildReportPrompt renders the report prompt. It has no side effects.
func BuildReportPrompt(in ReportInput) (string, error) {
	var b strings.Builder
	if err := reportTemplate.Execute(&b, in); err != nil {
		return "", fmt.Errorf("render %s: %w", ReportPromptVersion, err)
	}
	return b.String(), nil
}

// NoDataMessage is returned instead of a report when there are no matches.
func NoDataMessage(team, sourceURL string) string {
	return fmt.Sprintf("No match data found for %s from %s.", team, sourceURL)
}
