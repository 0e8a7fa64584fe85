package search

import "strings"

// Result is one organic hit. Raw keeps the provider item for fallback lookups.
type Result struct {
	Title   string
	Link    string
	Snippet string
	Raw     map[string]any
}

// Strategy pulls results out of one known payload shape. It returns nil when
// the shape does not match so the next strategy can be tried.
type Strategy interface {
	Extract(payload map[string]any) []Result
}

// FieldKeys lists, in priority order, the item fields probed for each attribute.
type FieldKeys struct {
	Title   []string
	Link    []string
	Snippet []string
}

var DefaultResultKeys = []string{"organic", "organic_results", "organic_results_list", "items", "results"}

var DefaultFieldKeys = FieldKeys{
	Title:   []string{"title", "name", "heading"},
	Link:    []string{"link", "url", "displayed_link", "source"},
	Snippet: []string{"snippet", "description", "snippet_highlighted"},
}

// ArrayStrategy reads a non-empty array stored under Key.
type ArrayStrategy struct {
	Key    string
	Fields FieldKeys
}

func (s ArrayStrategy) Extract(payload map[string]any) []Result {
	block, ok := payload[s.Key].([]any)
	if !ok || len(block) == 0 {
		return nil
	}
	out := make([]Result, 0, len(block))
	for _, it := range block {
		item, ok := it.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Result{
			Title:   firstString(item, s.Fields.Title),
			Link:    firstString(item, s.Fields.Link),
			Snippet: firstString(item, s.Fields.Snippet),
			Raw:     item,
		})
	}
	return out
}

// Strategies builds one ArrayStrategy per key, in order.
func Strategies(resultKeys []string, fields FieldKeys) []Strategy {
	if len(resultKeys) == 0 {
		resultKeys = DefaultResultKeys
	}
	if len(fields.Title) == 0 {
		fields.Title = DefaultFieldKeys.Title
	}
	if len(fields.Link) == 0 {
		fields.Link = DefaultFieldKeys.Link
	}
	if len(fields.Snippet) == 0 {
		fields.Snippet = DefaultFieldKeys.Snippet
	}
	out := make([]Strategy, 0, len(resultKeys))
	for _, k := range resultKeys {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, ArrayStrategy{Key: k, Fields: fields})
		}
	}
	return out
}

func DefaultStrategies() []Strategy {
	return Strategies(DefaultResultKeys, DefaultFieldKeys)
}

// ExtractResults returns the output of the first strategy that yields data.
func ExtractResults(payload map[string]any, strategies []Strategy) []Result {
	if len(payload) == 0 {
		return nil
	}
	for _, s := range strategies {
		if results := s.Extract(payload); len(results) > 0 {
			return results
		}
	}
	return nil
}

// firstString returns the first non-empty string value among keys.
func firstString(item map[string]any, keys []string) string {
	for _, k := range keys {
		if v, ok := item[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
