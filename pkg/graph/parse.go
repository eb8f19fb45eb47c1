package graph

import (
	"encoding/json"
	"errors"
	"strings"
)

var ErrClassificationParse = errors.New("classifier output is not a routing decision list")

// Parse stages, in the order they are attempted.
const (
	StageJSON      = "json"
	StageSubstring = "substring"
	StageKeyword   = "keyword"
	StageNone      = "none"
)

// keywordOrder is checked in sequence and the first hit wins.
var keywordOrder = []struct {
	words  []string
	source Source
}{
	{[]string{"mongodb"}, SourceStructured},
	{[]string{"vector", "vectordb"}, SourceSemantic},
	{[]string{"internet"}, SourceWeb},
	{[]string{"greeting"}, SourceGreeting},
}

// ParseDecisions turns raw classifier text into decisions for query. It tries the whole text as
// JSON, then the outermost [...] substring, then source keywords (at most one decision). Every
// decision carries query as its sub-query. The returned stage says which step succeeded.
func ParseDecisions(raw, query string) ([]RoutingDecision, string) {
	if decisions, err := parseJSONDecisions(raw, query); err == nil {
		return decisions, StageJSON
	}

	if start, end := strings.Index(raw, "["), strings.LastIndex(raw, "]"); start != -1 && end > start {
		if decisions, err := parseJSONDecisions(raw[start:end+1], query); err == nil {
			return decisions, StageSubstring
		}
	}

	lower := strings.ToLower(raw)
	for _, k := range keywordOrder {
		for _, w := range k.words {
			if strings.Contains(lower, w) {
				return []RoutingDecision{{Source: k.source, Query: query}}, StageKeyword
			}
		}
	}
	return nil, StageNone
}

func parseJSONDecisions(raw, query string) ([]RoutingDecision, error) {
	var value interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &value); err != nil {
		return nil, ErrClassificationParse
	}

	var items []interface{}
	switch v := value.(type) {
	case []interface{}:
		items = v
	case map[string]interface{}:
		if list, ok := v["classifications"].([]interface{}); ok {
			items = list
		} else {
			items = []interface{}{v}
		}
	case string:
		items = []interface{}{v}
	default:
		return nil, ErrClassificationParse
	}

	var decisions []RoutingDecision
	for _, item := range items {
		var name string
		switch it := item.(type) {
		case string:
			name = it
		case map[string]interface{}:
			name, _ = it["source"].(string)
		}
		if src, ok := ParseSource(name); ok {
			decisions = append(decisions, RoutingDecision{Source: src, Query: query})
		}
	}
	if len(decisions) == 0 {
		return nil, ErrClassificationParse
	}
	return decisions, nil
}
