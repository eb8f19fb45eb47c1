package structured

import (
	"encoding/json"
	"errors"
	"strings"

	"shate-rag-be/pkg/llm"
)

const (
	QueryToolName  = "mongodb_query"
	SchemaToolName = "mongodb_schema"
	SchemaCallID   = "schema_call_1"
)

var errMissingQueryArg = errors.New("tool call has no query argument")

var queryTool = llm.Tool{
	Name:        QueryToolName,
	Description: "Run a read-only MongoDB aggregation. Input is a query of the form db.<collection>.aggregate([...]).",
	Parameters: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "The aggregation, e.g. db.products.aggregate([{ $match: { tag: 'sneaker' } }])",
			},
		},
		"required": []string{"query"},
	},
}

type queryArgs struct {
	Query string `json:"query"`
}

// queryCall returns the first mongodb_query call in msg.
func queryCall(msg *llm.Message) (llm.ToolCall, bool) {
	if msg == nil {
		return llm.ToolCall{}, false
	}
	for _, tc := range msg.ToolCalls {
		if tc.Name == QueryToolName {
			return tc, true
		}
	}
	return llm.ToolCall{}, false
}

// queryText extracts the query argument of a tool call.
func queryText(tc llm.ToolCall) (string, error) {
	var args queryArgs
	if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
		return "", err
	}
	if strings.TrimSpace(args.Query) == "" {
		return "", errMissingQueryArg
	}
	return args.Query, nil
}

func schemaArguments(collections []string) string {
	raw, _ := json.Marshal(map[string]string{"collection_names": strings.Join(collections, ", ")})
	return string(raw)
}
