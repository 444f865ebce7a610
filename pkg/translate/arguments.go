package translate

import (
	"encoding/json"
	"strings"

	"github.com/copilot-gateway/gateway/pkg/jsonparser"
)

// ParseFunctionCallArguments implements spec §4.3's parsing rule for a
// function_call.arguments wire string: a valid JSON object passes through
// unchanged, an array is wrapped as {arguments: array}, a non-object scalar
// or an unrepairable parse failure is wrapped as {raw_arguments: string},
// and an empty/whitespace string yields {}. It never panics and always
// returns a usable map, emitting a Warning when a fallback path was taken.
//
// Grounded on pkg/providerutils/tool.converter.go's ParseToolCallArguments
// and pkg/jsonparser's FixJSON/ParsePartialJSON repair path for partial or
// slightly malformed streamed JSON.
func ParseFunctionCallArguments(raw string) (map[string]any, []Warning) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return map[string]any{}, nil
	}

	var value any
	if err := json.Unmarshal([]byte(trimmed), &value); err != nil {
		result := jsonparser.ParsePartialJSON(trimmed)
		if result.State == jsonparser.ParseStateFailed || result.Error != nil {
			return map[string]any{"raw_arguments": raw}, []Warning{{
				Type:    "unparseable-arguments",
				Message: "function_call.arguments was not valid JSON; wrapped as raw_arguments",
			}}
		}
		value = result.Value
	}

	switch v := value.(type) {
	case map[string]any:
		return v, nil
	case []any:
		return map[string]any{"arguments": v}, []Warning{{
			Type:    "array-arguments",
			Message: "function_call.arguments parsed to an array; wrapped as arguments",
		}}
	default:
		return map[string]any{"raw_arguments": raw}, []Warning{{
			Type:    "non-object-arguments",
			Message: "function_call.arguments parsed to a non-object scalar; wrapped as raw_arguments",
		}}
	}
}

// StringifyArguments is the inverse direction: a tool_use.input /
// function-call argument map serialized back to the wire string form each
// dialect expects (`arguments = JSON.stringify(input)` per spec §4.2).
func StringifyArguments(input map[string]any) string {
	if input == nil {
		input = map[string]any{}
	}
	b, err := json.Marshal(input)
	if err != nil {
		return "{}"
	}
	return string(b)
}
