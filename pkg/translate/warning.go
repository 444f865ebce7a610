// Package translate implements C2 (request translators) and C3 (non-stream
// response translators): pure functions mapping requests and responses
// between the ChatCompletions, AnthropicMessages, and Responses dialects.
// Grounded on the teacher's pkg/providerutils/prompt.converter.go and
// pkg/providerutils/tool.converter.go (content-flattening and tool-shape
// conversion) and pkg/providers/openresponses/convert.go (the
// ConvertToOpenResponsesInput shape this package's AnthropicToResponses and
// ChatCompletionsToResponses functions generalize).
package translate

// Warning is a non-fatal note raised during translation, e.g. an unsupported
// content type that had to be dropped. Callers log these at warn (spec §7c)
// without aborting the request.
type Warning struct {
	Type    string
	Message string
}
