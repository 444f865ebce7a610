// Package responses defines the wire types for the Responses-style dialect:
// an ordered list of input items on the way in and output items on the way
// out, both drawn from {message, function_call, function_call_output,
// reasoning}. Adapted field-for-field from the teacher's
// pkg/providers/openresponses/api_types.go, which already modeled this
// dialect almost exactly — renamed from a vendor package to a dialect
// package per SPEC_FULL.md's package-boundary note.
package responses

// Request is the body of POST /v1/responses and the payload C2 builds when
// routing another client dialect to the Responses upstream.
type Request struct {
	Model            string      `json:"model"`
	Input            any         `json:"input"` // string or []InputItem-shaped elements
	Instructions     string      `json:"instructions,omitempty"`
	MaxOutputTokens  *int        `json:"max_output_tokens,omitempty"`
	Temperature      *float64    `json:"temperature,omitempty"`
	TopP             *float64    `json:"top_p,omitempty"`
	Tools            []FunctionTool `json:"tools,omitempty"`
	ToolChoice       any         `json:"tool_choice,omitempty"`
	Text             *TextConfig `json:"text,omitempty"`
	Stream           bool        `json:"stream,omitempty"`
	Store            *bool       `json:"store,omitempty"`
	ParallelToolCalls *bool      `json:"parallel_tool_calls,omitempty"`
	Reasoning        *ReasoningConfig `json:"reasoning,omitempty"`
	Include          []string   `json:"include,omitempty"`
	Metadata         *RequestMetadata `json:"metadata,omitempty"`
}

// RequestMetadata carries the two derived identifiers spec §4.2 pulls out of
// an Anthropic metadata.user_id string.
type RequestMetadata struct {
	SafetyIdentifier string `json:"safety_identifier,omitempty"`
	PromptCacheKey   string `json:"prompt_cache_key,omitempty"`
}

// ReasoningConfig controls reasoning effort/summary verbosity.
type ReasoningConfig struct {
	Effort  string `json:"effort,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// TextConfig carries text output formatting configuration (passed through
// opaquely; the gateway never constructs this itself).
type TextConfig struct {
	Format any `json:"format,omitempty"`
}

// FunctionTool is a function tool definition.
type FunctionTool struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	Strict      bool           `json:"strict,omitempty"`
}

// MessageItem is an input/output item carrying message content.
type MessageItem struct {
	Type    string `json:"type"` // "message"
	Role    string `json:"role,omitempty"`
	Content any    `json:"content"` // string or []content-part
	ID      string `json:"id,omitempty"`
	Status  string `json:"status,omitempty"`
}

// InputTextContent is a {type:input_text} content part of a user message.
type InputTextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// InputImageContent is a {type:input_image} content part of a user message.
type InputImageContent struct {
	Type     string `json:"type"`
	ImageURL string `json:"image_url,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// OutputTextContent is a {type:output_text} content part of an assistant
// message, also used for reasoning/thinking text emitted as message content.
type OutputTextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// FunctionCallItem is a top-level function_call input/output item.
type FunctionCallItem struct {
	Type      string `json:"type"` // "function_call"
	CallID    string `json:"call_id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
	ID        string `json:"id,omitempty"`
	Status    string `json:"status,omitempty"`
}

// FunctionCallOutputItem is a top-level function_call_output input item.
type FunctionCallOutputItem struct {
	Type   string `json:"type"` // "function_call_output"
	CallID string `json:"call_id"`
	Output any    `json:"output"`
	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`
}

// ReasoningInputItem is a top-level reasoning input item, used to forward a
// prior turn's encrypted reasoning back to the upstream (spec §4.2 note: only
// emitted when EncryptedContent is present).
type ReasoningInputItem struct {
	Type             string        `json:"type"` // "reasoning"
	EncryptedContent string        `json:"encrypted_content"`
	Summary          []SummaryPart `json:"summary,omitempty"`
}

// SummaryPart is one element of a reasoning item's summary array.
type SummaryPart struct {
	Type string `json:"type"` // "summary_text"
	Text string `json:"text"`
}

// Response is the non-streaming POST /v1/responses result, and the shape C3
// translates from when the Responses upstream answered a non-streaming call.
type Response struct {
	ID                string             `json:"id"`
	Object            string             `json:"object"`
	CreatedAt         int64              `json:"created_at"`
	CompletedAt       *int64             `json:"completed_at,omitempty"`
	Status            string             `json:"status"`
	Model             string             `json:"model"`
	Output            []OutputItem       `json:"output"`
	OutputText        string             `json:"output_text,omitempty"`
	Usage             *Usage             `json:"usage,omitempty"`
	IncompleteDetails *IncompleteDetails `json:"incomplete_details,omitempty"`
	Error             *ResponseError     `json:"error,omitempty"`
	Instructions      string             `json:"instructions,omitempty"`
	Tools             []FunctionTool     `json:"tools,omitempty"`
}

// OutputItem is one element of Response.Output, covering message,
// function_call, and reasoning output item shapes in a single struct (the
// teacher's convention for the unbounded "map of any" design note: fields
// that don't apply to a given Type are simply left zero).
type OutputItem struct {
	Type    string        `json:"type"`
	ID      string        `json:"id,omitempty"`
	Role    string        `json:"role,omitempty"`
	Content []ContentPart `json:"content,omitempty"`
	Status  string        `json:"status,omitempty"`

	// function_call fields
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`

	// function_call_output fields
	Output any `json:"output,omitempty"`

	// reasoning fields
	Summary          []ContentPart `json:"summary,omitempty"`
	EncryptedContent string        `json:"encrypted_content,omitempty"`
	Text             string        `json:"text,omitempty"`
}

// ContentPart is one element of an OutputItem's Content or Summary.
type ContentPart struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	Refusal   string `json:"refusal,omitempty"`
	Thinking  string `json:"thinking,omitempty"`
	Reasoning string `json:"reasoning,omitempty"`
}

// Usage is the Responses usage envelope.
type Usage struct {
	InputTokens         int                  `json:"input_tokens"`
	OutputTokens        int                  `json:"output_tokens"`
	TotalTokens         int                  `json:"total_tokens,omitempty"`
	InputTokensDetails  *InputTokensDetails  `json:"input_tokens_details,omitempty"`
	OutputTokensDetails *OutputTokensDetails `json:"output_tokens_details,omitempty"`
}

// InputTokensDetails carries cached-input-token accounting.
type InputTokensDetails struct {
	CachedTokens int `json:"cached_tokens,omitempty"`
}

// OutputTokensDetails carries reasoning-token accounting.
type OutputTokensDetails struct {
	ReasoningTokens int `json:"reasoning_tokens,omitempty"`
}

// IncompleteDetails explains why a Response has Status "incomplete".
type IncompleteDetails struct {
	Reason string `json:"reason"`
}

// ResponseError is the error envelope of a failed Response.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StreamEvent is one decoded `response.*` SSE event from the Responses
// upstream. Modeled as a single wide struct (design note: unbounded map of
// any) rather than one type per event, since the fields actually present
// vary by Type and the C4 state machine only ever needs string-keyed access.
type StreamEvent struct {
	Type           string         `json:"type"`
	SequenceNumber int            `json:"sequence_number,omitempty"`
	Response       *Response      `json:"response,omitempty"`
	OutputIndex    int            `json:"output_index,omitempty"`
	Item           *OutputItem    `json:"item,omitempty"`
	ItemID         string         `json:"item_id,omitempty"`
	ContentIndex   int            `json:"content_index,omitempty"`
	Delta          string         `json:"delta,omitempty"`
	Text           string         `json:"text,omitempty"`
	CallID         string         `json:"call_id,omitempty"`
	Arguments      string         `json:"arguments,omitempty"`
	Part           *ContentPart   `json:"part,omitempty"`
	Error          *ResponseError `json:"error,omitempty"`
}
