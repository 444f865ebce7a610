// Package anthropicmsg defines the wire types for the Anthropic-Messages
// dialect: typed content blocks per message, top-level system prompt, and
// the message_start/content_block_*/message_delta/message_stop SSE event
// vocabulary. Block variants follow the teacher's duck-typed content model
// (pkg/providers/anthropic/language_model.go) rebuilt as a tagged union: each
// concrete block type implements ContentType so the translator can switch on
// an exhaustive discriminator instead of probing map keys.
package anthropicmsg

import "encoding/json"

// ContentBlock is implemented by every content-block variant. Types the
// translator doesn't recognize are represented by OtherBlock, which carries
// the original JSON through untouched.
type ContentBlock interface {
	ContentType() string
}

// TextBlock is a plain text content block.
type TextBlock struct {
	Text string `json:"text"`
}

func (TextBlock) ContentType() string { return "text" }

// ImageBlock is an image content block; exactly one of Source fields is set.
type ImageBlock struct {
	Source ImageSource `json:"source"`
}

func (ImageBlock) ContentType() string { return "image" }

// ImageSource is the nested source payload of an ImageBlock.
type ImageSource struct {
	Type      string `json:"type"` // "base64" or "url"
	MediaType string `json:"media_type,omitempty"`
	Data      string `json:"data,omitempty"`
	URL       string `json:"url,omitempty"`
}

// ToolUseBlock is a model-produced tool invocation.
type ToolUseBlock struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Input map[string]any `json:"input"`
}

func (ToolUseBlock) ContentType() string { return "tool_use" }

// ToolResultBlock is a caller-supplied tool result, referenced by ToolUseID.
type ToolResultBlock struct {
	ToolUseID string `json:"tool_use_id"`
	Content   any    `json:"content"` // string or []ContentBlock-shaped parts
	IsError   bool   `json:"is_error,omitempty"`
}

func (ToolResultBlock) ContentType() string { return "tool_result" }

// ThinkingBlock carries a model's reasoning trace with an opaque signature.
type ThinkingBlock struct {
	Thinking  string `json:"thinking"`
	Signature string `json:"signature"`
}

func (ThinkingBlock) ContentType() string { return "thinking" }

// OtherBlock captures any content block type the translator does not
// recognize, preserving its JSON so it can be re-emitted where the target
// dialect accepts opaque passthrough, per the design note on unknown variants.
type OtherBlock struct {
	Type string
	Raw  json.RawMessage
}

func (b OtherBlock) ContentType() string { return b.Type }

// Message is one entry of Request.Messages.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// SystemBlock is one element when System is given as an array of text blocks.
type SystemBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Request is the body of POST /v1/messages.
type Request struct {
	Model      string    `json:"model"`
	System     any       `json:"system,omitempty"` // string or []SystemBlock
	Messages   []Message `json:"messages"`
	Tools      []Tool    `json:"tools,omitempty"`
	ToolChoice any       `json:"tool_choice,omitempty"`
	MaxTokens  int       `json:"max_tokens"`
	Stream     bool      `json:"stream,omitempty"`
	Metadata   *Metadata `json:"metadata,omitempty"`
}

// Metadata carries request-scoped identifiers, including the user_id string
// that encodes a safety identifier and prompt-cache key (spec §4.2).
type Metadata struct {
	UserID string `json:"user_id,omitempty"`
}

// Tool is a function tool definition with a JSON-schema input shape.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

// ToolChoiceAuto/Any/None select the tool-choice policy by name.
type ToolChoiceAuto struct {
	Type string `json:"type"` // "auto"
}

// ToolChoiceTool selects a single named tool.
type ToolChoiceTool struct {
	Type string `json:"type"` // "tool"
	Name string `json:"name"`
}

// Usage is the Anthropic-Messages usage envelope.
type Usage struct {
	InputTokens              int  `json:"input_tokens"`
	OutputTokens             int  `json:"output_tokens"`
	CacheReadInputTokens     *int `json:"cache_read_input_tokens,omitempty"`
	CacheCreationInputTokens *int `json:"cache_creation_input_tokens,omitempty"`
}

// Response is a non-streaming POST /v1/messages result.
type Response struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Model      string         `json:"model"`
	Content    []ContentBlock `json:"content"`
	StopReason *string        `json:"stop_reason"`
	Usage      Usage          `json:"usage"`
}

// CountTokensRequest is the body of POST /v1/messages/count_tokens.
type CountTokensRequest struct {
	Model    string    `json:"model"`
	System   any       `json:"system,omitempty"`
	Messages []Message `json:"messages"`
	Tools    []Tool    `json:"tools,omitempty"`
}

// CountTokensResponse is the result of POST /v1/messages/count_tokens.
type CountTokensResponse struct {
	InputTokens int `json:"input_tokens"`
}

// --- streaming event vocabulary ---

// StreamEvent is the envelope written to the wire as `event: <Type>` +
// `data: <json of the inner payload>`.
type StreamEvent struct {
	Type    string
	Payload any
}

// MessageStart is the one-time opening event of a stream.
type MessageStart struct {
	Type    string         `json:"type"`
	Message MessageStartBody `json:"message"`
}

// MessageStartBody is the nested message envelope of MessageStart.
type MessageStartBody struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Model      string         `json:"model"`
	Content    []ContentBlock `json:"content"`
	StopReason *string        `json:"stop_reason"`
	Usage      Usage          `json:"usage"`
}

// ContentBlockStart opens a content block at Index.
type ContentBlockStart struct {
	Type         string       `json:"type"`
	Index        int          `json:"index"`
	ContentBlock ContentBlock `json:"content_block"`
}

// ContentBlockDelta carries one incremental update to the block at Index.
type ContentBlockDelta struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
	Delta Delta  `json:"delta"`
}

// Delta is the tagged payload of a ContentBlockDelta.
type Delta struct {
	Type         string `json:"type"` // text_delta | thinking_delta | input_json_delta | signature_delta
	Text         string `json:"text,omitempty"`
	Thinking     string `json:"thinking,omitempty"`
	PartialJSON  string `json:"partial_json,omitempty"`
	Signature    string `json:"signature,omitempty"`
}

// ContentBlockStop closes the block at Index.
type ContentBlockStop struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// MessageDelta carries the terminal stop_reason/usage update.
type MessageDelta struct {
	Type  string            `json:"type"`
	Delta MessageDeltaFields `json:"delta"`
	Usage *Usage            `json:"usage,omitempty"`
}

// MessageDeltaFields is the inner delta of a MessageDelta.
type MessageDeltaFields struct {
	StopReason   *string `json:"stop_reason"`
	StopSequence *string `json:"stop_sequence"`
}

// MessageStop is the final event of a successful stream.
type MessageStop struct {
	Type string `json:"type"`
}

// ErrorEvent is a terminal error event, used both for mid-stream upstream
// protocol failures and for synthesised premature-EOF errors.
type ErrorEvent struct {
	Type  string     `json:"type"`
	Error ErrorBody `json:"error"`
}

// ErrorBody is the nested error payload of an ErrorEvent.
type ErrorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
