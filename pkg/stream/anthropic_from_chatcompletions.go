package stream

import (
	"encoding/json"
	"io"

	"github.com/copilot-gateway/gateway/pkg/dialect/anthropicmsg"
	"github.com/copilot-gateway/gateway/pkg/dialect/chatcompletions"
	"github.com/copilot-gateway/gateway/pkg/sseutil"
)

// toolCallAccumulator tracks one in-flight tool call by its ChatCompletions
// delta index.
type toolCallAccumulator struct {
	blockIndex int
	id         string
	name       string
}

// AnthropicFromChatCompletions is the Anthropic-client, ChatCompletions-
// upstream stream translator (spec §4.4.5): a lighter state machine than
// AnthropicFromResponses since ChatCompletions deltas carry no output/content
// index pair, just a flat running text/reasoning/tool_calls delta per chunk.
type AnthropicFromChatCompletions struct {
	messageStartSent bool
	messageCompleted bool

	nextContentBlockIndex int
	textBlockIndex        int
	textBlockOpen         bool
	thinkingBlockIndex    int
	thinkingBlockOpen     bool

	toolCallsByIndex map[int]*toolCallAccumulator

	model string
}

// NewAnthropicFromChatCompletions constructs a fresh translator for one
// stream.
func NewAnthropicFromChatCompletions(model string) *AnthropicFromChatCompletions {
	return &AnthropicFromChatCompletions{
		toolCallsByIndex: make(map[int]*toolCallAccumulator),
		model:            model,
	}
}

// Run drives src to completion, invoking emit for every client event
// produced, in order. The upstream ChatCompletions stream is expected to end
// with a literal `data: [DONE]` frame followed by EOF; both are treated as
// the end of input. If no chunk carried a finish_reason by then, the open
// blocks are closed and a synthesized error event is emitted instead of
// message_stop.
func (s *AnthropicFromChatCompletions) Run(src EventSource, emit func(anthropicmsg.StreamEvent)) error {
	for !s.messageCompleted {
		raw, err := src.Next()
		if err == io.EOF {
			for _, ev := range s.handlePrematureEOF() {
				emit(ev)
			}
			return nil
		}
		if err != nil {
			return err
		}
		if sseutil.IsDoneSentinel(raw.Data) {
			for _, ev := range s.handlePrematureEOF() {
				emit(ev)
			}
			return nil
		}
		var chunk chatcompletions.StreamChunk
		if unmarshalErr := json.Unmarshal([]byte(raw.Data), &chunk); unmarshalErr != nil {
			continue
		}
		for _, ev := range s.HandleChunk(&chunk) {
			emit(ev)
		}
	}
	return nil
}

// HandleChunk processes one upstream chunk and returns the client events it
// produces, in emission order.
func (s *AnthropicFromChatCompletions) HandleChunk(chunk *chatcompletions.StreamChunk) []anthropicmsg.StreamEvent {
	var out []anthropicmsg.StreamEvent
	out = append(out, s.ensureMessageStart(chunk)...)

	if len(chunk.Choices) == 0 {
		return out
	}
	choice := chunk.Choices[0]
	delta := choice.Delta

	if delta.Content != "" {
		out = append(out, s.handleTextDelta(delta.Content)...)
	}

	reasoning := delta.ReasoningText
	if reasoning == "" {
		reasoning = delta.ReasoningContent
	}
	if reasoning != "" {
		out = append(out, s.handleThinkingDelta(reasoning)...)
	}

	for _, tc := range delta.ToolCalls {
		out = append(out, s.handleToolCallDelta(tc)...)
	}

	if choice.FinishReason != "" {
		out = append(out, s.handleFinish(choice.FinishReason, chunk.Usage)...)
	}

	return out
}

func (s *AnthropicFromChatCompletions) ensureMessageStart(chunk *chatcompletions.StreamChunk) []anthropicmsg.StreamEvent {
	if s.messageStartSent {
		return nil
	}
	s.messageStartSent = true

	model := s.model
	if model == "" {
		model = chunk.Model
	}

	return []anthropicmsg.StreamEvent{{
		Type: "message_start",
		Payload: anthropicmsg.MessageStart{
			Type: "message_start",
			Message: anthropicmsg.MessageStartBody{
				ID:      chunk.ID,
				Type:    "message",
				Role:    "assistant",
				Model:   model,
				Content: []anthropicmsg.ContentBlock{},
				Usage:   anthropicmsg.Usage{},
			},
		},
	}}
}

func (s *AnthropicFromChatCompletions) closeThinkingBlockIfOpen() []anthropicmsg.StreamEvent {
	if !s.thinkingBlockOpen {
		return nil
	}
	s.thinkingBlockOpen = false
	return []anthropicmsg.StreamEvent{s.closeBlockEvent(s.thinkingBlockIndex)}
}

func (s *AnthropicFromChatCompletions) closeTextBlockIfOpen() []anthropicmsg.StreamEvent {
	if !s.textBlockOpen {
		return nil
	}
	s.textBlockOpen = false
	return []anthropicmsg.StreamEvent{s.closeBlockEvent(s.textBlockIndex)}
}

func (s *AnthropicFromChatCompletions) closeBlockEvent(index int) anthropicmsg.StreamEvent {
	return anthropicmsg.StreamEvent{
		Type:    "content_block_stop",
		Payload: anthropicmsg.ContentBlockStop{Type: "content_block_stop", Index: index},
	}
}

// handleThinkingDelta opens the dedicated thinking block on first use. A
// thinking delta arriving after text has started closes the text block first
// -- the dialects never interleave thinking and text within one turn in
// practice, but closing defensively keeps the block lifecycle valid either
// way.
func (s *AnthropicFromChatCompletions) handleThinkingDelta(text string) []anthropicmsg.StreamEvent {
	var out []anthropicmsg.StreamEvent
	out = append(out, s.closeTextBlockIfOpen()...)

	if !s.thinkingBlockOpen {
		s.thinkingBlockIndex = s.nextContentBlockIndex
		s.nextContentBlockIndex++
		s.thinkingBlockOpen = true
		out = append(out, anthropicmsg.StreamEvent{
			Type: "content_block_start",
			Payload: anthropicmsg.ContentBlockStart{
				Type:         "content_block_start",
				Index:        s.thinkingBlockIndex,
				ContentBlock: anthropicmsg.ThinkingBlock{},
			},
		})
	}
	out = append(out, thinkingDelta(s.thinkingBlockIndex, text))
	return out
}

func (s *AnthropicFromChatCompletions) handleTextDelta(text string) []anthropicmsg.StreamEvent {
	var out []anthropicmsg.StreamEvent
	out = append(out, s.closeThinkingBlockIfOpen()...)

	if !s.textBlockOpen {
		s.textBlockIndex = s.nextContentBlockIndex
		s.nextContentBlockIndex++
		s.textBlockOpen = true
		out = append(out, anthropicmsg.StreamEvent{
			Type: "content_block_start",
			Payload: anthropicmsg.ContentBlockStart{
				Type:         "content_block_start",
				Index:        s.textBlockIndex,
				ContentBlock: anthropicmsg.TextBlock{Text: ""},
			},
		})
	}
	out = append(out, textDelta(s.textBlockIndex, text))
	return out
}

func (s *AnthropicFromChatCompletions) handleToolCallDelta(tc chatcompletions.ToolCallDelta) []anthropicmsg.StreamEvent {
	var out []anthropicmsg.StreamEvent

	acc, ok := s.toolCallsByIndex[tc.Index]
	if !ok {
		out = append(out, s.closeTextBlockIfOpen()...)
		out = append(out, s.closeThinkingBlockIfOpen()...)

		blockIndex := s.nextContentBlockIndex
		s.nextContentBlockIndex++

		name := ""
		if tc.Function != nil {
			name = tc.Function.Name
		}
		acc = &toolCallAccumulator{blockIndex: blockIndex, id: tc.ID, name: name}
		s.toolCallsByIndex[tc.Index] = acc

		out = append(out, anthropicmsg.StreamEvent{
			Type: "content_block_start",
			Payload: anthropicmsg.ContentBlockStart{
				Type:  "content_block_start",
				Index: blockIndex,
				ContentBlock: anthropicmsg.ToolUseBlock{
					ID:    acc.id,
					Name:  acc.name,
					Input: map[string]any{},
				},
			},
		})
	}

	if tc.Function != nil && tc.Function.Arguments != "" {
		out = append(out, inputJSONDelta(acc.blockIndex, tc.Function.Arguments))
	}

	return out
}

func (s *AnthropicFromChatCompletions) closeAllOpenBlocks() []anthropicmsg.StreamEvent {
	var out []anthropicmsg.StreamEvent
	out = append(out, s.closeTextBlockIfOpen()...)
	out = append(out, s.closeThinkingBlockIfOpen()...)
	indices := make([]int, 0, len(s.toolCallsByIndex))
	for _, acc := range s.toolCallsByIndex {
		indices = append(indices, acc.blockIndex)
	}
	for i := 0; i < len(indices); i++ {
		for j := i + 1; j < len(indices); j++ {
			if indices[j] < indices[i] {
				indices[i], indices[j] = indices[j], indices[i]
			}
		}
	}
	for _, idx := range indices {
		out = append(out, s.closeBlockEvent(idx))
	}
	s.toolCallsByIndex = make(map[int]*toolCallAccumulator)
	return out
}

func (s *AnthropicFromChatCompletions) handleFinish(finishReason string, usage *chatcompletions.Usage) []anthropicmsg.StreamEvent {
	var out []anthropicmsg.StreamEvent
	out = append(out, s.closeAllOpenBlocks()...)

	stopReason := chatCompletionsFinishReasonToAnthropicStopReason(finishReason)

	var anthropicUsage *anthropicmsg.Usage
	if usage != nil {
		cached := 0
		if usage.PromptTokensDetails != nil {
			cached = usage.PromptTokensDetails.CachedTokens
		}
		anthropicUsage = &anthropicmsg.Usage{
			InputTokens:  usage.PromptTokens - cached,
			OutputTokens: usage.CompletionTokens,
		}
		if cached > 0 {
			anthropicUsage.CacheReadInputTokens = &cached
		}
	}

	out = append(out, anthropicmsg.StreamEvent{
		Type: "message_delta",
		Payload: anthropicmsg.MessageDelta{
			Type:  "message_delta",
			Delta: anthropicmsg.MessageDeltaFields{StopReason: stopReason},
			Usage: anthropicUsage,
		},
	})
	out = append(out, s.messageStop())
	return out
}

func (s *AnthropicFromChatCompletions) messageStop() anthropicmsg.StreamEvent {
	s.messageCompleted = true
	return anthropicmsg.StreamEvent{Type: "message_stop", Payload: anthropicmsg.MessageStop{Type: "message_stop"}}
}

func (s *AnthropicFromChatCompletions) handlePrematureEOF() []anthropicmsg.StreamEvent {
	if s.messageCompleted {
		return nil
	}
	var out []anthropicmsg.StreamEvent
	out = append(out, s.closeAllOpenBlocks()...)
	out = append(out, anthropicmsg.StreamEvent{
		Type: "error",
		Payload: anthropicmsg.ErrorEvent{
			Type:  "error",
			Error: anthropicmsg.ErrorBody{Type: "api_error", Message: "ChatCompletions stream ended without completion"},
		},
	})
	s.messageCompleted = true
	return out
}

// chatCompletionsFinishReasonToAnthropicStopReason mirrors
// pkg/translate's non-stream ChatCompletions->Anthropic finish_reason
// mapping, duplicated here since it is unexported there.
func chatCompletionsFinishReasonToAnthropicStopReason(reason string) *string {
	var stop string
	switch reason {
	case "tool_calls":
		stop = "tool_use"
	case "length":
		stop = "max_tokens"
	default:
		stop = "end_turn"
	}
	return &stop
}
