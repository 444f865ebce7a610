package stream

import (
	"encoding/json"
	"io"

	"github.com/copilot-gateway/gateway/pkg/dialect/chatcompletions"
	"github.com/copilot-gateway/gateway/pkg/dialect/responses"
)

// ChatCompletionsFromResponses is the ChatCompletions-client, Responses-
// upstream stream translator (spec §4.4.4): a simpler derivative of
// AnthropicFromResponses since the ChatCompletions chunk shape carries no
// block-index bookkeeping, just an incrementally-appended delta per chunk.
type ChatCompletionsFromResponses struct {
	id          string
	model       string
	done        bool

	toolCallIndexByOutputIndex map[int]int
	nextToolCallIndex          int
}

// NewChatCompletionsFromResponses constructs a fresh translator for one
// stream.
func NewChatCompletionsFromResponses() *ChatCompletionsFromResponses {
	return &ChatCompletionsFromResponses{
		toolCallIndexByOutputIndex: make(map[int]int),
	}
}

// Run drives src to completion, invoking emit for every client chunk
// produced, terminated by a final emit of the literal "[DONE]" sentinel text.
func (s *ChatCompletionsFromResponses) Run(src EventSource, emit func(chunk *chatcompletions.StreamChunk, done bool)) error {
	for !s.done {
		raw, err := src.Next()
		if err == io.EOF {
			if !s.done {
				emit(nil, true)
			}
			return nil
		}
		if err != nil {
			return err
		}
		var event responses.StreamEvent
		if unmarshalErr := json.Unmarshal([]byte(raw.Data), &event); unmarshalErr != nil {
			continue
		}
		for _, chunk := range s.HandleEvent(&event) {
			emit(chunk, false)
		}
		if s.done {
			emit(nil, true)
		}
	}
	return nil
}

func (s *ChatCompletionsFromResponses) baseChunk() chatcompletions.StreamChunk {
	return chatcompletions.StreamChunk{
		ID:      s.id,
		Object:  "chat.completion.chunk",
		Model:   s.model,
		Choices: []chatcompletions.ChunkChoice{{Index: 0}},
	}
}

// HandleEvent processes one upstream event and returns the client chunks it
// produces.
func (s *ChatCompletionsFromResponses) HandleEvent(event *responses.StreamEvent) []*chatcompletions.StreamChunk {
	switch event.Type {
	case "response.created":
		if event.Response != nil {
			s.id = event.Response.ID
			s.model = event.Response.Model
		}
		return nil

	case "response.output_text.delta":
		if event.Delta == "" {
			return nil
		}
		chunk := s.baseChunk()
		chunk.Choices[0].Delta = chatcompletions.Delta{Content: event.Delta}
		return []*chatcompletions.StreamChunk{&chunk}

	case "response.reasoning_summary_text.delta":
		if event.Delta == "" {
			return nil
		}
		chunk := s.baseChunk()
		chunk.Choices[0].Delta = chatcompletions.Delta{ReasoningContent: event.Delta}
		return []*chatcompletions.StreamChunk{&chunk}

	case "response.output_item.added":
		if event.Item == nil || event.Item.Type != "function_call" {
			return nil
		}
		toolCallIndex := s.nextToolCallIndex
		s.nextToolCallIndex++
		s.toolCallIndexByOutputIndex[event.OutputIndex] = toolCallIndex

		callID := event.Item.CallID
		if callID == "" {
			callID = event.Item.ID
		}

		chunk := s.baseChunk()
		chunk.Choices[0].Delta = chatcompletions.Delta{
			ToolCalls: []chatcompletions.ToolCallDelta{{
				Index: toolCallIndex,
				ID:    callID,
				Type:  "function",
				Function: &chatcompletions.ToolCallFunctionDelta{
					Name:      event.Item.Name,
					Arguments: event.Item.Arguments,
				},
			}},
		}
		return []*chatcompletions.StreamChunk{&chunk}

	case "response.function_call_arguments.delta":
		toolCallIndex, ok := s.toolCallIndexByOutputIndex[event.OutputIndex]
		if !ok {
			return nil
		}
		chunk := s.baseChunk()
		chunk.Choices[0].Delta = chatcompletions.Delta{
			ToolCalls: []chatcompletions.ToolCallDelta{{
				Index:    toolCallIndex,
				Function: &chatcompletions.ToolCallFunctionDelta{Arguments: event.Delta},
			}},
		}
		return []*chatcompletions.StreamChunk{&chunk}

	case "response.completed", "response.incomplete":
		finishReason := "stop"
		if len(s.toolCallIndexByOutputIndex) > 0 {
			finishReason = "tool_calls"
		}
		chunk := s.baseChunk()
		chunk.Choices[0].FinishReason = finishReason
		if event.Response != nil && event.Response.Usage != nil {
			chunk.Usage = &chatcompletions.Usage{
				PromptTokens:     event.Response.Usage.InputTokens,
				CompletionTokens: event.Response.Usage.OutputTokens,
				TotalTokens:      event.Response.Usage.TotalTokens,
			}
		}
		s.done = true
		return []*chatcompletions.StreamChunk{&chunk}

	case "response.failed", "error":
		s.done = true
		return nil

	default:
		return nil
	}
}
