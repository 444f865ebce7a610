package stream

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/copilot-gateway/gateway/pkg/dialect/anthropicmsg"
	"github.com/copilot-gateway/gateway/pkg/dialect/responses"
	"github.com/copilot-gateway/gateway/pkg/translate"
)

// functionCallState tracks one in-flight tool_use block while its arguments
// stream in, keyed by the upstream output_index (spec §4.4.1).
type functionCallState struct {
	blockIndex int
	toolCallID string
	name       string
}

// AnthropicFromResponses is the Anthropic-client, Responses-upstream stream
// translator (spec §4.4.1–§4.4.3). One instance per request; owned by a
// single goroutine; never shared or locked (spec §5).
type AnthropicFromResponses struct {
	messageStartSent bool
	messageCompleted bool

	nextContentBlockIndex int
	blockIndexByKey       map[string]int
	openBlocks            map[int]bool
	blockHasDelta         map[int]bool

	currentResponseID        string
	currentModel             string
	initialInputTokens       int
	initialInputCachedTokens int

	functionCallStateByOutputIndex  map[int]*functionCallState
	functionCallOutputIndexByItemID map[string]int
}

// NewAnthropicFromResponses constructs a fresh translator for one stream.
func NewAnthropicFromResponses() *AnthropicFromResponses {
	return &AnthropicFromResponses{
		blockIndexByKey:                 make(map[string]int),
		openBlocks:                      make(map[int]bool),
		blockHasDelta:                   make(map[int]bool),
		functionCallStateByOutputIndex:  make(map[int]*functionCallState),
		functionCallOutputIndexByItemID: make(map[string]int),
	}
}

// Run drives src to completion, invoking emit for every client event the
// translator produces, in order. Returns when the stream completes
// (successfully or via a terminal error event) or ctx-equivalent cancellation
// surfaces as a read error from src.
func (s *AnthropicFromResponses) Run(src EventSource, emit func(anthropicmsg.StreamEvent)) error {
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
		var event responses.StreamEvent
		if unmarshalErr := json.Unmarshal([]byte(raw.Data), &event); unmarshalErr != nil {
			// A malformed individual event is a recoverable translation
			// parse failure (spec §7c): skip it and keep reading.
			continue
		}
		for _, ev := range s.HandleEvent(&event) {
			emit(ev)
		}
	}
	return nil
}

// HandleEvent processes one upstream event and returns the client events it
// produces, in emission order. This is the (state, event) -> []client_event
// shape spec §9's design note prescribes.
func (s *AnthropicFromResponses) HandleEvent(event *responses.StreamEvent) []anthropicmsg.StreamEvent {
	switch event.Type {
	case "response.created":
		s.captureInitialMetadata(event)
		return s.ensureMessageStart()

	case "response.output_text.delta":
		return s.handleOutputTextDelta(event)

	case "response.output_text.done":
		return s.handleOutputTextDone(event)

	case "response.reasoning_summary_text.delta":
		return s.handleReasoningSummaryDelta(event)

	case "response.reasoning_summary_part.done":
		return s.handleReasoningSummaryPartDone(event)

	case "response.output_item.added":
		return s.handleOutputItemAdded(event)

	case "response.output_item.done":
		return s.handleOutputItemDone(event)

	case "response.function_call_arguments.delta":
		return s.handleFunctionCallArgumentsDelta(event)

	case "response.function_call_arguments.done":
		return s.handleFunctionCallArgumentsDone(event)

	case "response.completed", "response.incomplete":
		return s.handleTerminal(event)

	case "response.failed":
		return s.handleFailed(event)

	case "error":
		return s.handleError(event)

	default:
		return nil
	}
}

func blockKey(outputIndex, contentIndex int) string {
	return fmt.Sprintf("%d:%d", outputIndex, contentIndex)
}

func (s *AnthropicFromResponses) allocateBlockIndex(key string) (int, bool) {
	if idx, ok := s.blockIndexByKey[key]; ok {
		return idx, false
	}
	idx := s.nextContentBlockIndex
	s.nextContentBlockIndex++
	s.blockIndexByKey[key] = idx
	return idx, true
}

func (s *AnthropicFromResponses) captureInitialMetadata(event *responses.StreamEvent) {
	if event.Response == nil {
		return
	}
	s.currentResponseID = event.Response.ID
	s.currentModel = event.Response.Model
	if event.Response.Usage != nil {
		s.initialInputTokens = event.Response.Usage.InputTokens
		if event.Response.Usage.InputTokensDetails != nil {
			s.initialInputCachedTokens = event.Response.Usage.InputTokensDetails.CachedTokens
		}
	}
}

// ensureMessageStart emits message_start exactly once, lazily, on whichever
// event arrives first (spec §4.4.3 step 1).
func (s *AnthropicFromResponses) ensureMessageStart() []anthropicmsg.StreamEvent {
	if s.messageStartSent {
		return nil
	}
	s.messageStartSent = true

	usage := anthropicmsg.Usage{
		InputTokens:  s.initialInputTokens - s.initialInputCachedTokens,
		OutputTokens: 0,
	}
	if s.initialInputCachedTokens > 0 {
		cached := s.initialInputCachedTokens
		usage.CacheCreationInputTokens = &cached
	}

	return []anthropicmsg.StreamEvent{{
		Type: "message_start",
		Payload: anthropicmsg.MessageStart{
			Type: "message_start",
			Message: anthropicmsg.MessageStartBody{
				ID:      s.currentResponseID,
				Type:    "message",
				Role:    "assistant",
				Model:   s.currentModel,
				Content: []anthropicmsg.ContentBlock{},
				Usage:   usage,
			},
		},
	}}
}

func (s *AnthropicFromResponses) openBlock(index int, block anthropicmsg.ContentBlock) anthropicmsg.StreamEvent {
	s.openBlocks[index] = true
	return anthropicmsg.StreamEvent{
		Type: "content_block_start",
		Payload: anthropicmsg.ContentBlockStart{
			Type:         "content_block_start",
			Index:        index,
			ContentBlock: block,
		},
	}
}

func (s *AnthropicFromResponses) closeBlock(index int) anthropicmsg.StreamEvent {
	delete(s.openBlocks, index)
	return anthropicmsg.StreamEvent{
		Type:    "content_block_stop",
		Payload: anthropicmsg.ContentBlockStop{Type: "content_block_stop", Index: index},
	}
}

func textDelta(index int, text string) anthropicmsg.StreamEvent {
	return anthropicmsg.StreamEvent{
		Type: "content_block_delta",
		Payload: anthropicmsg.ContentBlockDelta{
			Type:  "content_block_delta",
			Index: index,
			Delta: anthropicmsg.Delta{Type: "text_delta", Text: text},
		},
	}
}

func thinkingDelta(index int, thinking string) anthropicmsg.StreamEvent {
	return anthropicmsg.StreamEvent{
		Type: "content_block_delta",
		Payload: anthropicmsg.ContentBlockDelta{
			Type:  "content_block_delta",
			Index: index,
			Delta: anthropicmsg.Delta{Type: "thinking_delta", Thinking: thinking},
		},
	}
}

func signatureDelta(index int, signature string) anthropicmsg.StreamEvent {
	return anthropicmsg.StreamEvent{
		Type: "content_block_delta",
		Payload: anthropicmsg.ContentBlockDelta{
			Type:  "content_block_delta",
			Index: index,
			Delta: anthropicmsg.Delta{Type: "signature_delta", Signature: signature},
		},
	}
}

func inputJSONDelta(index int, partialJSON string) anthropicmsg.StreamEvent {
	return anthropicmsg.StreamEvent{
		Type: "content_block_delta",
		Payload: anthropicmsg.ContentBlockDelta{
			Type:  "content_block_delta",
			Index: index,
			Delta: anthropicmsg.Delta{Type: "input_json_delta", PartialJSON: partialJSON},
		},
	}
}

// handleOutputTextDelta implements spec §4.4.3 step 2's delta half.
func (s *AnthropicFromResponses) handleOutputTextDelta(event *responses.StreamEvent) []anthropicmsg.StreamEvent {
	var out []anthropicmsg.StreamEvent
	out = append(out, s.ensureMessageStart()...)

	if event.Delta == "" {
		return out
	}

	key := blockKey(event.OutputIndex, event.ContentIndex)
	index, isNew := s.allocateBlockIndex(key)
	if isNew {
		out = append(out, s.openBlock(index, anthropicmsg.TextBlock{Text: ""}))
	}
	out = append(out, textDelta(index, event.Delta))
	s.blockHasDelta[index] = true
	return out
}

// handleOutputTextDone implements spec §4.4.3 step 2's done half.
func (s *AnthropicFromResponses) handleOutputTextDone(event *responses.StreamEvent) []anthropicmsg.StreamEvent {
	var out []anthropicmsg.StreamEvent
	out = append(out, s.ensureMessageStart()...)

	key := blockKey(event.OutputIndex, event.ContentIndex)
	index, isNew := s.allocateBlockIndex(key)
	if isNew {
		out = append(out, s.openBlock(index, anthropicmsg.TextBlock{Text: ""}))
	}
	if !s.blockHasDelta[index] && event.Text != "" {
		out = append(out, textDelta(index, event.Text))
	}
	out = append(out, s.closeBlock(index))
	return out
}

// handleReasoningSummaryDelta implements spec §4.4.3 step 3's delta half.
// Reasoning summary blocks are keyed by (output_index, 0) — a reasoning item
// carries a single thinking block regardless of how many summary parts it
// emits.
func (s *AnthropicFromResponses) handleReasoningSummaryDelta(event *responses.StreamEvent) []anthropicmsg.StreamEvent {
	var out []anthropicmsg.StreamEvent
	out = append(out, s.ensureMessageStart()...)

	if event.Delta == "" {
		return out
	}

	key := blockKey(event.OutputIndex, 0)
	index, isNew := s.allocateBlockIndex(key)
	if isNew {
		out = append(out, s.openBlock(index, anthropicmsg.ThinkingBlock{}))
	}
	out = append(out, thinkingDelta(index, event.Delta))
	s.blockHasDelta[index] = true
	return out
}

// handleReasoningSummaryPartDone implements spec §4.4.3 step 3's
// summary_part.done half.
func (s *AnthropicFromResponses) handleReasoningSummaryPartDone(event *responses.StreamEvent) []anthropicmsg.StreamEvent {
	var out []anthropicmsg.StreamEvent
	out = append(out, s.ensureMessageStart()...)

	key := blockKey(event.OutputIndex, 0)
	index, isNew := s.allocateBlockIndex(key)
	if isNew {
		out = append(out, s.openBlock(index, anthropicmsg.ThinkingBlock{}))
	}
	if !s.blockHasDelta[index] && event.Part != nil && event.Part.Text != "" {
		out = append(out, thinkingDelta(index, event.Part.Text))
		s.blockHasDelta[index] = true
	}
	return out
}

// handleOutputItemAdded implements spec §4.4.3 step 4's first half: a
// function_call item allocates its tool_use block immediately.
func (s *AnthropicFromResponses) handleOutputItemAdded(event *responses.StreamEvent) []anthropicmsg.StreamEvent {
	var out []anthropicmsg.StreamEvent
	out = append(out, s.ensureMessageStart()...)

	if event.Item == nil || event.Item.Type != "function_call" {
		return out
	}

	key := blockKey(event.OutputIndex, 0)
	index, _ := s.allocateBlockIndex(key)

	callID := event.Item.CallID
	if callID == "" {
		callID = event.Item.ID
	}
	if callID == "" {
		callID = fmt.Sprintf("tool_call_%d", index)
	}

	st := &functionCallState{blockIndex: index, toolCallID: callID, name: event.Item.Name}
	s.functionCallStateByOutputIndex[event.OutputIndex] = st
	if event.Item.ID != "" {
		s.functionCallOutputIndexByItemID[event.Item.ID] = event.OutputIndex
	}

	out = append(out, s.openBlock(index, anthropicmsg.ToolUseBlock{
		ID:    callID,
		Name:  event.Item.Name,
		Input: map[string]any{},
	}))

	if event.Item.Arguments != "" {
		out = append(out, inputJSONDelta(index, event.Item.Arguments))
		s.blockHasDelta[index] = true
	}

	return out
}

func (s *AnthropicFromResponses) resolveFunctionCallState(event *responses.StreamEvent) *functionCallState {
	if st, ok := s.functionCallStateByOutputIndex[event.OutputIndex]; ok {
		return st
	}
	if event.ItemID != "" {
		if outputIndex, ok := s.functionCallOutputIndexByItemID[event.ItemID]; ok {
			return s.functionCallStateByOutputIndex[outputIndex]
		}
	}
	return nil
}

// handleFunctionCallArgumentsDelta implements spec §4.4.3 step 4's
// arguments.delta half.
func (s *AnthropicFromResponses) handleFunctionCallArgumentsDelta(event *responses.StreamEvent) []anthropicmsg.StreamEvent {
	var out []anthropicmsg.StreamEvent
	out = append(out, s.ensureMessageStart()...)

	st := s.resolveFunctionCallState(event)
	if st == nil {
		return out
	}
	out = append(out, inputJSONDelta(st.blockIndex, event.Delta))
	s.blockHasDelta[st.blockIndex] = true
	return out
}

// handleFunctionCallArgumentsDone implements spec §4.4.3 step 4's
// arguments.done half.
func (s *AnthropicFromResponses) handleFunctionCallArgumentsDone(event *responses.StreamEvent) []anthropicmsg.StreamEvent {
	var out []anthropicmsg.StreamEvent
	out = append(out, s.ensureMessageStart()...)

	st := s.resolveFunctionCallState(event)
	if st == nil {
		return out
	}
	if !s.blockHasDelta[st.blockIndex] && event.Arguments != "" {
		out = append(out, inputJSONDelta(st.blockIndex, event.Arguments))
	}
	out = append(out, s.closeBlock(st.blockIndex))
	delete(s.functionCallStateByOutputIndex, event.OutputIndex)
	return out
}

// handleOutputItemDone implements spec §4.4.3 step 3's reasoning-item close
// (the only output_item.done case C4 handles explicitly; function_call
// closure is driven by function_call_arguments.done instead).
func (s *AnthropicFromResponses) handleOutputItemDone(event *responses.StreamEvent) []anthropicmsg.StreamEvent {
	var out []anthropicmsg.StreamEvent
	out = append(out, s.ensureMessageStart()...)

	if event.Item == nil || event.Item.Type != "reasoning" {
		return out
	}

	key := blockKey(event.OutputIndex, 0)
	index, isNew := s.allocateBlockIndex(key)
	if isNew {
		out = append(out, s.openBlock(index, anthropicmsg.ThinkingBlock{}))
	}
	if event.Item.EncryptedContent != "" {
		out = append(out, signatureDelta(index, event.Item.EncryptedContent))
	}
	out = append(out, s.closeBlock(index))
	return out
}

// closeAllOpenBlocks closes every still-open block, in ascending index order,
// used by the terminal handlers (spec §4.4.3 step 5).
func (s *AnthropicFromResponses) closeAllOpenBlocks() []anthropicmsg.StreamEvent {
	var out []anthropicmsg.StreamEvent
	indices := make([]int, 0, len(s.openBlocks))
	for idx := range s.openBlocks {
		indices = append(indices, idx)
	}
	// Stable, deterministic order (indices were allocated monotonically).
	for i := 0; i < len(indices); i++ {
		for j := i + 1; j < len(indices); j++ {
			if indices[j] < indices[i] {
				indices[i], indices[j] = indices[j], indices[i]
			}
		}
	}
	for _, idx := range indices {
		out = append(out, s.closeBlock(idx))
	}
	return out
}

// handleTerminal implements spec §4.4.3 step 5 (response.completed /
// response.incomplete).
func (s *AnthropicFromResponses) handleTerminal(event *responses.StreamEvent) []anthropicmsg.StreamEvent {
	var out []anthropicmsg.StreamEvent
	out = append(out, s.ensureMessageStart()...)
	out = append(out, s.closeAllOpenBlocks()...)

	if event.Response == nil {
		out = append(out, anthropicmsg.StreamEvent{
			Type: "message_delta",
			Payload: anthropicmsg.MessageDelta{
				Type:  "message_delta",
				Delta: anthropicmsg.MessageDeltaFields{},
			},
		})
		out = append(out, s.messageStop())
		return out
	}

	incompleteReason := ""
	if event.Response.IncompleteDetails != nil {
		incompleteReason = event.Response.IncompleteDetails.Reason
	}
	stopReason := translate.AnthropicStopReasonFromResponses(event.Response.Status, incompleteReason)

	var usage *anthropicmsg.Usage
	if event.Response.Usage != nil {
		usage = &anthropicmsg.Usage{
			InputTokens:  event.Response.Usage.InputTokens,
			OutputTokens: event.Response.Usage.OutputTokens,
		}
	}

	out = append(out, anthropicmsg.StreamEvent{
		Type: "message_delta",
		Payload: anthropicmsg.MessageDelta{
			Type:  "message_delta",
			Delta: anthropicmsg.MessageDeltaFields{StopReason: stopReason},
			Usage: usage,
		},
	})
	out = append(out, s.messageStop())
	return out
}

func (s *AnthropicFromResponses) messageStop() anthropicmsg.StreamEvent {
	s.messageCompleted = true
	return anthropicmsg.StreamEvent{Type: "message_stop", Payload: anthropicmsg.MessageStop{Type: "message_stop"}}
}

// handleFailed implements spec §4.4.3 step 6's response.failed half.
func (s *AnthropicFromResponses) handleFailed(event *responses.StreamEvent) []anthropicmsg.StreamEvent {
	var out []anthropicmsg.StreamEvent
	out = append(out, s.ensureMessageStart()...)
	out = append(out, s.closeAllOpenBlocks()...)

	message := "response failed"
	if event.Error != nil && event.Error.Message != "" {
		message = event.Error.Message
	}
	out = append(out, s.errorEvent(message))
	s.messageCompleted = true
	return out
}

// handleError implements spec §4.4.3 step 6's bare error-event half: it does
// not close blocks first, since a bare error event is assumed fatal and the
// upstream may not have reported which blocks were open.
func (s *AnthropicFromResponses) handleError(event *responses.StreamEvent) []anthropicmsg.StreamEvent {
	var out []anthropicmsg.StreamEvent
	out = append(out, s.ensureMessageStart()...)

	message := "stream error"
	if event.Error != nil && event.Error.Message != "" {
		message = event.Error.Message
	}
	out = append(out, s.errorEvent(message))
	s.messageCompleted = true
	return out
}

func (s *AnthropicFromResponses) errorEvent(message string) anthropicmsg.StreamEvent {
	return anthropicmsg.StreamEvent{
		Type: "error",
		Payload: anthropicmsg.ErrorEvent{
			Type:  "error",
			Error: anthropicmsg.ErrorBody{Type: "api_error", Message: message},
		},
	}
}

// handlePrematureEOF implements spec §4.4.3 step 7: if the upstream stream
// ends without ever reaching a terminal event, synthesise one.
func (s *AnthropicFromResponses) handlePrematureEOF() []anthropicmsg.StreamEvent {
	if s.messageCompleted {
		return nil
	}
	var out []anthropicmsg.StreamEvent
	out = append(out, s.ensureMessageStart()...)
	out = append(out, s.closeAllOpenBlocks()...)
	out = append(out, s.errorEvent("Responses stream ended without completion"))
	s.messageCompleted = true
	return out
}
