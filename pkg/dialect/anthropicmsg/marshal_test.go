package anthropicmsg

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_UnmarshalJSON_BareStringContent(t *testing.T) {
	var msg Message
	err := json.Unmarshal([]byte(`{"role":"user","content":"hi"}`), &msg)
	require.NoError(t, err)

	assert.Equal(t, "user", msg.Role)
	require.Len(t, msg.Content, 1)
	text, ok := msg.Content[0].(TextBlock)
	require.True(t, ok, "expected a TextBlock, got %T", msg.Content[0])
	assert.Equal(t, "hi", text.Text)
}

func TestMessage_UnmarshalJSON_ContentBlockArray(t *testing.T) {
	var msg Message
	err := json.Unmarshal([]byte(`{"role":"assistant","content":[{"type":"text","text":"hello"},{"type":"tool_use","id":"t1","name":"lookup","input":{"q":"x"}}]}`), &msg)
	require.NoError(t, err)

	require.Len(t, msg.Content, 2)
	assert.Equal(t, TextBlock{Text: "hello"}, msg.Content[0])
	use, ok := msg.Content[1].(ToolUseBlock)
	require.True(t, ok)
	assert.Equal(t, "lookup", use.Name)
}

func TestMessage_UnmarshalJSON_EmptyContentLeavesNilSlice(t *testing.T) {
	var msg Message
	err := json.Unmarshal([]byte(`{"role":"user"}`), &msg)
	require.NoError(t, err)
	assert.Nil(t, msg.Content)
}

func TestToolResultBlock_UnmarshalJSON_StringContent(t *testing.T) {
	var block ToolResultBlock
	err := json.Unmarshal([]byte(`{"type":"tool_result","tool_use_id":"t1","content":"72F"}`), &block)
	require.NoError(t, err)

	assert.Equal(t, "t1", block.ToolUseID)
	assert.Equal(t, "72F", block.Content)
}

func TestToolResultBlock_UnmarshalJSON_ArrayContent(t *testing.T) {
	var block ToolResultBlock
	err := json.Unmarshal([]byte(`{"type":"tool_result","tool_use_id":"t1","content":[{"type":"text","text":"72F"}]}`), &block)
	require.NoError(t, err)

	parts, ok := block.Content.([]ContentBlock)
	require.True(t, ok, "expected []ContentBlock, got %T", block.Content)
	require.Len(t, parts, 1)
	assert.Equal(t, TextBlock{Text: "72F"}, parts[0])
}

func TestDecodeContentBlock_ToolResultInsideMessage(t *testing.T) {
	var msg Message
	err := json.Unmarshal([]byte(`{"role":"user","content":[{"type":"tool_result","tool_use_id":"t1","content":[{"type":"text","text":"72F"}]}]}`), &msg)
	require.NoError(t, err)

	require.Len(t, msg.Content, 1)
	tr, ok := msg.Content[0].(ToolResultBlock)
	require.True(t, ok)
	parts, ok := tr.Content.([]ContentBlock)
	require.True(t, ok)
	require.Len(t, parts, 1)
	assert.Equal(t, "72F", parts[0].(TextBlock).Text)
}

func TestBlockMarshalJSON_RoundTripsWithoutRecursing(t *testing.T) {
	blocks := []ContentBlock{
		TextBlock{Text: "hi"},
		ImageBlock{Source: ImageSource{Type: "base64", MediaType: "image/png", Data: "AA=="}},
		ToolUseBlock{ID: "t1", Name: "lookup", Input: map[string]any{"q": "x"}},
		ToolResultBlock{ToolUseID: "t1", Content: "72F"},
		ThinkingBlock{Thinking: "reasoning...", Signature: "sig"},
	}

	for _, b := range blocks {
		data, err := json.Marshal(b)
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, b.ContentType(), decoded["type"])
	}
}
