package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/copilot-gateway/gateway/pkg/dialect/responses"
)

type fakeCatalog struct {
	responsesModels map[string]bool
}

func (f fakeCatalog) SupportsResponses(model string) bool {
	return f.responsesModels[model]
}

func TestSelectUpstreamDialect(t *testing.T) {
	catalog := fakeCatalog{responsesModels: map[string]bool{"gpt-5": true}}

	assert.Equal(t, DialectResponses, SelectUpstreamDialect(catalog, "gpt-5"))
	assert.Equal(t, DialectChatCompletions, SelectUpstreamDialect(catalog, "claude-sonnet-4"))
}

func TestDeriveOptions_NoVisionUserInitiator(t *testing.T) {
	req := &responses.Request{
		Input: []any{
			responses.MessageItem{Type: "message", Role: "user", Content: []any{
				responses.InputTextContent{Type: "input_text", Text: "hi"},
			}},
		},
	}

	opts := DeriveOptions(req)
	assert.False(t, opts.Vision)
	assert.Equal(t, "user", opts.Initiator)
}

func TestDeriveOptions_VisionContentDetected(t *testing.T) {
	req := &responses.Request{
		Input: []any{
			responses.MessageItem{Type: "message", Role: "user", Content: []any{
				responses.InputImageContent{Type: "input_image", ImageURL: "data:image/png;base64,xx"},
			}},
		},
	}

	assert.True(t, DeriveOptions(req).Vision)
}

func TestDeriveOptions_AssistantRoleIsAgentInitiator(t *testing.T) {
	req := &responses.Request{
		Input: []any{
			responses.MessageItem{Type: "message", Role: "assistant", Content: "hello"},
		},
	}

	assert.Equal(t, "agent", DeriveOptions(req).Initiator)
}

func TestDeriveOptions_NonMessageItemIsAgentInitiator(t *testing.T) {
	req := &responses.Request{
		Input: []any{
			struct {
				Type string `json:"type"`
			}{Type: "function_call_output"},
		},
	}

	assert.Equal(t, "agent", DeriveOptions(req).Initiator)
}

func TestDeriveOptions_NonListInputIsUser(t *testing.T) {
	req := &responses.Request{Input: "just a plain string prompt"}

	opts := DeriveOptions(req)
	assert.False(t, opts.Vision)
	assert.Equal(t, "user", opts.Initiator)
}
