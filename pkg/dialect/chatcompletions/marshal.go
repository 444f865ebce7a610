package chatcompletions

import "encoding/json"

// UnmarshalJSON decodes Message.Content into the same string/[]ContentPart
// shapes the translation package switches on, rather than leaving it as the
// raw string/[]interface{} a generic json.Unmarshal into an any field would
// produce: the latter never matches a []ContentPart type switch, so an
// array-shaped content value would silently be treated as empty.
func (m *Message) UnmarshalJSON(data []byte) error {
	var aux struct {
		Role            string          `json:"role"`
		Content         json.RawMessage `json:"content"`
		Name            string          `json:"name,omitempty"`
		ToolCalls       []ToolCall      `json:"tool_calls,omitempty"`
		ToolCallID      string          `json:"tool_call_id,omitempty"`
		ReasoningText   string          `json:"reasoning_text,omitempty"`
		ReasoningOpaque string          `json:"reasoning_opaque,omitempty"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	m.Role = aux.Role
	m.Name = aux.Name
	m.ToolCalls = aux.ToolCalls
	m.ToolCallID = aux.ToolCallID
	m.ReasoningText = aux.ReasoningText
	m.ReasoningOpaque = aux.ReasoningOpaque

	if len(aux.Content) == 0 {
		return nil
	}

	var text string
	if err := json.Unmarshal(aux.Content, &text); err == nil {
		m.Content = text
		return nil
	}

	var parts []ContentPart
	if err := json.Unmarshal(aux.Content, &parts); err != nil {
		return err
	}
	m.Content = parts
	return nil
}
