package anthropicmsg

import "encoding/json"

// MarshalJSON injects the "type" discriminator the Anthropic wire format
// expects alongside each block's own fields. Each method marshals through a
// locally-defined alias rather than embedding the block type itself: since
// the block type already implements MarshalJSON, embedding it directly would
// promote that same method onto the wrapper struct and recurse forever.
func (b TextBlock) MarshalJSON() ([]byte, error) {
	type alias TextBlock
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: "text", alias: alias(b)})
}

func (b ImageBlock) MarshalJSON() ([]byte, error) {
	type alias ImageBlock
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: "image", alias: alias(b)})
}

func (b ToolUseBlock) MarshalJSON() ([]byte, error) {
	type alias ToolUseBlock
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: "tool_use", alias: alias(b)})
}

func (b ToolResultBlock) MarshalJSON() ([]byte, error) {
	type alias ToolResultBlock
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: "tool_result", alias: alias(b)})
}

// UnmarshalJSON decodes ToolResultBlock.Content, which is either a bare
// string or an array of content-block parts (commonly text blocks), into the
// same string/[]ContentBlock shapes flattenToolResultContent expects --
// mirroring Message's content handling rather than leaving Content as the
// raw []interface{}/map[string]interface{} generic json.Unmarshal produces.
func (b *ToolResultBlock) UnmarshalJSON(data []byte) error {
	var aux struct {
		ToolUseID string          `json:"tool_use_id"`
		Content   json.RawMessage `json:"content"`
		IsError   bool            `json:"is_error,omitempty"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	b.ToolUseID = aux.ToolUseID
	b.IsError = aux.IsError

	if len(aux.Content) == 0 {
		return nil
	}

	var text string
	if err := json.Unmarshal(aux.Content, &text); err == nil {
		b.Content = text
		return nil
	}

	var rawBlocks []json.RawMessage
	if err := json.Unmarshal(aux.Content, &rawBlocks); err != nil {
		return err
	}
	blocks := make([]ContentBlock, 0, len(rawBlocks))
	for _, raw := range rawBlocks {
		block, err := decodeContentBlock(raw)
		if err != nil {
			return err
		}
		blocks = append(blocks, block)
	}
	b.Content = blocks
	return nil
}

func (b ThinkingBlock) MarshalJSON() ([]byte, error) {
	type alias ThinkingBlock
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: "thinking", alias: alias(b)})
}

func (b OtherBlock) MarshalJSON() ([]byte, error) {
	if len(b.Raw) > 0 {
		return b.Raw, nil
	}
	return json.Marshal(map[string]string{"type": b.Type})
}

type rawBlock struct {
	Type string `json:"type"`
}

// decodeContentBlock decodes one element of a content array into the concrete
// ContentBlock variant matching its "type" discriminator, falling back to
// OtherBlock for anything unrecognized (design note: unknown shapes pass
// through as opaque records rather than failing translation).
func decodeContentBlock(raw json.RawMessage) (ContentBlock, error) {
	var tag rawBlock
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, err
	}
	switch tag.Type {
	case "text":
		var b TextBlock
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	case "image":
		var b ImageBlock
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	case "tool_use":
		var b ToolUseBlock
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	case "tool_result":
		var b ToolResultBlock
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	case "thinking":
		var b ThinkingBlock
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	default:
		return OtherBlock{Type: tag.Type, Raw: append(json.RawMessage{}, raw...)}, nil
	}
}

// UnmarshalJSON decodes Message.Content, which is either a bare string
// (wrapped as a single TextBlock) or the tagged-union content-block array.
func (m *Message) UnmarshalJSON(data []byte) error {
	var aux struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	m.Role = aux.Role
	if len(aux.Content) == 0 {
		return nil
	}

	var text string
	if err := json.Unmarshal(aux.Content, &text); err == nil {
		m.Content = []ContentBlock{TextBlock{Text: text}}
		return nil
	}

	var rawBlocks []json.RawMessage
	if err := json.Unmarshal(aux.Content, &rawBlocks); err != nil {
		return err
	}
	m.Content = make([]ContentBlock, 0, len(rawBlocks))
	for _, raw := range rawBlocks {
		block, err := decodeContentBlock(raw)
		if err != nil {
			return err
		}
		m.Content = append(m.Content, block)
	}
	return nil
}

// MarshalJSON re-emits Message with its tagged content blocks.
func (m Message) MarshalJSON() ([]byte, error) {
	aux := struct {
		Role    string         `json:"role"`
		Content []ContentBlock `json:"content"`
	}{Role: m.Role, Content: m.Content}
	return json.Marshal(aux)
}

// DecodeSystemBlocks decodes Request.System when it is given as an array of
// {type:"text", text} blocks rather than a plain string.
func DecodeSystemBlocks(system any) ([]SystemBlock, bool) {
	raw, ok := system.([]any)
	if !ok {
		return nil, false
	}
	blocks := make([]SystemBlock, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		text, _ := m["text"].(string)
		blocks = append(blocks, SystemBlock{Type: "text", Text: text})
	}
	return blocks, true
}
