package server

import (
	"encoding/json"
	"net/http"

	"github.com/copilot-gateway/gateway/pkg/dialect/anthropicmsg"
	"github.com/copilot-gateway/gateway/pkg/sseutil"
)

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeAnthropicEvent frames one Anthropic-dialect stream event as
// `event: <type>` + `data: <json>`, per spec.md §6's Anthropic SSE framing.
func writeAnthropicEvent(sw *sseutil.Writer, ev anthropicmsg.StreamEvent) {
	data, _ := json.Marshal(ev.Payload)
	_ = sw.WriteNamedEvent(ev.Type, string(data))
}
