package server

import (
	"encoding/json"
	"net/http"

	"github.com/copilot-gateway/gateway/pkg/dialect/responses"
	"github.com/copilot-gateway/gateway/pkg/routing"
	"github.com/copilot-gateway/gateway/pkg/sseutil"
	"github.com/copilot-gateway/gateway/pkg/translate"
	"github.com/copilot-gateway/gateway/pkg/upstream"
)

// handleResponsesPassthrough implements POST /v1/responses (spec.md §6):
// C1's identity mapping, forwarded unchanged to the upstream after a single
// endpoint-support check against the catalog.
func (s *Server) handleResponsesPassthrough(w http.ResponseWriter, r *http.Request) {
	var req responses.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		invalidRequest(w, "malformed request body: "+err.Error())
		return
	}

	model, ok := s.catalog.Lookup(req.Model)
	if !ok || !model.SupportsEndpoint("/responses") {
		invalidRequest(w, "model does not support the responses endpoint: "+req.Model)
		return
	}
	tagUpstreamDialect(r.Context(), string(routing.DialectResponses))

	passthrough := translate.ResponsesPassthrough(&req)
	opts := routing.DeriveOptions(passthrough)
	result, events, err := s.upstream.CreateResponses(r.Context(), passthrough, upstream.RequestOptions{
		Vision:    opts.Vision,
		Initiator: opts.Initiator,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if events == nil {
		writeJSON(w, result.Response)
		return
	}
	defer events.Close()

	setSSEHeaders(w)
	flusher, _ := w.(http.Flusher)
	sw := sseutil.NewWriter(w)

	for {
		raw, err := events.Next()
		if raw != nil {
			_ = sw.WriteNamedEvent(raw.Event, raw.Data)
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err != nil {
			return
		}
	}
}
