package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/copilot-gateway/gateway/pkg/gatewayerrors"
)

// errorBody is the invalid_request_error-shaped envelope spec.md §6/§7 asks
// every error response to carry.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// writeError maps a gatewayerrors kind to an HTTP status and writes the
// invalid_request_error/api_error-shaped body, per SPEC_FULL.md §7's
// concrete error-to-HTTP mapping (a, d).
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := "api_error"

	var upstreamErr gatewayerrors.UpstreamTransportError
	var invalidErr gatewayerrors.InvalidRequestError
	var protocolErr gatewayerrors.UpstreamProtocolError

	switch {
	case errors.As(err, &invalidErr):
		status = http.StatusBadRequest
		kind = "invalid_request_error"
	case errors.As(err, &upstreamErr):
		status = http.StatusBadGateway
		kind = "api_error"
	case errors.As(err, &protocolErr):
		status = http.StatusBadGateway
		kind = "api_error"
	}

	writeJSONError(w, status, kind, err.Error())
}

func writeJSONError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: errorDetail{Type: kind, Message: message}})
}

func invalidRequest(w http.ResponseWriter, message string) {
	writeJSONError(w, http.StatusBadRequest, "invalid_request_error", message)
}
