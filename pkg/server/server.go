// Package server is C6: the chi-based HTTP surface wiring the dialect
// translators (C2-C4), routing (C5), upstream client (C7), model catalog
// (C8), configuration (C9), observability (C11), and token counter (C12)
// into the four endpoints spec.md §6 names. Grounded on the teacher's
// examples/chi-server/main.go router wiring, generalized from a single
// /generate route to the gateway's four dialect endpoints.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/otel/trace"

	"github.com/copilot-gateway/gateway/pkg/dialect/chatcompletions"
	"github.com/copilot-gateway/gateway/pkg/dialect/responses"
	"github.com/copilot-gateway/gateway/pkg/gatewayconfig"
	"github.com/copilot-gateway/gateway/pkg/modelcatalog"
	"github.com/copilot-gateway/gateway/pkg/stream"
	"github.com/copilot-gateway/gateway/pkg/telemetry"
	"github.com/copilot-gateway/gateway/pkg/tokencount"
	"github.com/copilot-gateway/gateway/pkg/upstream"
)

// UpstreamClient is the subset of C7 the server drives. Matches spec.md §6's
// UpstreamClient interface exactly.
type UpstreamClient interface {
	CreateResponses(ctx context.Context, payload *responses.Request, opts upstream.RequestOptions) (*upstream.ResponsesResult, stream.EventSource, error)
	CreateChatCompletions(ctx context.Context, payload *chatcompletions.Request) (*upstream.ChatCompletionsResult, stream.EventSource, error)
}

// Catalog is the subset of C8 the server consumes directly (routing itself
// only needs SupportsResponses; the server also needs Lookup for the
// /v1/responses endpoint-support check and unknown-model rejection).
type Catalog interface {
	SupportsResponses(model string) bool
	Lookup(id string) (modelcatalog.Model, bool)
}

// Config wires a Server's collaborators.
type Config struct {
	Upstream     UpstreamClient
	Catalog      Catalog
	Settings     *gatewayconfig.Config
	TokenCounter tokencount.TokenCounter
	Telemetry    *telemetry.Settings
	RequestTimeout time.Duration
}

// Server holds the wired collaborators every handler closes over.
type Server struct {
	upstream     UpstreamClient
	catalog      Catalog
	settings     *gatewayconfig.Config
	tokenCounter tokencount.TokenCounter
	telemetry    *telemetry.Settings
	tracer       trace.Tracer
	timeout      time.Duration
}

// New constructs a Server. A nil TokenCounter defaults to the heuristic
// implementation so /v1/messages/count_tokens is runnable standalone.
func New(cfg Config) *Server {
	counter := cfg.TokenCounter
	if counter == nil {
		counter = tokencount.HeuristicCounter{}
	}
	settings := cfg.Telemetry
	if settings == nil {
		settings = telemetry.DefaultSettings()
	}
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Server{
		upstream:     cfg.Upstream,
		catalog:      cfg.Catalog,
		settings:     cfg.Settings,
		tokenCounter: counter,
		telemetry:    settings,
		tracer:       telemetry.GetTracer(settings),
		timeout:      timeout,
	}
}

// Router builds the chi router exposing the four dialect endpoints.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"*"},
	}))

	r.Post("/v1/chat/completions", s.handleChatCompletions)
	r.Post("/v1/messages", s.handleMessages)
	r.Post("/v1/messages/count_tokens", s.handleCountTokens)
	r.Post("/v1/responses", s.handleResponsesPassthrough)

	return r
}
