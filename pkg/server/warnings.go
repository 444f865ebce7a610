package server

import (
	"go.uber.org/zap"

	"github.com/copilot-gateway/gateway/pkg/gatewaylog"
	"github.com/copilot-gateway/gateway/pkg/translate"
)

// logTranslationWarnings logs every translation warning at warn, per
// SPEC_FULL.md §4.11/§7c: parse failures are recovered, never abort the
// request, but the fallback taken is worth surfacing.
func logTranslationWarnings(warnings []translate.Warning) {
	for _, w := range warnings {
		gatewaylog.Warn("translation fallback applied",
			zap.String("field", w.Type),
			zap.String("detail", w.Message),
		)
	}
}
