package handlers

import (
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"gala-votacao-app/internal/telemetry"
)

// Dashboard trata GET /dashboard: estatísticas agregadas da votação.
// ?include_monthly=true inclui a série de 30 dias.
func (a *API) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := telemetry.StartSpan(r.Context(), "dashboard")
	defer span.End()

	inicio := time.Now()
	incluirMensal := r.URL.Query().Get("include_monthly") == "true"
	span.SetAttributes(attribute.Bool("incluir_mensal", incluirMensal))

	stats, err := a.dashboard.ObterEstatisticas(ctx, incluirMensal)
	if err != nil {
		span.RecordError(err)
		responderErro(w, err, a.debug)
		return
	}

	responderSucesso(w, http.StatusOK, "Estatísticas obtidas com sucesso", stats,
		map[string]interface{}{
			"generated_in": fmt.Sprintf("%.2fms", float64(time.Since(inicio).Microseconds())/1000),
			"timestamp":    time.Now().Format(time.RFC3339),
		})
}
