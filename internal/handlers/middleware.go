package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"gala-votacao-app/internal/metrics"
)

type gravadorStatus struct {
	http.ResponseWriter
	status int
}

func (g *gravadorStatus) WriteHeader(status int) {
	g.status = status
	g.ResponseWriter.WriteHeader(status)
}

// MetricsMiddleware registra contagem e duração de cada requisição
// no Prometheus, rotulada pelo template da rota.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inicio := time.Now()
		gravador := &gravadorStatus{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(gravador, r)

		endpoint := r.URL.Path
		if rota := mux.CurrentRoute(r); rota != nil {
			if template, err := rota.GetPathTemplate(); err == nil {
				endpoint = template
			}
		}

		metrics.RecordRequest(endpoint, r.Method,
			strconv.Itoa(gravador.status), time.Since(inicio).Seconds())
	})
}
