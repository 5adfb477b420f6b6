package handlers

import (
	"log"
	"net/http"
	"time"
)

// Health trata GET /health: verifica a conexão com o banco.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	estado := map[string]interface{}{
		"status":    "ok",
		"database":  "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	}

	if err := a.store.Ping(r.Context()); err != nil {
		log.Printf("Health check falhou: %v", err)
		estado["status"] = "degraded"
		estado["database"] = "erro"
		responderJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"success": false,
			"message": "Serviço indisponível",
			"data":    estado,
		})
		return
	}

	responderSucesso(w, http.StatusOK, "OK", estado, nil)
}
