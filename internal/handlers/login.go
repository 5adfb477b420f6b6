package handlers

import (
	"encoding/json"
	"net/http"

	"gala-votacao-app/internal/services"
	"gala-votacao-app/internal/telemetry"
)

// Login trata POST /login: autentica o administrador e devolve o JWT.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := telemetry.StartSpan(r.Context(), "login")
	defer span.End()

	var req services.RequisicaoLogin
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		responderErro(w, services.ErroValidacao("Dados inválidos"), a.debug)
		return
	}
	req.IPAddress = ExtrairIP(r)
	req.UserAgent = r.UserAgent()

	resposta, err := a.auth.Login(ctx, &req)
	if err != nil {
		span.RecordError(err)
		responderErro(w, err, a.debug)
		return
	}

	responderSucesso(w, http.StatusOK, "Login realizado com sucesso", resposta, nil)
}
