package handlers

import (
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"gala-votacao-app/internal/services"
	"gala-votacao-app/internal/telemetry"
)

// Votar trata POST /votar: registra um voto após a cadeia de guardas
// do serviço de votação.
func (a *API) Votar(w http.ResponseWriter, r *http.Request) {
	ctx, span := telemetry.StartSpan(r.Context(), "votar")
	defer span.End()

	var req services.RequisicaoVoto
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		responderErro(w, services.ErroValidacao("Dados inválidos"), a.debug)
		return
	}
	req.IPAddress = ExtrairIP(r)
	req.UserAgent = r.UserAgent()

	span.SetAttributes(
		attribute.Int("candidato_id", req.CandidatoID),
		attribute.Int("categoria_id", req.CategoriaID),
	)

	resposta, err := a.votacao.Votar(ctx, req)
	if err != nil {
		span.RecordError(err)
		responderErro(w, err, a.debug)
		return
	}

	responderSucesso(w, http.StatusCreated, "Voto registrado com sucesso! Obrigado por participar! 🎉", resposta,
		map[string]interface{}{"showConfetti": resposta.MostrarConfete})
}
