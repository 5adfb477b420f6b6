package handlers

import (
	"net/http"
	"strconv"

	"gala-votacao-app/internal/services"
	"gala-votacao-app/internal/telemetry"
)

// Listar trata GET /listar: candidatos com filtros, ordenação e
// paginação vindos da query string.
func (a *API) Listar(w http.ResponseWriter, r *http.Request) {
	ctx, span := telemetry.StartSpan(r.Context(), "listar_candidatos")
	defer span.End()

	q := r.URL.Query()
	params := services.ParametrosListagem{
		ID:           lerInt(q.Get("id")),
		CategoriaID:  lerInt(q.Get("categoria_id")),
		Ativo:        lerBool(q.Get("ativo")),
		Busca:        q.Get("search"),
		OrdenarPor:   q.Get("order_by"),
		Direcao:      q.Get("order_dir"),
		Preview:      q.Get("preview") == "true",
		IncluirStats: q.Get("include_stats") == "true",
		Debug:        q.Get("debug") == "true",
	}
	if p := lerInt(q.Get("page")); p != nil {
		params.Pagina = *p
	}
	if pp := lerInt(q.Get("per_page")); pp != nil {
		params.PorPagina = *pp
	}

	resultado, err := a.listagem.Listar(ctx, params)
	if err != nil {
		span.RecordError(err)
		responderErro(w, err, a.debug)
		return
	}

	responderSucesso(w, http.StatusOK, "Candidatos listados com sucesso", resultado, nil)
}

// lerInt interpreta um parâmetro numérico opcional; valores inválidos
// contam como ausentes.
func lerInt(valor string) *int {
	if valor == "" {
		return nil
	}
	n, err := strconv.Atoi(valor)
	if err != nil {
		return nil
	}
	return &n
}

func lerBool(valor string) *bool {
	switch valor {
	case "1", "true":
		v := true
		return &v
	case "0", "false":
		v := false
		return &v
	}
	return nil
}
