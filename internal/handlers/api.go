// Package handlers expõe a API HTTP pública da votação.
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"gala-votacao-app/internal/services"
	"gala-votacao-app/internal/store"
)

// API agrupa os serviços atrás dos endpoints HTTP.
type API struct {
	votacao   *services.VotacaoService
	listagem  *services.ListagemService
	dashboard *services.DashboardService
	auth      *services.AuthService
	store     store.Store
	debug     bool
}

func NewAPI(votacao *services.VotacaoService, listagem *services.ListagemService, dashboard *services.DashboardService, auth *services.AuthService, st store.Store, debug bool) *API {
	return &API{
		votacao:   votacao,
		listagem:  listagem,
		dashboard: dashboard,
		auth:      auth,
		store:     st,
		debug:     debug,
	}
}

// RegistrarRotas liga os handlers no router.
func (a *API) RegistrarRotas(r *mux.Router) {
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		responderJSON(w, http.StatusMethodNotAllowed, map[string]interface{}{
			"success": false,
			"message": "Método não permitido",
		})
	})

	r.HandleFunc("/votar", a.Votar).Methods(http.MethodPost)
	r.HandleFunc("/listar", a.Listar).Methods(http.MethodGet)
	r.HandleFunc("/dashboard", a.Dashboard).Methods(http.MethodGet)
	r.HandleFunc("/login", a.Login).Methods(http.MethodPost)
	r.HandleFunc("/health", a.Health).Methods(http.MethodGet)
}
