package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"

	"gala-votacao-app/internal/auth"
	"gala-votacao-app/internal/models"
	"gala-votacao-app/internal/ratelimit"
	"gala-votacao-app/internal/services"
	"gala-votacao-app/internal/store"
)

func novoRouterDeTeste(t *testing.T) (*mux.Router, *store.Memoria) {
	t.Helper()

	relogio := clockwork.NewFakeClockAt(time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC))
	mem := store.NovaMemoria()
	mem.DefinirConfig(context.Background(), "votacao_ativa", "true")
	mem.DefinirConfig(context.Background(), "mostrar_confete", "true")
	mem.AdicionarCategoria(models.Categoria{ID: 1, Nome: "Artista do Ano", Icone: "fa-star", Cor: "#FFD700", Ativo: true})
	mem.AdicionarCandidato(models.Candidato{
		ID: 1, CategoriaID: 1, Nome: "Maria Silva", TotalVotos: 5, Ativo: true,
		CreatedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	})

	hash, err := auth.HashSenha("senha-secreta")
	if err != nil {
		t.Fatalf("erro ao gerar hash: %v", err)
	}
	mem.AdicionarAdmin(models.Administrador{
		ID: 1, Nome: "Ana Admin", Email: "ana@gala.com",
		Senha: hash, NivelAcesso: "admin", Ativo: true,
	})

	contadores := ratelimit.NovoContadorMemoria(relogio)
	votacao := services.NewVotacaoService(mem, ratelimit.NovoLimitadorVotos(contadores, relogio), nil, relogio)
	listagem := services.NewListagemService(mem, relogio)
	dashboard := services.NewDashboardService(mem, relogio)
	autenticacao := services.NewAuthService(mem, ratelimit.NovoLimitadorLogin(contadores, relogio), nil, "segredo-de-teste", relogio)

	api := NewAPI(votacao, listagem, dashboard, autenticacao, mem, false)
	r := mux.NewRouter()
	api.RegistrarRotas(r)
	return r, mem
}

func executar(r *mux.Router, metodo, caminho, corpo string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(metodo, caminho, strings.NewReader(corpo))
	req.RemoteAddr = "203.0.113.7:54321"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodificar(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var corpo map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &corpo); err != nil {
		t.Fatalf("resposta não é JSON: %v\n%s", err, rec.Body.String())
	}
	return corpo
}

func TestVotarEndpoint(t *testing.T) {
	r, _ := novoRouterDeTeste(t)

	rec := executar(r, http.MethodPost, "/votar",
		`{"candidato_id":1,"categoria_id":1,"dispositivo_id":"dispositivo-teste-0001"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, esperava 201\n%s", rec.Code, rec.Body.String())
	}

	corpo := decodificar(t, rec)
	if corpo["success"] != true {
		t.Error("success deveria ser true")
	}
	if corpo["showConfetti"] != true {
		t.Error("showConfetti deveria ser true")
	}
	if msg, _ := corpo["message"].(string); !strings.Contains(msg, "Obrigado por participar!") {
		t.Errorf("mensagem = %q", msg)
	}
	data, ok := corpo["data"].(map[string]interface{})
	if !ok {
		t.Fatal("data ausente na resposta")
	}
	if data["candidato"] != "Maria Silva" {
		t.Errorf("candidato = %v", data["candidato"])
	}
	if data["total_votos_candidato"] != float64(1) {
		t.Errorf("total_votos_candidato = %v, esperava 1", data["total_votos_candidato"])
	}
}

func TestVotarEndpointDuplicado(t *testing.T) {
	r, _ := novoRouterDeTeste(t)
	corpo := `{"candidato_id":1,"categoria_id":1,"dispositivo_id":"dispositivo-teste-0001"}`

	if rec := executar(r, http.MethodPost, "/votar", corpo); rec.Code != http.StatusCreated {
		t.Fatalf("primeiro voto: status %d", rec.Code)
	}

	rec := executar(r, http.MethodPost, "/votar", corpo)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, esperava 409", rec.Code)
	}
	resposta := decodificar(t, rec)
	if resposta["success"] != false {
		t.Error("success deveria ser false")
	}
	if resposta["already_voted"] != true {
		t.Error("already_voted deveria ser true")
	}
	if resposta["next_vote_date"] != "02/09/2026" {
		t.Errorf("next_vote_date = %v, esperava 02/09/2026", resposta["next_vote_date"])
	}
}

func TestVotarEndpointJSONInvalido(t *testing.T) {
	r, _ := novoRouterDeTeste(t)

	rec := executar(r, http.MethodPost, "/votar", `{"candidato_id":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, esperava 400", rec.Code)
	}
}

func TestListarEndpoint(t *testing.T) {
	r, _ := novoRouterDeTeste(t)

	rec := executar(r, http.MethodGet, "/listar?include_stats=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, esperava 200\n%s", rec.Code, rec.Body.String())
	}
	corpo := decodificar(t, rec)
	data := corpo["data"].(map[string]interface{})
	if _, ok := data["candidatos"]; !ok {
		t.Error("data.candidatos ausente")
	}
	if _, ok := data["estatisticas"]; !ok {
		t.Error("data.estatisticas ausente com include_stats")
	}
}

func TestDashboardEndpoint(t *testing.T) {
	r, _ := novoRouterDeTeste(t)

	rec := executar(r, http.MethodGet, "/dashboard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, esperava 200\n%s", rec.Code, rec.Body.String())
	}
	corpo := decodificar(t, rec)
	data := corpo["data"].(map[string]interface{})
	if _, ok := data["total_votos"]; !ok {
		t.Error("data.total_votos ausente")
	}
}

func TestLoginEndpoint(t *testing.T) {
	r, _ := novoRouterDeTeste(t)

	rec := executar(r, http.MethodPost, "/login", `{"email":"ana@gala.com","senha":"senha-errada"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, esperava 401", rec.Code)
	}

	rec = executar(r, http.MethodPost, "/login", `{"email":"ana@gala.com","senha":"senha-secreta"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, esperava 200\n%s", rec.Code, rec.Body.String())
	}
	corpo := decodificar(t, rec)
	data := corpo["data"].(map[string]interface{})
	if data["token"] == "" || data["token"] == nil {
		t.Error("token ausente na resposta de login")
	}
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := novoRouterDeTeste(t)

	rec := executar(r, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, esperava 200", rec.Code)
	}
	corpo := decodificar(t, rec)
	data := corpo["data"].(map[string]interface{})
	if data["database"] != "ok" {
		t.Errorf("database = %v, esperava ok", data["database"])
	}
}

func TestMetodoNaoPermitido(t *testing.T) {
	r, _ := novoRouterDeTeste(t)

	rec := executar(r, http.MethodGet, "/votar", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, esperava 405", rec.Code)
	}
	corpo := decodificar(t, rec)
	if corpo["message"] != "Método não permitido" {
		t.Errorf("mensagem = %v", corpo["message"])
	}
}

func TestExtrairIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:54321"
	if ip := ExtrairIP(req); ip != "203.0.113.7" {
		t.Errorf("ExtrairIP = %q, esperava 203.0.113.7", ip)
	}

	req.Header.Set("X-Forwarded-For", "198.51.100.4, 203.0.113.7")
	if ip := ExtrairIP(req); ip != "198.51.100.4" {
		t.Errorf("ExtrairIP com X-Forwarded-For = %q, esperava 198.51.100.4", ip)
	}
}
