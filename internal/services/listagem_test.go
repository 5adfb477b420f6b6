package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"gala-votacao-app/internal/models"
	"gala-votacao-app/internal/store"
)

func novoServicoListagem(quantos int) (*ListagemService, *store.Memoria) {
	mem := store.NovaMemoria()
	mem.AdicionarCategoria(models.Categoria{ID: 1, Nome: "Artista do Ano", Icone: "fa-star", Cor: "#FFD700", Ativo: true})

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i := 1; i <= quantos; i++ {
		mem.AdicionarCandidato(models.Candidato{
			ID:          i,
			CategoriaID: 1,
			Nome:        fmt.Sprintf("Candidato %02d", i),
			TotalVotos:  i,
			Ativo:       true,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		})
	}

	relogio := clockwork.NewFakeClockAt(time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC))
	return NewListagemService(mem, relogio), mem
}

func TestListarPaginacao(t *testing.T) {
	svc, _ := novoServicoListagem(25)

	resultado, err := svc.Listar(context.Background(), ParametrosListagem{})
	if err != nil {
		t.Fatalf("erro ao listar: %v", err)
	}

	if len(resultado.Candidatos) != 20 {
		t.Errorf("primeira página = %d itens, esperava 20 (padrão)", len(resultado.Candidatos))
	}
	p := resultado.Paginacao
	if p.Total != 25 || p.TotalPages != 2 || !p.HasNext || p.HasPrev {
		t.Errorf("paginação inesperada: %+v", p)
	}
	if p.From != 1 || p.To != 20 {
		t.Errorf("from/to = %d/%d, esperava 1/20", p.From, p.To)
	}

	resultado, err = svc.Listar(context.Background(), ParametrosListagem{Pagina: 2})
	if err != nil {
		t.Fatalf("erro ao listar página 2: %v", err)
	}
	if len(resultado.Candidatos) != 5 {
		t.Errorf("segunda página = %d itens, esperava 5", len(resultado.Candidatos))
	}
	p = resultado.Paginacao
	if p.HasNext || !p.HasPrev || p.From != 21 || p.To != 25 {
		t.Errorf("paginação da página 2 inesperada: %+v", p)
	}
}

func TestListarAlemDaUltimaPagina(t *testing.T) {
	svc, _ := novoServicoListagem(5)

	resultado, err := svc.Listar(context.Background(), ParametrosListagem{Pagina: 9})
	if err != nil {
		t.Fatalf("erro ao listar: %v", err)
	}
	if len(resultado.Candidatos) != 0 {
		t.Errorf("página além do fim deveria vir vazia, veio %d itens", len(resultado.Candidatos))
	}
	if resultado.Paginacao.HasNext {
		t.Error("has_next deveria ser false além da última página")
	}
	if resultado.Paginacao.From != 0 || resultado.Paginacao.To != 0 {
		t.Errorf("from/to = %d/%d, esperava 0/0", resultado.Paginacao.From, resultado.Paginacao.To)
	}
}

func TestListarLimitesDePagina(t *testing.T) {
	svc, _ := novoServicoListagem(3)

	resultado, err := svc.Listar(context.Background(), ParametrosListagem{Pagina: -2, PorPagina: 500})
	if err != nil {
		t.Fatalf("erro ao listar: %v", err)
	}
	if resultado.Paginacao.CurrentPage != 1 {
		t.Errorf("página negativa deveria virar 1, veio %d", resultado.Paginacao.CurrentPage)
	}
	if resultado.Paginacao.PerPage != 100 {
		t.Errorf("per_page = %d, esperava o teto de 100", resultado.Paginacao.PerPage)
	}
}

func TestListarOrdenacao(t *testing.T) {
	svc, _ := novoServicoListagem(5)

	// Campo fora da whitelist cai no padrão created_at desc: o mais
	// recente (id 5) vem primeiro.
	resultado, err := svc.Listar(context.Background(), ParametrosListagem{OrdenarPor: "senha; DROP TABLE"})
	if err != nil {
		t.Fatalf("erro ao listar: %v", err)
	}
	if resultado.Candidatos[0].ID != 5 {
		t.Errorf("primeiro item = id %d, esperava 5", resultado.Candidatos[0].ID)
	}

	resultado, err = svc.Listar(context.Background(), ParametrosListagem{OrdenarPor: "total_votos", Direcao: "asc"})
	if err != nil {
		t.Fatalf("erro ao listar: %v", err)
	}
	if resultado.Candidatos[0].ID != 1 {
		t.Errorf("menos votado deveria vir primeiro, veio id %d", resultado.Candidatos[0].ID)
	}
}

func TestListarEnriquecimento(t *testing.T) {
	mem := store.NovaMemoria()
	mem.AdicionarCategoria(models.Categoria{ID: 1, Nome: "Artista do Ano", Icone: "fa-star", Cor: "#FFD700", Ativo: true})

	biografia := strings.Repeat("a", 250)
	mem.AdicionarCandidato(models.Candidato{
		ID: 1, CategoriaID: 1, Nome: "Maria Silva", Biografia: biografia,
		TotalVotos: 3, Ativo: true,
		CreatedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	})
	mem.AdicionarCandidato(models.Candidato{
		ID: 2, CategoriaID: 9, Nome: "João Souza", TotalVotos: 1, Ativo: true,
		CreatedAt: time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC),
	})
	mem.AdicionarVoto(models.Voto{
		CandidatoID: 1, CategoriaID: 1, DispositivoID: "dispositivo-teste-0001",
		DataVoto: "2026-09-01", HoraVoto: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	})
	// Dois votos na categoria do João: o percentual dele sai do total
	// da própria categoria, não do total geral de votos.
	for i := 0; i < 2; i++ {
		mem.AdicionarVoto(models.Voto{
			CandidatoID: 2, CategoriaID: 9, DispositivoID: fmt.Sprintf("dispositivo-teste-%04d", i+2),
			DataVoto: "2026-08-31", HoraVoto: time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
		})
	}

	relogio := clockwork.NewFakeClockAt(time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC))
	svc := NewListagemService(mem, relogio)

	resultado, err := svc.Listar(context.Background(), ParametrosListagem{OrdenarPor: "id", Direcao: "asc", Preview: true})
	if err != nil {
		t.Fatalf("erro ao listar: %v", err)
	}
	if len(resultado.Candidatos) != 2 {
		t.Fatalf("esperava 2 candidatos, veio %d", len(resultado.Candidatos))
	}

	maria := resultado.Candidatos[0]
	if maria.CategoriaNome != "Artista do Ano" {
		t.Errorf("categoria_nome = %q", maria.CategoriaNome)
	}
	if maria.VotosHoje != 1 {
		t.Errorf("votos_hoje = %d, esperava 1", maria.VotosHoje)
	}
	if maria.PercentualVotos != 300 {
		t.Errorf("percentual_votos = %v, esperava 300", maria.PercentualVotos)
	}
	if len(maria.BiografiaPreview) != 203 || !strings.HasSuffix(maria.BiografiaPreview, "...") {
		t.Errorf("biografia_preview deveria ter 200 caracteres mais reticências")
	}
	if maria.CreatedAtFormatted != "01/08/2026 10:00" {
		t.Errorf("created_at_formatted = %q", maria.CreatedAtFormatted)
	}

	// Categoria inexistente cai nos valores padrão.
	joao := resultado.Candidatos[1]
	if joao.CategoriaNome != "Sem Categoria" || joao.CategoriaIcone != "fa-question" || joao.CategoriaCor != "#CCCCCC" {
		t.Errorf("fallback de categoria inesperado: %q/%q/%q", joao.CategoriaNome, joao.CategoriaIcone, joao.CategoriaCor)
	}
	// 1 voto denormalizado sobre 2 votos na categoria 9; o total geral
	// de 3 votos daria 33.33.
	if joao.PercentualVotos != 50 {
		t.Errorf("percentual_votos = %v, esperava 50 (relativo à categoria)", joao.PercentualVotos)
	}
}

func TestListarComEstatisticas(t *testing.T) {
	svc, _ := novoServicoListagem(4)

	resultado, err := svc.Listar(context.Background(), ParametrosListagem{IncluirStats: true, Debug: true})
	if err != nil {
		t.Fatalf("erro ao listar: %v", err)
	}
	if resultado.Estatisticas == nil {
		t.Fatal("estatísticas deveriam vir com include_stats")
	}
	if resultado.Estatisticas.TotalCandidatos != 4 {
		t.Errorf("total_candidatos = %d, esperava 4", resultado.Estatisticas.TotalCandidatos)
	}
	if resultado.Estatisticas.TotalVotos != 10 {
		t.Errorf("total_votos = %d, esperava 10", resultado.Estatisticas.TotalVotos)
	}
	if resultado.Estatisticas.MediaVotos != 2.5 {
		t.Errorf("media_votos = %v, esperava 2.5", resultado.Estatisticas.MediaVotos)
	}
	if resultado.Debug == nil {
		t.Error("debug deveria ecoar os parâmetros aplicados")
	}
}

func TestListarEstatisticasDaPagina(t *testing.T) {
	svc, _ := novoServicoListagem(4)

	// Ordenação padrão created_at desc: a página traz os ids 4 e 3.
	resultado, err := svc.Listar(context.Background(), ParametrosListagem{IncluirStats: true, PorPagina: 2})
	if err != nil {
		t.Fatalf("erro ao listar: %v", err)
	}

	stats := resultado.Estatisticas
	if stats.TotalCandidatos != 4 {
		t.Errorf("total_candidatos = %d, esperava 4 (contagem filtrada)", stats.TotalCandidatos)
	}
	if stats.TotalVotos != 7 {
		t.Errorf("total_votos = %d, esperava 7 (soma da página)", stats.TotalVotos)
	}
	if stats.TotalAtivos != 2 {
		t.Errorf("total_ativos = %d, esperava 2 (ativos da página)", stats.TotalAtivos)
	}
	if stats.MediaVotos != 1.75 {
		t.Errorf("media_votos = %v, esperava 1.75", stats.MediaVotos)
	}
}
