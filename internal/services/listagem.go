package services

import (
	"context"

	"github.com/jonboulle/clockwork"

	"gala-votacao-app/internal/models"
	"gala-votacao-app/internal/store"
)

const (
	porPaginaPadrao  = 20
	porPaginaMaximo  = 100
	tamanhoBiografia = 200
)

// camposOrdenaveis é a lista fechada de colunas aceitas no order_by.
// Qualquer outro valor cai no padrão.
var camposOrdenaveis = map[string]bool{
	"nome":        true,
	"total_votos": true,
	"created_at":  true,
	"id":          true,
}

// ParametrosListagem carrega os filtros já interpretados pelo handler.
// Ponteiros nil significam "não filtrar".
type ParametrosListagem struct {
	ID           *int
	CategoriaID  *int
	Ativo        *bool
	Busca        string
	OrdenarPor   string
	Direcao      string
	Pagina       int
	PorPagina    int
	Preview      bool
	IncluirStats bool
	Debug        bool
}

// CandidatoListado é um candidato enriquecido para exibição.
type CandidatoListado struct {
	models.Candidato
	CategoriaNome      string  `json:"categoria_nome"`
	CategoriaIcone     string  `json:"categoria_icone"`
	CategoriaCor       string  `json:"categoria_cor"`
	VotosHoje          int     `json:"votos_hoje"`
	PercentualVotos    float64 `json:"percentual_votos"`
	BiografiaPreview   string  `json:"biografia_preview,omitempty"`
	CreatedAtFormatted string  `json:"created_at_formatted"`
	UpdatedAtFormatted string  `json:"updated_at_formatted,omitempty"`
}

type Paginacao struct {
	CurrentPage int  `json:"current_page"`
	PerPage     int  `json:"per_page"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrev     bool `json:"has_prev"`
	From        int  `json:"from"`
	To          int  `json:"to"`
}

type EstatisticasListagem struct {
	TotalCandidatos int     `json:"total_candidatos"`
	TotalAtivos     int     `json:"total_ativos"`
	TotalInativos   int     `json:"total_inativos"`
	TotalVotos      int     `json:"total_votos"`
	MediaVotos      float64 `json:"media_votos"`
}

type ResultadoListagem struct {
	Candidatos   []CandidatoListado    `json:"candidatos"`
	Paginacao    Paginacao             `json:"paginacao"`
	Estatisticas *EstatisticasListagem `json:"estatisticas,omitempty"`
	Debug        map[string]any        `json:"debug,omitempty"`
}

// ListagemService resolve a listagem pública de candidatos com
// filtros, ordenação e paginação.
type ListagemService struct {
	store   store.Store
	relogio clockwork.Clock
}

func NewListagemService(st store.Store, relogio clockwork.Clock) *ListagemService {
	return &ListagemService{store: st, relogio: relogio}
}

// normalizar aplica os padrões e limites: página mínima 1, per_page
// entre 1 e 100, ordenação restrita à whitelist.
func normalizar(p ParametrosListagem) ParametrosListagem {
	if !camposOrdenaveis[p.OrdenarPor] {
		p.OrdenarPor = "created_at"
	}
	if p.Direcao != "asc" && p.Direcao != "desc" {
		p.Direcao = "desc"
	}
	if p.Pagina < 1 {
		p.Pagina = 1
	}
	if p.PorPagina < 1 {
		p.PorPagina = porPaginaPadrao
	}
	if p.PorPagina > porPaginaMaximo {
		p.PorPagina = porPaginaMaximo
	}
	return p
}

func (s *ListagemService) Listar(ctx context.Context, params ParametrosListagem) (*ResultadoListagem, error) {
	params = normalizar(params)

	filtro := store.FiltroCandidatos{
		ID:          params.ID,
		CategoriaID: params.CategoriaID,
		Ativo:       params.Ativo,
		Busca:       params.Busca,
	}

	total, err := s.store.ContarCandidatos(ctx, filtro)
	if err != nil {
		return nil, ErroInterno("Erro ao listar candidatos", err)
	}

	offset := (params.Pagina - 1) * params.PorPagina
	candidatos, err := s.store.ListarCandidatos(ctx, filtro, store.Opcoes{
		OrdenarPor: params.OrdenarPor,
		Direcao:    params.Direcao,
		Limite:     params.PorPagina,
		Offset:     offset,
	})
	if err != nil {
		return nil, ErroInterno("Erro ao listar candidatos", err)
	}

	hoje := s.relogio.Now().Format("2006-01-02")
	totaisCategoria := make(map[int]int)
	listados := make([]CandidatoListado, 0, len(candidatos))
	for _, c := range candidatos {
		item, err := s.enriquecer(ctx, c, hoje, totaisCategoria, params.Preview)
		if err != nil {
			return nil, err
		}
		listados = append(listados, item)
	}

	resultado := &ResultadoListagem{
		Candidatos: listados,
		Paginacao:  montarPaginacao(params.Pagina, params.PorPagina, total, len(listados)),
	}

	if params.IncluirStats {
		resultado.Estatisticas = estatisticas(listados, total)
	}

	if params.Debug {
		resultado.Debug = map[string]any{
			"filtros": map[string]any{
				"id":           params.ID,
				"categoria_id": params.CategoriaID,
				"ativo":        params.Ativo,
				"busca":        params.Busca,
			},
			"ordenacao": params.OrdenarPor + " " + params.Direcao,
			"pagina":    params.Pagina,
			"per_page":  params.PorPagina,
			"offset":    offset,
		}
	}

	return resultado, nil
}

func (s *ListagemService) enriquecer(ctx context.Context, c models.Candidato, hoje string, totaisCategoria map[int]int, preview bool) (CandidatoListado, error) {
	item := CandidatoListado{
		Candidato:          c,
		CategoriaNome:      "Sem Categoria",
		CategoriaIcone:     "fa-question",
		CategoriaCor:       "#CCCCCC",
		CreatedAtFormatted: c.CreatedAt.Format("02/01/2006 15:04"),
	}
	if preview {
		item.BiografiaPreview = resumirBiografia(c.Biografia)
	}
	if c.UpdatedAt != nil {
		item.UpdatedAtFormatted = c.UpdatedAt.Format("02/01/2006 15:04")
	}

	categoria, err := s.store.BuscarCategoria(ctx, c.CategoriaID)
	if err == nil {
		item.CategoriaNome = categoria.Nome
		item.CategoriaIcone = categoria.Icone
		item.CategoriaCor = categoria.Cor
	}

	votosHoje, err := s.store.ContarVotos(ctx, store.FiltroVotos{CandidatoID: c.ID, DataVoto: hoje})
	if err != nil {
		return CandidatoListado{}, ErroInterno("Erro ao listar candidatos", err)
	}
	item.VotosHoje = votosHoje

	// O percentual é relativo ao total de votos da categoria do
	// candidato; o mapa evita recontar a mesma categoria na página.
	totalCategoria, conhecido := totaisCategoria[c.CategoriaID]
	if !conhecido {
		totalCategoria, err = s.store.ContarVotos(ctx, store.FiltroVotos{CategoriaID: c.CategoriaID})
		if err != nil {
			return CandidatoListado{}, ErroInterno("Erro ao listar candidatos", err)
		}
		totaisCategoria[c.CategoriaID] = totalCategoria
	}
	if totalCategoria > 0 {
		item.PercentualVotos = arredondar(float64(c.TotalVotos)/float64(totalCategoria)*100, 2)
	}

	return item, nil
}

// estatisticas resume a página retornada: soma de votos e contagem de
// ativos sobre os candidatos exibidos, total geral vindo do filtro.
func estatisticas(pagina []CandidatoListado, totalCandidatos int) *EstatisticasListagem {
	totalVotos := 0
	ativos := 0
	for _, c := range pagina {
		totalVotos += c.TotalVotos
		if c.Ativo {
			ativos++
		}
	}

	stats := &EstatisticasListagem{
		TotalCandidatos: totalCandidatos,
		TotalAtivos:     ativos,
		TotalInativos:   totalCandidatos - ativos,
		TotalVotos:      totalVotos,
	}
	if totalCandidatos > 0 {
		stats.MediaVotos = arredondar(float64(totalVotos)/float64(totalCandidatos), 2)
	}
	return stats
}

func montarPaginacao(pagina, porPagina, total, retornados int) Paginacao {
	totalPaginas := 0
	if total > 0 {
		totalPaginas = (total + porPagina - 1) / porPagina
	}

	p := Paginacao{
		CurrentPage: pagina,
		PerPage:     porPagina,
		Total:       total,
		TotalPages:  totalPaginas,
		HasNext:     pagina < totalPaginas,
		HasPrev:     pagina > 1,
	}
	if retornados > 0 {
		p.From = (pagina-1)*porPagina + 1
		p.To = (pagina-1)*porPagina + retornados
	}
	return p
}

// resumirBiografia corta o texto em 200 caracteres, contando runas
// para não partir um caractere acentuado ao meio.
func resumirBiografia(biografia string) string {
	runas := []rune(biografia)
	if len(runas) <= tamanhoBiografia {
		return biografia
	}
	return string(runas[:tamanhoBiografia]) + "..."
}
