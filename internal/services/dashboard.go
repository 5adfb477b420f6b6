package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"gala-votacao-app/internal/models"
	"gala-votacao-app/internal/store"
)

// Estatisticas é o payload completo do dashboard.
type Estatisticas struct {
	TotalVotos      int     `json:"total_votos"`
	TotalCandidatos int     `json:"total_candidatos"`
	TotalCategorias int     `json:"total_categorias"`
	VotantesUnicos  int     `json:"votantes_unicos"`
	VotosHoje       int     `json:"votos_hoje"`
	VotosOntem      int     `json:"votos_ontem"`
	CrescimentoHoje float64 `json:"crescimento_hoje"`
	VotantesHoje    int     `json:"votantes_hoje"`

	VotosPorCategoria []VotosCategoria `json:"votos_por_categoria"`
	Evolucao7Dias     []PontoEvolucao  `json:"evolucao_7_dias"`
	Evolucao30Dias    []PontoEvolucao  `json:"evolucao_30_dias,omitempty"`
	TopCandidatos     []TopCandidato   `json:"top_candidatos"`
	VotosPorHoraHoje  []VotosHora      `json:"votos_por_hora_hoje"`
	PicoVotos         PicoVotos        `json:"pico_votos"`
	AtividadeRecente  []Atividade      `json:"atividade_recente"`

	DiasAteGala     int     `json:"dias_ate_gala"`
	DataGala        *string `json:"data_gala"`
	MediaVotosDia   float64 `json:"media_votos_dia"`
	DiasVotacao     int     `json:"dias_votacao"`
	TaxaEngajamento float64 `json:"taxa_engajamento"`
}

type VotosCategoria struct {
	CategoriaID   int     `json:"categoria_id"`
	CategoriaNome string  `json:"categoria_nome"`
	Icone         string  `json:"icone"`
	Cor           string  `json:"cor"`
	TotalVotos    int     `json:"total_votos"`
	Percentual    float64 `json:"percentual"`
}

type PontoEvolucao struct {
	Data          string `json:"data"`
	DataFormatada string `json:"data_formatada"`
	DiaSemana     string `json:"dia_semana,omitempty"`
	TotalVotos    int    `json:"total_votos"`
}

type TopCandidato struct {
	ID             int     `json:"id"`
	Nome           string  `json:"nome"`
	FotoURL        string  `json:"foto_url"`
	CategoriaID    int     `json:"categoria_id"`
	TotalVotos     int     `json:"total_votos"`
	CategoriaNome  string  `json:"categoria_nome"`
	CategoriaIcone string  `json:"categoria_icone"`
	CategoriaCor   string  `json:"categoria_cor"`
	Percentual     float64 `json:"percentual"`
}

type VotosHora struct {
	Hora       string `json:"hora"`
	TotalVotos int    `json:"total_votos"`
}

type PicoVotos struct {
	Total int    `json:"total"`
	Hora  string `json:"hora"`
}

type Atividade struct {
	ID                 int64     `json:"id"`
	AdminID            *int      `json:"admin_id"`
	Acao               string    `json:"acao"`
	Tabela             string    `json:"tabela"`
	RegistroID         *int64    `json:"registro_id"`
	CreatedAt          time.Time `json:"created_at"`
	AdminNome          string    `json:"admin_nome"`
	TempoRelativo      string    `json:"tempo_relativo"`
	CreatedAtFormatted string    `json:"created_at_formatted"`
	IPAddressMasked    string    `json:"ip_address_masked"`
}

// DashboardService agrega as estatísticas do lado de leitura. Só faz
// contagens e seleções; nunca escreve.
type DashboardService struct {
	store   store.Store
	relogio clockwork.Clock
}

func NewDashboardService(st store.Store, relogio clockwork.Clock) *DashboardService {
	return &DashboardService{store: st, relogio: relogio}
}

func arredondar(x float64, casas int) float64 {
	p := math.Pow10(casas)
	return math.Round(x*p) / p
}

// MascararIP reduz o IP para exibição: IPv4 mantém só o primeiro
// octeto; IPv6 e demais formatos mantêm os 5 primeiros caracteres.
func MascararIP(ip string) string {
	if ip == "" {
		return "***.***.***.***.***"
	}

	partes := strings.Split(ip, ".")
	if len(partes) == 4 {
		return partes[0] + ".***.***.***"
	}

	if len(ip) > 5 {
		ip = ip[:5]
	}
	return ip + "***"
}

// tempoRelativo humaniza a distância até agora em baldes de
// minutos/horas/dias, com singular e plural.
func tempoRelativo(agora, momento time.Time) string {
	diff := agora.Sub(momento)

	switch {
	case diff < time.Minute:
		return "Agora mesmo"
	case diff < time.Hour:
		minutos := int(diff.Minutes())
		return fmt.Sprintf("%d minuto%s atrás", minutos, plural(minutos))
	case diff < 24*time.Hour:
		horas := int(diff.Hours())
		return fmt.Sprintf("%d hora%s atrás", horas, plural(horas))
	default:
		dias := int(diff.Hours() / 24)
		return fmt.Sprintf("%d dia%s atrás", dias, plural(dias))
	}
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}

// CalcularCrescimento aplica a política de divisão por zero: 100%
// quando hoje > 0 e ontem = 0, senão 0%.
func CalcularCrescimento(ontem, hoje int) float64 {
	if ontem > 0 {
		return arredondar(float64(hoje-ontem)/float64(ontem)*100, 1)
	}
	if hoje > 0 {
		return 100
	}
	return 0
}

// ObterEstatisticas monta o payload completo do dashboard. A série de
// 30 dias só entra quando incluirMensal é true.
func (s *DashboardService) ObterEstatisticas(ctx context.Context, incluirMensal bool) (*Estatisticas, error) {
	stats := &Estatisticas{}
	agora := s.relogio.Now()
	hoje := agora.Format("2006-01-02")
	ontem := agora.AddDate(0, 0, -1).Format("2006-01-02")

	var err error
	if stats.TotalVotos, err = s.store.ContarVotos(ctx, store.FiltroVotos{}); err != nil {
		return nil, ErroInterno("Erro ao buscar estatísticas", err)
	}

	ativo := true
	if stats.TotalCandidatos, err = s.store.ContarCandidatos(ctx, store.FiltroCandidatos{Ativo: &ativo}); err != nil {
		return nil, ErroInterno("Erro ao buscar estatísticas", err)
	}

	categorias, err := s.store.ListarCategorias(ctx, true)
	if err != nil {
		return nil, ErroInterno("Erro ao buscar estatísticas", err)
	}
	stats.TotalCategorias = len(categorias)

	if stats.VotantesUnicos, err = s.store.ContarDispositivosUnicos(ctx, ""); err != nil {
		return nil, ErroInterno("Erro ao buscar estatísticas", err)
	}

	if stats.VotosHoje, err = s.store.ContarVotos(ctx, store.FiltroVotos{DataVoto: hoje}); err != nil {
		return nil, ErroInterno("Erro ao buscar estatísticas", err)
	}
	if stats.VotosOntem, err = s.store.ContarVotos(ctx, store.FiltroVotos{DataVoto: ontem}); err != nil {
		return nil, ErroInterno("Erro ao buscar estatísticas", err)
	}
	stats.CrescimentoHoje = CalcularCrescimento(stats.VotosOntem, stats.VotosHoje)

	if stats.VotantesHoje, err = s.store.ContarDispositivosUnicos(ctx, hoje); err != nil {
		return nil, ErroInterno("Erro ao buscar estatísticas", err)
	}

	if stats.VotosPorCategoria, err = s.votosPorCategoria(ctx, categorias, stats.TotalVotos); err != nil {
		return nil, err
	}

	if stats.Evolucao7Dias, err = s.evolucao(ctx, agora, 7, true); err != nil {
		return nil, err
	}
	if incluirMensal {
		if stats.Evolucao30Dias, err = s.evolucao(ctx, agora, 30, false); err != nil {
			return nil, err
		}
	}

	if stats.TopCandidatos, err = s.topCandidatos(ctx); err != nil {
		return nil, err
	}

	stats.VotosPorHoraHoje, stats.PicoVotos, err = s.votosPorHora(ctx, hoje)
	if err != nil {
		return nil, err
	}

	if stats.AtividadeRecente, err = s.atividadeRecente(ctx, agora); err != nil {
		return nil, err
	}

	s.preencherGala(ctx, stats, agora)

	if err = s.preencherMedia(ctx, stats, agora); err != nil {
		return nil, err
	}

	// Estimativa baseada em votantes únicos vs base esperada.
	if stats.VotantesUnicos > 0 {
		base := stats.VotantesUnicos
		if base < 10000 {
			base = 10000
		}
		stats.TaxaEngajamento = arredondar(float64(stats.VotantesUnicos)/float64(base)*100, 2)
	}

	return stats, nil
}

func (s *DashboardService) votosPorCategoria(ctx context.Context, categorias []models.Categoria, totalVotos int) ([]VotosCategoria, error) {
	resultado := make([]VotosCategoria, 0, len(categorias))
	for _, cat := range categorias {
		votos, err := s.store.ContarVotos(ctx, store.FiltroVotos{CategoriaID: cat.ID})
		if err != nil {
			return nil, ErroInterno("Erro ao buscar estatísticas", err)
		}

		percentual := 0.0
		if totalVotos > 0 {
			percentual = arredondar(float64(votos)/float64(totalVotos)*100, 2)
		}
		resultado = append(resultado, VotosCategoria{
			CategoriaID:   cat.ID,
			CategoriaNome: cat.Nome,
			Icone:         cat.Icone,
			Cor:           cat.Cor,
			TotalVotos:    votos,
			Percentual:    percentual,
		})
	}

	// Decrescente por votos; empates preservam a ordem das categorias.
	sort.SliceStable(resultado, func(i, j int) bool {
		return resultado[i].TotalVotos > resultado[j].TotalVotos
	})
	return resultado, nil
}

func (s *DashboardService) evolucao(ctx context.Context, agora time.Time, dias int, comDiaSemana bool) ([]PontoEvolucao, error) {
	serie := make([]PontoEvolucao, 0, dias)
	for i := dias - 1; i >= 0; i-- {
		dia := agora.AddDate(0, 0, -i)
		data := dia.Format("2006-01-02")

		votos, err := s.store.ContarVotos(ctx, store.FiltroVotos{DataVoto: data})
		if err != nil {
			return nil, ErroInterno("Erro ao buscar estatísticas", err)
		}

		ponto := PontoEvolucao{
			Data:          data,
			DataFormatada: dia.Format("02/01"),
			TotalVotos:    votos,
		}
		if comDiaSemana {
			ponto.DiaSemana = dia.Format("Mon")
		}
		serie = append(serie, ponto)
	}
	return serie, nil
}

func (s *DashboardService) topCandidatos(ctx context.Context) ([]TopCandidato, error) {
	ativo := true
	candidatos, err := s.store.ListarCandidatos(ctx,
		store.FiltroCandidatos{Ativo: &ativo},
		store.Opcoes{OrdenarPor: "total_votos", Direcao: "desc", Limite: 10})
	if err != nil {
		return nil, ErroInterno("Erro ao buscar estatísticas", err)
	}

	votosPorCategoria := make(map[int]int)
	top := make([]TopCandidato, 0, len(candidatos))
	for _, c := range candidatos {
		t := TopCandidato{
			ID:             c.ID,
			Nome:           c.Nome,
			FotoURL:        c.FotoURL,
			CategoriaID:    c.CategoriaID,
			TotalVotos:     c.TotalVotos,
			CategoriaNome:  "Sem Categoria",
			CategoriaIcone: "fa-question",
			CategoriaCor:   "#CCCCCC",
		}

		categoria, err := s.store.BuscarCategoria(ctx, c.CategoriaID)
		if err == nil {
			t.CategoriaNome = categoria.Nome
			t.CategoriaIcone = categoria.Icone
			t.CategoriaCor = categoria.Cor
		}

		totalCategoria, ok := votosPorCategoria[c.CategoriaID]
		if !ok {
			totalCategoria, err = s.store.ContarVotos(ctx, store.FiltroVotos{CategoriaID: c.CategoriaID})
			if err != nil {
				return nil, ErroInterno("Erro ao buscar estatísticas", err)
			}
			votosPorCategoria[c.CategoriaID] = totalCategoria
		}
		if totalCategoria > 0 {
			t.Percentual = arredondar(float64(c.TotalVotos)/float64(totalCategoria)*100, 2)
		}

		top = append(top, t)
	}
	return top, nil
}

// votosPorHora monta o histograma 0–23 do dia, sempre com as 24 horas
// preenchidas, e detecta o pico (empate resolve para a menor hora).
func (s *DashboardService) votosPorHora(ctx context.Context, hoje string) ([]VotosHora, PicoVotos, error) {
	horas, err := s.store.HorasVotosDoDia(ctx, hoje)
	if err != nil {
		return nil, PicoVotos{}, ErroInterno("Erro ao buscar estatísticas", err)
	}

	var contagem [24]int
	for _, h := range horas {
		contagem[h.Hour()]++
	}

	serie := make([]VotosHora, 24)
	pico := PicoVotos{Hora: "00:00"}
	for h := 0; h < 24; h++ {
		serie[h] = VotosHora{
			Hora:       fmt.Sprintf("%02d:00", h),
			TotalVotos: contagem[h],
		}
		if contagem[h] > pico.Total {
			pico.Total = contagem[h]
			pico.Hora = serie[h].Hora
		}
	}
	return serie, pico, nil
}

func (s *DashboardService) atividadeRecente(ctx context.Context, agora time.Time) ([]Atividade, error) {
	historico, err := s.store.ListarHistoricoRecente(ctx, 20)
	if err != nil {
		return nil, ErroInterno("Erro ao buscar estatísticas", err)
	}

	atividades := make([]Atividade, 0, len(historico))
	for _, h := range historico {
		a := Atividade{
			ID:                 h.ID,
			AdminID:            h.AdminID,
			Acao:               h.Acao,
			Tabela:             h.Tabela,
			RegistroID:         h.RegistroID,
			CreatedAt:          h.CreatedAt,
			AdminNome:          "Sistema",
			TempoRelativo:      tempoRelativo(agora, h.CreatedAt),
			CreatedAtFormatted: h.CreatedAt.Format("02/01/2006 15:04:05"),
			IPAddressMasked:    MascararIP(h.IPAddress),
		}

		if h.AdminID != nil {
			nome, err := s.store.BuscarNomeAdmin(ctx, *h.AdminID)
			if err != nil {
				nome = "Desconhecido"
			}
			a.AdminNome = nome
		}

		atividades = append(atividades, a)
	}
	return atividades, nil
}

func (s *DashboardService) preencherGala(ctx context.Context, stats *Estatisticas, agora time.Time) {
	dataGala, err := s.store.ObterConfig(ctx, "data_gala")
	if err != nil {
		log.Printf("Erro ao ler configuração data_gala: %v", err)
		return
	}
	if dataGala == "" {
		return
	}

	gala, err := time.ParseInLocation("2006-01-02 15:04:05", dataGala, agora.Location())
	if err != nil {
		gala, err = time.ParseInLocation("2006-01-02", dataGala, agora.Location())
	}
	if err != nil {
		log.Printf("Erro ao interpretar data_gala %q: %v", dataGala, err)
		return
	}

	dias := int(math.Ceil(gala.Sub(agora).Hours() / 24))
	if dias < 0 {
		dias = 0
	}
	stats.DiasAteGala = dias

	formatada := gala.Format("02/01/2006 15:04")
	stats.DataGala = &formatada
}

func (s *DashboardService) preencherMedia(ctx context.Context, stats *Estatisticas, agora time.Time) error {
	primeira, err := s.store.PrimeiraDataVoto(ctx)
	if err != nil {
		return ErroInterno("Erro ao buscar estatísticas", err)
	}
	if primeira == "" {
		return nil
	}

	inicio, err := time.ParseInLocation("2006-01-02", primeira, agora.Location())
	if err != nil {
		log.Printf("Erro ao interpretar primeira data de voto %q: %v", primeira, err)
		return nil
	}

	dias := int(math.Ceil(agora.Sub(inicio).Hours() / 24))
	if dias > 0 {
		stats.MediaVotosDia = arredondar(float64(stats.TotalVotos)/float64(dias), 2)
		stats.DiasVotacao = dias
	} else {
		stats.MediaVotosDia = float64(stats.TotalVotos)
		stats.DiasVotacao = 1
	}
	return nil
}
