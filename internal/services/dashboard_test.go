package services

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"gala-votacao-app/internal/models"
	"gala-votacao-app/internal/store"
)

func TestCalcularCrescimento(t *testing.T) {
	casos := []struct {
		nome     string
		ontem    int
		hoje     int
		esperado float64
	}{
		{"sem votos", 0, 0, 0},
		{"primeiro dia com votos", 0, 5, 100},
		{"crescimento", 10, 15, 50},
		{"queda", 10, 5, -50},
		{"arredonda a uma casa", 3, 4, 33.3},
	}

	for _, caso := range casos {
		t.Run(caso.nome, func(t *testing.T) {
			if got := CalcularCrescimento(caso.ontem, caso.hoje); got != caso.esperado {
				t.Errorf("CalcularCrescimento(%d, %d) = %v, esperava %v",
					caso.ontem, caso.hoje, got, caso.esperado)
			}
		})
	}
}

func TestMascararIP(t *testing.T) {
	casos := []struct {
		ip       string
		esperado string
	}{
		{"192.168.1.100", "192.***.***.***"},
		{"10.0.0.1", "10.***.***.***"},
		{"2001:db8::1", "2001:***"},
		{"::1", "::1***"},
		{"", "***.***.***.***.***"},
	}

	for _, caso := range casos {
		if got := MascararIP(caso.ip); got != caso.esperado {
			t.Errorf("MascararIP(%q) = %q, esperava %q", caso.ip, got, caso.esperado)
		}
	}
}

func TestTempoRelativo(t *testing.T) {
	agora := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	casos := []struct {
		atras    time.Duration
		esperado string
	}{
		{30 * time.Second, "Agora mesmo"},
		{time.Minute, "1 minuto atrás"},
		{5 * time.Minute, "5 minutos atrás"},
		{time.Hour, "1 hora atrás"},
		{3 * time.Hour, "3 horas atrás"},
		{24 * time.Hour, "1 dia atrás"},
		{72 * time.Hour, "3 dias atrás"},
	}

	for _, caso := range casos {
		if got := tempoRelativo(agora, agora.Add(-caso.atras)); got != caso.esperado {
			t.Errorf("tempoRelativo(-%v) = %q, esperava %q", caso.atras, got, caso.esperado)
		}
	}
}

func TestObterEstatisticas(t *testing.T) {
	agora := time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)
	relogio := clockwork.NewFakeClockAt(agora)

	mem := store.NovaMemoria()
	mem.AdicionarCategoria(models.Categoria{ID: 1, Nome: "Artista do Ano", Icone: "fa-star", Cor: "#FFD700", Ativo: true})
	mem.AdicionarCategoria(models.Categoria{ID: 2, Nome: "Revelação", Icone: "fa-bolt", Cor: "#00BFFF", Ativo: true})
	mem.AdicionarCandidato(models.Candidato{ID: 1, CategoriaID: 1, Nome: "Maria Silva", TotalVotos: 3, Ativo: true})
	mem.AdicionarCandidato(models.Candidato{ID: 2, CategoriaID: 2, Nome: "João Souza", TotalVotos: 1, Ativo: true})

	// Três votos hoje (horas 10, 10 e 14) e um ontem.
	for i, hora := range []int{10, 10, 14} {
		mem.AdicionarVoto(models.Voto{
			CandidatoID:   1,
			CategoriaID:   1,
			DispositivoID: "dispositivo-teste-000" + string(rune('1'+i)),
			DataVoto:      "2026-09-01",
			HoraVoto:      time.Date(2026, 9, 1, hora, 0, 0, 0, time.UTC),
		})
	}
	mem.AdicionarVoto(models.Voto{
		CandidatoID:   2,
		CategoriaID:   2,
		DispositivoID: "dispositivo-teste-0009",
		DataVoto:      "2026-08-31",
		HoraVoto:      time.Date(2026, 8, 31, 20, 0, 0, 0, time.UTC),
	})

	svc := NewDashboardService(mem, relogio)
	stats, err := svc.ObterEstatisticas(context.Background(), false)
	if err != nil {
		t.Fatalf("erro ao obter estatísticas: %v", err)
	}

	if stats.TotalVotos != 4 {
		t.Errorf("total_votos = %d, esperava 4", stats.TotalVotos)
	}
	if stats.VotosHoje != 3 || stats.VotosOntem != 1 {
		t.Errorf("hoje/ontem = %d/%d, esperava 3/1", stats.VotosHoje, stats.VotosOntem)
	}
	if stats.CrescimentoHoje != 200 {
		t.Errorf("crescimento_hoje = %v, esperava 200", stats.CrescimentoHoje)
	}
	if stats.TotalCategorias != 2 {
		t.Errorf("total_categorias = %d, esperava 2", stats.TotalCategorias)
	}
	if stats.VotantesUnicos != 4 {
		t.Errorf("votantes_unicos = %d, esperava 4", stats.VotantesUnicos)
	}

	if len(stats.VotosPorCategoria) != 2 {
		t.Fatalf("votos_por_categoria = %d entradas, esperava 2", len(stats.VotosPorCategoria))
	}
	if stats.VotosPorCategoria[0].CategoriaID != 1 {
		t.Errorf("categoria mais votada deveria vir primeiro, veio %d", stats.VotosPorCategoria[0].CategoriaID)
	}
	if stats.VotosPorCategoria[0].Percentual != 75 {
		t.Errorf("percentual da líder = %v, esperava 75", stats.VotosPorCategoria[0].Percentual)
	}

	if len(stats.Evolucao7Dias) != 7 {
		t.Fatalf("evolucao_7_dias = %d pontos, esperava 7", len(stats.Evolucao7Dias))
	}
	ultimo := stats.Evolucao7Dias[6]
	if ultimo.Data != "2026-09-01" || ultimo.TotalVotos != 3 {
		t.Errorf("último ponto = %s/%d, esperava 2026-09-01/3", ultimo.Data, ultimo.TotalVotos)
	}
	if stats.Evolucao30Dias != nil {
		t.Error("série mensal não deveria vir sem incluirMensal")
	}

	if len(stats.VotosPorHoraHoje) != 24 {
		t.Fatalf("votos_por_hora_hoje = %d entradas, esperava 24", len(stats.VotosPorHoraHoje))
	}
	if stats.VotosPorHoraHoje[10].TotalVotos != 2 {
		t.Errorf("hora 10 = %d votos, esperava 2", stats.VotosPorHoraHoje[10].TotalVotos)
	}
	if stats.VotosPorHoraHoje[0].TotalVotos != 0 {
		t.Error("horas sem votos deveriam vir zeradas")
	}
	if stats.PicoVotos.Hora != "10:00" || stats.PicoVotos.Total != 2 {
		t.Errorf("pico = %s/%d, esperava 10:00/2", stats.PicoVotos.Hora, stats.PicoVotos.Total)
	}

	if len(stats.TopCandidatos) != 2 {
		t.Fatalf("top_candidatos = %d, esperava 2", len(stats.TopCandidatos))
	}
	if stats.TopCandidatos[0].ID != 1 {
		t.Errorf("mais votado deveria ser o candidato 1, veio %d", stats.TopCandidatos[0].ID)
	}
	if stats.TopCandidatos[0].CategoriaNome != "Artista do Ano" {
		t.Errorf("categoria do líder = %q", stats.TopCandidatos[0].CategoriaNome)
	}

	// Primeira data de voto foi ontem: dois dias de votação.
	if stats.DiasVotacao != 2 {
		t.Errorf("dias_votacao = %d, esperava 2", stats.DiasVotacao)
	}
	if stats.MediaVotosDia != 2 {
		t.Errorf("media_votos_dia = %v, esperava 2", stats.MediaVotosDia)
	}
}

func TestObterEstatisticasGala(t *testing.T) {
	agora := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	relogio := clockwork.NewFakeClockAt(agora)

	mem := store.NovaMemoria()
	mem.DefinirConfig(context.Background(), "data_gala", "2026-09-10 20:00:00")

	svc := NewDashboardService(mem, relogio)
	stats, err := svc.ObterEstatisticas(context.Background(), false)
	if err != nil {
		t.Fatalf("erro ao obter estatísticas: %v", err)
	}

	if stats.DiasAteGala != 10 {
		t.Errorf("dias_ate_gala = %d, esperava 10", stats.DiasAteGala)
	}
	if stats.DataGala == nil || *stats.DataGala != "10/09/2026 20:00" {
		t.Errorf("data_gala = %v, esperava 10/09/2026 20:00", stats.DataGala)
	}
}
