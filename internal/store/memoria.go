package store

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gala-votacao-app/internal/models"
)

// Memoria é a implementação em memória do Store, usada nos testes.
// Mantém o mesmo índice único de votos que o MySQL.
type Memoria struct {
	mu sync.Mutex

	configs    map[string]string
	categorias map[int]models.Categoria
	candidatos map[int]models.Candidato
	admins     map[int]models.Administrador

	votos     []models.Voto
	indiceDia map[string]bool // dispositivo|categoria|data
	proximoID int64

	historico   []models.HistoricoAcao
	proximoHist int64

	agora func() time.Time
}

func NovaMemoria() *Memoria {
	return &Memoria{
		configs:    make(map[string]string),
		categorias: make(map[int]models.Categoria),
		candidatos: make(map[int]models.Candidato),
		admins:     make(map[int]models.Administrador),
		indiceDia:  make(map[string]bool),
		agora:      time.Now,
	}
}

// Semeadura para testes.

func (m *Memoria) AdicionarCategoria(c models.Categoria) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categorias[c.ID] = c
}

func (m *Memoria) AdicionarCandidato(c models.Candidato) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candidatos[c.ID] = c
}

func (m *Memoria) AdicionarAdmin(a models.Administrador) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.admins[a.ID] = a
}

func (m *Memoria) AdicionarVoto(v models.Voto) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.proximoID++
	v.ID = m.proximoID
	m.votos = append(m.votos, v)
	m.indiceDia[chaveDia(v.DispositivoID, v.CategoriaID, v.DataVoto)] = true
}

func (m *Memoria) Historico() []models.HistoricoAcao {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.HistoricoAcao, len(m.historico))
	copy(out, m.historico)
	return out
}

func chaveDia(dispositivo string, categoria int, data string) string {
	return dispositivo + "|" + strconv.Itoa(categoria) + "|" + data
}

func (m *Memoria) Ping(_ context.Context) error { return nil }

func (m *Memoria) ObterConfig(_ context.Context, chave string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.configs[chave], nil
}

func (m *Memoria) DefinirConfig(_ context.Context, chave, valor string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[chave] = valor
	return nil
}

func (m *Memoria) BuscarCandidato(_ context.Context, id int) (*models.Candidato, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.candidatos[id]
	if !ok {
		return nil, ErrNaoEncontrado
	}
	return &c, nil
}

func (m *Memoria) BuscarCategoria(_ context.Context, id int) (*models.Categoria, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categorias[id]
	if !ok {
		return nil, ErrNaoEncontrado
	}
	return &c, nil
}

func (m *Memoria) ListarCategorias(_ context.Context, apenasAtivas bool) ([]models.Categoria, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var categorias []models.Categoria
	for _, c := range m.categorias {
		if apenasAtivas && !c.Ativo {
			continue
		}
		categorias = append(categorias, c)
	}
	sort.Slice(categorias, func(i, j int) bool { return categorias[i].ID < categorias[j].ID })
	return categorias, nil
}

func combinaCandidato(c models.Candidato, filtro FiltroCandidatos) bool {
	if filtro.ID != nil && c.ID != *filtro.ID {
		return false
	}
	if filtro.CategoriaID != nil && c.CategoriaID != *filtro.CategoriaID {
		return false
	}
	if filtro.Ativo != nil && c.Ativo != *filtro.Ativo {
		return false
	}
	if filtro.Busca != "" &&
		!strings.Contains(strings.ToLower(c.Nome), strings.ToLower(filtro.Busca)) {
		return false
	}
	return true
}

func (m *Memoria) ListarCandidatos(_ context.Context, filtro FiltroCandidatos, opcoes Opcoes) ([]models.Candidato, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var candidatos []models.Candidato
	for _, c := range m.candidatos {
		if combinaCandidato(c, filtro) {
			candidatos = append(candidatos, c)
		}
	}

	ordem := opcoes.OrdenarPor
	if !camposOrdenacao[ordem] {
		ordem = "created_at"
	}
	asc := strings.EqualFold(opcoes.Direcao, "asc")

	sort.Slice(candidatos, func(i, j int) bool {
		a, b := candidatos[i], candidatos[j]
		var menor bool
		switch ordem {
		case "nome":
			menor = a.Nome < b.Nome
		case "total_votos":
			if a.TotalVotos != b.TotalVotos {
				menor = a.TotalVotos < b.TotalVotos
			} else {
				menor = a.ID < b.ID
			}
		case "id":
			menor = a.ID < b.ID
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				menor = a.CreatedAt.Before(b.CreatedAt)
			} else {
				menor = a.ID < b.ID
			}
		}
		if asc {
			return menor
		}
		return !menor
	})

	if opcoes.Limite > 0 {
		if opcoes.Offset >= len(candidatos) {
			return nil, nil
		}
		fim := opcoes.Offset + opcoes.Limite
		if fim > len(candidatos) {
			fim = len(candidatos)
		}
		candidatos = candidatos[opcoes.Offset:fim]
	}
	return candidatos, nil
}

func (m *Memoria) ContarCandidatos(_ context.Context, filtro FiltroCandidatos) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for _, c := range m.candidatos {
		if combinaCandidato(c, filtro) {
			total++
		}
	}
	return total, nil
}

func (m *Memoria) AtualizarTotalVotos(_ context.Context, candidatoID, total int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.candidatos[candidatoID]
	if !ok {
		return ErrNaoEncontrado
	}
	c.TotalVotos = total
	m.candidatos[candidatoID] = c
	return nil
}

func (m *Memoria) InserirVoto(_ context.Context, voto *models.Voto) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	chave := chaveDia(voto.DispositivoID, voto.CategoriaID, voto.DataVoto)
	if m.indiceDia[chave] {
		return ErrVotoDuplicado
	}

	m.proximoID++
	voto.ID = m.proximoID
	m.votos = append(m.votos, *voto)
	m.indiceDia[chave] = true
	return nil
}

func combinaVoto(v models.Voto, filtro FiltroVotos) bool {
	if filtro.CandidatoID != 0 && v.CandidatoID != filtro.CandidatoID {
		return false
	}
	if filtro.CategoriaID != 0 && v.CategoriaID != filtro.CategoriaID {
		return false
	}
	if filtro.DispositivoID != "" && v.DispositivoID != filtro.DispositivoID {
		return false
	}
	if filtro.DataVoto != "" && v.DataVoto != filtro.DataVoto {
		return false
	}
	return true
}

func (m *Memoria) ContarVotos(_ context.Context, filtro FiltroVotos) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for _, v := range m.votos {
		if combinaVoto(v, filtro) {
			total++
		}
	}
	return total, nil
}

func (m *Memoria) ContarDispositivosUnicos(_ context.Context, dataVoto string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	vistos := make(map[string]bool)
	for _, v := range m.votos {
		if dataVoto != "" && v.DataVoto != dataVoto {
			continue
		}
		vistos[v.DispositivoID] = true
	}
	return len(vistos), nil
}

func (m *Memoria) HorasVotosDoDia(_ context.Context, dataVoto string) ([]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var horas []time.Time
	for _, v := range m.votos {
		if v.DataVoto == dataVoto {
			horas = append(horas, v.HoraVoto)
		}
	}
	return horas, nil
}

func (m *Memoria) PrimeiraDataVoto(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	primeira := ""
	for _, v := range m.votos {
		if primeira == "" || v.DataVoto < primeira {
			primeira = v.DataVoto
		}
	}
	return primeira, nil
}

func (m *Memoria) BuscarAdminPorEmail(_ context.Context, email string) (*models.Administrador, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.admins {
		if a.Email == email {
			admin := a
			return &admin, nil
		}
	}
	return nil, ErrNaoEncontrado
}

func (m *Memoria) BuscarNomeAdmin(_ context.Context, id int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.admins[id]
	if !ok {
		return "", ErrNaoEncontrado
	}
	return a.Nome, nil
}

func (m *Memoria) TocarAdmin(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.admins[id]; !ok {
		return ErrNaoEncontrado
	}
	return nil
}

func (m *Memoria) InserirHistorico(_ context.Context, acao *models.HistoricoAcao) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.proximoHist++
	acao.ID = m.proximoHist
	if acao.CreatedAt.IsZero() {
		acao.CreatedAt = m.agora()
	}
	m.historico = append(m.historico, *acao)
	return nil
}

func (m *Memoria) ListarHistoricoRecente(_ context.Context, limite int) ([]models.HistoricoAcao, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acoes := make([]models.HistoricoAcao, len(m.historico))
	copy(acoes, m.historico)
	sort.Slice(acoes, func(i, j int) bool {
		if !acoes[i].CreatedAt.Equal(acoes[j].CreatedAt) {
			return acoes[i].CreatedAt.After(acoes[j].CreatedAt)
		}
		return acoes[i].ID > acoes[j].ID
	})
	if limite > 0 && len(acoes) > limite {
		acoes = acoes[:limite]
	}
	return acoes, nil
}
