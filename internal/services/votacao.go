package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"gala-votacao-app/internal/kafka"
	"gala-votacao-app/internal/metrics"
	"gala-votacao-app/internal/models"
	"gala-votacao-app/internal/ratelimit"
	"gala-votacao-app/internal/store"
)

var padraoDispositivo = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)

// RequisicaoVoto é a entrada da admissão de voto.
type RequisicaoVoto struct {
	CandidatoID   int    `json:"candidato_id"`
	CategoriaID   int    `json:"categoria_id"`
	DispositivoID string `json:"dispositivo_id"`
	IPAddress     string `json:"-"`
	UserAgent     string `json:"-"`
}

// RespostaVoto é o payload de sucesso de um voto aceito.
type RespostaVoto struct {
	Candidato           string `json:"candidato"`
	Categoria           string `json:"categoria"`
	DataVoto            string `json:"data_voto"`
	HoraVoto            string `json:"hora_voto"`
	TotalVotosCandidato int    `json:"total_votos_candidato"`
	ProximaVotacao      string `json:"proxima_votacao"`
	MostrarConfete      bool   `json:"-"`
}

// VotacaoService aplica as guardas de admissão em sequência; qualquer
// falha é rejeição dura, sem sucesso parcial.
type VotacaoService struct {
	store     store.Store
	limitador *ratelimit.LimitadorVotos
	eventos   *kafka.Produtor
	relogio   clockwork.Clock
}

func NewVotacaoService(st store.Store, limitador *ratelimit.LimitadorVotos, eventos *kafka.Produtor, relogio clockwork.Clock) *VotacaoService {
	return &VotacaoService{store: st, limitador: limitador, eventos: eventos, relogio: relogio}
}

// validarDispositivo checa o formato do identificador de dispositivo:
// 10 a 200 caracteres em [A-Za-z0-9_-]. Roda antes de qualquer acesso
// ao banco.
func validarDispositivo(id string) bool {
	if len(id) < 10 || len(id) > 200 {
		return false
	}
	return padraoDispositivo.MatchString(id)
}

// formatarDataBR converte YYYY-MM-DD para DD/MM/YYYY.
func formatarDataBR(data string) string {
	t, err := time.Parse("2006-01-02", data)
	if err != nil {
		return data
	}
	return t.Format("02/01/2006")
}

func mascararDispositivo(id string) string {
	if len(id) > 10 {
		id = id[:10]
	}
	return id + "..."
}

// Votar decide aceitar/rejeitar e, no aceite, grava o voto, recalcula
// o contador denormalizado do candidato e registra a auditoria.
func (s *VotacaoService) Votar(ctx context.Context, req RequisicaoVoto) (*RespostaVoto, error) {
	if !s.limitador.Permitir(ctx, req.IPAddress) {
		metrics.RecordVotoRejeitado("limite")
		return nil, ErroLimite("Você está votando muito rápido. Aguarde um momento.")
	}

	if req.CandidatoID == 0 || req.CategoriaID == 0 || req.DispositivoID == "" {
		metrics.RecordVotoRejeitado("dados_incompletos")
		return nil, ErroValidacao("Dados incompletos. Candidato, categoria e dispositivo são obrigatórios.")
	}

	if !validarDispositivo(req.DispositivoID) {
		metrics.RecordVotoRejeitado("dispositivo_invalido")
		return nil, ErroValidacao("ID de dispositivo inválido")
	}

	votacaoAtiva, err := s.store.ObterConfig(ctx, "votacao_ativa")
	if err != nil {
		return nil, ErroInterno("Erro ao processar seu voto. Por favor, tente novamente.", err)
	}
	if votacaoAtiva != "true" {
		metrics.RecordVotoRejeitado("votacao_inativa")
		return nil, ErroEstado("A votação não está ativa no momento. Aguarde o período de votação.")
	}

	// Comparações de período são feitas pela string de data-calendário
	// YYYY-MM-DD, na data local do servidor.
	hoje := s.relogio.Now().Format("2006-01-02")

	dataInicio, err := s.store.ObterConfig(ctx, "data_inicio_votacao")
	if err != nil {
		return nil, ErroInterno("Erro ao processar seu voto. Por favor, tente novamente.", err)
	}
	if dataInicio != "" && hoje < dataInicio {
		metrics.RecordVotoRejeitado("fora_do_periodo")
		return nil, ErroEstado(fmt.Sprintf("A votação ainda não começou. Inicia em %s.", formatarDataBR(dataInicio)))
	}

	dataFim, err := s.store.ObterConfig(ctx, "data_fim_votacao")
	if err != nil {
		return nil, ErroInterno("Erro ao processar seu voto. Por favor, tente novamente.", err)
	}
	if dataFim != "" && hoje > dataFim {
		metrics.RecordVotoRejeitado("fora_do_periodo")
		return nil, ErroEstado("O período de votação já encerrou. Obrigado pela participação!")
	}

	candidato, err := s.store.BuscarCandidato(ctx, req.CandidatoID)
	if errors.Is(err, store.ErrNaoEncontrado) {
		metrics.RecordVotoRejeitado("candidato_nao_encontrado")
		return nil, ErroNaoEncontrado("Candidato não encontrado")
	}
	if err != nil {
		return nil, ErroInterno("Erro ao processar seu voto. Por favor, tente novamente.", err)
	}
	if !candidato.Ativo {
		metrics.RecordVotoRejeitado("candidato_inativo")
		return nil, ErroEstado("Este candidato não está mais disponível para votação")
	}

	if candidato.CategoriaID != req.CategoriaID {
		metrics.RecordVotoRejeitado("categoria_divergente")
		return nil, ErroValidacao("O candidato não pertence a esta categoria")
	}

	categoria, err := s.store.BuscarCategoria(ctx, req.CategoriaID)
	if errors.Is(err, store.ErrNaoEncontrado) {
		metrics.RecordVotoRejeitado("categoria_nao_encontrada")
		return nil, ErroNaoEncontrado("Categoria não encontrada")
	}
	if err != nil {
		return nil, ErroInterno("Erro ao processar seu voto. Por favor, tente novamente.", err)
	}
	if !categoria.Ativo {
		metrics.RecordVotoRejeitado("categoria_inativa")
		return nil, ErroEstado("Esta categoria não está mais disponível para votação")
	}

	existentes, err := s.store.ContarVotos(ctx, store.FiltroVotos{
		DispositivoID: req.DispositivoID,
		CategoriaID:   req.CategoriaID,
		DataVoto:      hoje,
	})
	if err != nil {
		return nil, ErroInterno("Erro ao processar seu voto. Por favor, tente novamente.", err)
	}
	if existentes > 0 {
		metrics.RecordVotoRejeitado("voto_duplicado")
		return nil, s.erroVotoDuplicado()
	}

	agora := s.relogio.Now()
	voto := &models.Voto{
		CandidatoID:   req.CandidatoID,
		CategoriaID:   req.CategoriaID,
		DispositivoID: req.DispositivoID,
		IPAddress:     req.IPAddress,
		UserAgent:     req.UserAgent,
		DataVoto:      hoje,
		HoraVoto:      agora,
	}

	// O índice único do store fecha a janela entre a checagem acima e
	// esta inserção: a submissão simultânea que perder vira conflito.
	if err := s.store.InserirVoto(ctx, voto); err != nil {
		if errors.Is(err, store.ErrVotoDuplicado) {
			metrics.RecordVotoRejeitado("voto_duplicado")
			return nil, s.erroVotoDuplicado()
		}
		return nil, ErroInterno("Erro ao processar seu voto. Por favor, tente novamente.", err)
	}
	metrics.RecordDatabaseOperation("insert", "votos")

	// Recontagem do contador denormalizado. Falha aqui não desfaz o
	// voto: o contador fica defasado até a próxima atualização.
	total, err := s.store.ContarVotos(ctx, store.FiltroVotos{CandidatoID: req.CandidatoID})
	if err != nil {
		log.Printf("Erro ao recontar votos do candidato %d: %v", req.CandidatoID, err)
		total = candidato.TotalVotos + 1
	} else if err := s.store.AtualizarTotalVotos(ctx, req.CandidatoID, total); err != nil {
		log.Printf("Erro ao atualizar total de votos do candidato %d: %v", req.CandidatoID, err)
	}

	s.registrarAuditoria(ctx, voto, candidato, categoria)
	s.publicarEvento(voto, total)
	metrics.RecordVotoAceito()

	confete, err := s.store.ObterConfig(ctx, "mostrar_confete")
	if err != nil {
		log.Printf("Erro ao ler configuração mostrar_confete: %v", err)
	}

	return &RespostaVoto{
		Candidato:           candidato.Nome,
		Categoria:           categoria.Nome,
		DataVoto:            hoje,
		HoraVoto:            agora.Format("15:04:05"),
		TotalVotosCandidato: total,
		ProximaVotacao:      agora.AddDate(0, 0, 1).Format("02/01/2006"),
		MostrarConfete:      confete == "true",
	}, nil
}

func (s *VotacaoService) erroVotoDuplicado() *Erro {
	proxima := s.relogio.Now().AddDate(0, 0, 1).Format("02/01/2006")
	return ErroConflito("Você já votou nesta categoria hoje! Volte amanhã para votar novamente.",
		map[string]interface{}{
			"already_voted":  true,
			"next_vote_date": proxima,
		})
}

func (s *VotacaoService) registrarAuditoria(ctx context.Context, voto *models.Voto, candidato *models.Candidato, categoria *models.Categoria) {
	detalhes, err := json.Marshal(map[string]interface{}{
		"candidato_id":   voto.CandidatoID,
		"candidato_nome": candidato.Nome,
		"categoria_id":   voto.CategoriaID,
		"categoria_nome": categoria.Nome,
		// Parcial por privacidade
		"dispositivo_id": mascararDispositivo(voto.DispositivoID),
	})
	if err != nil {
		log.Printf("Erro ao serializar detalhes da auditoria: %v", err)
		return
	}

	acao := &models.HistoricoAcao{
		Acao:       "votar",
		Tabela:     "votos",
		RegistroID: &voto.ID,
		Detalhes:   string(detalhes),
		IPAddress:  voto.IPAddress,
		CreatedAt:  s.relogio.Now(),
	}
	if err := s.store.InserirHistorico(ctx, acao); err != nil {
		log.Printf("Erro ao registrar auditoria do voto %d: %v", voto.ID, err)
	}
}

func (s *VotacaoService) publicarEvento(voto *models.Voto, total int) {
	if s.eventos == nil {
		return
	}
	evento := models.EventoVoto{
		EventoID:      uuid.NewString(),
		CandidatoID:   voto.CandidatoID,
		CategoriaID:   voto.CategoriaID,
		DispositivoID: mascararDispositivo(voto.DispositivoID),
		DataVoto:      voto.DataVoto,
		HoraVoto:      voto.HoraVoto,
		TotalVotos:    total,
	}
	if err := s.eventos.Publicar(kafka.TopicoVotos, evento); err != nil {
		log.Printf("Erro ao publicar evento de voto: %v", err)
		return
	}
	metrics.RecordKafkaEvento(kafka.TopicoVotos)
}
