package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"gala-votacao-app/internal/auth"
	"gala-votacao-app/internal/kafka"
	"gala-votacao-app/internal/metrics"
	"gala-votacao-app/internal/models"
	"gala-votacao-app/internal/store"
)

const (
	validadeToken       = 24 * time.Hour
	validadeTokenLonga  = 30 * 24 * time.Hour
	motivoNaoEncontrado = "usuario_nao_encontrado"
	motivoInativo       = "usuario_inativo"
	motivoSenhaErrada   = "senha_incorreta"
)

type RequisicaoLogin struct {
	Email   string `json:"email"`
	Senha   string `json:"senha"`
	Lembrar bool   `json:"lembrar"`

	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

type RespostaLogin struct {
	Token    string                `json:"token"`
	Admin    *models.Administrador `json:"admin"`
	ExpiraEm time.Time             `json:"expira_em"`
}

// LimitadorLogin é o contrato que o serviço espera do limitador de
// tentativas de login.
type LimitadorLogin interface {
	Verificar(ctx context.Context, ip string) (permitido bool, minutosRestantes int)
	RegistrarFalha(ctx context.Context, ip string)
	RegistrarSucesso(ctx context.Context, ip string)
}

// AuthService autentica administradores e emite tokens JWT. Todas as
// tentativas, com ou sem sucesso, são auditadas.
type AuthService struct {
	store     store.Store
	limitador LimitadorLogin
	eventos   *kafka.Produtor
	jwtSecret string
	relogio   clockwork.Clock
}

func NewAuthService(st store.Store, limitador LimitadorLogin, eventos *kafka.Produtor, jwtSecret string, relogio clockwork.Clock) *AuthService {
	return &AuthService{
		store:     st,
		limitador: limitador,
		eventos:   eventos,
		jwtSecret: jwtSecret,
		relogio:   relogio,
	}
}

// Login executa o fluxo completo: limitador, credenciais, conta ativa,
// emissão do token e auditoria.
func (s *AuthService) Login(ctx context.Context, req *RequisicaoLogin) (*RespostaLogin, error) {
	if permitido, minutos := s.limitador.Verificar(ctx, req.IPAddress); !permitido {
		metrics.RecordTentativaLogin("bloqueada")
		return nil, ErroLimite(fmt.Sprintf(
			"Muitas tentativas de login. Tente novamente em %d minuto%s.", minutos, plural(minutos)))
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Senha == "" {
		// Requisições malformadas também contam para o bloqueio.
		s.limitador.RegistrarFalha(ctx, req.IPAddress)
		metrics.RecordTentativaLogin("falha")
		return nil, ErroValidacao("Email e senha são obrigatórios")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		s.limitador.RegistrarFalha(ctx, req.IPAddress)
		metrics.RecordTentativaLogin("falha")
		return nil, ErroValidacao("Email inválido")
	}

	admin, err := s.store.BuscarAdminPorEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNaoEncontrado) {
			return nil, s.falha(ctx, req, nil, motivoNaoEncontrado)
		}
		return nil, ErroInterno("Erro ao realizar login", err)
	}

	if !admin.Ativo {
		s.registrarFalha(ctx, req, admin, motivoInativo)
		return nil, ErroContaDesativada("Conta desativada. Entre em contato com o administrador.")
	}

	if !auth.VerificarSenha(req.Senha, admin.Senha) {
		return nil, s.falha(ctx, req, admin, motivoSenhaErrada)
	}

	s.limitador.RegistrarSucesso(ctx, req.IPAddress)

	agora := s.relogio.Now()
	if err := s.store.TocarAdmin(ctx, admin.ID); err != nil {
		log.Printf("Erro ao atualizar último acesso do admin %d: %v", admin.ID, err)
	}

	validade := validadeToken
	if req.Lembrar {
		validade = validadeTokenLonga
	}
	token, err := auth.GerarToken(admin, s.jwtSecret, validade, agora)
	if err != nil {
		return nil, ErroInterno("Erro ao realizar login", err)
	}

	s.auditar(ctx, req, admin, "login", "")
	s.publicarEvento(req, true, "")
	metrics.RecordTentativaLogin("sucesso")

	return &RespostaLogin{
		Token:    token,
		Admin:    admin,
		ExpiraEm: agora.Add(validade),
	}, nil
}

// falha trata os caminhos que devolvem o 401 genérico: a resposta
// nunca diz se o email existe; o motivo real fica só na auditoria.
func (s *AuthService) falha(ctx context.Context, req *RequisicaoLogin, admin *models.Administrador, motivo string) error {
	s.registrarFalha(ctx, req, admin, motivo)
	return ErroAutenticacao("Email ou senha incorretos")
}

func (s *AuthService) registrarFalha(ctx context.Context, req *RequisicaoLogin, admin *models.Administrador, motivo string) {
	s.limitador.RegistrarFalha(ctx, req.IPAddress)
	s.auditar(ctx, req, admin, "login_falha", motivo)
	s.publicarEvento(req, false, motivo)
	metrics.RecordTentativaLogin("falha")
}

func (s *AuthService) auditar(ctx context.Context, req *RequisicaoLogin, admin *models.Administrador, acao, motivo string) {
	detalhes := map[string]string{"email": req.Email}
	if motivo != "" {
		detalhes["motivo"] = motivo
	}
	if req.UserAgent != "" {
		detalhes["user_agent"] = req.UserAgent
	}
	if acao == "login" {
		detalhes["lembrar"] = strconv.FormatBool(req.Lembrar)
	}
	corpo, err := json.Marshal(detalhes)
	if err != nil {
		log.Printf("Erro ao montar detalhes de auditoria: %v", err)
		return
	}

	entrada := &models.HistoricoAcao{
		Acao:      acao,
		Tabela:    "administradores",
		Detalhes:  string(corpo),
		IPAddress: req.IPAddress,
		CreatedAt: s.relogio.Now(),
	}
	if admin != nil {
		id := admin.ID
		entrada.AdminID = &id
		registro := int64(admin.ID)
		entrada.RegistroID = &registro
	}

	if err := s.store.InserirHistorico(ctx, entrada); err != nil {
		log.Printf("Erro ao registrar auditoria de login: %v", err)
	}
}

func (s *AuthService) publicarEvento(req *RequisicaoLogin, sucesso bool, motivo string) {
	if s.eventos == nil {
		return
	}

	evento := models.EventoLogin{
		EventoID:  uuid.NewString(),
		Email:     req.Email,
		Sucesso:   sucesso,
		Motivo:    motivo,
		IPAddress: req.IPAddress,
		Timestamp: s.relogio.Now(),
	}
	if err := s.eventos.Publicar(kafka.TopicoAuditoria, evento); err != nil {
		log.Printf("Erro ao publicar evento de login: %v", err)
		return
	}
	metrics.RecordKafkaEvento(kafka.TopicoAuditoria)
}
