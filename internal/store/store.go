package store

import (
	"context"
	"errors"
	"time"

	"gala-votacao-app/internal/models"
)

var (
	// ErrNaoEncontrado indica filtro sem nenhuma linha correspondente.
	ErrNaoEncontrado = errors.New("registro não encontrado")

	// ErrVotoDuplicado indica violação do índice único
	// (dispositivo_id, categoria_id, data_voto).
	ErrVotoDuplicado = errors.New("voto duplicado para dispositivo/categoria/dia")
)

// FiltroVotos seleciona votos por igualdade. Campos zero são ignorados.
type FiltroVotos struct {
	CandidatoID   int
	CategoriaID   int
	DispositivoID string
	DataVoto      string
}

// FiltroCandidatos combina os filtros aceitos pela listagem.
// Busca é aplicada como LIKE em nome.
type FiltroCandidatos struct {
	ID          *int
	CategoriaID *int
	Ativo       *bool
	Busca       string
}

// Opcoes controla ordenação e paginação de listagens.
type Opcoes struct {
	OrdenarPor string
	Direcao    string
	Limite     int
	Offset     int
}

// Store é o contrato do colaborador de dados. Toda a lógica de negócio
// fala exclusivamente com esta interface; as implementações são MySQL
// (produção) e Memoria (testes).
type Store interface {
	// Ping verifica a saúde do backend de dados.
	Ping(ctx context.Context) error

	// Configurações chave-valor. ObterConfig devolve "" quando a chave
	// não existe, sem erro.
	ObterConfig(ctx context.Context, chave string) (string, error)
	DefinirConfig(ctx context.Context, chave, valor string) error

	BuscarCandidato(ctx context.Context, id int) (*models.Candidato, error)
	BuscarCategoria(ctx context.Context, id int) (*models.Categoria, error)
	ListarCategorias(ctx context.Context, apenasAtivas bool) ([]models.Categoria, error)

	ListarCandidatos(ctx context.Context, filtro FiltroCandidatos, opcoes Opcoes) ([]models.Candidato, error)
	ContarCandidatos(ctx context.Context, filtro FiltroCandidatos) (int, error)
	AtualizarTotalVotos(ctx context.Context, candidatoID, total int) error

	// InserirVoto preenche voto.ID. Devolve ErrVotoDuplicado quando o
	// índice único rejeita a inserção.
	InserirVoto(ctx context.Context, voto *models.Voto) error
	ContarVotos(ctx context.Context, filtro FiltroVotos) (int, error)
	ContarDispositivosUnicos(ctx context.Context, dataVoto string) (int, error)
	HorasVotosDoDia(ctx context.Context, dataVoto string) ([]time.Time, error)
	PrimeiraDataVoto(ctx context.Context) (string, error)

	BuscarAdminPorEmail(ctx context.Context, email string) (*models.Administrador, error)
	BuscarNomeAdmin(ctx context.Context, id int) (string, error)
	TocarAdmin(ctx context.Context, id int) error

	InserirHistorico(ctx context.Context, acao *models.HistoricoAcao) error
	ListarHistoricoRecente(ctx context.Context, limite int) ([]models.HistoricoAcao, error)
}
