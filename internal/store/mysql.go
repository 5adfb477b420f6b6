package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"gala-votacao-app/internal/models"
)

// MySQL implementa Store sobre database/sql.
type MySQL struct {
	db *sql.DB
}

// NovoMySQL abre a conexão e valida com ping.
func NovoMySQL(dsn string) (*MySQL, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir conexão: %v", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("erro ao conectar ao banco: %v", err)
	}

	log.Println("Conectado ao MySQL com sucesso")
	return &MySQL{db: db}, nil
}

func (m *MySQL) Fechar() {
	if err := m.db.Close(); err != nil {
		log.Printf("Erro ao fechar conexão com MySQL: %v", err)
	}
}

// CriarTabelas cria o esquema se não existir. O índice único em votos
// fecha a janela entre a checagem de duplicidade e a inserção: mesmo
// que duas requisições simultâneas passem pela checagem, só uma insere.
func (m *MySQL) CriarTabelas() error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS categorias (
			id INT AUTO_INCREMENT PRIMARY KEY,
			nome VARCHAR(255) NOT NULL,
			icone VARCHAR(100) NOT NULL DEFAULT '',
			cor VARCHAR(20) NOT NULL DEFAULT '',
			ativo BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS candidatos (
			id INT AUTO_INCREMENT PRIMARY KEY,
			categoria_id INT NOT NULL,
			nome VARCHAR(255) NOT NULL,
			foto_url VARCHAR(500) NOT NULL DEFAULT '',
			biografia TEXT,
			descricao_curta VARCHAR(500) NOT NULL DEFAULT '',
			total_votos INT NOT NULL DEFAULT 0,
			ativo BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NULL,
			KEY idx_candidatos_categoria (categoria_id)
		)`,
		`CREATE TABLE IF NOT EXISTS votos (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			candidato_id INT NOT NULL,
			categoria_id INT NOT NULL,
			dispositivo_id VARCHAR(200) NOT NULL,
			ip_address VARCHAR(45) NOT NULL DEFAULT '',
			user_agent VARCHAR(500) NOT NULL DEFAULT '',
			data_voto DATE NOT NULL,
			hora_voto DATETIME NOT NULL,
			UNIQUE KEY uq_voto_dia (dispositivo_id, categoria_id, data_voto),
			KEY idx_votos_candidato (candidato_id),
			KEY idx_votos_data (data_voto)
		)`,
		`CREATE TABLE IF NOT EXISTS configuracoes (
			id INT AUTO_INCREMENT PRIMARY KEY,
			chave VARCHAR(100) NOT NULL,
			valor VARCHAR(255) NOT NULL,
			updated_at TIMESTAMP NULL,
			UNIQUE KEY uq_config_chave (chave)
		)`,
		`CREATE TABLE IF NOT EXISTS administradores (
			id INT AUTO_INCREMENT PRIMARY KEY,
			nome VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			senha VARCHAR(255) NOT NULL,
			nivel_acesso VARCHAR(50) NOT NULL DEFAULT 'admin',
			ativo BOOLEAN NOT NULL DEFAULT TRUE,
			updated_at TIMESTAMP NULL,
			UNIQUE KEY uq_admin_email (email)
		)`,
		`CREATE TABLE IF NOT EXISTS historico_acoes (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			admin_id INT NULL,
			acao VARCHAR(100) NOT NULL,
			tabela VARCHAR(100) NOT NULL,
			registro_id BIGINT NULL,
			detalhes TEXT,
			ip_address VARCHAR(45) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_historico_created (created_at)
		)`,
	}

	for _, stmt := range ddl {
		if _, err := m.db.Exec(stmt); err != nil {
			return fmt.Errorf("erro ao criar tabelas: %v", err)
		}
	}
	return nil
}

func (m *MySQL) Ping(ctx context.Context) error {
	if err := m.db.PingContext(ctx); err != nil {
		return fmt.Errorf("erro ao verificar conexão com MySQL: %v", err)
	}
	return nil
}

func (m *MySQL) ObterConfig(ctx context.Context, chave string) (string, error) {
	var valor string
	err := m.db.QueryRowContext(ctx,
		`SELECT valor FROM configuracoes WHERE chave = ?`, chave).Scan(&valor)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("erro ao buscar configuração %s: %v", chave, err)
	}
	return valor, nil
}

func (m *MySQL) DefinirConfig(ctx context.Context, chave, valor string) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO configuracoes (chave, valor, updated_at) VALUES (?, ?, NOW())
		ON DUPLICATE KEY UPDATE valor = VALUES(valor), updated_at = NOW()
	`, chave, valor)
	if err != nil {
		return fmt.Errorf("erro ao definir configuração %s: %v", chave, err)
	}
	return nil
}

func (m *MySQL) BuscarCandidato(ctx context.Context, id int) (*models.Candidato, error) {
	var c models.Candidato
	var biografia, descricao sql.NullString
	var updatedAt sql.NullTime
	err := m.db.QueryRowContext(ctx, `
		SELECT id, categoria_id, nome, foto_url, biografia, descricao_curta,
		       total_votos, ativo, created_at, updated_at
		FROM candidatos WHERE id = ?
	`, id).Scan(&c.ID, &c.CategoriaID, &c.Nome, &c.FotoURL, &biografia,
		&descricao, &c.TotalVotos, &c.Ativo, &c.CreatedAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNaoEncontrado
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar candidato %d: %v", id, err)
	}
	c.Biografia = biografia.String
	c.DescricaoCurta = descricao.String
	if updatedAt.Valid {
		c.UpdatedAt = &updatedAt.Time
	}
	return &c, nil
}

func (m *MySQL) BuscarCategoria(ctx context.Context, id int) (*models.Categoria, error) {
	var c models.Categoria
	err := m.db.QueryRowContext(ctx,
		`SELECT id, nome, icone, cor, ativo FROM categorias WHERE id = ?`, id).
		Scan(&c.ID, &c.Nome, &c.Icone, &c.Cor, &c.Ativo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNaoEncontrado
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar categoria %d: %v", id, err)
	}
	return &c, nil
}

func (m *MySQL) ListarCategorias(ctx context.Context, apenasAtivas bool) ([]models.Categoria, error) {
	query := `SELECT id, nome, icone, cor, ativo FROM categorias`
	if apenasAtivas {
		query += ` WHERE ativo = TRUE`
	}
	query += ` ORDER BY id`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar categorias: %v", err)
	}
	defer rows.Close()

	var categorias []models.Categoria
	for rows.Next() {
		var c models.Categoria
		if err := rows.Scan(&c.ID, &c.Nome, &c.Icone, &c.Cor, &c.Ativo); err != nil {
			return nil, fmt.Errorf("erro ao ler categoria: %v", err)
		}
		categorias = append(categorias, c)
	}
	return categorias, rows.Err()
}

// camposOrdenacao limita ORDER BY aos campos previstos; qualquer outro
// valor cai em created_at.
var camposOrdenacao = map[string]bool{
	"nome":        true,
	"total_votos": true,
	"created_at":  true,
	"id":          true,
}

func clausulaWhereCandidatos(filtro FiltroCandidatos) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if filtro.ID != nil {
		conds = append(conds, "id = ?")
		args = append(args, *filtro.ID)
	}
	if filtro.CategoriaID != nil {
		conds = append(conds, "categoria_id = ?")
		args = append(args, *filtro.CategoriaID)
	}
	if filtro.Ativo != nil {
		conds = append(conds, "ativo = ?")
		args = append(args, *filtro.Ativo)
	}
	if filtro.Busca != "" {
		conds = append(conds, "nome LIKE ?")
		args = append(args, "%"+filtro.Busca+"%")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (m *MySQL) ListarCandidatos(ctx context.Context, filtro FiltroCandidatos, opcoes Opcoes) ([]models.Candidato, error) {
	where, args := clausulaWhereCandidatos(filtro)

	ordem := opcoes.OrdenarPor
	if !camposOrdenacao[ordem] {
		ordem = "created_at"
	}
	direcao := "DESC"
	if strings.EqualFold(opcoes.Direcao, "asc") {
		direcao = "ASC"
	}

	query := `SELECT id, categoria_id, nome, foto_url, biografia, descricao_curta,
	                 total_votos, ativo, created_at, updated_at
	          FROM candidatos` + where +
		fmt.Sprintf(" ORDER BY %s %s", ordem, direcao)

	if opcoes.Limite > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, opcoes.Limite, opcoes.Offset)
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar candidatos: %v", err)
	}
	defer rows.Close()

	var candidatos []models.Candidato
	for rows.Next() {
		var c models.Candidato
		var biografia, descricao sql.NullString
		var updatedAt sql.NullTime
		if err := rows.Scan(&c.ID, &c.CategoriaID, &c.Nome, &c.FotoURL,
			&biografia, &descricao, &c.TotalVotos, &c.Ativo,
			&c.CreatedAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("erro ao ler candidato: %v", err)
		}
		c.Biografia = biografia.String
		c.DescricaoCurta = descricao.String
		if updatedAt.Valid {
			c.UpdatedAt = &updatedAt.Time
		}
		candidatos = append(candidatos, c)
	}
	return candidatos, rows.Err()
}

func (m *MySQL) ContarCandidatos(ctx context.Context, filtro FiltroCandidatos) (int, error) {
	where, args := clausulaWhereCandidatos(filtro)

	var total int
	err := m.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM candidatos`+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("erro ao contar candidatos: %v", err)
	}
	return total, nil
}

func (m *MySQL) AtualizarTotalVotos(ctx context.Context, candidatoID, total int) error {
	_, err := m.db.ExecContext(ctx, `
		UPDATE candidatos SET total_votos = ?, updated_at = NOW() WHERE id = ?
	`, total, candidatoID)
	if err != nil {
		return fmt.Errorf("erro ao atualizar total de votos do candidato %d: %v", candidatoID, err)
	}
	return nil
}

func (m *MySQL) InserirVoto(ctx context.Context, voto *models.Voto) error {
	res, err := m.db.ExecContext(ctx, `
		INSERT INTO votos (candidato_id, categoria_id, dispositivo_id,
		                   ip_address, user_agent, data_voto, hora_voto)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, voto.CandidatoID, voto.CategoriaID, voto.DispositivoID,
		voto.IPAddress, voto.UserAgent, voto.DataVoto, voto.HoraVoto)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return ErrVotoDuplicado
		}
		return fmt.Errorf("erro ao inserir voto: %v", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("erro ao obter id do voto: %v", err)
	}
	voto.ID = id
	return nil
}

func clausulaWhereVotos(filtro FiltroVotos) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if filtro.CandidatoID != 0 {
		conds = append(conds, "candidato_id = ?")
		args = append(args, filtro.CandidatoID)
	}
	if filtro.CategoriaID != 0 {
		conds = append(conds, "categoria_id = ?")
		args = append(args, filtro.CategoriaID)
	}
	if filtro.DispositivoID != "" {
		conds = append(conds, "dispositivo_id = ?")
		args = append(args, filtro.DispositivoID)
	}
	if filtro.DataVoto != "" {
		conds = append(conds, "data_voto = ?")
		args = append(args, filtro.DataVoto)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (m *MySQL) ContarVotos(ctx context.Context, filtro FiltroVotos) (int, error) {
	where, args := clausulaWhereVotos(filtro)

	var total int
	err := m.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM votos`+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("erro ao contar votos: %v", err)
	}
	return total, nil
}

func (m *MySQL) ContarDispositivosUnicos(ctx context.Context, dataVoto string) (int, error) {
	query := `SELECT COUNT(DISTINCT dispositivo_id) FROM votos`
	var args []interface{}
	if dataVoto != "" {
		query += ` WHERE data_voto = ?`
		args = append(args, dataVoto)
	}

	var total int
	if err := m.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("erro ao contar dispositivos únicos: %v", err)
	}
	return total, nil
}

func (m *MySQL) HorasVotosDoDia(ctx context.Context, dataVoto string) ([]time.Time, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT hora_voto FROM votos WHERE data_voto = ?`, dataVoto)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar horas de voto: %v", err)
	}
	defer rows.Close()

	var horas []time.Time
	for rows.Next() {
		var h time.Time
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("erro ao ler hora de voto: %v", err)
		}
		horas = append(horas, h)
	}
	return horas, rows.Err()
}

func (m *MySQL) PrimeiraDataVoto(ctx context.Context) (string, error) {
	var data sql.NullString
	err := m.db.QueryRowContext(ctx,
		`SELECT DATE_FORMAT(MIN(data_voto), '%Y-%m-%d') FROM votos`).Scan(&data)
	if err != nil {
		return "", fmt.Errorf("erro ao buscar primeira data de voto: %v", err)
	}
	return data.String, nil
}

func (m *MySQL) BuscarAdminPorEmail(ctx context.Context, email string) (*models.Administrador, error) {
	var a models.Administrador
	err := m.db.QueryRowContext(ctx, `
		SELECT id, nome, email, senha, nivel_acesso, ativo
		FROM administradores WHERE email = ?
	`, email).Scan(&a.ID, &a.Nome, &a.Email, &a.Senha, &a.NivelAcesso, &a.Ativo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNaoEncontrado
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar administrador: %v", err)
	}
	return &a, nil
}

func (m *MySQL) BuscarNomeAdmin(ctx context.Context, id int) (string, error) {
	var nome string
	err := m.db.QueryRowContext(ctx,
		`SELECT nome FROM administradores WHERE id = ?`, id).Scan(&nome)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNaoEncontrado
	}
	if err != nil {
		return "", fmt.Errorf("erro ao buscar nome do administrador %d: %v", id, err)
	}
	return nome, nil
}

func (m *MySQL) TocarAdmin(ctx context.Context, id int) error {
	_, err := m.db.ExecContext(ctx,
		`UPDATE administradores SET updated_at = NOW() WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("erro ao atualizar administrador %d: %v", id, err)
	}
	return nil
}

func (m *MySQL) InserirHistorico(ctx context.Context, acao *models.HistoricoAcao) error {
	if acao.CreatedAt.IsZero() {
		acao.CreatedAt = time.Now()
	}
	res, err := m.db.ExecContext(ctx, `
		INSERT INTO historico_acoes (admin_id, acao, tabela, registro_id,
		                             detalhes, ip_address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, acao.AdminID, acao.Acao, acao.Tabela, acao.RegistroID,
		acao.Detalhes, acao.IPAddress, acao.CreatedAt)
	if err != nil {
		return fmt.Errorf("erro ao inserir histórico: %v", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("erro ao obter id do histórico: %v", err)
	}
	acao.ID = id
	return nil
}

func (m *MySQL) ListarHistoricoRecente(ctx context.Context, limite int) ([]models.HistoricoAcao, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, admin_id, acao, tabela, registro_id, detalhes, ip_address, created_at
		FROM historico_acoes
		ORDER BY created_at DESC
		LIMIT ?
	`, limite)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar histórico: %v", err)
	}
	defer rows.Close()

	var acoes []models.HistoricoAcao
	for rows.Next() {
		var a models.HistoricoAcao
		var adminID sql.NullInt64
		var registroID sql.NullInt64
		var detalhes sql.NullString
		if err := rows.Scan(&a.ID, &adminID, &a.Acao, &a.Tabela, &registroID,
			&detalhes, &a.IPAddress, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("erro ao ler histórico: %v", err)
		}
		if adminID.Valid {
			id := int(adminID.Int64)
			a.AdminID = &id
		}
		if registroID.Valid {
			a.RegistroID = &registroID.Int64
		}
		a.Detalhes = detalhes.String
		acoes = append(acoes, a)
	}
	return acoes, rows.Err()
}
