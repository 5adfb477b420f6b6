package models

import "time"

// Administrador espelha a tabela administradores. Senha guarda o hash
// bcrypt, nunca a senha em texto plano.
type Administrador struct {
	ID          int    `json:"id"`
	Nome        string `json:"nome"`
	Email       string `json:"email"`
	Senha       string `json:"-"`
	NivelAcesso string `json:"nivel_acesso"`
	Ativo       bool   `json:"ativo"`
}

// HistoricoAcao é uma entrada append-only do log de auditoria.
// Detalhes carrega um JSON livre com o contexto da ação.
type HistoricoAcao struct {
	ID         int64     `json:"id"`
	AdminID    *int      `json:"admin_id"`
	Acao       string    `json:"acao"`
	Tabela     string    `json:"tabela"`
	RegistroID *int64    `json:"registro_id"`
	Detalhes   string    `json:"detalhes"`
	IPAddress  string    `json:"ip_address"`
	CreatedAt  time.Time `json:"created_at"`
}
