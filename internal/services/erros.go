package services

import (
	"fmt"
	"net/http"
)

// Categoria de erro, seguindo a taxonomia do sistema.
type Categoria string

const (
	CategoriaValidacao     Categoria = "validacao"
	CategoriaEstado        Categoria = "estado"
	CategoriaNaoEncontrado Categoria = "nao_encontrado"
	CategoriaConflito      Categoria = "conflito"
	CategoriaLimite        Categoria = "limite"
	CategoriaAutenticacao  Categoria = "autenticacao"
	CategoriaInterno       Categoria = "interno"
)

// Erro carrega a categoria, o status HTTP e a mensagem voltada ao
// usuário. Toda falha de guarda é terminal para a requisição: não há
// retry. Extra transporta campos adicionais da resposta (ex.:
// already_voted e next_vote_date no conflito de voto).
type Erro struct {
	Categoria Categoria
	Status    int
	Mensagem  string
	Extra     map[string]interface{}
	Causa     error
}

func (e *Erro) Error() string {
	if e.Causa != nil {
		return fmt.Sprintf("%s: %s: %v", e.Categoria, e.Mensagem, e.Causa)
	}
	return fmt.Sprintf("%s: %s", e.Categoria, e.Mensagem)
}

func (e *Erro) Unwrap() error { return e.Causa }

func ErroValidacao(mensagem string) *Erro {
	return &Erro{Categoria: CategoriaValidacao, Status: http.StatusBadRequest, Mensagem: mensagem}
}

func ErroEstado(mensagem string) *Erro {
	return &Erro{Categoria: CategoriaEstado, Status: http.StatusForbidden, Mensagem: mensagem}
}

func ErroNaoEncontrado(mensagem string) *Erro {
	return &Erro{Categoria: CategoriaNaoEncontrado, Status: http.StatusNotFound, Mensagem: mensagem}
}

func ErroConflito(mensagem string, extra map[string]interface{}) *Erro {
	return &Erro{Categoria: CategoriaConflito, Status: http.StatusConflict, Mensagem: mensagem, Extra: extra}
}

func ErroLimite(mensagem string) *Erro {
	return &Erro{Categoria: CategoriaLimite, Status: http.StatusTooManyRequests, Mensagem: mensagem}
}

func ErroAutenticacao(mensagem string) *Erro {
	return &Erro{Categoria: CategoriaAutenticacao, Status: http.StatusUnauthorized, Mensagem: mensagem}
}

// ErroContaDesativada é autenticação com 403: credenciais corretas,
// conta inativa.
func ErroContaDesativada(mensagem string) *Erro {
	return &Erro{Categoria: CategoriaAutenticacao, Status: http.StatusForbidden, Mensagem: mensagem}
}

func ErroInterno(mensagem string, causa error) *Erro {
	return &Erro{Categoria: CategoriaInterno, Status: http.StatusInternalServerError, Mensagem: mensagem, Causa: causa}
}
