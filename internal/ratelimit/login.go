package ratelimit

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	maxTentativasLogin = 5
	duracaoBloqueio    = 15 * time.Minute
)

type estadoLogin struct {
	Tentativas   int       `json:"tentativas"`
	BloqueadoAte time.Time `json:"bloqueado_ate"`
}

// LimitadorLogin bloqueia o IP por 15 minutos após 5 falhas
// consecutivas de login. Sucesso zera o contador.
type LimitadorLogin struct {
	store   ContadorStore
	relogio clockwork.Clock
}

func NovoLimitadorLogin(store ContadorStore, relogio clockwork.Clock) *LimitadorLogin {
	return &LimitadorLogin{store: store, relogio: relogio}
}

func (l *LimitadorLogin) chave(ip string) string {
	return "login:" + HashIP(ip)
}

// Verificar informa se o IP pode tentar login agora. Quando bloqueado,
// devolve os minutos restantes (arredondados para cima).
func (l *LimitadorLogin) Verificar(ctx context.Context, ip string) (bool, int) {
	var e estadoLogin
	existe, err := l.store.Obter(ctx, l.chave(ip), &e)
	if err != nil {
		log.Printf("Erro ao ler limitador de login: %v", err)
		return true, 0
	}
	if !existe || e.BloqueadoAte.IsZero() {
		return true, 0
	}

	agora := l.relogio.Now()
	if agora.Before(e.BloqueadoAte) {
		restante := int(math.Ceil(e.BloqueadoAte.Sub(agora).Minutes()))
		return false, restante
	}

	// Bloqueio expirado: zera o estado.
	if err := l.store.Remover(ctx, l.chave(ip)); err != nil {
		log.Printf("Erro ao limpar limitador de login: %v", err)
	}
	return true, 0
}

// RegistrarFalha incrementa o contador; a quinta falha consecutiva
// arma o bloqueio.
func (l *LimitadorLogin) RegistrarFalha(ctx context.Context, ip string) {
	var e estadoLogin
	if _, err := l.store.Obter(ctx, l.chave(ip), &e); err != nil {
		log.Printf("Erro ao ler limitador de login: %v", err)
		return
	}

	e.Tentativas++
	if e.Tentativas >= maxTentativasLogin && e.BloqueadoAte.IsZero() {
		e.BloqueadoAte = l.relogio.Now().Add(duracaoBloqueio)
	}

	if err := l.store.Salvar(ctx, l.chave(ip), e, duracaoBloqueio*2); err != nil {
		log.Printf("Erro ao salvar limitador de login: %v", err)
	}
}

// RegistrarSucesso limpa o contador do IP.
func (l *LimitadorLogin) RegistrarSucesso(ctx context.Context, ip string) {
	if err := l.store.Remover(ctx, l.chave(ip)); err != nil {
		log.Printf("Erro ao limpar limitador de login: %v", err)
	}
}
