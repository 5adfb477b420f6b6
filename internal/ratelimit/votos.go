package ratelimit

import (
	"context"
	"log"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	maxVotosPorJanela = 10
	janelaVotos       = 60 * time.Second
)

type janelaVoto struct {
	Contagem int       `json:"contagem"`
	Inicio   time.Time `json:"inicio"`
}

// LimitadorVotos limita submissões de voto por IP: no máximo 10 por
// janela de 60 segundos. A janela é ancorada no primeiro registro e
// reinicia quando mais de 60 segundos se passaram desde ele.
type LimitadorVotos struct {
	store   ContadorStore
	relogio clockwork.Clock
}

func NovoLimitadorVotos(store ContadorStore, relogio clockwork.Clock) *LimitadorVotos {
	return &LimitadorVotos{store: store, relogio: relogio}
}

// Permitir registra a tentativa e informa se ela pode prosseguir.
// Falha do store libera a requisição: o limitador é mitigação de
// abuso, não guarda de correção.
func (l *LimitadorVotos) Permitir(ctx context.Context, ip string) bool {
	chave := "voto:" + HashIP(ip)
	agora := l.relogio.Now()

	var j janelaVoto
	existe, err := l.store.Obter(ctx, chave, &j)
	if err != nil {
		log.Printf("Erro ao ler limitador de votos: %v", err)
		return true
	}

	if !existe || agora.Sub(j.Inicio) > janelaVotos {
		j = janelaVoto{Inicio: agora}
	}

	if j.Contagem >= maxVotosPorJanela {
		return false
	}

	j.Contagem++
	if err := l.store.Salvar(ctx, chave, j, janelaVotos+time.Minute); err != nil {
		log.Printf("Erro ao salvar limitador de votos: %v", err)
	}
	return true
}
