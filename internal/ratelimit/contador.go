// Package ratelimit implementa os limitadores de abuso por IP: a janela
// de votos, o bloqueio de login e o gate bruto por token bucket na
// frente da API. O estado é consultivo, não é garantia de correção: a
// deduplicação por dispositivo é quem impede voto duplicado.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

// ContadorStore persiste o estado dos limitadores por chave. A chave já
// chega com o hash do IP aplicado.
type ContadorStore interface {
	// Obter desserializa o estado em v; devolve false quando a chave
	// não existe.
	Obter(ctx context.Context, chave string, v interface{}) (bool, error)
	Salvar(ctx context.Context, chave string, v interface{}, ttl time.Duration) error
	Remover(ctx context.Context, chave string) error
}

// HashIP deriva a chave de armazenamento a partir do IP do cliente,
// para não guardar o IP em claro no estado do limitador.
func HashIP(ip string) string {
	soma := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(soma[:8])
}

// ContadorMemoria guarda os contadores num mapa protegido por mutex,
// com expiração checada na leitura.
type ContadorMemoria struct {
	mu       sync.Mutex
	entradas map[string]entradaMemoria
	relogio  clockwork.Clock
}

type entradaMemoria struct {
	dados  []byte
	expira time.Time
}

func NovoContadorMemoria(relogio clockwork.Clock) *ContadorMemoria {
	return &ContadorMemoria{
		entradas: make(map[string]entradaMemoria),
		relogio:  relogio,
	}
}

func (c *ContadorMemoria) Obter(_ context.Context, chave string, v interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entradas[chave]
	if !ok {
		return false, nil
	}
	if !ent.expira.IsZero() && c.relogio.Now().After(ent.expira) {
		delete(c.entradas, chave)
		return false, nil
	}
	if err := json.Unmarshal(ent.dados, v); err != nil {
		return false, err
	}
	return true, nil
}

func (c *ContadorMemoria) Salvar(_ context.Context, chave string, v interface{}, ttl time.Duration) error {
	dados, err := json.Marshal(v)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ent := entradaMemoria{dados: dados}
	if ttl > 0 {
		ent.expira = c.relogio.Now().Add(ttl)
	}
	c.entradas[chave] = ent
	return nil
}

func (c *ContadorMemoria) Remover(_ context.Context, chave string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entradas, chave)
	return nil
}

// ContadorRedis compartilha os contadores entre processos via Redis.
// Continua sendo mitigação consultiva: leitura e escrita não são
// atômicas entre si.
type ContadorRedis struct {
	rdb    *redis.Client
	prefix string
}

func NovoContadorRedis(rdb *redis.Client, prefix string) *ContadorRedis {
	return &ContadorRedis{rdb: rdb, prefix: prefix}
}

func (c *ContadorRedis) chave(chave string) string {
	return c.prefix + ":" + chave
}

func (c *ContadorRedis) Obter(ctx context.Context, chave string, v interface{}) (bool, error) {
	dados, err := c.rdb.Get(ctx, c.chave(chave)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(dados, v); err != nil {
		return false, err
	}
	return true, nil
}

func (c *ContadorRedis) Salvar(ctx context.Context, chave string, v interface{}, ttl time.Duration) error {
	dados, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.chave(chave), dados, ttl).Err()
}

func (c *ContadorRedis) Remover(ctx context.Context, chave string) error {
	return c.rdb.Del(ctx, c.chave(chave)).Err()
}
