package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// PorIP mantém um token bucket por IP, com limpeza de entradas
// inativas. Serve de gate bruto na frente de toda a API, separado dos
// limitadores de voto e login.
type PorIP struct {
	mu       sync.Mutex
	entradas map[string]*entradaPorIP
	rps      rate.Limit
	burst    int
	idleTTL  time.Duration
}

type entradaPorIP struct {
	lim       *rate.Limiter
	ultimoUso time.Time
}

func NovoPorIP(rps float64, burst int) *PorIP {
	return &PorIP{
		entradas: make(map[string]*entradaPorIP),
		rps:      rate.Limit(rps),
		burst:    burst,
		idleTTL:  15 * time.Minute,
	}
}

func (p *PorIP) obter(ip string) *rate.Limiter {
	agora := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	if ent, ok := p.entradas[ip]; ok {
		ent.ultimoUso = agora
		return ent.lim
	}

	lim := rate.NewLimiter(p.rps, p.burst)
	p.entradas[ip] = &entradaPorIP{lim: lim, ultimoUso: agora}
	return lim
}

// Limpar remove entradas sem uso há mais que o TTL.
func (p *PorIP) Limpar() {
	corte := time.Now().Add(-p.idleTTL)

	p.mu.Lock()
	defer p.mu.Unlock()

	for ip, ent := range p.entradas {
		if ent.ultimoUso.Before(corte) {
			delete(p.entradas, ip)
		}
	}
}

// IniciarLimpeza dispara a limpeza periódica; pare fechando done.
func (p *PorIP) IniciarLimpeza(done <-chan struct{}) {
	t := time.NewTicker(2 * time.Minute)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				p.Limpar()
			}
		}
	}()
}

// Middleware aplica o token bucket por IP antes de qualquer handler.
func Middleware(p *PorIP, extrairIP func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !p.obter(extrairIP(r)).Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"success":false,"message":"Muitas requisições. Aguarde um momento."}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
