package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"

	"gala-votacao-app/internal/services"
)

// responderJSON serializa o corpo com o status dado. Erros de
// serialização só podem ser logados: o status já foi escrito.
func responderJSON(w http.ResponseWriter, status int, corpo map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(corpo); err != nil {
		log.Printf("Erro ao serializar resposta: %v", err)
	}
}

func responderSucesso(w http.ResponseWriter, status int, mensagem string, data interface{}, extras map[string]interface{}) {
	corpo := map[string]interface{}{
		"success": true,
		"message": mensagem,
	}
	if data != nil {
		corpo["data"] = data
	}
	for k, v := range extras {
		corpo[k] = v
	}
	responderJSON(w, status, corpo)
}

// responderErro traduz a taxonomia de erros dos serviços para HTTP.
// A causa interna só aparece no corpo quando o modo debug está ativo.
func responderErro(w http.ResponseWriter, err error, debug bool) {
	var e *services.Erro
	if !errors.As(err, &e) {
		log.Printf("Erro não mapeado: %v", err)
		responderJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Erro interno do servidor",
		})
		return
	}

	if e.Status == http.StatusInternalServerError {
		log.Printf("Erro interno: %v", e)
	}

	corpo := map[string]interface{}{
		"success": false,
		"message": e.Mensagem,
	}
	for k, v := range e.Extra {
		corpo[k] = v
	}
	if debug && e.Causa != nil {
		corpo["error"] = e.Causa.Error()
	}
	responderJSON(w, e.Status, corpo)
}

// ExtrairIP devolve o IP do cliente: primeiro elemento do
// X-Forwarded-For quando presente, senão o host do RemoteAddr.
func ExtrairIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		partes := strings.Split(xff, ",")
		return strings.TrimSpace(partes[0])
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
