package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMiddlewareEstouraBurst(t *testing.T) {
	porIP := NovoPorIP(1, 2)
	extrair := func(r *http.Request) string { return "203.0.113.7" }

	handler := Middleware(porIP, extrair)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("requisição %d dentro do burst deveria passar, veio %d", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("acima do burst deveria vir 429, veio %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "1" {
		t.Error("resposta 429 deveria trazer Retry-After")
	}
	if !strings.Contains(rec.Body.String(), "Muitas requisições") {
		t.Errorf("corpo inesperado: %s", rec.Body.String())
	}
}

func TestMiddlewareSeparaPorIP(t *testing.T) {
	porIP := NovoPorIP(1, 1)
	handler := Middleware(porIP, func(r *http.Request) string { return r.RemoteAddr })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	chamar := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if chamar("203.0.113.7") != http.StatusOK {
		t.Fatal("primeira requisição do IP deveria passar")
	}
	if chamar("203.0.113.7") != http.StatusTooManyRequests {
		t.Fatal("segunda requisição imediata do mesmo IP deveria estourar")
	}
	if chamar("203.0.113.8") != http.StatusOK {
		t.Error("IP diferente tem bucket próprio")
	}
}
