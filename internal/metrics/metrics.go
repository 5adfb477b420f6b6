package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Contadores de requisições
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gala_requests_total",
			Help: "Total de requisições por endpoint",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Duração das requisições
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gala_request_duration_seconds",
			Help:    "Duração das requisições em segundos",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// Métricas de negócio
	VotosAceitos = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gala_votos_aceitos_total",
			Help: "Total de votos aceitos",
		},
	)

	VotosRejeitados = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gala_votos_rejeitados_total",
			Help: "Total de votos rejeitados por motivo",
		},
		[]string{"motivo"},
	)

	TentativasLogin = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gala_login_tentativas_total",
			Help: "Total de tentativas de login por resultado",
		},
		[]string{"resultado"},
	)

	// Métricas de Kafka
	KafkaEventosEnviados = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gala_kafka_eventos_enviados_total",
			Help: "Total de eventos enviados para Kafka por tópico",
		},
		[]string{"topico"},
	)

	// Métricas de banco de dados
	DatabaseOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gala_database_operations_total",
			Help: "Total de operações no banco de dados",
		},
		[]string{"operation", "table"},
	)
)

// InitMetrics inicializa e registra todas as métricas
func InitMetrics() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		VotosAceitos,
		VotosRejeitados,
		TentativasLogin,
		KafkaEventosEnviados,
		DatabaseOperations,
	)
}

// MetricsHandler retorna o handler para o endpoint /metrics
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RecordRequest registra uma requisição
func RecordRequest(endpoint, method, status string, duration float64) {
	RequestsTotal.WithLabelValues(endpoint, method, status).Inc()
	RequestDuration.WithLabelValues(endpoint, method).Observe(duration)
}

// RecordVotoAceito registra um voto aceito
func RecordVotoAceito() {
	VotosAceitos.Inc()
}

// RecordVotoRejeitado registra um voto rejeitado com o motivo
func RecordVotoRejeitado(motivo string) {
	VotosRejeitados.WithLabelValues(motivo).Inc()
}

// RecordTentativaLogin registra uma tentativa de login
func RecordTentativaLogin(resultado string) {
	TentativasLogin.WithLabelValues(resultado).Inc()
}

// RecordKafkaEvento registra um evento enviado para Kafka
func RecordKafkaEvento(topico string) {
	KafkaEventosEnviados.WithLabelValues(topico).Inc()
}

// RecordDatabaseOperation registra uma operação no banco
func RecordDatabaseOperation(operation, table string) {
	DatabaseOperations.WithLabelValues(operation, table).Inc()
}
