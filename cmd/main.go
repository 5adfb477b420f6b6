package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"gala-votacao-app/internal/config"
	"gala-votacao-app/internal/handlers"
	"gala-votacao-app/internal/kafka"
	"gala-votacao-app/internal/metrics"
	"gala-votacao-app/internal/ratelimit"
	"gala-votacao-app/internal/services"
	"gala-votacao-app/internal/store"
	"gala-votacao-app/internal/telemetry"
)

func main() {
	// Carregar variáveis de ambiente
	if err := godotenv.Load(); err != nil {
		log.Println("Arquivo .env não encontrado, usando variáveis do sistema")
	}
	cfg := config.Carregar()

	// Inicializar telemetria
	cleanup, err := telemetry.InitTelemetry()
	if err != nil {
		log.Printf("Aviso: Erro ao inicializar telemetria: %v", err)
	} else {
		defer cleanup()
	}

	// Inicializar métricas
	metrics.InitMetrics()

	// Inicializar banco de dados
	db, err := store.NovoMySQL(cfg.DSN())
	if err != nil {
		log.Fatalf("Erro ao conectar ao banco: %v", err)
	}
	defer db.Fechar()

	// Criar tabelas automaticamente na inicialização
	if err := db.CriarTabelas(); err != nil {
		log.Printf("Aviso: Erro ao criar tabelas na inicialização: %v", err)
	} else {
		log.Println("Tabelas verificadas/criadas na inicialização")
	}

	relogio := clockwork.NewRealClock()

	// Contadores dos limitadores: Redis quando configurado, memória
	// local caso contrário.
	var contadores ratelimit.ContadorStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		contadores = ratelimit.NovoContadorRedis(rdb, "gala")
		log.Printf("Limitadores usando Redis em %s", cfg.RedisAddr)
	} else {
		contadores = ratelimit.NovoContadorMemoria(relogio)
		log.Println("Limitadores usando memória local")
	}

	limitadorVotos := ratelimit.NovoLimitadorVotos(contadores, relogio)
	limitadorLogin := ratelimit.NovoLimitadorLogin(contadores, relogio)

	// Produtor Kafka é opcional: sem broker, os eventos são
	// descartados em silêncio.
	produtor, err := kafka.NovoProdutor(cfg.KafkaBroker)
	if err != nil {
		log.Printf("Aviso: Erro ao conectar ao Kafka: %v", err)
	}
	if produtor != nil {
		defer produtor.Fechar()
	}

	votacao := services.NewVotacaoService(db, limitadorVotos, produtor, relogio)
	listagem := services.NewListagemService(db, relogio)
	dashboard := services.NewDashboardService(db, relogio)
	auth := services.NewAuthService(db, limitadorLogin, produtor, cfg.JWTSecret, relogio)

	api := handlers.NewAPI(votacao, listagem, dashboard, auth, db, cfg.Debug)

	// Limite bruto por IP na frente de toda a API.
	porIP := ratelimit.NovoPorIP(cfg.RequisicoesPorSegundo, cfg.Burst)
	done := make(chan struct{})
	defer close(done)
	porIP.IniciarLimpeza(done)

	// Configurar rotas com middleware de telemetria
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("gala-votacao-app"))
	r.Use(handlers.MetricsMiddleware)
	r.Use(ratelimit.Middleware(porIP, handlers.ExtrairIP))

	api.RegistrarRotas(r)

	// Endpoint de métricas Prometheus
	r.Handle("/metrics", metrics.MetricsHandler()).Methods(http.MethodGet)

	// Criar servidor HTTP com instrumentação OpenTelemetry
	handler := otelhttp.NewHandler(r, "gala-votacao-app")
	server := &http.Server{
		Addr:    ":" + cfg.PortaAPI,
		Handler: handler,
	}

	// Canal para receber sinais de interrupção
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Servidor iniciado na porta %s", cfg.PortaAPI)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Erro ao iniciar servidor: %v", err)
		}
	}()

	<-stop
	log.Println("Recebido sinal de interrupção, desligando servidor...")

	// Desligar servidor graciosamente
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Erro ao desligar servidor: %v", err)
	}

	log.Println("Servidor desligado com sucesso")
}
