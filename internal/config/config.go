package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config reúne toda a configuração derivada do ambiente. O carregamento
// acontece uma única vez no main; o restante do código recebe a struct
// explicitamente, sem ler variáveis de ambiente por conta própria.
type Config struct {
	PortaAPI string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	KafkaBroker string
	RedisAddr   string

	JWTSecret string
	Debug     bool

	// Limite bruto por IP aplicado na frente de toda a API
	// (token bucket), separado dos limitadores de voto e login.
	RequisicoesPorSegundo float64
	Burst                 int
}

// Carregar monta a configuração a partir das variáveis de ambiente,
// com os mesmos defaults usados em desenvolvimento.
func Carregar() Config {
	cfg := Config{
		PortaAPI:    getenv("API_PORT", "8080"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBHost:      getenv("DB_HOST", "localhost"),
		DBPort:      getenv("DB_PORT", "3306"),
		DBName:      getenv("DB_NAME", "gala"),
		KafkaBroker: os.Getenv("KAFKA_BROKER"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		JWTSecret:   getenv("JWT_SECRET", "change_this_secret_key_in_production"),
		Debug:       os.Getenv("DEBUG") == "true",
	}

	cfg.RequisicoesPorSegundo = getenvFloat("RATE_RPS", 50)
	cfg.Burst = getenvInt("RATE_BURST", 100)

	return cfg
}

// DSN monta a string de conexão MySQL. parseTime é obrigatório para
// escanear hora_voto direto em time.Time.
func (c Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func getenv(chave, padrao string) string {
	if v := os.Getenv(chave); v != "" {
		return v
	}
	return padrao
}

func getenvInt(chave string, padrao int) int {
	if v := os.Getenv(chave); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return padrao
}

func getenvFloat(chave string, padrao float64) float64 {
	if v := os.Getenv(chave); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return padrao
}
