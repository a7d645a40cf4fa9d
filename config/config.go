package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Modos de confiança nas claims do token de acesso.
const (
	// ClaimsModeStateless confia integralmente nas claims embutidas no token
	// (rápido, sem ida ao banco; permissões ficam defasadas até o próximo refresh).
	ClaimsModeStateless = "stateless"
	// ClaimsModeRehydrate recarrega tipo/clube/permissões do banco a cada
	// requisição autenticada (sempre fresco, ao custo de uma consulta).
	ClaimsModeRehydrate = "rehydrate"
)

// Config armazena todas as configurações da API do clube.
type Config struct {
	// Geral
	Port        string
	Environment string
	LogLevel    string

	// Banco de Dados (PostgreSQL)
	DatabaseURL string
	DBTimeout   time.Duration

	// Cache (Redis), usado pelo rate limiter das rotas de autenticação.
	RedisAddr string

	// Segurança (JWT). Segredos separados para access e refresh impedem que
	// um token seja apresentado no lugar do outro.
	JWTSecretKey        string
	JWTRefreshSecretKey string
	AccessTokenExpiry   time.Duration
	RefreshTokenExpiry  time.Duration

	// AuthClaimsMode decide entre confiar nas claims do token (stateless) ou
	// re-hidratar o contexto do banco a cada requisição (rehydrate).
	AuthClaimsMode string

	// Rate Limiting
	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration
}

// LoadConfig carrega as configurações a partir das variáveis de ambiente.
func LoadConfig() *Config {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// mustGetEnv garante que a aplicação não inicie sem credenciais de DB
		DatabaseURL: mustGetEnv("DATABASE_URL"),
		DBTimeout:   getDurationEnv("DB_TIMEOUT_SEC", 5) * time.Second,

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		JWTSecretKey:        mustGetEnv("JWT_SECRET_KEY"),
		JWTRefreshSecretKey: mustGetEnv("JWT_REFRESH_SECRET_KEY"),
		AccessTokenExpiry:   getDurationEnv("ACCESS_TOKEN_EXPIRY_MIN", 15) * time.Minute,
		RefreshTokenExpiry:  getDurationEnv("REFRESH_TOKEN_EXPIRY_HOURS", 168) * time.Hour, // 7 dias

		AuthClaimsMode: getEnv("AUTH_CLAIMS_MODE", ClaimsModeStateless),

		RateLimitMaxRequests: getIntEnv("RATE_LIMIT_MAX_REQUESTS", 100),
		RateLimitPeriod:      getDurationEnv("RATE_LIMIT_PERIOD_MIN", 15) * time.Minute,
	}

	if cfg.AuthClaimsMode != ClaimsModeStateless && cfg.AuthClaimsMode != ClaimsModeRehydrate {
		log.Fatalf("❌ Erro de Configuração: AUTH_CLAIMS_MODE deve ser %q ou %q.", ClaimsModeStateless, ClaimsModeRehydrate)
	}

	return cfg
}

// IsDevelopment informa se a API roda em modo de desenvolvimento (erros
// internos ecoam o detalhe subjacente na resposta).
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Funções Helpers (Auxiliares)

// getEnv lê a variável de ambiente ou retorna um valor padrão.
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// mustGetEnv lê a variável de ambiente, fatal se não estiver presente.
func mustGetEnv(key string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Fatalf("❌ Erro de Configuração: A variável de ambiente %s deve ser definida.", key)
	return ""
}

// getDurationEnv lê uma variável de ambiente numérica e retorna-a como time.Duration.
func getDurationEnv(key string, defaultValue int) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return time.Duration(defaultValue)
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️ Aviso: Valor de %s ('%s') não é um número inteiro válido. Usando padrão (%d).", key, valueStr, defaultValue)
		return time.Duration(defaultValue)
	}
	return time.Duration(value)
}

// getIntEnv lê uma variável de ambiente numérica e retorna-a como int.
func getIntEnv(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️ Aviso: Valor de %s ('%s') não é um número inteiro válido. Usando padrão (%d).", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
