package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Postgres PostgresConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Elastic  ElasticsearchConfig
	I18n     I18nConfig
	Catalog  CatalogConfig
}

type ServerConfig struct {
	AppEnv          string
	HTTPPort        string
	GRPCPort        string
	AllowedOrigins  []string
	ShutdownTimeout int
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

type JWTConfig struct {
	SecretKey string
	Issuer    string
	TTL       int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers       []string
	Topic         string
	GroupID       string
	ProductTopic  string
	EnableOrders  bool
	EnableProduce bool
}

type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
}

type I18nConfig struct {
	DefaultLocale string
}

type CatalogConfig struct {
	SKUPrefix         string
	DefaultMinQty     int
	QRBaseURL         string
	AppURL            string
	InsertRetries     int
	ListCacheTTL      int
	LockRetries       int
	SearchIndex       string
	MaxVariantsPerReq int
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:          getEnv("APP_ENV", "dev"),
			HTTPPort:        getEnv("HTTP_PORT", ":8083"),
			GRPCPort:        getEnv("GRPC_PORT", ":8082"),
			AllowedOrigins:  getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			ShutdownTimeout: getEnvInt("SHUTDOWN_TIMEOUT", 10),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5433"),
			User:            getEnv("POSTGRES_USER", "omnipos"),
			Password:        getEnv("POSTGRES_PASSWORD", "omnipos"),
			DBName:          getEnv("POSTGRES_DB", "omnipos_catalog"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET_KEY", "your-secret-key-change-this-in-prod"),
			Issuer:    getEnv("JWT_ISSUER", "omnipos"),
			TTL:       getEnvInt("JWT_TTL_MINUTES", 60),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:       getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:         getEnv("KAFKA_TOPIC_ORDERS", "orders.events"),
			GroupID:       getEnv("KAFKA_GROUP_INVENTORY", "catalog-inventory"),
			ProductTopic:  getEnv("KAFKA_TOPIC_PRODUCTS", "products.events"),
			EnableOrders:  getEnvBool("KAFKA_ENABLE_ORDERS", true),
			EnableProduce: getEnvBool("KAFKA_ENABLE_PRODUCE", true),
		},
		Elastic: ElasticsearchConfig{
			Addresses: getEnvSlice("ELASTICSEARCH_ADDRESSES", []string{"http://localhost:9200"}),
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("I18N_DEFAULT_LOCALE", "en"),
		},
		Catalog: CatalogConfig{
			SKUPrefix:         getEnv("CATALOG_SKU_PREFIX", "SKU"),
			DefaultMinQty:     getEnvInt("CATALOG_DEFAULT_MIN_QUANTITY", 2),
			QRBaseURL:         getEnv("CATALOG_QR_BASE_URL", "https://api.qrserver.com/v1/create-qr-code/"),
			AppURL:            getEnv("CATALOG_APP_URL", "http://localhost:3000"),
			InsertRetries:     getEnvInt("CATALOG_INSERT_RETRIES", 3),
			ListCacheTTL:      getEnvInt("CATALOG_LIST_CACHE_TTL", 300),
			LockRetries:       getEnvInt("CATALOG_LOCK_RETRIES", 3),
			SearchIndex:       getEnv("CATALOG_SEARCH_INDEX", "products"),
			MaxVariantsPerReq: getEnvInt("CATALOG_MAX_VARIANTS", 50),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.Split(value, ",")
	}
	return fallback
}
