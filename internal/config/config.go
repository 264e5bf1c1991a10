package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	// ConnectTimeoutSec bounds each connection attempt and startup ping.
	ConnectTimeoutSec int
	// ConnectRetries is how many extra pings startup makes while the server comes up.
	ConnectRetries int
}

// MinIOConfig holds settings for the S3-compatible ciphertext mirror.
// The mirror is optional; when Enabled is false blobs are always read back from Walrus.
type MinIOConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// SuiConfig holds fullnode and Move package settings.
type SuiConfig struct {
	RPCURL  string
	Network string
	// PrivateKey is a keystore entry (base64 of scheme flag || 32-byte seed) of the relayer wallet.
	PrivateKey         string
	AllowlistPackageID string
	DocumentPackageID  string
	DocumentModule     string
	GasBudget          int64
	PollInterval       time.Duration
	ConfirmTimeout     time.Duration
	ExplorerTxURL      string
	ExplorerObjectURL  string
}

// WalrusService is one publisher/aggregator pair.
type WalrusService struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	PublisherURL  string `json:"publisher_url"`
	AggregatorURL string `json:"aggregator_url"`
}

// WalrusConfig holds decentralized storage settings.
type WalrusConfig struct {
	Services         []WalrusService
	DefaultServiceID string
	Epochs           int
	MetadataURL      string
	MaxUploadBytes   int64
}

// EncryptionConfig holds the key material of the blob encryption client.
type EncryptionConfig struct {
	MasterKey string
	Threshold int
}

// AuthConfig holds wallet session settings.
type AuthConfig struct {
	JWTSecret    string
	AccessTTL    time.Duration
	ChallengeTTL time.Duration
}

// IndexerConfig controls the on-chain signature event poller.
type IndexerConfig struct {
	Enabled  bool
	Interval time.Duration
	PageSize int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost    string
	Port       string
	Env        string
	LogLevel   string
	Database   DatabaseConfig
	MinIO      MinIOConfig
	Sui        SuiConfig
	Walrus     WalrusConfig
	Encryption EncryptionConfig
	Auth       AuthConfig
	Indexer    IndexerConfig
}

const defaultWalrusServices = "service1|walrus.space|https://publisher.walrus-testnet.walrus.space|https://aggregator.walrus-testnet.walrus.space;" +
	"service2|staketab.org|https://wal-publisher-testnet.staketab.org|https://wal-aggregator-testnet.staketab.org"

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	services := ParseWalrusServices(getEnv("WALRUS_SERVICES", defaultWalrusServices))
	defaultService := ""
	if len(services) > 0 {
		defaultService = services[0].ID
	}

	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", ""),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
			ConnectTimeoutSec:  getEnvInt("DB_CONNECT_TIMEOUT_SEC", 5),
			ConnectRetries:     getEnvInt("DB_CONNECT_RETRIES", 5),
		},
		MinIO: MinIOConfig{
			Enabled:   getEnvBool("MINIO_ENABLED", false),
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Sui: SuiConfig{
			RPCURL:             getEnv("SUI_RPC_URL", "https://fullnode.testnet.sui.io:443"),
			Network:            getEnv("SUI_NETWORK", "testnet"),
			PrivateKey:         getEnv("SUI_PRIVATE_KEY", ""),
			AllowlistPackageID: getEnv("SUI_ALLOWLIST_PACKAGE_ID", "0x4cb081457b1e098d566a277f605ba48410e26e66eaab5b3be4f6c560e9501800"),
			DocumentPackageID:  getEnv("SUI_DOCUMENT_PACKAGE_ID", "0xaccfec6bf67b423c248fdcb1ccd728f32310155b5c277addc279c5a53e0eca1e"),
			DocumentModule:     getEnv("SUI_DOCUMENT_MODULE", "document"),
			GasBudget:          int64(getEnvInt("SUI_GAS_BUDGET", 10000000)),
			PollInterval:       getEnvDuration("SUI_POLL_INTERVAL", 2*time.Second),
			ConfirmTimeout:     getEnvDuration("SUI_CONFIRM_TIMEOUT", 60*time.Second),
			ExplorerTxURL:      getEnv("SUI_EXPLORER_TX_URL", "https://suiscan.xyz/testnet/tx"),
			ExplorerObjectURL:  getEnv("SUI_EXPLORER_OBJECT_URL", "https://suiscan.xyz/testnet/object"),
		},
		Walrus: WalrusConfig{
			Services:         services,
			DefaultServiceID: getEnv("WALRUS_DEFAULT_SERVICE", defaultService),
			Epochs:           getEnvInt("WALRUS_EPOCHS", 2),
			MetadataURL:      getEnv("WALRUS_METADATA_URL", "https://walrus-testnet.lionscraft.blockscape.network:9185"),
			MaxUploadBytes:   int64(getEnvInt("WALRUS_MAX_UPLOAD_BYTES", 10<<20)),
		},
		Encryption: EncryptionConfig{
			MasterKey: getEnv("ENCRYPTION_MASTER_KEY", ""),
			Threshold: getEnvInt("ENCRYPTION_THRESHOLD", 2),
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("AUTH_JWT_SECRET", ""),
			AccessTTL:    getEnvDuration("AUTH_ACCESS_TTL", time.Hour),
			ChallengeTTL: getEnvDuration("AUTH_CHALLENGE_TTL", 5*time.Minute),
		},
		Indexer: IndexerConfig{
			Enabled:  getEnvBool("INDEXER_ENABLED", true),
			Interval: getEnvDuration("INDEXER_INTERVAL", 5*time.Second),
			PageSize: getEnvInt("INDEXER_PAGE_SIZE", 50),
		},
	}
}

// IsProduction reports whether the app runs with production defaults.
func (c *AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Validate checks the settings the server cannot start without.
func (c *AppConfig) Validate() error {
	if c.Sui.PrivateKey == "" {
		return fmt.Errorf("SUI_PRIVATE_KEY is required")
	}
	if c.Encryption.MasterKey == "" {
		return fmt.Errorf("ENCRYPTION_MASTER_KEY is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	if len(c.Walrus.Services) == 0 {
		return fmt.Errorf("at least one walrus service is required")
	}
	if _, ok := c.Walrus.Service(c.Walrus.DefaultServiceID); !ok {
		return fmt.Errorf("unknown default walrus service %q", c.Walrus.DefaultServiceID)
	}
	return nil
}

// Service looks up a walrus service by id.
func (w WalrusConfig) Service(id string) (WalrusService, bool) {
	for _, s := range w.Services {
		if s.ID == id {
			return s, true
		}
	}
	return WalrusService{}, false
}

// ParseWalrusServices parses "id|name|publisher|aggregator" entries separated by ';'.
// Malformed entries are skipped.
func ParseWalrusServices(raw string) []WalrusService {
	var out []WalrusService
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, "|")
		if len(parts) != 4 {
			continue
		}
		s := WalrusService{
			ID:            strings.TrimSpace(parts[0]),
			Name:          strings.TrimSpace(parts[1]),
			PublisherURL:  strings.TrimRight(strings.TrimSpace(parts[2]), "/"),
			AggregatorURL: strings.TrimRight(strings.TrimSpace(parts[3]), "/"),
		}
		if s.ID == "" || s.PublisherURL == "" || s.AggregatorURL == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
