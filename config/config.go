package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/shilldao/chainauth/core"
	"github.com/shilldao/chainauth/internal/eth"
)

// Config holds all configuration for the service, read from the environment.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string

	// RedisURL selects the redis nonce store and event stream. Empty falls
	// back to the in-memory store with no event bus (single instance only).
	RedisURL string

	// ChainRPCURL is the JSON-RPC endpoint of the chain node.
	ChainRPCURL string

	// TokenContract is the payment token contract address.
	TokenContract string

	// Treasury is the address campaign payments must be sent to.
	Treasury string

	// TokenDecimals is the payment token's decimal count.
	TokenDecimals int32

	// FreshnessWindow bounds the accepted age of a payment's block.
	FreshnessWindow time.Duration

	// NonceTTL bounds the lifetime of issued challenges.
	NonceTTL time.Duration

	// RPCTimeout bounds each chain node call.
	RPCTimeout time.Duration

	// AllowNonceReplay disables single-use nonce deletion. Staging only.
	AllowNonceReplay bool
}

// Load reads the environment (and an optional .env file) into a Config and
// validates it.
func Load() (*Config, error) {
	// .env is a development convenience; deployments inject env vars directly.
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:       getEnv("LISTEN_ADDR", ":9000"),
		RedisURL:         os.Getenv("REDIS_URL"),
		ChainRPCURL:      os.Getenv("CHAIN_RPC_URL"),
		TokenContract:    getEnv("TOKEN_CONTRACT_ADDRESS", "0x652159C7F62E9C1613476CA600f3B591DbFC920e"),
		Treasury:         getEnv("TREASURY_ADDRESS", "0xE5FE82ec6482d0291f22B5269eDBC4a046eEA763"),
		AllowNonceReplay: getEnvBool("ALLOW_NONCE_REPLAY", false),
	}

	decimals, err := getEnvInt("TOKEN_DECIMALS", 18)
	if err != nil {
		return nil, err
	}
	cfg.TokenDecimals = int32(decimals)

	cfg.FreshnessWindow, err = getEnvSeconds("FRESHNESS_WINDOW_SECONDS", core.DefaultFreshnessWindow)
	if err != nil {
		return nil, err
	}
	cfg.NonceTTL, err = getEnvSeconds("NONCE_TTL_SECONDS", core.DefaultNonceTTL)
	if err != nil {
		return nil, err
	}
	cfg.RPCTimeout, err = getEnvSeconds("RPC_TIMEOUT_SECONDS", 5*time.Second)
	if err != nil {
		return nil, err
	}

	if cfg.ChainRPCURL == "" {
		return nil, fmt.Errorf("CHAIN_RPC_URL is required")
	}
	if !eth.IsHexAddress(cfg.TokenContract) {
		return nil, fmt.Errorf("TOKEN_CONTRACT_ADDRESS is not a valid address: %s", cfg.TokenContract)
	}
	if !eth.IsHexAddress(cfg.Treasury) {
		return nil, fmt.Errorf("TREASURY_ADDRESS is not a valid address: %s", cfg.Treasury)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s is not a number: %s", key, value)
	}
	return parsed, nil
}

func getEnvSeconds(key string, fallback time.Duration) (time.Duration, error) {
	seconds, err := getEnvInt(key, int(fallback.Seconds()))
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds) * time.Second, nil
}
