package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shilldao/chainauth/adapters/campaigns"
	"github.com/shilldao/chainauth/adapters/chain"
	"github.com/shilldao/chainauth/adapters/events"
	"github.com/shilldao/chainauth/adapters/sessions"
	"github.com/shilldao/chainauth/adapters/store"
	"github.com/shilldao/chainauth/config"
	"github.com/shilldao/chainauth/ports"
	"github.com/shilldao/chainauth/service"
	"github.com/shilldao/chainauth/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Generate a session signing key (you would normally load this from
	// somewhere secure).
	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		log.Fatalf("Failed to generate signing key: %v", err)
	}

	var nonceStore ports.NonceStore
	var eventPub ports.EventPublisher

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opts)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			log.Fatalf("Failed to create Redis publisher: %v", err)
		}

		nonceStore = store.NewRedisStore(redisClient, cfg.NonceTTL)
		eventPub = events.NewWatermillPublisher(publisher)
	} else {
		logger.Warn("REDIS_URL not set, using in-memory nonce store (single instance only)")
		nonceStore = store.NewMemoryStore(cfg.NonceTTL)
	}

	chainReader, err := chain.Dial(cfg.ChainRPCURL, cfg.RPCTimeout)
	if err != nil {
		log.Fatalf("Failed to connect to chain node: %v", err)
	}

	sessionIssuer := sessions.NewJWTIssuer(signKey)

	authService := service.NewAuthService(nonceStore, sessionIssuer, eventPub, logger, cfg.AllowNonceReplay)
	paymentService := service.NewPaymentService(chainReader, service.PaymentConfig{
		TokenContract:   common.HexToAddress(cfg.TokenContract),
		Treasury:        common.HexToAddress(cfg.Treasury),
		TokenDecimals:   cfg.TokenDecimals,
		FreshnessWindow: cfg.FreshnessWindow,
	}, logger)

	handlers := http.NewHandlers(authService, paymentService, campaigns.NewMemoryStore(), eventPub)
	router := http.SetupRouter(handlers, authService)

	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
