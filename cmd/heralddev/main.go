// Command heralddev runs the development server implementing the backend
// REST contract the client consumes. State lives in memory by default; set
// REDIS_URL to back nonces, token revocation and logout events with Redis.
package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"log/slog"
	"os"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"

	"github.com/shilldao/herald/adapters/events"
	"github.com/shilldao/herald/adapters/store"
	"github.com/shilldao/herald/adapters/tokenizer"
	"github.com/shilldao/herald/adapters/wallet"
	"github.com/shilldao/herald/ports"
	"github.com/shilldao/herald/service"
	transport "github.com/shilldao/herald/transport/http"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// Tokens only need to survive one devserver run, so an ephemeral
	// signing key is enough.
	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		log.Error("generate signing key", "error", err)
		os.Exit(1)
	}

	var (
		revocations ports.Store
		nonces      ports.NonceStore
		eventPub    ports.EventPublisher
	)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Error("parse redis url", "error", err)
			os.Exit(1)
		}
		client := redis.NewClient(opts)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: client},
			watermill.NewSlogLogger(log),
		)
		if err != nil {
			log.Error("create redis publisher", "error", err)
			os.Exit(1)
		}

		redisStore := store.NewRedisStore(client)
		revocations = redisStore
		nonces = redisStore
		eventPub = events.NewWatermillPublisher(publisher)
		log.Info("using redis", "url", redisURL)
	} else {
		memStore := store.NewMemoryStore()
		revocations = memStore
		nonces = memStore
		eventPub = events.NewWatermillPublisher(
			gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(log)),
		)
		log.Info("using in-memory stores")
	}

	var authOpts []service.AuthOption
	authOpts = append(authOpts, service.WithAuthLogger(log))
	if mods := os.Getenv("MODERATORS"); mods != "" {
		authOpts = append(authOpts, service.WithModerators(strings.Split(mods, ",")...))
	}

	authService := service.NewAuthService(
		tokenizer.NewJWTTokenizer(signKey),
		wallet.PersonalVerifier{},
		nonces,
		revocations,
		eventPub,
		authOpts...,
	)

	router := transport.SetupRouter(authService, transport.NewDataset(), log)

	addr := ":9000"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	log.Info("devserver listening", "addr", addr)
	if err := router.Run(addr); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
