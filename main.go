package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"selambus/internal/admin"
	"selambus/internal/auth"
	intconfig "selambus/internal/config"
	router "selambus/internal/http"
	"selambus/internal/http/handlers"
	"selambus/internal/notify"
	"selambus/internal/payment"
	"selambus/internal/search"
	"selambus/internal/storage"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	store, closeStore := openStore(env)
	defer closeStore()

	var notifier notify.Notifier = notify.LogNotifier{}
	if env.NATSURL != "" {
		nc, err := notify.ConnectNATS(env.NATSURL)
		if err != nil {
			log.Printf("NATS unavailable, logging notifications instead: %v", err)
		} else {
			defer func() { _ = nc.Drain() }()
			notifier = notify.NATSNotifier{Conn: nc, Subject: notify.DefaultSubject}
		}
	}

	var paymentRand func() payment.Rand
	if env.PaymentSeed != 0 {
		paymentRand = func() payment.Rand { return rand.New(rand.NewSource(env.PaymentSeed)) }
	}

	now := time.Now()
	hd := handlers.New(handlers.Deps{
		Store:        store,
		StoreDriver:  env.StoreDriver,
		Users:        auth.NewUsers(store),
		Tokens:       auth.Tokens{Secret: []byte(env.JWTSecret)},
		AdminEmail:   env.AdminEmail,
		Listings:     search.NewGenerator(nil),
		Notifier:     notifier,
		Admin:        admin.NewFixture(rand.New(rand.NewSource(now.UnixNano())), now),
		PaymentDelay: env.PaymentDelay,
		NotifyDelay:  env.PaymentDelay / 2,
		PaymentRand:  paymentRand,
	})

	r := router.NewRouter(env, hd)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("SelamBus API listening on http://localhost%s (store=%s)", env.AppAddr, env.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}

	log.Println("server stopped.")
}

// openStore connects the configured storage driver. Unknown drivers and
// failed connections fall back to memory so the API still serves.
func openStore(env intconfig.Env) (storage.Store, func()) {
	switch env.StoreDriver {
	case "mysql":
		conn, err := intconfig.ConnectDB(env.MySQLDSN)
		if err != nil {
			log.Printf("mysql unavailable, using memory store: %v", err)
			break
		}
		return storage.NewMySQLStore(conn), intconfig.CloseDB
	case "redis":
		rs := storage.NewRedisStore(env.RedisAddr)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rs.Ping(ctx); err != nil {
			log.Printf("redis unavailable, using memory store: %v", err)
			_ = rs.Close()
			break
		}
		log.Println("connected to Redis storage")
		return rs, func() { _ = rs.Close() }
	case "memory":
	default:
		log.Printf("unknown STORE_DRIVER %q, using memory store", env.StoreDriver)
	}
	return storage.NewMemoryStore(), func() {}
}
