package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/ludoroyale/ludo-services/configs"
	"github.com/ludoroyale/ludo-services/internal/gamesvc/broker"
	"github.com/ludoroyale/ludo-services/internal/gamesvc/db"
	"github.com/ludoroyale/ludo-services/internal/gamesvc/engine"
	handlers "github.com/ludoroyale/ludo-services/internal/gamesvc/handlers"
	"github.com/ludoroyale/ludo-services/internal/gamesvc/history"
	"github.com/ludoroyale/ludo-services/internal/gamesvc/service"
	"github.com/ludoroyale/ludo-services/internal/gamesvc/store"
	nats "github.com/ludoroyale/ludo-services/internal/nats"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "game"

const lockTimeout = 5 * time.Second

var instanceId string

func init() {
	instanceId = "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {

	// pg connection
	dbpool, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureSchema(ctx, dbpool); err != nil {
		cancel()
		log.Fatalf("Failed to ensure schema: %v", err)
	}
	cancel()

	gameStore := store.NewGameStore(dbpool)
	playerStore := store.NewPlayerStore(dbpool)
	pieceStore := store.NewPieceStore(dbpool)

	locks := service.NewGameLocks(lockTimeout)
	dice := engine.NewDefaultRoller()

	lobbyService := service.NewLobbyService(gameStore, playerStore, pieceStore, locks)
	turnService := service.NewTurnService(gameStore, playerStore, pieceStore, dice, locks)

	// mongo turn history (best-effort audit trail)
	histCtx, histCancel := context.WithTimeout(context.Background(), 30*time.Second)
	histStore, histDisconnect, err := history.Connect(histCtx)
	histCancel()
	if err != nil {
		log.Errorf("Error: unable to connect to Mongo history store %v", err)
		os.Exit(0)
	}
	defer histDisconnect()
	log.Printf("mongo connection established successfully")
	turnService.SetHistoryRecorder(histStore)

	// Connect to NATS
	n, err := nats.Connect()
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	// publish game events to the socket service
	b := broker.NewBroker(n.Conn)
	lobbyService.SetEventPublisher(b)
	turnService.SetEventPublisher(b)

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimitStr := os.Getenv("RATE_LIMIT")
	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil {
		log.Fatalf("Invalid RATE_LIMIT value: %v", err)
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(lobbyService, turnService, histStore)
	h.InitAuth()
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + os.Getenv("GAME_SERVICE_PORT"),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
