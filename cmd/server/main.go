// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/appleaww/messenger/internal/auth"
	"github.com/appleaww/messenger/internal/config"
	"github.com/appleaww/messenger/internal/domain"
	"github.com/appleaww/messenger/internal/events"
	"github.com/appleaww/messenger/internal/handlers"
	"github.com/appleaww/messenger/internal/middleware"
	"github.com/appleaww/messenger/internal/ratelimit"
	chatrepo "github.com/appleaww/messenger/internal/repository/chat"
	messagerepo "github.com/appleaww/messenger/internal/repository/message"
	userrepo "github.com/appleaww/messenger/internal/repository/user"
	"github.com/appleaww/messenger/internal/services"
	chatservice "github.com/appleaww/messenger/internal/services/chat"
	"github.com/appleaww/messenger/internal/services/presence"
	"github.com/appleaww/messenger/internal/services/relay"
	"github.com/appleaww/messenger/internal/services/user_services"
	"github.com/appleaww/messenger/internal/ws"
)

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	cfg := config.Load()

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	if err := db.AutoMigrate(&domain.User{}, &domain.Chat{}, &domain.Message{}); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	// --- Repositories ---
	userRepo := userrepo.NewGormUserRepository(db)
	chatRepo := chatrepo.NewChatRepository(db)
	messageRepo := messagerepo.NewMessageRepository(db)

	// --- Core infrastructure ---
	logger := services.NewLogger("messenger")
	codec := auth.NewCodec(cfg.JWTSecretKey, cfg.JWTTTL)

	producer := events.NewProducer(
		events.NewLogSink(services.NewLogger("metrics")),
		cfg.EventBusBuffer,
		cfg.EventBusTimeout,
		logger,
	)

	hub := ws.NewHub(services.NewLogger("hub"))

	// --- Services ---
	tracker := presence.NewTracker(userRepo, hub, producer, services.NewLogger("presence"))
	relayService := relay.NewRelay(chatRepo, messageRepo, hub, producer, services.NewLogger("relay"))
	chatService := chatservice.NewService(chatRepo, messageRepo, userRepo, services.NewLogger("chat"))
	authService := user_services.NewAuthService(userRepo, codec, services.NewLogger("auth"))

	// --- WebSocket wiring ---
	authenticator := ws.NewAuthenticator(codec, userRepo, services.NewLogger("ws"))
	dispatcher := ws.NewSessionEventDispatcher(tracker, services.NewLogger("ws"))
	wsHandler := ws.NewHandler(authenticator, hub, dispatcher, relayService, services.NewLogger("ws"))

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	chatHandler := handlers.NewChatHandler(chatService)
	statusHandler := handlers.NewStatusHandler(tracker)

	// --- Router Setup ---
	r := mux.NewRouter()
	authMiddleware := middleware.NewJWTMiddleware(codec)

	authLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultAuthConfig())
	defer authLimiter.Close()

	r.Use(corsMiddleware)
	r.Use(middleware.RecoverPanic)
	r.Use(middleware.LoggingMiddleware)

	// --- Public Routes ---
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK); _, _ = w.Write([]byte("OK")) }).Methods("GET")
	r.HandleFunc("/ws", wsHandler.ServeWS).Methods("GET")

	authRoutes := r.PathPrefix("/api/auth").Subrouter()
	authRoutes.Use(middleware.RateLimitMiddleware(authLimiter))
	authRoutes.HandleFunc("/register", authHandler.Register).Methods("POST")
	authRoutes.HandleFunc("/login", authHandler.Login).Methods("POST")

	// --- Protected Routes ---
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware)
	api.HandleFunc("/chats", chatHandler.ListChats).Methods("GET")
	api.HandleFunc("/chats", chatHandler.CreateChat).Methods("POST")
	api.HandleFunc("/chats/{id:[0-9]+}", chatHandler.OpenChat).Methods("GET")
	api.HandleFunc("/chats/{id:[0-9]+}/close", chatHandler.CloseChat).Methods("POST")
	api.HandleFunc("/chats/{id:[0-9]+}", chatHandler.DeleteChat).Methods("DELETE")
	api.HandleFunc("/status/online", statusHandler.GetOnlineUsers).Methods("GET")
	api.HandleFunc("/status/{userId:[0-9]+}", statusHandler.GetUserStatus).Methods("GET")

	// --- Server Configuration ---
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Messenger server starting on port %s (env: %s)", cfg.ServerPort, cfg.Environment)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	producer.Close()
	log.Println("Server stopped gracefully")
}
