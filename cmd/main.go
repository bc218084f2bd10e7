package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-relay/auth"
	"chat-relay/httpapi"
	"chat-relay/moderation"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"chat-relay/storage"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the HTTP server and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB) & blob storage
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	//  Defer will be executed before run() returned anything to main()
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blobs, err := storage.NewBlobStore(config.UploadDir)
	if err != nil {
		return err
	}

	// 3. Routing core: registry, membership, dispatcher, pipeline
	messageRepository := repositories.NewMessageRepository(db, log)
	userRepository := repositories.NewUserRepository(db)
	groupRepository := repositories.NewGroupRepository(db)
	fileRepository := repositories.NewFileRepository(db)

	registry := runtime.NewRegistry()
	membership := runtime.NewMembership(log, registry, groupRepository)
	dispatcher := runtime.NewDispatcher(log, registry, membership, groupRepository)

	var censor runtime.Censor
	if config.CensoredWordsPath != nil {
		words, err := moderation.LoadWords(*config.CensoredWordsPath)
		if err != nil {
			return fmt.Errorf("censored words loading failed: %w", err)
		}
		replacement, err := CharacterRune(config.ModerationCharReplacement)
		if err != nil {
			return err
		}
		moderator, err := moderation.NewModerator(words, replacement)
		if err != nil {
			return fmt.Errorf("moderator build failed: %w", err)
		}
		censor = moderator
	}
	pipeline := runtime.NewPipeline(log, messageRepository, userRepository,
		groupRepository, fileRepository, dispatcher, censor)

	// 4. Services
	tokens := auth.NewTokenIssuer(config.JWTSecret, config.AuthTokenDuration)
	authService := services.NewAuthService(userRepository, tokens)
	chatService := services.NewChatService(registry, membership, pipeline,
		messageRepository, groupRepository)
	groupService := services.NewGroupService(groupRepository)
	uploadService := services.NewUploadService(log, blobs, fileRepository, pipeline)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Background workers under supervision
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewStoreGC(db, log, config.StoreGCInterval))
	go sup.Run(ctx)

	// 7. HTTP & websocket server
	router := httpapi.NewRouter(log, authService, chatService, groupService,
		uploadService, config.ConnectionBufferSize)
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("Shutting down HTTP server...")
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info(fmt.Sprintf("Server listening on %s", address))
	if err = server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
