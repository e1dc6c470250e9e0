package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"github.com/andriel300/tec-shop-sub006/internal/adapter/api"
	"github.com/andriel300/tec-shop-sub006/internal/adapter/api/handler"
	apimiddleware "github.com/andriel300/tec-shop-sub006/internal/adapter/api/middleware"
	"github.com/andriel300/tec-shop-sub006/internal/adapter/api/router"
	"github.com/andriel300/tec-shop-sub006/internal/adapter/repository"
	"github.com/andriel300/tec-shop-sub006/internal/domain/service"
	"github.com/andriel300/tec-shop-sub006/internal/infrastructure/eventbus"
	"github.com/andriel300/tec-shop-sub006/internal/infrastructure/firebase"
	"github.com/andriel300/tec-shop-sub006/internal/infrastructure/metrics"
	"github.com/andriel300/tec-shop-sub006/internal/infrastructure/presence"
	ws "github.com/andriel300/tec-shop-sub006/internal/infrastructure/websocket"
	"github.com/andriel300/tec-shop-sub006/internal/usecase"
	"github.com/andriel300/tec-shop-sub006/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opt option.ClientOption

	// Service account from environment variable (production) with a file
	// path fallback for local development.
	serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	if serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
	} else {
		serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
		if serviceAccountPath == "" {
			serviceAccountPath = "./service-account.json"
		}

		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}

		log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
		opt = option.WithCredentialsFile(serviceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	metrics.Register()

	var bus eventbus.Client
	if cfg.NATSURL != "" {
		bus = eventbus.NewNATSClient(eventbus.DefaultNATSConfig(cfg.NATSURL))
	} else {
		log.Printf("NATS_URL not set, using in-process event bus")
		bus = eventbus.NewMemoryBus()
	}
	if err := bus.Connect(ctx); err != nil {
		log.Fatalf("Failed to connect event bus: %v", err)
	}
	defer bus.Disconnect()

	var presenceStore presence.Store
	if cfg.RedisAddr != "" {
		store, err := presence.NewRedisStore(cfg.RedisAddr, "presence")
		if err != nil {
			log.Fatalf("Failed to connect Redis: %v", err)
		}
		defer store.Close()
		presenceStore = store
	} else {
		log.Printf("REDIS_ADDR not set, using in-process presence store")
		presenceStore = presence.NewMemoryStore()
	}

	tracker := presence.NewTracker(presenceStore, bus, cfg.TypingTTL)

	conversationRepo := repository.NewFirestoreConversationRepository(firestoreClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient)

	notificationUseCase := usecase.NewNotificationUseCase(service.NewTemplateEngine(), bus, cfg.PublishTimeout)
	conversationUseCase := usecase.NewConversationUseCase(conversationRepo, bus, tracker, notificationUseCase, cfg.PublishTimeout)

	wsManager := ws.NewManager()
	wsManager.Start(ctx)
	if err := wsManager.BindBus(bus); err != nil {
		log.Fatalf("Failed to bind event bus to websocket manager: %v", err)
	}

	e := echo.New()

	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(firebaseAuthClient)

	conversationHandler := handler.NewConversationHandler(conversationUseCase)
	wsHandler := handler.NewWebSocketHandler(wsManager, firebaseAuthClient, conversationUseCase)
	healthHandler := handler.NewHealthHandler(bus)

	router.Setup(e, conversationHandler, wsHandler, healthHandler, authMiddleware)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
