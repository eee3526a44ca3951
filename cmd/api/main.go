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

	"divehub/internal/adapter/api"
	"divehub/internal/adapter/api/handler"
	apimiddleware "divehub/internal/adapter/api/middleware"
	"divehub/internal/adapter/api/router"
	"divehub/internal/adapter/repository"
	"divehub/internal/domain/entity"
	"divehub/internal/infrastructure/firebase"
	"divehub/internal/infrastructure/realtime"
	"divehub/internal/infrastructure/storage"
	"divehub/internal/infrastructure/websocket"
	"divehub/internal/usecase"
	"divehub/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opts []option.ClientOption

	serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
	if serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		opts = append(opts, option.WithCredentialsJSON([]byte(serviceAccountJSON)))
	} else if serviceAccountPath != "" {
		log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
		opts = append(opts, option.WithCredentialsFile(serviceAccountPath))
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, serviceAccountPath)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	profileRepo := repository.NewFirestoreProfileRepository(firestoreClient)
	chatRepo := repository.NewFirestoreChatRepository(firestoreClient)
	notificationRepo := repository.NewFirestoreNotificationRepository(firestoreClient)
	courseRepo := repository.NewFirestoreCourseRepository(firestoreClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient, cfg.FirebaseApiKey)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	unreadWatcher := realtime.NewUnreadWatcher(firestoreClient, wsManager, entity.DefaultCategoryMapper)
	threadWatcher := realtime.NewThreadWatcher(firestoreClient, wsManager)

	// Snapshot watchers follow the connection lifecycle: unread counters per
	// user, thread snapshots per joined chat room.
	wsManager.OnConnect = func(userID string) { unreadWatcher.Watch(ctx, userID) }
	wsManager.OnDisconnect = unreadWatcher.Unwatch
	wsManager.OnJoinRoom = func(chatID, userID string) { threadWatcher.Watch(ctx, chatID, userID) }
	wsManager.OnLeaveRoom = threadWatcher.Unwatch

	notificationUseCase := usecase.NewNotificationUseCase(notificationRepo, wsManager)
	chatUseCase := usecase.NewChatUseCase(chatRepo, profileRepo, notificationUseCase, wsManager)
	buddyUseCase := usecase.NewBuddyUseCase(profileRepo, notificationUseCase, cfg.ProfileSearchCap)
	courseMessagingUseCase := usecase.NewCourseMessagingUseCase(courseRepo, profileRepo, notificationUseCase, wsManager)
	profileUseCase := usecase.NewProfileUseCase(profileRepo, firebaseAuthClient, storageClient)

	e := echo.New()

	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	e.Validator = api.NewValidator()

	var verifier apimiddleware.TokenVerifier = firebaseAuthClient
	devTokenMinter := firebase.NewDevTokenMinter(cfg.JWTSecret, cfg.JWTExpiry)
	if cfg.Environment == "development" {
		// Local tokens instead of Firebase ID tokens when developing
		// without a Firebase project.
		verifier = devTokenMinter
	}
	authMiddleware := apimiddleware.NewAuthMiddleware(verifier)

	router.Setup(e, router.Handlers{
		Profile:      handler.NewProfileHandler(profileUseCase),
		Chat:         handler.NewChatHandler(chatUseCase),
		Buddy:        handler.NewBuddyHandler(buddyUseCase),
		Notification: handler.NewNotificationHandler(notificationUseCase),
		Course:       handler.NewCourseHandler(courseMessagingUseCase),
		WebSocket:    handler.NewWebSocketHandler(wsManager, authMiddleware),
		Health:       handler.NewHealthHandler(),
	}, authMiddleware)
	router.SetupDevRouter(e, handler.NewDevTokenHandler(devTokenMinter, profileRepo), cfg.Environment)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
