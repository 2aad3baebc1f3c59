package main

import (
	"upload-form-server/config"
	_ "upload-form-server/docs"
	"upload-form-server/internal/handler"
	"upload-form-server/internal/ports"
	"upload-form-server/internal/repository"
	"upload-form-server/internal/security"
	"upload-form-server/internal/service"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Upload-form-server
// @version 1.0
// @description REST API для приёма загрузок файлов через формы

// @host localhost:8080

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка при закрытии БД: %v", err)
		}
	}()

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		log.Fatalf("Ошибка подключения к Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Ошибка при закрытии Redis: %v", err)
		}
	}()

	srv, router := config.SetupServer(cfg.ServerAddr)

	userRepo := repository.NewUserRepository(db)
	jwtRepo := repository.NewJWTRepository(db)
	formRepo := repository.NewFormRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, time.Duration(cfg.TTL.S3AndRedis)*time.Second)

	s3Service, err := service.NewS3Service(ctx, &cfg.S3Config)
	if err != nil {
		log.Fatalf("Ошибка создания S3 сервиса: %v", err)
	}

	// без Google-креденшлов сервер работает, но response-таблицы не ведутся
	var sheetSynchronizer ports.SheetSynchronizer
	if cfg.Google.Enabled {
		sheetsClient, err := service.NewGoogleSheetsClient(ctx, &cfg.Google)
		if err != nil {
			log.Fatalf("Ошибка создания Sheets клиента: %v", err)
		}
		driveService, err := service.NewDriveService(ctx, &cfg.Google)
		if err != nil {
			log.Fatalf("Ошибка создания Drive сервиса: %v", err)
		}
		sheetSynchronizer = service.NewSheetsService(sheetsClient, driveService, formRepo, db, cfg.Google.FolderName)
	} else {
		log.Println("Google API выключен, синхронизация с таблицами не выполняется")
	}

	formService := service.NewFormService(formRepo, submissionRepo, cacheRepo)
	submissionService := service.NewSubmissionService(formRepo, submissionRepo, sheetSynchronizer)

	jwtService := security.NewJWTService(&cfg.JWT)
	userService := service.NewUserService(userRepo, jwtService, jwtRepo)
	authService := service.NewAuthenticationService(jwtRepo, cfg, jwtService, userRepo)

	authHandler := handler.NewAuthenticationHandler(authService, jwtService, []byte(cfg.JWT.SecretKey))
	userHandler := handler.NewUserHandler(userService)
	formHandler := handler.NewFormHandler(formService)
	submissionHandler := handler.NewSubmissionHandler(submissionService, s3Service, jwtService, []byte(cfg.JWT.SecretKey), &cfg.TTL)

	router.Use(config.DBMiddleware(db))
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	setupAuthRoutes(router, authHandler, jwtService, jwtRepo, cfg)
	setupUserRoutes(router, userHandler, jwtService, jwtRepo, cfg)
	setupFormRoutes(router, formHandler, submissionHandler, jwtService, jwtRepo, cfg)

	runServer(ctx, srv, submissionService)
}

func setupAuthRoutes(r chi.Router, h *handler.AuthenticationHandler, jwtService *security.JWTService, jwtRepo *repository.JWTRepository, cfg *config.AppConfig) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(security.JWTMiddleware([]byte(cfg.JWT.SecretKey), jwtRepo, jwtService, cfg.Admin.AdminToken))
			r.Get("/me", h.GetCurrentUser)
			r.Post("/refresh", h.RefreshToken)
		})
		r.Group(func(r chi.Router) {
			r.Post("/", h.Login)
			r.Delete("/{token}", h.Logout)
		})
	})
}

func setupUserRoutes(r chi.Router, h *handler.UserHandler, jwtService *security.JWTService, jwtRepo *repository.JWTRepository, cfg *config.AppConfig) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.RegisterUser)

		r.Group(func(r chi.Router) {
			r.Use(security.JWTMiddleware([]byte(cfg.JWT.SecretKey), jwtRepo, jwtService, cfg.Admin.AdminToken))

			r.Route("/users/{uuid}", func(r chi.Router) {
				r.Get("/", h.GetUser)
				r.Put("/", h.UpdateUser)
				r.Put("/password", h.UpdatePassword)
			})

			r.Delete("/users/{uuid}", h.DeleteUser)
		})
	})
}

func setupFormRoutes(
	r chi.Router,
	formHandler *handler.FormHandler,
	submissionHandler *handler.SubmissionHandler,
	jwtService *security.JWTService,
	jwtRepo *repository.JWTRepository,
	cfg *config.AppConfig,
) {
	r.Route("/api/forms", func(r chi.Router) {
		r.Use(security.JWTMiddleware([]byte(cfg.JWT.SecretKey), jwtRepo, jwtService, cfg.Admin.AdminToken))
		r.Get("/", formHandler.ListForms)
		r.Post("/", formHandler.CreateForm)

		r.Route("/{uuid}", func(r chi.Router) {
			r.Get("/", formHandler.GetForm)
			r.Put("/", formHandler.UpdateForm)
			r.Delete("/", formHandler.DeleteForm)
			r.Post("/publish", formHandler.PublishForm)
			r.Post("/accepting", formHandler.SetAccepting)
			r.Post("/duplicate", formHandler.DuplicateForm)
			r.Get("/submissions", submissionHandler.ListSubmissions)
			r.Post("/resync-sheet", submissionHandler.ResyncSheet)
		})
	})

	// публичная страница отправки работает без авторизации
	r.Route("/api/public/forms/{uuid}", func(r chi.Router) {
		r.Get("/", formHandler.GetPublicForm)
		r.Post("/upload-slot", submissionHandler.CreateUploadSlot)
		r.Post("/submissions", submissionHandler.Submit)
	})
}

func runServer(ctx context.Context, server *http.Server, submissionService *service.SubmissionService) {
	serverErrors := make(chan error, 1)
	go func() {
		log.Println("сервер запущен на " + server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			log.Fatalf("ошибка работы сервера: %v", err)
		}
	case sig := <-signalChannel:
		log.Printf("получен сигнал %v остановки работы сервера ", sig)
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		log.Printf("ошибка при остановке сервера: %v", err)
	} else {
		log.Println("Сервер успешно остановлен")
	}

	// дожидаемся фоновых синков с таблицами, чтобы не терять строки
	submissionService.WaitForSync()
}
