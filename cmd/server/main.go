package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/jbaikge/boneless/internal/config"
	contentRepo "github.com/jbaikge/boneless/internal/domain/repositories/content"
	"github.com/jbaikge/boneless/internal/fieldtype"
	"github.com/jbaikge/boneless/internal/handler"
	"github.com/jbaikge/boneless/internal/middleware"
	"github.com/jbaikge/boneless/internal/repository/store"
	serviceContent "github.com/jbaikge/boneless/internal/service/content"
	"github.com/jbaikge/boneless/internal/storage/local"
	"github.com/jbaikge/boneless/internal/storage/s3"
	"github.com/jbaikge/boneless/internal/storage/transfer"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, logFile, err := config.NewLogger(cfg, "server")
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer logFile.Close()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"sqlite", cfg.UsesSQLite(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry, err := fieldtype.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load field type catalog: %v", err)
	}
	logger.Info("field type catalog loaded", "types", len(registry.Tags()))

	repos, err := store.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer repos.Close()

	mux := http.NewServeMux()

	// Upload target: S3 when a bucket is configured, local disk otherwise
	var signer contentRepo.FileSigner
	if cfg.S3Bucket != "" {
		signer, err = s3.NewSigner(ctx, s3.Config{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			StaticDomain: cfg.StaticDomain,
			Expiry:       cfg.UploadExpiry,
		}, logger)
		if err != nil {
			log.Fatalf("Failed to create S3 signer: %v", err)
		}
		logger.Info("upload target", "bucket", cfg.S3Bucket, "region", cfg.S3Region)
	} else {
		localStore, err := local.NewStore(cfg.UploadDir, cfg.PublicURL, []byte(cfg.UploadSecret), cfg.UploadExpiry, logger)
		if err != nil {
			log.Fatalf("Failed to create local upload store: %v", err)
		}
		localStore.Register(mux)
		signer = localStore
		logger.Warn("no S3 bucket configured, storing uploads locally", "dir", cfg.UploadDir)
	}

	// Services
	codec := serviceContent.NewDocumentCodec(registry, logger)
	uploads := serviceContent.NewUploadCoordinator(signer, transfer.NewHTTPTransferer(nil, logger), cfg.UploadExpiry, logger)
	classService := serviceContent.NewClassService(repos.Classes, repos.TxManager, registry, logger)
	docService := serviceContent.NewDocumentService(repos.Documents, repos.Classes, repos.Templates, codec, uploads, logger)
	templateService := serviceContent.NewTemplateService(repos.Templates, logger)
	importService := serviceContent.NewImportService(repos.Classes, repos.Templates, registry, logger)
	exportService := serviceContent.NewExportService(repos.Classes, repos.Templates, logger)
	formService := serviceContent.NewFormService(repos.Classes, repos.Documents, codec, logger)

	// Handlers
	handlers := &handler.Handlers{
		Classes:   handler.NewClassHandler(classService, logger),
		Documents: handler.NewDocumentHandler(docService, logger),
		Templates: handler.NewTemplateHandler(templateService, logger),
		Files:     handler.NewFileHandler(signer, cfg.UploadExpiry, logger),
		Imports:   handler.NewImportHandler(importService, exportService, logger),
		Forms:     handler.NewFormHandler(formService, logger),
	}
	handlers.Register(mux)

	// Build middleware chain
	// Order: CORS → Recovery → RequestLogger → Routes
	var h http.Handler = mux
	h = middleware.RequestLogger(logger)(h)
	h = middleware.Recovery(logger)(h)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposedHeaders:   []string{"Content-Range", "X-Total-Count"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  2 * time.Minute, // multipart document uploads
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}
