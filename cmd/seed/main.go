package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"time"

	"github.com/joho/godotenv"

	"github.com/jbaikge/boneless/internal/config"
	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentRepo "github.com/jbaikge/boneless/internal/domain/repositories/content"
	"github.com/jbaikge/boneless/internal/fieldtype"
	"github.com/jbaikge/boneless/internal/repository/store"
	"github.com/jbaikge/boneless/internal/seed"
	serviceContent "github.com/jbaikge/boneless/internal/service/content"
)

func main() {
	schemaOnly := flag.Bool("schema-only", false, "Only apply the schema, don't seed content")
	clearData := flag.Bool("clear-data", false, "Delete all classes, documents and templates before seeding")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *clearData {
		log.Fatalf("BLOCKED: cannot run --clear-data in production environment")
	}

	logger, logFile, err := config.NewLogger(cfg, "seed")
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer logFile.Close()

	ctx := context.Background()
	repos, err := store.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer repos.Close()

	if *schemaOnly {
		logger.Info("schema ready", "table_prefix", cfg.TablePrefix)
		return
	}

	if *clearData {
		if err := clearAll(ctx, repos, logger); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
	}

	registry, err := fieldtype.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load field type catalog: %v", err)
	}

	// The sample carries no file payloads; uploads are refused
	uploads := serviceContent.NewUploadCoordinator(refuseUploads{}, nil, time.Minute, logger)

	seeder := seed.NewContentSeeder(
		serviceContent.NewClassService(repos.Classes, repos.TxManager, registry, logger),
		serviceContent.NewTemplateService(repos.Templates, logger),
		serviceContent.NewDocumentService(repos.Documents, repos.Classes, repos.Templates,
			serviceContent.NewDocumentCodec(registry, logger), uploads, logger),
		logger,
	)

	if _, err := seeder.SeedSample(ctx); err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}
}

type refuseUploads struct{}

func (refuseUploads) SignUpload(ctx context.Context, req content.UploadRequest) (*content.UploadDescriptor, error) {
	return nil, errors.New("seed does not upload files")
}

// clearAll deletes every document, class and template, page by page
func clearAll(ctx context.Context, repos *store.Store, logger *slog.Logger) error {
	page := content.Range{End: 99}

	for {
		classes, _, err := repos.Classes.List(ctx, content.ClassFilter{Range: page})
		if err != nil {
			return err
		}
		if len(classes) == 0 {
			break
		}
		for _, class := range classes {
			if err := clearDocuments(ctx, repos.Documents, class.ID); err != nil {
				return err
			}
			if err := repos.Classes.Delete(ctx, class.ID); err != nil {
				return err
			}
		}
	}

	for {
		templates, _, err := repos.Templates.List(ctx, content.TemplateFilter{Range: page})
		if err != nil {
			return err
		}
		if len(templates) == 0 {
			break
		}
		for _, tmpl := range templates {
			if err := repos.Templates.Delete(ctx, tmpl.ID); err != nil {
				return err
			}
		}
	}

	logger.Info("data cleared")
	return nil
}

func clearDocuments(ctx context.Context, docs contentRepo.DocumentRepository, classID string) error {
	for {
		batch, _, err := docs.List(ctx, content.DocumentFilter{ClassID: classID, Range: content.Range{End: 99}})
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		for _, doc := range batch {
			if err := docs.Delete(ctx, classID, doc.ID); err != nil {
				return err
			}
		}
	}
}
