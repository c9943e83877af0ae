package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/DavidGir/Camelot/internal/config"
	"github.com/DavidGir/Camelot/internal/core"
	db "github.com/DavidGir/Camelot/internal/core/database"
	"github.com/DavidGir/Camelot/internal/core/ingest"
	"github.com/DavidGir/Camelot/internal/core/llm"
	"github.com/DavidGir/Camelot/internal/core/objectclient"
)

type App struct {
	DBClient core.DbClient
	Server   *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Object client initialized and ready.")

	geminiEmbedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder, %w", err)
	}

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the generator, %w", err)
	}

	extractor := ingest.NewDocExtractor()
	fetcher := ingest.NewFileFetcher(objClient, cfg.BucketName)
	splitCfg := ingest.NewSplitterConfig(ingest.DefaultChunkSize, ingest.DefaultChunkOverlap)

	docIngestor := ingest.NewDocumentIngestor(dbClient, geminiEmbedder, extractor, fetcher, splitCfg)

	server := NewServer(cfg, dbClient, objClient, docIngestor, geminiEmbedder, llmProvider)

	return &App{DBClient: dbClient, Server: server}, nil
}

func (a *App) Close() {
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
