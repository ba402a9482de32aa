package app

import (
	"fmt"

	"github.com/galenhq/galen/internal/common"
	"github.com/galenhq/galen/internal/interfaces"
	"github.com/galenhq/galen/internal/services/analyzer"
	"github.com/galenhq/galen/internal/services/chunker"
	"github.com/galenhq/galen/internal/services/costs"
	"github.com/galenhq/galen/internal/services/knowledge"
	"github.com/galenhq/galen/internal/services/llm"
	"github.com/galenhq/galen/internal/services/reasoner"
	"github.com/galenhq/galen/internal/services/retrieval"
	"github.com/galenhq/galen/internal/services/validator"
	"github.com/galenhq/galen/internal/services/workflow"
	"github.com/galenhq/galen/internal/storage/badger"
	"github.com/ternarybob/arbor"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager

	Embedder         interfaces.EmbeddingService
	Chunker          interfaces.DocumentChunker
	RetrievalService interfaces.RetrievalService
	QueryAnalyzer    interfaces.QueryAnalyzer
	Reasoner         interfaces.Reasoner
	Validator        interfaces.ResponseValidator
	CostTracker      *costs.Service
	KnowledgeService interfaces.KnowledgeService
	Workflow         interfaces.Workflow
}

// New wires the full service graph from configuration
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	storageManager, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	embedder, err := llm.NewEmbedder(config)
	if err != nil {
		_ = storageManager.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	chunkerService := chunker.NewService(config)
	retrievalService := retrieval.NewService(config, embedder, storageManager.VectorStore())
	queryAnalyzer := analyzer.NewService()
	costTracker := costs.NewService(storageManager.CostStorage())

	providers := llm.NewProviders(config)
	reasonerService := reasoner.NewService(config, providers, reasoner.NewPriorityStrategy(config.Reasoning.Priority))
	validatorService := validator.NewService()

	app := &App{
		Config:           config,
		Logger:           logger,
		StorageManager:   storageManager,
		Embedder:         embedder,
		Chunker:          chunkerService,
		RetrievalService: retrievalService,
		QueryAnalyzer:    queryAnalyzer,
		Reasoner:         reasonerService,
		Validator:        validatorService,
		CostTracker:      costTracker,
		KnowledgeService: knowledge.NewService(chunkerService, embedder, storageManager.VectorStore()),
		Workflow:         workflow.NewService(queryAnalyzer, retrievalService, reasonerService, validatorService, costTracker),
	}

	logger.Info().
		Str("environment", config.Environment).
		Str("embedding_provider", config.Embedding.Provider).
		Strs("provider_priority", config.Reasoning.Priority).
		Msg("Application initialized")

	return app, nil
}

// Close releases application resources
func (a *App) Close() error {
	a.Logger.Debug().Msg("Closing application")
	return a.StorageManager.Close()
}
