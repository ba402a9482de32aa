package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/galenhq/galen/internal/app"
	"github.com/galenhq/galen/internal/common"
	"github.com/galenhq/galen/internal/models"
	"github.com/ternarybob/arbor"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	queryText    = flag.String("query", "", "Run the medical query workflow for the given question")
	ingestFile   = flag.String("ingest", "", "Ingest a knowledge file into the global collection")
	ingestTitle  = flag.String("title", "", "Title for the ingested knowledge entry (defaults to the file name)")
	ingestSource = flag.String("source", "file", "Source label for the ingested knowledge entry")
	userID       = flag.String("user", "cli", "User id attributed to the request")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	config *common.Config
	logger arbor.ILogger
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Galen version %s\n", common.GetVersion())
		os.Exit(0)
	}

	// Startup sequence:
	// 1. Load config (defaults -> files -> env)
	// 2. Initialize logger
	// 3. Print banner
	if len(configFiles) == 0 {
		if _, err := os.Stat("galen.toml"); err == nil {
			configFiles = append(configFiles, "galen.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger = common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Strs("config_files", configFiles).
		Str("environment", config.Environment).
		Str("log_level", config.Logging.Level).
		Msg("Application configuration loaded")

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer application.Close()

	ctx := context.Background()

	switch {
	case *ingestFile != "":
		runIngest(ctx, application, *ingestFile)
	case *queryText != "":
		runQuery(ctx, application, *queryText)
	default:
		fmt.Fprintln(os.Stderr, "nothing to do: pass -query <text> or -ingest <file>")
		flag.Usage()
		os.Exit(2)
	}
}

func runIngest(ctx context.Context, application *app.App, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Fatal().Err(err).Str("path", path).Msg("Failed to read knowledge file")
		os.Exit(1)
	}

	title := *ingestTitle
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	id, err := application.KnowledgeService.IngestKnowledge(ctx, title, string(data), *ingestSource, map[string]string{
		"file_name": filepath.Base(path),
	})
	if err != nil {
		logger.Fatal().Err(err).Str("path", path).Msg("Knowledge ingestion failed")
		os.Exit(1)
	}

	fmt.Printf("Ingested %s as %s\n", path, id)
}

func runQuery(ctx context.Context, application *app.App, query string) {
	start := time.Now()
	result, err := application.Workflow.Run(ctx, &models.WorkflowRequest{
		Query:  query,
		UserID: *userID,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Workflow execution failed")
		os.Exit(1)
	}

	fmt.Println(result.Final.Content)
	fmt.Println()
	if len(result.Citations) > 0 {
		fmt.Println("Sources:")
		for _, c := range result.Citations {
			fmt.Printf("  [%s] %s (%.2f)\n", c.ID, c.Title, c.RelevanceScore)
		}
		fmt.Println()
	}
	fmt.Printf("state=%s confidence=%.2f urgency=%s cost=%s USD elapsed=%s\n",
		result.State, result.Final.Confidence, result.Final.Urgency, result.TotalCost, time.Since(start).Round(time.Millisecond))
}
