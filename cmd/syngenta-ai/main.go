package main

import (
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/kumar-cmd/syngenta-ai/internal/cache"
	"github.com/kumar-cmd/syngenta-ai/internal/classify"
	"github.com/kumar-cmd/syngenta-ai/internal/config"
	"github.com/kumar-cmd/syngenta-ai/internal/docquery"
	"github.com/kumar-cmd/syngenta-ai/internal/embedding"
	"github.com/kumar-cmd/syngenta-ai/internal/importer"
	"github.com/kumar-cmd/syngenta-ai/internal/llm"
	"github.com/kumar-cmd/syngenta-ai/internal/logger"
	"github.com/kumar-cmd/syngenta-ai/internal/server"
	"github.com/kumar-cmd/syngenta-ai/internal/store"
	"github.com/kumar-cmd/syngenta-ai/internal/vectorstore"
)

func main() {
	var (
		configPath   = flag.String("config", "config.yaml", "path to yaml config file")
		templateGlob = flag.String("templates", "web/templates/*.html", "glob for HTML templates")
	)
	flag.Parse()

	// .env is optional; real deployments configure the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	gdb, err := store.Open(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to MySQL: %v", err)
	}
	if err := store.EnsureSchema(gdb); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}
	if err := store.EnsureAdmin(gdb, cfg.Database.AdminEmail, cfg.Database.AdminPassword); err != nil {
		log.Fatalf("failed to seed admin user: %v", err)
	}

	// The vector index is opened once and the process refuses to start
	// without it; there is no degraded-answer fallback.
	vstore, err := vectorstore.NewProvider(&cfg.VectorDB)
	if err != nil {
		log.Fatalf("failed to open vector index: %v", err)
	}
	defer vstore.Close()

	llmProvider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		log.Fatalf("failed to create llm provider: %v", err)
	}
	embedProvider, err := embedding.NewProvider(cfg.Embedding)
	if err != nil {
		log.Fatalf("failed to create embedding provider: %v", err)
	}

	answerCache := cache.NewLRU[*docquery.Result](cfg.Query.CacheSize, time.Duration(cfg.Query.CacheTTLSeconds)*time.Second)
	engine := docquery.NewEngine(embedProvider, vstore, llmProvider, docquery.Options{
		TopK:          cfg.Query.TopK,
		Threshold:     cfg.Query.Threshold,
		ContextBudget: cfg.Query.ContextBudget,
		CacheTTL:      time.Duration(cfg.Query.CacheTTLSeconds) * time.Second,
	}, answerCache)

	orders := store.NewOrderStore(gdb)
	srv := server.New(server.Options{
		Config:       cfg.Server,
		CSVPath:      cfg.Importer.CSVPath,
		Classifier:   classify.New(llmProvider),
		Engine:       engine,
		Importer:     importer.New(orders),
		Orders:       orders,
		TemplateGlob: *templateGlob,
	})

	if err := srv.Run(cfg.Server.ListenAddr); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
