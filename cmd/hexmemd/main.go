// Command hexmemd runs the HexMem memory service: it wires config, store,
// embedder, extractor, and every internal package into one HTTP server,
// grounded on nuka-world's cmd/nuka main.go composition-root/graceful-
// shutdown shape.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hexmem/hexmem/internal/analytics"
	"github.com/hexmem/hexmem/internal/auth"
	"github.com/hexmem/hexmem/internal/config"
	"github.com/hexmem/hexmem/internal/decay"
	"github.com/hexmem/hexmem/internal/embedding"
	"github.com/hexmem/hexmem/internal/extraction"
	"github.com/hexmem/hexmem/internal/server"
	"github.com/hexmem/hexmem/internal/store"
)

const version = "0.1.0"

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	log := logger.Sugar()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalw("load config failed", "err", err)
	}

	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			log.Fatalw("resolve default db path failed", "err", err)
		}
	}
	db, err := store.Open(dbPath)
	if err != nil {
		log.Fatalw("open database failed", "path", dbPath, "err", err)
	}
	defer db.Close()

	var embedder embedding.Embedder
	switch cfg.Embedder.Provider {
	case "http":
		if embedding.Probe(cfg.Embedder.URL, cfg.Embedder.Model) {
			embedder = embedding.NewHTTPEmbedder(cfg.Embedder.URL, cfg.Embedder.Model, cfg.Embedder.Dims)
		} else {
			log.Warnw("embedder probe failed, falling back to hash embedder", "url", cfg.Embedder.URL)
			embedder = embedding.NewHashEmbedder(cfg.Embedder.Dims)
		}
	default:
		embedder = embedding.NewHashEmbedder(cfg.Embedder.Dims)
	}

	extractor := &extraction.RuleExtractor{}
	summarizer := &extraction.RuleSummarizer{}

	decayEngine := decay.New(db, log)
	decayEngine.StartTicker()
	defer decayEngine.Stop()

	analyticsLogger := &analytics.Logger{DB: db, Zap: log}
	stopPrune := analyticsLogger.StartPruneTicker()
	defer stopPrune()

	authn := &auth.Authenticator{DB: db, DevKey: cfg.Auth.DevKey}

	srv := server.New(server.Deps{
		DB:         db,
		Embedder:   embedder,
		Extractor:  extractor,
		Summarizer: summarizer,
		Auth:       authn,
		Decay:      decayEngine,
		Analytics:  analyticsLogger,
		Log:        log,
		Version:    version,
	})

	httpSrv := &http.Server{
		Addr:    cfg.ListenAddr(),
		Handler: srv,
	}

	go func() {
		log.Infow("hexmemd listening", "addr", cfg.ListenAddr(), "embedder", cfg.Embedder.Provider)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server error", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down hexmemd")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Warnw("graceful shutdown failed", "err", err)
	}
}
