package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/wellspring-lab/wellspring/pkg/cli/config"
	httpctrl "github.com/wellspring-lab/wellspring/pkg/controller/http"
	"github.com/wellspring-lab/wellspring/pkg/service/classifier"
	"github.com/wellspring-lab/wellspring/pkg/service/index"
	"github.com/wellspring-lab/wellspring/pkg/service/ingest"
	"github.com/wellspring-lab/wellspring/pkg/service/llm"
	"github.com/wellspring-lab/wellspring/pkg/service/retrieval"
	"github.com/wellspring-lab/wellspring/pkg/usecase"
	"github.com/wellspring-lab/wellspring/pkg/utils/logging"
	"github.com/wellspring-lab/wellspring/pkg/utils/safe"
)

func cmdServe() *cli.Command {
	var addr string
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var engineCfg config.Engine
	var rulesCfg config.Rules

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("WELLSPRING_ADDR"),
			Destination: &addr,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, engineCfg.Flags()...)
	flags = append(flags, rulesCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure LLM client")
			}

			embedderOpts := []llm.EmbedderOption{
				llm.WithDimension(engineCfg.Dimension()),
			}
			if d := engineCfg.EmbedTimeout(); d > 0 {
				embedderOpts = append(embedderOpts, llm.WithEmbedTimeout(d))
			}
			embedder, err := llm.NewEmbedder(llmClient, embedderOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create embedder")
			}

			generatorOpts := []llm.GeneratorOption{}
			if d := engineCfg.GenerateTimeout(); d > 0 {
				generatorOpts = append(generatorOpts, llm.WithCompleteTimeout(d))
			}
			generator, err := llm.NewGenerator(llmClient, generatorOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create generator")
			}

			rulesConfig, err := rulesCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load classification rules")
			}
			cls, err := classifier.New(rulesConfig)
			if err != nil {
				return goerr.Wrap(err, "failed to compile classification rules")
			}

			// Build the index over the persisted corpus before accepting
			// traffic, so retrieval is ready from the first request.
			idx := index.New(embedder)
			chunks, err := repo.Chunk().List(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to load chunk corpus")
			}
			if err := idx.Build(ctx, chunks); err != nil {
				return goerr.Wrap(err, "failed to build embedding index")
			}

			retriever := retrieval.New(embedder, idx,
				retrieval.WithTopK(engineCfg.TopK()),
				retrieval.WithThreshold(engineCfg.Threshold()),
				retrieval.WithCategoryBoost(engineCfg.CategoryBoost()),
			)

			ingestSvc := ingest.New(repo)

			uc := usecase.New(repo, cls, retriever, generator, idx, ingestSvc,
				usecase.WithPromptBudget(engineCfg.PromptBudget()),
				usecase.WithHistoryWindow(engineCfg.HistoryWindow()),
			)

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server",
					"addr", addr,
					"chunks", len(chunks),
					"engine", engineCfg.LogAttrs(),
				)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
