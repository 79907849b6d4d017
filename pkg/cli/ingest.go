package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/wellspring-lab/wellspring/pkg/cli/config"
	"github.com/wellspring-lab/wellspring/pkg/domain/model"
	"github.com/wellspring-lab/wellspring/pkg/domain/types"
	"github.com/wellspring-lab/wellspring/pkg/service/ingest"
	"github.com/wellspring-lab/wellspring/pkg/utils/logging"
	"github.com/wellspring-lab/wellspring/pkg/utils/safe"
)

func cmdIngest() *cli.Command {
	var category string
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "category",
			Usage:       "Category for all ingested documents (inferred from content when empty)",
			Sources:     cli.EnvVars("WELLSPRING_INGEST_CATEGORY"),
			Destination: &category,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:      "ingest",
		Usage:     "Chunk and store source documents",
		ArgsUsage: "<file>...",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			paths := c.Args().Slice()
			if len(paths) == 0 {
				return goerr.New("at least one document file is required")
			}

			var cat types.Category
			if category != "" {
				cat = types.Category(category)
				if !cat.IsValid() {
					return goerr.New("invalid category", goerr.V("category", category))
				}
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			svc := ingest.New(repo)

			var total int
			for _, path := range paths {
				// #nosec G304 - path is expected to be provided by CLI argument
				data, err := os.ReadFile(path)
				if err != nil {
					return goerr.Wrap(err, "failed to read document", goerr.V("path", path))
				}

				sourceID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				chunks, err := svc.Ingest(ctx, model.Document{
					SourceID: sourceID,
					Text:     string(data),
					Category: cat,
				})
				if err != nil {
					return goerr.Wrap(err, "ingestion failed", goerr.V("path", path))
				}
				total += len(chunks)
			}

			logging.Default().Info("ingestion completed", "documents", len(paths), "chunks", total)
			return nil
		},
	}
}
