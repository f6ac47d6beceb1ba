package commands

import (
	"context"

	"github.com/sentryline-systems/sentryline-etl/etl/internal/blobstore"
	"github.com/sentryline-systems/sentryline-etl/etl/internal/dlq"
	"github.com/sentryline-systems/sentryline-etl/etl/internal/extract"
	"github.com/sentryline-systems/sentryline-etl/etl/internal/load"
	"github.com/sentryline-systems/sentryline-etl/etl/internal/repository"
	"github.com/sentryline-systems/sentryline-etl/etl/internal/transform"
	"github.com/sentryline-systems/sentryline-etl/etl/pkg/engine"
)

func newStore(ctx context.Context) (*blobstore.Store, error) {
	return blobstore.New(ctx, &cfg.S3, logger)
}

func newRepository(ctx context.Context) (*repository.PostgresRepository, error) {
	return repository.NewPostgresRepository(ctx, cfg.Postgres.URL, cfg.Postgres.MaxConns)
}

func newExtractor(store *blobstore.Store) *extract.Extractor {
	client := extract.NewClient(cfg.API.BaseURL, cfg.API.Key, cfg.API.Timeout)
	return extract.NewExtractor(client, store, cfg.API.BatchSize, cfg.API.FaultRate, logger)
}

// newTransformer wires the transform stage. The returned closer releases
// the DLQ connection when one was opened.
func newTransformer(ctx context.Context, store *blobstore.Store, repo *repository.PostgresRepository) (*transform.Transformer, func(), error) {
	var publisher transform.DeadLetterPublisher
	closer := func() {}

	if cfg.DLQ.Enabled {
		p, err := dlq.NewPublisher(ctx, cfg.DLQ.NatsURL)
		if err != nil {
			return nil, nil, err
		}
		publisher = p
		closer = p.Close
		logger.Info("dead-letter publisher enabled", "nats_url", cfg.DLQ.NatsURL)
	}

	return transform.New(store, repo, engine.Default(), publisher, logger), closer, nil
}

func newLoader(store *blobstore.Store, repo *repository.PostgresRepository) *load.Loader {
	return load.New(store, repo, logger)
}
