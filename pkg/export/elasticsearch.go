package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"

	"github.com/voidshard/budget/pkg/domain"
)

// from https://github.com/elastic/go-elasticsearch/blob/master/_examples/bulk/indexer.go

const (
	esIndex = "budget"
	esFlush = 2048

	envEsAddr = "ELASTICSEARCH_SERVICE_HOST"
	envEsPort = "ELASTICSEARCH_SERVICE_PORT"
)

// ElasticsearchV8 indexes every transaction as its own document, keyed by
// transaction ID, so exporting twice does not duplicate anything.
type ElasticsearchV8 struct {
	addresses []string
	log       *slog.Logger

	// retries of 429 / 5xx responses per request
	maxRetries int
}

// NewElasticsearchV8 talks to the given nodes, or to the node named by
// ELASTICSEARCH_SERVICE_HOST / ELASTICSEARCH_SERVICE_PORT when there are none.
func NewElasticsearchV8(logger *slog.Logger, urls ...string) *ElasticsearchV8 {
	if len(urls) == 0 {
		address := os.Getenv(envEsAddr)
		port := os.Getenv(envEsPort)
		if port == "" {
			port = "9200" // default port
		}
		if address == "" {
			address = "localhost" // default address
		}
		urls = []string{fmt.Sprintf("http://%s:%s", address, port)}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ElasticsearchV8{
		addresses:  urls,
		log:        logger.With("component", "export", "sink", "es8"),
		maxRetries: 5,
	}
}

func (e *ElasticsearchV8) String() string {
	return fmt.Sprintf("elasticsearch %v index %s", e.addresses, esIndex)
}

func (e *ElasticsearchV8) Write(ctx context.Context, l *domain.Ledger) error {
	retryBackoff := backoff.NewExponentialBackOff()

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: e.addresses,

		// Retry on 429 TooManyRequests statuses
		RetryOnStatus: []int{502, 503, 504, 429},

		RetryBackoff: func(i int) time.Duration {
			if i == 1 {
				retryBackoff.Reset()
			}
			return retryBackoff.NextBackOff()
		},

		MaxRetries: e.maxRetries,
	})
	if err != nil {
		return err
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         esIndex,
		FlushBytes:    esFlush,
		Client:        es,
		NumWorkers:    4,
		FlushInterval: 10 * time.Second,
	})
	if err != nil {
		return err
	}

	res, err := es.Indices.Create(esIndex, es.Indices.Create.WithContext(ctx))
	if err != nil {
		e.log.Debug("attempted to make index", "index", esIndex, "error", err)
	} else {
		// 400 when it already exists, which is fine
		e.log.Debug("attempted to make index", "index", esIndex, "status", res.StatusCode)
		res.Body.Close()
	}

	for i := range l.Transactions {
		tx := l.Transactions[i]
		data, err := tx.JSON()
		if err != nil {
			return err
		}

		err = bi.Add(
			ctx,
			esutil.BulkIndexerItem{
				Action:     "index",
				DocumentID: tx.ID,
				Body:       bytes.NewReader(data),
				OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
					if err != nil {
						e.log.Error("failed to index transaction", "id", item.DocumentID, "error", err)
					} else {
						e.log.Error("failed to index transaction", "id", item.DocumentID, "type", res.Error.Type, "reason", res.Error.Reason)
					}
				},
			},
		)
		if err != nil {
			return err
		}
	}

	if err := bi.Close(ctx); err != nil {
		return err
	}

	stats := bi.Stats()
	if stats.NumFailed > 0 {
		e.log.Warn("indexed transactions with errors", "flushed", stats.NumFlushed, "failed", stats.NumFailed)
		return fmt.Errorf("failed indexing %d transactions", stats.NumFailed)
	}
	e.log.Info("indexed transactions", "flushed", stats.NumFlushed)
	return nil
}
