package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"doc-segmenter/internal/app"
	"doc-segmenter/internal/httputil"
	"doc-segmenter/internal/queue"
	"doc-segmenter/internal/store"
)

type embedTaskPayload struct {
	DocumentID uuid.UUID   `json:"document_id"`
	ChunkIDs   []uuid.UUID `json:"chunk_ids"`
}

func main() {
	deps, err := app.BuildIndexer()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deps.Log.Info("indexer worker started")
		return deps.Queue.Worker(gctx, queue.TaskTypeEmbed, handleEmbed(deps))
	})
	g.Go(func() error {
		return httputil.ServeHealth(deps.Log, deps.Config.Port, "indexer")
	})
	if err := g.Wait(); err != nil {
		deps.Log.Error("indexer stopped", "err", err)
		os.Exit(1)
	}
}

func handleEmbed(deps app.Deps) queue.Handler {
	return func(ctx context.Context, task queue.Task) error {
		var payload embedTaskPayload
		if err := json.Unmarshal(task.Payload, &payload); err != nil {
			return fmt.Errorf("invalid embed payload: %w", err)
		}
		log := deps.Log.With("document_id", payload.DocumentID)

		chunks, err := deps.Store.ListChunks(ctx, payload.DocumentID)
		if err != nil {
			return fmt.Errorf("failed to list chunks: %w", err)
		}
		if len(chunks) == 0 {
			log.Warn("no chunks to embed")
			return deps.Store.UpdateDocumentStatus(ctx, payload.DocumentID, store.StatusReady)
		}

		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Content
		}

		start := time.Now()
		vectors, err := deps.Embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding failed: %w", err)
		}
		if len(vectors) != len(chunks) {
			return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
		}
		log.Info("chunks embedded", "chunks", len(chunks), "duration_ms", time.Since(start).Milliseconds())

		embs := make([]store.Embedding, len(chunks))
		for i, c := range chunks {
			embs[i] = store.Embedding{
				ChunkID: c.ID,
				Vector:  vectors[i],
				Model:   deps.Config.EmbeddingModel,
			}
		}
		if err := deps.Store.SaveEmbeddings(ctx, embs); err != nil {
			return fmt.Errorf("failed to save embeddings: %w", err)
		}
		if err := deps.Store.UpdateDocumentStatus(ctx, payload.DocumentID, store.StatusReady); err != nil {
			return fmt.Errorf("failed to update document status: %w", err)
		}
		return nil
	}
}
