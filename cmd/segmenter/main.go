package main

import (
	"bytes"
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
	"doc-segmenter/internal/parser"
	"doc-segmenter/internal/queue"
	"doc-segmenter/internal/store"
)

type segmentTaskPayload struct {
	DocumentID uuid.UUID `json:"document_id"`
	Filename   string    `json:"filename"`
	Content    []byte    `json:"content"`
}

type embedTaskPayload struct {
	DocumentID uuid.UUID   `json:"document_id"`
	ChunkIDs   []uuid.UUID `json:"chunk_ids"`
}

func main() {
	deps, err := app.BuildSegmenter()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deps.Log.Info("segmenter worker started")
		return deps.Queue.Worker(gctx, queue.TaskTypeSegment, handleSegment(deps))
	})
	g.Go(func() error {
		return httputil.ServeHealth(deps.Log, deps.Config.Port, "segmenter")
	})
	if err := g.Wait(); err != nil {
		deps.Log.Error("segmenter stopped", "err", err)
		os.Exit(1)
	}
}

func handleSegment(deps app.Deps) queue.Handler {
	return func(ctx context.Context, task queue.Task) error {
		var payload segmentTaskPayload
		if err := json.Unmarshal(task.Payload, &payload); err != nil {
			return fmt.Errorf("invalid segment payload: %w", err)
		}
		log := deps.Log.With("document_id", payload.DocumentID, "filename", payload.Filename)

		p, err := parser.ForFile(payload.Filename)
		if err != nil {
			return markFailed(ctx, deps, payload.DocumentID, fmt.Errorf("no parser for file: %w", err))
		}
		doc, err := p.Parse(bytes.NewReader(payload.Content), payload.Filename)
		if err != nil {
			return markFailed(ctx, deps, payload.DocumentID, fmt.Errorf("parse failed: %w", err))
		}

		start := time.Now()
		chunks, err := deps.Pipeline.Run(ctx, doc)
		if err != nil {
			return markFailed(ctx, deps, payload.DocumentID, fmt.Errorf("segmentation failed: %w", err))
		}
		log.Info("document segmented", "chunks", len(chunks), "duration_ms", time.Since(start).Milliseconds())

		toSave := make([]store.Chunk, len(chunks))
		for i, c := range chunks {
			toSave[i] = store.Chunk{
				DocumentID: payload.DocumentID,
				Index:      i,
				Path:       c.Path,
				Content:    c.Content,
				TokenCount: c.TokenCount,
			}
		}
		saved, err := deps.Store.SaveChunks(ctx, payload.DocumentID, toSave)
		if err != nil {
			return markFailed(ctx, deps, payload.DocumentID, fmt.Errorf("failed to save chunks: %w", err))
		}
		if err := deps.Store.UpdateDocumentStatus(ctx, payload.DocumentID, store.StatusSegmented); err != nil {
			return fmt.Errorf("failed to update document status: %w", err)
		}

		chunkIDs := make([]uuid.UUID, len(saved))
		for i, c := range saved {
			chunkIDs[i] = c.ID
		}
		body, err := json.Marshal(embedTaskPayload{DocumentID: payload.DocumentID, ChunkIDs: chunkIDs})
		if err != nil {
			return fmt.Errorf("marshal embed payload failed: %w", err)
		}
		next := queue.Task{Type: queue.TaskTypeEmbed, Payload: body}
		if err := queue.EnqueueWithRetry(ctx, deps.Queue, next, 3, 200*time.Millisecond); err != nil {
			return markFailed(ctx, deps, payload.DocumentID, fmt.Errorf("failed to enqueue embed task: %w", err))
		}
		return nil
	}
}

// markFailed flips the document to failed before surfacing the error so the
// client sees a terminal status instead of a stuck "processing".
func markFailed(ctx context.Context, deps app.Deps, docID uuid.UUID, cause error) error {
	if err := deps.Store.UpdateDocumentStatus(ctx, docID, store.StatusFailed); err != nil {
		deps.Log.Error("failed to mark document failed", "document_id", docID, "err", err)
	}
	return cause
}
