package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

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

type searchRequest struct {
	Query       string   `json:"query" validate:"required,min=3,max=500"`
	DocumentIDs []string `json:"document_ids" validate:"required,min=1,dive,uuid4"`
	TopK        int      `json:"top_k" validate:"omitempty,min=1,max=20"`
}

type searchHit struct {
	ChunkID    string   `json:"chunk_id"`
	DocumentID string   `json:"document_id"`
	Score      float32  `json:"score"`
	Path       []string `json:"path"`
	Preview    string   `json:"preview"` // Truncated content preview
}

func main() {
	deps, err := app.BuildGateway()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	r := httputil.NewRouter(deps.Log)

	r.Post("/api/documents", uploadHandler(deps))
	r.Get("/api/documents/{id}/chunks", chunksHandler(deps))
	r.Post("/api/search", searchHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps.Log))

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	deps.Log.Info("gateway listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		deps.Log.Error("server failed", "err", err)
	}
}

func uploadHandler(deps app.Deps) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// Validate file size before parsing
		if r.ContentLength > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			httputil.Fail(deps.Log, w, "file is required", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		if !parser.IsSupportedExtension(header.Filename) {
			httputil.Fail(deps.Log, w, "unsupported file type (allowed: md, markdown, wiki, wikitext, txt, pdf)", nil, http.StatusBadRequest)
			return
		}

		content, err := io.ReadAll(file)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusInternalServerError)
			return
		}

		doc, err := deps.Store.CreateDocument(ctx, parser.DocTitle(header.Filename), header.Filename)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to persist document", err, http.StatusInternalServerError)
			return
		}

		payload := segmentTaskPayload{
			DocumentID: doc.ID,
			Filename:   header.Filename,
			Content:    content,
		}

		body, err := json.Marshal(payload)
		if err != nil {
			fail(deps, ctx, w, "marshal payload failed", err, doc.ID, http.StatusInternalServerError, true)
			return
		}
		task := queue.Task{Type: queue.TaskTypeSegment, Payload: body}
		if err := queue.EnqueueWithRetry(ctx, deps.Queue, task, 3, 200*time.Millisecond); err != nil {
			fail(deps, ctx, w, "failed to enqueue document; please retry", err, doc.ID, http.StatusInternalServerError, true)
			return
		}

		httputil.WriteJSON(w, http.StatusAccepted, map[string]any{
			"document_id": doc.ID.String(),
			"status":      doc.Status,
		})
	}
}

// fail is gateway-specific error handler that can mark documents as failed
func fail(deps app.Deps, ctx context.Context, w http.ResponseWriter, message string, err error, docID uuid.UUID, status int, markFailed bool) {
	log := deps.Log.With("document_id", docID)
	if markFailed && docID != uuid.Nil {
		if upErr := deps.Store.UpdateDocumentStatus(ctx, docID, store.StatusFailed); upErr != nil {
			log.Error("failed to mark document failed", "err", upErr)
		}
	}

	httputil.Fail(log, w, message, err, status)
}

func chunksHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idStr := chi.URLParam(r, "id")
		docID, err := uuid.Parse(idStr)
		if err != nil {
			httputil.Fail(deps.Log, w, "invalid document id", err, http.StatusBadRequest)
			return
		}
		doc, err := deps.Store.GetDocument(r.Context(), docID)
		if err != nil {
			httputil.Fail(deps.Log, w, "document not found", err, http.StatusNotFound)
			return
		}
		chunks, err := deps.Store.ListChunks(r.Context(), docID)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to list chunks", err, http.StatusInternalServerError)
			return
		}
		out := make([]map[string]any, len(chunks))
		for i, c := range chunks {
			out[i] = map[string]any{
				"chunk_id":    c.ID.String(),
				"index":       c.Index,
				"path":        c.Path,
				"content":     c.Content,
				"token_count": c.TokenCount,
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"document_id": docID.String(),
			"status":      doc.Status,
			"chunks":      out,
		})
	}
}

func searchHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}

		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		if req.TopK == 0 {
			req.TopK = 5
		}

		ctx := r.Context()
		ids := parseDocumentIDs(req.DocumentIDs)
		vec, err := deps.Embedder.Embed(ctx, req.Query)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to embed query", err, http.StatusInternalServerError)
			return
		}
		results, err := deps.Store.TopK(ctx, ids, vec, req.TopK)
		if err != nil {
			httputil.Fail(deps.Log, w, "search failed", err, http.StatusInternalServerError)
			return
		}

		hits := make([]searchHit, len(results))
		for i, res := range results {
			hits[i] = searchHit{
				ChunkID:    res.Chunk.ID.String(),
				DocumentID: res.Chunk.DocumentID.String(),
				Score:      res.Score,
				Path:       res.Chunk.Path,
				Preview:    truncate(res.Chunk.Content, 150),
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"hits": hits,
		})
	}
}

// parseDocumentIDs converts string UUIDs to uuid.UUID slice, skipping invalid ones.
func parseDocumentIDs(ids []string) []uuid.UUID {
	var result []uuid.UUID
	for _, s := range ids {
		if id, err := uuid.Parse(s); err == nil {
			result = append(result, id)
		}
	}
	return result
}

// truncate limits text to maxLen runes, cutting at a word boundary so a
// multibyte rune at the limit is never sliced mid-sequence.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	prefix := string(runes[:maxLen])
	// Find last space before maxLen to avoid cutting words
	if idx := strings.LastIndex(prefix, " "); idx > 0 {
		return prefix[:idx] + "..."
	}
	return prefix + "..."
}
