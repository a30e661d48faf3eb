package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"doc-segmenter/internal/app"
	"doc-segmenter/internal/config"
	"doc-segmenter/internal/embeddings"
	"doc-segmenter/internal/queue"
	"doc-segmenter/internal/store"
)

func newTestDeps(st store.Store, e embeddings.Embedder) app.Deps {
	return app.Deps{
		Store:    st,
		Embedder: e,
		Config: config.Config{
			EmbeddingModel: "test-model",
		},
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestHandleEmbed(t *testing.T) {
	validDocID := uuid.New()
	chunkA := uuid.New()
	chunkB := uuid.New()

	storedChunks := []store.Chunk{
		{ID: chunkA, DocumentID: validDocID, Index: 0, Content: "First chunk text"},
		{ID: chunkB, DocumentID: validDocID, Index: 1, Content: "Second chunk text"},
	}
	vectors := []embeddings.Vector{{0.1, 0.2}, {0.3, 0.4}}

	tests := []struct {
		name    string
		raw     []byte
		setup   func(*store.MockStore, *embeddings.MockEmbedder)
		wantErr bool
	}{
		{
			name: "successful embedding marks document ready",
			setup: func(s *store.MockStore, e *embeddings.MockEmbedder) {
				s.On("ListChunks", mock.Anything, validDocID).Return(storedChunks, nil).Once()
				e.On("EmbedBatch", mock.Anything, []string{"First chunk text", "Second chunk text"}).
					Return(vectors, nil).Once()
				s.On("SaveEmbeddings", mock.Anything, mock.MatchedBy(func(embs []store.Embedding) bool {
					if len(embs) != 2 {
						return false
					}
					return embs[0].ChunkID == chunkA && embs[1].ChunkID == chunkB &&
						embs[0].Model == "test-model"
				})).Return(nil).Once()
				s.On("UpdateDocumentStatus", mock.Anything, validDocID, store.StatusReady).Return(nil).Once()
			},
			wantErr: false,
		},
		{
			name: "no chunks still marks document ready",
			setup: func(s *store.MockStore, e *embeddings.MockEmbedder) {
				s.On("ListChunks", mock.Anything, validDocID).Return([]store.Chunk{}, nil).Once()
				s.On("UpdateDocumentStatus", mock.Anything, validDocID, store.StatusReady).Return(nil).Once()
			},
			wantErr: false,
		},
		{
			name: "embedder failure propagates so the task retries",
			setup: func(s *store.MockStore, e *embeddings.MockEmbedder) {
				s.On("ListChunks", mock.Anything, validDocID).Return(storedChunks, nil).Once()
				e.On("EmbedBatch", mock.Anything, mock.Anything).
					Return(nil, errors.New("api error")).Once()
			},
			wantErr: true,
		},
		{
			name: "vector count mismatch is an error",
			setup: func(s *store.MockStore, e *embeddings.MockEmbedder) {
				s.On("ListChunks", mock.Anything, validDocID).Return(storedChunks, nil).Once()
				e.On("EmbedBatch", mock.Anything, mock.Anything).
					Return([]embeddings.Vector{{0.1}}, nil).Once()
			},
			wantErr: true,
		},
		{
			name: "SaveEmbeddings failure propagates",
			setup: func(s *store.MockStore, e *embeddings.MockEmbedder) {
				s.On("ListChunks", mock.Anything, validDocID).Return(storedChunks, nil).Once()
				e.On("EmbedBatch", mock.Anything, mock.Anything).Return(vectors, nil).Once()
				s.On("SaveEmbeddings", mock.Anything, mock.Anything).
					Return(errors.New("database error")).Once()
			},
			wantErr: true,
		},
		{
			name:    "invalid payload returns error",
			raw:     []byte("not json"),
			setup:   func(s *store.MockStore, e *embeddings.MockEmbedder) {},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := new(store.MockStore)
			mockEmbedder := new(embeddings.MockEmbedder)
			if tt.setup != nil {
				tt.setup(mockStore, mockEmbedder)
			}

			deps := newTestDeps(mockStore, mockEmbedder)
			handler := handleEmbed(deps)

			raw := tt.raw
			if raw == nil {
				b, err := json.Marshal(embedTaskPayload{DocumentID: validDocID, ChunkIDs: []uuid.UUID{chunkA, chunkB}})
				if err != nil {
					t.Fatalf("marshal failed: %v", err)
				}
				raw = b
			}
			err := handler(context.Background(), queue.Task{Type: queue.TaskTypeEmbed, Payload: raw})

			if (err != nil) != tt.wantErr {
				t.Errorf("handleEmbed() error = %v, wantErr %v", err, tt.wantErr)
			}

			mockStore.AssertExpectations(t)
			mockEmbedder.AssertExpectations(t)
		})
	}
}
