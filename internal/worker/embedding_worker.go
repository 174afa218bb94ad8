package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/corvidhq/copilot-api/internal/domain"
	apperrors "github.com/corvidhq/copilot-api/internal/pkg/errors"
	"github.com/corvidhq/copilot-api/internal/vector/pinecone"
)

// CandidateReader loads candidate profiles
type CandidateReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Candidate, error)
}

// RoleReader loads role profiles
type RoleReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Role, error)
}

// Embedder turns profile text into a vector
type Embedder interface {
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex is the slice of the vector store the embedding worker needs
type VectorIndex interface {
	Upsert(ctx context.Context, namespace string, vectors []pinecone.Vector) error
	Delete(ctx context.Context, namespace string, ids []string) error
}

// EmbeddingWorker keeps the vector index in sync with profile changes
type EmbeddingWorker struct {
	logger     *zap.Logger
	candidates CandidateReader
	roles      RoleReader
	embedder   Embedder
	index      VectorIndex
}

// NewEmbeddingWorker creates a new embedding worker
func NewEmbeddingWorker(
	logger *zap.Logger,
	candidates CandidateReader,
	roles RoleReader,
	embedder Embedder,
	index VectorIndex,
) *EmbeddingWorker {
	return &EmbeddingWorker{
		logger:     logger,
		candidates: candidates,
		roles:      roles,
		embedder:   embedder,
		index:      index,
	}
}

// ProcessCandidateTask processes a candidate embedding task
func (w *EmbeddingWorker) ProcessCandidateTask(ctx context.Context, t *asynq.Task) error {
	var payload EmbeddingPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal embedding payload: %w", err)
	}

	namespace := string(domain.MatchEntityCandidate)
	if payload.Deleted {
		return w.deleteVector(ctx, namespace, payload.EntityID)
	}

	candidate, err := w.candidates.GetByID(ctx, payload.EntityID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			// Removed after the task was enqueued; drop the vector.
			return w.deleteVector(ctx, namespace, payload.EntityID)
		}
		return fmt.Errorf("failed to load candidate: %w", err)
	}

	metadata := map[string]string{
		"name":     candidate.Name,
		"headline": candidate.Headline,
	}
	return w.upsertVector(ctx, namespace, payload.EntityID, candidate.ProfileText(), metadata)
}

// ProcessRoleTask processes a role embedding task
func (w *EmbeddingWorker) ProcessRoleTask(ctx context.Context, t *asynq.Task) error {
	var payload EmbeddingPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal embedding payload: %w", err)
	}

	namespace := string(domain.MatchEntityRole)
	if payload.Deleted {
		return w.deleteVector(ctx, namespace, payload.EntityID)
	}

	role, err := w.roles.GetByID(ctx, payload.EntityID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return w.deleteVector(ctx, namespace, payload.EntityID)
		}
		return fmt.Errorf("failed to load role: %w", err)
	}

	metadata := map[string]string{
		"title":  role.Title,
		"status": string(role.Status),
	}
	return w.upsertVector(ctx, namespace, payload.EntityID, role.ProfileText(), metadata)
}

func (w *EmbeddingWorker) upsertVector(ctx context.Context, namespace string, id uuid.UUID, text string, metadata map[string]string) error {
	values, err := w.embedder.EmbedOne(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to embed profile: %w", err)
	}

	vector := pinecone.Vector{
		ID:       id.String(),
		Values:   values,
		Metadata: metadata,
	}
	if err := w.index.Upsert(ctx, namespace, []pinecone.Vector{vector}); err != nil {
		return fmt.Errorf("failed to upsert vector: %w", err)
	}

	w.logger.Info("refreshed profile embedding",
		zap.String("namespace", namespace),
		zap.String("entity_id", id.String()),
	)
	return nil
}

func (w *EmbeddingWorker) deleteVector(ctx context.Context, namespace string, id uuid.UUID) error {
	if err := w.index.Delete(ctx, namespace, []string{id.String()}); err != nil {
		return fmt.Errorf("failed to delete vector: %w", err)
	}

	w.logger.Info("removed profile embedding",
		zap.String("namespace", namespace),
		zap.String("entity_id", id.String()),
	)
	return nil
}
