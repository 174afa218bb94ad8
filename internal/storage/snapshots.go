// Package storage persists trained scoring model snapshots to object
// storage so a model version can be inspected or restored later.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"github.com/corvidhq/copilot-api/internal/domain"
)

// SnapshotStore writes scoring model snapshots to a MinIO bucket.
type SnapshotStore struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

// NewSnapshotStore creates a SnapshotStore. A nil client disables
// snapshotting; Save becomes a no-op.
func NewSnapshotStore(client *minio.Client, bucket string, logger *zap.Logger) *SnapshotStore {
	return &SnapshotStore{client: client, bucket: bucket, logger: logger}
}

// Enabled reports whether object storage is configured.
func (s *SnapshotStore) Enabled() bool {
	return s.client != nil
}

func snapshotKey(version int) string {
	return fmt.Sprintf("models/v%d.json", version)
}

// Save uploads the model as JSON under models/v<version>.json and
// returns the object key.
func (s *SnapshotStore) Save(ctx context.Context, model *domain.ScoringModel) (string, error) {
	if !s.Enabled() {
		return "", nil
	}

	data, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal model snapshot: %w", err)
	}

	key := snapshotKey(model.Version)
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload model snapshot: %w", err)
	}

	s.logger.Info("saved model snapshot",
		zap.Int("version", model.Version),
		zap.String("key", key))
	return key, nil
}

// Load fetches a previously saved model snapshot by version.
func (s *SnapshotStore) Load(ctx context.Context, version int) (*domain.ScoringModel, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("object storage is not configured")
	}

	obj, err := s.client.GetObject(ctx, s.bucket, snapshotKey(version), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch model snapshot: %w", err)
	}
	defer obj.Close()

	var model domain.ScoringModel
	if err := json.NewDecoder(obj).Decode(&model); err != nil {
		return nil, fmt.Errorf("failed to decode model snapshot: %w", err)
	}
	return &model, nil
}
