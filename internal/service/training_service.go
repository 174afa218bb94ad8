package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corvidhq/copilot-api/internal/crm/hubspot"
	"github.com/corvidhq/copilot-api/internal/domain"
	"github.com/corvidhq/copilot-api/internal/vector/pinecone"
)

// TextEmbedder embeds batches of text for the vector index
type TextEmbedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorUpserter writes embeddings into the vector index
type VectorUpserter interface {
	Upsert(ctx context.Context, namespace string, vectors []pinecone.Vector) error
}

// ModelSnapshotter archives trained models to object storage
type ModelSnapshotter interface {
	Enabled() bool
	Save(ctx context.Context, model *domain.ScoringModel) (string, error)
}

// TrainingService runs the labeled-deal training pipeline
type TrainingService struct {
	crm       CRMClient
	modelRepo ModelRepository
	snapshots ModelSnapshotter
	embedder  TextEmbedder
	index     VectorUpserter
	pageSize  int
	logger    *zap.Logger
}

// NewTrainingService creates a new training service
func NewTrainingService(
	crm CRMClient,
	modelRepo ModelRepository,
	snapshots ModelSnapshotter,
	embedder TextEmbedder,
	index VectorUpserter,
	pageSize int,
	logger *zap.Logger,
) *TrainingService {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &TrainingService{
		crm:       crm,
		modelRepo: modelRepo,
		snapshots: snapshots,
		embedder:  embedder,
		index:     index,
		pageSize:  pageSize,
		logger:    logger,
	}
}

// StartRun records a pending training run. The actual pipeline runs in
// the worker process.
func (s *TrainingService) StartRun(ctx context.Context) (*domain.TrainingRun, error) {
	run := &domain.TrainingRun{
		ID:        uuid.New(),
		Status:    domain.TrainingRunPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.modelRepo.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create training run: %w", err)
	}
	return run, nil
}

// GetRun returns a training run by ID
func (s *TrainingService) GetRun(ctx context.Context, id uuid.UUID) (*domain.TrainingRun, error) {
	return s.modelRepo.GetRunByID(ctx, id)
}

// ListRuns returns recent training runs
func (s *TrainingService) ListRuns(ctx context.Context, limit int) ([]domain.TrainingRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.modelRepo.ListRuns(ctx, limit)
}

// Train executes the pipeline for a run: page labeled deals from the
// CRM, compute per-feature-value weights, persist and snapshot the
// model, and refresh deal embeddings in the vector index. Per-record
// failures are logged and skipped. snapshot gates the object-storage
// archive of the trained model.
func (s *TrainingService) Train(ctx context.Context, runID uuid.UUID, snapshot bool) error {
	run, err := s.modelRepo.GetRunByID(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to get training run: %w", err)
	}

	now := time.Now().UTC()
	run.Status = domain.TrainingRunRunning
	run.StartedAt = &now
	if err := s.modelRepo.UpdateRun(ctx, run); err != nil {
		return fmt.Errorf("failed to mark run running: %w", err)
	}

	if err := s.train(ctx, run, snapshot); err != nil {
		run.Status = domain.TrainingRunFailed
		run.Error = err.Error()
		finished := time.Now().UTC()
		run.FinishedAt = &finished
		if updateErr := s.modelRepo.UpdateRun(ctx, run); updateErr != nil {
			s.logger.Error("failed to mark run failed",
				zap.String("run_id", runID.String()),
				zap.Error(updateErr))
		}
		return err
	}

	run.Status = domain.TrainingRunCompleted
	finished := time.Now().UTC()
	run.FinishedAt = &finished
	if err := s.modelRepo.UpdateRun(ctx, run); err != nil {
		return fmt.Errorf("failed to mark run completed: %w", err)
	}

	s.logger.Info("training run completed",
		zap.String("run_id", runID.String()),
		zap.Int("model_version", run.ModelVersion),
		zap.Int("processed", run.Processed),
		zap.Int("skipped", run.Skipped))
	return nil
}

type featureCounts struct {
	ideal     map[string]int
	lessIdeal map[string]int
}

func (s *TrainingService) train(ctx context.Context, run *domain.TrainingRun, snapshot bool) error {
	counts := featureCounts{
		ideal:     map[string]int{},
		lessIdeal: map[string]int{},
	}

	var deals []*hubspot.Deal

	for _, label := range []domain.DealLabel{domain.DealLabelIdeal, domain.DealLabelLessIdeal} {
		labeled, err := s.collectLabeledDeals(ctx, label)
		if err != nil {
			return err
		}

		target := counts.ideal
		if label == domain.DealLabelLessIdeal {
			target = counts.lessIdeal
		}

		for _, deal := range labeled {
			features := extractDealFeatures(ctx, s.crm, s.logger, deal)
			values := features.Values()
			if len(values) == 0 {
				s.logger.Warn("skipping deal with no usable features",
					zap.String("deal_id", deal.ID))
				run.Skipped++
				continue
			}
			for feature, value := range values {
				target[domain.WeightKey(feature, value)]++
			}
			deals = append(deals, deal)
			run.Processed++
		}
	}

	if run.Processed == 0 {
		return fmt.Errorf("no labeled deals to train on")
	}

	weights := make(map[string]float64)
	total := float64(run.Processed)
	for key, n := range counts.ideal {
		weights[key] += float64(n) / total
	}
	for key, n := range counts.lessIdeal {
		weights[key] -= float64(n) / total
	}

	version, err := s.modelRepo.NextVersion(ctx)
	if err != nil {
		return err
	}

	model := &domain.ScoringModel{
		ID:        uuid.New(),
		Version:   version,
		Weights:   weights,
		Labeled:   run.Processed,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.modelRepo.CreateModel(ctx, model); err != nil {
		return err
	}
	run.ModelVersion = version

	if snapshot && s.snapshots.Enabled() {
		if _, err := s.snapshots.Save(ctx, model); err != nil {
			s.logger.Warn("failed to snapshot model",
				zap.Int("version", version),
				zap.Error(err))
		}
	}

	s.refreshDealEmbeddings(ctx, deals)
	return nil
}

// collectLabeledDeals pages all deals carrying a label, sequentially.
func (s *TrainingService) collectLabeledDeals(ctx context.Context, label domain.DealLabel) ([]*hubspot.Deal, error) {
	var deals []*hubspot.Deal
	after := ""
	for {
		page, err := s.crm.SearchDealsByLabel(ctx, string(label), s.pageSize, after)
		if err != nil {
			return nil, fmt.Errorf("failed to page %s deals: %w", label, err)
		}
		for i := range page.Results {
			deals = append(deals, &page.Results[i])
		}
		after = page.NextAfter()
		if after == "" {
			return deals, nil
		}
	}
}

// refreshDealEmbeddings embeds deal descriptions and upserts them into
// the deals namespace. Failures are logged, never fatal to the run.
func (s *TrainingService) refreshDealEmbeddings(ctx context.Context, deals []*hubspot.Deal) {
	var texts []string
	var embeddable []*hubspot.Deal
	for _, deal := range deals {
		text := deal.Properties[hubspot.PropDealDescription]
		if text == "" {
			text = deal.Properties[hubspot.PropDealName]
		}
		if text == "" {
			continue
		}
		texts = append(texts, text)
		embeddable = append(embeddable, deal)
	}
	if len(texts) == 0 {
		return
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		s.logger.Warn("failed to embed deal notes", zap.Error(err))
		return
	}

	upserts := make([]pinecone.Vector, 0, len(vectors))
	for i, deal := range embeddable {
		upserts = append(upserts, pinecone.Vector{
			ID:     deal.ID,
			Values: vectors[i],
			Metadata: map[string]string{
				"name":  deal.Properties[hubspot.PropDealName],
				"stage": deal.Properties[hubspot.PropDealStage],
			},
		})
	}

	if err := s.index.Upsert(ctx, string(domain.MatchEntityDeal), upserts); err != nil {
		s.logger.Warn("failed to upsert deal embeddings", zap.Error(err))
	}
}
