package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corvidhq/copilot-api/internal/crm/hubspot"
	"github.com/corvidhq/copilot-api/internal/domain"
	apperrors "github.com/corvidhq/copilot-api/internal/pkg/errors"
)

// CRMClient defines the HubSpot operations the scoring services need
type CRMClient interface {
	GetDeal(ctx context.Context, dealID string) (*hubspot.Deal, error)
	GetCompany(ctx context.Context, companyID string) (*hubspot.Company, error)
	UpdateDealProperties(ctx context.Context, dealID string, properties map[string]string) error
	SearchDealsByLabel(ctx context.Context, label string, limit int, after string) (*hubspot.SearchResponse, error)
	SearchScoredDeals(ctx context.Context, limit int, after string) (*hubspot.SearchResponse, error)
}

// ModelRepository defines scoring model persistence operations
type ModelRepository interface {
	CreateModel(ctx context.Context, model *domain.ScoringModel) error
	GetActiveModel(ctx context.Context) (*domain.ScoringModel, error)
	GetModelByVersion(ctx context.Context, version int) (*domain.ScoringModel, error)
	NextVersion(ctx context.Context) (int, error)
	CreateRun(ctx context.Context, run *domain.TrainingRun) error
	UpdateRun(ctx context.Context, run *domain.TrainingRun) error
	GetRunByID(ctx context.Context, id uuid.UUID) (*domain.TrainingRun, error)
	ListRuns(ctx context.Context, limit int) ([]domain.TrainingRun, error)
}

// DealScoreRepository defines deal score persistence operations
type DealScoreRepository interface {
	Upsert(ctx context.Context, score *domain.DealScore) error
	GetByDealID(ctx context.Context, dealID string) (*domain.DealScore, error)
	ListByBucket(ctx context.Context, bucket domain.DealBucket, limit int) ([]domain.DealScore, error)
	CreateClassification(ctx context.Context, c *domain.DealClassification) error
}

// DealScoreService scores CRM deals against the active trained model
type DealScoreService struct {
	crm       CRMClient
	modelRepo ModelRepository
	scoreRepo DealScoreRepository
	events    ScoreEventRecorder
	logger    *zap.Logger
}

// NewDealScoreService creates a new deal score service
func NewDealScoreService(
	crm CRMClient,
	modelRepo ModelRepository,
	scoreRepo DealScoreRepository,
	events ScoreEventRecorder,
	logger *zap.Logger,
) *DealScoreService {
	return &DealScoreService{
		crm:       crm,
		modelRepo: modelRepo,
		scoreRepo: scoreRepo,
		events:    events,
		logger:    logger,
	}
}

// ScoreDeal fetches the deal and its company from the CRM, scores it
// against the active model, writes the score back to the CRM, and
// persists the result.
func (s *DealScoreService) ScoreDeal(ctx context.Context, dealID string) (*domain.DealScore, error) {
	model, err := s.modelRepo.GetActiveModel(ctx)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Conflict("no trained scoring model is active; run training first")
		}
		return nil, fmt.Errorf("failed to get active model: %w", err)
	}

	deal, err := s.crm.GetDeal(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}

	features := extractDealFeatures(ctx, s.crm, s.logger, deal)
	score := scoreFeatures(model.Weights, features)
	bucket := domain.DealBucketFor(score)

	result := &domain.DealScore{
		ID:           uuid.New(),
		DealID:       dealID,
		ModelVersion: model.Version,
		Score:        score,
		Bucket:       bucket,
		Features:     features,
		ScoredAt:     time.Now().UTC(),
	}

	err = s.crm.UpdateDealProperties(ctx, dealID, map[string]string{
		hubspot.PropCopilotScore:  strconv.FormatFloat(score, 'f', 1, 64),
		hubspot.PropCopilotBucket: string(bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write score to crm: %w", err)
	}

	if err := s.scoreRepo.Upsert(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to persist deal score: %w", err)
	}

	event := &domain.ScoreEvent{
		Kind:         domain.ScoreEventDeal,
		EntityID:     dealID,
		Score:        score,
		Bucket:       string(bucket),
		ModelVersion: model.Version,
		OccurredAt:   result.ScoredAt,
	}
	if err := s.events.Create(ctx, event); err != nil {
		s.logger.Warn("failed to record deal score event",
			zap.String("deal_id", dealID),
			zap.Error(err))
	}

	return result, nil
}

// GetScore returns the stored score for a deal
func (s *DealScoreService) GetScore(ctx context.Context, dealID string) (*domain.DealScore, error) {
	return s.scoreRepo.GetByDealID(ctx, dealID)
}

// Classify labels a deal ideal or less_ideal, writing the label to the
// CRM and mirroring it in Postgres for audit.
func (s *DealScoreService) Classify(ctx context.Context, dealID string, label domain.DealLabel) (*domain.DealClassification, error) {
	if !domain.ValidDealLabel(label) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown deal label %q", label))
	}

	if _, err := s.crm.GetDeal(ctx, dealID); err != nil {
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}

	err := s.crm.UpdateDealProperties(ctx, dealID, map[string]string{
		hubspot.PropCopilotLabel: string(label),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write label to crm: %w", err)
	}

	classification := &domain.DealClassification{
		DealID:    dealID,
		Label:     label,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.scoreRepo.CreateClassification(ctx, classification); err != nil {
		return nil, fmt.Errorf("failed to persist classification: %w", err)
	}

	return classification, nil
}

// RescoreAll re-scores every deal that already has a stored score,
// logging and skipping per-deal failures. Returns processed and
// skipped counts.
func (s *DealScoreService) RescoreAll(ctx context.Context) (processed, skipped int, err error) {
	after := ""
	for {
		page, err := s.crm.SearchScoredDeals(ctx, 100, after)
		if err != nil {
			return processed, skipped, fmt.Errorf("failed to page scored deals: %w", err)
		}

		for _, deal := range page.Results {
			if _, err := s.ScoreDeal(ctx, deal.ID); err != nil {
				s.logger.Warn("failed to rescore deal",
					zap.String("deal_id", deal.ID),
					zap.Error(err))
				skipped++
				continue
			}
			processed++
		}

		after = page.NextAfter()
		if after == "" {
			return processed, skipped, nil
		}
	}
}

// extractDealFeatures builds the model's feature values from the deal
// and its first associated company. A missing company only drops the
// company-derived features.
func extractDealFeatures(ctx context.Context, crm CRMClient, logger *zap.Logger, deal *hubspot.Deal) domain.DealFeatures {
	features := domain.DealFeatures{
		Stage:      deal.Properties[hubspot.PropDealStage],
		AmountBand: amountBand(deal.Properties[hubspot.PropAmount]),
		LeadSource: deal.Properties[hubspot.PropLeadSource],
	}

	companyIDs := deal.CompanyIDs()
	if len(companyIDs) == 0 {
		return features
	}

	company, err := crm.GetCompany(ctx, companyIDs[0])
	if err != nil {
		logger.Warn("failed to get associated company",
			zap.String("deal_id", deal.ID),
			zap.String("company_id", companyIDs[0]),
			zap.Error(err))
		return features
	}

	features.Industry = company.Properties[hubspot.PropIndustry]
	features.CompanySize = companySizeBand(company.Properties[hubspot.PropEmployeeCount])
	return features
}

// scoreFeatures applies the trained per-feature-value weights:
// clamp(50 + Σw × 50, 0, 100).
func scoreFeatures(weights map[string]float64, features domain.DealFeatures) float64 {
	var sum float64
	for feature, value := range features.Values() {
		sum += weights[domain.WeightKey(feature, value)]
	}
	return clamp(50+sum*50, 0, 100)
}

// amountBand buckets a raw deal amount into the bands the model trains on.
func amountBand(raw string) string {
	if raw == "" {
		return ""
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return ""
	}
	switch {
	case amount < 10_000:
		return "lt_10k"
	case amount < 50_000:
		return "10k_50k"
	case amount < 250_000:
		return "50k_250k"
	default:
		return "gte_250k"
	}
}

// companySizeBand buckets a raw employee count.
func companySizeBand(raw string) string {
	if raw == "" {
		return ""
	}
	count, err := strconv.Atoi(raw)
	if err != nil {
		return ""
	}
	switch {
	case count <= 10:
		return "1_10"
	case count <= 50:
		return "11_50"
	case count <= 250:
		return "51_250"
	default:
		return "250_plus"
	}
}
