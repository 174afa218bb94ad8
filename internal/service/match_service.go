package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corvidhq/copilot-api/internal/ai/gemini"
	"github.com/corvidhq/copilot-api/internal/domain"
	apperrors "github.com/corvidhq/copilot-api/internal/pkg/errors"
	"github.com/corvidhq/copilot-api/internal/vector/pinecone"
)

// QueryEmbedder turns free text into an embedding vector
type QueryEmbedder interface {
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex defines the similarity queries the matcher needs
type VectorIndex interface {
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]pinecone.QueryMatch, error)
}

// InsightGenerator explains a candidate/role pairing in natural language
type InsightGenerator interface {
	Explain(ctx context.Context, candidate, role any) (*gemini.Insight, error)
}

// MatchService runs fan-out semantic search over the vector index
type MatchService struct {
	embedder      QueryEmbedder
	index         VectorIndex
	candidateRepo CandidateRepository
	roleRepo      RoleRepository
	insights      InsightGenerator
	defaultLimit  int
	maxLimit      int
	logger        *zap.Logger
}

// NewMatchService creates a new match service
func NewMatchService(
	embedder QueryEmbedder,
	index VectorIndex,
	candidateRepo CandidateRepository,
	roleRepo RoleRepository,
	insights InsightGenerator,
	defaultLimit int,
	logger *zap.Logger,
) *MatchService {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	return &MatchService{
		embedder:      embedder,
		index:         index,
		candidateRepo: candidateRepo,
		roleRepo:      roleRepo,
		insights:      insights,
		defaultLimit:  defaultLimit,
		maxLimit:      50,
		logger:        logger,
	}
}

// Search embeds the query once, fans out one index query per entity
// type, merges the hits, and returns the top matches by similarity. A
// failed namespace query is logged and skipped; the merged result of
// the remaining namespaces is still returned.
func (s *MatchService) Search(ctx context.Context, query string, entityTypes []domain.MatchEntityType, limit int) (*domain.MatchResult, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	if len(entityTypes) == 0 {
		entityTypes = []domain.MatchEntityType{
			domain.MatchEntityCandidate,
			domain.MatchEntityRole,
			domain.MatchEntityDeal,
		}
	}
	for _, et := range entityTypes {
		if !domain.ValidMatchEntityType(et) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("unknown entity type %q", et))
		}
	}

	vector, err := s.embedder.EmbedOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		matches []domain.SemanticMatch
	)

	for _, et := range entityTypes {
		wg.Add(1)
		go func(et domain.MatchEntityType) {
			defer wg.Done()

			hits, err := s.index.Query(ctx, string(et), vector, limit)
			if err != nil {
				s.logger.Warn("namespace query failed",
					zap.String("namespace", string(et)),
					zap.Error(err))
				return
			}

			mu.Lock()
			defer mu.Unlock()
			for _, hit := range hits {
				matches = append(matches, domain.SemanticMatch{
					EntityType: et,
					EntityID:   hit.ID,
					Similarity: hit.Score,
					Metadata:   hit.Metadata,
				})
			}
		}(et)
	}
	wg.Wait()

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	if matches == nil {
		matches = []domain.SemanticMatch{}
	}

	return &domain.MatchResult{Query: query, Matches: matches}, nil
}

// Explain loads the candidate and role and asks the LLM why the pairing
// does or does not work.
func (s *MatchService) Explain(ctx context.Context, candidateID, roleID uuid.UUID) (*gemini.Insight, error) {
	if s.insights == nil {
		return nil, apperrors.Conflict("match explanations are not configured")
	}

	candidate, err := s.candidateRepo.GetByID(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}

	role, err := s.roleRepo.GetByID(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	insight, err := s.insights.Explain(ctx, candidate, role)
	if err != nil {
		return nil, apperrors.ExternalAPI("gemini", err)
	}
	return insight, nil
}
