package worker

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/corvidhq/copilot-api/internal/domain"
	apperrors "github.com/corvidhq/copilot-api/internal/pkg/errors"
	"github.com/corvidhq/copilot-api/internal/vector/pinecone"
)

type stubCandidateReader struct {
	candidate *domain.Candidate
	err       error
}

func (s *stubCandidateReader) GetByID(context.Context, uuid.UUID) (*domain.Candidate, error) {
	return s.candidate, s.err
}

type stubRoleReader struct {
	role *domain.Role
	err  error
}

func (s *stubRoleReader) GetByID(context.Context, uuid.UUID) (*domain.Role, error) {
	return s.role, s.err
}

type stubEmbedder struct {
	values []float32
	err    error
	texts  []string
}

func (s *stubEmbedder) EmbedOne(_ context.Context, text string) ([]float32, error) {
	s.texts = append(s.texts, text)
	return s.values, s.err
}

type stubIndex struct {
	upserts map[string][]pinecone.Vector
	deletes map[string][]string
}

func newStubIndex() *stubIndex {
	return &stubIndex{
		upserts: make(map[string][]pinecone.Vector),
		deletes: make(map[string][]string),
	}
}

func (s *stubIndex) Upsert(_ context.Context, namespace string, vectors []pinecone.Vector) error {
	s.upserts[namespace] = append(s.upserts[namespace], vectors...)
	return nil
}

func (s *stubIndex) Delete(_ context.Context, namespace string, ids []string) error {
	s.deletes[namespace] = append(s.deletes[namespace], ids...)
	return nil
}

func TestEmbeddingWorker_ProcessCandidateTask(t *testing.T) {
	candidateID := uuid.New()
	candidate := &domain.Candidate{
		ID:       candidateID,
		Name:     "Dana Reyes",
		Headline: "Staff engineer",
		Skills:   []string{"go", "postgres"},
	}
	embedder := &stubEmbedder{values: []float32{0.1, 0.2}}
	index := newStubIndex()

	worker := NewEmbeddingWorker(
		zap.NewNop(),
		&stubCandidateReader{candidate: candidate},
		&stubRoleReader{},
		embedder,
		index,
	)

	task, err := NewCandidateEmbeddingTask(&EmbeddingPayload{EntityID: candidateID})
	require.NoError(t, err)
	require.NoError(t, worker.ProcessCandidateTask(context.Background(), task))

	require.Len(t, index.upserts["candidates"], 1)
	vector := index.upserts["candidates"][0]
	assert.Equal(t, candidateID.String(), vector.ID)
	assert.Equal(t, []float32{0.1, 0.2}, vector.Values)
	assert.Equal(t, "Dana Reyes", vector.Metadata["name"])

	require.Len(t, embedder.texts, 1)
	assert.Contains(t, embedder.texts[0], "Staff engineer")
}

func TestEmbeddingWorker_ProcessCandidateTask_Deleted(t *testing.T) {
	candidateID := uuid.New()
	index := newStubIndex()

	worker := NewEmbeddingWorker(zap.NewNop(), &stubCandidateReader{}, &stubRoleReader{}, &stubEmbedder{}, index)

	task, err := NewCandidateEmbeddingTask(&EmbeddingPayload{EntityID: candidateID, Deleted: true})
	require.NoError(t, err)
	require.NoError(t, worker.ProcessCandidateTask(context.Background(), task))

	assert.Equal(t, []string{candidateID.String()}, index.deletes["candidates"])
	assert.Empty(t, index.upserts)
}

func TestEmbeddingWorker_ProcessCandidateTask_VanishedCandidate(t *testing.T) {
	candidateID := uuid.New()
	index := newStubIndex()

	worker := NewEmbeddingWorker(
		zap.NewNop(),
		&stubCandidateReader{err: apperrors.NotFound("candidate")},
		&stubRoleReader{},
		&stubEmbedder{},
		index,
	)

	task, err := NewCandidateEmbeddingTask(&EmbeddingPayload{EntityID: candidateID})
	require.NoError(t, err)
	require.NoError(t, worker.ProcessCandidateTask(context.Background(), task))

	assert.Equal(t, []string{candidateID.String()}, index.deletes["candidates"])
}

func TestEmbeddingWorker_ProcessRoleTask(t *testing.T) {
	roleID := uuid.New()
	role := &domain.Role{
		ID:     roleID,
		Title:  "Platform Engineer",
		Status: domain.RoleStatusOpen,
	}
	index := newStubIndex()

	worker := NewEmbeddingWorker(
		zap.NewNop(),
		&stubCandidateReader{},
		&stubRoleReader{role: role},
		&stubEmbedder{values: []float32{0.5}},
		index,
	)

	task, err := NewRoleEmbeddingTask(&EmbeddingPayload{EntityID: roleID})
	require.NoError(t, err)
	require.NoError(t, worker.ProcessRoleTask(context.Background(), task))

	require.Len(t, index.upserts["roles"], 1)
	assert.Equal(t, "Platform Engineer", index.upserts["roles"][0].Metadata["title"])
	assert.Equal(t, "open", index.upserts["roles"][0].Metadata["status"])
}

func TestEmbeddingWorker_InvalidPayload(t *testing.T) {
	worker := NewEmbeddingWorker(zap.NewNop(), &stubCandidateReader{}, &stubRoleReader{}, &stubEmbedder{}, newStubIndex())

	task := asynq.NewTask(TypeCandidateEmbedding, []byte("invalid json"))

	err := worker.ProcessCandidateTask(context.Background(), task)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}
