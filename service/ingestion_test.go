package service

import (
	"context"
	"errors"
	"testing"

	"report-pipeline/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLocale = domain.Locale{Language: "en", Country: "US"}

func TestIngestionService_IngestLocale(t *testing.T) {
	t.Run("should create reports for surviving candidates", func(t *testing.T) {
		repo := &stubReportRepo{acceptedToday: 0}
		decider := &stubDecider{
			ingestFn: func(_ int, _ domain.RawCandidate) (*domain.IngestionDecision, error) {
				return goodIngestionDecision(), nil
			},
		}
		provider := &stubProvider{candidates: []domain.RawCandidate{
			candidateWithWeight("a", 12),
			candidateWithWeight("b", 9),
		}}

		svc := NewIngestionService(repo, newMemorySeenCache(), provider, decider, 14, testLogger())

		result, err := svc.IngestLocale(context.Background(), testLocale)

		require.NoError(t, err)
		assert.Equal(t, 2, result.CandidateCount)
		assert.Equal(t, 2, result.AdmittedCount)
		assert.Equal(t, 2, result.SuccessCount)
		assert.Len(t, repo.created, 2)

		for _, report := range repo.created {
			assert.Equal(t, domain.DedupPending, report.DeduplicationState)
			assert.Equal(t, domain.ClassificationPending, report.ClassificationState)
		}
	})

	t.Run("one failing candidate does not poison the rest", func(t *testing.T) {
		repo := &stubReportRepo{acceptedToday: 0}
		decider := &stubDecider{
			ingestFn: func(call int, _ domain.RawCandidate) (*domain.IngestionDecision, error) {
				if call == 2 {
					return nil, errors.New("decision service exploded")
				}

				return goodIngestionDecision(), nil
			},
		}
		provider := &stubProvider{candidates: []domain.RawCandidate{
			candidateWithWeight("a", 12),
			candidateWithWeight("b", 11),
			candidateWithWeight("c", 10),
		}}

		svc := NewIngestionService(repo, newMemorySeenCache(), provider, decider, 14, testLogger())

		result, err := svc.IngestLocale(context.Background(), testLocale)

		require.NoError(t, err, "per-item failures must not fail the run")
		assert.Equal(t, 2, result.SuccessCount)
		assert.Equal(t, 1, result.ErrorCount)
		assert.Len(t, result.Errors, 1)
		assert.Len(t, repo.created, 2)
	})

	t.Run("nil decision skips the candidate without error", func(t *testing.T) {
		repo := &stubReportRepo{}
		decider := &stubDecider{} // always returns nil, nil
		provider := &stubProvider{candidates: []domain.RawCandidate{candidateWithWeight("a", 12)}}

		svc := NewIngestionService(repo, newMemorySeenCache(), provider, decider, 14, testLogger())

		result, err := svc.IngestLocale(context.Background(), testLocale)

		require.NoError(t, err)
		assert.Equal(t, 1, result.SkippedCount)
		assert.Zero(t, result.SuccessCount)
		assert.Zero(t, result.ErrorCount)
		assert.Empty(t, repo.created)
	})

	t.Run("fully seen candidate never reaches the decider", func(t *testing.T) {
		repo := &stubReportRepo{seenRefs: map[string]struct{}{
			"s1": {}, "s2": {}, "s3": {}, "s4": {}, "s5": {},
			"s6": {}, "s7": {}, "s8": {}, "s9": {}, "s10": {},
		}}
		decider := &stubDecider{
			ingestFn: func(_ int, _ domain.RawCandidate) (*domain.IngestionDecision, error) {
				return goodIngestionDecision(), nil
			},
		}
		provider := &stubProvider{candidates: []domain.RawCandidate{
			candidateWithSources("s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10"),
			candidateWithSources("s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "novel"),
		}}

		svc := NewIngestionService(repo, newMemorySeenCache(), provider, decider, 14, testLogger())

		result, err := svc.IngestLocale(context.Background(), testLocale)

		require.NoError(t, err)
		assert.Equal(t, 1, result.AdmittedCount)
		assert.Equal(t, 1, decider.ingestCalls)
		require.Len(t, repo.created, 1)
		assert.Contains(t, repo.created[0].SourceRefs, "novel")
	})

	t.Run("admission throttles once the daily target is met", func(t *testing.T) {
		repo := &stubReportRepo{acceptedToday: 14}
		decider := &stubDecider{
			ingestFn: func(_ int, _ domain.RawCandidate) (*domain.IngestionDecision, error) {
				return goodIngestionDecision(), nil
			},
		}
		provider := &stubProvider{candidates: []domain.RawCandidate{
			candidateWithWeight("weak", 25),
			candidateWithWeight("strong", 32),
		}}

		svc := NewIngestionService(repo, newMemorySeenCache(), provider, decider, 14, testLogger())

		result, err := svc.IngestLocale(context.Background(), testLocale)

		require.NoError(t, err)
		assert.Equal(t, 1, result.AdmittedCount)
		require.Len(t, repo.created, 1)
		assert.Equal(t, 32, len(repo.created[0].SourceRefs))
	})

	t.Run("created reports become visible to the seen-source set", func(t *testing.T) {
		cache := newMemorySeenCache()
		repo := &stubReportRepo{}
		decider := &stubDecider{
			ingestFn: func(_ int, _ domain.RawCandidate) (*domain.IngestionDecision, error) {
				return goodIngestionDecision(), nil
			},
		}
		provider := &stubProvider{candidates: []domain.RawCandidate{candidateWithWeight("a", 12)}}

		svc := NewIngestionService(repo, cache, provider, decider, 14, testLogger())

		_, err := svc.IngestLocale(context.Background(), testLocale)

		require.NoError(t, err)
		assert.Len(t, cache.added, 12)
	})

	t.Run("count query failure aborts the run", func(t *testing.T) {
		repo := &stubReportRepo{countErr: errors.New("db down")}
		svc := NewIngestionService(repo, newMemorySeenCache(), &stubProvider{}, &stubDecider{}, 14, testLogger())

		_, err := svc.IngestLocale(context.Background(), testLocale)

		assert.Error(t, err)
	})

	t.Run("seen-source query failure aborts the run", func(t *testing.T) {
		repo := &stubReportRepo{seenErr: errors.New("db down")}
		svc := NewIngestionService(repo, newMemorySeenCache(), &stubProvider{}, &stubDecider{}, 14, testLogger())

		_, err := svc.IngestLocale(context.Background(), testLocale)

		assert.Error(t, err)
	})

	t.Run("candidate fetch failure aborts the run", func(t *testing.T) {
		provider := &stubProvider{err: errors.New("newswire down")}
		svc := NewIngestionService(&stubReportRepo{}, newMemorySeenCache(), provider, &stubDecider{}, 14, testLogger())

		_, err := svc.IngestLocale(context.Background(), testLocale)

		assert.Error(t, err)
	})

	t.Run("persist failure is a per-item failure", func(t *testing.T) {
		repo := &stubReportRepo{createErr: errors.New("insert failed")}
		decider := &stubDecider{
			ingestFn: func(_ int, _ domain.RawCandidate) (*domain.IngestionDecision, error) {
				return goodIngestionDecision(), nil
			},
		}
		provider := &stubProvider{candidates: []domain.RawCandidate{candidateWithWeight("a", 12)}}

		svc := NewIngestionService(repo, newMemorySeenCache(), provider, decider, 14, testLogger())

		result, err := svc.IngestLocale(context.Background(), testLocale)

		require.NoError(t, err)
		assert.Equal(t, 1, result.ErrorCount)
		assert.Zero(t, result.SuccessCount)
	})
}
