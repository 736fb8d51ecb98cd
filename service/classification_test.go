package service

import (
	"context"
	"errors"
	"testing"

	"report-pipeline/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassificationService_ClassifyPending(t *testing.T) {
	t.Run("should classify the pending batch", func(t *testing.T) {
		repo := &stubReportRepo{pending: []*domain.Report{pendingReport("r1"), pendingReport("r2")}}
		decider := &stubDecider{
			classifyFn: func(_ int, _ *domain.Report) (*domain.ClassificationDecision, error) {
				return &domain.ClassificationDecision{
					Tier:   domain.TierGeneral,
					Traits: domain.ReportTraits{HighValue: true},
				}, nil
			},
		}

		svc := NewClassificationService(repo, decider, 50, testLogger())

		result, err := svc.ClassifyPending(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, result.ProcessedCount)
		assert.Equal(t, 2, result.SuccessCount)
		assert.Equal(t, domain.TierGeneral, repo.classified["r1"])
		assert.Equal(t, domain.TierGeneral, repo.classified["r2"])
	})

	t.Run("zero pending reports means zero decider calls", func(t *testing.T) {
		repo := &stubReportRepo{}
		decider := &stubDecider{}

		svc := NewClassificationService(repo, decider, 50, testLogger())

		result, err := svc.ClassifyPending(context.Background())

		require.NoError(t, err)
		assert.Zero(t, result.ProcessedCount)
		assert.Zero(t, decider.classifyCalls)
	})

	t.Run("nil decision leaves the report pending", func(t *testing.T) {
		repo := &stubReportRepo{pending: []*domain.Report{pendingReport("r1")}}
		decider := &stubDecider{} // nil, nil

		svc := NewClassificationService(repo, decider, 50, testLogger())

		result, err := svc.ClassifyPending(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, result.SkippedCount)
		assert.Empty(t, repo.classified)
	})

	t.Run("one failing report does not poison the batch", func(t *testing.T) {
		repo := &stubReportRepo{pending: []*domain.Report{
			pendingReport("r1"), pendingReport("r2"), pendingReport("r3"),
		}}
		decider := &stubDecider{
			classifyFn: func(call int, _ *domain.Report) (*domain.ClassificationDecision, error) {
				if call == 2 {
					return nil, errors.New("decision service exploded")
				}

				return &domain.ClassificationDecision{Tier: domain.TierNiche}, nil
			},
		}

		svc := NewClassificationService(repo, decider, 50, testLogger())

		result, err := svc.ClassifyPending(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, result.SuccessCount)
		assert.Equal(t, 1, result.ErrorCount)
		assert.NotContains(t, repo.classified, "r2")
	})

	t.Run("invalid tier is a per-item failure", func(t *testing.T) {
		repo := &stubReportRepo{pending: []*domain.Report{pendingReport("r1")}}
		decider := &stubDecider{
			classifyFn: func(_ int, _ *domain.Report) (*domain.ClassificationDecision, error) {
				return &domain.ClassificationDecision{Tier: domain.Tier("sensational")}, nil
			},
		}

		svc := NewClassificationService(repo, decider, 50, testLogger())

		result, err := svc.ClassifyPending(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, result.ErrorCount)
		assert.Empty(t, repo.classified)
	})

	t.Run("fetch failure propagates", func(t *testing.T) {
		repo := &stubReportRepo{pendingErr: errors.New("db down")}

		svc := NewClassificationService(repo, &stubDecider{}, 50, testLogger())

		_, err := svc.ClassifyPending(context.Background())

		assert.Error(t, err)
	})

	t.Run("respects the batch size bound", func(t *testing.T) {
		var pending []*domain.Report
		for i := 0; i < 5; i++ {
			pending = append(pending, pendingReport(string(rune('a'+i))))
		}

		repo := &stubReportRepo{pending: pending}
		decider := &stubDecider{
			classifyFn: func(_ int, _ *domain.Report) (*domain.ClassificationDecision, error) {
				return &domain.ClassificationDecision{Tier: domain.TierGeneral}, nil
			},
		}

		svc := NewClassificationService(repo, decider, 3, testLogger())

		result, err := svc.ClassifyPending(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 3, result.ProcessedCount)
		assert.Equal(t, 3, decider.classifyCalls)
	})
}
