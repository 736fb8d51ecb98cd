package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"report-pipeline/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Only errors in tests
	}))
}

// stubReportRepo implements repository.ReportRepository with canned data and
// call tracking.
type stubReportRepo struct {
	acceptedToday   int
	countErr        error
	seenRefs        map[string]struct{}
	seenErr         error
	createErr       error
	created         []*domain.Report
	pending         []*domain.Report
	pendingErr      error
	classified      map[string]domain.Tier
	markErr         error
	eligible        []*domain.Report
	eligibleErr     error
	duplicateCalls  int
	duplicateErr    error
}

func (s *stubReportRepo) CountAcceptedSince(_ context.Context, _ domain.Locale, _ time.Time) (int, error) {
	return s.acceptedToday, s.countErr
}

func (s *stubReportRepo) AllSeenSourceRefs(_ context.Context, _ domain.Locale) (map[string]struct{}, error) {
	if s.seenErr != nil {
		return nil, s.seenErr
	}

	if s.seenRefs == nil {
		return map[string]struct{}{}, nil
	}

	return s.seenRefs, nil
}

func (s *stubReportRepo) Create(_ context.Context, report *domain.Report) error {
	if s.createErr != nil {
		return s.createErr
	}

	s.created = append(s.created, report)

	return nil
}

func (s *stubReportRepo) FindPendingClassification(_ context.Context, limit int) ([]*domain.Report, error) {
	if s.pendingErr != nil {
		return nil, s.pendingErr
	}

	if len(s.pending) > limit {
		return s.pending[:limit], nil
	}

	return s.pending, nil
}

func (s *stubReportRepo) MarkClassified(_ context.Context, reportID string, tier domain.Tier, _ domain.ReportTraits) error {
	if s.markErr != nil {
		return s.markErr
	}

	if s.classified == nil {
		s.classified = make(map[string]domain.Tier)
	}

	s.classified[reportID] = tier

	return nil
}

func (s *stubReportRepo) MarkDuplicate(_ context.Context, _, _ string) error {
	s.duplicateCalls++
	return s.duplicateErr
}

func (s *stubReportRepo) FindEligibleWithoutArticle(_ context.Context, _ domain.Locale, limit int) ([]*domain.Report, error) {
	if s.eligibleErr != nil {
		return nil, s.eligibleErr
	}

	if len(s.eligible) > limit {
		return s.eligible[:limit], nil
	}

	return s.eligible, nil
}

// memorySeenCache implements repository.SeenSourceCache in memory, recording
// the refs added during a run.
type memorySeenCache struct {
	refs   map[string]struct{}
	warmed bool
	added  []string
}

func newMemorySeenCache() *memorySeenCache {
	return &memorySeenCache{refs: make(map[string]struct{})}
}

func (c *memorySeenCache) Load(_ context.Context, _ domain.Locale) (map[string]struct{}, bool) {
	if len(c.refs) == 0 {
		return nil, false
	}

	return c.refs, true
}

func (c *memorySeenCache) Warm(_ context.Context, _ domain.Locale, refs map[string]struct{}) {
	c.warmed = true
	for ref := range refs {
		c.refs[ref] = struct{}{}
	}
}

func (c *memorySeenCache) Add(_ context.Context, _ domain.Locale, refs []string) {
	c.added = append(c.added, refs...)
	for _, ref := range refs {
		c.refs[ref] = struct{}{}
	}
}

// stubProvider implements NewsProvider.
type stubProvider struct {
	candidates []domain.RawCandidate
	err        error
}

func (s *stubProvider) FetchCandidates(_ context.Context, _ domain.Locale) ([]domain.RawCandidate, error) {
	return s.candidates, s.err
}

// stubDecider implements EditorialDecider with per-call scripting.
type stubDecider struct {
	ingestCalls   int
	ingestFn      func(call int, candidate domain.RawCandidate) (*domain.IngestionDecision, error)
	classifyCalls int
	classifyFn    func(call int, report *domain.Report) (*domain.ClassificationDecision, error)
	composeCalls  int
	composeFn     func(call int, report *domain.Report) (*domain.CompositionDecision, error)
}

func (s *stubDecider) DecideIngestion(_ context.Context, _ domain.Locale, candidate domain.RawCandidate) (*domain.IngestionDecision, error) {
	s.ingestCalls++
	if s.ingestFn == nil {
		return nil, nil
	}

	return s.ingestFn(s.ingestCalls, candidate)
}

func (s *stubDecider) DecideClassification(_ context.Context, report *domain.Report) (*domain.ClassificationDecision, error) {
	s.classifyCalls++
	if s.classifyFn == nil {
		return nil, nil
	}

	return s.classifyFn(s.classifyCalls, report)
}

func (s *stubDecider) DecideComposition(_ context.Context, report *domain.Report) (*domain.CompositionDecision, error) {
	s.composeCalls++
	if s.composeFn == nil {
		return nil, nil
	}

	return s.composeFn(s.composeCalls, report)
}

// stubArticleRepo implements repository.ArticleRepository.
type stubArticleRepo struct {
	created []*domain.Article
	err     error
}

func (s *stubArticleRepo) CreateMany(_ context.Context, articles []*domain.Article) error {
	if s.err != nil {
		return s.err
	}

	s.created = append(s.created, articles...)

	return nil
}

func candidateWithSources(ids ...string) domain.RawCandidate {
	sources := make([]domain.SourceItem, len(ids))
	for i, id := range ids {
		sources[i] = domain.SourceItem{
			SourceID:    id,
			Headline:    "headline " + id,
			PublishedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		}
	}

	return domain.RawCandidate{Sources: sources}
}

func candidateWithWeight(prefix string, weight int) domain.RawCandidate {
	ids := make([]string, weight)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s-%d", prefix, i)
	}

	return candidateWithSources(ids...)
}

func goodIngestionDecision() *domain.IngestionDecision {
	return &domain.IngestionDecision{
		Core:       "core facts",
		Background: "background",
		Categories: []string{"world"},
		Angles:     []string{"impact"},
	}
}

func pendingReport(id string) *domain.Report {
	return &domain.Report{
		ID:                  id,
		Locale:              domain.Locale{Language: "en", Country: "US"},
		SourceRefs:          []string{"src-" + id},
		Core:                "core " + id,
		Categories:          []string{"world"},
		Angles:              []string{"impact", "context"},
		DeduplicationState:  domain.DedupPending,
		ClassificationState: domain.ClassificationPending,
	}
}

func eligibleReport(id string) *domain.Report {
	r := pendingReport(id)
	r.DeduplicationState = domain.DedupUnique
	r.ClassificationState = domain.ClassificationClassified
	r.Tier = domain.TierGeneral

	return r
}
