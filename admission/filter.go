package admission

import (
	"sort"

	"report-pipeline/domain"
)

// FilterCandidates applies the intake thresholds and the seen-source check to
// a batch of raw candidates. Candidates below MinEvidence are dropped, as are
// candidates whose every source id is already seen; one novel source is enough
// to survive. Survivors are ordered by evidentiary weight descending with a
// stable tie-break on input order, then truncated to MaxIntake. An empty
// result is a normal outcome, not an error.
func FilterCandidates(candidates []domain.RawCandidate, thresholds IntakeThresholds, seenSources map[string]struct{}) []domain.RawCandidate {
	picked := make([]domain.RawCandidate, 0, len(candidates))

	for _, c := range candidates {
		if c.EvidenceWeight() < thresholds.MinEvidence {
			continue
		}

		if !hasNovelSource(c, seenSources) {
			continue
		}

		picked = append(picked, c)
	}

	sort.SliceStable(picked, func(i, j int) bool {
		return picked[i].EvidenceWeight() > picked[j].EvidenceWeight()
	})

	if thresholds.MaxIntake >= 0 && len(picked) > thresholds.MaxIntake {
		picked = picked[:thresholds.MaxIntake]
	}

	return picked
}

func hasNovelSource(c domain.RawCandidate, seen map[string]struct{}) bool {
	for _, id := range c.SourceIDs() {
		if _, ok := seen[id]; !ok {
			return true
		}
	}

	return false
}
