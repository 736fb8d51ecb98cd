package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Frame expands one angle of the source report without repeating the core
// facts.
type Frame struct {
	Angle    string `json:"angle"`
	Headline string `json:"headline"`
	Body     string `json:"body"`
}

// Article is the user-facing composition of one eligible report. Articles are
// never mutated after creation.
type Article struct {
	ID        string
	ReportID  string
	Locale    Locale
	Headline  string
	Body      string
	Frames    []Frame
	CreatedAt time.Time
}

// FrameDraft is one frame as returned by the composition decision service,
// before it is bound to an angle.
type FrameDraft struct {
	Headline string `json:"headline"`
	Body     string `json:"body"`
}

// CompositionDecision is the decision service's draft for one report. Frames
// must line up one-to-one with the report's angles; the orchestrator checks
// this, not the service.
type CompositionDecision struct {
	Headline string       `json:"headline"`
	Body     string       `json:"body"`
	Frames   []FrameDraft `json:"frames"`
}

// NewArticle assembles an article from an eligible report and its composition
// decision, pairing frames with angles in angle order.
func NewArticle(report *Report, decision *CompositionDecision) (*Article, error) {
	if decision == nil {
		return nil, ErrNoDecision
	}

	if !report.EligibleForComposition() {
		return nil, fmt.Errorf("%w: report %s", ErrReportNotEligible, report.ID)
	}

	if decision.Headline == "" || decision.Body == "" {
		return nil, fmt.Errorf("%w: empty headline or body", ErrInvalidArticle)
	}

	if len(decision.Frames) != len(report.Angles) {
		return nil, fmt.Errorf("%w: got %d frames for %d angles",
			ErrFrameCountMismatch, len(decision.Frames), len(report.Angles))
	}

	frames := make([]Frame, len(report.Angles))
	for i, angle := range report.Angles {
		frames[i] = Frame{
			Angle:    angle,
			Headline: decision.Frames[i].Headline,
			Body:     decision.Frames[i].Body,
		}
	}

	return &Article{
		ID:        uuid.NewString(),
		ReportID:  report.ID,
		Locale:    report.Locale,
		Headline:  decision.Headline,
		Body:      decision.Body,
		Frames:    frames,
		CreatedAt: time.Now().UTC(),
	}, nil
}
