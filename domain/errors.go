// ABOUTME: Domain-level sentinel errors for the report pipeline
// ABOUTME: These errors are used with errors.Is() for error type checking
package domain

import "errors"

// Report-related errors
var (
	// ErrReportNotFound indicates the requested report does not exist
	ErrReportNotFound = errors.New("report not found")

	// ErrInvalidReport indicates a report could not be constructed from its inputs
	ErrInvalidReport = errors.New("invalid report")

	// ErrAlreadyClassified indicates a second classification was attempted;
	// the pending -> classified transition happens at most once
	ErrAlreadyClassified = errors.New("report already classified")

	// ErrReportNotEligible indicates a report outside the composable set
	// (duplicate, unclassified, or off-topic)
	ErrReportNotEligible = errors.New("report not eligible for composition")
)

// Article-related errors
var (
	// ErrInvalidArticle indicates an article could not be constructed
	ErrInvalidArticle = errors.New("invalid article")

	// ErrFrameCountMismatch indicates the composition decision did not return
	// exactly one frame per angle. Treated as a per-item failure, never fatal.
	ErrFrameCountMismatch = errors.New("frame count does not match angle count")
)

// Decision service errors
var (
	// ErrNoDecision indicates a nil decision was passed where one is required
	ErrNoDecision = errors.New("no decision provided")

	// ErrDecisionServiceUnavailable indicates the editorial decision service
	// is not reachable or returned a server error
	ErrDecisionServiceUnavailable = errors.New("decision service unavailable")

	// ErrNewswireUnavailable indicates the news provider is not reachable
	ErrNewswireUnavailable = errors.New("newswire provider unavailable")
)

// Validation errors
var (
	// ErrInvalidLocale indicates a locale tag could not be parsed
	ErrInvalidLocale = errors.New("invalid locale tag")
)
