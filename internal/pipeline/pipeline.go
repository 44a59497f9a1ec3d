// Package pipeline runs the matching, verification, and aggregation pass
// over a finalized record set. The pass is synchronous, read-only over its
// input, and produces a fresh pair set on every call, so it is safe to rerun
// after a manual reclassification.
package pipeline

import (
	"fmt"
	"log/slog"

	"colacheck/internal/match"
	"colacheck/internal/records"
	"colacheck/internal/verify"
)

// PairStatus is the aggregate outcome for one matched pair.
type PairStatus string

const (
	StatusPass        PairStatus = "pass"
	StatusNeedsReview PairStatus = "needs_review"
	StatusFail        PairStatus = "fail"
	StatusUnmatched   PairStatus = "unmatched"
)

// MatchedPair is a label/application pairing (or singleton) with its
// verification outcome. Pairs are never mutated after creation; a changed
// classification triggers a full rerun instead.
type MatchedPair struct {
	ID              string                     `json:"id"`
	Label           *records.DocumentRecord    `json:"label,omitempty"`
	Application     *records.DocumentRecord    `json:"application,omitempty"`
	PairStatus      PairStatus                 `json:"pair_status"`
	MatchConfidence float64                    `json:"match_confidence"`
	Verifications   []verify.FieldVerification `json:"verifications"`
	IssueCount      int                        `json:"issue_count"`
	ReviewCount     int                        `json:"review_count"`
}

// Summary counts pairs by aggregate status.
type Summary struct {
	Total       int `json:"total"`
	Pass        int `json:"pass"`
	NeedsReview int `json:"needs_review"`
	Fail        int `json:"fail"`
	Unmatched   int `json:"unmatched"`
}

// Run executes the full matching and verification pass over a record
// snapshot. Records that are not extracted labels or applications are
// excluded from matching entirely. The input must be a finalized set (every
// record extracted or failed); Run does not wait.
func Run(recs []records.DocumentRecord, logger *slog.Logger) []MatchedPair {
	if logger == nil {
		logger = slog.Default()
	}

	var labels, apps []records.DocumentRecord
	for _, rec := range recs {
		if !rec.Matchable() {
			continue
		}
		switch rec.Classification {
		case records.ClassificationLabel:
			labels = append(labels, rec)
		case records.ClassificationApplication:
			apps = append(apps, rec)
		}
	}

	res := match.Match(labels, apps)
	logger.Debug("matching pass complete",
		"labels", len(labels),
		"applications", len(apps),
		"matched", len(res.Assignments),
		"unmatched_labels", len(res.UnmatchedLabel),
		"unmatched_applications", len(res.UnmatchedApp),
	)

	pairs := make([]MatchedPair, 0, len(res.Assignments)+len(res.UnmatchedLabel)+len(res.UnmatchedApp))

	for _, a := range res.Assignments {
		label := a.Label
		app := a.Application
		verifications := verify.Pair(label.Fields, app.Fields)

		issues, reviews := tally(verifications)
		pairs = append(pairs, MatchedPair{
			ID:              fmt.Sprintf("pair-%s-%s", label.ID, app.ID),
			Label:           &label,
			Application:     &app,
			PairStatus:      aggregate(issues, reviews),
			MatchConfidence: a.Score,
			Verifications:   verifications,
			IssueCount:      issues,
			ReviewCount:     reviews,
		})
	}

	for _, label := range res.UnmatchedLabel {
		label := label
		pairs = append(pairs, MatchedPair{
			ID:         fmt.Sprintf("unmatched-label-%s", label.ID),
			Label:      &label,
			PairStatus: StatusUnmatched,
		})
	}
	for _, app := range res.UnmatchedApp {
		app := app
		pairs = append(pairs, MatchedPair{
			ID:          fmt.Sprintf("unmatched-app-%s", app.ID),
			Application: &app,
			PairStatus:  StatusUnmatched,
		})
	}

	return pairs
}

// aggregate derives the pair status from verification counts: any mismatch
// fails the pair, otherwise any review flag marks it for review.
func aggregate(issues, reviews int) PairStatus {
	switch {
	case issues > 0:
		return StatusFail
	case reviews > 0:
		return StatusNeedsReview
	default:
		return StatusPass
	}
}

func tally(vs []verify.FieldVerification) (issues, reviews int) {
	for _, v := range vs {
		switch v.Status {
		case verify.StatusMismatch:
			issues++
		case verify.StatusNeedsReview:
			reviews++
		}
	}
	return issues, reviews
}

// Summarize counts pairs by status for the results overview.
func Summarize(pairs []MatchedPair) Summary {
	s := Summary{Total: len(pairs)}
	for _, p := range pairs {
		switch p.PairStatus {
		case StatusPass:
			s.Pass++
		case StatusNeedsReview:
			s.NeedsReview++
		case StatusFail:
			s.Fail++
		case StatusUnmatched:
			s.Unmatched++
		}
	}
	return s
}
