package match

import (
	"sort"

	"colacheck/internal/records"
)

// MinConfidence is the score floor below which a label/application pairing
// is not considered plausible.
const MinConfidence = 0.2

// Score weights. Brand name dominates; ABV, class/type, and net contents act
// as tiebreakers.
const (
	brandWeight  = 0.6
	abvWeight    = 0.15
	classWeight  = 0.15
	volumeWeight = 0.10
)

// Assignment is one matched label/application pair with its score.
type Assignment struct {
	Label       records.DocumentRecord
	Application records.DocumentRecord
	Score       float64
}

// Result is the outcome of one matching pass.
type Result struct {
	Assignments    []Assignment
	UnmatchedLabel []records.DocumentRecord
	UnmatchedApp   []records.DocumentRecord
}

// PairScore computes the weighted similarity between a label and an
// application in [0,1]. A field missing on either side contributes 0.
func PairScore(label, app records.ExtractedFields) float64 {
	var brandScore float64
	if label.BrandName != "" && app.BrandName != "" {
		brandScore = Similarity(label.BrandName, app.BrandName)
	}

	var abvScore float64
	if label.ABV != "" && app.ABV != "" {
		la, lok := ParseABV(label.ABV)
		aa, aok := ParseABV(app.ABV)
		if lok && aok && la == aa {
			abvScore = 1.0
		}
	}

	var classScore float64
	if label.ClassType != "" && app.ClassType != "" {
		classScore = Similarity(label.ClassType, app.ClassType)
	}

	// Magnitude-only: a 12 fl oz label and a 12 oz application score equal.
	// Known coarse policy, kept from the product behavior.
	var volumeScore float64
	if label.NetContents != "" && app.NetContents != "" {
		lv, lok := ParseVolume(label.NetContents)
		av, aok := ParseVolume(app.NetContents)
		if lok && aok && lv.Value == av.Value {
			volumeScore = 1.0
		}
	}

	return brandScore*brandWeight + abvScore*abvWeight + classScore*classWeight + volumeScore*volumeWeight
}

// Match pairs labels with applications greedily by descending score.
// Ties keep enumeration order (labels outer, applications inner), so the
// result is deterministic for a fixed input order. All matching state is
// local to the call.
func Match(labels, apps []records.DocumentRecord) Result {
	type scored struct {
		labelIdx int
		appIdx   int
		score    float64
	}

	scores := make([]scored, 0, len(labels)*len(apps))
	for li := range labels {
		for ai := range apps {
			scores = append(scores, scored{
				labelIdx: li,
				appIdx:   ai,
				score:    PairScore(labels[li].Fields, apps[ai].Fields),
			})
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	usedLabels := make(map[int]bool, len(labels))
	usedApps := make(map[int]bool, len(apps))

	var res Result
	for _, sc := range scores {
		if usedLabels[sc.labelIdx] || usedApps[sc.appIdx] {
			continue
		}
		if sc.score < MinConfidence {
			continue
		}
		usedLabels[sc.labelIdx] = true
		usedApps[sc.appIdx] = true
		res.Assignments = append(res.Assignments, Assignment{
			Label:       labels[sc.labelIdx],
			Application: apps[sc.appIdx],
			Score:       sc.score,
		})
	}

	for li, label := range labels {
		if !usedLabels[li] {
			res.UnmatchedLabel = append(res.UnmatchedLabel, label)
		}
	}
	for ai, app := range apps {
		if !usedApps[ai] {
			res.UnmatchedApp = append(res.UnmatchedApp, app)
		}
	}
	return res
}
