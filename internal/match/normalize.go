// Package match pairs extracted label records with application records using
// fuzzy text similarity over the regulated fields.
package match

import (
	"regexp"
	"strings"
)

var (
	punctRe = regexp.MustCompile(`[^\w\s']`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes a string for fuzzy comparison: lowercase, strip
// punctuation except apostrophes, collapse whitespace, trim.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = punctRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Similarity scores two strings in [0,1]. Identical normalized forms score
// 1.0 and an empty side scores 0. Otherwise the score is token-set Jaccard
// overlap plus a flat 0.2 bonus when one normalized string contains the
// other, clamped to 1.0. Order-insensitive, so added suffixes ("... Distilling
// Company, LLC") degrade the score gently instead of zeroing it.
func Similarity(a, b string) float64 {
	na := Normalize(a)
	nb := Normalize(b)

	if na == nb {
		return 1.0
	}
	if na == "" || nb == "" {
		return 0
	}

	tokensA := tokenSet(na)
	tokensB := tokenSet(nb)

	intersection := 0
	for tok := range tokensA {
		if _, ok := tokensB[tok]; ok {
			intersection++
		}
	}
	union := len(tokensB)
	for tok := range tokensA {
		if _, ok := tokensB[tok]; !ok {
			union++
		}
	}

	score := float64(intersection) / float64(union)
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		score += 0.2
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Split(s, " ") {
		set[tok] = struct{}{}
	}
	return set
}
