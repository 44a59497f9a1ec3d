// Package verify compares the regulated fields of a matched label and
// application pair. Each comparator is independent and deterministic; a
// "failing" verification is a business outcome, never an error.
package verify

import (
	"fmt"
	"regexp"
	"strings"

	"colacheck/internal/match"
	"colacheck/internal/records"
)

// FieldStatus is the outcome of one field comparison.
type FieldStatus string

const (
	StatusMatch       FieldStatus = "match"
	StatusNeedsReview FieldStatus = "needs_review"
	StatusMismatch    FieldStatus = "mismatch"
	StatusNotFound    FieldStatus = "not_found"
)

// FieldVerification is the comparison outcome for one regulated field.
type FieldVerification struct {
	Field       string      `json:"field"`
	Label       string      `json:"label"`
	AppValue    string      `json:"app_value,omitempty"`
	LabelValue  string      `json:"label_value,omitempty"`
	Status      FieldStatus `json:"status"`
	Explanation string      `json:"explanation,omitempty"`
}

// Pair runs all field comparators for a matched pair, in fixed order.
func Pair(label, app records.ExtractedFields) []FieldVerification {
	return []FieldVerification{
		verifyBrandName(app.BrandName, label.BrandName),
		verifyClassType(app.ClassType, label.ClassType),
		verifyABV(app.ABV, label.ABV),
		verifyNetContents(app.NetContents, label.NetContents),
		verifyGovWarning(label.GovernmentWarning),
		verifyProducer(app.ProducerName, label.ProducerName),
		verifyOrigin(app.CountryOfOrigin, label.CountryOfOrigin),
	}
}

// verifyBrandName compares brand names case-insensitively. A pure
// capitalization difference is flagged for review rather than failed.
func verifyBrandName(appVal, labelVal string) FieldVerification {
	v := FieldVerification{Field: "brandName", Label: "Brand Name", AppValue: appVal, LabelValue: labelVal}

	if labelVal == "" {
		v.Status = StatusNotFound
		v.Explanation = "Brand name not found on label"
		return v
	}
	if appVal == "" {
		v.Status = StatusNotFound
		v.Explanation = "Brand name not in application"
		return v
	}

	if match.Normalize(appVal) == match.Normalize(labelVal) {
		if appVal != labelVal {
			v.Status = StatusNeedsReview
			v.Explanation = "Matches but with different capitalization"
			return v
		}
		v.Status = StatusMatch
		return v
	}

	if match.Similarity(appVal, labelVal) >= 0.8 {
		v.Status = StatusNeedsReview
		v.Explanation = "Very similar but not identical"
		return v
	}

	v.Status = StatusMismatch
	v.Explanation = "Brand names do not match"
	return v
}

// verifyClassType compares class/type designations. Containment (e.g.
// "Bourbon" within "Kentucky Straight Bourbon Whiskey") may be a more
// specific designation, so it is flagged for review.
func verifyClassType(appVal, labelVal string) FieldVerification {
	v := FieldVerification{Field: "classType", Label: "Class / Type", AppValue: appVal, LabelValue: labelVal}

	if labelVal == "" {
		v.Status = StatusNotFound
		v.Explanation = "Class/type not found on label"
		return v
	}
	if appVal == "" {
		v.Status = StatusNotFound
		v.Explanation = "Class/type not in application"
		return v
	}

	normApp := match.Normalize(appVal)
	normLabel := match.Normalize(labelVal)

	if normApp == normLabel {
		v.Status = StatusMatch
		return v
	}

	if strings.Contains(normApp, normLabel) || strings.Contains(normLabel, normApp) {
		v.Status = StatusNeedsReview
		v.Explanation = "One value contains the other — may be a more specific designation"
		return v
	}

	if match.Similarity(appVal, labelVal) >= 0.6 {
		v.Status = StatusNeedsReview
		v.Explanation = "Similar class/type but not identical"
		return v
	}

	v.Status = StatusMismatch
	v.Explanation = "Class/type does not match"
	return v
}

// verifyABV compares alcohol content numerically, so format differences
// ("45%" vs "45% Alc./Vol. (90 Proof)") still match.
func verifyABV(appVal, labelVal string) FieldVerification {
	v := FieldVerification{Field: "abv", Label: "Alcohol Content", AppValue: appVal, LabelValue: labelVal}

	if labelVal == "" {
		v.Status = StatusNotFound
		v.Explanation = "ABV not found on label"
		return v
	}
	if appVal == "" {
		v.Status = StatusNotFound
		v.Explanation = "ABV not in application"
		return v
	}

	appNum, appOK := match.ParseABV(appVal)
	labelNum, labelOK := match.ParseABV(labelVal)

	if !appOK || !labelOK {
		v.Status = StatusNeedsReview
		v.Explanation = "Could not parse numeric ABV from one or both values"
		return v
	}

	if appNum == labelNum {
		v.Status = StatusMatch
		return v
	}

	v.Status = StatusMismatch
	v.Explanation = fmt.Sprintf("ABV mismatch: application says %v%%, label says %v%%", appNum, labelNum)
	return v
}

// verifyNetContents compares net contents by normalized numeric magnitude.
// Units are not reconciled (12 fl oz and 12 oz compare equal); this mirrors
// the matcher's unit-blind policy.
func verifyNetContents(appVal, labelVal string) FieldVerification {
	v := FieldVerification{Field: "netContents", Label: "Net Contents", AppValue: appVal, LabelValue: labelVal}

	if labelVal == "" {
		v.Status = StatusNotFound
		v.Explanation = "Net contents not found on label"
		return v
	}
	if appVal == "" {
		v.Status = StatusNotFound
		v.Explanation = "Net contents not in application"
		return v
	}

	appVol, appOK := match.ParseVolume(appVal)
	labelVol, labelOK := match.ParseVolume(labelVal)

	if !appOK || !labelOK {
		v.Status = StatusNeedsReview
		v.Explanation = "Could not parse net contents from one or both values"
		return v
	}

	if appVol.Value == labelVol.Value {
		v.Status = StatusMatch
		return v
	}

	v.Status = StatusMismatch
	v.Explanation = fmt.Sprintf("Net contents mismatch: application says %s, label says %s", appVal, labelVal)
	return v
}

// verifyGovWarning checks the label's warning against the exact statutory
// text. The warning is mandatory, so a missing value is a mismatch, never
// not_found. Applications do not carry this text; the app side is reported
// as a literal placeholder.
func verifyGovWarning(labelVal string) FieldVerification {
	v := FieldVerification{
		Field:      "governmentWarning",
		Label:      "Government Warning",
		AppValue:   GovWarningPlaceholder,
		LabelValue: labelVal,
	}

	if labelVal == "" {
		v.Status = StatusMismatch
		v.Explanation = "Government warning is missing from label — required on all alcohol beverages"
		return v
	}

	normLabel := collapseWhitespace(labelVal)
	normRequired := collapseWhitespace(GovWarningText)

	if normLabel == normRequired {
		v.Status = StatusMatch
		return v
	}

	// Violation checks run in order; every applicable explanation is kept.
	var violations []string

	if strings.HasPrefix(normLabel, "Government Warning:") && !strings.HasPrefix(normLabel, "GOVERNMENT WARNING:") {
		violations = append(violations, "Header uses title case instead of required all caps")
	}

	if len(normLabel) < int(float64(len(normRequired))*0.8) && len(normLabel) > 20 {
		violations = append(violations, "Warning text appears to be truncated")
	}

	if strings.HasPrefix(strings.ToUpper(normLabel), "GOVERNMENT WARNING:") {
		labelBody := bodyAfterColon(normLabel)
		requiredBody := bodyAfterColon(normRequired)
		if labelBody != requiredBody {
			violations = append(violations, "Warning text wording differs from required statutory text")
		}
	}

	v.Status = StatusMismatch
	if len(violations) > 0 {
		v.Explanation = strings.Join(violations, "; ")
	} else {
		v.Explanation = "Government warning does not match required text"
	}
	return v
}

// verifyProducer compares producer/bottler names by fuzzy similarity alone.
func verifyProducer(appVal, labelVal string) FieldVerification {
	v := FieldVerification{Field: "producerName", Label: "Producer", AppValue: appVal, LabelValue: labelVal}

	if labelVal == "" {
		v.Status = StatusNotFound
		v.Explanation = "Producer not found on label"
		return v
	}
	if appVal == "" {
		v.Status = StatusNotFound
		v.Explanation = "Producer not in application"
		return v
	}

	sim := match.Similarity(appVal, labelVal)
	switch {
	case sim >= 0.9:
		v.Status = StatusMatch
	case sim >= 0.6:
		v.Status = StatusNeedsReview
		v.Explanation = "Producer names are similar but not identical"
	default:
		v.Status = StatusMismatch
		v.Explanation = "Producer names do not match"
	}
	return v
}

var originPrefixRe = regexp.MustCompile(`^(product of|made in|imported from|produced in)\s+`)

func normalizeOrigin(s string) string {
	return strings.TrimSpace(originPrefixRe.ReplaceAllString(match.Normalize(s), ""))
}

// verifyOrigin compares country of origin. Both sides absent means a
// domestic product, which matches by definition; one side absent is flagged
// for review.
func verifyOrigin(appVal, labelVal string) FieldVerification {
	v := FieldVerification{Field: "countryOfOrigin", Label: "Country of Origin", AppValue: appVal, LabelValue: labelVal}

	switch {
	case appVal == "" && labelVal == "":
		v.Status = StatusMatch
		v.Explanation = "Not applicable (domestic product)"
	case labelVal == "":
		v.Status = StatusNeedsReview
		v.Explanation = "Country of origin in application but not found on label"
	case appVal == "":
		v.Status = StatusNeedsReview
		v.Explanation = "Country of origin on label but not in application"
	case normalizeOrigin(appVal) == normalizeOrigin(labelVal):
		v.Status = StatusMatch
	default:
		v.Status = StatusMismatch
		v.Explanation = "Country of origin does not match"
	}
	return v
}

var wsRe = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
}

func bodyAfterColon(s string) string {
	idx := strings.Index(s, ":")
	if idx < 0 {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return strings.ToLower(strings.TrimSpace(s[idx+1:]))
}
