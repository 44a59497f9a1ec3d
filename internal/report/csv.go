// Package report renders verification results for export.
package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"colacheck/internal/pipeline"
	"colacheck/internal/verify"
)

// csvHeader is the column layout for exported verification results.
var csvHeader = []string{
	"Pair Status",
	"Match Confidence",
	"Label File",
	"Application File",
	"Brand Name (App)",
	"Brand Name (Label)",
	"Brand Status",
	"Class/Type (App)",
	"Class/Type (Label)",
	"Class/Type Status",
	"ABV (App)",
	"ABV (Label)",
	"ABV Status",
	"Net Contents (App)",
	"Net Contents (Label)",
	"Net Contents Status",
	"Gov Warning Status",
	"Gov Warning Detail",
	"Producer (App)",
	"Producer (Label)",
	"Producer Status",
	"Origin (App)",
	"Origin (Label)",
	"Origin Status",
	"Total Mismatches",
	"Total Needs Review",
}

// WriteCSV writes verification results as CSV, one row per pair.
func WriteCSV(w io.Writer, pairs []pipeline.MatchedPair) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, pair := range pairs {
		if err := cw.Write(csvRow(pair)); err != nil {
			return fmt.Errorf("writing csv row for %s: %w", pair.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvRow(pair pipeline.MatchedPair) []string {
	byField := make(map[string]verify.FieldVerification, len(pair.Verifications))
	for _, v := range pair.Verifications {
		byField[v.Field] = v
	}
	get := func(field string) verify.FieldVerification {
		return byField[field]
	}

	labelFile := "(none)"
	if pair.Label != nil {
		labelFile = pair.Label.FileName
	}
	appFile := "(none)"
	if pair.Application != nil {
		appFile = pair.Application.FileName
	}

	return []string{
		string(pair.PairStatus),
		fmt.Sprintf("%.2f", pair.MatchConfidence),
		labelFile,
		appFile,
		get("brandName").AppValue,
		get("brandName").LabelValue,
		string(get("brandName").Status),
		get("classType").AppValue,
		get("classType").LabelValue,
		string(get("classType").Status),
		get("abv").AppValue,
		get("abv").LabelValue,
		string(get("abv").Status),
		get("netContents").AppValue,
		get("netContents").LabelValue,
		string(get("netContents").Status),
		string(get("governmentWarning").Status),
		get("governmentWarning").Explanation,
		get("producerName").AppValue,
		get("producerName").LabelValue,
		string(get("producerName").Status),
		get("countryOfOrigin").AppValue,
		get("countryOfOrigin").LabelValue,
		string(get("countryOfOrigin").Status),
		fmt.Sprintf("%d", pair.IssueCount),
		fmt.Sprintf("%d", pair.ReviewCount),
	}
}
