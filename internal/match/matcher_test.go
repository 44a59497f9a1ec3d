package match

import (
	"testing"

	"colacheck/internal/records"
)

func labelRecord(brand string) records.DocumentRecord {
	rec := records.New("label.png", "image/png", nil)
	rec.Status = records.StatusExtracted
	rec.Classification = records.ClassificationLabel
	rec.Fields = records.ExtractedFields{BrandName: brand}
	return *rec
}

func appRecord(brand string) records.DocumentRecord {
	rec := records.New("app.pdf", "application/pdf", nil)
	rec.Status = records.StatusExtracted
	rec.Classification = records.ClassificationApplication
	rec.Fields = records.ExtractedFields{BrandName: brand}
	return *rec
}

func TestPairScore_Weights(t *testing.T) {
	label := records.ExtractedFields{
		BrandName:   "Old Forge Bourbon",
		ClassType:   "Bourbon Whiskey",
		ABV:         "45% Alc./Vol.",
		NetContents: "750 mL",
	}
	app := records.ExtractedFields{
		BrandName:   "Old Forge Bourbon",
		ClassType:   "Bourbon Whiskey",
		ABV:         "45%",
		NetContents: "0.75 L",
	}

	if got := PairScore(label, app); got != 1.0 {
		t.Errorf("fully agreeing pair should score 1.0, got %v", got)
	}

	// Absent fields contribute zero.
	if got := PairScore(records.ExtractedFields{BrandName: "Old Forge"}, records.ExtractedFields{BrandName: "Old Forge"}); got != 0.6 {
		t.Errorf("brand-only agreement should score 0.6, got %v", got)
	}

	if got := PairScore(records.ExtractedFields{}, records.ExtractedFields{}); got != 0 {
		t.Errorf("empty fields should score 0, got %v", got)
	}
}

func TestPairScore_VolumeMagnitudeOnly(t *testing.T) {
	label := records.ExtractedFields{NetContents: "12 fl oz"}
	app := records.ExtractedFields{NetContents: "12 oz"}
	if got := PairScore(label, app); got != volumeWeight {
		t.Errorf("unit-blind volume comparison should score equal, got %v", got)
	}
}

func TestMatch_BestPairWins(t *testing.T) {
	// Scenario: two labels, one application. The application's brand strongly
	// matches only the first label.
	label1 := labelRecord("Old Forge Bourbon")
	label2 := labelRecord("Willow Creek Vineyards")
	app := appRecord("OLD FORGE BOURBON")

	res := Match([]records.DocumentRecord{label1, label2}, []records.DocumentRecord{app})

	if len(res.Assignments) != 1 {
		t.Fatalf("expected 1 assignment, got %d", len(res.Assignments))
	}
	if res.Assignments[0].Label.ID != label1.ID {
		t.Errorf("application should pair with label 1")
	}
	if len(res.UnmatchedLabel) != 1 || res.UnmatchedLabel[0].ID != label2.ID {
		t.Errorf("label 2 should be unmatched")
	}
	if len(res.UnmatchedApp) != 0 {
		t.Errorf("no applications should be unmatched")
	}
}

func TestMatch_ThresholdRespected(t *testing.T) {
	label := labelRecord("Old Forge Bourbon")
	app := appRecord("Willow Creek Vineyards")

	res := Match([]records.DocumentRecord{label}, []records.DocumentRecord{app})
	if len(res.Assignments) != 0 {
		t.Fatalf("score below %v must not match, got %d assignments", MinConfidence, len(res.Assignments))
	}
	if len(res.UnmatchedLabel) != 1 || len(res.UnmatchedApp) != 1 {
		t.Errorf("both sides should be unmatched")
	}
}

func TestMatch_Conservation(t *testing.T) {
	labels := []records.DocumentRecord{
		labelRecord("Old Forge Bourbon"),
		labelRecord("Willow Creek Chardonnay"),
		labelRecord("Harbor Light Lager"),
	}
	apps := []records.DocumentRecord{
		appRecord("Old Forge Bourbon"),
		appRecord("Harbor Light Lager"),
	}

	res := Match(labels, apps)
	total := 2*len(res.Assignments) + len(res.UnmatchedLabel) + len(res.UnmatchedApp)
	if total != len(labels)+len(apps) {
		t.Errorf("every record must appear exactly once, got %d of %d", total, len(labels)+len(apps))
	}

	seen := make(map[string]bool)
	for _, a := range res.Assignments {
		if seen[a.Label.ID] || seen[a.Application.ID] {
			t.Errorf("record assigned twice")
		}
		seen[a.Label.ID] = true
		seen[a.Application.ID] = true
	}
}

func TestMatch_TieBreakIsEnumerationOrder(t *testing.T) {
	// Identical brands on both labels: the tie resolves to the first label
	// enumerated, deterministically.
	label1 := labelRecord("Old Forge Bourbon")
	label2 := labelRecord("Old Forge Bourbon")
	app := appRecord("Old Forge Bourbon")

	for i := 0; i < 10; i++ {
		res := Match([]records.DocumentRecord{label1, label2}, []records.DocumentRecord{app})
		if len(res.Assignments) != 1 || res.Assignments[0].Label.ID != label1.ID {
			t.Fatalf("tie must resolve to first enumerated label on every run")
		}
	}
}

func TestMatch_EmptySides(t *testing.T) {
	label := labelRecord("Old Forge Bourbon")

	res := Match([]records.DocumentRecord{label}, nil)
	if len(res.Assignments) != 0 || len(res.UnmatchedLabel) != 1 {
		t.Errorf("zero applications: label should be unmatched")
	}

	app := appRecord("Old Forge Bourbon")
	res = Match(nil, []records.DocumentRecord{app})
	if len(res.Assignments) != 0 || len(res.UnmatchedApp) != 1 {
		t.Errorf("zero labels: application should be unmatched")
	}
}
