package pipeline

import (
	"reflect"
	"testing"

	"colacheck/internal/records"
	"colacheck/internal/verify"
)

func extractedRecord(name string, class records.Classification, fields records.ExtractedFields) records.DocumentRecord {
	rec := records.New(name, "image/png", nil)
	rec.Status = records.StatusExtracted
	rec.Classification = class
	rec.Fields = fields
	return *rec
}

func bourbonLabel() records.DocumentRecord {
	return extractedRecord("label.png", records.ClassificationLabel, records.ExtractedFields{
		BrandName:         "Old Forge Bourbon",
		ClassType:         "Kentucky Straight Bourbon Whiskey",
		ABV:               "45% Alc./Vol. (90 Proof)",
		NetContents:       "750 mL",
		ProducerName:      "Old Forge Distilling Co.",
		GovernmentWarning: verify.GovWarningText,
	})
}

func bourbonApplication() records.DocumentRecord {
	return extractedRecord("app.pdf", records.ClassificationApplication, records.ExtractedFields{
		BrandName:    "Old Forge Bourbon",
		ClassType:    "Kentucky Straight Bourbon Whiskey",
		ABV:          "45%",
		NetContents:  "0.75 L",
		ProducerName: "Old Forge Distilling Co.",
	})
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		issues, reviews int
		want            PairStatus
	}{
		{0, 0, StatusPass},
		{0, 1, StatusNeedsReview},
		{0, 7, StatusNeedsReview},
		{1, 0, StatusFail},
		{1, 3, StatusFail},
		{7, 7, StatusFail},
	}
	for _, tt := range tests {
		if got := aggregate(tt.issues, tt.reviews); got != tt.want {
			t.Errorf("aggregate(%d, %d) = %s, want %s", tt.issues, tt.reviews, got, tt.want)
		}
	}
}

func TestRun_CleanPairPasses(t *testing.T) {
	pairs := Run([]records.DocumentRecord{bourbonLabel(), bourbonApplication()}, nil)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	p := pairs[0]
	if p.PairStatus != StatusPass {
		t.Errorf("expected pass, got %s (issues=%d reviews=%d)", p.PairStatus, p.IssueCount, p.ReviewCount)
	}
	if len(p.Verifications) != 7 {
		t.Errorf("expected 7 verifications, got %d", len(p.Verifications))
	}
	if p.MatchConfidence < 0.2 {
		t.Errorf("matched pair must carry its score, got %v", p.MatchConfidence)
	}
}

func TestRun_CapitalizationOnlyDifferenceDoesNotFail(t *testing.T) {
	label := bourbonLabel()
	app := bourbonApplication()
	app.Fields.BrandName = "OLD FORGE BOURBON"

	pairs := Run([]records.DocumentRecord{label, app}, nil)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	p := pairs[0]

	var brand verify.FieldVerification
	for _, v := range p.Verifications {
		if v.Field == "brandName" {
			brand = v
		}
	}
	if brand.Status != verify.StatusNeedsReview {
		t.Errorf("expected brand needs_review, got %s", brand.Status)
	}
	if p.PairStatus == StatusFail {
		t.Errorf("capitalization alone must not fail the pair, got %s", p.PairStatus)
	}
}

func TestRun_MissingWarningFailsPair(t *testing.T) {
	label := bourbonLabel()
	label.Fields.GovernmentWarning = ""

	pairs := Run([]records.DocumentRecord{label, bourbonApplication()}, nil)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	if pairs[0].PairStatus != StatusFail {
		t.Errorf("missing government warning should fail the pair, got %s", pairs[0].PairStatus)
	}
	if pairs[0].IssueCount == 0 {
		t.Errorf("expected at least one issue")
	}
}

func TestRun_UnmatchedEmission(t *testing.T) {
	label := bourbonLabel()
	orphan := extractedRecord("orphan.png", records.ClassificationLabel, records.ExtractedFields{
		BrandName: "Willow Creek Vineyards",
	})

	pairs := Run([]records.DocumentRecord{label, orphan, bourbonApplication()}, nil)
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}

	var unmatched *MatchedPair
	for i := range pairs {
		if pairs[i].PairStatus == StatusUnmatched {
			unmatched = &pairs[i]
		}
	}
	if unmatched == nil {
		t.Fatal("expected an unmatched pair")
	}
	if unmatched.Label == nil || unmatched.Label.ID != orphan.ID {
		t.Errorf("unmatched pair should carry the orphan label")
	}
	if unmatched.Application != nil {
		t.Errorf("unmatched label pair must have no application")
	}
	if unmatched.MatchConfidence != 0 || len(unmatched.Verifications) != 0 {
		t.Errorf("unmatched pairs carry no confidence or verifications")
	}
	if unmatched.IssueCount != 0 || unmatched.ReviewCount != 0 {
		t.Errorf("unmatched pairs carry zero counts")
	}
}

func TestRun_ExcludesNonMatchableRecords(t *testing.T) {
	failed := records.New("failed.png", "image/png", nil)
	failed.Status = records.StatusFailed

	unrecognized := extractedRecord("junk.png", records.ClassificationUnrecognized, records.ExtractedFields{})

	pairs := Run([]records.DocumentRecord{*failed, unrecognized, bourbonLabel(), bourbonApplication()}, nil)
	if len(pairs) != 1 {
		t.Fatalf("failed and unrecognized records must be excluded, got %d pairs", len(pairs))
	}
}

func TestRun_Conservation(t *testing.T) {
	recs := []records.DocumentRecord{
		bourbonLabel(),
		extractedRecord("l2.png", records.ClassificationLabel, records.ExtractedFields{BrandName: "Harbor Light Lager"}),
		bourbonApplication(),
		extractedRecord("a2.pdf", records.ClassificationApplication, records.ExtractedFields{BrandName: "Castle Peak Cider"}),
	}

	pairs := Run(recs, nil)

	totalRecords := 0
	seen := make(map[string]bool)
	for _, p := range pairs {
		if p.Label != nil {
			totalRecords++
			if p.PairStatus != StatusUnmatched && seen[p.Label.ID] {
				t.Errorf("record %s appears in two matched pairs", p.Label.ID)
			}
			seen[p.Label.ID] = true
		}
		if p.Application != nil {
			totalRecords++
			if p.PairStatus != StatusUnmatched && seen[p.Application.ID] {
				t.Errorf("record %s appears in two matched pairs", p.Application.ID)
			}
			seen[p.Application.ID] = true
		}
	}
	if totalRecords != len(recs) {
		t.Errorf("expected %d records across pairs, got %d", len(recs), totalRecords)
	}
}

func TestRun_Idempotent(t *testing.T) {
	recs := []records.DocumentRecord{
		bourbonLabel(),
		bourbonApplication(),
		extractedRecord("l2.png", records.ClassificationLabel, records.ExtractedFields{BrandName: "Harbor Light Lager"}),
	}

	first := Run(recs, nil)
	second := Run(recs, nil)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("two runs over the same snapshot must be identical")
	}
}

func TestRun_ReclassificationRegeneratesPairs(t *testing.T) {
	label := bourbonLabel()
	app := bourbonApplication()

	before := Run([]records.DocumentRecord{label, app}, nil)
	if len(before) != 1 || before[0].PairStatus == StatusUnmatched {
		t.Fatalf("expected one matched pair before reclassification")
	}

	// Reclassifying the application as unrecognized removes it from matching;
	// the next run produces a completely fresh pair set.
	app.Classification = records.ClassificationUnrecognized
	after := Run([]records.DocumentRecord{label, app}, nil)
	if len(after) != 1 {
		t.Fatalf("expected 1 pair after reclassification, got %d", len(after))
	}
	if after[0].PairStatus != StatusUnmatched {
		t.Errorf("expected unmatched label after reclassification, got %s", after[0].PairStatus)
	}
}

func TestSummarize(t *testing.T) {
	pairs := []MatchedPair{
		{PairStatus: StatusPass},
		{PairStatus: StatusPass},
		{PairStatus: StatusFail},
		{PairStatus: StatusNeedsReview},
		{PairStatus: StatusUnmatched},
	}
	s := Summarize(pairs)
	want := Summary{Total: 5, Pass: 2, NeedsReview: 1, Fail: 1, Unmatched: 1}
	if s != want {
		t.Errorf("Summarize = %+v, want %+v", s, want)
	}
}
