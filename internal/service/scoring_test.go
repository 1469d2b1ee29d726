package service

import (
	"testing"
	"time"
)

func fp(v float64) *float64 { return &v }

func tp(t time.Time) *time.Time { return &t }

func TestScorePredictionsExactPrice(t *testing.T) {
	actual := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	scores := ScorePredictions([]Prediction{
		{UserID: "u1", PriceEth: fp(1.5)},
	}, 1.5, actual)
	if len(scores) != 1 {
		t.Fatalf("len = %d, want 1", len(scores))
	}
	if scores[0].Score != 100 || scores[0].PriceScore != 100 {
		t.Fatalf("score = %+v, want 100", scores[0])
	}
	if scores[0].TimeScore != 0 {
		t.Fatalf("timeScore = %d, want 0", scores[0].TimeScore)
	}
}

func TestScorePredictionsExactTime(t *testing.T) {
	actual := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	scores := ScorePredictions([]Prediction{
		{UserID: "u1", Time: tp(actual)},
	}, 1.5, actual)
	if scores[0].Score != 100 || scores[0].TimeScore != 100 {
		t.Fatalf("score = %+v, want 100", scores[0])
	}
}

func TestScorePredictionsTimeDecayPerMinute(t *testing.T) {
	actual := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	scores := ScorePredictions([]Prediction{
		{UserID: "u1", Time: tp(actual.Add(10 * time.Minute))},
		{UserID: "u2", Time: tp(actual.Add(-200 * time.Minute))},
	}, 1.5, actual)
	// 10 minutes off costs 10 points; 200 minutes clamps at 0.
	if scores[0].TimeScore != 90 {
		t.Fatalf("timeScore = %d, want 90", scores[0].TimeScore)
	}
	if scores[1].TimeScore != 0 {
		t.Fatalf("timeScore = %d, want 0", scores[1].TimeScore)
	}
}

func TestScorePredictionsCombinedAverage(t *testing.T) {
	actual := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	scores := ScorePredictions([]Prediction{
		{UserID: "u1", PriceEth: fp(2.0), Time: tp(actual)},
	}, 2.0, actual)
	if scores[0].Score != 100 {
		t.Fatalf("score = %d, want 100", scores[0].Score)
	}

	scores = ScorePredictions([]Prediction{
		{UserID: "u1", PriceEth: fp(1.0), Time: tp(actual)},
	}, 2.0, actual)
	// priceScore 50, timeScore 100 -> 75.
	if scores[0].Score != 75 {
		t.Fatalf("score = %d, want 75", scores[0].Score)
	}
}

func TestScorePredictionsZeroPriceSkipsTimeComponent(t *testing.T) {
	// A predicted price of exactly 0 never averages with the time component;
	// the combined score is the price score alone even when a time is present.
	actual := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	scores := ScorePredictions([]Prediction{
		{UserID: "u1", PriceEth: fp(0), Time: tp(actual)},
	}, 1.0, actual)
	if scores[0].TimeScore != 100 {
		t.Fatalf("timeScore = %d, want 100", scores[0].TimeScore)
	}
	if scores[0].Score != 0 {
		t.Fatalf("score = %d, want 0 (price-only branch)", scores[0].Score)
	}
}

func TestScorePredictionsMissingPriceUsesTime(t *testing.T) {
	actual := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	scores := ScorePredictions([]Prediction{
		{UserID: "u1", Time: tp(actual.Add(30 * time.Minute))},
	}, 1.0, actual)
	if scores[0].Score != 70 {
		t.Fatalf("score = %d, want 70", scores[0].Score)
	}
}

func TestScorePredictionsZeroActualPrice(t *testing.T) {
	// No bids means a zero settle price; the price component stays 0.
	actual := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	scores := ScorePredictions([]Prediction{
		{UserID: "u1", PriceEth: fp(1.0)},
	}, 0, actual)
	if scores[0].PriceScore != 0 || scores[0].Score != 0 {
		t.Fatalf("score = %+v, want zeros", scores[0])
	}
}

func TestDecodePredictionDefaultsAndBadTime(t *testing.T) {
	p := decodePrediction([]byte(`{"predict":{"priceEth":1.25,"time":"not-a-time"}}`))
	if p.UserID != "anon" {
		t.Fatalf("userId = %s, want anon", p.UserID)
	}
	if p.PriceEth == nil || *p.PriceEth != 1.25 {
		t.Fatalf("priceEth = %v, want 1.25", p.PriceEth)
	}
	if p.Time != nil {
		t.Fatalf("unparsable time should decode to nil")
	}
}
