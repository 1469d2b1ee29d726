package service

import (
	"encoding/json"
	"math"
	"time"
)

// Prediction is the decoded payload of a PREDICTION event.
type Prediction struct {
	UserID   string
	PriceEth *float64
	Time     *time.Time
}

// PredictionScore is one scored prediction, all components rounded to
// integers in [0,100].
type PredictionScore struct {
	UserID     string
	Score      int
	PriceScore int
	TimeScore  int
}

type predictionPayload struct {
	UserID  string `json:"userId"`
	Predict struct {
		PriceEth *float64 `json:"priceEth,omitempty"`
		Time     *string  `json:"time,omitempty"`
	} `json:"predict"`
}

type predictionScoredPayload struct {
	UserID     string                    `json:"userId"`
	Score      int                       `json:"score"`
	Components predictionScoreComponents `json:"components"`
}

type predictionScoreComponents struct {
	PriceScore int `json:"priceScore"`
	TimeScore  int `json:"timeScore"`
}

func decodePrediction(raw []byte) Prediction {
	var payload predictionPayload
	_ = json.Unmarshal(raw, &payload)
	p := Prediction{
		UserID:   payload.UserID,
		PriceEth: payload.Predict.PriceEth,
	}
	if p.UserID == "" {
		p.UserID = "anon"
	}
	if payload.Predict.Time != nil {
		if ts, err := time.Parse(time.RFC3339, *payload.Predict.Time); err == nil {
			utc := ts.UTC()
			p.Time = &utc
		}
	}
	return p
}

// ScorePredictions grades predictions against the actual settle price and
// time. Per prediction:
//
//	priceScore = max(0, 100 - |pred-actual| / max(0.01, actual) * 100)   when a price was predicted and actual > 0
//	timeScore  = max(0, 100 - |predTime-actualTime| seconds / 60)        when a time was predicted
//
// The combined score averages the two only when the predicted price is
// present AND non-zero and a time is present; a predicted price of exactly 0
// falls through to the price-only branch, matching the legacy scorer.
func ScorePredictions(preds []Prediction, actualPriceEth float64, actualTime time.Time) []PredictionScore {
	out := make([]PredictionScore, 0, len(preds))
	for _, p := range preds {
		var priceScore, timeScore float64
		if p.PriceEth != nil && actualPriceEth > 0 {
			priceScore = math.Max(0, 100-math.Abs(*p.PriceEth-actualPriceEth)/math.Max(0.01, actualPriceEth)*100)
		}
		if p.Time != nil {
			deltaSec := math.Abs(p.Time.Sub(actualTime).Seconds())
			timeScore = math.Max(0, 100-deltaSec/60)
		}

		var score float64
		switch {
		case p.PriceEth != nil && *p.PriceEth != 0 && p.Time != nil:
			score = (priceScore + timeScore) / 2
		case p.PriceEth == nil:
			score = timeScore
		default:
			score = priceScore
		}

		out = append(out, PredictionScore{
			UserID:     p.UserID,
			Score:      clampScore(score),
			PriceScore: clampScore(priceScore),
			TimeScore:  clampScore(timeScore),
		})
	}
	return out
}

func clampScore(v float64) int {
	n := int(math.Round(v))
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
