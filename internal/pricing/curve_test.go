package pricing

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"auctionhouse/internal/models"
)

const eps = 1e-9

func approx(got, want float64) bool {
	return math.Abs(got-want) < eps
}

func TestNormalizeMode(t *testing.T) {
	exp := "Exponential"
	sig := "sigmoid"
	junk := "parabolic"
	tests := []struct {
		in   *string
		want string
	}{
		{nil, models.DecayModeLinear},
		{&exp, models.DecayModeExponential},
		{&sig, models.DecayModeSigmoid},
		{&junk, models.DecayModeLinear},
	}
	for _, tt := range tests {
		if got := NormalizeMode(tt.in); got != tt.want {
			t.Fatalf("NormalizeMode(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLinearPrice(t *testing.T) {
	if got := LinearPrice(10, 0, 1000); !approx(got, 10) {
		t.Fatalf("start = %v, want 10", got)
	}
	if got := LinearPrice(10, 500, 1000); !approx(got, 5) {
		t.Fatalf("midpoint = %v, want 5", got)
	}
	if got := LinearPrice(10, 1000, 1000); got != 0 {
		t.Fatalf("end = %v, want 0", got)
	}
	if got := LinearPrice(10, 2000, 1000); got != 0 {
		t.Fatalf("past end = %v, want 0", got)
	}
}

func TestExponentialPrice(t *testing.T) {
	if got := ExponentialPrice(10, 0, 1000, 10); !approx(got, 10) {
		t.Fatalf("start = %v, want 10", got)
	}
	// Full window lands at reserve/factor.
	if got := ExponentialPrice(10, 1000, 1000, 10); !approx(got, 1) {
		t.Fatalf("end = %v, want 1", got)
	}
	// Half window lands at reserve/sqrt(factor).
	if got := ExponentialPrice(10, 500, 1000, 10); !approx(got, 10/math.Sqrt(10)) {
		t.Fatalf("midpoint = %v, want %v", got, 10/math.Sqrt(10))
	}
	// Monotone decreasing.
	prev := math.Inf(1)
	for elapsed := 0.0; elapsed <= 1000; elapsed += 100 {
		got := ExponentialPrice(10, elapsed, 1000, 10)
		if got > prev {
			t.Fatalf("price rose at elapsed=%v: %v > %v", elapsed, got, prev)
		}
		prev = got
	}
}

func TestSigmoidPrice(t *testing.T) {
	// Exactly reserve/2 at the middle of the window.
	if got := SigmoidPrice(10, 500, 1000, 10); !approx(got, 5) {
		t.Fatalf("midpoint = %v, want 5", got)
	}
	start := SigmoidPrice(10, 0, 1000, 10)
	end := SigmoidPrice(10, 1000, 1000, 10)
	if start <= 5 || end >= 5 {
		t.Fatalf("curve not decreasing around midpoint: start=%v end=%v", start, end)
	}
}

func TestCurvePriceClamps(t *testing.T) {
	c := Curve{}
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	for _, mode := range []string{models.DecayModeLinear, models.DecayModeExponential, models.DecayModeSigmoid} {
		price, pct := c.Price(10, &start, &end, start.Add(-time.Hour), mode)
		if !approx(price, 10) || pct != 0 {
			t.Fatalf("%s before start: price=%v pct=%d", mode, price, pct)
		}
		price, pct = c.Price(10, &start, &end, end, mode)
		if price != 0 || pct != 100 {
			t.Fatalf("%s at end: price=%v pct=%d, want 0/100", mode, price, pct)
		}
		price, pct = c.Price(10, &start, &end, end.Add(time.Hour), mode)
		if price != 0 || pct != 100 {
			t.Fatalf("%s past end: price=%v pct=%d, want 0/100", mode, price, pct)
		}
	}

	// Unset window quotes the full reserve.
	price, pct := c.Price(10, nil, nil, start, models.DecayModeLinear)
	if !approx(price, 10) || pct != 0 {
		t.Fatalf("unset window: price=%v pct=%d", price, pct)
	}
}

func TestCurvePriceMidWindow(t *testing.T) {
	c := Curve{}
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Hour)
	now := start.Add(5 * time.Hour)

	price, pct := c.Price(8, &start, &end, now, models.DecayModeLinear)
	if !approx(price, 4) {
		t.Fatalf("linear midpoint = %v, want 4", price)
	}
	if pct != 50 {
		t.Fatalf("pct = %d, want 50", pct)
	}
	price, _ = c.Price(8, &start, &end, now, models.DecayModeSigmoid)
	if !approx(price, 4) {
		t.Fatalf("sigmoid midpoint = %v, want 4", price)
	}
}

func TestQuoteAuction(t *testing.T) {
	c := Curve{}
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Hour)
	mode := models.DecayModeLinear
	auction := &models.Auction{
		ReservePriceWei: decimal.New(2, 18),
		StartsAt:        &start,
		EndsAt:          &end,
		DecayMode:       &mode,
	}

	q := c.QuoteAuction(auction, start.Add(5*time.Hour))
	if q.PriceEth != "1.0000" {
		t.Fatalf("priceEth = %q, want 1.0000", q.PriceEth)
	}
	if q.Pct != 50 {
		t.Fatalf("pct = %d, want 50", q.Pct)
	}

	q = c.QuoteAuction(nil, start)
	if q.PriceEth != "0" || q.Pct != 0 {
		t.Fatalf("nil auction quote = %+v", q)
	}
}
