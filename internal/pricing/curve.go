package pricing

import (
	"math"
	"strconv"
	"strings"
	"time"

	"auctionhouse/internal/models"
)

const (
	// DefaultExpFactor makes the exponential curve fall to reserve/10 over the
	// full window (pre-clamp).
	DefaultExpFactor = 10.0
	// DefaultSigmoidSteepness controls the mid-curve drop of the logistic curve.
	DefaultSigmoidSteepness = 10.0
)

// NormalizeMode maps a stored decay mode to a known one. Unknown or empty
// modes fall back to linear.
func NormalizeMode(mode *string) string {
	if mode == nil {
		return models.DecayModeLinear
	}
	switch strings.ToLower(strings.TrimSpace(*mode)) {
	case models.DecayModeExponential:
		return models.DecayModeExponential
	case models.DecayModeSigmoid:
		return models.DecayModeSigmoid
	default:
		return models.DecayModeLinear
	}
}

// LinearPrice decays from reserve to 0 over the window.
func LinearPrice(reserveEth, elapsedMs, durationMs float64) float64 {
	if elapsedMs <= 0 {
		return reserveEth
	}
	if elapsedMs >= durationMs {
		return 0
	}
	return reserveEth * (1 - elapsedMs/durationMs)
}

// ExponentialPrice computes reserve * e^{-k*elapsed} with k = ln(factor)/duration,
// so the price reaches reserve/factor at elapsed = duration. The curve is
// asymptotic and carries no upper clamp here; Quote clamps to 0 past the end.
func ExponentialPrice(reserveEth, elapsedMs, durationMs, factor float64) float64 {
	if elapsedMs <= 0 {
		return reserveEth
	}
	if factor <= 1 {
		factor = DefaultExpFactor
	}
	k := math.Log(factor) / durationMs
	return reserveEth * math.Exp(-k*elapsedMs)
}

// SigmoidPrice follows the logistic curve reserve / (1 + e^{steepness*(x-0.5)})
// over fractional elapsed x; at x = 0.5 the price is exactly reserve/2.
func SigmoidPrice(reserveEth, elapsedMs, durationMs, steepness float64) float64 {
	if steepness <= 0 {
		steepness = DefaultSigmoidSteepness
	}
	x := elapsedMs / durationMs
	return reserveEth / (1 + math.Exp(steepness*(x-0.5)))
}

// Quote is the UI-grade current price of an auction at now. Wei stays
// fixed-point at rest; the decayed display price uses float math on purpose.
type Quote struct {
	PriceEth string `json:"priceEth"`
	Pct      int    `json:"pct"`
}

type Curve struct {
	ExpFactor        float64
	SigmoidSteepness float64
}

func (c Curve) expFactor() float64 {
	if c.ExpFactor > 1 {
		return c.ExpFactor
	}
	return DefaultExpFactor
}

func (c Curve) sigmoidSteepness() float64 {
	if c.SigmoidSteepness > 0 {
		return c.SigmoidSteepness
	}
	return DefaultSigmoidSteepness
}

// Price returns the decayed price in ETH for the given window and mode.
// Outside the window the result is clamped: full reserve before start (or when
// the window is unset), exactly 0 at or past the end, for every mode.
func (c Curve) Price(reserveEth float64, startsAt, endsAt *time.Time, now time.Time, mode string) (priceEth float64, pct int) {
	if startsAt == nil || endsAt == nil {
		return reserveEth, 0
	}
	start := *startsAt
	end := *endsAt
	if !now.After(start) {
		return reserveEth, 0
	}
	if !now.Before(end) {
		return 0, 100
	}
	duration := float64(end.Sub(start).Milliseconds())
	elapsed := float64(now.Sub(start).Milliseconds())
	switch mode {
	case models.DecayModeExponential:
		priceEth = ExponentialPrice(reserveEth, elapsed, duration, c.expFactor())
	case models.DecayModeSigmoid:
		priceEth = SigmoidPrice(reserveEth, elapsed, duration, c.sigmoidSteepness())
	default:
		priceEth = LinearPrice(reserveEth, elapsed, duration)
	}
	pct = int(math.Round(elapsed / duration * 100))
	return priceEth, pct
}

// QuoteAuction formats the current price of an auction for display.
func (c Curve) QuoteAuction(a *models.Auction, now time.Time) Quote {
	if a == nil {
		return Quote{PriceEth: "0", Pct: 0}
	}
	reserveEth := WeiToEth(a.ReservePriceWei)
	price, pct := c.Price(reserveEth, a.StartsAt, a.EndsAt, now, NormalizeMode(a.DecayMode))
	return Quote{
		PriceEth: strconv.FormatFloat(price, 'f', 4, 64),
		Pct:      pct,
	}
}
