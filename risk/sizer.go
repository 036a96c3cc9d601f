package risk

import (
	"context"
	"math"

	"go.uber.org/zap"

	"autotrader/market"
	"autotrader/venue"
)

// Sizer converts account balance, risk percent and stop distance into a
// tradable lot size. Quotes are needed only when the symbol's profit
// currency differs from the account currency.
type Sizer struct {
	quotes market.TickSource
	log    *zap.Logger
}

func NewSizer(quotes market.TickSource, log *zap.Logger) *Sizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sizer{quotes: quotes, log: log}
}

// ComputeVolume sizes an order so that stopPoints of adverse movement loses
// riskPercent of the account balance. The result is clamped to
// [VolumeMin, VolumeMax], rounded to the nearest VolumeStep and then to the
// symbol's volume precision. On any degenerate input (non-positive stop,
// zero contract size or point) it returns VolumeMin as a safe fallback
// instead of failing the caller. Never returns below VolumeMin or above
// VolumeMax.
func (s *Sizer) ComputeVolume(ctx context.Context, spec market.SymbolSpec, acct venue.AccountSnapshot, riskPercent, stopPoints float64) float64 {
	volumeMin := spec.VolumeMin
	if volumeMin <= 0 {
		volumeMin = 0.01
	}
	step := spec.VolumeStep
	if step <= 0 {
		step = 0.01
	}
	precision := spec.VolumePrecision()
	fallback := roundTo(volumeMin, precision)

	if riskPercent <= 0 || stopPoints <= 0 {
		s.log.Warn("non-positive risk or stop distance, using minimum volume",
			zap.String("symbol", spec.Name),
			zap.Float64("risk_percent", riskPercent),
			zap.Float64("stop_points", stopPoints))
		return fallback
	}
	if spec.ContractSize == 0 || spec.Point == 0 {
		s.log.Error("missing contract size or point, using minimum volume",
			zap.String("symbol", spec.Name),
			zap.Float64("contract_size", spec.ContractSize),
			zap.Float64("point", spec.Point))
		return fallback
	}

	riskAmount := acct.Balance * riskPercent / 100.0

	// Value of one point for one lot, in the symbol's profit currency,
	// converted to the account currency when they differ.
	pointValue := spec.ContractSize * spec.Point
	if spec.ProfitCurrency != "" && spec.ProfitCurrency != acct.Currency {
		pointValue *= s.conversionRate(ctx, spec.ProfitCurrency, acct.Currency)
	}
	if pointValue == 0 {
		s.log.Error("point value is zero after conversion, using minimum volume",
			zap.String("symbol", spec.Name))
		return fallback
	}

	slValuePerLot := stopPoints * pointValue
	if slValuePerLot == 0 {
		return fallback
	}

	volume := riskAmount / slValuePerLot
	volume = math.Max(volume, volumeMin)
	if spec.VolumeMax > 0 {
		volume = math.Min(volume, spec.VolumeMax)
	}
	volume = math.Round(volume/step) * step
	volume = roundTo(volume, precision)
	if volume < volumeMin {
		volume = volumeMin
	}

	s.log.Debug("volume computed",
		zap.String("symbol", spec.Name),
		zap.Float64("balance", acct.Balance),
		zap.Float64("risk_amount", riskAmount),
		zap.Float64("stop_points", stopPoints),
		zap.Float64("sl_value_per_lot", slValuePerLot),
		zap.Float64("volume", volume))
	return volume
}

// conversionRate resolves profit→account currency: prefer the bid of the
// direct pair, then the inverse ask of the reversed pair. When neither
// quote is obtainable it falls back to 1.0 — a documented imprecision,
// logged loudly rather than swallowed.
func (s *Sizer) conversionRate(ctx context.Context, profitCurrency, accountCurrency string) float64 {
	if s.quotes != nil {
		direct := profitCurrency + accountCurrency
		if tick, err := s.quotes.Tick(ctx, direct); err == nil && tick.Bid > 0 {
			return tick.Bid
		}
		reversed := accountCurrency + profitCurrency
		if tick, err := s.quotes.Tick(ctx, reversed); err == nil && tick.Ask > 0 {
			return 1.0 / tick.Ask
		}
	}
	s.log.Warn("no conversion quote available, assuming rate 1.0 (may be inaccurate)",
		zap.String("from", profitCurrency),
		zap.String("to", accountCurrency))
	return 1.0
}

func roundTo(v float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Round(v*scale) / scale
}
