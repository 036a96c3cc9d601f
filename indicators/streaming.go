package indicators

import (
	"fmt"

	"autotrader/market"
)

// Indicator is a streaming indicator fed one closed candle at a time.
// Value is meaningful only once Ready reports true.
type Indicator interface {
	Name() string
	Warmup() int
	Update(c market.Candle)
	Ready() bool
	Value() float64
	Reset()
}

// SimpleMA is a streaming simple moving average over candle closes.
type SimpleMA struct {
	period int
	closes []float64
}

func NewMA(period int) *SimpleMA {
	return &SimpleMA{period: period, closes: make([]float64, 0, period)}
}

func (m *SimpleMA) Name() string {
	return fmt.Sprintf("MA(%d)", m.period)
}

func (m *SimpleMA) Warmup() int { return m.period }

func (m *SimpleMA) Reset() { m.closes = m.closes[:0] }

func (m *SimpleMA) Update(c market.Candle) {
	m.closes = append(m.closes, c.Close)
	if len(m.closes) > m.period {
		m.closes = m.closes[1:]
	}
}

func (m *SimpleMA) Ready() bool { return len(m.closes) >= m.period }

func (m *SimpleMA) Value() float64 {
	if !m.Ready() {
		return 0
	}
	sum := 0.0
	for _, c := range m.closes {
		sum += c
	}
	return sum / float64(len(m.closes))
}

// ExponentialMA is a streaming exponential moving average, seeded with the
// simple average of the first period closes.
type ExponentialMA struct {
	period     int
	multiplier float64
	ema        float64
	count      int
	warmupSum  float64
}

func NewEMA(period int) *ExponentialMA {
	return &ExponentialMA{period: period, multiplier: 2.0 / float64(period+1)}
}

func (e *ExponentialMA) Name() string {
	return fmt.Sprintf("EMA(%d)", e.period)
}

func (e *ExponentialMA) Warmup() int { return e.period }

func (e *ExponentialMA) Reset() {
	e.ema = 0
	e.count = 0
	e.warmupSum = 0
}

func (e *ExponentialMA) Update(c market.Candle) {
	e.count++
	if e.count <= e.period {
		e.warmupSum += c.Close
		if e.count == e.period {
			e.ema = e.warmupSum / float64(e.period)
		}
		return
	}
	e.ema = (c.Close-e.ema)*e.multiplier + e.ema
}

func (e *ExponentialMA) Ready() bool { return e.count >= e.period }

func (e *ExponentialMA) Value() float64 {
	if !e.Ready() {
		return 0
	}
	return e.ema
}
