package journal

import "time"

// OrderRecord is one order request and its venue result, logged after every
// submission attempt regardless of outcome.
type OrderRecord struct {
	RequestID     string // client-side ULID tag
	Time          time.Time
	Symbol        string
	Direction     string
	Volume        float64
	Price         float64
	StopLoss      float64
	TakeProfit    float64
	Comment       string
	OrderID       int64
	DealID        int64
	Retcode       int
	RetcodeText   string
	ResultComment string
}

// EquitySnapshot is a point-in-time account summary.
type EquitySnapshot struct {
	Time           time.Time
	Balance        float64
	Equity         float64
	MarginUsed     float64
	MarginFree     float64
	MarginLevel    float64
	FloatingProfit float64
}

type Journal interface {
	RecordOrder(OrderRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Nop discards all records, for runs without journaling configured.
type Nop struct{}

func (Nop) RecordOrder(OrderRecord) error     { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) Close() error                      { return nil }
