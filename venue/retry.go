package venue

import "time"

// RetryPolicy bounds a connect attempt: at most MaxAttempts tries with a
// fixed Delay between them. Sleep is injectable so tests run without real
// delays; nil means time.Sleep.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Sleep       func(time.Duration)
}

// DefaultRetry mirrors the usual terminal settings: three tries, two
// seconds apart.
var DefaultRetry = RetryPolicy{MaxAttempts: 3, Delay: 2 * time.Second}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p RetryPolicy) sleep() {
	if p.Delay <= 0 {
		return
	}
	if p.Sleep != nil {
		p.Sleep(p.Delay)
		return
	}
	time.Sleep(p.Delay)
}
