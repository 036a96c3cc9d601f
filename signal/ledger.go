package signal

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Ledger holds the merged view of persisted and freshly generated signals
// and records each signal's outcome after the pipeline runs.
type Ledger struct {
	mu      sync.Mutex
	signals []Signal
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Merge combines persisted and fresh signals: drops rows without a time or
// symbol, normalizes confidence, sorts by (time desc, confidence desc) and
// dedupes on (time, symbol) keeping the first row — the highest-confidence
// entry at that timestamp. The sort is stable so the tie-break is
// reproducible. Idempotent: merging an already-merged set changes nothing.
func Merge(persisted, fresh []Signal) []Signal {
	combined := make([]Signal, 0, len(persisted)+len(fresh))
	for _, s := range append(append([]Signal{}, persisted...), fresh...) {
		if s.Time.IsZero() || s.Symbol == "" {
			continue
		}
		s.Time = s.Time.UTC()
		if math.IsNaN(s.Confidence) {
			s.Confidence = 0
		}
		combined = append(combined, s)
	}

	sort.SliceStable(combined, func(i, j int) bool {
		if !combined[i].Time.Equal(combined[j].Time) {
			return combined[i].Time.After(combined[j].Time)
		}
		return combined[i].Confidence > combined[j].Confidence
	})

	seen := make(map[Key]bool, len(combined))
	out := combined[:0]
	for _, s := range combined {
		k := s.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}

// Merge folds fresh signals into the ledger, keeping existing rows (and
// their executed/note state) ahead of new duplicates.
func (l *Ledger) Merge(fresh []Signal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.signals = Merge(l.signals, fresh)
}

// All returns a copy of the current signals, newest first.
func (l *Ledger) All() []Signal {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Signal, len(l.signals))
	copy(out, l.signals)
	return out
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.signals)
}

// Mark sets the outcome on the signal matching (t, symbol). A missing match
// is silently accepted: the signal may have been pruned or originated
// outside the ledger.
func (l *Ledger) Mark(t time.Time, symbol string, executed bool, note string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := Key{Unix: t.UTC().Unix(), Symbol: symbol}
	for i := range l.signals {
		if l.signals[i].Key() == k {
			l.signals[i].Executed = executed
			l.signals[i].Note = note
		}
	}
}
