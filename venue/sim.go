package venue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"autotrader/market"
)

// SimTerminal is an in-memory Terminal used by tests and the demo command.
// It fills accepted market orders instantly and keeps positions in memory.
type SimTerminal struct {
	mu sync.Mutex

	// FailConnects makes the first n Initialize calls fail with InitErr,
	// to exercise the retry path.
	FailConnects int
	InitErr      error

	// CheckRetcode and SendRetcode override the result codes; 0 means
	// RetDone.
	CheckRetcode int
	SendRetcode  int

	account    AccountSnapshot
	symbols    map[string]market.SymbolSpec
	ticks      map[string]market.Tick
	positions  []Position
	nextTicket int64
	nextOrder  int64
	open       bool
}

func NewSimTerminal(account AccountSnapshot) *SimTerminal {
	return &SimTerminal{
		account:    account,
		symbols:    make(map[string]market.SymbolSpec),
		ticks:      make(map[string]market.Tick),
		nextTicket: 1000,
		nextOrder:  5000,
	}
}

// SetSymbol registers symbol metadata.
func (s *SimTerminal) SetSymbol(spec market.SymbolSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.symbols[spec.Name] = spec
}

// SetTick publishes a quote.
func (s *SimTerminal) SetTick(t market.Tick) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Time.IsZero() {
		t.Time = time.Now().UTC()
	}
	s.ticks[t.Symbol] = t
}

// DropTick removes a quote so lookups fail, simulating a stale symbol.
func (s *SimTerminal) DropTick(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ticks, symbol)
}

// AddPosition seeds an open position directly, bypassing order flow.
func (s *SimTerminal) AddPosition(p Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Ticket == 0 {
		s.nextTicket++
		p.Ticket = s.nextTicket
	}
	s.positions = append(s.positions, p)
}

func (s *SimTerminal) Initialize(ctx context.Context, creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailConnects > 0 {
		s.FailConnects--
		if s.InitErr != nil {
			return s.InitErr
		}
		return errors.New("connection refused by trade server")
	}
	s.open = true
	return nil
}

func (s *SimTerminal) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	return nil
}

func (s *SimTerminal) AccountInfo(ctx context.Context) (AccountSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return AccountSnapshot{}, errors.New("no connection")
	}
	return s.account, nil
}

func (s *SimTerminal) SymbolInfo(ctx context.Context, symbol string) (market.SymbolSpec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	spec, ok := s.symbols[symbol]
	if !ok {
		return market.SymbolSpec{}, fmt.Errorf("unknown symbol %s", symbol)
	}
	return spec, nil
}

func (s *SimTerminal) Tick(ctx context.Context, symbol string) (market.Tick, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.ticks[symbol]
	if !ok {
		return market.Tick{}, fmt.Errorf("no tick for %s", symbol)
	}
	return t, nil
}

func (s *SimTerminal) OrderCheck(ctx context.Context, req OrderRequest) (OrderResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := s.CheckRetcode
	if code == 0 {
		code = RetDone
	}
	return OrderResult{Retcode: code, Comment: RetcodeText(code)}, nil
}

func (s *SimTerminal) OrderSend(ctx context.Context, req OrderRequest) (OrderResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := s.SendRetcode
	if code == 0 {
		code = RetDone
	}
	res := OrderResult{Retcode: code, Price: req.Price, Comment: RetcodeText(code)}
	if code != RetDone && code != RetPlaced {
		return res, nil
	}

	s.nextOrder++
	res.OrderID = s.nextOrder
	res.DealID = s.nextOrder

	if req.Position != 0 {
		// Closing order: drop the referenced position.
		for i, p := range s.positions {
			if p.Ticket == req.Position {
				s.positions = append(s.positions[:i], s.positions[i+1:]...)
				break
			}
		}
		return res, nil
	}

	s.nextTicket++
	s.positions = append(s.positions, Position{
		Ticket:    s.nextTicket,
		Symbol:    req.Symbol,
		Direction: req.Direction,
		Volume:    req.Volume,
		OpenPrice: req.Price,
		Magic:     req.Magic,
	})
	return res, nil
}

func (s *SimTerminal) Positions(ctx context.Context, symbol string, magic int64) ([]Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Position
	for _, p := range s.positions {
		if symbol != "" && p.Symbol != symbol {
			continue
		}
		if magic != 0 && p.Magic != magic {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
