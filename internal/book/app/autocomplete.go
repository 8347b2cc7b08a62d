package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"book_exchange_service/internal/book/domain"
)

// DefaultDebounce wait after the last keystroke before the provider is called
const DefaultDebounce = 300 * time.Millisecond

// Autocompleter per connection autocomplete state machine:
// idle -> debouncing -> loading -> success | error.
// Only the latest input is ever answered. error is left only through Retry.
type Autocompleter struct {
	parent   context.Context
	geo      *GeosearchUseCase
	debounce time.Duration
	emit     func(domain.AutocompleteUpdate)

	mu      sync.Mutex
	state   domain.AutocompleteState
	lastErr error
	seq     uint64
	timer   *time.Timer
	cancel  context.CancelFunc
	bias    *domain.GeoPoint
	closed  bool
}

// NewAutocompleter create Autocompleter; emit receives every state change
func NewAutocompleter(parent context.Context, geo *GeosearchUseCase, debounce time.Duration, emit func(domain.AutocompleteUpdate)) *Autocompleter {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if emit == nil {
		emit = func(domain.AutocompleteUpdate) {}
	}
	return &Autocompleter{
		parent:   parent,
		geo:      geo,
		debounce: debounce,
		emit:     emit,
		state:    domain.StateIdle,
	}
}

// State current state
func (a *Autocompleter) State() domain.AutocompleteState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// SetBias location bias for the next provider calls; nil uses the fallback
func (a *Autocompleter) SetBias(p *domain.GeoPoint) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if p == nil {
		a.bias = nil
		return
	}
	cp := *p
	a.bias = &cp
}

// Input handles one change of the text box
func (a *Autocompleter) Input(query string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	if a.state == domain.StateError {
		a.emitLocked(query, nil)
		return
	}

	a.seq++
	a.stopLocked()

	q := strings.TrimSpace(query)
	if !a.geo.LongEnough(q) {
		a.state = domain.StateIdle
		a.emitLocked(q, nil)
		return
	}

	seq := a.seq
	a.state = domain.StateDebouncing
	a.emitLocked(q, nil)
	a.timer = time.AfterFunc(a.debounce, func() { a.fire(seq, q) })
}

func (a *Autocompleter) fire(seq uint64, q string) {
	a.mu.Lock()
	if a.closed || seq != a.seq {
		a.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(a.parent)
	a.cancel = cancel
	a.state = domain.StateLoading
	a.emitLocked(q, nil)
	bias := a.bias
	a.mu.Unlock()

	res, err := a.geo.Suggest(ctx, q, bias)

	a.mu.Lock()
	defer a.mu.Unlock()
	cancel()
	// 已有較新的輸入
	if a.closed || seq != a.seq {
		return
	}
	a.cancel = nil

	if err != nil {
		a.state = domain.StateError
		a.lastErr = err
		a.emitLocked(q, nil)
		return
	}
	if res == nil {
		res = []domain.Suggestion{}
	}
	a.state = domain.StateSuccess
	a.emitLocked(q, res)
}

// Retry reloads the provider. On success the widget returns to idle.
func (a *Autocompleter) Retry(ctx context.Context) error {
	err := a.geo.Loader().Reload(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.seq++
	a.stopLocked()
	if err != nil {
		a.state = domain.StateError
		a.lastErr = err
		a.emitLocked("", nil)
		return err
	}
	a.state = domain.StateIdle
	a.lastErr = nil
	a.emitLocked("", nil)
	return nil
}

// Close stops any pending or running lookup
func (a *Autocompleter) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.seq++
	a.stopLocked()
}

func (a *Autocompleter) stopLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

func (a *Autocompleter) emitLocked(q string, suggestions []domain.Suggestion) {
	u := domain.AutocompleteUpdate{State: a.state, Query: q, Suggestions: suggestions}
	if a.state == domain.StateError && a.lastErr != nil {
		u.Error = errorMessage(a.lastErr)
	}
	a.emit(u)
}

// errorMessage user facing text of a provider error
func errorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrGeocodeTimeout):
		return domain.ErrGeocodeTimeout.Error()
	case errors.Is(err, domain.ErrProviderNotReady):
		return domain.ErrProviderNotReady.Error()
	default:
		return err.Error()
	}
}
