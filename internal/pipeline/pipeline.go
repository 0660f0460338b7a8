// Package pipeline turns bursts of adjustment changes into one recomputed
// history entry per settled gesture.
package pipeline

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"imgedit/internal/debounce"
	"imgedit/internal/filters"
	"imgedit/internal/history"
	imgutil "imgedit/internal/image"
	"imgedit/internal/logging"
	"imgedit/internal/selection"
)

// DefaultDelay is the idle time after the last change before recomputing.
const DefaultDelay = 500 * time.Millisecond

// Store is the part of the history store the pipeline uses.
type Store interface {
	LatestExcludingKind(kinds ...history.ChangeKind) *image.NRGBA
	Commit(e history.Entry) error
}

// SelectionSource provides the selection a recompute is scoped to.
type SelectionSource interface {
	Selection() selection.Region
}

// change is the last (label, value, control) triple received.
type change struct {
	label   string
	value   float64
	control Control
}

// Pipeline recomputes the adjusted image on a debounce timer. Recomputes run
// off the caller's goroutine, one at a time; a change arriving while one is
// in flight cancels it and its result is never committed.
type Pipeline struct {
	store     Store
	selection SelectionSource
	sink      ParameterSink
	debouncer *debounce.Debouncer

	mu       sync.Mutex
	settings Settings
	last     change
	gen      uint64
	cancel   context.CancelFunc

	onCommitted func(history.Entry)
	onError     func(error)
}

// New creates a pipeline committing to store. sel and sink may be nil.
func New(store Store, sel SelectionSource, sink ParameterSink, delay time.Duration) *Pipeline {
	if delay <= 0 {
		delay = DefaultDelay
	}
	p := &Pipeline{
		store:     store,
		selection: sel,
		sink:      sink,
		settings:  NeutralSettings(),
	}
	p.debouncer = debounce.New(delay, p.recompute)
	return p
}

// SetDelay changes the debounce window for later changes.
func (p *Pipeline) SetDelay(delay time.Duration) {
	if delay <= 0 {
		delay = DefaultDelay
	}
	p.debouncer.SetDelay(delay)
}

// SetSink replaces the host controls the pipeline pushes values into.
func (p *Pipeline) SetSink(sink ParameterSink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sink = sink
}

// OnCommitted sets a callback run after each slider entry is committed. It
// runs on the recompute goroutine.
func (p *Pipeline) OnCommitted(fn func(history.Entry)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onCommitted = fn
}

// OnError sets a callback for recompute failures other than cancellation.
func (p *Pipeline) OnError(fn func(error)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onError = fn
}

// Settings returns the current control values.
func (p *Pipeline) Settings() Settings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settings
}

// Pending reports whether a recompute is scheduled.
func (p *Pipeline) Pending() bool {
	return p.debouncer.IsPending()
}

// OnParameterChanged records a control change and restarts the debounce
// window. Any recompute already running is cancelled.
func (p *Pipeline) OnParameterChanged(label string, value float64, control Control) {
	p.mu.Lock()
	p.settings = p.settings.With(control, value)
	p.last = change{label: label, value: p.settings.Get(control), control: control}
	p.invalidateLocked()
	p.mu.Unlock()

	p.debouncer.Call()
}

// Flush runs a pending recompute now, on the caller's goroutine, or waits
// for the one already running. Callers must not hold locks the recompute
// takes (the selection source's).
func (p *Pipeline) Flush() {
	p.debouncer.CallImmediate()
}

// Cancel drops any pending or running recompute without committing.
func (p *Pipeline) Cancel() {
	p.debouncer.Cancel()
	p.mu.Lock()
	p.invalidateLocked()
	p.mu.Unlock()
}

// Reset returns every control to neutral and pushes the values to the sink.
func (p *Pipeline) Reset() {
	p.Cancel()
	p.apply(NeutralSettings())
}

// Resync rolls the controls back after an undo.
func (p *Pipeline) Resync(res history.UndoResult) {
	if !res.RestoreSettings {
		return
	}
	s, ok := res.Settings.(Settings)
	if !ok {
		s = NeutralSettings()
	}
	p.apply(s)
}

func (p *Pipeline) apply(s Settings) {
	p.mu.Lock()
	p.settings = s
	sink := p.sink
	p.mu.Unlock()
	PushSettings(sink, s)
}

// invalidateLocked bumps the generation and cancels the running recompute.
func (p *Pipeline) invalidateLocked() {
	p.gen++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// recompute is the debounce callback. The debouncer never runs it
// concurrently with itself.
func (p *Pipeline) recompute() {
	log := logging.Logger()

	p.mu.Lock()
	gen := p.gen
	settings := p.settings
	last := p.last
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.mu.Unlock()
	defer cancel()

	base := p.store.LatestExcludingKind(history.SliderAdjustment, history.PathSelectionStep)
	if base == nil {
		return
	}
	var region selection.Region
	if p.selection != nil {
		region = p.selection.Selection()
	}

	start := time.Now()
	out, err := applyScoped(ctx, base, region, settings.Params())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Debug("recompute cancelled", "control", last.control)
			return
		}
		p.mu.Lock()
		onError := p.onError
		p.mu.Unlock()
		log.Error("recompute failed", "error", err)
		if onError != nil {
			onError(err)
		}
		return
	}

	entry := history.Entry{
		Note:    last.label,
		Image:   out,
		Kind:    history.SliderAdjustment,
		Value:   history.Float(last.value),
		Control: last.control.String(),
		Payload: settings,
	}

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		log.Debug("discarding stale recompute", "generation", gen)
		return
	}
	err = p.store.Commit(entry)
	onCommitted := p.onCommitted
	p.mu.Unlock()

	if err != nil {
		log.Error("failed to commit adjustment", "error", err)
		return
	}
	log.Debug("adjustment committed", "note", entry.Note, "value", last.value, "took", time.Since(start))
	if onCommitted != nil {
		onCommitted(entry)
	}
}

// applyScoped runs the filter chain over the selected part of base and
// pastes the result into a copy of base. A selection outside the canvas
// leaves base unchanged.
func applyScoped(ctx context.Context, base *image.NRGBA, region selection.Region, params filters.Params) (*image.NRGBA, error) {
	if !region.Active() {
		return filters.Apply(ctx, base, params)
	}
	area, mask, ok := region.Scope(base.Bounds())
	if !ok {
		return imgutil.Clone(base), nil
	}
	out, err := filters.Apply(ctx, imgutil.Extract(base, area), params)
	if err != nil {
		return nil, err
	}
	result := imgutil.Clone(base)
	imgutil.Paste(result, out, area.Min, mask)
	return result, nil
}
