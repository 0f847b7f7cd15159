// Package notify turns cart additions into a transient, auto-dismissing
// toast plus a longer-lived checkout reminder, without tying the cart
// container to any rendering layer. The rendering layer observes stage
// changes and draws; all timers live here and are cancellable.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/laobservation/veggie-fruit-express-sub001/domain"
)

// Stage is where a toast is in its lifecycle.
type Stage string

const (
	StageHidden       Stage = "hidden"
	StageAppearing    Stage = "appearing"
	StageVisible      Stage = "visible"
	StageDisappearing Stage = "disappearing"
)

// Default timings, matching the storefront: a short entrance delay so the
// CSS transition has a frame to start from, four seconds on screen, and a
// brief exit animation.
const (
	DefaultAppearDelay = 50 * time.Millisecond
	DefaultAutoClose   = 4 * time.Second
	DefaultExit        = 300 * time.Millisecond
)

// Toast is one notification instance. ID changes on every Show, so a timer
// scheduled for an earlier toast can never act on a later one.
type Toast struct {
	ID       string
	Product  domain.Product
	Quantity int
}

// CartController is the slice of the cart container the presenter drives.
type CartController interface {
	// HideNotification dismisses the notification and raises the reminder.
	HideNotification()
	// Open opens the cart panel, clearing notification and reminder.
	Open()
}

// Presenter owns the toast state machine:
//
//	Hidden -> Appearing -> Visible -> Disappearing -> Hidden
//
// A new Show while a toast is anywhere in flight supersedes it immediately,
// cancelling its timers. Shutdown cancels everything on teardown.
type Presenter struct {
	cart CartController

	appearDelay time.Duration
	autoClose   time.Duration
	exit        time.Duration

	mu          sync.Mutex
	stage       Stage
	current     *Toast
	appearTimer *time.Timer
	closeTimer  *time.Timer
	exitTimer   *time.Timer
	closed      bool

	onChange func(Stage, *Toast)
}

// NewPresenter creates a presenter with the default timings.
func NewPresenter(cart CartController) *Presenter {
	return &Presenter{
		cart:        cart,
		appearDelay: DefaultAppearDelay,
		autoClose:   DefaultAutoClose,
		exit:        DefaultExit,
		stage:       StageHidden,
	}
}

// SetTimings overrides the stage durations. Call before the first Show.
func (p *Presenter) SetTimings(appearDelay, autoClose, exit time.Duration) {
	p.appearDelay = appearDelay
	p.autoClose = autoClose
	p.exit = exit
}

// SetOnChange registers the rendering hook, invoked after every stage
// transition with the new stage and the current toast (nil once hidden).
// Call before the first Show.
func (p *Presenter) SetOnChange(fn func(Stage, *Toast)) {
	p.onChange = fn
}

// Show starts a toast cycle for the given item, superseding any toast
// already in flight.
func (p *Presenter) Show(product domain.Product, quantity int) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}

	p.stopTimersLocked()
	toast := &Toast{
		ID:       uuid.New().String(),
		Product:  product,
		Quantity: quantity,
	}
	p.current = toast
	p.stage = StageAppearing
	p.appearTimer = time.AfterFunc(p.appearDelay, func() {
		p.becomeVisible(toast.ID)
	})
	p.mu.Unlock()

	p.emit(StageAppearing, toast)
}

func (p *Presenter) becomeVisible(toastID string) {
	p.mu.Lock()
	if !p.currentIs(toastID) || p.stage != StageAppearing {
		p.mu.Unlock()
		return
	}

	p.stage = StageVisible
	toast := p.current
	p.closeTimer = time.AfterFunc(p.autoClose, func() {
		p.beginDisappear(toastID)
	})
	p.mu.Unlock()

	p.emit(StageVisible, toast)
}

// Dismiss is the explicit user dismissal. It behaves like the auto-close:
// the toast disappears and the checkout reminder is raised.
func (p *Presenter) Dismiss() {
	p.mu.Lock()
	toast := p.current
	p.mu.Unlock()
	if toast == nil {
		return
	}
	p.beginDisappear(toast.ID)
}

func (p *Presenter) beginDisappear(toastID string) {
	p.mu.Lock()
	if !p.currentIs(toastID) || (p.stage != StageVisible && p.stage != StageAppearing) {
		p.mu.Unlock()
		return
	}

	p.stopTimersLocked()
	p.stage = StageDisappearing
	toast := p.current
	p.exitTimer = time.AfterFunc(p.exit, func() {
		p.finishHide(toastID)
	})
	p.mu.Unlock()

	p.emit(StageDisappearing, toast)
}

func (p *Presenter) finishHide(toastID string) {
	p.mu.Lock()
	if !p.currentIs(toastID) || p.stage != StageDisappearing {
		p.mu.Unlock()
		return
	}

	p.stage = StageHidden
	p.current = nil
	p.mu.Unlock()

	p.cart.HideNotification()
	p.emit(StageHidden, nil)
}

// ViewCart handles the user tapping the toast itself: the cart panel opens
// and the toast vanishes immediately, without raising the reminder.
func (p *Presenter) ViewCart() {
	p.mu.Lock()
	p.stopTimersLocked()
	p.stage = StageHidden
	p.current = nil
	p.mu.Unlock()

	p.cart.Open()
	p.emit(StageHidden, nil)
}

// Shutdown cancels all pending timers and hides the toast. Safe to call
// more than once. The presenter accepts no further Shows afterwards.
func (p *Presenter) Shutdown() {
	p.mu.Lock()
	p.closed = true
	p.stopTimersLocked()
	p.stage = StageHidden
	p.current = nil
	p.mu.Unlock()
}

// Stage returns the current lifecycle stage.
func (p *Presenter) Stage() Stage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stage
}

// Current returns the toast in flight, or nil.
func (p *Presenter) Current() *Toast {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// currentIs must be called with the lock held.
func (p *Presenter) currentIs(toastID string) bool {
	return p.current != nil && p.current.ID == toastID
}

// stopTimersLocked must be called with the lock held.
func (p *Presenter) stopTimersLocked() {
	for _, t := range []*time.Timer{p.appearTimer, p.closeTimer, p.exitTimer} {
		if t != nil {
			t.Stop()
		}
	}
	p.appearTimer, p.closeTimer, p.exitTimer = nil, nil, nil
}

func (p *Presenter) emit(stage Stage, toast *Toast) {
	if p.onChange != nil {
		p.onChange(stage, toast)
	}
}
