package dialog

import (
	"context"
	"errors"
	"sync"

	"github.com/fastygo/todoclient/pkg/observer"
)

// Mode selects which buttons the view shows.
type Mode string

const (
	ModeConfirm Mode = "confirm"
	ModeAlert   Mode = "alert"
)

const (
	DefaultConfirmText = "Confirm"
	DefaultCancelText  = "Cancel"
	AlertConfirmText   = "Got it"
)

// ErrSuperseded resolves a pending Confirm when another dialog replaces it.
var ErrSuperseded = errors.New("dialog superseded by a newer one")

// Options override the defaults of a single dialog.
type Options struct {
	ConfirmText string
	CancelText  string
	// HTML marks Content as markup rather than plain text.
	HTML      bool
	OnConfirm func()
	OnCancel  func()
}

// State is what a view needs to render the open dialog.
type State struct {
	Title       string
	Content     string
	HTML        bool
	ConfirmText string
	CancelText  string
	Mode        Mode
	IsOpen      bool
}

type outcome struct {
	ok  bool
	err error
}

// Coordinator holds the single dialog slot. Callers block in Confirm or Alert
// while a view renders State and answers through Close.
type Coordinator struct {
	mu        sync.Mutex
	state     State
	waiter    chan outcome
	onConfirm func()
	onCancel  func()
	changes   observer.Subject[State]
}

func New() *Coordinator {
	return &Coordinator{}
}

// State returns the current dialog.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn for every open and close.
func (c *Coordinator) Subscribe(fn func(State)) func() {
	return c.changes.Subscribe(fn)
}

// Confirm opens a two-button dialog and waits for the answer. Opening another
// dialog before this one is answered returns ErrSuperseded; ctx cancellation
// closes the dialog and returns ctx.Err().
func (c *Coordinator) Confirm(ctx context.Context, title, content string, opts Options) (bool, error) {
	return c.open(ctx, title, content, ModeConfirm, opts)
}

// Alert opens a one-button dialog. It resolves true once acknowledged.
func (c *Coordinator) Alert(ctx context.Context, title, content string, opts Options) (bool, error) {
	if opts.ConfirmText == "" {
		opts.ConfirmText = AlertConfirmText
	}
	opts.CancelText = ""
	opts.OnCancel = nil
	if _, err := c.open(ctx, title, content, ModeAlert, opts); err != nil {
		return false, err
	}
	return true, nil
}

// Close answers the open dialog. It resolves the waiting caller, runs the
// matching callback and forgets both. Closing with no dialog open is a no-op.
func (c *Coordinator) Close(result bool) {
	c.mu.Lock()
	if !c.state.IsOpen {
		c.mu.Unlock()
		return
	}
	waiter, onConfirm, onCancel := c.takeLocked()
	if c.state.Mode == ModeAlert {
		result = true
	}
	c.state.IsOpen = false
	snapshot := c.state
	c.mu.Unlock()

	if waiter != nil {
		waiter <- outcome{ok: result}
	}
	if result && onConfirm != nil {
		onConfirm()
	} else if !result && onCancel != nil {
		onCancel()
	}
	c.changes.Publish(snapshot)
}

func (c *Coordinator) open(ctx context.Context, title, content string, mode Mode, opts Options) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	confirmText := opts.ConfirmText
	if confirmText == "" {
		confirmText = DefaultConfirmText
	}
	cancelText := opts.CancelText
	if cancelText == "" && mode == ModeConfirm {
		cancelText = DefaultCancelText
	}

	waiter := make(chan outcome, 1)

	c.mu.Lock()
	prev, _, _ := c.takeLocked()
	c.state = State{
		Title:       title,
		Content:     content,
		HTML:        opts.HTML,
		ConfirmText: confirmText,
		CancelText:  cancelText,
		Mode:        mode,
		IsOpen:      true,
	}
	c.waiter = waiter
	c.onConfirm = opts.OnConfirm
	c.onCancel = opts.OnCancel
	snapshot := c.state
	c.mu.Unlock()

	if prev != nil {
		prev <- outcome{err: ErrSuperseded}
	}
	c.changes.Publish(snapshot)

	select {
	case res := <-waiter:
		return res.ok, res.err
	case <-ctx.Done():
		c.abandon(waiter)
		return false, ctx.Err()
	}
}

// abandon closes the dialog if waiter still owns it.
func (c *Coordinator) abandon(waiter chan outcome) {
	c.mu.Lock()
	if c.waiter != waiter {
		c.mu.Unlock()
		return
	}
	c.takeLocked()
	c.state.IsOpen = false
	snapshot := c.state
	c.mu.Unlock()
	c.changes.Publish(snapshot)
}

func (c *Coordinator) takeLocked() (chan outcome, func(), func()) {
	waiter, onConfirm, onCancel := c.waiter, c.onConfirm, c.onCancel
	c.waiter, c.onConfirm, c.onCancel = nil, nil, nil
	return waiter, onConfirm, onCancel
}
