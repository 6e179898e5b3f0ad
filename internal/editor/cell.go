// Package editor is the per-cell edit/save/cancel state machine shared by plain and alert cells.
package editor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"xfinance-dashboard/internal/notify"
)

// Kind decides how a cell enters editing.
type Kind int

const (
	// Plain cells open on a single click.
	Plain Kind = iota
	// Alert cells open only on double click.
	Alert
)

// FieldType controls how the input is pre-populated.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldDate     FieldType = "date"
	FieldCurrency FieldType = "currency"
	FieldNumber   FieldType = "number"
)

// State of a cell.
type State int

const (
	Viewing State = iota
	Editing
	Saving
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Saving:
		return "saving"
	default:
		return "viewing"
	}
}

const (
	KeyEnter  = "Enter"
	KeyEscape = "Escape"

	DefaultBlurDebounce = 150 * time.Millisecond

	savedMessage = "Campo atualizado"
)

var ErrClosed = errors.New("editor: cell closed")

// SaveFunc persists one field. A non-nil error keeps the cell in Editing; its text is shown to the user.
type SaveFunc func(ctx context.Context, idPrinc int64, field, value string) error

// Options for NewCell.
type Options struct {
	IDPrinc      int64
	Field        string
	Kind         Kind
	Type         FieldType
	Value        string
	BlurDebounce time.Duration
	Save         SaveFunc
	// OnSaved runs after a successful save, normally a refresh of the record set.
	OnSaved  func()
	Notifier notify.Notifier
	Logger   *zap.Logger
}

// Cell one editable cell. Safe for concurrent use.
type Cell struct {
	mu sync.Mutex

	idPrinc  int64
	field    string
	kind     Kind
	ftype    FieldType
	value    string
	input    string
	initial  string
	state    State
	err      error
	closed   bool
	debounce time.Duration
	blur     *time.Timer

	save     SaveFunc
	onSaved  func()
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewCell(opts Options) *Cell {
	if opts.BlurDebounce <= 0 {
		opts.BlurDebounce = DefaultBlurDebounce
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Type == "" {
		opts.Type = FieldText
	}
	return &Cell{
		idPrinc:  opts.IDPrinc,
		field:    opts.Field,
		kind:     opts.Kind,
		ftype:    opts.Type,
		value:    opts.Value,
		debounce: opts.BlurDebounce,
		save:     opts.Save,
		onSaved:  opts.OnSaved,
		notifier: opts.Notifier,
		logger:   opts.Logger,
	}
}

// Click opens a plain cell. Reports whether the cell entered Editing.
func (c *Cell) Click() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kind != Plain {
		return false
	}
	return c.beginLocked()
}

// DoubleClick opens any cell.
func (c *Cell) DoubleClick() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.beginLocked()
}

func (c *Cell) beginLocked() bool {
	if c.closed || c.state != Viewing {
		return false
	}
	if c.ftype == FieldDate {
		c.initial = ToEditFormat(c.value)
	} else {
		c.initial = c.value
	}
	c.input = c.initial
	c.err = nil
	c.state = Editing
	return true
}

// SetInput replaces the edited text. Ignored unless Editing.
func (c *Cell) SetInput(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Editing {
		c.input = v
	}
}

// KeyDown Enter saves, Escape cancels. Other keys are ignored.
func (c *Cell) KeyDown(ctx context.Context, key string) error {
	switch key {
	case KeyEnter:
		return c.Save(ctx)
	case KeyEscape:
		c.Cancel()
	}
	return nil
}

// Save commits the input. An unchanged value returns to Viewing without calling SaveFunc;
// a save already in flight makes this a no-op.
func (c *Cell) Save(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state != Editing {
		c.mu.Unlock()
		return nil
	}
	c.stopBlurLocked()

	value := strings.TrimSpace(c.input)
	if value == strings.TrimSpace(c.initial) {
		c.state = Viewing
		c.mu.Unlock()
		return nil
	}
	if c.idPrinc == 0 || c.save == nil {
		// nothing to save against; stay editable
		c.mu.Unlock()
		return nil
	}
	c.state = Saving
	id, field, save := c.idPrinc, c.field, c.save
	c.mu.Unlock()

	err := save(ctx, id, field, value)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.logger.Debug("Discarding save result for closed cell",
			zap.Int64("id_princ", id), zap.String("field", field))
		return ErrClosed
	}
	if err != nil {
		c.state = Editing
		c.err = err
		c.mu.Unlock()
		c.logger.Warn("Cell save failed",
			zap.Int64("id_princ", id), zap.String("field", field), zap.Error(err))
		c.notifyError(err.Error())
		return err
	}
	c.state = Viewing
	c.err = nil
	c.value = value
	onSaved := c.onSaved
	c.mu.Unlock()

	if c.notifier != nil {
		c.notifier.Success(savedMessage)
	}
	if onSaved != nil {
		onSaved()
	}
	return nil
}

// Cancel drops the input and returns to Viewing. Ignored while Saving.
func (c *Cell) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
}

func (c *Cell) cancelLocked() {
	if c.state != Editing {
		return
	}
	c.stopBlurLocked()
	c.input = c.initial
	c.err = nil
	c.state = Viewing
}

// Blur cancels after the debounce unless a save started in the meantime.
func (c *Cell) Blur() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state != Editing {
		return
	}
	c.stopBlurLocked()
	c.blur = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.closed {
			c.cancelLocked()
		}
	})
}

// Focus keeps the cell open when focus returns within the debounce.
func (c *Cell) Focus() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopBlurLocked()
}

func (c *Cell) stopBlurLocked() {
	if c.blur != nil {
		c.blur.Stop()
		c.blur = nil
	}
}

// Close detaches the cell. A save still in flight may reach the server but its result is dropped.
func (c *Cell) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopBlurLocked()
	c.closed = true
}

// Reset replaces the displayed value after a refresh. Ignored unless Viewing.
func (c *Cell) Reset(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Viewing {
		c.value = value
	}
}

func (c *Cell) notifyError(msg string) {
	if c.notifier != nil {
		c.notifier.Error(msg)
	}
}

func (c *Cell) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Cell) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

func (c *Cell) Value() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Err last save error while the cell stays in Editing.
func (c *Cell) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Disabled the input is read-only while Saving.
func (c *Cell) Disabled() bool {
	return c.State() == Saving
}

func (c *Cell) IDPrinc() int64 { return c.idPrinc }

func (c *Cell) Field() string { return c.field }
