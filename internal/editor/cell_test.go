package editor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xfinance-dashboard/internal/notify"
)

type saveCall struct {
	id    int64
	field string
	value string
}

type fakeSaver struct {
	calls []saveCall
	err   error
}

func (f *fakeSaver) Save(_ context.Context, id int64, field, value string) error {
	f.calls = append(f.calls, saveCall{id, field, value})
	return f.err
}

func newDateCell(kind Kind, saver *fakeSaver, rec *notify.Recorder, refreshed *int32) *Cell {
	// avoid storing a typed nil pointer in the Notifier interface
	var notifier notify.Notifier
	if rec != nil {
		notifier = rec
	}
	return NewCell(Options{
		IDPrinc:  7,
		Field:    "dt_envio",
		Kind:     kind,
		Type:     FieldDate,
		Value:    "2024-01-10",
		Save:     saver.Save,
		Notifier: notifier,
		OnSaved: func() {
			if refreshed != nil {
				atomic.AddInt32(refreshed, 1)
			}
		},
		BlurDebounce: 20 * time.Millisecond,
	})
}

func TestCell_ClickAsymmetry(t *testing.T) {
	saver := &fakeSaver{}

	alert := newDateCell(Alert, saver, nil, nil)
	assert.False(t, alert.Click())
	assert.Equal(t, Viewing, alert.State())
	assert.True(t, alert.DoubleClick())
	assert.Equal(t, Editing, alert.State())

	plain := newDateCell(Plain, saver, nil, nil)
	assert.True(t, plain.Click())
	assert.Equal(t, Editing, plain.State())
}

func TestCell_PrepopulatesDateInEditForm(t *testing.T) {
	c := newDateCell(Alert, &fakeSaver{}, nil, nil)
	c.DoubleClick()
	assert.Equal(t, "10/01/24", c.Input())

	text := NewCell(Options{IDPrinc: 1, Field: "obs", Value: "raw text"})
	text.Click()
	assert.Equal(t, "raw text", text.Input())
}

func TestCell_UnchangedValueSkipsSave(t *testing.T) {
	saver := &fakeSaver{}
	var refreshed int32
	c := newDateCell(Alert, saver, &notify.Recorder{}, &refreshed)
	c.DoubleClick()

	require.NoError(t, c.KeyDown(context.Background(), KeyEnter))
	assert.Equal(t, Viewing, c.State())
	assert.Empty(t, saver.calls)
	assert.Zero(t, atomic.LoadInt32(&refreshed))
}

func TestCell_SaveSuccess(t *testing.T) {
	saver := &fakeSaver{}
	rec := &notify.Recorder{}
	var refreshed int32
	c := newDateCell(Alert, saver, rec, &refreshed)
	c.DoubleClick()
	c.SetInput("12/01/24")

	require.NoError(t, c.Save(context.Background()))
	assert.Equal(t, Viewing, c.State())
	require.Len(t, saver.calls, 1)
	assert.Equal(t, saveCall{7, "dt_envio", "12/01/24"}, saver.calls[0])
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshed))
	assert.Equal(t, 1, rec.Count(notify.KindSuccess))
	assert.NoError(t, c.Err())
}

func TestCell_SaveFailureStaysEditing(t *testing.T) {
	saver := &fakeSaver{err: errors.New("Data inválida")}
	rec := &notify.Recorder{}
	var refreshed int32
	c := newDateCell(Alert, saver, rec, &refreshed)
	c.DoubleClick()
	c.SetInput("99/99/99")

	err := c.Save(context.Background())
	assert.Error(t, err)
	assert.Equal(t, Editing, c.State())
	assert.Equal(t, "99/99/99", c.Input())
	assert.EqualError(t, c.Err(), "Data inválida")
	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, notify.Message{Kind: notify.KindError, Text: "Data inválida"}, last)
	assert.Zero(t, atomic.LoadInt32(&refreshed))
}

func TestCell_DuplicateSaveIgnoredWhileSaving(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls int32
	c := NewCell(Options{
		IDPrinc: 3,
		Field:   "obs",
		Value:   "a",
		Save: func(ctx context.Context, id int64, field, value string) error {
			atomic.AddInt32(&calls, 1)
			close(started)
			<-release
			return nil
		},
	})
	c.Click()
	c.SetInput("b")

	done := make(chan error, 1)
	go func() { done <- c.Save(context.Background()) }()
	<-started

	assert.Equal(t, Saving, c.State())
	assert.True(t, c.Disabled())
	assert.NoError(t, c.Save(context.Background()))
	c.SetInput("ignored")
	c.Cancel()
	assert.Equal(t, Saving, c.State())

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, Viewing, c.State())
	assert.Equal(t, "b", c.Value())
}

func TestCell_EscapeCancels(t *testing.T) {
	saver := &fakeSaver{}
	c := newDateCell(Alert, saver, nil, nil)
	c.DoubleClick()
	c.SetInput("01/02/24")

	require.NoError(t, c.KeyDown(context.Background(), KeyEscape))
	assert.Equal(t, Viewing, c.State())
	assert.Empty(t, saver.calls)
	assert.Equal(t, "2024-01-10", c.Value())
}

func TestCell_BlurCancelsAfterDebounce(t *testing.T) {
	c := newDateCell(Alert, &fakeSaver{}, nil, nil)
	c.DoubleClick()
	c.SetInput("01/02/24")
	c.Blur()

	assert.Equal(t, Editing, c.State())
	assert.Eventually(t, func() bool { return c.State() == Viewing }, time.Second, 5*time.Millisecond)
}

func TestCell_SaveWithinDebounceWins(t *testing.T) {
	saver := &fakeSaver{}
	c := newDateCell(Alert, saver, nil, nil)
	c.DoubleClick()
	c.SetInput("01/02/24")
	c.Blur()

	require.NoError(t, c.Save(context.Background()))
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, saver.calls, 1)
	assert.Equal(t, Viewing, c.State())
}

func TestCell_FocusKeepsEditing(t *testing.T) {
	c := newDateCell(Alert, &fakeSaver{}, nil, nil)
	c.DoubleClick()
	c.Blur()
	c.Focus()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, Editing, c.State())
}

func TestCell_ResultDiscardedAfterClose(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var refreshed int32
	rec := &notify.Recorder{}
	c := NewCell(Options{
		IDPrinc:  3,
		Field:    "obs",
		Value:    "a",
		Notifier: rec,
		OnSaved:  func() { atomic.AddInt32(&refreshed, 1) },
		Save: func(ctx context.Context, id int64, field, value string) error {
			close(started)
			<-release
			return nil
		},
	})
	c.Click()
	c.SetInput("b")

	done := make(chan error, 1)
	go func() { done <- c.Save(context.Background()) }()
	<-started
	c.Close()
	close(release)

	assert.ErrorIs(t, <-done, ErrClosed)
	assert.Zero(t, atomic.LoadInt32(&refreshed))
	assert.Empty(t, rec.Messages())
	assert.False(t, c.DoubleClick())
}

func TestCell_MissingIDNeverSaves(t *testing.T) {
	saver := &fakeSaver{}
	c := NewCell(Options{Field: "obs", Value: "a", Save: saver.Save})
	c.Click()
	c.SetInput("b")
	require.NoError(t, c.Save(context.Background()))
	assert.Empty(t, saver.calls)
	assert.Equal(t, Editing, c.State())
}
