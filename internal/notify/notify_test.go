package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	_, ok := r.Last()
	assert.False(t, ok)

	r.Success("saved")
	r.Error("boom")
	r.Error("again")

	last, ok := r.Last()
	assert.True(t, ok)
	assert.Equal(t, Message{Kind: KindError, Text: "again"}, last)
	assert.Equal(t, 1, r.Count(KindSuccess))
	assert.Equal(t, 2, r.Count(KindError))
	assert.Len(t, r.Messages(), 3)
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	n.Success("ok")
	n.Error("failed")

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, "ok", entries[0].ContextMap()["message"])
	assert.Equal(t, "error", entries[1].ContextMap()["kind"])
}
