package mqtt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type rawMessage struct {
	topic   string
	qos     byte
	payload []byte
}

type fakeRaw struct {
	sent []rawMessage
	err  error
}

func (f *fakeRaw) Publish(topic string, qos byte, _ bool, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, rawMessage{topic, qos, payload})
	return nil
}

func TestEventPublisher_RoundTrip(t *testing.T) {
	raw := &fakeRaw{}
	p := NewEventPublisher(raw, "xfinance/inspections", 1, zap.NewNop())
	at := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	require.NoError(t, p.Publish(context.Background(), Event{Type: EventMarked, IDsPrinc: []int64{4}, UserID: 2, At: at}))
	require.Len(t, raw.sent, 1)
	assert.Equal(t, "xfinance/inspections", raw.sent[0].topic)
	assert.Equal(t, byte(1), raw.sent[0].qos)

	e, err := DecodeEvent(raw.sent[0].payload)
	require.NoError(t, err)
	assert.Equal(t, EventMarked, e.Type)
	assert.Equal(t, []int64{4}, e.IDsPrinc)
	assert.True(t, at.Equal(e.At))
}

func TestEventPublisher_BrokerError(t *testing.T) {
	p := NewEventPublisher(&fakeRaw{err: errors.New("not connected")}, "t", 0, zap.NewNop())
	assert.Error(t, p.Publish(context.Background(), Event{Type: EventDeleted}))
}

func TestDecodeEvent_Invalid(t *testing.T) {
	_, err := DecodeEvent([]byte("nope"))
	assert.Error(t, err)
	_, err = DecodeEvent([]byte(`{"ids_princ":[1]}`))
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), Event{Type: EventUpdated}))
}
