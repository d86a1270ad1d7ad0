package notify

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (f *fakeMailer) Send(msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) messages() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Message(nil), f.sent...)
}

func TestDispatcher_DeliversQueuedMessages(t *testing.T) {
	mailer := &fakeMailer{}
	d := NewDispatcher(mailer, zap.NewNop())

	orderID := uuid.New()
	d.RefundApproved("jo@example.com", orderID, "Oat Milk", "enjoy")
	d.RefundRejected("jo@example.com", orderID, "Tofu", "")
	d.Close()

	msgs := mailer.messages()
	require.Len(t, msgs, 2)

	assert.Equal(t, "jo@example.com", msgs[0].To)
	assert.Equal(t, "Your refund has been approved", msgs[0].Subject)
	assert.Contains(t, msgs[0].Body, `"Oat Milk"`)
	assert.Contains(t, msgs[0].Body, orderID.String())
	assert.Contains(t, msgs[0].Body, "enjoy")

	assert.Equal(t, "Update on your refund request", msgs[1].Subject)
	assert.NotContains(t, msgs[1].Body, "Reason:")
}

func TestDispatcher_DeliveryFailureIsLoggedNotFatal(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	mailer := &fakeMailer{err: errors.New("smtp unreachable")}
	d := NewDispatcher(mailer, zap.New(core))

	d.RefundApproved("jo@example.com", uuid.New(), "Oat Milk", "")
	d.Close()

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "failed to deliver notification", logs.All()[0].Message)
}

func TestDispatcher_CloseIsIdempotent(t *testing.T) {
	d := NewDispatcher(&fakeMailer{}, zap.NewNop())
	d.Close()
	assert.NotPanics(t, d.Close)
}

func TestDispatcher_EnqueueAfterCloseDropsMessage(t *testing.T) {
	mailer := &fakeMailer{}
	core, logs := observer.New(zap.WarnLevel)
	d := NewDispatcher(mailer, zap.New(core))
	d.Close()

	assert.NotPanics(t, func() {
		d.RefundApproved("jo@example.com", uuid.New(), "Oat Milk", "")
	})
	assert.Empty(t, mailer.messages())

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "dispatcher closed, dropping message", logs.All()[0].Message)
}
