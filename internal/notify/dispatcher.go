package notify

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultQueueSize = 64

// Dispatcher queues messages on a buffered channel and delivers them from a
// single worker goroutine. Enqueueing never blocks the caller: when the
// queue is full the message is dropped and logged, a refund stays resolved
// whether or not its email made it out.
type Dispatcher struct {
	mailer Mailer
	log    *zap.Logger
	queue  chan Message

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func NewDispatcher(mailer Mailer, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		mailer: mailer,
		log:    log,
		queue:  make(chan Message, defaultQueueSize),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for msg := range d.queue {
		if err := d.mailer.Send(msg); err != nil {
			d.log.Error("failed to deliver notification",
				zap.String("to", msg.To),
				zap.String("subject", msg.Subject),
				zap.Error(err),
			)
			continue
		}
		d.log.Info("notification delivered",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
		)
	}
}

func (d *Dispatcher) enqueue(msg Message) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		d.log.Warn("dispatcher closed, dropping message",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
		)
		return
	}

	select {
	case d.queue <- msg:
	default:
		d.log.Warn("notification queue full, dropping message",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
		)
	}
}

// Close stops accepting messages and blocks until the queued backlog is
// delivered. Messages enqueued after Close are dropped, not sent on the
// closed channel.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done
}

// RefundApproved implements the order notifier contract.
func (d *Dispatcher) RefundApproved(email string, orderID uuid.UUID, productName, note string) {
	body := fmt.Sprintf(
		"Hello,\n\nYour refund request for %q on order %s has been approved. "+
			"The amount will be returned to your original payment method within 5-10 business days.\n",
		productName, orderID,
	)
	if note != "" {
		body += fmt.Sprintf("\nNote from our team: %s\n", note)
	}
	body += "\nThank you for shopping with GreenEats.\n"

	d.enqueue(Message{
		To:      email,
		Subject: "Your refund has been approved",
		Body:    body,
	})
}

// RefundRejected implements the order notifier contract.
func (d *Dispatcher) RefundRejected(email string, orderID uuid.UUID, productName, note string) {
	body := fmt.Sprintf(
		"Hello,\n\nYour refund request for %q on order %s could not be approved.\n",
		productName, orderID,
	)
	if note != "" {
		body += fmt.Sprintf("\nReason: %s\n", note)
	}
	body += "\nIf you believe this is a mistake, reply to this email and our team will take another look.\n"

	d.enqueue(Message{
		To:      email,
		Subject: "Update on your refund request",
		Body:    body,
	})
}
