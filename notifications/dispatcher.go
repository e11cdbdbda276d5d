package notifications

import (
	"context"
	"log"
	"sync"
	"time"
)

const sendTimeout = 10 * time.Second

// Mailer performs the actual delivery of one message.
type Mailer interface {
	SendEmail(ctx context.Context, msg Message) error
}

type Message struct {
	Recipients []string
	Subject    string
	Summary    string
	Body       string
}

// Dispatcher queues outbound email and delivers it from a background worker
// so that callers never wait on, or fail because of, delivery.
type Dispatcher struct {
	mailer Mailer
	queue  chan Message
	wg     sync.WaitGroup
	once   sync.Once
}

func NewDispatcher(mailer Mailer, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 100
	}
	return &Dispatcher{
		mailer: mailer,
		queue:  make(chan Message, queueSize),
	}
}

// Start launches the delivery worker. It drains the queue until Close is called.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for msg := range d.queue {
			d.deliver(ctx, msg)
		}
	}()
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := d.mailer.SendEmail(sendCtx, msg); err != nil {
		log.Printf("Failed to send %q email to %v: %v", msg.Subject, msg.Recipients, err)
	}
}

// Send enqueues a message. A full queue drops the message with a log line.
func (d *Dispatcher) Send(recipients []string, subject, summary, body string) {
	if len(recipients) == 0 {
		return
	}
	msg := Message{Recipients: recipients, Subject: subject, Summary: summary, Body: body}
	defer func() {
		// Send after Close must not bring the request down.
		if r := recover(); r != nil {
			log.Printf("Notification dispatcher closed, dropping %q email", subject)
		}
	}()
	select {
	case d.queue <- msg:
	default:
		log.Printf("Notification queue full, dropping %q email to %v", subject, recipients)
	}
}

// Close stops accepting messages and waits for queued ones to be delivered.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.queue) })
	d.wg.Wait()
}
