// Package notify delivers best-effort player notifications off the request path.
package notify

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"matka-bot/internal/pkg/metrics"
	"matka-bot/internal/service"
)

// Sender delivers one notification.
type Sender interface {
	Send(ctx context.Context, token, title, body string) error
}

type message struct {
	token, title, body string
}

// Dispatcher queues notifications and sends them from a fixed set of workers.
// Notify never blocks: when the queue is full the message is dropped.
type Dispatcher struct {
	sender  Sender
	queue   chan message
	workers int
	dropped atomic.Int64

	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

var _ service.Notifier = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher. Call Start before Notify.
func NewDispatcher(sender Sender, queueSize, workers int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1024
	}
	if workers <= 0 {
		workers = 1
	}
	return &Dispatcher{
		sender:  sender,
		queue:   make(chan message, queueSize),
		workers: workers,
	}
}

// Start launches the workers. They exit once Stop drains the queue.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.run(ctx)
	}
}

func (d *Dispatcher) run(ctx context.Context) {
	defer d.wg.Done()
	for m := range d.queue {
		if err := d.sender.Send(ctx, m.token, m.title, m.body); err != nil {
			log.Warn().Err(err).Str("token", m.token).Str("title", m.title).Msg("Notification failed")
		}
	}
}

// Notify enqueues a notification.
func (d *Dispatcher) Notify(token, title, body string) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	select {
	case d.queue <- message{token: token, title: title, body: body}:
	default:
		d.dropped.Add(1)
		metrics.RecordNotificationDropped()
		log.Warn().Str("token", token).Msg("Notification queue full, dropping")
	}
}

// Dropped returns how many notifications were lost to a full queue.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Stop closes the queue and waits for queued messages to be sent.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}

// TelegramSender sends notifications as private Telegram messages. The token
// is the recipient's Telegram ID.
type TelegramSender struct {
	bot *tele.Bot
}

// NewTelegramSender creates a sender on bot.
func NewTelegramSender(bot *tele.Bot) *TelegramSender {
	return &TelegramSender{bot: bot}
}

// Send delivers the message.
func (s *TelegramSender) Send(ctx context.Context, token, title, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid notification token %q: %w", token, err)
	}
	if _, err := s.bot.Send(&tele.User{ID: id}, fmt.Sprintf("🔔 %s\n\n%s", title, body)); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}
