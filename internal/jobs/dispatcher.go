package jobs

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Channel selects the outbound transport for a message.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Message is one outbound notification. Subject is ignored by SMS senders.
type Message struct {
	Channel Channel
	To      string
	Subject string
	Body    string
}

// Sender delivers a message over one transport.
type Sender interface {
	Send(msg Message) error
}

const (
	queueSize   = 256
	maxAttempts = 3
	retryDelay  = 2 * time.Second
)

// Dispatcher is the fire-and-forget boundary between the transactional core
// and notification transports. Messages are enqueued after commit; delivery
// runs on a worker goroutine with bounded retry. Failures are logged and
// never reach the caller.
type Dispatcher struct {
	senders map[Channel]Sender
	queue   chan Message
	stop    chan struct{}
	wg      sync.WaitGroup
	log     *zap.Logger
}

// NewDispatcher creates a dispatcher over the given transports. A channel
// with no registered sender is logged and dropped, which is how the service
// runs without SMTP or Twilio configured.
func NewDispatcher(senders map[Channel]Sender, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		senders: senders,
		queue:   make(chan Message, queueSize),
		stop:    make(chan struct{}),
		log:     log,
	}
}

// Start launches the delivery worker.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.run()
	d.log.Info("notification dispatcher started")
}

// Stop drains nothing: in-flight deliveries finish, queued messages are
// dropped. Booking state never depends on delivery, so this is safe.
func (d *Dispatcher) Stop() {
	close(d.stop)
	d.wg.Wait()
	d.log.Info("notification dispatcher stopped")
}

// Enqueue hands a message to the worker without blocking the caller. A full
// queue drops the message with a log line rather than stalling a request.
func (d *Dispatcher) Enqueue(msg Message) {
	select {
	case d.queue <- msg:
	default:
		d.log.Warn("notification queue full, dropping message",
			zap.String("channel", string(msg.Channel)),
			zap.String("to", msg.To))
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case <-d.stop:
			return
		case msg := <-d.queue:
			d.deliver(msg)
		}
	}
}

func (d *Dispatcher) deliver(msg Message) {
	sender, ok := d.senders[msg.Channel]
	if !ok {
		d.log.Info("no sender configured for channel, dropping",
			zap.String("channel", string(msg.Channel)),
			zap.String("to", msg.To))
		return
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = sender.Send(msg); err == nil {
			d.log.Info("notification delivered",
				zap.String("channel", string(msg.Channel)),
				zap.String("to", msg.To),
				zap.Int("attempt", attempt))
			return
		}
		select {
		case <-d.stop:
			return
		case <-time.After(retryDelay * time.Duration(attempt)):
		}
	}

	d.log.Error("notification delivery failed, giving up",
		zap.String("channel", string(msg.Channel)),
		zap.String("to", msg.To),
		zap.Error(err))
}
