package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/notification"
	"storefront/internal/core/ports"
)

// DefaultSendTimeout bounds a single transport attempt.
const DefaultSendTimeout = 10 * time.Second

// Event is one customer-facing occurrence to fan out. The dispatcher decides
// the channels from the recipient's contact details: email always, SMS when a
// phone number is present, chat when a chat handle is present.
type Event struct {
	Type      notification.EventType
	OrderID   *kernel.UUID
	Recipient ports.Customer
	Params    map[string]string
}

// RecordUoW is the transaction scope the dispatcher persists audit records in.
type RecordUoW interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	NotificationRepository() ports.NotificationRepository
}

// RecordUoWFactory creates record transaction scopes.
type RecordUoWFactory interface {
	Create() RecordUoW
}

// Dispatcher fans events out to notification transports. Each channel gets
// its own audit record, persisted Pending before the transport is called, and
// each send runs on its own goroutine so a slow provider on one channel never
// delays another. Dispatch itself never returns an error: a failed send is an
// audit fact, not a failure of the operation that triggered it.
type Dispatcher struct {
	uowFactory  RecordUoWFactory
	senders     map[notification.Channel]ports.MessageSender
	sendTimeout time.Duration
	logger      *slog.Logger

	wg sync.WaitGroup
}

// NewDispatcher creates a dispatcher over the given per-channel transports.
// A zero sendTimeout falls back to DefaultSendTimeout.
func NewDispatcher(
	uowFactory RecordUoWFactory,
	senders map[notification.Channel]ports.MessageSender,
	sendTimeout time.Duration,
	logger *slog.Logger,
) *Dispatcher {
	if sendTimeout <= 0 {
		sendTimeout = DefaultSendTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		uowFactory:  uowFactory,
		senders:     senders,
		sendTimeout: sendTimeout,
		logger:      logger.With("component", "notification_dispatcher"),
	}
}

// Dispatch fans one event out to every reachable channel. Exactly one record
// per channel is created per call; duplicate suppression for repeated domain
// events is the caller's concern (an accepted transition dispatches once).
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) {
	now := time.Now()

	for _, target := range d.targets(event.Recipient) {
		subject, body := renderMessage(event, target.channel)

		record, err := notification.NewRecord(
			kernel.NewUUID(), event.OrderID, event.Type, target.channel,
			target.recipient, subject, body, now,
		)
		if err != nil {
			d.logger.Error("failed to build notification record",
				"event_type", event.Type, "channel", target.channel, "error", err)
			continue
		}

		if err = d.persistNew(ctx, record); err != nil {
			d.logger.Error("failed to persist notification record",
				"record_id", record.ID().String(), "error", err)
			continue
		}

		d.spawn(ctx, record)
	}
}

// Redeliver re-attempts an already persisted record, used by the explicit
// resend operation after the record was reset to Pending.
func (d *Dispatcher) Redeliver(ctx context.Context, record *notification.Record) {
	d.spawn(ctx, record)
}

// Wait blocks until all in-flight sends have completed. Used on shutdown and
// in tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

type channelTarget struct {
	channel   notification.Channel
	recipient string
}

// targets selects the channels a recipient can be reached on. Email is always
// attempted; SMS only with a phone number; chat only with a chat handle.
func (d *Dispatcher) targets(recipient ports.Customer) []channelTarget {
	var targets []channelTarget

	if _, ok := d.senders[notification.ChannelEmail]; ok && recipient.Email != "" {
		targets = append(targets, channelTarget{notification.ChannelEmail, recipient.Email})
	}
	if _, ok := d.senders[notification.ChannelSMS]; ok && recipient.Phone != "" {
		targets = append(targets, channelTarget{notification.ChannelSMS, recipient.Phone})
	}
	if _, ok := d.senders[notification.ChannelChat]; ok && recipient.ChatHandle != "" {
		targets = append(targets, channelTarget{notification.ChannelChat, recipient.ChatHandle})
	}

	return targets
}

// spawn runs one send attempt on its own goroutine. The attempt is detached
// from the triggering request's cancellation; only the send timeout bounds it.
func (d *Dispatcher) spawn(ctx context.Context, record *notification.Record) {
	detached := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.attempt(detached, record)
	}()
}

func (d *Dispatcher) attempt(ctx context.Context, record *notification.Record) {
	sender, ok := d.senders[record.Channel()]
	if !ok {
		d.logger.Error("no transport configured for channel", "channel", record.Channel())
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	record.BeginAttempt(time.Now())
	result, sendErr := sender.Send(sendCtx, record.Recipient(), record.Subject(), record.Body())

	now := time.Now()
	if sendErr != nil {
		record.MarkFailed(sendErr, now)
		d.logger.Warn("notification send failed",
			"record_id", record.ID().String(), "channel", record.Channel(), "error", sendErr)
	} else {
		record.MarkSent(result.ProviderID, now)
	}

	if err := d.persistUpdate(ctx, record); err != nil {
		d.logger.Error("failed to persist notification outcome",
			"record_id", record.ID().String(), "error", err)
	}
}

func (d *Dispatcher) persistNew(ctx context.Context, record *notification.Record) error {
	return d.inTx(ctx, func(repo ports.NotificationRepository) error {
		return repo.Add(ctx, record)
	})
}

func (d *Dispatcher) persistUpdate(ctx context.Context, record *notification.Record) error {
	return d.inTx(ctx, func(repo ports.NotificationRepository) error {
		return repo.Update(ctx, record)
	})
}

func (d *Dispatcher) inTx(ctx context.Context, op func(ports.NotificationRepository) error) error {
	uow := d.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := op(uow.NotificationRepository()); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
