package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    "github.com/cockroachdb/errors"
    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/shyam-539/GoTicket-server/internal/model"
    "github.com/shyam-539/GoTicket-server/internal/observability"
)

// AuditRecorder stores one audit entry.  The Mongo audit repository
// satisfies it.
type AuditRecorder interface {
    Record(ctx context.Context, e model.AuditEntry) error
}

// StartBookingConsumer connects to RabbitMQ, declares the booking.confirmed
// queue (durable) and consumes it until ctx is cancelled.  Every message is
// written to the audit trail as a "booking.confirmed.consumed" entry; a nil
// recorder only logs.  Broker failures are retried with exponential backoff
// capped at 30s so the server keeps running without a broker.
func StartBookingConsumer(ctx context.Context, url string, audit AuditRecorder, log observability.Logger) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return nil
        }
        conn, err := amqp.Dial(url)
        if err != nil {
            log.WithError(err).Warnf("booking-consumer: failed to dial broker; retrying in %s", backoff)
            if !sleep(ctx, backoff) {
                return nil
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = consumeLoop(ctx, conn, audit, log)
        _ = conn.Close()
        if ctx.Err() != nil {
            return nil
        }
        log.WithError(err).Warn("booking-consumer: consume loop ended; reconnecting")
        if !sleep(ctx, 2*time.Second) {
            return nil
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, audit AuditRecorder, log observability.Logger) error {
    ch, err := conn.Channel()
    if err != nil {
        return errors.Wrap(err, "channel open")
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.WithError(err).Warn("booking-consumer: set QoS failed")
    }
    if _, err := ch.QueueDeclare(BookingConfirmedQueue, true, false, false, false, nil); err != nil {
        return errors.Wrap(err, "queue declare")
    }
    msgs, err := ch.Consume(BookingConfirmedQueue, "", false, false, false, false, nil)
    if err != nil {
        return errors.Wrap(err, "queue consume")
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := handleMessage(ctx, d.Body, audit, log); err != nil {
                log.WithError(err).Error("booking-consumer: handle message failed")
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func handleMessage(ctx context.Context, body []byte, audit AuditRecorder, log observability.Logger) error {
    var ev BookingConfirmedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return errors.Wrap(err, "unmarshal")
    }
    if ev.BookingID == 0 || ev.Reference == "" {
        return errors.New("event without booking id or reference")
    }
    log.WithFields(map[string]interface{}{
        "booking_id": ev.BookingID,
        "reference":  ev.Reference,
        "show_id":    ev.ShowID,
        "seats":      ev.SeatLabels,
        "total":      ev.TotalAmount + " " + ev.Currency,
    }).Info("booking confirmed")
    if audit == nil {
        return nil
    }
    return audit.Record(ctx, model.AuditEntry{
        Action:   "booking.confirmed.consumed",
        ActorID:  ev.UserID,
        EntityID: fmt.Sprintf("booking:%d", ev.BookingID),
        Data: map[string]interface{}{
            "reference":   ev.Reference,
            "showId":      ev.ShowID,
            "theaterId":   ev.TheaterID,
            "seats":       ev.SeatLabels,
            "totalAmount": ev.TotalAmount,
            "currency":    ev.Currency,
            "paymentId":   ev.PaymentID,
            "confirmedAt": ev.ConfirmedAt,
        },
    })
}
