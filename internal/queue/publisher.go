package queue

import (
    "context"
    "encoding/json"
    "time"

    "github.com/cockroachdb/errors"
    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/shyam-539/GoTicket-server/internal/observability"
)

// Publisher sends domain events to RabbitMQ.  Every call dials its own
// connection; publishing happens once per confirmed payment so the cost is
// acceptable and no connection has to be babysat between requests.
type Publisher struct {
    url string
    log observability.Logger
}

func NewPublisher(url string, log observability.Logger) *Publisher {
    return &Publisher{url: url, log: log}
}

// PublishBookingConfirmed publishes ev to the booking.confirmed queue as a
// persistent message.  Errors are logged and returned so the caller can
// choose to ignore them.
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, ev BookingConfirmedEvent) error {
    err := p.publish(ctx, BookingConfirmedQueue, ev)
    result := "ok"
    if err != nil {
        result = "error"
        p.log.WithError(err).WithField("booking_id", ev.BookingID).Warn("rabbitmq: publish booking.confirmed failed")
    }
    observability.BookingEventsPublished.WithLabelValues(result).Inc()
    return err
}

func (p *Publisher) publish(ctx context.Context, queue string, v interface{}) error {
    body, err := json.Marshal(v)
    if err != nil {
        return errors.Wrap(err, "marshal event")
    }

    conn, err := amqp.Dial(p.url)
    if err != nil {
        return errors.Wrap(err, "dial broker")
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        return errors.Wrap(err, "open channel")
    }
    defer func() { _ = ch.Close() }()

    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        queue, // name
        true,  // durable
        false, // autoDelete
        false, // exclusive
        false, // noWait
        nil,   // args
    ); err != nil {
        return errors.Wrap(err, "queue declare")
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    return errors.Wrap(ch.PublishWithContext(ctx, "", queue, false, false, pub), "publish")
}
