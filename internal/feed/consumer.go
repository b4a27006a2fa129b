package feed

import (
    "context"
    "errors"
    "fmt"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/hotel-front-desk/internal/grid"
)

// StartConsumer connects to RabbitMQ, declares both grid queues (durable)
// and pumps decoded change events into the engine's reconciler.  It runs a
// reconnect loop with exponential backoff until the context is cancelled;
// decode failures are logged and the offending message rejected without
// requeue so the consumer keeps moving.  The feed has no further recovery
// logic of its own; a manual refetch is the correctness backstop after an
// outage.
func StartConsumer(ctx context.Context, engine *grid.Engine) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(brokerURL())
        if err != nil {
            log.Printf("feed-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            sleepCtx(ctx, backoff)
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        if err := consumeLoop(ctx, conn, engine); err != nil {
            log.Printf("feed-consumer: consume loop ended: %v; reconnecting", err)
            _ = conn.Close()
            sleepCtx(ctx, 2*time.Second)
            continue
        }
        _ = conn.Close()
        return nil
    }
}

func sleepCtx(ctx context.Context, d time.Duration) {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
    case <-t.C:
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, engine *grid.Engine) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("feed-consumer: set QoS failed: %v", err)
    }

    for _, queue := range []string{RoomsQueue, ReservationsQueue} {
        if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", queue, err)
        }
    }

    rooms, err := ch.Consume(RoomsQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("consume %s: %w", RoomsQueue, err)
    }
    reservations, err := ch.Consume(ReservationsQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("consume %s: %w", ReservationsQueue, err)
    }

    for {
        var d amqp.Delivery
        var ok bool
        select {
        case <-ctx.Done():
            return nil
        case d, ok = <-rooms:
        case d, ok = <-reservations:
        }
        if !ok {
            return errors.New("deliveries channel closed")
        }
        if err := handleDelivery(engine, d.Body); err != nil {
            log.Printf("feed-consumer: handle message failed: %v", err)
            _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
            continue
        }
        _ = d.Ack(false)
    }
}

func handleDelivery(engine *grid.Engine, body []byte) error {
    ev, err := Decode(body)
    if err != nil {
        return err
    }
    engine.HandleChange(ev)
    return nil
}
