// Package feed carries the change feed: row-level change notifications the
// backing store publishes after every committed write, and the consumer that
// merges them into the grid engine.  Delivery is at-least-once over durable
// RabbitMQ queues; the engine's reconciliation rules tolerate duplicates and
// out-of-order arrival.
package feed

import (
    "encoding/json"
    "fmt"

    "github.com/iliyamo/hotel-front-desk/internal/grid"
    "github.com/iliyamo/hotel-front-desk/internal/model"
)

const (
    // RoomsQueue and ReservationsQueue are the durable queues the store
    // publishes to, keyed by entity type.
    RoomsQueue        = "grid.rooms"
    ReservationsQueue = "grid.reservations"
)

// ChangeMessage is the wire envelope of one change notification.  Old and
// New hold the row image before and after the operation; INSERT carries only
// New, DELETE only Old.  Processing keys off payload content, so consumers
// never trust the envelope beyond routing.
type ChangeMessage struct {
    Entity string          `json:"entity_type"`
    Type   string          `json:"event_type"`
    Old    json.RawMessage `json:"old,omitempty"`
    New    json.RawMessage `json:"new,omitempty"`
}

// Decode converts a wire message into the engine's tagged ChangeEvent.
// Unrecognized entity types are an error; the consumer rejects those
// messages rather than best-guessing field names.
func Decode(body []byte) (grid.ChangeEvent, error) {
    var msg ChangeMessage
    if err := json.Unmarshal(body, &msg); err != nil {
        return grid.ChangeEvent{}, fmt.Errorf("unmarshal change message: %w", err)
    }
    ev := grid.ChangeEvent{
        Entity: grid.EntityType(msg.Entity),
        Type:   grid.EventType(msg.Type),
    }
    payload := msg.New
    if len(payload) == 0 {
        payload = msg.Old
    }
    switch ev.Entity {
    case grid.EntityRooms:
        if len(payload) > 0 {
            var room grid.RoomChange
            if err := json.Unmarshal(payload, &room); err != nil {
                return grid.ChangeEvent{}, fmt.Errorf("unmarshal room payload: %w", err)
            }
            ev.Room = &room
        }
    case grid.EntityReservations:
        if len(payload) > 0 {
            var res model.Reservation
            if err := json.Unmarshal(payload, &res); err != nil {
                return grid.ChangeEvent{}, fmt.Errorf("unmarshal reservation payload: %w", err)
            }
            ev.Reservation = &res
        }
    default:
        return grid.ChangeEvent{}, fmt.Errorf("unknown entity type %q", msg.Entity)
    }
    return ev, nil
}

// EncodeRoom builds the wire message for a room change.
func EncodeRoom(eventType grid.EventType, old, new *grid.RoomChange) (ChangeMessage, error) {
    msg := ChangeMessage{Entity: string(grid.EntityRooms), Type: string(eventType)}
    if err := attach(&msg, old, new); err != nil {
        return ChangeMessage{}, err
    }
    return msg, nil
}

// EncodeReservation builds the wire message for a reservation change.
func EncodeReservation(eventType grid.EventType, old, new *model.Reservation) (ChangeMessage, error) {
    msg := ChangeMessage{Entity: string(grid.EntityReservations), Type: string(eventType)}
    if err := attach(&msg, old, new); err != nil {
        return ChangeMessage{}, err
    }
    return msg, nil
}

func attach(msg *ChangeMessage, old, new interface{}) error {
    if old != nil && !isNilPtr(old) {
        b, err := json.Marshal(old)
        if err != nil {
            return fmt.Errorf("marshal old payload: %w", err)
        }
        msg.Old = b
    }
    if new != nil && !isNilPtr(new) {
        b, err := json.Marshal(new)
        if err != nil {
            return fmt.Errorf("marshal new payload: %w", err)
        }
        msg.New = b
    }
    return nil
}

func isNilPtr(v interface{}) bool {
    switch p := v.(type) {
    case *grid.RoomChange:
        return p == nil
    case *model.Reservation:
        return p == nil
    }
    return false
}
