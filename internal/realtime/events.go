package realtime

import (
	"context"
	"encoding/json"
)

const (
	EventStockUpdate = "stock_update"
	EventChatMessage = "chat_message"
)

// Event is the envelope of every websocket frame, in both directions.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

type StockUpdate struct {
	ProductID int64 `json:"productId"`
	Stock     int   `json:"stock"`
}

type ChatMessage struct {
	Message string `json:"message"`
}

func NewEvent(name string, payload interface{}) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Name: name, Data: data}, nil
}

// Broadcaster pushes an event to every connected listener. Delivery is
// at-most-once and never reports failure to the caller.
type Broadcaster interface {
	Broadcast(ctx context.Context, ev Event)
}
