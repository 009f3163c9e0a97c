// Package events публикует доменные события автопарка для внешних потребителей
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type - тип события, он же суффикс темы
type Type string

const (
	RentalCreated         Type = "rental.created"
	RentalStarted         Type = "rental.started"
	RentalCompleted       Type = "rental.completed"
	RentalCancelled       Type = "rental.cancelled"
	VehicleStatusChanged  Type = "vehicle.status_changed"
	ProtocolCreated       Type = "protocol.created"
	ProtocolStatusChanged Type = "protocol.status_changed"
)

// Event - конверт события
type Event struct {
	ID         uuid.UUID   `json:"id"`
	Type       Type        `json:"type"`
	EntityID   uuid.UUID   `json:"entity_id"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data,omitempty"`
}

// New создает событие с новым ID и текущим временем
func New(t Type, entityID uuid.UUID, data interface{}) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// StatusChange - данные события смены статуса
type StatusChange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Publisher отправляет события
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop - публикация отключена
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

func (Noop) Close() error { return nil }

// Recorder запоминает события в памяти
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events возвращает копию записанных событий
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types возвращает типы записанных событий по порядку
func (r *Recorder) Types() []Type {
	events := r.Events()
	out := make([]Type, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}
