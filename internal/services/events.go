package services

import "github.com/google/uuid"

const (
	EventProgressUpdated = "progress_updated"
	EventProgressReset   = "progress_reset"
	EventGoalsReplaced   = "goals_replaced"
	EventWorkoutRecorded = "workout_recorded"
	EventLevelUp         = "level_up"
)

// Event is a live update delivered to the owner's connected clients.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type EventPublisher interface {
	Publish(userID uuid.UUID, event Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(uuid.UUID, Event) {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}
