// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"context"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Plan and transcript events exist so caches derived
// from a student's state (recommendation results) can be invalidated.
const (
	// Plan events
	EventCoursePlanned       EventType = "plan.course_planned"
	EventPlannedCourseRemove EventType = "plan.course_removed"
	EventPlanCreated         EventType = "plan.created"

	// Transcript events
	EventGradeRecorded  EventType = "transcript.grade_recorded"
	EventGradeUpdated   EventType = "transcript.grade_updated"
	EventCompletionGone EventType = "transcript.completion_removed"

	// Student events
	EventPrimaryProgramSet EventType = "student.primary_program_set"
	EventSectionEnrolled   EventType = "student.section_enrolled"
	EventSectionDropped    EventType = "student.section_dropped"

	// System events
	EventCatalogImported EventType = "system.catalog_imported"
	EventRulesReloaded   EventType = "system.rules_reloaded"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// EventHandler processes a published domain event.
type EventHandler func(ctx context.Context, event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
	Version     int       `json:"version"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event. The event ID is assigned by the
// publishing side (see plan.NewCoursePlannedEvent).
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
		Version:     1,
	}
}
