package messaging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nittany-hub/course-planner/internal/domain/plan"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
	"github.com/nittany-hub/course-planner/internal/domain/student"
)

func syncBus() *InMemoryEventBus {
	cfg := DefaultConfig()
	cfg.AsyncMode = false
	return NewInMemoryEventBus(cfg)
}

func TestPublish_DeliversToSubscribedType(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	var got []shared.EventType
	require.NoError(t, bus.Subscribe(shared.EventCoursePlanned, func(ctx context.Context, e shared.Event) error {
		got = append(got, e.EventType())
		return nil
	}))

	require.NoError(t, bus.Publish(plan.NewCoursePlannedEvent(7, 42, 2, 2261)))
	require.NoError(t, bus.Publish(student.NewSectionEnrolledEvent(42, 10)))

	assert.Equal(t, []shared.EventType{shared.EventCoursePlanned}, got)
}

func TestPublish_SubscribeAllSeesEverything(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	var count int
	require.NoError(t, bus.SubscribeAll(func(ctx context.Context, e shared.Event) error {
		count++
		return nil
	}))

	require.NoError(t, bus.Publish(plan.NewCoursePlannedEvent(7, 42, 2, 2261)))
	require.NoError(t, bus.Publish(student.NewSectionDroppedEvent(42, 10)))

	assert.Equal(t, 2, count)
}

func TestPublish_AsyncDeliversBeforeClose(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorkerPoolSize = 2
	bus := NewInMemoryEventBus(cfg)

	delivered := make(chan shared.StudentID, 2)
	require.NoError(t, bus.Subscribe(shared.EventGradeRecorded, func(ctx context.Context, e shared.Event) error {
		if v, ok := e.Payload()["student_id"].(int64); ok {
			delivered <- shared.StudentID(v)
		}
		return nil
	}))

	require.NoError(t, bus.Publish(plan.NewGradeRecordedEvent(42, 1, shared.GradeA)))
	require.NoError(t, bus.Publish(plan.NewGradeRecordedEvent(43, 1, shared.GradeB)))

	got := []shared.StudentID{<-delivered, <-delivered}
	require.NoError(t, bus.Close())

	assert.ElementsMatch(t, []shared.StudentID{42, 43}, got)
}

func TestBus_ClosedRejectsTraffic(t *testing.T) {
	bus := syncBus()
	require.NoError(t, bus.Close())

	err := bus.Publish(plan.NewCoursePlannedEvent(7, 42, 2, 2261))
	assert.ErrorIs(t, err, ErrEventBusClosed)

	err = bus.Subscribe(shared.EventCoursePlanned, func(ctx context.Context, e shared.Event) error { return nil })
	assert.ErrorIs(t, err, ErrEventBusClosed)
}

func TestBus_NilArguments(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	assert.Error(t, bus.Subscribe(shared.EventCoursePlanned, nil))
	assert.Error(t, bus.Publish(nil))
}

func TestBus_CloseIsIdempotent(t *testing.T) {
	bus := syncBus()
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())
}
