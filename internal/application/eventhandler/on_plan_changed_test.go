package eventhandler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nittany-hub/course-planner/internal/application/query"
	"github.com/nittany-hub/course-planner/internal/domain/plan"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
	"github.com/nittany-hub/course-planner/internal/domain/student"
)

type fakeCache struct {
	invalidated []shared.StudentID
	err         error
}

func (f *fakeCache) Get(ctx context.Context, studentID shared.StudentID, planID shared.PlanID) (*query.RecommendResult, error) {
	return nil, shared.ErrNotFound
}

func (f *fakeCache) Set(ctx context.Context, studentID shared.StudentID, planID shared.PlanID, result *query.RecommendResult) error {
	return nil
}

func (f *fakeCache) InvalidateStudent(ctx context.Context, studentID shared.StudentID) error {
	if f.err != nil {
		return f.err
	}
	f.invalidated = append(f.invalidated, studentID)
	return nil
}

type fakeBus struct {
	types []shared.EventType
}

func (f *fakeBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	f.types = append(f.types, eventType)
	return nil
}

func (f *fakeBus) SubscribeAll(handler shared.EventHandler) error {
	return nil
}

func TestSubscribe_RegistersEveryDecisionInput(t *testing.T) {
	bus := &fakeBus{}
	h := NewOnPlanChangedHandler(&fakeCache{}, nil)

	require.NoError(t, h.Subscribe(bus))

	assert.ElementsMatch(t, []shared.EventType{
		shared.EventCoursePlanned,
		shared.EventPlannedCourseRemove,
		shared.EventGradeRecorded,
		shared.EventGradeUpdated,
		shared.EventCompletionGone,
		shared.EventPrimaryProgramSet,
	}, bus.types)
}

func TestHandle_InvalidatesStudentFromPayload(t *testing.T) {
	cache := &fakeCache{}
	h := NewOnPlanChangedHandler(cache, nil)

	event := plan.NewCoursePlannedEvent(7, 42, 2, 2261)
	require.NoError(t, h.Handle(context.Background(), event))

	assert.Equal(t, []shared.StudentID{42}, cache.invalidated)
}

func TestHandle_FallsBackToAggregateID(t *testing.T) {
	cache := &fakeCache{}
	h := NewOnPlanChangedHandler(cache, nil)

	// Primary-program events carry the student id only as the aggregate.
	event := student.NewPrimaryProgramSetEvent(42, 3)
	require.NoError(t, h.Handle(context.Background(), event))

	assert.Equal(t, []shared.StudentID{42}, cache.invalidated)
}

func TestHandle_CacheErrorIsReturned(t *testing.T) {
	cache := &fakeCache{err: shared.ErrStoreUnavailable}
	h := NewOnPlanChangedHandler(cache, nil)

	event := plan.NewGradeRecordedEvent(42, 1, shared.GradeA)
	err := h.Handle(context.Background(), event)
	assert.ErrorIs(t, err, shared.ErrStoreUnavailable)
}
