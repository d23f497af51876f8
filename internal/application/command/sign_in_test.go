package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nittany-hub/course-planner/internal/domain/plan"
	"github.com/nittany-hub/course-planner/internal/domain/program"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
	"github.com/nittany-hub/course-planner/internal/domain/student"
)

func TestSignIn_ExistingStudentResolves(t *testing.T) {
	students := newFakeStudentRepo()
	students.add(&student.Student{ID: 42, LoginID: "abc5123"})
	plans := newFakePlanRepo()
	plans.plans[7] = &plan.DegreePlan{ID: 7, StudentID: 42}
	h := NewSignInHandler(students, plans, nil)

	result, err := h.Handle(context.Background(), SignInCommand{Login: "abc5123"})
	require.NoError(t, err)

	assert.False(t, result.Created)
	assert.Equal(t, shared.StudentID(42), result.Student.ID)
	assert.Equal(t, shared.PlanID(7), result.Plan.ID)
}

func TestSignIn_FirstContactBootstraps(t *testing.T) {
	students := newFakeStudentRepo()
	plans := newFakePlanRepo()
	h := NewSignInHandler(students, plans, nil)

	result, err := h.Handle(context.Background(), SignInCommand{
		Login: "xyz999", FirstName: "Jo", LastName: "Okafor", Email: "xyz999@example.edu",
	})
	require.NoError(t, err)

	assert.True(t, result.Created)
	assert.True(t, result.Student.ID.IsValid())
	assert.True(t, result.Plan.ID.IsValid())
	assert.Equal(t, result.Student.ID, result.Plan.StudentID)
}

func TestSignIn_LoginIsNormalized(t *testing.T) {
	students := newFakeStudentRepo()
	students.add(&student.Student{ID: 42, LoginID: "abc5123"})
	plans := newFakePlanRepo()
	h := NewSignInHandler(students, plans, nil)

	result, err := h.Handle(context.Background(), SignInCommand{Login: "  ABC5123  "})
	require.NoError(t, err)

	assert.False(t, result.Created)
	assert.Equal(t, shared.StudentID(42), result.Student.ID)
}

func TestSignIn_MalformedLogin(t *testing.T) {
	h := NewSignInHandler(newFakeStudentRepo(), newFakePlanRepo(), nil)

	_, err := h.Handle(context.Background(), SignInCommand{Login: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestSetPrimaryProgram_Declares(t *testing.T) {
	students := newFakeStudentRepo()
	students.add(&student.Student{ID: 42, LoginID: "abc5123"})
	programs := newFakeProgramRepo()
	programs.programs[3] = &program.Program{ID: 3, Name: "Computer Science", Type: program.TypeMajor}
	pub := &fakePublisher{}
	h := NewSetPrimaryProgramHandler(programs, students, pub, nil)

	result, err := h.Handle(context.Background(), SetPrimaryProgramCommand{StudentID: 42, ProgramID: 3})
	require.NoError(t, err)

	assert.Equal(t, "Computer Science", result.ProgramName)
	assert.Equal(t, shared.ProgramID(3), programs.primary[42])
	assert.Equal(t, []shared.EventType{shared.EventPrimaryProgramSet}, pub.types())
}

func TestSetPrimaryProgram_UnknownStudent(t *testing.T) {
	programs := newFakeProgramRepo()
	programs.programs[3] = &program.Program{ID: 3, Name: "Computer Science", Type: program.TypeMajor}
	h := NewSetPrimaryProgramHandler(programs, newFakeStudentRepo(), nil, nil)

	_, err := h.Handle(context.Background(), SetPrimaryProgramCommand{StudentID: 42, ProgramID: 3})
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
	assert.Empty(t, programs.primary)
}

func TestSetPrimaryProgram_UnknownProgram(t *testing.T) {
	students := newFakeStudentRepo()
	students.add(&student.Student{ID: 42, LoginID: "abc5123"})
	h := NewSetPrimaryProgramHandler(newFakeProgramRepo(), students, nil, nil)

	_, err := h.Handle(context.Background(), SetPrimaryProgramCommand{StudentID: 42, ProgramID: 3})
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
}
