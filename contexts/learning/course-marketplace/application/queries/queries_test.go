package queries_test

import (
	"context"
	"testing"
	"time"

	"academy/contexts/learning/course-marketplace/adapters/memory"
	"academy/contexts/learning/course-marketplace/application/ledger"
	"academy/contexts/learning/course-marketplace/application/queries"
	"academy/contexts/learning/course-marketplace/domain/entities"
	domainerrors "academy/contexts/learning/course-marketplace/domain/errors"
	"academy/contexts/learning/course-marketplace/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCourses(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()
	for _, draft := range []ports.CourseDraft{
		{Title: "Rust Basics", Instructor: "alice"},
		{Title: "Go Basics", Instructor: "bob"},
		{Title: "Advanced Rust", Instructor: "alice"},
	} {
		_, err := store.CreateCourse(ctx, draft, time.Now())
		require.NoError(t, err)
	}
	_, err := store.EnrollStudent(ctx, 1, "carol")
	require.NoError(t, err)
}

func TestListCoursesFilters(t *testing.T) {
	store := memory.NewStore(nil)
	seedCourses(t, store)
	useCase := queries.ListCoursesUseCase{Courses: store}
	ctx := context.Background()

	all, err := useCase.Execute(ctx, queries.ListCoursesQuery{})
	require.NoError(t, err)
	require.Len(t, all.Items, 3)
	assert.Equal(t, uint64(0), all.Items[0].CourseID)
	assert.Equal(t, uint64(2), all.Items[2].CourseID)

	byInstructor, err := useCase.Execute(ctx, queries.ListCoursesQuery{Instructor: "alice"})
	require.NoError(t, err)
	require.Len(t, byInstructor.Items, 2)
	assert.Equal(t, "Advanced Rust", byInstructor.Items[1].Title)

	byStudent, err := useCase.Execute(ctx, queries.ListCoursesQuery{Student: "carol"})
	require.NoError(t, err)
	require.Len(t, byStudent.Items, 1)
	assert.Equal(t, "Go Basics", byStudent.Items[0].Title)

	_, err = useCase.Execute(ctx, queries.ListCoursesQuery{Instructor: "alice", Student: "carol"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidRequest)
}

func TestGetCourseAndUserNotFound(t *testing.T) {
	store := memory.NewStore(nil)
	ctx := context.Background()

	_, err := queries.GetCourseUseCase{Courses: store}.Execute(ctx, queries.GetCourseQuery{CourseID: 7})
	assert.ErrorIs(t, err, domainerrors.ErrCourseNotFound)

	users := queries.GetUserUseCase{Users: store}
	_, err = users.Execute(ctx, queries.GetUserQuery{Identity: "nobody"})
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
	_, err = users.Execute(ctx, queries.GetUserQuery{})
	assert.ErrorIs(t, err, domainerrors.ErrMissingIdentity)
}

func TestListTransactionsOnlyReturnsCallerRows(t *testing.T) {
	store := memory.NewStore(nil)
	ctx := context.Background()
	for i, from := range []entities.Identity{"buyer", "other", "buyer"} {
		transaction, err := entities.NewPendingTransaction(
			string(rune('a'+i)), from, "instructor", 10, "memo", time.Now().Add(time.Duration(i)*time.Second),
		)
		require.NoError(t, err)
		require.NoError(t, store.CreateTransaction(ctx, transaction))
	}

	useCase := queries.ListTransactionsUseCase{Ledger: ledger.Ledger{Transactions: store}}
	result, err := useCase.Execute(ctx, queries.ListTransactionsQuery{Caller: "buyer"})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	for _, item := range result.Items {
		assert.Equal(t, entities.Identity("buyer"), item.From)
	}

	_, err = useCase.Execute(ctx, queries.ListTransactionsQuery{})
	assert.ErrorIs(t, err, domainerrors.ErrMissingIdentity)
}
