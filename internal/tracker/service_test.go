package tracker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/tgienger/tasktracker/internal/db"
	"github.com/tgienger/tasktracker/internal/errs"
	"github.com/tgienger/tasktracker/internal/models"
)

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.Local)

func newService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "tasks.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewService(database, zaptest.NewLogger(t), opts...)
}

func mustCreate(t *testing.T, svc *Service, in models.TaskInput) *models.Task {
	t.Helper()
	task, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	return task
}

func titles(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestCreate_Defaults(t *testing.T) {
	svc := newService(t)

	task := mustCreate(t, svc, models.TaskInput{Title: "  buy milk  "})

	assert.Equal(t, "buy milk", task.Title)
	assert.Equal(t, models.StatusPending, task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, "2026-10-19", task.DueDate.String())
}

func TestCreate_EmptyTitle(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := svc.Create(ctx, models.TaskInput{Title: title})
		assert.ErrorIs(t, err, errs.ErrValidation)
	}

	tasks, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCreate_InvalidEnums(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, models.TaskInput{Title: "a", Priority: "Urgent"})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = svc.Create(ctx, models.TaskInput{Title: "a", Status: "Done"})
	assert.ErrorIs(t, err, errs.ErrValidation)

	task, err := svc.Create(ctx, models.TaskInput{Title: "a", Status: models.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, task.Status)
}

func TestCreate_Duplicate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	mustCreate(t, svc, models.TaskInput{Title: "buy milk"})

	_, err := svc.Create(ctx, models.TaskInput{Title: "buy milk "})
	assert.ErrorIs(t, err, errs.ErrDuplicate)

	// titles compare case-sensitively
	mustCreate(t, svc, models.TaskInput{Title: "Buy Milk"})

	tasks, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestUpdate_OwnTitleIsNotDuplicate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	task := mustCreate(t, svc, models.TaskInput{Title: "report", DueDate: models.NewDate(2026, 10, 20)})

	in := models.InputOf(*task)
	in.DueDate = models.NewDate(2026, 11, 1)
	updated, err := svc.Update(ctx, task.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "2026-11-01", updated.DueDate.String())
}

func TestUpdate_CollidesWithOther(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	a := mustCreate(t, svc, models.TaskInput{Title: "a"})
	mustCreate(t, svc, models.TaskInput{Title: "b"})

	_, err := svc.Update(ctx, a.ID, models.TaskInput{Title: "b"})
	assert.ErrorIs(t, err, errs.ErrDuplicate)

	got, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Title)
}

func TestUpdate_StatusTransitionsAreFree(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	task := mustCreate(t, svc, models.TaskInput{Title: "t", Status: models.StatusComplete})

	for _, st := range []models.Status{models.StatusPending, models.StatusComplete, models.StatusInProgress} {
		in := models.InputOf(*task)
		in.Status = st
		var err error
		task, err = svc.Update(ctx, task.ID, in)
		require.NoError(t, err)
		assert.Equal(t, st, task.Status)
	}
}

func TestUpdate_EmptyTitle(t *testing.T) {
	svc := newService(t)

	task := mustCreate(t, svc, models.TaskInput{Title: "t"})
	_, err := svc.Update(context.Background(), task.ID, models.TaskInput{Title: " "})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestUpdateByTitle(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	mustCreate(t, svc, models.TaskInput{Title: "old", Priority: models.PriorityLow})

	updated, err := svc.UpdateByTitle(ctx, "old", models.TaskInput{Title: "new", Priority: models.PriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Title)
	assert.Equal(t, models.PriorityHigh, updated.Priority)

	_, err = svc.UpdateByTitle(ctx, "old", models.TaskInput{Title: "x"})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = svc.UpdateByTitle(ctx, "", models.TaskInput{Title: "x"})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDelete_MovesToRecycleBin(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	task := mustCreate(t, svc, models.TaskInput{
		Title:       "buy milk",
		Description: "2 litres",
		Priority:    models.PriorityHigh,
		Categories:  "shopping",
	})
	mustCreate(t, svc, models.TaskInput{Title: "other"})

	require.NoError(t, svc.DeleteByTitle(ctx, "buy milk"))

	all, err := svc.Search(ctx, "")
	require.NoError(t, err)
	assert.NotContains(t, titles(all), "buy milk")

	bin, err := svc.Deleted(ctx)
	require.NoError(t, err)
	require.Len(t, bin, 1)
	assert.Equal(t, task.Title, bin[0].Title)
	assert.Equal(t, task.Description, bin[0].Description)
	assert.Equal(t, task.DueDate, bin[0].DueDate)
	assert.Equal(t, task.Priority, bin[0].Priority)
	assert.Equal(t, task.Status, bin[0].Status)
	assert.Equal(t, task.Categories, bin[0].Categories)
	assert.True(t, fixedNow.Truncate(time.Second).Equal(bin[0].DeletedAt))
}

func TestDelete_NotFound(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Delete(ctx, 42), errs.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteByTitle(ctx, "missing"), errs.ErrNotFound)

	bin, err := svc.Deleted(ctx)
	require.NoError(t, err)
	assert.Empty(t, bin)
}

func TestRestore(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	task := mustCreate(t, svc, models.TaskInput{Title: "buy milk", Categories: "shopping"})
	require.NoError(t, svc.Delete(ctx, task.ID))

	bin, err := svc.Deleted(ctx)
	require.NoError(t, err)
	require.Len(t, bin, 1)

	restored, err := svc.Restore(ctx, bin[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "buy milk", restored.Title)
	assert.Equal(t, "shopping", restored.Categories)

	_, err = svc.Restore(ctx, bin[0].ID)
	assert.ErrorIs(t, err, errs.ErrDuplicate)

	_, err = svc.Restore(ctx, 999)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSearch(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	mustCreate(t, svc, models.TaskInput{Title: "buy milk"})
	mustCreate(t, svc, models.TaskInput{Title: "call mom", Description: "about the MILKshake"})
	mustCreate(t, svc, models.TaskInput{Title: "taxes", Priority: models.PriorityHigh})
	mustCreate(t, svc, models.TaskInput{Title: "gym", Categories: "health, Fitness"})
	mustCreate(t, svc, models.TaskInput{Title: "Read", Status: models.StatusInProgress})

	tests := []struct {
		term string
		want []string
	}{
		{"MILK", []string{"buy milk", "call mom"}},
		{"high", []string{"taxes"}},
		{"fitness", []string{"gym"}},
		{"progress", []string{}},
		{"2026", []string{}},
		{"", []string{"buy milk", "call mom", "taxes", "gym", "Read"}},
	}

	for _, tt := range tests {
		got, err := svc.Search(ctx, tt.term)
		require.NoError(t, err)
		assert.Equal(t, tt.want, titles(got), "term %q", tt.term)
	}
}

func TestClearCompleted_Nothing(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	mustCreate(t, svc, models.TaskInput{Title: "open"})

	asked := false
	res, err := svc.ClearCompleted(ctx, func(int) bool { asked = true; return true })
	require.NoError(t, err)
	assert.Equal(t, ClearNothing, res.Outcome)
	assert.False(t, asked)

	tasks, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestClearCompleted_Declined(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	mustCreate(t, svc, models.TaskInput{Title: "done", Status: models.StatusComplete})

	res, err := svc.ClearCompleted(ctx, func(n int) bool {
		assert.Equal(t, 1, n)
		return false
	})
	require.NoError(t, err)
	assert.Equal(t, ClearDeclined, res.Outcome)
	assert.Equal(t, 1, res.Count)

	res, err = svc.ClearCompleted(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, ClearDeclined, res.Outcome)

	n, err := svc.CompletedCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestClearCompleted_Confirmed(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	mustCreate(t, svc, models.TaskInput{Title: "done 1", Status: models.StatusComplete})
	mustCreate(t, svc, models.TaskInput{Title: "open", Status: models.StatusInProgress})
	mustCreate(t, svc, models.TaskInput{Title: "done 2", Status: models.StatusComplete})

	res, err := svc.ClearCompleted(ctx, func(int) bool { return true })
	require.NoError(t, err)
	assert.Equal(t, ClearDone, res.Outcome)
	assert.Equal(t, 2, res.Count)

	tasks, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"open"}, titles(tasks))

	bin, err := svc.Deleted(ctx)
	require.NoError(t, err)
	assert.Empty(t, bin, "cleared tasks bypass the recycle bin by default")
}

func TestClearCompleted_Archived(t *testing.T) {
	svc := newService(t, WithArchiveCleared(true))
	ctx := context.Background()

	mustCreate(t, svc, models.TaskInput{Title: "done", Status: models.StatusComplete})

	_, err := svc.ClearCompleted(ctx, func(int) bool { return true })
	require.NoError(t, err)

	bin, err := svc.Deleted(ctx)
	require.NoError(t, err)
	assert.Len(t, bin, 1)
}

type brokenStore struct{ Store }

func (brokenStore) ListTasks(context.Context) ([]models.Task, error) {
	return nil, errors.New("disk I/O error")
}

func (brokenStore) CreateTask(context.Context, models.TaskInput) (*models.Task, error) {
	return nil, errors.New("database is locked")
}

func TestStorageErrorsAreClassified(t *testing.T) {
	svc := NewService(brokenStore{}, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Search(ctx, "x")
	assert.ErrorIs(t, err, errs.ErrStorage)

	_, err = svc.Statistics(ctx, models.Today())
	assert.ErrorIs(t, err, errs.ErrStorage)

	_, err = svc.Create(ctx, models.TaskInput{Title: "x"})
	assert.ErrorIs(t, err, errs.ErrStorage)
	assert.Contains(t, err.Error(), "database is locked")
}
