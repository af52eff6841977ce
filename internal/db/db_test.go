package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tgienger/tasktracker/internal/errs"
	"github.com/tgienger/tasktracker/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "tasks.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func input(title string) models.TaskInput {
	return models.TaskInput{
		Title:       title,
		Description: "desc of " + title,
		DueDate:     models.NewDate(2026, 10, 19),
		Priority:    models.PriorityMedium,
		Status:      models.StatusPending,
		Categories:  "home,errands",
	}
}

func TestCreateAndGetTask(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	created, err := database.CreateTask(ctx, input("buy milk"))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := database.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "buy milk", got.Title)
	assert.Equal(t, "desc of buy milk", got.Description)
	assert.Equal(t, "2026-10-19", got.DueDate.String())
	assert.Equal(t, models.PriorityMedium, got.Priority)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, "home,errands", got.Categories)
}

func TestCreateTask_DuplicateTitle(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	_, err := database.CreateTask(ctx, input("buy milk"))
	require.NoError(t, err)

	_, err = database.CreateTask(ctx, input("buy milk"))
	assert.ErrorIs(t, err, errs.ErrDuplicate)

	tasks, err := database.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestUniqueIndexMapsToDuplicate(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	_, err := database.CreateTask(ctx, input("a"))
	require.NoError(t, err)

	_, err = database.ExecContext(ctx, `INSERT INTO tasks (title) VALUES ('a')`)
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))
}

func TestGetTask_NotFound(t *testing.T) {
	database := setupTestDB(t)

	_, err := database.GetTask(context.Background(), 999)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestFindTaskByTitle(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	created, err := database.CreateTask(ctx, input("walk dog"))
	require.NoError(t, err)

	got, err := database.FindTaskByTitle(ctx, "walk dog")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = database.FindTaskByTitle(ctx, "Walk Dog")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestListTasks_StorageOrder(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	for _, title := range []string{"c", "a", "b"} {
		_, err := database.CreateTask(ctx, input(title))
		require.NoError(t, err)
	}

	tasks, err := database.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "c", tasks[0].Title)
	assert.Equal(t, "a", tasks[1].Title)
	assert.Equal(t, "b", tasks[2].Title)
}

func TestUpdateTask(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	a, err := database.CreateTask(ctx, input("a"))
	require.NoError(t, err)
	_, err = database.CreateTask(ctx, input("b"))
	require.NoError(t, err)

	in := input("a")
	in.Status = models.StatusComplete
	in.DueDate = models.NewDate(2027, 1, 1)
	updated, err := database.UpdateTask(ctx, a.ID, in)
	require.NoError(t, err, "keeping its own title is not a duplicate")
	assert.Equal(t, models.StatusComplete, updated.Status)
	assert.Equal(t, "2027-01-01", updated.DueDate.String())

	_, err = database.UpdateTask(ctx, a.ID, input("b"))
	assert.ErrorIs(t, err, errs.ErrDuplicate)

	_, err = database.UpdateTask(ctx, 999, input("z"))
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRemoveTasks_Archive(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	task, err := database.CreateTask(ctx, input("buy milk"))
	require.NoError(t, err)

	at := time.Date(2026, 10, 19, 14, 30, 5, 0, time.Local)
	n, err := database.RemoveTasks(ctx, []int64{task.ID}, true, at)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = database.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	bin, err := database.ListDeletedTasks(ctx)
	require.NoError(t, err)
	require.Len(t, bin, 1)
	assert.Equal(t, "buy milk", bin[0].Title)
	assert.Equal(t, "desc of buy milk", bin[0].Description)
	assert.Equal(t, "2026-10-19", bin[0].DueDate.String())
	assert.Equal(t, "home,errands", bin[0].Categories)
	assert.True(t, at.Equal(bin[0].DeletedAt))
}

func TestRemoveTasks_WithoutArchive(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	task, err := database.CreateTask(ctx, input("x"))
	require.NoError(t, err)

	_, err = database.RemoveTasks(ctx, []int64{task.ID}, false, time.Now())
	require.NoError(t, err)

	bin, err := database.ListDeletedTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, bin)
}

func TestRemoveTasks_AllOrNothing(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	task, err := database.CreateTask(ctx, input("keep me"))
	require.NoError(t, err)

	_, err = database.RemoveTasks(ctx, []int64{task.ID, 999}, true, time.Now())
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = database.GetTask(ctx, task.ID)
	assert.NoError(t, err, "task must survive a rolled back removal")

	bin, err := database.ListDeletedTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, bin, "no snapshot may survive a rolled back removal")
}

func TestRestoreDeletedTask(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	task, err := database.CreateTask(ctx, input("buy milk"))
	require.NoError(t, err)
	_, err = database.RemoveTasks(ctx, []int64{task.ID}, true, time.Now())
	require.NoError(t, err)

	bin, err := database.ListDeletedTasks(ctx)
	require.NoError(t, err)
	require.Len(t, bin, 1)

	restored, err := database.RestoreDeletedTask(ctx, bin[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "buy milk", restored.Title)
	assert.NotEqual(t, task.ID, restored.ID)

	_, err = database.RestoreDeletedTask(ctx, bin[0].ID)
	assert.ErrorIs(t, err, errs.ErrDuplicate)

	bin, err = database.ListDeletedTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, bin, 1, "the bin is append-only")

	_, err = database.RestoreDeletedTask(ctx, 999)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCompletedTaskIDs(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	done := input("done")
	done.Status = models.StatusComplete
	d, err := database.CreateTask(ctx, done)
	require.NoError(t, err)
	_, err = database.CreateTask(ctx, input("open"))
	require.NoError(t, err)

	ids, err := database.CompletedTaskIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{d.ID}, ids)
}

func TestLegacyRowsWithNulls(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	_, err := database.ExecContext(ctx, `INSERT INTO tasks (title) VALUES ('legacy')`)
	require.NoError(t, err)

	task, err := database.FindTaskByTitle(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, task.Status)
	assert.Empty(t, task.Description)
	assert.True(t, task.DueDate.IsZero())
}

func TestSettings(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	v, err := database.GetSetting(ctx, "last_search")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, database.SetSetting(ctx, "last_search", "milk"))
	require.NoError(t, database.SetSetting(ctx, "last_search", "bread"))

	v, err = database.GetSetting(ctx, "last_search")
	require.NoError(t, err)
	assert.Equal(t, "bread", v)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")

	first, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	_, err = first.CreateTask(context.Background(), input("persisted"))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer second.Close()

	var applied int
	require.NoError(t, second.Get(&applied, `SELECT COUNT(*) FROM schema_migrations`))
	assert.Equal(t, 3, applied)

	_, err = second.FindTaskByTitle(context.Background(), "persisted")
	assert.NoError(t, err)
}

func TestParseMigrationFilename(t *testing.T) {
	v, name, err := parseMigrationFilename("002_unique_task_title.sql")
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, "unique_task_title", name)

	_, _, err = parseMigrationFilename("nounderscore.sql")
	assert.Error(t, err)

	_, _, err = parseMigrationFilename("x_name.sql")
	assert.Error(t, err)
}
