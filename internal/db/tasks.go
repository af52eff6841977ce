package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/tgienger/tasktracker/internal/errs"
	"github.com/tgienger/tasktracker/internal/models"
)

// Columns are coalesced so rows written by older tools with NULLs still scan,
// and so the driver hands every date back as plain text.
const taskColumns = `
	id, title,
	COALESCE(description, '') AS description,
	COALESCE(due_date, '') AS due_date,
	COALESCE(priority, '') AS priority,
	COALESCE(status, 'Pending') AS status,
	COALESCE(categories, '') AS categories`

// CreateTask inserts a task after checking that no active task has its title
func (db *DB) CreateTask(ctx context.Context, in models.TaskInput) (*models.Task, error) {
	var id int64
	err := db.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := titleFree(ctx, tx, in.Title, 0); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (title, description, due_date, priority, status, categories)
			VALUES (?, ?, ?, ?, ?, ?)
		`, in.Title, in.Description, in.DueDate, in.Priority, in.Status, in.Categories)
		if err != nil {
			return uniqueOr(err, in.Title, "failed to create task")
		}

		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return db.GetTask(ctx, id)
}

// GetTask retrieves a task by ID
func (db *DB) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	t := &models.Task{}
	err := db.GetContext(ctx, t, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: task %d", errs.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// FindTaskByTitle retrieves the active task with exactly this title
func (db *DB) FindTaskByTitle(ctx context.Context, title string) (*models.Task, error) {
	t := &models.Task{}
	err := db.GetContext(ctx, t, `SELECT `+taskColumns+` FROM tasks WHERE title = ?`, title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: task %q", errs.ErrNotFound, title)
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return t, nil
}

// ListTasks returns all active tasks in storage order
func (db *DB) ListTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := db.SelectContext(ctx, &tasks, `SELECT `+taskColumns+` FROM tasks ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask overwrites every field of the task with the given ID
func (db *DB) UpdateTask(ctx context.Context, id int64, in models.TaskInput) (*models.Task, error) {
	err := db.inTx(ctx, func(tx *sqlx.Tx) error {
		var exists int
		if err := tx.GetContext(ctx, &exists, `SELECT COUNT(*) FROM tasks WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to look up task: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("%w: task %d", errs.ErrNotFound, id)
		}

		if err := titleFree(ctx, tx, in.Title, id); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			UPDATE tasks
			SET title = ?, description = ?, due_date = ?, priority = ?, status = ?, categories = ?
			WHERE id = ?
		`, in.Title, in.Description, in.DueDate, in.Priority, in.Status, in.Categories, id)
		if err != nil {
			return uniqueOr(err, in.Title, "failed to update task")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return db.GetTask(ctx, id)
}

// CompletedTaskIDs returns the IDs of all tasks whose status is Complete
func (db *DB) CompletedTaskIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := db.SelectContext(ctx, &ids, `SELECT id FROM tasks WHERE status = ? ORDER BY id`, models.StatusComplete)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed tasks: %w", err)
	}
	return ids, nil
}

// titleFree fails with ErrDuplicate if a task other than exceptID holds title
func titleFree(ctx context.Context, tx *sqlx.Tx, title string, exceptID int64) error {
	var count int
	err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM tasks WHERE title = ? AND id != ?`, title, exceptID)
	if err != nil {
		return fmt.Errorf("failed to check title: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: a task titled %q", errs.ErrDuplicate, title)
	}
	return nil
}

func uniqueOr(err error, title, msg string) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: a task titled %q", errs.ErrDuplicate, title)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
