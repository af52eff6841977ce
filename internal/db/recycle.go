package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/tgienger/tasktracker/internal/errs"
	"github.com/tgienger/tasktracker/internal/models"
)

// DeletedLayout is the local-time format of deleted_tasks.deleted_date
const DeletedLayout = "2006-01-02 15:04:05"

type deletedRow struct {
	models.Task
	DeletedDate string `db:"deleted_date"`
}

func (r deletedRow) snapshot() models.DeletedTask {
	d := models.DeletedTask{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		Priority:    r.Priority,
		Status:      r.Status,
		Categories:  r.Categories,
	}
	if at, err := time.ParseInLocation(DeletedLayout, r.DeletedDate, time.Local); err == nil {
		d.DeletedAt = at
	}
	return d
}

const deletedColumns = taskColumns + `, COALESCE(deleted_date, '') AS deleted_date`

// RemoveTasks deletes the given active tasks in one transaction. With archive
// set, each task is first copied into the recycle bin stamped with at. Either
// every task moves or none does.
func (db *DB) RemoveTasks(ctx context.Context, ids []int64, archive bool, at time.Time) (int, error) {
	stamp := at.In(time.Local).Format(DeletedLayout)

	err := db.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, id := range ids {
			if archive {
				_, err := tx.ExecContext(ctx, `
					INSERT INTO deleted_tasks (title, description, due_date, priority, status, categories, deleted_date)
					SELECT title, description, due_date, priority, status, categories, ?
					FROM tasks WHERE id = ?
				`, stamp, id)
				if err != nil {
					return fmt.Errorf("failed to archive task: %w", err)
				}
			}

			result, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
			if err != nil {
				return fmt.Errorf("failed to delete task: %w", err)
			}
			if n, _ := result.RowsAffected(); n == 0 {
				return fmt.Errorf("%w: task %d", errs.ErrNotFound, id)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// ListDeletedTasks returns the recycle bin in deletion order
func (db *DB) ListDeletedTasks(ctx context.Context) ([]models.DeletedTask, error) {
	var rows []deletedRow
	if err := db.SelectContext(ctx, &rows, `SELECT `+deletedColumns+` FROM deleted_tasks ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list deleted tasks: %w", err)
	}

	out := make([]models.DeletedTask, len(rows))
	for i, r := range rows {
		out[i] = r.snapshot()
	}
	return out, nil
}

// GetDeletedTask retrieves a recycle-bin snapshot by ID
func (db *DB) GetDeletedTask(ctx context.Context, id int64) (*models.DeletedTask, error) {
	return getDeleted(ctx, db.DB, id)
}

// RestoreDeletedTask copies a snapshot back into the active tasks. The
// snapshot itself stays in the bin.
func (db *DB) RestoreDeletedTask(ctx context.Context, id int64) (*models.Task, error) {
	var taskID int64
	err := db.inTx(ctx, func(tx *sqlx.Tx) error {
		d, err := getDeleted(ctx, tx, id)
		if err != nil {
			return err
		}
		if strings.TrimSpace(d.Title) == "" {
			return fmt.Errorf("%w: deleted task %d has no title", errs.ErrValidation, id)
		}
		if err := titleFree(ctx, tx, d.Title, 0); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (title, description, due_date, priority, status, categories)
			SELECT title, description, due_date, priority, status, categories
			FROM deleted_tasks WHERE id = ?
		`, id)
		if err != nil {
			return uniqueOr(err, d.Title, "failed to restore task")
		}

		taskID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return db.GetTask(ctx, taskID)
}

func getDeleted(ctx context.Context, q sqlx.QueryerContext, id int64) (*models.DeletedTask, error) {
	var r deletedRow
	err := sqlx.GetContext(ctx, q, &r, `SELECT `+deletedColumns+` FROM deleted_tasks WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: deleted task %d", errs.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get deleted task: %w", err)
	}
	d := r.snapshot()
	return &d, nil
}
