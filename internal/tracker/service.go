package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tgienger/tasktracker/internal/errs"
	"github.com/tgienger/tasktracker/internal/models"
)

// Store is the persistence the engine needs. *db.DB implements it.
type Store interface {
	CreateTask(ctx context.Context, in models.TaskInput) (*models.Task, error)
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	FindTaskByTitle(ctx context.Context, title string) (*models.Task, error)
	ListTasks(ctx context.Context) ([]models.Task, error)
	UpdateTask(ctx context.Context, id int64, in models.TaskInput) (*models.Task, error)
	CompletedTaskIDs(ctx context.Context) ([]int64, error)
	RemoveTasks(ctx context.Context, ids []int64, archive bool, at time.Time) (int, error)
	ListDeletedTasks(ctx context.Context) ([]models.DeletedTask, error)
	RestoreDeletedTask(ctx context.Context, id int64) (*models.Task, error)
}

// Service runs the task lifecycle: validation, create/update/delete/restore
// transitions, title uniqueness and statistics.
type Service struct {
	store          Store
	log            *zap.Logger
	validate       *validator.Validate
	now            func() time.Time
	archiveCleared bool
}

type Option func(*Service)

// WithClock replaces time.Now, for deletion stamps and default due dates
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithArchiveCleared makes ClearCompleted keep snapshots in the recycle bin
func WithArchiveCleared(archive bool) Option {
	return func(s *Service) { s.archiveCleared = archive }
}

func NewService(store Store, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		log:      log,
		validate: validator.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create adds a new task. The title is trimmed and must be non-empty and not
// held by another active task.
func (s *Service) Create(ctx context.Context, in models.TaskInput) (*models.Task, error) {
	in, err := s.normalize(in)
	if err != nil {
		return nil, err
	}

	task, err := s.store.CreateTask(ctx, in)
	if err != nil {
		return nil, storageErr(err)
	}

	s.log.Info("task created", zap.Int64("id", task.ID), zap.String("title", task.Title))
	return task, nil
}

// Get returns the active task with the given ID
func (s *Service) Get(ctx context.Context, id int64) (*models.Task, error) {
	task, err := s.store.GetTask(ctx, id)
	return task, storageErr(err)
}

// GetByTitle returns the active task with exactly the given title
func (s *Service) GetByTitle(ctx context.Context, title string) (*models.Task, error) {
	id, err := s.resolve(ctx, title)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// List returns every active task in storage order
func (s *Service) List(ctx context.Context) ([]models.Task, error) {
	tasks, err := s.store.ListTasks(ctx)
	return tasks, storageErr(err)
}

// Update overwrites all fields of the task with the given ID. Keeping the
// task's own title is never a duplicate.
func (s *Service) Update(ctx context.Context, id int64, in models.TaskInput) (*models.Task, error) {
	in, err := s.normalize(in)
	if err != nil {
		return nil, err
	}

	task, err := s.store.UpdateTask(ctx, id, in)
	if err != nil {
		return nil, storageErr(err)
	}

	s.log.Info("task updated", zap.Int64("id", id), zap.String("title", task.Title))
	return task, nil
}

// UpdateByTitle resolves the task currently titled prevTitle and updates it.
// The lookup happens immediately before the write.
func (s *Service) UpdateByTitle(ctx context.Context, prevTitle string, in models.TaskInput) (*models.Task, error) {
	id, err := s.resolve(ctx, prevTitle)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, id, in)
}

// Delete moves the task into the recycle bin, stamped with the current local time
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.store.RemoveTasks(ctx, []int64{id}, true, s.now()); err != nil {
		return storageErr(err)
	}

	s.log.Info("task moved to recycle bin", zap.Int64("id", id))
	return nil
}

// DeleteByTitle resolves the task titled title and deletes it
func (s *Service) DeleteByTitle(ctx context.Context, title string) error {
	id, err := s.resolve(ctx, title)
	if err != nil {
		return err
	}
	return s.Delete(ctx, id)
}

// Search returns the active tasks whose title, description, priority or
// categories contain term, ignoring case. Storage order is kept. An empty
// term matches everything.
func (s *Service) Search(ctx context.Context, term string) ([]models.Task, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, storageErr(err)
	}
	return Filter(tasks, term), nil
}

// Filter applies the Search match to an already loaded list
func Filter(tasks []models.Task, term string) []models.Task {
	term = strings.ToLower(term)
	if term == "" {
		return tasks
	}

	matches := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), term) ||
			strings.Contains(strings.ToLower(t.Description), term) ||
			strings.Contains(strings.ToLower(string(t.Priority)), term) ||
			strings.Contains(strings.ToLower(t.Categories), term) {
			matches = append(matches, t)
		}
	}
	return matches
}

// Deleted returns the recycle bin
func (s *Service) Deleted(ctx context.Context) ([]models.DeletedTask, error) {
	bin, err := s.store.ListDeletedTasks(ctx)
	return bin, storageErr(err)
}

// Restore copies a recycle-bin snapshot back into the active tasks
func (s *Service) Restore(ctx context.Context, deletedID int64) (*models.Task, error) {
	task, err := s.store.RestoreDeletedTask(ctx, deletedID)
	if err != nil {
		return nil, storageErr(err)
	}

	s.log.Info("task restored", zap.Int64("deleted_id", deletedID), zap.Int64("id", task.ID), zap.String("title", task.Title))
	return task, nil
}

func (s *Service) resolve(ctx context.Context, title string) (int64, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, fmt.Errorf("%w: no task selected", errs.ErrNotFound)
	}

	task, err := s.store.FindTaskByTitle(ctx, title)
	if err != nil {
		return 0, storageErr(err)
	}
	return task.ID, nil
}

// normalize trims the input, fills defaults and validates it
func (s *Service) normalize(in models.TaskInput) (models.TaskInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Categories = strings.TrimSpace(in.Categories)

	if in.Title == "" {
		return in, fmt.Errorf("%w: task title is required", errs.ErrValidation)
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if in.Status == "" {
		in.Status = models.StatusPending
	}
	if in.DueDate.IsZero() {
		in.DueDate = models.DateOf(s.now())
	}

	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return in, fmt.Errorf("%w: %s must satisfy %s %s, got %q", errs.ErrValidation, strings.ToLower(f.Field()), f.Tag(), f.Param(), f.Value())
		}
		return in, fmt.Errorf("%w: %w", errs.ErrValidation, err)
	}
	return in, nil
}

// storageErr passes classified errors through and marks the rest as storage failures
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{errs.ErrValidation, errs.ErrDuplicate, errs.ErrNotFound, errs.ErrStorage} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", errs.ErrStorage, err)
}
