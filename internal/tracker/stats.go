package tracker

import (
	"context"

	"github.com/tgienger/tasktracker/internal/models"
)

// Statistics aggregates the active tasks as of the given day
func (s *Service) Statistics(ctx context.Context, asOf models.Date) (models.Statistics, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return models.Statistics{}, storageErr(err)
	}
	return ComputeStatistics(tasks, asOf), nil
}

// ComputeStatistics counts tasks by completion and due date. The due-date
// counts skip Complete tasks; the week window is asOf through asOf+6 days.
// Tasks without a due date only count towards the totals.
func ComputeStatistics(tasks []models.Task, asOf models.Date) models.Statistics {
	weekEnd := asOf.AddDays(6)

	var st models.Statistics
	for _, t := range tasks {
		st.Total++
		if t.IsComplete() {
			st.Completed++
			continue
		}
		if t.DueDate.IsZero() {
			continue
		}

		due := t.DueDate
		if due.Equal(asOf) {
			st.DueToday++
		}
		if !due.Before(asOf) && !due.After(weekEnd) {
			st.DueWeek++
		}
		if due.Before(asOf) {
			st.Overdue++
		}
	}
	st.Pending = st.Total - st.Completed
	return st
}
