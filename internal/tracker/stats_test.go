package tracker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/tasktracker/internal/models"
)

func task(title string, due models.Date, status models.Status) models.Task {
	return models.Task{Title: title, DueDate: due, Status: status, Priority: models.PriorityMedium}
}

func TestComputeStatistics(t *testing.T) {
	today := models.NewDate(2026, 10, 19)

	tests := []struct {
		name  string
		tasks []models.Task
		want  models.Statistics
	}{
		{
			name: "empty",
			want: models.Statistics{},
		},
		{
			name: "mixed due dates",
			tasks: []models.Task{
				task("yesterday", today.AddDays(-1), models.StatusPending),
				task("today", today, models.StatusPending),
				task("in three days", today.AddDays(3), models.StatusPending),
				task("in ten days", today.AddDays(10), models.StatusPending),
			},
			want: models.Statistics{Total: 4, Pending: 4, DueToday: 1, DueWeek: 2, Overdue: 1},
		},
		{
			name: "week window is inclusive of day six",
			tasks: []models.Task{
				task("six", today.AddDays(6), models.StatusInProgress),
				task("seven", today.AddDays(7), models.StatusInProgress),
			},
			want: models.Statistics{Total: 2, Pending: 2, DueWeek: 1},
		},
		{
			name: "complete tasks only count as completed",
			tasks: []models.Task{
				task("late but done", today.AddDays(-5), models.StatusComplete),
				task("done today", today, models.StatusComplete),
				task("open", today, models.StatusInProgress),
			},
			want: models.Statistics{Total: 3, Completed: 2, Pending: 1, DueToday: 1, DueWeek: 1},
		},
		{
			name: "no due date",
			tasks: []models.Task{
				task("someday", models.Date{}, models.StatusPending),
			},
			want: models.Statistics{Total: 1, Pending: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStatistics(tt.tasks, today)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.Total, got.Completed+got.Pending)
			assert.LessOrEqual(t, got.DueToday, got.DueWeek)
		})
	}
}

func TestStatistics_AfterMutations(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	today := models.DateOf(fixedNow)

	mustCreate(t, svc, models.TaskInput{Title: "a"})
	mustCreate(t, svc, models.TaskInput{Title: "b", DueDate: today.AddDays(-2)})
	done := mustCreate(t, svc, models.TaskInput{Title: "c", Status: models.StatusComplete})

	st, err := svc.Statistics(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, models.Statistics{Total: 3, Completed: 1, Pending: 2, DueToday: 1, DueWeek: 1, Overdue: 1}, st)

	require.NoError(t, svc.Delete(ctx, done.ID))

	st, err = svc.Statistics(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Total)
	assert.Equal(t, 0, st.Completed)
}
