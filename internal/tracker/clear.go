package tracker

import (
	"context"

	"go.uber.org/zap"
)

// ClearOutcome says what ClearCompleted did
type ClearOutcome int

const (
	// ClearNothing means there were no completed tasks. It is not an error.
	ClearNothing ClearOutcome = iota
	// ClearDeclined means the caller did not confirm
	ClearDeclined
	// ClearDone means the completed tasks were removed
	ClearDone
)

type ClearResult struct {
	Outcome ClearOutcome
	Count   int
}

// Confirm is asked before completed tasks are removed, with their count
type Confirm func(count int) bool

// CompletedCount returns the number of active tasks whose status is Complete
func (s *Service) CompletedCount(ctx context.Context) (int, error) {
	ids, err := s.store.CompletedTaskIDs(ctx)
	if err != nil {
		return 0, storageErr(err)
	}
	return len(ids), nil
}

// ClearCompleted removes every Complete task once confirm agrees. Whether the
// removed tasks are kept in the recycle bin depends on WithArchiveCleared.
func (s *Service) ClearCompleted(ctx context.Context, confirm Confirm) (ClearResult, error) {
	ids, err := s.store.CompletedTaskIDs(ctx)
	if err != nil {
		return ClearResult{}, storageErr(err)
	}
	if len(ids) == 0 {
		return ClearResult{Outcome: ClearNothing}, nil
	}
	if confirm == nil || !confirm(len(ids)) {
		return ClearResult{Outcome: ClearDeclined, Count: len(ids)}, nil
	}

	n, err := s.store.RemoveTasks(ctx, ids, s.archiveCleared, s.now())
	if err != nil {
		return ClearResult{}, storageErr(err)
	}

	s.log.Info("completed tasks cleared", zap.Int("count", n), zap.Bool("archived", s.archiveCleared))
	return ClearResult{Outcome: ClearDone, Count: n}, nil
}
