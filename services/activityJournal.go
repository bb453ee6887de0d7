package services

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/Siilah/models"
)

// ActivityJournal appends circle activity rows to Postgres. Circle state is
// never rebuilt from it; only the admin activity report reads it.
type ActivityJournal struct {
	db *goqu.Database
}

var _ ActivityRecorder = (*ActivityJournal)(nil)

// NewActivityJournal returns nil when db is nil so callers can skip journaling.
func NewActivityJournal(db *goqu.Database) *ActivityJournal {
	if db == nil {
		return nil
	}
	return &ActivityJournal{db: db}
}

func (j *ActivityJournal) Record(ctx context.Context, activity models.CircleActivity) error {
	insert := j.db.Insert("circle_activity").Rows(activity).Executor()
	if _, err := insert.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to insert circle activity: %w", err)
	}
	return nil
}

// CountByAction tallies journal rows for a circle, grouped by action type.
func (j *ActivityJournal) CountByAction(ctx context.Context, circleID string) (map[string]int, error) {
	type row struct {
		Action_Type string `db:"action_type"`
		Total       int    `db:"total"`
	}

	var rows []row
	err := j.db.From("circle_activity").
		Select(goqu.C("action_type"), goqu.COUNT("*").As("total")).
		Where(goqu.C("circle_id").Eq(circleID)).
		GroupBy(goqu.C("action_type")).
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to count circle activity: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Action_Type] = r.Total
	}
	return counts, nil
}

var activityJournal *ActivityJournal

// InitActivityJournal sets up the process-wide journal. It stays nil without a database.
func InitActivityJournal(db *goqu.Database) *ActivityJournal {
	activityJournal = NewActivityJournal(db)
	return activityJournal
}

func GetActivityJournal() *ActivityJournal {
	return activityJournal
}

// SetActivityJournal swaps the process-wide journal and returns the previous one.
func SetActivityJournal(j *ActivityJournal) *ActivityJournal {
	previous := activityJournal
	activityJournal = j
	return previous
}
