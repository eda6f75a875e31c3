package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/mathlingo/internal/progress"
)

// ProgressRepo stores each learner's progress as one JSON document.
// It implements progress.Repo.
type ProgressRepo struct {
	db *sql.DB
}

var _ progress.Repo = (*ProgressRepo)(nil)

// Load returns the stored progress, or nil if the learner has none.
func (r *ProgressRepo) Load(ctx context.Context, learnerID string) (*progress.UserProgress, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("data").
		From(entsql.Table(LearnerProgressTable.Name)).
		Where(entsql.EQ("learner_id", learnerID)).
		Query()

	var data []byte
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load progress: %w", err)
	}

	var p progress.UserProgress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	return &p, nil
}

// Save inserts or replaces the learner's progress.
func (r *ProgressRepo) Save(ctx context.Context, p *progress.UserProgress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(LearnerProgressTable.Name).
		Columns("learner_id", "data", "updated_at").
		Values(p.UserID, string(data), time.Now().UTC()).
		OnConflict(entsql.ConflictColumns("learner_id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// Delete removes the learner's progress. Deleting a missing learner is not
// an error.
func (r *ProgressRepo) Delete(ctx context.Context, learnerID string) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(LearnerProgressTable.Name).
		Where(entsql.EQ("learner_id", learnerID)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}

// Learners lists the ids of every stored learner.
func (r *ProgressRepo) Learners(ctx context.Context) ([]string, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("learner_id").
		From(entsql.Table(LearnerProgressTable.Name)).
		OrderBy("learner_id").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list learners: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan learner: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
