package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	ins := entsql.Dialect(dialect.SQLite).
		Insert(AnswerEventsTable.Name).
		Columns("sequence", "timestamp", "learner_id", "chapter_id", "question_id", "instance_id",
			"mode", "category", "question_type", "response", "correct", "xp_gained").
		Values(seqNum, time.Now().UTC(), data.LearnerID, data.ChapterID, data.QuestionID, data.InstanceID,
			data.Mode, data.Category, data.QuestionType, data.Response, data.Correct, data.XPGained)
	if err := r.exec(ctx, ins); err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryAnswerEvents(ctx context.Context, learnerID string, opts QueryOpts) ([]AnswerEventRecord, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select("id", "sequence", "timestamp", "learner_id", "chapter_id", "question_id", "instance_id",
			"mode", "category", "question_type", "response", "correct", "xp_gained").
		From(entsql.Table(AnswerEventsTable.Name)).
		Where(entsql.EQ("learner_id", learnerID))
	query, args := opts.apply(sel).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query answer events: %w", err)
	}
	defer rows.Close()

	var records []AnswerEventRecord
	for rows.Next() {
		var e AnswerEventRecord
		if err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp, &e.LearnerID, &e.ChapterID, &e.QuestionID,
			&e.InstanceID, &e.Mode, &e.Category, &e.QuestionType, &e.Response, &e.Correct, &e.XPGained); err != nil {
			return nil, fmt.Errorf("scan answer event: %w", err)
		}
		records = append(records, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query answer events: %w", err)
	}
	return records, nil
}

func (r *eventRepo) ChapterAccuracy(ctx context.Context, learnerID string) ([]ChapterStat, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("chapter_id", entsql.As(entsql.Count("*"), "attempts"), entsql.As(entsql.Sum("correct"), "correct_count")).
		From(entsql.Table(AnswerEventsTable.Name)).
		Where(entsql.EQ("learner_id", learnerID)).
		GroupBy("chapter_id").
		OrderBy("chapter_id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query chapter accuracy: %w", err)
	}
	defer rows.Close()

	var stats []ChapterStat
	for rows.Next() {
		var s ChapterStat
		if err := rows.Scan(&s.ChapterID, &s.Attempts, &s.Correct); err != nil {
			return nil, fmt.Errorf("scan chapter accuracy: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query chapter accuracy: %w", err)
	}
	return stats, nil
}
