package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Event tables share the leading id, sequence and timestamp columns.
func eventColumns(extra ...*schema.Column) []*schema.Column {
	return append([]*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
	}, extra...)
}

var (
	// LearnerProgressColumns holds one JSON document per learner.
	LearnerProgressColumns = []*schema.Column{
		{Name: "learner_id", Type: field.TypeString},
		{Name: "data", Type: field.TypeJSON},
		{Name: "updated_at", Type: field.TypeTime},
	}
	LearnerProgressTable = &schema.Table{
		Name:       "learner_progress",
		Columns:    LearnerProgressColumns,
		PrimaryKey: []*schema.Column{LearnerProgressColumns[0]},
	}

	// AnswerEventsColumns records every graded answer.
	AnswerEventsColumns = eventColumns(
		&schema.Column{Name: "learner_id", Type: field.TypeString},
		&schema.Column{Name: "chapter_id", Type: field.TypeString},
		&schema.Column{Name: "question_id", Type: field.TypeString},
		&schema.Column{Name: "instance_id", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "mode", Type: field.TypeString},
		&schema.Column{Name: "category", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "question_type", Type: field.TypeString},
		&schema.Column{Name: "response", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "correct", Type: field.TypeBool},
		&schema.Column{Name: "xp_gained", Type: field.TypeInt, Default: 0},
	)
	AnswerEventsTable = &schema.Table{
		Name:       "answer_events",
		Columns:    AnswerEventsColumns,
		PrimaryKey: []*schema.Column{AnswerEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "answerevent_learner_id", Columns: []*schema.Column{AnswerEventsColumns[3]}},
			{Name: "answerevent_chapter_id", Columns: []*schema.Column{AnswerEventsColumns[4]}},
			{Name: "answerevent_timestamp", Columns: []*schema.Column{AnswerEventsColumns[2]}},
		},
	}

	// LLMRequestEventsColumns records every LLM API call.
	LLMRequestEventsColumns = eventColumns(
		&schema.Column{Name: "provider", Type: field.TypeString},
		&schema.Column{Name: "model", Type: field.TypeString},
		&schema.Column{Name: "purpose", Type: field.TypeString},
		&schema.Column{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		&schema.Column{Name: "success", Type: field.TypeBool},
		&schema.Column{Name: "error_message", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "request_body", Type: field.TypeString, Size: 1 << 20, Default: ""},
		&schema.Column{Name: "response_body", Type: field.TypeString, Size: 1 << 20, Default: ""},
	)
	LLMRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    LLMRequestEventsColumns,
		PrimaryKey: []*schema.Column{LLMRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{LLMRequestEventsColumns[5]}},
			{Name: "llmrequestevent_model", Columns: []*schema.Column{LLMRequestEventsColumns[4]}},
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{LLMRequestEventsColumns[2]}},
		},
	}

	// Tables lists every table Open migrates.
	Tables = []*schema.Table{
		LearnerProgressTable,
		AnswerEventsTable,
		LLMRequestEventsTable,
	}
)
