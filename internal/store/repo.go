package store

import (
	"context"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// apply adds the filters and newest-first ordering to a selector.
func (o QueryOpts) apply(s *entsql.Selector) *entsql.Selector {
	if o.After > 0 {
		s.Where(entsql.GT("sequence", o.After))
	}
	if o.Before > 0 {
		s.Where(entsql.LT("sequence", o.Before))
	}
	if !o.From.IsZero() {
		s.Where(entsql.GTE("timestamp", o.From.UTC()))
	}
	if !o.To.IsZero() {
		s.Where(entsql.LTE("timestamp", o.To.UTC()))
	}
	s.OrderBy(entsql.Desc("sequence"))
	if o.Limit > 0 {
		s.Limit(o.Limit)
	}
	return s
}

// AnswerEventData captures one graded answer.
type AnswerEventData struct {
	LearnerID    string
	ChapterID    string
	QuestionID   string
	InstanceID   string
	Mode         string // practice, review or exam
	Category     string // mistake, new or review; empty in exam mode
	QuestionType string
	Response     string
	Correct      bool
	XPGained     int
}

// AnswerEventRecord is a stored answer event.
type AnswerEventRecord struct {
	AnswerEventData
	ID        int
	Sequence  int64
	Timestamp time.Time
}

// ChapterStat aggregates answer events of one chapter.
type ChapterStat struct {
	ChapterID string
	Attempts  int
	Correct   int
}

// Accuracy returns Correct/Attempts, or 0 with no attempts.
func (c ChapterStat) Accuracy() float64 {
	if c.Attempts == 0 {
		return 0
	}
	return float64(c.Correct) / float64(c.Attempts)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	LLMRequestEventData
	ID        int
	Sequence  int64
	Timestamp time.Time
}

// LLMPurposeUsage aggregates LLM calls by purpose.
type LLMPurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates LLM calls by model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to the event log.
type EventRepo interface {
	// AppendAnswerEvent records a graded answer.
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error

	// QueryAnswerEvents returns a learner's answer events, newest first.
	QueryAnswerEvents(ctx context.Context, learnerID string, opts QueryOpts) ([]AnswerEventRecord, error)

	// ChapterAccuracy aggregates a learner's answers per chapter, ordered by
	// chapter id.
	ChapterAccuracy(ctx context.Context, learnerID string) ([]ChapterStat, error)

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)

	// GetLLMEvent returns one LLM event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)

	// LLMUsageByPurpose aggregates token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMPurposeUsage, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}
