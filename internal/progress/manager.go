package progress

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/abhisek/mathlingo/internal/logger"
)

// ErrEmptyLearner is returned for a blank learner id.
var ErrEmptyLearner = errors.New("learner id is empty")

// Repo persists one progress document per learner. Load returns nil, nil
// when the learner has no stored progress.
type Repo interface {
	Load(ctx context.Context, learnerID string) (*UserProgress, error)
	Save(ctx context.Context, p *UserProgress) error
	Delete(ctx context.Context, learnerID string) error
}

// Manager serializes access to each learner's progress and persists every
// mutation through Repo.
type Manager struct {
	repo         Repo
	firstChapter string
	opts         []Option
	now          func() time.Time
	log          *logger.Logger

	mu    sync.Mutex
	locks map[string]*learnerLock
}

// learnerLock is dropped from Manager.locks once no caller holds or waits
// on it.
type learnerLock struct {
	sync.Mutex
	refs int
}

// NewManager creates a Manager. New learners start at firstChapter. opts
// are passed to every Service the manager creates.
func NewManager(repo Repo, firstChapter string, log *logger.Logger, opts ...Option) *Manager {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return &Manager{
		repo:         repo,
		firstChapter: firstChapter,
		opts:         opts,
		now:          o.now,
		log:          logger.OrNop(log),
		locks:        make(map[string]*learnerLock),
	}
}

func (m *Manager) lock(learnerID string) func() {
	m.mu.Lock()
	l, ok := m.locks[learnerID]
	if !ok {
		l = &learnerLock{}
		m.locks[learnerID] = l
	}
	l.refs++
	m.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, learnerID)
		}
		m.mu.Unlock()
	}
}

func (m *Manager) lockCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

func (m *Manager) load(ctx context.Context, learnerID string) (*UserProgress, error) {
	p, err := m.repo.Load(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if p == nil {
		m.log.Debug("new learner", "learner_id", learnerID)
		p = New(learnerID, m.firstChapter, m.now())
	}
	return p, nil
}

// View runs fn on a read-only service for the learner. Changes made by fn
// are discarded.
func (m *Manager) View(ctx context.Context, learnerID string, fn func(*Service) error) error {
	if learnerID == "" {
		return ErrEmptyLearner
	}
	defer m.lock(learnerID)()

	p, err := m.load(ctx, learnerID)
	if err != nil {
		return err
	}
	return fn(NewService(p, m.opts...))
}

// Update runs fn and saves the result when fn succeeds.
func (m *Manager) Update(ctx context.Context, learnerID string, fn func(*Service) error) error {
	if learnerID == "" {
		return ErrEmptyLearner
	}
	defer m.lock(learnerID)()

	p, err := m.load(ctx, learnerID)
	if err != nil {
		return err
	}
	svc := NewService(p, m.opts...)
	if err := fn(svc); err != nil {
		return err
	}
	if err := m.repo.Save(ctx, svc.Snapshot()); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// Get returns a copy of the learner's progress.
func (m *Manager) Get(ctx context.Context, learnerID string) (*UserProgress, error) {
	var out *UserProgress
	err := m.View(ctx, learnerID, func(s *Service) error {
		out = s.Snapshot()
		return nil
	})
	return out, err
}

// Reset deletes the learner's stored progress.
func (m *Manager) Reset(ctx context.Context, learnerID string) error {
	if learnerID == "" {
		return ErrEmptyLearner
	}
	defer m.lock(learnerID)()

	if err := m.repo.Delete(ctx, learnerID); err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}
	m.log.Info("progress reset", "learner_id", learnerID)
	return nil
}

// MemoryRepo is an in-memory Repo.
type MemoryRepo struct {
	mu   sync.Mutex
	data map[string]*UserProgress
}

// NewMemoryRepo creates an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]*UserProgress)}
}

func (r *MemoryRepo) Load(_ context.Context, learnerID string) (*UserProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.data[learnerID]
	if !ok {
		return nil, nil
	}
	return p.Clone(), nil
}

func (r *MemoryRepo) Save(_ context.Context, p *UserProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[p.UserID] = p.Clone()
	return nil
}

func (r *MemoryRepo) Delete(_ context.Context, learnerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, learnerID)
	return nil
}
