package api

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/abhisek/mathlingo/internal/problemgen"
	"github.com/abhisek/mathlingo/internal/session"
)

// DefaultPendingCapacity bounds how many served, unanswered questions the
// server remembers.
const DefaultPendingCapacity = 4096

type pendingEntry struct {
	learnerID string
	question  *problemgen.Question
	category  session.Category
	review    bool
}

// pending holds served questions by instance id. The least recently served
// entry is evicted when the capacity is reached.
type pending struct {
	cache *lru.Cache[string, pendingEntry]
}

func newPending(capacity int) *pending {
	if capacity <= 0 {
		capacity = DefaultPendingCapacity
	}
	// lru.New only fails on a non-positive size.
	cache, _ := lru.New[string, pendingEntry](capacity)
	return &pending{cache: cache}
}

func (p *pending) put(e pendingEntry) {
	p.cache.Add(e.question.InstanceID, e)
}

// take removes and returns the entry if it was served to learnerID. Of two
// concurrent takes of the same id only one wins the Remove.
func (p *pending) take(instanceID, learnerID string) (pendingEntry, bool) {
	e, ok := p.cache.Peek(instanceID)
	if !ok || e.learnerID != learnerID {
		return pendingEntry{}, false
	}
	if !p.cache.Remove(instanceID) {
		return pendingEntry{}, false
	}
	return e, true
}

func (p *pending) len() int {
	return p.cache.Len()
}
