package server

import (
	"slices"
	"sync"

	"manuscript_editor/generator"
)

// sessionStore maps a session key to the conversation that exclusively owns it.
// The least recently created session is evicted once limit is reached.
type sessionStore struct {
	mu       sync.Mutex
	limit    int
	order    []string
	sessions map[string]*generator.Conversation
}

func newStore(limit int) *sessionStore {
	return &sessionStore{limit: limit, sessions: make(map[string]*generator.Conversation)}
}

func (s *sessionStore) set(id string, sess *generator.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		s.order = append(s.order, id)
	}
	s.sessions[id] = sess
	for s.limit > 0 && len(s.order) > s.limit {
		delete(s.sessions, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *sessionStore) get(id string) (*generator.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *sessionStore) delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	if !ok {
		return false
	}
	delete(s.sessions, id)
	s.order = slices.DeleteFunc(s.order, func(k string) bool { return k == id })
	return true
}

// resultStore keeps one-shot results around for export. Oldest entries are evicted
// once limit is reached.
type resultStore struct {
	mu      sync.Mutex
	limit   int
	order   []string
	results map[string]generator.Result
}

func newResultStore(limit int) *resultStore {
	return &resultStore{limit: limit, results: make(map[string]generator.Result)}
}

func (s *resultStore) put(r generator.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[r.ID]; !ok {
		s.order = append(s.order, r.ID)
	}
	s.results[r.ID] = r
	for s.limit > 0 && len(s.order) > s.limit {
		delete(s.results, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *resultStore) get(id string) (generator.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[id]
	return r, ok
}
