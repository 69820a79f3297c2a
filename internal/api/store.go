package api

import "sync"

// DecodeStore keeps finished decodes in memory, in creation order.
type DecodeStore struct {
	mu      sync.Mutex
	order   []string
	decodes map[string]DecodeResponse
}

func NewDecodeStore() *DecodeStore {
	return &DecodeStore{decodes: make(map[string]DecodeResponse)}
}

func (s *DecodeStore) Put(resp DecodeResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.decodes[resp.ID]; !ok {
		s.order = append(s.order, resp.ID)
	}
	s.decodes[resp.ID] = resp
}

func (s *DecodeStore) Get(id string) (DecodeResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp, ok := s.decodes[id]
	return resp, ok
}

func (s *DecodeStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.decodes[id]; !ok {
		return false
	}
	delete(s.decodes, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *DecodeStore) List() []DecodeResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]DecodeResponse, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.decodes[id])
	}
	return out
}
