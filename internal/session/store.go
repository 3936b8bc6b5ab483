// Package session keeps per-chat conversation history. The store is bounded:
// least-recently-used chats are evicted when capacity is reached and entries
// expire after a TTL, so memory does not grow with the number of users.
package session

import (
	"container/list"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

type Store struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	maxHistory int
	items      map[int64]*list.Element
	lru        *list.List
}

type entry struct {
	chatID    int64
	history   []openai.ChatCompletionMessage
	expiresAt time.Time
}

// NewStore creates a session store holding at most maxEntries chats, each
// expiring ttl after its last update. maxHistory caps the number of messages
// kept per chat; older ones are dropped from the front.
func NewStore(maxEntries int, ttl time.Duration, maxHistory int) *Store {
	return &Store{
		maxEntries: maxEntries,
		ttl:        ttl,
		maxHistory: maxHistory,
		items:      make(map[int64]*list.Element),
		lru:        list.New(),
	}
}

// History returns the stored conversation for a chat, if any.
func (s *Store) History(chatID int64) ([]openai.ChatCompletionMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, exists := s.items[chatID]
	if !exists {
		return nil, false
	}
	e := elem.Value.(*entry)
	if time.Now().After(e.expiresAt) {
		s.removeElement(elem)
		return nil, false
	}
	s.lru.MoveToFront(elem)
	return e.history, true
}

// Update replaces a chat's history, trimming it to the configured cap and
// refreshing its TTL.
func (s *Store) Update(chatID int64, history []openai.ChatCompletionMessage) {
	if s.maxHistory > 0 && len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := &entry{
		chatID:    chatID,
		history:   history,
		expiresAt: time.Now().Add(s.ttl),
	}

	if elem, exists := s.items[chatID]; exists {
		elem.Value = e
		s.lru.MoveToFront(elem)
		return
	}

	elem := s.lru.PushFront(e)
	s.items[chatID] = elem

	if s.lru.Len() > s.maxEntries {
		if oldest := s.lru.Back(); oldest != nil {
			s.removeElement(oldest)
		}
	}
}

// Delete removes a chat's session.
func (s *Store) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if elem, exists := s.items[chatID]; exists {
		s.removeElement(elem)
	}
}

func (s *Store) removeElement(elem *list.Element) {
	e := elem.Value.(*entry)
	delete(s.items, e.chatID)
	s.lru.Remove(elem)
}

// CleanExpired removes all expired sessions and returns how many were dropped.
func (s *Store) CleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var toRemove []*list.Element
	for elem := s.lru.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*entry).expiresAt) {
			toRemove = append(toRemove, elem)
		}
	}
	for _, elem := range toRemove {
		s.removeElement(elem)
	}
	return len(toRemove)
}

// Size returns the current number of tracked chats.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
