package session

import (
	"fmt"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

func msgs(texts ...string) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(texts))
	for _, t := range texts {
		out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: t})
	}
	return out
}

func TestStoreUpdateAndHistory(t *testing.T) {
	s := NewStore(10, time.Minute, 50)

	if _, ok := s.History(1); ok {
		t.Fatalf("expected no history for fresh chat")
	}

	s.Update(1, msgs("hola"))
	got, ok := s.History(1)
	if !ok || len(got) != 1 || got[0].Content != "hola" {
		t.Fatalf("got=%v ok=%v", got, ok)
	}
}

func TestStoreEvictsLeastRecentlyUsed(t *testing.T) {
	s := NewStore(2, time.Minute, 50)
	s.Update(1, msgs("a"))
	s.Update(2, msgs("b"))

	// Touch chat 1 so chat 2 is the eviction candidate.
	if _, ok := s.History(1); !ok {
		t.Fatalf("chat 1 missing")
	}
	s.Update(3, msgs("c"))

	if _, ok := s.History(2); ok {
		t.Fatalf("expected chat 2 evicted")
	}
	if _, ok := s.History(1); !ok {
		t.Fatalf("chat 1 should survive")
	}
	if s.Size() != 2 {
		t.Fatalf("size=%d", s.Size())
	}
}

func TestStoreExpiresByTTL(t *testing.T) {
	s := NewStore(10, 10*time.Millisecond, 50)
	s.Update(1, msgs("a"))
	time.Sleep(20 * time.Millisecond)

	if _, ok := s.History(1); ok {
		t.Fatalf("expected expired session")
	}
}

func TestStoreCleanExpired(t *testing.T) {
	s := NewStore(10, 10*time.Millisecond, 50)
	s.Update(1, msgs("a"))
	s.Update(2, msgs("b"))
	time.Sleep(20 * time.Millisecond)
	s.Update(3, msgs("c"))

	if n := s.CleanExpired(); n != 2 {
		t.Fatalf("cleaned=%d", n)
	}
	if s.Size() != 1 {
		t.Fatalf("size=%d", s.Size())
	}
}

func TestStoreTrimsHistory(t *testing.T) {
	s := NewStore(10, time.Minute, 4)
	long := msgs()
	for i := 0; i < 10; i++ {
		long = append(long, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("m%d", i)})
	}
	s.Update(1, long)

	got, _ := s.History(1)
	if len(got) != 4 {
		t.Fatalf("len=%d", len(got))
	}
	if got[0].Content != "m6" || got[3].Content != "m9" {
		t.Fatalf("expected newest messages kept, got %v..%v", got[0].Content, got[3].Content)
	}
}
