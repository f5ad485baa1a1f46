package session

import (
	"testing"
	"time"

	"github.com/answercue/answercue/internal/match"
)

func TestRecentQuestionsSeen(t *testing.T) {
	r := NewRecentQuestions(match.New(), 10, time.Minute)
	r.Add("What are your strengths?")

	if !r.Seen("What are your strengths?") {
		t.Error("exact repeat not seen")
	}
	if !r.Seen("what are your strengths") {
		t.Error("normalized repeat not seen")
	}
	if r.Seen("Where do you see yourself in five years?") {
		t.Error("unrelated question reported as seen")
	}
}

func TestRecentQuestionsSizeEviction(t *testing.T) {
	questions := []string{
		"What are your strengths?",
		"Why do you want to work here?",
		"Tell me about a conflict with a coworker.",
		"How do you handle tight deadlines?",
		"Where do you see yourself in five years?",
	}
	r := NewRecentQuestions(match.New(), 3, time.Minute)
	for _, q := range questions {
		r.Add(q)
	}
	if got := r.Len(); got != 3 {
		t.Errorf("len = %d, want 3", got)
	}
	if r.Seen(questions[0]) {
		t.Error("oldest question should have been evicted")
	}
	if !r.Seen(questions[4]) {
		t.Error("newest question missing")
	}
}

func TestRecentQuestionsAgeEviction(t *testing.T) {
	r := NewRecentQuestions(match.New(), 10, 20*time.Millisecond)
	r.Add("What are your strengths?")
	time.Sleep(40 * time.Millisecond)

	if r.Seen("What are your strengths?") {
		t.Error("expired question still seen")
	}
	r.Add("Why this company?")
	if got := r.Len(); got != 1 {
		t.Errorf("len after age eviction = %d, want 1", got)
	}
}

func TestRecentQuestionsReset(t *testing.T) {
	r := NewRecentQuestions(match.New(), 10, time.Minute)
	r.Add("What are your strengths?")
	r.Reset()

	if r.Len() != 0 {
		t.Errorf("len after reset = %d, want 0", r.Len())
	}
	if r.Seen("What are your strengths?") {
		t.Error("question survived reset")
	}
}
