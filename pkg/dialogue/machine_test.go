package dialogue

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"influencer-scout-be/pkg/llm"
	"influencer-scout-be/pkg/store"
)

type fakeProvider struct {
	reply string
	err   error
	calls [][]llm.Message
}

func (f *fakeProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.calls = append(f.calls, history)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

func newTestMachine(p llm.LLMProvider) *Machine {
	return NewMachine(p, DefaultConfig(), log.New(io.Discard, "", 0))
}

func TestHandleTurnGreetingResets(t *testing.T) {
	p := &fakeProvider{reply: "ok"}
	m := newTestMachine(p)

	sess := &store.Session{ID: "s1", Mode: store.ModeQualifying}
	sess.Append(llm.RoleUser, "old question")
	sess.Append(llm.RoleAssistant, "old answer")
	sess.GroundingContext = "stale dataset"

	res := m.HandleTurn(context.Background(), sess, "Hello!")

	if !res.Reset {
		t.Fatal("expected Reset on greeting")
	}
	if len(sess.Turns) != 1 {
		t.Fatalf("history after greeting = %d turns, want 1", len(sess.Turns))
	}
	if sess.GroundingContext != "" {
		t.Error("greeting should clear grounding context")
	}
	if len(p.calls) != 0 {
		t.Error("greeting must not call the model")
	}
}

func TestHandleTurnEmptyInput(t *testing.T) {
	for _, message := range []string{"", "   ", "\t\n"} {
		p := &fakeProvider{reply: "ok"}
		m := newTestMachine(p)
		sess := &store.Session{ID: "s1"}

		res := m.HandleTurn(context.Background(), sess, message)

		if res.Reply != invalidInputReply {
			t.Errorf("Reply for %q = %q, want invalid input reply", message, res.Reply)
		}
		if len(sess.Turns) != 0 {
			t.Errorf("input %q must not mutate history", message)
		}
		if len(p.calls) != 0 {
			t.Errorf("input %q must not call the model", message)
		}
	}
}

func TestHandleTurnBoundsForwardedHistory(t *testing.T) {
	p := &fakeProvider{reply: "Got it."}
	m := NewMachine(p, Config{MaxHistoryTurns: 2}, log.New(io.Discard, "", 0))

	sess := &store.Session{ID: "s1"}
	for i := 0; i < 3; i++ {
		sess.Append(llm.RoleUser, "requirement")
		sess.Append(llm.RoleAssistant, "noted")
	}

	res := m.HandleTurn(context.Background(), sess, "they should also post daily")

	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(p.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(p.calls))
	}

	// Forwarded: persona + the 2 most recent turns + the pending message.
	sent := p.calls[0]
	if len(sent) != 4 {
		t.Fatalf("forwarded %d messages, want 4", len(sent))
	}
	if sent[0].Role != llm.RoleSystem {
		t.Error("first forwarded message should be the persona")
	}
	if sent[1].Content != "requirement" || sent[2].Content != "noted" {
		t.Errorf("bounded suffix = %q/%q, want the most recent turns", sent[1].Content, sent[2].Content)
	}
	if sent[3].Content != "they should also post daily" {
		t.Errorf("pending message = %q", sent[3].Content)
	}

	// The retained history is never trimmed by the bound.
	if len(sess.Turns) != 8 {
		t.Fatalf("retained history = %d turns, want 8", len(sess.Turns))
	}
}

func TestHandleTurnQualifyAppendsBothTurns(t *testing.T) {
	p := &fakeProvider{reply: "What platform are you targeting?"}
	m := newTestMachine(p)
	sess := &store.Session{ID: "s1"}

	res := m.HandleTurn(context.Background(), sess, "I need beauty influencers")

	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(sess.Turns) != 2 {
		t.Fatalf("history = %d turns, want 2", len(sess.Turns))
	}
	if sess.Turns[0].Role != llm.RoleUser || sess.Turns[1].Role != llm.RoleAssistant {
		t.Error("turns should be user then assistant")
	}
	if res.Reply != "What platform are you targeting?" {
		t.Errorf("Reply = %q", res.Reply)
	}
}

func TestHandleTurnCompletionFailureLeavesHistoryUntouched(t *testing.T) {
	p := &fakeProvider{err: &llm.CompletionError{Provider: "groq", Err: errors.New("rate limited")}}
	m := newTestMachine(p)
	sess := &store.Session{ID: "s1"}
	sess.Append(llm.RoleUser, "first")
	sess.Append(llm.RoleAssistant, "reply")

	res := m.HandleTurn(context.Background(), sess, "second question")

	if res.Err == nil {
		t.Fatal("expected contained error")
	}
	if len(sess.Turns) != 2 {
		t.Fatalf("history grew to %d turns on a failed call, want 2", len(sess.Turns))
	}
	if !strings.Contains(res.Reply, "problem") {
		t.Errorf("failure reply should be apologetic, got %q", res.Reply)
	}
}

func TestHandleTurnClosingConcludes(t *testing.T) {
	p := &fakeProvider{reply: "Glad I could help."}
	m := newTestMachine(p)
	sess := &store.Session{ID: "s1"}
	sess.Append(llm.RoleUser, "tech influencers on TikTok")
	sess.Append(llm.RoleAssistant, "Any location preference?")
	sess.Append(llm.RoleUser, "US only, 50k followers")
	sess.Append(llm.RoleAssistant, "Noted.")

	res := m.HandleTurn(context.Background(), sess, "thanks")

	if !res.Concluded {
		t.Fatal("expected conclusion on closing phrase")
	}
	want := "tech influencers on TikTok US only, 50k followers"
	if res.Summary != want {
		t.Errorf("Summary = %q, want %q", res.Summary, want)
	}
	if !strings.Contains(res.Reply, ProcessReadyMarker) {
		t.Error("concluded reply should carry the process-ready marker")
	}
	if !strings.Contains(res.Reply, want) {
		t.Error("concluded reply should carry the summary text")
	}
}

func TestHandleTurnClosingWithoutHistoryQualifies(t *testing.T) {
	p := &fakeProvider{reply: "What are you looking for?"}
	m := newTestMachine(p)
	sess := &store.Session{ID: "s1"}

	// "ok" as the opener is just a message, not a conclusion.
	res := m.HandleTurn(context.Background(), sess, "ok")

	if res.Concluded {
		t.Fatal("closing phrase with no prior turns must not conclude")
	}
	if len(sess.Turns) != 2 {
		t.Fatalf("history = %d turns, want 2", len(sess.Turns))
	}
}

func TestSummaryIdempotentAcrossClosings(t *testing.T) {
	p := &fakeProvider{reply: "Bye."}
	m := newTestMachine(p)
	sess := &store.Session{ID: "s1"}
	sess.Append(llm.RoleUser, "gaming creators")
	sess.Append(llm.RoleAssistant, "ok")

	first := m.Summary(sess)
	m.HandleTurn(context.Background(), sess, "thanks")
	second := m.Summary(sess)

	if first != second {
		t.Errorf("summary changed after conclusion: %q vs %q", first, second)
	}
}

func TestHandleTurnGroundedUsesDatasetOnly(t *testing.T) {
	p := &fakeProvider{reply: "The top creator is @alice."}
	m := newTestMachine(p)
	sess := &store.Session{
		ID:               "s1",
		Mode:             store.ModeGrounded,
		GroundingContext: "- post_id: \"1\"\n  user_name: alice",
	}
	sess.Append(llm.RoleUser, "old qualifying turn")
	sess.Append(llm.RoleAssistant, "old reply")

	res := m.HandleTurn(context.Background(), sess, "who has the most followers?")

	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(p.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(p.calls))
	}
	sent := p.calls[0]
	if len(sent) != 2 {
		t.Fatalf("grounded call sent %d messages, want system+question", len(sent))
	}
	if !strings.Contains(sent[0].Content, "user_name: alice") {
		t.Error("system message should embed the dataset")
	}
	if sent[1].Content != "who has the most followers?" {
		t.Errorf("question = %q", sent[1].Content)
	}
}

func TestPhraseNormalization(t *testing.T) {
	p := DefaultPhrases()

	tests := []struct {
		message string
		closing bool
	}{
		{"thanks", true},
		{"Thanks!", true},
		{"THANK YOU.", true},
		{"that's all", true},
		{"no thanks needed, keep going", false},
		{"okay, also they should post daily", false},
	}

	for _, tt := range tests {
		if got := p.IsClosing(tt.message); got != tt.closing {
			t.Errorf("IsClosing(%q) = %v, want %v", tt.message, got, tt.closing)
		}
	}
}
