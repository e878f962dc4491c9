package triage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"mindmate/internal/conversation"
	"mindmate/internal/llm"
	"mindmate/internal/safety"
	"mindmate/internal/sentiment"
	"mindmate/internal/store"
)

type countingGen struct {
	calls int
	text  string
	err   error
}

func (g *countingGen) Name() string { return "counting" }

func (g *countingGen) Generate(context.Context, string) (string, error) {
	g.calls++
	return g.text, g.err
}

type captureSink struct {
	records []store.TriageRecord
	err     error
}

func (s *captureSink) Push(_ context.Context, rec store.TriageRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, rec)
	return nil
}

func newOrchestrator(t *testing.T, gen llm.Provider, sink Sink) (*Orchestrator, *conversation.Store) {
	t.Helper()
	detector, err := safety.NewDetector(safety.DefaultLibrary(), nil)
	if err != nil {
		t.Fatalf("detector: %v", err)
	}
	var gens []llm.Provider
	if gen != nil {
		gens = append(gens, gen)
	}
	windows := conversation.NewStore(6, 3)
	o := New(
		detector,
		sentiment.NewChain(nil, time.Second, nil),
		llm.NewChain(gens, time.Second, nil),
		windows,
		sink,
		nil,
	)
	return o, windows
}

func TestCrisisShortCircuitsReplyChain(t *testing.T) {
	gen := &countingGen{text: "should never appear"}
	sink := &captureSink{}
	o, windows := newOrchestrator(t, gen, sink)

	res := o.Handle(context.Background(), "conv-1", "I want to kill myself")

	if !res.CrisisDetected {
		t.Fatalf("expected crisis detection")
	}
	if gen.calls != 0 {
		t.Fatalf("reply chain invoked on crisis: %d calls", gen.calls)
	}
	if !strings.Contains(res.ResponseText, "988") || !strings.Contains(res.ResponseText, "911") {
		t.Fatalf("crisis response missing hotline numbers")
	}
	if len(res.Resources) == 0 {
		t.Fatalf("crisis resources must not be empty")
	}
	if res.Severity != SeverityHigh {
		t.Fatalf("expected high severity, got %q", res.Severity)
	}
	// User message is kept; the crisis reply is not appended.
	if got := windows.Len("conv-1"); got != 1 {
		t.Fatalf("expected window length 1, got %d", got)
	}
}

func TestNormalFlowAppendsBothMessages(t *testing.T) {
	gen := &countingGen{text: "I'm here with you."}
	o, windows := newOrchestrator(t, gen, &captureSink{})

	res := o.Handle(context.Background(), "conv-1", "I had an okay day")

	if res.CrisisDetected {
		t.Fatalf("unexpected crisis")
	}
	if res.ResponseText != "I'm here with you." {
		t.Fatalf("unexpected reply %q", res.ResponseText)
	}
	if gen.calls != 1 {
		t.Fatalf("expected one generation call, got %d", gen.calls)
	}
	history, _ := windows.History("conv-1")
	if len(history) != 2 {
		t.Fatalf("expected user+assistant in window, got %d", len(history))
	}
	if history[0].Role != conversation.RoleUser || history[1].Role != conversation.RoleAssistant {
		t.Fatalf("unexpected roles %q/%q", history[0].Role, history[1].Role)
	}
	if len(res.Resources) == 0 {
		t.Fatalf("general resources must not be empty")
	}
}

func TestTotalOutageYieldsCannedPositive(t *testing.T) {
	gen := &countingGen{err: errors.New("provider down")}
	o, _ := newOrchestrator(t, gen, &captureSink{})

	res := o.Handle(context.Background(), "conv-1", "I'm feeling great today!")

	if res.CrisisDetected {
		t.Fatalf("unexpected crisis")
	}
	if res.Sentiment.Label != sentiment.LabelPositive {
		t.Fatalf("expected positive sentiment, got %+v", res.Sentiment)
	}
	if res.ResponseText != llm.Canned(sentiment.LabelPositive) {
		t.Fatalf("expected positive canned template, got %q", res.ResponseText)
	}
}

func TestSeverityTags(t *testing.T) {
	cases := []struct {
		crisis bool
		score  float64
		want   string
	}{
		{true, 0, SeverityHigh},
		{false, -0.7, SeverityMedium},
		{false, -0.5, SeverityLow},
		{false, -0.2, SeverityLow},
		{false, 0.7, SeverityLow},
	}
	for _, tc := range cases {
		if got := severityFor(tc.crisis, tc.score); got != tc.want {
			t.Errorf("severityFor(%v, %v) = %q, want %q", tc.crisis, tc.score, got, tc.want)
		}
	}
}

func TestMintsConversationID(t *testing.T) {
	o, _ := newOrchestrator(t, &countingGen{text: "hello"}, &captureSink{})
	res := o.Handle(context.Background(), "", "just checking in")
	if res.ConversationID == "" {
		t.Fatalf("expected minted conversation id")
	}
}

func TestRecordsPushedToSink(t *testing.T) {
	sink := &captureSink{}
	o, _ := newOrchestrator(t, &countingGen{text: "hello"}, sink)

	o.Handle(context.Background(), "conv-1", "I hate this terrible awful day")

	if len(sink.records) != 1 {
		t.Fatalf("expected one record, got %d", len(sink.records))
	}
	rec := sink.records[0]
	if rec.ConversationID != "conv-1" {
		t.Fatalf("unexpected conversation id %q", rec.ConversationID)
	}
	if rec.SentimentLabel != sentiment.LabelNegative {
		t.Fatalf("expected negative label, got %q", rec.SentimentLabel)
	}
	if rec.Severity != SeverityMedium {
		t.Fatalf("expected medium severity for score %v, got %q", rec.SentimentScore, rec.Severity)
	}
	if rec.CrisisDetected {
		t.Fatalf("unexpected crisis flag")
	}
}

func TestSinkFailureDoesNotAffectReply(t *testing.T) {
	sink := &captureSink{err: errors.New("redis down")}
	o, _ := newOrchestrator(t, &countingGen{text: "still fine"}, sink)

	res := o.Handle(context.Background(), "conv-1", "hello there")
	if res.ResponseText != "still fine" {
		t.Fatalf("sink failure leaked into reply: %q", res.ResponseText)
	}
}

func TestWindowStaysBoundedAcrossMessages(t *testing.T) {
	o, windows := newOrchestrator(t, &countingGen{text: "ok"}, &captureSink{})

	for i := 0; i < 7; i++ {
		o.Handle(context.Background(), "conv-1", "message number "+strings.Repeat("x", i+1))
	}

	if got := windows.Len("conv-1"); got != 6 {
		t.Fatalf("window length %d, want 6", got)
	}
	// The first user message has been evicted from the context suffix.
	for _, msg := range windows.Context("conv-1") {
		if msg.Text == "message number x" {
			t.Fatalf("oldest message still visible in context")
		}
	}
}
