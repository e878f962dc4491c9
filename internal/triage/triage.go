package triage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mindmate/internal/conversation"
	"mindmate/internal/llm"
	"mindmate/internal/safety"
	"mindmate/internal/sentiment"
	"mindmate/internal/store"
)

const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// mediumThreshold is the sentiment score below which a non-crisis message is
// tagged medium severity.
const mediumThreshold = -0.5

// Result is the sole externally observable output of the pipeline.
type Result struct {
	ConversationID string           `json:"conversation_id"`
	ResponseText   string           `json:"response"`
	Sentiment      sentiment.Result `json:"sentiment"`
	CrisisDetected bool             `json:"crisis_detected"`
	Severity       string           `json:"severity"`
	Resources      []string         `json:"resources"`
	Timestamp      time.Time        `json:"timestamp"`
}

// Sink receives anonymized triage records. Push failures are logged and
// swallowed; logging must never affect the reply path.
type Sink interface {
	Push(ctx context.Context, rec store.TriageRecord) error
}

// NopSink drops records. Used when logging is not configured.
type NopSink struct{}

func (NopSink) Push(context.Context, store.TriageRecord) error { return nil }

// Orchestrator runs the per-message pipeline: crisis detection and sentiment
// always, reply generation only when no crisis was detected.
type Orchestrator struct {
	detector   *safety.Detector
	sentiments *sentiment.Chain
	replies    *llm.Chain
	windows    *conversation.Store
	sink       Sink
	logger     *zap.Logger
	now        func() time.Time
}

func New(detector *safety.Detector, sentiments *sentiment.Chain, replies *llm.Chain, windows *conversation.Store, sink Sink, logger *zap.Logger) *Orchestrator {
	if sink == nil {
		sink = NopSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		detector:   detector,
		sentiments: sentiments,
		replies:    replies,
		windows:    windows,
		sink:       sink,
		logger:     logger,
		now:        time.Now,
	}
}

// Handle triages one inbound message. It never fails outward: any internal
// fault degrades to a minimal neutral result.
func (o *Orchestrator) Handle(ctx context.Context, conversationID, message string) (res Result) {
	start := o.now()

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("triage fault", zap.Any("panic", r))
			res = o.safeFallback(conversationID, start)
		}
	}()

	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	o.windows.Append(conversationID, conversation.Message{
		Role:      conversation.RoleUser,
		Text:      message,
		Timestamp: start,
	})

	// Both always run; they are independent of each other.
	score := o.sentiments.Score(ctx, message)
	crisis := o.detector.Detect(message)

	if crisis {
		res = Result{
			ConversationID: conversationID,
			ResponseText:   safety.CrisisResponse(),
			Sentiment:      score,
			CrisisDetected: true,
			Severity:       SeverityHigh,
			Resources:      safety.CrisisResources(),
			Timestamp:      start,
		}
		o.record(ctx, res, start)
		return res
	}

	reply := o.replies.Generate(ctx, message, o.windows.Context(conversationID), score)
	o.windows.Append(conversationID, conversation.Message{
		Role:      conversation.RoleAssistant,
		Text:      reply,
		Timestamp: o.now(),
	})

	res = Result{
		ConversationID: conversationID,
		ResponseText:   reply,
		Sentiment:      score,
		CrisisDetected: false,
		Severity:       severityFor(false, score.Score),
		Resources:      safety.GeneralResources(),
		Timestamp:      start,
	}
	o.record(ctx, res, start)
	return res
}

func severityFor(crisis bool, score float64) string {
	switch {
	case crisis:
		return SeverityHigh
	case score < mediumThreshold:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func (o *Orchestrator) record(ctx context.Context, res Result, start time.Time) {
	rec := store.TriageRecord{
		ConversationID:      res.ConversationID,
		Timestamp:           res.Timestamp,
		SentimentScore:      res.Sentiment.Score,
		SentimentLabel:      res.Sentiment.Label,
		SentimentConfidence: res.Sentiment.Confidence,
		CrisisDetected:      res.CrisisDetected,
		Severity:            res.Severity,
		LatencyMS:           o.now().Sub(start).Milliseconds(),
	}
	if err := o.sink.Push(ctx, rec); err != nil {
		o.logger.Warn("triage record push failed",
			zap.String("conversation_id", res.ConversationID),
			zap.Error(err))
	}
}

// safeFallback is the degraded result for internal faults: neutral
// sentiment, a canned neutral reply, general resources.
func (o *Orchestrator) safeFallback(conversationID string, start time.Time) Result {
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	neutral := sentiment.Result{
		Provider:   "lexicon",
		Label:      sentiment.LabelNeutral,
		Confidence: 0.6,
	}
	return Result{
		ConversationID: conversationID,
		ResponseText:   llm.Canned(sentiment.LabelNeutral),
		Sentiment:      neutral,
		CrisisDetected: false,
		Severity:       SeverityLow,
		Resources:      safety.GeneralResources(),
		Timestamp:      start,
	}
}
