package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"mindmate/internal/api"
	"mindmate/internal/config"
	"mindmate/internal/conversation"
	"mindmate/internal/llm"
	"mindmate/internal/queue"
	"mindmate/internal/safety"
	"mindmate/internal/sentiment"
	"mindmate/internal/store"
	"mindmate/internal/triage"
)

type App struct {
	Config       config.Config
	Detector     *safety.Detector
	Sentiments   *sentiment.Chain
	Replies      *llm.Chain
	Windows      *conversation.Store
	Orchestrator *triage.Orchestrator
	Store        *store.Store
	Queue        *queue.Queue
	Logger       *zap.Logger
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	lib, err := safety.LoadLibrary(cfg.Safety.PatternsPath)
	if err != nil {
		return nil, err
	}
	detector, err := safety.NewDetector(lib, logger)
	if err != nil {
		return nil, err
	}

	sentiments := sentiment.NewChain(selectSentimentProviders(cfg), cfg.LLM.Timeout, logger)
	replies := llm.NewChain(selectGenerationProviders(cfg, logger), cfg.LLM.Timeout, logger)
	windows := conversation.NewStore(cfg.Conversation.WindowMax, cfg.Conversation.ContextSize)

	a := &App{
		Config:     cfg,
		Detector:   detector,
		Sentiments: sentiments,
		Replies:    replies,
		Windows:    windows,
		Logger:     logger,
	}

	if cfg.Database.DSN != "" {
		st, err := store.Open(cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx, st.DB()); err != nil {
			return nil, err
		}
		a.Store = st
	}

	var sink triage.Sink = triage.NopSink{}
	if cfg.Redis.URL != "" {
		q, err := queue.New(cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		a.Queue = q
		sink = q
	}

	a.Orchestrator = triage.New(detector, sentiments, replies, windows, sink, logger)

	logger.Info("pipeline configured",
		zap.Strings("sentiment_providers", sentiments.Providers()),
		zap.Strings("generation_providers", replies.Providers()),
		zap.Bool("log_store", a.Store != nil),
		zap.Bool("log_queue", a.Queue != nil))

	return a, nil
}

func (a *App) Close() error {
	var err error
	if a.Store != nil {
		err = a.Store.Close()
	}
	if a.Queue != nil {
		_ = a.Queue.Close()
	}
	return err
}

func (a *App) Serve(ctx context.Context) error {
	var ready []api.Pinger
	if a.Store != nil {
		ready = append(ready, a.Store)
	}
	if a.Queue != nil {
		ready = append(ready, a.Queue)
	}

	handler, err := api.NewHandler(a.Config, a.Orchestrator, a.Windows, ready, a.Logger)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              a.Config.HTTP.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	return srv.ListenAndServe()
}

// LogWorker drains queued triage records into the store until ctx ends.
func (a *App) LogWorker(ctx context.Context) error {
	if a.Queue == nil {
		return errors.New("log worker requires redis.url")
	}
	if a.Store == nil {
		return errors.New("log worker requires database.dsn")
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		rec, err := a.Queue.Pop(ctx, 5*time.Second)
		if err != nil {
			continue
		}
		if err := a.Store.InsertRecord(ctx, rec); err != nil {
			a.Logger.Warn("triage record insert failed",
				zap.String("conversation_id", rec.ConversationID),
				zap.Error(err))
		}
	}
}

func selectSentimentProviders(cfg config.Config) []sentiment.Provider {
	var providers []sentiment.Provider
	if cfg.Sentiment.GoogleAPIKey != "" {
		providers = append(providers, sentiment.NewGoogleNL(cfg.Sentiment.GoogleAPIKey))
	}
	if cfg.Sentiment.HuggingFaceToken != "" {
		providers = append(providers, sentiment.NewHuggingFace(cfg.Sentiment.HuggingFaceToken, cfg.Sentiment.HuggingFaceModel))
	}
	return providers
}

func selectGenerationProviders(cfg config.Config, logger *zap.Logger) []llm.Provider {
	var providers []llm.Provider
	if cfg.LLM.OpenAIKey != "" {
		providers = append(providers, llm.NewOpenAI(cfg.LLM.OpenAIKey, cfg.LLM.OpenAIModel))
	}
	if cfg.LLM.AnthropicKey != "" {
		providers = append(providers, llm.NewAnthropic(cfg.LLM.AnthropicKey, cfg.LLM.AnthropicModel))
	}
	if cfg.LLM.GeminiKey != "" {
		gemini, err := llm.NewGemini(cfg.LLM.GeminiKey, cfg.LLM.GeminiModel)
		if err != nil {
			logger.Warn("gemini provider unavailable", zap.Error(err))
		} else {
			providers = append(providers, gemini)
		}
	}
	return providers
}
