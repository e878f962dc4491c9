package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Conversation struct {
		WindowMax   int `yaml:"window_max"`
		ContextSize int `yaml:"context_size"`
	} `yaml:"conversation"`
	Sentiment struct {
		GoogleAPIKey     string `yaml:"google_api_key"`
		HuggingFaceToken string `yaml:"huggingface_token"`
		HuggingFaceModel string `yaml:"huggingface_model"`
	} `yaml:"sentiment"`
	LLM struct {
		OpenAIKey      string        `yaml:"openai_key"`
		OpenAIModel    string        `yaml:"openai_model"`
		AnthropicKey   string        `yaml:"anthropic_key"`
		AnthropicModel string        `yaml:"anthropic_model"`
		GeminiKey      string        `yaml:"gemini_key"`
		GeminiModel    string        `yaml:"gemini_model"`
		Timeout        time.Duration `yaml:"timeout"`
	} `yaml:"llm"`
	Safety struct {
		PatternsPath string `yaml:"patterns_path"`
	} `yaml:"safety"`
	Database struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`
	Security struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"security"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

func Default() Config {
	var cfg Config
	cfg.HTTP.Addr = ":8080"
	cfg.Conversation.WindowMax = 6
	cfg.Conversation.ContextSize = 3
	cfg.Sentiment.HuggingFaceModel = "distilbert-base-uncased-finetuned-sst-2-english"
	cfg.LLM.OpenAIModel = "gpt-3.5-turbo"
	cfg.LLM.AnthropicModel = "claude-3-haiku-20240307"
	cfg.LLM.GeminiModel = "gemini-pro"
	cfg.LLM.Timeout = 10 * time.Second
	cfg.Log.Level = "info"
	return cfg
}

func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, err
			}
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		}
	}

	applyEnv(&cfg)

	if cfg.Conversation.WindowMax <= 0 {
		return cfg, errors.New("conversation.window_max must be positive")
	}
	if cfg.Conversation.ContextSize <= 0 || cfg.Conversation.ContextSize > cfg.Conversation.WindowMax {
		return cfg, errors.New("conversation.context_size must be in [1, window_max]")
	}
	if cfg.LLM.Timeout <= 0 {
		return cfg, errors.New("llm.timeout must be positive")
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("MM_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("MM_WINDOW_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Conversation.WindowMax = n
		}
	}
	if v := os.Getenv("MM_CONTEXT_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Conversation.ContextSize = n
		}
	}
	if v := os.Getenv("MM_GOOGLE_CLOUD_API_KEY"); v != "" {
		cfg.Sentiment.GoogleAPIKey = v
	}
	if v := os.Getenv("MM_HUGGINGFACE_TOKEN"); v != "" {
		cfg.Sentiment.HuggingFaceToken = v
	}
	if v := os.Getenv("MM_HUGGINGFACE_MODEL"); v != "" {
		cfg.Sentiment.HuggingFaceModel = v
	}
	if v := os.Getenv("MM_OPENAI_API_KEY"); v != "" {
		cfg.LLM.OpenAIKey = v
	}
	if v := os.Getenv("MM_OPENAI_MODEL"); v != "" {
		cfg.LLM.OpenAIModel = v
	}
	if v := os.Getenv("MM_ANTHROPIC_API_KEY"); v != "" {
		cfg.LLM.AnthropicKey = v
	}
	if v := os.Getenv("MM_ANTHROPIC_MODEL"); v != "" {
		cfg.LLM.AnthropicModel = v
	}
	if v := os.Getenv("MM_GEMINI_API_KEY"); v != "" {
		cfg.LLM.GeminiKey = v
	}
	if v := os.Getenv("MM_GEMINI_MODEL"); v != "" {
		cfg.LLM.GeminiModel = v
	}
	if v := os.Getenv("MM_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.LLM.Timeout = d
		}
	}
	if v := os.Getenv("MM_PATTERNS_PATH"); v != "" {
		cfg.Safety.PatternsPath = v
	}
	if v := os.Getenv("MM_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("MM_REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("MM_API_KEY"); v != "" {
		cfg.Security.APIKey = v
	}
	if v := os.Getenv("MM_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(strings.TrimSpace(v))
	}
}
