package config

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// EvidenceConfig controls the evidence command.
type EvidenceConfig struct {
	K            int    `mapstructure:"k"`
	OutputDir    string `mapstructure:"output_dir"`    // where evidence_<query>.jsonl lands when --out is omitted
	SummaryTitle string `mapstructure:"summary_title"` // supports {.Query} and {.CurrentDate}
}

// PackConfig controls the analytics pack build.
type PackConfig struct {
	TopN        int    `mapstructure:"top_n"`
	Title       string `mapstructure:"title"` // supports {.CurrentDate}
	XLSX        bool   `mapstructure:"xlsx"`
	Charts      *bool  `mapstructure:"charts"` // nil means enabled
	WebPQuality int    `mapstructure:"webp_quality"`
}

// TopicsConfig points at a topic definitions file; empty uses the built-in set.
type TopicsConfig struct {
	File string `mapstructure:"file"`
}

// OpenAIConfig configures the optional evidence summary.
type OpenAIConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	BaseURL  string `mapstructure:"base_url"`
	Language string `mapstructure:"language"`
}

// Config is the top-level configuration structure.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Evidence EvidenceConfig `mapstructure:"evidence"`
	Pack     PackConfig     `mapstructure:"pack"`
	Topics   TopicsConfig   `mapstructure:"topics"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
}

// ChartsEnabled reports whether the pack should include charts.
func (p PackConfig) ChartsEnabled() bool {
	return p.Charts == nil || *p.Charts
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Evidence.K <= 0 {
		c.Evidence.K = 60
	}
	if c.Evidence.OutputDir == "" {
		c.Evidence.OutputDir = "."
	}
	if c.Evidence.SummaryTitle == "" {
		c.Evidence.SummaryTitle = "Evidence summary: {.Query}"
	}
	if c.Pack.TopN <= 0 {
		c.Pack.TopN = 300
	}
	if c.Pack.Title == "" {
		c.Pack.Title = "Thread Knowledge Pack"
	}
	if c.Pack.WebPQuality <= 0 || c.Pack.WebPQuality > 100 {
		c.Pack.WebPQuality = 90
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.OpenAI.Language == "" {
		c.OpenAI.Language = "English"
	}
}
