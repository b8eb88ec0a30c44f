package config

import (
	"slices"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Log         LogConfig         `yaml:"log"`
	CORS        CORSConfig        `yaml:"cors"`
	Translation TranslationConfig `yaml:"translation"`
	Provider    ProviderConfig    `yaml:"provider"`
	Events      EventsConfig      `yaml:"events"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type,X-Request-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"45s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings. An empty DSN keeps
// confirmed cards in memory.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	AutoMigrate     bool          `yaml:"auto_migrate"       env:"DATABASE_AUTO_MIGRATE"       env-default:"false"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// TranslationConfig holds the request lifecycle and retry parameters.
type TranslationConfig struct {
	NativeLanguage string        `yaml:"native_language" env:"TRANSLATION_NATIVE_LANGUAGE"`
	TargetLanguage string        `yaml:"target_language" env:"TRANSLATION_TARGET_LANGUAGE"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"TRANSLATION_REQUEST_TIMEOUT" env-default:"15s"`
	MaxAttempts    int           `yaml:"max_attempts"    env:"TRANSLATION_MAX_ATTEMPTS"    env-default:"5"`
	BaseDelay      time.Duration `yaml:"base_delay"      env:"TRANSLATION_BASE_DELAY"      env-default:"500ms"`
	DelayStep      time.Duration `yaml:"delay_step"      env:"TRANSLATION_DELAY_STEP"      env-default:"500ms"`
	MaxDelay       time.Duration `yaml:"max_delay"       env:"TRANSLATION_MAX_DELAY"       env-default:"2500ms"`
}

// HasDefaultPair reports whether a language pair is configured at startup.
func (c TranslationConfig) HasDefaultPair() bool {
	return c.NativeLanguage != "" && c.TargetLanguage != ""
}

// Provider kinds.
const (
	ProviderRemote = "remote"
	ProviderLLM    = "llm"
	ProviderStub   = "stub"
)

// ProviderConfig selects and configures the translation capability.
type ProviderConfig struct {
	Kind         string        `yaml:"kind"          env:"PROVIDER_KIND"          env-default:"stub"`
	BaseURL      string        `yaml:"base_url"      env:"PROVIDER_BASE_URL"`
	APIKey       string        `yaml:"api_key"       env:"PROVIDER_API_KEY"`
	HTTPTimeout  time.Duration `yaml:"http_timeout"  env:"PROVIDER_HTTP_TIMEOUT"  env-default:"10s"`
	LLMModel     string        `yaml:"llm_model"     env:"PROVIDER_LLM_MODEL"     env-default:"claude-3-5-haiku-latest"`
	LanguagesRaw string        `yaml:"languages"     env:"PROVIDER_LANGUAGES"     env-default:"en,de,fr,es,it,pt,ru,ja,ko,zh"`

	// Languages is parsed from LanguagesRaw during validation.
	Languages []string `yaml:"-" env:"-"`
}

// SupportsLanguage reports whether code is in the configured language list.
func (c ProviderConfig) SupportsLanguage(code string) bool {
	return slices.Contains(c.Languages, code)
}

// EventsConfig holds the UI event buffer settings.
type EventsConfig struct {
	BufferSize int           `yaml:"buffer_size" env:"EVENTS_BUFFER_SIZE" env-default:"500"`
	MaxWait    time.Duration `yaml:"max_wait"    env:"EVENTS_MAX_WAIT"    env-default:"25s"`
}
