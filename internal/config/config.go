// Package config assembles the process configuration: required secrets
// from the environment plus optional tunables from a YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

const (
	defaultHistoryFile    = "recipe_history.json"
	defaultRetentionDays  = 14
	defaultHistoryWindow  = 14
	defaultMaxChunk       = 4000
	defaultRequestTimeout = 25 * time.Second
	defaultCandidateDelay = 750 * time.Millisecond
	defaultChunkDelay     = 500 * time.Millisecond
	defaultBaseURL        = "https://generativelanguage.googleapis.com/v1beta"
	defaultLogLevel       = "info"
)

// defaultFallbackModels is the static candidate list used when the
// provider's model listing is unavailable or yields nothing usable.
var defaultFallbackModels = []string{
	"gemini-2.0-flash",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
	"gemini-pro",
}

// Config is built once at startup and passed by reference into the run
// controller; components never read the environment themselves.
type Config struct {
	GeminiAPIKey string
	BotToken     string
	ChatID       int64

	HistoryFile   string
	RetentionDays int
	// HistoryWindow is how many recent records feed the prompt's
	// avoid-repetition block.
	HistoryWindow int

	ActiveDays map[time.Weekday]bool

	MaxChunk       int
	RequestTimeout time.Duration
	CandidateDelay time.Duration
	ChunkDelay     time.Duration

	FallbackModels []string
	GeminiBaseURL  string

	LogLevel string
}

// fileConfig is the YAML tunables shape. All durations are Go duration
// strings (e.g. "500ms", "25s").
type fileConfig struct {
	HistoryFile    string   `yaml:"history_file"`
	RetentionDays  int      `yaml:"retention_days"`
	HistoryWindow  int      `yaml:"history_window"`
	ActiveDays     []string `yaml:"active_days"`
	MaxChunk       int      `yaml:"max_chunk"`
	RequestTimeout string   `yaml:"request_timeout"`
	CandidateDelay string   `yaml:"candidate_delay"`
	ChunkDelay     string   `yaml:"chunk_delay"`
	FallbackModels []string `yaml:"fallback_models"`
	GeminiBaseURL  string   `yaml:"gemini_base_url"`
	LogLevel       string   `yaml:"log_level"`
}

// Load builds the configuration from the environment and, when path is
// non-empty, a YAML tunables file. Missing secrets are fatal; a missing
// tunables file is fatal too because the operator asked for it.
func Load(path string) (*Config, error) {
	cfg := &Config{
		HistoryFile:    defaultHistoryFile,
		RetentionDays:  defaultRetentionDays,
		HistoryWindow:  defaultHistoryWindow,
		ActiveDays:     weekdaySet(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday),
		MaxChunk:       defaultMaxChunk,
		RequestTimeout: defaultRequestTimeout,
		CandidateDelay: defaultCandidateDelay,
		ChunkDelay:     defaultChunkDelay,
		FallbackModels: append([]string(nil), defaultFallbackModels...),
		GeminiBaseURL:  defaultBaseURL,
		LogLevel:       defaultLogLevel,
	}

	if err := cfg.fromEnv(); err != nil {
		return nil, err
	}
	if path != "" {
		if err := cfg.fromFile(path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (c *Config) fromEnv() error {
	var missing []string

	c.GeminiAPIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if c.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	c.BotToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	if c.BotToken == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}

	rawChat := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID"))
	if rawChat == "" {
		missing = append(missing, "TELEGRAM_CHAT_ID")
	} else {
		id, err := strconv.ParseInt(rawChat, 10, 64)
		if err != nil {
			return fmt.Errorf("TELEGRAM_CHAT_ID: invalid chat id %q: %w", rawChat, err)
		}
		c.ChatID = id
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) fromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if fc.HistoryFile != "" {
		c.HistoryFile = fc.HistoryFile
	}
	if fc.RetentionDays > 0 {
		c.RetentionDays = fc.RetentionDays
	}
	if fc.HistoryWindow > 0 {
		c.HistoryWindow = fc.HistoryWindow
	}
	if len(fc.ActiveDays) > 0 {
		days, err := parseWeekdays(fc.ActiveDays)
		if err != nil {
			return fmt.Errorf("active_days: %w", err)
		}
		c.ActiveDays = days
	}
	if fc.MaxChunk > 0 {
		c.MaxChunk = fc.MaxChunk
	}

	if c.RequestTimeout, err = parseDurationOrDefault("request_timeout", fc.RequestTimeout, defaultRequestTimeout); err != nil {
		return err
	}
	if c.CandidateDelay, err = parseDurationOrDefault("candidate_delay", fc.CandidateDelay, defaultCandidateDelay); err != nil {
		return err
	}
	if c.ChunkDelay, err = parseDurationOrDefault("chunk_delay", fc.ChunkDelay, defaultChunkDelay); err != nil {
		return err
	}

	if len(fc.FallbackModels) > 0 {
		c.FallbackModels = append([]string(nil), fc.FallbackModels...)
	}
	if fc.GeminiBaseURL != "" {
		c.GeminiBaseURL = strings.TrimRight(fc.GeminiBaseURL, "/")
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	return nil
}

func weekdaySet(days ...time.Weekday) map[time.Weekday]bool {
	m := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		m[d] = true
	}
	return m
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWeekdays(names []string) (map[time.Weekday]bool, error) {
	m := make(map[time.Weekday]bool, len(names))
	for _, n := range names {
		d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", n)
		}
		m[d] = true
	}
	return m, nil
}

func parseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}
