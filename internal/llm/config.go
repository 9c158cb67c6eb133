package llm

import (
	"os"
	"strconv"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	// TaskOutline is director-mode chapter outline generation.
	TaskOutline TaskType = "outline"
	// TaskDialogs is screenwriter-mode chapter dialog generation.
	TaskDialogs TaskType = "dialogs"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// Config holds all configuration for the LLM subsystem.
type Config struct {
	Endpoint string
	Model    string
	APIKey   string
	// TimeoutMs bounds a single request when the task has no override.
	TimeoutMs int
	LogCalls  bool
	Tasks     map[TaskType]TaskConfig
}

// DefaultConfig returns a Config targeting the GLM open platform with
// sensible per-task parameters.
func DefaultConfig() Config {
	return Config{
		Endpoint:  "https://open.bigmodel.cn/api/paas/v4",
		Model:     "glm-4.7",
		TimeoutMs: 45000,
		LogCalls:  false,
		Tasks: map[TaskType]TaskConfig{
			TaskOutline: {Temperature: 0.7, MaxTokens: 8000, TimeoutMs: 60000},
			TaskDialogs: {Temperature: 0.7, MaxTokens: 8000, TimeoutMs: 60000},
		},
	}
}

// LoadConfig reads LLM configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("FABULA_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("FABULA_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("FABULA_LLM_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("FABULA_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("FABULA_LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}

	applyTaskTimeoutEnv(&cfg, TaskOutline, "FABULA_LLM_OUTLINE_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskDialogs, "FABULA_LLM_DIALOGS_TIMEOUT_MS")

	return cfg
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c Config) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

func applyTaskTimeoutEnv(cfg *Config, task TaskType, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	tc := cfg.Tasks[task]
	tc.TimeoutMs = n
	cfg.Tasks[task] = tc
}
