package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// RawSettings mirrors the structure of <home>/setting.json.
// Pointer fields distinguish "absent" from "zero".
type RawSettings struct {
	DataDir *string `json:"data_dir"`

	LLMModel   *string `json:"llm_model"`
	LLMAPIKey  *string `json:"llm_api_key"`
	LLMBaseURL *string `json:"llm_base_url"`

	NewsBaseURL *string `json:"news_base_url"`
	NewsQuery   *string `json:"news_query"`

	ImageBaseURL *string `json:"image_base_url"`
	ImageAPIKey  *string `json:"image_api_key"`
	AutoImage    *bool   `json:"auto_image"`

	AutomationBin  *string `json:"automation_bin"`
	ExecTimeoutSec *int    `json:"exec_timeout_sec"`
	LoginHoldSec   *int    `json:"login_hold_sec"`

	BodyMinChars *int    `json:"body_min_chars"`
	StderrLevel  *string `json:"stderr_level"`
}

// LoadSettings loads configuration for the given home directory.
// Priority: environment > setting.json > key files > defaults.
func LoadSettings(home string) (*Settings, error) {
	s := NewDefaultSettings()
	if home != "" {
		s.Home = home
	}

	raw := &RawSettings{}
	jsonPath := filepath.Join(s.Home, "setting.json")
	if data, err := os.ReadFile(jsonPath); err == nil {
		if err := json.Unmarshal(data, raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", jsonPath, err)
		}
	}

	applyRaw(s, raw)

	// llm_api-key.md keeps credentials out of setting.json
	if s.LLM.APIKey == "" {
		kv := ParseKeyFile(filepath.Join(s.Home, "llm_api-key.md"))
		if v := kv["api_key"]; v != "" {
			s.LLM.APIKey = v
		}
		if v := kv["model"]; v != "" && raw.LLMModel == nil {
			s.LLM.Model = v
		}
		if v := kv["base_url"]; v != "" && raw.LLMBaseURL == nil {
			s.LLM.BaseURL = v
		}
	}
	if s.ImageAPIKey == "" {
		kv := ParseKeyFile(filepath.Join(s.Home, "pexels_api-key.md"))
		if v := kv["api_key"]; v != "" {
			s.ImageAPIKey = v
		}
	}

	applyEnv(s)
	return s, nil
}

func applyRaw(s *Settings, raw *RawSettings) {
	if raw.DataDir != nil {
		s.DataDir = *raw.DataDir
	}
	if raw.LLMModel != nil {
		s.LLM.Model = *raw.LLMModel
	}
	if raw.LLMAPIKey != nil {
		s.LLM.APIKey = *raw.LLMAPIKey
	}
	if raw.LLMBaseURL != nil {
		s.LLM.BaseURL = *raw.LLMBaseURL
	}
	if raw.NewsBaseURL != nil {
		s.NewsBaseURL = *raw.NewsBaseURL
	}
	if raw.NewsQuery != nil {
		s.NewsQuery = *raw.NewsQuery
	}
	if raw.ImageBaseURL != nil {
		s.ImageBaseURL = *raw.ImageBaseURL
	}
	if raw.ImageAPIKey != nil {
		s.ImageAPIKey = *raw.ImageAPIKey
	}
	if raw.AutoImage != nil {
		s.AutoImage = *raw.AutoImage
	}
	if raw.AutomationBin != nil {
		s.AutomationBin = *raw.AutomationBin
	}
	if raw.ExecTimeoutSec != nil {
		s.ExecTimeout = time.Duration(*raw.ExecTimeoutSec) * time.Second
	}
	if raw.LoginHoldSec != nil {
		s.LoginHold = time.Duration(*raw.LoginHoldSec) * time.Second
	}
	if raw.BodyMinChars != nil {
		s.BodyMinChars = *raw.BodyMinChars
	}
	if raw.StderrLevel != nil {
		s.StderrLevel = *raw.StderrLevel
	}
}

func applyEnv(s *Settings) {
	get := func(k string) string { return strings.TrimSpace(os.Getenv(k)) }

	if v := get("REDRAFT_DATA_DIR"); v != "" {
		s.DataDir = v
	}
	if v := get("REDRAFT_LLM_MODEL"); v != "" {
		s.LLM.Model = v
	}
	if v := get("REDRAFT_LLM_API_KEY"); v != "" {
		s.LLM.APIKey = v
	}
	if v := get("REDRAFT_LLM_BASE_URL"); v != "" {
		s.LLM.BaseURL = v
	}
	if v := get("REDRAFT_NEWS_BASE_URL"); v != "" {
		s.NewsBaseURL = v
	}
	if v := get("REDRAFT_IMAGE_API_KEY"); v != "" {
		s.ImageAPIKey = v
	}
	if v := get("REDRAFT_AUTO_IMAGE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			s.AutoImage = b
		}
	}
	if v := get("REDRAFT_AUTOMATION_BIN"); v != "" {
		s.AutomationBin = v
	}
	if v := get("REDRAFT_EXEC_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			s.ExecTimeout = time.Duration(n) * time.Second
		}
	}
	if v := get("REDRAFT_STDERR_LEVEL"); v != "" {
		s.StderrLevel = v
	}
}

// ParseKeyFile reads a simple credentials file with lines like:
//
//	base_url="https://..."
//	model="deepseek/deepseek-v3-0324"
//	api_key="sk-..."
//
// Missing files yield an empty map.
func ParseKeyFile(path string) map[string]string {
	out := map[string]string{}
	data, err := os.ReadFile(path)
	if err != nil {
		return out
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		v = strings.Trim(v, `"'`)
		out[strings.TrimSpace(k)] = v
	}
	return out
}
