package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadSettings(t *testing.T) {
	tests := []struct {
		name        string
		setupFunc   func(t *testing.T, tmpDir string)
		envVars     map[string]string
		wantDataDir string
		wantModel   string
		wantTimeout time.Duration
		wantAPIKey  string
	}{
		{
			name:        "Default values only",
			wantDataDir: DefaultDataDir,
			wantModel:   DefaultLLMModel,
			wantTimeout: DefaultExecTimeout,
		},
		{
			name: "setting.json overrides defaults",
			setupFunc: func(t *testing.T, tmpDir string) {
				writeFile(t, filepath.Join(tmpDir, "setting.json"),
					`{"data_dir": "/srv/posts", "llm_model": "gpt-4o-mini", "exec_timeout_sec": 30}`)
			},
			wantDataDir: "/srv/posts",
			wantModel:   "gpt-4o-mini",
			wantTimeout: 30 * time.Second,
		},
		{
			name: "Environment overrides setting.json",
			setupFunc: func(t *testing.T, tmpDir string) {
				writeFile(t, filepath.Join(tmpDir, "setting.json"),
					`{"data_dir": "/srv/posts", "llm_model": "gpt-4o-mini"}`)
			},
			envVars: map[string]string{
				"REDRAFT_DATA_DIR":         "/env/posts",
				"REDRAFT_LLM_MODEL":        "env-model",
				"REDRAFT_EXEC_TIMEOUT_SEC": "120",
			},
			wantDataDir: "/env/posts",
			wantModel:   "env-model",
			wantTimeout: 120 * time.Second,
		},
		{
			name: "Key file supplies credential",
			setupFunc: func(t *testing.T, tmpDir string) {
				writeFile(t, filepath.Join(tmpDir, "llm_api-key.md"),
					"# llm credentials\napi_key=\"sk-test-123\"\nmodel=\"from-key-file\"\n")
			},
			wantDataDir: DefaultDataDir,
			wantModel:   "from-key-file",
			wantTimeout: DefaultExecTimeout,
			wantAPIKey:  "sk-test-123",
		},
		{
			name: "setting.json beats key file for the model",
			setupFunc: func(t *testing.T, tmpDir string) {
				writeFile(t, filepath.Join(tmpDir, "setting.json"), `{"llm_model": "explicit"}`)
				writeFile(t, filepath.Join(tmpDir, "llm_api-key.md"),
					"api_key=\"sk-test-123\"\nmodel=\"from-key-file\"\n")
			},
			wantDataDir: DefaultDataDir,
			wantModel:   "explicit",
			wantTimeout: DefaultExecTimeout,
			wantAPIKey:  "sk-test-123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			if tt.setupFunc != nil {
				tt.setupFunc(t, tmpDir)
			}
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			s, err := LoadSettings(tmpDir)
			if err != nil {
				t.Fatalf("LoadSettings failed: %v", err)
			}
			if s.DataDir != tt.wantDataDir {
				t.Errorf("DataDir = %q, want %q", s.DataDir, tt.wantDataDir)
			}
			if s.LLM.Model != tt.wantModel {
				t.Errorf("LLM.Model = %q, want %q", s.LLM.Model, tt.wantModel)
			}
			if s.ExecTimeout != tt.wantTimeout {
				t.Errorf("ExecTimeout = %v, want %v", s.ExecTimeout, tt.wantTimeout)
			}
			if s.LLM.APIKey != tt.wantAPIKey {
				t.Errorf("LLM.APIKey = %q, want %q", s.LLM.APIKey, tt.wantAPIKey)
			}
		})
	}
}

func TestLoadSettingsBrokenJSON(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "setting.json"), "{not json")

	if _, err := LoadSettings(tmpDir); err == nil {
		t.Fatal("expected error for malformed setting.json")
	}
}

func TestParseKeyFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "keys.md")
	writeFile(t, path, `# comment line
api_key="sk-abc"
base_url='https://example.test'
model = plain-value

garbage line without equals
`)

	kv := ParseKeyFile(path)
	if kv["api_key"] != "sk-abc" {
		t.Errorf("api_key = %q", kv["api_key"])
	}
	if kv["base_url"] != "https://example.test" {
		t.Errorf("base_url = %q", kv["base_url"])
	}
	if kv["model"] != "plain-value" {
		t.Errorf("model = %q", kv["model"])
	}
	if _, ok := kv["garbage line without equals"]; ok {
		t.Error("lines without '=' should be skipped")
	}
}

func TestParseKeyFileMissing(t *testing.T) {
	kv := ParseKeyFile(filepath.Join(t.TempDir(), "absent.md"))
	if len(kv) != 0 {
		t.Errorf("missing file should yield empty map, got %v", kv)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
