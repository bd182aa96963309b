package cli

import "testing"

func TestOutputMode(t *testing.T) {
	tests := []struct {
		name  string
		mode  OutputMode
		tty   bool
		plain bool
		json  bool
	}{
		{"ModeTTY", ModeTTY, true, false, false},
		{"ModePlain", ModePlain, false, true, false},
		{"ModeJSON", ModeJSON, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Mode: tt.mode}
			if got := cfg.IsTTY(); got != tt.tty {
				t.Errorf("IsTTY() = %v, want %v", got, tt.tty)
			}
			if got := cfg.IsPlain(); got != tt.plain {
				t.Errorf("IsPlain() = %v, want %v", got, tt.plain)
			}
			if got := cfg.IsJSON(); got != tt.json {
				t.Errorf("IsJSON() = %v, want %v", got, tt.json)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Writer == nil {
		t.Error("Writer should not be nil")
	}
	if cfg.Width <= 0 {
		t.Error("Width should be positive")
	}
}

func TestPlainModeFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		noColor string
		term    string
	}{
		{"NO_COLOR", "1", "xterm-256color"},
		{"TERM=dumb", "", "dumb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.noColor)
			t.Setenv("TERM", tt.term)

			if cfg := DefaultConfig(); cfg.Mode != ModePlain {
				t.Errorf("Mode = %v, want ModePlain", cfg.Mode)
			}
		})
	}
}

func TestNewConfigWithMode(t *testing.T) {
	if cfg := NewConfigWithMode(ModeJSON); !cfg.IsJSON() {
		t.Errorf("Mode = %v, want ModeJSON", cfg.Mode)
	}
}

func TestSetDefault(t *testing.T) {
	original := defaultCfg
	defer func() { defaultCfg = original }()

	custom := &Config{Mode: ModeJSON, Width: 120}
	SetDefault(custom)

	if got := Default(); got != custom {
		t.Error("SetDefault did not set the default config")
	}
	if EnableColors() {
		t.Error("EnableColors() should return false in JSON mode")
	}

	SetDefault(&Config{Mode: ModeTTY})
	if !EnableColors() {
		t.Error("EnableColors() should return true in TTY mode")
	}
}
