package validator

import (
	"strings"
	"testing"

	"github.com/obowen/fpga-wavetrace/internal/config"
)

func validConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Top = "top"
	cfg.Clock = "clk"
	cfg.Reset = "rst"
	cfg.Nets = []config.NetEntry{
		{Paths: []string{"core0.din_valid", "core0.dout[7:0]"}},
	}
	return cfg
}

func TestValidateDefaultFilledConfig(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if err := v.Validate(validConfig()); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestValidateRejectsMissingFields(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"empty top", func(c *config.Config) { c.Top = "" }},
		{"empty clock", func(c *config.Config) { c.Clock = "" }},
		{"empty reset", func(c *config.Config) { c.Reset = "" }},
		{"no sources", func(c *config.Config) { c.Sources = nil }},
		{"no nets", func(c *config.Config) { c.Nets = nil }},
		{"net entry without paths", func(c *config.Config) {
			c.Nets = []config.NetEntry{{Base: "core0"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := v.Validate(cfg); err == nil {
				t.Errorf("expected validation error, got nil")
			}
		})
	}
}

func TestValidateRejectsBadCapture(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	cfg := validConfig()
	cfg.Capture.ClockMHz = -50
	if err := v.Validate(cfg); err == nil {
		t.Error("expected error for negative clock frequency")
	}

	cfg = validConfig()
	cfg.Capture.UartBaud = -9600
	if err := v.Validate(cfg); err == nil {
		t.Error("expected error for negative UART baud rate")
	}
}

func TestValidateJSONRejectsMalformedInput(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if err := v.ValidateJSON([]byte(`{"top": `)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestValidationErrorsListsAllProblems(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	cfg := validConfig()
	cfg.Top = ""
	cfg.Clock = ""

	errs := v.ValidationErrors(cfg)
	if len(errs) == 0 {
		t.Fatal("expected validation errors, got none")
	}
	joined := strings.Join(errs, "\n")
	if !strings.Contains(joined, "top") {
		t.Errorf("errors should mention top field, got:\n%s", joined)
	}
}

func TestValidationErrorsNilForValidConfig(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if errs := v.ValidationErrors(validConfig()); errs != nil {
		t.Errorf("expected no errors, got: %v", errs)
	}
}
