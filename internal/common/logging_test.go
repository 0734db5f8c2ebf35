package common

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("warn", &buf)

	logger.Info().Msg("below threshold")
	logger.Warn().Msg("at threshold")

	out := buf.String()
	if strings.Contains(out, "below threshold") {
		t.Error("info entry emitted at warn level")
	}
	if !strings.Contains(out, "at threshold") {
		t.Errorf("warn entry missing from output: %s", out)
	}
}

func TestLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("chatty", &buf)

	logger.Debug().Msg("debug entry")
	logger.Info().Msg("info entry")

	out := buf.String()
	if strings.Contains(out, "debug entry") {
		t.Error("debug entry emitted at default level")
	}
	if !strings.Contains(out, "info entry") {
		t.Error("info entry missing at default level")
	}
}

func TestLogger_WithComponentTagsEntries(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("info", &buf).WithComponent("backend")

	logger.Info().Msg("request sent")

	if !strings.Contains(buf.String(), `"component":"backend"`) {
		t.Errorf("component field missing: %s", buf.String())
	}
}
