package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestConsoleWritesKeyValuePairs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleWriter(&buf, LevelDebug)

	logger.Info(context.Background(), "session upserted", "session_id", "s1", "count", 3)

	line := buf.String()
	if !strings.Contains(line, "session upserted") {
		t.Errorf("expected message in output: %q", line)
	}
	if !strings.Contains(line, "session_id=s1") {
		t.Errorf("expected key=value pair in output: %q", line)
	}
	if !strings.Contains(line, "count=3") {
		t.Errorf("expected key=value pair in output: %q", line)
	}
	if !strings.HasSuffix(line, "\n") {
		t.Errorf("expected trailing newline: %q", line)
	}
}

func TestConsoleLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleWriter(&buf, LevelError)

	ctx := context.Background()
	logger.Debug(ctx, "hidden debug")
	logger.Info(ctx, "hidden info")
	logger.Error(ctx, "visible error")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("suppressed levels leaked: %q", out)
	}
	if !strings.Contains(out, "visible error") {
		t.Errorf("error level must always be emitted: %q", out)
	}
}

func TestConsoleOddKeyvals(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleWriter(&buf, LevelDebug)

	logger.Debug(context.Background(), "odd", "dangling")

	if !strings.Contains(buf.String(), "dangling=<missing>") {
		t.Errorf("expected dangling key marker: %q", buf.String())
	}
}
