// Package logging provides a ready-made console implementation of
// track.Logger. The library itself never logs unless a Logger is supplied;
// this package is a convenience for examples, CLIs and development setups.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/getpup/pupmetrics/track"
)

// Level controls which messages a Console logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

var (
	debugPrefix = color.New(color.FgCyan).Sprint("DEBUG")
	infoPrefix  = color.New(color.FgGreen).Sprint("INFO ")
	errorPrefix = color.New(color.FgRed, color.Bold).Sprint("ERROR")
)

// Console is a track.Logger that writes colored, timestamped lines.
// It is safe for concurrent use.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	level Level
}

// NewConsole creates a console logger writing to stderr at the given level.
func NewConsole(level Level) *Console {
	return &Console{out: os.Stderr, level: level}
}

// NewConsoleWriter creates a console logger writing to the given writer.
func NewConsoleWriter(w io.Writer, level Level) *Console {
	return &Console{out: w, level: level}
}

var _ track.Logger = (*Console)(nil)

// Debug implements track.Logger.
func (c *Console) Debug(_ context.Context, msg string, keyvals ...interface{}) {
	if c.level > LevelDebug {
		return
	}
	c.write(debugPrefix, msg, keyvals)
}

// Info implements track.Logger.
func (c *Console) Info(_ context.Context, msg string, keyvals ...interface{}) {
	if c.level > LevelInfo {
		return
	}
	c.write(infoPrefix, msg, keyvals)
}

// Error implements track.Logger.
func (c *Console) Error(_ context.Context, msg string, keyvals ...interface{}) {
	c.write(errorPrefix, msg, keyvals)
}

func (c *Console) write(prefix, msg string, keyvals []interface{}) {
	var b strings.Builder
	b.WriteString(time.Now().Format(time.RFC3339))
	b.WriteByte(' ')
	b.WriteString(prefix)
	b.WriteByte(' ')
	b.WriteString(msg)

	for i := 0; i+1 < len(keyvals); i += 2 {
		fmt.Fprintf(&b, " %v=%v", keyvals[i], keyvals[i+1])
	}
	if len(keyvals)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", keyvals[len(keyvals)-1])
	}
	b.WriteByte('\n')

	c.mu.Lock()
	defer c.mu.Unlock()
	//nolint:errcheck // logging is best effort
	io.WriteString(c.out, b.String())
}
