package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLevels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWithWriters(false, &out, &errOut)

	l.Info("hello %s", "world")
	l.Debug("hidden")
	l.Warn("careful")
	l.Error("broken: %d", 42)

	if got, want := out.String(), "hello world\n[WARN] careful\n"; got != want {
		t.Errorf("out = %q, want %q", got, want)
	}
	if got, want := errOut.String(), "[ERROR] broken: 42\n"; got != want {
		t.Errorf("errOut = %q, want %q", got, want)
	}
}

func TestVerboseShowsDebug(t *testing.T) {
	var out bytes.Buffer
	l := NewWithWriters(true, &out, &out)

	l.Debug("cache miss for %s", "key")
	if got := out.String(); got != "[DEBUG] cache miss for key\n" {
		t.Errorf("out = %q", got)
	}
}

func TestProgressBarSuppressesConsole(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWithWriters(false, &out, &errOut)

	l.SetProgressBar(true)
	l.Info("quiet")
	l.Warn("quiet too")
	l.Error("still shown")
	l.SetProgressBar(false)
	l.Info("back")

	if got := out.String(); got != "back\n" {
		t.Errorf("out = %q", got)
	}
	if errOut.Len() == 0 {
		t.Error("errors must bypass the progress bar")
	}
}

func TestFileLogGetsEverything(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mblookup.log")
	var out bytes.Buffer
	l := NewWithWriters(false, &out, &out)

	if err := l.SetFileLog(path); err != nil {
		t.Fatalf("SetFileLog() error: %v", err)
	}
	l.Info("info line")
	l.Debug("debug line")
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"[INFO] info line", "[DEBUG] debug line"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("file log missing %q:\n%s", want, data)
		}
	}
	if strings.Contains(out.String(), "debug line") {
		t.Error("debug line leaked to console in non-verbose mode")
	}
}
