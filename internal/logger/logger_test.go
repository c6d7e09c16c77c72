package logger

import (
	"bytes"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// capture routes log output to a buffer for the duration of the test.
func capture(t *testing.T, verboseOn bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseOn)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name string
		log  func()
		want string
	}{
		{"debug", func() { Debug("read %s", "films") }, "[DEBUG] read films\n"},
		{"info", func() { Info("applied %d change(s)", 3) }, "[INFO] applied 3 change(s)\n"},
		{"warn", func() { Warn("watch error") }, "[WARN] watch error\n"},
		{"section", func() { Section("Sync Plan") }, "\n=== Sync Plan ===\n"},
		{
			"request",
			func() { Request("GET", "http://localhost:8983/solr/c1/schema", 200, 1500*time.Microsecond) },
			"[HTTP] GET http://localhost:8983/solr/c1/schema -> 200 (2ms)\n",
		},
		{
			"request without response",
			func() { Request("POST", "http://x/schema", 0, 0) },
			"[HTTP] POST http://x/schema -> no response (0s)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, true)
			tt.log()
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestQuietWhenNotVerbose(t *testing.T) {
	buf := capture(t, false)

	Debug("hidden")
	Info("hidden")
	Warn("hidden")
	Section("hidden")
	Request("GET", "/schema", 200, time.Millisecond)

	assert.Zero(t, buf.Len())
}

func TestConcurrentAccess(t *testing.T) {
	capture(t, false)
	SetOutput(io.Discard)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetVerbose(true)
			Debug("concurrent %d", i)
			IsVerbose()
			SetVerbose(false)
		}()
	}
	wg.Wait()
}
