package runner

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	plog "github.com/phuslu/log"
	"github.com/ternarybob/arbor/levels"
	"github.com/ternarybob/arbor/models"
	"github.com/ternarybob/arbor/writers"
)

// Buffer size for the websocket log queue.
const defaultLogBufferSize = 1000

// LogBroadcaster forwards suite output lines to websocket clients through an
// arbor channel writer. The channel decouples suite execution from slow
// clients; full buffers drop lines rather than block the run.
type LogBroadcaster struct {
	server          *Server
	writer          writers.IChannelWriter
	minLevel        levels.LogLevel
	excludePatterns []string
}

// NewLogBroadcaster creates a broadcaster bound to the status server.
func NewLogBroadcaster(server *Server, minLevel string) (*LogBroadcaster, error) {
	b := &LogBroadcaster{
		server:   server,
		minLevel: parseLogLevel(minLevel),
		excludePatterns: []string{
			"WebSocket client connected",
			"WebSocket client disconnected",
		},
	}

	processor := func(entry models.LogEvent) error {
		if plogToArborLevel(entry.Level) < b.minLevel {
			return nil
		}
		for _, pattern := range b.excludePatterns {
			if strings.Contains(entry.Message, pattern) {
				return nil
			}
		}
		b.server.BroadcastLog(entry.Message)
		return nil
	}

	cw, err := writers.NewChannelWriter(models.WriterConfiguration{
		Type:       models.LogWriterTypeConsole,
		TimeFormat: "15:04:05",
	}, defaultLogBufferSize, processor)
	if err != nil {
		return nil, err
	}
	cw.Start()

	b.writer = cw
	return b, nil
}

// Write implements io.Writer. Each line of suite output becomes one log event
// on the channel.
func (b *LogBroadcaster) Write(data []byte) (int, error) {
	for _, line := range bytes.Split(data, []byte("\n")) {
		text := strings.TrimRight(string(line), "\r")
		if text == "" {
			continue
		}
		event := models.LogEvent{
			Timestamp: time.Now(),
			Level:     plog.InfoLevel,
			Message:   text,
		}
		payload, err := json.Marshal(event)
		if err != nil {
			continue
		}
		b.writer.Write(payload)
	}
	return len(data), nil
}

// WithLevel updates the minimum broadcast level and returns self.
func (b *LogBroadcaster) WithLevel(level plog.Level) writers.IWriter {
	b.minLevel = plogToArborLevel(level)
	return b
}

// GetFilePath returns empty string (not file-based)
func (b *LogBroadcaster) GetFilePath() string {
	return ""
}

// Close performs graceful shutdown with buffer draining
func (b *LogBroadcaster) Close() error {
	return b.writer.Close()
}

// plogToArborLevel converts phuslu/log.Level to arbor levels.LogLevel
func plogToArborLevel(level plog.Level) levels.LogLevel {
	switch level {
	case plog.ErrorLevel:
		return levels.ErrorLevel
	case plog.WarnLevel:
		return levels.WarnLevel
	case plog.InfoLevel:
		return levels.InfoLevel
	case plog.DebugLevel:
		return levels.DebugLevel
	default:
		return levels.InfoLevel
	}
}

// parseLogLevel converts string log level to arbor levels.LogLevel
func parseLogLevel(level string) levels.LogLevel {
	switch strings.ToLower(level) {
	case "error":
		return levels.ErrorLevel
	case "warn", "warning":
		return levels.WarnLevel
	case "info":
		return levels.InfoLevel
	case "debug":
		return levels.DebugLevel
	default:
		return levels.InfoLevel
	}
}
