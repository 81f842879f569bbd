package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/tongthuyhang/manabie-auto-testing/internal/common"
	"github.com/tongthuyhang/manabie-auto-testing/internal/interfaces"
	"github.com/tongthuyhang/manabie-auto-testing/internal/models"
	"github.com/tongthuyhang/manabie-auto-testing/internal/report"
)

// StatusMessage is the payload broadcast to websocket clients.
type StatusMessage struct {
	Type        string `json:"type"`
	RunID       string `json:"run_id,omitempty"`
	Environment string `json:"environment,omitempty"`
	Status      string `json:"status,omitempty"`
	Passed      int    `json:"passed,omitempty"`
	Failed      int    `json:"failed,omitempty"`
	Message     string `json:"message,omitempty"`
	Timestamp   string `json:"timestamp"`
}

// Server is the local status server: a live websocket feed plus an HTML
// summary page of recent runs.
type Server struct {
	config   *common.ServerConfig
	logger   arbor.ILogger
	store    interfaces.RunStorage
	upgrader websocket.Upgrader
	httpSrv  *http.Server

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewServer creates the status server.
func NewServer(config *common.ServerConfig, store interfaces.RunStorage, logger arbor.ILogger) *Server {
	return &Server{
		config: config,
		logger: logger,
		store:  store,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]bool),
	}
}

// Start begins serving in the background.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ws", s.handleWebSocket)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpSrv = &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Warn().Err(err).Msg("Status server stopped")
		}
	}()

	s.logger.Info().Str("addr", addr).Msg("Status server listening")
	return nil
}

// Stop shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	for conn := range s.clients {
		conn.Close()
	}
	s.clients = make(map[*websocket.Conn]bool)
	s.mu.Unlock()

	if s.httpSrv != nil {
		return s.httpSrv.Shutdown(ctx)
	}
	return nil
}

// BroadcastStatus pushes the run state to every connected client.
func (s *Server) BroadcastStatus(run *models.RunRecord) {
	s.broadcast(StatusMessage{
		Type:        "run_status",
		RunID:       run.ID,
		Environment: run.Environment,
		Status:      run.Status,
		Passed:      run.Passed,
		Failed:      run.Failed,
		Timestamp:   time.Now().Format("15:04:05"),
	})
}

// BroadcastLog pushes a log line to every connected client.
func (s *Server) BroadcastLog(message string) {
	s.broadcast(StatusMessage{
		Type:      "log",
		Message:   message,
		Timestamp: time.Now().Format("15:04:05"),
	})
}

func (s *Server) broadcast(msg StatusMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	s.logger.Debug().Msg("WebSocket client connected")

	// Drain the read side so close frames are processed.
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// handleIndex renders the most recent runs as an HTML page. The markdown
// summary is the single source of the report content; goldmark renders it.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var markdown bytes.Buffer
	markdown.WriteString("# Manabie AutoTest\n\n")

	if s.store != nil {
		runs, err := s.store.ListRuns(r.Context(), 10)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Failed to list runs for status page")
		}
		for _, run := range runs {
			results, _ := s.store.ResultsForRun(r.Context(), run.ID)
			markdown.WriteString(report.Summary(run, results))
			markdown.WriteString("\n\n---\n\n")
		}
		if len(runs) == 0 {
			markdown.WriteString("No runs recorded yet.\n")
		}
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var body bytes.Buffer
	if err := md.Convert(markdown.Bytes(), &body); err != nil {
		http.Error(w, "failed to render status page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, statusPageTemplate, body.String())
}

const statusPageTemplate = `<!DOCTYPE html>
<html>
<head>
<title>Manabie AutoTest</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 2em auto; color: #222; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 4px 10px; }
code, pre { background: #f4f4f4; }
</style>
</head>
<body>
%s
</body>
</html>
`
