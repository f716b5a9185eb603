package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"coherence-console/internal/dom"
	"coherence-console/internal/state"
	"coherence-console/internal/widget"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	// outboxSize bounds the ops queued for one browser; a client that falls
	// further behind is disconnected and rebuilds its page on reconnect.
	outboxSize = 256
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for simplicity
	},
}

// Auth configures console authentication.
type Auth struct {
	Username     string
	PasswordHash string // bcrypt
	APIToken     string
	Disabled     bool
}

// Options configures a Server.
type Options struct {
	Port      string
	Version   string
	Auth      Auth
	PanelSize int
	Logger    *slog.Logger
}

// Server serves the console UI, the live widget bridge and the JSON API.
type Server struct {
	appState  *state.AppState
	port      string
	version   string
	auth      Auth
	panelSize int
	logger    *slog.Logger
	base      *slog.Logger
	sessions  sync.Map // token -> login time
	router    *mux.Router

	pagesMu sync.Mutex
	pages   map[string]context.CancelFunc
	httpSrv *http.Server
}

// clientEvent is a frame sent by the browser over /ws.
type clientEvent struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Class string `json:"class"`
}

// New creates a new web server.
func New(appState *state.AppState, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	// A page never shows more entries than the state keeps.
	panelSize := opts.PanelSize
	if panelSize <= 0 || panelSize > appState.MaxLogs() {
		panelSize = appState.MaxLogs()
	}
	s := &Server{
		appState:  appState,
		port:      opts.Port,
		version:   opts.Version,
		auth:      opts.Auth,
		panelSize: panelSize,
		logger:    logger.With("component", "Web"),
		base:      logger,
		pages:     make(map[string]context.CancelFunc),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLoginPage).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodGet, http.MethodPost)

	// WebSocket endpoints
	r.HandleFunc("/ws", s.requireAuth(s.handleWebSocket)).Methods(http.MethodGet)
	r.HandleFunc("/api/events", s.requireAuth(s.handleEvents)).Methods(http.MethodGet)

	// API endpoints
	r.HandleFunc("/api/devices", s.requireAuth(s.handleDevices)).Methods(http.MethodGet)
	r.HandleFunc("/api/devices", s.requireAuth(s.handleAddDevice)).Methods(http.MethodPost)
	r.HandleFunc("/api/devices/{usn}", s.requireAuth(s.handleRemoveDevice)).Methods(http.MethodDelete)
	r.HandleFunc("/api/logs", s.requireAuth(s.handleLogs)).Methods(http.MethodGet)

	// Serve the UI
	r.HandleFunc("/", s.requireAuth(s.handleUI)).Methods(http.MethodGet)
	return r
}

// Handler returns the HTTP handler of the console.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%s", s.port)
	s.httpSrv = &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	s.logger.Info("Web UI listening", "address", addr)

	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Web server failed", "error", err)
		}
	}()
}

// Shutdown closes every live page and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.pagesMu.Lock()
	for _, cancel := range s.pages {
		cancel()
	}
	s.pagesMu.Unlock()
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Pages returns the number of connected live pages.
func (s *Server) Pages() int {
	s.pagesMu.Lock()
	defer s.pagesMu.Unlock()
	return len(s.pages)
}

// handleWebSocket upgrades the connection and runs one live Page on it until
// the browser goes away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	outbox := make(chan dom.Op, outboxSize)
	sink := dom.SinkFunc(func(op dom.Op) {
		select {
		case outbox <- op:
		default:
			s.logger.Warn("WebSocket client too slow, disconnecting", "remote", r.RemoteAddr)
			cancel()
		}
	})

	page := widget.NewPage(dom.NewBridge(sink), widget.Local{State: s.appState}, widget.Options{
		PanelSize: s.panelSize,
		Logger:    s.base,
	})

	s.pagesMu.Lock()
	s.pages[page.ID] = cancel
	s.pagesMu.Unlock()
	defer func() {
		s.pagesMu.Lock()
		delete(s.pages, page.ID)
		s.pagesMu.Unlock()
	}()
	s.logger.Debug("WebSocket client connected", "page", page.ID, "remote", r.RemoteAddr)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.writeOps(ctx, conn, outbox)
		cancel()
	}()
	clicks := make(chan dom.Target)
	go func() {
		defer wg.Done()
		_ = page.Run(ctx, clicks)
	}()

	// Read loop; returns on client disconnect.
	for {
		var ev clientEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("WebSocket read error", "page", page.ID, "error", err)
			}
			break
		}
		if ev.Type != dom.EventClick {
			continue
		}
		select {
		case clicks <- dom.Target{ID: ev.ID, Class: ev.Class}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	cancel()
	wg.Wait()
	s.logger.Debug("WebSocket client disconnected", "page", page.ID)
}

// writeOps is the single writer of a /ws connection.
func (s *Server) writeOps(ctx context.Context, conn *websocket.Conn, outbox <-chan dom.Op) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			// Unblocks the read loop.
			conn.Close()
			return
		case op := <-outbox:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(op); err != nil {
				s.logger.Debug("WebSocket write error", "error", err)
				conn.Close()
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				conn.Close()
				return
			}
		}
	}
}

// handleEvents streams state events as JSON frames until the client leaves.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events, cancel := s.appState.Subscribe()
	defer cancel()

	// Detect disconnects; the stream is one-way.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// handleUI serves the embedded UI.
func (s *Server) handleUI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, strings.ReplaceAll(uiHTML, "{{APP_VERSION}}", s.version))
}
