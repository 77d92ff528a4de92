// Package server exposes the live preview over HTTP: a static shell,
// the page manifest, per-page images, and a websocket that tells
// connected clients to reload whenever the page cache is replaced.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/lilBchii/tide/internal/config"
	"github.com/lilBchii/tide/internal/errors"
	"github.com/lilBchii/tide/internal/logging"
	"github.com/lilBchii/tide/internal/preview"
)

// reloadMessage is pushed to every websocket client on cache
// replacement.
const reloadMessage = "reload"

// PageInfo is one entry in the /pages manifest.
type PageInfo struct {
	Number   int     `json:"number"`
	WidthPt  float64 `json:"width_pt"`
	HeightPt float64 `json:"height_pt"`
	Rendered bool    `json:"rendered"`
}

// Server serves the preview cache over HTTP and websocket.
type Server struct {
	cache  *preview.Cache
	cfg    config.ServerConfig
	logger logging.Logger

	httpServer *http.Server
	listener   net.Listener

	mu       sync.Mutex
	clients  map[*websocket.Conn]chan []byte
	shutdown bool
}

// New creates a preview server over cache.
func New(cache *preview.Cache, cfg config.ServerConfig, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.Default()
	}
	return &Server{
		cache:   cache,
		cfg:     cfg,
		logger:  logger.WithComponent("server"),
		clients: make(map[*websocket.Conn]chan []byte),
	}
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start binds the listener and serves until ctx is cancelled. The
// cache watch loop broadcasting reloads runs alongside the listener.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/pages", s.handlePages)
	mux.HandleFunc("/page/", s.handlePage)
	mux.HandleFunc("/ws", s.handleWebSocket)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.NewIOError("cannot bind preview server", err).
			WithContext("addr", addr)
	}

	s.mu.Lock()
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := s.httpServer
	s.mu.Unlock()

	go s.watchCache(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "preview server listening", "addr", listener.Addr().String())
	if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
		return errors.NewIOError("preview server failed", err)
	}
	return nil
}

// Shutdown stops the listener and closes every websocket client.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return nil
	}
	s.shutdown = true
	server := s.httpServer
	clients := make([]*websocket.Conn, 0, len(s.clients))
	for conn := range s.clients {
		clients = append(clients, conn)
	}
	s.mu.Unlock()

	for _, conn := range clients {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
	if server != nil {
		return server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) watchCache(ctx context.Context) {
	updates := s.cache.Watch()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			s.broadcast([]byte(reloadMessage))
		}
	}
}

func (s *Server) broadcast(message []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn, send := range s.clients {
		select {
		case send <- message:
		default:
			// Skip if channel is full
			_ = conn
		}
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	records := s.cache.Snapshot()
	manifest := make([]PageInfo, len(records))
	for i, record := range records {
		manifest[i] = PageInfo{
			Number:   i,
			WidthPt:  record.WidthPt,
			HeightPt: record.HeightPt,
			Rendered: record.Rendered(),
		}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(manifest); err != nil {
		s.logger.Warn(r.Context(), err, "cannot encode page manifest")
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/page/")
	number, err := strconv.Atoi(strings.TrimSuffix(name, ".png"))
	if err != nil {
		http.Error(w, "invalid page number", http.StatusBadRequest)
		return
	}
	record, ok := s.cache.Page(number)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if !record.Rendered() {
		// Placeholder pages have geometry but no pixels yet.
		http.Error(w, "page not rendered", http.StatusAccepted)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(record.Pixels)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn(r.Context(), err, "websocket accept failed")
		return
	}

	send := make(chan []byte, 16)
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	s.clients[conn] = send
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case message, ok := <-send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// checkOrigin accepts same-host and local origins only.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return false
	}
	host := originURL.Hostname()
	if host == "localhost" || host == "127.0.0.1" || host == "::1" {
		return true
	}
	requestHost := r.Host
	if h, _, splitErr := net.SplitHostPort(requestHost); splitErr == nil {
		requestHost = h
	}
	return host == requestHost
}
