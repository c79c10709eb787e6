// Package dashboard serves the live comparison view: a static page, a
// websocket stream of per-access snapshots, a JSON snapshot endpoint and
// the Prometheus metrics endpoint.
package dashboard

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/framesim/framesim/sim"
	"github.com/framesim/framesim/sim/wire"
)

//go:embed web
var webFiles embed.FS

const (
	writeWait       = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

// SnapshotFunc returns the current state of all engines.
type SnapshotFunc func() sim.Snapshot

// Server routes dashboard traffic.
type Server struct {
	hub      *Hub
	snapshot SnapshotFunc
	gatherer prometheus.Gatherer
	upgrader websocket.Upgrader
	router   *mux.Router
}

// NewServer builds the router. snapshot and gatherer may be nil, in which
// case /api/snapshot and /metrics are not served.
func NewServer(hub *Hub, snapshot SnapshotFunc, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		hub:      hub,
		snapshot: snapshot,
		gatherer: gatherer,
		upgrader: websocket.Upgrader{
			// The page may be opened from a file or another port.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.handleWebsocket).Methods(http.MethodGet)
	// Older pages connect to the root URL directly.
	r.Path("/").HeadersRegexp("Upgrade", "(?i)websocket").HandlerFunc(s.handleWebsocket)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.snapshot != nil {
		r.HandleFunc("/api/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	}
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	static, err := fs.Sub(webFiles, "web")
	if err != nil {
		panic(err)
	}
	r.PathPrefix("/").Handler(http.FileServer(http.FS(static)))
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and disconnects every subscriber.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: writeWait}
	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("dashboard: listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(wire.FromSnapshot(s.snapshot())); err != nil {
		logrus.WithError(err).Warn("dashboard: write snapshot")
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		logrus.WithError(err).Debug("dashboard: websocket upgrade failed")
		return
	}
	sub := s.hub.Add()
	log := logrus.WithField("subscriber", sub.ID)
	log.Infof("dashboard: client connected from %s", r.RemoteAddr)

	go s.writeLoop(conn, sub)

	// Clients never send anything meaningful; reading detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.hub.Remove(sub.ID)
	log.Info("dashboard: client disconnected")
}

// writeLoop drains the subscriber's queue until the hub closes it.
func (s *Server) writeLoop(conn *websocket.Conn, sub *Subscriber) {
	defer conn.Close()
	for msg := range sub.Messages() {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			s.hub.Remove(sub.ID)
			return
		}
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
