package ipc

import (
	"context"
	"net/http"
	"strings"
)

// Server wraps an HTTP server with roster-specific routing.
type Server struct {
	httpServer *http.Server
}

// NewServer creates a Server that binds to the given address.
func NewServer(h *Handler, listenAddr string) *Server {
	mux := http.NewServeMux()

	// Health endpoint.
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Worker roster endpoints.
	mux.HandleFunc("GET /api/v1/workers", h.ListWorkers)
	mux.HandleFunc("POST /api/v1/workers", h.AddWorker)
	mux.HandleFunc("PUT /api/v1/workers/{name}", h.UpdateWorker)
	mux.HandleFunc("DELETE /api/v1/workers/{name}", h.RemoveWorker)
	mux.HandleFunc("POST /api/v1/workers/{name}/move", h.MoveWorker)
	mux.HandleFunc("PUT /api/v1/workers/{name}/leave", h.SetLeave)

	// Roster month endpoints.
	mux.HandleFunc("GET /api/v1/rosters/{month}", h.GetRoster)
	mux.HandleFunc("DELETE /api/v1/rosters/{month}", h.ClearRoster)
	mux.HandleFunc("POST /api/v1/rosters/{month}/generate", h.GenerateRoster)
	mux.HandleFunc("PUT /api/v1/rosters/{month}/cells", h.SetCell)
	mux.HandleFunc("GET /api/v1/rosters/{month}/summary", h.GetSummary)

	// Event endpoints.
	mux.HandleFunc("GET /api/v1/rosters/{month}/events", h.ListEvents)
	mux.HandleFunc("GET /api/v1/rosters/{month}/events/stream", h.StreamEvents)

	srv := &http.Server{
		Addr:    listenAddr,
		Handler: corsMiddleware(mux),
	}

	return &Server{
		httpServer: srv,
	}
}

// Start begins listening for HTTP connections. Blocks until the server stops.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// FormatListenURL turns a listen address into a browsable URL.
func FormatListenURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

// corsMiddleware adds CORS headers for local desktop app access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
