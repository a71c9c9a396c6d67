package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/duskcall/mafia/internal/domain/roommgr"
)

type Server struct {
	router    *chi.Mux
	logger    *slog.Logger
	staticDir string
	rooms     *roommgr.Manager
}

// NewServer builds the HTTP surface: health/metrics/public-room-listing
// API routes, the WebSocket upgrade endpoint, and (if staticDir exists) a
// SPA file server for everything else.
func NewServer(logger *slog.Logger, staticDir string, rooms *roommgr.Manager, wsHandler http.Handler) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger,
		staticDir: staticDir,
		rooms:     rooms,
	}
	s.setupMiddleware()
	s.setupRoutes(wsHandler)
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes(wsHandler http.Handler) {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/rooms", s.handleListPublicRooms)
	})
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.Handle("/ws", wsHandler)

	s.serveStaticFiles()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}

// RoomSummary is the wire projection of a public room in the lobby
// listing.
type RoomSummary struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	PlayerCount  int    `json:"player_count"`
	MaxPlayers   int    `json:"max_players"`
	IsGameActive bool   `json:"is_game_active"`
}

func (s *Server) handleListPublicRooms(w http.ResponseWriter, r *http.Request) {
	rooms := s.rooms.ListPublicRooms()
	summaries := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		summaries = append(summaries, RoomSummary{
			Code:         room.Code,
			Name:         room.Name,
			PlayerCount:  room.PlayerCount(),
			MaxPlayers:   room.MaxPlayers,
			IsGameActive: room.IsGameActive,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summaries)
}

func (s *Server) serveStaticFiles() {
	// Check if static directory exists
	if _, err := os.Stat(s.staticDir); os.IsNotExist(err) {
		s.logger.Warn("static directory not found, skipping static file serving", "dir", s.staticDir)
		return
	}

	// Serve static files
	fileServer := http.FileServer(http.Dir(s.staticDir))

	s.router.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(s.staticDir, r.URL.Path)

		// Check if file exists
		_, err := os.Stat(path)
		if os.IsNotExist(err) || isDir(path) {
			// Serve index.html for SPA routing
			http.ServeFile(w, r, filepath.Join(s.staticDir, "index.html"))
			return
		}

		// Serve the actual file
		fileServer.ServeHTTP(w, r)
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
