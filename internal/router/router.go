package router

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vidfetch-backend/internal/handlers"
	"vidfetch-backend/internal/middleware"
	"vidfetch-backend/internal/models"
	"vidfetch-backend/internal/services"
	"vidfetch-backend/internal/websocket"
)

// Config carries the router's non-handler settings.
type Config struct {
	APIRateLimit       int
	APIRateWindow      time.Duration
	DownloadRateLimit  int
	DownloadRateWindow time.Duration
	StaticDir          string
	ServiceName        string
	AllowedOrigins     []string
	// TrustProxy lets RealIP rewrite RemoteAddr from proxy headers. Off,
	// limits key on the socket address so clients cannot forge a new key.
	TrustProxy bool
}

func New(
	cfg Config,
	videoHandler *handlers.VideoHandler,
	downloadHandler *handlers.DownloadHandler,
	historyHandler *handlers.HistoryHandler,
	adminHandler *handlers.AdminHandler,
	adminAuth *middleware.AdminAuth,
	analytics *services.Analytics,
	wsHub *websocket.Hub,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	if cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.TrackTraffic(analytics))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeNotFound(w)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/download/{filename}", downloadHandler.Serve)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))

		r.Route("/videos", func(r chi.Router) {
			r.Post("/info", videoHandler.Info)
			r.With(middleware.DownloadRateLimit(cfg.DownloadRateLimit, cfg.DownloadRateWindow)).
				Post("/download", downloadHandler.Create)
		})

		r.Get("/downloads/history", historyHandler.List)

		// ──── Admin Routes ────
		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", adminHandler.Login)
			r.Group(func(r chi.Router) {
				if adminAuth != nil {
					r.Use(adminAuth.Middleware)
				}
				r.Get("/stats", adminHandler.Stats)
			})
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeNotFound(w)
		})
	})

	if cfg.StaticDir != "" {
		mountStatic(r, cfg.StaticDir)
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "vidfetch"
	}
	return middleware.OTelHTTP(serviceName)(r)
}

func writeNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_ = json.NewEncoder(w).Encode(models.ErrorResponse{Message: "Not found", Code: "NOT_FOUND"})
}

// mountStatic serves the built UI from dir, falling back to index.html for
// client-side routes.
func mountStatic(r chi.Router, dir string) {
	fileServer := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")

	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		clean := filepath.Clean("/" + strings.TrimPrefix(req.URL.Path, "/"))
		if st, err := os.Stat(filepath.Join(dir, filepath.FromSlash(clean))); err == nil && !st.IsDir() {
			fileServer.ServeHTTP(w, req)
			return
		}
		if strings.HasPrefix(clean, "/assets/") {
			writeNotFound(w)
			return
		}
		http.ServeFile(w, req, index)
	})
}
