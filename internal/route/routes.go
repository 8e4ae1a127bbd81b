package route

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"

	"drowsiness/internal/config"
	"drowsiness/internal/handler"
	"drowsiness/internal/logger"
	"drowsiness/internal/middleware"
	hub "drowsiness/internal/service/websocket"
)

const staticDir = "static"

// dynamicHTMLHandler serves /path as /static/path.html if the file exists; otherwise 404.
func dynamicHTMLHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if path == "/" {
		path = "/index"
	}

	filePath := filepath.Join(staticDir, filepath.Clean("/"+path)+".html")

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, filePath)
}

// SetupRoutes registers the viewer page, API endpoints, log endpoints and
// auth, and wraps everything with the authentication middleware.
func SetupRoutes(provider handler.StatusProvider, hubService *hub.HubService, cfg *config.Config, logger *logger.Logger) http.Handler {
	router := mux.NewRouter()

	// Static files
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))

	// API endpoints
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/view", handler.ViewWebsocketHandler(hubService, logger))
	api.HandleFunc("/status", handler.StatusHandler(provider, cfg, logger)).Methods(http.MethodGet)

	// Log endpoints
	router.HandleFunc("/logs/{level}", handler.ShowLogsHandler(logger)).Methods(http.MethodGet)
	router.HandleFunc("/logs/{level}/clear", handler.ClearLogsHandler(logger)).Methods(http.MethodPost, http.MethodDelete)

	// Auth endpoints
	router.HandleFunc("/auth/login", handler.LoginHandler(cfg, logger))
	router.HandleFunc("/auth/logout", handler.LogoutHandler)

	// /login -> static/login.html, / -> static/index.html
	router.PathPrefix("/").HandlerFunc(dynamicHTMLHandler).Methods(http.MethodGet, http.MethodHead)

	router.Use(middleware.AuthMiddleware(cfg.Password))

	return router
}
