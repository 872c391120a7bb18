package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"worktime-annotator/classifier"
	"worktime-annotator/controller"
	"worktime-annotator/internal/types"
	"worktime-annotator/storage"
	"worktime-annotator/utils"
)

// AnnotateRequest is the request body for the annotation endpoint.
// Either URL or HTML must be set.
type AnnotateRequest struct {
	URL       string              `json:"url,omitempty"`
	HTML      string              `json:"html,omitempty"`
	Wage      float64             `json:"wage"`
	Mode      string              `json:"mode,omitempty"`
	ShowHours *bool               `json:"show_hours,omitempty"`
	Tiers     *types.TierSettings `json:"tiers,omitempty"`
	Force     bool                `json:"force,omitempty"`
}

// AnnotateResponse is the response from the annotation endpoint.
type AnnotateResponse struct {
	Success bool               `json:"success"`
	Prices  []types.PriceEntry `json:"prices,omitempty"`
	HTML    string             `json:"html,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// Server holds the API server configuration
type Server struct {
	logger *logrus.Logger
	config *types.Config
	gate   *classifier.Classifier
}

// NewServer creates a new API server
func NewServer() *Server {
	// Load .env file if present
	_ = godotenv.Load()

	// Setup logging
	logger := logrus.New()

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Server{
		logger: logger,
		config: types.DefaultConfig(),
		gate:   classifier.New(logger),
	}
}

// handleAnnotate handles the annotation API endpoint
func (s *Server) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AnnotateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Validate request
	if req.URL == "" && req.HTML == "" {
		s.sendError(w, "Either url or html must be provided", http.StatusBadRequest)
		return
	}
	if req.URL != "" && req.HTML != "" {
		s.sendError(w, "Provide url or html, not both", http.StatusBadRequest)
		return
	}
	if req.Wage < 0 {
		s.sendError(w, "wage must be non-negative", http.StatusBadRequest)
		return
	}
	if req.Mode != "" && req.Mode != types.ModeSideBySide && req.Mode != types.ModeReplace {
		s.sendError(w, "mode must be side-by-side or replace", http.StatusBadRequest)
		return
	}
	if req.Tiers != nil {
		if err := req.Tiers.Validate(); err != nil {
			s.sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	markup := req.HTML
	if req.URL != "" {
		s.logger.Infof("Annotation request for %s", req.URL)

		if !s.gate.IsShoppingSite(req.URL) && !req.Force {
			s.sendError(w, "URL does not classify as a shopping site", http.StatusUnprocessableEntity)
			return
		}

		fetcher := utils.NewPageFetcher(s.config, s.logger)
		defer fetcher.Close()

		html, err := fetcher.Fetch(ctx, req.URL)
		if err != nil {
			s.logger.Warnf("Failed to fetch %s: %v", req.URL, err)
			s.sendError(w, "Failed to fetch page", http.StatusBadGateway)
			return
		}
		markup = html
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		s.sendError(w, "Failed to parse page", http.StatusBadRequest)
		return
	}

	// Per-request settings; nothing is persisted server-side
	settings := types.DefaultSettings()
	settings.HourlyWage = req.Wage
	if req.Mode != "" {
		settings.DisplayMode = req.Mode
	}
	if req.ShowHours != nil {
		settings.ShowHours = *req.ShowHours
	}
	if req.Tiers != nil {
		settings.Tiers = *req.Tiers
	}

	ctrl := controller.New(doc, storage.NewMemoryStore(settings), s.config, s.logger)
	defer ctrl.Close()

	ctrl.Reprocess(ctx)
	prices := ctrl.CurrentPrices()

	annotated, err := doc.Html()
	if err != nil {
		s.logger.Errorf("Failed to render annotated page: %v", err)
		s.sendError(w, "Failed to render annotated page", http.StatusInternalServerError)
		return
	}

	response := AnnotateResponse{
		Success: true,
		Prices:  prices,
		HTML:    annotated,
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Errorf("Failed to encode response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	response := AnnotateResponse{
		Success: false,
		Error:   message,
	}

	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Errorf("Failed to encode error response: %v", err)
	}
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// Start starts the API server
func (s *Server) Start(port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/annotate", s.handleAnnotate)
	mux.HandleFunc("/health", s.handleHealth)

	handler := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodPost, http.MethodGet},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(mux)

	s.logger.Infof("Starting API server on port %s", port)
	s.logger.Info("Available endpoints:")
	s.logger.Info("  POST /annotate - Annotate a page with work-hours equivalents")
	s.logger.Info("  GET  /health   - Health check")

	return http.ListenAndServe(":"+port, handler)
}

func main() {
	// Get port from environment variable, default to 8080
	serverPort := "8080"
	if envPort := os.Getenv("API_PORT"); envPort != "" {
		serverPort = envPort
		fmt.Printf("Using port from environment variable API_PORT: %s\n", serverPort)
	}

	server := NewServer()
	log.Fatal(server.Start(serverPort))
}
