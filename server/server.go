// Package server exposes a small HTTP surface for monitoring a live capture
// session from a browser: the latest preview frame, the captured photo list,
// and session status.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/stashlens/capturekit/domain/capture"
	"github.com/stashlens/capturekit/domain/photo"
)

const shutdownTimeout = 5 * time.Second

// CaptureSource narrows what the server reads from the capture layer.
type CaptureSource interface {
	PreviewFrame() image.Image
	Images() []capture.CapturedImage
	State() capture.SessionState
	Ready() bool
	ZoomLabel() string
	Mode() capture.Mode
	PhotoCount() int
}

// Server serves the preview endpoints. Construct with New; Start and Stop
// are not concurrency-safe against each other.
type Server struct {
	addr   string
	source CaptureSource
	logger *slog.Logger

	mu      sync.Mutex
	srv     *http.Server
	running bool
}

func New(addr string, source CaptureSource, logger *slog.Logger) *Server {
	return &Server{addr: addr, source: source, logger: logger}
}

// Router builds the HTTP routes. Exposed for tests.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/photos", s.handlePhotos).Methods(http.MethodGet)
	r.HandleFunc("/api/photos/{id}", s.handlePhoto).Methods(http.MethodGet)
	r.HandleFunc("/preview.jpg", s.handlePreview).Methods(http.MethodGet)
	return r
}

// Start launches the listener on its own goroutine.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("server already running on %s", s.addr)
	}
	s.srv = &http.Server{Addr: s.addr, Handler: s.Router()}
	go func() {
		if s.logger != nil {
			s.logger.Info("preview server listening", "addr", s.addr)
		}
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Error("preview server error", "error", err)
			}
		}
	}()
	s.running = true
	return nil
}

// Stop shuts the listener down gracefully.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.srv.Shutdown(ctx)
	s.running = false
	return err
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintln(w, "capturekit preview server")
	fmt.Fprintln(w, "GET /api/status   session status")
	fmt.Fprintln(w, "GET /api/photos   captured photo metadata")
	fmt.Fprintln(w, "GET /preview.jpg  latest preview frame")
}

type statusResponse struct {
	State  string `json:"state"`
	Ready  bool   `json:"ready"`
	Mode   string `json:"mode"`
	Zoom   string `json:"zoom"`
	Photos int    `json:"photos"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		State:  s.source.State().String(),
		Ready:  s.source.Ready(),
		Mode:   s.source.Mode().String(),
		Zoom:   s.source.ZoomLabel(),
		Photos: s.source.PhotoCount(),
	}
	writeJSON(w, resp)
}

type photoMeta struct {
	ID         string    `json:"id"`
	Sequence   int       `json:"sequence"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Position   string    `json:"position"`
	CapturedAt time.Time `json:"capturedAt"`
}

func (s *Server) handlePhotos(w http.ResponseWriter, r *http.Request) {
	images := s.source.Images()
	metas := make([]photoMeta, 0, len(images))
	for _, img := range images {
		b := img.Image.Bounds()
		metas = append(metas, photoMeta{
			ID:         img.ID,
			Sequence:   img.Sequence,
			Width:      b.Dx(),
			Height:     b.Dy(),
			Position:   img.Position.String(),
			CapturedAt: img.CapturedAt,
		})
	}
	writeJSON(w, metas)
}

func (s *Server) handlePhoto(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	for _, img := range s.source.Images() {
		if img.ID != id {
			continue
		}
		data := photo.EncodePNG(img.Image)
		if len(data) == 0 {
			http.Error(w, "encode failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
		return
	}
	http.Error(w, "photo not found", http.StatusNotFound)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	frame := s.source.PreviewFrame()
	if frame == nil {
		http.Error(w, "no preview available", http.StatusServiceUnavailable)
		return
	}
	data := photo.EncodeJPEG(frame, 80)
	if len(data) == 0 {
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode failed", http.StatusInternalServerError)
	}
}
