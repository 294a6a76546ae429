// Package server exposes the analysis pipeline over HTTP: a multipart
// upload endpoint that returns the full JSON report, plus a health
// probe. Upload handling, validation and temp-file lifecycle live
// here; the core pipeline never touches the network.
package server

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"screencheck/pkg/analyzer"
	"screencheck/pkg/config"
	"screencheck/pkg/fingerprint"
	"screencheck/pkg/models"
)

// allowedExtensions is the upload allowlist.
var allowedExtensions = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true,
	"bmp": true, "webp": true, "tiff": true, "tif": true,
}

// Server handles analysis requests.
type Server struct {
	cfg   *config.Config
	index *fingerprint.Store // nil when the near-duplicate index is disabled
}

// New builds a Server and makes sure the upload directory exists.
func New(cfg *config.Config) (*Server, error) {
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	s := &Server{cfg: cfg}
	if cfg.NearDuplicateIndex {
		s.index = fingerprint.NewStore()
	}
	return s, nil
}

// Handler returns the HTTP routing for the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	return mux
}

// ListenAndServe runs the server until it fails.
func (s *Server) ListenAndServe() error {
	log.Printf("screencheck listening on %s", s.cfg.Listen)
	return http.ListenAndServe(s.cfg.Listen, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "screencheck API is running",
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded. Send a file with key 'file'.")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "Empty filename.")
		return
	}

	ext, ok := allowedExtension(header.Filename)
	if !ok {
		writeError(w, http.StatusBadRequest, "File type not allowed. Accepted: png, jpg, jpeg, gif, bmp, webp, tiff, tif")
		return
	}

	tempPath := filepath.Join(s.cfg.UploadDir, randomName()+"."+ext)
	out, err := os.Create(tempPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store upload.")
		return
	}
	defer os.Remove(tempPath)

	written, err := out.ReadFrom(file)
	closeErr := out.Close()
	if err != nil || closeErr != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("File too large. Maximum size is %d MB.", s.cfg.MaxUploadBytes/(1024*1024)))
		return
	}
	if written > s.cfg.MaxUploadBytes {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("File too large. Maximum size is %d MB.", s.cfg.MaxUploadBytes/(1024*1024)))
		return
	}

	report, decoded, err := analyzer.AnalyzeFile(tempPath)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Analysis failed: %v", err))
		return
	}
	report.Filename = header.Filename

	if s.index != nil {
		if match, found := s.index.Query(decoded.Img); found {
			report.NearDuplicate = &models.NearDuplicate{
				Filename: match.ID,
				Score:    match.Score,
			}
		}
		s.index.Add(header.Filename, decoded.Img)
	}

	writeJSON(w, http.StatusOK, report)
}

func allowedExtension(filename string) (string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	return ext, allowedExtensions[ext]
}

// randomName generates a hex name for the temp file so uploads never
// collide or leak the caller's filename into the filesystem.
func randomName() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("upload_%d", os.Getpid())
	}
	return hex.EncodeToString(b[:])
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
