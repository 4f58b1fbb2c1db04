// Package web is the upload boundary around the transform pipeline: a form
// page, one processing endpoint and an inline download response.
package web

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"kowake/internal/config"
	"kowake/internal/logging"
	"kowake/internal/pipeline"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Server struct {
	cfg    config.Config
	proc   *pipeline.Processor
	router *chi.Mux
}

func NewServer(cfg config.Config, proc *pipeline.Processor) *Server {
	s := &Server{cfg: cfg, proc: proc, router: chi.NewRouter()}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/", s.handleIndex)
	s.router.Post("/process", s.handleProcess)

	return s
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, "")
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	maxBytes := int64(s.cfg.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		renderPage(w, http.StatusBadRequest, "ファイルが大きすぎるか、フォームの内容が不正です。")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		renderPage(w, http.StatusBadRequest, "Excelファイルが選択されていません。")
		return
	}
	defer file.Close()

	input, err := io.ReadAll(file)
	if err != nil {
		renderPage(w, http.StatusInternalServerError, "アップロードされたファイルを読み取れませんでした。")
		return
	}

	sheet := strings.TrimSpace(r.FormValue("sheet"))
	res := s.proc.Process(input, sheet)

	if !res.OK {
		logger.Warn("process failed", "upload", header.Filename, "message", res.Message)
		renderPage(w, http.StatusUnprocessableEntity, res.Message)
		return
	}
	if len(res.Artifact) == 0 {
		logger.Info("process empty result", "upload", header.Filename)
		renderPage(w, http.StatusOK, res.Message)
		return
	}

	logger.Info("process done", "upload", header.Filename, "output", res.Filename, "bytes", len(res.Artifact))

	w.Header().Set("Content-Type", xlsxMIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(res.Filename)))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Artifact)))
	_, _ = w.Write(res.Artifact)
}
