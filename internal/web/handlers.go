package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/JonMunkholm/explorer/internal/core"
	"github.com/JonMunkholm/explorer/internal/render"
)

// maxMemory is the multipart memory threshold before spilling to disk.
const maxMemory = 32 << 20

// readUpload reads the "file" form field, enforcing the configured size limit.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var mbe *http.MaxBytesError
		switch {
		case errors.As(err, &mbe), strings.Contains(err.Error(), "request body too large"):
			return "", nil, fmt.Errorf("%w: limit %d bytes", errFileTooLarge, s.cfg.Upload.MaxFileSize)
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			return "", nil, errNoFile
		}
		return "", nil, fmt.Errorf("parse form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, errNoFile
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return header.Filename, data, nil
}

// load reads the upload and hands it to the controller under the upload timeout.
func (s *Server) load(w http.ResponseWriter, r *http.Request, sess *core.Session) (*core.View, error) {
	name, data, err := s.readUpload(w, r)
	if err != nil {
		return nil, err
	}

	ctx := r.Context()
	if s.cfg.Upload.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Upload.Timeout)
		defer cancel()
	}
	return s.ctrl.Load(ctx, sess, name, data)
}

// Pages

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	view, err := s.ctrl.Render(r.Context(), sess)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	s.renderPage(w, r, http.StatusOK, view, nil)
}

func (s *Server) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if _, err := s.load(w, r, sess); err != nil {
		s.renderPageError(w, r, sess, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSelectForm(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	ev, err := parseEvent(r.PostFormValue("control"), r.PostFormValue("column"))
	if err == nil {
		_, err = s.ctrl.Handle(r.Context(), sess, ev)
	}
	if err != nil {
		s.renderPageError(w, r, sess, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleResetForm(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Reset(r.Context(), sessionFrom(r.Context()))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// renderPageError shows the page for the session's current state with an
// error banner. A failed load has already left the session Empty.
func (s *Server) renderPageError(w http.ResponseWriter, r *http.Request, sess *core.Session, err error) {
	status := statusFor(err)
	msg := logError(r, err, status)

	view, rerr := s.ctrl.Render(r.Context(), sess)
	if rerr != nil {
		s.respondError(w, r, rerr, statusFor(rerr))
		return
	}
	s.renderPage(w, r, status, view, &pageError{UserMessage: msg, RequestID: requestID(r)})
}

// Chart images

func (s *Server) handleHistogramPNG(w http.ResponseWriter, r *http.Request) {
	spec, err := s.ctrl.StaticHistogram(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	s.writePNG(w, r, func(buf io.Writer) error {
		return render.Histogram(buf, spec, s.chartSize())
	})
}

func (s *Server) handlePiePNG(w http.ResponseWriter, r *http.Request) {
	spec, err := s.ctrl.StaticPie(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	s.writePNG(w, r, func(buf io.Writer) error {
		return render.Pie(buf, spec, s.chartSize())
	})
}

// writePNG renders into a buffer first so a drawing failure can still
// produce an error status.
func (s *Server) writePNG(w http.ResponseWriter, r *http.Request, draw func(io.Writer) error) {
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, render.ErrNoData) {
			status = http.StatusNotFound
		}
		s.respondError(w, r, err, status)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// API

// selectRequest is the body of POST /api/select.
type selectRequest struct {
	Control string `json:"control"`
	Column  string `json:"column"`
}

func (s *Server) handleAPISession(w http.ResponseWriter, r *http.Request) {
	view, err := s.ctrl.Render(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAPIUpload(w http.ResponseWriter, r *http.Request) {
	view, err := s.load(w, r, sessionFrom(r.Context()))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAPISelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: malformed request body", core.ErrInvalidSelection), http.StatusBadRequest)
		return
	}

	ev, err := parseEvent(req.Control, req.Column)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	view, err := s.ctrl.Handle(r.Context(), sessionFrom(r.Context()), ev)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAPIReset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Reset(r.Context(), sessionFrom(r.Context())))
}

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status   string                  `json:"status"`
	Sessions int                     `json:"sessions"`
	Loads    *core.LoadLimiterStatus `json:"loads,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Sessions: s.sessions.Len()}
	if s.limiter != nil {
		st := s.limiter.Status()
		resp.Loads = &st
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseEvent(control, column string) (core.Event, error) {
	kind, err := core.ParseEventKind(control)
	if err != nil {
		return core.Event{}, err
	}
	return core.Event{Kind: kind, Column: column}, nil
}
