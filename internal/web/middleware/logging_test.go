package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponseWriter_RecordsStatusAndBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	ww := &responseWriter{ResponseWriter: rec, status: http.StatusOK}

	ww.WriteHeader(http.StatusCreated)
	ww.WriteHeader(http.StatusInternalServerError)
	if _, err := ww.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}

	if ww.status != http.StatusCreated {
		t.Errorf("status = %d, want %d", ww.status, http.StatusCreated)
	}
	if ww.bytes != 5 {
		t.Errorf("bytes = %d, want 5", ww.bytes)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("recorded = %d, want %d", rec.Code, http.StatusCreated)
	}
}

func TestLogger_PassesThrough(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
}
