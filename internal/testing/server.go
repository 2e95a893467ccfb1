package testing

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/desertthunder/transx/internal/models"
)

// UploadRecord captures the multipart fields of the last /upload call.
type UploadRecord struct {
	Filename    string
	FileContent string
	Text        string
}

// FakeServer is an in-process stand-in for the translation server's endpoints.
//
// Responses are configured with the Set and Fail methods before requests are made. Recorded requests are read back through the accessor methods.
type FakeServer struct {
	*httptest.Server

	mu       sync.Mutex
	chapters []models.Chapter
	statuses []map[string]string
	failures map[string]int
	rawBody  map[string]string

	translate models.TranslateRangeResponse
	exportURL string
	epub      []byte

	calls         map[string]int
	cookies       map[string]string
	lastUpload    *UploadRecord
	lastTranslate *models.TranslateRangeRequest
	lastExport    *models.ExportRequest
}

// NewFakeServer starts a FakeServer that is closed when the test finishes.
func NewFakeServer(t *testing.T) *FakeServer {
	t.Helper()

	f := &FakeServer{
		failures:  map[string]int{},
		rawBody:   map[string]string{},
		calls:     map[string]int{},
		cookies:   map[string]string{},
		translate: models.TranslateRangeResponse{Status: models.StatusSuccess},
		exportURL: "/download/book.epub",
		epub:      []byte("PK\x03\x04epub"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload", f.handleUpload)
	mux.HandleFunc("GET /status", f.handleStatus)
	mux.HandleFunc("POST /translate-range", f.handleTranslate)
	mux.HandleFunc("POST /export-epub", f.handleExport)
	mux.HandleFunc("GET /download/{file}", f.handleDownload)

	f.Server = httptest.NewServer(f.record(mux))
	t.Cleanup(f.Close)
	return f
}

// SetChapters sets the /upload response.
func (f *FakeServer) SetChapters(chapters []models.Chapter) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chapters = chapters
}

// SetStatuses queues /status responses. Each call consumes one; the last one repeats.
func (f *FakeServer) SetStatuses(statuses ...map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = statuses
}

// SetTranslateResponse sets the /translate-range response.
func (f *FakeServer) SetTranslateResponse(resp models.TranslateRangeResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.translate = resp
}

// SetExport sets the URL returned by /export-epub and the bytes served for downloads.
func (f *FakeServer) SetExport(url string, epub []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exportURL = url
	f.epub = epub
}

// Fail makes every request to path answer with code.
func (f *FakeServer) Fail(path string, code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[path] = code
}

// RawBody makes path answer 200 with body verbatim, bypassing the JSON handlers.
func (f *FakeServer) RawBody(path, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rawBody[path] = body
}

// Calls returns how many requests reached path.
func (f *FakeServer) Calls(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

// Cookie returns the last value of the named cookie seen on any request.
func (f *FakeServer) Cookie(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cookies[name]
}

// LastUpload returns the fields of the last /upload request.
func (f *FakeServer) LastUpload() *UploadRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastUpload
}

// LastTranslate returns the body of the last /translate-range request.
func (f *FakeServer) LastTranslate() *models.TranslateRangeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastTranslate
}

// LastExport returns the body of the last /export-epub request.
func (f *FakeServer) LastExport() *models.ExportRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastExport
}

func (f *FakeServer) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls[r.URL.Path]++
		for _, c := range r.Cookies() {
			f.cookies[c.Name] = c.Value
		}
		code, failing := f.failures[r.URL.Path]
		body, raw := f.rawBody[r.URL.Path]
		f.mu.Unlock()

		switch {
		case failing:
			http.Error(w, http.StatusText(code), code)
		case raw:
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, body)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func (f *FakeServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec := &UploadRecord{Text: r.FormValue("text")}
	if file, header, err := r.FormFile("file"); err == nil {
		data, _ := io.ReadAll(file)
		file.Close()
		rec.Filename = header.Filename
		rec.FileContent = string(data)
	}

	f.mu.Lock()
	f.lastUpload = rec
	chapters := f.chapters
	f.mu.Unlock()

	if chapters == nil {
		chapters = []models.Chapter{}
	}
	writeJSON(w, chapters)
}

func (f *FakeServer) handleStatus(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	translated := map[string]string{}
	if len(f.statuses) > 0 {
		translated = f.statuses[0]
		if len(f.statuses) > 1 {
			f.statuses = f.statuses[1:]
		}
	}
	f.mu.Unlock()

	writeJSON(w, models.SessionStatus{Translated: translated})
}

func (f *FakeServer) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req models.TranslateRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.lastTranslate = &req
	resp := f.translate
	f.mu.Unlock()

	writeJSON(w, resp)
}

func (f *FakeServer) handleExport(w http.ResponseWriter, r *http.Request) {
	var req models.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.lastExport = &req
	url := f.exportURL
	f.mu.Unlock()

	writeJSON(w, models.ExportResponse{URL: url})
}

func (f *FakeServer) handleDownload(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	epub := f.epub
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/epub+zip")
	w.Write(epub)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
