package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/client/models"
	"github.com/dmitrijs2005/filekeeper/internal/timex"
)

const goodPassword = "s3cret"

// fakeBackend is a small in-memory FileKeeper server.
type fakeBackend struct {
	mu       sync.Mutex
	files    []models.File
	contents map[int64]string
	nextID   int64

	expired      bool
	logoutStatus int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{contents: map[int64]string{}, nextID: 1}
}

func (b *fakeBackend) addFile(name, content string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.files = append(b.files, models.File{
		ID:              id,
		Filename:        name,
		Size:            int64(len(content)),
		UploadTimestamp: timex.Timestamp{Time: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
	})
	b.contents[id] = content
	return id
}

func (b *fakeBackend) setExpired(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expired = v
}

func (b *fakeBackend) fileNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.files))
	for _, f := range b.files {
		names = append(names, f.Filename)
	}
	return names
}

func reply(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func detail(w http.ResponseWriter, code int, msg string) {
	reply(w, code, models.ErrorResponse{Detail: msg})
}

func (b *fakeBackend) authorized(r *http.Request) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.expired && strings.HasPrefix(r.Header.Get("Authorization"), "Bearer tok-")
}

func (b *fakeBackend) withAuth(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !b.authorized(r) {
			detail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		h(w, r)
	}
}

func (b *fakeBackend) authenticate(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds models.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			detail(w, http.StatusUnprocessableEntity, "bad body")
			return
		}
		if creds.Password != goodPassword {
			detail(w, http.StatusUnauthorized, "Incorrect username or password")
			return
		}
		reply(w, code, models.AuthResponse{Username: creds.Username, Token: "tok-" + creds.Username, Message: "Welcome back, " + creds.Username})
	}
}

func (b *fakeBackend) fileByID(r *http.Request) (int, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	for i, f := range b.files {
		if f.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/login", b.authenticate(http.StatusOK))
	mux.HandleFunc("POST /auth/register", b.authenticate(http.StatusCreated))
	mux.HandleFunc("POST /auth/logout", b.withAuth(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		code := b.logoutStatus
		b.mu.Unlock()
		if code != 0 {
			detail(w, code, "logout failed")
			return
		}
		reply(w, http.StatusOK, map[string]string{"message": "Logged out"})
	}))

	mux.HandleFunc("GET /files", b.withAuth(func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		b.mu.Lock()
		defer b.mu.Unlock()
		end := min(offset+limit, len(b.files))
		start := min(offset, end)
		reply(w, http.StatusOK, models.FilePage{
			Files:  append([]models.File{}, b.files[start:end]...),
			Total:  int64(len(b.files)),
			Limit:  limit,
			Offset: offset,
		})
	}))

	mux.HandleFunc("POST /files/upload", b.withAuth(func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			detail(w, http.StatusBadRequest, "no file")
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		b.addFile(hdr.Filename, string(data))

		b.mu.Lock()
		defer b.mu.Unlock()
		reply(w, http.StatusOK, b.files[len(b.files)-1])
	}))

	mux.HandleFunc("GET /files/{id}/download", b.withAuth(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		i, ok := b.fileByID(r)
		if !ok {
			detail(w, http.StatusNotFound, "File not found")
			return
		}
		f := b.files[i]
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, f.Filename))
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = io.WriteString(w, b.contents[f.ID])
	}))

	mux.HandleFunc("PUT /files/{id}", b.withAuth(func(w http.ResponseWriter, r *http.Request) {
		var req models.RenameRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		b.mu.Lock()
		defer b.mu.Unlock()
		i, ok := b.fileByID(r)
		if !ok {
			detail(w, http.StatusNotFound, "File not found")
			return
		}
		b.files[i].Filename = req.Filename
		reply(w, http.StatusOK, b.files[i])
	}))

	mux.HandleFunc("DELETE /files/{id}", b.withAuth(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		i, ok := b.fileByID(r)
		if !ok {
			detail(w, http.StatusNotFound, "File not found")
			return
		}
		delete(b.contents, b.files[i].ID)
		b.files = append(b.files[:i], b.files[i+1:]...)
		w.WriteHeader(http.StatusNoContent)
	}))

	return mux
}
