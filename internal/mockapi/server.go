// Package mockapi serves an in-memory imitation of the Telegram file server.
// It follows the routes and response shapes of the real server closely enough
// to drive the client end to end without Telegram.
package mockapi

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"telegram-files-client/internal/api"
)

// File is a file served by the mock, with optional content for streaming.
type File struct {
	api.RemoteFile
	Content []byte `json:"-"`
}

// Server holds the mock's state. Exported fields may be set before Handler is
// called; afterwards use the methods, which lock.
type Server struct {
	mu sync.Mutex

	Setup           bool
	Authenticated   bool
	RequirePassword bool
	Code            string
	Password        string
	PasswordHint    string

	Groups []api.Group
	Files  map[string][]File

	calls []string
}

// New returns a server with no credentials, no session and no data.
func New() *Server {
	return &Server{Files: make(map[string][]File)}
}

// AddGroup registers a group and its files.
func (s *Server) AddGroup(group api.Group, files ...File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Groups = append(s.Groups, group)
	if s.Files == nil {
		s.Files = make(map[string][]File)
	}
	s.Files[group.ID.String()] = append(s.Files[group.ID.String()], files...)
}

// Calls returns "METHOD path" for every request served so far.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /auth/status", s.handleStatus)
	mux.HandleFunc("POST /auth/setup", s.handleSetup)
	mux.HandleFunc("POST /auth/send-code", s.handleSendCode)
	mux.HandleFunc("POST /auth/verify-code", s.handleVerifyCode)
	mux.HandleFunc("POST /auth/verify-password", s.handleVerifyPassword)

	mux.HandleFunc("GET /groups", s.requireAuth(s.handleListGroups))
	mux.HandleFunc("GET /groups/{id}", s.requireAuth(s.handleGetGroup))

	// /files/group/{groupId} and /files/{id}/stream overlap on
	// /files/group/stream, so both are dispatched from one pattern.
	mux.HandleFunc("GET /files/{first}/{second}", s.requireAuth(s.handleFiles))
	mux.HandleFunc("GET /files/group/{groupId}/file/{id}/stream", s.requireAuth(s.handleGroupStream))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return s.record(mux)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		authenticated := s.Authenticated
		s.mu.Unlock()
		if !authenticated {
			sendJSON(w, http.StatusUnauthorized, map[string]any{"error": "Not authenticated", "needsAuth": true})
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sendJSON(w, http.StatusOK, map[string]any{
		"isAuthenticated": s.Authenticated,
		"needsPassword":   s.RequirePassword && !s.Authenticated,
		"setup":           s.Setup,
	})
}

func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		APIID   string `json:"apiId"`
		APIHash string `json:"apiHash"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.APIID == "" || req.APIHash == "" {
		sendError(w, http.StatusBadRequest, "Missing API credentials")
		return
	}

	s.mu.Lock()
	s.Setup = true
	s.mu.Unlock()
	log.Printf("[MockAPI] API credentials saved: apiId=%s", req.APIID)
	sendJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleSendCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PhoneNumber == "" {
		sendError(w, http.StatusBadRequest, "Phone number required")
		return
	}

	s.mu.Lock()
	setup := s.Setup
	s.mu.Unlock()
	if !setup {
		sendError(w, http.StatusInternalServerError, "API credentials not configured")
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"phoneCodeHash": "mock-hash-" + strings.TrimPrefix(req.PhoneNumber, "+"),
		"timeout":       120,
	})
}

func (s *Server) handleVerifyCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		sendError(w, http.StatusBadRequest, "Verification code required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Code != "" && req.Code != s.Code {
		sendError(w, http.StatusInternalServerError, "PHONE_CODE_INVALID")
		return
	}
	if s.RequirePassword {
		resp := map[string]any{
			"success":       false,
			"needsPassword": true,
			"message":       "2FA password required",
		}
		if s.PasswordHint != "" {
			resp["hint"] = s.PasswordHint
		}
		sendJSON(w, http.StatusOK, resp)
		return
	}

	s.Authenticated = true
	sendJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"session": "mock-session",
		"user":    map[string]any{"id": 1, "firstName": "Mock"},
	})
}

func (s *Server) handleVerifyPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		sendError(w, http.StatusBadRequest, "Password required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if req.Password != s.Password {
		sendError(w, http.StatusInternalServerError, "PASSWORD_HASH_INVALID")
		return
	}
	s.Authenticated = true
	sendJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	groups := s.Groups
	if groups == nil {
		groups = []api.Group{}
	}
	sendJSON(w, http.StatusOK, groups)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.Groups {
		if g.ID.String() != id {
			continue
		}
		groupType := g.Type
		if groupType == "" {
			groupType = "group"
		}
		sendJSON(w, http.StatusOK, api.GroupDetails{
			ID:          g.ID,
			Name:        g.Name,
			Type:        groupType,
			MemberCount: g.MemberCount,
		})
		return
	}
	sendError(w, http.StatusInternalServerError, "Could not find the input entity for "+id)
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	first, second := r.PathValue("first"), r.PathValue("second")
	switch {
	case first == "group":
		s.handleListFiles(w, second)
	case second == "stream" || second == "download":
		s.stream(w, r, r.URL.Query().Get("groupId"), first)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleGroupStream(w http.ResponseWriter, r *http.Request) {
	s.stream(w, r, r.PathValue("groupId"), r.PathValue("id"))
}

func (s *Server) handleListFiles(w http.ResponseWriter, groupID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	files, ok := s.Files[groupID]
	if !ok {
		sendError(w, http.StatusInternalServerError, "Could not find the input entity for "+groupID)
		return
	}
	listed := make([]api.RemoteFile, 0, len(files))
	for _, f := range files {
		listed = append(listed, f.RemoteFile)
	}
	sendJSON(w, http.StatusOK, map[string]any{"success": true, "files": listed})
}

// stream serves a file's content, looking in groupID first and then in every
// group, the way the real server falls back to saved messages.
func (s *Server) stream(w http.ResponseWriter, r *http.Request, groupID, fileID string) {
	s.mu.Lock()
	file, ok := s.findFile(groupID, fileID)
	s.mu.Unlock()
	if !ok {
		sendJSON(w, http.StatusNotFound, map[string]any{
			"error":   "No media found",
			"details": map[string]string{"fileId": fileID, "groupId": groupID},
		})
		return
	}

	mime := file.Mime
	if mime == "" {
		mime = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mime)
	http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(file.Content))
}

func (s *Server) findFile(groupID, fileID string) (File, bool) {
	if groupID != "" {
		for _, f := range s.Files[groupID] {
			if f.ID.String() == fileID {
				return f, true
			}
		}
	}
	for _, files := range s.Files {
		for _, f := range files {
			if f.ID.String() == fileID {
				return f, true
			}
		}
	}
	return File{}, false
}

func sendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func sendError(w http.ResponseWriter, status int, message string) {
	sendJSON(w, status, map[string]string{"error": message})
}
