// Package apitest provides an in-memory scheduling API for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/javiermolinar/timeflow/internal/schedule"
)

// Account is a user the fake server can log in.
type Account struct {
	ID       string             `json:"id"`
	Login    string             `json:"login"`
	Password string             `json:"-"`
	FullName string             `json:"fullName"`
	Email    string             `json:"email"`
	Role     schedule.Role      `json:"role"`
	Subjects []schedule.Subject `json:"subjects,omitempty"`
}

// Request is a recorded call.
type Request struct {
	Method    string
	Path      string
	Query     string
	Body      []byte
	Auth      string
	RequestID string
}

// Server is a fake of the scheduling API. Seed its exported fields before
// issuing requests; they are guarded by the server's lock afterwards.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	Accounts  []Account
	Subjects  []schedule.Subject
	Slots     []schedule.AvailabilitySlot
	Lessons   map[string][]schedule.Lesson // by teacher ID
	Clients   []schedule.Client
	FreeUsers []Account // answer of POST /users/free
	Requests  []Request

	// Fail forces a status for "METHOD /path" (path without the /api prefix).
	Fail map[string]int
	// Before runs ahead of every handler; tests use it to delay or observe calls.
	Before func(r *http.Request)
	// TokenTTL is the lifetime of issued tokens.
	TokenTTL time.Duration
}

const secret = "apitest-secret"

// New starts a fake server and stops it when t ends. The API lives under /api.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		Lessons:  make(map[string][]schedule.Lesson),
		Fail:     make(map[string]int),
		TokenTTL: time.Hour,
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the API root to configure a client with.
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

// Token issues a token for account id, as a successful login would.
func (s *Server) Token(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.Accounts {
		if a.ID == id {
			return s.issue(a)
		}
	}
	return ""
}

// Recorded returns the calls matching method and path.
func (s *Server) Recorded(method, path string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Request
	for _, r := range s.Requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) issue(a Account) string {
	claims := jwt.MapClaims{
		"sub":  a.ID,
		"role": string(a.Role),
		"exp":  time.Now().Add(s.TokenTTL).Unix(),
	}
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	return tok
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.record)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/login", s.login).Methods("POST")
	api.HandleFunc("/auth/register", s.register).Methods("POST")

	authed := api.NewRoute().Subrouter()
	authed.Use(s.authenticate)
	authed.HandleFunc("/auth/me", s.me).Methods("GET")

	authed.HandleFunc("/users", s.listUsers).Methods("GET")
	authed.HandleFunc("/users/free", s.freeUsers).Methods("POST")
	authed.HandleFunc("/users/{id}", s.updateUser).Methods("PUT")
	authed.HandleFunc("/users/{id}/subjects/{sid}", s.assignSubject).Methods("POST")
	authed.HandleFunc("/users/{id}/subjects/{sid}", s.unassignSubject).Methods("DELETE")

	authed.HandleFunc("/subjects", s.listSubjects).Methods("GET")
	authed.HandleFunc("/subjects", s.createSubject).Methods("POST")
	authed.HandleFunc("/subjects/{id}", s.renameSubject).Methods("PUT")
	authed.HandleFunc("/subjects/{id}", s.deleteSubject).Methods("DELETE")

	authed.HandleFunc("/timeSlots", s.listSlots).Methods("GET")
	authed.HandleFunc("/timeSlots", s.createSlot).Methods("POST")
	authed.HandleFunc("/timeSlots/free/{id}", s.freeSlots).Methods("GET")
	authed.HandleFunc("/timeSlots/{id}", s.deleteSlot).Methods("DELETE")

	authed.HandleFunc("/lessons/range", s.lessonsInRange).Methods("POST")
	authed.HandleFunc("/lessons/client/{id}", s.clientLessons).Methods("GET")
	authed.HandleFunc("/lessons/reschedule", s.reschedule).Methods("POST")
	authed.HandleFunc("/lessons/main-create", s.mainCreate).Methods("POST")
	authed.HandleFunc("/lessons/main-create/{mode}", s.mainCreate).Methods("POST")
	authed.HandleFunc("/lessons/auto-search", s.autoSearch).Methods("POST")
	authed.HandleFunc("/lessons/{id}", s.cancelLesson).Methods("DELETE")

	authed.HandleFunc("/clients", s.listClients).Methods("GET")
	authed.HandleFunc("/clients/search", s.searchClients).Methods("GET")

	return r
}

// record stores the call, runs Before, and applies forced failures.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		path := strings.TrimPrefix(r.URL.Path, "/api")
		s.mu.Lock()
		s.Requests = append(s.Requests, Request{
			Method:    r.Method,
			Path:      path,
			Query:     r.URL.RawQuery,
			Body:      body,
			Auth:      r.Header.Get("Authorization"),
			RequestID: r.Header.Get("X-Request-ID"),
		})
		status, fail := s.Fail[r.Method+" "+path]
		before := s.Before
		s.mu.Unlock()

		if before != nil {
			before(r)
		}
		if fail {
			writeJSON(w, status, map[string]string{"message": fmt.Sprintf("forced %d", status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "missing token"})
			return
		}
		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return []byte(secret), nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid token"})
			return
		}
		sub, _ := claims.GetSubject()
		r.Header.Set("X-Test-User", sub)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.Accounts {
		if a.Login == req.Login && a.Password == req.Password {
			writeJSON(w, http.StatusOK, map[string]string{"token": s.issue(a)})
			return
		}
	}
	writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
}

var roleCodes = map[int]schedule.Role{1: schedule.RoleTeacher, 2: schedule.RoleManager, 3: schedule.RoleAdministrator}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Login    string `json:"login"`
		Password string `json:"password"`
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Role     int    `json:"role"`
	}
	if !decode(w, r, &req) {
		return
	}
	role, ok := roleCodes[req.Role]
	if !ok {
		writeText(w, http.StatusBadRequest, "unknown role")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.Accounts {
		if a.Login == req.Login {
			writeText(w, http.StatusConflict, "login already taken")
			return
		}
	}
	s.Accounts = append(s.Accounts, Account{
		ID: uuid.NewString(), Login: req.Login, Password: req.Password,
		FullName: req.FullName, Email: req.Email, Role: role,
	})
	w.WriteHeader(http.StatusOK)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a := s.account(r.Header.Get("X-Test-User")); a != nil {
		writeJSON(w, http.StatusOK, a)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "user not found"})
}

func (s *Server) listUsers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"users": s.Accounts})
}

func (s *Server) freeUsers(w http.ResponseWriter, r *http.Request) {
	var slots []schedule.SlotPreference
	if !decode(w, r, &slots) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]Account{}, s.FreeUsers...))
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.account(mux.Vars(r)["id"])
	if a == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "user not found"})
		return
	}
	a.FullName, a.Email = req.FullName, req.Email
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) assignSubject(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.account(mux.Vars(r)["id"])
	sub := s.subject(mux.Vars(r)["sid"])
	if a == nil || sub == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
		return
	}
	a.Subjects = append(a.Subjects, *sub)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) unassignSubject(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.account(mux.Vars(r)["id"])
	if a == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "user not found"})
		return
	}
	sid := mux.Vars(r)["sid"]
	kept := a.Subjects[:0]
	for _, sub := range a.Subjects {
		if sub.ID != sid {
			kept = append(kept, sub)
		}
	}
	a.Subjects = kept
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listSubjects(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]schedule.Subject{}, s.Subjects...))
}

func (s *Server) createSubject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := schedule.Subject{ID: uuid.NewString(), Name: req.Name}
	s.Subjects = append(s.Subjects, sub)
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) renameSubject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := s.subject(mux.Vars(r)["id"])
	if sub == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "subject not found"})
		return
	}
	sub.Name = req.Name
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteSubject(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := mux.Vars(r)["id"]
	for i, sub := range s.Subjects {
		if sub.ID == id {
			s.Subjects = append(s.Subjects[:i], s.Subjects[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "subject not found"})
}

func (s *Server) listSlots(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]schedule.AvailabilitySlot{}, s.Slots...))
}

func (s *Server) createSlot(w http.ResponseWriter, r *http.Request) {
	var slot schedule.AvailabilitySlot
	if !decode(w, r, &slot) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	slot.ID = uuid.NewString()
	s.Slots = append(s.Slots, slot)
	writeJSON(w, http.StatusCreated, slot)
}

func (s *Server) freeSlots(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var free []schedule.AvailabilitySlot
	for _, slot := range schedule.SlotsOwnedBy(s.Slots, mux.Vars(r)["id"]) {
		if !slot.IsBusy {
			free = append(free, slot)
		}
	}
	writeJSON(w, http.StatusOK, append([]schedule.AvailabilitySlot{}, free...))
}

func (s *Server) deleteSlot(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := mux.Vars(r)["id"]
	for i, slot := range s.Slots {
		if slot.ID == id {
			s.Slots = append(s.Slots[:i], s.Slots[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "slot not found"})
}

func (s *Server) lessonsInRange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    string `json:"userId"`
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}
	if !decode(w, r, &req) {
		return
	}
	from, err1 := time.Parse(time.RFC3339Nano, req.StartDate)
	to, err2 := time.Parse(time.RFC3339Nano, req.EndDate)
	if err1 != nil || err2 != nil {
		writeText(w, http.StatusBadRequest, "invalid range")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []schedule.Lesson{}
	for _, l := range s.Lessons[req.UserID] {
		if !l.LessonDate.Before(from) && !l.LessonDate.After(to) {
			out = append(out, l)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) clientLessons(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	date := r.URL.Query().Get("date")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []schedule.Lesson{}
	for _, lessons := range s.Lessons {
		for _, l := range lessons {
			if l.Client.ID != id {
				continue
			}
			if date != "" && l.LessonDate.Format("2006-01-02") != date {
				continue
			}
			out = append(out, l)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) reschedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LessonID      string `json:"lessonId"`
		NewLessonDate string `json:"newLessonDate"`
	}
	if !decode(w, r, &req) {
		return
	}
	at, err := time.Parse(time.RFC3339Nano, req.NewLessonDate)
	if err != nil {
		writeText(w, http.StatusBadRequest, "invalid date")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if l := s.lesson(req.LessonID); l != nil {
		l.LessonDate = at
		l.Status = schedule.StatusRescheduled
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "lesson not found"})
}

func (s *Server) cancelLesson(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l := s.lesson(mux.Vars(r)["id"]); l != nil {
		l.Status = schedule.StatusCancelled
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "lesson not found"})
}

// mainCreate answers with the explicit teacher, or the first free user for
// an auto mode.
func (s *Server) mainCreate(w http.ResponseWriter, r *http.Request) {
	var req map[string]any
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if id := r.URL.Query().Get("userId"); id != "" {
		if a := s.account(id); a != nil {
			writeJSON(w, http.StatusOK, a)
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "teacher not found"})
		return
	}
	switch mux.Vars(r)["mode"] {
	case "TheMostFree", "TheLeastFree":
	default:
		writeText(w, http.StatusBadRequest, "unknown mode")
		return
	}
	if len(s.FreeUsers) == 0 {
		writeText(w, http.StatusNotFound, "no free teacher")
		return
	}
	writeJSON(w, http.StatusOK, s.FreeUsers[0])
}

func (s *Server) autoSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientID  string `json:"clientId"`
		DayOfWeek int    `json:"dayOfWeek"`
		Time      string `json:"time"`
		Number    int    `json:"number"`
	}
	if !decode(w, r, &req) {
		return
	}
	day, err := schedule.DayOfWeekFromNumber(req.DayOfWeek)
	if err != nil {
		writeText(w, http.StatusBadRequest, "invalid dayOfWeek")
		return
	}
	writeJSON(w, http.StatusOK, fmt.Sprintf("Booked %d lessons on %s at %s", req.Number, day, req.Time))
}

func (s *Server) listClients(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]schedule.Client{}, s.Clients...))
}

func (s *Server) searchClients(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(r.URL.Query().Get("name"))
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []schedule.Client{}
	for _, c := range s.Clients {
		if strings.Contains(strings.ToLower(c.FullName), name) {
			out = append(out, c)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) account(id string) *Account {
	for i := range s.Accounts {
		if s.Accounts[i].ID == id {
			return &s.Accounts[i]
		}
	}
	return nil
}

func (s *Server) subject(id string) *schedule.Subject {
	for i := range s.Subjects {
		if s.Subjects[i].ID == id {
			return &s.Subjects[i]
		}
	}
	return nil
}

func (s *Server) lesson(id string) *schedule.Lesson {
	for owner := range s.Lessons {
		for i := range s.Lessons[owner] {
			if s.Lessons[owner][i].ID == id {
				return &s.Lessons[owner][i]
			}
		}
	}
	return nil
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeText(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}
