// Package sandbox implements a local stand-in for the finance API so the
// cache and its consumers can run without the hosted backend.
package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/finsight/internal/model"
	"github.com/theirongolddev/finsight/internal/store"
)

const defaultListLimit = 100

type ctxKey struct{}

// Server serves the finance API over a Store.
type Server struct {
	store *store.Store
	auth  *Auth
	log   *logrus.Logger
	now   func() time.Time
}

// NewServer builds a Server. A nil logger discards output.
func NewServer(st *store.Store, auth *Auth, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}
	return &Server{store: st, auth: auth, log: log, now: time.Now}
}

// Handler returns the router, mounted under /api.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	authed := api.PathPrefix("/").Subrouter()
	authed.Use(s.requireAuth)
	authed.HandleFunc("/auth/me", s.handleMe).Methods(http.MethodGet)
	authed.HandleFunc("/categories/", s.handleListCategories).Methods(http.MethodGet)
	authed.HandleFunc("/categories/", s.handleCreateCategory).Methods(http.MethodPost)
	authed.HandleFunc("/transactions/", s.handleListTransactions).Methods(http.MethodGet)
	authed.HandleFunc("/transactions/", s.handleCreateTransaction).Methods(http.MethodPost)
	authed.HandleFunc("/transactions/analytics/{period}", s.handleAnalytics).Methods(http.MethodGet)
	authed.HandleFunc("/transactions/{id}", s.handleGetTransaction).Methods(http.MethodGet)
	authed.HandleFunc("/transactions/{id}", s.handleDeleteTransaction).Methods(http.MethodDelete)

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		userID, err := s.auth.Subject(raw)
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, userID)))
	})
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKey{}).(string)
	return id
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	switch {
	case len(req.Username) < 3 || len(req.Username) > 50:
		writeError(w, http.StatusUnprocessableEntity, "username must be 3 to 50 characters")
		return
	case len(req.Password) < 8:
		writeError(w, http.StatusUnprocessableEntity, "password must be at least 8 characters")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "email is not valid")
		return
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		s.internalError(w, err)
		return
	}
	u, err := s.store.CreateUser(r.Context(), store.User{
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hash,
	})
	if errors.Is(err, store.ErrConflict) {
		writeError(w, http.StatusBadRequest, "Username or email already registered")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	u, err := s.store.UserByUsername(r.Context(), req.Username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.internalError(w, err)
		return
	}
	if err != nil || !s.auth.CheckPassword(u.HashedPassword, req.Password) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	tok, err := s.auth.IssueToken(u.ID)
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: tok, TokenType: "bearer"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.store.UserByID(r.Context(), userID(r))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.store.Categories(r.Context(), userID(r))
	if err != nil {
		s.internalError(w, err)
		return
	}
	out := make([]store.Category, 0, len(cats))
	for _, c := range cats {
		out = append(out, c)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var c store.Category
	if !decodeBody(w, r, &c) {
		return
	}
	if c.Name == "" || !c.Type.Valid() {
		writeError(w, http.StatusUnprocessableEntity, "category needs a name and a type of income or expense")
		return
	}
	if c.Color == "" {
		c.Color = defaultCategoryColor
	}
	created, err := s.store.CreateCategory(r.Context(), userID(r), c)
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.ListFilter{
		Type:       model.TransactionType(q.Get("transaction_type")),
		CategoryID: q.Get("category_id"),
		Limit:      defaultListLimit,
	}
	if f.Type != "" && !f.Type.Valid() {
		writeError(w, http.StatusUnprocessableEntity, "transaction_type must be income or expense")
		return
	}

	var err error
	if f.Skip, err = intParam(q.Get("skip"), 0); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "skip must be an integer")
		return
	}
	if f.Limit, err = intParam(q.Get("limit"), defaultListLimit); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "limit must be an integer")
		return
	}
	if f.Start, err = timeParam(q.Get("start_date")); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "start_date must be RFC 3339")
		return
	}
	if f.End, err = timeParam(q.Get("end_date")); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "end_date must be RFC 3339")
		return
	}

	records, err := s.store.ListTransactions(r.Context(), userID(r), f)
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var t model.Transaction
	if !decodeBody(w, r, &t) {
		return
	}
	if !t.Type.Valid() {
		writeError(w, http.StatusUnprocessableEntity, "type must be income or expense")
		return
	}
	if t.Amount <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "amount must be greater than 0")
		return
	}
	if t.Date.IsZero() {
		t.Date = s.now().UTC()
	}

	created, err := s.store.InsertTransaction(r.Context(), userID(r), t)
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.Transaction(r.Context(), userID(r), mux.Vars(r)["id"])
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteTransaction(r.Context(), userID(r), mux.Vars(r)["id"])
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	kind := model.PeriodKind(mux.Vars(r)["period"])
	if !model.ValidPeriodKind(string(kind)) {
		writeError(w, http.StatusBadRequest, errBadPeriod.Error())
		return
	}

	q := r.URL.Query()
	year, err := intParam(q.Get("year"), 0)
	if err != nil || (q.Has("year") && (year < minYear || year > maxYear)) {
		writeError(w, http.StatusUnprocessableEntity, "year must be between 2000 and 2100")
		return
	}
	month, err := intParam(q.Get("month"), 0)
	if err != nil || (q.Has("month") && (month < 1 || month > 12)) {
		writeError(w, http.StatusUnprocessableEntity, "month must be between 1 and 12")
		return
	}

	start, end, err := periodRange(kind, year, month, s.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	uid := userID(r)
	records, err := s.store.ListTransactions(r.Context(), uid, store.ListFilter{Start: start, End: end})
	if err != nil {
		s.internalError(w, err)
		return
	}
	cats, err := s.store.Categories(r.Context(), uid)
	if err != nil {
		s.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.AnalyticsPayload{
		Period:           string(kind),
		Stats:            periodStats(records),
		ExpenseBreakdown: categoryBreakdown(records, model.Expense, cats),
		IncomeBreakdown:  categoryBreakdown(records, model.Income, cats),
	})
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.log.WithError(err).Error("request failed")
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func timeParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}
