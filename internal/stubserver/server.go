// Package stubserver is an in-memory implementation of the backend
// contract the console consumes. It exists for integration tests and
// for `aidesk dev-server`, so the console can be exercised without the
// real agent platform.
package stubserver

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/osaleh/aidesk/internal/api"
)

type account struct {
	user         api.User
	passwordHash []byte
	profile      api.BusinessProfile
}

// Server holds all backend state in memory.
type Server struct {
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *zap.Logger
	router    chi.Router

	mu        sync.Mutex
	accounts  map[string]*account // keyed by email
	byID      map[string]*account
	approvals []*api.ApprovalItem
	events    []api.EngagementEvent
	sessions  int
}

// New creates an empty stub backend. Accounts are created through
// /auth/signup or Seed.
func New(logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		jwtSecret: []byte(uuid.NewString()),
		tokenTTL:  24 * time.Hour,
		logger:    logger,
		accounts:  make(map[string]*account),
		byID:      make(map[string]*account),
	}
	s.router = s.buildRouter()
	return s
}

// Router returns the HTTP handler, for mounting under httptest or a
// real listener.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/signup", s.handleSignup)

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Get("/approvals/pending", s.handlePendingApprovals)
		r.Patch("/approvals/{id}/status", s.handleUpdateApproval)
		r.Get("/dashboard/stats", s.handleStats)
		r.Get("/dashboard/engagement", s.handleEngagement)
		r.Get("/dashboard/search", s.handleSearch)
		r.Get("/dashboard/export", s.handleExport)
		r.Get("/businesses/profile", s.handleGetProfile)
		r.Patch("/businesses/profile", s.handleUpdateProfile)
		r.Post("/whatsapp/simulate", s.handleSimulate)
	})

	return r
}

// ListenAndServe runs the stub on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	s.logger.Info("stub backend listening", zap.String("addr", addr))
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// CreateAccount registers an account directly, bypassing HTTP. Used by
// Seed and tests.
func (s *Server) CreateAccount(name, businessName, email, password string) (api.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return api.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[email]; exists {
		return api.User{}, fmt.Errorf("account %s already exists", email)
	}
	acct := &account{
		user: api.User{
			ID:           uuid.NewString(),
			Name:         name,
			BusinessName: businessName,
			Email:        email,
		},
		passwordHash: hash,
	}
	s.accounts[email] = acct
	s.byID[acct.user.ID] = acct
	return acct.user, nil
}

func (s *Server) issueToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(s.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.jwtSecret)
}

type contextKey string

const accountKey contextKey = "account"

// requireToken validates the bearer token and injects the account.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			writeError(w, http.StatusUnauthorized, "invalid authorization header")
			return
		}

		claims := jwt.MapClaims{}
		tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return s.jwtSecret, nil
		})
		if err != nil || !tkn.Valid {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		sub, _ := claims["sub"].(string)
		s.mu.Lock()
		acct := s.byID[sub]
		s.mu.Unlock()
		if acct == nil {
			writeError(w, http.StatusUnauthorized, "unknown account")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), accountKey, acct)))
	})
}

func requestAccount(r *http.Request) *account {
	acct, _ := r.Context().Value(accountKey).(*account)
	return acct
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	acct := s.accounts[req.Email]
	s.mu.Unlock()

	if acct == nil || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.issueToken(acct.user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	s.mu.Lock()
	s.sessions++
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, api.AuthResponse{AccessToken: token, User: acct.user})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req api.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" || req.BusinessName == "" {
		writeError(w, http.StatusBadRequest, "name, businessName, email and password are required")
		return
	}

	user, err := s.CreateAccount(req.Name, req.BusinessName, req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusConflict, "an account with this email already exists")
		return
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	s.mu.Lock()
	s.sessions++
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, api.AuthResponse{AccessToken: token, User: user})
}

func (s *Server) handlePendingApprovals(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	pending := make([]api.ApprovalItem, 0)
	for _, item := range s.approvals {
		if item.Status == api.ApprovalPending {
			pending = append(pending, *item)
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, pending)
}

func (s *Server) handleUpdateApproval(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Status api.ApprovalStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Status != api.ApprovalApproved && body.Status != api.ApprovalRejected {
		writeError(w, http.StatusBadRequest, "status must be APPROVED or REJECTED")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var item *api.ApprovalItem
	for _, candidate := range s.approvals {
		if candidate.ID == id {
			item = candidate
			break
		}
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "approval not found")
		return
	}
	if item.Status != api.ApprovalPending {
		writeError(w, http.StatusConflict, "approval has already been decided")
		return
	}

	item.Status = body.Status
	s.appendEventLocked(api.EngagementEvent{
		Content: item.ProposedAction.ReplyText,
		Intent:  item.WorkflowRule.IntentName,
		Status:  string(body.Status),
	})
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	pending := 0
	for _, item := range s.approvals {
		if item.Status == api.ApprovalPending {
			pending++
		}
	}
	stats := api.DashboardStats{
		TotalInteractions: len(s.events),
		ActiveSessions:    s.sessions,
		PendingApprovals:  pending,
		SystemHealth:      99.2,
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleEngagement(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	events := make([]api.EngagementEvent, len(s.events))
	copy(events, s.events)
	s.mu.Unlock()

	sort.Slice(events, func(i, j int) bool { return events[i].CreatedAt.After(events[j].CreatedAt) })
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(r.URL.Query().Get("q"))

	s.mu.Lock()
	matches := make([]api.EngagementEvent, 0)
	for _, ev := range s.events {
		if query == "" ||
			strings.Contains(strings.ToLower(ev.Content), query) ||
			strings.Contains(strings.ToLower(ev.Intent), query) {
			matches = append(matches, ev)
		}
	}
	s.mu.Unlock()

	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	events := make([]api.EngagementEvent, len(s.events))
	copy(events, s.events)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="logs.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "content", "intent", "status", "createdAt"})
	for _, ev := range events {
		_ = cw.Write([]string{ev.ID, ev.Content, ev.Intent, ev.Status, ev.CreatedAt.Format(time.RFC3339)})
	}
	cw.Flush()
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	acct := requestAccount(r)
	s.mu.Lock()
	profile := acct.profile
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	acct := requestAccount(r)

	var update api.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	if update.KnowledgeBase != nil {
		acct.profile.KnowledgeBase = *update.KnowledgeBase
	}
	if update.AIInstructions != nil {
		acct.profile.AIInstructions = *update.AIInstructions
	}
	profile := acct.profile
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req api.SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "message text must not be empty")
		return
	}

	intent, confidence, needsApproval := classifyIntent(req.Text)

	s.mu.Lock()
	s.appendEventLocked(api.EngagementEvent{
		Content: req.Text,
		Intent:  intent,
		Status:  eventStatus(needsApproval),
	})
	if needsApproval {
		s.approvals = append(s.approvals, &api.ApprovalItem{
			ID: uuid.NewString(),
			WorkflowRule: api.WorkflowRule{
				IntentName:    intent,
				MinConfidence: 0.75,
			},
			ProposedAction: api.ProposedAction{
				OriginalText: req.Text,
				ReplyText:    proposedReply(intent),
			},
			Status: api.ApprovalPending,
		})
	}
	s.mu.Unlock()

	var result api.SimulationResult
	result.Analysis.Intent = intent
	result.Analysis.Confidence = confidence
	result.NeedsApproval = needsApproval
	writeJSON(w, http.StatusOK, result)
}

func eventStatus(needsApproval bool) string {
	if needsApproval {
		return "PENDING"
	}
	return "HANDLED"
}

// appendEventLocked adds an engagement entry. Callers hold s.mu.
func (s *Server) appendEventLocked(ev api.EngagementEvent) {
	ev.ID = uuid.NewString()
	ev.CreatedAt = time.Now().UTC()
	s.events = append(s.events, ev)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
