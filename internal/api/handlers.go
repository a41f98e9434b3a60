// Package api exposes HTTP handlers for the fitsocial backend.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/a1dsv/NOVA-sub002/internal/auth"
	"github.com/a1dsv/NOVA-sub002/internal/domain"
	"github.com/a1dsv/NOVA-sub002/internal/goalsync"
	"github.com/a1dsv/NOVA-sub002/internal/middleware"
	"github.com/a1dsv/NOVA-sub002/internal/persistence"
	"github.com/a1dsv/NOVA-sub002/internal/readiness"
)

const (
	maxBodyBytes     = 1 << 20
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// GoalSyncer runs goal sync for one user.
type GoalSyncer interface {
	SyncUser(ctx context.Context, userID, trigger string) (goalsync.Result, error)
}

// ReadinessReporter scores a user's recovery.
type ReadinessReporter interface {
	ForUser(ctx context.Context, userID string) (readiness.Report, error)
}

// Option configures optional behaviour of the Handler.
type Option func(*Handler)

// WithRateLimiter limits searchUser to perMinute calls per caller.
func WithRateLimiter(limiter middleware.RequestRateLimiter, perMinute int) Option {
	return func(h *Handler) {
		h.limiter = limiter
		h.searchPerMinute = perMinute
	}
}

// Handler coordinates HTTP requests with the domain services.
type Handler struct {
	service         *domain.Service
	goals           GoalSyncer
	readiness       ReadinessReporter
	limiter         middleware.RequestRateLimiter
	searchPerMinute int
	functions       map[string]http.Handler
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, goals GoalSyncer, readiness ReadinessReporter, opts ...Option) *Handler {
	h := &Handler{service: service, goals: goals, readiness: readiness}
	for _, opt := range opts {
		opt(h)
	}
	h.functions = map[string]http.Handler{
		"deleteWorkout":           http.HandlerFunc(h.deleteWorkout),
		"removeFriend":            http.HandlerFunc(h.removeFriend),
		"searchUser":              middleware.RateLimit(h.limiter, "searchUser", h.searchPerMinute)(http.HandlerFunc(h.searchUser)),
		"getUsersByIds":           http.HandlerFunc(h.getUsersByIDs),
		"sendMessageNotification": http.HandlerFunc(h.sendMessageNotification),
		"syncGoals":               http.HandlerFunc(h.syncGoals),
		"updateGoalProgress":      http.HandlerFunc(h.updateGoalProgress),
		"cleanupBurnMessages":     http.HandlerFunc(h.cleanupBurnMessages),
	}
	return h
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/v1/functions/", middleware.RequestMetrics("functions")(h.provision(http.HandlerFunc(h.function))))
	mux.Handle("/v1/workouts", middleware.RequestMetrics("workouts")(h.provision(http.HandlerFunc(h.workouts))))
	mux.Handle("/v1/meals", middleware.RequestMetrics("meals")(h.provision(http.HandlerFunc(h.meals))))
	mux.Handle("/v1/goals", middleware.RequestMetrics("goals")(h.provision(http.HandlerFunc(h.goalsRoute))))
	mux.Handle("/v1/readiness", middleware.RequestMetrics("readiness")(h.provision(http.HandlerFunc(h.readinessReport))))
	mux.Handle("/v1/me", middleware.RequestMetrics("me")(h.provision(http.HandlerFunc(h.me))))
	mux.HandleFunc("/healthz", healthz)
}

// provision mirrors the authenticated caller into the user store before the
// route runs. Requests without claims pass through untouched.
func (h *Handler) provision(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFromContext(r.Context())
		if ok {
			if _, err := h.service.EnsureUser(r.Context(), identity); err != nil {
				log.WithError(err).WithField("user_id", identity.UserID).Error("failed to provision caller")
				writeDomainError(w, err)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) function(w http.ResponseWriter, r *http.Request) {
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/functions/"), "/")
	fn, ok := h.functions[name]
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "unknown function "+name)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if _, ok := auth.CallerFromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	fn.ServeHTTP(w, r)
}

func (h *Handler) workouts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createWorkout(w, r)
	case http.MethodGet:
		h.listWorkouts(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) goalsRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createGoal(w, r)
	case http.MethodGet:
		h.listGoals(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	caller, ok := requireCaller(w, r, auth.ScopeWorkoutsRead)
	if !ok {
		return
	}
	user, err := h.service.Me(r.Context(), caller.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) createWorkout(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, auth.ScopeWorkoutsWrite)
	if !ok {
		return
	}
	var req CreateWorkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	workout, err := h.service.CreateWorkout(r.Context(), domain.CreateWorkoutInput{
		UserID:       caller.UserID,
		Title:        req.Title,
		Discipline:   req.Discipline,
		Date:         req.Date,
		DurationMin:  req.DurationMin,
		DistanceKm:   req.DistanceKm,
		RPE:          req.RPE,
		MuscleGroups: req.MuscleGroups,
		Exercises:    req.Exercises,
		Notes:        req.Notes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, workout)
}

func (h *Handler) listWorkouts(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, auth.ScopeWorkoutsRead)
	if !ok {
		return
	}

	limit := defaultPageLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > maxPageLimit {
				parsed = maxPageLimit
			}
			limit = parsed
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid cursor")
		return
	}

	workouts, next, err := h.service.ListWorkouts(r.Context(), caller.UserID, cursor, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if workouts == nil {
		workouts = []domain.Workout{}
	}
	writeJSON(w, http.StatusOK, ListWorkoutsResponse{
		Items:      workouts,
		NextCursor: persistence.EncodeCursor(next),
	})
}

func (h *Handler) meals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	caller, ok := requireCaller(w, r, auth.ScopeWorkoutsWrite)
	if !ok {
		return
	}
	var req CreateMealRequest
	if !decodeBody(w, r, &req) {
		return
	}
	meal, err := h.service.CreateMeal(r.Context(), domain.CreateMealInput{
		UserID:   caller.UserID,
		Name:     req.Name,
		Date:     req.Date,
		Calories: req.Calories,
		ProteinG: req.ProteinG,
		CarbsG:   req.CarbsG,
		FatG:     req.FatG,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, meal)
}

func (h *Handler) createGoal(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, auth.ScopeWorkoutsWrite)
	if !ok {
		return
	}
	var req CreateGoalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	goal, err := h.service.CreateGoal(r.Context(), domain.CreateGoalInput{
		UserID:      caller.UserID,
		Title:       req.Title,
		Discipline:  req.Discipline,
		Metric:      req.Metric,
		Unit:        req.Unit,
		TargetValue: req.TargetValue,
		Direction:   req.Direction,
		Period:      req.Period,
		Deadline:    req.Deadline,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

func (h *Handler) listGoals(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, auth.ScopeWorkoutsRead)
	if !ok {
		return
	}
	goals, err := h.service.ListGoals(r.Context(), caller.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if goals == nil {
		goals = []domain.Goal{}
	}
	writeJSON(w, http.StatusOK, GoalsResponse{Items: goals})
}

func (h *Handler) readinessReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	caller, ok := requireCaller(w, r, auth.ScopeWorkoutsRead)
	if !ok {
		return
	}
	report, err := h.readiness.ForUser(r.Context(), caller.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// requireCaller resolves the authenticated caller and checks scope.
func requireCaller(w http.ResponseWriter, r *http.Request, scope string) (domain.Caller, bool) {
	claims, ok := auth.FromContext(r.Context())
	caller, callerOK := auth.CallerFromContext(r.Context())
	if !ok || !callerOK {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return domain.Caller{}, false
	}
	if scope != "" && !auth.Allows(claims, scope) {
		writeError(w, http.StatusForbidden, "forbidden", "scope "+scope+" required")
		return domain.Caller{}, false
	}
	return caller, true
}

// decodeBody reads a JSON body into dst. An empty body leaves dst untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return false
	}
	return true
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "unavailable", "request cancelled")
	default:
		log.Errorf("api: %s", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"type":  code,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Errorf("api: encode response: %s", err)
	}
}

// CreateWorkoutRequest is the payload for POST /v1/workouts.
type CreateWorkoutRequest struct {
	Title        string                 `json:"title"`
	Discipline   string                 `json:"discipline"`
	Date         time.Time              `json:"date"`
	DurationMin  int                    `json:"duration_minutes"`
	DistanceKm   float64                `json:"distance_km"`
	RPE          int                    `json:"rpe"`
	MuscleGroups []string               `json:"muscle_groups"`
	Exercises    []domain.ExerciseEntry `json:"exercises"`
	Notes        string                 `json:"notes"`
}

// CreateMealRequest is the payload for POST /v1/meals.
type CreateMealRequest struct {
	Name     string    `json:"name"`
	Date     time.Time `json:"date"`
	Calories float64   `json:"calories"`
	ProteinG float64   `json:"protein"`
	CarbsG   float64   `json:"carbs"`
	FatG     float64   `json:"fat"`
}

// CreateGoalRequest is the payload for POST /v1/goals.
type CreateGoalRequest struct {
	Title       string     `json:"title"`
	Discipline  string     `json:"discipline"`
	Metric      string     `json:"metric"`
	Unit        string     `json:"unit"`
	TargetValue float64    `json:"target_value"`
	Direction   string     `json:"direction"`
	Period      string     `json:"period"`
	Deadline    *time.Time `json:"deadline"`
}

// ListWorkoutsResponse packages list results.
type ListWorkoutsResponse struct {
	Items      []domain.Workout `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// GoalsResponse lists the caller's goals.
type GoalsResponse struct {
	Items []domain.Goal `json:"items"`
}
