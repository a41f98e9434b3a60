package api

import (
	"net/http"
	"strings"

	"github.com/a1dsv/NOVA-sub002/internal/auth"
	"github.com/a1dsv/NOVA-sub002/internal/domain"
	"github.com/a1dsv/NOVA-sub002/internal/goalsync"
)

// DeleteWorkoutRequest is the body of deleteWorkout.
type DeleteWorkoutRequest struct {
	WorkoutID string `json:"workout_id"`
}

// RemoveFriendRequest is the body of removeFriend.
type RemoveFriendRequest struct {
	FriendID string `json:"friend_id"`
}

// SearchUserRequest is the body of searchUser.
type SearchUserRequest struct {
	Query string `json:"query"`
}

// GetUsersByIDsRequest is the body of getUsersByIds.
type GetUsersByIDsRequest struct {
	UserIDs []string `json:"user_ids"`
}

// SendMessageNotificationRequest is the body of sendMessageNotification.
type SendMessageNotificationRequest struct {
	CircleID  string `json:"circle_id"`
	MessageID string `json:"message_id"`
}

// UpdateGoalProgressRequest is the body of updateGoalProgress.
type UpdateGoalProgressRequest struct {
	GoalID       string   `json:"goal_id"`
	CurrentValue *float64 `json:"current_value"`
}

// SuccessResponse acknowledges a mutation.
type SuccessResponse struct {
	Success bool `json:"success"`
	Removed int  `json:"removed,omitempty"`
}

// UsersResponse lists public profiles.
type UsersResponse struct {
	Users []domain.PublicProfile `json:"users"`
}

// CleanupResponse reports removed burn messages.
type CleanupResponse struct {
	Deleted int `json:"deleted"`
}

func (h *Handler) deleteWorkout(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, auth.ScopeWorkoutsWrite)
	if !ok {
		return
	}
	var req DeleteWorkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.service.DeleteWorkout(r.Context(), caller, strings.TrimSpace(req.WorkoutID)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *Handler) removeFriend(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, auth.ScopeSocial)
	if !ok {
		return
	}
	var req RemoveFriendRequest
	if !decodeBody(w, r, &req) {
		return
	}
	removed, err := h.service.RemoveFriend(r.Context(), caller.UserID, req.FriendID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Removed: removed})
}

func (h *Handler) searchUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, auth.ScopeSocial)
	if !ok {
		return
	}
	var req SearchUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	users, err := h.service.SearchUsers(r.Context(), caller.UserID, req.Query)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UsersResponse{Users: nonNilProfiles(users)})
}

func (h *Handler) getUsersByIDs(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCaller(w, r, auth.ScopeSocial); !ok {
		return
	}
	var req GetUsersByIDsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	users, err := h.service.GetUsersByIDs(r.Context(), req.UserIDs)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UsersResponse{Users: nonNilProfiles(users)})
}

func (h *Handler) sendMessageNotification(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, auth.ScopeSocial)
	if !ok {
		return
	}
	var req SendMessageNotificationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := h.service.SendMessageNotification(r.Context(), caller.UserID, req.CircleID, req.MessageID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) syncGoals(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, auth.ScopeWorkoutsWrite)
	if !ok {
		return
	}
	result, err := h.goals.SyncUser(r.Context(), caller.UserID, goalsync.TriggerRequest)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) updateGoalProgress(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, auth.ScopeWorkoutsWrite)
	if !ok {
		return
	}
	var req UpdateGoalProgressRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.CurrentValue == nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "current_value is required")
		return
	}
	goal, err := h.service.UpdateGoalProgress(r.Context(), caller, strings.TrimSpace(req.GoalID), *req.CurrentValue)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (h *Handler) cleanupBurnMessages(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, "")
	if !ok {
		return
	}
	if !caller.Admin {
		writeError(w, http.StatusForbidden, "forbidden", "admin role required")
		return
	}
	deleted, err := h.service.CleanupBurnMessages(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CleanupResponse{Deleted: deleted})
}

func nonNilProfiles(in []domain.PublicProfile) []domain.PublicProfile {
	if in == nil {
		return []domain.PublicProfile{}
	}
	return in
}
