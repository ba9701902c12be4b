package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	db "hearthshare-server/src/db/sql"
	"hearthshare-server/src/util"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func CreateHousehold(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
			slog.Error("failed to decode create household request body", "user_id", userID, "error", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		created, err := db.CreateHousehold(r.Context(), pool, strings.TrimSpace(req.Name), userID)
		if err != nil {
			slog.Error("failed to create household", "user_id", userID, "error", err)
			http.Error(w, "failed to create household", http.StatusInternalServerError)
			return
		}

		slog.Info("household created", "household_id", created.ID, "user_id", userID)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

func GetHouseholds(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)

		households, err := db.GetHouseholdsForUser(r.Context(), pool, userID)
		if err != nil {
			slog.Error("failed to get households", "user_id", userID, "error", err)
			http.Error(w, "failed to get households", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(households)
	}
}

func GetHouseholdMembers(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := r.Context().Value("household_id").(int64)

		members, err := db.GetHouseholdMembers(r.Context(), pool, householdID)
		if err != nil {
			slog.Error("failed to get household members", "household_id", householdID, "error", err)
			http.Error(w, "failed to get members", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(members)
	}
}

func InviteMember(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		householdID := r.Context().Value("household_id").(int64)

		var req struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
			slog.Error("failed to decode invite request body", "household_id", householdID, "error", err)
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if !util.ValidateEmail(req.Email) {
			slog.Warn("email validation failed for invite", "email", req.Email, "household_id", householdID)
			http.Error(w, "invalid email format", http.StatusBadRequest)
			return
		}

		invite, err := db.CreateInvite(r.Context(), pool, householdID, req.Email, userID)
		if err != nil {
			if strings.Contains(err.Error(), "duplicate key") {
				http.Error(w, "email already invited", http.StatusConflict)
				return
			}
			slog.Error("failed to create invite", "household_id", householdID, "error", err)
			http.Error(w, "failed to create invite", http.StatusInternalServerError)
			return
		}

		slog.Info("household invite created", "household_id", householdID, "email", req.Email, "invited_by", userID)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(invite)
	}
}

func GetMyInvites(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.Context().Value("email").(string)

		invites, err := db.GetInvitesForEmail(r.Context(), pool, email)
		if err != nil {
			slog.Error("failed to get invites", "email", email, "error", err)
			http.Error(w, "failed to get invites", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(invites)
	}
}

func JoinHousehold(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value("user_id").(int64)
		email := r.Context().Value("email").(string)

		householdIDStr := chi.URLParam(r, "household_id")
		householdID, err := strconv.ParseInt(householdIDStr, 10, 64)
		if err != nil {
			slog.Error("invalid household id param", "household_id", householdIDStr)
			http.Error(w, "invalid household id", http.StatusBadRequest)
			return
		}

		if err := db.JoinHousehold(r.Context(), pool, householdID, userID, email); err != nil {
			if strings.Contains(err.Error(), "no invite") {
				slog.Warn("join attempt without invite", "household_id", householdID, "user_id", userID)
				http.Error(w, "no invite found", http.StatusForbidden)
				return
			}
			slog.Error("failed to join household", "household_id", householdID, "user_id", userID, "error", err)
			http.Error(w, "failed to join household", http.StatusInternalServerError)
			return
		}

		slog.Info("user joined household", "household_id", householdID, "user_id", userID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "joined household"})
	}
}

func RemoveMember(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID := r.Context().Value("household_id").(int64)

		memberIDStr := chi.URLParam(r, "user_id")
		memberID, err := strconv.ParseInt(memberIDStr, 10, 64)
		if err != nil {
			slog.Error("invalid member id param", "user_id", memberIDStr)
			http.Error(w, "invalid user id", http.StatusBadRequest)
			return
		}

		if err := db.RemoveMember(r.Context(), pool, householdID, memberID); err != nil {
			slog.Error("failed to remove member", "household_id", householdID, "user_id", memberID, "error", err)
			http.Error(w, "failed to remove member", http.StatusInternalServerError)
			return
		}

		slog.Info("member removed", "household_id", householdID, "user_id", memberID)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "member removed"})
	}
}
