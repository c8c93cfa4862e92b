package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Mrxforte/tooler/internal/admin"
	"github.com/Mrxforte/tooler/internal/apierror"
	"github.com/Mrxforte/tooler/internal/auth"
	"github.com/Mrxforte/tooler/internal/notify"
)

// serviceTimeout bounds a single admin or notification call. Directory
// enumeration over large user sets is the slowest path.
const serviceTimeout = 55 * time.Second

// RegisterRoutes registers the admin and notification routes.
func RegisterRoutes(r chi.Router, adminService admin.Service, notifyService notify.Service, logger *slog.Logger) {
	r.Route("/v1/notifications", func(r chi.Router) {
		r.Post("/password-recovery", sendPasswordRecovery(notifyService, logger))
		r.Post("/password-backup", sendPasswordBackup(notifyService, logger))
	})

	r.Route("/v1/admin/users", func(r chi.Router) {
		r.Get("/", listUsers(adminService, logger))
		r.Post("/sync", syncUsers(adminService, logger))
		r.Post("/{uid}/delete", deleteUser(adminService, logger))
	})
}

func sendPasswordRecovery(service notify.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			UserName string `json:"userName"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteError(w, apierror.InvalidArgument("invalid request body"))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		messageID, err := service.SendPasswordRecovery(ctx, body.Email, body.UserName)
		if err != nil {
			logRequestError(r.Context(), logger, "failed to send password recovery email", err)
			WriteError(w, asAPIError(err))
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"message":   "Password recovery email sent successfully",
			"messageId": messageID,
		})
	}
}

func sendPasswordBackup(service notify.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email     string     `json:"email"`
			UserName  string     `json:"userName"`
			CreatedAt *time.Time `json:"createdAt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteError(w, apierror.InvalidArgument("invalid request body"))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		messageID, err := service.SendPasswordBackup(ctx, body.Email, body.UserName, body.CreatedAt)
		if err != nil {
			logRequestError(r.Context(), logger, "failed to send password backup email", err)
			WriteError(w, asAPIError(err))
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"message":   "Password backup email sent successfully",
			"messageId": messageID,
		})
	}
}

func listUsers(service admin.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		result, err := service.ListUsers(ctx)
		if err != nil {
			logRequestError(r.Context(), logger, "failed to list users", err)
			WriteError(w, asAPIError(err))
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"userCount": result.UserCount,
			"users":     result.Users,
		})
	}
}

func syncUsers(service admin.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := auth.CallerFromContext(r.Context())
		if !ok {
			WriteError(w, apierror.Unauthenticated("Request must be authenticated"))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		stats, err := service.SyncUsers(ctx, caller.UID)
		if err != nil {
			logRequestError(r.Context(), logger, "failed to sync users", err)
			WriteError(w, asAPIError(err))
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"stats":   stats,
		})
	}
}

func deleteUser(service admin.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := auth.CallerFromContext(r.Context())
		if !ok {
			WriteError(w, apierror.Unauthenticated("Request must be authenticated"))
			return
		}

		uid := chi.URLParam(r, "uid")

		var body struct {
			DeleteFromAuth      bool `json:"deleteFromAuth"`
			DeleteFromFirestore bool `json:"deleteFromFirestore"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteError(w, apierror.InvalidArgument("invalid request body"))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		result, err := service.DeleteUser(ctx, caller.UID, uid, body.DeleteFromAuth, body.DeleteFromFirestore)
		if err != nil {
			logRequestError(r.Context(), logger, "failed to delete user", err)
			WriteError(w, asAPIError(err))
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "User " + uid + " deleted successfully",
			"results": result,
		})
	}
}

func asAPIError(err error) *apierror.Error {
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return apierror.Internal(err.Error())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError writes the canonical error envelope. Shared with the auth middleware.
func WriteError(w http.ResponseWriter, apiErr *apierror.Error) {
	writeJSON(w, apierror.ToStatusCode(apiErr.Code), apiErr)
}

func logRequestError(ctx context.Context, logger *slog.Logger, message string, err error) {
	if logger == nil || err == nil {
		return
	}
	attrs := []any{slog.Any("error", err)}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		attrs = append(attrs, slog.String("requestId", reqID))
	}
	logger.Error(message, attrs...)
}
