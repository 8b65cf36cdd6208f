package handlers

import (
	"context"
	"net/http"

	"github.com/Fomkes/uae-water-delivery1-sub001/entities"
	"github.com/Fomkes/uae-water-delivery1-sub001/models"
)

type adminKey struct{}

// AdminFromContext returns the admin attached by AdminAuthMiddleware.
func AdminFromContext(ctx context.Context) (entities.AdminUser, bool) {
	admin, ok := ctx.Value(adminKey{}).(entities.AdminUser)
	return admin, ok
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decodeBody(r, &creds); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	sessionId, admin, ok := h.as.Login(r.Context(), creds.Username, creds.Password)
	if !ok {
		WriteErrorResponse(w, models.ErrUnauthorized)
		return
	}
	setSessionCookie(w, adminCookie, sessionId, h.sessionTTL)
	writeJSON(w, http.StatusOK, admin)
}

// Logout always succeeds, with or without a session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionId, ok := sessionCookie(r, adminCookie); ok {
		h.as.Logout(r.Context(), sessionId)
	}
	clearSessionCookie(w, adminCookie)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	admin, _ := AdminFromContext(r.Context())
	writeJSON(w, http.StatusOK, admin)
}

// ChangePassword ends the current session on success; the admin signs in
// again with the new password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var data models.PasswordData
	if err := decodeBody(r, &data); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	sessionId, _ := sessionCookie(r, adminCookie)
	if err := h.as.ChangePassword(r.Context(), sessionId, data.OldPassword, data.NewPassword); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	clearSessionCookie(w, adminCookie)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ps.Dashboard(r.Context())
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// AdminAuthMiddleware is the route guard for the back office.
func (h *Handler) AdminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionId, ok := sessionCookie(r, adminCookie)
		if !ok {
			WriteErrorResponse(w, models.ErrUnauthorized)
			return
		}
		admin, ok := h.as.Current(r.Context(), sessionId)
		if !ok {
			clearSessionCookie(w, adminCookie)
			WriteErrorResponse(w, models.ErrUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), adminKey{}, admin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
