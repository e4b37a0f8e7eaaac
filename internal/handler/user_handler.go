package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"odyssey/internal/model"
	"odyssey/internal/model/requestresponse"
	"odyssey/internal/ports"
	"odyssey/internal/security"
	"odyssey/internal/util"
)

type UserHandler struct {
	ports.UserService
	guard *security.Guard
}

func NewUserHandler(userService ports.UserService, guard *security.Guard) *UserHandler {
	return &UserHandler{userService, guard}
}

// Page : guarded page answered with the current identity
func (h *UserHandler) Page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := security.IdentityFromContext(r.Context())
		if err != nil {
			sendErrorResponse(w, http.StatusUnauthorized, "please log in again")
			return
		}

		resp := requestresponse.PageResponse{}
		resp.Response.Page = name
		resp.Response.Email = identity
		sendJSON(w, http.StatusOK, resp)
	}
}

// Dashboard godoc
// @Summary Dashboard
// @Tags Pages
// @Produce json
// @Success 200 {object} requestresponse.PageResponse
// @Success 303 "Redirect to /login"
// @Security CookieAuth
// @Router /dashboard [get]
func (h *UserHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.Page("dashboard")(w, r)
}

// UserSettings godoc
// @Summary User settings
// @Tags Pages
// @Produce json
// @Success 200 {object} requestresponse.PageResponse
// @Success 303 "Redirect to /login"
// @Security CookieAuth
// @Router /user_settings [get]
func (h *UserHandler) UserSettings(w http.ResponseWriter, r *http.Request) {
	h.Page("user_settings")(w, r)
}

// PlanTrip godoc
// @Summary Trip planner
// @Tags Pages
// @Produce json
// @Success 200 {object} requestresponse.PageResponse
// @Success 303 "Redirect to /login"
// @Security CookieAuth
// @Router /plan_trip [get]
func (h *UserHandler) PlanTrip(w http.ResponseWriter, r *http.Request) {
	h.Page("plan_trip")(w, r)
}

// UpdateUser godoc
// @Summary Change password
// @Tags Users
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param body body requestresponse.UpdateUserRequest true "New password"
// @Success 200 {object} requestresponse.UpdateUserResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security CookieAuth
// @Router /update_user [post]
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	identity, err := security.IdentityFromContext(r.Context())
	if err != nil {
		sendErrorResponse(w, http.StatusUnauthorized, "please log in again")
		return
	}

	fields, err := readFields(w, r, "password")
	if err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := h.UserService.UpdatePassword(r.Context(), identity, fields["password"]); err != nil {
		switch {
		case errors.Is(err, model.ErrWeakPassword):
			sendErrorResponse(w, http.StatusBadRequest, "password must be at least 8 characters long")
		case errors.Is(err, model.ErrPasswordTooLong):
			sendErrorResponse(w, http.StatusBadRequest, "password must be at most 72 bytes long")
		case errors.Is(err, model.ErrUserNotFound):
			sendErrorResponse(w, http.StatusNotFound, "user not found")
		default:
			slog.Error("password update failed", slog.String("identity", identity), slog.Any("error", err))
			sendErrorResponse(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	resp := requestresponse.UpdateUserResponse{}
	resp.Response.Updated = true
	sendJSON(w, http.StatusOK, resp)
}

// DeleteUser godoc
// @Summary Delete account
// @Description Revokes the session and removes the account of the current user.
// @Tags Users
// @Produce json
// @Success 200 {object} requestresponse.DeleteUserResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 503 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security CookieAuth
// @Router /delete_user [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	identity, err := security.IdentityFromContext(r.Context())
	if err != nil {
		sendErrorResponse(w, http.StatusUnauthorized, "please log in again")
		return
	}

	if err := h.UserService.DeleteUser(r.Context(), identity); err != nil {
		switch {
		case errors.Is(err, model.ErrRegistryUnavailable):
			slog.Warn("account deletion failed", slog.String("identity", identity), slog.Any("error", err))
			sendErrorResponse(w, http.StatusServiceUnavailable, "service temporarily unavailable")
		case errors.Is(err, model.ErrUserNotFound):
			h.guard.ClearSessionCookie(w)
			sendErrorResponse(w, http.StatusNotFound, "user not found")
		default:
			slog.Error("account deletion failed", slog.String("identity", identity), slog.Any("error", err))
			sendErrorResponse(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	slog.Info("account deleted", slog.String("identity", identity))
	h.guard.ClearSessionCookie(w)

	resp := requestresponse.DeleteUserResponse{}
	resp.Response.Deleted = true
	sendJSON(w, http.StatusOK, resp)
}

func sendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	util.HandleError(w, message, statusCode)
}
