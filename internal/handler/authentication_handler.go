package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"odyssey/internal/model"
	"odyssey/internal/model/requestresponse"
	"odyssey/internal/ports"
	"odyssey/internal/security"
)

type AuthenticationHandler struct {
	ports.AuthenticationService
	guard *security.Guard
}

func NewAuthenticationHandler(authenticationService ports.AuthenticationService, guard *security.Guard) *AuthenticationHandler {
	return &AuthenticationHandler{
		authenticationService,
		guard,
	}
}

// SignUp godoc
// @Summary Sign up
// @Description Creates an account and opens a session. The access token is also set as an HttpOnly cookie.
// @Tags Authentication
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param body body requestresponse.CredentialsRequest true "Credentials"
// @Success 201 {object} requestresponse.SessionResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Invalid email or password shorter than 8 characters"
// @Failure 409 {object} requestresponse.ErrorResponse "Email already registered"
// @Failure 503 {object} requestresponse.ErrorResponse "Session registry unavailable"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /sign_up [post]
func (h *AuthenticationHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(w, r, "email", "password")
	if err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "malformed request body")
		return
	}

	session, err := h.AuthenticationService.SignUp(r.Context(), fields["email"], fields["password"])
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidEmail):
			sendErrorResponse(w, http.StatusBadRequest, "email is not valid")
		case errors.Is(err, model.ErrWeakPassword):
			sendErrorResponse(w, http.StatusBadRequest, "password must be at least 8 characters long")
		case errors.Is(err, model.ErrPasswordTooLong):
			sendErrorResponse(w, http.StatusBadRequest, "password must be at most 72 bytes long")
		case errors.Is(err, model.ErrUserExists):
			sendErrorResponse(w, http.StatusConflict, "email is already registered")
		case errors.Is(err, model.ErrRegistryUnavailable):
			// the credential is already stored at this point, only the session is missing
			slog.Warn("sign up left without session", slog.Any("error", err))
			sendErrorResponse(w, http.StatusServiceUnavailable, "account created but no session could be opened, please log in")
		default:
			slog.Error("sign up failed", slog.Any("error", err))
			sendErrorResponse(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.guard.SetSessionCookie(w, session.AccessToken, session.ExpiresAt)
	sendJSON(w, http.StatusCreated, sessionResponse(session))
}

// LoginPage godoc
// @Summary Login page
// @Description Visitors with a live session are redirected to the dashboard.
// @Tags Authentication
// @Produce json
// @Success 200 {object} requestresponse.LoginRequiredResponse
// @Success 303 "Redirect to /dashboard"
// @Router /login [get]
func (h *AuthenticationHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	resp := requestresponse.LoginRequiredResponse{}
	resp.Response.LoginRequired = true

	sendJSON(w, http.StatusOK, resp)
}

// Login godoc
// @Summary Log in
// @Description Checks the password and re-issues the session, replacing any previous one.
// @Tags Authentication
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param body body requestresponse.CredentialsRequest true "Credentials"
// @Success 200 {object} requestresponse.SessionResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse "Invalid email or password"
// @Failure 503 {object} requestresponse.ErrorResponse "Session registry unavailable"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /login [post]
func (h *AuthenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(w, r, "email", "password")
	if err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if fields["email"] == "" || fields["password"] == "" {
		sendErrorResponse(w, http.StatusBadRequest, "email and password are required")
		return
	}

	session, err := h.AuthenticationService.Login(r.Context(), fields["email"], fields["password"])
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidCredentials):
			sendErrorResponse(w, http.StatusUnauthorized, "invalid email or password")
		case errors.Is(err, model.ErrRegistryUnavailable):
			slog.Warn("login failed", slog.Any("error", err))
			sendErrorResponse(w, http.StatusServiceUnavailable, "service temporarily unavailable")
		default:
			slog.Error("login failed", slog.Any("error", err))
			sendErrorResponse(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.guard.SetSessionCookie(w, session.AccessToken, session.ExpiresAt)
	sendJSON(w, http.StatusOK, sessionResponse(session))
}

// Logout godoc
// @Summary Log out
// @Description Revokes the session of the current user everywhere and clears the cookie.
// @Tags Authentication
// @Produce json
// @Success 200 {object} requestresponse.LogoutResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 503 {object} requestresponse.ErrorResponse
// @Security CookieAuth
// @Router /logout [delete]
func (h *AuthenticationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity, err := security.IdentityFromContext(r.Context())
	if err != nil {
		sendErrorResponse(w, http.StatusUnauthorized, "please log in again")
		return
	}

	if err := h.AuthenticationService.Logout(r.Context(), identity); err != nil {
		slog.Warn("logout failed", slog.String("identity", identity), slog.Any("error", err))
		sendErrorResponse(w, http.StatusServiceUnavailable, "service temporarily unavailable")
		return
	}

	h.guard.ClearSessionCookie(w)

	resp := requestresponse.LogoutResponse{}
	resp.Response.LoggedOut = true
	sendJSON(w, http.StatusOK, resp)
}

func sessionResponse(session *model.Session) requestresponse.SessionResponse {
	resp := requestresponse.SessionResponse{}
	resp.Response.Email = session.Identity
	resp.Response.Token = session.AccessToken
	return resp
}
