// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/statpanel/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/statpanel/internal/adapter/driving/web/templates/pages"
	"github.com/ericfisherdev/statpanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/statpanel/internal/application"
	"github.com/ericfisherdev/statpanel/internal/domain/model"
)

const expiredNotice = "Session expired. Please sign in again."

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	auth     *application.AuthGateway
	guard    *application.SessionGuard
	pipeline *application.RequestPipeline
	notice   string
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. loginNotice is
// markdown shown above the login form; it is rendered and sanitized once here.
func NewHandler(
	auth *application.AuthGateway,
	guard *application.SessionGuard,
	pipeline *application.RequestPipeline,
	loginNotice string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		auth:     auth,
		guard:    guard,
		pipeline: pipeline,
		notice:   RenderMarkdown(loginNotice),
		logger:   logger,
	}
}

// LoginPage renders the sign-in form. A visitor with a live session goes
// straight to the dashboard.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	res, err := h.guard.EnforceOnLoad(r.Context(), true)
	if err != nil {
		h.logger.Error("session check failed", "path", r.URL.Path, "error", err)
	}
	if res.State == model.SessionValid {
		http.Redirect(w, r, homePath, http.StatusSeeOther)
		return
	}

	vm := viewmodel.LoginViewModel{NoticeHTML: h.notice, CSRFToken: csrfToken(w, r)}
	if res.State == model.SessionExpired || r.URL.Query().Has("expired") {
		vm.Flash = expiredNotice
	}
	h.render(w, r, http.StatusOK, templates.Layout("Sign in", pages.Login(vm)))
}

// Login handles the sign-in form submission.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return
	}

	username := r.FormValue("username")
	if _, err := h.auth.Login(r.Context(), username, r.FormValue("password")); err != nil {
		status, msg := loginFailure(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("login failed", "error", err)
		}
		vm := viewmodel.LoginViewModel{
			NoticeHTML: h.notice,
			Error:      msg,
			Username:   username,
			CSRFToken:  csrfToken(w, r),
		}
		h.render(w, r, status, templates.Layout("Sign in", pages.Login(vm)))
		return
	}

	http.Redirect(w, r, homePath, http.StatusSeeOther)
}

// Logout clears the credential and returns to the login page.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return
	}
	if err := h.auth.Logout(r.Context()); err != nil {
		h.logger.Error("logout failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}

// Dashboard renders the profile panel for the signed-in user.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	res, err := h.guard.EnforceOnLoad(r.Context(), false)
	if err != nil {
		h.logger.Error("session check failed", "path", r.URL.Path, "error", err)
	}
	if res.State != model.SessionValid {
		h.redirectToLogin(w, r, res.State == model.SessionExpired)
		return
	}

	vm := viewmodel.DashboardViewModel{CSRFToken: csrfToken(w, r)}

	var payload profilePayload
	err = h.pipeline.ExecuteInto(r.Context(), newProfileRequest(), &payload)
	if err == nil {
		vm.Profile, err = decodeProfile(payload)
	}
	if err != nil {
		var f *model.Failure
		if errors.As(err, &f) && (f.ClearsSession() || f.Kind == model.KindUnauthenticated) {
			h.redirectToLogin(w, r, f.Kind == model.KindSessionExpired)
			return
		}
		h.logger.Warn("profile query failed", "error", err)
		vm.Profile.Login = notAvailable
		vm.Error = "Could not load profile data."
	}

	h.render(w, r, http.StatusOK, templates.Layout("Profile", pages.Dashboard(vm)))
}

func (h *Handler) redirectToLogin(w http.ResponseWriter, r *http.Request, expired bool) {
	target := loginPath
	if expired {
		target += "?expired=1"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render page", "path", r.URL.Path, "error", err)
	}
}

// loginFailure maps a Login error to the status and message shown on the form.
func loginFailure(err error) (int, string) {
	var f *model.Failure
	if !errors.As(err, &f) {
		return http.StatusInternalServerError, "Login failed"
	}

	switch f.Kind {
	case model.KindInvalidInput:
		return http.StatusBadRequest, "Username and password are required"
	case model.KindAuthRejected:
		if model.IsInvalidLogin(err) {
			return http.StatusUnauthorized, "Invalid username or password"
		}
		if f.Message == "" || f.Message == "login failed" {
			return http.StatusUnauthorized, "Login failed"
		}
		return http.StatusUnauthorized, f.Message
	case model.KindTimeout:
		return http.StatusGatewayTimeout, "The sign-in service did not respond. Please try again."
	case model.KindEmptyCredential, model.KindNetworkError:
		return http.StatusBadGateway, "Login failed"
	default:
		return http.StatusInternalServerError, "Login failed"
	}
}
