package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"pulseboard.org/internal/audit"
	"pulseboard.org/internal/auth"
	"pulseboard.org/internal/obs"
	"pulseboard.org/internal/session"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if v := auth.ValidateLogin(req.Email, req.Password); !v.Valid {
		writeFailure(w, r, http.StatusBadRequest, strings.Join(v.Errors, ", "))
		return
	}

	user, err := a.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		obs.ObserveAuthAttempt("login", "denied")
		_ = audit.LogEvent(r.Context(), "auth.login.denied", map[string]any{"email": req.Email})
		writeFailure(w, r, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, expires, err := a.codec.Sign(*user, auth.DefaultTokenTTL)
	if err != nil {
		obs.ObserveAuthAttempt("login", "error")
		writeFailure(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	a.setAuthCookie(w, token, expires)

	obs.ObserveAuthAttempt("login", "ok")
	_ = audit.LogEvent(auth.ContextWithUser(r.Context(), *user), "auth.login.success", map[string]any{"email": user.Email})

	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data:    map[string]any{"user": user},
		Message: "Login successful",
	})
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, r, http.StatusBadRequest, err.Error())
		return
	}

	in := auth.RegisterInput{
		Name:            auth.SanitizeInput(req.Name),
		Email:           auth.SanitizeInput(req.Email),
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}
	if v := auth.ValidateRegistration(in); !v.Valid {
		writeFailure(w, r, http.StatusBadRequest, strings.Join(v.Errors, ", "))
		return
	}

	user, err := a.users.Register(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrConflict):
			obs.ObserveAuthAttempt("register", "conflict")
			writeFailure(w, r, http.StatusConflict, "User with this email already exists")
		case errors.Is(err, auth.ErrInvalidInput):
			obs.ObserveAuthAttempt("register", "denied")
			writeFailure(w, r, http.StatusBadRequest, "Invalid registration data")
		default:
			obs.ObserveAuthAttempt("register", "error")
			writeFailure(w, r, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	obs.ObserveAuthAttempt("register", "ok")
	_ = audit.LogEvent(auth.ContextWithUser(r.Context(), *user), "auth.register.success", map[string]any{"email": user.Email})

	writeSuccess(w, http.StatusCreated, user, "User registered successfully")
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	res := a.sessions.Resolve(r)
	if !res.Authenticated() {
		writeFailure(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, User: res.Session.User})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	if res := a.sessions.Resolve(r); res.Authenticated() {
		_ = audit.LogEvent(auth.ContextWithUser(r.Context(), res.Session.User), "auth.logout", nil)
	}
	a.clearAuthCookie(w)
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Logout successful"})
}

func (a *API) setAuthCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.FallbackCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires) / time.Second),
		HttpOnly: true,
		Secure:   a.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *API) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.FallbackCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}
