package http

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/lunarfit/coach-api/internal/domain/auth"
	apperrors "github.com/lunarfit/coach-api/pkg/errors"
)

// Register creates a new account with email and password.
func (h *Handler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "register_failed"
		switch {
		case apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			code = "invalid_request"
		case apperrors.IsCode(err, "email_exists"):
			status = http.StatusConflict
			code = "email_exists"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login exchanges email and password for a token pair.
func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "login_failed"
		switch {
		case apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			code = "invalid_request"
		case apperrors.IsCode(err, "invalid_credentials"):
			status = http.StatusUnauthorized
			code = "invalid_credentials"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Refresh rotates an access token using a refresh token.
func (h *Handler) Refresh(c *gin.Context) {
	var req auth.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		status := http.StatusInternalServerError
		code := "refresh_failed"
		if apperrors.IsCode(err, "invalid_token") {
			status = http.StatusUnauthorized
			code = "invalid_token"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Profile returns the authenticated user's account view.
func (h *Handler) Profile(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}

	user, err := h.authSvc.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		status := http.StatusInternalServerError
		code := "profile_failed"
		if apperrors.IsCode(err, "user_not_found") {
			status = http.StatusNotFound
			code = "not_found"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile patches coaching preferences on the account.
func (h *Handler) UpdateProfile(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	var req auth.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	user, err := h.authSvc.UpdateProfile(c.Request.Context(), claims.UserID, req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "profile_failed"
		switch {
		case apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			code = "invalid_request"
		case apperrors.IsCode(err, "user_not_found"):
			status = http.StatusNotFound
			code = "not_found"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, user)
}

// Logout revokes any linked provider tokens for the user.
func (h *Handler) Logout(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), claims.UserID); err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "logout_failed", errMessage(err), err))
		return
	}

	c.Status(http.StatusNoContent)
}

// GoogleLogin starts the Google sign-in flow with PKCE.
func (h *Handler) GoogleLogin(c *gin.Context) {
	state, verifier, challenge, err := auth.NewOAuthState()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "oauth_failed", errMessage(err), err))
		return
	}

	authURL, err := h.authSvc.GoogleAuthURL(c.Request.Context(), state, challenge)
	if err != nil {
		status := http.StatusInternalServerError
		code := "oauth_failed"
		if apperrors.IsCode(err, "auth_not_configured") {
			status = http.StatusServiceUnavailable
			code = "auth_not_configured"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	setOAuthStateCookie(c, state, verifier)
	c.Redirect(http.StatusFound, authURL)
}

// GoogleCallback completes the Google sign-in flow.
func (h *Handler) GoogleCallback(c *gin.Context) {
	cookie, ok := readOAuthStateCookie(c)
	if !ok || cookie.State != c.Query("state") {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "oauth state mismatch", nil))
		return
	}
	clearOAuthStateCookie(c)

	code := c.Query("code")
	if code == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "missing authorization code", nil))
		return
	}

	resp, err := h.authSvc.GoogleCallback(c.Request.Context(), code, cookie.CodeVerifier)
	if err != nil {
		status := http.StatusInternalServerError
		errCode := "oauth_failed"
		switch {
		case apperrors.IsCode(err, "auth_not_configured"):
			status = http.StatusServiceUnavailable
			errCode = "auth_not_configured"
		case apperrors.IsCode(err, "oauth_exchange_failed"):
			status = http.StatusBadGateway
			errCode = "oauth_exchange_failed"
		case apperrors.IsCode(err, "account_linking_disabled"):
			status = http.StatusConflict
			errCode = "account_linking_disabled"
		}
		abortWithError(c, NewHTTPError(status, errCode, errMessage(err), err))
		return
	}

	if h.googleRedirect != "" {
		fragment := url.Values{}
		fragment.Set("token", resp.Token)
		fragment.Set("refreshToken", resp.RefreshToken)
		c.Redirect(http.StatusFound, h.googleRedirect+"#"+fragment.Encode())
		return
	}

	c.JSON(http.StatusOK, resp)
}
