package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/example/ec-fulfillment/internal/api/middleware"
	"github.com/example/ec-fulfillment/internal/auth"
	"github.com/example/ec-fulfillment/internal/command"
	"github.com/example/ec-fulfillment/internal/domain/account"
	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/example/ec-fulfillment/internal/query"
	"github.com/example/ec-fulfillment/internal/readmodel"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	refreshTokenCookie = "refresh_token"
	refreshCookiePath  = "/api/auth/refresh"
	sessionCookie      = "session_id"
	sessionCookiePath  = "/api/auth"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	cmd      *command.Handler
	query    *query.Handler
	tokens   *auth.JWTService
	sessions auth.SessionStore
	now      func() time.Time
}

func NewAuthHandlers(cmd *command.Handler, query *query.Handler, tokens *auth.JWTService, sessions auth.SessionStore) *AuthHandlers {
	return &AuthHandlers{cmd: cmd, query: query, tokens: tokens, sessions: sessions, now: time.Now}
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Account   readmodel.AccountReadModel `json:"account"`
	Tokens    auth.TokenPair             `json:"tokens"`
	SessionID string                     `json:"session_id"`
	Message   string                     `json:"message,omitempty"`
}

type sessionBody struct {
	RefreshToken string `json:"refresh_token"`
	SessionID    string `json:"session_id"`
}

// sessionCredentials reads the refresh token and session id from their
// cookies, falling back to the JSON body.
func sessionCredentials(c *gin.Context) (token, sessionID string) {
	token, _ = c.Cookie(refreshTokenCookie)
	sessionID, _ = c.Cookie(sessionCookie)
	if token != "" && sessionID != "" {
		return token, sessionID
	}
	var body sessionBody
	_ = c.ShouldBindJSON(&body)
	if token == "" {
		token = body.RefreshToken
	}
	if sessionID == "" {
		sessionID = body.SessionID
	}
	return token, sessionID
}

// Register creates a customer account and signs it in.
func (h *AuthHandlers) Register(c *gin.Context) {
	var cmd command.Register
	if !bindJSON(c, &cmd) {
		return
	}
	cmd.Role = account.RoleCustomer
	a, err := h.cmd.Register(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	h.signIn(c, http.StatusCreated, readmodel.Account(a), "Registration successful")
}

func (h *AuthHandlers) Login(c *gin.Context) {
	var cmd command.Login
	if !bindJSON(c, &cmd) {
		return
	}
	a, err := h.cmd.Login(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	h.signIn(c, http.StatusOK, readmodel.Account(a), "Login successful")
}

// Refresh accepts the refresh token and session id from their cookies or
// from the body. The session must still hold that token; it is replaced by
// a new one, so each refresh token works once.
func (h *AuthHandlers) Refresh(c *gin.Context) {
	token, sessionID := sessionCredentials(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "no refresh token"})
		return
	}
	if sessionID == "" {
		h.clearAuthCookies(c)
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "no session"})
		return
	}

	accountID, err := h.tokens.ValidateRefreshToken(token)
	if err != nil {
		h.clearAuthCookies(c)
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid refresh token"})
		return
	}
	session, ok, err := h.sessions.Get(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		h.clearAuthCookies(c)
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "session not found"})
		return
	}
	if err := session.Verify(accountID, token, h.now()); err != nil {
		if errors.Is(err, auth.ErrSessionExpired) {
			_ = h.sessions.Delete(c.Request.Context(), sessionID)
		}
		h.clearAuthCookies(c)
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid refresh token"})
		return
	}
	if err := h.sessions.Delete(c.Request.Context(), sessionID); err != nil {
		respondError(c, err)
		return
	}

	a, err := h.query.GetAccount(c.Request.Context(), shared.AccountID(accountID))
	if err != nil {
		h.clearAuthCookies(c)
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "account not found"})
		return
	}
	if !a.IsActive {
		h.clearAuthCookies(c)
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "account is deactivated"})
		return
	}
	h.signIn(c, http.StatusOK, a, "Token refreshed")
}

// Logout revokes every session of the account that owns the presented
// session, so no refresh token issued to it can be used again.
func (h *AuthHandlers) Logout(c *gin.Context) {
	_, sessionID := sessionCredentials(c)
	if sessionID != "" {
		ctx := c.Request.Context()
		session, ok, err := h.sessions.Get(ctx, sessionID)
		if err == nil && ok {
			err = h.sessions.DeleteByAccount(ctx, session.AccountID)
		}
		if err != nil {
			respondError(c, err)
			return
		}
	}
	h.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// Me returns the current authenticated account.
func (h *AuthHandlers) Me(c *gin.Context) {
	a, err := h.query.GetAccount(c.Request.Context(), middleware.Actor(c).AccountID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AuthHandlers) signIn(c *gin.Context, status int, a readmodel.AccountReadModel, msg string) {
	pair, err := h.tokens.IssuePair(a.ID, a.Email, a.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	session := auth.NewSession(uuid.New().String(), a.ID, pair.Refresh, c.ClientIP(), c.Request.UserAgent(), h.now())
	if err := h.sessions.Create(c.Request.Context(), session); err != nil {
		respondError(c, err)
		return
	}
	h.setAuthCookies(c, pair, session.ID)
	c.JSON(status, AuthResponse{Account: a, Tokens: pair, SessionID: session.ID, Message: msg})
}

func (h *AuthHandlers) setAuthCookies(c *gin.Context, pair auth.TokenPair, sessionID string) {
	secure := c.Request.TLS != nil
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AccessTokenCookie, pair.Access.Value, maxAge(pair.Access.ExpiresAt), "/", "", secure, true)
	c.SetCookie(refreshTokenCookie, pair.Refresh.Value, maxAge(pair.Refresh.ExpiresAt), refreshCookiePath, "", secure, true)
	c.SetCookie(sessionCookie, sessionID, maxAge(pair.Refresh.ExpiresAt), sessionCookiePath, "", secure, true)
}

func (h *AuthHandlers) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", false, true)
	c.SetCookie(refreshTokenCookie, "", -1, refreshCookiePath, "", false, true)
	c.SetCookie(sessionCookie, "", -1, sessionCookiePath, "", false, true)
}

func maxAge(expiresAt time.Time) int {
	return int(time.Until(expiresAt).Seconds())
}
