package api

import (
	"alcyxob/boxing-app/internal/domain"
	"alcyxob/boxing-app/internal/service"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService   service.AuthService
	logger        *zap.Logger
	secureCookies bool
	now           func() time.Time
}

// NewAuthHandler creates a new AuthHandler. secureCookies marks token cookies Secure,
// which browsers only honour over HTTPS.
func NewAuthHandler(authService service.AuthService, logger *zap.Logger, secureCookies bool) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger, secureCookies: secureCookies, now: time.Now}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// UserResponse excludes sensitive info like password hash
type UserResponse struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

type AuthResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
	User         UserResponse `json:"user"`
}

func MapUserToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.Hex(),
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

func (h *AuthHandler) setTokenCookies(c *gin.Context, tokens *service.TokenPair) {
	now := h.now()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessTokenCookie, tokens.AccessToken, int(tokens.AccessExpiresAt.Sub(now).Seconds()), "/", "", h.secureCookies, true)
	c.SetCookie(refreshTokenCookie, tokens.RefreshToken, int(tokens.RefreshExpiresAt.Sub(now).Seconds()), "/", "", h.secureCookies, true)
}

// --- Handler Methods ---

// Register godoc
// @Summary Register a new user
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration details"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 409 {object} gin.H "Email already registered"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, tokens, err := h.authService.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.setTokenCookies(c, tokens)
	c.JSON(http.StatusCreated, AuthResponse{Token: tokens.AccessToken, RefreshToken: tokens.RefreshToken, User: MapUserToResponse(user)})
}

// Login godoc
// @Summary Log in a user
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} gin.H "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, tokens, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.setTokenCookies(c, tokens)
	c.JSON(http.StatusOK, AuthResponse{Token: tokens.AccessToken, RefreshToken: tokens.RefreshToken, User: MapUserToResponse(user)})
}

// Refresh godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags Auth
// @Produce json
// @Success 200 {object} gin.H
// @Failure 401 {object} gin.H "Missing or invalid refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, _ := c.Cookie(refreshTokenCookie)
	if refreshToken == "" {
		var req RefreshRequest
		_ = c.ShouldBindJSON(&req)
		refreshToken = req.RefreshToken
	}
	if refreshToken == "" {
		abortWithError(c, http.StatusUnauthorized, "refresh token is missing")
		return
	}

	tokens, err := h.authService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.setTokenCookies(c, tokens)
	c.JSON(http.StatusOK, gin.H{"token": tokens.AccessToken, "refreshToken": tokens.RefreshToken})
}

// Logout clears the token cookies. Tokens are stateless, so nothing is revoked server side.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessTokenCookie, "", -1, "/", "", h.secureCookies, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/", "", h.secureCookies, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me godoc
// @Summary Current user
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} UserResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// ServerDate returns the server clock clients evaluate day unlocks against.
func (h *AuthHandler) ServerDate(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"serverDate": h.now().UTC()})
}
