package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"selambus/internal/auth"
)

// POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req auth.RegisterInput
	if !BindJSONOrError(c, &req) {
		return
	}
	user, err := h.authService(c).Register(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Account created successfully! Please log in.", "user": user})
}

// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginInput
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := h.authService(c).Login(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login successful!", "token": res.Token, "expiresAt": res.ExpiresAt, "user": res.User, "isAdmin": res.Admin})
}

// POST /api/auth/social/:provider
func (h *Handler) SocialLogin(c *gin.Context) {
	res, err := h.authService(c).SocialLogin(c.Request.Context(), c.Param("provider"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login successful with " + res.User.Provider + "!", "token": res.Token, "expiresAt": res.ExpiresAt, "user": res.User, "isAdmin": res.Admin})
}

type resetRequest struct {
	Email string `json:"email"`
}

// POST /api/auth/reset-password
func (h *Handler) ResetPassword(c *gin.Context) {
	var req resetRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := h.authService(c).ResetPassword(c.Request.Context(), req.Email); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset instructions sent to your email!"})
}

// GET /api/auth/me
func (h *Handler) Me(c *gin.Context) {
	svc := h.authService(c)
	user, err := svc.CurrentUser(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "isAdmin": svc.IsAdmin(user)})
}

// POST /api/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	h.authService(c).Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

type strengthRequest struct {
	Password string `json:"password"`
}

// POST /api/auth/password-strength
func PasswordStrength(c *gin.Context) {
	var req strengthRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"strength": auth.PasswordStrength(req.Password)})
}
