package handlers

import (
	"github.com/dimitrije/internal-ops/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

// AuthHandler only exchanges refresh tokens. Tokens are first issued by
// opsctl; the sign-in flow lives outside this service.
type AuthHandler struct {
	userService UserServiceInterface
	jwtService  JWTServiceInterface
	logger      *zap.Logger
}

func NewAuthHandler(userService UserServiceInterface, jwtService JWTServiceInterface, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
		logger:      logger,
	}
}

// RefreshToken issues a new pair. The role is reloaded so the new access
// token reflects the stored user.
func (h *AuthHandler) RefreshToken(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.RefreshToken == "" {
		c.BadRequest("refresh_token is required")
		return
	}

	userID, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.Unauthorized("invalid refresh token")
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.Unauthorized("user not found")
		return
	}

	tokenPair, err := h.jwtService.GenerateTokenPair(user.ID, user.Email, string(user.Role))
	if err != nil {
		h.logger.Error("Failed to generate tokens", zap.String("user_id", user.ID.String()), zap.Error(err))
		c.InternalServerError("failed to generate tokens")
		return
	}

	_ = c.JSON(200, dto.TokenResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	})
}
