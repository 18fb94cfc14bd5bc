package server

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/haseeb5i/socket-task/internal/auth"
	apperrors "github.com/haseeb5i/socket-task/internal/errors"
)

type registerRequest struct {
	WalletAddress string `json:"walletAddress"`
	Signature     string `json:"signature"`
	// Combining login and session join in one step
	SessionID string `json:"sessionId,omitempty"`
}

type registerResponse struct {
	Message   string `json:"message"`
	AuthToken string `json:"authToken"`
}

func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("malformed request body")
	}
	if !strings.HasPrefix(req.WalletAddress, "0x") {
		return apperrors.ValidationError("walletAddress must start with 0x")
	}
	if !strings.HasPrefix(req.Signature, "0x") {
		return apperrors.ValidationError("signature must start with 0x")
	}
	if req.SessionID != "" {
		if _, err := uuid.Parse(req.SessionID); err != nil {
			return apperrors.ValidationError("invalid session id").WithField("sessionId", req.SessionID)
		}
	}

	if err := auth.VerifyWalletSignature(req.WalletAddress, req.Signature); err != nil {
		slog.Info("Signature verification failed", "wallet", req.WalletAddress, "error", err)
		return apperrors.UnauthorizedError("invalid signature")
	}

	wallet := strings.ToLower(req.WalletAddress)
	role := auth.RoleUser
	if s.config.IsAdminWallet(wallet) {
		role = auth.RoleAdmin
	}

	token, err := s.tokens.Issue(wallet, role, req.SessionID)
	if err != nil {
		return apperrors.InternalError("failed to issue token", err)
	}

	if err := c.JSON(200, registerResponse{
		Message:   "You are registered successfully",
		AuthToken: token,
	}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
