package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkowalczyk/libreserve/internal/auth"
	"github.com/mkowalczyk/libreserve/internal/config"
	"github.com/mkowalczyk/libreserve/internal/domain/notification"
	"github.com/mkowalczyk/libreserve/internal/domain/user"
	"github.com/mkowalczyk/libreserve/internal/security"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, u user.User) error
}

// Notifier records one-way messages. Calls never return errors: a
// failed notification must not affect the triggering operation.
type Notifier interface {
	Notify(ctx context.Context, userID, message string, t notification.Type)
	NotifyAdmins(ctx context.Context, message string, t notification.Type)
}

type AuthHandler struct {
	users      UserReader
	userWriter UserWriter
	jwt        *auth.Manager
	notifier   Notifier
}

func NewAuthHandler(users UserReader, userWriter UserWriter, jwtManager *auth.Manager, notifier Notifier) *AuthHandler {
	return &AuthHandler{
		users:      users,
		userWriter: userWriter,
		jwt:        jwtManager,
		notifier:   notifier,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates an unapproved account, tells the admins, and hands
// back a token. The account stays unable to log in until approved.
func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u := user.New(req, hash)

	err = h.userWriter.Create(cctx, u)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondBadRequest(ctx, "User already exists", nil)
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	h.notifier.NotifyAdmins(cctx, fmt.Sprintf("New user registered: %s", u.Name), notification.TypeNewUser)

	token, err := h.jwt.GenerateAccessToken(u.ID, u.Name, u.IsAdmin)

	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token":  token,
		"userId": u.ID,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		RespondBadRequest(ctx, "Invalid credentials", nil)
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondBadRequest(ctx, "Invalid credentials", nil)
		return
	}

	// approval gates login, not registration
	if !foundUser.IsApproved {
		RespondForbidden(ctx, "Your account is pending approval")
		return
	}

	token, err := h.jwt.GenerateAccessToken(foundUser.ID, foundUser.Name, foundUser.IsAdmin)

	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token":   token,
		"isAdmin": foundUser.IsAdmin,
	})
}
