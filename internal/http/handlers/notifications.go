package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkowalczyk/libreserve/internal/config"
	"github.com/mkowalczyk/libreserve/internal/domain/notification"
	"github.com/mkowalczyk/libreserve/internal/http/middlewares"
	"github.com/mkowalczyk/libreserve/internal/utils"
)

type NotificationsLister interface {
	ListForUser(ctx context.Context, userID string) ([]notification.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
}

type NotificationsHandler struct {
	repo NotificationsLister
}

func NewNotificationsHandler(repo NotificationsLister) *NotificationsHandler {
	return &NotificationsHandler{repo: repo}
}

// ListNotifications returns the caller's notifications, newest first.
func (h *NotificationsHandler) ListNotifications(ctx *gin.Context) {
	callerID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || callerID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, err := h.repo.ListForUser(cctx, callerID)

	if err != nil {
		RespondInternal(ctx, "Could not list notifications")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// MarkRead flips isRead on one of the caller's notifications. A
// stranger's id reads as not-found rather than forbidden, so the
// endpoint does not leak other users' notification ids.
func (h *NotificationsHandler) MarkRead(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "notification id must be a valid UUID", nil)
		return
	}

	callerID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || callerID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.MarkRead(cctx, id, callerID)

	if err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			RespondNotFound(ctx, "Notification not found")
			return
		}
		RespondInternal(ctx, "Could not update notification")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}
