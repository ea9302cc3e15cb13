package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkowalczyk/libreserve/internal/config"
	"github.com/mkowalczyk/libreserve/internal/domain/book"
	"github.com/mkowalczyk/libreserve/internal/domain/notification"
	"github.com/mkowalczyk/libreserve/internal/domain/reservation"
	"github.com/mkowalczyk/libreserve/internal/http/middlewares"
	"github.com/mkowalczyk/libreserve/internal/utils"
)

type ReservationStore interface {
	Create(ctx context.Context, res reservation.Reservation) error
	GetByID(ctx context.Context, id string) (reservation.View, error)
	List(ctx context.Context) ([]reservation.View, error)
	UpdateStatus(ctx context.Context, id string, status reservation.Status) (reservation.View, error)
}

type BookFinder interface {
	GetByID(ctx context.Context, id string) (book.Book, error)
}

type ReservationsHandler struct {
	repo     ReservationStore
	books    BookFinder
	notifier Notifier
	log      *slog.Logger
}

func NewReservationsHandler(repo ReservationStore, books BookFinder, notifier Notifier, log *slog.Logger) *ReservationsHandler {
	return &ReservationsHandler{
		repo:     repo,
		books:    books,
		notifier: notifier,
		log:      log,
	}
}

// CreateReservation checks the book exists, persists a pending
// reservation, and tells the admins. The exists-check and the insert
// are two independent store steps; a crash between them leaves no
// reservation behind, and a reservation without its admin notification
// is acceptable. Overlapping reservations for the same book and dates
// are allowed on purpose.
func (h *ReservationsHandler) CreateReservation(ctx *gin.Context) {
	var req reservation.CreateReservationRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	req.UserID = userID

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	b, err := h.books.GetByID(cctx, req.BookID)

	if err != nil {
		if errors.Is(err, book.ErrNotFound) {
			RespondNotFound(ctx, "Book not found")
			return
		}
		RespondInternal(ctx, "Could not create reservation")
		return
	}

	res := reservation.NewFromCreateRequest(req)

	err = h.repo.Create(cctx, res)

	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "reservation insert failed", "err", err)
		RespondInternal(ctx, "Could not create reservation")
		return
	}

	requesterName, _ := middlewares.NameFromContext(ctx)

	h.notifier.NotifyAdmins(cctx,
		fmt.Sprintf("New reservation request from %s for %q", requesterName, b.Title),
		notification.TypeNewReservation,
	)

	view := reservation.View{
		Reservation: res,
		UserName:    requesterName,
		BookTitle:   b.Title,
	}

	ctx.JSON(http.StatusCreated, view)
}

// UpdateReservationStatus overwrites the status (any from any; there
// is no transition table) and notifies the owner. The notification
// targets the raw user id, never the joined record.
func (h *ReservationsHandler) UpdateReservationStatus(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "reservation id must be a valid UUID", nil)
		return
	}

	var req reservation.UpdateStatusRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	view, err := h.repo.UpdateStatus(cctx, id, req.Status)

	if err != nil {
		if errors.Is(err, reservation.ErrNotFound) {
			RespondNotFound(ctx, "Reservation not found")
			return
		}
		RespondInternal(ctx, "Could not update reservation")
		return
	}

	h.notifier.Notify(cctx, view.UserID,
		fmt.Sprintf("Your reservation for %q has been %s", view.BookTitle, view.Status),
		notification.TypeReservationStatus,
	)

	ctx.JSON(http.StatusOK, view)
}

func (h *ReservationsHandler) ListReservations(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	views, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list reservations")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": views, "count": len(views)})
}

// GetReservation is owner-or-admin: the gate only proves identity,
// the ownership decision happens here.
func (h *ReservationsHandler) GetReservation(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "reservation id must be a valid UUID", nil)
		return
	}

	callerID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || callerID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	view, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, reservation.ErrNotFound) {
			RespondNotFound(ctx, "Reservation not found")
			return
		}
		RespondInternal(ctx, "Could not fetch reservation")
		return
	}

	if view.UserID != callerID && !middlewares.IsAdminFromContext(ctx) {
		RespondForbidden(ctx, "Not authorized to view this reservation")
		return
	}

	ctx.JSON(http.StatusOK, view)
}
