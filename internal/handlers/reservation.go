package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vlasove/meetroom/internal/booking"
	"github.com/vlasove/meetroom/internal/handlers/dto"
	"github.com/vlasove/meetroom/internal/middleware"
	"github.com/vlasove/meetroom/internal/models"
	"github.com/vlasove/meetroom/internal/schedulefeed"
)

type ReservationHandler struct {
	svc *booking.Service
	hub *schedulefeed.Hub
}

func NewReservationHandler(svc *booking.Service, hub *schedulefeed.Hub) *ReservationHandler {
	return &ReservationHandler{svc: svc, hub: hub}
}

// BookRoom бронирует комнату на указанный интервал
func (h *ReservationHandler) BookRoom(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req dto.BookRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.svc.CreateReservation(c.Request.Context(), booking.CreateRequest{
		OwnerID:    userID,
		RoomNumber: req.RoomNumber,
		Start:      req.StartTime.Time,
		End:        req.EndTime.Time,
		Title:      req.Title,
		Comment:    req.Comment,
	})

	switch {
	case errors.Is(err, booking.ErrTooLong), errors.Is(err, booking.ErrTooShort):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, booking.ErrSlotUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": "this time is already booked"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to book room"})
		return
	}

	h.hub.Publish(schedulefeed.TypeReservationCreated, res.RoomNumber, formatReservation(res))

	c.JSON(http.StatusCreated, formatReservation(res))
}

// CancelBooking отменяет бронь до её начала или досрочно завершает идущую
func (h *ReservationHandler) CancelBooking(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reservation id"})
		return
	}

	res, err := h.svc.CancelOrEndReservation(c.Request.Context(), userID, reservationID)

	switch {
	case errors.Is(err, booking.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
		return
	case errors.Is(err, booking.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "you did not book this room"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel reservation"})
		return
	}

	switch res.Outcome {
	case booking.OutcomeDeleted:
		h.hub.Publish(schedulefeed.TypeReservationCancelled, res.RoomNumber, gin.H{"id": reservationID})
		c.JSON(http.StatusOK, gin.H{"result": "deleted"})

	case booking.OutcomeTruncated:
		h.hub.Publish(schedulefeed.TypeReservationEnded, res.RoomNumber, gin.H{
			"id":       reservationID,
			"end_time": res.EndTime,
		})
		c.JSON(http.StatusOK, gin.H{"result": "ended", "end_time": res.EndTime})

	default:
		c.JSON(http.StatusOK, gin.H{"result": "already_ended"})
	}
}

// MyReservations возвращает активные брони текущего пользователя
func (h *ReservationHandler) MyReservations(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	reservations, err := h.svc.ListActiveForUser(c.Request.Context(), userID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reservations"})
		return
	}

	out := make([]gin.H, len(reservations))
	for i := range reservations {
		out[i] = formatReservation(&reservations[i])
	}

	c.JSON(http.StatusOK, gin.H{"reservations": out})
}

// RoomSchedule возвращает занятые интервалы комнаты на дату
func (h *ReservationHandler) RoomSchedule(c *gin.Context) {
	roomNumber, err := strconv.Atoi(c.Param("number"))
	if err != nil || roomNumber <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room number"})
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	slots, err := h.svc.OccupiedSlots(c.Request.Context(), roomNumber, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get room schedule"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"room_number":    roomNumber,
		"occupied_times": slots,
		"watchers":       h.hub.Watchers(roomNumber),
	})
}

func formatReservation(r *models.Reservation) gin.H {
	return gin.H{
		"id":          r.ID,
		"room_number": r.RoomNumber,
		"start_time":  r.StartTime,
		"end_time":    r.EndTime,
		"title":       r.Title,
		"comment":     r.Comment,
	}
}
