package main

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/vlasove/meetroom/internal/handlers"
	"github.com/vlasove/meetroom/internal/middleware"
	pkgauth "github.com/vlasove/meetroom/pkg/auth"
)

func APIEndpoints(
	r *gin.Engine,
	jwtMgr *pkgauth.JWTManager,
	rdb *redis.Client,
	authH *handlers.AuthHandler,
	userH *handlers.UserHandler,
	reservationH *handlers.ReservationHandler,
	feedH *handlers.FeedHandler,
) {
	// Auth endpoints
	auth := r.Group("/auth")
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login", authH.Login)
		auth.POST("/logout", middleware.AuthMiddleware(jwtMgr, rdb), authH.Logout)
	}

	// Расписание комнаты открыто без авторизации, как /roomInfo/ в старом UI
	r.GET("/rooms/:number/schedule", reservationH.RoomSchedule)

	// API endpoints
	api := r.Group("/api/v1", middleware.AuthMiddleware(jwtMgr, rdb))
	{
		api.GET("/me", userH.GetMe)
		api.PATCH("/me", userH.UpdateMe)

		api.POST("/reservations", reservationH.BookRoom)
		api.GET("/reservations/my", reservationH.MyReservations)
		api.DELETE("/reservations/:id", reservationH.CancelBooking)
	}

	// Живой фид расписаний
	r.GET("/ws", middleware.WSAuthMiddleware(jwtMgr, rdb), feedH.HandleFeed)
}
