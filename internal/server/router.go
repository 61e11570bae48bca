package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/trailnet/trailnet-backend/internal/service/account"
)

// NewRouter builds the gin engine with all API endpoints attached.
func NewRouter(svc *account.Service, log *slog.Logger) *gin.Engine {
	r := gin.Default()
	h := NewHandler(svc, log)

	api := r.Group("/api")
	{
		api.GET("/users", h.ListUsers)
		api.POST("/users", h.CreateUser)
		api.GET("/users/:username", h.GetUserByUsername)

		api.POST("/login", h.Login)

		user := api.Group("/user/:user_id")
		{
			user.GET("", h.GetUser)
			user.PATCH("", h.UpdateUser)
			user.DELETE("", h.DeleteUser)

			user.GET("/likes", h.ListLikes)
			user.POST("/likes", h.Like)
			user.DELETE("/likes", h.Unlike)

			user.GET("/following", h.ListFollowing)
			user.GET("/followers", h.ListFollowers)
			user.GET("/followers/count", h.CountFollowers)
			user.POST("/follow", h.Follow)
			user.DELETE("/follow", h.Unfollow)
		}
	}

	return r
}
