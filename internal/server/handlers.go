package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	svcErr "github.com/trailnet/trailnet-backend/internal/errors"
	"github.com/trailnet/trailnet-backend/internal/service/account"
	"github.com/trailnet/trailnet-backend/internal/utils/pagination"
)

// Handler translates HTTP requests into account service calls and maps
// core error kinds back onto status codes. All policy lives in the
// service; nothing here inspects more than the request shape.
type Handler struct {
	svc *account.Service
	log *slog.Logger
}

func NewHandler(svc *account.Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := svcErr.Status(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error("unhandled error", "path", c.FullPath(), "err", err)
		msg = "Internal Server Error"
	}
	c.JSON(status, gin.H{"msg": msg})
}

// ListUsers handles GET /api/users?page=&limit=
func (h *Handler) ListUsers(c *gin.Context) {
	params, err := pagination.Parse(c.Query("page"), c.Query("limit"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	page, err := h.svc.ListUsers(c.Request.Context(), params)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// CreateUser handles POST /api/users
func (h *Handler) CreateUser(c *gin.Context) {
	var in account.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondError(c, svcErr.ErrMissingField)
		return
	}

	user, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// GetUserByUsername handles GET /api/users/:username
func (h *Handler) GetUserByUsername(c *gin.Context) {
	user, err := h.svc.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetUser handles GET /api/user/:user_id
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.svc.GetUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateUser handles PATCH /api/user/:user_id
func (h *Handler) UpdateUser(c *gin.Context) {
	var in account.UpdateProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondError(c, svcErr.ErrMissingField)
		return
	}

	user, err := h.svc.UpdateProfile(c.Request.Context(), c.Param("user_id"), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// DeleteUser handles DELETE /api/user/:user_id
func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.svc.RemoveAccount(c.Request.Context(), c.Param("user_id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Login handles POST /api/login
func (h *Handler) Login(c *gin.Context) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondError(c, svcErr.ErrMissingField)
		return
	}

	if err := h.svc.Authenticate(c.Request.Context(), in.Username, in.Password); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Logged in"})
}

// ListLikes handles GET /api/user/:user_id/likes?like_type=
func (h *Handler) ListLikes(c *gin.Context) {
	likes, err := h.svc.ListLikes(c.Request.Context(), c.Param("user_id"), c.Query("like_type"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, likes)
}

type likeBody struct {
	LikeType string `json:"like_type"`
	TargetID string `json:"target_id"`
}

// Like handles POST /api/user/:user_id/likes
func (h *Handler) Like(c *gin.Context) {
	var in likeBody
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondError(c, svcErr.ErrMissingField)
		return
	}

	like, err := h.svc.Like(c.Request.Context(), c.Param("user_id"), in.LikeType, in.TargetID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"like": like})
}

// Unlike handles DELETE /api/user/:user_id/likes
func (h *Handler) Unlike(c *gin.Context) {
	var in likeBody
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondError(c, svcErr.ErrMissingField)
		return
	}

	if err := h.svc.Unlike(c.Request.Context(), c.Param("user_id"), in.LikeType, in.TargetID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListFollowing handles GET /api/user/:user_id/following
func (h *Handler) ListFollowing(c *gin.Context) {
	entries, err := h.svc.ListFollowing(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": entries})
}

// ListFollowers handles GET /api/user/:user_id/followers
func (h *Handler) ListFollowers(c *gin.Context) {
	entries, err := h.svc.ListFollowers(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"followers": entries})
}

// CountFollowers handles GET /api/user/:user_id/followers/count
func (h *Handler) CountFollowers(c *gin.Context) {
	count, err := h.svc.CountFollowers(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

type followBody struct {
	Follow string `json:"follow"`
}

// Follow handles POST /api/user/:user_id/follow
func (h *Handler) Follow(c *gin.Context) {
	var in followBody
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondError(c, svcErr.ErrMissingField)
		return
	}

	follow, err := h.svc.Follow(c.Request.Context(), c.Param("user_id"), in.Follow)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"follow": follow})
}

// Unfollow handles DELETE /api/user/:user_id/follow
func (h *Handler) Unfollow(c *gin.Context) {
	var in followBody
	if err := c.ShouldBindJSON(&in); err != nil {
		h.respondError(c, svcErr.ErrMissingField)
		return
	}

	if err := h.svc.Unfollow(c.Request.Context(), c.Param("user_id"), in.Follow); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
