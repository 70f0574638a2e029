package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/teamsn/socialnetwork/internal/middleware"
	"github.com/teamsn/socialnetwork/internal/models"
	"github.com/teamsn/socialnetwork/internal/notifications"
	"github.com/teamsn/socialnetwork/internal/repositories"
)

// FollowHandler handles follow/unfollow and follow-request HTTP requests
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
	dispatcher       *notifications.Dispatcher
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository, dispatcher *notifications.Dispatcher) *FollowHandler {
	return &FollowHandler{
		followRepository: followRepo,
		userRepository:   userRepo,
		dispatcher:       dispatcher,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
	g.GET("/follow-requests", h.GetPendingRequests)
	g.POST("/follow-requests/:id/approve", h.ApproveFollowRequest)
	g.DELETE("/follow-requests/:id", h.DeclineFollowRequest)
}

// FollowUser follows a public user directly, or files a follow request when
// the target account is private. A repeated request to a still-pending target
// bumps the existing notification instead of stacking a new one.
func (h *FollowHandler) FollowUser(c echo.Context) error {
	currentUserID := middleware.UserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	if currentUserID == uint(targetID) {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	}

	target, err := h.userRepository.GetUserByID(uint(targetID))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	actor, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if target.IsPrivate {
		created, err := h.followRepository.CreateFollowRequest(&models.FollowRequest{
			RequesterID: currentUserID,
			TargetID:    target.ID,
		})
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		if created {
			h.dispatcher.CreateAndSend(target, actor, models.NotificationFollowRequest, nil, nil)
		} else {
			// Already pending: bump the existing notification to the top.
			h.dispatcher.ResurfaceFollowRequest(target.ID, currentUserID)
		}

		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"requested": true}})
	}

	created, err := h.followRepository.CreateFollow(&models.Follow{
		FollowerID:  currentUserID,
		FollowingID: target.ID,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !created {
		return echo.NewHTTPError(http.StatusConflict, "Already following this user")
	}

	h.dispatcher.CreateAndSend(target, actor, models.NotificationFollow, nil, nil)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": true}})
}

// UnfollowUser unfollows a user and retracts the follow notification
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	currentUserID := middleware.UserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	deleted, err := h.followRepository.DeleteFollow(currentUserID, uint(targetID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if deleted > 0 {
		h.dispatcher.RemoveFollow(uint(targetID), currentUserID, models.NotificationFollow)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": false}})
}

// GetPendingRequests lists follow requests awaiting the caller's approval
func (h *FollowHandler) GetPendingRequests(c echo.Context) error {
	currentUserID := middleware.UserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	requests, err := h.followRepository.GetPendingRequests(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"requests": requests}})
}

// ApproveFollowRequest converts a pending request into a follow edge,
// retracts the request notification and notifies the requester
func (h *FollowHandler) ApproveFollowRequest(c echo.Context) error {
	currentUserID := middleware.UserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	requestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request ID")
	}

	request, err := h.followRepository.GetFollowRequestByID(uint(requestID))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Follow request not found")
	}
	if request.TargetID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only approve your own follow requests")
	}

	if _, err := h.followRepository.CreateFollow(&models.Follow{
		FollowerID:  request.RequesterID,
		FollowingID: request.TargetID,
	}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.followRepository.DeleteFollowRequest(request.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// The pending request is resolved; its notification leaves the feed.
	h.dispatcher.RemoveFollow(currentUserID, request.RequesterID, models.NotificationFollowRequest)

	requester, err := h.userRepository.GetUserByID(request.RequesterID)
	if err == nil {
		target, err := h.userRepository.GetUserByID(currentUserID)
		if err == nil {
			h.dispatcher.CreateAndSend(requester, target, models.NotificationFollowRequestApproved, nil, nil)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"approved": true}})
}

// DeclineFollowRequest removes a pending request and its notification
func (h *FollowHandler) DeclineFollowRequest(c echo.Context) error {
	currentUserID := middleware.UserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	requestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request ID")
	}

	request, err := h.followRepository.GetFollowRequestByID(uint(requestID))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Follow request not found")
	}
	if request.TargetID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only decline your own follow requests")
	}

	if err := h.followRepository.DeleteFollowRequest(request.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.dispatcher.RemoveFollow(currentUserID, request.RequesterID, models.NotificationFollowRequest)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"declined": true}})
}
