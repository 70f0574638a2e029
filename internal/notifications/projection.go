package notifications

import (
	"fmt"

	"github.com/teamsn/socialnetwork/internal/models"
)

// previewMaxLen caps post/comment previews embedded in a notification payload.
const previewMaxLen = 50

// buildNotification constructs the store row for an event, validating that
// the subjects required by the type are present.
func buildNotification(recipientID, actorID uint, t models.NotificationType, post *models.Post, comment *models.Comment) (*models.Notification, error) {
	switch t {
	case models.NotificationFollow, models.NotificationFollowRequest, models.NotificationFollowRequestApproved:
		return models.NewFollowNotification(recipientID, actorID, t), nil
	case models.NotificationPostLike:
		if post == nil {
			return nil, fmt.Errorf("notifications: %s requires a post", t)
		}
		return models.NewPostLikeNotification(recipientID, actorID, post.ID), nil
	case models.NotificationComment:
		if post == nil || comment == nil {
			return nil, fmt.Errorf("notifications: %s requires a post and a comment", t)
		}
		return models.NewCommentNotification(recipientID, actorID, post.ID, comment.ID), nil
	case models.NotificationCommentLike:
		if post == nil || comment == nil {
			return nil, fmt.Errorf("notifications: %s requires a post and a comment", t)
		}
		return models.NewCommentLikeNotification(recipientID, actorID, post.ID, comment.ID), nil
	default:
		return nil, fmt.Errorf("notifications: unknown type %q", t)
	}
}

// buildResponse projects a stored notification into its client-facing shape.
// Post and comment may be nil when the type carries no such subject or the
// subject row is gone.
func buildResponse(n *models.Notification, actor *models.User, post *models.Post, comment *models.Comment) *models.NotificationResponse {
	response := &models.NotificationResponse{
		ID: n.ID,
		Actor: models.NotificationActor{
			ID:       actor.ID,
			Username: actor.Username,
			FullName: actor.FullName,
		},
		Type:      n.Type,
		PostID:    n.PostID,
		CommentID: n.CommentID,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}

	if post != nil {
		response.PostImageURL = &post.ImageURL
	}
	if comment != nil {
		response.CommentText = truncatePreview(&comment.Text)
	}

	return response
}

// truncatePreview caps a preview at previewMaxLen characters, appending "..."
// when cut. A nil input stays nil.
func truncatePreview(text *string) *string {
	if text == nil {
		return nil
	}
	runes := []rune(*text)
	if len(runes) <= previewMaxLen {
		return text
	}
	truncated := string(runes[:previewMaxLen]) + "..."
	return &truncated
}
