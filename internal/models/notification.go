package models

import "time"

// NotificationType enumerates the actions that can notify a user.
type NotificationType string

const (
	NotificationFollow                NotificationType = "FOLLOW"
	NotificationFollowRequest         NotificationType = "FOLLOW_REQUEST"
	NotificationPostLike              NotificationType = "POST_LIKE"
	NotificationCommentLike           NotificationType = "COMMENT_LIKE"
	NotificationComment               NotificationType = "COMMENT"
	NotificationFollowRequestApproved NotificationType = "FOLLOW_REQUEST_APPROVED"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	RecipientID uint             `json:"recipient_id" gorm:"index:idx_notifications_recipient_created;index:idx_notifications_recipient_read"`
	ActorID     uint             `json:"actor_id" gorm:"index"`
	Type        NotificationType `json:"type" gorm:"size:30;index"`
	PostID      *uint            `json:"post_id" gorm:"index"`
	CommentID   *uint            `json:"comment_id" gorm:"index"`
	IsRead      bool             `json:"is_read" gorm:"default:false;index:idx_notifications_recipient_read"`
	CreatedAt   time.Time        `json:"created_at" gorm:"index:idx_notifications_recipient_created"`
}

// Constructors per notification type. The entity carries optional post/comment
// references whose presence depends on Type, so rows are built here rather
// than by populating the struct ad hoc.

func NewFollowNotification(recipientID, actorID uint, t NotificationType) *Notification {
	return &Notification{RecipientID: recipientID, ActorID: actorID, Type: t}
}

func NewPostLikeNotification(recipientID, actorID, postID uint) *Notification {
	return &Notification{RecipientID: recipientID, ActorID: actorID, Type: NotificationPostLike, PostID: &postID}
}

func NewCommentNotification(recipientID, actorID, postID, commentID uint) *Notification {
	return &Notification{RecipientID: recipientID, ActorID: actorID, Type: NotificationComment, PostID: &postID, CommentID: &commentID}
}

func NewCommentLikeNotification(recipientID, actorID, postID, commentID uint) *Notification {
	return &Notification{RecipientID: recipientID, ActorID: actorID, Type: NotificationCommentLike, PostID: &postID, CommentID: &commentID}
}

// CorrelationKey identifies the logical event behind a notification. It is
// the tuple used both to detect duplicates before creation and to find the
// row to delete when the triggering action is undone.
type CorrelationKey struct {
	RecipientID uint
	ActorID     uint
	Type        NotificationType
	PostID      *uint
	CommentID   *uint
}

// correlationShape says which subject field participates in a type's
// correlation key.
type correlationShape int

const (
	correlateNever   correlationShape = iota // every event is distinct
	correlatePair                            // (recipient, actor, type)
	correlatePost                            // (recipient, actor, type, post)
	correlateComment                         // (recipient, actor, type, comment)
)

// correlationShapes is the single source of truth for per-type dedup rules.
var correlationShapes = map[NotificationType]correlationShape{
	NotificationFollow:                correlatePair,
	NotificationFollowRequest:         correlatePair,
	NotificationFollowRequestApproved: correlatePair,
	NotificationPostLike:              correlatePost,
	NotificationCommentLike:           correlateComment,
	NotificationComment:               correlateNever,
}

// DedupKey derives the correlation key for an event. The second return value
// is false when the type never correlates (COMMENT), meaning duplicates are
// permitted and no key-based lookup or delete applies.
func DedupKey(t NotificationType, recipientID, actorID uint, postID, commentID *uint) (CorrelationKey, bool) {
	key := CorrelationKey{RecipientID: recipientID, ActorID: actorID, Type: t}
	switch correlationShapes[t] {
	case correlateNever:
		return key, false
	case correlatePost:
		key.PostID = postID
	case correlateComment:
		key.CommentID = commentID
	}
	return key, true
}

// CorrelationKey returns the key for an existing row.
func (n *Notification) CorrelationKey() (CorrelationKey, bool) {
	return DedupKey(n.Type, n.RecipientID, n.ActorID, n.PostID, n.CommentID)
}

// NotificationActor is the actor's public profile embedded in a response.
type NotificationActor struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

// NotificationResponse is the client-facing projection of a notification,
// used both for REST listings and real-time pushes.
type NotificationResponse struct {
	ID           uint              `json:"id"`
	Actor        NotificationActor `json:"actor"`
	Type         NotificationType  `json:"type"`
	PostID       *uint             `json:"postId,omitempty"`
	PostImageURL *string           `json:"postImageUrl,omitempty"`
	CommentID    *uint             `json:"commentId,omitempty"`
	CommentText  *string           `json:"commentText,omitempty"`
	IsRead       bool              `json:"isRead"`
	CreatedAt    time.Time         `json:"createdAt"`
}
