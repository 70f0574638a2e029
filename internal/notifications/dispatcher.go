package notifications

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/teamsn/socialnetwork/internal/models"
	"github.com/teamsn/socialnetwork/internal/realtime"
	"github.com/teamsn/socialnetwork/internal/repositories"
)

// Dispatcher is the sole domain-side writer of the notification store. It
// decides whether a triggering event creates, skips, resurfaces, or deletes a
// notification, and pushes the resulting envelopes to the recipient's topic.
//
// Pushes happen strictly after the store write has committed, and a failed or
// undeliverable push never rolls the write back: storage is the source of
// truth and clients reconcile via the REST surface on reconnect.
type Dispatcher struct {
	store     repositories.NotificationRepository
	users     repositories.UserRepository
	posts     repositories.PostRepository
	comments  repositories.CommentRepository
	publisher realtime.Publisher
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(
	store repositories.NotificationRepository,
	users repositories.UserRepository,
	posts repositories.PostRepository,
	comments repositories.CommentRepository,
	publisher realtime.Publisher,
) *Dispatcher {
	return &Dispatcher{store: store, users: users, posts: posts, comments: comments, publisher: publisher}
}

// CreateAndSend records a notification for an accepted event and pushes it to
// the recipient. Self-notifications, duplicates of the correlation key, and
// lost concurrent inserts are all silent no-ops.
func (d *Dispatcher) CreateAndSend(recipient, actor *models.User, t models.NotificationType, post *models.Post, comment *models.Comment) error {
	if recipient.ID == actor.ID {
		return nil
	}

	notification, err := buildNotification(recipient.ID, actor.ID, t, post, comment)
	if err != nil {
		return err
	}

	if key, dedupable := notification.CorrelationKey(); dedupable {
		exists, err := d.store.ExistsByKey(key)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
	}

	notification.CreatedAt = time.Now()
	inserted, err := d.store.Create(notification)
	if err != nil {
		return err
	}
	if !inserted {
		// A concurrent identical event won the insert; theirs was pushed.
		log.Debug().
			Uint("recipient_id", recipient.ID).
			Str("type", string(t)).
			Msg("duplicate notification insert ignored")
		return nil
	}

	d.publisher.Publish(realtime.NotificationTopic(recipient.ID),
		realtime.NewNotificationEnvelope(buildResponse(notification, actor, post, comment)))
	d.pushUnreadCount(recipient.ID)
	return nil
}

// RemoveForPost deletes the notification a post-scoped action created, if it
// still exists. Undoing an action whose notification was already skipped or
// removed is idempotent.
func (d *Dispatcher) RemoveForPost(recipientID, actorID uint, t models.NotificationType, postID uint) error {
	key, _ := models.DedupKey(t, recipientID, actorID, &postID, nil)
	return d.removeByKey(key)
}

// RemoveForComment deletes the comment-like notification for a comment, if any.
func (d *Dispatcher) RemoveForComment(recipientID, actorID, commentID uint) error {
	key, _ := models.DedupKey(models.NotificationCommentLike, recipientID, actorID, nil, &commentID)
	return d.removeByKey(key)
}

// RemoveFollow deletes a follow-family notification for the pair, if any.
func (d *Dispatcher) RemoveFollow(recipientID, actorID uint, t models.NotificationType) error {
	key, _ := models.DedupKey(t, recipientID, actorID, nil, nil)
	return d.removeByKey(key)
}

func (d *Dispatcher) removeByKey(key models.CorrelationKey) error {
	deleted, err := d.store.DeleteByKey(key)
	if err != nil {
		return err
	}
	if deleted > 0 {
		d.pushUnreadCount(key.RecipientID)
	}
	return nil
}

// ResurfaceFollowRequest bumps an existing FOLLOW_REQUEST notification to the
// top of the recipient's feed instead of accumulating duplicates: its
// timestamp is refreshed, its read flag cleared, and it is re-pushed. When no
// row exists it falls back to creating one.
func (d *Dispatcher) ResurfaceFollowRequest(recipientID, actorID uint) error {
	key, _ := models.DedupKey(models.NotificationFollowRequest, recipientID, actorID, nil, nil)
	existing, err := d.store.FindByKey(key)
	if err != nil {
		return err
	}

	if existing == nil {
		recipient, err := d.users.GetUserByID(recipientID)
		if err != nil {
			return err
		}
		actor, err := d.users.GetUserByID(actorID)
		if err != nil {
			return err
		}
		return d.CreateAndSend(recipient, actor, models.NotificationFollowRequest, nil, nil)
	}

	now := time.Now()
	if err := d.store.Resurface(existing.ID, now); err != nil {
		return err
	}
	existing.CreatedAt = now
	existing.IsRead = false

	actor, err := d.users.GetUserByID(actorID)
	if err != nil {
		return err
	}
	d.publisher.Publish(realtime.NotificationTopic(recipientID),
		realtime.NewNotificationEnvelope(buildResponse(existing, actor, nil, nil)))
	d.pushUnreadCount(recipientID)
	return nil
}

// CleanupForPost bulk-deletes every notification whose subject is the post.
// Called by post deletion before the post row itself is removed.
func (d *Dispatcher) CleanupForPost(postID uint) error {
	_, err := d.store.DeleteByPostID(postID)
	return err
}

// CleanupForComment bulk-deletes every notification whose subject is the comment.
func (d *Dispatcher) CleanupForComment(commentID uint) error {
	_, err := d.store.DeleteByCommentID(commentID)
	return err
}

// ListForUser returns a page of notification projections, most recent first.
func (d *Dispatcher) ListForUser(userID uint, page, size int) ([]models.NotificationResponse, int64, error) {
	rows, total, err := d.store.GetByRecipientID(userID, page, size)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]models.NotificationResponse, 0, len(rows))
	actors := make(map[uint]*models.User)
	posts := make(map[uint]*models.Post)
	comments := make(map[uint]*models.Comment)

	for i := range rows {
		n := &rows[i]

		actor, ok := actors[n.ActorID]
		if !ok {
			actor, err = d.users.GetUserByID(n.ActorID)
			if err != nil {
				log.Warn().Err(err).Uint("actor_id", n.ActorID).Msg("skipping notification with missing actor")
				continue
			}
			actors[n.ActorID] = actor
		}

		var post *models.Post
		if n.PostID != nil {
			if post, ok = posts[*n.PostID]; !ok {
				if post, err = d.posts.GetPostByID(*n.PostID); err == nil {
					posts[*n.PostID] = post
				} else {
					post = nil
				}
			}
		}

		var comment *models.Comment
		if n.CommentID != nil {
			if comment, ok = comments[*n.CommentID]; !ok {
				if comment, err = d.comments.GetCommentByID(*n.CommentID); err == nil {
					comments[*n.CommentID] = comment
				} else {
					comment = nil
				}
			}
		}

		responses = append(responses, *buildResponse(n, actor, post, comment))
	}

	return responses, total, nil
}

// GetUnreadCount returns the recipient's current unread count.
func (d *Dispatcher) GetUnreadCount(recipientID uint) (int64, error) {
	return d.store.GetUnreadCount(recipientID)
}

// MarkAllRead marks every unread notification of the user as read. When rows
// changed it pushes the refreshed count plus a marked-read envelope so other
// bound devices clear their badges too.
func (d *Dispatcher) MarkAllRead(userID uint) (int64, error) {
	updated, err := d.store.MarkAllAsRead(userID)
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		d.pushUnreadCount(userID)
		d.publisher.Publish(realtime.NotificationTopic(userID), realtime.MarkedReadEnvelope())
	}
	return updated, nil
}

// MarkOneRead marks a single notification as read. Marking a notification
// that does not exist or belongs to another user is a no-op returning false.
func (d *Dispatcher) MarkOneRead(userID, notificationID uint) (bool, error) {
	updated, err := d.store.MarkAsRead(userID, notificationID)
	if err != nil {
		return false, err
	}
	if updated == 0 {
		return false, nil
	}
	d.pushUnreadCount(userID)
	return true, nil
}

func (d *Dispatcher) pushUnreadCount(recipientID uint) {
	count, err := d.store.GetUnreadCount(recipientID)
	if err != nil {
		log.Error().Err(err).Uint("recipient_id", recipientID).Msg("failed to compute unread count for push")
		return
	}
	d.publisher.Publish(realtime.NotificationTopic(recipientID), realtime.UnreadCountEnvelope(count))
}
