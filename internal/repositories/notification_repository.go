package repositories

import (
	"time"

	"github.com/teamsn/socialnetwork/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationRepository is the durable store of notifications. All writes go
// through the dispatcher in internal/notifications; handlers only read.
type NotificationRepository interface {
	// Create inserts a notification. A duplicate correlation key is swallowed
	// by the store's uniqueness constraint and reported as inserted=false.
	Create(notification *models.Notification) (bool, error)
	ExistsByKey(key models.CorrelationKey) (bool, error)
	DeleteByKey(key models.CorrelationKey) (int64, error)

	FindByKey(key models.CorrelationKey) (*models.Notification, error)
	Resurface(id uint, at time.Time) error

	GetByRecipientID(recipientID uint, page, limit int) ([]models.Notification, int64, error)
	GetUnreadCount(recipientID uint) (int64, error)
	MarkAsRead(recipientID, notificationID uint) (int64, error)
	MarkAllAsRead(recipientID uint) (int64, error)

	DeleteByPostID(postID uint) (int64, error)
	DeleteByCommentID(commentID uint) (int64, error)
}

// PostgresNotificationRepository implements NotificationRepository for PostgreSQL
type PostgresNotificationRepository struct {
	db *gorm.DB
}

// NewPostgresNotificationRepository creates a new PostgresNotificationRepository
func NewPostgresNotificationRepository(db *gorm.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

// EnsureNotificationIndexes creates the partial unique index that guards the
// check-then-insert race on the correlation key. COMMENT rows are excluded:
// every comment is a distinct event and may repeat the same key. NULL subject
// columns are coalesced so that pair-shaped keys (FOLLOW family) collide too.
func EnsureNotificationIndexes(db *gorm.DB) error {
	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_notifications_dedup
		 ON notifications (recipient_id, actor_id, type, COALESCE(post_id, 0), COALESCE(comment_id, 0))
		 WHERE type <> 'COMMENT'`,
	).Error
}

// Create inserts a notification row. ON CONFLICT DO NOTHING turns a losing
// concurrent insert into a zero-row result instead of an error.
func (r *PostgresNotificationRepository) Create(notification *models.Notification) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(notification)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// byKey scopes a query to a correlation key. Subject columns participate only
// when the key's shape includes them.
func (r *PostgresNotificationRepository) byKey(key models.CorrelationKey) *gorm.DB {
	query := r.db.Where("recipient_id = ? AND actor_id = ? AND type = ?", key.RecipientID, key.ActorID, key.Type)
	if key.PostID != nil {
		query = query.Where("post_id = ?", *key.PostID)
	}
	if key.CommentID != nil {
		query = query.Where("comment_id = ?", *key.CommentID)
	}
	return query
}

// ExistsByKey checks whether a notification with the given correlation key exists
func (r *PostgresNotificationRepository) ExistsByKey(key models.CorrelationKey) (bool, error) {
	var count int64
	err := r.byKey(key).Model(&models.Notification{}).Count(&count).Error
	return count > 0, err
}

// DeleteByKey removes all notifications matching the correlation key,
// returning the rows affected. Zero rows is not an error.
func (r *PostgresNotificationRepository) DeleteByKey(key models.CorrelationKey) (int64, error) {
	result := r.byKey(key).Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

// FindByKey retrieves the notification matching the correlation key, if any
func (r *PostgresNotificationRepository) FindByKey(key models.CorrelationKey) (*models.Notification, error) {
	var notification models.Notification
	err := r.byKey(key).First(&notification).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// Resurface refreshes a notification's timestamp and clears its read flag so
// it returns to the top of the recipient's feed.
func (r *PostgresNotificationRepository) Resurface(id uint, at time.Time) error {
	return r.db.Model(&models.Notification{}).Where("id = ?", id).
		Updates(map[string]interface{}{"created_at": at, "is_read": false}).Error
}

// GetByRecipientID returns paginated notifications, most recent first
func (r *PostgresNotificationRepository) GetByRecipientID(recipientID uint, page, limit int) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	r.db.Model(&models.Notification{}).Where("recipient_id = ?", recipientID).Count(&total)

	offset := (page - 1) * limit
	err := r.db.Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error

	return notifications, total, err
}

// GetUnreadCount returns the number of unread notifications for a recipient
func (r *PostgresNotificationRepository) GetUnreadCount(recipientID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).Where("recipient_id = ? AND is_read = ?", recipientID, false).Count(&count).Error
	return count, err
}

// MarkAsRead marks a single notification as read. The recipient predicate
// makes marking another user's notification a zero-row no-op.
func (r *PostgresNotificationRepository) MarkAsRead(recipientID, notificationID uint) (int64, error) {
	result := r.db.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// MarkAllAsRead marks all of a recipient's unread notifications as read
func (r *PostgresNotificationRepository) MarkAllAsRead(recipientID uint) (int64, error) {
	result := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// DeleteByPostID removes every notification whose subject is the given post
func (r *PostgresNotificationRepository) DeleteByPostID(postID uint) (int64, error) {
	result := r.db.Where("post_id = ?", postID).Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

// DeleteByCommentID removes every notification whose subject is the given comment
func (r *PostgresNotificationRepository) DeleteByCommentID(commentID uint) (int64, error) {
	result := r.db.Where("comment_id = ?", commentID).Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
