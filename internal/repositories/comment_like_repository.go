package repositories

import (
	"github.com/teamsn/socialnetwork/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentLikeRepository defines the interface for comment-like data operations
type CommentLikeRepository interface {
	CreateCommentLike(like *models.CommentLike) (bool, error)
	DeleteCommentLike(commentID, userID uint) (int64, error)
	GetLikesCountByCommentID(commentID uint) (int64, error)
}

// PostgresCommentLikeRepository implements CommentLikeRepository for PostgreSQL
type PostgresCommentLikeRepository struct {
	db *gorm.DB
}

// NewPostgresCommentLikeRepository creates a new PostgresCommentLikeRepository
func NewPostgresCommentLikeRepository(db *gorm.DB) *PostgresCommentLikeRepository {
	return &PostgresCommentLikeRepository{db: db}
}

// CreateCommentLike inserts a comment like, ignoring the unique (comment, user)
// conflict. Returns false when the like already existed.
func (r *PostgresCommentLikeRepository) CreateCommentLike(like *models.CommentLike) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(like)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteCommentLike removes a user's like on a comment, returning the rows affected
func (r *PostgresCommentLikeRepository) DeleteCommentLike(commentID, userID uint) (int64, error) {
	result := r.db.Where("comment_id = ? AND user_id = ?", commentID, userID).Delete(&models.CommentLike{})
	return result.RowsAffected, result.Error
}

// GetLikesCountByCommentID returns the total number of likes for a comment
func (r *PostgresCommentLikeRepository) GetLikesCountByCommentID(commentID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.CommentLike{}).Where("comment_id = ?", commentID).Count(&count).Error
	return count, err
}
