package repositories

import (
	"github.com/teamsn/socialnetwork/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines the interface for post-like data operations
type LikeRepository interface {
	CreateLike(like *models.Like) (bool, error)
	DeleteLike(postID, userID uint) (int64, error)
	HasUserLikedPost(postID, userID uint) (bool, error)
	GetLikesCountByPostID(postID uint) (int64, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// CreateLike inserts a like, ignoring the unique (post, user) conflict.
// Returns false when the like already existed.
func (r *PostgresLikeRepository) CreateLike(like *models.Like) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(like)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteLike removes a user's like on a post, returning the rows affected
func (r *PostgresLikeRepository) DeleteLike(postID, userID uint) (int64, error) {
	result := r.db.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
	return result.RowsAffected, result.Error
}

// HasUserLikedPost checks whether a user already liked a post
func (r *PostgresLikeRepository) HasUserLikedPost(postID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Like{}).Where("post_id = ? AND user_id = ?", postID, userID).Count(&count).Error
	return count > 0, err
}

// GetLikesCountByPostID returns the total number of likes for a post
func (r *PostgresLikeRepository) GetLikesCountByPostID(postID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}
