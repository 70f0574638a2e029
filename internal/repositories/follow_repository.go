package repositories

import (
	"github.com/teamsn/socialnetwork/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines the interface for follow and follow-request operations
type FollowRepository interface {
	CreateFollow(follow *models.Follow) (bool, error)
	DeleteFollow(followerID, followingID uint) (int64, error)
	IsFollowing(followerID, followingID uint) (bool, error)

	CreateFollowRequest(request *models.FollowRequest) (bool, error)
	GetFollowRequestByID(id uint) (*models.FollowRequest, error)
	GetPendingRequests(targetID uint) ([]models.FollowRequest, error)
	DeleteFollowRequest(id uint) error
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

// CreateFollow inserts a follow edge, ignoring the unique (follower, following)
// conflict. Returns false when the edge already existed.
func (r *PostgresFollowRepository) CreateFollow(follow *models.Follow) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(follow)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteFollow removes a follow edge, returning the rows affected
func (r *PostgresFollowRepository) DeleteFollow(followerID, followingID uint) (int64, error) {
	result := r.db.Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&models.Follow{})
	return result.RowsAffected, result.Error
}

// IsFollowing checks whether follower currently follows following
func (r *PostgresFollowRepository) IsFollowing(followerID, followingID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).Where("follower_id = ? AND following_id = ?", followerID, followingID).Count(&count).Error
	return count > 0, err
}

// CreateFollowRequest inserts a pending follow request, ignoring the unique
// (requester, target) conflict. Returns false when a request was already pending.
func (r *PostgresFollowRepository) CreateFollowRequest(request *models.FollowRequest) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(request)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetFollowRequestByID retrieves a follow request by ID
func (r *PostgresFollowRepository) GetFollowRequestByID(id uint) (*models.FollowRequest, error) {
	var request models.FollowRequest
	if err := r.db.First(&request, id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// GetPendingRequests lists follow requests awaiting the target's approval
func (r *PostgresFollowRepository) GetPendingRequests(targetID uint) ([]models.FollowRequest, error) {
	var requests []models.FollowRequest
	err := r.db.Where("target_id = ?", targetID).Order("created_at DESC").Find(&requests).Error
	return requests, err
}

// DeleteFollowRequest removes a follow request by ID
func (r *PostgresFollowRepository) DeleteFollowRequest(id uint) error {
	return r.db.Delete(&models.FollowRequest{}, id).Error
}
