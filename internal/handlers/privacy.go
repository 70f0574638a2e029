package handlers

import (
	"github.com/teamsn/socialnetwork/internal/models"
	"github.com/teamsn/socialnetwork/internal/repositories"
)

// PrivacyGate is the authorization predicate that must pass before any action
// capable of producing a notification touches a private account's content:
// the viewer must be the owner or one of the owner's followers.
type PrivacyGate struct {
	followRepository repositories.FollowRepository
}

// NewPrivacyGate creates a PrivacyGate.
func NewPrivacyGate(followRepo repositories.FollowRepository) *PrivacyGate {
	return &PrivacyGate{followRepository: followRepo}
}

// CanView reports whether the viewer may see content owned by owner.
func (g *PrivacyGate) CanView(viewerID uint, owner *models.User) (bool, error) {
	if !owner.IsPrivate || owner.ID == viewerID {
		return true, nil
	}
	return g.followRepository.IsFollowing(viewerID, owner.ID)
}
