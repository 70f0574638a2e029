package notifications

import (
	"strings"
	"testing"

	"github.com/teamsn/socialnetwork/internal/models"
)

func TestTruncatePreview(t *testing.T) {
	long := strings.Repeat("a", 120)
	exact := strings.Repeat("b", 50)
	short := "short text"

	t.Run("long text is capped at 50 plus ellipsis", func(t *testing.T) {
		got := truncatePreview(&long)
		if got == nil {
			t.Fatal("got nil")
		}
		if want := strings.Repeat("a", 50) + "..."; *got != want {
			t.Errorf("got %q (len %d), want %q", *got, len(*got), want)
		}
	})

	t.Run("text at the cap is unchanged", func(t *testing.T) {
		got := truncatePreview(&exact)
		if got == nil || *got != exact {
			t.Errorf("got %v, want %q", got, exact)
		}
	})

	t.Run("short text is unchanged", func(t *testing.T) {
		got := truncatePreview(&short)
		if got == nil || *got != short {
			t.Errorf("got %v, want %q", got, short)
		}
	})

	t.Run("nil stays nil", func(t *testing.T) {
		if got := truncatePreview(nil); got != nil {
			t.Errorf("got %q, want nil", *got)
		}
	})
}

func TestBuildNotificationValidatesSubjects(t *testing.T) {
	if _, err := buildNotification(1, 2, models.NotificationPostLike, nil, nil); err == nil {
		t.Error("POST_LIKE without a post must fail")
	}
	if _, err := buildNotification(1, 2, models.NotificationComment, &models.Post{ID: 1}, nil); err == nil {
		t.Error("COMMENT without a comment must fail")
	}
	if _, err := buildNotification(1, 2, "BOGUS", nil, nil); err == nil {
		t.Error("unknown type must fail")
	}
	if _, err := buildNotification(1, 2, models.NotificationFollow, nil, nil); err != nil {
		t.Errorf("FOLLOW must not require subjects: %v", err)
	}
}

func TestBuildResponseProjection(t *testing.T) {
	text := strings.Repeat("x", 80)
	postID, commentID := uint(7), uint(9)
	n := &models.Notification{
		ID: 3, RecipientID: 1, ActorID: 2,
		Type: models.NotificationCommentLike, PostID: &postID, CommentID: &commentID,
	}
	actor := &models.User{ID: 2, Username: "ana", FullName: "Ana Pérez"}
	post := &models.Post{ID: 7, ImageURL: "https://img.example/7.jpg"}
	comment := &models.Comment{ID: 9, PostID: 7, Text: text}

	resp := buildResponse(n, actor, post, comment)

	if resp.Actor.Username != "ana" || resp.Actor.FullName != "Ana Pérez" {
		t.Errorf("actor = %+v", resp.Actor)
	}
	if resp.PostImageURL == nil || *resp.PostImageURL != post.ImageURL {
		t.Errorf("postImageUrl = %v", resp.PostImageURL)
	}
	if resp.CommentText == nil || *resp.CommentText != strings.Repeat("x", 50)+"..." {
		t.Errorf("commentText = %v", resp.CommentText)
	}

	// A follow notification carries no subject fields at all.
	follow := buildResponse(models.NewFollowNotification(1, 2, models.NotificationFollow), actor, nil, nil)
	if follow.PostID != nil || follow.PostImageURL != nil || follow.CommentID != nil || follow.CommentText != nil {
		t.Errorf("follow projection leaked subject fields: %+v", follow)
	}
}
