package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/teamsn/socialnetwork/internal/models"
	"github.com/teamsn/socialnetwork/internal/realtime"
	"github.com/teamsn/socialnetwork/pkg/token"
	"github.com/teamsn/socialnetwork/validators"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type app struct {
	echo *echo.Echo
	hub  *realtime.Hub
}

func newTestApp(t *testing.T) *app {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	tokens := token.NewService("integration-test-secret", time.Hour)
	hub := realtime.NewHub()

	e := echo.New()
	e.Validator = validators.NewValidator()
	SetupMiddleware(e)
	if err := SetupRoutes(e, db, hub, hub, tokens); err != nil {
		t.Fatalf("SetupRoutes: %v", err)
	}

	return &app{echo: e, hub: hub}
}

func (a *app) request(t *testing.T, method, target, bearer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = strings.NewReader(string(encoded))
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

// signup registers a user and returns their bearer token.
func (a *app) signup(t *testing.T, username string, private bool) string {
	t.Helper()
	rec := a.request(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]interface{}{
		"username":   username,
		"full_name":  username + " Test",
		"email":      username + "@example.com",
		"password":   "password123",
		"is_private": private,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup %s: status %d body %s", username, rec.Code, rec.Body.String())
	}
	var body struct {
		Token string `json:"token"`
	}
	decodeJSON(t, rec, &body)
	if body.Token == "" {
		t.Fatal("signup returned empty token")
	}
	return body.Token
}

func (a *app) createPost(t *testing.T, bearer string) uint {
	t.Helper()
	rec := a.request(t, http.MethodPost, "/api/v1/posts", bearer, map[string]interface{}{
		"image_url": "https://img.example/p.jpg",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create post: status %d body %s", rec.Code, rec.Body.String())
	}
	var post models.Post
	decodeJSON(t, rec, &post)
	return post.ID
}

func (a *app) unreadCount(t *testing.T, bearer string) int64 {
	t.Helper()
	rec := a.request(t, http.MethodGet, "/api/v1/notifications/unread-count", bearer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unread-count: status %d body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data struct {
			UnreadCount int64 `json:"unreadCount"`
		} `json:"data"`
	}
	decodeJSON(t, rec, &body)
	return body.Data.UnreadCount
}

func TestSigninIssuesUsableToken(t *testing.T) {
	a := newTestApp(t)
	a.signup(t, "alice", false)

	rec := a.request(t, http.MethodPost, "/api/v1/auth/signin", "", map[string]interface{}{
		"email":    "alice@example.com",
		"password": "password123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("signin: status %d body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Token string `json:"token"`
	}
	decodeJSON(t, rec, &body)

	if got := a.request(t, http.MethodGet, "/api/v1/notifications", body.Token, nil); got.Code != http.StatusOK {
		t.Errorf("authenticated request: status %d body %s", got.Code, got.Body.String())
	}
}

func TestSigninRejectsWrongPassword(t *testing.T) {
	a := newTestApp(t)
	a.signup(t, "alice", false)

	rec := a.request(t, http.MethodPost, "/api/v1/auth/signin", "", map[string]interface{}{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("signin: status %d, want 401", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := newTestApp(t)
	rec := a.request(t, http.MethodGet, "/api/v1/notifications", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestLikeNotifiesAuthorAndUnlikeRetracts(t *testing.T) {
	a := newTestApp(t)
	aliceToken := a.signup(t, "alice", false)
	bobToken := a.signup(t, "bob", false)
	postID := a.createPost(t, bobToken)

	target := fmt.Sprintf("/api/v1/posts/%d/likes", postID)
	if rec := a.request(t, http.MethodPost, target, aliceToken, nil); rec.Code != http.StatusCreated {
		t.Fatalf("like: status %d body %s", rec.Code, rec.Body.String())
	}
	// Relike without unliking is a conflict, not a duplicate notification.
	if rec := a.request(t, http.MethodPost, target, aliceToken, nil); rec.Code != http.StatusConflict {
		t.Errorf("second like: status %d, want 409", rec.Code)
	}

	if got := a.unreadCount(t, bobToken); got != 1 {
		t.Errorf("unread = %d, want 1", got)
	}

	rec := a.request(t, http.MethodGet, "/api/v1/notifications", bobToken, nil)
	var list struct {
		Data struct {
			Notifications []models.NotificationResponse `json:"notifications"`
		} `json:"data"`
		Meta struct {
			TotalItems int64 `json:"totalItems"`
		} `json:"meta"`
	}
	decodeJSON(t, rec, &list)
	if list.Meta.TotalItems != 1 || len(list.Data.Notifications) != 1 {
		t.Fatalf("notifications = %+v", list)
	}
	n := list.Data.Notifications[0]
	if n.Type != models.NotificationPostLike || n.Actor.Username != "alice" {
		t.Errorf("notification = %+v", n)
	}
	if n.PostID == nil || *n.PostID != postID {
		t.Errorf("postId = %v, want %d", n.PostID, postID)
	}

	if rec := a.request(t, http.MethodDelete, target, aliceToken, nil); rec.Code != http.StatusOK {
		t.Fatalf("unlike: status %d body %s", rec.Code, rec.Body.String())
	}
	if got := a.unreadCount(t, bobToken); got != 0 {
		t.Errorf("unread after unlike = %d, want 0", got)
	}
}

func TestCommentThenMarkRead(t *testing.T) {
	a := newTestApp(t)
	aliceToken := a.signup(t, "alice", false)
	bobToken := a.signup(t, "bob", false)
	postID := a.createPost(t, bobToken)

	target := fmt.Sprintf("/api/v1/posts/%d/comments", postID)
	for i := 0; i < 2; i++ {
		rec := a.request(t, http.MethodPost, target, aliceToken, map[string]interface{}{"text": "nice shot"})
		if rec.Code != http.StatusCreated {
			t.Fatalf("comment #%d: status %d body %s", i+1, rec.Code, rec.Body.String())
		}
	}

	// Comments are never collapsed.
	if got := a.unreadCount(t, bobToken); got != 2 {
		t.Errorf("unread = %d, want 2", got)
	}

	rec := a.request(t, http.MethodPut, "/api/v1/notifications/read-all", bobToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("read-all: status %d body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data struct {
			Updated int64 `json:"updated"`
		} `json:"data"`
	}
	decodeJSON(t, rec, &body)
	if body.Data.Updated != 2 {
		t.Errorf("updated = %d, want 2", body.Data.Updated)
	}
	if got := a.unreadCount(t, bobToken); got != 0 {
		t.Errorf("unread after read-all = %d, want 0", got)
	}
}

func TestPrivateAccountFollowRequestFlow(t *testing.T) {
	a := newTestApp(t)
	aliceToken := a.signup(t, "alice", false)
	bobToken := a.signup(t, "bob", true) // private

	// Alice cannot see Bob's posts before following.
	postID := a.createPost(t, bobToken)
	postTarget := fmt.Sprintf("/api/v1/posts/%d", postID)
	if rec := a.request(t, http.MethodGet, postTarget, aliceToken, nil); rec.Code != http.StatusForbidden {
		t.Errorf("view private post: status %d, want 403", rec.Code)
	}

	// Following a private account files a request instead of a follow edge.
	followTarget := "/api/v1/users/2/follow"
	rec := a.request(t, http.MethodPost, followTarget, aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("follow: status %d body %s", rec.Code, rec.Body.String())
	}
	var followBody struct {
		Data struct {
			Requested bool `json:"requested"`
		} `json:"data"`
	}
	decodeJSON(t, rec, &followBody)
	if !followBody.Data.Requested {
		t.Fatalf("follow response = %s", rec.Body.String())
	}
	if got := a.unreadCount(t, bobToken); got != 1 {
		t.Errorf("unread = %d, want 1 (FOLLOW_REQUEST)", got)
	}

	// Repeating the request resurfaces the one notification, no stacking.
	a.request(t, http.MethodPost, followTarget, aliceToken, nil)
	if got := a.unreadCount(t, bobToken); got != 1 {
		t.Errorf("unread after repeat = %d, want 1", got)
	}

	// Bob approves. The request notification leaves his feed and Alice is told.
	rec = a.request(t, http.MethodGet, "/api/v1/follow-requests", bobToken, nil)
	var pending struct {
		Data struct {
			Requests []models.FollowRequest `json:"requests"`
		} `json:"data"`
	}
	decodeJSON(t, rec, &pending)
	if len(pending.Data.Requests) != 1 {
		t.Fatalf("pending requests = %+v", pending.Data.Requests)
	}

	approveTarget := fmt.Sprintf("/api/v1/follow-requests/%d/approve", pending.Data.Requests[0].ID)
	if rec := a.request(t, http.MethodPost, approveTarget, bobToken, nil); rec.Code != http.StatusOK {
		t.Fatalf("approve: status %d body %s", rec.Code, rec.Body.String())
	}

	if got := a.unreadCount(t, bobToken); got != 0 {
		t.Errorf("bob unread after approve = %d, want 0", got)
	}
	if got := a.unreadCount(t, aliceToken); got != 1 {
		t.Errorf("alice unread after approve = %d, want 1 (FOLLOW_REQUEST_APPROVED)", got)
	}

	// As a follower, Alice can now see the post.
	if rec := a.request(t, http.MethodGet, postTarget, aliceToken, nil); rec.Code != http.StatusOK {
		t.Errorf("view post after approval: status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestApproveForeignRequestIsForbidden(t *testing.T) {
	a := newTestApp(t)
	aliceToken := a.signup(t, "alice", false)
	a.signup(t, "bob", true)
	malloryToken := a.signup(t, "mallory", false)

	if rec := a.request(t, http.MethodPost, "/api/v1/users/2/follow", aliceToken, nil); rec.Code != http.StatusOK {
		t.Fatalf("follow: status %d body %s", rec.Code, rec.Body.String())
	}

	// Mallory cannot approve a request addressed to Bob.
	rec := a.request(t, http.MethodPost, "/api/v1/follow-requests/1/approve", malloryToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("approve: status %d, want 403", rec.Code)
	}
}

func TestDeletePostCleansUpNotifications(t *testing.T) {
	a := newTestApp(t)
	aliceToken := a.signup(t, "alice", false)
	bobToken := a.signup(t, "bob", false)
	postID := a.createPost(t, bobToken)

	a.request(t, http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/likes", postID), aliceToken, nil)
	a.request(t, http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/comments", postID), aliceToken, map[string]interface{}{"text": "hello"})
	if got := a.unreadCount(t, bobToken); got != 2 {
		t.Fatalf("unread = %d, want 2", got)
	}

	rec := a.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/posts/%d", postID), bobToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete post: status %d body %s", rec.Code, rec.Body.String())
	}

	if got := a.unreadCount(t, bobToken); got != 0 {
		t.Errorf("unread after delete = %d, want 0", got)
	}
}
