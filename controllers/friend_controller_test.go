package controllers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fiveamclub/fiveam/models"
)

func friendRouter(db *gorm.DB, userID uint) *gin.Engine {
	r := gin.New()
	f := NewFriendController(db)
	g := r.Group("/friends", asUser(userID))
	g.GET("", f.ListFriends)
	g.DELETE("/:id", f.DeleteFriend)
	g.POST("/requests", f.SendRequest)
	g.GET("/requests", f.ListRequests)
	g.POST("/requests/:id/accept", f.Accept)
	g.POST("/requests/:id/reject", f.Reject)
	return r
}

func sendRequest(t *testing.T, db *gorm.DB, from uint, toUsername string) uint {
	t.Helper()
	r := friendRouter(db, from)
	w := doJSON(r, "POST", "/friends/requests", gin.H{"username": toUsername})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got struct {
		ID uint `json:"id"`
	}
	decodeData(t, w, &got)
	return got.ID
}

func TestSendFriendRequest(t *testing.T) {
	db := openTestDB(t)
	alice := createUser(t, db, "alice")
	createUser(t, db, "bob")

	id := sendRequest(t, db, alice.ID, "bob")

	var request models.FriendRequest
	require.NoError(t, db.First(&request, id).Error)
	assert.Equal(t, models.FriendRequestPending, request.Status)
	assert.Equal(t, alice.ID, request.SenderID)
}

func TestSendFriendRequestToSelf(t *testing.T) {
	db := openTestDB(t)
	alice := createUser(t, db, "alice")

	r := friendRouter(db, alice.ID)
	w := doJSON(r, "POST", "/friends/requests", gin.H{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendFriendRequestUnknownUser(t *testing.T) {
	db := openTestDB(t)
	alice := createUser(t, db, "alice")

	r := friendRouter(db, alice.ID)
	w := doJSON(r, "POST", "/friends/requests", gin.H{"username": "nobody"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSendFriendRequestDuplicatePending(t *testing.T) {
	db := openTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	sendRequest(t, db, alice.ID, "bob")

	// Same direction
	r := friendRouter(db, alice.ID)
	w := doJSON(r, "POST", "/friends/requests", gin.H{"username": "bob"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 40921, decodeEnvelope(t, w).Code)

	// Opposite direction is the same pending pair
	r = friendRouter(db, bob.ID)
	w = doJSON(r, "POST", "/friends/requests", gin.H{"username": "alice"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAcceptCreatesFriendship(t *testing.T) {
	db := openTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	id := sendRequest(t, db, alice.ID, "bob")

	r := friendRouter(db, bob.ID)
	w := doJSON(r, "POST", fmt.Sprintf("/friends/requests/%d/accept", id), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	u1, u2 := models.OrderPair(alice.ID, bob.ID)
	var count int64
	require.NoError(t, db.Model(&models.Friendship{}).
		Where("user1_id = ? AND user2_id = ?", u1, u2).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// Now that they are friends, a fresh request is refused.
	r = friendRouter(db, alice.ID)
	w = doJSON(r, "POST", "/friends/requests", gin.H{"username": "bob"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 40920, decodeEnvelope(t, w).Code)
}

func TestOnlyReceiverMayAccept(t *testing.T) {
	db := openTestDB(t)
	alice := createUser(t, db, "alice")
	createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	id := sendRequest(t, db, alice.ID, "bob")

	// The sender cannot accept their own request.
	r := friendRouter(db, alice.ID)
	w := doJSON(r, "POST", fmt.Sprintf("/friends/requests/%d/accept", id), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Neither can a third party.
	r = friendRouter(db, carol.ID)
	w = doJSON(r, "POST", fmt.Sprintf("/friends/requests/%d/accept", id), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRejectIsTerminalButAllowsReRequest(t *testing.T) {
	db := openTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	id := sendRequest(t, db, alice.ID, "bob")

	r := friendRouter(db, bob.ID)
	w := doJSON(r, "POST", fmt.Sprintf("/friends/requests/%d/reject", id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Accepting a rejected request fails.
	w = doJSON(r, "POST", fmt.Sprintf("/friends/requests/%d/accept", id), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// But the sender may try again with a fresh request.
	sendRequest(t, db, alice.ID, "bob")
}

func TestListRequestsSplitsDirections(t *testing.T) {
	db := openTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	createUser(t, db, "carol")

	sendRequest(t, db, alice.ID, "bob")
	sendRequest(t, db, bob.ID, "carol")

	r := friendRouter(db, bob.ID)
	w := doJSON(r, "GET", "/friends/requests", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Incoming []struct {
			Username string `json:"username"`
		} `json:"incoming"`
		Sent []struct {
			Username string `json:"username"`
		} `json:"sent"`
	}
	decodeData(t, w, &got)
	require.Len(t, got.Incoming, 1)
	assert.Equal(t, "alice", got.Incoming[0].Username)
	require.Len(t, got.Sent, 1)
	assert.Equal(t, "carol", got.Sent[0].Username)
}

func TestListFriendsWithStreaks(t *testing.T) {
	db := openTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	id := sendRequest(t, db, alice.ID, "bob")
	r := friendRouter(db, bob.ID)
	w := doJSON(r, "POST", fmt.Sprintf("/friends/requests/%d/accept", id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	seedCheckin(t, db, bob.ID, "2026-03-09")
	seedCheckin(t, db, bob.ID, "2026-03-10")
	freeze(t, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	r = friendRouter(db, alice.ID)
	w = doJSON(r, "GET", "/friends", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Friends []struct {
			Username string `json:"username"`
			Current  int    `json:"current_streak"`
			Total    int    `json:"total_checkins"`
		} `json:"friends"`
	}
	decodeData(t, w, &got)
	require.Len(t, got.Friends, 1)
	assert.Equal(t, "bob", got.Friends[0].Username)
	assert.Equal(t, 2, got.Friends[0].Current)
	assert.Equal(t, 2, got.Friends[0].Total)
}

func TestDeleteFriend(t *testing.T) {
	db := openTestDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	id := sendRequest(t, db, alice.ID, "bob")
	r := friendRouter(db, bob.ID)
	w := doJSON(r, "POST", fmt.Sprintf("/friends/requests/%d/accept", id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Either side may unfriend.
	r = friendRouter(db, alice.ID)
	w = doJSON(r, "DELETE", fmt.Sprintf("/friends/%d", bob.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, "DELETE", fmt.Sprintf("/friends/%d", bob.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
