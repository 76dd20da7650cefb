package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fiveamclub/fiveam/models"
	"github.com/fiveamclub/fiveam/streak"
	"github.com/fiveamclub/fiveam/utils"
)

// FriendController manages friend requests and the friend list.
type FriendController struct {
	db *gorm.DB
}

// NewFriendController creates a new controller instance.
func NewFriendController(db *gorm.DB) *FriendController {
	return &FriendController{db: db}
}

// SendRequest creates a pending friend request addressed by username.
// A rejected request is terminal for that attempt but does not block a
// later re-request.
func (f *FriendController) SendRequest(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40031, "invalid request payload")
		return
	}

	var receiver models.User
	if err := f.db.Where("username = ?", req.Username).First(&receiver).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40402, "user not found")
		return
	}

	if receiver.ID == userID {
		utils.Error(ctx, http.StatusBadRequest, 40032, "cannot befriend yourself")
		return
	}

	u1, u2 := models.OrderPair(userID, receiver.ID)
	var friendCount int64
	if err := f.db.Model(&models.Friendship{}).
		Where("user1_id = ? AND user2_id = ?", u1, u2).
		Count(&friendCount).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to query friendships")
		return
	}
	if friendCount > 0 {
		utils.Error(ctx, http.StatusConflict, 40920, "already friends")
		return
	}

	var pendingCount int64
	if err := f.db.Model(&models.FriendRequest{}).
		Where("status = ? AND ((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))",
			models.FriendRequestPending, userID, receiver.ID, receiver.ID, userID).
		Count(&pendingCount).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to query friend requests")
		return
	}
	if pendingCount > 0 {
		utils.Error(ctx, http.StatusConflict, 40921, "a pending request already exists")
		return
	}

	request := models.FriendRequest{
		SenderID:   userID,
		ReceiverID: receiver.ID,
		Status:     models.FriendRequestPending,
	}
	if err := f.db.Create(&request).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to create friend request")
		return
	}

	// Best-effort notification; mail failures never fail the request.
	if receiver.Email != "" {
		var sender models.User
		if err := f.db.First(&sender, userID).Error; err == nil {
			go func(to, from string) {
				subject := "New friend request"
				body := fmt.Sprintf("<p>%s wants to be your friend. Open the app to respond.</p>", from)
				if err := utils.SendMail(to, subject, body); err != nil && utils.Sugar != nil {
					utils.Sugar.Warnf("friend request mail to %s failed: %v", to, err)
				}
			}(receiver.Email, sender.Username)
		}
	}

	utils.Success(ctx, gin.H{
		"id":          request.ID,
		"receiver_id": receiver.ID,
		"status":      string(request.Status),
	})
}

// ListRequests returns pending requests involving the authenticated user,
// split into incoming and sent.
func (f *FriendController) ListRequests(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	var incoming []models.FriendRequest
	if err := f.db.Preload("Sender").
		Where("receiver_id = ? AND status = ?", userID, models.FriendRequestPending).
		Order("created_at DESC").
		Find(&incoming).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to query friend requests")
		return
	}

	var sent []models.FriendRequest
	if err := f.db.Preload("Receiver").
		Where("sender_id = ? AND status = ?", userID, models.FriendRequestPending).
		Order("created_at DESC").
		Find(&sent).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to query friend requests")
		return
	}

	in := make([]gin.H, 0, len(incoming))
	for _, r := range incoming {
		in = append(in, gin.H{
			"id":         r.ID,
			"username":   r.Sender.Username,
			"avatar_url": r.Sender.AvatarURL,
			"created_at": r.CreatedAt,
		})
	}
	out := make([]gin.H, 0, len(sent))
	for _, r := range sent {
		out = append(out, gin.H{
			"id":         r.ID,
			"username":   r.Receiver.Username,
			"avatar_url": r.Receiver.AvatarURL,
			"created_at": r.CreatedAt,
		})
	}

	utils.Success(ctx, gin.H{"incoming": in, "sent": out})
}

// Accept transitions a pending request to accepted and creates the
// friendship. Only the receiver may accept, and the status check runs
// under a row lock so concurrent accept/reject cannot both win.
func (f *FriendController) Accept(ctx *gin.Context) {
	f.resolve(ctx, models.FriendRequestAccepted)
}

// Reject transitions a pending request to rejected. Terminal for this
// request; the sender may ask again later.
func (f *FriendController) Reject(ctx *gin.Context) {
	f.resolve(ctx, models.FriendRequestRejected)
}

func (f *FriendController) resolve(ctx *gin.Context, target models.FriendRequestStatus) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	requestID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40033, "invalid request id")
		return
	}

	err = f.db.Transaction(func(tx *gorm.DB) error {
		var request models.FriendRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&request, requestID).Error; err != nil {
			return err
		}

		if request.ReceiverID != userID {
			return errNotReceiver
		}
		if request.Status != models.FriendRequestPending {
			return errNotPending
		}

		if err := tx.Model(&request).Update("status", target).Error; err != nil {
			return err
		}

		if target == models.FriendRequestAccepted {
			u1, u2 := models.OrderPair(request.SenderID, request.ReceiverID)
			friendship := models.Friendship{User1ID: u1, User2ID: u2}
			if err := tx.Create(&friendship).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
		}
		return nil
	})

	switch {
	case err == nil:
		utils.Success(ctx, gin.H{"status": string(target)})
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.Error(ctx, http.StatusNotFound, 40403, "friend request not found")
	case errors.Is(err, errNotReceiver):
		utils.Error(ctx, http.StatusForbidden, 40320, "only the receiver may respond to a request")
	case errors.Is(err, errNotPending):
		utils.Error(ctx, http.StatusConflict, 40922, "request is no longer pending")
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to update friend request")
	}
}

var (
	errNotReceiver = errors.New("not the receiver")
	errNotPending  = errors.New("request not pending")
)

// ListFriends returns the friend list with each friend's streak summary
// computed in that friend's own timezone.
func (f *FriendController) ListFriends(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	var friendships []models.Friendship
	if err := f.db.Where("user1_id = ? OR user2_id = ?", userID, userID).
		Find(&friendships).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to query friendships")
		return
	}

	ids := make([]uint, 0, len(friendships))
	for _, fs := range friendships {
		if fs.User1ID == userID {
			ids = append(ids, fs.User2ID)
		} else {
			ids = append(ids, fs.User1ID)
		}
	}
	ids = utils.UniqueUint(ids)

	var friends []models.User
	if len(ids) > 0 {
		if err := f.db.Where("id IN ?", ids).Find(&friends).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to query friendships")
			return
		}
	}

	items := make([]gin.H, 0, len(friends))
	for _, friend := range friends {
		info := f.friendStreak(friend.ID)
		items = append(items, gin.H{
			"id":             friend.ID,
			"username":       friend.Username,
			"avatar_url":     friend.AvatarURL,
			"current_streak": info.Current,
			"longest_streak": info.Longest,
			"total_checkins": info.Total,
		})
	}

	utils.Success(ctx, gin.H{"friends": items})
}

// DeleteFriend removes the friendship between the authenticated user and
// the given friend id.
func (f *FriendController) DeleteFriend(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	friendID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40034, "invalid friend id")
		return
	}

	u1, u2 := models.OrderPair(userID, uint(friendID))
	result := f.db.Where("user1_id = ? AND user2_id = ?", u1, u2).Delete(&models.Friendship{})
	if result.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to delete friendship")
		return
	}
	if result.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40404, "friendship not found")
		return
	}

	utils.Success(ctx, gin.H{"deleted": true})
}

// friendStreak evaluates a friend's streak against today in the friend's
// own timezone. Failures degrade to a zero summary rather than failing
// the whole list.
func (f *FriendController) friendStreak(userID uint) streak.Info {
	var settings models.UserSettings
	tz := models.DefaultTimezone
	if err := f.db.Where("user_id = ?", userID).First(&settings).Error; err == nil {
		tz = settings.Timezone
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}

	var dates []string
	if err := f.db.Model(&models.Checkin{}).
		Where("user_id = ?", userID).
		Order("local_date ASC").
		Pluck("local_date", &dates).Error; err != nil {
		return streak.Info{}
	}

	days := make([]streak.Day, 0, len(dates))
	for _, s := range dates {
		if d, err := streak.ParseDay(s); err == nil {
			days = append(days, d)
		}
	}

	return streak.Compute(days, streak.ToLocalDay(now(), loc))
}
