package models

import "time"

// FriendRequestStatus is the lifecycle state of a friend request.
type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestRejected FriendRequestStatus = "rejected"
)

// FriendRequest is created pending by the sender and moves to a
// terminal accepted or rejected state. Accepting one creates the
// Friendship row in the same transaction.
type FriendRequest struct {
	ID         uint                `gorm:"primaryKey" json:"id"`
	SenderID   uint                `gorm:"index;not null" json:"sender_id"`
	ReceiverID uint                `gorm:"index;not null" json:"receiver_id"`
	Status     FriendRequestStatus `gorm:"size:16;not null;default:'pending'" json:"status"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
	Sender     User                `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"sender"`
	Receiver   User                `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// Friendship is an unordered pair stored ordered (User1ID < User2ID)
// so the unique index catches both orientations. Unfriending deletes
// the row outright.
type Friendship struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	User1ID   uint      `gorm:"not null;index:idx_friendships_pair,unique" json:"user1_id"`
	User2ID   uint      `gorm:"not null;index:idx_friendships_pair,unique" json:"user2_id"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderPair normalizes a user pair into storage order.
func OrderPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}
