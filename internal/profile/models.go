// internal/profile/models.go

package profile

import (
	"github.com/sacavia/sacavia-go/internal/apiclient"
	"github.com/sacavia/sacavia-go/internal/posts"
)

// ImageRef is a media reference as the backend embeds it in users.
type ImageRef struct {
	ID  string `json:"id,omitempty"`
	URL string `json:"url"`
}

// User represents a user's public profile
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username,omitempty"`
	Email        string    `json:"email,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	ProfileImage *ImageRef `json:"profileImage,omitempty"`
	Location     string    `json:"location,omitempty"`
	Website      string    `json:"website,omitempty"`
	Interests    []string  `json:"interests,omitempty"`
	Role         string    `json:"role,omitempty"`
	IsVerified   bool      `json:"isVerified"`
	IsFollowing  bool      `json:"isFollowing"`
	IsFollowedBy bool      `json:"isFollowedBy"`
	JoinedAt     string    `json:"joinedAt,omitempty"`
}

// Stats are server computed; every counter defaults to 0 when absent.
type Stats struct {
	PostsCount          int     `json:"postsCount"`
	FollowersCount      int     `json:"followersCount"`
	FollowingCount      int     `json:"followingCount"`
	SavedPostsCount     int     `json:"savedPostsCount"`
	LikedPostsCount     int     `json:"likedPostsCount"`
	LocationsCount      int     `json:"locationsCount"`
	ReviewCount         int     `json:"reviewCount"`
	RecommendationCount int     `json:"recommendationCount"`
	AverageRating       float64 `json:"averageRating"`
}

// ProfileResponse is GET /users/profile.
type ProfileResponse struct {
	User        User         `json:"user"`
	Stats       *Stats       `json:"stats,omitempty"`
	RecentPosts []posts.Post `json:"recentPosts,omitempty"`
}

// UpdateProfileRequest only sends the fields that are set.
type UpdateProfileRequest struct {
	Name      *string  `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Username  *string  `json:"username,omitempty" validate:"omitempty,username"`
	Bio       *string  `json:"bio,omitempty" validate:"omitempty,max=500"`
	Location  *string  `json:"location,omitempty" validate:"omitempty,max=200"`
	Website   *string  `json:"website,omitempty" validate:"omitempty,url"`
	Interests []string `json:"interests,omitempty" validate:"omitempty,max=20"`
}

// Connections is a page of followers or following.
type Connections struct {
	Users      []User               `json:"users"`
	Pagination apiclient.Pagination `json:"pagination"`
}

type BlockedUser struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Username  string `json:"username,omitempty"`
	Reason    string `json:"reason,omitempty"`
	BlockedAt string `json:"blockedAt,omitempty"`
}

type BlockRequest struct {
	TargetUserID string `json:"targetUserId" validate:"required"`
	Reason       string `json:"reason,omitempty" validate:"max=500"`
}

type DeleteAccountRequest struct {
	Password string `json:"password,omitempty"`
	Reason   string `json:"reason,omitempty" validate:"max=1000"`
}
