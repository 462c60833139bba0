// internal/posts/models.go
package posts

import "github.com/sacavia/sacavia-go/internal/multipart"

type Author struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Username     string `json:"username,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
}

type Media struct {
	Type      string `json:"type"` // image | video
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

type Post struct {
	ID           string  `json:"id"`
	Content      string  `json:"content"`
	Type         string  `json:"type"`
	Author       *Author `json:"author,omitempty"`
	Media        []Media `json:"media,omitempty"`
	LocationID   string  `json:"locationId,omitempty"`
	LocationName string  `json:"locationName,omitempty"`
	LikeCount    int     `json:"likeCount"`
	CommentCount int     `json:"commentCount"`
	SaveCount    int     `json:"saveCount"`
	ShareCount   int     `json:"shareCount"`
	IsLiked      bool    `json:"isLiked"`
	IsSaved      bool    `json:"isSaved"`
	CreatedAt    string  `json:"createdAt,omitempty"`
}

type Comment struct {
	ID        string  `json:"id"`
	PostID    string  `json:"postId"`
	ParentID  *string `json:"parentId,omitempty"`
	Content   string  `json:"content"`
	Author    *Author `json:"author,omitempty"`
	LikeCount int     `json:"likeCount"`
	IsLiked   bool    `json:"isLiked"`
	CreatedAt string  `json:"createdAt,omitempty"`
}

// CommentNode is a comment with its replies attached, built client side.
type CommentNode struct {
	Comment
	Replies []*CommentNode `json:"replies,omitempty"`
}

// CreatePostRequest needs content, an image or a video.
type CreatePostRequest struct {
	Content    string           `validate:"max=5000"`
	Images     []multipart.File
	Videos     []multipart.File
	LocationID string
}

type CommentRequest struct {
	PostID   string  `json:"postId" validate:"required"`
	Content  string  `json:"content" validate:"required,max=2000"`
	ParentID *string `json:"parentId,omitempty"`
}

type ShareRequest struct {
	RecipientIDs []string `json:"recipientIds" validate:"required,min=1,dive,required"`
	Message      string   `json:"message,omitempty" validate:"max=500"`
}

type Interaction struct {
	PostID    string `json:"postId"`
	IsLiked   bool   `json:"isLiked"`
	IsSaved   bool   `json:"isSaved"`
	LikeCount int    `json:"likeCount"`
	SaveCount int    `json:"saveCount"`
}

// InteractionState is the authoritative like/save state for a batch of posts.
type InteractionState struct {
	Interactions []Interaction `json:"interactions"`
	TotalPosts   int           `json:"totalPosts"`
	TotalLiked   int           `json:"totalLiked"`
	TotalSaved   int           `json:"totalSaved"`
}

// Find returns the entry for postID.
func (s *InteractionState) Find(postID string) (Interaction, bool) {
	for _, i := range s.Interactions {
		if i.PostID == postID {
			return i, true
		}
	}
	return Interaction{}, false
}
