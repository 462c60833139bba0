// internal/locations/models.go
package locations

import (
	"github.com/sacavia/sacavia-go/internal/apiclient"
)

type Privacy string

const (
	PrivacyPublic    Privacy = "public"
	PrivacyFollowers Privacy = "followers"
	PrivacyPrivate   Privacy = "private"
)

// Ownership is the business claim lifecycle: unclaimed -> pending -> approved/verified.
type Ownership string

const (
	OwnershipUnclaimed Ownership = "unclaimed"
	OwnershipPending   Ownership = "pending"
	OwnershipApproved  Ownership = "approved"
	OwnershipVerified  Ownership = "verified"
)

// Claimed reports whether a business owner has been confirmed.
func (o Ownership) Claimed() bool {
	return o == OwnershipApproved || o == OwnershipVerified
}

type Coordinates struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

type Address struct {
	Street       string `json:"street,omitempty" validate:"max=200"`
	City         string `json:"city" validate:"required,max=100"`
	State        string `json:"state,omitempty" validate:"max=100"`
	Zip          string `json:"zip,omitempty" validate:"max=20"`
	Country      string `json:"country" validate:"required,max=100"`
	Neighborhood string `json:"neighborhood,omitempty" validate:"max=100"`
}

type GalleryImage struct {
	Image   string `json:"image" validate:"required"` // media id
	Caption string `json:"caption,omitempty" validate:"max=200"`
	Order   int    `json:"order"`
}

// BusinessHours is one weekday. Closed days carry no times.
type BusinessHours struct {
	Day    string `json:"day" validate:"oneof=Sunday Monday Tuesday Wednesday Thursday Friday Saturday"`
	Open   string `json:"open,omitempty" validate:"required_if=Closed false"`
	Close  string `json:"close,omitempty" validate:"required_if=Closed false"`
	Closed bool   `json:"closed"`
}

type ContactInfo struct {
	Phone   string `json:"phone,omitempty" validate:"max=30"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Website string `json:"website,omitempty" validate:"omitempty,url"`
}

type Location struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Slug             string          `json:"slug,omitempty"`
	Description      string          `json:"description,omitempty"`
	ShortDescription string          `json:"shortDescription,omitempty"`
	Address          *Address        `json:"address,omitempty"`
	Coordinates      *Coordinates    `json:"coordinates,omitempty"`
	Categories       []string        `json:"categories,omitempty"`
	FeaturedImage    string          `json:"featuredImage,omitempty"`
	Gallery          []GalleryImage  `json:"gallery,omitempty"`
	BusinessHours    []BusinessHours `json:"businessHours,omitempty"`
	ContactInfo      *ContactInfo    `json:"contactInfo,omitempty"`
	PriceRange       string          `json:"priceRange,omitempty"`
	Privacy          Privacy         `json:"privacy,omitempty"`
	Ownership        Ownership       `json:"ownershipStatus,omitempty"`
	AverageRating    float64         `json:"averageRating"`
	ReviewCount      int             `json:"reviewCount"`
	SaveCount        int             `json:"saveCount"`
	IsSaved          bool            `json:"isSaved"`
	IsSubscribed     bool            `json:"isSubscribed"`
	CreatedBy        string          `json:"createdBy,omitempty"`
}

// CreateLocationRequest is the typed create payload.
type CreateLocationRequest struct {
	Name             string          `json:"name" validate:"required,min=2,max=100"`
	Description      string          `json:"description" validate:"required,max=2000"`
	ShortDescription string          `json:"shortDescription,omitempty" validate:"max=200"`
	Address          Address         `json:"address"`
	Coordinates      *Coordinates    `json:"coordinates,omitempty"`
	Categories       []string        `json:"categories" validate:"required,min=1,max=3,dive,required"`
	FeaturedImage    string          `json:"featuredImage,omitempty"`
	Gallery          []GalleryImage  `json:"gallery,omitempty" validate:"max=20,dive"`
	BusinessHours    []BusinessHours `json:"businessHours,omitempty" validate:"max=7,dive"`
	ContactInfo      *ContactInfo    `json:"contactInfo,omitempty"`
	PriceRange       string          `json:"priceRange,omitempty" validate:"omitempty,oneof=free budget moderate expensive luxury"`
	Privacy          Privacy         `json:"privacy" validate:"required,oneof=public followers private"`
	PrivateAccess    []string        `json:"privateAccess,omitempty"`
	Tags             []string        `json:"tags,omitempty" validate:"max=10"`
}

type Interaction struct {
	LocationID      string `json:"locationId"`
	IsSaved         bool   `json:"isSaved"`
	IsSubscribed    bool   `json:"isSubscribed"`
	SaveCount       int    `json:"saveCount"`
	SubscriberCount int    `json:"subscriberCount"`
}

type InteractionState struct {
	Interactions    []Interaction `json:"interactions"`
	TotalLocations  int           `json:"totalLocations"`
	TotalSaved      int           `json:"totalSaved"`
	TotalSubscribed int           `json:"totalSubscribed"`
}

func (s *InteractionState) Find(locationID string) (Interaction, bool) {
	for _, i := range s.Interactions {
		if i.LocationID == locationID {
			return i, true
		}
	}
	return Interaction{}, false
}

type Review struct {
	ID           string  `json:"id"`
	LocationID   string  `json:"locationId"`
	Title        string  `json:"title"`
	Content      string  `json:"content"`
	Rating       float64 `json:"rating"`
	AuthorID     string  `json:"authorId,omitempty"`
	AuthorName   string  `json:"authorName,omitempty"`
	VisitDate    string  `json:"visitDate,omitempty"`
	HelpfulCount int     `json:"helpfulCount"`
	CreatedAt    string  `json:"createdAt,omitempty"`
}

type ReviewRequest struct {
	Title     string  `json:"title" validate:"required,max=100"`
	Content   string  `json:"content" validate:"required,min=10,max=2000"`
	Rating    float64 `json:"rating" validate:"required,min=1,max=5"`
	VisitDate string  `json:"visitDate,omitempty"`
}

type TipCategory string

const (
	TipTiming          TipCategory = "timing"
	TipFood            TipCategory = "food"
	TipSecret          TipCategory = "secret"
	TipProtip          TipCategory = "protip"
	TipAccess          TipCategory = "access"
	TipSavings         TipCategory = "savings"
	TipRecommendations TipCategory = "recommendations"
	TipHidden          TipCategory = "hidden"
)

type TipPriority string

const (
	PriorityHigh   TipPriority = "high"
	PriorityMedium TipPriority = "medium"
	PriorityLow    TipPriority = "low"
)

type InsiderTip struct {
	ID         string      `json:"id"`
	LocationID string      `json:"locationId"`
	Category   TipCategory `json:"category"`
	Tip        string      `json:"tip"`
	Priority   TipPriority `json:"priority"`
	IsVerified bool        `json:"isVerified"`
	AuthorName string      `json:"authorName,omitempty"`
	CreatedAt  string      `json:"createdAt,omitempty"`
}

type TipRequest struct {
	Category TipCategory `json:"category" validate:"required,oneof=timing food secret protip access savings recommendations hidden"`
	Tip      string      `json:"tip" validate:"required,min=5,max=500"`
	Priority TipPriority `json:"priority" validate:"required,oneof=high medium low"`
}

type CommunityPhoto struct {
	ID         string   `json:"id"`
	LocationID string   `json:"locationId"`
	URL        string   `json:"url"`
	Caption    string   `json:"caption,omitempty"`
	Category   string   `json:"category,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Status     string   `json:"status,omitempty"` // pending | approved | rejected
	AuthorName string   `json:"authorName,omitempty"`
	CreatedAt  string   `json:"createdAt,omitempty"`
}

type SearchResult struct {
	Locations  []Location           `json:"locations"`
	Pagination apiclient.Pagination `json:"pagination"`
}
