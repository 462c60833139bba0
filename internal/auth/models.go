// internal/auth/models.go
// Request and response shapes for the mobile auth routes.

package auth

// User is the account returned by login and register
type User struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Username   string   `json:"username,omitempty"`
	Role       string   `json:"role,omitempty"`
	Interests  []string `json:"interests,omitempty"`
	IsVerified bool     `json:"isVerified"`
}

// LoginRequest is what the client sends to sign in
type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

// SignupRequest is the aggregated payload of the multi-step signup form.
// Validation tags mirror the backend so most failures never leave the device.
type SignupRequest struct {
	Name            string   `json:"name" validate:"required,min=2,max=100"`
	Email           string   `json:"email" validate:"required,email"`
	Username        string   `json:"username" validate:"required,username"`
	Password        string   `json:"password" validate:"required,min=8,max=100"`
	ConfirmPassword string   `json:"confirmPassword" validate:"required,eqfield=Password"`
	Interests       []string `json:"interests,omitempty" validate:"max=20"`
	Location        string   `json:"location,omitempty" validate:"max=200"`
	Bio             string   `json:"bio,omitempty" validate:"max=500"`
	ProfileImage    string   `json:"profileImage,omitempty"` // uploaded media id
	AcceptTerms     bool     `json:"termsAccepted" validate:"required"`
}

// AuthResponse is returned after login or signup
type AuthResponse struct {
	Token     string `json:"token"`
	User      User   `json:"user"`
	ExpiresIn int64  `json:"expiresIn,omitempty"`
}

// UsernameCheck is the availability answer for a username
type UsernameCheck struct {
	Available   bool     `json:"available"`
	Reason      string   `json:"reason,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

type EmailCheck struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}
