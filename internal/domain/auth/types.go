package auth

import "time"

// Config drives authentication behavior.
type Config struct {
	Secret          string
	TokenTTL        time.Duration
	RefreshTokenTTL time.Duration
	Google          GoogleConfig
}

// GoogleConfig holds OAuth settings for Google sign-in.
type GoogleConfig struct {
	ClientID             string
	ClientSecret         string
	RedirectURL          string
	Issuer               string
	TokenEncryptionKey   string
	PostLoginRedirectURL string
}

// User represents a persisted account.
type User struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"displayName"`
	PasswordHash  string    `json:"-"`
	CalorieTarget *int      `json:"calorieTarget,omitempty"`
	WeightUnit    string    `json:"weightUnit"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Identity represents an external auth provider linkage.
type Identity struct {
	ID              int64
	UserID          int64
	Provider        string
	ProviderSubject string
	ProviderEmail   string
	RefreshToken    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RegisterRequest captures the registration payload.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// LoginRequest captures login details.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse returns the signed token.
type LoginResponse struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refreshToken"`
	User         UserView `json:"user"`
}

// UserView trims sensitive fields.
type UserView struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"displayName"`
	CalorieTarget *int      `json:"calorieTarget,omitempty"`
	WeightUnit    string    `json:"weightUnit"`
	CreatedAt     time.Time `json:"createdAt"`
}

// UpdateProfileRequest changes coaching preferences. Nil fields are
// left untouched.
type UpdateProfileRequest struct {
	DisplayName   *string `json:"displayName,omitempty"`
	CalorieTarget *int    `json:"calorieTarget,omitempty"`
	WeightUnit    *string `json:"weightUnit,omitempty"`
}

// Claims are extracted from the JWT token.
type Claims struct {
	UserID    int64
	Email     string
	TokenType string
	ExpiresAt time.Time
}

// RefreshRequest encapsulates refresh token payload.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}
