package domain

import "time"

// VerificationStatus enumerates account verification levels.
type VerificationStatus string

const (
	// VerificationNone marks an account created without any contact details.
	VerificationNone VerificationStatus = "UNVERIFIED"
	// VerificationPending marks an account that supplied an email which has not been confirmed yet.
	VerificationPending VerificationStatus = "AWAIT_VERIFICATION"
	// VerificationEmail marks an account verified with an email.
	VerificationEmail VerificationStatus = "VERIFIED_EMAIL"
	// VerificationEmailAndPhone marks an account verified with both an email and a phone number.
	VerificationEmailAndPhone VerificationStatus = "VERIFIED_EMAIL_AND_PHONE"
)

// User mirrors the persisted representation in the users table.
//
// Users are plain values: every mutation goes through the registry, which
// persists first and returns a fresh copy. The entity never holds a storage
// handle.
type User struct {
	ID            string
	Bot           bool
	Username      string
	Discriminant  string
	Email         *string
	Phone         string
	AvatarURL     string
	PasswordHash  string
	PasswordAlgo  string
	Status        VerificationStatus
	CreationDate  time.Time
	LastLoginDate *time.Time
	DateOfBirth   time.Time
}

// Tag returns the username#discriminant pair that uniquely identifies the account.
func (u User) Tag() string {
	return u.Username + "#" + u.Discriminant
}

// SafeView is the full profile projection handed back to the owning user.
// It carries every field except the password hash.
type SafeView struct {
	ID            string     `json:"id"`
	Bot           bool       `json:"bot"`
	Username      string     `json:"username"`
	Discriminant  string     `json:"discrim"`
	Email         *string    `json:"email"`
	Phone         string     `json:"phone"`
	AvatarURL     string     `json:"avatarUrl"`
	Status        string     `json:"verifStatus"`
	CreationDate  time.Time  `json:"creationDate"`
	LastLoginDate *time.Time `json:"lastLoginDate"`
	DateOfBirth   time.Time  `json:"dateOfBirth"`
}

// CacheView is the minimal public-identity projection shared with sibling
// services. Contact details, verification state, and dates stay out.
type CacheView struct {
	ID           string `json:"id"`
	Bot          bool   `json:"bot"`
	Username     string `json:"username"`
	Discriminant string `json:"discrim"`
	AvatarURL    string `json:"avatarUrl"`
}

// SafeView projects the user without the password hash.
func (u User) SafeView() SafeView {
	return SafeView{
		ID:            u.ID,
		Bot:           u.Bot,
		Username:      u.Username,
		Discriminant:  u.Discriminant,
		Email:         u.Email,
		Phone:         u.Phone,
		AvatarURL:     u.AvatarURL,
		Status:        string(u.Status),
		CreationDate:  u.CreationDate,
		LastLoginDate: u.LastLoginDate,
		DateOfBirth:   u.DateOfBirth,
	}
}

// CacheView projects the public identity reference for other services.
func (u User) CacheView() CacheView {
	return CacheView{
		ID:           u.ID,
		Bot:          u.Bot,
		Username:     u.Username,
		Discriminant: u.Discriminant,
		AvatarURL:    u.AvatarURL,
	}
}
