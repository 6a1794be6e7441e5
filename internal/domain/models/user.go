package models

type Preferences struct {
	Language      string `json:"language"`
	Currency      string `json:"currency"`
	Notifications bool   `json:"notifications"`
}

type UserProfile struct {
	Avatar      string      `json:"avatar"`
	Preferences Preferences `json:"preferences"`
}

// User is one row of the selambus_users table.
type User struct {
	ID           string      `json:"id"`
	FirstName    string      `json:"firstName"`
	LastName     string      `json:"lastName"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	PasswordHash string      `json:"passwordHash,omitempty"`
	Provider     string      `json:"provider,omitempty"`
	CreatedAt    string      `json:"createdAt"`
	Profile      UserProfile `json:"profile"`
}

// PublicUser is User without credentials; it is what sessions carry.
type PublicUser struct {
	ID        string      `json:"id"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
	Provider  string      `json:"provider,omitempty"`
	CreatedAt string      `json:"createdAt"`
	Profile   UserProfile `json:"profile"`
}

func (u *User) ToPublic() PublicUser {
	return PublicUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Provider:  u.Provider,
		CreatedAt: u.CreatedAt,
		Profile:   u.Profile,
	}
}

// Session is the selambus_session record.
type Session struct {
	User      PublicUser `json:"user"`
	Timestamp string     `json:"timestamp"`
}
