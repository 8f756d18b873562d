package entities

// Session is the atomic authentication unit: both tokens and the user are
// set together on login and cleared together on logout. A session with an
// access token always carries a user, and vice versa.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *User
}

// NewSession builds a session from an authentication response.
func NewSession(accessToken, refreshToken string, user User) *Session {
	u := user
	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         &u,
	}
}

// Active reports whether the session holds an authenticated identity.
func (s *Session) Active() bool {
	return s != nil && s.AccessToken != "" && s.User != nil
}

// AuthResult is the backend payload for a successful login or registration.
type AuthResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// SessionRecord is the persisted form of a session: three string values
// written and cleared together. The user is stored serialized so a store
// stays a dumb key-value sink.
type SessionRecord struct {
	AccessToken  string
	RefreshToken string
	UserJSON     string
}
