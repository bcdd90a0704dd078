package auth

// UserClaims identifies the caller of a request, however it authenticated.
type UserClaims interface {
	UserID() string
	Source() string
	SessionID() string
}

// JWTClaims come from a bearer access token
type JWTClaims struct {
	UserUUID  string
	TokenID   string
	SessionTo string
}

func (c *JWTClaims) UserID() string    { return c.UserUUID }
func (c *JWTClaims) Source() string    { return "JWT" }
func (c *JWTClaims) SessionID() string { return c.SessionTo }

// SessionClaims come from the session cookie
type SessionClaims struct {
	UserUUID string
	Session  string
}

func (c *SessionClaims) UserID() string    { return c.UserUUID }
func (c *SessionClaims) Source() string    { return "SESSION" }
func (c *SessionClaims) SessionID() string { return c.Session }
