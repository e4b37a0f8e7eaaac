package requestresponse

// CredentialsRequest : body of sign up and login, urlencoded form or JSON
type CredentialsRequest struct {
	Email    string `json:"email" example:"traveler@example.com"`
	Password string `json:"password" example:"P@ssw0rd123"`
}

// SessionResponse : answer of a successful sign up or login
type SessionResponse struct {
	Response struct {
		Email string `json:"email" example:"traveler@example.com"`
		Token string `json:"token" example:"eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9..."`
	} `json:"response"`
}

// LoginRequiredResponse : GET /login for a visitor without a live session
type LoginRequiredResponse struct {
	Response struct {
		LoginRequired bool `json:"login_required" example:"true"`
	} `json:"response"`
}

// LogoutResponse : answer on session termination
type LogoutResponse struct {
	Response struct {
		LoggedOut bool `json:"logged_out" example:"true"`
	} `json:"response"`
}
