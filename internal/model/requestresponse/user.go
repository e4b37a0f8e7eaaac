package requestresponse

// ErrorDetail : error details
type ErrorDetail struct {
	Code int    `json:"code" example:"400"`
	Text string `json:"text" example:"invalid email or password"`
}

// ErrorResponse : standard error body
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// PageResponse : guarded page answered with the current identity
type PageResponse struct {
	Response struct {
		Page  string `json:"page" example:"dashboard"`
		Email string `json:"email" example:"traveler@example.com"`
	} `json:"response"`
}

// UpdateUserRequest : body of a password change
type UpdateUserRequest struct {
	Password string `json:"password" example:"N3wP@ssw0rd"`
}

// UpdateUserResponse : successful password change
type UpdateUserResponse struct {
	Response struct {
		Updated bool `json:"updated" example:"true"`
	} `json:"response"`
}

// DeleteUserResponse : successful account removal
type DeleteUserResponse struct {
	Response struct {
		Deleted bool `json:"deleted" example:"true"`
	} `json:"response"`
}
