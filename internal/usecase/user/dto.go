package user

// RegisterRequest represents the request payload for registering a new user.
type RegisterRequest struct {
	Username  string `validate:"required,email"`
	Password  string `validate:"required,min=5,max=20"`
	Firstname string `validate:"required,min=3,max=10"`
	Lastname  string `validate:"required,min=3,max=10"`
	Phone     string `validate:"omitempty"`
}

// RegisterResponse represents the response payload after registering a user.
type RegisterResponse struct {
	User User
}

// LoginRequest represents the request payload for logging in.
type LoginRequest struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// LoginResponse carries the authenticated user and a freshly issued session
// token. The token is only ever present after password verification succeeded.
type LoginResponse struct {
	User  User
	Token string
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID int64
}

// GetUserResponse represents the response payload for user details.
type GetUserResponse struct {
	User User
}

// UpdateProfileRequest represents a partial profile update for the
// authenticated user. Nil fields keep their stored values.
type UpdateProfileRequest struct {
	ID        int64   `validate:"required"`
	Firstname *string `validate:"omitempty,min=3,max=10"`
	Lastname  *string `validate:"omitempty,min=3,max=10"`
	Phone     *string `validate:"omitempty"`
}

// UpdateProfileResponse represents the response payload after a profile update.
type UpdateProfileResponse struct {
	User User
}

// DeleteProfileRequest represents the request payload for deleting the
// authenticated user's account.
type DeleteProfileRequest struct {
	ID int64
}

// DeleteProfileResponse represents the response payload after deleting a user.
type DeleteProfileResponse struct {
	ID int64
}

// ListUsersRequest represents the request payload for listing users.
// It supports pagination and search functionality.
type ListUsersRequest struct {
	Query string
	Page  int64
	Limit int64
}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users      []User
	Pagination *Pagination
}

// Pagination represents pagination information for list responses.
type Pagination struct {
	Total      int64
	Page       int64
	Limit      int64
	TotalPages int64
}

// User represents a user DTO (Data Transfer Object) for API responses.
// It deliberately has no password hash field, so no projection built from it
// can leak the hash.
type User struct {
	ID        int64
	Username  string
	Firstname string
	Lastname  string
	Phone     string
}
