package user

import "context"

// Usecase defines the interface for user business logic operations.
type Usecase interface {
	Register(ctx context.Context, in RegisterRequest) (*RegisterResponse, error)
	Login(ctx context.Context, in LoginRequest) (*LoginResponse, error)
	GetUser(ctx context.Context, in GetUserRequest) (*GetUserResponse, error)
	UpdateProfile(ctx context.Context, in UpdateProfileRequest) (*UpdateProfileResponse, error)
	DeleteProfile(ctx context.Context, in DeleteProfileRequest) (*DeleteProfileResponse, error)
	ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error)
}
