package services

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/Rohit1034/HrudaySparshi/common/errors"
	"github.com/Rohit1034/HrudaySparshi/models"
	"github.com/Rohit1034/HrudaySparshi/repository"
)

type UpdateProfileRequest struct {
	FullName    string `json:"fullName" binding:"required"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Address     string `json:"address" binding:"required"`
}

type UserService struct {
	users repository.UserRepository
	now   func() time.Time
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users, now: time.Now}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("User not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch user profile", err)
	}
	return user, nil
}

// UpdateProfile creates or updates the caller's profile. The email always
// comes from the verified token and the role cannot be changed here.
func (s *UserService) UpdateProfile(ctx context.Context, identity models.Identity, req *UpdateProfileRequest) (*models.User, error) {
	if req == nil {
		return nil, apperrors.InvalidArgument("Invalid request body")
	}
	profile := &models.User{
		ID:          identity.UserID,
		FullName:    strings.TrimSpace(req.FullName),
		Email:       identity.Email,
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		Address:     strings.TrimSpace(req.Address),
		UpdatedAt:   s.now().UTC(),
	}
	if profile.FullName == "" || profile.PhoneNumber == "" || profile.Address == "" {
		return nil, apperrors.InvalidArgument("Full name, phone number and address are required")
	}

	if err := s.users.UpsertProfile(ctx, profile); err != nil {
		return nil, apperrors.Internal("Failed to save user profile", err)
	}
	return s.GetProfile(ctx, identity.UserID)
}
