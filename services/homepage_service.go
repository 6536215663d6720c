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

type UpdateHomepageRequest struct {
	BusinessName   string `json:"businessName"`
	Tagline        string `json:"tagline"`
	HeroTitle      string `json:"heroTitle"`
	HeroSubtitle   string `json:"heroSubtitle"`
	AboutText      string `json:"aboutText"`
	ContactEmail   string `json:"contactEmail" binding:"omitempty,email"`
	ContactPhone   string `json:"contactPhone"`
	ContactAddress string `json:"contactAddress"`
}

type HomepageService struct {
	repo         repository.HomepageRepository
	businessName string
	now          func() time.Time
}

func NewHomepageService(repo repository.HomepageRepository, businessName string) *HomepageService {
	return &HomepageService{repo: repo, businessName: businessName, now: time.Now}
}

// GetContent returns the saved homepage or the defaults when nothing has
// been saved yet.
func (s *HomepageService) GetContent(ctx context.Context) (*models.HomepageContent, error) {
	content, err := s.repo.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		defaults := models.DefaultHomepageContent(s.businessName)
		return &defaults, nil
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch homepage content", err)
	}
	return content, nil
}

// UpdateContent saves every field. Blank display text falls back to the
// defaults; blank contact details are stored empty.
func (s *HomepageService) UpdateContent(ctx context.Context, req *UpdateHomepageRequest) (*models.HomepageContent, error) {
	if req == nil {
		return nil, apperrors.InvalidArgument("Invalid request body")
	}
	defaults := models.DefaultHomepageContent(s.businessName)

	content := &models.HomepageContent{
		BusinessName:   orDefault(req.BusinessName, defaults.BusinessName),
		Tagline:        orDefault(req.Tagline, defaults.Tagline),
		HeroTitle:      orDefault(req.HeroTitle, defaults.HeroTitle),
		HeroSubtitle:   orDefault(req.HeroSubtitle, defaults.HeroSubtitle),
		AboutText:      req.AboutText,
		ContactEmail:   strings.TrimSpace(req.ContactEmail),
		ContactPhone:   strings.TrimSpace(req.ContactPhone),
		ContactAddress: strings.TrimSpace(req.ContactAddress),
		UpdatedAt:      s.now().UTC(),
	}
	if err := s.repo.Save(ctx, content); err != nil {
		return nil, apperrors.Internal("Failed to update homepage content", err)
	}
	return content, nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
