package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	apperrors "github.com/Rohit1034/HrudaySparshi/common/errors"
	"github.com/Rohit1034/HrudaySparshi/common/logger"
	"github.com/Rohit1034/HrudaySparshi/models"
	aws_pkg "github.com/Rohit1034/HrudaySparshi/pkg/aws"
	"github.com/Rohit1034/HrudaySparshi/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultPresignExpiry = 15 * time.Minute
	MaxPresignExpiry     = time.Hour
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// AllowedImageTypes lists the content types accepted for product images.
func AllowedImageTypes() []string {
	types := make([]string, 0, len(allowedImageTypes))
	for t := range allowedImageTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

type CreateProductRequest struct {
	Name         string   `json:"name" binding:"required"`
	Category     string   `json:"category" binding:"required"`
	Price        *float64 `json:"price" binding:"required"`
	Description  string   `json:"description"`
	Image        string   `json:"image"`
	Availability *bool    `json:"availability"`
}

type UpdateProductRequest struct {
	Name         *string  `json:"name"`
	Category     *string  `json:"category"`
	Price        *float64 `json:"price"`
	Description  *string  `json:"description"`
	Image        *string  `json:"image"`
	Availability *bool    `json:"availability"`
}

type PresignedUpload struct {
	UploadURL string            `json:"upload_url"`
	Method    string            `json:"method"`
	Key       string            `json:"key"`
	PublicURL string            `json:"public_url"`
	Headers   map[string]string `json:"headers,omitempty"`
	ExpiresIn int64             `json:"expires_in"`
}

// ImagePresigner issues upload URLs for product images.
type ImagePresigner interface {
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, map[string]string, error)
	Bucket() string
}

type ProductService struct {
	repo    repository.ProductRepository
	cache   *ProductCache
	images  ImagePresigner
	metrics *aws_pkg.MetricsClient
	logger  *zap.Logger
	now     func() time.Time
}

// NewProductService wires the catalog. cache and images may be nil.
func NewProductService(repo repository.ProductRepository, cache *ProductCache, images ImagePresigner, metrics *aws_pkg.MetricsClient, log *zap.Logger) *ProductService {
	return &ProductService{
		repo:    repo,
		cache:   cache,
		images:  images,
		metrics: metrics,
		logger:  log,
		now:     time.Now,
	}
}

func (s *ProductService) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	category = strings.TrimSpace(category)
	version := s.cache.Version(ctx)
	if products, ok := s.cache.GetProductList(ctx, version, category); ok {
		return products, nil
	}

	products, err := s.repo.List(ctx, category)
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch products", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	s.cache.SetProductList(version, category, products)
	return products, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	version := s.cache.Version(ctx)
	if product, ok := s.cache.GetProduct(ctx, version, id); ok {
		return product, nil
	}

	product, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Product not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch product", err)
	}
	s.cache.SetProduct(version, product)
	return product, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	if req == nil || strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Category) == "" || req.Price == nil {
		return nil, apperrors.InvalidArgument("Missing required fields")
	}
	if *req.Price < 0 {
		return nil, apperrors.InvalidArgument("Price must not be negative")
	}

	now := s.now().UTC()
	product := &models.Product{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Category:     strings.TrimSpace(req.Category),
		Price:        *req.Price,
		Description:  req.Description,
		Image:        req.Image,
		Availability: req.Availability == nil || *req.Availability,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, apperrors.Internal("Failed to create product", err)
	}

	s.cache.InvalidateProduct(ctx, "")
	logger.FromContext(ctx, s.logger).Info("product created", zap.String("product_id", product.ID))
	if s.metrics.IsEnabled() {
		go func() {
			bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.metrics.RecordCount(bgCtx, aws_pkg.MetricProductsCreated, map[string]string{"Category": product.Category})
		}()
	}
	return product, nil
}

// UpdateProduct applies the non-nil fields of req and returns the merged
// product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, req *UpdateProductRequest) (*models.Product, error) {
	if req == nil {
		return nil, apperrors.InvalidArgument("Invalid request body")
	}
	if req.Price != nil && *req.Price < 0 {
		return nil, apperrors.InvalidArgument("Price must not be negative")
	}

	update := models.ProductUpdate{
		Name:         nonEmpty(req.Name),
		Category:     nonEmpty(req.Category),
		Price:        req.Price,
		Description:  req.Description,
		Image:        req.Image,
		Availability: req.Availability,
	}

	existing, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Product not found")
	}
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch product", err)
	}

	now := s.now().UTC()
	if err := s.repo.Update(ctx, id, update, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Product not found")
		}
		return nil, apperrors.Internal("Failed to update product", err)
	}

	s.cache.InvalidateProduct(ctx, id)
	update.Apply(existing)
	existing.UpdatedAt = now
	return existing, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("Product not found")
	}
	if err != nil {
		return apperrors.Internal("Failed to delete product", err)
	}
	s.cache.InvalidateProduct(ctx, id)
	logger.FromContext(ctx, s.logger).Info("product deleted", zap.String("product_id", id))
	return nil
}

// PresignImageUpload returns a URL the admin UI can PUT an image to. The
// object key is random with an extension taken from the content type.
func (s *ProductService) PresignImageUpload(ctx context.Context, contentType string, expiry time.Duration) (*PresignedUpload, error) {
	if s.images == nil || s.images.Bucket() == "" {
		return nil, apperrors.Unavailable("Image uploads are not configured", nil)
	}
	ext, ok := allowedImageTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return nil, apperrors.InvalidArgument(fmt.Sprintf("Invalid content type. Allowed: %v", AllowedImageTypes()))
	}
	if expiry <= 0 {
		expiry = DefaultPresignExpiry
	}
	if expiry > MaxPresignExpiry {
		expiry = MaxPresignExpiry
	}

	key := fmt.Sprintf("products/%s%s", uuid.NewString(), ext)
	url, headers, err := s.images.PresignPut(ctx, key, contentType, expiry)
	if err != nil {
		return nil, apperrors.Internal("Failed to generate presigned upload", err)
	}

	return &PresignedUpload{
		UploadURL: url,
		Method:    "PUT",
		Key:       key,
		PublicURL: fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.images.Bucket(), key),
		Headers:   headers,
		ExpiresIn: int64(expiry.Seconds()),
	}, nil
}

// nonEmpty drops blank strings so an empty name or category never
// overwrites a stored one.
func nonEmpty(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	s := strings.TrimSpace(*v)
	return &s
}
