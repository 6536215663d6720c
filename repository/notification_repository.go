package repository

import (
	"context"
	"fmt"

	"github.com/Rohit1034/HrudaySparshi/models"

	"gorm.io/gorm"
)

const (
	defaultLogPageSize = 20
	maxLogPageSize     = 100
	// maxLogPage keeps (page-1)*pageSize far from int overflow.
	maxLogPage = 10000
)

// NotificationRepository stores one row per delivery outcome.
type NotificationRepository interface {
	SaveLog(ctx context.Context, log *models.NotificationLog) error
	GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, error)
}

type GormNotificationRepository struct {
	db *gorm.DB
}

func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) SaveLog(ctx context.Context, log *models.NotificationLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("save notification log for order %s: %w", log.OrderID, err)
	}
	return nil
}

// GetLogs returns one page of matching entries, newest first, and the total
// number of matches.
func (r *GormNotificationRepository) GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, error) {
	filter = normalizeLogPage(filter)
	query := r.db.WithContext(ctx).Model(&models.NotificationLog{}).Scopes(logFilter(filter))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count notification logs: %w", err)
	}

	logs := []models.NotificationLog{}
	if total == 0 {
		return logs, 0, nil
	}
	if err := query.Scopes(paginate(filter.Page, filter.PageSize)).
		Order("created_at DESC").
		Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("list notification logs: %w", err)
	}
	return logs, total, nil
}

func normalizeLogPage(f models.NotificationFilter) models.NotificationFilter {
	if f.PageSize < 1 {
		f.PageSize = defaultLogPageSize
	}
	if f.PageSize > maxLogPageSize {
		f.PageSize = maxLogPageSize
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > maxLogPage {
		f.Page = maxLogPage
	}
	return f
}

func logFilter(f models.NotificationFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.OrderID != "" {
			db = db.Where("order_id = ?", f.OrderID)
		}
		if f.Type != "" {
			db = db.Where("type = ?", f.Type)
		}
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.Channel != "" {
			db = db.Where("channel = ?", f.Channel)
		}
		return db
	}
}

func paginate(page, pageSize int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}
