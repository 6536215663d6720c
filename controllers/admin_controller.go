package controllers

import (
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/Rohit1034/HrudaySparshi/common/errors"
	"github.com/Rohit1034/HrudaySparshi/models"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	orderService  OrderServiceAPI
	notifications NotificationLogReader
}

func NewAdminController(orderService OrderServiceAPI, notifications NotificationLogReader) *AdminController {
	return &AdminController{orderService: orderService, notifications: notifications}
}

func (ac *AdminController) DashboardStats(c *gin.Context) {
	stats, err := ac.orderService.DashboardStats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListNotifications returns the notification log, newest first.
func (ac *AdminController) ListNotifications(c *gin.Context) {
	page, pageSize := parsePaginationParams(c)
	filter := models.NotificationFilter{
		OrderID:  strings.TrimSpace(c.Query("orderId")),
		Type:     strings.ToLower(strings.TrimSpace(c.Query("type"))),
		Status:   strings.ToLower(strings.TrimSpace(c.Query("status"))),
		Channel:  strings.ToLower(strings.TrimSpace(c.Query("channel"))),
		Page:     page,
		PageSize: pageSize,
	}

	logs, total, err := ac.notifications.GetLogs(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(apperrors.Internal("Failed to fetch notifications", err))
		return
	}

	totalPages := (total + int64(pageSize) - 1) / int64(pageSize)
	c.JSON(http.StatusOK, gin.H{
		"notifications": logs,
		"meta": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages,
			"has_more":    int64(page) < totalPages,
		},
	})
}

// maxPage bounds the page so the store offset cannot overflow.
const maxPage = 10000

func parsePaginationParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if err != nil || pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
