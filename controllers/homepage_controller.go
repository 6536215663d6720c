package controllers

import (
	"net/http"

	"github.com/Rohit1034/HrudaySparshi/models"
	"github.com/Rohit1034/HrudaySparshi/services"

	"github.com/gin-gonic/gin"
)

type HomepageController struct {
	homepageService HomepageServiceAPI
}

func NewHomepageController(homepageService HomepageServiceAPI) *HomepageController {
	return &HomepageController{homepageService: homepageService}
}

func (hc *HomepageController) GetContent(c *gin.Context) {
	content, err := hc.homepageService.GetContent(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, content)
}

func (hc *HomepageController) UpdateContent(c *gin.Context) {
	var req services.UpdateHomepageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	content, err := hc.homepageService.UpdateContent(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, struct {
		Message string `json:"message"`
		*models.HomepageContent
	}{"Homepage content updated successfully", content})
}
