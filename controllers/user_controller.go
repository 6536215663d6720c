package controllers

import (
	"net/http"

	"github.com/Rohit1034/HrudaySparshi/middleware"
	"github.com/Rohit1034/HrudaySparshi/services"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	userService UserServiceAPI
}

func NewUserController(userService UserServiceAPI) *UserController {
	return &UserController{userService: userService}
}

func (uc *UserController) GetMe(c *gin.Context) {
	identity, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	user, err := uc.userService.GetProfile(c.Request.Context(), identity.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (uc *UserController) UpdateMe(c *gin.Context) {
	identity, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := uc.userService.UpdateProfile(c.Request.Context(), identity, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}
