package controllers

import (
	"github.com/Rohit1034/HrudaySparshi/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,orderstatus"`
}

// RegisterValidators adds the custom binding rules used by request bodies.
// It must run before the router serves requests.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("orderstatus", func(fl validator.FieldLevel) bool {
		return models.OrderStatus(fl.Field().String()).Valid()
	})
}
