package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Rohit1034/HrudaySparshi/services"

	"github.com/gin-gonic/gin"
)

type ProductController struct {
	productService ProductServiceAPI
}

func NewProductController(productService ProductServiceAPI) *ProductController {
	return &ProductController{productService: productService}
}

// ListProducts returns the catalog, optionally filtered by ?category=.
func (pc *ProductController) ListProducts(c *gin.Context) {
	products, err := pc.productService.ListProducts(c.Request.Context(), c.Query("category"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (pc *ProductController) GetProduct(c *gin.Context) {
	product, err := pc.productService.GetProduct(c.Request.Context(), c.Param("productId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields", "details": err.Error()})
		return
	}

	product, err := pc.productService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (pc *ProductController) UpdateProduct(c *gin.Context) {
	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := pc.productService.UpdateProduct(c.Request.Context(), c.Param("productId"), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (pc *ProductController) DeleteProduct(c *gin.Context) {
	if err := pc.productService.DeleteProduct(c.Request.Context(), c.Param("productId")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

type presignRequest struct {
	ContentType string `json:"content_type" binding:"required"`
	Expires     int64  `json:"expires"`
}

// PresignImageUpload returns a presigned S3 PUT URL for a product image.
func (pc *ProductController) PresignImageUpload(c *gin.Context) {
	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Fall back to query parameters.
		req.ContentType = c.DefaultQuery("content_type", "")
		req.Expires, _ = strconv.ParseInt(c.DefaultQuery("expires", "0"), 10, 64)
		if req.ContentType == "" {
			badRequest(c, err)
			return
		}
	}

	upload, err := pc.productService.PresignImageUpload(c.Request.Context(), req.ContentType, time.Duration(req.Expires)*time.Second)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, upload)
}
