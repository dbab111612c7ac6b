package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/interiora/interiorabackend/models"
	"github.com/interiora/interiorabackend/utils"
)

// POST /products/:id/images
//
// Uploads one to four product images to the configured storage backend and merges
// their public URLs into the product's image_urls array. The merge is the
// same read-modify-write as the other array patches.
func UploadProductImages(products *models.BaseModel, v *utils.FileValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := c.Param("id")

		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		files := form.File["images"]
		if len(files) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "at least one image is required"})
			return
		}

		product, err := products.FindByID(ctx, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching products"})
			return
		}
		if product == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "products not found"})
			return
		}

		uploader, err := utils.NewUploader(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage backend unavailable"})
			return
		}

		urls, err := utils.UploadProductImages(ctx, uploader, v, id, files)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		merged := utils.MergeURLArrays(stringSlice(product, "image_urls"), nil, urls)

		res, err := products.UpdateByID(ctx, id, bson.M{"image_urls": merged})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating products"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "products not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"message":    "Images uploaded successfully",
			"image_urls": merged,
		})
	}
}
