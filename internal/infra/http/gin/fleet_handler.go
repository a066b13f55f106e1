package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rentmob/internal/app/commands"
	FleetApp "rentmob/internal/app/handlers/fleet"
)

type FleetHandler struct {
	Commands commands.Bus
}

// UploadPhoto accepts a multipart form with a "foto" file and replaces
// the car's listing photo.
func (h FleetHandler) UploadPhoto(c *gin.Context) {
	fileHeader, err := c.FormFile("foto")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing foto file"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	result, err := commands.Dispatch[FleetApp.UploadCarPhotoCommand, *FleetApp.UploadCarPhotoResult](c.Request.Context(), h.Commands, FleetApp.UploadCarPhotoCommand{
		CarID:       c.Param("id"),
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	})
	if err != nil {
		writeRentalError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
