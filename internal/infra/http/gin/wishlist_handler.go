package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rentmob/internal/app/commands"
	"rentmob/internal/app/dto"
	WishlistApp "rentmob/internal/app/handlers/wishlist"
	"rentmob/internal/app/queries"
)

type WishlistHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type toggleWishlistRequest struct {
	CarID string `json:"mobil_id"`
}

func (h WishlistHandler) Toggle(c *gin.Context) {
	customerID := customerIDFrom(c)
	if customerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing customer id"})
		return
	}
	var req toggleWishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := commands.Dispatch[WishlistApp.ToggleCommand, *WishlistApp.ToggleResult](c.Request.Context(), h.Commands, WishlistApp.ToggleCommand{
		CustomerID: customerID,
		CarID:      req.CarID,
	})
	if err != nil {
		writeRentalError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h WishlistHandler) List(c *gin.Context) {
	customerID := customerIDFrom(c)
	if customerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing customer id"})
		return
	}
	result, err := queries.Ask[WishlistApp.ListQuery, []dto.CarDetail](c.Request.Context(), h.Queries, WishlistApp.ListQuery{CustomerID: customerID})
	if err != nil {
		writeRentalError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
