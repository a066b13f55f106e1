package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"rentmob/internal/app/dto"
	CatalogApp "rentmob/internal/app/handlers/catalog"
	"rentmob/internal/app/queries"
)

type CatalogHandler struct {
	Queries      queries.Bus
	SlotInterval time.Duration
}

func (h CatalogHandler) GetCar(c *gin.Context) {
	result, err := queries.Ask[CatalogApp.GetCarQuery, dto.CarDetail](c.Request.Context(), h.Queries, CatalogApp.GetCarQuery{CarID: c.Param("id")})
	if err != nil {
		writeRentalError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CatalogHandler) ListCars(c *gin.Context) {
	result, err := queries.Ask[CatalogApp.ListCarsQuery, []dto.CarDetail](c.Request.Context(), h.Queries, CatalogApp.ListCarsQuery{CityID: c.Query("kota_id")})
	if err != nil {
		writeRentalError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CatalogHandler) ListCities(c *gin.Context) {
	result, err := queries.Ask[CatalogApp.ListCitiesQuery, []dto.CityView](c.Request.Context(), h.Queries, CatalogApp.ListCitiesQuery{})
	if err != nil {
		writeRentalError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CatalogHandler) ListDeliveryMethods(c *gin.Context) {
	result, err := queries.Ask[CatalogApp.ListDeliveryMethodsQuery, []dto.DeliveryMethodView](c.Request.Context(), h.Queries, CatalogApp.ListDeliveryMethodsQuery{})
	if err != nil {
		writeRentalError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CatalogHandler) ListRentalOptions(c *gin.Context) {
	result, err := queries.Ask[CatalogApp.ListRentalOptionsQuery, []dto.RentalOptionView](c.Request.Context(), h.Queries, CatalogApp.ListRentalOptionsQuery{})
	if err != nil {
		writeRentalError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Slots lists the selectable pickup times for ?tanggal=YYYY-MM-DD.
func (h CatalogHandler) Slots(c *gin.Context) {
	raw := c.Query("tanggal")
	date, err := time.Parse(wireDateLayout, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tanggal"})
		return
	}
	result, err := queries.Ask[CatalogApp.PickupSlotsQuery, []dto.TimeSlotView](c.Request.Context(), h.Queries, CatalogApp.PickupSlotsQuery{
		Date:     date,
		Interval: h.SlotInterval,
	})
	if err != nil {
		writeRentalError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
