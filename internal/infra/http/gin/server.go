package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"rentmob/internal/infra/config"
	"rentmob/internal/infra/obs"
)

type RentalHTTP interface {
	CheckStock(c *gin.Context)
	GetToken(c *gin.Context)
	CheckRental(c *gin.Context)
	Store(c *gin.Context)
	PaymentRedirect(c *gin.Context)
}

type CatalogHTTP interface {
	GetCar(c *gin.Context)
	ListCars(c *gin.Context)
	ListCities(c *gin.Context)
	ListDeliveryMethods(c *gin.Context)
	ListRentalOptions(c *gin.Context)
	Slots(c *gin.Context)
}

type WishlistHTTP interface {
	Toggle(c *gin.Context)
	List(c *gin.Context)
}

type FleetHTTP interface {
	UploadPhoto(c *gin.Context)
}

type Handlers struct {
	Rental   RentalHTTP
	Catalog  CatalogHTTP
	Wishlist WishlistHTTP
	Fleet    FleetHTTP
}

// NewServer builds the HTTP server. The route shapes are the published
// mobile contract and are kept verbatim, Indonesian names included.
func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Customer-ID"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	if h.Catalog != nil {
		router.GET("/mobil/get", h.Catalog.ListCars)
		router.GET("/mobil/get/:id", h.Catalog.GetCar)
		router.GET("/kota/get", h.Catalog.ListCities)
		router.GET("/delivery/get", h.Catalog.ListDeliveryMethods)
		router.GET("/rental-option/get", h.Catalog.ListRentalOptions)
		router.GET("/penyewaan/slots", h.Catalog.Slots)
	}
	if h.Rental != nil {
		router.POST("/penyewaan/check-stok", h.Rental.CheckStock)
		router.POST("/penyewaan/midtrans/get-token", h.Rental.GetToken)
		router.GET("/penyewaan/check/:orderId", h.Rental.CheckRental)
		router.POST("/penyewaan/store", h.Rental.Store)
		router.POST("/penyewaan/payment-redirect", h.Rental.PaymentRedirect)
	}
	if h.Wishlist != nil {
		router.POST("/wishlist/toggle", h.Wishlist.Toggle)
		router.GET("/wishlist/get", h.Wishlist.List)
	}
	if h.Fleet != nil {
		router.POST("/mobil/photo/:id", h.Fleet.UploadPhoto)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}

var (
	_ RentalHTTP   = RentalHandler{}
	_ CatalogHTTP  = CatalogHandler{}
	_ WishlistHTTP = WishlistHandler{}
	_ FleetHTTP    = FleetHandler{}
)
