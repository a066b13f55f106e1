package ginserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rentmob/internal/app/commands"
	"rentmob/internal/app/dto"
	CheckoutApp "rentmob/internal/app/handlers/checkout"
	"rentmob/internal/app/middleware"
	"rentmob/internal/app/queries"
	"rentmob/internal/domain/catalog"
	"rentmob/internal/domain/payment"
	domainrental "rentmob/internal/domain/rental"
)

const wireDateLayout = "2006-01-02"

type RentalHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Observer *CheckoutApp.RedirectObserver
}

type checkStockRequest struct {
	CarID     string `json:"mobil_id"`
	StartDate string `json:"tanggal_mulai"`
	EndDate   string `json:"tanggal_selesai"`
}

func (h RentalHandler) CheckStock(c *gin.Context) {
	var req checkStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, end, err := parseWireDates(req.StartDate, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := queries.Ask[CheckoutApp.CheckStockQuery, dto.StockCheckResult](c.Request.Context(), h.Queries, CheckoutApp.CheckStockQuery{
		CarID:     req.CarID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		writeRentalError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetToken runs the full submission: validation, stock check, gateway
// session, rental persisted as AWAITING_PAYMENT. The route name is the
// legacy contract; clients treat the answer as "the token".
func (h RentalHandler) GetToken(c *gin.Context) {
	cmd, err := bindSubmitCommand(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := commands.Dispatch[CheckoutApp.SubmitRentalCommand, *CheckoutApp.SubmitRentalResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeRentalError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TokenResult{
		Status:      "success",
		RedirectURL: result.PaymentURL,
		OrderID:     result.OrderID,
	})
}

func (h RentalHandler) CheckRental(c *gin.Context) {
	orderID := c.Param("orderId")
	result, err := queries.Ask[CheckoutApp.CheckRentalQuery, dto.RentalCheckResult](c.Request.Context(), h.Queries, CheckoutApp.CheckRentalQuery{OrderID: orderID})
	if err != nil {
		writeRentalError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type storeRentalRequest struct {
	OrderID string `json:"order_id"`
	dto.RentalPayload
}

// Store settles a paid order. Legacy clients call it after a success
// redirect; the payload doubles as the snapshot used to rebuild a rental
// the token step failed to persist.
func (h RentalHandler) Store(c *gin.Context) {
	var req storeRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	snapshot, err := snapshotFromPayload(c, req.RentalPayload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := commands.Dispatch[CheckoutApp.ConfirmPaymentCommand, *CheckoutApp.ConfirmPaymentResult](c.Request.Context(), h.Commands, CheckoutApp.ConfirmPaymentCommand{
		OrderID:  req.OrderID,
		Snapshot: snapshot,
	})
	if err != nil {
		writeRentalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.StoreResult{
		Status: true,
		Data:   dto.RentalRecord{BookingCode: result.BookingCode},
	})
}

type paymentRedirectRequest struct {
	OrderID string `json:"order_id"`
	URL     string `json:"url"`
	dto.RentalPayload
}

// PaymentRedirect feeds one observed navigation URL to the redirect
// observer. Indeterminate URLs return 202 so the client keeps watching.
func (h RentalHandler) PaymentRedirect(c *gin.Context) {
	var req paymentRedirectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var snapshot *CheckoutApp.RentalSnapshot
	if req.CarID != "" {
		var err error
		snapshot, err = snapshotFromPayload(c, req.RentalPayload)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	outcome, err := h.Observer.Observe(c.Request.Context(), CheckoutApp.RedirectEvent{
		OrderID:  req.OrderID,
		URL:      req.URL,
		Snapshot: snapshot,
	})
	if err != nil {
		writeRentalError(c, err)
		return
	}
	status := http.StatusOK
	if outcome == payment.OutcomeIndeterminate {
		status = http.StatusAccepted
	}
	c.JSON(status, gin.H{"outcome": outcome.String()})
}

func bindSubmitCommand(c *gin.Context) (CheckoutApp.SubmitRentalCommand, error) {
	var zero CheckoutApp.SubmitRentalCommand
	var req dto.RentalPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		return zero, err
	}
	customerID := customerIDFrom(c)
	if customerID == "" {
		return zero, errors.New("missing customer id")
	}
	start, end, err := parseWireDates(req.StartDate, req.EndDate)
	if err != nil {
		return zero, err
	}
	cmd := CheckoutApp.SubmitRentalCommand{
		CommandID:       uuid.NewString(),
		CustomerID:      customerID,
		CarID:           req.CarID,
		CityID:          req.CityID,
		StartDate:       start,
		EndDate:         end,
		DeliveryID:      req.DeliveryID,
		RentalOptionID:  req.RentalOption,
		DeliveryAddress: req.DeliveryAddress,
	}
	if req.StartTime != "" {
		clock, err := parseWireClock(req.StartTime)
		if err != nil {
			return zero, err
		}
		cmd.StartTime = clock
	}
	return cmd, nil
}

func snapshotFromPayload(c *gin.Context, req dto.RentalPayload) (*CheckoutApp.RentalSnapshot, error) {
	start, end, err := parseWireDates(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	snap := &CheckoutApp.RentalSnapshot{
		CustomerID:      customerIDFrom(c),
		CarID:           req.CarID,
		CityID:          req.CityID,
		StartDate:       start,
		EndDate:         end,
		DeliveryID:      req.DeliveryID,
		RentalOptionID:  req.RentalOption,
		DeliveryAddress: req.DeliveryAddress,
		TotalCost:       req.TotalCost,
	}
	if req.StartTime != "" {
		clock, err := parseWireClock(req.StartTime)
		if err != nil {
			return nil, err
		}
		snap.StartTime = clock
	}
	return snap, nil
}

// customerIDFrom reads the customer identity the mobile clients send.
// There is no session layer; the gateway in front of this service owns
// authentication.
func customerIDFrom(c *gin.Context) string {
	if id := c.GetHeader("X-Customer-ID"); id != "" {
		return id
	}
	return c.Query("user_id")
}

func parseWireDates(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := time.Parse(wireDateLayout, startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid tanggal_mulai %q", startRaw)
	}
	end := start
	if endRaw != "" {
		end, err = time.Parse(wireDateLayout, endRaw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid tanggal_selesai %q", endRaw)
		}
	}
	return start, end, nil
}

// parseWireClock reads the zero-padded "HH:MM:00" wire form.
func parseWireClock(raw string) (domainrental.Clock, error) {
	var zero domainrental.Clock
	if len(raw) != 8 || raw[2] != ':' || raw[5] != ':' {
		return zero, fmt.Errorf("invalid jam_mulai %q", raw)
	}
	hour, err := strconv.Atoi(raw[:2])
	if err != nil || hour < 0 || hour > 23 {
		return zero, fmt.Errorf("invalid jam_mulai %q", raw)
	}
	minute, err := strconv.Atoi(raw[3:5])
	if err != nil || minute < 0 || minute > 59 {
		return zero, fmt.Errorf("invalid jam_mulai %q", raw)
	}
	return domainrental.Clock{Hour: hour, Minute: minute}, nil
}

func writeRentalError(c *gin.Context, err error) {
	var verr *domainrental.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Error(), "fields": verr.Fields})
	case errors.Is(err, CheckoutApp.ErrCarUnavailable):
		c.JSON(http.StatusConflict, gin.H{"available": false, "message": err.Error()})
	case errors.Is(err, middleware.ErrSubmissionInFlight):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, CheckoutApp.ErrTokenRequest):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, CheckoutApp.ErrReconciliationFailed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domainrental.ErrRentalNotFound),
		errors.Is(err, catalog.ErrCarNotFound),
		errors.Is(err, catalog.ErrDeliveryMethodNotFound),
		errors.Is(err, catalog.ErrRentalOptionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domainrental.ErrInvalidPickupTime):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
