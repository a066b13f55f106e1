package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rentmob/internal/domain/catalog"
	domainrental "rentmob/internal/domain/rental"
	"rentmob/internal/domain/shared/daterange"
	"rentmob/internal/domain/shared/money"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type RentalRepository struct {
	col *mongo.Collection
}

func NewRentalRepository(db *mongo.Database) *RentalRepository {
	return &RentalRepository{col: db.Collection("agg_rental")}
}

func (r *RentalRepository) ByOrderID(ctx context.Context, id domainrental.OrderID) (*domainrental.Rental, error) {
	var doc rentalDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainrental.ErrRentalNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save upserts the rental guarded by the version the caller loaded, so a
// concurrent confirmation loses cleanly instead of overwriting.
func (r *RentalRepository) Save(ctx context.Context, rec *domainrental.Rental) error {
	doc := newRentalDocument(rec)
	filter := bson.M{"_id": doc.OrderID, "version": rec.Version}
	doc.Version = rec.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	rec.Version = doc.Version
	return nil
}

func (r *RentalRepository) ListByCar(ctx context.Context, carID catalog.CarID) ([]*domainrental.Rental, error) {
	return r.list(ctx, bson.M{"car_id": string(carID)})
}

func (r *RentalRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domainrental.Rental, error) {
	return r.list(ctx, bson.M{"customer_id": customerID})
}

func (r *RentalRepository) list(ctx context.Context, filter bson.M) ([]*domainrental.Rental, error) {
	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.M{"created_at": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domainrental.Rental
	for cursor.Next(ctx) {
		var doc rentalDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type rentalDocument struct {
	OrderID         string `bson:"_id"`
	RentalID        string `bson:"rental_id"`
	CustomerID      string `bson:"customer_id"`
	CarID           string `bson:"car_id"`
	CityID          string `bson:"city_id"`
	PeriodStart     int64  `bson:"period_start"`
	PeriodEnd       int64  `bson:"period_end"`
	StartHour       int    `bson:"start_hour"`
	StartMinute     int    `bson:"start_minute"`
	DeliveryID      string `bson:"delivery_id"`
	OptionID        string `bson:"option_id"`
	DeliveryAddress string `bson:"delivery_address"`
	TotalAmount     int64  `bson:"total_amount"`
	TotalCurrency   string `bson:"total_currency"`
	PaymentURL      string `bson:"payment_url"`
	BookingCode     string `bson:"booking_code"`
	State           string `bson:"state"`
	CreatedAt       int64  `bson:"created_at"`
	UpdatedAt       int64  `bson:"updated_at"`
	Version         int64  `bson:"version"`
}

func newRentalDocument(rec *domainrental.Rental) rentalDocument {
	return rentalDocument{
		OrderID:         string(rec.OrderID),
		RentalID:        string(rec.ID),
		CustomerID:      rec.CustomerID,
		CarID:           string(rec.CarID),
		CityID:          string(rec.CityID),
		PeriodStart:     rec.Period.Start.UnixMilli(),
		PeriodEnd:       rec.Period.End.UnixMilli(),
		StartHour:       rec.StartTime.Hour,
		StartMinute:     rec.StartTime.Minute,
		DeliveryID:      string(rec.DeliveryID),
		OptionID:        string(rec.OptionID),
		DeliveryAddress: rec.DeliveryAddress,
		TotalAmount:     rec.TotalCost.Amount,
		TotalCurrency:   rec.TotalCost.Currency,
		PaymentURL:      rec.PaymentURL,
		BookingCode:     rec.BookingCode,
		State:           string(rec.State),
		CreatedAt:       rec.CreatedAt.UnixMilli(),
		UpdatedAt:       rec.UpdatedAt.UnixMilli(),
		Version:         rec.Version,
	}
}

func (d rentalDocument) toAggregate() *domainrental.Rental {
	return &domainrental.Rental{
		ID:              domainrental.RentalID(d.RentalID),
		OrderID:         domainrental.OrderID(d.OrderID),
		CustomerID:      d.CustomerID,
		CarID:           catalog.CarID(d.CarID),
		CityID:          catalog.CityID(d.CityID),
		Period:          daterange.Period{Start: timestampToTime(d.PeriodStart), End: timestampToTime(d.PeriodEnd)},
		StartTime:       domainrental.Clock{Hour: d.StartHour, Minute: d.StartMinute},
		DeliveryID:      catalog.DeliveryMethodID(d.DeliveryID),
		OptionID:        catalog.RentalOptionID(d.OptionID),
		DeliveryAddress: d.DeliveryAddress,
		TotalCost:       money.Money{Amount: d.TotalAmount, Currency: d.TotalCurrency},
		PaymentURL:      d.PaymentURL,
		BookingCode:     d.BookingCode,
		State:           domainrental.State(d.State),
		CreatedAt:       timestampToTime(d.CreatedAt),
		UpdatedAt:       timestampToTime(d.UpdatedAt),
		Version:         d.Version,
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ domainrental.Repository = (*RentalRepository)(nil)
