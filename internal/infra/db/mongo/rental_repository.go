package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainrental "rentable/internal/domain/rental"
	"rentable/internal/domain/shared/interval"
	"rentable/internal/domain/shared/money"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type RentalRepository struct {
	col *mongo.Collection
}

func NewRentalRepository(db *mongo.Database) *RentalRepository {
	return &RentalRepository{col: db.Collection("agg_rental")}
}

func (r *RentalRepository) ByID(ctx context.Context, id domainrental.RentalID) (*domainrental.Rental, error) {
	var doc rentalDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainrental.ErrRentalNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *RentalRepository) PendingByItemAndRenter(ctx context.Context, itemID domainrental.ItemID, renterID string) (*domainrental.Rental, error) {
	filter := bson.M{
		"item_id":   string(itemID),
		"renter_id": renterID,
		"status":    string(domainrental.StatusPendingApproval),
	}
	var doc rentalDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainrental.ErrRentalNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *RentalRepository) ListByItem(ctx context.Context, itemID domainrental.ItemID) ([]*domainrental.Rental, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"item_id": string(itemID)}, opts)
	if err != nil {
		return nil, err
	}
	return decodeRentals(ctx, cursor)
}

func (r *RentalRepository) ListApprovedStartingBy(ctx context.Context, now time.Time) ([]*domainrental.Rental, error) {
	filter := bson.M{
		"status":       string(domainrental.StatusApproved),
		"window.start": bson.M{"$lte": now.UTC().UnixMilli()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "window.start", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return decodeRentals(ctx, cursor)
}

func (r *RentalRepository) Save(ctx context.Context, rec *domainrental.Rental) error {
	doc := newRentalDocument(rec)
	filter := bson.M{"_id": doc.ID, "version": rec.Version}
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

func (r *RentalRepository) Delete(ctx context.Context, id domainrental.RentalID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	return err
}

func decodeRentals(ctx context.Context, cursor *mongo.Cursor) ([]*domainrental.Rental, error) {
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
	ID              string           `bson:"_id"`
	ItemID          string           `bson:"item_id"`
	RenterID        string           `bson:"renter_id"`
	OwnerID         string           `bson:"owner_id"`
	Window          intervalDocument `bson:"window"`
	Status          string           `bson:"status"`
	Deposit         money.Money      `bson:"deposit"`
	PlatformFee     money.Money      `bson:"platform_fee"`
	RejectionReason string           `bson:"rejection_reason,omitempty"`
	ExpiresAt       int64            `bson:"expires_at,omitempty"`
	CreatedAt       int64            `bson:"created_at"`
	UpdatedAt       int64            `bson:"updated_at"`
	Version         int64            `bson:"version"`
}

func newRentalDocument(r *domainrental.Rental) rentalDocument {
	doc := rentalDocument{
		ID:              string(r.ID),
		ItemID:          string(r.ItemID),
		RenterID:        r.RenterID,
		OwnerID:         r.OwnerID,
		Window:          intervalDocument{Start: r.Window.Start.UnixMilli(), End: r.Window.End.UnixMilli()},
		Status:          string(r.Status),
		Deposit:         r.Deposit,
		PlatformFee:     r.PlatformFee,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt.UnixMilli(),
		UpdatedAt:       r.UpdatedAt.UnixMilli(),
		Version:         r.Version,
	}
	if !r.ExpiresAt.IsZero() {
		doc.ExpiresAt = r.ExpiresAt.UnixMilli()
	}
	return doc
}

func (d rentalDocument) toAggregate() *domainrental.Rental {
	agg := &domainrental.Rental{
		ID:              domainrental.RentalID(d.ID),
		ItemID:          domainrental.ItemID(d.ItemID),
		RenterID:        d.RenterID,
		OwnerID:         d.OwnerID,
		Window:          d.Window.toInterval(),
		Status:          domainrental.Status(d.Status),
		Deposit:         d.Deposit,
		PlatformFee:     d.PlatformFee,
		RejectionReason: d.RejectionReason,
		CreatedAt:       timestampToTime(d.CreatedAt),
		UpdatedAt:       timestampToTime(d.UpdatedAt),
		Version:         d.Version,
	}
	if d.ExpiresAt != 0 {
		agg.ExpiresAt = timestampToTime(d.ExpiresAt)
	}
	return agg
}

type intervalDocument struct {
	Start int64 `bson:"start"`
	End   int64 `bson:"end"`
}

func (d intervalDocument) toInterval() interval.Interval {
	return interval.Interval{Start: timestampToTime(d.Start), End: timestampToTime(d.End)}
}

func newIntervalDocuments(src []interval.Interval) []intervalDocument {
	if len(src) == 0 {
		return nil
	}
	out := make([]intervalDocument, len(src))
	for i, iv := range src {
		out[i] = intervalDocument{Start: iv.Start.UnixMilli(), End: iv.End.UnixMilli()}
	}
	return out
}

func toIntervals(src []intervalDocument) []interval.Interval {
	if len(src) == 0 {
		return nil
	}
	out := make([]interval.Interval, len(src))
	for i, d := range src {
		out[i] = d.toInterval()
	}
	return out
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
