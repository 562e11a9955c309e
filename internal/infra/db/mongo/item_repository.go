package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainrental "rentable/internal/domain/rental"
	"rentable/internal/domain/shared/money"
)

type ItemRepository struct {
	col *mongo.Collection
}

func NewItemRepository(db *mongo.Database) *ItemRepository {
	return &ItemRepository{col: db.Collection("agg_item")}
}

func (r *ItemRepository) ByID(ctx context.Context, id domainrental.ItemID) (*domainrental.Item, error) {
	var doc itemDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainrental.ErrItemNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ItemRepository) Save(ctx context.Context, item *domainrental.Item) error {
	doc := newItemDocument(item)
	filter := bson.M{"_id": doc.ID, "version": item.Version}
	doc.Version = item.Version + 1
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
	item.Version = doc.Version
	return nil
}

type itemDocument struct {
	ID                    string             `bson:"_id"`
	OwnerID               string             `bson:"owner_id"`
	Name                  string             `bson:"name"`
	Cadence               string             `bson:"cadence"`
	PreReservationDeposit money.Money        `bson:"pre_reservation_deposit"`
	DeclaredAvailability  []intervalDocument `bson:"declared_availability,omitempty"`
	BlockedRanges         []intervalDocument `bson:"blocked_ranges,omitempty"`
	ConfirmedBookings     []intervalDocument `bson:"confirmed_bookings,omitempty"`
	CreatedAt             int64              `bson:"created_at"`
	UpdatedAt             int64              `bson:"updated_at"`
	Version               int64              `bson:"version"`
}

func newItemDocument(item *domainrental.Item) itemDocument {
	return itemDocument{
		ID:                    string(item.ID),
		OwnerID:               item.OwnerID,
		Name:                  item.Name,
		Cadence:               string(item.Cadence),
		PreReservationDeposit: item.PreReservationDeposit,
		DeclaredAvailability:  newIntervalDocuments(item.DeclaredAvailability),
		BlockedRanges:         newIntervalDocuments(item.BlockedRanges),
		ConfirmedBookings:     newIntervalDocuments(item.ConfirmedBookings),
		CreatedAt:             item.CreatedAt.UnixMilli(),
		UpdatedAt:             item.UpdatedAt.UnixMilli(),
		Version:               item.Version,
	}
}

func (d itemDocument) toAggregate() *domainrental.Item {
	return &domainrental.Item{
		ID:                    domainrental.ItemID(d.ID),
		OwnerID:               d.OwnerID,
		Name:                  d.Name,
		Cadence:               domainrental.Cadence(d.Cadence),
		PreReservationDeposit: d.PreReservationDeposit,
		DeclaredAvailability:  toIntervals(d.DeclaredAvailability),
		BlockedRanges:         toIntervals(d.BlockedRanges),
		ConfirmedBookings:     toIntervals(d.ConfirmedBookings),
		CreatedAt:             timestampToTime(d.CreatedAt),
		UpdatedAt:             timestampToTime(d.UpdatedAt),
		Version:               d.Version,
	}
}
