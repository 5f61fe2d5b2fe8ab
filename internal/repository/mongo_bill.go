package repository

import (
	"context"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gulmohar/billing/internal/db"
	ierr "gulmohar/billing/internal/errors"
	"gulmohar/billing/internal/models"
	"gulmohar/billing/internal/utils"
)

type mongoBillRepository struct {
	coll *mongo.Collection
}

func NewMongoBillRepository(database *mongo.Database) BillRepository {
	return &mongoBillRepository{coll: database.Collection(db.BillsCollection)}
}

func (r *mongoBillRepository) Insert(ctx context.Context, bill *models.Bill) error {
	_, err := db.InsertOne(ctx, r.coll, bill)
	if err == nil {
		return nil
	}
	if db.IsDuplicateKeyOnIndex(err, "invoice_number_1") {
		return ierr.WithError(err).
			WithHintf("invoice number %s is already taken", bill.InvoiceNumber).
			Mark(ierr.ErrAllocationConflict)
	}
	return ierr.WithError(err).
		WithMessage("failed to insert bill").
		Mark(ierr.ErrDatabase)
}

func (r *mongoBillRepository) FindByID(ctx context.Context, id utils.SixID) (*models.Bill, error) {
	var bill models.Bill
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&bill)
	if err != nil {
		return nil, translateFindErr(err, "Bill")
	}
	return &bill, nil
}

func (r *mongoBillRepository) Find(ctx context.Context, q BillQuery, page Page) ([]models.Bill, error) {
	dir := -1
	if page.Order == models.SortAsc {
		dir = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: dir}, {Key: "invoice_number", Value: dir}}).
		SetSkip(page.Skip)
	if page.Limit > 0 {
		opts.SetLimit(page.Limit)
	}

	cursor, err := r.coll.Find(ctx, billFilter(q), opts)
	if err != nil {
		return nil, ierr.WithError(err).WithMessage("failed to query bills").Mark(ierr.ErrDatabase)
	}
	defer cursor.Close(ctx)

	bills := []models.Bill{}
	if err := cursor.All(ctx, &bills); err != nil {
		return nil, ierr.WithError(err).WithMessage("failed to decode bills").Mark(ierr.ErrDatabase)
	}
	return bills, nil
}

func (r *mongoBillRepository) Count(ctx context.Context, q BillQuery) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, billFilter(q))
	if err != nil {
		return 0, ierr.WithError(err).WithMessage("failed to count bills").Mark(ierr.ErrDatabase)
	}
	return n, nil
}

func (r *mongoBillRepository) SumTotal(ctx context.Context, q BillQuery) (decimal.Decimal, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: billFilter(q)}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$total_amount"}}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return decimal.Zero, ierr.WithError(err).WithMessage("failed to sum bills").Mark(ierr.ErrDatabase)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total decimal.Decimal `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return decimal.Zero, ierr.WithError(err).WithMessage("failed to decode bill sum").Mark(ierr.ErrDatabase)
	}
	if len(rows) == 0 {
		return decimal.Zero, nil
	}
	return rows[0].Total, nil
}

func (r *mongoBillRepository) DeleteByID(ctx context.Context, id utils.SixID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return ierr.WithError(err).WithMessage("failed to delete bill").Mark(ierr.ErrDatabase)
	}
	if res.DeletedCount == 0 {
		return ierr.NewErrorf("bill %s not found", id).
			WithHint("Bill not found").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *mongoBillRepository) UpdateStatus(ctx context.Context, id utils.SixID, status models.BillStatus, now time.Time) (*models.Bill, error) {
	var bill models.Bill
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&bill)
	if err != nil {
		return nil, translateFindErr(err, "Bill")
	}
	return &bill, nil
}

// FindLastInvoiceNumber sorts by length before value so INV-202403-10000
// ranks above INV-202403-9999.
func (r *mongoBillRepository) FindLastInvoiceNumber(ctx context.Context, prefix string) (string, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"invoice_number": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix)}}}},
		{{Key: "$project", Value: bson.M{
			"invoice_number": 1,
			"len":            bson.M{"$strLenCP": "$invoice_number"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "len", Value: -1}, {Key: "invoice_number", Value: -1}}}},
		{{Key: "$limit", Value: 1}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return "", ierr.WithError(err).WithMessage("failed to find last invoice number").Mark(ierr.ErrDatabase)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		InvoiceNumber string `bson:"invoice_number"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return "", ierr.WithError(err).WithMessage("failed to decode last invoice number").Mark(ierr.ErrDatabase)
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0].InvoiceNumber, nil
}

func billFilter(q BillQuery) bson.M {
	filter := bson.M{}
	if q.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"customer_name": re},
			bson.M{"invoice_number": re},
		}
	}
	if q.CreatedFrom != nil || q.CreatedTo != nil {
		created := bson.M{}
		if q.CreatedFrom != nil {
			created["$gte"] = *q.CreatedFrom
		}
		if q.CreatedTo != nil {
			created["$lte"] = *q.CreatedTo
		}
		filter["created_at"] = created
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	if q.RoomNumber != "" {
		filter["room_number"] = q.RoomNumber
	}
	return filter
}

func translateFindErr(err error, what string) error {
	if ierr.Is(err, mongo.ErrNoDocuments) {
		return ierr.WithError(err).
			WithHintf("%s not found", what).
			Mark(ierr.ErrNotFound)
	}
	return ierr.WithError(err).
		WithMessagef("failed to load %s", what).
		Mark(ierr.ErrDatabase)
}
