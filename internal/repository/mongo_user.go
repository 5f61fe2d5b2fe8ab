package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"gulmohar/billing/internal/db"
	ierr "gulmohar/billing/internal/errors"
	"gulmohar/billing/internal/models"
	"gulmohar/billing/internal/utils"
)

type mongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(database *mongo.Database) UserRepository {
	return &mongoUserRepository{coll: database.Collection(db.UsersCollection)}
}

func (r *mongoUserRepository) Insert(ctx context.Context, user *models.User) error {
	_, err := db.InsertOne(ctx, r.coll, user)
	if err == nil {
		return nil
	}
	if db.IsDuplicateKeyOnIndex(err, "username_1") {
		return ierr.WithError(err).
			WithHintf("username %s is already taken", user.Username).
			Mark(ierr.ErrAlreadyExists)
	}
	return ierr.WithError(err).WithMessage("failed to insert user").Mark(ierr.ErrDatabase)
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id utils.SixID) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, translateFindErr(err, "User")
	}
	return &user, nil
}

func (r *mongoUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		return nil, translateFindErr(err, "User")
	}
	return &user, nil
}

func (r *mongoUserRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, ierr.WithError(err).WithMessage("failed to count users").Mark(ierr.ErrDatabase)
	}
	return n, nil
}
