package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Client *mongo.Client
var Database *mongo.Database

var (
	Config      *mongo.Collection
	Accounts    *mongo.Collection
	Users       *mongo.Collection
	AccSessions *mongo.Collection
	Netblock    *mongo.Collection
	Posts       *mongo.Collection
	Comments    *mongo.Collection
	Uploads     *mongo.Collection
)

func Init(uri string, db string) error {
	var err error

	// Connect to MongoDB
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)
	Client, err = mongo.Connect(context.TODO(), opts)
	if err != nil {
		return err
	}

	// Ping MongoDB
	var result bson.M
	if err := Client.Database("admin").RunCommand(context.TODO(), bson.D{{Key: "ping", Value: 1}}).Decode(&result); err != nil {
		return err
	}

	// Set database
	Database = Client.Database(db)

	// Set collections
	Config = Database.Collection("config")
	Accounts = Database.Collection("accounts")
	Users = Database.Collection("users")
	AccSessions = Database.Collection("acc_sessions")
	Netblock = Database.Collection("netblock")
	Posts = Database.Collection("posts")
	Comments = Database.Collection("comments")
	Uploads = Database.Collection("uploads")

	return ensureIndexes(context.TODO())
}

func ensureIndexes(ctx context.Context) error {
	if _, err := Users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "lower_username", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}
	if _, err := Comments.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "parent_id", Value: 1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "parent_id", Value: 1}, {Key: "_id", Value: 1}}},
	}); err != nil {
		return err
	}
	_, err := Posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "_id", Value: -1}},
	})
	return err
}

// WithTransaction runs fn inside a multi-document transaction. Standalone
// deployments don't support transactions, in that case fn runs without one
// and ok is false so callers know the writes were not atomic. When ok is
// true a returned error means the transaction was rolled back as a whole.
func WithTransaction(ctx context.Context, fn func(ctx context.Context) error) (ok bool, err error) {
	sess, err := Client.StartSession()
	if err != nil {
		return false, err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return transactionOutcome(err, func() error { return fn(ctx) })
}

// transactionOutcome turns the result of a session transaction into
// WithTransaction's result, running fallback when transactions are
// unsupported.
func transactionOutcome(txErr error, fallback func() error) (bool, error) {
	if isTransactionUnsupported(txErr) {
		return false, fallback()
	}
	return true, txErr
}

func isTransactionUnsupported(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		// IllegalOperation: "Transaction numbers are only allowed on a replica set member or mongos"
		return cmdErr.Code == 20
	}
	return false
}
