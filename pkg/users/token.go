package users

import (
	"context"
	"crypto/rand"

	"github.com/socialfeed/server/pkg/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var AccSessionSigningKey []byte

// InitTokenSigningKeys loads the session signing key, generating and
// persisting one on first start.
func InitTokenSigningKeys(ctx context.Context) error {
	var signingKeys struct {
		Id  string `bson:"_id"`
		Acc []byte `bson:"acc"`
	}
	err := db.Config.FindOne(ctx, bson.M{"_id": "signing_keys"}).Decode(&signingKeys)
	if err == mongo.ErrNoDocuments {
		signingKeys.Id = "signing_keys"
		signingKeys.Acc = make([]byte, 64)
		if _, err := rand.Read(signingKeys.Acc); err != nil {
			return err
		}
		if _, err := db.Config.InsertOne(ctx, signingKeys); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	AccSessionSigningKey = signingKeys.Acc
	return nil
}
