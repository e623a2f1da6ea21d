package users

import (
	"context"
	"strings"
	"time"

	"github.com/socialfeed/server/pkg/db"
	"github.com/socialfeed/server/pkg/feedid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = 12

type Account struct {
	Id feedid.FeedID `bson:"_id"`

	PasswordHash   []byte          `bson:"password,omitempty"`
	Authenticators []Authenticator `bson:"authenticators,omitempty"`

	LastAuthAt int64 `bson:"last_auth_at"`
}

func CreateAccount(ctx context.Context, username, password, name, email string) (Account, User, error) {
	userId := feedid.GenId()
	var account Account
	var user User

	// Make sure username hasn't been taken
	taken, err := UsernameTaken(ctx, username)
	if err != nil {
		return account, user, err
	} else if taken {
		return account, user, ErrUsernameTaken
	}

	// Hash password before anything is written
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return account, user, err
	}

	// Create user
	now := time.Now().UnixMilli()
	if name == "" {
		name = username
	}
	user = User{
		Id:            userId,
		Username:      username,
		LowerUsername: strings.ToLower(username),
		Name:          name,
		Email:         email,
		Role:          RoleUser,
		CreatedAt:     now,
	}
	if _, err := db.Users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			err = ErrUsernameTaken
		}
		return account, user, err
	}

	// Create account
	account = Account{
		Id:           userId,
		PasswordHash: passwordHash,
		LastAuthAt:   now,
	}
	if _, err := db.Accounts.InsertOne(ctx, account); err != nil {
		return account, user, err
	}

	return account, user, nil
}

func GetAccount(ctx context.Context, id feedid.FeedID) (Account, error) {
	var account Account
	err := db.Accounts.FindOne(ctx, bson.M{"_id": id}).Decode(&account)
	if err == mongo.ErrNoDocuments {
		err = ErrAccountNotFound
	}
	return account, err
}

// Authenticate checks a username and password pair. Unknown usernames and
// wrong passwords return the same error.
func Authenticate(ctx context.Context, username, password string) (Account, User, error) {
	user, err := GetUserByUsername(ctx, username)
	if err == ErrUserNotFound {
		return Account{}, user, ErrInvalidCredentials
	} else if err != nil {
		return Account{}, user, err
	}

	account, err := GetAccount(ctx, user.Id)
	if err != nil {
		return account, user, err
	}
	if err := account.CheckPassword(password); err != nil {
		return account, user, ErrInvalidCredentials
	}

	account.LastAuthAt = time.Now().UnixMilli()
	_, err = db.Accounts.UpdateByID(ctx, account.Id, bson.M{"$set": bson.M{"last_auth_at": account.LastAuthAt}})
	return account, user, err
}

func (a *Account) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(password))
}

func (a *Account) ChangePassword(ctx context.Context, newPassword string) error {
	var err error
	a.PasswordHash, err = bcrypt.GenerateFromPassword([]byte(newPassword), BcryptCost)
	if err != nil {
		return err
	}

	_, err = db.Accounts.UpdateByID(ctx, a.Id, bson.M{"$set": bson.M{"password": a.PasswordHash}})
	return err
}

func (a *Account) MfaMethods() []string {
	methodsMap := make(map[string]bool)
	for _, authenticator := range a.Authenticators {
		methodsMap[authenticator.Type] = true
	}

	methodsSlice := []string{}
	for method := range methodsMap {
		methodsSlice = append(methodsSlice, method)
	}
	return methodsSlice
}
