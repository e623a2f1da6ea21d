package users

import (
	"context"
	"strconv"

	"github.com/pquerna/otp/totp"
	"github.com/socialfeed/server/pkg/db"
	"github.com/socialfeed/server/pkg/feedid"
	"github.com/socialfeed/server/pkg/structs"
	"github.com/socialfeed/server/pkg/utils"
	"go.mongodb.org/mongo-driver/bson"
)

const totpIssuer = "Social Feed"

type Authenticator struct {
	Id         feedid.FeedID `bson:"_id"`
	Type       string        `bson:"type"`
	Nickname   string        `bson:"nickname,omitempty"`
	TotpSecret string        `bson:"totp_secret,omitempty"`
}

type TotpEnrollment struct {
	Secret          string
	ProvisioningUri string
	QRCodeSVG       string
}

// NewTotpSecret generates a secret for accountName that still has to be
// confirmed with AddTotpAuthenticator.
func NewTotpSecret(accountName string) (TotpEnrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: accountName,
	})
	if err != nil {
		return TotpEnrollment{}, err
	}
	svg, err := utils.GenerateSVGQRCode(key.URL())
	if err != nil {
		return TotpEnrollment{}, err
	}
	return TotpEnrollment{
		Secret:          key.Secret(),
		ProvisioningUri: key.URL(),
		QRCodeSVG:       svg,
	}, nil
}

func (a *Account) AddTotpAuthenticator(ctx context.Context, nickname string, secret string) (*Authenticator, error) {
	authenticator := Authenticator{
		Id:         feedid.GenId(),
		Type:       "totp",
		Nickname:   nickname,
		TotpSecret: secret,
	}
	a.Authenticators = append(a.Authenticators, authenticator)
	_, err := db.Accounts.UpdateByID(
		ctx,
		a.Id,
		bson.M{"$addToSet": bson.M{"authenticators": &authenticator}},
	)
	return &authenticator, err
}

func (a *Account) RemoveAuthenticator(ctx context.Context, authenticatorId feedid.FeedID) error {
	newAuthenticators := []Authenticator{}
	found := false
	for _, authenticator := range a.Authenticators {
		if authenticator.Id == authenticatorId {
			found = true
			continue
		}
		newAuthenticators = append(newAuthenticators, authenticator)
	}
	if !found {
		return ErrAuthenticatorNotFound
	}
	a.Authenticators = newAuthenticators
	_, err := db.Accounts.UpdateOne(
		ctx,
		bson.M{"_id": a.Id},
		bson.M{"$pull": bson.M{"authenticators": bson.M{"_id": authenticatorId}}},
	)
	return err
}

func (a *Account) CheckTotp(code string) bool {
	for _, authenticator := range a.Authenticators {
		if authenticator.Type != "totp" {
			continue
		}
		if totp.Validate(code, authenticator.TotpSecret) {
			return true
		}
	}
	return false
}

func (a *Authenticator) V0() *structs.V0Authenticator {
	return &structs.V0Authenticator{
		Id:           strconv.FormatInt(a.Id, 10),
		Type:         a.Type,
		Nickname:     a.Nickname,
		RegisteredAt: feedid.Extract(a.Id).Timestamp,
	}
}
