package networks

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/socialfeed/server/pkg/db"
	"github.com/socialfeed/server/pkg/feedid"
	"go.mongodb.org/mongo-driver/bson"
)

// Block keeps an address range away from the auth and write endpoints.
type Block struct {
	Id        feedid.FeedID `bson:"_id"`
	Address   string        `bson:"address"`
	Reason    string        `bson:"reason,omitempty"`
	CreatedBy feedid.FeedID `bson:"created_by"`
	CreatedAt int64         `bson:"created_at"`
	ExpiresAt int64         `bson:"expires_at,omitempty"` // 0 never expires

	network net.IPNet
}

func (b Block) Network() net.IPNet {
	return b.network
}

func (b Block) Expired(now time.Time) bool {
	return b.ExpiresAt != 0 && b.ExpiresAt <= now.UnixMilli()
}

// ParseNetwork accepts a CIDR or a single address, which becomes a /32 or
// /128 network.
func ParseNetwork(address string) (net.IPNet, error) {
	address = strings.TrimSpace(address)
	if strings.Contains(address, "/") {
		_, network, err := net.ParseCIDR(address)
		if err != nil {
			return net.IPNet{}, ErrInvalidAddress
		}
		return *network, nil
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return net.IPNet{}, ErrInvalidAddress
	}
	if ip4 := ip.To4(); ip4 != nil {
		return net.IPNet{IP: ip4, Mask: net.CIDRMask(32, 32)}, nil
	}
	return net.IPNet{IP: ip, Mask: net.CIDRMask(128, 128)}, nil
}

// Load replaces the process blocklist with the stored blocks.
func Load(ctx context.Context) error {
	cur, err := db.Netblock.Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	var blocks []Block
	if err := cur.All(ctx, &blocks); err != nil {
		return err
	}

	list := NewBlocklist(time.Now)
	for _, b := range blocks {
		if err := list.Add(b); err != nil {
			return err
		}
	}
	Default = list
	return nil
}

func CreateBlock(ctx context.Context, address string, reason string, createdBy feedid.FeedID, expiresAt int64) (Block, error) {
	network, err := ParseNetwork(address)
	if err != nil {
		return Block{}, err
	}
	b := Block{
		Id:        feedid.GenId(),
		Address:   network.String(),
		Reason:    reason,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UnixMilli(),
		ExpiresAt: expiresAt,
	}

	if _, err := db.Netblock.InsertOne(ctx, b); err != nil {
		return b, err
	}
	if err := Default.Add(b); err != nil {
		return b, err
	}
	return b, nil
}

func DeleteBlock(ctx context.Context, id feedid.FeedID) error {
	res, err := db.Netblock.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	Default.Remove(id)
	if res.DeletedCount == 0 {
		return ErrBlockNotFound
	}
	return nil
}

func IsBlocked(address string) (bool, error) {
	return Default.IsBlocked(address)
}
