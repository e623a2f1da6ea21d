package networks

import (
	"net"
	"sort"
	"sync"
	"time"

	"github.com/socialfeed/server/pkg/feedid"
	"github.com/yl2chen/cidranger"
)

// Default is the blocklist the API checks requests against.
var Default = NewBlocklist(time.Now)

// Blocklist is an in-memory index of blocks by network.
type Blocklist struct {
	mu     sync.RWMutex
	ranger cidranger.Ranger
	blocks map[feedid.FeedID]Block
	now    func() time.Time
}

func NewBlocklist(now func() time.Time) *Blocklist {
	return &Blocklist{
		ranger: cidranger.NewPCTrieRanger(),
		blocks: make(map[feedid.FeedID]Block),
		now:    now,
	}
}

func (l *Blocklist) Add(b Block) error {
	network, err := ParseNetwork(b.Address)
	if err != nil {
		return err
	}
	b.network = network

	l.mu.Lock()
	defer l.mu.Unlock()
	l.blocks[b.Id] = b
	// the trie holds one entry per network, the block with the latest expiry wins
	return l.ranger.Insert(l.strongest(network))
}

func (l *Blocklist) Remove(id feedid.FeedID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.blocks[id]
	if !ok {
		return
	}
	delete(l.blocks, id)

	_, _ = l.ranger.Remove(b.network)
	if next := l.strongest(b.network); next.Id != 0 {
		_ = l.ranger.Insert(next)
	}
}

// IsBlocked reports whether address falls in an unexpired block.
func (l *Blocklist) IsBlocked(address string) (bool, error) {
	ip := net.ParseIP(address)
	if ip == nil {
		return false, ErrInvalidAddress
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	entries, err := l.ranger.ContainingNetworks(ip)
	if err != nil {
		return false, err
	}
	now := l.now()
	for _, entry := range entries {
		if !entry.(Block).Expired(now) {
			return true, nil
		}
	}
	return false, nil
}

// List returns every block, newest first.
func (l *Blocklist) List() []Block {
	l.mu.RLock()
	defer l.mu.RUnlock()
	blocks := make([]Block, 0, len(l.blocks))
	for _, b := range l.blocks {
		blocks = append(blocks, b)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Id > blocks[j].Id })
	return blocks
}

// strongest must be called with l.mu held. It returns the zero Block when
// nothing covers network exactly.
func (l *Blocklist) strongest(network net.IPNet) Block {
	var best Block
	for _, b := range l.blocks {
		if b.network.String() != network.String() {
			continue
		}
		switch {
		case best.Id == 0:
			best = b
		case b.ExpiresAt == 0:
			best = b
		case best.ExpiresAt != 0 && b.ExpiresAt > best.ExpiresAt:
			best = b
		}
	}
	return best
}
