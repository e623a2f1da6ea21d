package feedid

import (
	"sync"
	"time"
)

// FeedID Format:
// Timestamp (41-bits)
// Node ID (11-bits)
// Increment (11-bits)

type FeedID = int64

const Epoch int64 = 1704067200000 // 2024-01-01 12am GMT

const (
	TimestampBits = 41
	TimestampMask = (1 << TimestampBits) - 1

	NodeIdBits = 11
	NodeIdMask = (1 << NodeIdBits) - 1

	IncrementBits = 11
	IncrementMask = (1 << IncrementBits) - 1
)

var NodeId int64

var idIncrementLock = sync.Mutex{}
var idIncrementTs int64 = 0
var idIncrement int64 = 0

var now = time.Now

func Init(nodeId int) {
	NodeId = int64(nodeId) & NodeIdMask
}

func GenId() FeedID {
	idIncrementLock.Lock()
	defer idIncrementLock.Unlock()

	ts := now().UnixMilli()
	if ts < idIncrementTs {
		// clock went backwards, keep issuing from the last timestamp
		ts = idIncrementTs
	}

	if idIncrementTs != ts {
		idIncrementTs = ts
		idIncrement = 0
	} else if idIncrement >= IncrementMask {
		// increment exhausted for this millisecond, borrow the next one
		idIncrementTs++
		idIncrement = 0
	} else {
		idIncrement++
	}

	return compose(idIncrementTs, NodeId, idIncrement)
}

// WARNING: This may result in conflicts because it generates the 1st possible
// ID for the given timestamp. Only use it as a range bound in queries.
func GenIdForTs(ts int64) FeedID {
	return compose(ts, 0, 0)
}

func compose(ts, nodeId, increment int64) FeedID {
	id := (ts - Epoch) << (NodeIdBits + IncrementBits)
	id |= nodeId << IncrementBits
	id |= increment
	return id
}

type Parts struct {
	Timestamp int64
	NodeId    int64
	Increment int64
}

func Extract(id FeedID) Parts {
	return Parts{
		Timestamp: ((id >> (NodeIdBits + IncrementBits)) & TimestampMask) + Epoch,
		NodeId:    (id >> IncrementBits) & NodeIdMask,
		Increment: id & IncrementMask,
	}
}

func Time(id FeedID) time.Time {
	return time.UnixMilli(Extract(id).Timestamp)
}
