package reactions

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

var ErrUnknownKind = errors.New("unknown reaction kind")

// Kind is the viewer's reaction to a post. The set is closed.
type Kind uint8

const (
	None Kind = iota
	Like
	Love
	Haha
	Wow
	Sad
	Angry
)

// All lists the selectable kinds in picker order.
var All = []Kind{Like, Love, Haha, Wow, Sad, Angry}

func (k Kind) String() string {
	switch k {
	case None:
		return ""
	case Like:
		return "like"
	case Love:
		return "love"
	case Haha:
		return "haha"
	case Wow:
		return "wow"
	case Sad:
		return "sad"
	case Angry:
		return "angry"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

func (k Kind) Emoji() string {
	switch k {
	case Like:
		return "👍"
	case Love:
		return "❤️"
	case Haha:
		return "😂"
	case Wow:
		return "😮"
	case Sad:
		return "😢"
	case Angry:
		return "😡"
	default:
		return ""
	}
}

func (k Kind) Valid() bool {
	return k <= Angry
}

// Parse accepts the wire names. "" and "none" both mean no reaction.
func Parse(s string) (Kind, error) {
	switch s {
	case "", "none":
		return None, nil
	case "like":
		return Like, nil
	case "love":
		return Love, nil
	case "haha":
		return Haha, nil
	case "wow":
		return Wow, nil
	case "sad":
		return Sad, nil
	case "angry":
		return Angry, nil
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Kinds are stored as their names so documents stay readable. None is
// stored as null.
func (k Kind) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if k == None {
		return bson.TypeNull, nil, nil
	}
	if !k.Valid() {
		return 0, nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
	return bson.TypeString, bsoncore.AppendString(nil, k.String()), nil
}

func (k *Kind) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bson.TypeNull, bson.TypeUndefined:
		*k = None
		return nil
	case bson.TypeString:
		s, _, ok := bsoncore.ReadString(data)
		if !ok {
			return fmt.Errorf("%w: malformed string", ErrUnknownKind)
		}
		return k.UnmarshalText([]byte(s))
	}
	return fmt.Errorf("%w: bson type %s", ErrUnknownKind, t)
}
