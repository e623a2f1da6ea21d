package events

import (
	"errors"

	"github.com/socialfeed/server/pkg/api/events/packets"
	"github.com/socialfeed/server/pkg/events"
	"github.com/vmihailenco/msgpack/v5"
)

var ErrUnknownOp = errors.New("unknown event op")

// toPacket turns a published event into the packet clients receive.
func toPacket(op uint8, body []byte) (packets.Packet, error) {
	switch op {
	case events.OpUpdateUser:
		var ev events.UpdateUser
		if err := msgpack.Unmarshal(body, &ev); err != nil {
			return packets.Packet{}, err
		}
		return packets.Packet{Cmd: "update_user", Val: ev.User}, nil

	case events.OpDeleteUser:
		var ev events.DeleteUser
		if err := msgpack.Unmarshal(body, &ev); err != nil {
			return packets.Packet{}, err
		}
		return packets.Packet{Cmd: "delete_user", Val: packets.DeleteUser{UserId: ev.UserId}}, nil

	case events.OpCreatePost:
		var ev events.CreatePost
		if err := msgpack.Unmarshal(body, &ev); err != nil {
			return packets.Packet{}, err
		}
		return packets.Packet{Cmd: "post", Val: ev.Post}, nil

	case events.OpUpdatePost:
		var ev events.UpdatePost
		if err := msgpack.Unmarshal(body, &ev); err != nil {
			return packets.Packet{}, err
		}
		return packets.Packet{Cmd: "update_post", Val: ev.Post}, nil

	case events.OpDeletePost:
		var ev events.DeletePost
		if err := msgpack.Unmarshal(body, &ev); err != nil {
			return packets.Packet{}, err
		}
		return packets.Packet{Cmd: "delete_post", Val: packets.DeletePost{PostId: ev.PostId}}, nil

	case events.OpPostReaction:
		var ev events.PostReaction
		if err := msgpack.Unmarshal(body, &ev); err != nil {
			return packets.Packet{}, err
		}
		return packets.Packet{Cmd: "post_reaction", Val: packets.PostReaction{
			PostId: ev.PostId,
			UserId: ev.UserId,
			Kind:   ev.Kind.String(),
			Count:  ev.Count,
		}}, nil

	case events.OpCreateComment:
		var ev events.CreateComment
		if err := msgpack.Unmarshal(body, &ev); err != nil {
			return packets.Packet{}, err
		}
		return packets.Packet{Cmd: "comment", Val: ev.Comment}, nil

	case events.OpUpdateComment:
		var ev events.UpdateComment
		if err := msgpack.Unmarshal(body, &ev); err != nil {
			return packets.Packet{}, err
		}
		return packets.Packet{Cmd: "update_comment", Val: ev.Comment}, nil

	case events.OpDeleteComment:
		var ev events.DeleteComment
		if err := msgpack.Unmarshal(body, &ev); err != nil {
			return packets.Packet{}, err
		}
		return packets.Packet{Cmd: "delete_comment", Val: packets.DeleteComment{
			PostId:    ev.PostId,
			CommentId: ev.CommentId,
			ParentId:  ev.ParentId,
		}}, nil

	case events.OpCommentLike:
		var ev events.CommentLike
		if err := msgpack.Unmarshal(body, &ev); err != nil {
			return packets.Packet{}, err
		}
		return packets.Packet{Cmd: "comment_like", Val: packets.CommentLike{
			PostId:    ev.PostId,
			CommentId: ev.CommentId,
			UserId:    ev.UserId,
			Liked:     ev.Liked,
		}}, nil
	}

	return packets.Packet{}, ErrUnknownOp
}
