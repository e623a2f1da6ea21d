package events

import (
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/socialfeed/server/pkg/events"
	"github.com/socialfeed/server/pkg/reactions"
	"github.com/socialfeed/server/pkg/structs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type received struct {
	Cmd   string          `json:"cmd"`
	Val   json.RawMessage `json:"val"`
	Nonce string          `json:"nonce"`
}

func startServer(t *testing.T) (*Server, string) {
	t.Helper()
	s := NewServer()
	hs := httptest.NewServer(s)
	t.Cleanup(func() {
		s.Close()
		hs.Close()
	})
	return s, "ws" + strings.TrimPrefix(hs.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func readPacket(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var p received
	require.NoError(t, conn.ReadJSON(&p))
	return p
}

func encode(t *testing.T, op uint8, ev interface{}) []byte {
	t.Helper()
	payload, err := events.Encode(op, ev)
	require.NoError(t, err)
	return payload
}

func TestHelloAndDispatch(t *testing.T) {
	s, url := startServer(t)
	conn := dial(t, url)
	defer conn.Close()

	hello := readPacket(t, conn)
	assert.Equal(t, "hello", hello.Cmd)
	assert.Equal(t, 1, s.SessionCount())

	require.NoError(t, s.Dispatch(encode(t, events.OpPostReaction, &events.PostReaction{
		PostId: "10",
		UserId: "20",
		Kind:   reactions.Love,
		Count:  3,
	})))

	p := readPacket(t, conn)
	assert.Equal(t, "post_reaction", p.Cmd)
	assert.JSONEq(t, `{"post_id":"10","user_id":"20","kind":"love","count":3}`, string(p.Val))
}

func TestDispatchPost(t *testing.T) {
	s, url := startServer(t)
	conn := dial(t, url)
	defer conn.Close()
	readPacket(t, conn)

	require.NoError(t, s.Dispatch(encode(t, events.OpCreatePost, &events.CreatePost{
		Post: structs.V0Post{Id: "5", Content: "hello", ImageUrls: []string{}},
	})))

	p := readPacket(t, conn)
	assert.Equal(t, "post", p.Cmd)
	var post structs.V0Post
	require.NoError(t, json.Unmarshal(p.Val, &post))
	assert.Equal(t, "5", post.Id)
	assert.Equal(t, "hello", post.Content)
}

func TestDispatchRejectsBadPayloads(t *testing.T) {
	s := NewServer()

	require.ErrorIs(t, s.Dispatch(nil), events.ErrEmptyPayload)
	require.ErrorIs(t, s.Dispatch([]byte{200}), ErrUnknownOp)
	require.Error(t, s.Dispatch([]byte{events.OpDeletePost, 0xc1}))
}

func TestResumeReplaysMissedPackets(t *testing.T) {
	s, url := startServer(t)
	conn := dial(t, url)

	hello := readPacket(t, conn)
	var h struct {
		SessionId string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(hello.Val, &h))
	conn.Close()

	require.NoError(t, s.Dispatch(encode(t, events.OpDeletePost, &events.DeletePost{PostId: "7"})))

	resumed := dial(t, url+"?sid="+h.SessionId+"&nonce="+hello.Nonce)
	defer resumed.Close()

	cmds := map[string]received{}
	for range 2 {
		p := readPacket(t, resumed)
		cmds[p.Cmd] = p
	}
	require.Contains(t, cmds, "hello")
	require.Contains(t, cmds, "delete_post")
	assert.JSONEq(t, `{"post_id":"7"}`, string(cmds["delete_post"].Val))
	assert.Equal(t, 1, s.SessionCount())
}

func TestResumeUnknownSession(t *testing.T) {
	_, url := startServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(url+"?sid=999&nonce=1", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 404, resp.StatusCode)
	resp.Body.Close()
}

func TestMsgpackFormat(t *testing.T) {
	_, url := startServer(t)
	conn := dial(t, url+"?format=msgpack")
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	msgType, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, msgType)

	var p struct {
		Cmd string `msgpack:"cmd"`
		Val struct {
			SessionId string `msgpack:"session_id"`
		} `msgpack:"val"`
	}
	require.NoError(t, msgpack.Unmarshal(data, &p))
	assert.Equal(t, "hello", p.Cmd)
	_, err = strconv.ParseInt(p.Val.SessionId, 10, 64)
	assert.NoError(t, err)
}

func TestSessionEndsAfterDisconnect(t *testing.T) {
	s := NewServer()
	s.pingInterval = 50 * time.Millisecond
	hs := httptest.NewServer(s)
	defer hs.Close()
	defer s.Close()

	conn := dial(t, "ws"+strings.TrimPrefix(hs.URL, "http"))
	readPacket(t, conn)
	conn.Close()

	assert.Eventually(t, func() bool { return s.SessionCount() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestNormalCloseEndsSession(t *testing.T) {
	s, url := startServer(t)
	conn := dial(t, url)
	readPacket(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	assert.Eventually(t, func() bool { return s.SessionCount() == 0 }, 5*time.Second, 10*time.Millisecond)
}
