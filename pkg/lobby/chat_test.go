package lobby

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"speedmatch-client/pkg/api"
)

// chatEchoServer upgrades /rooms/{id}/ws and echoes every chat message back
// as the server broadcast would
func chatEchoServer(t *testing.T) *httptest.Server {
	t.Helper()

	upgrader := &websocket.Upgrader{}
	r := mux.NewRouter()
	r.Path("/rooms/{id}/ws").HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			t.Error(err)
			return
		}
		defer conn.Close()

		playerID := req.URL.Query().Get("playerId")
		for {
			var in outgoingMessage
			if err := conn.ReadJSON(&in); err != nil {
				return
			}

			out := api.ChatMessage{
				MessageID: in.MessageID,
				RoomID:    mux.Vars(req)["id"],
				PlayerID:  playerID,
				Text:      in.Text,
				SentAt:    time.Now().UTC(),
			}

			data, _ := json.Marshal(out)
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	})

	return httptest.NewServer(r)
}

func TestChat_sendAndReceive(t *testing.T) {
	ts := chatEchoServer(t)
	defer ts.Close()

	chat, err := DialChat(ts.URL, "r1", "p1")
	assert.NoError(t, err)

	assert.True(t, chat.Send("ready when you are"))

	msg := <-chat.Messages()
	assert.Equal(t, "r1", msg.RoomID)
	assert.Equal(t, "p1", msg.PlayerID)
	assert.Equal(t, "ready when you are", msg.Text)
	assert.NotEmpty(t, msg.MessageID)

	chat.Close()
	assert.False(t, chat.Send("too late"))

	// the incoming channel drains and closes
	for range chat.Messages() {
	}
}

func TestChat_closeIsIdempotent(t *testing.T) {
	ts := chatEchoServer(t)
	defer ts.Close()

	chat, err := DialChat(ts.URL, "r1", "p1")
	assert.NoError(t, err)

	chat.Close()
	chat.Close()
}

func TestChatURL(t *testing.T) {
	u, err := chatURL("http://localhost:5000", "r1", "p 1")
	assert.NoError(t, err)
	assert.Equal(t, "ws://localhost:5000/rooms/r1/ws?playerId=p+1", u)

	u, err = chatURL("https://play.speedmatch.example/api/", "r1", "p1")
	assert.NoError(t, err)
	assert.Equal(t, "wss://play.speedmatch.example/api/rooms/r1/ws?playerId=p1", u)

	_, err = chatURL("ftp://nope", "r1", "p1")
	assert.Error(t, err)
}

func TestDialChat_badURL(t *testing.T) {
	_, err := DialChat("http://127.0.0.1:1", "r1", "p1")
	assert.Error(t, err)
}
