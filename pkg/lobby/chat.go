package lobby

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"speedmatch-client/pkg/api"
)

const writeWait = time.Second * 10
const pongWait = time.Second * 60
const pingPeriod = pongWait * 9 / 10

// Chat is a live connection to a room's chat. Incoming messages arrive on
// Messages; outgoing ones are queued with Send. REST history via
// api.Client.RoomMessages covers anything sent before the connection opened
type Chat struct {
	conn     *websocket.Conn
	playerID string

	send     chan outgoingMessage
	messages chan api.ChatMessage

	close     chan struct{}
	closeOnce sync.Once
	done      chan struct{}
}

type outgoingMessage struct {
	MessageID string `json:"messageId"`
	PlayerID  string `json:"playerId"`
	Text      string `json:"text"`
}

// DialChat connects to the room's chat websocket. baseURL is the API base
// URL; the scheme is rewritten for the websocket dial
func DialChat(baseURL, roomID, playerID string) (*Chat, error) {
	wsURL, err := chatURL(baseURL, roomID, playerID)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("could not connect to room chat: %w", err)
	}

	c := &Chat{
		conn:     conn,
		playerID: playerID,
		send:     make(chan outgoingMessage, 64),
		messages: make(chan api.ChatMessage, 64),
		close:    make(chan struct{}),
		done:     make(chan struct{}),
	}

	go c.writeLoop()
	go c.readLoop()

	return c, nil
}

// Send queues a chat message. It reports false if the outgoing buffer is
// full or the connection is closing
func (c *Chat) Send(text string) bool {
	msg := outgoingMessage{
		MessageID: uuid.New().String(),
		PlayerID:  c.playerID,
		Text:      text,
	}

	select {
	case <-c.close:
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Messages returns the incoming message channel. It closes when the
// connection ends
func (c *Chat) Messages() <-chan api.ChatMessage {
	return c.messages
}

// Close shuts the connection down; safe to call more than once
func (c *Chat) Close() {
	c.closeOnce.Do(func() {
		close(c.close)
	})
	<-c.done
}

func (c *Chat) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.close:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				logrus.WithError(err).Warn("could not send chat message")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Chat) readLoop() {
	defer func() {
		c.closeOnce.Do(func() {
			close(c.close)
		})
		_ = c.conn.Close()
		close(c.messages)
		close(c.done)
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.WithError(err).Warn("chat connection lost")
			}
			return
		}

		var msg api.ChatMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logrus.WithError(err).Warn("could not parse chat message")
			continue
		}

		select {
		case c.messages <- msg:
		default:
			// drop rather than stall the read loop
		}
	}
}

func chatURL(baseURL, roomID, playerID string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + fmt.Sprintf("/rooms/%s/ws", url.PathEscape(roomID))
	u.RawQuery = url.Values{"playerId": []string{playerID}}.Encode()

	return u.String(), nil
}
