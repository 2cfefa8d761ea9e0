package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/bmizerany/assert"
	"github.com/gorilla/mux"
)

func testRoom() *Room {
	return &Room{
		RoomID: "r1",
		Name:   "quick game",
		HostID: "p1",
		Status: RoomWaiting,
		Members: []RoomMember{
			{PlayerID: "p1", Name: "Fast Otter", Ready: true},
			{PlayerID: "p2", Name: "Grand Panda", Ready: false},
		},
	}
}

func TestClient_Room(t *testing.T) {
	ts := newTestServer(func(r *mux.Router) {
		r.Methods(http.MethodGet).Path("/rooms/r1").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeData(w, testRoom())
		})
	})
	defer ts.Close()

	room, err := New(ts.URL).Room(context.Background(), "r1")
	assert.Equal(t, nil, err)
	assert.Equal(t, "r1", room.RoomID)
	assert.Equal(t, 2, len(room.Members))
}

func TestClient_JoinAndReady(t *testing.T) {
	ts := newTestServer(func(r *mux.Router) {
		r.Methods(http.MethodPost).Path("/rooms/r1/join").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeData(w, testRoom())
		})
		r.Methods(http.MethodPost).Path("/rooms/r1/ready").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			room := testRoom()
			room.Members[1].Ready = true
			writeData(w, room)
		})
	})
	defer ts.Close()

	client := New(ts.URL)

	room, err := client.JoinRoom(context.Background(), "r1", "p2")
	assert.Equal(t, nil, err)
	assert.Equal(t, false, room.AllReady())

	room, err = client.SetReady(context.Background(), "r1", "p2", true)
	assert.Equal(t, nil, err)
	assert.Equal(t, true, room.AllReady())
}

func TestRoom_Member(t *testing.T) {
	room := testRoom()

	m, ok := room.Member("p2")
	assert.Equal(t, true, ok)
	assert.Equal(t, "Grand Panda", m.Name)

	_, ok = room.Member("p9")
	assert.Equal(t, false, ok)
}

func TestRoom_AllReady_empty(t *testing.T) {
	room := &Room{RoomID: "r1"}
	assert.Equal(t, false, room.AllReady())
}

func TestClient_RoomMessages(t *testing.T) {
	ts := newTestServer(func(r *mux.Router) {
		r.Methods(http.MethodGet).Path("/rooms/r1/messages").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeData(w, []ChatMessage{
				{MessageID: "m1", RoomID: "r1", PlayerID: "p1", Text: "ready when you are"},
			})
		})
		r.Methods(http.MethodPost).Path("/rooms/r1/messages").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeData(w, ChatMessage{MessageID: "m2", RoomID: "r1", PlayerID: "p2", Text: "one sec"})
		})
	})
	defer ts.Close()

	client := New(ts.URL)

	messages, err := client.RoomMessages(context.Background(), "r1")
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(messages))

	msg, err := client.PostRoomMessage(context.Background(), "r1", "p2", "one sec")
	assert.Equal(t, nil, err)
	assert.Equal(t, "m2", msg.MessageID)
}
