package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"speedmatch-client/internal/util"
)

func TestClient_RegisterPlayer(t *testing.T) {
	ts := newTestServer(func(r *mux.Router) {
		r.Methods(http.MethodPost).Path("/players").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeData(w, Player{PlayerID: "p1", DisplayName: "Fast Otter"})
		})
	})
	defer ts.Close()

	player, err := New(ts.URL).RegisterPlayer(context.Background(), "Fast Otter", util.RandomEmail())
	assert.NoError(t, err)
	assert.Equal(t, "p1", player.PlayerID)
}

func TestClient_RegisterPlayer_validation(t *testing.T) {
	requests := 0
	ts := newTestServer(func(r *mux.Router) {
		r.Methods(http.MethodPost).Path("/players").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			writeData(w, Player{PlayerID: "p1"})
		})
	})
	defer ts.Close()

	client := New(ts.URL)

	_, err := client.RegisterPlayer(context.Background(), "", "")
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Equal(t, "displayName", vErr.Field)

	_, err = client.RegisterPlayer(context.Background(), "Fast Otter", "not-an-email")
	assert.ErrorAs(t, err, &vErr)
	assert.Equal(t, "email", vErr.Field)

	longName := make([]byte, 41)
	for i := range longName {
		longName[i] = 'x'
	}
	_, err = client.RegisterPlayer(context.Background(), string(longName), "")
	assert.ErrorAs(t, err, &vErr)

	// none of the invalid forms reached the network
	assert.Equal(t, 0, requests)
}
