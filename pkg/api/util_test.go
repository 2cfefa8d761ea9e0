package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gorilla/mux"
)

// newTestServer builds a fake SpeedMatch backend for the routes the test
// cares about
func newTestServer(routes func(r *mux.Router)) *httptest.Server {
	r := mux.NewRouter()
	routes(r)
	return httptest.NewServer(r)
}

func writeData(w http.ResponseWriter, data interface{}) {
	writeEnvelope(w, http.StatusOK, envelope{
		Success: true,
		Data:    mustMarshal(data),
	})
}

func writeAPIError(w http.ResponseWriter, statusCode int, code, message string) {
	writeEnvelope(w, statusCode, envelope{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
		},
	})
}

func writeEnvelope(w http.ResponseWriter, statusCode int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(env)
}

func mustMarshal(v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}

	return b
}
