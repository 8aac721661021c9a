package api

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Error kinds surfaced in failure responses, alongside a human-readable
// message.
const (
	kindValidation = "validation"
	kindNotFound   = "not_found"
	kindConflict   = "conflict"
	kindUpstream   = "upstream_unavailable"
	kindStore      = "store"
)

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeError(rw http.ResponseWriter, status int, kind, msg string) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(errorBody{Error: msg, Kind: kind})
}

func writeJSON(rw http.ResponseWriter, status int, body interface{}, log *logrus.Logger) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	err := json.NewEncoder(rw).Encode(body)
	if err != nil {
		log.WithFields(logrus.Fields{
			"err": err,
		}).Error("encoding json body")
	}
}
