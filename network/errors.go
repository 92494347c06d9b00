package network

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"brawlers/battle"
	"brawlers/cats"
	"brawlers/ens"
	"brawlers/protocol"
	"brawlers/store"
)

// apiError is what the HTTP API and error envelopes both carry.
type apiError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

var errorTable = []struct {
	err    error
	status int
	code   string
}{
	{cats.ErrNoOwner, http.StatusUnauthorized, protocol.CodeUnauthorized},
	{store.ErrNoOwner, http.StatusUnauthorized, protocol.CodeUnauthorized},
	{cats.ErrNameRequired, http.StatusBadRequest, "NAME_REQUIRED"},
	{cats.ErrNameTooLong, http.StatusBadRequest, "NAME_TOO_LONG"},
	{cats.ErrUnknownColor, http.StatusBadRequest, "UNKNOWN_COLOR"},
	{cats.ErrColorLocked, http.StatusForbidden, "COLOR_LOCKED"},
	{cats.ErrNotOwner, http.StatusForbidden, "NOT_OWNER"},
	{cats.ErrNoFighter, http.StatusConflict, protocol.CodeNoFighter},
	{cats.ErrNotFound, http.StatusNotFound, protocol.CodeNotFound},
	{store.ErrUnknownItem, http.StatusNotFound, "UNKNOWN_ITEM"},
	{store.ErrAlreadyOwned, http.StatusConflict, "ALREADY_OWNED"},
	{store.ErrInsufficientFunds, http.StatusPaymentRequired, "INSUFFICIENT_FUNDS"},
	{store.ErrNotOwned, http.StatusForbidden, "NOT_OWNED"},
	{ens.ErrInvalidQuery, http.StatusBadRequest, protocol.CodeBadRequest},
	{ens.ErrUnresolved, http.StatusNotFound, protocol.CodeUnresolved},
	{battle.ErrNotResolved, http.StatusConflict, protocol.CodeNotResolved},
	{battle.ErrFinished, http.StatusConflict, protocol.CodeNoBattle},
}

// classify maps err onto a status and code. Anything unrecognised came from
// storage or the chain and is reported as an upstream failure.
func classify(err error) apiError {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return apiError{Status: e.status, Code: e.code, Message: err.Error()}
		}
	}
	return apiError{Status: http.StatusBadGateway, Code: protocol.CodeInternal, Message: "upstream failure"}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ae := classify(err)
	if ae.Status == http.StatusBadGateway {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, ae.Status, ae)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, apiError{Code: protocol.CodeBadRequest, Message: msg})
}
