package server

import (
	"encoding/json"
	"errors"

	"github.com/angelware-net/spectre/internal/browsercookies"
	"github.com/angelware-net/spectre/internal/gamelog"
	"github.com/angelware-net/spectre/pkg/auth"
	"github.com/angelware-net/spectre/pkg/catalog"
	"github.com/angelware-net/spectre/pkg/cookiestore"
	"github.com/angelware-net/spectre/pkg/kvstore"
	"github.com/angelware-net/spectre/pkg/vrchat"
	"github.com/creachadair/jrpc2"
)

// JSON-RPC error codes, one per error class. The message is always the
// plain error text.
const (
	codeUnknownEndpoint = jrpc2.Code(-32001)
	codeInvalidURL      = jrpc2.Code(-32010)
	codeTransport       = jrpc2.Code(-32011)
	codeHTTPStatus      = jrpc2.Code(-32012)
	codeStore           = jrpc2.Code(-32013)
	codeSerialization   = jrpc2.Code(-32014)
	codePersist         = jrpc2.Code(-32015)
	codeNoSession       = jrpc2.Code(-32016)
	codeInternal        = jrpc2.Code(-32603)
	codeInvalidParams   = jrpc2.Code(-32602)
)

type statusData struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body,omitempty"`
}

type persistData struct {
	Key    string `json:"key"`
	Cookie string `json:"cookie,omitempty"`
	Body   string `json:"body,omitempty"`
}

// rpcError maps err to a JSON-RPC error carrying the class code.
func rpcError(err error) error {
	var (
		persistErr *auth.PersistError
		statusErr  *vrchat.HTTPStatusError
		transErr   *vrchat.TransportError
		serErr     *vrchat.SerializationError
		storeErr   *kvstore.StoreError
	)
	e := &jrpc2.Error{Code: codeInternal, Message: err.Error()}
	switch {
	case errors.Is(err, vrchat.ErrInvalidURL):
		e.Code = codeInvalidURL
	case errors.As(err, &persistErr):
		e.Code = codePersist
		e.Data, _ = json.Marshal(persistData{Key: persistErr.Key, Cookie: persistErr.Cookie, Body: persistErr.Body})
	case errors.Is(err, browsercookies.ErrNoSession),
		errors.Is(err, browsercookies.ErrNoBrowserStore):
		e.Code = codeNoSession
	case errors.Is(err, catalog.ErrUnknownEndpoint):
		e.Code = codeUnknownEndpoint
	case errors.Is(err, catalog.ErrMissingParam),
		errors.Is(err, auth.ErrEmptyUsername),
		errors.Is(err, gamelog.ErrInvalidType),
		errors.Is(err, kvstore.ErrEmptyKey),
		errors.Is(err, cookiestore.ErrUnknownKey):
		e.Code = codeInvalidParams
	case errors.As(err, &statusErr):
		e.Code = codeHTTPStatus
		e.Data, _ = json.Marshal(statusData{StatusCode: statusErr.StatusCode, Body: statusErr.Body})
	case errors.As(err, &transErr):
		e.Code = codeTransport
	case errors.As(err, &serErr):
		e.Code = codeSerialization
	case errors.As(err, &storeErr):
		e.Code = codeStore
	}
	return e
}
