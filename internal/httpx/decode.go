package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"maps"
	"net/http"
	"slices"
	"strconv"

	"procurement-be/internal/access"
	"procurement-be/internal/apperr"
	"procurement-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// decodeJSON fills dst from the request body and returns the names of the
// top-level fields the client sent, sorted.
func decodeJSON(r *http.Request, dst any) ([]string, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, ErrMalformedJSON
	}
	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return nil, apperr.Newf(apperr.KindValidation, "Invalid value for %q.", typeErr.Field)
		}
		return nil, ErrMalformedJSON
	}
	return slices.Sorted(maps.Keys(raw)), nil
}

func pathID(r *http.Request) (int64, error) {
	id, ok := utils.ParseID(chi.URLParam(r, "id"))
	if !ok {
		return 0, ErrInvalidID
	}
	return id, nil
}

// queryID parses an optional positive id query parameter.
func queryID(r *http.Request, name string) (*int64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	id, ok := utils.ParseID(v)
	if !ok {
		return nil, apperr.Newf(apperr.KindValidation, "Invalid value for %q.", name)
	}
	return &id, nil
}

func queryInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}

func principal(r *http.Request) access.Principal {
	p, _ := access.PrincipalFrom(r.Context())
	return p
}

// list is the envelope for collection responses.
type list[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

func newList[T any](items []T) list[T] {
	return list[T]{Count: len(items), Results: items}
}
