// Package handlers exposes the marketplace services as a JSON API.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/go-sourcing/internal/apperr"
	"github.com/diewo77/go-sourcing/internal/auth"
)

func principal(r *http.Request) auth.Principal {
	p, _ := auth.PrincipalFromContext(r.Context())
	return p
}

func pathUint(r *http.Request, name string) (uint64, error) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid_path", map[string]string{name: "invalid"})
	}
	return id, nil
}
