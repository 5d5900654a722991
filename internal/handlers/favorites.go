package handlers

import (
	"net/http"

	"github.com/diewo77/go-sourcing/internal/httpx"
	"github.com/diewo77/go-sourcing/internal/services"
)

type FavoritesHandler struct {
	favorites *services.FavoritesService
}

func NewFavoritesHandler(fs *services.FavoritesService) *FavoritesHandler {
	return &FavoritesHandler{favorites: fs}
}

type toggleRequest struct {
	ProductName string `json:"productName"`
}

func (h *FavoritesHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	res, err := h.favorites.Toggle(r.Context(), principal(r).Email, req.ProductName)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.favorites.Resolve(r.Context(), principal(r).Email)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}
