package handlers

import (
	"net/http"

	"github.com/diewo77/go-sourcing/internal/httpx"
	"github.com/diewo77/go-sourcing/internal/services"
)

type CategoryHandler struct {
	categories *services.CategoryService
}

func NewCategoryHandler(cs *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: cs}
}

type categoryRequest struct {
	Name          string   `json:"name"`
	SubCategories []string `json:"subCategories"`
}

func (h *CategoryHandler) AddOrMerge(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	c, err := h.categories.AddOrMerge(r.Context(), req.Name, req.SubCategories)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.List(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cats)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUint(r, "categoryId")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.categories.Delete(r.Context(), int64(id)); err != nil {
		httpx.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
