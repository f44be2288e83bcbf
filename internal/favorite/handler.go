package favorite

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"agromarket/internal/common"
)

type FavoriteHandler struct {
	service FavoriteService
}

func NewFavoriteHandler(service FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

func (h *FavoriteHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/products/{id}/favorite", h.Toggle).Methods(http.MethodPost)
	r.HandleFunc("/products/{id}/favorite", h.Status).Methods(http.MethodGet)
	r.HandleFunc("/favorites", h.List).Methods(http.MethodGet)
}

type toggleResponse struct {
	ProductID string `json:"product_id"`
	Favorited bool   `json:"favorited"`
}

type favoriteResponse struct {
	ProductID string    `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *FavoriteHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.Unauthenticated("missing user identity"))
		return
	}
	productID := mux.Vars(r)["id"]

	favorited, err := h.service.Toggle(r.Context(), userID, productID)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, toggleResponse{ProductID: productID, Favorited: favorited})
}

func (h *FavoriteHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.Unauthenticated("missing user identity"))
		return
	}
	productID := mux.Vars(r)["id"]

	favorited, err := h.service.IsFavorite(r.Context(), userID, productID)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, toggleResponse{ProductID: productID, Favorited: favorited})
}

func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.Unauthenticated("missing user identity"))
		return
	}

	favorites, err := h.service.ListFavorites(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	out := make([]favoriteResponse, 0, len(favorites))
	for _, f := range favorites {
		out = append(out, favoriteResponse{ProductID: f.ProductID, CreatedAt: f.CreatedAt})
	}

	common.WriteJSON(w, http.StatusOK, out)
}
