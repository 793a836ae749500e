package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"

	"github.com/example/inventory-api/internal/auth"
	"github.com/example/inventory-api/internal/core/domain"
	"github.com/example/inventory-api/internal/core/service"
)

type HTTPHandler struct {
	inventory *service.InventoryService
	auth      *service.AuthService
}

func NewHTTPHandler(inventory *service.InventoryService, authService *service.AuthService) *HTTPHandler {
	return &HTTPHandler{inventory: inventory, auth: authService}
}

// Routes builds the full route table. Item routes sit behind the
// bearer-token middleware; registration and token endpoints do not.
func (h *HTTPHandler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/register/{$}", h.Register)
	mux.HandleFunc("POST /login/{$}", h.Login)
	mux.HandleFunc("POST /api/token/refresh/{$}", h.RefreshToken)
	mux.HandleFunc("GET /health", h.HealthCheck)

	mux.Handle("POST /items/{$}", h.requireAuth(http.HandlerFunc(h.CreateItem)))
	mux.Handle("GET /items/{id}/{$}", h.requireAuth(http.HandlerFunc(h.RetrieveItem)))
	mux.Handle("PUT /item/{id}/update/{$}", h.requireAuth(http.HandlerFunc(h.UpdateItem)))
	mux.Handle("DELETE /item/{id}/delete/{$}", h.requireAuth(http.HandlerFunc(h.DeleteItem)))

	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// itemResponse is the wire representation of an item. Price is a fixed
// 2-decimal string so values round-trip exactly.
type itemResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Quantity    *int      `json:"quantity"`
	Price       string    `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toItemResponse(item *domain.InventoryItem) itemResponse {
	return itemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Quantity:    item.Quantity,
		Price:       item.Price.StringFixed(2),
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.auth.Register(r.Context(), in)
	if err != nil {
		var verrs validation.Errors
		switch {
		case errors.As(err, &verrs):
			writeJSON(w, http.StatusBadRequest, verrs)
		case errors.Is(err, service.ErrUsernameTaken):
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"username": "a user with that username already exists",
			})
		default:
			log.Error().Err(err).Msg("user registration failed")
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
		return
	}

	log.Info().Str("username", user.Username).Msg("user registered")
	writeJSON(w, http.StatusCreated, messageResponse{Message: "User registered successfully"})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	pair, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{
				Error: "no active account found with the given credentials",
			})
			return
		}
		log.Error().Err(err).Msg("login failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

func (h *HTTPHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	pair, err := h.auth.Refresh(r.Context(), req.Refresh)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "token is invalid or expired"})
			return
		}
		log.Error().Err(err).Msg("token refresh failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

func (h *HTTPHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var in service.ItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	item, err := h.inventory.Create(r.Context(), in)
	if err != nil {
		h.writeItemError(w, err)
		return
	}

	log.Info().
		Str("name", item.Name).
		Int64("item_id", item.ID).
		Str("user", ClaimsFromContext(r.Context()).Username).
		Msg("item created")
	writeJSON(w, http.StatusCreated, toItemResponse(item))
}

func (h *HTTPHandler) RetrieveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	item, cached, err := h.inventory.Retrieve(r.Context(), id)
	if err != nil {
		h.writeItemError(w, err)
		return
	}

	if cached {
		w.Header().Set("X-Cache", "HIT")
		log.Info().Int64("item_id", id).Msg("cache hit")
	} else {
		w.Header().Set("X-Cache", "MISS")
		log.Info().Int64("item_id", id).Msg("item retrieved and cached")
	}
	writeJSON(w, http.StatusOK, toItemResponse(item))
}

func (h *HTTPHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	var in service.ItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	item, err := h.inventory.Update(r.Context(), id, in)
	if err != nil {
		h.writeItemError(w, err)
		return
	}

	log.Info().Str("name", item.Name).Int64("item_id", id).Msg("item updated")
	writeJSON(w, http.StatusOK, toItemResponse(item))
}

func (h *HTTPHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	if err := h.inventory.Delete(r.Context(), id); err != nil {
		h.writeItemError(w, err)
		return
	}

	log.Info().
		Int64("item_id", id).
		Str("user", ClaimsFromContext(r.Context()).Username).
		Msg("item deleted")
	writeJSON(w, http.StatusOK, messageResponse{Message: "Item deleted successfully"})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// itemID parses the {id} path segment. Non-numeric ids get a 404, same
// as unknown ones.
func itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Item not found."})
		return 0, false
	}
	return id, true
}

func (h *HTTPHandler) writeItemError(w http.ResponseWriter, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusBadRequest, verrs)
	case errors.Is(err, service.ErrNameTaken):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Item with this name already exists."})
	case errors.Is(err, service.ErrItemNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Item not found."})
	default:
		log.Error().Err(err).Msg("inventory operation failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
