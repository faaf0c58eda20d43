package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/items-api/internal/model"
	"github.com/vyrodovalexey/items-api/internal/store"
)

// Error messages returned to clients.
const (
	msgItemNotFound   = "Item not found"
	msgInvalidBody    = "invalid request body"
	msgInternalError  = "internal server error"
	msgListItemsError = "failed to retrieve items"
)

// RESTHandler handles REST API requests for items.
type RESTHandler struct {
	store    store.Store
	notifier Notifier
	logger   *zap.Logger
}

// NewRESTHandler creates a new RESTHandler instance. notifier may be nil.
func NewRESTHandler(s store.Store, notifier Notifier, logger *zap.Logger) *RESTHandler {
	return &RESTHandler{
		store:    s,
		notifier: notifier,
		logger:   logger,
	}
}

// RegisterRoutes registers the REST API routes with the router.
func (h *RESTHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/ready", h.ReadyCheck).Methods(http.MethodGet)
	router.HandleFunc("/items", h.ListItems).Methods(http.MethodGet)
	router.HandleFunc("/items", h.CreateItem).Methods(http.MethodPost)
	router.HandleFunc("/items/{id}", h.GetItem).Methods(http.MethodGet)
	router.HandleFunc("/items/{id}", h.UpdateItem).Methods(http.MethodPut)
	router.HandleFunc("/items/{id}", h.DeleteItem).Methods(http.MethodDelete)
}

// HealthCheck handles GET /health requests.
func (h *RESTHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: Version,
	})
}

// ReadyCheck handles GET /ready requests.
func (h *RESTHandler) ReadyCheck(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, ReadyResponse{Status: "ready"})
}

// ListItems handles GET /items requests.
func (h *RESTHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list items", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, msgListItemsError)
		return
	}

	h.writeJSON(w, http.StatusOK, items)
}

// GetItem handles GET /items/{id} requests.
func (h *RESTHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := store.ParseID(mux.Vars(r)["id"])
	if err != nil {
		h.handleStoreError(w, err, "get item")
		return
	}

	item, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.handleStoreError(w, err, "get item")
		return
	}

	h.writeJSON(w, http.StatusOK, item)
}

// CreateItem handles POST /items requests.
func (h *RESTHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var input model.CreateItemInput
	if err := decodeBody(r.Body, &input, false); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	item, err := h.store.Create(r.Context(), &input)
	if err != nil {
		h.handleStoreError(w, err, "create item")
		return
	}

	h.publish(model.EventItemCreated, *item)
	h.writeJSON(w, http.StatusCreated, item)
}

// UpdateItem handles PUT /items/{id} requests. An empty body updates nothing.
func (h *RESTHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := store.ParseID(mux.Vars(r)["id"])
	if err != nil {
		h.handleStoreError(w, err, "update item")
		return
	}

	var input model.UpdateItemInput
	if err := decodeBody(r.Body, &input, true); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	item, err := h.store.Update(r.Context(), id, &input)
	if err != nil {
		h.handleStoreError(w, err, "update item")
		return
	}

	if !input.IsEmpty() {
		h.publish(model.EventItemUpdated, *item)
	}
	h.writeJSON(w, http.StatusOK, item)
}

// DeleteItem handles DELETE /items/{id} requests.
func (h *RESTHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := store.ParseID(mux.Vars(r)["id"])
	if err != nil {
		h.handleStoreError(w, err, "delete item")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		h.handleStoreError(w, err, "delete item")
		return
	}

	h.publish(model.EventItemDeleted, model.Item{ID: id})
	w.WriteHeader(http.StatusNoContent)
}

// errTrailingData reports a body with content after the first JSON value.
var errTrailingData = errors.New("unexpected data after JSON value")

// decodeBody decodes exactly one JSON value from body into dst.
// An empty body is accepted only when allowEmpty is set.
func decodeBody(body io.Reader, dst any, allowEmpty bool) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return err
		}
		return errTrailingData
	}

	return nil
}

// handleStoreError handles store errors and writes appropriate HTTP responses.
// An unparseable ID is reported exactly like a missing item.
func (h *RESTHandler) handleStoreError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrInvalidID):
		h.writeError(w, http.StatusNotFound, msgItemNotFound)
	case errors.Is(err, model.ErrValidation):
		h.logger.Warn("validation failed", zap.String("operation", operation), zap.Error(err))
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("store operation failed", zap.String("operation", operation), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, msgInternalError)
	}
}

func (h *RESTHandler) publish(eventType string, item model.Item) {
	if h.notifier == nil {
		return
	}
	h.notifier.Publish(model.NewItemEvent(eventType, item))
}

// writeJSON writes a JSON response with the given status code.
func (h *RESTHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, data, h.logger)
}

// writeError writes an error response with the given status code and message.
func (h *RESTHandler) writeError(w http.ResponseWriter, status int, message string) {
	WriteError(w, status, message, h.logger)
}

// WriteJSON writes data as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// WriteError writes a {"error": message} JSON response.
func WriteError(w http.ResponseWriter, status int, message string, logger *zap.Logger) {
	WriteJSON(w, status, model.ErrorResponse{Error: message}, logger)
}
