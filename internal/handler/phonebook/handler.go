package phonebook

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/phonebook/internal/middleware"
	"github.com/zhouzirui/phonebook/internal/model/contact"
	"github.com/zhouzirui/phonebook/pkg/utils"
)

// Handler phonebook服务的HTTP处理器
type Handler struct {
	contacts contact.Store
}

// New 创建phonebook处理器
func New(contacts contact.Store) *Handler {
	return &Handler{contacts: contacts}
}

// RegisterRoutes 注册phonebook相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/phonebook", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.contacts.List(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	raw, id := contactID(r)

	c, err := h.contacts.Get(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, r, err, fmt.Sprintf("contact with id %s not found", raw))
		return
	}

	utils.RespondJSON(w, http.StatusOK, c)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	in := decodeInput(r)

	c, err := h.contacts.Create(r.Context(), in)
	if err != nil {
		h.respondStoreError(w, r, err, "")
		return
	}

	middleware.LoggerFrom(r.Context()).Info("contact created", "id", c.ID)
	utils.RespondJSON(w, http.StatusCreated, c)
}

// handleUpdate answers 201 like the create route; clients rely on it.
func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	raw, id := contactID(r)
	in := decodeInput(r)

	c, err := h.contacts.Update(r.Context(), id, in)
	if err != nil {
		h.respondStoreError(w, r, err, fmt.Sprintf("Contact with id %s not found", raw))
		return
	}

	middleware.LoggerFrom(r.Context()).Info("contact updated", "id", c.ID)
	utils.RespondJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	raw, id := contactID(r)

	c, err := h.contacts.Delete(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, r, err, fmt.Sprintf("contact with id %s not found", raw))
		return
	}

	middleware.LoggerFrom(r.Context()).Info("contact deleted", "id", c.ID)
	utils.RespondJSON(w, http.StatusAccepted, c)
}

// respondStoreError maps store errors onto the HTTP error payloads.
// Missing input is answered with 204 and a body; net/http drops the body.
func (h *Handler) respondStoreError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	logger := middleware.LoggerFrom(r.Context())

	switch {
	case errors.Is(err, contact.ErrNotFound):
		logger.Debug("contact lookup failed", "err", err)
		utils.RespondError(w, http.StatusNotFound, notFound)
	case errors.Is(err, contact.ErrInvalidInput):
		logger.Debug("contact rejected", "err", err)
		utils.RespondError(w, http.StatusNoContent, "Missing information")
	default:
		logger.Error("contact store failed", "err", err)
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}

// contactID returns the {id} segment as echoed in error messages and its
// numeric value. Any whole number is accepted, so "2.0" and "1e0" address
// contacts 2 and 1. Anything else echoes the raw segment and becomes 0, which
// no contact ever holds.
func contactID(r *http.Request) (string, int) {
	raw := chi.URLParam(r, "id")
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return raw, 0
	}
	id := int(f)
	return strconv.Itoa(id), id
}

// decodeInput reads the request body. Fields of the wrong JSON type stay
// empty while the well-typed ones are kept; a body that is not JSON counts as
// empty.
func decodeInput(r *http.Request) contact.Input {
	var in contact.Input
	err := json.NewDecoder(r.Body).Decode(&in)
	if err == nil {
		return in
	}

	middleware.LoggerFrom(r.Context()).Debug("invalid request body", "err", err)
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return in
	}
	return contact.Input{}
}
