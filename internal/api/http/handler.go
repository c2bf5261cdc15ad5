package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"rental-gateway/internal/domain"
	"rental-gateway/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// GatewayHandler exposes GatewayService over HTTP.
type GatewayHandler struct {
	svc service.GatewayService
}

func NewGatewayHandler(svc service.GatewayService) *GatewayHandler {
	return &GatewayHandler{svc: svc}
}

type reserveRequest struct {
	CarUID   uuid.UUID   `json:"carUid"`
	DateFrom domain.Date `json:"dateFrom"`
	DateTo   domain.Date `json:"dateTo"`
}

func (h *GatewayHandler) ListCars(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := positiveInt(query.Get("page"), "page")
	if err != nil {
		writeError(w, r, err)
		return
	}
	size, err := positiveInt(query.Get("size"), "size")
	if err != nil {
		writeError(w, r, err)
		return
	}
	showAll := false
	if raw := query.Get("showAll"); raw != "" {
		showAll, err = strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: showAll must be a boolean", domain.ErrInvalidRequest))
			return
		}
	}

	result, err := h.svc.ListCars(r.Context(), page, size, showAll)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *GatewayHandler) ListRentals(w http.ResponseWriter, r *http.Request) {
	username, _ := GetUserNameFromContext(r.Context())

	views, err := h.svc.ListRentals(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *GatewayHandler) GetRental(w http.ResponseWriter, r *http.Request) {
	username, _ := GetUserNameFromContext(r.Context())
	rentalUID, err := rentalUIDFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.svc.GetRental(r.Context(), username, rentalUID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *GatewayHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	username, _ := GetUserNameFromContext(r.Context())

	var req reserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: malformed request body: %v", domain.ErrInvalidRequest, err))
		return
	}
	if req.CarUID == uuid.Nil {
		writeError(w, r, fmt.Errorf("%w: carUid is required", domain.ErrInvalidRequest))
		return
	}

	view, err := h.svc.Reserve(r.Context(), username, service.ReserveRequest{
		CarUID:   req.CarUID,
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *GatewayHandler) Finish(w http.ResponseWriter, r *http.Request) {
	username, _ := GetUserNameFromContext(r.Context())
	rentalUID, err := rentalUIDFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.svc.Finish(r.Context(), username, rentalUID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GatewayHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	username, _ := GetUserNameFromContext(r.Context())
	rentalUID, err := rentalUIDFromPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.svc.Cancel(r.Context(), username, rentalUID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health is a liveness probe. Downstream health is reported over gRPC.
func (h *GatewayHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func rentalUIDFromPath(r *http.Request) (uuid.UUID, error) {
	raw := mux.Vars(r)["rentalUid"]
	uid, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid rental uid %q", domain.ErrInvalidRequest, raw)
	}
	return uid, nil
}

func positiveInt(raw, name string) (int, error) {
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", domain.ErrInvalidRequest, name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidRequest, name)
	}
	return v, nil
}
