package handler

import (
	"errors"
	"net/http"

	"clinicbook/internal/bookings/service"
	apperrors "clinicbook/pkg/errors"
	httputil "clinicbook/pkg/http"
	"clinicbook/pkg/logger"
	"clinicbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CreateBookingRequest
	if err := httputil.DecodeJSON(r.Body, &req); err != nil {
		h.writeError(w, "Create", decodeError(err))
		return
	}

	booking, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

// availableFlag is the only value of the legacy available parameter that
// switches the listing path to an availability query.
const availableFlag = "1"

// List serves the listing and, when available=1, the legacy availability
// query on the same path.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	query := r.URL.Query()
	if query.Get("available") == availableFlag {
		h.Availability(w, r, ps)
		return
	}

	bookings, err := h.service.List(r.Context(), model.BookingFilter{
		Resource: query.Get("resource"),
		Date:     query.Get("date"),
	})
	if err != nil {
		h.writeError(w, "List", err)
		return
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	slots, err := h.service.Availability(r.Context(), query.Get("resource"), query.Get("date"))
	if err != nil {
		h.writeError(w, "Availability", err)
		return
	}
	if slots == nil {
		slots = []model.Slot{}
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "operation", "WriteSuccess", "error", err)
	}
}

// Delete accepts the id as a path parameter or, on the legacy route, as
// the id query parameter.
func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		id = r.URL.Query().Get("id")
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) Resources(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, h.service.Resources()); err != nil {
		h.log.Error("failed to write success response", "handler", "Resources", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.List)
	router.DELETE("/api/v1/bookings", h.Delete)
	router.GET("/api/v1/bookings/availability", h.Availability)
	router.DELETE("/api/v1/bookings/id/:id", h.Delete)
	router.GET("/api/v1/resources", h.Resources)
}

func decodeError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperrors.Wrap(err, apperrors.CodeInvalidBody, "Request body too large", http.StatusRequestEntityTooLarge)
	}
	return apperrors.Wrap(err, apperrors.CodeInvalidBody, "Invalid request body", http.StatusBadRequest)
}
