package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"eventportal/internal/auth"
	"eventportal/internal/portal"
)

// ListEvents returns all events. Query params: search, open=true to hide
// events whose deadline has passed.
func (h *Handler) ListEvents(c *gin.Context) {
	open, _ := strconv.ParseBool(c.Query("open"))
	events, err := h.svc.ListEvents(c.Request.Context(), portal.EventFilter{
		Search:   c.Query("search"),
		OpenOnly: open,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	succeed(c, http.StatusOK, gin.H{"events": events})
}

func (h *Handler) GetEvent(c *gin.Context) {
	id, valid := h.idParam(c, "id")
	if !valid {
		return
	}
	e, err := h.svc.GetEvent(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	succeed(c, http.StatusOK, gin.H{"event": e})
}

func (h *Handler) MyEvents(c *gin.Context) {
	events, err := h.svc.MyEvents(c.Request.Context(), auth.SessionFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	succeed(c, http.StatusOK, gin.H{"events": events})
}

func (h *Handler) CreateEvent(c *gin.Context) {
	var in portal.EventInput
	if !h.bindJSON(c, &in) {
		return
	}
	e, err := h.svc.CreateEvent(c.Request.Context(), auth.SessionFrom(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	succeed(c, http.StatusCreated, gin.H{"message": "Event added successfully", "event": e})
}

func (h *Handler) UpdateEvent(c *gin.Context) {
	id, valid := h.idParam(c, "id")
	if !valid {
		return
	}
	var in portal.EventInput
	if !h.bindJSON(c, &in) {
		return
	}
	e, err := h.svc.UpdateEvent(c.Request.Context(), auth.SessionFrom(c), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	succeed(c, http.StatusOK, gin.H{"message": "Event updated successfully", "event": e})
}

func (h *Handler) DeleteEvent(c *gin.Context) {
	id, valid := h.idParam(c, "id")
	if !valid {
		return
	}
	if err := h.svc.DeleteEvent(c.Request.Context(), auth.SessionFrom(c), id); err != nil {
		h.fail(c, err)
		return
	}
	succeed(c, http.StatusOK, gin.H{"message": "Event deleted successfully"})
}
