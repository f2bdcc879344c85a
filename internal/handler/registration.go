package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventportal/internal/apperr"
	"eventportal/internal/auth"
	"eventportal/internal/proof"
)

// multipartSlack allows for form boundaries and headers around the file.
const multipartSlack = 64 << 10

// Register accepts a multipart form with the proof screenshot in "proof".
func (h *Handler) Register(c *gin.Context) {
	id, valid := h.idParam(c, "eventId")
	if !valid {
		return
	}
	up, err := readProof(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	reg, err := h.svc.Register(c.Request.Context(), auth.SessionFrom(c), id, up)
	if err != nil {
		h.fail(c, err)
		return
	}
	succeed(c, http.StatusCreated, gin.H{"message": "Registration successful", "registration": reg})
}

// readProof returns nil when the request carries no proof file.
func readProof(c *gin.Context) (*proof.Upload, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, proof.MaxSize+multipartSlack)
	fh, err := c.FormFile("proof")
	switch {
	case err == nil:
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return nil, nil
	case isMaxBytes(err):
		return nil, apperr.ErrProofTooLarge
	default:
		return nil, apperr.Wrap(errBadBody, err)
	}
	if fh.Size > proof.MaxSize {
		return nil, apperr.ErrProofTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrInternal, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, proof.MaxSize+1))
	if err != nil {
		return nil, apperr.Wrap(errBadBody, err)
	}
	return &proof.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (h *Handler) MyRegistrations(c *gin.Context) {
	regs, err := h.svc.MyRegistrations(c.Request.Context(), auth.SessionFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	succeed(c, http.StatusOK, gin.H{"registrations": regs})
}

func (h *Handler) CheckRegistration(c *gin.Context) {
	id, valid := h.idParam(c, "eventId")
	if !valid {
		return
	}
	registered, err := h.svc.IsRegistered(c.Request.Context(), auth.SessionFrom(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	succeed(c, http.StatusOK, gin.H{"registered": registered})
}

func (h *Handler) EventRegistrations(c *gin.Context) {
	id, valid := h.idParam(c, "eventId")
	if !valid {
		return
	}
	regs, err := h.svc.EventRegistrations(c.Request.Context(), auth.SessionFrom(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	succeed(c, http.StatusOK, gin.H{"registrations": regs, "count": len(regs)})
}
