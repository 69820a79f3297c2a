package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
)

type Server struct {
	store   *DecodeStore
	service *DecodeService
	clock   func() time.Time
}

func NewServer(store *DecodeStore, service *DecodeService) *Server {
	if store == nil {
		store = NewDecodeStore()
	}
	return &Server{
		store:   store,
		service: service,
		clock:   time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/decodes", s.handleCreateDecode)
	e.GET("/v1/decodes", s.handleListDecodes)
	e.GET("/v1/decodes/:id", s.handleGetDecode)
	e.DELETE("/v1/decodes/:id", s.handleDeleteDecode)
}

func (s *Server) handleCreateDecode(c *echo.Context) error {
	if s.service == nil {
		return writeError(c, http.StatusInternalServerError, "server_error", "decode service not configured", "", "")
	}
	req, err := decodeJSON[DecodeRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	outcome, cfg, err := s.service.Run(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			return writeBadRequest(c, err.Error())
		}
		return writeError(c, http.StatusUnprocessableEntity, "decode_error", err.Error(), "", "")
	}

	resp := DecodeResponse{
		ID:         outcome.ID,
		Object:     "decode",
		CreatedAt:  s.clock().Unix(),
		BeamSize:   cfg.BeamSize,
		Mode:       cfg.Mode.String(),
		Tokens:     outcome.Best.Tokens(),
		Text:       outcome.Text,
		Score:      outcome.Score,
		Steps:      outcome.Steps,
		DurationMS: outcome.Duration.Milliseconds(),
	}
	s.store.Put(resp)
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetDecode(c *echo.Context) error {
	id := c.Param("id")
	resp, ok := s.store.Get(id)
	if !ok {
		return writeNotFound(c, "decode not found: "+id)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDeleteDecode(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "decode not found: "+id)
	}
	return c.JSON(http.StatusOK, DeleteDecodeResponse{
		ID:      id,
		Object:  "decode.deleted",
		Deleted: true,
	})
}

func (s *Server) handleListDecodes(c *echo.Context) error {
	return c.JSON(http.StatusOK, DecodeListResponse{
		Object: "list",
		Data:   s.store.List(),
	})
}
