package api

import (
	"net/http"

	"github.com/example/ec-fulfillment/internal/api/middleware"
	"github.com/example/ec-fulfillment/internal/command"
	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/example/ec-fulfillment/internal/readmodel"
	"github.com/gin-gonic/gin"
)

// Profile Handlers

func (h *Handlers) GetProfile(c *gin.Context) {
	p, err := h.query.GetProfile(c.Request.Context(), middleware.Actor(c).AccountID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handlers) CreateProfile(c *gin.Context) {
	var cmd command.CreateProfile
	if !bindJSON(c, &cmd) {
		return
	}
	cmd.AccountID = middleware.Actor(c).AccountID
	p, err := h.cmd.CreateProfile(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, readmodel.Profile(p))
}

func (h *Handlers) AddAddress(c *gin.Context) {
	var cmd command.AddAddress
	if !bindJSON(c, &cmd) {
		return
	}
	cmd.Actor = middleware.Actor(c)
	p, err := h.cmd.AddAddress(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, readmodel.Profile(p))
}

func (h *Handlers) SetDefaultAddress(c *gin.Context) {
	p, err := h.cmd.SetDefaultAddress(c.Request.Context(), command.SetDefaultAddress{
		Actor:     middleware.Actor(c),
		AddressID: shared.AddressID(c.Param("id")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, readmodel.Profile(p))
}
