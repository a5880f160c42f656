package api

import (
	"net/http"

	"github.com/example/ec-fulfillment/internal/api/middleware"
	"github.com/example/ec-fulfillment/internal/command"
	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/example/ec-fulfillment/internal/query"
	"github.com/example/ec-fulfillment/internal/readmodel"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	cmd   *command.Handler
	query *query.Handler
}

func NewHandlers(cmd *command.Handler, query *query.Handler) *Handlers {
	return &Handlers{cmd: cmd, query: query}
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Product Handlers

func (h *Handlers) ListProducts(c *gin.Context) {
	products, err := h.query.ListProducts(c.Request.Context(), shared.CategoryID(c.Query("category_id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handlers) GetProduct(c *gin.Context) {
	p, err := h.query.GetProduct(c.Request.Context(), shared.ProductID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handlers) CreateProduct(c *gin.Context) {
	var cmd command.CreateProduct
	if !bindJSON(c, &cmd) {
		return
	}
	res, err := h.cmd.CreateProduct(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, readmodel.Product(res.Product, &res.Inventory))
}

func (h *Handlers) GetInventory(c *gin.Context) {
	inv, err := h.query.GetInventory(c.Request.Context(), shared.ProductID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *Handlers) AdjustInventory(c *gin.Context) {
	var cmd command.AdjustInventory
	if !bindJSON(c, &cmd) {
		return
	}
	cmd.ProductID = shared.ProductID(c.Param("id"))
	inv, err := h.cmd.AdjustInventory(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, readmodel.Inventory(inv))
}

// Cart Handlers

func (h *Handlers) GetCart(c *gin.Context) {
	cart, err := h.query.GetCart(c.Request.Context(), middleware.Actor(c).AccountID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *Handlers) AddToCart(c *gin.Context) {
	var cmd command.AddToCart
	if !bindJSON(c, &cmd) {
		return
	}
	cmd.AccountID = middleware.Actor(c).AccountID
	cart, err := h.cmd.AddToCart(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, readmodel.Cart(cart))
}

func (h *Handlers) UpdateCartItem(c *gin.Context) {
	var cmd command.UpdateCartItem
	if !bindJSON(c, &cmd) {
		return
	}
	cmd.AccountID = middleware.Actor(c).AccountID
	cmd.ProductID = shared.ProductID(c.Param("productId"))
	cart, err := h.cmd.UpdateCartItem(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, readmodel.Cart(cart))
}

func (h *Handlers) RemoveFromCart(c *gin.Context) {
	cart, err := h.cmd.RemoveFromCart(c.Request.Context(), command.RemoveFromCart{
		AccountID: middleware.Actor(c).AccountID,
		ProductID: shared.ProductID(c.Param("productId")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, readmodel.Cart(cart))
}

func (h *Handlers) ClearCart(c *gin.Context) {
	cart, err := h.cmd.ClearCart(c.Request.Context(), command.ClearCart{AccountID: middleware.Actor(c).AccountID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, readmodel.Cart(cart))
}

// Order Handlers

func (h *Handlers) PlaceOrder(c *gin.Context) {
	var cmd command.PlaceOrder
	// The body is optional: the default address is used without one.
	if c.Request.ContentLength != 0 && !bindJSON(c, &cmd) {
		return
	}
	cmd.AccountID = middleware.Actor(c).AccountID
	o, err := h.cmd.PlaceOrder(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, readmodel.Order(o, nil, nil))
}

func (h *Handlers) ListOrders(c *gin.Context) {
	orders, err := h.query.ListOrders(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handlers) ListOrdersByStatus(c *gin.Context) {
	status := c.Query("status")
	if status == "" {
		respondBadRequest(c, "status query parameter is required")
		return
	}
	orders, err := h.query.ListOrdersByStatus(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handlers) GetOrder(c *gin.Context) {
	o, err := h.query.GetOrder(c.Request.Context(), middleware.Actor(c), shared.OrderID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handlers) CancelOrder(c *gin.Context) {
	var cmd command.CancelOrder
	if !bindJSON(c, &cmd) {
		return
	}
	cmd.Actor = middleware.Actor(c)
	cmd.OrderID = shared.OrderID(c.Param("id"))
	o, err := h.cmd.CancelOrder(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, readmodel.Order(o, nil, nil))
}

func (h *Handlers) CompleteOrder(c *gin.Context) {
	o, err := h.cmd.CompleteOrder(c.Request.Context(), command.CompleteOrder{
		Actor:   middleware.Actor(c),
		OrderID: shared.OrderID(c.Param("id")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, readmodel.Order(o, nil, nil))
}

// Payment Handlers

func (h *Handlers) InitiatePayment(c *gin.Context) {
	var cmd command.InitiatePayment
	if !bindJSON(c, &cmd) {
		return
	}
	cmd.Actor = middleware.Actor(c)
	p, err := h.cmd.InitiatePayment(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, readmodel.Payment(p))
}

func (h *Handlers) GetPayment(c *gin.Context) {
	p, err := h.query.GetPayment(c.Request.Context(), middleware.Actor(c), shared.PaymentID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handlers) AuthorizePayment(c *gin.Context) {
	var cmd command.AuthorizePayment
	if !bindJSON(c, &cmd) {
		return
	}
	cmd.Actor = middleware.Actor(c)
	cmd.PaymentID = shared.PaymentID(c.Param("id"))
	p, err := h.cmd.AuthorizePayment(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, readmodel.Payment(p))
}

func (h *Handlers) CapturePayment(c *gin.Context) {
	var cmd command.CapturePayment
	if !bindJSON(c, &cmd) {
		return
	}
	cmd.Actor = middleware.Actor(c)
	cmd.PaymentID = shared.PaymentID(c.Param("id"))
	p, err := h.cmd.CapturePayment(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, readmodel.Payment(p))
}

func (h *Handlers) FailPayment(c *gin.Context) {
	var cmd command.FailPayment
	if !bindJSON(c, &cmd) {
		return
	}
	cmd.Actor = middleware.Actor(c)
	cmd.PaymentID = shared.PaymentID(c.Param("id"))
	p, err := h.cmd.FailPayment(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, readmodel.Payment(p))
}

func (h *Handlers) RefundPayment(c *gin.Context) {
	var cmd command.RefundPayment
	if !bindJSON(c, &cmd) {
		return
	}
	cmd.Actor = middleware.Actor(c)
	cmd.PaymentID = shared.PaymentID(c.Param("id"))
	p, err := h.cmd.RefundPayment(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, readmodel.Payment(p))
}

// Shipment Handlers

func (h *Handlers) CreateShipment(c *gin.Context) {
	var cmd command.CreateShipment
	if !bindJSON(c, &cmd) {
		return
	}
	sh, err := h.cmd.CreateShipment(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, readmodel.Shipment(sh))
}

func (h *Handlers) GetShipment(c *gin.Context) {
	sh, err := h.query.GetShipment(c.Request.Context(), middleware.Actor(c), shared.ShipmentID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sh)
}

func (h *Handlers) UpdateShipmentStatus(c *gin.Context) {
	var cmd command.UpdateShipmentStatus
	if !bindJSON(c, &cmd) {
		return
	}
	cmd.ShipmentID = shared.ShipmentID(c.Param("id"))
	sh, err := h.cmd.UpdateShipmentStatus(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, readmodel.Shipment(sh))
}

func (h *Handlers) MarkDelivered(c *gin.Context) {
	var cmd command.MarkDelivered
	if c.Request.ContentLength != 0 && !bindJSON(c, &cmd) {
		return
	}
	cmd.ShipmentID = shared.ShipmentID(c.Param("id"))
	sh, err := h.cmd.MarkDelivered(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, readmodel.Shipment(sh))
}
