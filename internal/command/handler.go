// Package command runs the write-side use cases and publishes the events
// they emit.
package command

import (
	"context"

	"github.com/example/ec-fulfillment/internal/apperr"
	"github.com/example/ec-fulfillment/internal/domain/account"
	"github.com/example/ec-fulfillment/internal/domain/aggregate"
	"github.com/example/ec-fulfillment/internal/domain/cart"
	"github.com/example/ec-fulfillment/internal/domain/category"
	"github.com/example/ec-fulfillment/internal/domain/factory"
	"github.com/example/ec-fulfillment/internal/domain/inventory"
	"github.com/example/ec-fulfillment/internal/domain/order"
	"github.com/example/ec-fulfillment/internal/domain/payment"
	"github.com/example/ec-fulfillment/internal/domain/profile"
	"github.com/example/ec-fulfillment/internal/domain/promotion"
	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/example/ec-fulfillment/internal/domain/shipment"
	"github.com/example/ec-fulfillment/internal/infrastructure/eventbus"
	"github.com/example/ec-fulfillment/internal/infrastructure/repository"
	"github.com/example/ec-fulfillment/internal/logger"
	"github.com/example/ec-fulfillment/internal/workflow"
	"github.com/example/ec-fulfillment/internal/workflow/accountflow"
	"github.com/example/ec-fulfillment/internal/workflow/cartflow"
	"github.com/example/ec-fulfillment/internal/workflow/catalogflow"
	"github.com/example/ec-fulfillment/internal/workflow/orderflow"
	"github.com/example/ec-fulfillment/internal/workflow/paymentflow"
	"github.com/example/ec-fulfillment/internal/workflow/shipmentflow"
)

type Deps struct {
	Repos     *repository.Set
	Factory   *factory.Factory
	Hasher    accountflow.PasswordHasher
	Pricing   orderflow.Pricing
	Publisher eventbus.Publisher
	Logger    *logger.Logger
}

type Handler struct {
	publisher eventbus.Publisher
	log       *logger.Logger

	getCart        *cartflow.GetOrCreateCart
	addItem        *cartflow.AddItemToCart
	removeItem     *cartflow.RemoveCartItem
	updateQuantity *cartflow.UpdateCartItemQuantity
	clearCart      *cartflow.ClearCart

	placeOrder    *orderflow.CreateOrderFromCart
	cancelOrder   *orderflow.CancelOrder
	completeOrder *orderflow.CompleteOrder

	initiatePayment  *paymentflow.InitiatePayment
	authorizePayment *paymentflow.AuthorizePayment
	capturePayment   *paymentflow.CapturePayment
	failPayment      *paymentflow.FailPayment
	refundPayment    *paymentflow.RefundPayment

	createShipment *shipmentflow.CreateShipment
	updateShipment *shipmentflow.UpdateShipmentStatus
	markDelivered  *shipmentflow.MarkShipmentDelivered

	register      *accountflow.RegisterAccount
	authenticate  *accountflow.AuthenticateAccount
	createProfile *accountflow.CreateUserProfile
	addAddress    *accountflow.AddAddress
	setDefault    *accountflow.SetDefaultAddress

	createProduct   *catalogflow.CreateProduct
	createCategory  *catalogflow.CreateCategory
	adjustInventory *catalogflow.AdjustInventory
	createPromotion *catalogflow.CreatePromotion
}

func NewHandler(d Deps) *Handler {
	r := d.Repos
	log := d.Logger
	if log == nil {
		log = logger.Nop()
	}

	carts := cartflow.Deps{Carts: r.Carts, Products: r.Products, Factory: d.Factory}
	orders := orderflow.Deps{
		Orders:    r.Orders,
		Carts:     r.Carts,
		Inventory: r.Inventory,
		Profiles:  r.Profiles,
		Payments:  r.Payments,
		Factory:   d.Factory,
		Pricing:   d.Pricing,
	}
	payments := paymentflow.Deps{Payments: r.Payments, Orders: r.Orders, Factory: d.Factory}
	shipments := shipmentflow.Deps{Shipments: r.Shipments, Orders: r.Orders, Inventory: r.Inventory, Factory: d.Factory}
	accounts := accountflow.Deps{Accounts: r.Accounts, Profiles: r.Profiles, Hasher: d.Hasher, Factory: d.Factory}
	catalog := catalogflow.Deps{
		Products:   r.Products,
		Inventory:  r.Inventory,
		Categories: r.Categories,
		Promotions: r.Promotions,
		Factory:    d.Factory,
	}

	return &Handler{
		publisher: d.Publisher,
		log:       log,

		getCart:        cartflow.NewGetOrCreateCart(carts),
		addItem:        cartflow.NewAddItemToCart(carts),
		removeItem:     cartflow.NewRemoveCartItem(carts),
		updateQuantity: cartflow.NewUpdateCartItemQuantity(carts),
		clearCart:      cartflow.NewClearCart(carts),

		placeOrder:    orderflow.NewCreateOrderFromCart(orders),
		cancelOrder:   orderflow.NewCancelOrder(orders),
		completeOrder: orderflow.NewCompleteOrder(orders),

		initiatePayment:  paymentflow.NewInitiatePayment(payments),
		authorizePayment: paymentflow.NewAuthorizePayment(payments),
		capturePayment:   paymentflow.NewCapturePayment(payments),
		failPayment:      paymentflow.NewFailPayment(payments),
		refundPayment:    paymentflow.NewRefundPayment(payments),

		createShipment: shipmentflow.NewCreateShipment(shipments),
		updateShipment: shipmentflow.NewUpdateShipmentStatus(shipments),
		markDelivered:  shipmentflow.NewMarkShipmentDelivered(shipments),

		register:      accountflow.NewRegisterAccount(accounts),
		authenticate:  accountflow.NewAuthenticateAccount(accounts),
		createProfile: accountflow.NewCreateUserProfile(accounts),
		addAddress:    accountflow.NewAddAddress(accounts),
		setDefault:    accountflow.NewSetDefaultAddress(accounts),

		createProduct:   catalogflow.NewCreateProduct(catalog),
		createCategory:  catalogflow.NewCreateCategory(catalog),
		adjustInventory: catalogflow.NewAdjustInventory(catalog),
		createPromotion: catalogflow.NewCreatePromotion(catalog),
	}
}

// execute runs one use case. Events are published only after the run
// succeeded; a publish failure is logged and does not fail the command.
func execute[In, T any](
	ctx context.Context,
	h *Handler,
	op string,
	run func(context.Context, In) (workflow.Result[T], error),
	in In,
) (T, error) {
	res, err := run(ctx, in)
	if err != nil {
		var zero T
		err = apperr.Wrap(op, err)
		if kind := apperr.KindOf(err); kind == apperr.KindUnexpected {
			h.log.Error("command failed", "op", op, "error", err)
		} else {
			h.log.Debug("command rejected", "op", op, "kind", kind.String(), "error", err)
		}
		return zero, err
	}
	h.log.Debug("command executed", "op", op, "events", len(res.Events))
	h.publish(ctx, op, res.Events)
	return res.Value, nil
}

func (h *Handler) publish(ctx context.Context, op string, events []aggregate.Event) {
	if h.publisher == nil {
		return
	}
	for _, e := range events {
		if err := h.publisher.Publish(ctx, e); err != nil {
			h.log.Warn("event publish failed",
				"op", op,
				"event_type", e.EventType,
				"aggregate_id", e.AggregateID,
				"error", err,
			)
		}
	}
}

// =============================================================================
// Cart
// =============================================================================

func (h *Handler) GetOrCreateCart(ctx context.Context, accountID shared.AccountID) (cart.Cart, error) {
	return execute(ctx, h, "GetOrCreateCart", h.getCart.Execute, accountID)
}

func (h *Handler) AddToCart(ctx context.Context, cmd AddToCart) (cart.Cart, error) {
	return execute(ctx, h, "AddToCart", h.addItem.Execute, cartflow.AddItemInput{
		AccountID: cmd.AccountID,
		ProductID: cmd.ProductID,
		Quantity:  cmd.Quantity,
	})
}

func (h *Handler) UpdateCartItem(ctx context.Context, cmd UpdateCartItem) (cart.Cart, error) {
	return execute(ctx, h, "UpdateCartItem", h.updateQuantity.Execute, cartflow.UpdateQuantityInput{
		AccountID: cmd.AccountID,
		ProductID: cmd.ProductID,
		Quantity:  cmd.Quantity,
	})
}

func (h *Handler) RemoveFromCart(ctx context.Context, cmd RemoveFromCart) (cart.Cart, error) {
	return execute(ctx, h, "RemoveFromCart", h.removeItem.Execute, cartflow.RemoveItemInput{
		AccountID: cmd.AccountID,
		ProductID: cmd.ProductID,
	})
}

func (h *Handler) ClearCart(ctx context.Context, cmd ClearCart) (cart.Cart, error) {
	return execute(ctx, h, "ClearCart", h.clearCart.Execute, cmd.AccountID)
}

// =============================================================================
// Orders
// =============================================================================

func (h *Handler) PlaceOrder(ctx context.Context, cmd PlaceOrder) (order.Order, error) {
	return execute(ctx, h, "PlaceOrder", h.placeOrder.Execute, orderflow.CreateInput{
		AccountID:       cmd.AccountID,
		ShippingAddress: cmd.ShippingAddress,
	})
}

func (h *Handler) CancelOrder(ctx context.Context, cmd CancelOrder) (order.Order, error) {
	return execute(ctx, h, "CancelOrder", h.cancelOrder.Execute, orderflow.CancelInput{
		Actor:   cmd.Actor,
		OrderID: cmd.OrderID,
		Reason:  cmd.Reason,
	})
}

func (h *Handler) CompleteOrder(ctx context.Context, cmd CompleteOrder) (order.Order, error) {
	return execute(ctx, h, "CompleteOrder", h.completeOrder.Execute, orderflow.CompleteInput{
		Actor:   cmd.Actor,
		OrderID: cmd.OrderID,
	})
}

// =============================================================================
// Payments
// =============================================================================

func (h *Handler) InitiatePayment(ctx context.Context, cmd InitiatePayment) (payment.Payment, error) {
	return execute(ctx, h, "InitiatePayment", h.initiatePayment.Execute, paymentflow.InitiateInput{
		Actor:   cmd.Actor,
		OrderID: cmd.OrderID,
		Method:  cmd.Method,
	})
}

func (h *Handler) AuthorizePayment(ctx context.Context, cmd AuthorizePayment) (payment.Payment, error) {
	return execute(ctx, h, "AuthorizePayment", h.authorizePayment.Execute, paymentflow.AuthorizeInput{
		Actor:        cmd.Actor,
		PaymentID:    cmd.PaymentID,
		ExternalTxID: cmd.TransactionID,
	})
}

func (h *Handler) CapturePayment(ctx context.Context, cmd CapturePayment) (payment.Payment, error) {
	return execute(ctx, h, "CapturePayment", h.capturePayment.Execute, paymentflow.CaptureInput{
		Actor:        cmd.Actor,
		PaymentID:    cmd.PaymentID,
		ExternalTxID: cmd.TransactionID,
	})
}

func (h *Handler) FailPayment(ctx context.Context, cmd FailPayment) (payment.Payment, error) {
	return execute(ctx, h, "FailPayment", h.failPayment.Execute, paymentflow.FailInput{
		Actor:     cmd.Actor,
		PaymentID: cmd.PaymentID,
		Code:      cmd.Code,
		Message:   cmd.Message,
	})
}

func (h *Handler) RefundPayment(ctx context.Context, cmd RefundPayment) (payment.Payment, error) {
	return execute(ctx, h, "RefundPayment", h.refundPayment.Execute, paymentflow.RefundInput{
		Actor:        cmd.Actor,
		PaymentID:    cmd.PaymentID,
		Amount:       cmd.Amount,
		Reason:       cmd.Reason,
		ExternalTxID: cmd.TransactionID,
	})
}

// =============================================================================
// Shipments
// =============================================================================

func (h *Handler) CreateShipment(ctx context.Context, cmd CreateShipment) (shipment.Shipment, error) {
	return execute(ctx, h, "CreateShipment", h.createShipment.Execute, shipmentflow.CreateInput{
		OrderID:           cmd.OrderID,
		Address:           cmd.Address,
		Method:            cmd.Method,
		TrackingNumber:    cmd.TrackingNumber,
		EstimatedDelivery: cmd.EstimatedDelivery,
	})
}

func (h *Handler) UpdateShipmentStatus(ctx context.Context, cmd UpdateShipmentStatus) (shipment.Shipment, error) {
	return execute(ctx, h, "UpdateShipmentStatus", h.updateShipment.Execute, shipmentflow.UpdateStatusInput{
		ShipmentID:     cmd.ShipmentID,
		Status:         cmd.Status,
		TrackingNumber: cmd.TrackingNumber,
		Note:           cmd.Note,
	})
}

func (h *Handler) MarkDelivered(ctx context.Context, cmd MarkDelivered) (shipment.Shipment, error) {
	return execute(ctx, h, "MarkDelivered", h.markDelivered.Execute, shipmentflow.DeliveredInput{
		ShipmentID:   cmd.ShipmentID,
		ReceiverName: cmd.ReceiverName,
		DeliveredAt:  cmd.DeliveredAt,
	})
}

// =============================================================================
// Accounts
// =============================================================================

func (h *Handler) Register(ctx context.Context, cmd Register) (account.Account, error) {
	return execute(ctx, h, "Register", h.register.Execute, accountflow.RegisterInput{
		Email:    cmd.Email,
		Password: cmd.Password,
		Role:     cmd.Role,
	})
}

// Login verifies the credentials and records the login. Token issuing is
// left to the transport.
func (h *Handler) Login(ctx context.Context, cmd Login) (account.Account, error) {
	return execute(ctx, h, "Login", h.authenticate.Execute, accountflow.Credentials{
		Email:    cmd.Email,
		Password: cmd.Password,
	})
}

func (h *Handler) CreateProfile(ctx context.Context, cmd CreateProfile) (profile.Profile, error) {
	return execute(ctx, h, "CreateProfile", h.createProfile.Execute, accountflow.CreateProfileInput{
		AccountID: cmd.AccountID,
		Name:      cmd.Name,
		Phone:     cmd.Phone,
	})
}

func (h *Handler) AddAddress(ctx context.Context, cmd AddAddress) (profile.Profile, error) {
	return execute(ctx, h, "AddAddress", h.addAddress.Execute, accountflow.AddressInput{
		Actor:       cmd.Actor,
		Label:       cmd.Label,
		Recipient:   cmd.Recipient,
		Line1:       cmd.Line1,
		Line2:       cmd.Line2,
		City:        cmd.City,
		PostalCode:  cmd.PostalCode,
		Country:     cmd.Country,
		MakeDefault: cmd.IsDefault,
	})
}

func (h *Handler) SetDefaultAddress(ctx context.Context, cmd SetDefaultAddress) (profile.Profile, error) {
	return execute(ctx, h, "SetDefaultAddress", h.setDefault.Execute, accountflow.DefaultAddressInput{
		Actor:     cmd.Actor,
		AddressID: cmd.AddressID,
	})
}

// =============================================================================
// Catalog
// =============================================================================

func (h *Handler) CreateProduct(ctx context.Context, cmd CreateProduct) (catalogflow.ProductStock, error) {
	return execute(ctx, h, "CreateProduct", h.createProduct.Execute, catalogflow.ProductInput{
		SKU:          cmd.SKU,
		Name:         cmd.Name,
		Description:  cmd.Description,
		Price:        cmd.Price,
		CategoryID:   cmd.CategoryID,
		InitialStock: cmd.Stock,
	})
}

func (h *Handler) CreateCategory(ctx context.Context, cmd CreateCategory) (category.Category, error) {
	return execute(ctx, h, "CreateCategory", h.createCategory.Execute, catalogflow.CategoryInput{
		Name:        cmd.Name,
		Slug:        cmd.Slug,
		Description: cmd.Description,
		ParentID:    cmd.ParentID,
		SortOrder:   cmd.SortOrder,
	})
}

func (h *Handler) AdjustInventory(ctx context.Context, cmd AdjustInventory) (inventory.Inventory, error) {
	return execute(ctx, h, "AdjustInventory", h.adjustInventory.Execute, catalogflow.AdjustInput{
		ProductID: cmd.ProductID,
		Delta:     cmd.Delta,
		Reason:    cmd.Reason,
	})
}

func (h *Handler) CreatePromotion(ctx context.Context, cmd CreatePromotion) (promotion.Promotion, error) {
	return execute(ctx, h, "CreatePromotion", h.createPromotion.Execute, catalogflow.PromotionInput{
		Code:        cmd.Code,
		Description: cmd.Description,
		Kind:        promotion.DiscountType(cmd.DiscountType),
		Value:       cmd.DiscountValue,
		StartsAt:    cmd.StartsAt,
		EndsAt:      cmd.EndsAt,
	})
}
