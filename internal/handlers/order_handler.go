package handlers

import (
	"usersvc/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for a user's orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/users/:userId/orders")
	orderRoutes.Put("", h.HandleCreateOrder)
	orderRoutes.Get("", h.HandleGetOrders)
	orderRoutes.Get("/total-price", h.HandleGetTotalPrice)
}

// HandleCreateOrder appends one order to the user's orders.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	userID, err := services.ParseUserID(c.Params("userId"))
	if err != nil {
		return respondError(c, err, "Failed to create order")
	}
	if err := h.service.AddOrder(c.UserContext(), userID, c.Body()); err != nil {
		return respondError(c, err, "Failed to create order")
	}
	return respond(c, fiber.StatusOK, "Order created successfully!", nil)
}

// HandleGetOrders lists the user's orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	userID, err := services.ParseUserID(c.Params("userId"))
	if err != nil {
		return respondError(c, err, "Failed to fetch orders")
	}
	orders, err := h.service.GetOrders(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "Failed to fetch orders")
	}
	return respond(c, fiber.StatusOK, "Orders fetched successfully!", fiber.Map{"orders": orders})
}

// HandleGetTotalPrice sums the user's orders.
func (h *OrderHandler) HandleGetTotalPrice(c *fiber.Ctx) error {
	userID, err := services.ParseUserID(c.Params("userId"))
	if err != nil {
		return respondError(c, err, "Failed to calculate total price")
	}
	total, err := h.service.CalculateTotalPrice(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err, "Failed to calculate total price")
	}
	return respond(c, fiber.StatusOK, "Total price calculated successfully!", fiber.Map{"totalPrice": total})
}
