package handler

import (
	"errors"
	"net/http"
	"time"

	"bouncehub/internal/middleware"
	"bouncehub/internal/model"
	"bouncehub/internal/service"
	"bouncehub/pkg/pagination"
	"bouncehub/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type OrderHandler struct {
	orderService service.OrderService
	taskService  service.TaskService
}

func NewOrderHandler(orderService service.OrderService, taskService service.TaskService) *OrderHandler {
	return &OrderHandler{orderService: orderService, taskService: taskService}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Public checkout
	router.POST("/api/checkout", h.Checkout)

	orders := router.Group("/api/orders", middleware.RequireRole(model.RoleAdmin, model.RoleStaff))
	{
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.PUT("/:id/status", h.UpdateStatus)
		orders.POST("/:id/payments", h.CapturePayment)
		orders.POST("/:id/refunds", h.Refund)
		orders.POST("/:id/tasks", h.GenerateTasks)
		orders.DELETE("/:id", h.DeleteOrder)
	}
}

// Checkout creates an order from the public checkout form
// @Summary      Submit checkout
// @Description  Prices the cart, generates the order number and creates the order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CheckoutRequest  true  "Checkout Payload"
// @Success      201      {object}  response.Response{data=model.Order}
// @Failure      400      {object}  response.Response
// @Router       /api/checkout [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.Checkout(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

// ListOrders returns a paginated, filtered list of orders
// @Summary      List orders
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        status          query  string  false  "Filter by order status"
// @Param        payment_status  query  string  false  "Filter by payment status"
// @Param        event_from      query  string  false  "Event date lower bound (RFC3339)"
// @Param        event_to        query  string  false  "Event date upper bound (RFC3339)"
// @Param        page            query  int     false  "Page number (default 1)"
// @Param        limit           query  int     false  "Items per page (default 20)"
// @Success      200  {object}  response.Response{data=object}
// @Failure      500  {object}  response.Response
// @Router       /api/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	params := pagination.Parse(c)

	query := service.OrderListQuery{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("payment_status"),
		Page:          params.Page,
		Limit:         params.Limit,
	}
	if from, err := time.Parse(time.RFC3339, c.Query("event_from")); err == nil {
		query.EventFrom = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("event_to")); err == nil {
		query.EventTo = &to
	}

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, "orders", orders, total, params.Page, params.Limit))
}

// GetOrder returns one order with its items
// @Summary      Get order
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=model.Order}
// @Failure      404  {object}  response.Response
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, gorm.ErrRecordNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, response.Error(status, "Order not found"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// UpdateStatus applies a guarded status transition
// @Summary      Update order status
// @Description  Applies a status change through the lifecycle guard
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                            true  "Order ID"
// @Param        payload  body      service.UpdateOrderStatusRequest  true  "Status Payload"
// @Success      200      {object}  response.Response{data=model.Order}
// @Failure      400      {object}  response.Response
// @Router       /api/orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidTransition) {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid status transition"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// CapturePayment records a payment against the order
// @Summary      Capture payment
// @Description  Records a captured amount; full total marks paid, deposit authorizes
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Order ID"
// @Param        payload  body      service.CapturePaymentRequest  true  "Payment Payload"
// @Success      200      {object}  response.Response{data=model.Order}
// @Failure      400      {object}  response.Response
// @Router       /api/orders/{id}/payments [post]
func (h *OrderHandler) CapturePayment(c *gin.Context) {
	var req service.CapturePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.CapturePayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidTransition) {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid status transition"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// Refund marks an order refunded or partially refunded
// @Summary      Refund order
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true  "Order ID"
// @Param        payload  body      service.RefundRequest  true  "Refund Payload"
// @Success      200      {object}  response.Response{data=model.Order}
// @Failure      400      {object}  response.Response
// @Router       /api/orders/{id}/refunds [post]
func (h *OrderHandler) Refund(c *gin.Context) {
	var req service.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.Refund(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidTransition) {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid status transition"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// GenerateTasks creates tasks for the order from active templates
// @Summary      Generate tasks
// @Description  Generates delivery, setup and pickup tasks from the active templates
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      201  {object}  response.Response{data=[]model.Task}
// @Failure      400  {object}  response.Response
// @Router       /api/orders/{id}/tasks [post]
func (h *OrderHandler) GenerateTasks(c *gin.Context) {
	tasks, err := h.taskService.GenerateForOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, tasks))
}

// DeleteOrder deletes an order that has not been paid or confirmed
// @Summary      Delete order
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/orders/{id} [delete]
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	if err := h.orderService.DeleteOrder(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, model.ErrOrderNotDeletable) {
			c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
