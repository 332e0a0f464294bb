package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"orderdesk/internal/domain/models"
	"orderdesk/internal/http/middleware"
	"orderdesk/internal/listing"
	"orderdesk/internal/services"

	"github.com/gin-gonic/gin"
)

// maxCreateBody bounds a create request: every image at its cap plus room
// for the text fields.
const maxCreateBody = models.MaxOrderImages*services.MaxImageBytes + 1<<20

type OrderHandler struct {
	Orders   services.OrderService
	Invoices services.InvoiceService
}

// POST /api/orders
func (h OrderHandler) Create(c *gin.Context) {
	p, _ := middleware.CurrentPrincipal(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxCreateBody)

	var files []*multipart.FileHeader
	form, err := c.MultipartForm()
	switch {
	case err == nil:
		files = form.File["images"]
	case errors.Is(err, http.ErrNotMultipart):
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondError(c, http.StatusRequestEntityTooLarge, "Request body too large", nil)
			return
		}
		RespondError(c, http.StatusBadRequest, "Invalid multipart body", err)
		return
	}

	uploads := make([]services.Upload, 0, len(files))
	for _, fh := range files {
		uploads = append(uploads, services.Upload{
			Filename: fh.Filename,
			Size:     fh.Size,
			Open: func() (io.ReadCloser, error) {
				f, err := fh.Open()
				if err != nil {
					return nil, err
				}
				return f, nil
			},
		})
	}

	fields := services.OrderFields{
		Name:          c.PostForm("name"),
		Address:       c.PostForm("address"),
		Price:         c.PostForm("price"),
		PhoneNumber:   c.PostForm("phoneNumber"),
		Details:       c.PostForm("details"),
		PaymentMethod: c.PostForm("payment_method"),
	}
	o, err := h.Orders.Create(c.Request.Context(), p, fields, uploads)
	if err != nil {
		RespondDomainError(c, err, "Error creating order")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Order created successfully", "order": o})
}

// GET /api/orders/all
func (h OrderHandler) ListAll(c *gin.Context) {
	params := listing.OrderParams{
		Status:    c.Query("status"),
		Method:    c.Query("method"),
		OwnerID:   c.Query("userId"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Search:    c.Query("search"),
	}
	res, err := h.Orders.ListAll(c.Request.Context(), params, c.Query("page"), c.Query("limit"))
	if err != nil {
		RespondDomainError(c, err, "Error fetching orders")
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/orders/my-orders
func (h OrderHandler) ListMine(c *gin.Context) {
	p, _ := middleware.CurrentPrincipal(c)
	orders, err := h.Orders.ListMine(c.Request.Context(), p)
	if err != nil {
		RespondDomainError(c, err, "Error fetching orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GET /api/orders/:id
func (h OrderHandler) Get(c *gin.Context) {
	p, _ := middleware.CurrentPrincipal(c)
	o, err := h.Orders.Get(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		RespondDomainError(c, err, "Error fetching order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": o})
}

type statusRequest struct {
	Status string `json:"status"`
}

// PATCH /api/orders/:id/status
func (h OrderHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	o, err := h.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		RespondDomainError(c, err, "Error updating order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order": o})
}

// PATCH /api/orders/:id
func (h OrderHandler) Update(c *gin.Context) {
	var body map[string]any
	if !BindJSONOrError(c, &body) {
		return
	}
	o, err := h.Orders.Update(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		RespondDomainError(c, err, "Error updating order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order updated", "order": o})
}

// DELETE /api/orders/:id
func (h OrderHandler) Delete(c *gin.Context) {
	if err := h.Orders.Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondDomainError(c, err, "Error deleting order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}

// GET /api/orders/:id/invoice
func (h OrderHandler) Invoice(c *gin.Context) {
	p, _ := middleware.CurrentPrincipal(c)
	o, err := h.Orders.Invoice(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		RespondDomainError(c, err, "Error fetching order")
		return
	}
	pdf, filename, err := h.Invoices.Render(o)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "Error generating invoice", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
