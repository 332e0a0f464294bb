package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"orderdesk/internal/domain"
	"orderdesk/internal/domain/models"
	"orderdesk/internal/listing"
	"orderdesk/internal/storage"
	"orderdesk/internal/utils"
)

const MaxImageBytes = 10 << 20

// Upload is one attached image. Open may be called more than once.
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// OrderFields are the raw text fields of a create request.
type OrderFields struct {
	Name          string
	Address       string
	Price         string
	PhoneNumber   string
	Details       string
	PaymentMethod string
}

type OrderService struct {
	Orders  OrderStore
	Images  storage.ImageStore
	MaxPage int
	Now     func() time.Time
}

func (s OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

// Create validates everything up front, stores the images, then inserts the
// order. Nothing is written when validation fails.
func (s OrderService) Create(ctx context.Context, owner domain.Principal, fields OrderFields, uploads []Upload) (models.Order, error) {
	if len(uploads) == 0 {
		return models.Order{}, domain.ValidationError{Msg: "At least one image is required"}
	}
	if len(uploads) > models.MaxOrderImages {
		return models.Order{}, domain.ValidationError{Msg: fmt.Sprintf("At most %d images are allowed", models.MaxOrderImages)}
	}
	in, err := validateOrderFields(fields)
	if err != nil {
		return models.Order{}, err
	}
	types := make([]string, len(uploads))
	for i, up := range uploads {
		ct, err := sniffImage(up)
		if err != nil {
			return models.Order{}, err
		}
		types[i] = ct
	}

	keys := make([]string, 0, len(uploads))
	for i, up := range uploads {
		key, err := s.saveImage(ctx, up, types[i])
		if err != nil {
			s.releaseImages(ctx, keys)
			return models.Order{}, domain.InternalError{Msg: "store image", Err: err}
		}
		keys = append(keys, key)
	}

	now := s.now()
	o := models.Order{
		ID:            domain.NewID(),
		Name:          in.Name,
		Images:        keys,
		Address:       in.Address,
		Price:         in.Price,
		PhoneNumber:   in.PhoneNumber,
		Details:       in.Details,
		PaymentMethod: in.PaymentMethod,
		UserID:        owner.ID,
		Owner:         &models.OrderOwner{ID: owner.ID, Name: owner.Name, Email: owner.Email},
		Status:        domain.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Orders.Create(ctx, &o); err != nil {
		s.releaseImages(ctx, keys)
		return models.Order{}, err
	}
	utils.LogEvent(utils.RequestID(ctx), "orders", "create", fmt.Sprintf("order_id=%s invoice_no=%d images=%d", o.ID, o.InvoiceNo, len(keys)))
	return s.present(ctx, o)
}

func validateOrderFields(f OrderFields) (models.OrderInput, error) {
	in := models.OrderInput{
		Name:          strings.TrimSpace(f.Name),
		Address:       strings.TrimSpace(f.Address),
		PhoneNumber:   strings.TrimSpace(f.PhoneNumber),
		Details:       strings.TrimSpace(f.Details),
		PaymentMethod: strings.TrimSpace(f.PaymentMethod),
	}
	required := []struct{ field, value, msg string }{
		{"name", in.Name, "Name is required"},
		{"address", in.Address, "Address is required"},
		{"phoneNumber", in.PhoneNumber, "Phone number is required"},
		{"details", in.Details, "Details are required"},
		{"price", strings.TrimSpace(f.Price), "Price is required"},
	}
	for _, r := range required {
		if r.value == "" {
			return in, domain.ValidationError{Field: r.field, Msg: r.msg}
		}
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(f.Price), 64)
	if err != nil {
		return in, domain.ValidationError{Field: "price", Msg: "Price must be a number"}
	}
	if price < 0 {
		return in, domain.ValidationError{Field: "price", Msg: "Price must not be negative"}
	}
	in.Price = price
	return in, nil
}

func sniffImage(up Upload) (string, error) {
	if up.Size > MaxImageBytes {
		return "", domain.ValidationError{Field: "images", Msg: fmt.Sprintf("%s exceeds the 10MB limit", up.Filename)}
	}
	rc, err := up.Open()
	if err != nil {
		return "", domain.InternalError{Msg: "read upload", Err: err}
	}
	defer rc.Close()
	head := make([]byte, 512)
	n, err := io.ReadFull(rc, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", domain.InternalError{Msg: "read upload", Err: err}
	}
	ct := http.DetectContentType(head[:n])
	if !strings.HasPrefix(ct, "image/") {
		return "", domain.ValidationError{Field: "images", Msg: fmt.Sprintf("%s is not an image", up.Filename)}
	}
	return ct, nil
}

func (s OrderService) saveImage(ctx context.Context, up Upload, contentType string) (string, error) {
	rc, err := up.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return s.Images.Save(ctx, up.Filename, contentType, rc)
}

// releaseImages is best-effort; a failed delete only leaves an orphan object.
func (s OrderService) releaseImages(ctx context.Context, keys []string) {
	for _, k := range keys {
		if err := s.Images.Delete(ctx, k); err != nil {
			utils.LogError(utils.RequestID(ctx), "orders", "release_image", err)
		}
	}
}

// present swaps stored image keys for fetchable URLs.
func (s OrderService) present(ctx context.Context, o models.Order) (models.Order, error) {
	urls := make([]string, 0, len(o.Images))
	for _, k := range o.Images {
		u, err := s.Images.URL(ctx, k)
		if err != nil {
			return models.Order{}, domain.InternalError{Msg: "resolve image url", Err: err}
		}
		urls = append(urls, u)
	}
	o.Images = urls
	return o, nil
}

func (s OrderService) presentAll(ctx context.Context, orders []models.Order) ([]models.Order, error) {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		p, err := s.present(ctx, o)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ListAll is the admin listing with filters and pagination.
func (s OrderService) ListAll(ctx context.Context, params listing.OrderParams, rawPage, rawLimit string) (listing.Result[models.Order], error) {
	page := listing.ParsePage(rawPage, rawLimit, s.MaxPage)
	orders, total, err := s.Orders.List(ctx, listing.BuildOrderFilter(params), page)
	if err != nil {
		return listing.Result[models.Order]{}, err
	}
	orders, err = s.presentAll(ctx, orders)
	if err != nil {
		return listing.Result[models.Order]{}, err
	}
	return listing.NewResult(orders, page, total), nil
}

// ListMine returns the caller's orders, newest first.
func (s OrderService) ListMine(ctx context.Context, p domain.Principal) ([]models.Order, error) {
	orders, err := s.Orders.ListByOwner(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return s.presentAll(ctx, orders)
}

// Get returns an order visible to p: admins see all, users only their own.
func (s OrderService) Get(ctx context.Context, p domain.Principal, id string) (models.Order, error) {
	o, err := s.load(ctx, p, id)
	if err != nil {
		return models.Order{}, err
	}
	return s.present(ctx, o)
}

func (s OrderService) load(ctx context.Context, p domain.Principal, id string) (models.Order, error) {
	if !domain.ValidID(id) {
		return models.Order{}, domain.ValidationError{Field: "id", Msg: "Invalid order id"}
	}
	o, err := s.Orders.GetByID(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	if !p.IsAdmin() && o.UserID != p.ID {
		return models.Order{}, domain.ForbiddenError{Msg: "Access denied"}
	}
	return o, nil
}

func (s OrderService) UpdateStatus(ctx context.Context, id string, status string) (models.Order, error) {
	return s.Update(ctx, id, map[string]any{"status": status})
}

// Update applies an admin patch through the order update schema.
func (s OrderService) Update(ctx context.Context, id string, body map[string]any) (models.Order, error) {
	if !domain.ValidID(id) {
		return models.Order{}, domain.ValidationError{Field: "id", Msg: "Invalid order id"}
	}
	set, err := domain.OrderUpdates.Apply(body)
	if err != nil {
		return models.Order{}, err
	}
	o, err := s.Orders.Update(ctx, id, set, s.now())
	if err != nil {
		return models.Order{}, err
	}
	utils.LogEvent(utils.RequestID(ctx), "orders", "update", fmt.Sprintf("order_id=%s fields=%d", id, len(set)))
	return s.present(ctx, o)
}

func (s OrderService) Delete(ctx context.Context, id string) error {
	if !domain.ValidID(id) {
		return domain.ValidationError{Field: "id", Msg: "Invalid order id"}
	}
	o, err := s.Orders.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.releaseImages(ctx, o.Images)
	utils.LogEvent(utils.RequestID(ctx), "orders", "delete", "order_id="+id)
	return nil
}

// Invoice loads an order visible to p for invoice rendering.
func (s OrderService) Invoice(ctx context.Context, p domain.Principal, id string) (models.Order, error) {
	return s.load(ctx, p, id)
}
