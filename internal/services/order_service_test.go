package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"orderdesk/internal/domain"
	"orderdesk/internal/domain/models"
	"orderdesk/internal/listing"
	"orderdesk/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func fileUpload(name string, body []byte) Upload {
	return Upload{
		Filename: name,
		Size:     int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		},
	}
}

func validFields() OrderFields {
	return OrderFields{Name: "Cake", Address: "Main St 1", Price: "12.5", PhoneNumber: "0800", Details: "chocolate"}
}

var (
	alice = domain.Principal{ID: "6f1c2d8e-3f4a-4b5c-8d9e-0a1b2c3d4e5f", Name: "Alice", Email: "alice@example.com", Role: domain.RoleUser}
	bob   = domain.Principal{ID: "7a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c5d", Name: "Bob", Email: "bob@example.com", Role: domain.RoleUser}
	admin = domain.Principal{ID: "8b3c4d5e-6f7a-4b8c-9d0e-1f2a3b4c5d6e", Name: "Root", Email: "root@example.com", Role: domain.RoleAdmin}
)

func TestOrderServiceCreate_NoImagesWritesNothing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	images := newMemImages()
	svc := OrderService{Orders: repositories.OrderRepository{DB: db}, Images: images}

	_, err = svc.Create(context.Background(), alice, validFields(), nil)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, "At least one image is required", err.Error())

	assert.Empty(t, images.objects)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderServiceCreate_RejectsBadInputBeforeUpload(t *testing.T) {
	tests := []struct {
		name    string
		fields  OrderFields
		uploads []Upload
		msg     string
	}{
		{"too many images", validFields(), []Upload{
			fileUpload("1.png", pngHeader), fileUpload("2.png", pngHeader), fileUpload("3.png", pngHeader),
			fileUpload("4.png", pngHeader), fileUpload("5.png", pngHeader), fileUpload("6.png", pngHeader),
		}, "At most 5 images are allowed"},
		{"missing name", OrderFields{Address: "a", Price: "1", PhoneNumber: "p", Details: "d"},
			[]Upload{fileUpload("a.png", pngHeader)}, "name: Name is required"},
		{"non-numeric price", OrderFields{Name: "n", Address: "a", Price: "cheap", PhoneNumber: "p", Details: "d"},
			[]Upload{fileUpload("a.png", pngHeader)}, "price: Price must be a number"},
		{"negative price", OrderFields{Name: "n", Address: "a", Price: "-1", PhoneNumber: "p", Details: "d"},
			[]Upload{fileUpload("a.png", pngHeader)}, "price: Price must not be negative"},
		{"not an image", validFields(), []Upload{fileUpload("a.png", []byte("#!/bin/sh\necho hi"))}, "images: a.png is not an image"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			orders := newMemOrders()
			images := newMemImages()
			svc := OrderService{Orders: orders, Images: images}

			_, err := svc.Create(context.Background(), alice, tc.fields, tc.uploads)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
			assert.Equal(t, tc.msg, err.Error())
			assert.Empty(t, orders.byID)
			assert.Empty(t, images.objects)
		})
	}
}

func TestOrderServiceCreate_StoresImagesAndOrder(t *testing.T) {
	orders := newMemOrders()
	images := newMemImages()
	now := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	svc := OrderService{Orders: orders, Images: images, Now: func() time.Time { return now }}

	fields := validFields()
	fields.PaymentMethod = "cash"
	o, err := svc.Create(context.Background(), alice, fields, []Upload{fileUpload("a.png", pngHeader), fileUpload("b.png", pngHeader)})
	require.NoError(t, err)

	assert.Equal(t, int64(1), o.InvoiceNo)
	assert.Equal(t, alice.ID, o.UserID)
	assert.Equal(t, domain.StatusPending, o.Status)
	assert.Equal(t, "cash", o.PaymentMethod)
	assert.InDelta(t, 12.5, o.Price, 0.0001)
	assert.Equal(t, now, o.CreatedAt)
	require.Len(t, o.Images, 2)
	assert.Equal(t, "/uploads/k1-a.png", o.Images[0])
	assert.Len(t, images.objects, 2)

	stored := orders.byID[o.ID]
	assert.Equal(t, []string{"k1-a.png", "k2-b.png"}, stored.Images, "keys are persisted, urls are presented")
}

func TestOrderServiceCreate_ReleasesImagesWhenInsertFails(t *testing.T) {
	orders := newMemOrders()
	orders.createErr = domain.InternalError{Msg: "insert order", Err: errors.New("deadlock")}
	images := newMemImages()
	svc := OrderService{Orders: orders, Images: images}

	_, err := svc.Create(context.Background(), alice, validFields(), []Upload{fileUpload("a.png", pngHeader)})
	require.Error(t, err)
	assert.True(t, domain.IsInternal(err))
	assert.Empty(t, images.objects)
}

func TestOrderServiceCreate_ReleasesEarlierImagesWhenUploadFails(t *testing.T) {
	images := newMemImages()
	images.failAt = 2
	svc := OrderService{Orders: newMemOrders(), Images: images}

	_, err := svc.Create(context.Background(), alice, validFields(), []Upload{fileUpload("a.png", pngHeader), fileUpload("b.png", pngHeader)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket unavailable")
	assert.Empty(t, images.objects)
}

func seedOrder(t *testing.T, svc OrderService, owner domain.Principal) models.Order {
	t.Helper()
	o, err := svc.Create(context.Background(), owner, validFields(), []Upload{fileUpload("a.png", pngHeader)})
	require.NoError(t, err)
	return o
}

func TestOrderServiceGet_OwnerOrAdminOnly(t *testing.T) {
	svc := OrderService{Orders: newMemOrders(), Images: newMemImages()}
	o := seedOrder(t, svc, alice)
	ctx := context.Background()

	got, err := svc.Get(ctx, alice, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = svc.Get(ctx, admin, o.ID)
	require.NoError(t, err)

	_, err = svc.Get(ctx, bob, o.ID)
	assert.True(t, domain.IsForbidden(err))
	assert.Equal(t, "Access denied", err.Error())

	_, err = svc.Get(ctx, alice, "not-a-uuid")
	assert.True(t, domain.IsValidation(err))

	_, err = svc.Get(ctx, alice, domain.NewID())
	assert.True(t, domain.IsNotFound(err))
}

func TestOrderServiceListMine(t *testing.T) {
	svc := OrderService{Orders: newMemOrders(), Images: newMemImages()}
	seedOrder(t, svc, alice)
	seedOrder(t, svc, bob)

	mine, err := svc.ListMine(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, alice.ID, mine[0].UserID)
}

func TestOrderServiceListAll_Envelope(t *testing.T) {
	svc := OrderService{Orders: newMemOrders(), Images: newMemImages(), MaxPage: 2}
	for i := 0; i < 3; i++ {
		seedOrder(t, svc, alice)
	}

	res, err := svc.ListAll(context.Background(), listing.OrderParams{}, "1", "50")
	require.NoError(t, err)
	assert.Len(t, res.Data, 2)
	assert.Equal(t, 2, res.Pagination.Limit)
	assert.Equal(t, 3, res.Pagination.Items)
	assert.Equal(t, 2, res.Pagination.Pages)
	require.NotNil(t, res.Pagination.Next)
	assert.Equal(t, 2, *res.Pagination.Next)

	res, err = svc.ListAll(context.Background(), listing.OrderParams{OwnerID: "garbage"}, "9", "")
	require.NoError(t, err)
	assert.Empty(t, res.Data)
	assert.Equal(t, 3, res.Pagination.Items)
}

func TestOrderServiceUpdate(t *testing.T) {
	orders := newMemOrders()
	svc := OrderService{Orders: orders, Images: newMemImages()}
	o := seedOrder(t, svc, alice)
	ctx := context.Background()

	got, err := svc.UpdateStatus(ctx, o.ID, "completed")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)

	_, err = svc.UpdateStatus(ctx, o.ID, "shipped")
	assert.True(t, domain.IsValidation(err))

	_, err = svc.Update(ctx, o.ID, map[string]any{"images": []any{"x.png"}})
	require.Error(t, err)
	assert.Equal(t, "images: field cannot be modified", err.Error())

	_, err = svc.Update(ctx, o.ID, map[string]any{"userId": bob.ID, "name": "x"})
	assert.True(t, domain.IsValidation(err))

	got, err = svc.Update(ctx, o.ID, map[string]any{"price": "20", "unknown": 1})
	require.NoError(t, err)
	assert.InDelta(t, 20.0, got.Price, 0.0001)
	assert.Equal(t, []domain.Assignment{{Column: "price", Value: 20.0}}, orders.lastSet)
}

func TestOrderServiceDelete_ReleasesImages(t *testing.T) {
	images := newMemImages()
	svc := OrderService{Orders: newMemOrders(), Images: images}
	o := seedOrder(t, svc, alice)
	require.Len(t, images.objects, 1)

	require.NoError(t, svc.Delete(context.Background(), o.ID))
	assert.Empty(t, images.objects)

	assert.True(t, domain.IsNotFound(svc.Delete(context.Background(), o.ID)))
}
