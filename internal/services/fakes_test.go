package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"orderdesk/internal/domain"
	"orderdesk/internal/domain/models"
	"orderdesk/internal/listing"
)

type memImages struct {
	mu      sync.Mutex
	objects map[string]string
	n       int
	failAt  int
}

func newMemImages() *memImages { return &memImages{objects: map[string]string{}} }

func (m *memImages) Save(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	if m.failAt > 0 && m.n == m.failAt {
		return "", fmt.Errorf("bucket unavailable")
	}
	b, _ := io.ReadAll(body)
	key := fmt.Sprintf("k%d-%s", m.n, filename)
	m.objects[key] = string(b)
	return key, nil
}

func (m *memImages) URL(ctx context.Context, key string) (string, error) {
	return "/uploads/" + key, nil
}

func (m *memImages) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

type memOrders struct {
	byID      map[string]models.Order
	invoice   int64
	createErr error
	lastSet   []domain.Assignment
}

func newMemOrders() *memOrders { return &memOrders{byID: map[string]models.Order{}} }

func (m *memOrders) Create(ctx context.Context, o *models.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.invoice++
	o.InvoiceNo = m.invoice
	m.byID[o.ID] = *o
	return nil
}

func (m *memOrders) GetByID(ctx context.Context, id string) (models.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return models.Order{}, domain.NotFoundError{Resource: "order"}
	}
	return o, nil
}

func (m *memOrders) List(ctx context.Context, f listing.OrderFilter, p listing.Page) ([]models.Order, int, error) {
	var all []models.Order
	for _, o := range m.byID {
		if f.OwnerID != "" && o.UserID != f.OwnerID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if !inDateWindow(f, o.CreatedAt) {
			continue
		}
		all = append(all, o)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	start := p.Skip()
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (m *memOrders) ListByOwner(ctx context.Context, userID string) ([]models.Order, error) {
	out, _, err := m.List(ctx, listing.OrderFilter{OwnerID: userID}, listing.Page{Page: 1, Limit: 1000})
	return out, err
}

func (m *memOrders) Update(ctx context.Context, id string, set []domain.Assignment, now time.Time) (models.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return models.Order{}, domain.NotFoundError{Resource: "order"}
	}
	m.lastSet = set
	for _, a := range set {
		switch a.Column {
		case "status":
			o.Status = domain.OrderStatus(a.Value.(string))
		case "price":
			o.Price = a.Value.(float64)
		case "name":
			o.Name = a.Value.(string)
		}
	}
	o.UpdatedAt = now
	m.byID[id] = o
	return o, nil
}

func (m *memOrders) Delete(ctx context.Context, id string) (models.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return models.Order{}, domain.NotFoundError{Resource: "order"}
	}
	delete(m.byID, id)
	return o, nil
}

type memUsers struct {
	byID map[string]models.User
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]models.User{}} }

func (m *memUsers) Create(ctx context.Context, u models.User) error {
	m.byID[u.ID] = u
	return nil
}

func (m *memUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (models.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, domain.NotFoundError{Resource: "user"}
}

func (m *memUsers) GetByID(ctx context.Context, id string) (models.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return models.User{}, domain.NotFoundError{Resource: "user"}
	}
	u.PasswordHash = ""
	return u, nil
}

func (m *memUsers) List(ctx context.Context, f listing.UserFilter, p listing.Page) ([]models.User, int, error) {
	var out []models.User
	for _, u := range m.byID {
		if u.Role != f.Role {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(u.Name+" "+u.Email+" "+u.Phone), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, u)
	}
	return out, len(out), nil
}

func (m *memUsers) Update(ctx context.Context, id string, set []domain.Assignment, now time.Time) (models.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return models.User{}, domain.NotFoundError{Resource: "user"}
	}
	for _, a := range set {
		switch a.Column {
		case "blocked":
			u.Blocked = a.Value.(bool)
		case "role":
			u.Role = domain.Role(a.Value.(string))
		case "name":
			u.Name = a.Value.(string)
		}
	}
	m.byID[id] = u
	return u, nil
}

func (m *memUsers) Delete(ctx context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return domain.NotFoundError{Resource: "user"}
	}
	delete(m.byID, id)
	return nil
}

// inDateWindow mirrors the created_at bounds OrderFilter.Where renders.
func inDateWindow(f listing.OrderFilter, createdAt time.Time) bool {
	if f.CreatedFrom != nil && createdAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedBefore != nil && !createdAt.Before(*f.CreatedBefore) {
		return false
	}
	return true
}
