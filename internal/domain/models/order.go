package models

import (
	"time"

	"orderdesk/internal/domain"
)

const MaxOrderImages = 5

type Order struct {
	ID            string             `json:"id"`
	InvoiceNo     int64              `json:"invoice_no"`
	Name          string             `json:"name"`
	Images        []string           `json:"images"`
	Address       string             `json:"address"`
	Price         float64            `json:"price"`
	PhoneNumber   string             `json:"phoneNumber"`
	Details       string             `json:"details"`
	PaymentMethod string             `json:"payment_method,omitempty"`
	UserID        string             `json:"userId"`
	Owner         *OrderOwner        `json:"user,omitempty"`
	Status        domain.OrderStatus `json:"status"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// OrderOwner is the slice of the owning user joined into order reads.
type OrderOwner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// OrderInput carries the fields of a new order before images are attached.
type OrderInput struct {
	Name          string
	Address       string
	Price         float64
	PhoneNumber   string
	Details       string
	PaymentMethod string
}
