package domain

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"sort"
	"strconv"
	"strings"
)

// Coercer validates a raw JSON value and converts it to the value written to
// the store.
type Coercer func(raw any) (any, error)

// FieldRule binds an API field name to its column and coercion.
type FieldRule struct {
	Column string
	Coerce Coercer
}

// UpdateSchema is the full mutable surface of an entity. Fields listed in
// Immutable are rejected outright; fields not present in either are ignored.
type UpdateSchema struct {
	Fields    map[string]FieldRule
	Immutable map[string]struct{}
}

// Assignment is one validated column write.
type Assignment struct {
	Column string
	Value  any
}

// Apply validates a decoded JSON patch body against the schema. Assignments
// are returned in column order so generated SQL is stable.
func (s UpdateSchema) Apply(body map[string]any) ([]Assignment, error) {
	keys := make([]string, 0, len(body))
	for k := range body {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Assignment, 0, len(keys))
	for _, k := range keys {
		if _, blocked := s.Immutable[k]; blocked {
			return nil, ValidationError{Field: k, Msg: "field cannot be modified"}
		}
		rule, ok := s.Fields[k]
		if !ok {
			continue
		}
		v, err := rule.Coerce(body[k])
		if err != nil {
			return nil, ValidationError{Field: k, Msg: err.Error()}
		}
		out = append(out, Assignment{Column: rule.Column, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Column < out[j].Column })
	return out, nil
}

func NonEmptyString(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("must be a string")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("must not be empty")
	}
	return s, nil
}

func OptionalString(raw any) (any, error) {
	if raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("must be a string")
	}
	return strings.TrimSpace(s), nil
}

func Email(raw any) (any, error) {
	v, err := NonEmptyString(raw)
	if err != nil {
		return nil, err
	}
	addr, err := mail.ParseAddress(v.(string))
	if err != nil {
		return nil, fmt.Errorf("must be a valid email address")
	}
	return strings.ToLower(addr.Address), nil
}

// NonNegativeNumber accepts JSON numbers and numeric strings.
func NonNegativeNumber(raw any) (any, error) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("must be a number")
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("must be a number")
		}
		f = parsed
	default:
		return nil, fmt.Errorf("must be a number")
	}
	if f < 0 {
		return nil, fmt.Errorf("must not be negative")
	}
	return f, nil
}

func Bool(raw any) (any, error) {
	b, ok := raw.(bool)
	if !ok {
		return nil, fmt.Errorf("must be a boolean")
	}
	return b, nil
}

func RoleValue(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("must be a string")
	}
	r, ok := ParseRole(s)
	if !ok {
		return nil, fmt.Errorf("must be one of user, admin")
	}
	return string(r), nil
}

func StatusValue(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("must be a string")
	}
	st, ok := ParseOrderStatus(s)
	if !ok {
		return nil, fmt.Errorf("must be one of pending, processing, completed, cancelled")
	}
	return string(st), nil
}

// OrderUpdates is the admin-editable surface of an order.
var OrderUpdates = UpdateSchema{
	Fields: map[string]FieldRule{
		"name":           {Column: "name", Coerce: NonEmptyString},
		"address":        {Column: "address", Coerce: NonEmptyString},
		"price":          {Column: "price", Coerce: NonNegativeNumber},
		"phoneNumber":    {Column: "phone_number", Coerce: NonEmptyString},
		"details":        {Column: "details", Coerce: NonEmptyString},
		"payment_method": {Column: "payment_method", Coerce: OptionalString},
		"status":         {Column: "status", Coerce: StatusValue},
	},
	Immutable: map[string]struct{}{
		"images":     {},
		"invoice_no": {},
		"userId":     {},
		"user_id":    {},
		"id":         {},
	},
}

// UserUpdates is the admin-editable surface of a user.
var UserUpdates = UpdateSchema{
	Fields: map[string]FieldRule{
		"name":    {Column: "name", Coerce: NonEmptyString},
		"email":   {Column: "email", Coerce: Email},
		"phone":   {Column: "phone", Coerce: OptionalString},
		"role":    {Column: "role", Coerce: RoleValue},
		"blocked": {Column: "blocked", Coerce: Bool},
	},
	Immutable: map[string]struct{}{
		"id":       {},
		"password": {},
	},
}
