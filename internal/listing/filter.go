package listing

import (
	"strings"
	"time"

	"orderdesk/internal/domain"
	"orderdesk/internal/utils"
)

// OrderParams are the raw admin order-listing query values.
type OrderParams struct {
	Status    string
	Method    string
	OwnerID   string
	StartDate string
	EndDate   string
	Search    string
}

// OrderFilter is the normalized constraint set for order listings. Zero
// values mean "no constraint". Search matches the owner's name or email.
type OrderFilter struct {
	Status        domain.OrderStatus
	PaymentMethod string
	OwnerID       string
	CreatedFrom   *time.Time // inclusive
	CreatedBefore *time.Time // exclusive
	Search        string
}

// BuildOrderFilter normalizes raw parameters. Malformed owner ids and dates
// are dropped rather than rejected. Status is matched verbatim, so an
// unknown status simply matches nothing.
func BuildOrderFilter(p OrderParams) OrderFilter {
	var f OrderFilter
	if s := strings.TrimSpace(p.Status); s != "" {
		f.Status = domain.OrderStatus(s)
	}
	f.PaymentMethod = strings.TrimSpace(p.Method)
	if id := strings.TrimSpace(p.OwnerID); id != "" && domain.ValidID(id) {
		f.OwnerID = id
	}
	if start := strings.TrimSpace(p.StartDate); start != "" {
		if t, err := utils.ParseDay(start); err == nil {
			f.CreatedFrom = &t
		}
	}
	if end := strings.TrimSpace(p.EndDate); end != "" {
		if t, err := utils.ParseDay(end); err == nil {
			t = t.AddDate(0, 0, 1)
			f.CreatedBefore = &t
		}
	}
	f.Search = strings.TrimSpace(p.Search)
	return f
}

// Where renders the filter as a SQL predicate over orders o joined to users u.
func (f OrderFilter) Where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Status != "" {
		conds = append(conds, "o.status = ?")
		args = append(args, string(f.Status))
	}
	if f.PaymentMethod != "" {
		conds = append(conds, "o.payment_method = ?")
		args = append(args, f.PaymentMethod)
	}
	if f.OwnerID != "" {
		conds = append(conds, "o.user_id = ?")
		args = append(args, f.OwnerID)
	}
	if f.CreatedFrom != nil {
		conds = append(conds, "o.created_at >= ?")
		args = append(args, *f.CreatedFrom)
	}
	if f.CreatedBefore != nil {
		conds = append(conds, "o.created_at < ?")
		args = append(args, *f.CreatedBefore)
	}
	if f.Search != "" {
		like := utils.LikeContains(strings.ToLower(f.Search))
		conds = append(conds, "(LOWER(u.name) LIKE ? OR LOWER(u.email) LIKE ?)")
		args = append(args, like, like)
	}
	return joinWhere(conds), args
}

// UserFilter constrains the admin user listing to regular users, optionally
// matching Search against name, email or phone.
type UserFilter struct {
	Role   domain.Role
	Search string
}

func BuildUserFilter(search string) UserFilter {
	return UserFilter{Role: domain.RoleUser, Search: strings.TrimSpace(search)}
}

func (f UserFilter) Where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Role != "" {
		conds = append(conds, "role = ?")
		args = append(args, string(f.Role))
	}
	if f.Search != "" {
		like := utils.LikeContains(strings.ToLower(f.Search))
		conds = append(conds, "(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(phone) LIKE ?)")
		args = append(args, like, like, like)
	}
	return joinWhere(conds), args
}

func joinWhere(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}
