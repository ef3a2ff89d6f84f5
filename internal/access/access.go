package access

import (
	"context"
	"fmt"
	"slices"

	"procurement-be/internal/apperr"
)

type Role string

const (
	RolePurchaser Role = "purchaser"
	RoleSupplier  Role = "supplier"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RolePurchaser, RoleSupplier, RoleAdmin:
		return true
	}
	return false
}

// Principal is the authenticated caller. PurchaserID and SupplierID are set
// once the user has created the matching profile.
type Principal struct {
	UserID      int64
	Email       string
	Role        Role
	PurchaserID *int64
	SupplierID  *int64
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}

type Decision uint8

const (
	Allow Decision = iota
	Deny
	NotFound
)

var (
	ErrForbidden = apperr.New(apperr.KindForbidden, "You do not have permission to perform this action.")
	ErrNotFound  = apperr.New(apperr.KindNotFound, "Not found.")
)

// Err converts a decision into the error the caller should see, nil on Allow.
func (d Decision) Err() error {
	switch d {
	case Allow:
		return nil
	case NotFound:
		return ErrNotFound
	default:
		return ErrForbidden
	}
}

type Action uint8

const (
	// ActionRead covers every GET on a single row.
	ActionRead Action = iota
	// ActionCreate covers new cart positions and orders.
	ActionCreate
	// ActionMutate covers purchaser-owned changes: cart amend/remove, order amend/cancel.
	ActionMutate
	// ActionFulfil covers confirmed/delivered updates on order positions.
	ActionFulfil
)

// Target describes who owns a row: the purchaser behind it and the suppliers
// whose stock it references.
type Target struct {
	PurchaserID int64
	SupplierIDs []int64
}

// Check decides whether p may perform a on t. Callers that cannot see a row at
// all get NotFound so its existence is not revealed.
func Check(p Principal, a Action, t Target) Decision {
	if a == ActionCreate {
		if p.Role == RolePurchaser {
			return Allow
		}
		return Deny
	}

	visible := canSee(p, t)
	if !visible {
		return NotFound
	}

	switch a {
	case ActionRead:
		return Allow
	case ActionMutate:
		if p.Role == RolePurchaser {
			return Allow
		}
		return Deny
	case ActionFulfil:
		if p.Role == RoleSupplier {
			return Allow
		}
		return Deny
	}
	return Deny
}

func canSee(p Principal, t Target) bool {
	switch p.Role {
	case RoleAdmin:
		return true
	case RolePurchaser:
		return p.PurchaserID != nil && *p.PurchaserID == t.PurchaserID
	case RoleSupplier:
		return p.SupplierID != nil && slices.Contains(t.SupplierIDs, *p.SupplierID)
	}
	return false
}

// Scope narrows list queries to the rows a principal may see.
type Scope struct {
	All         bool
	None        bool
	PurchaserID int64
	SupplierID  int64
}

func ScopeFor(p Principal) Scope {
	switch p.Role {
	case RoleAdmin:
		return Scope{All: true}
	case RolePurchaser:
		if p.PurchaserID != nil {
			return Scope{PurchaserID: *p.PurchaserID}
		}
	case RoleSupplier:
		if p.SupplierID != nil {
			return Scope{SupplierID: *p.SupplierID}
		}
	}
	return Scope{None: true}
}

// Permits reports whether a row owned by t falls inside the scope.
func (s Scope) Permits(t Target) bool {
	switch {
	case s.All:
		return true
	case s.None:
		return false
	case s.PurchaserID != 0:
		return t.PurchaserID == s.PurchaserID
	case s.SupplierID != 0:
		return slices.Contains(t.SupplierIDs, s.SupplierID)
	}
	return false
}

// Clause renders the scope as a SQL condition over the given owner columns.
// Placeholders start at $argIndex. It returns an empty condition for All.
func (s Scope) Clause(purchaserCol, supplierCol string, argIndex int) (string, []any) {
	switch {
	case s.All:
		return "", nil
	case s.None:
		return "FALSE", nil
	case s.PurchaserID != 0:
		return fmt.Sprintf("%s = $%d", purchaserCol, argIndex), []any{s.PurchaserID}
	case s.SupplierID != 0:
		return fmt.Sprintf("%s = $%d", supplierCol, argIndex), []any{s.SupplierID}
	}
	return "FALSE", nil
}
