package entity

import (
	"errors"
	"time"

	"github.com/uptrace/bun"
)

// ErrOrderNotFound is the domain-wide absent signal for orders. The gateway
// returns it for missing rows; the service translates it at the boundary.
var ErrOrderNotFound = errors.New("order not found")

// Order represents a purchasable line item stored in the relational database.
type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID        int64     `bun:",pk,autoincrement"`
	Product   string    `bun:"product"`
	Price     float64   `bun:"price"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `bun:"updated_at,nullzero"`
}

// OrderPatch carries the optional fields of a partial order update.
// A nil field was not supplied and must stay untouched.
type OrderPatch struct {
	Product *string
	Price   *float64
}
