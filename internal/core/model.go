package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sales-register/internal/store"
)

// PaymentStatus records whether a sale was settled at the counter or left
// as an outstanding debt.
type PaymentStatus string

const (
	Paid PaymentStatus = "paid"
	Debt PaymentStatus = "debt"
)

// ParsePaymentStatus validates a raw status value. An empty value defaults
// to Paid, mirroring how legacy sale records without the field are read.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case Paid, Debt:
		return PaymentStatus(s), nil
	case "":
		return Paid, nil
	default:
		return "", fmt.Errorf("invalid payment status %q", s)
	}
}

// Role is the access level of a user account.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleRegistrar Role = "registrar"
)

// Actor is the explicit identity context passed to operations that are
// role-gated. It replaces any ambient global session state.
type Actor struct {
	UserID   string
	Username string
	Role     Role
}

// Category classifies a product. It is an open enumeration: the values
// below seed the catalog, and any non-empty string is a valid new category.
type Category string

// ExpenseCategory classifies an expense. Open enumeration like Category;
// KnownExpenseCategories lists the starter set shown in the register.
type ExpenseCategory string

const (
	ExpenseInventory   ExpenseCategory = "Inventario"
	ExpenseServices    ExpenseCategory = "Servicios"
	ExpenseSalaries    ExpenseCategory = "Sueldos"
	ExpenseMaintenance ExpenseCategory = "Mantenimiento"
	ExpenseMarketing   ExpenseCategory = "Marketing"
	ExpenseRent        ExpenseCategory = "Alquiler"
	ExpenseOther       ExpenseCategory = "Otros"
)

// KnownExpenseCategories returns the starter expense categories in display
// order. Callers may pass values outside this set.
func KnownExpenseCategories() []ExpenseCategory {
	return []ExpenseCategory{
		ExpenseInventory, ExpenseServices, ExpenseSalaries,
		ExpenseMaintenance, ExpenseMarketing, ExpenseRent, ExpenseOther,
	}
}

// Unit is the measurement unit a sale quantity is expressed in.
type Unit string

const (
	UnitEach  Unit = "U"
	UnitTonne Unit = "TN"
)

// Product is a catalog item. Stock is a shared counter mutated both by
// direct edits and by sale completion; it is kept non-negative by the
// store's conditional decrement.
type Product struct {
	ID          string
	Name        string
	Category    Category
	Price       decimal.Decimal
	Stock       int64
	Description string
	CreatedAt   time.Time
}

// Client is a buyer. Name is the display name derived from first/last name
// and is the identity key for case-insensitive resolution during sales.
type Client struct {
	ID        string
	FirstName string
	LastName  string
	Name      string
	Phone     string
	CreatedAt time.Time
}

// Sale is one registered transaction. ProductName, Category and Price are
// snapshots frozen at creation; they are never re-derived from the live
// product. Total is recomputed on every edit as Quantity x Price.
type Sale struct {
	ID            string
	ProductID     string
	ProductName   string
	Category      Category
	Quantity      int64
	Unit          Unit
	Price         decimal.Decimal
	Total         decimal.Decimal
	ClientName    string
	PaymentStatus PaymentStatus
	Date          time.Time // transaction timestamp, drives history ordering
	CreatedAt     time.Time
}

// Expense is an outgoing payment, independent of sales and products.
type Expense struct {
	ID          string
	Amount      decimal.Decimal
	Category    ExpenseCategory
	Description string
	Date        time.Time
	CreatedAt   time.Time
}

// UserAccount is a provisioned login. Password material never leaves the
// identity package; this is the profile other components see.
type UserAccount struct {
	ID        string
	Username  string
	Role      Role
	CreatedAt time.Time
}

// ── Document codecs ───────────────────────────────────────────────────────────
//
// Field names are the store-level contract shared with earlier deployments;
// decoders are lenient about numeric representation because documents
// written by older clients carry plain JSON numbers where newer ones carry
// decimal strings.

func ProductFromDoc(d store.Document) Product {
	return Product{
		ID:          d.ID,
		Name:        docString(d, "name"),
		Category:    Category(docString(d, "category")),
		Price:       docDecimal(d, "price"),
		Stock:       docInt(d, "stock"),
		Description: docString(d, "description"),
		CreatedAt:   d.CreatedAt,
	}
}

func (p Product) Fields() map[string]any {
	return map[string]any{
		"name":        p.Name,
		"category":    string(p.Category),
		"price":       p.Price,
		"stock":       p.Stock,
		"description": p.Description,
	}
}

func ClientFromDoc(d store.Document) Client {
	return Client{
		ID:        d.ID,
		FirstName: docString(d, "firstName"),
		LastName:  docString(d, "lastName"),
		Name:      docString(d, "name"),
		Phone:     docString(d, "phone"),
		CreatedAt: d.CreatedAt,
	}
}

func (c Client) Fields() map[string]any {
	return map[string]any{
		"firstName": c.FirstName,
		"lastName":  c.LastName,
		"name":      c.Name,
		"phone":     c.Phone,
	}
}

func SaleFromDoc(d store.Document) Sale {
	status, _ := ParsePaymentStatus(docString(d, "paymentStatus"))
	return Sale{
		ID:            d.ID,
		ProductID:     docString(d, "productId"),
		ProductName:   docString(d, "product"),
		Category:      Category(docString(d, "category")),
		Quantity:      docInt(d, "quantity"),
		Unit:          Unit(docString(d, "unit")),
		Price:         docDecimal(d, "price"),
		Total:         docDecimal(d, "total"),
		ClientName:    docString(d, "client"),
		PaymentStatus: status,
		Date:          docTime(d, "date"),
		CreatedAt:     d.CreatedAt,
	}
}

func (s Sale) Fields() map[string]any {
	return map[string]any{
		"product":       s.ProductName,
		"productId":     s.ProductID,
		"category":      string(s.Category),
		"quantity":      s.Quantity,
		"unit":          string(s.Unit),
		"paymentStatus": string(s.PaymentStatus),
		"price":         s.Price,
		"total":         s.Total,
		"client":        s.ClientName,
		"date":          s.Date.UTC().Format(time.RFC3339),
	}
}

func ExpenseFromDoc(d store.Document) Expense {
	return Expense{
		ID:          d.ID,
		Amount:      docDecimal(d, "amount"),
		Category:    ExpenseCategory(docString(d, "category")),
		Description: docString(d, "description"),
		Date:        docTime(d, "date"),
		CreatedAt:   d.CreatedAt,
	}
}

func (e Expense) Fields() map[string]any {
	return map[string]any{
		"amount":      e.Amount,
		"category":    string(e.Category),
		"description": e.Description,
		"date":        e.Date.UTC().Format(time.RFC3339),
	}
}

func UserFromDoc(d store.Document) UserAccount {
	return UserAccount{
		ID:        d.ID,
		Username:  docString(d, "username"),
		Role:      Role(docString(d, "role")),
		CreatedAt: d.CreatedAt,
	}
}

// ── Lenient field readers ─────────────────────────────────────────────────────

func docString(d store.Document, field string) string {
	if v, ok := d.Fields[field].(string); ok {
		return v
	}
	return ""
}

func docInt(d store.Document, field string) int64 {
	switch v := d.Fields[field].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case decimal.Decimal:
		return v.IntPart()
	default:
		return 0
	}
}

func docDecimal(d store.Document, field string) decimal.Decimal {
	switch v := d.Fields[field].(type) {
	case decimal.Decimal:
		return v
	case string:
		dec, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}
		return dec
	case float64:
		return decimal.NewFromFloat(v)
	case int64:
		return decimal.NewFromInt(v)
	case int:
		return decimal.NewFromInt(int64(v))
	default:
		return decimal.Zero
	}
}

func docTime(d store.Document, field string) time.Time {
	switch v := d.Fields[field].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(v)); err == nil {
			return t
		}
		return time.Time{}
	default:
		return time.Time{}
	}
}
