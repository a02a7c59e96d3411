package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sales-register/internal/store"
)

// SaleInput is what the register screen submits.
type SaleInput struct {
	ProductID     string
	Quantity      int64
	Unit          Unit
	ClientName    string
	PaymentStatus PaymentStatus
}

// SaleEdit is the mutable subset of an existing sale. Editing recomputes
// the total but deliberately never touches product stock; stock correction
// after an edit is a manual follow-up.
type SaleEdit struct {
	ClientName string
	Quantity   int64
	Price      decimal.Decimal
}

// SaleService coordinates the sale registration workflow. The store offers
// no multi-document atomicity, so registration runs as a saga of
// independently committed steps with a compensating delete on late failure.
type SaleService interface {
	// Register executes the full workflow: client resolution, validation
	// against the cached snapshot, sale persistence, and conditional stock
	// deduction. See the method doc on saleService for the exact
	// failure-handling contract.
	Register(ctx context.Context, input SaleInput) (*Sale, error)

	// Edit updates client name, quantity and price of an existing sale and
	// recomputes the total. Product stock is not adjusted.
	Edit(ctx context.Context, saleID string, edit SaleEdit) (*Sale, error)

	// SetPaymentStatus flips a sale between paid and debt.
	SetPaymentStatus(ctx context.Context, saleID string, status PaymentStatus) error

	// Delete permanently removes a sale. Admin only; the role is checked
	// before any store call is issued.
	Delete(ctx context.Context, actor Actor, saleID string) error

	// List returns all sales ordered by transaction timestamp descending.
	List(ctx context.Context) ([]Sale, error)
}

type saleService struct {
	store store.Store
	view  CatalogView
	log   *zap.Logger
	clock func() time.Time
}

// NewSaleService builds the coordinator over a store and the live catalog
// view used for validation snapshots.
func NewSaleService(st store.Store, view CatalogView, log *zap.Logger) SaleService {
	if log == nil {
		log = zap.NewNop()
	}
	return &saleService{store: st, view: view, log: log, clock: time.Now}
}

// Register runs the registration saga:
//
//  1. Resolve the client by case-insensitive display-name match against the
//     cached set; on miss, create the client. Creation failure aborts the
//     whole workflow before any sale write, so a sale can never reference a
//     client that was never persisted.
//  2. Build the sale with immutable product name/category/price snapshots
//     and total = quantity x price.
//  3. Persist the sale.
//  4. Conditionally decrement stock at the store boundary. The precondition
//     check in step 0 ran against a possibly stale snapshot; the store-side
//     predicate is what actually rejects a concurrent overdraw.
//
// If step 4 fails the just-written sale is deleted (compensation) and the
// caller gets a WorkflowError naming the step, the cause, and whether the
// compensation landed.
func (s *saleService) Register(ctx context.Context, input SaleInput) (*Sale, error) {
	clientName := strings.TrimSpace(input.ClientName)

	if input.ProductID == "" {
		return nil, validationErr("product", "no product selected")
	}
	product, ok := s.view.ProductByID(input.ProductID)
	if !ok {
		return nil, validationErr("product", "product %s not in catalog", input.ProductID)
	}
	if input.Quantity <= 0 {
		return nil, validationErr("quantity", "quantity must be greater than zero")
	}
	if clientName == "" {
		return nil, validationErr("client", "client name is required")
	}
	if input.Quantity > product.Stock {
		return nil, validationErr("quantity", "only %d units available", product.Stock)
	}
	status, err := ParsePaymentStatus(string(input.PaymentStatus))
	if err != nil {
		return nil, validationErr("paymentStatus", "%v", err)
	}
	unit := input.Unit
	if unit == "" {
		unit = UnitEach
	}

	// Step 1: find-or-create the client.
	if _, found := s.view.ClientByName(clientName); !found {
		res := s.store.Create(ctx, store.Clients, Client{Name: clientName}.Fields())
		if !res.OK {
			s.log.Error("client creation failed, aborting sale",
				zap.String("client", clientName), zap.Error(res.Err))
			return nil, &StoreError{Op: "create", Collection: store.Clients, Cause: res.Err}
		}
		s.log.Info("client created during sale registration",
			zap.String("client", clientName), zap.String("client_id", res.ID))
	}

	// Step 2: freeze the product snapshot into the sale.
	sale := Sale{
		ProductID:     product.ID,
		ProductName:   product.Name,
		Category:      product.Category,
		Quantity:      input.Quantity,
		Unit:          unit,
		Price:         product.Price,
		Total:         product.Price.Mul(decimal.NewFromInt(input.Quantity)),
		ClientName:    clientName,
		PaymentStatus: status,
		Date:          s.clock(),
	}

	// Step 3: persist the sale.
	res := s.store.Create(ctx, store.Sales, sale.Fields())
	if !res.OK {
		return nil, &StoreError{Op: "create", Collection: store.Sales, Cause: res.Err}
	}
	sale.ID = res.ID

	// Step 4: deduct stock, conditionally.
	dec := s.store.Decrement(ctx, store.Products, product.ID, "stock", input.Quantity)
	if !dec.OK {
		del := s.store.Delete(ctx, store.Sales, sale.ID)
		if !del.OK {
			s.log.Error("stock deduction and compensation both failed",
				zap.String("sale_id", sale.ID),
				zap.NamedError("deduction", dec.Err),
				zap.NamedError("compensation", del.Err))
		}
		return nil, &WorkflowError{
			Step:        "stock deduction",
			SaleID:      sale.ID,
			Compensated: del.OK,
			Cause:       dec.Err,
		}
	}

	s.log.Info("sale registered",
		zap.String("sale_id", sale.ID),
		zap.String("product", product.Name),
		zap.Int64("quantity", input.Quantity),
		zap.String("client", clientName),
		zap.String("total", sale.Total.String()))
	return &sale, nil
}

func (s *saleService) Edit(ctx context.Context, saleID string, edit SaleEdit) (*Sale, error) {
	clientName := strings.TrimSpace(edit.ClientName)
	if clientName == "" {
		return nil, validationErr("client", "client name is required")
	}
	if edit.Quantity <= 0 {
		return nil, validationErr("quantity", "quantity must be greater than zero")
	}
	if edit.Price.IsNegative() {
		return nil, validationErr("price", "price cannot be negative")
	}

	doc, err := s.store.Get(ctx, store.Sales, saleID)
	if err != nil {
		return nil, fmt.Errorf("sale %s: %w", saleID, err)
	}
	sale := SaleFromDoc(*doc)

	sale.ClientName = clientName
	sale.Quantity = edit.Quantity
	sale.Price = edit.Price
	sale.Total = edit.Price.Mul(decimal.NewFromInt(edit.Quantity))

	res := s.store.Update(ctx, store.Sales, saleID, map[string]any{
		"client":   sale.ClientName,
		"quantity": sale.Quantity,
		"price":    sale.Price,
		"total":    sale.Total,
	})
	if !res.OK {
		return nil, &StoreError{Op: "update", Collection: store.Sales, Cause: res.Err}
	}
	return &sale, nil
}

func (s *saleService) SetPaymentStatus(ctx context.Context, saleID string, status PaymentStatus) error {
	parsed, err := ParsePaymentStatus(string(status))
	if err != nil {
		return validationErr("paymentStatus", "%v", err)
	}
	res := s.store.Update(ctx, store.Sales, saleID, map[string]any{
		"paymentStatus": string(parsed),
	})
	if !res.OK {
		return &StoreError{Op: "update", Collection: store.Sales, Cause: res.Err}
	}
	return nil
}

func (s *saleService) Delete(ctx context.Context, actor Actor, saleID string) error {
	if actor.Role != RoleAdmin {
		return fmt.Errorf("delete sale as %s: %w", actor.Role, ErrForbidden)
	}
	res := s.store.Delete(ctx, store.Sales, saleID)
	if !res.OK {
		return &StoreError{Op: "delete", Collection: store.Sales, Cause: res.Err}
	}
	s.log.Info("sale deleted",
		zap.String("sale_id", saleID), zap.String("by", actor.Username))
	return nil
}

func (s *saleService) List(ctx context.Context) ([]Sale, error) {
	docs, err := s.store.List(ctx, store.Sales, "date")
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	sales := make([]Sale, 0, len(docs))
	for _, d := range docs {
		sales = append(sales, SaleFromDoc(d))
	}
	return sales, nil
}
