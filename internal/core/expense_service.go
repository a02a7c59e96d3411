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

// ExpenseInput holds the fields captured by the expense form.
type ExpenseInput struct {
	Amount      decimal.Decimal
	Category    ExpenseCategory
	Description string
	Date        time.Time
}

// ExpenseService records outgoing payments. Expenses carry no cross-entity
// invariant; each write is a single independent document.
type ExpenseService interface {
	Create(ctx context.Context, input ExpenseInput) (*Expense, error)
	// List returns expenses ordered by expense date descending.
	List(ctx context.Context) ([]Expense, error)
}

type expenseService struct {
	store store.Store
	log   *zap.Logger
	clock func() time.Time
}

func NewExpenseService(st store.Store, log *zap.Logger) ExpenseService {
	if log == nil {
		log = zap.NewNop()
	}
	return &expenseService{store: st, log: log, clock: time.Now}
}

func (s *expenseService) Create(ctx context.Context, input ExpenseInput) (*Expense, error) {
	if !input.Amount.IsPositive() {
		return nil, validationErr("amount", "amount must be greater than zero")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, validationErr("description", "description is required")
	}
	category := input.Category
	if category == "" {
		category = ExpenseOther
	}
	date := input.Date
	if date.IsZero() {
		date = s.clock()
	}

	e := Expense{
		Amount:      input.Amount,
		Category:    category,
		Description: strings.TrimSpace(input.Description),
		Date:        date,
	}
	res := s.store.Create(ctx, store.Expenses, e.Fields())
	if !res.OK {
		return nil, &StoreError{Op: "create", Collection: store.Expenses, Cause: res.Err}
	}
	e.ID = res.ID
	s.log.Info("expense recorded",
		zap.String("expense_id", e.ID),
		zap.String("amount", e.Amount.String()),
		zap.String("category", string(e.Category)))
	return &e, nil
}

func (s *expenseService) List(ctx context.Context) ([]Expense, error) {
	docs, err := s.store.List(ctx, store.Expenses, "date")
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	expenses := make([]Expense, 0, len(docs))
	for _, d := range docs {
		expenses = append(expenses, ExpenseFromDoc(d))
	}
	return expenses, nil
}
