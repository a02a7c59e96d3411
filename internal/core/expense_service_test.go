package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"sales-register/internal/core"
	"sales-register/internal/store"
)

func TestExpenseCreate_Validation(t *testing.T) {
	st := store.NewMemory()
	svc := core.NewExpenseService(st, nil)

	tests := []struct {
		name  string
		input core.ExpenseInput
	}{
		{"zero amount", core.ExpenseInput{Amount: decimal.Zero, Description: "algo"}},
		{"negative amount", core.ExpenseInput{Amount: decimal.NewFromInt(-5), Description: "algo"}},
		{"blank description", core.ExpenseInput{Amount: decimal.NewFromInt(5), Description: "  "}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			var vErr *core.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	if n := countDocs(t, st, store.Expenses); n != 0 {
		t.Errorf("%d expenses written by rejected inputs", n)
	}
}

func TestExpenseCreate_DefaultsCategoryAndDate(t *testing.T) {
	st := store.NewMemory()
	svc := core.NewExpenseService(st, nil)

	expense, err := svc.Create(context.Background(), core.ExpenseInput{
		Amount:      decimal.NewFromInt(150),
		Description: "reparación de balanza",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if expense.Category != core.ExpenseOther {
		t.Errorf("category = %s, want %s", expense.Category, core.ExpenseOther)
	}
	if expense.Date.IsZero() {
		t.Error("date not defaulted")
	}
	if expense.ID == "" {
		t.Error("id not assigned")
	}
}

func TestExpenseCreate_AcceptsUnknownCategory(t *testing.T) {
	st := store.NewMemory()
	svc := core.NewExpenseService(st, nil)

	expense, err := svc.Create(context.Background(), core.ExpenseInput{
		Amount:      decimal.NewFromInt(90),
		Category:    core.ExpenseCategory("Fletes"),
		Description: "envío a obra",
		Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if expense.Category != "Fletes" {
		t.Errorf("category = %s, want Fletes", expense.Category)
	}
}

func TestExpenseList_RoundTrips(t *testing.T) {
	st := store.NewMemory()
	svc := core.NewExpenseService(st, nil)

	_, err := svc.Create(context.Background(), core.ExpenseInput{
		Amount:      decimal.RequireFromString("99.50"),
		Category:    core.ExpenseInventory,
		Description: "bolsas de cemento",
		Date:        time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	expenses, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("len = %d, want 1", len(expenses))
	}
	got := expenses[0]
	if !got.Amount.Equal(decimal.RequireFromString("99.50")) {
		t.Errorf("amount = %s", got.Amount)
	}
	if got.Category != core.ExpenseInventory || got.Description != "bolsas de cemento" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}
