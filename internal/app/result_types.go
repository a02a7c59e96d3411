package app

import (
	"time"

	"sales-register/internal/core"
)

// SaleResult is returned by sale lifecycle operations.
type SaleResult struct {
	Sale *core.Sale
}

// HistoryResult is returned by GetHistory. Days are ordered newest first.
type HistoryResult struct {
	Days  []core.DayBucket
	Total int // sale count after filtering
}

// ProductListResult is returned by ListProducts. Loading and Stale report
// the state of the live catalog snapshot: Stale means the last refresh
// failed and Products is the previous good snapshot.
type ProductListResult struct {
	Products []core.Product
	Loading  bool
	Stale    bool
}

// ProductResult is returned by product create and update.
type ProductResult struct {
	Product *core.Product
}

// ClientListResult is returned by ListClients.
type ClientListResult struct {
	Clients []core.Client
	Loading bool
	Stale   bool
}

// ClientResult is returned by client create and update.
type ClientResult struct {
	Client *core.Client
}

// ExpenseResult is returned by RecordExpense.
type ExpenseResult struct {
	Expense *core.Expense
}

// ExpenseListResult is returned by ListExpenses.
type ExpenseListResult struct {
	Expenses   []core.Expense
	Categories []core.ExpenseCategory
}

// SessionResult is returned by Login.
type SessionResult struct {
	Token     string
	Actor     core.Actor
	ExpiresAt time.Time
}

// AccountResult is returned by CreateAccount.
type AccountResult struct {
	Account *core.UserAccount
}

// AccountListResult is returned by ListAccounts.
type AccountListResult struct {
	Accounts []core.UserAccount
}
