package app

import (
	"context"
	"io"

	"sales-register/internal/core"
)

// ApplicationService is the single interface UI adapters call. It decouples
// presentation from business logic. Implementations must contain no display
// logic of any kind.
type ApplicationService interface {
	// RegisterSale runs the full sale registration workflow: validation,
	// client resolution, sale persistence and stock deduction.
	RegisterSale(ctx context.Context, req RegisterSaleRequest) (*SaleResult, error)

	// EditSale updates client, quantity and price of a sale and recomputes
	// its total. Stock is not adjusted.
	EditSale(ctx context.Context, saleID string, req EditSaleRequest) (*SaleResult, error)

	// SetSalePayment flips a sale between paid and debt.
	SetSalePayment(ctx context.Context, saleID, status string) error

	// DeleteSale removes a sale permanently. Admin only.
	DeleteSale(ctx context.Context, actor core.Actor, saleID string) error

	// GetHistory returns sales filtered and grouped by civil day, newest
	// day first.
	GetHistory(ctx context.Context, req HistoryRequest) (*HistoryResult, error)

	// ListProducts returns the live catalog snapshot together with its
	// loading and staleness state.
	ListProducts(ctx context.Context, term string) (*ProductListResult, error)

	CreateProduct(ctx context.Context, req ProductRequest) (*ProductResult, error)
	UpdateProduct(ctx context.Context, id string, req ProductRequest) (*ProductResult, error)
	DeleteProduct(ctx context.Context, id string) error

	// ListClients returns the client roster, optionally filtered by name or
	// phone substring.
	ListClients(ctx context.Context, term string) (*ClientListResult, error)

	CreateClient(ctx context.Context, req ClientRequest) (*ClientResult, error)
	UpdateClient(ctx context.Context, id string, req ClientRequest) (*ClientResult, error)

	// RecordExpense records an outgoing payment.
	RecordExpense(ctx context.Context, req ExpenseRequest) (*ExpenseResult, error)

	// ListExpenses returns all expenses, newest first, plus the category
	// starter set for the form.
	ListExpenses(ctx context.Context) (*ExpenseListResult, error)

	// ExportSales writes the full sale history as an XLSX workbook to w.
	ExportSales(ctx context.Context, w io.Writer) error

	// ExportExpenses writes all expenses as an XLSX workbook to w.
	ExportExpenses(ctx context.Context, w io.Writer) error

	// Login verifies credentials and opens a session.
	Login(ctx context.Context, username, password string) (*SessionResult, error)

	// Logout revokes the session behind a token. Never fails.
	Logout(token string)

	// Authenticate resolves a session token to its actor.
	Authenticate(token string) (core.Actor, error)

	// CreateAccount provisions a new login. Admin only.
	CreateAccount(ctx context.Context, actor core.Actor, req AccountRequest) (*AccountResult, error)

	// ListAccounts returns all provisioned logins. Admin only.
	ListAccounts(ctx context.Context, actor core.Actor) (*AccountListResult, error)

	// SetAccountRole changes an account's role. Admin only.
	SetAccountRole(ctx context.Context, actor core.Actor, userID, role string) error
}
