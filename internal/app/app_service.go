package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"sales-register/internal/core"
	"sales-register/internal/export"
	"sales-register/internal/identity"
	colsync "sales-register/internal/sync"
)

type appService struct {
	sales    core.SaleService
	products core.ProductService
	clients  core.ClientService
	expenses core.ExpenseService
	history  *core.HistoryAggregator
	ids      *identity.Manager

	productsView *colsync.Collection
	clientsView  *colsync.Collection
}

// NewAppService constructs an appService that satisfies ApplicationService.
// productsView and clientsView are the live subscriptions backing the
// catalog snapshots returned by the list operations.
func NewAppService(
	sales core.SaleService,
	products core.ProductService,
	clients core.ClientService,
	expenses core.ExpenseService,
	history *core.HistoryAggregator,
	ids *identity.Manager,
	productsView, clientsView *colsync.Collection,
) ApplicationService {
	return &appService{
		sales:        sales,
		products:     products,
		clients:      clients,
		expenses:     expenses,
		history:      history,
		ids:          ids,
		productsView: productsView,
		clientsView:  clientsView,
	}
}

// ── Sales ─────────────────────────────────────────────────────────────────────

func (s *appService) RegisterSale(ctx context.Context, req RegisterSaleRequest) (*SaleResult, error) {
	sale, err := s.sales.Register(ctx, core.SaleInput{
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		Unit:          core.Unit(req.Unit),
		ClientName:    req.ClientName,
		PaymentStatus: core.PaymentStatus(req.PaymentStatus),
	})
	if err != nil {
		return nil, err
	}
	return &SaleResult{Sale: sale}, nil
}

func (s *appService) EditSale(ctx context.Context, saleID string, req EditSaleRequest) (*SaleResult, error) {
	price, err := parseDecimal("price", req.Price)
	if err != nil {
		return nil, err
	}
	sale, err := s.sales.Edit(ctx, saleID, core.SaleEdit{
		ClientName: req.ClientName,
		Quantity:   req.Quantity,
		Price:      price,
	})
	if err != nil {
		return nil, err
	}
	return &SaleResult{Sale: sale}, nil
}

func (s *appService) SetSalePayment(ctx context.Context, saleID, status string) error {
	return s.sales.SetPaymentStatus(ctx, saleID, core.PaymentStatus(status))
}

func (s *appService) DeleteSale(ctx context.Context, actor core.Actor, saleID string) error {
	return s.sales.Delete(ctx, actor, saleID)
}

func (s *appService) GetHistory(ctx context.Context, req HistoryRequest) (*HistoryResult, error) {
	sales, err := s.sales.List(ctx)
	if err != nil {
		return nil, err
	}
	filtered := s.history.Filter(sales, core.SaleFilter{Term: req.Term, DebtOnly: req.DebtOnly})
	return &HistoryResult{
		Days:  s.history.GroupByDay(filtered),
		Total: len(filtered),
	}, nil
}

// ── Catalog ───────────────────────────────────────────────────────────────────

func (s *appService) ListProducts(ctx context.Context, term string) (*ProductListResult, error) {
	products, err := s.products.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{
		Products: products,
		Loading:  s.productsView.Loading(),
		Stale:    s.productsView.Err() != nil,
	}, nil
}

func (s *appService) CreateProduct(ctx context.Context, req ProductRequest) (*ProductResult, error) {
	input, err := productInput(req)
	if err != nil {
		return nil, err
	}
	product, err := s.products.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: product}, nil
}

func (s *appService) UpdateProduct(ctx context.Context, id string, req ProductRequest) (*ProductResult, error) {
	input, err := productInput(req)
	if err != nil {
		return nil, err
	}
	product, err := s.products.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: product}, nil
}

func (s *appService) DeleteProduct(ctx context.Context, id string) error {
	return s.products.Delete(ctx, id)
}

// ── Clients ───────────────────────────────────────────────────────────────────

func (s *appService) ListClients(ctx context.Context, term string) (*ClientListResult, error) {
	clients, err := s.clients.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	return &ClientListResult{
		Clients: clients,
		Loading: s.clientsView.Loading(),
		Stale:   s.clientsView.Err() != nil,
	}, nil
}

func (s *appService) CreateClient(ctx context.Context, req ClientRequest) (*ClientResult, error) {
	client, err := s.clients.Create(ctx, core.ClientInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		return nil, err
	}
	return &ClientResult{Client: client}, nil
}

func (s *appService) UpdateClient(ctx context.Context, id string, req ClientRequest) (*ClientResult, error) {
	client, err := s.clients.Update(ctx, id, core.ClientInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		return nil, err
	}
	return &ClientResult{Client: client}, nil
}

// ── Expenses ──────────────────────────────────────────────────────────────────

func (s *appService) RecordExpense(ctx context.Context, req ExpenseRequest) (*ExpenseResult, error) {
	amount, err := parseDecimal("amount", req.Amount)
	if err != nil {
		return nil, err
	}
	var date time.Time
	if strings.TrimSpace(req.Date) != "" {
		date, err = time.Parse(time.RFC3339, req.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", req.Date, err)
		}
	}
	expense, err := s.expenses.Create(ctx, core.ExpenseInput{
		Amount:      amount,
		Category:    core.ExpenseCategory(req.Category),
		Description: req.Description,
		Date:        date,
	})
	if err != nil {
		return nil, err
	}
	return &ExpenseResult{Expense: expense}, nil
}

func (s *appService) ListExpenses(ctx context.Context) (*ExpenseListResult, error) {
	expenses, err := s.expenses.List(ctx)
	if err != nil {
		return nil, err
	}
	return &ExpenseListResult{
		Expenses:   expenses,
		Categories: core.KnownExpenseCategories(),
	}, nil
}

// ── Exports ───────────────────────────────────────────────────────────────────

func (s *appService) ExportSales(ctx context.Context, w io.Writer) error {
	sales, err := s.sales.List(ctx)
	if err != nil {
		return err
	}
	return export.WriteSales(w, sales)
}

func (s *appService) ExportExpenses(ctx context.Context, w io.Writer) error {
	expenses, err := s.expenses.List(ctx)
	if err != nil {
		return err
	}
	return export.WriteExpenses(w, expenses)
}

// ── Identity ──────────────────────────────────────────────────────────────────

func (s *appService) Login(ctx context.Context, username, password string) (*SessionResult, error) {
	session, err := s.ids.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return &SessionResult{
		Token:     session.Token,
		Actor:     session.Actor,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *appService) Logout(token string) {
	s.ids.Logout(token)
}

func (s *appService) Authenticate(token string) (core.Actor, error) {
	return s.ids.Authenticate(token)
}

func (s *appService) CreateAccount(ctx context.Context, actor core.Actor, req AccountRequest) (*AccountResult, error) {
	account, err := s.ids.CreateAccount(ctx, actor, req.Username, req.Password, core.Role(req.Role))
	if err != nil {
		return nil, err
	}
	return &AccountResult{Account: account}, nil
}

func (s *appService) ListAccounts(ctx context.Context, actor core.Actor) (*AccountListResult, error) {
	accounts, err := s.ids.ListAccounts(ctx, actor)
	if err != nil {
		return nil, err
	}
	return &AccountListResult{Accounts: accounts}, nil
}

func (s *appService) SetAccountRole(ctx context.Context, actor core.Actor, userID, role string) error {
	return s.ids.SetRole(ctx, actor, userID, core.Role(role))
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func productInput(req ProductRequest) (core.ProductInput, error) {
	price, err := parseDecimal("price", req.Price)
	if err != nil {
		return core.ProductInput{}, err
	}
	return core.ProductInput{
		Name:        req.Name,
		Category:    core.Category(req.Category),
		Price:       price,
		Stock:       req.Stock,
		Description: req.Description,
	}, nil
}

func parseDecimal(field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", field, raw, err)
	}
	return d, nil
}
