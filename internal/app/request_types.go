package app

// RegisterSaleRequest is the input to RegisterSale. Price is not accepted
// here; it is frozen from the catalog at registration time.
type RegisterSaleRequest struct {
	ProductID     string
	Quantity      int64
	Unit          string
	ClientName    string
	PaymentStatus string
}

// EditSaleRequest is the mutable subset of an existing sale. Price is the
// decimal string form.
type EditSaleRequest struct {
	ClientName string
	Quantity   int64
	Price      string
}

// HistoryRequest narrows the history listing. Term matches client or
// product name as a case-insensitive substring.
type HistoryRequest struct {
	Term     string
	DebtOnly bool
}

// ProductRequest is the input to product create and update. Price is the
// decimal string form.
type ProductRequest struct {
	Name        string
	Category    string
	Price       string
	Stock       int64
	Description string
}

// ClientRequest is the input to client create and update.
type ClientRequest struct {
	FirstName string
	LastName  string
	Phone     string
}

// ExpenseRequest is the input to RecordExpense. Amount is the decimal
// string form; Date is RFC 3339 and defaults to now when empty.
type ExpenseRequest struct {
	Amount      string
	Category    string
	Description string
	Date        string
}

// AccountRequest is the input to CreateAccount.
type AccountRequest struct {
	Username string
	Password string
	Role     string
}
