package core

import (
	"strings"

	colsync "sales-register/internal/sync"
)

// CatalogView is the read surface the sale coordinator validates against:
// point-in-time snapshots of the product and client collections. The view
// is explicitly a snapshot, not a store-enforced condition; the store's
// conditional decrement covers the gap (see SaleService.Register).
type CatalogView interface {
	Products() []Product
	Clients() []Client
	ProductByID(id string) (Product, bool)
	// ClientByName resolves a client by case-insensitive exact match on the
	// display name.
	ClientByName(name string) (Client, bool)
}

// SyncView adapts two live sync.Collection views into a CatalogView.
type SyncView struct {
	products *colsync.Collection
	clients  *colsync.Collection
}

// NewSyncView wraps the product and client subscriptions.
func NewSyncView(products, clients *colsync.Collection) *SyncView {
	return &SyncView{products: products, clients: clients}
}

func (v *SyncView) Products() []Product {
	docs := v.products.Snapshot()
	out := make([]Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, ProductFromDoc(d))
	}
	return out
}

func (v *SyncView) Clients() []Client {
	docs := v.clients.Snapshot()
	out := make([]Client, 0, len(docs))
	for _, d := range docs {
		out = append(out, ClientFromDoc(d))
	}
	return out
}

func (v *SyncView) ProductByID(id string) (Product, bool) {
	for _, d := range v.products.Snapshot() {
		if d.ID == id {
			return ProductFromDoc(d), true
		}
	}
	return Product{}, false
}

func (v *SyncView) ClientByName(name string) (Client, bool) {
	for _, d := range v.clients.Snapshot() {
		c := ClientFromDoc(d)
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Client{}, false
}
