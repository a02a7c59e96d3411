package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"sales-register/internal/core"
	"sales-register/internal/store"
	colsync "sales-register/internal/sync"
)

func TestClientCreate_DerivesDisplayName(t *testing.T) {
	st := store.NewMemory()
	svc := core.NewClientService(st, nil)

	client, err := svc.Create(context.Background(), core.ClientInput{
		FirstName: "  Juan ",
		LastName:  " Perez  ",
		Phone:     "555-0101",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if client.Name != "Juan Perez" {
		t.Errorf("name = %q, want %q", client.Name, "Juan Perez")
	}
}

func TestClientCreate_RequiresAName(t *testing.T) {
	st := store.NewMemory()
	svc := core.NewClientService(st, nil)

	_, err := svc.Create(context.Background(), core.ClientInput{Phone: "555-0101"})
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// Last name alone is enough.
	if _, err := svc.Create(context.Background(), core.ClientInput{LastName: "Perez"}); err != nil {
		t.Errorf("last-name-only rejected: %v", err)
	}
}

func TestClientSearch(t *testing.T) {
	st := store.NewMemory()
	svc := core.NewClientService(st, nil)

	seed := []core.ClientInput{
		{FirstName: "Juan", LastName: "Perez", Phone: "555-0101"},
		{FirstName: "Maria", LastName: "Lopez", Phone: "555-0202"},
	}
	for _, in := range seed {
		if _, err := svc.Create(context.Background(), in); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	byName, err := svc.Search(context.Background(), "PEREZ")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(byName) != 1 || byName[0].Name != "Juan Perez" {
		t.Errorf("search by name = %v", byName)
	}

	byPhone, err := svc.Search(context.Background(), "0202")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(byPhone) != 1 || byPhone[0].Name != "Maria Lopez" {
		t.Errorf("search by phone = %v", byPhone)
	}
}

func TestProductService_CreateValidateAndSearch(t *testing.T) {
	st := store.NewMemory()
	svc := core.NewProductService(st, nil)

	if _, err := svc.Create(context.Background(), core.ProductInput{Name: " "}); err == nil {
		t.Error("blank name accepted")
	}
	if _, err := svc.Create(context.Background(), core.ProductInput{Name: "Cal", Stock: -1}); err == nil {
		t.Error("negative stock accepted")
	}

	for _, in := range []core.ProductInput{
		{Name: "Cemento Portland", Category: "Construcción", Stock: 10},
		{Name: "Cal hidratada", Category: "Construcción", Stock: 5},
	} {
		if _, err := svc.Create(context.Background(), in); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	got, err := svc.Search(context.Background(), "cemento")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Cemento Portland" {
		t.Errorf("search = %v", got)
	}
}

// TestSyncView_ResolvesAgainstLiveSubscriptions drives the real pipeline:
// store write, watch delivery, cached view, name resolution.
func TestSyncView_ResolvesAgainstLiveSubscriptions(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()

	products, err := colsync.Subscribe(ctx, st, store.Products, "createdAt")
	if err != nil {
		t.Fatalf("subscribe products: %v", err)
	}
	defer products.Close()
	clients, err := colsync.Subscribe(ctx, st, store.Clients, "createdAt")
	if err != nil {
		t.Fatalf("subscribe clients: %v", err)
	}
	defer clients.Close()

	view := core.NewSyncView(products, clients)

	res := st.Create(ctx, store.Clients, core.Client{Name: "Juan Perez"}.Fields())
	if !res.OK {
		t.Fatalf("create client: %v", res.Err)
	}

	deadline := time.After(2 * time.Second)
	for {
		if c, ok := view.ClientByName("juan perez"); ok {
			if c.Name != "Juan Perez" {
				t.Fatalf("resolved wrong client: %+v", c)
			}
			return
		}
		select {
		case <-clients.Changes():
		case <-deadline:
			t.Fatal("client never appeared in the live view")
		}
	}
}
