package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"sales-register/internal/store"
)

// ClientInput holds the fields captured by the client form. The display
// name is derived, not submitted.
type ClientInput struct {
	FirstName string
	LastName  string
	Phone     string
}

// ClientService manages the client roster.
type ClientService interface {
	// Create adds a client. The display name is "<first> <last>" trimmed.
	Create(ctx context.Context, input ClientInput) (*Client, error)

	// Update edits a client in place, re-deriving the display name.
	Update(ctx context.Context, id string, input ClientInput) (*Client, error)

	// List returns all clients, newest first.
	List(ctx context.Context) ([]Client, error)

	// Search filters clients by name or phone substring.
	Search(ctx context.Context, term string) ([]Client, error)
}

type clientService struct {
	store store.Store
	log   *zap.Logger
}

func NewClientService(st store.Store, log *zap.Logger) ClientService {
	if log == nil {
		log = zap.NewNop()
	}
	return &clientService{store: st, log: log}
}

// displayName derives the searchable display name stored on the document.
func displayName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

func (s *clientService) Create(ctx context.Context, input ClientInput) (*Client, error) {
	name := displayName(input.FirstName, input.LastName)
	if name == "" {
		return nil, validationErr("name", "client name is required")
	}
	c := Client{
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Name:      name,
		Phone:     strings.TrimSpace(input.Phone),
	}
	res := s.store.Create(ctx, store.Clients, c.Fields())
	if !res.OK {
		return nil, &StoreError{Op: "create", Collection: store.Clients, Cause: res.Err}
	}
	c.ID = res.ID
	s.log.Info("client created", zap.String("client_id", c.ID), zap.String("name", c.Name))
	return &c, nil
}

func (s *clientService) Update(ctx context.Context, id string, input ClientInput) (*Client, error) {
	name := displayName(input.FirstName, input.LastName)
	if name == "" {
		return nil, validationErr("name", "client name is required")
	}
	c := Client{
		ID:        id,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Name:      name,
		Phone:     strings.TrimSpace(input.Phone),
	}
	res := s.store.Update(ctx, store.Clients, id, c.Fields())
	if !res.OK {
		return nil, &StoreError{Op: "update", Collection: store.Clients, Cause: res.Err}
	}
	return &c, nil
}

func (s *clientService) List(ctx context.Context) ([]Client, error) {
	docs, err := s.store.List(ctx, store.Clients, "createdAt")
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	clients := make([]Client, 0, len(docs))
	for _, d := range docs {
		clients = append(clients, ClientFromDoc(d))
	}
	return clients, nil
}

func (s *clientService) Search(ctx context.Context, term string) ([]Client, error) {
	clients, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return clients, nil
	}
	out := clients[:0]
	for _, c := range clients {
		if strings.Contains(strings.ToLower(c.Name), term) || strings.Contains(c.Phone, term) {
			out = append(out, c)
		}
	}
	return out, nil
}
