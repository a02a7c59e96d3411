// Command seed-admin provisions the first administrator account directly,
// bypassing the admin-only API path that otherwise gates account creation.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"sales-register/internal/db"
	"sales-register/internal/store"
)

func main() {
	_ = godotenv.Load()

	username := strings.TrimSpace(os.Getenv("ADMIN_USERNAME"))
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || len(password) < 6 {
		fmt.Println("ADMIN_USERNAME and ADMIN_PASSWORD (min 6 chars) must be set")
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		fmt.Printf("Failed to connect to DB: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	st := store.NewPostgres(pool, nil)
	docs, err := st.List(ctx, store.Users, "createdAt")
	if err != nil {
		fmt.Printf("Failed to list users: %v\n", err)
		os.Exit(1)
	}
	for _, d := range docs {
		if existing, _ := d.Fields["username"].(string); strings.EqualFold(existing, username) {
			fmt.Printf("User %s already exists.\n", username)
			os.Exit(1)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Printf("Failed to hash password: %v\n", err)
		os.Exit(1)
	}
	res := st.Create(ctx, store.Users, map[string]any{
		"username":     username,
		"passwordHash": string(hash),
		"role":         "admin",
	})
	if !res.OK {
		fmt.Printf("Failed to create user: %v\n", res.Err)
		os.Exit(1)
	}
	fmt.Printf("Admin %s created (%s).\n", username, res.ID)
}
