package dbtest

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/ghuser/orderdesk/pkg/database"
)

// Fixtures write rows with plain SQL so integration tests of one bounded
// context do not depend on another context's repositories.

// SeedCompany inserts a company with a unique domain.
func SeedCompany(t testing.TB, db *database.Database) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.DB().ExecContext(context.Background(),
		`INSERT INTO companies (id, name, domain) VALUES ($1, $2, $3)`,
		id, "company-"+id.String()[:8], id.String()+".test")
	if err != nil {
		t.Fatalf("dbtest: seed company: %v", err)
	}
	return id
}

// SeedAccount inserts an unblocked account with the given role.
func SeedAccount(t testing.TB, db *database.Database, companyID uuid.UUID, role string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.DB().ExecContext(context.Background(),
		`INSERT INTO accounts (id, company_id, username, email, password_hash, role)
		 VALUES ($1, $2, $3, $4, 'x', $5)`,
		id, companyID, "user_"+id.String(), id.String()+"@example.test", role)
	if err != nil {
		t.Fatalf("dbtest: seed account: %v", err)
	}
	return id
}

// SeedProduct inserts an active product with the given stock.
func SeedProduct(t testing.TB, db *database.Database, companyID uuid.UUID, stock int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.DB().ExecContext(context.Background(),
		`INSERT INTO products (id, company_id, sku, name, stock_quantity) VALUES ($1, $2, $3, $4, $5)`,
		id, companyID, "SKU-"+id.String(), "product "+id.String()[:8], stock)
	if err != nil {
		t.Fatalf("dbtest: seed product: %v", err)
	}
	return id
}

// SeedOrder inserts an order in the given status.
func SeedOrder(t testing.TB, db *database.Database, companyID, productID, accountID uuid.UUID, quantity int, status string, processed bool) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.DB().ExecContext(context.Background(),
		`INSERT INTO orders (id, reference_code, company_id, product_id, created_by, quantity, status, has_been_processed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, uuid.New(), companyID, productID, accountID, quantity, status, processed)
	if err != nil {
		t.Fatalf("dbtest: seed order: %v", err)
	}
	return id
}

// StockOf reads a product's stock directly.
func StockOf(t testing.TB, db *database.Database, productID uuid.UUID) int {
	t.Helper()
	var stock int
	if err := db.DB().QueryRowContext(context.Background(),
		`SELECT stock_quantity FROM products WHERE id = $1`, productID).Scan(&stock); err != nil {
		t.Fatalf("dbtest: read stock: %v", err)
	}
	return stock
}
