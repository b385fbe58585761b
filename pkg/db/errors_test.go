package db

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolationPgError(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "idx_farmer_sku"}

	if !IsUniqueViolation(err, "") {
		t.Fatal("expected unique violation without constraint filter")
	}
	if !IsUniqueViolation(err, "idx_farmer_sku") {
		t.Fatal("expected unique violation for matching constraint")
	}
	if IsUniqueViolation(err, "profiles_wallet_address_key") {
		t.Fatal("did not expect match for a different constraint")
	}
}

func TestIsUniqueViolationSQLiteMessage(t *testing.T) {
	err := errors.New("UNIQUE constraint failed: products.farmer_id, products.product_sku")
	if !IsUniqueViolation(err, "") {
		t.Fatal("expected sqlite unique violation to be detected")
	}
}

func TestIsUniqueViolationNil(t *testing.T) {
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error is not a violation")
	}
}
