package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dvloznov/wealthsense/internal/domain"
	"github.com/dvloznov/wealthsense/internal/store"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "data", "wealthsense.db"))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wealthsense.db")
	if err := RunMigrations(path); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second run: %v", err)
	}
}

func TestAccountsRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	created, err := repo.CreateAccount(ctx, "u1", domain.Account{
		Name:    "Card",
		Type:    "credit",
		Balance: decimal.RequireFromString("-1234.56"),
		Color:   "bg-rose-500",
	})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if _, err := repo.CreateAccount(ctx, "u1", domain.Account{ID: "acc-b", Name: "Savings", Balance: decimal.NewFromInt(10)}); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	got, err := repo.ListAccounts(ctx, "u1")
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	want := []domain.Account{
		created,
		{ID: "acc-b", UserID: "u1", Name: "Savings", Balance: decimal.NewFromInt(10)},
	}
	if diff := cmp.Diff(want, got, decimalComparer); diff != "" {
		t.Errorf("ListAccounts mismatch (-want +got):\n%s", diff)
	}

	other, err := repo.ListAccounts(ctx, "u2")
	if err != nil || len(other) != 0 {
		t.Errorf("other user sees %d accounts (err %v)", len(other), err)
	}
}

func TestAccountUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	a, err := repo.CreateAccount(ctx, "u1", domain.Account{ID: "a1", Name: "Wallet"})
	if err != nil {
		t.Fatal(err)
	}

	a.Balance = decimal.NewFromInt(42)
	if err := repo.UpdateAccount(ctx, "u1", a); err != nil {
		t.Fatalf("UpdateAccount: %v", err)
	}
	if err := repo.UpdateAccount(ctx, "u2", a); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("update by other user: got %v", err)
	}

	list, _ := repo.ListAccounts(ctx, "u1")
	if len(list) != 1 || !list[0].Balance.Equal(decimal.NewFromInt(42)) {
		t.Errorf("unexpected accounts: %+v", list)
	}

	if err := repo.DeleteAccount(ctx, "u1", "a1"); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if err := repo.DeleteAccount(ctx, "u1", "a1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: got %v", err)
	}
}

func TestTransactionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	for _, tx := range domain.DemoTransactions() {
		if _, err := repo.CreateTransaction(ctx, "u1", tx); err != nil {
			t.Fatalf("CreateTransaction(%s): %v", tx.ID, err)
		}
	}

	got, err := repo.ListTransactions(ctx, "u1")
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	want := domain.DemoTransactions()
	for i := range want {
		want[i].UserID = "u1"
	}
	if diff := cmp.Diff(want, got, decimalComparer); diff != "" {
		t.Errorf("ListTransactions mismatch (-want +got):\n%s", diff)
	}

	updated := got[1]
	updated.Amount = decimal.RequireFromString("151.25")
	updated.Date = "yesterday"
	if err := repo.UpdateTransaction(ctx, "u1", updated); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	got, _ = repo.ListTransactions(ctx, "u1")
	if !got[1].Amount.Equal(decimal.RequireFromString("151.25")) || got[1].Date != "yesterday" {
		t.Errorf("update not persisted: %+v", got[1])
	}

	if err := repo.DeleteTransaction(ctx, "u1", "t1"); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if err := repo.DeleteTransaction(ctx, "u9", "t2"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("delete by other user: got %v", err)
	}
}

func TestCreateTransactionValidates(t *testing.T) {
	repo := newTestRepository(t)
	_, err := repo.CreateTransaction(context.Background(), "u1", domain.Transaction{Type: domain.TransactionIncome, Amount: decimal.NewFromInt(-3)})
	if !errors.Is(err, domain.ErrNegativeAmount) {
		t.Errorf("got %v, want ErrNegativeAmount", err)
	}
}

func TestListTransactionsSkipsInvalidRows(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, id, amount, direction) VALUES
			('u1', 'good', '10', 'income'),
			('u1', 'bad-type', '10', 'transfer'),
			('u1', 'bad-amount', 'ten', 'EXPENSE'),
			('u1', 'negative', '-5', 'EXPENSE'),
			('u1', '', '1', 'EXPENSE')`)
	if err != nil {
		t.Fatalf("seeding rows: %v", err)
	}

	got, err := repo.ListTransactions(ctx, "u1")
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(got) != 1 || got[0].ID != "good" || got[0].Type != domain.TransactionIncome {
		t.Errorf("expected only the valid row, got %+v", got)
	}
}

func TestUserDirectory(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	user, err := repo.CreateUser(ctx, store.UserRecord{Email: "Jo@Example.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := repo.CreateUser(ctx, store.UserRecord{Email: "jo@example.com ", PasswordHash: "x"}); !errors.Is(err, store.ErrUserExists) {
		t.Errorf("duplicate email: got %v", err)
	}

	found, err := repo.FindUserByEmail(ctx, "JO@example.com")
	if err != nil {
		t.Fatalf("FindUserByEmail: %v", err)
	}
	if found.UID != user.UID || found.PasswordHash != "hash" || found.Email != "jo@example.com" {
		t.Errorf("unexpected user: %+v", found)
	}

	if _, err := repo.FindUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing user: got %v", err)
	}
}
