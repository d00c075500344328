package advice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dvloznov/wealthsense/internal/domain"
	"github.com/shopspring/decimal"
)

// mockGenerator is a mock implementation of Generator.
type mockGenerator struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
	calls        int
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.calls++
	return m.GenerateFunc(ctx, prompt)
}

func TestAdviseWithoutCredential(t *testing.T) {
	advisor := NewAdvisor(nil)

	got, err := advisor.Advise(context.Background(), domain.DemoTransactions(), domain.DemoAccounts())
	if err != nil {
		t.Fatalf("Advise: %v", err)
	}
	if got != NoCredentialMessage {
		t.Errorf("Advise() = %q, want the fixed message", got)
	}
	if advisor.Enabled() {
		t.Error("advisor without generator should report disabled")
	}
}

func TestAdvise(t *testing.T) {
	boom := errors.New("quota exceeded")

	tests := []struct {
		name    string
		reply   string
		err     error
		want    string
		wantErr error
	}{
		{name: "text is returned", reply: "Spend less on shopping.", want: "Spend less on shopping."},
		{name: "blank text", reply: "  \n", want: EmptyAdviceMessage},
		{name: "generator failure", err: boom, wantErr: boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &mockGenerator{GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
				return tt.reply, tt.err
			}}

			got, err := NewAdvisor(gen).Advise(context.Background(), domain.DemoTransactions(), domain.DemoAccounts())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Advise() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("Advise() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Advise() = %q, want %q", got, tt.want)
			}
			if gen.calls != 1 {
				t.Errorf("generator called %d times, want exactly 1", gen.calls)
			}
		})
	}
}

func TestBuildPromptContainsFigures(t *testing.T) {
	prompt, err := BuildPrompt(domain.DemoAccounts(), domain.DemoTransactions())
	if err != nil {
		t.Fatalf("BuildPrompt: %v", err)
	}

	for _, want := range []string{
		"Total balance: 62000.00",
		"Income: 35000.00",
		"Expense: 1850.00",
		"  - Food: 150.00\n  - Shopping: 1200.00\n  - Transport: 500.00",
		`"id": "t4"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q\n%s", want, prompt)
		}
	}
}

func TestBuildPromptSamplesTenMostRecent(t *testing.T) {
	var txs []domain.Transaction
	for day := 1; day <= 15; day++ {
		txs = append(txs, domain.Transaction{
			ID:     fmt.Sprintf("d%d", day),
			Amount: decimal.NewFromInt(1),
			Date:   fmt.Sprintf("2024-03-%02d", day),
			Type:   domain.TransactionExpense,
		})
	}

	prompt, err := BuildPrompt(nil, txs)
	if err != nil {
		t.Fatal(err)
	}

	start := strings.Index(prompt, "[")
	end := strings.LastIndex(prompt, "]")
	var sample []domain.Transaction
	if err := json.Unmarshal([]byte(prompt[start:end+1]), &sample); err != nil {
		t.Fatalf("sample is not JSON: %v", err)
	}
	if len(sample) != RecentSampleSize {
		t.Fatalf("sample size = %d, want %d", len(sample), RecentSampleSize)
	}
	if sample[0].ID != "d15" || sample[9].ID != "d6" {
		t.Errorf("sample should run from d15 down to d6, got %s..%s", sample[0].ID, sample[9].ID)
	}
}
