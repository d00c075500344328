package domain

import "github.com/shopspring/decimal"

// DemoUser is the profile used in demo mode.
var DemoUser = UserProfile{UID: "demo-user-123", Email: "demo@example.com"}

// DemoAccounts returns a fresh copy of the demo account fixtures.
func DemoAccounts() []Account {
	return []Account{
		{ID: "acc1", UserID: DemoUser.UID, Name: "Everyday Checking", Type: "savings", Balance: decimal.NewFromInt(50000), Color: "bg-blue-500"},
		{ID: "acc2", UserID: DemoUser.UID, Name: "Online Savings", Type: "savings", Balance: decimal.NewFromInt(12000), Color: "bg-rose-500"},
	}
}

// DemoTransactions returns a fresh copy of the demo transaction fixtures.
func DemoTransactions() []Transaction {
	return []Transaction{
		{ID: "t1", UserID: DemoUser.UID, AccountID: "acc1", Amount: decimal.NewFromInt(35000), Category: "Salary", Description: "February salary", Date: "2024-02-05", Type: TransactionIncome},
		{ID: "t2", UserID: DemoUser.UID, AccountID: "acc1", Amount: decimal.NewFromInt(150), Category: "Food", Description: "Lunch box", Date: "2024-02-10", Type: TransactionExpense},
		{ID: "t3", UserID: DemoUser.UID, AccountID: "acc2", Amount: decimal.NewFromInt(1200), Category: "Shopping", Description: "New clothes", Date: "2024-02-11", Type: TransactionExpense},
		{ID: "t4", UserID: DemoUser.UID, AccountID: "acc1", Amount: decimal.NewFromInt(500), Category: "Transport", Description: "Fuel", Date: "2024-02-12", Type: TransactionExpense},
	}
}
