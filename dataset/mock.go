package dataset

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/google/uuid"
)

var (
	mockCurrencies = []string{"EUR", "USD", "GBP"}
	mockNames      = []string{"Checking", "Savings", "Cash", "Brokerage", "Credit", "Travel"}
	mockPayees     = []string{"Grocer", "Landlord", "Utility", "Employer", "Cafe", "Bookshop"}
)

// GenAndSaveFixture generates random dataset objects and saves them to file system.
func GenAndSaveFixture(filePath string, accounts, payees, transactions int) error {
	if accounts <= 0 {
		return fmt.Errorf("%s: must be GT 0", "accounts")
	}
	if payees < 0 {
		return fmt.Errorf("%s: must be GTE 0", "payees")
	}
	if transactions < 0 {
		return fmt.Errorf("%s: must be GTE 0", "transactions")
	}

	log.Printf("Creating objects...")
	f := newMockFixture(accounts, payees, transactions)

	log.Printf("Saving file...")
	if err := SaveFixture(filePath, f); err != nil {
		return err
	}

	log.Printf("Done")

	return nil
}

// newMockFixture builds mock dataset objects.
func newMockFixture(accounts, payees, transactions int) Fixture {
	f := Fixture{}

	for i := 0; i < accounts; i++ {
		f.Accounts = append(f.Accounts, AccountFixture{
			Id:       uuid.New().String(),
			Name:     fmt.Sprintf("%s %d", mockNames[rand.Intn(len(mockNames))], i),
			Currency: mockCurrencies[rand.Intn(len(mockCurrencies))],
		})
	}
	for i := 0; i < payees; i++ {
		f.Payees = append(f.Payees, PayeeFixture{
			Id:   uuid.New().String(),
			Name: fmt.Sprintf("%s %d", mockPayees[rand.Intn(len(mockPayees))], i),
		})
	}
	for i := 0; i < transactions; i++ {
		tx := TransactionFixture{
			Id:          uuid.New().String(),
			Account:     f.Accounts[rand.Intn(len(f.Accounts))].Id,
			Amount:      rand.Int63n(200000) - 100000 + 1,
			Description: fmt.Sprintf("mock %d", i),
		}
		if tx.Amount == 0 {
			tx.Amount = 1
		}
		if len(f.Payees) > 0 {
			tx.Payee = f.Payees[rand.Intn(len(f.Payees))].Id
		}
		f.Transactions = append(f.Transactions, tx)
	}

	return f
}
