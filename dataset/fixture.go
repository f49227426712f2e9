package dataset

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type (
	// Fixture is the YAML representation of the live dataset items.
	Fixture struct {
		Accounts     []AccountFixture     `yaml:"accounts"`
		Payees       []PayeeFixture       `yaml:"payees"`
		Transactions []TransactionFixture `yaml:"transactions"`
	}

	AccountFixture struct {
		Id       string `yaml:"id"`
		Name     string `yaml:"name"`
		Currency string `yaml:"currency"`
		Closed   bool   `yaml:"closed,omitempty"`
	}

	PayeeFixture struct {
		Id   string `yaml:"id"`
		Name string `yaml:"name"`
	}

	TransactionFixture struct {
		Id          string `yaml:"id"`
		Account     string `yaml:"account"`
		Payee       string `yaml:"payee,omitempty"`
		Amount      int64  `yaml:"amount"`
		Description string `yaml:"description,omitempty"`
	}
)

// LoadFixture reads a YAML fixture file.
func LoadFixture(filePath string) (Fixture, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Fixture{}, fmt.Errorf("reading file (%s): %w", filePath, err)
	}

	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("YAML unmarshal: %w", err)
	}

	return f, nil
}

// SaveFixture writes a YAML fixture file.
func SaveFixture(filePath string, f Fixture) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("YAML marshal: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("write to file (%s): %w", filePath, err)
	}

	return nil
}

// Export builds a Fixture from the live core items.
func (c *Control) Export() Fixture {
	f := Fixture{}
	for _, item := range c.accounts.Items() {
		if item.IsDeleted() {
			continue
		}
		a := item.Record()
		f.Accounts = append(f.Accounts, AccountFixture{
			Id:       item.Id().String(),
			Name:     a.Name,
			Currency: a.Currency,
			Closed:   a.Closed,
		})
	}
	for _, item := range c.payees.Items() {
		if item.IsDeleted() {
			continue
		}
		f.Payees = append(f.Payees, PayeeFixture{
			Id:   item.Id().String(),
			Name: item.Record().Name,
		})
	}
	for _, item := range c.transactions.Items() {
		if item.IsDeleted() {
			continue
		}
		tx := item.Record()
		txFixture := TransactionFixture{
			Id:          item.Id().String(),
			Account:     tx.Account.String(),
			Amount:      tx.Amount,
			Description: tx.Description,
		}
		if tx.Payee != uuid.Nil {
			txFixture.Payee = tx.Payee.String()
		}
		f.Transactions = append(f.Transactions, txFixture)
	}

	return f
}

// NewControlFromFixture builds the Control object populating the core lists and analysing them.
func NewControlFromFixture(f Fixture) (*Control, error) {
	c := NewControl()

	for i, a := range f.Accounts {
		id, err := uuid.Parse(a.Id)
		if err != nil {
			return nil, fmt.Errorf("accounts[%d]: %s: invalid: %w", i, "id", err)
		}
		if _, err := c.accounts.Add(id, Account{Name: a.Name, Currency: a.Currency, Closed: a.Closed}); err != nil {
			return nil, fmt.Errorf("accounts[%d]: %w", i, err)
		}
	}
	for i, p := range f.Payees {
		id, err := uuid.Parse(p.Id)
		if err != nil {
			return nil, fmt.Errorf("payees[%d]: %s: invalid: %w", i, "id", err)
		}
		if _, err := c.payees.Add(id, Payee{Name: p.Name}); err != nil {
			return nil, fmt.Errorf("payees[%d]: %w", i, err)
		}
	}
	for i, t := range f.Transactions {
		id, err := uuid.Parse(t.Id)
		if err != nil {
			return nil, fmt.Errorf("transactions[%d]: %s: invalid: %w", i, "id", err)
		}
		accountId, err := uuid.Parse(t.Account)
		if err != nil {
			return nil, fmt.Errorf("transactions[%d]: %s: invalid: %w", i, "account", err)
		}
		payeeId := uuid.Nil
		if t.Payee != "" {
			if payeeId, err = uuid.Parse(t.Payee); err != nil {
				return nil, fmt.Errorf("transactions[%d]: %s: invalid: %w", i, "payee", err)
			}
		}

		tx := Transaction{Account: accountId, Payee: payeeId, Amount: t.Amount, Description: t.Description}
		if _, err := c.transactions.Add(id, tx); err != nil {
			return nil, fmt.Errorf("transactions[%d]: %w", i, err)
		}
	}

	c.accounts.ReSort()
	c.payees.ReSort()

	if err := c.AnalyseData(false); err != nil {
		return nil, fmt.Errorf("analyse: %w", err)
	}

	return c, nil
}
