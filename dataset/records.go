package dataset

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/itiky/edit-session/model"
	"github.com/itiky/edit-session/storage"
)

// Data types of the dataset in dependency order: a type may only reference types registered before it.
const (
	AccountType     model.DataType = "account"
	PayeeType       model.DataType = "payee"
	TransactionType model.DataType = "transaction"
)

// DataTypes returns every dataset data type in dependency order.
func DataTypes() []model.DataType {
	return []model.DataType{AccountType, PayeeType, TransactionType}
}

type (
	// Account is a money holding account.
	Account struct {
		Name     string
		Currency string
		Closed   bool
	}

	// Payee is a counterparty of transactions.
	Payee struct {
		Name string
	}

	// Transaction moves Amount (minor currency units) on Account.
	Transaction struct {
		Account     uuid.UUID
		Payee       uuid.UUID
		Amount      int64
		Description string
	}
)

// Clone implements storage.Record interface.
func (a Account) Clone() Account {
	return a
}

// Validate implements storage.Record interface.
func (a Account) Validate() model.ErrorList {
	var errs model.ErrorList
	if strings.TrimSpace(a.Name) == "" {
		errs = append(errs, model.NewFieldError("name", "empty"))
	}
	if len(a.Currency) != 3 || strings.ToUpper(a.Currency) != a.Currency {
		errs = append(errs, model.NewFieldError("currency", "must be a 3 letter ISO code: %q", a.Currency))
	}

	return errs
}

// ResolveLinks implements storage.Record interface.
func (a Account) ResolveLinks(_ storage.LinkResolver) (Account, error) {
	return a, nil
}

// ApplyChanges implements storage.ChangeApplier interface.
// Currency of an existing account is immutable.
func (a Account) ApplyChanges(edit Account) (Account, error) {
	if a.Currency != edit.Currency {
		return a, fmt.Errorf("currency: immutable: %s -> %s", a.Currency, edit.Currency)
	}

	return edit, nil
}

// String implements the stringer interface.
func (a Account) String() string {
	if a.Closed {
		return fmt.Sprintf("%s [%s] (closed)", a.Name, a.Currency)
	}

	return fmt.Sprintf("%s [%s]", a.Name, a.Currency)
}

// Clone implements storage.Record interface.
func (p Payee) Clone() Payee {
	return p
}

// Validate implements storage.Record interface.
func (p Payee) Validate() model.ErrorList {
	if strings.TrimSpace(p.Name) == "" {
		return model.ErrorList{model.NewFieldError("name", "empty")}
	}

	return nil
}

// ResolveLinks implements storage.Record interface.
func (p Payee) ResolveLinks(_ storage.LinkResolver) (Payee, error) {
	return p, nil
}

// String implements the stringer interface.
func (p Payee) String() string {
	return p.Name
}

// Clone implements storage.Record interface.
func (t Transaction) Clone() Transaction {
	return t
}

// Validate implements storage.Record interface.
func (t Transaction) Validate() model.ErrorList {
	var errs model.ErrorList
	if t.Account == uuid.Nil {
		errs = append(errs, model.NewFieldError("account", "empty"))
	}
	if t.Amount == 0 {
		errs = append(errs, model.NewFieldError("amount", "must be non zero"))
	}

	return errs
}

// ResolveLinks implements storage.Record interface.
func (t Transaction) ResolveLinks(r storage.LinkResolver) (Transaction, error) {
	accountId, err := r.ResolveLink(AccountType, t.Account)
	if err != nil {
		return t, fmt.Errorf("account: %w", err)
	}
	t.Account = accountId

	if t.Payee != uuid.Nil {
		payeeId, err := r.ResolveLink(PayeeType, t.Payee)
		if err != nil {
			return t, fmt.Errorf("payee: %w", err)
		}
		t.Payee = payeeId
	}

	return t, nil
}

// String implements the stringer interface.
func (t Transaction) String() string {
	return fmt.Sprintf("%d on %s (%s)", t.Amount, t.Account, t.Description)
}
