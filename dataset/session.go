package dataset

import (
	"fmt"

	"github.com/itiky/edit-session/session"
)

// Session is an edit session over every Control list.
type Session struct {
	set          *session.UpdateSet
	Accounts     *session.UpdateEntry[Account]
	Payees       *session.UpdateEntry[Payee]
	Transactions *session.UpdateEntry[Transaction]
}

// Set returns the session UpdateSet.
func (s *Session) Set() *session.UpdateSet {
	return s.set
}

// Reopen rebinds every entry to a fresh copy of the core lists.
// Pending session edits are discarded.
func (s *Session) Reopen(c *Control) {
	s.Accounts = session.Register[Account](s.set, AccountType)
	s.Payees = session.Register[Payee](s.set, PayeeType)
	s.Transactions = session.Register[Transaction](s.set, TransactionType)

	s.set.ResetChanges()

	s.Accounts.Open(c.accounts)
	s.Payees.Open(c.payees)
	s.Transactions.Open(c.transactions)
}

// OpenSession creates a new Session registering the data types in dependency order.
func (c *Control) OpenSession(errorSink session.ErrorSink) (*Session, error) {
	set, err := session.NewUpdateSet(c, errorSink)
	if err != nil {
		return nil, fmt.Errorf("session.NewUpdateSet: %w", err)
	}

	s := &Session{set: set}
	s.Reopen(c)

	return s, nil
}
