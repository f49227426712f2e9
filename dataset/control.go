package dataset

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/itiky/edit-session/model"
	"github.com/itiky/edit-session/storage"
)

// ErrAnalysisFailed is returned by AnalyseData when the dataset is inconsistent.
var ErrAnalysisFailed = errors.New("analysis failed")

// Control owns the authoritative dataset and implements session.Host interface.
type Control struct {
	// Core lists
	accounts     *storage.List[Account]
	payees       *storage.List[Payee]
	transactions *storage.List[Transaction]
	// Analysis state
	version   int
	errors    model.ErrorList
	balances  map[uuid.UUID]int64
	refreshes int
	//
	history *CommitHistory
}

// String implements stringer interface.
func (c *Control) String() string {
	str := strings.Builder{}
	str.WriteString(fmt.Sprintf("Dataset v%d\n", c.version))
	str.WriteString(c.accounts.String())
	str.WriteString(c.payees.String())
	str.WriteString(c.transactions.String())

	return str.String()
}

// Accounts returns the core accounts list.
func (c *Control) Accounts() *storage.List[Account] {
	return c.accounts
}

// Payees returns the core payees list.
func (c *Control) Payees() *storage.List[Payee] {
	return c.payees
}

// Transactions returns the core transactions list.
func (c *Control) Transactions() *storage.List[Transaction] {
	return c.transactions
}

// Version returns the authoritative dataset version.
func (c *Control) Version() int {
	return c.version
}

// Refreshes returns the number of RefreshViews calls.
func (c *Control) Refreshes() int {
	return c.refreshes
}

// History returns the commit history.
func (c *Control) History() *CommitHistory {
	return c.history
}

// Balance returns the analysed balance of the account.
func (c *Control) Balance(accountId uuid.UUID) int64 {
	return c.balances[accountId]
}

// AnalyseData implements session.Host interface.
// Live transactions must reference live accounts and payees; balances are recomputed.
func (c *Control) AnalyseData(preserveErrors bool) error {
	balances := make(map[uuid.UUID]int64)
	var errs model.ErrorList

	for _, item := range c.transactions.Items() {
		if item.IsDeleted() {
			continue
		}
		tx := item.Record()

		account, found := c.accounts.Get(tx.Account)
		if !found || account.IsDeleted() {
			errs = append(errs, model.FieldError{
				DataType: TransactionType,
				ItemId:   item.Id().String(),
				Field:    "account",
				Message:  fmt.Sprintf("references missing account %s", tx.Account),
			})
			continue
		}
		if tx.Payee != uuid.Nil {
			payee, found := c.payees.Get(tx.Payee)
			if !found || payee.IsDeleted() {
				errs = append(errs, model.FieldError{
					DataType: TransactionType,
					ItemId:   item.Id().String(),
					Field:    "payee",
					Message:  fmt.Sprintf("references missing payee %s", tx.Payee),
				})
				continue
			}
		}

		balances[tx.Account] += tx.Amount
	}

	if preserveErrors {
		c.errors = append(c.errors, errs...)
	} else {
		c.errors = errs
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d inconsistencies: %w", len(errs), ErrAnalysisFailed)
	}
	c.balances = balances

	return nil
}

// RefreshViews implements session.Host interface.
func (c *Control) RefreshViews() {
	c.refreshes++
	log.Printf("Control: views refreshed at v%d", c.version)
}

// IncrementVersion implements session.Host interface.
func (c *Control) IncrementVersion() {
	c.version++
	c.history.AddVersion(c.version, c.counts())
}

// Errors implements session.Host interface.
func (c *Control) Errors() model.ErrorList {
	return c.errors
}

// SortedBalances returns account names alongside balances sorted by name.
func (c *Control) SortedBalances() []string {
	lines := make([]string, 0, c.accounts.Len())
	for _, item := range c.accounts.Items() {
		if item.IsDeleted() {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %d", item.Record().Name, c.balances[item.Id()]))
	}
	sort.Strings(lines)

	return lines
}

// counts returns the number of live items per data type.
func (c *Control) counts() map[model.DataType]int {
	live := func(n int, deleted func(i int) bool) int {
		cnt := 0
		for i := 0; i < n; i++ {
			if !deleted(i) {
				cnt++
			}
		}
		return cnt
	}

	accounts, payees, transactions := c.accounts.Items(), c.payees.Items(), c.transactions.Items()

	return map[model.DataType]int{
		AccountType:     live(len(accounts), func(i int) bool { return accounts[i].IsDeleted() }),
		PayeeType:       live(len(payees), func(i int) bool { return payees[i].IsDeleted() }),
		TransactionType: live(len(transactions), func(i int) bool { return transactions[i].IsDeleted() }),
	}
}

// NewControl creates a new empty Control object.
func NewControl() *Control {
	c := &Control{
		accounts:     storage.NewCoreList[Account](AccountType),
		payees:       storage.NewCoreList[Payee](PayeeType),
		transactions: storage.NewCoreList[Transaction](TransactionType),
		balances:     make(map[uuid.UUID]int64),
		history:      NewCommitHistory(),
	}
	c.accounts.SetComparator(func(a, b Account) bool { return a.Name < b.Name })
	c.payees.SetComparator(func(a, b Payee) bool { return a.Name < b.Name })
	c.history.AddVersion(0, c.counts())

	return c
}
