package dataset

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/itiky/edit-session/model"
)

type testDataset struct {
	control  *Control
	checking uuid.UUID
	savings  uuid.UUID
	grocer   uuid.UUID
}

func newTestDataset(t *testing.T) testDataset {
	d := testDataset{
		checking: uuid.New(),
		savings:  uuid.New(),
		grocer:   uuid.New(),
	}

	f := Fixture{
		Accounts: []AccountFixture{
			{Id: d.savings.String(), Name: "Savings", Currency: "EUR"},
			{Id: d.checking.String(), Name: "Checking", Currency: "EUR"},
		},
		Payees: []PayeeFixture{
			{Id: d.grocer.String(), Name: "Grocer"},
		},
		Transactions: []TransactionFixture{
			{Id: uuid.New().String(), Account: d.checking.String(), Payee: d.grocer.String(), Amount: -1500},
			{Id: uuid.New().String(), Account: d.checking.String(), Amount: 10000, Description: "salary"},
			{Id: uuid.New().String(), Account: d.savings.String(), Amount: 500},
		},
	}

	c, err := NewControlFromFixture(f)
	require.NoError(t, err)
	d.control = c

	return d
}

func Test_Control_NewFromFixture(t *testing.T) {
	d := newTestDataset(t)
	c := d.control

	require.Equal(t, 0, c.Version())
	require.Equal(t, 2, c.Accounts().Len())
	require.Equal(t, 1, c.Payees().Len())
	require.Equal(t, 3, c.Transactions().Len())
	require.Equal(t, int64(8500), c.Balance(d.checking))
	require.Equal(t, int64(500), c.Balance(d.savings))
	require.Equal(t, []string{"Checking: 8500", "Savings: 500"}, c.SortedBalances())
	require.Empty(t, c.Errors())

	// accounts are sorted by name
	require.Equal(t, "Checking", c.Accounts().Items()[0].Record().Name)

	latest, found := c.History().Latest()
	require.True(t, found)
	require.Equal(t, 0, latest.Version)
}

func Test_Control_NewFromFixtureFails(t *testing.T) {
	f := Fixture{
		Accounts: []AccountFixture{{Id: uuid.New().String(), Name: "A", Currency: "EUR"}},
		Transactions: []TransactionFixture{
			{Id: uuid.New().String(), Account: uuid.New().String(), Amount: 1},
		},
	}
	_, err := NewControlFromFixture(f)
	require.True(t, errors.Is(err, ErrAnalysisFailed))

	f = Fixture{Accounts: []AccountFixture{{Id: "not-an-id", Name: "A", Currency: "EUR"}}}
	_, err = NewControlFromFixture(f)
	require.Error(t, err)

	id := uuid.New().String()
	f = Fixture{Payees: []PayeeFixture{{Id: id, Name: "A"}, {Id: id, Name: "B"}}}
	_, err = NewControlFromFixture(f)
	require.Error(t, err)
}

// Test commits a new account together with a transaction referencing it.
func Test_Session_ApplyNewAccount(t *testing.T) {
	d := newTestDataset(t)
	c := d.control

	s, err := c.OpenSession(nil)
	require.NoError(t, err)
	require.Equal(t, DataTypes(), s.Set().DataTypes())

	wallet := s.Accounts.List().InsertNew(Account{Name: "Wallet", Currency: "EUR"})
	tx := s.Transactions.List().InsertNew(Transaction{Account: wallet.Id(), Payee: d.grocer, Amount: -200})
	s.Set().IncrementVersion()

	require.True(t, s.Set().ApplyChanges())
	require.Equal(t, 1, c.Version())
	require.Equal(t, 1, c.Refreshes())
	require.Equal(t, 3, c.Accounts().Len())
	require.Equal(t, int64(-200), c.Balance(wallet.Id()))
	require.Equal(t, wallet.Id(), tx.Record().Account)

	baseTx, found := c.Transactions().Get(tx.Id())
	require.True(t, found)
	require.Equal(t, wallet.Id(), baseTx.Record().Account)

	require.Equal(t, 2, c.History().Len())
	commit, found := c.History().Get(1)
	require.True(t, found)
	require.Equal(t, 3, commit.Counts[AccountType])
	require.Equal(t, 4, commit.Counts[TransactionType])

	require.Len(t, c.Export().Accounts, 3)
}

// Test checks the host analysis vetoes a commit leaving a dangling reference.
func Test_Session_AnalyseVeto(t *testing.T) {
	d := newTestDataset(t)
	c := d.control
	sink := &ErrorCollector{}

	s, err := c.OpenSession(sink)
	require.NoError(t, err)

	require.NoError(t, s.Accounts.List().Delete(d.savings))
	s.Set().IncrementVersion()

	require.False(t, s.Set().ApplyChanges())
	require.Equal(t, 0, c.Version())
	baseSavings, _ := c.Accounts().Get(d.savings)
	require.False(t, baseSavings.IsDeleted())
	require.Equal(t, model.CleanItemState, baseSavings.State())
	require.Equal(t, int64(500), c.Balance(d.savings))

	require.Len(t, sink.Errors, 2)
	require.Contains(t, sink.Errors[0].Message, ErrAnalysisFailed.Error())
	require.Equal(t, TransactionType, sink.Errors[1].DataType)
	require.Equal(t, "account", sink.Errors[1].Field)

	// the pending delete survives and can be undone
	sessionSavings, _ := s.Accounts.List().Get(d.savings)
	require.Equal(t, model.DeletedItemState, sessionSavings.State())
	s.Set().UndoLastChange()
	require.Equal(t, model.CleanItemState, sessionSavings.State())
}

// Test checks the account currency can not be changed once committed.
func Test_Session_CurrencyImmutable(t *testing.T) {
	d := newTestDataset(t)
	c := d.control

	s, err := c.OpenSession(nil)
	require.NoError(t, err)

	require.NoError(t, s.Accounts.List().Edit(d.checking, func(a Account) Account {
		a.Name = "Main"
		a.Currency = "USD"
		return a
	}))
	s.Set().IncrementVersion()

	require.False(t, s.Set().ApplyChanges())
	require.Equal(t, AccountType, s.Set().LastErrors()[0].DataType)
	require.Contains(t, s.Set().LastErrors()[0].Message, "currency: immutable")

	baseChecking, _ := c.Accounts().Get(d.checking)
	require.Equal(t, Account{Name: "Checking", Currency: "EUR"}, baseChecking.Record())
}

// Test checks Reopen discards pending edits and picks up the latest core lists.
func Test_Session_Reopen(t *testing.T) {
	d := newTestDataset(t)
	c := d.control

	s, err := c.OpenSession(nil)
	require.NoError(t, err)

	require.NoError(t, s.Payees.List().Edit(d.grocer, func(p Payee) Payee { p.Name = "Market"; return p }))
	s.Set().IncrementVersion()
	s.Accounts.List().InsertNew(Account{Name: "Wallet", Currency: "EUR"})
	s.Set().IncrementVersion()

	s.Reopen(c)
	require.Equal(t, 0, s.Set().Version())
	require.Equal(t, model.CleanEditState, s.Set().EditState())
	require.Equal(t, 2, s.Accounts.List().Len())
	grocer, _ := s.Payees.List().Get(d.grocer)
	require.Equal(t, "Grocer", grocer.Record().Name)
}

func Test_CommitHistory(t *testing.T) {
	h := NewCommitHistory()
	_, found := h.Latest()
	require.False(t, found)

	h.AddVersion(0, map[model.DataType]int{AccountType: 1})
	h.AddVersion(1, map[model.DataType]int{AccountType: 2})
	require.Equal(t, 2, h.Len())

	latest, found := h.Latest()
	require.True(t, found)
	require.Equal(t, 1, latest.Version)
	require.Equal(t, 2, latest.Counts[AccountType])
	require.False(t, latest.CommittedAt.IsZero())

	_, found = h.Get(5)
	require.False(t, found)
}
