package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/itiky/edit-session/model"
)

const testScript = `
steps:
  - op: insert
    type: account
    ref: wallet
    fields:
      name: Wallet
      currency: EUR
  - op: insert
    type: transaction
    ref: pocket
    fields:
      account: wallet
      amount: "250"
      description: pocket money
  - op: next
  - op: ok
  - op: update
    type: transaction
    ref: pocket
    fields:
      amount: "300"
  - op: next
  - op: undo
  - op: delete
    type: account
    ref: wallet
  - op: next
  - op: ok
  - op: reset
`

func writeTestScript(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	return path
}

func Test_Session_RunScript(t *testing.T) {
	d := newTestDataset(t)
	c := d.control
	sink := &ErrorCollector{}

	script, err := LoadScript(writeTestScript(t, testScript))
	require.NoError(t, err)
	require.Len(t, script.Steps, 11)

	s, err := c.OpenSession(sink)
	require.NoError(t, err)

	res, err := s.RunScript(script)
	require.NoError(t, err)
	require.Equal(t, 11, res.Steps)
	require.Equal(t, 1, res.Committed)
	require.Equal(t, 1, res.Failed)

	// the second commit was vetoed: the transaction references the deleted account
	require.Len(t, res.LastErrors, 2)
	require.Equal(t, sink.Errors, res.LastErrors)
	require.Equal(t, TransactionType, res.LastErrors[1].DataType)

	require.Equal(t, 1, c.Version())
	require.Equal(t, 3, c.Accounts().Len())
	require.Contains(t, c.SortedBalances(), "Wallet: 250")

	require.Equal(t, 0, s.Set().Version())
	require.Equal(t, model.CleanEditState, s.Set().EditState())
	for _, item := range s.Accounts.List().Items() {
		require.Equal(t, model.CleanItemState, item.State())
	}
}

func Test_Session_RunScriptFails(t *testing.T) {
	tcs := []struct {
		name   string
		script string
	}{
		{
			name:   "unknown type",
			script: "steps:\n  - op: insert\n    type: budget\n",
		},
		{
			name:   "unknown field",
			script: "steps:\n  - op: insert\n    type: payee\n    fields:\n      color: red\n",
		},
		{
			name:   "unknown ref",
			script: "steps:\n  - op: delete\n    type: payee\n    ref: nobody\n",
		},
		{
			name:   "invalid amount",
			script: "steps:\n  - op: insert\n    type: transaction\n    fields:\n      amount: lots\n",
		},
		{
			name:   "unknown op",
			script: "steps:\n  - op: merge\n    type: payee\n    ref: 6ba7b810-9dad-11d1-80b4-00c04fd430c8\n",
		},
		{
			name:   "condense out of range",
			script: "steps:\n  - op: condense\n    version: 3\n",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			d := newTestDataset(t)
			s, err := d.control.OpenSession(nil)
			require.NoError(t, err)

			script, err := LoadScript(writeTestScript(t, tc.script))
			require.NoError(t, err)

			_, err = s.RunScript(script)
			require.Error(t, err)
		})
	}
}

func Test_Session_RunScriptCondense(t *testing.T) {
	d := newTestDataset(t)
	s, err := d.control.OpenSession(nil)
	require.NoError(t, err)

	script := Script{Steps: []Step{
		{Op: string(model.UpdateOperationType), Type: PayeeType, Id: d.grocer.String(), Fields: map[string]string{"name": "Market"}},
		{Op: NextStepOp},
		{Op: string(model.UpdateOperationType), Type: PayeeType, Id: d.grocer.String(), Fields: map[string]string{"name": "Bazaar"}},
		{Op: NextStepOp},
		{Op: CondenseStepOp, Version: 2},
		{Op: UndoStepOp},
	}}

	// both steps were squashed: a single undo reverts them
	res, err := s.RunScript(script)
	require.NoError(t, err)
	require.Equal(t, 6, res.Steps)

	grocer, _ := s.Payees.List().Get(d.grocer)
	require.Equal(t, "Grocer", grocer.Record().Name)
	require.Equal(t, 0, s.Set().Version())
}

func Test_Fixture_GenAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.yaml")

	require.Error(t, GenAndSaveFixture(path, 0, 1, 1))
	require.NoError(t, GenAndSaveFixture(path, 3, 2, 20))

	f, err := LoadFixture(path)
	require.NoError(t, err)
	require.Len(t, f.Accounts, 3)
	require.Len(t, f.Payees, 2)
	require.Len(t, f.Transactions, 20)

	c, err := NewControlFromFixture(f)
	require.NoError(t, err)

	var total, balances int64
	for _, tx := range f.Transactions {
		total += tx.Amount
	}
	for _, item := range c.Accounts().Items() {
		balances += c.Balance(item.Id())
	}
	require.Equal(t, total, balances)

	exported := c.Export()
	require.Len(t, exported.Accounts, 3)
	require.Len(t, exported.Transactions, 20)
	require.ElementsMatch(t, f.Transactions, exported.Transactions)

	_, err = LoadFixture(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
