package world

// Ledger tracks per-player resource balances. It lives on the world loop
// goroutine; TrySpend is all-or-nothing so a commit can never debit a partial
// cost.
type Ledger struct {
	balances map[string]map[string]int
}

func NewLedger() *Ledger {
	return &Ledger{balances: map[string]map[string]int{}}
}

// Ensure creates the player's account with the given starting balances if it
// does not exist yet.
func (l *Ledger) Ensure(playerID string, starting map[string]int) {
	if _, ok := l.balances[playerID]; ok {
		return
	}
	acct := make(map[string]int, len(starting))
	for res, n := range starting {
		acct[res] = n
	}
	l.balances[playerID] = acct
}

func (l *Ledger) CanAfford(playerID string, cost map[string]int) bool {
	acct := l.balances[playerID]
	for res, n := range cost {
		if acct[res] < n {
			return false
		}
	}
	return true
}

// TrySpend debits cost from the player's account, or debits nothing and
// returns false if any resource falls short.
func (l *Ledger) TrySpend(playerID string, cost map[string]int) bool {
	if !l.CanAfford(playerID, cost) {
		return false
	}
	acct := l.balances[playerID]
	for res, n := range cost {
		acct[res] -= n
	}
	return true
}

func (l *Ledger) Deposit(playerID string, amounts map[string]int) {
	acct := l.balances[playerID]
	if acct == nil {
		acct = map[string]int{}
		l.balances[playerID] = acct
	}
	for res, n := range amounts {
		if n > 0 {
			acct[res] += n
		}
	}
}

// Balance returns a copy of the player's balances.
func (l *Ledger) Balance(playerID string) map[string]int {
	acct := l.balances[playerID]
	out := make(map[string]int, len(acct))
	for res, n := range acct {
		out[res] = n
	}
	return out
}
