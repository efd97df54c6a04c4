package session

// Guard decides, per navigation, whether a protected view may render. The
// check is local and optimistic: no directory call is made, so a token
// revoked upstream is only caught when a network operation fails.
type Guard struct {
	store *Store
}

func NewGuard(store *Store) Guard {
	return Guard{store: store}
}

func (g Guard) IsAuthorized() bool {
	_, ok := g.store.Load()
	return ok
}
