package game

// Publisher fans table events out to observers. Calls are made while the
// table lock is held, so implementations must not block and must not call
// back into the table.
type Publisher interface {
	PublishState(state GameState)
	PublishResult(result RoundResult)
	PublishRefreshStats()
}

// Publishers broadcasts to each publisher in order.
type Publishers []Publisher

func (ps Publishers) PublishState(state GameState) {
	for _, p := range ps {
		p.PublishState(state)
	}
}

func (ps Publishers) PublishResult(result RoundResult) {
	for _, p := range ps {
		p.PublishResult(result)
	}
}

func (ps Publishers) PublishRefreshStats() {
	for _, p := range ps {
		p.PublishRefreshStats()
	}
}

type nopPublisher struct{}

func (nopPublisher) PublishState(GameState)    {}
func (nopPublisher) PublishResult(RoundResult) {}
func (nopPublisher) PublishRefreshStats()      {}
