// Package ledger applies potions to targets and decays them over ticks.
//
// The ledger records one application per Apply call, identified by a
// ledger-minted Handle. Each application remembers the intensities it
// consumed and how many ticks it has left. The first time a target is
// touched the ledger captures its state through the Target capability pair;
// when an application expires, the target is restored from that capture and
// every application still active on the same target is replayed on top.
//
// Application lifecycle:
//
//	Active (remaining > 0) -> Expiring (remaining <= 0) -> Removed
//
// A Ledger is not safe for concurrent use; callers serialize Apply and Tick.
package ledger
