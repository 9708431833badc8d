package ledger

// Target is anything a potion can be applied to. TargetID must be stable for
// the lifetime of the target and distinct between targets. Snapshot returns
// an independent copy of the full state and Restore overwrites the full state
// from such a copy.
type Target interface {
	TargetID() string
	Snapshot() any
	Restore(snapshot any)
}

// Handle identifies one application within a ledger.
type Handle uint64
