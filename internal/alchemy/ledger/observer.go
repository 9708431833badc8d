package ledger

// ApplyEvent describes a completed Apply.
type ApplyEvent struct {
	Handle    Handle
	TargetID  string
	Tick      int
	Duration  int
	Effects   []AppliedEffect
	FirstTime bool
}

// AppliedEffect is one intensity invoked by Apply.
type AppliedEffect struct {
	Name  string
	Calls int
}

// Expiry describes an application removed by Tick.
type Expiry struct {
	Handle   Handle
	TargetID string
	Tick     int
}

// RestoreEvent describes a target restored by Tick.
type RestoreEvent struct {
	TargetID string
	Tick     int
	Replayed []Handle
}

// Observer receives ledger events synchronously from Apply and Tick.
type Observer interface {
	Applied(ApplyEvent)
	Expired(Expiry)
	Restored(RestoreEvent)
}

// Option configures a Ledger.
type Option func(*options)

type options struct {
	observers []Observer
}

// WithObserver registers an observer. Observers run in registration order.
func WithObserver(observer Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.observers = append(o.observers, observer)
		}
	}
}
