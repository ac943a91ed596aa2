package txcache

// State is the cache-wide request state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Status is a point-in-time view of the cache's loading and error fields.
// Loading takes precedence: an error from an earlier call stays recorded in
// Message while a new fetch is in flight.
type Status struct {
	State   State
	Loading bool
	Message string
}

// Error messages recorded by each operation on failure.
const (
	MsgDashboardFailed = "Failed to fetch dashboard data"
	MsgAnalyticsFailed = "Failed to fetch analytics"
	MsgDeleteFailed    = "Failed to delete transaction"
)

// ChangeKind says which part of the cache changed.
type ChangeKind string

const (
	ChangeStatus    ChangeKind = "status"
	ChangeDashboard ChangeKind = "dashboard"
	ChangeAnalytics ChangeKind = "analytics"
)

// Change is delivered to subscribers after every state transition.
type Change struct {
	Kind   ChangeKind
	Key    string // analytics key for ChangeAnalytics
	Status Status
}

func statusOf(loading bool, msg string) Status {
	st := Status{Loading: loading, Message: msg}
	switch {
	case loading:
		st.State = StateLoading
	case msg != "":
		st.State = StateError
	default:
		st.State = StateIdle
	}
	return st
}
