package session

// Decision is what a protected view should do for the current session
// state.
type Decision int

const (
	// DecisionLoading: show a loading indicator, render nothing
	// protected yet.
	DecisionLoading Decision = iota
	// DecisionRender: the operator is authenticated.
	DecisionRender
	// DecisionRedirectLogin: send the operator to the login entry
	// point. No protected output may be produced.
	DecisionRedirectLogin
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionRender:
		return "render"
	case DecisionRedirectLogin:
		return "redirect-login"
	}
	return "unknown"
}

// Decide is the route guard: a pure function of controller status with
// no state of its own.
func Decide(s Status) Decision {
	switch s {
	case StatusAuthenticated:
		return DecisionRender
	case StatusUnknown:
		return DecisionLoading
	default:
		return DecisionRedirectLogin
	}
}
