// Package dispatch turns a classified voice-command intent into exactly one
// host action. Dispatching is a pure function of the intent: it performs no
// I/O, holds no shared mutable state and cannot fail.
package dispatch

import "strings"

// DefaultRejectedFeedback is shown when a route is outside the allow-list.
const DefaultRejectedFeedback = "Sorry, that page is not available. Please try another command."

// Dispatcher applies the dispatch rules with an optional route allow-list.
// The zero value and NewDispatcher() without options behave like Dispatch.
type Dispatcher struct {
	allowed          map[string]struct{}
	rejectedFeedback string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithAllowedRoutes restricts navigate and filter results to the given paths.
// An empty list disables the restriction.
func WithAllowedRoutes(routes []string) Option {
	return func(d *Dispatcher) {
		if len(routes) == 0 {
			d.allowed = nil
			return
		}
		d.allowed = make(map[string]struct{}, len(routes))
		for _, r := range routes {
			if r = strings.TrimSpace(r); r != "" {
				d.allowed[r] = struct{}{}
			}
		}
	}
}

// WithRejectedFeedback overrides the feedback used for disallowed routes.
func WithRejectedFeedback(msg string) Option {
	return func(d *Dispatcher) {
		if msg != "" {
			d.rejectedFeedback = msg
		}
	}
}

// NewDispatcher returns a Dispatcher configured by opts.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{rejectedFeedback: DefaultRejectedFeedback}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// EnforcesRoutes reports whether an allow-list is active.
func (d *Dispatcher) EnforcesRoutes() bool {
	return d != nil && len(d.allowed) > 0
}

// Allowed reports whether path may be navigated to.
func (d *Dispatcher) Allowed(path string) bool {
	if !d.EnforcesRoutes() {
		return true
	}
	_, ok := d.allowed[path]
	return ok
}

// Dispatch resolves intent into a Result.
func (d *Dispatcher) Dispatch(intent Intent) Result {
	res := Dispatch(intent)
	if !d.EnforcesRoutes() {
		return res
	}

	switch res.Kind {
	case KindNavigate:
		if !d.Allowed(res.Path) {
			return NoOp(d.feedback(), ReasonRouteNotAllowed)
		}
	case KindFilterView:
		if !d.Allowed(res.ViewPath) {
			return NoOp(d.feedback(), ReasonRouteNotAllowed)
		}
	}
	return res
}

func (d *Dispatcher) feedback() string {
	if d.rejectedFeedback == "" {
		return DefaultRejectedFeedback
	}
	return d.rejectedFeedback
}

// Dispatch resolves intent into a Result without route validation. The
// navigate target is trusted as given.
func Dispatch(intent Intent) Result {
	target := strings.TrimSpace(intent.Target)

	switch ParseAction(string(intent.Action)) {
	case ActionNavigate:
		if target == "" {
			return NoOp(intent.Feedback, ReasonEmptyTarget)
		}
		return NavigateTo(target)

	case ActionAddProduct:
		if target == "" {
			return NoOp(intent.Feedback, ReasonEmptyTarget)
		}
		return CreateEntityPrefilled(target)

	case ActionFilter:
		if target == "" {
			return NoOp(intent.Feedback, ReasonEmptyTarget)
		}
		view, ok := filterView(target)
		if !ok {
			return NoOp(intent.Feedback, ReasonInvalidTarget)
		}
		criteria := NormalizeCriteria(intent.Payload)
		if len(criteria) == 0 {
			return NoOp(intent.Feedback, ReasonEmptyCriteria)
		}
		return FilterView(FilterViewPrefix+view, criteria)

	default:
		return NoOp(intent.Feedback, ReasonUnknownAction)
	}
}

// filterView reduces a filter target to the view name below FilterViewPrefix.
// "orders", "/orders", "orders/" and "/farmer/orders" all give "orders".
// Targets that would leave the prefix or carry a query are rejected.
func filterView(target string) (string, bool) {
	view := strings.Trim(target, "/")
	view = strings.TrimPrefix(view, strings.Trim(FilterViewPrefix, "/")+"/")
	view = strings.Trim(view, "/")
	if view == "" || strings.ContainsAny(view, "?#\\") {
		return "", false
	}
	for _, seg := range strings.Split(view, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", false
		}
	}
	return view, true
}
