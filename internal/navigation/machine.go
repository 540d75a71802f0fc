package navigation

import "net/url"

// Effects applies derived outputs to the outside world: the document title,
// the address bar and the meta description.
type Effects interface {
	SetTitle(title string)
	// PushURL records a new history entry without reloading.
	PushURL(u string)
	SetMetaDescription(desc string)
}

// Apply writes o through fx in a fixed order.
func Apply(fx Effects, o Outputs) {
	fx.SetTitle(o.Title)
	fx.PushURL(o.URL)
	fx.SetMetaDescription(o.MetaDescription)
}

// Machine owns a navigation state and applies its outputs on every change.
// It is not safe for concurrent use; each page view gets its own.
type Machine struct {
	site  Site
	state State
	url   *url.URL
	fx    Effects
}

// NewMachine initializes the state from start and applies its outputs once.
func NewMachine(site Site, start *url.URL, fx Effects) *Machine {
	m := &Machine{site: site, state: FromURL(start), url: start, fx: fx}
	m.apply()
	return m
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Outputs returns the outputs of the current state.
func (m *Machine) Outputs() Outputs {
	return Derive(m.state, m.site, m.url)
}

// Dispatch reduces ev and applies the new outputs when the state changed.
// It reports whether a transition happened.
func (m *Machine) Dispatch(ev Event) bool {
	if h, ok := ev.(HistoryNavigate); ok && h.URL != nil {
		m.url = h.URL
	}
	next := Reduce(m.state, ev)
	if next == m.state {
		return false
	}
	m.state = next
	m.apply()
	return true
}

func (m *Machine) apply() {
	out := m.Outputs()
	if u, err := url.Parse(out.URL); err == nil {
		m.url = u
	}
	if m.fx != nil {
		Apply(m.fx, out)
	}
}
