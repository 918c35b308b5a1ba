package domain

// DashboardView is the top-level view rendered for a session outcome.
type DashboardView string

const (
	ViewUnauthenticated DashboardView = "unauthenticated"
	ViewAdmin           DashboardView = "admin"
	ViewClient          DashboardView = "client"
)

// Dashboard is the selected view. Identity is set only for ViewClient.
type Dashboard struct {
	View     DashboardView `json:"view"`
	Identity UserID        `json:"identity,omitempty"`
}

// WantsChannel reports whether this dashboard owns a live notification channel.
func (d Dashboard) WantsChannel() bool {
	return d.View == ViewClient
}

// SelectDashboard maps a session outcome to the dashboard to render. It never
// performs I/O and must be re-evaluated on every session change.
func SelectDashboard(outcome SessionOutcome) Dashboard {
	switch o := outcome.(type) {
	case Resolved:
		switch o.Session.Role {
		case RoleAdmin:
			return Dashboard{View: ViewAdmin}
		case RoleClient:
			return Dashboard{View: ViewClient, Identity: o.Session.Identity}
		}
	case Unauthenticated, ResolutionFailed:
	}
	return Dashboard{View: ViewUnauthenticated}
}
