// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from application types.
package viewmodel

// LoginViewModel holds the data for the sign-in page.
type LoginViewModel struct {
	NoticeHTML string // sanitized markdown notice, rendered raw
	Flash      string
	Error      string
	Username   string
	CSRFToken  string
}

// ProfileRow is one label/value line of the profile table.
type ProfileRow struct {
	Label string
	Value string
}

// Profile is the signed-in user's login and displayed attributes.
type Profile struct {
	Login string
	Rows  []ProfileRow
}

// DashboardViewModel holds the data for the profile dashboard. When Error is
// set the profile table is replaced by the message.
type DashboardViewModel struct {
	Profile   Profile
	Error     string
	CSRFToken string
}
