package pages

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/statpanel/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/statpanel/internal/adapter/driving/web/viewmodel"
)

func render(t *testing.T, title string, vm any) string {
	t.Helper()
	var buf bytes.Buffer
	switch v := vm.(type) {
	case viewmodel.LoginViewModel:
		require.NoError(t, templates.Layout(title, Login(v)).Render(context.Background(), &buf))
	case viewmodel.DashboardViewModel:
		require.NoError(t, templates.Layout(title, Dashboard(v)).Render(context.Background(), &buf))
	default:
		t.Fatalf("unsupported view model %T", vm)
	}
	return buf.String()
}

func TestLogin_RendersFormInsideLayout(t *testing.T) {
	html := render(t, "Sign in", viewmodel.LoginViewModel{CSRFToken: "abc123"})

	assert.Contains(t, html, "<title>Sign in · statpanel</title>")
	assert.Contains(t, html, `<form method="post" action="/login">`)
	assert.Contains(t, html, `<input type="hidden" name="csrf_token" value="abc123">`)
	assert.Contains(t, html, `src="/static/activity.js"`)
	assert.NotContains(t, html, `class="notice"`)
	assert.NotContains(t, html, `role="alert"`)
}

func TestLogin_EscapesUserInputButNotNotice(t *testing.T) {
	html := render(t, "Sign in", viewmodel.LoginViewModel{
		NoticeHTML: "<p><strong>Maintenance</strong> tonight</p>",
		Error:      "<b>bad</b>",
		Username:   `"><script>x</script>`,
	})

	assert.Contains(t, html, "<strong>Maintenance</strong>")
	assert.Contains(t, html, "&lt;b&gt;bad&lt;/b&gt;")
	assert.NotContains(t, html, "<script>x</script>")
}

func TestDashboard_RendersRows(t *testing.T) {
	html := render(t, "Profile", viewmodel.DashboardViewModel{
		Profile: viewmodel.Profile{
			Login: "alice",
			Rows: []viewmodel.ProfileRow{
				{Label: "Country", Value: "Bahrain"},
				{Label: "Gender", Value: "N/A"},
			},
		},
		CSRFToken: "tok",
	})

	assert.Contains(t, html, "<h1>alice</h1>")
	assert.Contains(t, html, `<th scope="row">Country</th><td>Bahrain</td>`)
	assert.Contains(t, html, `<th scope="row">Gender</th><td>N/A</td>`)
	assert.Contains(t, html, `action="/logout"`)
}

func TestDashboard_ErrorReplacesTable(t *testing.T) {
	html := render(t, "Profile", viewmodel.DashboardViewModel{
		Profile: viewmodel.Profile{Login: "N/A"},
		Error:   "Could not load profile data.",
	})

	assert.Contains(t, html, "Could not load profile data.")
	assert.NotContains(t, html, "<table")
}
