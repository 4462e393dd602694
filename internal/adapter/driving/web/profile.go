package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ericfisherdev/statpanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/statpanel/internal/domain/model"
)

const (
	profileQuery = `query { user { login attrs } }`
	notAvailable = "N/A"
)

var errNoUser = errors.New("no user in response")

// profileFields lists the attrs shown on the dashboard, in display order.
var profileFields = []struct {
	key   string
	label string
}{
	{"firstName", "First name"},
	{"lastName", "Last name"},
	{"gender", "Gender"},
	{"country", "Country"},
	{"addressCity", "City"},
	{"jobtitle", "Job title"},
	{"PhoneNumber", "Phone"},
	{"CPRnumber", "CPR number"},
}

// profilePayload is the data object of the profile query. The endpoint returns
// user as a list; a bare object is accepted too.
type profilePayload struct {
	User json.RawMessage `json:"user"`
}

type profileUser struct {
	Login string         `json:"login"`
	Attrs map[string]any `json:"attrs"`
}

func newProfileRequest() model.QueryRequest {
	return model.NewQueryRequest(profileQuery, nil)
}

func decodeProfile(p profilePayload) (viewmodel.Profile, error) {
	raw := bytes.TrimSpace(p.User)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return viewmodel.Profile{}, errNoUser
	}

	var user profileUser
	if raw[0] == '[' {
		var users []profileUser
		if err := json.Unmarshal(raw, &users); err != nil {
			return viewmodel.Profile{}, fmt.Errorf("decoding user list: %w", err)
		}
		if len(users) == 0 {
			return viewmodel.Profile{}, errNoUser
		}
		user = users[0]
	} else if err := json.Unmarshal(raw, &user); err != nil {
		return viewmodel.Profile{}, fmt.Errorf("decoding user: %w", err)
	}

	view := viewmodel.Profile{Login: user.Login, Rows: make([]viewmodel.ProfileRow, 0, len(profileFields))}
	if view.Login == "" {
		view.Login = notAvailable
	}
	for _, f := range profileFields {
		view.Rows = append(view.Rows, viewmodel.ProfileRow{Label: f.label, Value: attrValue(user.Attrs, f.key)})
	}
	return view, nil
}

func attrValue(attrs map[string]any, key string) string {
	switch v := attrs[key].(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return notAvailable
}
