package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Response is a decoded JSON object returned by endpoints whose payload the
// client does not model.
type Response map[string]any

// ID is a server-assigned identifier. Groups arrive with string IDs while
// files are keyed by numeric message IDs; the JSON kind is kept so IDs are
// written back exactly as received.
type ID struct {
	value   string
	numeric bool
}

// NewID returns a string-kind ID.
func NewID(value string) ID {
	return ID{value: value}
}

// NewNumericID returns a number-kind ID.
func NewNumericID(value int64) ID {
	return ID{value: fmt.Sprintf("%d", value), numeric: true}
}

func (id ID) String() string { return id.value }

// IsZero reports whether the ID was absent or null.
func (id ID) IsZero() bool { return id.value == "" }

// MarshalJSON writes numeric IDs as JSON numbers, string IDs as JSON strings
// and the zero ID as null.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	if id.numeric {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ID{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID{value: s}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number, got %s", data)
	}
	*id = ID{value: n.String(), numeric: true}
	return nil
}

// ByteCount is a file size in bytes. The server passes Telegram's big
// integers through as JSON strings for documents and as numbers elsewhere,
// so both are accepted. It is always written back as a number.
type ByteCount int64

// UnmarshalJSON accepts a JSON number, a numeric JSON string or null.
func (b *ByteCount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = 0
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("size must be an integer, got %s", data)
	}
	*b = ByteCount(n)
	return nil
}

// ServerStatus is the payload of GET /auth/status. Fields the client does not
// model are kept in Raw and written back unchanged.
type ServerStatus struct {
	Setup           bool `json:"setup"`
	IsAuthenticated bool `json:"isAuthenticated"`
	NeedsPassword   bool `json:"needsPassword"`

	Raw Response `json:"-"`
}

// UnmarshalJSON decodes the known fields and keeps the whole object in Raw.
func (s *ServerStatus) UnmarshalJSON(data []byte) error {
	var raw Response
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ServerStatus{
		Setup:           truthy(raw["setup"]),
		IsAuthenticated: truthy(raw["isAuthenticated"]),
		NeedsPassword:   truthy(raw["needsPassword"]),
		Raw:             raw,
	}
	return nil
}

// MarshalJSON prefers the raw object the server sent.
func (s ServerStatus) MarshalJSON() ([]byte, error) {
	if s.Raw != nil {
		return json.Marshal(s.Raw)
	}
	return json.Marshal(Response{
		"setup":           s.Setup,
		"isAuthenticated": s.IsAuthenticated,
		"needsPassword":   s.NeedsPassword,
	})
}

func (s ServerStatus) String() string {
	data, err := s.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("%+v", s.Raw)
	}
	return string(data)
}

// Group is a Telegram chat, channel or group known to the server.
type Group struct {
	ID              ID     `json:"id"`
	Name            string `json:"name"`
	Type            string `json:"type,omitempty"`
	MemberCount     int    `json:"memberCount,omitempty"`
	LastMessageDate string `json:"lastMessageDate,omitempty"`
}

// GroupDetails is the payload of GET /groups/{id}.
type GroupDetails struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	MemberCount int    `json:"memberCount"`
	About       string `json:"about"`
	JoinDate    string `json:"joinDate,omitempty"`
}

// RemoteFile is a file listed by GET /files/group/{id}. Name is a pointer so
// an absent name can be told apart from an empty one.
type RemoteFile struct {
	ID       ID        `json:"id"`
	Name     *string   `json:"name,omitempty"`
	Size     ByteCount `json:"size,omitempty"`
	Duration float64   `json:"duration,omitempty"`
	Width    int       `json:"width,omitempty"`
	Height   int       `json:"height,omitempty"`
	Mime     string    `json:"mime,omitempty"`
}

// VerifyCodeResult is the outcome of POST /auth/verify-code. When the account
// has two-step verification, NeedsPassword is set and Hint carries the
// server's hint; otherwise Raw holds the response untouched.
type VerifyCodeResult struct {
	NeedsPassword bool
	Hint          string
	Raw           Response
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
