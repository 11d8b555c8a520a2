package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// User is the account returned by signup.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt Timestamp `json:"created_at"`
}

// AuthToken is the login result: the Credential and its token-type tag.
type AuthToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Note mirrors a server-side note owned by the authenticated user.
type Note struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	UserID    int64      `json:"user_id"`
	CreatedAt Timestamp  `json:"created_at"`
	UpdatedAt *Timestamp `json:"updated_at,omitempty"`
}

// NoteUpdate is a partial update. Nil fields are omitted from the request body.
type NoteUpdate struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// String returns a pointer to value, for building a NoteUpdate.
func String(value string) *string {
	return &value
}

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type noteCreatePayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type errorPayload struct {
	Detail json.RawMessage `json:"detail"`
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp decodes RFC 3339 values as well as the zone-less ISO-8601 values some
// backends emit, which are read as UTC.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// UnmarshalJSON implements json.Unmarshaler.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		ts.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		ts.Time = parsed
		return nil
	}
	for _, layout := range naiveLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			ts.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", raw)
}

// MarshalJSON implements json.Marshaler using RFC 3339.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.UTC().Format(time.RFC3339Nano))
}
