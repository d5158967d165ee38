// Package models holds client-side data types shared between the API
// layer, the stores, and the session state machine.
package models

import (
	"bytes"
	"encoding/json"
)

// UserProfile is the cached snapshot of the server-owned user record.
// The server may attach arbitrary onboarding fields (goals, lifestyle,
// medical history, preferences); those are preserved verbatim in Extra
// so the cache survives schema evolution on the backend.
//
// The profile never contains the session token.
type UserProfile struct {
	ID    json.Number
	Email string
	Extra map[string]any
}

func (u *UserProfile) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(u.Extra)+2)
	for k, v := range u.Extra {
		m[k] = v
	}
	if u.ID != "" {
		m["id"] = u.ID
	}
	if u.Email != "" {
		m["email"] = u.Email
	}
	return json.Marshal(m)
}

func (u *UserProfile) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return err
	}

	*u = UserProfile{Extra: make(map[string]any)}
	for k, v := range m {
		switch k {
		case "id":
			if n, ok := v.(json.Number); ok {
				u.ID = n
			} else if s, ok := v.(string); ok {
				u.ID = json.Number(s)
			}
		case "email":
			if s, ok := v.(string); ok {
				u.Email = s
			}
		default:
			u.Extra[k] = v
		}
	}
	return nil
}

// Merge applies partial fields onto a copy of the profile and returns it.
// Known keys ("id", "email") update the typed fields; everything else
// lands in Extra. The receiver is not modified.
func (u *UserProfile) Merge(partial map[string]any) *UserProfile {
	out := &UserProfile{
		ID:    u.ID,
		Email: u.Email,
		Extra: make(map[string]any, len(u.Extra)+len(partial)),
	}
	for k, v := range u.Extra {
		out.Extra[k] = v
	}
	for k, v := range partial {
		switch k {
		case "id":
			switch x := v.(type) {
			case json.Number:
				out.ID = x
			case string:
				out.ID = json.Number(x)
			case float64:
				b, _ := json.Marshal(x)
				out.ID = json.Number(b)
			case int:
				b, _ := json.Marshal(x)
				out.ID = json.Number(b)
			}
		case "email":
			if s, ok := v.(string); ok {
				out.Email = s
			}
		default:
			out.Extra[k] = v
		}
	}
	return out
}
