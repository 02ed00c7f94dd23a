package models

import (
	"time"

	"github.com/goccy/go-json"
)

// Identity is an authenticated principal as reported by the identity provider.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Provider    string `json:"provider"`
}

// Account is the provider-side record behind an Identity.
type Account struct {
	UID             string    `db:"uid" json:"uid"`
	Email           string    `db:"email" json:"email"`
	DisplayName     string    `db:"display_name" json:"displayName"`
	PasswordHash    string    `db:"password_hash" json:"-"`
	Provider        string    `db:"provider" json:"provider"`
	ProviderSubject string    `db:"provider_subject" json:"-"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

// Identity returns the public view of the account.
func (a *Account) Identity() *Identity {
	return &Identity{
		UID:         a.UID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		Provider:    a.Provider,
	}
}

// ProfileRecord is the storefront's user profile document.
// Extra holds any additional fields supplied when the profile was first created.
type ProfileRecord struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"displayName"`
	Email       string         `json:"email"`
	CreatedAt   time.Time      `json:"createdAt"`
	Extra       map[string]any `json:"-"`
}

// Reserved profile document keys.
const (
	ProfileFieldDisplayName = "displayName"
	ProfileFieldEmail       = "email"
	ProfileFieldCreatedAt   = "createdAt"
)

// NewProfileRecord builds the first version of a profile for identity.
// Values in additionalData override the identity's own display name and email.
func NewProfileRecord(identity *Identity, additionalData map[string]any, createdAt time.Time) *ProfileRecord {
	rec := &ProfileRecord{
		ID:          identity.UID,
		DisplayName: identity.DisplayName,
		Email:       identity.Email,
		CreatedAt:   createdAt.UTC(),
	}
	for k, v := range additionalData {
		switch k {
		case ProfileFieldDisplayName:
			if s, ok := v.(string); ok {
				rec.DisplayName = s
			}
		case ProfileFieldEmail:
			if s, ok := v.(string); ok {
				rec.Email = s
			}
		case ProfileFieldCreatedAt, "id":
			// not overridable
		default:
			if rec.Extra == nil {
				rec.Extra = make(map[string]any)
			}
			rec.Extra[k] = v
		}
	}
	return rec
}

// Fields returns the record merged with its id, the shape handed to the state store.
func (p *ProfileRecord) Fields() map[string]any {
	out := make(map[string]any, len(p.Extra)+4)
	for k, v := range p.Extra {
		out[k] = v
	}
	out["id"] = p.ID
	out[ProfileFieldDisplayName] = p.DisplayName
	out[ProfileFieldEmail] = p.Email
	out[ProfileFieldCreatedAt] = p.CreatedAt
	return out
}

func (p *ProfileRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Fields())
}

func (p *ProfileRecord) UnmarshalJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*p = ProfileRecord{}
	for k, raw := range doc {
		var err error
		switch k {
		case "id":
			err = json.Unmarshal(raw, &p.ID)
		case ProfileFieldDisplayName:
			err = json.Unmarshal(raw, &p.DisplayName)
		case ProfileFieldEmail:
			err = json.Unmarshal(raw, &p.Email)
		case ProfileFieldCreatedAt:
			err = json.Unmarshal(raw, &p.CreatedAt)
		default:
			var v any
			err = json.Unmarshal(raw, &v)
			if p.Extra == nil {
				p.Extra = make(map[string]any)
			}
			p.Extra[k] = v
		}
		if err != nil {
			return err
		}
	}
	return nil
}
