// Package session defines the per-identity login state of the bot: who is
// authenticated against the portal, under which token, and (for parents)
// which pupil is currently selected.
package session

import (
	"strconv"

	"github.com/schoolsby-hub/daybook-bot/internal/domain/shared"
)

// Key identifies a session owner: either a Telegram user ID or a chat ID,
// stringified. Group chats get a session of their own via /set.
type Key string

// UserKey builds a Key from a Telegram user ID.
func UserKey(userID int64) Key {
	return Key(strconv.FormatInt(userID, 10))
}

// ChatKey builds a Key from a Telegram chat ID.
func ChatKey(chatID int64) Key {
	return Key(strconv.FormatInt(chatID, 10))
}

// Role is the portal account type.
type Role string

const (
	RolePupil   Role = "Pupil"
	RoleParent  Role = "Parent"
	RoleTeacher Role = "Teacher"
)

// Profile is the portal account profile stored with a session.
type Profile struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Subdomain string `json:"subdomain"`
	Role      Role   `json:"role"`
}

// FullName returns the profile's display name.
func (p Profile) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// Pupil is one child of a parent account.
type Pupil struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// FullName returns the pupil's display name.
func (p Pupil) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// Record is the stored session state for one identity key.
// A Record exists only after a successful portal login.
type Record struct {
	Token   string  `json:"token"`
	Profile Profile `json:"profile"`

	// Pupils is present only for parent accounts, in portal order.
	Pupils []Pupil `json:"pupils,omitempty"`

	// CurrentPupilID is set only after an explicit /select. Zero means
	// no selection has been made yet.
	CurrentPupilID int64 `json:"current_pupil_id,omitempty"`
}

// IsParent reports whether the session belongs to a parent account.
func (r *Record) IsParent() bool {
	return r.Profile.Role == RoleParent
}

// EffectivePupilID returns the pupil the daybook queries should target.
// Pupils act as themselves; parents need an explicit selection first.
func (r *Record) EffectivePupilID() (int64, error) {
	if !r.IsParent() {
		return r.Profile.ID, nil
	}
	if r.CurrentPupilID == 0 {
		return 0, shared.ErrPupilNotSelected
	}
	return r.CurrentPupilID, nil
}

// SelectPupil sets the current pupil, validating it against the stored
// pupil list.
func (r *Record) SelectPupil(pupilID int64) error {
	if !r.IsParent() {
		return shared.ErrNotAParent
	}
	for _, p := range r.Pupils {
		if p.ID == pupilID {
			r.CurrentPupilID = pupilID
			return nil
		}
	}
	return shared.NewDomainError("session", "SelectPupil", shared.ErrInvalidInput, "pupil does not belong to this parent")
}

// PupilByID returns the pupil with the given ID, if present.
func (r *Record) PupilByID(pupilID int64) (Pupil, bool) {
	for _, p := range r.Pupils {
		if p.ID == pupilID {
			return p, true
		}
	}
	return Pupil{}, false
}

// Clone returns a deep copy of the record. Used by Store.Copy so that a
// chat session shared via /set does not alias the user's session.
func (r *Record) Clone() *Record {
	cp := *r
	if r.Pupils != nil {
		cp.Pupils = make([]Pupil, len(r.Pupils))
		copy(cp.Pupils, r.Pupils)
	}
	return &cp
}
