package domain

// User is the subset of the account record the library needs.
// Accounts themselves are managed elsewhere.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FamilyID  string `json:"family_id,omitempty"`
}

// DisplayName joins first and last name the way reader names are shown.
func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}
