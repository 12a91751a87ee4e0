package minigram

// User is the resolved view of a Telegram user account.
type User struct {
	ID           int64
	IsBot        bool
	IsPremium    bool
	IsVerified   bool
	IsDeleted    bool
	FirstName    string
	LastName     string
	Username     string
	LanguageCode string
}

// DisplayName joins first and last name, falling back to the username.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}

	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		name = u.Username
	}

	return name
}
