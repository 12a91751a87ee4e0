package minigram

// Chat is the resolved view of a conversation peer.
//
// IDs follow the client-side encoding: positive for users, negated for basic
// groups, and -100-prefixed for channels and supergroups.
type Chat struct {
	ID         int64
	Type       ChatType
	Title      string
	Username   string
	FirstName  string
	LastName   string
	IsForum    bool
	IsVerified bool
}
