package domain

// Identity is the capability tag threaded through soft-authenticated reads.
// A request is either anonymous or carries a verified account id; invalid
// tokens degrade to Anonymous instead of being rejected.
type Identity struct {
	UserID        uint
	Authenticated bool
}

func Anonymous() Identity {
	return Identity{}
}

func Authenticated(userID uint) Identity {
	return Identity{UserID: userID, Authenticated: true}
}
