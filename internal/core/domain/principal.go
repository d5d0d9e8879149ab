package domain

// Principal is the authenticated identity resolved from a bearer token for
// the duration of a single request. It is never persisted.
type Principal struct {
	SubjectID int64
	Email     string
	Role      Role
}

// Owns reports whether the principal is the user identified by userID.
func (p Principal) Owns(userID int64) bool {
	return p.SubjectID != 0 && p.SubjectID == userID
}
