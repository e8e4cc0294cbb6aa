package auth

// Principal is the authenticated identity attached to a request after the
// access guard has validated a bearer token and resolved its subject.
// For kind=client principals, Name holds the client identifier and
// IsSuperuser is always false.
type Principal struct {
	ID          int64
	Name        string
	IsSuperuser bool
	Kind        TokenKind
}
