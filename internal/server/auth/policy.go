package auth

// CanAccess reports whether p may act on a resource owned by ownerID.
// Superusers bypass ownership; everyone else must own the resource.
func CanAccess(p *Principal, ownerID int64) bool {
	if p == nil {
		return false
	}
	return p.IsSuperuser || (p.Kind == TokenKindUser && p.ID == ownerID)
}
