package domain

// Role is the access level of a User.
type Role string

const (
	RoleAdmin   Role = "admin"
	RolePartner Role = "partner"
	RoleClient  Role = "client"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePartner, RoleClient:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// CanAuthor reports whether a user with the given role may publish news.
func CanAuthor(role Role) bool {
	return role == RoleAdmin || role == RolePartner
}

// CanModerate reports whether the actor may edit the article and approve or
// delete its comments. Admins moderate everything; partners only their own
// articles.
func CanModerate(role Role, actorID, articleAuthorID string) bool {
	if role == RoleAdmin {
		return true
	}
	return role == RolePartner && actorID != "" && actorID == articleAuthorID
}
