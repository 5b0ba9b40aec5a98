package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID primitive.ObjectID
	Email  string
	Role   string
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// CanManage reports whether the principal is the given user or an administrator.
func (p Principal) CanManage(ownerID primitive.ObjectID) bool {
	return p.IsAdmin() || (!p.UserID.IsZero() && p.UserID == ownerID)
}

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
