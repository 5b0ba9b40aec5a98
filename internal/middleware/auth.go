package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/logging"
	"github.com/1auto-market/vehiclestore-backend/utils"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const principalKey = "principal"

// Outcome tags the result of an authorization check.
type Outcome int

const (
	Allowed Outcome = iota
	Anonymous
	InvalidToken
	Forbidden
)

// Decision is the result of Authorize. Principal is set only when Outcome is Allowed.
type Decision struct {
	Outcome   Outcome
	Principal domain.Principal
	Reason    string
}

// Authorize verifies a bearer token and checks that its role is one of roles.
// An empty roles list accepts any authenticated caller.
func Authorize(token string, roles ...string) Decision {
	token = strings.TrimSpace(token)
	if token == "" {
		return Decision{Outcome: Anonymous, Reason: "Authorization header is required"}
	}
	claims, err := utils.VerifyToken(token)
	if err != nil {
		return Decision{Outcome: InvalidToken, Reason: err.Error()}
	}
	uid, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return Decision{Outcome: InvalidToken, Reason: "invalid token"}
	}
	p := domain.Principal{UserID: uid, Email: claims.Email, Role: claims.Role}

	if len(roles) > 0 {
		allowed := false
		for _, r := range roles {
			if strings.EqualFold(p.Role, r) {
				allowed = true
				break
			}
		}
		if !allowed {
			return Decision{Outcome: Forbidden, Principal: p, Reason: domain.MsgForbidden}
		}
	}
	return Decision{Outcome: Allowed, Principal: p}
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", true
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func setPrincipal(c *gin.Context, p domain.Principal) {
	c.Set(principalKey, p)
	c.Set("userId", p.UserID.Hex())
	c.Set("role", p.Role)
}

// AuthMiddleware rejects requests without a valid token with 401.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse("Authorization header must be Bearer token"))
			return
		}
		d := Authorize(token)
		if d.Outcome != Allowed {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse(d.Reason))
			return
		}
		setPrincipal(c, d.Principal)
		c.Next()
	}
}

// OptionalAuth stores the principal when a valid token is present and never aborts.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := BearerToken(c); ok && token != "" {
			if d := Authorize(token); d.Outcome == Allowed {
				setPrincipal(c, d.Principal)
			}
		}
		c.Next()
	}
}

// RoleLookup returns the role currently stored for a user.
type RoleLookup func(ctx context.Context, userID primitive.ObjectID) (string, error)

// Refresh replaces the token's role claim with the stored role. A user that no
// longer exists comes back without a role.
func Refresh(ctx context.Context, lookup RoleLookup, p domain.Principal) (domain.Principal, error) {
	if lookup == nil || p.UserID.IsZero() {
		return p, nil
	}
	role, err := lookup(ctx, p.UserID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		p.Role = ""
	case err != nil:
		return p, err
	default:
		p.Role = role
	}
	return p, nil
}

// CurrentRole refreshes the stored principal's role so demoted or deleted
// users lose access before their token expires.
func CurrentRole(lookup RoleLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			c.Next()
			return
		}
		fresh, err := Refresh(c.Request.Context(), lookup, p)
		if err != nil {
			logging.FromContext(c).WithError(err).Error("Role lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, utils.ErrorResponse("Internal server error"))
			return
		}
		setPrincipal(c, fresh)
		c.Next()
	}
}

// RoleMiddleware requires one of allowedRoles. Anonymous callers and callers
// with another role both get 403.
func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse(domain.MsgForbidden))
			return
		}
		for _, r := range allowedRoles {
			if strings.EqualFold(p.Role, r) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse(domain.MsgForbidden))
	}
}

// GetPrincipal returns the caller stored by AuthMiddleware or OptionalAuth.
func GetPrincipal(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}
