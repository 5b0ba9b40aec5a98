package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.ConfigureJWT("middleware-secret", time.Hour)
	os.Exit(m.Run())
}

func token(t *testing.T, role string) (string, primitive.ObjectID) {
	t.Helper()
	id := primitive.NewObjectID()
	tok, err := utils.GenerateToken(id.Hex(), "x@example.com", role)
	require.NoError(t, err)
	return tok, id
}

func TestAuthorizeOutcomes(t *testing.T) {
	userTok, uid := token(t, domain.RoleUser)
	adminTok, _ := token(t, domain.RoleAdmin)

	assert.Equal(t, Anonymous, Authorize("").Outcome)
	assert.Equal(t, InvalidToken, Authorize("garbage").Outcome)

	d := Authorize(userTok)
	require.Equal(t, Allowed, d.Outcome)
	assert.Equal(t, uid, d.Principal.UserID)

	d = Authorize(userTok, domain.RoleAdmin)
	assert.Equal(t, Forbidden, d.Outcome)
	assert.Equal(t, domain.MsgForbidden, d.Reason)

	assert.Equal(t, Allowed, Authorize(adminTok, domain.RoleAdmin).Outcome)
}

func router() *gin.Engine {
	r := gin.New()
	ok := func(c *gin.Context) {
		p, _ := GetPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"userId": p.UserID.Hex()})
	}
	r.GET("/user", AuthMiddleware(), ok)
	r.GET("/admin", OptionalAuth(), RoleMiddleware(domain.RoleAdmin), ok)
	return r
}

func do(r http.Handler, path, tok string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMiddlewareStatusCodes(t *testing.T) {
	r := router()
	userTok, _ := token(t, domain.RoleUser)
	adminTok, _ := token(t, domain.RoleAdmin)

	assert.Equal(t, http.StatusUnauthorized, do(r, "/user", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/user", "bad").Code)
	assert.Equal(t, http.StatusOK, do(r, "/user", userTok).Code)

	w := do(r, "/admin", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), domain.MsgForbidden)
	assert.Equal(t, http.StatusForbidden, do(r, "/admin", userTok).Code)
	assert.Equal(t, http.StatusOK, do(r, "/admin", adminTok).Code)
}

func TestCurrentRoleOverridesTokenClaim(t *testing.T) {
	demotedTok, demoted := token(t, domain.RoleAdmin)
	deletedTok, _ := token(t, domain.RoleAdmin)
	adminTok, admin := token(t, domain.RoleAdmin)
	brokenTok, broken := token(t, domain.RoleAdmin)

	lookup := func(_ context.Context, id primitive.ObjectID) (string, error) {
		switch id {
		case demoted:
			return domain.RoleUser, nil
		case admin:
			return domain.RoleAdmin, nil
		case broken:
			return "", errors.New("connection reset")
		}
		return "", domain.NotFound("user")
	}

	r := gin.New()
	r.GET("/admin", OptionalAuth(), CurrentRole(lookup), RoleMiddleware(domain.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusForbidden, do(r, "/admin", demotedTok).Code)
	assert.Equal(t, http.StatusForbidden, do(r, "/admin", deletedTok).Code)
	assert.Equal(t, http.StatusForbidden, do(r, "/admin", "").Code)
	assert.Equal(t, http.StatusOK, do(r, "/admin", adminTok).Code)
	assert.Equal(t, http.StatusInternalServerError, do(r, "/admin", brokenTok).Code)
}

func TestRefreshWithoutLookupKeepsClaim(t *testing.T) {
	p := domain.Principal{UserID: primitive.NewObjectID(), Role: domain.RoleAdmin}
	got, err := Refresh(context.Background(), nil, p)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}
