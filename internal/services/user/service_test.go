package user

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/1auto-market/vehiclestore-backend/config"
	"github.com/1auto-market/vehiclestore-backend/internal/adapters/repository/memory"
	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"github.com/1auto-market/vehiclestore-backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	utils.PasswordCost = bcrypt.MinCost
	utils.ConfigureJWT("test-secret", time.Hour)
	os.Exit(m.Run())
}

func newService() (Service, *memory.Store) {
	store := memory.NewStore()
	return NewService(store.Repositories().Users), store
}

func register(t *testing.T, svc Service, email string) models.AuthResult {
	t.Helper()
	res, err := svc.Register(context.Background(), models.RegisterInput{
		Name:     "maría  fernanda lópez",
		Email:    email,
		Password: "supersecret",
	})
	require.NoError(t, err)
	return res
}

func TestRegisterNormalizesAndIssuesToken(t *testing.T) {
	svc, _ := newService()
	res := register(t, svc, "  Maria@Example.COM ")

	assert.Equal(t, "María Fernanda López", res.User.Name)
	assert.Equal(t, "maria@example.com", res.User.Email)
	assert.Equal(t, domain.RoleUser, res.User.Role)
	assert.Empty(t, res.User.Password)

	claims, err := utils.VerifyToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID.Hex(), claims.UserID)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestRegisterRejectsDuplicateAndInvalid(t *testing.T) {
	svc, _ := newService()
	register(t, svc, "dup@example.com")

	_, err := svc.Register(context.Background(), models.RegisterInput{Name: "Otro", Email: "DUP@example.com", Password: "supersecret"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	_, err = svc.Register(context.Background(), models.RegisterInput{Name: "X", Email: "bad", Password: "short"})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")
}

func TestLogin(t *testing.T) {
	svc, _ := newService()
	register(t, svc, "login@example.com")
	ctx := context.Background()

	res, err := svc.Login(ctx, models.LoginInput{Email: "LOGIN@example.com", Password: "supersecret"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	_, err = svc.Login(ctx, models.LoginInput{Email: "login@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, models.LoginInput{Email: "nobody@example.com", Password: "supersecret"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestProfileAndTelegram(t *testing.T) {
	svc, _ := newService()
	res := register(t, svc, "p@example.com")
	me := domain.Principal{UserID: res.User.ID, Role: domain.RoleUser}
	ctx := context.Background()

	loc := "Medellín"
	updated, err := svc.UpdateProfile(ctx, me, models.ProfileUpdate{Location: &loc})
	require.NoError(t, err)
	assert.Equal(t, "Medellín", updated.Location)
	assert.Equal(t, "María Fernanda López", updated.Name)

	linked, err := svc.LinkTelegram(ctx, me, models.TelegramLink{ChatID: 99, Username: "@maria"})
	require.NoError(t, err)
	require.NotNil(t, linked.Telegram)
	assert.Equal(t, "maria", linked.Telegram.Username)

	unlinked, err := svc.UnlinkTelegram(ctx, me)
	require.NoError(t, err)
	assert.Nil(t, unlinked.Telegram)

	_, err = svc.Profile(ctx, domain.Principal{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAdminUserManagement(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	admin, created, err := svc.SeedAdmin(ctx, config.AdminConfig{Email: "admin@1auto.market", Password: "adminpass"})
	require.NoError(t, err)
	require.True(t, created)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	_, created, err = svc.SeedAdmin(ctx, config.AdminConfig{Email: "ADMIN@1auto.market", Password: "adminpass"})
	require.NoError(t, err)
	assert.False(t, created)

	root := domain.Principal{UserID: admin.ID, Role: domain.RoleAdmin}
	member := register(t, svc, "member@example.com")

	_, err = svc.List(ctx, domain.Principal{UserID: member.User.ID, Role: domain.RoleUser}, 1, 10)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	page, err := svc.List(ctx, root, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, models.DefaultPageSize, page.Limit)

	promoted, err := svc.UpdateRole(ctx, root, member.User.ID.Hex(), models.RoleUpdateInput{Role: "ADMIN"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, promoted.Role)

	_, err = svc.UpdateRole(ctx, root, admin.ID.Hex(), models.RoleUpdateInput{Role: "user"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, svc.Delete(ctx, root, admin.ID.Hex()), domain.ErrConflict)

	require.NoError(t, svc.Delete(ctx, root, member.User.ID.Hex()))
	assert.ErrorIs(t, svc.Delete(ctx, root, primitive.NewObjectID().Hex()), domain.ErrNotFound)
}

func TestDeleteUserCascadesToListings(t *testing.T) {
	svc, store := newService()
	repos := store.Repositories()
	ctx := context.Background()

	admin, _, err := svc.SeedAdmin(ctx, config.AdminConfig{Email: "admin@1auto.market", Password: "adminpass"})
	require.NoError(t, err)
	root := domain.Principal{UserID: admin.ID, Role: domain.RoleAdmin}
	seller := register(t, svc, "seller@example.com").User
	buyer := register(t, svc, "buyer@example.com").User

	owned, err := repos.Vehicles.Create(ctx, models.Vehicle{SellerID: seller.ID, Status: domain.StatusApproved}, nil)
	require.NoError(t, err)
	foreign, err := repos.Vehicles.Create(ctx, models.Vehicle{SellerID: buyer.ID, Status: domain.StatusApproved}, nil)
	require.NoError(t, err)

	for _, voter := range []primitive.ObjectID{buyer.ID, admin.ID} {
		_, err := repos.Ratings.Upsert(ctx, models.Rating{VehicleID: owned.ID, UserID: voter, Rating: 4})
		require.NoError(t, err)
	}
	_, err = repos.Ratings.Upsert(ctx, models.Rating{VehicleID: foreign.ID, UserID: seller.ID, Rating: 5})
	require.NoError(t, err)
	require.NoError(t, repos.Favorites.Add(ctx, buyer.ID, owned.ID))

	require.NoError(t, svc.Delete(ctx, root, seller.ID.Hex()))

	listings, total, err := repos.Vehicles.List(ctx, models.VehicleQuery{SellerID: seller.ID, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, listings)
	assert.Zero(t, total)
	assert.Zero(t, store.RatingCount(owned.ID))
	assert.Equal(t, 1, store.RatingCount(foreign.ID), "votes cast on other listings are kept")

	favorites, err := repos.Favorites.Get(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, favorites.Vehicles)

	_, err = repos.Users.GetByID(ctx, seller.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
