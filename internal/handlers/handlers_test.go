package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/1auto-market/vehiclestore-backend/config"
	"github.com/1auto-market/vehiclestore-backend/internal/adapters/repository/memory"
	"github.com/1auto-market/vehiclestore-backend/internal/cache"
	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/handlers"
	"github.com/1auto-market/vehiclestore-backend/internal/server"
	"github.com/1auto-market/vehiclestore-backend/internal/services/assistant"
	"github.com/1auto-market/vehiclestore-backend/internal/services/listing"
	"github.com/1auto-market/vehiclestore-backend/internal/services/notify"
	"github.com/1auto-market/vehiclestore-backend/internal/services/payment"
	"github.com/1auto-market/vehiclestore-backend/internal/services/rating"
	"github.com/1auto-market/vehiclestore-backend/internal/services/user"
	"github.com/1auto-market/vehiclestore-backend/internal/socket"
	"github.com/1auto-market/vehiclestore-backend/internal/storage"
	"github.com/1auto-market/vehiclestore-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.PasswordCost = bcrypt.MinCost
	utils.ConfigureJWT("handlers-secret", time.Hour)
	os.Exit(m.Run())
}

type fakeStorage struct{ uploads []string }

var _ storage.MediaStorage = (*fakeStorage)(nil)

func (f *fakeStorage) Upload(_ context.Context, _ io.Reader, name, _ string) (string, error) {
	f.uploads = append(f.uploads, name)
	return "https://media.example.com/" + name, nil
}

type harness struct {
	t      *testing.T
	router *gin.Engine
	store  *memory.Store
	media  *fakeStorage
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repositories()
	vc := cache.NewVehicleCache(32, time.Minute)
	media := &fakeStorage{}

	users := user.NewService(repos.Users)
	_, _, err := users.SeedAdmin(context.Background(), config.AdminConfig{Email: "admin@1auto.market", Password: "adminpass"})
	require.NoError(t, err)

	deps := handlers.Deps{
		Listings: listing.NewService(repos.Vehicles, repos.Users, listing.Options{
			Composer: notify.Composer{AdminEmail: "admin@1auto.market", BaseURL: "https://1auto.market"},
			Cache:    vc,
		}),
		Ratings:    rating.NewService(repos.Ratings, repos.Vehicles, vc),
		Users:      users,
		Assistant:  assistant.NewService(nil),
		Payments:   payment.NewService(repos.Vehicles, nil, config.StripeConfig{}),
		Favorites:  repos.Favorites,
		Categories: repos.Categories,
		Analytics:  repos.Analytics,
		Storage:    media,
		Hub:        socket.NewHub(),
		Ping:       func(context.Context) error { return nil },
	}
	return &harness{
		t:      t,
		router: server.NewRouter(config.ServerConfig{Mode: gin.TestMode}, deps),
		store:  store,
		media:  media,
	}
}

type envelope struct {
	Success          bool                `json:"success"`
	Message          string              `json:"message"`
	Error            string              `json:"error"`
	Data             json.RawMessage     `json:"data"`
	ValidationErrors map[string][]string `json:"validationErrors"`
}

func (h *harness) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	h.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return h.serve(req)
}

func (h *harness) serve(req *http.Request) (*httptest.ResponseRecorder, envelope) {
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func (h *harness) login(email, password string) string {
	h.t.Helper()
	w, env := h.do(http.MethodPost, "/api/login", "", map[string]string{"email": email, "password": password})
	require.Equal(h.t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Token string `json:"token"`
	}
	require.NoError(h.t, json.Unmarshal(env.Data, &res))
	return res.Token
}

func (h *harness) register(email string) string {
	h.t.Helper()
	w, env := h.do(http.MethodPost, "/api/register", "", map[string]string{
		"name": "Vendedor Prueba", "email": email, "password": "password123",
	})
	require.Equal(h.t, http.StatusCreated, w.Code, w.Body.String())
	var res struct {
		Token string `json:"token"`
	}
	require.NoError(h.t, json.Unmarshal(env.Data, &res))
	return res.Token
}

func listingBody() map[string]any {
	return map[string]any{
		"category":     "cars",
		"brand":        "Renault",
		"model":        "Duster",
		"year":         2019,
		"condition":    "used",
		"price":        62000000,
		"mileage":      58000,
		"color":        "Rojo",
		"transmission": "manual",
		"fuelType":     "gasoline",
		"location":     "Cali",
		"description":  "Bien cuidada, papeles al día.",
		"features":     []string{"Aire acondicionado"},
		"images":       []string{"https://cdn.example.com/duster.jpg"},
		"sellerContact": map[string]string{
			"name": "Carlos", "email": "carlos@example.com", "phone": "3001234567",
		},
		"status": "approved",
		"views":  999,
	}
}

func (h *harness) submit(token string) string {
	h.t.Helper()
	w, env := h.do(http.MethodPost, "/api/post-ad", token, listingBody())
	require.Equal(h.t, http.StatusCreated, w.Code, w.Body.String())
	var v struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Views  int64  `json:"views"`
	}
	require.NoError(h.t, json.Unmarshal(env.Data, &v))
	assert.Equal(h.t, "pending", v.Status)
	assert.Zero(h.t, v.Views)
	return v.ID
}

func TestSubmitWithNegativePriceReturnsValidationErrors(t *testing.T) {
	h := newHarness(t)
	token := h.register("seller@example.com")

	body := listingBody()
	body["price"] = -5
	w, env := h.do(http.MethodPost, "/api/post-ad", token, body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	require.Contains(t, env.ValidationErrors, "price")
	assert.Contains(t, env.ValidationErrors["price"][0], "must be positive")
	assert.Empty(t, h.store.Notifications())
}

func TestAdminRejectsListingAndSellerIsNotified(t *testing.T) {
	h := newHarness(t)
	seller := h.register("seller@example.com")
	admin := h.login("admin@1auto.market", "adminpass")
	id := h.submit(seller)

	w, _ := h.do(http.MethodPatch, "/api/admin/vehicles/"+id, admin, map[string]string{
		"status": "rejected", "rejectionReason": "Fotos borrosas",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env := h.do(http.MethodGet, "/api/admin/vehicles/"+id, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var v struct {
		Status          string `json:"status"`
		RejectionReason string `json:"rejectionReason"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.Equal(t, "rejected", v.Status)
	assert.Equal(t, "Fotos borrosas", v.RejectionReason)

	var mailed bool
	for _, n := range h.store.Notifications() {
		if n.Event == domain.EventListingRejected && n.Channel == domain.ChannelEmail {
			mailed = n.Recipient == "carlos@example.com" && strings.Contains(n.Body, "Fotos borrosas")
		}
	}
	assert.True(t, mailed, "rejection email must be queued for the seller")
}

func TestNonAdminCannotModerate(t *testing.T) {
	h := newHarness(t)
	seller := h.register("seller@example.com")
	id := h.submit(seller)

	for _, token := range []string{seller, ""} {
		w, env := h.do(http.MethodPatch, "/api/admin/vehicles/"+id, token, map[string]string{"status": "approved"})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.False(t, env.Success)
		assert.Equal(t, "Acceso no autorizado", env.Error)
	}

	w, env := h.do(http.MethodGet, "/api/post-ad?id="+id, seller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"status":"pending"`)
}

func TestStatusErrors(t *testing.T) {
	h := newHarness(t)
	admin := h.login("admin@1auto.market", "adminpass")
	seller := h.register("seller@example.com")
	id := h.submit(seller)

	w, env := h.do(http.MethodPatch, "/api/admin/vehicles/not-an-id", admin, map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)

	w, _ = h.do(http.MethodPatch, "/api/admin/vehicles/64b000000000000000000000", admin, map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = h.do(http.MethodPatch, "/api/admin/vehicles/"+id, admin, map[string]string{"status": "sold"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.ValidationErrors, "status")

	w, _ = h.do(http.MethodPatch, "/api/admin/vehicles/"+id, admin, map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = h.do(http.MethodPatch, "/api/admin/vehicles/"+id, admin, map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPublicBrowseRatingAndViews(t *testing.T) {
	h := newHarness(t)
	admin := h.login("admin@1auto.market", "adminpass")
	seller := h.register("seller@example.com")
	buyer := h.register("buyer@example.com")
	id := h.submit(seller)

	w, _ := h.do(http.MethodGet, "/api/vehicles/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = h.do(http.MethodPatch, "/api/admin/vehicles/"+id, admin, map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env := h.do(http.MethodGet, "/api/vehicles?brand=renault&maxPrice=70000000", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"total":1`)

	w, _ = h.do(http.MethodGet, "/api/vehicles?minPrice=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = h.do(http.MethodPost, "/api/vehicles/"+id+"/views", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = h.do(http.MethodPost, "/api/vehicles/"+id+"/rate", "", map[string]int{"rating": 4})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = h.do(http.MethodPost, "/api/vehicles/"+id+"/rate", buyer, map[string]int{"rating": 4})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), `"averageRating":4`)

	w, env = h.do(http.MethodPost, "/api/vehicles/"+id+"/rate", buyer, map[string]int{"rating": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.ValidationErrors, "rating")

	w, env = h.do(http.MethodGet, "/api/vehicles/"+id+"/rating", buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"userRating":4`)

	w, env = h.do(http.MethodGet, "/api/vehicles/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"views":1`)
	assert.Contains(t, string(env.Data), `"ratingCount":1`)

	w, _ = h.do(http.MethodPost, "/api/favorites", buyer, map[string]string{"vehicleId": id})
	require.Equal(t, http.StatusOK, w.Code)
	w, env = h.do(http.MethodGet, "/api/favorites", buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), id)
}

func TestConcurrentRatingsAverage(t *testing.T) {
	h := newHarness(t)
	admin := h.login("admin@1auto.market", "adminpass")
	id := h.submit(h.register("seller@example.com"))
	w, _ := h.do(http.MethodPatch, "/api/admin/vehicles/"+id, admin, map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code)

	voters := map[string]int{
		h.register("ana@example.com"):  5,
		h.register("luis@example.com"): 3,
	}
	var wg sync.WaitGroup
	codes := make(chan int, len(voters))
	for token, value := range voters {
		wg.Add(1)
		go func(token string, value int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/vehicles/"+id+"/rate",
				strings.NewReader(`{"rating":`+string(rune('0'+value))+`}`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			h.router.ServeHTTP(rec, req)
			codes <- rec.Code
		}(token, value)
	}
	wg.Wait()
	close(codes)
	for code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}

	w, env := h.do(http.MethodGet, "/api/vehicles/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var v struct {
		AverageRating float64 `json:"averageRating"`
		RatingCount   int     `json:"ratingCount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.Equal(t, 2, v.RatingCount)
	assert.InDelta(t, 4.0, v.AverageRating, 0.001)
}

func TestValidateStep(t *testing.T) {
	h := newHarness(t)

	w, env := h.do(http.MethodPost, "/api/post-ad/validate?step=contact", "", map[string]any{
		"sellerContact": map[string]string{"name": "Ana", "email": "nope", "phone": "12"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.ValidationErrors, "sellerContact.email")
	assert.Contains(t, env.ValidationErrors, "sellerContact.phone")

	w, _ = h.do(http.MethodPost, "/api/post-ad/validate?step=basic", "", map[string]any{
		"category": "cars", "brand": "Kia", "model": "Picanto", "year": 2022, "condition": "new",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = h.do(http.MethodPost, "/api/post-ad/validate?step=nope", "", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.ValidationErrors, "step")
}

func TestMultipartPostAdUploadsImages(t *testing.T) {
	h := newHarness(t)
	seller := h.register("seller@example.com")

	body := listingBody()
	delete(body, "images")
	data, err := json.Marshal(body)
	require.NoError(t, err)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("data", string(data)))
	part, err := mw.CreateFormFile("images[]", "front.png")
	require.NoError(t, err)
	_, err = part.Write(append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/post-ad", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+seller)
	w, env := h.serve(req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, h.media.uploads, 1)
	assert.True(t, strings.HasSuffix(h.media.uploads[0], ".png"))
	assert.Contains(t, string(env.Data), "https://media.example.com/")
}

func TestUnavailableFeaturesAnswer503(t *testing.T) {
	h := newHarness(t)
	seller := h.register("seller@example.com")

	w, env := h.do(http.MethodPost, "/api/post-ad/description", seller, map[string]any{
		"brand": "Kia", "model": "Rio", "year": 2020,
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, env.Success)
}

func TestHealthAndMalformedJSON(t *testing.T) {
	h := newHarness(t)
	w, _ := h.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := h.do(http.MethodPost, "/api/register", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.ValidationErrors, "body")
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "camionetas-electricas", handlers.Slugify("Camionetas Eléctricas"))
	assert.Equal(t, "motos-4x4", handlers.Slugify("  Motos / 4x4 "))
}

func TestCategoriesAndAnalytics(t *testing.T) {
	h := newHarness(t)
	admin := h.login("admin@1auto.market", "adminpass")
	seller := h.register("seller@example.com")

	w, _ := h.do(http.MethodPost, "/api/admin/categories", seller, map[string]any{"name": "Camionetas"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := h.do(http.MethodPost, "/api/admin/categories", admin, map[string]any{
		"name": "Camionetas Eléctricas", "subcategories": []string{"SUV"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), `"slug":"camionetas-electricas"`)

	w, _ = h.do(http.MethodPost, "/api/admin/categories", admin, map[string]any{"name": "camionetas electricas"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = h.do(http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "Camionetas Eléctricas")

	id := h.submit(seller)
	w, _ = h.do(http.MethodPatch, "/api/admin/vehicles/"+id, admin, map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = h.do(http.MethodGet, "/api/admin/analytics", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		TotalVehicles    int64            `json:"totalVehicles"`
		TotalUsers       int64            `json:"totalUsers"`
		VehiclesByStatus map[string]int64 `json:"vehiclesByStatus"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(1), stats.TotalVehicles)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.VehiclesByStatus["approved"])
}

func TestPublicReadsHidePaymentAndModerationData(t *testing.T) {
	h := newHarness(t)
	admin := h.login("admin@1auto.market", "adminpass")
	seller := h.register("seller@example.com")
	buyer := h.register("buyer@example.com")

	body := listingBody()
	body["paymentProof"] = "https://cdn.example.com/proof.jpg"
	body["referenceNumber"] = "REF-2024-77"
	w, env := h.do(http.MethodPost, "/api/post-ad", seller, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	id := created.ID

	w, _ = h.do(http.MethodPatch, "/api/admin/vehicles/"+id, admin, map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = h.do(http.MethodPost, "/api/favorites", buyer, map[string]string{"vehicleId": id})
	require.Equal(t, http.StatusOK, w.Code)

	for _, read := range []struct{ path, token string }{
		{"/api/vehicles/" + id, ""},
		{"/api/vehicles/" + id, ""}, // served from cache
		{"/api/vehicles", ""},
		{"/api/favorites", buyer},
	} {
		w, _ := h.do(http.MethodGet, read.path, read.token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		out := w.Body.String()
		assert.Contains(t, out, id, read.path)
		for _, hidden := range []string{"paymentProof", "REF-2024-77", "statusHistory", "listingFee"} {
			assert.NotContains(t, out, hidden, read.path)
		}
	}

	w, _ = h.do(http.MethodGet, "/api/admin/vehicles/"+id, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "REF-2024-77")
	assert.Contains(t, w.Body.String(), "statusHistory")
}

func TestDemotedAdminLosesAccessBeforeTokenExpires(t *testing.T) {
	h := newHarness(t)
	root := h.login("admin@1auto.market", "adminpass")
	seller := h.register("seller@example.com")
	h.register("moderator@example.com")
	id := h.submit(seller)

	w, env := h.do(http.MethodGet, "/api/admin/users", root, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Users []struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"users"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	var moderatorID string
	for _, u := range page.Users {
		if u.Email == "moderator@example.com" {
			moderatorID = u.ID
		}
	}
	require.NotEmpty(t, moderatorID)

	w, _ = h.do(http.MethodPut, "/api/admin/users/"+moderatorID, root, map[string]string{"role": "admin"})
	require.Equal(t, http.StatusOK, w.Code)
	moderator := h.login("moderator@example.com", "password123")

	w, _ = h.do(http.MethodGet, "/api/admin/vehicles/"+id, moderator, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = h.do(http.MethodPut, "/api/admin/users/"+moderatorID, root, map[string]string{"role": "user"})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = h.do(http.MethodPatch, "/api/admin/vehicles/"+id, moderator, map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Acceso no autorizado", env.Error)

	w, _ = h.do(http.MethodGet, "/api/admin/ws?token="+moderator, "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = h.do(http.MethodGet, "/api/admin/vehicles/"+id, root, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"status":"pending"`)
}

func TestMultipartPostAdWithInvalidDataUploadsNothing(t *testing.T) {
	h := newHarness(t)
	seller := h.register("seller@example.com")

	body := listingBody()
	delete(body, "images")
	body["price"] = -5
	data, err := json.Marshal(body)
	require.NoError(t, err)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("data", string(data)))
	part, err := mw.CreateFormFile("images[]", "front.png")
	require.NoError(t, err)
	_, err = part.Write(append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/post-ad", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+seller)
	w, env := h.serve(req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.ValidationErrors, "price")
	assert.Empty(t, h.media.uploads)
}
