package handlers

import (
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/1auto-market/vehiclestore-backend/internal/adapters/repository"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"github.com/1auto-market/vehiclestore-backend/internal/validation"
	"github.com/1auto-market/vehiclestore-backend/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/text/unicode/norm"
)

type CategoryHandler struct {
	Repo repository.CategoryRepository
}

func NewCategoryHandler(repo repository.CategoryRepository) *CategoryHandler {
	return &CategoryHandler{Repo: repo}
}

// Slugify lowercases name, strips accents and joins words with hyphens.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range norm.NFD.String(strings.ToLower(name)) {
		switch {
		case unicode.Is(unicode.Mn, r):
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	// Role check is handled by RoleMiddleware in routes.go
	var category models.Category
	if !bindJSON(c, &category) {
		return
	}
	category.Name = strings.TrimSpace(category.Name)
	if err := validation.Struct(&category); err != nil {
		respondError(c, err)
		return
	}
	category.Slug = Slugify(category.Name)
	category.CreatedAt = time.Now().UTC()
	if category.Subcategories == nil {
		category.Subcategories = []string{}
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	created, err := h.Repo.Create(ctx, category)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("Category created successfully", created))
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	categories, err := h.Repo.List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Categories fetched successfully", gin.H{"categories": categories}))
}
