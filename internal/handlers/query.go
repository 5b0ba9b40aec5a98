package handlers

import (
	"strconv"
	"strings"

	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"github.com/gin-gonic/gin"
)

type queryErrors map[string][]string

func (e queryErrors) add(field, msg string) { e[field] = append(e[field], msg) }

func (e queryErrors) err() error {
	if len(e) == 0 {
		return nil
	}
	return domain.NewValidationError(e)
}

func intParam(c *gin.Context, errs queryErrors, name string) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		errs.add(name, name+" must be a non-negative integer")
		return 0
	}
	return n
}

func floatParam(c *gin.Context, errs queryErrors, name string) float64 {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		errs.add(name, name+" must be a non-negative number")
		return 0
	}
	return f
}

// parseVehicleQuery reads browse filters, sorting and paging from the query string.
func parseVehicleQuery(c *gin.Context) (models.VehicleQuery, error) {
	errs := queryErrors{}
	q := models.VehicleQuery{
		Category:     strings.TrimSpace(c.Query("category")),
		Brand:        strings.TrimSpace(c.Query("brand")),
		Model:        strings.TrimSpace(c.Query("model")),
		FuelType:     strings.TrimSpace(c.Query("fuelType")),
		Transmission: strings.TrimSpace(c.Query("transmission")),
		Condition:    strings.TrimSpace(c.Query("condition")),
		Location:     strings.TrimSpace(c.Query("location")),
		Search:       strings.TrimSpace(c.Query("q")),
		Sort:         strings.TrimSpace(c.Query("sort")),
		MinPrice:     floatParam(c, errs, "minPrice"),
		MaxPrice:     floatParam(c, errs, "maxPrice"),
		MinYear:      intParam(c, errs, "minYear"),
		MaxYear:      intParam(c, errs, "maxYear"),
		Page:         intParam(c, errs, "page"),
		Limit:        intParam(c, errs, "limit"),
	}
	if q.MaxPrice > 0 && q.MinPrice > q.MaxPrice {
		errs.add("minPrice", "minPrice must not exceed maxPrice")
	}
	if q.MaxYear > 0 && q.MinYear > q.MaxYear {
		errs.add("minYear", "minYear must not exceed maxYear")
	}

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			s, err := domain.ParseStatus(part)
			if err != nil {
				errs.add("status", "status must be one of: pending, under_review, approved, rejected")
				break
			}
			q.Statuses = append(q.Statuses, s)
		}
	}
	return q, errs.err()
}
