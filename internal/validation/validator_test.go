package validation

import (
	"testing"

	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDetails() models.VehicleDetails {
	return models.VehicleDetails{
		ListingBasics: models.ListingBasics{
			Category:  "cars",
			Brand:     "Toyota",
			Model:     "Corolla",
			Year:      2020,
			Condition: "used",
		},
		ListingSpecs: models.ListingSpecs{
			Price:        15000,
			Currency:     "USD",
			Mileage:      30000,
			Color:        "white",
			Transmission: "automatic",
			FuelType:     "gasoline",
			Doors:        4,
			Seats:        5,
			Location:     "Bogota",
		},
		ListingMedia: models.ListingMedia{
			Features:    []string{"air conditioning"},
			Description: "Well kept sedan",
			Images:      []string{"https://res.cloudinary.com/demo/image/upload/car.jpg"},
		},
		ListingContact: models.ListingContact{
			SellerContact: models.SellerContact{Name: "Ana", Email: "ana@x.com", Phone: "+57 300 123 4567"},
		},
	}
}

func fieldsOf(t *testing.T, err error) map[string][]string {
	t.Helper()
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Fields
}

func TestStructAcceptsValidListing(t *testing.T) {
	d := validDetails()
	assert.NoError(t, Struct(&d))
}

func TestStructReportsNegativePrice(t *testing.T) {
	d := validDetails()
	d.Price = -5

	fields := fieldsOf(t, Struct(&d))
	assert.Equal(t, []string{"price must be positive"}, fields["price"])
	assert.Len(t, fields, 1)
}

func TestStructUsesDottedNestedPaths(t *testing.T) {
	d := validDetails()
	d.SellerContact.Email = "not-an-email"
	d.Financing = &models.Financing{Available: true, InterestRate: 150, LoanTermMonths: 12}

	fields := fieldsOf(t, Struct(&d))
	assert.Contains(t, fields, "sellerContact.email")
	assert.Contains(t, fields, "financing.interestRate")
}

func TestVINRule(t *testing.T) {
	d := validDetails()
	d.VIN = "1HGCM82633A004352"
	assert.NoError(t, Struct(&d))

	for _, bad := range []string{"1HGCM82633A00435", "1HGCM82633A00435I", "1hgcm82633a004352"} {
		d.VIN = bad
		fields := fieldsOf(t, Struct(&d))
		assert.Contains(t, fields, "vin", bad)
	}
}

func TestPhoneRule(t *testing.T) {
	d := validDetails()
	d.SellerContact.Phone = "12-34"
	fields := fieldsOf(t, Struct(&d))
	assert.Contains(t, fields, "sellerContact.phone")

	d.SellerContact.Phone = "(601) 555-0100"
	assert.NoError(t, Struct(&d))
}

func TestYearBounds(t *testing.T) {
	d := validDetails()
	d.Year = MaxModelYear() + 1
	fields := fieldsOf(t, Struct(&d))
	assert.Contains(t, fields, "year")

	d.Year = 1899
	fields = fieldsOf(t, Struct(&d))
	assert.Equal(t, []string{"year must be at least 1900"}, fields["year"])

	d.Year = MaxModelYear()
	assert.NoError(t, Struct(&d))
}

func TestCollectionLimits(t *testing.T) {
	d := validDetails()
	d.Images = make([]string, 11)
	for i := range d.Images {
		d.Images[i] = "https://cdn.example.com/a.jpg"
	}
	fields := fieldsOf(t, Struct(&d))
	assert.Equal(t, []string{"images must contain at most 10 items"}, fields["images"])
}

func TestBlankRequiredFields(t *testing.T) {
	d := validDetails()
	d.Brand = "   "
	d.Transmission = "warp"
	fields := fieldsOf(t, Struct(&d))
	assert.Equal(t, []string{"brand is required"}, fields["brand"])
	assert.Equal(t, []string{"transmission must be one of: manual, automatic, semi-automatic, cvt"}, fields["transmission"])
}

func TestNewStep(t *testing.T) {
	s, ok := NewStep("basic")
	require.True(t, ok)
	fields := fieldsOf(t, Struct(s))
	assert.Contains(t, fields, "brand")
	assert.Contains(t, fields, "year")
	assert.NotContains(t, fields, "price")

	s, ok = NewStep("contact")
	require.True(t, ok)
	fields = fieldsOf(t, Struct(s))
	assert.Contains(t, fields, "sellerContact.name")

	_, ok = NewStep("payment")
	assert.False(t, ok)
}
