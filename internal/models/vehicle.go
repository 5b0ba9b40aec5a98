package models

import (
	"math"
	"time"

	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListingBasics is the first step of the listing wizard.
type ListingBasics struct {
	Category    string `json:"category" bson:"category" validate:"notblank,max=60"`
	Subcategory string `json:"subcategory,omitempty" bson:"subcategory,omitempty" validate:"omitempty,max=60"`
	Brand       string `json:"brand" bson:"brand" validate:"notblank,max=60"`
	Model       string `json:"model" bson:"model" validate:"notblank,max=60"`
	Year        int    `json:"year" bson:"year" validate:"required,gte=1900,maxyear"`
	Condition   string `json:"condition" bson:"condition" validate:"required,oneof=new used certified"`
}

// ListingSpecs holds pricing and technical data.
type ListingSpecs struct {
	Price        float64  `json:"price" bson:"price" validate:"gt=0"`
	Currency     string   `json:"currency" bson:"currency" validate:"omitempty,len=3,alpha"`
	Mileage      int      `json:"mileage" bson:"mileage" validate:"gte=0"`
	Color        string   `json:"color" bson:"color" validate:"notblank,max=40"`
	Engine       string   `json:"engine,omitempty" bson:"engine,omitempty" validate:"omitempty,max=60"`
	Transmission string   `json:"transmission" bson:"transmission" validate:"required,oneof=manual automatic semi-automatic cvt"`
	FuelType     string   `json:"fuelType" bson:"fuelType" validate:"required,oneof=gasoline diesel electric hybrid gas other"`
	Doors        int      `json:"doors,omitempty" bson:"doors,omitempty" validate:"omitempty,min=1,max=9"`
	Seats        int      `json:"seats,omitempty" bson:"seats,omitempty" validate:"omitempty,min=1,max=99"`
	Weight       *float64 `json:"weight,omitempty" bson:"weight,omitempty" validate:"omitempty,gt=0"`
	LoadCapacity *float64 `json:"loadCapacity,omitempty" bson:"loadCapacity,omitempty" validate:"omitempty,gt=0"`
	Location     string   `json:"location" bson:"location" validate:"notblank,max=120"`
	VIN          string   `json:"vin,omitempty" bson:"vin,omitempty" validate:"omitempty,vin"`
}

// ListingMedia holds the free text and media of a listing.
type ListingMedia struct {
	Features      []string `json:"features" bson:"features" validate:"max=20,dive,notblank,max=80"`
	Description   string   `json:"description" bson:"description" validate:"notblank,max=2000"`
	Images        []string `json:"images" bson:"images" validate:"max=10,dive,url"`
	Documentation []string `json:"documentation,omitempty" bson:"documentation,omitempty" validate:"max=10,dive,max=200"`
}

type SellerContact struct {
	Name  string `json:"name" bson:"name" validate:"notblank,max=80"`
	Email string `json:"email" bson:"email" validate:"required,email"`
	Phone string `json:"phone" bson:"phone" validate:"required,phone"`
}

type Financing struct {
	Available      bool    `json:"available" bson:"available"`
	InterestRate   float64 `json:"interestRate,omitempty" bson:"interestRate,omitempty" validate:"gte=0,lte=100"`
	LoanTermMonths int     `json:"loanTermMonths,omitempty" bson:"loanTermMonths,omitempty" validate:"omitempty,min=1,max=120"`
}

// ListingContact is the last wizard step: who sells and how it is paid.
type ListingContact struct {
	SellerContact   SellerContact `json:"sellerContact" bson:"sellerContact"`
	Financing       *Financing    `json:"financing,omitempty" bson:"financing,omitempty" validate:"omitempty"`
	PaymentProof    string        `json:"paymentProof,omitempty" bson:"paymentProof,omitempty" validate:"omitempty,url"`
	ReferenceNumber string        `json:"referenceNumber,omitempty" bson:"referenceNumber,omitempty" validate:"omitempty,max=64"`
}

// VehicleDetails is everything a seller controls. It doubles as the create schema.
type VehicleDetails struct {
	ListingBasics  `bson:",inline"`
	ListingSpecs   `bson:",inline"`
	ListingMedia   `bson:",inline"`
	ListingContact `bson:",inline"`
}

// StatusChange is one entry of the moderation audit trail.
type StatusChange struct {
	From      domain.ListingStatus `json:"from" bson:"from"`
	To        domain.ListingStatus `json:"to" bson:"to"`
	Reason    string               `json:"reason,omitempty" bson:"reason,omitempty"`
	ChangedBy primitive.ObjectID   `json:"changedBy" bson:"changedBy"`
	ChangedAt time.Time            `json:"changedAt" bson:"changedAt"`
}

type ListingFeeStatus string

const (
	ListingFeePending ListingFeeStatus = "pending"
	ListingFeePaid    ListingFeeStatus = "paid"
)

type ListingFee struct {
	PaymentIntentID string           `json:"paymentIntentId" bson:"paymentIntentId"`
	Amount          int64            `json:"amount" bson:"amount"`
	Currency        string           `json:"currency" bson:"currency"`
	Status          ListingFeeStatus `json:"status" bson:"status"`
	PaidAt          *time.Time       `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
}

type Vehicle struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SellerID primitive.ObjectID `json:"sellerId" bson:"sellerId"`

	VehicleDetails `bson:",inline"`

	// Moderation
	Status          domain.ListingStatus `json:"status" bson:"status"`
	RejectionReason string               `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
	StatusHistory   []StatusChange       `json:"statusHistory,omitempty" bson:"statusHistory,omitempty"`

	ListingFee *ListingFee `json:"listingFee,omitempty" bson:"listingFee,omitempty"`

	// Engagement
	Views         int64   `json:"views" bson:"views"`
	AverageRating float64 `json:"averageRating" bson:"averageRating"`
	RatingCount   int     `json:"ratingCount" bson:"ratingCount"`

	PostedDate time.Time `json:"postedDate" bson:"postedDate"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}

// StatusUpdateInput is the admin moderation payload.
type StatusUpdateInput struct {
	Status          string `json:"status" validate:"required,oneof=pending under_review approved rejected"`
	RejectionReason string `json:"rejectionReason" validate:"max=500"`
}

// VehicleQuery filters listing reads.
type VehicleQuery struct {
	Statuses     []domain.ListingStatus
	SellerID     primitive.ObjectID
	Category     string
	Brand        string
	Model        string
	FuelType     string
	Transmission string
	Condition    string
	Location     string
	Search       string
	MinPrice     float64
	MaxPrice     float64
	MinYear      int
	MaxYear      int
	Sort         string
	Page         int
	Limit        int
}

const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortYearDesc  = "year_desc"
	SortRating    = "rating"

	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize clamps paging values and defaults the sort order.
func (q *VehicleQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	switch q.Sort {
	case SortNewest, SortPriceAsc, SortPriceDesc, SortYearDesc, SortRating:
	default:
		q.Sort = SortNewest
	}
}

func (q VehicleQuery) Skip() int64 {
	return int64((q.Page - 1) * q.Limit)
}

type VehiclePage struct {
	Vehicles []Vehicle `json:"vehicles"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
}

// RoundRating rounds an average to one decimal place.
func RoundRating(v float64) float64 {
	return math.Round(v*10) / 10
}

// Public strips payment and moderation data before a listing is shown to
// anonymous buyers.
func (v Vehicle) Public() Vehicle {
	out := v.Clone()
	out.PaymentProof = ""
	out.ReferenceNumber = ""
	out.ListingFee = nil
	out.StatusHistory = nil
	out.RejectionReason = ""
	return out
}

// Clone returns a deep copy so callers can mutate slices safely.
func (v Vehicle) Clone() Vehicle {
	out := v
	out.Features = append([]string(nil), v.Features...)
	out.Images = append([]string(nil), v.Images...)
	out.Documentation = append([]string(nil), v.Documentation...)
	out.StatusHistory = append([]StatusChange(nil), v.StatusHistory...)
	if v.Financing != nil {
		f := *v.Financing
		out.Financing = &f
	}
	if v.Weight != nil {
		w := *v.Weight
		out.Weight = &w
	}
	if v.LoadCapacity != nil {
		l := *v.LoadCapacity
		out.LoadCapacity = &l
	}
	if v.ListingFee != nil {
		fee := *v.ListingFee
		out.ListingFee = &fee
	}
	return out
}
