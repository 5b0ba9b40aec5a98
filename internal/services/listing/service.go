package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/1auto-market/vehiclestore-backend/internal/adapters/repository"
	"github.com/1auto-market/vehiclestore-backend/internal/cache"
	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"github.com/1auto-market/vehiclestore-backend/internal/services/notify"
	"github.com/1auto-market/vehiclestore-backend/internal/validation"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service implements the listing workflow: submission, moderation, edits and reads.
type Service interface {
	Submit(ctx context.Context, p domain.Principal, details models.VehicleDetails) (models.Vehicle, error)
	// Validate runs the submission checks without storing anything.
	Validate(details models.VehicleDetails) error
	Get(ctx context.Context, p domain.Principal, id string) (models.Vehicle, error)
	GetPublic(ctx context.Context, id string) (models.Vehicle, error)
	ListAll(ctx context.Context, q models.VehicleQuery) (models.VehiclePage, error)
	ListBySeller(ctx context.Context, p domain.Principal, q models.VehicleQuery) (models.VehiclePage, error)
	Browse(ctx context.Context, q models.VehicleQuery) (models.VehiclePage, error)
	Update(ctx context.Context, p domain.Principal, id string, patch []byte) (models.Vehicle, error)
	UpdateStatus(ctx context.Context, p domain.Principal, id string, in models.StatusUpdateInput) (models.Vehicle, error)
	Delete(ctx context.Context, p domain.Principal, id string) error
	RecordView(ctx context.Context, id string) (int64, error)
}

type Options struct {
	DefaultCurrency string
	Composer        notify.Composer
	Cache           *cache.VehicleCache
}

type service struct {
	vehicles repository.VehicleRepository
	users    repository.UserRepository
	opts     Options
	now      func() time.Time
}

func NewService(vehicles repository.VehicleRepository, users repository.UserRepository, opts Options) Service {
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = "COP"
	}
	return &service{
		vehicles: vehicles,
		users:    users,
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (s *service) Validate(details models.VehicleDetails) error {
	details = s.normalize(details)
	return validation.Struct(&details)
}

func (s *service) Submit(ctx context.Context, p domain.Principal, details models.VehicleDetails) (models.Vehicle, error) {
	if p.UserID.IsZero() {
		return models.Vehicle{}, domain.ErrUnauthorized
	}
	details = s.normalize(details)
	if err := validation.Struct(&details); err != nil {
		return models.Vehicle{}, err
	}

	now := s.now()
	vehicle := models.Vehicle{
		ID:             primitive.NewObjectID(),
		SellerID:       p.UserID,
		VehicleDetails: details,
		Status:         domain.StatusPending,
		PostedDate:     now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	outbox, err := s.opts.Composer.ListingSubmitted(vehicle, now)
	if err != nil {
		return models.Vehicle{}, err
	}

	created, err := s.vehicles.Create(ctx, vehicle, outbox)
	if err != nil {
		return models.Vehicle{}, err
	}
	logrus.WithFields(logrus.Fields{
		"vehicleId": created.ID.Hex(),
		"sellerId":  p.UserID.Hex(),
	}).Info("Listing submitted")
	return created, nil
}

func (s *service) Get(ctx context.Context, p domain.Principal, id string) (models.Vehicle, error) {
	vehicle, err := s.load(ctx, id)
	if err != nil {
		return models.Vehicle{}, err
	}
	if !p.CanManage(vehicle.SellerID) {
		return models.Vehicle{}, domain.ErrForbidden
	}
	return vehicle, nil
}

func (s *service) GetPublic(ctx context.Context, id string) (models.Vehicle, error) {
	oid, err := domain.ParseID("vehicle", id)
	if err != nil {
		return models.Vehicle{}, err
	}
	if cached, ok := s.opts.Cache.Get(oid.Hex()); ok {
		return cached.Public(), nil
	}

	gen := s.opts.Cache.Generation(oid.Hex())
	vehicle, err := s.vehicles.GetByID(ctx, oid)
	if err != nil {
		return models.Vehicle{}, err
	}
	if vehicle.Status != domain.StatusApproved {
		return models.Vehicle{}, domain.NotFound("vehicle")
	}
	s.opts.Cache.Add(vehicle, gen)
	return vehicle.Public(), nil
}

func (s *service) ListAll(ctx context.Context, q models.VehicleQuery) (models.VehiclePage, error) {
	return s.page(ctx, q)
}

func (s *service) ListBySeller(ctx context.Context, p domain.Principal, q models.VehicleQuery) (models.VehiclePage, error) {
	if p.UserID.IsZero() {
		return models.VehiclePage{}, domain.ErrUnauthorized
	}
	q.SellerID = p.UserID
	return s.page(ctx, q)
}

func (s *service) Browse(ctx context.Context, q models.VehicleQuery) (models.VehiclePage, error) {
	q.Statuses = []domain.ListingStatus{domain.StatusApproved}
	q.SellerID = primitive.NilObjectID
	page, err := s.page(ctx, q)
	if err != nil {
		return models.VehiclePage{}, err
	}
	for i, v := range page.Vehicles {
		page.Vehicles[i] = v.Public()
	}
	return page, nil
}

func (s *service) page(ctx context.Context, q models.VehicleQuery) (models.VehiclePage, error) {
	q.Normalize()
	vehicles, total, err := s.vehicles.List(ctx, q)
	if err != nil {
		return models.VehiclePage{}, err
	}
	return models.VehiclePage{Vehicles: vehicles, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

// Update merges a partial JSON document over the stored seller fields and
// validates the result as a whole. A seller editing their rejected listing
// sends it back to review.
func (s *service) Update(ctx context.Context, p domain.Principal, id string, patch []byte) (models.Vehicle, error) {
	vehicle, err := s.load(ctx, id)
	if err != nil {
		return models.Vehicle{}, err
	}
	if !p.CanManage(vehicle.SellerID) {
		return models.Vehicle{}, domain.ErrForbidden
	}
	if !p.IsAdmin() && !vehicle.Status.SellerEditable() {
		return models.Vehicle{}, fmt.Errorf("%w: %s listings cannot be edited", domain.ErrConflict, vehicle.Status)
	}

	details := vehicle.Clone().VehicleDetails
	if err := json.Unmarshal(patch, &details); err != nil {
		return models.Vehicle{}, domain.FieldError("body", "must be a valid JSON object")
	}
	details = s.normalize(details)
	if err := validation.Struct(&details); err != nil {
		return models.Vehicle{}, err
	}

	var change *models.StatusChange
	if vehicle.Status == domain.StatusRejected && p.UserID == vehicle.SellerID {
		change = &models.StatusChange{
			From:      domain.StatusRejected,
			To:        domain.StatusPending,
			Reason:    "resubmitted by seller",
			ChangedBy: p.UserID,
		}
	}

	updated, err := s.vehicles.UpdateDetails(ctx, vehicle.ID, vehicle.Status, details, change)
	if err != nil {
		return models.Vehicle{}, err
	}
	s.opts.Cache.Invalidate(vehicle.ID.Hex())
	return updated, nil
}

func (s *service) UpdateStatus(ctx context.Context, p domain.Principal, id string, in models.StatusUpdateInput) (models.Vehicle, error) {
	if !p.IsAdmin() {
		return models.Vehicle{}, domain.ErrForbidden
	}
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	in.RejectionReason = strings.TrimSpace(in.RejectionReason)
	if err := validation.Struct(&in); err != nil {
		return models.Vehicle{}, err
	}

	vehicle, err := s.load(ctx, id)
	if err != nil {
		return models.Vehicle{}, err
	}
	to := domain.ListingStatus(in.Status)
	if err := domain.CheckTransition(vehicle.Status, to); err != nil {
		return models.Vehicle{}, err
	}

	reason := ""
	if to == domain.StatusRejected {
		reason = in.RejectionReason
	}

	preview := vehicle.Clone()
	preview.Status = to
	preview.RejectionReason = reason

	outbox, err := s.opts.Composer.StatusChanged(preview, s.seller(ctx, vehicle.SellerID))
	if err != nil {
		return models.Vehicle{}, err
	}

	change := models.StatusChange{
		From:      vehicle.Status,
		To:        to,
		Reason:    reason,
		ChangedBy: p.UserID,
	}
	updated, err := s.vehicles.UpdateStatus(ctx, vehicle.ID, change, outbox)
	if err != nil {
		return models.Vehicle{}, err
	}
	s.opts.Cache.Invalidate(vehicle.ID.Hex())

	logrus.WithFields(logrus.Fields{
		"vehicleId": vehicle.ID.Hex(),
		"from":      change.From,
		"to":        change.To,
		"adminId":   p.UserID.Hex(),
	}).Info("Listing status updated")
	return updated, nil
}

func (s *service) Delete(ctx context.Context, p domain.Principal, id string) error {
	vehicle, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !p.CanManage(vehicle.SellerID) {
		return domain.ErrForbidden
	}
	if err := s.vehicles.Delete(ctx, vehicle.ID); err != nil {
		return err
	}
	s.opts.Cache.Invalidate(vehicle.ID.Hex())
	return nil
}

func (s *service) RecordView(ctx context.Context, id string) (int64, error) {
	oid, err := domain.ParseID("vehicle", id)
	if err != nil {
		return 0, err
	}
	gen := s.opts.Cache.Generation(oid.Hex())
	views, err := s.vehicles.IncrementViews(ctx, oid)
	if err != nil {
		return 0, err
	}
	if cached, ok := s.opts.Cache.Get(oid.Hex()); ok && cached.Views < views {
		cached.Views = views
		s.opts.Cache.Add(cached, gen)
	}
	return views, nil
}

func (s *service) load(ctx context.Context, id string) (models.Vehicle, error) {
	oid, err := domain.ParseID("vehicle", id)
	if err != nil {
		return models.Vehicle{}, err
	}
	return s.vehicles.GetByID(ctx, oid)
}

// seller returns nil when the owner cannot be loaded; notifications then go
// to the listing contact only.
func (s *service) seller(ctx context.Context, id primitive.ObjectID) *models.User {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logrus.WithError(err).WithField("sellerId", id.Hex()).Warn("Could not load seller for notification")
		}
		return nil
	}
	return &user
}

func (s *service) normalize(d models.VehicleDetails) models.VehicleDetails {
	d.Currency = strings.ToUpper(strings.TrimSpace(d.Currency))
	if d.Currency == "" {
		d.Currency = s.opts.DefaultCurrency
	}
	d.SellerContact.Email = strings.ToLower(strings.TrimSpace(d.SellerContact.Email))
	d.VIN = strings.ToUpper(strings.TrimSpace(d.VIN))
	d.Brand = strings.TrimSpace(d.Brand)
	d.Model = strings.TrimSpace(d.Model)
	return d
}
