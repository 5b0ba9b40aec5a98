// Package memory keeps every repository in process memory. It backs tests and
// the "memory" database driver used for local runs without MongoDB.
package memory

import (
	"sync"

	"github.com/1auto-market/vehiclestore-backend/internal/adapters/repository"
	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ratingKey struct {
	vehicleID primitive.ObjectID
	userID    primitive.ObjectID
}

// Store holds all collections behind one mutex, so every multi-collection
// write is atomic just like a MongoDB transaction.
type Store struct {
	mu            sync.Mutex
	err           error
	vehicles      map[primitive.ObjectID]models.Vehicle
	users         map[primitive.ObjectID]models.User
	ratings       map[ratingKey]models.Rating
	favorites     map[primitive.ObjectID]models.Favorites
	categories    []models.Category
	notifications []domain.Notification
}

func NewStore() *Store {
	return &Store{
		vehicles:  map[primitive.ObjectID]models.Vehicle{},
		users:     map[primitive.ObjectID]models.User{},
		ratings:   map[ratingKey]models.Rating{},
		favorites: map[primitive.ObjectID]models.Favorites{},
	}
}

// WithError makes every following call fail with err until it is reset with nil.
func (s *Store) WithError(err error) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	return s
}

func (s *Store) lock() error {
	s.mu.Lock()
	if s.err != nil {
		err := s.err
		s.mu.Unlock()
		return &domain.UpstreamError{Service: "memory", Err: err}
	}
	return nil
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Vehicles:      &VehicleRepository{s},
		Ratings:       &RatingRepository{s},
		Users:         &UserRepository{s},
		Favorites:     &FavoriteRepository{s},
		Categories:    &CategoryRepository{s},
		Analytics:     &AnalyticsRepository{s},
		Notifications: &NotificationRepository{s},
	}
}

// Notifications returns a copy of every outbox record.
func (s *Store) Notifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// RatingCount returns the number of stored votes for a vehicle.
func (s *Store) RatingCount(vehicleID primitive.ObjectID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.ratings {
		if k.vehicleID == vehicleID {
			n++
		}
	}
	return n
}
