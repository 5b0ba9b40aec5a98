package memory

import (
	"context"
	"sort"
	"time"

	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, user models.User) (models.User, error) {
	if err := r.s.lock(); err != nil {
		return models.User{}, err
	}
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return models.User{}, domain.ErrEmailTaken
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.s.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *UserRepository) GetByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	if err := r.s.lock(); err != nil {
		return models.User{}, err
	}
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, domain.NotFound("user")
	}
	return cloneUser(u), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (models.User, error) {
	if err := r.s.lock(); err != nil {
		return models.User{}, err
	}
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return models.User{}, domain.NotFound("user")
}

func (r *UserRepository) List(_ context.Context, page, limit int) ([]models.User, int64, error) {
	if err := r.s.lock(); err != nil {
		return nil, 0, err
	}
	defer r.s.mu.Unlock()

	all := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		u = cloneUser(u)
		u.Password = ""
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID.Hex() > all[j].ID.Hex()
	})

	q := models.VehicleQuery{Page: page, Limit: limit}
	q.Normalize()
	start := int(q.Skip())
	if start > len(all) {
		start = len(all)
	}
	end := start + q.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *UserRepository) modify(id primitive.ObjectID, fn func(u *models.User)) (models.User, error) {
	if err := r.s.lock(); err != nil {
		return models.User{}, err
	}
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, domain.NotFound("user")
	}
	fn(&u)
	u.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	r.s.users[id] = cloneUser(u)
	return cloneUser(u), nil
}

func (r *UserRepository) UpdateRole(_ context.Context, id primitive.ObjectID, role string) (models.User, error) {
	return r.modify(id, func(u *models.User) { u.Role = role })
}

func (r *UserRepository) UpdateProfile(_ context.Context, id primitive.ObjectID, in models.ProfileUpdate) (models.User, error) {
	return r.modify(id, func(u *models.User) {
		if in.Name != nil {
			u.Name = *in.Name
		}
		if in.Phone != nil {
			u.Phone = *in.Phone
		}
		if in.Location != nil {
			u.Location = *in.Location
		}
	})
}

func (r *UserRepository) SetTelegram(_ context.Context, id primitive.ObjectID, link *models.TelegramLink) (models.User, error) {
	return r.modify(id, func(u *models.User) {
		if link == nil {
			u.Telegram = nil
			return
		}
		l := *link
		u.Telegram = &l
	})
}

func (r *UserRepository) DeleteCascade(_ context.Context, id primitive.ObjectID) error {
	if err := r.s.lock(); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return domain.NotFound("user")
	}
	delete(r.s.users, id)

	owned := map[primitive.ObjectID]bool{}
	for vid, v := range r.s.vehicles {
		if v.SellerID == id {
			owned[vid] = true
		}
	}
	r.s.deleteVehiclesLocked(owned)
	delete(r.s.favorites, id)
	return nil
}

func cloneUser(u models.User) models.User {
	if u.Telegram != nil {
		t := *u.Telegram
		u.Telegram = &t
	}
	return u
}
