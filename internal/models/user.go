package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TelegramLink connects a user to the chat-bot.
type TelegramLink struct {
	ChatID   int64  `json:"chatId" bson:"chatId" validate:"required"`
	Username string `json:"username,omitempty" bson:"username,omitempty" validate:"omitempty,max=64"`
}

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `json:"name" bson:"name"`
	Email    string             `json:"email" bson:"email"`
	Password string             `json:"-" bson:"password"`
	Role     string             `json:"role" bson:"role"`
	Phone    string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Location string             `json:"location,omitempty" bson:"location,omitempty"`

	Telegram *TelegramLink `json:"telegram,omitempty" bson:"telegram,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

type RegisterInput struct {
	Name     string `json:"name" validate:"notblank,min=2,max=80"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
	Location string `json:"location" validate:"omitempty,max=120"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProfileUpdate struct {
	Name     *string `json:"name" validate:"omitempty,notblank,min=2,max=80"`
	Phone    *string `json:"phone" validate:"omitempty,phone"`
	Location *string `json:"location" validate:"omitempty,max=120"`
}

type RoleUpdateInput struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type UserPage struct {
	Users []User `json:"users"`
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}
