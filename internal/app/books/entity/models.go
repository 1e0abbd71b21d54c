package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Book struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title         string             `json:"title" bson:"title"`
	Author        string             `json:"author" bson:"author"`
	Genre         string             `json:"genre" bson:"genre"`
	Description   string             `json:"description,omitempty" bson:"description,omitempty"`
	AverageRating float64            `json:"average_rating" bson:"average_rating"` // Производное поле: округлённое среднее оценок
	UserID        string             `json:"user_id" bson:"user_id"`               // ID пользователя, добавившего книгу
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
}

type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	BookID    string             `json:"book_id" bson:"book_id"` // ID книги, к которой относится отзыв
	UserID    string             `json:"user_id" bson:"user_id"` // ID автора отзыва
	Rating    int                `json:"rating" bson:"rating"`   // Оценка от 1 до 5
	Comment   string             `json:"comment,omitempty" bson:"comment,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

type ReviewEvent struct {
	EventType string    `json:"event_type"` // REVIEW_CREATED, REVIEW_UPDATED, REVIEW_DELETED
	ReviewID  string    `json:"review_id"`
	BookID    string    `json:"book_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}
