package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FeedbackCategory string

const (
	CategorySuggestion FeedbackCategory = "suggestion"
	CategoryBug        FeedbackCategory = "bug"
	CategoryFeature    FeedbackCategory = "feature"
)

func (c FeedbackCategory) Valid() bool {
	switch c {
	case CategorySuggestion, CategoryBug, CategoryFeature:
		return true
	}
	return false
}

type FeedbackStatus string

const (
	StatusOpen       FeedbackStatus = "open"
	StatusInProgress FeedbackStatus = "in-progress"
	StatusResolved   FeedbackStatus = "resolved"
)

func (s FeedbackStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// Comment and rating bounds, enforced before any write.
const (
	MinRating        = 1
	MaxRating        = 5
	MinCommentLength = 10
	MaxCommentLength = 1000
)

// Feedback is a single rated submission against the product.
// The type field reuses the category value set.
type Feedback struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RaisedBy  primitive.ObjectID `bson:"raisedBy" json:"raisedBy"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	Type      FeedbackCategory   `bson:"type" json:"type"`
	Category  FeedbackCategory   `bson:"category" json:"category"`
	Status    FeedbackStatus     `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Author is the minimal user projection attached to populated feedback.
// Email and role are omitted when the projection did not request them.
type Author struct {
	ID    primitive.ObjectID `bson:"_id" json:"userId"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email,omitempty" json:"email,omitempty"`
	Role  Role               `bson:"role,omitempty" json:"role,omitempty"`
}

// FeedbackWithAuthor is a feedback document with its author resolved
// through a $lookup. The author replaces the raw raisedBy reference in
// API responses, mirroring the populated shape clients expect.
type FeedbackWithAuthor struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	Type      FeedbackCategory   `bson:"type" json:"type"`
	Category  FeedbackCategory   `bson:"category" json:"category"`
	Status    FeedbackStatus     `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
	Author    Author             `bson:"author" json:"raisedBy"`
}
