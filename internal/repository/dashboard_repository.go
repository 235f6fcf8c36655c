package repository

import (
	"context"
	"time"

	"feedback-system/internal/database"
	"feedback-system/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Grouped-count result shapes produced by the dashboard aggregates.
type CategoryCount struct {
	Category models.FeedbackCategory `bson:"category" json:"category"`
	Count    int64                   `bson:"count" json:"count"`
}

type StatusCount struct {
	Status models.FeedbackStatus `bson:"status" json:"status"`
	Count  int64                 `bson:"count" json:"count"`
}

type DailyCount struct {
	Date  string `bson:"date" json:"date"`
	Count int64  `bson:"count" json:"count"`
}

// RatingBucket holds one histogram bucket. Rating is 1-5 for the regular
// buckets and the string "other" for out-of-range values.
type RatingBucket struct {
	Rating interface{} `bson:"rating" json:"rating"`
	Count  int64       `bson:"count" json:"count"`
}

// UserActivity is one row of the most-recently-active-users aggregate.
type UserActivity struct {
	ID            primitive.ObjectID `bson:"_id" json:"userId"`
	Name          string             `bson:"name" json:"name"`
	Email         string             `bson:"email" json:"email"`
	FeedbackCount int64              `bson:"feedbackCount" json:"feedbackCount"`
	LastActivity  time.Time          `bson:"lastActivity" json:"lastActivity"`
}

// DashboardRepository exposes the read-only aggregates behind the
// dashboard endpoint. All methods are independent of each other and safe
// to run concurrently.
type DashboardRepository interface {
	CountUsers(ctx context.Context) (int64, error)
	CountFeedback(ctx context.Context) (int64, error)
	FeedbackByCategory(ctx context.Context) ([]CategoryCount, error)
	FeedbackByStatus(ctx context.Context) ([]StatusCount, error)
	DailyFeedbackCounts(ctx context.Context, since time.Time) ([]DailyCount, error)
	AverageRating(ctx context.Context) (float64, error)
	RecentFeedback(ctx context.Context, limit int) ([]models.FeedbackWithAuthor, error)
	TopUserActivity(ctx context.Context, limit int) ([]UserActivity, error)
	AverageResolutionDays(ctx context.Context) (float64, error)
	TopRatedFeedback(ctx context.Context, limit int) ([]models.FeedbackWithAuthor, error)
	RatingDistribution(ctx context.Context) ([]RatingBucket, error)
	CountFeedbackInWindow(ctx context.Context, from, to time.Time, status models.FeedbackStatus) (int64, error)
}

type MongoDashboardRepository struct {
	users    *mongo.Collection
	feedback *mongo.Collection
}

func NewMongoDashboardRepository(db *mongo.Database) *MongoDashboardRepository {
	return &MongoDashboardRepository{
		users:    db.Collection(database.UsersCollection),
		feedback: db.Collection(database.FeedbackCollection),
	}
}

func (r *MongoDashboardRepository) CountUsers(ctx context.Context) (int64, error) {
	return r.users.CountDocuments(ctx, bson.M{})
}

func (r *MongoDashboardRepository) CountFeedback(ctx context.Context) (int64, error) {
	return r.feedback.CountDocuments(ctx, bson.M{})
}

func (r *MongoDashboardRepository) FeedbackByCategory(ctx context.Context) ([]CategoryCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
		{{Key: "$project", Value: bson.M{"category": "$_id", "count": 1, "_id": 0}}},
	}
	results := []CategoryCount{}
	if err := r.aggregate(ctx, r.feedback, pipeline, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *MongoDashboardRepository) FeedbackByStatus(ctx context.Context) ([]StatusCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
		{{Key: "$project", Value: bson.M{"status": "$_id", "count": 1, "_id": 0}}},
	}
	results := []StatusCount{}
	if err := r.aggregate(ctx, r.feedback, pipeline, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *MongoDashboardRepository) DailyFeedbackCounts(ctx context.Context, since time.Time) ([]DailyCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format": "%Y-%m-%d",
				"date":   "$createdAt",
			}},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$project", Value: bson.M{"date": "$_id", "count": 1, "_id": 0}}},
	}
	results := []DailyCount{}
	if err := r.aggregate(ctx, r.feedback, pipeline, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *MongoDashboardRepository) AverageRating(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": nil, "average": bson.M{"$avg": "$rating"}}}},
	}
	var results []struct {
		Average float64 `bson:"average"`
	}
	if err := r.aggregate(ctx, r.feedback, pipeline, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Average, nil
}

func (r *MongoDashboardRepository) RecentFeedback(ctx context.Context, limit int) ([]models.FeedbackWithAuthor, error) {
	return r.populatedFeedback(ctx,
		bson.D{{Key: "createdAt", Value: -1}},
		limit,
		bson.M{"name": 1, "email": 1, "role": 1},
	)
}

func (r *MongoDashboardRepository) TopUserActivity(ctx context.Context, limit int) ([]UserActivity, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         database.UsersCollection,
			"localField":   "raisedBy",
			"foreignField": "_id",
			"as":           "user",
		}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$group", Value: bson.M{
			"_id":           "$user._id",
			"name":          bson.M{"$first": "$user.name"},
			"email":         bson.M{"$first": "$user.email"},
			"feedbackCount": bson.M{"$sum": 1},
			"lastActivity":  bson.M{"$max": "$createdAt"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "lastActivity", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}
	results := []UserActivity{}
	if err := r.aggregate(ctx, r.feedback, pipeline, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *MongoDashboardRepository) AverageResolutionDays(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.StatusResolved}}},
		{{Key: "$addFields", Value: bson.M{
			"resolutionDays": bson.M{"$divide": bson.A{
				bson.M{"$subtract": bson.A{"$updatedAt", "$createdAt"}},
				1000 * 60 * 60 * 24,
			}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":               nil,
			"avgResolutionDays": bson.M{"$avg": "$resolutionDays"},
		}}},
	}
	var results []struct {
		AvgResolutionDays float64 `bson:"avgResolutionDays"`
	}
	if err := r.aggregate(ctx, r.feedback, pipeline, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].AvgResolutionDays, nil
}

func (r *MongoDashboardRepository) TopRatedFeedback(ctx context.Context, limit int) ([]models.FeedbackWithAuthor, error) {
	return r.populatedFeedback(ctx,
		bson.D{{Key: "rating", Value: -1}},
		limit,
		bson.M{"name": 1},
	)
}

// RatingDistribution buckets ratings into 1..5; anything outside lands in
// the "other" bucket.
func (r *MongoDashboardRepository) RatingDistribution(ctx context.Context) ([]RatingBucket, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$bucket", Value: bson.M{
			"groupBy":    "$rating",
			"boundaries": bson.A{1, 2, 3, 4, 5, 6},
			"default":    "other",
			"output":     bson.M{"count": bson.M{"$sum": 1}},
		}}},
		{{Key: "$project", Value: bson.M{"rating": "$_id", "count": 1, "_id": 0}}},
		{{Key: "$sort", Value: bson.D{{Key: "rating", Value: 1}}}},
	}
	results := []RatingBucket{}
	if err := r.aggregate(ctx, r.feedback, pipeline, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *MongoDashboardRepository) CountFeedbackInWindow(ctx context.Context, from, to time.Time, status models.FeedbackStatus) (int64, error) {
	filter := bson.M{"createdAt": bson.M{"$gte": from, "$lt": to}}
	if status != "" {
		filter["status"] = status
	}
	return r.feedback.CountDocuments(ctx, filter)
}

func (r *MongoDashboardRepository) populatedFeedback(ctx context.Context, sort bson.D, limit int, authorFields bson.M) ([]models.FeedbackWithAuthor, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: sort}},
		{{Key: "$limit", Value: limit}},
	}
	pipeline = append(pipeline, lookupAuthorStages(authorFields)...)

	results := []models.FeedbackWithAuthor{}
	if err := r.aggregate(ctx, r.feedback, pipeline, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *MongoDashboardRepository) aggregate(ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline, out interface{}) error {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}
