package repository

import (
	"context"
	"errors"
	"time"

	"feedback-system/internal/database"
	"feedback-system/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ListFeedbackParams controls filtering and pagination for the public
// feedback listing. Empty string / zero means "no filter".
type ListFeedbackParams struct {
	Status    models.FeedbackStatus
	Category  models.FeedbackCategory
	MinRating int
	Page      int
	Limit     int
}

// FeedbackUpdate carries the optional partial-update fields. Nil means
// unchanged.
type FeedbackUpdate struct {
	Rating   *int
	Comment  *string
	Type     *models.FeedbackCategory
	Category *models.FeedbackCategory
	Status   *models.FeedbackStatus
}

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Feedback, error)
	List(ctx context.Context, params ListFeedbackParams) ([]models.FeedbackWithAuthor, int64, error)
	ListByAuthor(ctx context.Context, author primitive.ObjectID, page, limit int) ([]models.FeedbackWithAuthor, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, update FeedbackUpdate) (*models.FeedbackWithAuthor, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByAuthors(ctx context.Context, authors []primitive.ObjectID) (map[primitive.ObjectID]int64, error)
}

type MongoFeedbackRepository struct {
	feedback *mongo.Collection
}

func NewMongoFeedbackRepository(db *mongo.Database) *MongoFeedbackRepository {
	return &MongoFeedbackRepository{feedback: db.Collection(database.FeedbackCollection)}
}

func (r *MongoFeedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	now := time.Now().UTC()
	feedback.CreatedAt = now
	feedback.UpdatedAt = now

	res, err := r.feedback.InsertOne(ctx, feedback)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		feedback.ID = oid
	}
	return nil
}

func (r *MongoFeedbackRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Feedback, error) {
	feedback := &models.Feedback{}
	err := r.feedback.FindOne(ctx, bson.M{"_id": id}).Decode(feedback)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return feedback, nil
}

func (r *MongoFeedbackRepository) List(ctx context.Context, params ListFeedbackParams) ([]models.FeedbackWithAuthor, int64, error) {
	filter := bson.M{}
	if params.Status != "" {
		filter["status"] = params.Status
	}
	if params.Category != "" {
		filter["category"] = params.Category
	}
	if params.MinRating > 0 {
		filter["rating"] = bson.M{"$gte": params.MinRating}
	}

	total, err := r.feedback.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	skip := (params.Page - 1) * params.Limit
	items, err := r.findPopulated(ctx, filter, bson.D{{Key: "createdAt", Value: -1}}, skip, params.Limit, authorProjectionNameEmail)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *MongoFeedbackRepository) ListByAuthor(ctx context.Context, author primitive.ObjectID, page, limit int) ([]models.FeedbackWithAuthor, int64, error) {
	filter := bson.M{"raisedBy": author}

	total, err := r.feedback.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	skip := (page - 1) * limit
	items, err := r.findPopulated(ctx, filter, bson.D{{Key: "createdAt", Value: -1}}, skip, limit, authorProjectionNameEmail)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *MongoFeedbackRepository) Update(ctx context.Context, id primitive.ObjectID, update FeedbackUpdate) (*models.FeedbackWithAuthor, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Rating != nil {
		set["rating"] = *update.Rating
	}
	if update.Comment != nil {
		set["comment"] = *update.Comment
	}
	if update.Type != nil {
		set["type"] = *update.Type
	}
	if update.Category != nil {
		set["category"] = *update.Category
	}
	if update.Status != nil {
		set["status"] = *update.Status
	}

	res, err := r.feedback.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, nil
	}

	items, err := r.findPopulated(ctx, bson.M{"_id": id}, nil, 0, 1, authorProjectionNameEmail)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (r *MongoFeedbackRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.feedback.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// CountByAuthors returns the number of feedback documents per author as a
// single grouped aggregate, never one query per author.
func (r *MongoFeedbackRepository) CountByAuthors(ctx context.Context, authors []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	counts := make(map[primitive.ObjectID]int64, len(authors))
	if len(authors) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"raisedBy": bson.M{"$in": authors}}}},
		{{Key: "$group", Value: bson.M{"_id": "$raisedBy", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.feedback.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		ID    primitive.ObjectID `bson:"_id"`
		Count int64              `bson:"count"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}

	for _, res := range results {
		counts[res.ID] = res.Count
	}
	return counts, nil
}

// Author projections for the $lookup stage; which fields are exposed
// depends on the caller.
var (
	authorProjectionNameEmail = bson.M{"name": 1, "email": 1}
)

// findPopulated runs a find-like aggregation that resolves each feedback's
// author through a $lookup into the users collection. A nil sort skips the
// $sort stage; limit <= 0 means no limit.
func (r *MongoFeedbackRepository) findPopulated(ctx context.Context, filter bson.M, sort bson.D, skip, limit int, authorFields bson.M) ([]models.FeedbackWithAuthor, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
	}
	if sort != nil {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: sort}})
	}
	if skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: skip}})
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	pipeline = append(pipeline, lookupAuthorStages(authorFields)...)

	cursor, err := r.feedback.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []models.FeedbackWithAuthor{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// lookupAuthorStages builds the $lookup/$unwind stages that attach the
// author projection to each feedback document.
func lookupAuthorStages(authorFields bson.M) []bson.D {
	projection := bson.M{"_id": 1}
	for field, include := range authorFields {
		projection[field] = include
	}

	return []bson.D{
		{{Key: "$lookup", Value: bson.M{
			"from": database.UsersCollection,
			"let":  bson.M{"authorId": "$raisedBy"},
			"pipeline": mongo.Pipeline{
				{{Key: "$match", Value: bson.M{"$expr": bson.M{"$eq": bson.A{"$_id", "$$authorId"}}}}},
				{{Key: "$project", Value: projection}},
			},
			"as": "author",
		}}},
		{{Key: "$unwind", Value: bson.M{
			"path":                       "$author",
			"preserveNullAndEmptyArrays": true,
		}}},
	}
}
