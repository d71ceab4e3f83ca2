package repository

import (
	"context"

	"chat_sync_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConversationRepository definition the authoritative conversation store
type ConversationRepository interface {
	List(ctx context.Context, userID string) ([]domain.Conversation, error)
	FindByID(ctx context.Context, conversationID string) (*domain.Conversation, error)
	FindDirect(ctx context.Context, userA, userB string) (*domain.Conversation, error)
	Create(ctx context.Context, conv *domain.Conversation) error
	SetLastMessage(ctx context.Context, conversationID string, msg *domain.Message) error
	TogglePin(ctx context.Context, conversationID, userID string) error
	ToggleArchive(ctx context.Context, conversationID, userID string) error
}

type conversationRepository struct {
	coll *mongo.Collection
}

// NewMongoConversationRepository create a ConversationRepository
func NewMongoConversationRepository(db *mongo.Database) ConversationRepository {
	return &conversationRepository{
		coll: db.Collection("conversations"),
	}
}

func (r *conversationRepository) List(ctx context.Context, userID string) ([]domain.Conversation, error) {
	filter := bson.M{"participants": userID}
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var convs []domain.Conversation
	if err := cur.All(ctx, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

func (r *conversationRepository) FindByID(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.coll.FindOne(ctx, bson.M{"_id": conversationID}).Decode(&conv)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) FindDirect(ctx context.Context, userA, userB string) (*domain.Conversation, error) {
	filter := bson.M{
		"type": domain.ConversationDirect,
		"participants": bson.M{
			"$all": []string{userA, userB},
		},
	}
	var conv domain.Conversation
	err := r.coll.FindOne(ctx, filter).Decode(&conv)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	_, err := r.coll.InsertOne(ctx, conv)
	return err
}

func (r *conversationRepository) SetLastMessage(ctx context.Context, conversationID string, msg *domain.Message) error {
	filter := bson.M{"_id": conversationID}
	update := bson.M{"$set": bson.M{"last_message": msg}}
	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}

// TogglePin flips the user's membership in pinned_by
func (r *conversationRepository) TogglePin(ctx context.Context, conversationID, userID string) error {
	return r.toggleSet(ctx, conversationID, userID, "pinned_by")
}

// ToggleArchive flips the user's membership in archived_by
func (r *conversationRepository) ToggleArchive(ctx context.Context, conversationID, userID string) error {
	return r.toggleSet(ctx, conversationID, userID, "archived_by")
}

func (r *conversationRepository) toggleSet(ctx context.Context, conversationID, userID, field string) error {
	conv, err := r.FindByID(ctx, conversationID)
	if err != nil {
		return err
	}

	op := "$addToSet"
	members := conv.PinnedBy
	if field == "archived_by" {
		members = conv.ArchivedBy
	}
	for _, m := range members {
		if m == userID {
			op = "$pull"
			break
		}
	}

	filter := bson.M{"_id": conversationID}
	update := bson.M{op: bson.M{field: userID}}
	_, err = r.coll.UpdateOne(ctx, filter, update)
	return err
}
