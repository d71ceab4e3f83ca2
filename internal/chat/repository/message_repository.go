package repository

import (
	"context"
	"fmt"

	"chat_sync_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository definition the authoritative message log
type MessageRepository interface {
	// ListByConversation returns the full history in conversation order
	ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error)
	FindByID(ctx context.Context, messageID string) (*domain.Message, error)
	Insert(ctx context.Context, msg *domain.Message) error
	// UpdateContent replaces the content and flags the message edited
	UpdateContent(ctx context.Context, messageID, content string) error
	// MarkDeleted tombstones the message for everyone, one-way
	MarkDeleted(ctx context.Context, messageID string) error
	// MarkDeletedFor hides the message for a single user
	MarkDeletedFor(ctx context.Context, messageID, userID string) error
	SetStarred(ctx context.Context, messageID, userID string, starred bool) error
	// MarkRead adds the user to read_by of every message in the
	// conversation they did not send. Replay safe.
	MarkRead(ctx context.Context, conversationID, userID string) error
	CountUnread(ctx context.Context, conversationID, userID string) (int, error)
}

type messageRepository struct {
	coll *mongo.Collection
}

// NewMongoMessageRepository create a MessageRepository
func NewMongoMessageRepository(db *mongo.Database) MessageRepository {
	return &messageRepository{
		coll: db.Collection("messages"),
	}
}

func (r *messageRepository) ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error) {
	filter := bson.M{"conversation_id": conversationID}
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var msgs []domain.Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *messageRepository) FindByID(ctx context.Context, messageID string) (*domain.Message, error) {
	var msg domain.Message
	err := r.coll.FindOne(ctx, bson.M{"_id": messageID}).Decode(&msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	_, err := r.coll.InsertOne(ctx, msg)
	return err
}

func (r *messageRepository) UpdateContent(ctx context.Context, messageID, content string) error {
	filter := bson.M{"_id": messageID}
	update := bson.M{"$set": bson.M{"content": content, "is_edited": true}}
	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}

func (r *messageRepository) MarkDeleted(ctx context.Context, messageID string) error {
	filter := bson.M{"_id": messageID}
	update := bson.M{"$set": bson.M{
		"is_deleted":  true,
		"content":     "",
		"attachments": nil,
	}}
	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}

func (r *messageRepository) MarkDeletedFor(ctx context.Context, messageID, userID string) error {
	filter := bson.M{"_id": messageID}
	update := bson.M{"$addToSet": bson.M{"deleted_for": userID}}
	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}

func (r *messageRepository) SetStarred(ctx context.Context, messageID, userID string, starred bool) error {
	op := "$pull"
	if starred {
		op = "$addToSet"
	}
	filter := bson.M{"_id": messageID}
	update := bson.M{op: bson.M{"starred_by": userID}}
	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}

func (r *messageRepository) MarkRead(ctx context.Context, conversationID, userID string) error {
	filter := bson.M{
		"conversation_id": conversationID,
		"sender_id":       bson.M{"$ne": userID},
		"is_deleted":      false,
	}
	update := bson.M{"$addToSet": bson.M{"read_by": userID}}
	_, err := r.coll.UpdateMany(ctx, filter, update)
	return err
}

func (r *messageRepository) CountUnread(ctx context.Context, conversationID, userID string) (int, error) {
	filter := bson.M{
		"conversation_id": conversationID,
		"sender_id":       bson.M{"$ne": userID},
		"read_by":         bson.M{"$ne": userID},
		"is_deleted":      false,
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count unread error: %w", err)
	}
	return int(n), nil
}
