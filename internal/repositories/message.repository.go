package repositories

import (
	"context"

	"resorthub/internal/logger"
	. "resorthub/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Thread selects one of the two conversation kinds a message can belong to.
type Thread struct {
	ConversationID      *uuid.UUID
	AdminConversationID *uuid.UUID
}

func DirectThread(id uuid.UUID) Thread { return Thread{ConversationID: &id} }
func AdminThread(id uuid.UUID) Thread  { return Thread{AdminConversationID: &id} }

func (t Thread) column() (string, uuid.UUID) {
	if t.AdminConversationID != nil {
		return "admin_conversation_id", *t.AdminConversationID
	}
	if t.ConversationID != nil {
		return "conversation_id", *t.ConversationID
	}
	return "conversation_id", uuid.Nil
}

type MessageRepository interface {
	Create(ctx context.Context, tx *gorm.DB, message *Message) error
	List(ctx context.Context, tx *gorm.DB, thread Thread) ([]*Message, error)
	// LatestByThread returns the newest message of each given thread keyed by thread id.
	LatestByThread(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, admin bool) (map[uuid.UUID]*Message, error)
	DeleteByThreads(ctx context.Context, tx *gorm.DB, direct []uuid.UUID, admin []uuid.UUID) error
}

type messageRepository struct{}

func NewMessageRepository() MessageRepository {
	return &messageRepository{}
}

func (r *messageRepository) Create(ctx context.Context, tx *gorm.DB, message *Message) error {
	log := logger.NewWithContext(ctx, "messageRepository").Function("Create")

	if err := gorm.G[Message](tx).Create(ctx, message); err != nil {
		return log.Err("failed to create message", translate(err), "sender", message.Sender().String())
	}
	return nil
}

// List returns the whole thread in (created_at, id) order.
func (r *messageRepository) List(ctx context.Context, tx *gorm.DB, thread Thread) ([]*Message, error) {
	log := logger.NewWithContext(ctx, "messageRepository").Function("List")

	column, id := thread.column()
	messages, err := gorm.G[*Message](tx).
		Where(column+" = ?", id).
		Order("created_at ASC, id ASC").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list messages", translate(err), "thread", id)
	}
	return messages, nil
}

func (r *messageRepository) LatestByThread(
	ctx context.Context,
	tx *gorm.DB,
	ids []uuid.UUID,
	admin bool,
) (map[uuid.UUID]*Message, error) {
	log := logger.NewWithContext(ctx, "messageRepository").Function("LatestByThread")

	latest := make(map[uuid.UUID]*Message, len(ids))
	if len(ids) == 0 {
		return latest, nil
	}

	column := "conversation_id"
	if admin {
		column = "admin_conversation_id"
	}

	var messages []*Message
	err := tx.WithContext(ctx).
		Raw(
			"SELECT DISTINCT ON ("+column+") * FROM messages WHERE "+column+" IN ? ORDER BY "+column+", created_at DESC, id DESC",
			ids,
		).
		Scan(&messages).Error
	if err != nil {
		return nil, log.Err("failed to load latest messages", translate(err))
	}

	for _, message := range messages {
		key := message.ConversationID
		if admin {
			key = message.AdminConversationID
		}
		if key != nil {
			latest[*key] = message
		}
	}
	return latest, nil
}

func (r *messageRepository) DeleteByThreads(
	ctx context.Context,
	tx *gorm.DB,
	direct []uuid.UUID,
	admin []uuid.UUID,
) error {
	log := logger.NewWithContext(ctx, "messageRepository").Function("DeleteByThreads")

	if len(direct) > 0 {
		if _, err := gorm.G[Message](tx).Where("conversation_id IN ?", direct).Delete(ctx); err != nil {
			return log.Err("failed to delete messages", translate(err))
		}
	}
	if len(admin) > 0 {
		if _, err := gorm.G[Message](tx).Where("admin_conversation_id IN ?", admin).Delete(ctx); err != nil {
			return log.Err("failed to delete admin messages", translate(err))
		}
	}
	return nil
}
