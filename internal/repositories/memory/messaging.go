package memory

import (
	"context"

	"resorthub/internal/apperror"
	. "resorthub/internal/models"
	"resorthub/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type conversationRepository struct{ s *Store }

func (r *conversationRepository) GetOrCreate(
	_ context.Context,
	_ *gorm.DB,
	customerID, ownerID uuid.UUID,
) (*Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, conversation := range r.s.conversations {
		if conversation.CustomerID == customerID && conversation.OwnerID == ownerID {
			return &conversation, nil
		}
	}
	conversation := Conversation{CustomerID: customerID, OwnerID: ownerID}
	if err := r.s.stamp(&conversation.BaseUUIDModel); err != nil {
		return nil, apperror.Store(err)
	}
	r.s.conversations[conversation.ID] = conversation
	return &conversation, nil
}

func (r *conversationRepository) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	conversation, ok := r.s.conversations[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	r.attach(&conversation)
	return &conversation, nil
}

func (r *conversationRepository) ListFor(
	_ context.Context,
	_ *gorm.DB,
	participant Principal,
) ([]*Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*Conversation
	for _, conversation := range r.s.conversations {
		if !conversation.HasParticipant(participant) {
			continue
		}
		r.attach(&conversation)
		out = append(out, &conversation)
	}
	sortNewest(r.s, out, func(c *Conversation) uuid.UUID { return c.ID })
	return out, nil
}

func (r *conversationRepository) attach(conversation *Conversation) {
	if customer, ok := r.s.customers[conversation.CustomerID]; ok {
		conversation.Customer = &customer
	}
	if owner, ok := r.s.owners[conversation.OwnerID]; ok {
		conversation.Owner = &owner
	}
}

func (r *conversationRepository) GetOrCreateAdmin(
	_ context.Context,
	_ *gorm.DB,
	adminID uuid.UUID,
	party Principal,
) (*AdminConversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, conversation := range r.s.adminConversations {
		if conversation.AdminID == adminID && conversation.Party() == party {
			return &conversation, nil
		}
	}
	conversation := AdminConversation{AdminID: adminID, PartyKind: party.Kind, PartyID: party.ID}
	if err := r.s.stamp(&conversation.BaseUUIDModel); err != nil {
		return nil, apperror.Store(err)
	}
	r.s.adminConversations[conversation.ID] = conversation
	return &conversation, nil
}

func (r *conversationRepository) GetAdminByID(
	_ context.Context,
	_ *gorm.DB,
	id uuid.UUID,
) (*AdminConversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	conversation, ok := r.s.adminConversations[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return &conversation, nil
}

func (r *conversationRepository) ListAdminFor(
	_ context.Context,
	_ *gorm.DB,
	participant Principal,
) ([]*AdminConversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*AdminConversation
	for _, conversation := range r.s.adminConversations {
		if conversation.HasParticipant(participant) {
			out = append(out, &conversation)
		}
	}
	sortNewest(r.s, out, func(c *AdminConversation) uuid.UUID { return c.ID })
	return out, nil
}

func (r *conversationRepository) IDsForParty(
	_ context.Context,
	_ *gorm.DB,
	party Principal,
) ([]uuid.UUID, []uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var direct, admin []uuid.UUID
	for id, conversation := range r.s.conversations {
		if conversation.HasParticipant(party) {
			direct = append(direct, id)
		}
	}
	for id, conversation := range r.s.adminConversations {
		if conversation.Party() == party {
			admin = append(admin, id)
		}
	}
	return direct, admin, nil
}

func (r *conversationRepository) DeleteByIDs(
	_ context.Context,
	_ *gorm.DB,
	direct []uuid.UUID,
	admin []uuid.UUID,
) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, id := range direct {
		delete(r.s.conversations, id)
	}
	for _, id := range admin {
		delete(r.s.adminConversations, id)
	}
	return nil
}

type messageRepository struct{ s *Store }

func (r *messageRepository) Create(_ context.Context, _ *gorm.DB, message *Message) error {
	if err := message.Validate(); err != nil {
		return apperror.ErrInvalidInput.WithMessage(err.Error())
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.stamp(&message.BaseUUIDModel); err != nil {
		return apperror.Store(err)
	}
	r.s.messages = append(r.s.messages, *message)
	return nil
}

func (r *messageRepository) List(_ context.Context, _ *gorm.DB, thread repositories.Thread) ([]*Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*Message
	for _, message := range r.s.messages {
		if inThread(message, thread) {
			out = append(out, &message)
		}
	}
	return out, nil
}

func (r *messageRepository) LatestByThread(
	_ context.Context,
	_ *gorm.DB,
	ids []uuid.UUID,
	admin bool,
) (map[uuid.UUID]*Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	wanted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	latest := make(map[uuid.UUID]*Message)
	for _, message := range r.s.messages {
		threadID := message.ConversationID
		if admin {
			threadID = message.AdminConversationID
		}
		if threadID == nil || !wanted[*threadID] {
			continue
		}
		latest[*threadID] = &message
	}
	return latest, nil
}

func (r *messageRepository) DeleteByThreads(
	_ context.Context,
	_ *gorm.DB,
	direct []uuid.UUID,
	admin []uuid.UUID,
) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	drop := make(map[uuid.UUID]bool, len(direct)+len(admin))
	for _, id := range direct {
		drop[id] = true
	}
	for _, id := range admin {
		drop[id] = true
	}

	kept := r.s.messages[:0]
	for _, message := range r.s.messages {
		if message.ConversationID != nil && drop[*message.ConversationID] {
			continue
		}
		if message.AdminConversationID != nil && drop[*message.AdminConversationID] {
			continue
		}
		kept = append(kept, message)
	}
	r.s.messages = kept
	return nil
}

func inThread(message Message, thread repositories.Thread) bool {
	if thread.AdminConversationID != nil {
		return message.AdminConversationID != nil && *message.AdminConversationID == *thread.AdminConversationID
	}
	if thread.ConversationID != nil {
		return message.ConversationID != nil && *message.ConversationID == *thread.ConversationID
	}
	return false
}

type notificationRepository struct{ s *Store }

func (r *notificationRepository) Create(_ context.Context, _ *gorm.DB, notification *Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.FailNotifications {
		return apperror.Store(gorm.ErrInvalidDB)
	}
	if err := r.s.stamp(&notification.BaseUUIDModel); err != nil {
		return apperror.Store(err)
	}
	r.s.notifications = append(r.s.notifications, *notification)
	return nil
}

func (r *notificationRepository) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, notification := range r.s.notifications {
		if notification.ID == id {
			return &notification, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (r *notificationRepository) ListFor(
	_ context.Context,
	_ *gorm.DB,
	reader Principal,
	limit int,
) ([]*Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*Notification
	for i := len(r.s.notifications) - 1; i >= 0; i-- {
		notification := r.s.notifications[i]
		if !notification.VisibleTo(reader) {
			continue
		}
		out = append(out, &notification)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *notificationRepository) CountUnread(_ context.Context, _ *gorm.DB, reader Principal) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var count int64
	for _, notification := range r.s.notifications {
		if !notification.IsRead && notification.VisibleTo(reader) {
			count++
		}
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.notifications {
		if r.s.notifications[i].ID == id {
			r.s.notifications[i].IsRead = true
			return nil
		}
	}
	return apperror.ErrNotFound
}

func (r *notificationRepository) MarkAllRead(_ context.Context, _ *gorm.DB) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var rows int64
	for i := range r.s.notifications {
		if !r.s.notifications[i].IsRead {
			r.s.notifications[i].IsRead = true
			rows++
		}
	}
	return rows, nil
}

func (r *notificationRepository) DeleteForParty(_ context.Context, _ *gorm.DB, party Principal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	kept := r.s.notifications[:0]
	for _, notification := range r.s.notifications {
		if party.Kind != PrincipalAdmin && notification.VisibleTo(party) {
			continue
		}
		kept = append(kept, notification)
	}
	r.s.notifications = kept
	return nil
}
