package messagingController

import (
	"context"
	"sort"
	"time"

	"resorthub/internal/apperror"
	"resorthub/internal/database"
	"resorthub/internal/events"
	"resorthub/internal/logger"
	. "resorthub/internal/models"
	"resorthub/internal/repositories"
	"resorthub/internal/services"
	"resorthub/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ThreadDirect = "direct"
	ThreadAdmin  = "admin"
)

type MessagingControllerInterface interface {
	GetOrCreateConversation(ctx context.Context, actor Principal, counterpartID uuid.UUID) (*ConversationView, error)
	GetOrCreateAdminConversation(ctx context.Context, actor Principal, party *Principal) (*ConversationView, error)
	PostMessage(ctx context.Context, actor Principal, thread repositories.Thread, text string) (*MessageView, error)
	ListMessages(ctx context.Context, actor Principal, thread repositories.Thread) ([]MessageView, error)
	RecentConversations(ctx context.Context, actor Principal) ([]ConversationSummary, error)
}

type ConversationView struct {
	ID          uuid.UUID `json:"id"`
	Thread      string    `json:"thread"`
	Counterpart Principal `json:"counterpart"`
	CreatedAt   time.Time `json:"createdAt"`
}

type MessageView struct {
	ID         uuid.UUID     `json:"id"`
	SenderKind PrincipalKind `json:"senderKind"`
	SenderID   uuid.UUID     `json:"senderId"`
	Text       string        `json:"text"`
	CreatedAt  time.Time     `json:"createdAt"`
	Mine       bool          `json:"mine"`
}

type ConversationSummary struct {
	ID            uuid.UUID  `json:"id"`
	Thread        string     `json:"thread"`
	Partner       Principal  `json:"partner"`
	PartnerName   string     `json:"partnerName"`
	PartnerAvatar string     `json:"partnerAvatar,omitempty"`
	LastMessage   string     `json:"lastMessage"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`
	Unread        bool       `json:"unread"`

	activity time.Time
}

type MessagingController struct {
	conversationRepo repositories.ConversationRepository
	messageRepo      repositories.MessageRepository
	customerRepo     repositories.CustomerRepository
	ownerRepo        repositories.OwnerRepository
	adminRepo        repositories.AdminRepository
	publisher        events.Publisher
	metrics          *services.Metrics
	db               *gorm.DB
	log              logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	db database.DB,
) MessagingControllerInterface {
	return &MessagingController{
		conversationRepo: repos.Conversation,
		messageRepo:      repos.Message,
		customerRepo:     repos.Customer,
		ownerRepo:        repos.Owner,
		adminRepo:        repos.Admin,
		publisher:        services.Events,
		metrics:          services.Metrics,
		db:               db.SQL,
		log:              logger.New("messagingController"),
	}
}

// GetOrCreateConversation opens the customer/owner thread between actor and
// counterpartID. Calling it again for the same pair returns the same row.
func (c *MessagingController) GetOrCreateConversation(
	ctx context.Context,
	actor Principal,
	counterpartID uuid.UUID,
) (*ConversationView, error) {
	var customerID, ownerID uuid.UUID
	switch actor.Kind {
	case PrincipalCustomer:
		if _, err := c.ownerRepo.GetByID(ctx, c.db, counterpartID); err != nil {
			return nil, err
		}
		customerID, ownerID = actor.ID, counterpartID
	case PrincipalOwner:
		if _, err := c.customerRepo.GetByID(ctx, c.db, counterpartID); err != nil {
			return nil, err
		}
		customerID, ownerID = counterpartID, actor.ID
	default:
		return nil, apperror.ErrNotAuthorized
	}

	conversation, err := c.conversationRepo.GetOrCreate(ctx, c.db, customerID, ownerID)
	if err != nil {
		return nil, apperror.Store(err)
	}

	return &ConversationView{
		ID:          conversation.ID,
		Thread:      ThreadDirect,
		Counterpart: conversation.Counterpart(actor),
		CreatedAt:   conversation.CreatedAt,
	}, nil
}

// GetOrCreateAdminConversation opens the thread between the support admin and
// a customer or owner. Admins name the party; everyone else is the party.
func (c *MessagingController) GetOrCreateAdminConversation(
	ctx context.Context,
	actor Principal,
	party *Principal,
) (*ConversationView, error) {
	var adminID uuid.UUID
	var target Principal

	if actor.IsAdmin() {
		if party == nil || party.IsAdmin() || !party.Kind.Valid() {
			return nil, apperror.ErrMissingField.WithMessage("A customer or owner is required")
		}
		if err := c.partyExists(ctx, *party); err != nil {
			return nil, err
		}
		adminID, target = actor.ID, *party
	} else {
		admin, err := c.adminRepo.First(ctx, c.db)
		if err != nil {
			return nil, err
		}
		adminID, target = admin.ID, actor
	}

	conversation, err := c.conversationRepo.GetOrCreateAdmin(ctx, c.db, adminID, target)
	if err != nil {
		return nil, apperror.Store(err)
	}

	return &ConversationView{
		ID:          conversation.ID,
		Thread:      ThreadAdmin,
		Counterpart: conversation.Counterpart(actor),
		CreatedAt:   conversation.CreatedAt,
	}, nil
}

func (c *MessagingController) partyExists(ctx context.Context, party Principal) error {
	var err error
	switch party.Kind {
	case PrincipalCustomer:
		_, err = c.customerRepo.GetByID(ctx, c.db, party.ID)
	case PrincipalOwner:
		_, err = c.ownerRepo.GetByID(ctx, c.db, party.ID)
	}
	return err
}

func (c *MessagingController) PostMessage(
	ctx context.Context,
	actor Principal,
	thread repositories.Thread,
	text string,
) (*MessageView, error) {
	log := c.log.TraceFromContext(ctx).Function("PostMessage")

	recipient, err := c.authorize(ctx, actor, thread)
	if err != nil {
		return nil, err
	}

	text = utils.NormalizeText(text)
	if text == "" {
		return nil, apperror.ErrEmptyMessage
	}

	message := &Message{
		ConversationID:      thread.ConversationID,
		AdminConversationID: thread.AdminConversationID,
		SenderKind:          actor.Kind,
		SenderID:            actor.ID,
		Text:                text,
	}
	if err := c.messageRepo.Create(ctx, c.db, message); err != nil {
		return nil, apperror.Store(err)
	}

	threadKind := ThreadDirect
	if thread.AdminConversationID != nil {
		threadKind = ThreadAdmin
	}
	c.metrics.MessagePosted(threadKind)

	view := messageView(message, actor)
	if c.publisher != nil {
		err := c.publisher.Publish(events.MESSAGE_CHANNEL, events.Event{
			Type:      events.MESSAGE_POSTED,
			Recipient: &recipient,
			Data: map[string]any{
				"thread":         threadKind,
				"conversationId": threadID(thread),
				"messageId":      message.ID,
				"sender":         actor,
				"text":           message.Text,
				"createdAt":      message.CreatedAt,
			},
		})
		if err != nil {
			log.Warn("failed to publish message", "messageID", message.ID, "error", err)
		}
	}

	return &view, nil
}

func (c *MessagingController) ListMessages(
	ctx context.Context,
	actor Principal,
	thread repositories.Thread,
) ([]MessageView, error) {
	if _, err := c.authorize(ctx, actor, thread); err != nil {
		return nil, err
	}

	messages, err := c.messageRepo.List(ctx, c.db, thread)
	if err != nil {
		return nil, apperror.Store(err)
	}

	views := make([]MessageView, 0, len(messages))
	for _, message := range messages {
		views = append(views, messageView(message, actor))
	}
	return views, nil
}

// authorize loads the thread and returns the other participant. Unknown
// threads are NotFound, threads the actor is not part of NotAuthorized.
func (c *MessagingController) authorize(
	ctx context.Context,
	actor Principal,
	thread repositories.Thread,
) (Principal, error) {
	switch {
	case thread.AdminConversationID != nil:
		conversation, err := c.conversationRepo.GetAdminByID(ctx, c.db, *thread.AdminConversationID)
		if err != nil {
			return Principal{}, err
		}
		if !conversation.HasParticipant(actor) {
			return Principal{}, apperror.ErrNotAuthorized
		}
		return conversation.Counterpart(actor), nil
	case thread.ConversationID != nil:
		conversation, err := c.conversationRepo.GetByID(ctx, c.db, *thread.ConversationID)
		if err != nil {
			return Principal{}, err
		}
		if !conversation.HasParticipant(actor) {
			return Principal{}, apperror.ErrNotAuthorized
		}
		return conversation.Counterpart(actor), nil
	}
	return Principal{}, apperror.ErrNotFound
}

// RecentConversations lists both thread kinds the actor takes part in, most
// recent activity first. A thread is unread when the other side spoke last.
func (c *MessagingController) RecentConversations(
	ctx context.Context,
	actor Principal,
) ([]ConversationSummary, error) {
	var summaries []ConversationSummary

	if !actor.IsAdmin() {
		direct, err := c.conversationRepo.ListFor(ctx, c.db, actor)
		if err != nil {
			return nil, apperror.Store(err)
		}

		ids := make([]uuid.UUID, 0, len(direct))
		for _, conversation := range direct {
			ids = append(ids, conversation.ID)
		}
		latest, err := c.messageRepo.LatestByThread(ctx, c.db, ids, false)
		if err != nil {
			return nil, apperror.Store(err)
		}

		for _, conversation := range direct {
			summary := ConversationSummary{
				ID:       conversation.ID,
				Thread:   ThreadDirect,
				Partner:  conversation.Counterpart(actor),
				activity: conversation.CreatedAt,
			}
			if actor.IsCustomer() && conversation.Owner != nil {
				summary.PartnerName = conversation.Owner.ResortDisplayName()
				summary.PartnerAvatar = utils.FirstNonEmpty(
					conversation.Owner.ResortProfileImage,
					conversation.Owner.Avatar,
				)
			} else if actor.IsOwner() && conversation.Customer != nil {
				summary.PartnerName = conversation.Customer.DisplayName()
				summary.PartnerAvatar = conversation.Customer.Avatar
			} else {
				c.describePartner(ctx, &summary)
			}
			applyLatest(&summary, latest[conversation.ID], actor)
			summaries = append(summaries, summary)
		}
	}

	admin, err := c.conversationRepo.ListAdminFor(ctx, c.db, actor)
	if err != nil {
		return nil, apperror.Store(err)
	}
	ids := make([]uuid.UUID, 0, len(admin))
	for _, conversation := range admin {
		ids = append(ids, conversation.ID)
	}
	latest, err := c.messageRepo.LatestByThread(ctx, c.db, ids, true)
	if err != nil {
		return nil, apperror.Store(err)
	}
	for _, conversation := range admin {
		summary := ConversationSummary{
			ID:       conversation.ID,
			Thread:   ThreadAdmin,
			Partner:  conversation.Counterpart(actor),
			activity: conversation.CreatedAt,
		}
		c.describePartner(ctx, &summary)
		applyLatest(&summary, latest[conversation.ID], actor)
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].activity.After(summaries[j].activity)
	})
	if summaries == nil {
		summaries = []ConversationSummary{}
	}
	return summaries, nil
}

func (c *MessagingController) describePartner(ctx context.Context, summary *ConversationSummary) {
	switch summary.Partner.Kind {
	case PrincipalAdmin:
		summary.PartnerName = "Admin"
		if admin, err := c.adminRepo.GetByID(ctx, c.db, summary.Partner.ID); err == nil {
			summary.PartnerName = admin.DisplayName()
		}
	case PrincipalOwner:
		if owner, err := c.ownerRepo.GetByID(ctx, c.db, summary.Partner.ID); err == nil {
			summary.PartnerName = owner.ResortDisplayName()
			summary.PartnerAvatar = utils.FirstNonEmpty(owner.ResortProfileImage, owner.Avatar)
		}
	case PrincipalCustomer:
		if customer, err := c.customerRepo.GetByID(ctx, c.db, summary.Partner.ID); err == nil {
			summary.PartnerName = customer.DisplayName()
			summary.PartnerAvatar = customer.Avatar
		}
	}
}

func applyLatest(summary *ConversationSummary, latest *Message, actor Principal) {
	if latest == nil {
		return
	}
	at := latest.CreatedAt
	summary.LastMessage = latest.Text
	summary.LastMessageAt = &at
	summary.Unread = latest.Sender() != actor
	if at.After(summary.activity) {
		summary.activity = at
	}
}

func messageView(message *Message, actor Principal) MessageView {
	return MessageView{
		ID:         message.ID,
		SenderKind: message.SenderKind,
		SenderID:   message.SenderID,
		Text:       message.Text,
		CreatedAt:  message.CreatedAt,
		Mine:       message.Sender() == actor,
	}
}

func threadID(thread repositories.Thread) uuid.UUID {
	if thread.AdminConversationID != nil {
		return *thread.AdminConversationID
	}
	if thread.ConversationID != nil {
		return *thread.ConversationID
	}
	return uuid.Nil
}
