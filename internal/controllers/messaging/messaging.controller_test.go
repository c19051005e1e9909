package messagingController

import (
	"context"
	"testing"

	"resorthub/internal/apperror"
	"resorthub/internal/events"
	"resorthub/internal/logger"
	. "resorthub/internal/models"
	"resorthub/internal/repositories"
	"resorthub/internal/repositories/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type messagingFixture struct {
	repos     repositories.Repository
	publisher *memory.Publisher
	ctrl      *MessagingController
	customer  Principal
	owner     Principal
	admin     Principal
}

func newMessagingFixture(t *testing.T) *messagingFixture {
	t.Helper()

	store := memory.NewStore()
	repos := store.Repository()
	publisher := &memory.Publisher{}
	ctx := context.Background()

	customer := &Customer{Username: "jane", Name: "Jane"}
	require.NoError(t, repos.Customer.Create(ctx, nil, customer))
	owner := &Owner{Username: "sunny", ResortName: "Sunny Resort"}
	require.NoError(t, repos.Owner.Create(ctx, nil, owner))
	admin := &Admin{Username: "admin", Name: "Support"}
	require.NoError(t, repos.Admin.Create(ctx, nil, admin))

	return &messagingFixture{
		repos:     repos,
		publisher: publisher,
		ctrl: &MessagingController{
			conversationRepo: repos.Conversation,
			messageRepo:      repos.Message,
			customerRepo:     repos.Customer,
			ownerRepo:        repos.Owner,
			adminRepo:        repos.Admin,
			publisher:        publisher,
			log:              logger.New("messagingController"),
		},
		customer: customer.Principal(),
		owner:    owner.Principal(),
		admin:    admin.Principal(),
	}
}

func TestGetOrCreateConversation_IsIdempotent(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	first, err := f.ctrl.GetOrCreateConversation(ctx, f.customer, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, f.owner, first.Counterpart)

	second, err := f.ctrl.GetOrCreateConversation(ctx, f.customer, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	fromOwner, err := f.ctrl.GetOrCreateConversation(ctx, f.owner, f.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, fromOwner.ID)
	assert.Equal(t, f.customer, fromOwner.Counterpart)
}

func TestGetOrCreateConversation_Rejects(t *testing.T) {
	f := newMessagingFixture(t)

	_, err := f.ctrl.GetOrCreateConversation(context.Background(), f.customer, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.ctrl.GetOrCreateConversation(context.Background(), f.admin, f.owner.ID)
	assert.ErrorIs(t, err, apperror.ErrNotAuthorized)
}

func TestGetOrCreateAdminConversation(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	fromOwner, err := f.ctrl.GetOrCreateAdminConversation(ctx, f.owner, nil)
	require.NoError(t, err)
	assert.Equal(t, f.admin, fromOwner.Counterpart)

	fromAdmin, err := f.ctrl.GetOrCreateAdminConversation(ctx, f.admin, &f.owner)
	require.NoError(t, err)
	assert.Equal(t, fromOwner.ID, fromAdmin.ID)
	assert.Equal(t, f.owner, fromAdmin.Counterpart)

	_, err = f.ctrl.GetOrCreateAdminConversation(ctx, f.admin, nil)
	assert.ErrorIs(t, err, apperror.ErrMissingField)

	stranger := NewPrincipal(PrincipalCustomer, uuid.New())
	_, err = f.ctrl.GetOrCreateAdminConversation(ctx, f.admin, &stranger)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetOrCreateAdminConversation_NoAdmin(t *testing.T) {
	store := memory.NewStore()
	repos := store.Repository()
	customer := &Customer{Username: "jane"}
	require.NoError(t, repos.Customer.Create(context.Background(), nil, customer))

	ctrl := &MessagingController{
		conversationRepo: repos.Conversation,
		adminRepo:        repos.Admin,
		log:              logger.New("messagingController"),
	}

	_, err := ctrl.GetOrCreateAdminConversation(context.Background(), customer.Principal(), nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestPostMessage(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	conversation, err := f.ctrl.GetOrCreateConversation(ctx, f.customer, f.owner.ID)
	require.NoError(t, err)
	thread := repositories.DirectThread(conversation.ID)

	tests := []struct {
		name    string
		actor   Principal
		text    string
		wantErr *apperror.Error
	}{
		{name: "customer posts", actor: f.customer, text: "  Is the pool open?  "},
		{name: "owner replies", actor: f.owner, text: "Yes, until 9pm."},
		{name: "whitespace only", actor: f.customer, text: " \n\t ", wantErr: apperror.ErrEmptyMessage},
		{
			name:    "outsider",
			actor:   NewPrincipal(PrincipalCustomer, uuid.New()),
			text:    "hello",
			wantErr: apperror.ErrNotAuthorized,
		},
		{name: "admin is not a participant", actor: f.admin, text: "hi", wantErr: apperror.ErrNotAuthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := f.ctrl.PostMessage(ctx, tt.actor, thread, tt.text)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, view.ID)
			assert.True(t, view.Mine)
		})
	}

	messages, err := f.ctrl.ListMessages(ctx, f.owner, thread)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "Is the pool open?", messages[0].Text)
	assert.False(t, messages[0].Mine)
	assert.True(t, messages[1].Mine)
	assert.False(t, messages[1].CreatedAt.Before(messages[0].CreatedAt))

	posted := f.publisher.OfType(events.MESSAGE_POSTED)
	require.Len(t, posted, 2)
	assert.Equal(t, f.owner, *posted[0].Recipient)
	assert.Equal(t, f.customer, *posted[1].Recipient)
}

func TestListMessages_Authorization(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	_, err := f.ctrl.ListMessages(ctx, f.customer, repositories.DirectThread(uuid.New()))
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	adminThread, err := f.ctrl.GetOrCreateAdminConversation(ctx, f.customer, nil)
	require.NoError(t, err)

	_, err = f.ctrl.ListMessages(ctx, f.owner, repositories.AdminThread(adminThread.ID))
	assert.ErrorIs(t, err, apperror.ErrNotAuthorized)

	_, err = f.ctrl.PostMessage(ctx, f.admin, repositories.AdminThread(adminThread.ID), "How can we help?")
	require.NoError(t, err)

	messages, err := f.ctrl.ListMessages(ctx, f.customer, repositories.AdminThread(adminThread.ID))
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, PrincipalAdmin, messages[0].SenderKind)
}

func TestRecentConversations(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	direct, err := f.ctrl.GetOrCreateConversation(ctx, f.customer, f.owner.ID)
	require.NoError(t, err)
	support, err := f.ctrl.GetOrCreateAdminConversation(ctx, f.customer, nil)
	require.NoError(t, err)

	_, err = f.ctrl.PostMessage(ctx, f.customer, repositories.AdminThread(support.ID), "Refund?")
	require.NoError(t, err)
	_, err = f.ctrl.PostMessage(ctx, f.owner, repositories.DirectThread(direct.ID), "Welcome!")
	require.NoError(t, err)

	summaries, err := f.ctrl.RecentConversations(ctx, f.customer)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, direct.ID, summaries[0].ID)
	assert.Equal(t, "Sunny Resort", summaries[0].PartnerName)
	assert.Equal(t, "Welcome!", summaries[0].LastMessage)
	assert.True(t, summaries[0].Unread)

	assert.Equal(t, support.ID, summaries[1].ID)
	assert.Equal(t, ThreadAdmin, summaries[1].Thread)
	assert.Equal(t, "Support", summaries[1].PartnerName)
	assert.False(t, summaries[1].Unread)

	adminView, err := f.ctrl.RecentConversations(ctx, f.admin)
	require.NoError(t, err)
	require.Len(t, adminView, 1)
	assert.Equal(t, "Jane", adminView[0].PartnerName)
	assert.True(t, adminView[0].Unread)
}
