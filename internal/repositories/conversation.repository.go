package repositories

import (
	"context"

	"resorthub/internal/logger"
	. "resorthub/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConversationRepository interface {
	// GetOrCreate inserts with ON CONFLICT DO NOTHING and re-reads, so
	// concurrent callers for the same pair converge on one row.
	GetOrCreate(ctx context.Context, tx *gorm.DB, customerID, ownerID uuid.UUID) (*Conversation, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Conversation, error)
	ListFor(ctx context.Context, tx *gorm.DB, participant Principal) ([]*Conversation, error)

	GetOrCreateAdmin(ctx context.Context, tx *gorm.DB, adminID uuid.UUID, party Principal) (*AdminConversation, error)
	GetAdminByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*AdminConversation, error)
	ListAdminFor(ctx context.Context, tx *gorm.DB, participant Principal) ([]*AdminConversation, error)

	// IDsForParty returns the ids of both conversation kinds the party takes
	// part in, so their messages can be removed before the conversations.
	IDsForParty(ctx context.Context, tx *gorm.DB, party Principal) (direct []uuid.UUID, admin []uuid.UUID, err error)
	DeleteByIDs(ctx context.Context, tx *gorm.DB, direct []uuid.UUID, admin []uuid.UUID) error
}

type conversationRepository struct{}

func NewConversationRepository() ConversationRepository {
	return &conversationRepository{}
}

func (r *conversationRepository) GetOrCreate(
	ctx context.Context,
	tx *gorm.DB,
	customerID, ownerID uuid.UUID,
) (*Conversation, error) {
	log := logger.NewWithContext(ctx, "conversationRepository").Function("GetOrCreate")

	conversation := Conversation{CustomerID: customerID, OwnerID: ownerID}
	err := tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_id"}, {Name: "owner_id"}},
			DoNothing: true,
		}).
		Create(&conversation).Error
	if err != nil {
		return nil, log.Err(
			"failed to create conversation",
			translate(err),
			"customerID", customerID,
			"ownerID", ownerID,
		)
	}

	existing, err := gorm.G[Conversation](tx).
		Where("customer_id = ? AND owner_id = ?", customerID, ownerID).
		First(ctx)
	if err != nil {
		return nil, log.Err("failed to read conversation", translate(err))
	}
	return &existing, nil
}

func (r *conversationRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*Conversation, error) {
	conversation, err := gorm.G[Conversation](tx).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return &conversation, nil
}

func (r *conversationRepository) ListFor(
	ctx context.Context,
	tx *gorm.DB,
	participant Principal,
) ([]*Conversation, error) {
	log := logger.NewWithContext(ctx, "conversationRepository").Function("ListFor")

	query := tx.WithContext(ctx).Preload("Customer").Preload("Owner")
	switch participant.Kind {
	case PrincipalCustomer:
		query = query.Where("customer_id = ?", participant.ID)
	case PrincipalOwner:
		query = query.Where("owner_id = ?", participant.ID)
	default:
		return nil, nil
	}

	var conversations []*Conversation
	if err := query.Order("created_at DESC").Find(&conversations).Error; err != nil {
		return nil, log.Err("failed to list conversations", translate(err), "participant", participant.String())
	}
	return conversations, nil
}

func (r *conversationRepository) GetOrCreateAdmin(
	ctx context.Context,
	tx *gorm.DB,
	adminID uuid.UUID,
	party Principal,
) (*AdminConversation, error) {
	log := logger.NewWithContext(ctx, "conversationRepository").Function("GetOrCreateAdmin")

	conversation := AdminConversation{AdminID: adminID, PartyKind: party.Kind, PartyID: party.ID}
	err := tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "admin_id"},
				{Name: "party_kind"},
				{Name: "party_id"},
			},
			DoNothing: true,
		}).
		Create(&conversation).Error
	if err != nil {
		return nil, log.Err("failed to create admin conversation", translate(err), "party", party.String())
	}

	existing, err := gorm.G[AdminConversation](tx).
		Where("admin_id = ? AND party_kind = ? AND party_id = ?", adminID, party.Kind, party.ID).
		First(ctx)
	if err != nil {
		return nil, log.Err("failed to read admin conversation", translate(err))
	}
	return &existing, nil
}

func (r *conversationRepository) GetAdminByID(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*AdminConversation, error) {
	conversation, err := gorm.G[AdminConversation](tx).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return &conversation, nil
}

func (r *conversationRepository) ListAdminFor(
	ctx context.Context,
	tx *gorm.DB,
	participant Principal,
) ([]*AdminConversation, error) {
	log := logger.NewWithContext(ctx, "conversationRepository").Function("ListAdminFor")

	query := gorm.G[*AdminConversation](tx)
	var conversations []*AdminConversation
	var err error
	if participant.IsAdmin() {
		conversations, err = query.Where("admin_id = ?", participant.ID).Order("created_at DESC").Find(ctx)
	} else {
		conversations, err = query.
			Where("party_kind = ? AND party_id = ?", participant.Kind, participant.ID).
			Order("created_at DESC").
			Find(ctx)
	}
	if err != nil {
		return nil, log.Err("failed to list admin conversations", translate(err), "participant", participant.String())
	}
	return conversations, nil
}

func (r *conversationRepository) IDsForParty(
	ctx context.Context,
	tx *gorm.DB,
	party Principal,
) ([]uuid.UUID, []uuid.UUID, error) {
	log := logger.NewWithContext(ctx, "conversationRepository").Function("IDsForParty")

	column := "customer_id"
	if party.IsOwner() {
		column = "owner_id"
	}

	var direct []uuid.UUID
	err := tx.WithContext(ctx).Model(&Conversation{}).Where(column+" = ?", party.ID).Pluck("id", &direct).Error
	if err != nil {
		return nil, nil, log.Err("failed to collect conversations", translate(err), "party", party.String())
	}

	var admin []uuid.UUID
	err = tx.WithContext(ctx).
		Model(&AdminConversation{}).
		Where("party_kind = ? AND party_id = ?", party.Kind, party.ID).
		Pluck("id", &admin).Error
	if err != nil {
		return nil, nil, log.Err("failed to collect admin conversations", translate(err), "party", party.String())
	}

	return direct, admin, nil
}

func (r *conversationRepository) DeleteByIDs(
	ctx context.Context,
	tx *gorm.DB,
	direct []uuid.UUID,
	admin []uuid.UUID,
) error {
	log := logger.NewWithContext(ctx, "conversationRepository").Function("DeleteByIDs")

	if len(direct) > 0 {
		if _, err := gorm.G[Conversation](tx).Where("id IN ?", direct).Delete(ctx); err != nil {
			return log.Err("failed to delete conversations", translate(err))
		}
	}
	if len(admin) > 0 {
		if _, err := gorm.G[AdminConversation](tx).Where("id IN ?", admin).Delete(ctx); err != nil {
			return log.Err("failed to delete admin conversations", translate(err))
		}
	}
	return nil
}
