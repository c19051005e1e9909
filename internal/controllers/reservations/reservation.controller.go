package reservationController

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"resorthub/config"
	"resorthub/internal/apperror"
	"resorthub/internal/clock"
	"resorthub/internal/database"
	"resorthub/internal/events"
	"resorthub/internal/logger"
	. "resorthub/internal/models"
	"resorthub/internal/repositories"
	"resorthub/internal/services"
	"resorthub/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActionConfirm = "confirm"
	ActionCancel  = "cancel"
)

type ReservationControllerInterface interface {
	Create(ctx context.Context, customer Principal, req CreateReservationRequest) (*ReservationCreated, error)
	List(ctx context.Context, actor Principal) ([]ReservationView, error)
	Pending(ctx context.Context, actor Principal) ([]ReservationView, error)
	Detail(ctx context.Context, actor Principal, id uuid.UUID) (*ReservationDetail, error)
	Act(ctx context.Context, actor Principal, id uuid.UUID, action string) (*ReservationView, error)
	Confirm(ctx context.Context, owner Principal, id uuid.UUID) (*ReservationView, error)
	Cancel(ctx context.Context, actor Principal, id uuid.UUID) (*ReservationView, error)
	ConfirmedDates(ctx context.Context, query ConfirmedDatesQuery) ([]string, error)
	ExpireOverdue(ctx context.Context) (int64, error)
}

type CreateReservationRequest struct {
	ResourceKind string `json:"resourceKind"`
	ResourceID   string `json:"resourceId"`
	OwnerID      string `json:"ownerId"`
	CheckIn      string `json:"checkIn"`
	CheckOut     string `json:"checkOut"`
	Guests       int    `json:"guests"`
}

type ReservationCreated struct {
	ID     uuid.UUID         `json:"id"`
	Status ReservationStatus `json:"status"`
}

type ReservationView struct {
	ID           uuid.UUID         `json:"id"`
	ResourceKind ListingKind       `json:"resourceKind"`
	ResourceID   uuid.UUID         `json:"resourceId"`
	ResourceName string            `json:"resourceName"`
	OwnerID      uuid.UUID         `json:"ownerId"`
	ResortName   string            `json:"resortName,omitempty"`
	CustomerID   uuid.UUID         `json:"customerId"`
	CustomerName string            `json:"customerName,omitempty"`
	CheckIn      string            `json:"checkIn"`
	CheckOut     string            `json:"checkOut"`
	Guests       int               `json:"guests"`
	Status       ReservationStatus `json:"status"`
	CreatedAt    time.Time         `json:"createdAt"`
	ExpiresAt    *time.Time        `json:"expiresAt,omitempty"`
	CanCancel    bool              `json:"canCancel"`
	CanApprove   bool              `json:"canApprove"`
}

type ReservationDetail struct {
	ReservationView
	Price    decimal.Decimal `json:"price"`
	Features []string        `json:"features"`
	Image    string          `json:"image,omitempty"`
}

type ConfirmedDatesQuery struct {
	OwnerID      string
	ResourceKind string
	ResourceID   string
	Month        int
	Year         int
}

type ReservationController struct {
	reservationRepo repositories.ReservationRepository
	listingRepo     repositories.ListingRepository
	customerRepo    repositories.CustomerRepository
	ownerRepo       repositories.OwnerRepository
	transaction     services.Transactor
	notifier        services.Notifier
	publisher       events.Publisher
	metrics         *services.Metrics
	clock           clock.Clock
	hold            time.Duration
	db              *gorm.DB
	log             logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) ReservationControllerInterface {
	return &ReservationController{
		reservationRepo: repos.Reservation,
		listingRepo:     repos.Listing,
		customerRepo:    repos.Customer,
		ownerRepo:       repos.Owner,
		transaction:     services.Transaction,
		notifier:        services.Notification,
		publisher:       services.Events,
		metrics:         services.Metrics,
		clock:           services.Clock,
		hold:            time.Duration(config.ReservationHoldHours) * time.Hour,
		db:              db.SQL,
		log:             logger.New("reservationController"),
	}
}

// Create places a pending hold on a room or cottage. The reservation and its
// owner notification are two separate writes; when the second one fails the
// hold stays in place and the caller sees a store error.
func (c *ReservationController) Create(
	ctx context.Context,
	customer Principal,
	req CreateReservationRequest,
) (*ReservationCreated, error) {
	log := c.log.TraceFromContext(ctx).Function("Create")

	if !customer.IsCustomer() {
		return nil, apperror.ErrNotAuthorized
	}

	kind := ListingKind(strings.TrimSpace(req.ResourceKind))
	if !kind.Bookable() {
		return nil, apperror.ErrInvalidResourceKind
	}

	if strings.TrimSpace(req.ResourceID) == "" ||
		strings.TrimSpace(req.OwnerID) == "" ||
		strings.TrimSpace(req.CheckIn) == "" ||
		strings.TrimSpace(req.CheckOut) == "" {
		return nil, apperror.ErrMissingField
	}

	checkIn, err := utils.ParseDate(req.CheckIn)
	if err != nil {
		return nil, apperror.ErrInvalidDateFormat
	}
	checkOut, err := utils.ParseDate(req.CheckOut)
	if err != nil {
		return nil, apperror.ErrInvalidDateFormat
	}
	if !checkOut.After(checkIn) {
		return nil, apperror.ErrInvalidDateRange
	}

	resourceID, err := uuid.Parse(strings.TrimSpace(req.ResourceID))
	if err != nil {
		return nil, apperror.ErrNotFound
	}

	listing, err := c.bookableListing(ctx, kind, resourceID, req.OwnerID)
	if err != nil {
		return nil, err
	}

	overlaps, err := c.reservationRepo.CountConfirmedOverlaps(ctx, c.db, kind, resourceID, checkIn, checkOut, nil)
	if err != nil {
		return nil, apperror.Store(err)
	}
	if overlaps > 0 {
		log.Info("requested dates overlap a confirmed stay",
			"resourceID", resourceID,
			"checkIn", req.CheckIn,
			"checkOut", req.CheckOut,
		)
		return nil, apperror.ErrDateRangeUnavailable
	}

	guests := req.Guests
	if guests < 1 {
		guests = 1
	}
	now := c.clock.Now().UTC()
	expiresAt := now.Add(c.hold)

	reservation := &Reservation{
		BaseUUIDModel: BaseUUIDModel{CreatedAt: now},
		CustomerID:   customer.ID,
		OwnerID:      listing.OwnerID,
		ResourceKind: kind,
		ResourceID:   resourceID,
		CheckIn:      datatypes.Date(checkIn),
		CheckOut:     datatypes.Date(checkOut),
		Guests:       guests,
		Status:       ReservationPending,
		ExpiresAt:    &expiresAt,
	}
	if err := c.reservationRepo.Create(ctx, c.db, reservation); err != nil {
		return nil, apperror.Store(err)
	}
	c.metrics.ReservationEvent("created")

	customerName, resortName := c.partyNames(ctx, reservation)
	notification := NewReservationNotification(reservation, customerName, listing.Name, resortName)
	if err := c.notifier.Emit(ctx, c.db, notification); err != nil {
		return nil, log.Err(
			"reservation stored but owner notification failed",
			apperror.Store(err),
			"reservationID", reservation.ID,
		)
	}

	c.publishUpdate(ctx, reservation)

	return &ReservationCreated{ID: reservation.ID, Status: reservation.Status}, nil
}

func (c *ReservationController) bookableListing(
	ctx context.Context,
	kind ListingKind,
	resourceID uuid.UUID,
	ownerID string,
) (*Listing, error) {
	listing, err := c.listingRepo.GetByID(ctx, c.db, resourceID)
	if err != nil {
		return nil, err
	}
	if !listing.IsApproved() || listing.Kind != kind {
		return nil, apperror.ErrNotFound
	}

	owner, err := uuid.Parse(strings.TrimSpace(ownerID))
	if err != nil || owner != listing.OwnerID {
		return nil, apperror.ErrNotFound
	}
	return listing, nil
}

func (c *ReservationController) List(ctx context.Context, actor Principal) ([]ReservationView, error) {
	scope := repositories.ScopeFor(actor)
	if actor.IsAdmin() {
		return nil, apperror.ErrNotAuthorized
	}

	if err := c.expire(ctx, c.db, scope); err != nil {
		return nil, err
	}

	reservations, err := c.reservationRepo.List(ctx, c.db, scope)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return c.views(ctx, actor, reservations)
}

// Pending sweeps every overdue hold, not just the actor's, before listing.
func (c *ReservationController) Pending(ctx context.Context, actor Principal) ([]ReservationView, error) {
	if actor.IsAdmin() {
		return nil, apperror.ErrNotAuthorized
	}

	if err := c.expire(ctx, c.db, repositories.ReservationScope{}); err != nil {
		return nil, err
	}

	scope := repositories.ScopeFor(actor)
	pending := ReservationPending
	scope.Status = &pending

	reservations, err := c.reservationRepo.List(ctx, c.db, scope)
	if err != nil {
		return nil, apperror.Store(err)
	}
	return c.views(ctx, actor, reservations)
}

func (c *ReservationController) Detail(
	ctx context.Context,
	actor Principal,
	id uuid.UUID,
) (*ReservationDetail, error) {
	if err := c.expire(ctx, c.db, repositories.ReservationScope{ID: &id}); err != nil {
		return nil, err
	}

	reservation, err := c.reservationRepo.GetByID(ctx, c.db, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !reservation.BelongsTo(actor) {
		return nil, apperror.ErrNotFound
	}

	views, err := c.views(ctx, actor, []*Reservation{reservation})
	if err != nil {
		return nil, err
	}

	detail := &ReservationDetail{ReservationView: views[0], Features: []string{}}
	listing, err := c.listingRepo.GetByID(ctx, c.db, reservation.ResourceID)
	switch {
	case err == nil:
		detail.Price = listing.Price
		detail.Features = listing.FeatureLines()
		detail.Image = listing.CoverImage()
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, apperror.Store(err)
	}
	return detail, nil
}

func (c *ReservationController) Act(
	ctx context.Context,
	actor Principal,
	id uuid.UUID,
	action string,
) (*ReservationView, error) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case ActionConfirm:
		if !actor.IsOwner() {
			return nil, apperror.ErrInvalidAction
		}
		return c.Confirm(ctx, actor, id)
	case ActionCancel:
		return c.Cancel(ctx, actor, id)
	}
	return nil, apperror.ErrInvalidAction
}

// Confirm runs in one transaction that locks the listing row, so two confirms
// for the same resource cannot both pass the overlap check.
func (c *ReservationController) Confirm(
	ctx context.Context,
	owner Principal,
	id uuid.UUID,
) (*ReservationView, error) {
	log := c.log.TraceFromContext(ctx).Function("Confirm")

	if !owner.IsOwner() {
		return nil, apperror.ErrNotFound
	}

	if err := c.expire(ctx, c.db, repositories.ReservationScope{ID: &id}); err != nil {
		return nil, err
	}

	var (
		confirmed    *Reservation
		notification *Notification
	)
	err := c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		reservation, err := c.reservationRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if !reservation.BelongsTo(owner) {
			return apperror.ErrNotFound
		}

		listing, err := c.listingRepo.LockByID(ctx, tx, reservation.ResourceID)
		if err != nil {
			return err
		}

		if reservation.Status != ReservationPending {
			return apperror.ErrInvalidTransition
		}

		overlaps, err := c.reservationRepo.CountConfirmedOverlaps(
			ctx,
			tx,
			reservation.ResourceKind,
			reservation.ResourceID,
			reservation.CheckInDate(),
			reservation.CheckOutDate(),
			&reservation.ID,
		)
		if err != nil {
			return apperror.Store(err)
		}
		if overlaps > 0 {
			return apperror.ErrConflictingConfirmedReservation
		}

		ok, err := c.reservationRepo.Transition(ctx, tx, reservation.ID, ReservationPending, ReservationConfirmed)
		if err != nil {
			return apperror.Store(err)
		}
		if !ok {
			return apperror.ErrInvalidTransition
		}
		reservation.Status = ReservationConfirmed
		reservation.ExpiresAt = nil

		resortName := "Resort"
		if stored, err := c.ownerRepo.GetByID(ctx, tx, reservation.OwnerID); err == nil {
			resortName = stored.ResortDisplayName()
		}

		notification = NewReservationConfirmedNotification(reservation, listing.Name, resortName)
		if err := c.notifier.Store(ctx, tx, notification); err != nil {
			return apperror.Store(err)
		}

		confirmed = reservation
		return nil
	})
	if err != nil {
		if apperror.KindOf(err) == apperror.KindStore {
			return nil, log.Err("failed to confirm reservation", err, "reservationID", id)
		}
		return nil, err
	}

	c.metrics.ReservationEvent("confirmed")
	c.notifier.Publish(ctx, notification)
	c.publishUpdate(ctx, confirmed)

	views, err := c.views(ctx, owner, []*Reservation{confirmed})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (c *ReservationController) Cancel(
	ctx context.Context,
	actor Principal,
	id uuid.UUID,
) (*ReservationView, error) {
	if err := c.expire(ctx, c.db, repositories.ReservationScope{ID: &id}); err != nil {
		return nil, err
	}

	reservation, err := c.reservationRepo.GetByID(ctx, c.db, id)
	if err != nil {
		return nil, err
	}
	if !reservation.BelongsTo(actor) {
		return nil, apperror.ErrNotFound
	}
	if !reservation.Status.CanTransitionTo(ReservationCancelled) {
		return nil, apperror.ErrInvalidTransition
	}

	ok, err := c.reservationRepo.Transition(ctx, c.db, id, reservation.Status, ReservationCancelled)
	if err != nil {
		return nil, apperror.Store(err)
	}
	if !ok {
		return nil, apperror.ErrInvalidTransition
	}
	reservation.Status = ReservationCancelled
	reservation.ExpiresAt = nil

	c.metrics.ReservationEvent("cancelled")
	c.publishUpdate(ctx, reservation)

	views, err := c.views(ctx, actor, []*Reservation{reservation})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ConfirmedDates lists every day of the month covered by a confirmed stay,
// check-out day included.
func (c *ReservationController) ConfirmedDates(ctx context.Context, query ConfirmedDatesQuery) ([]string, error) {
	if strings.TrimSpace(query.OwnerID) == "" {
		return nil, apperror.ErrMissingField
	}
	ownerID, err := uuid.Parse(strings.TrimSpace(query.OwnerID))
	if err != nil {
		return nil, apperror.ErrInvalidInput.WithMessage("Invalid owner id")
	}

	first, last, err := utils.MonthBounds(query.Year, query.Month)
	if err != nil {
		return nil, apperror.ErrInvalidInput.WithMessage("Month must be between 1 and 12")
	}

	filter := repositories.ConfirmedRangeFilter{OwnerID: ownerID, From: first, To: last}
	if kind := strings.TrimSpace(query.ResourceKind); kind != "" {
		resourceKind := ListingKind(kind)
		if !resourceKind.Bookable() {
			return nil, apperror.ErrInvalidResourceKind
		}
		filter.ResourceKind = &resourceKind
	}
	if resource := strings.TrimSpace(query.ResourceID); resource != "" {
		resourceID, err := uuid.Parse(resource)
		if err != nil {
			return nil, apperror.ErrInvalidInput.WithMessage("Invalid resource id")
		}
		filter.ResourceID = &resourceID
	}

	reservations, err := c.reservationRepo.ListConfirmedInRange(ctx, c.db, filter)
	if err != nil {
		return nil, apperror.Store(err)
	}

	seen := make(map[string]bool)
	dates := make([]string, 0)
	for _, reservation := range reservations {
		for _, day := range utils.EnumerateDates(reservation.CheckInDate(), reservation.CheckOutDate(), first, last) {
			formatted := utils.FormatDate(day)
			if !seen[formatted] {
				seen[formatted] = true
				dates = append(dates, formatted)
			}
		}
	}
	sort.Strings(dates)
	return dates, nil
}

// ExpireOverdue is the global sweep the scheduled job runs.
func (c *ReservationController) ExpireOverdue(ctx context.Context) (int64, error) {
	expired, err := c.reservationRepo.ExpireOverdue(ctx, c.db, c.clock.Now().UTC(), repositories.ReservationScope{})
	if err != nil {
		return 0, apperror.Store(err)
	}
	c.metrics.ReservationsExpired(expired)
	return expired, nil
}

func (c *ReservationController) expire(
	ctx context.Context,
	tx *gorm.DB,
	scope repositories.ReservationScope,
) error {
	expired, err := c.reservationRepo.ExpireOverdue(ctx, tx, c.clock.Now().UTC(), scope)
	if err != nil {
		return apperror.Store(err)
	}
	if expired > 0 {
		c.log.TraceFromContext(ctx).Function("expire").Debug("expired overdue holds", "count", expired)
		c.metrics.ReservationsExpired(expired)
	}
	return nil
}

func (c *ReservationController) partyNames(ctx context.Context, reservation *Reservation) (string, string) {
	customerName := "A customer"
	if customer, err := c.customerRepo.GetByID(ctx, c.db, reservation.CustomerID); err == nil {
		customerName = customer.DisplayName()
	}
	resortName := "Resort"
	if owner, err := c.ownerRepo.GetByID(ctx, c.db, reservation.OwnerID); err == nil {
		resortName = owner.ResortDisplayName()
	}
	return customerName, resortName
}

func (c *ReservationController) views(
	ctx context.Context,
	actor Principal,
	reservations []*Reservation,
) ([]ReservationView, error) {
	ids := make([]uuid.UUID, 0, len(reservations))
	for _, reservation := range reservations {
		ids = append(ids, reservation.ResourceID)
	}

	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) > 0 {
		listings, err := c.listingRepo.List(ctx, c.db, repositories.ListingFilter{IDs: ids})
		if err != nil {
			return nil, apperror.Store(err)
		}
		for _, listing := range listings {
			names[listing.ID] = listing.Name
		}
	}

	views := make([]ReservationView, 0, len(reservations))
	for _, reservation := range reservations {
		view := ReservationView{
			ID:           reservation.ID,
			ResourceKind: reservation.ResourceKind,
			ResourceID:   reservation.ResourceID,
			ResourceName: names[reservation.ResourceID],
			OwnerID:      reservation.OwnerID,
			CustomerID:   reservation.CustomerID,
			CheckIn:      utils.FormatDate(reservation.CheckInDate()),
			CheckOut:     utils.FormatDate(reservation.CheckOutDate()),
			Guests:       reservation.Guests,
			Status:       reservation.Status,
			CreatedAt:    reservation.CreatedAt,
			ExpiresAt:    reservation.ExpiresAt,
		}
		if view.ResourceName == "" {
			view.ResourceName = reservation.ResourceKind.Title()
		}

		if reservation.Owner == nil || reservation.Customer == nil {
			c.attachParties(ctx, reservation)
		}
		if reservation.Owner != nil {
			view.ResortName = reservation.Owner.ResortDisplayName()
		}
		if reservation.Customer != nil {
			view.CustomerName = reservation.Customer.DisplayName()
		}

		pending := reservation.Status == ReservationPending
		view.CanCancel = reservation.Status.CanTransitionTo(ReservationCancelled) && reservation.BelongsTo(actor)
		view.CanApprove = pending && actor.IsOwner() && reservation.OwnerID == actor.ID
		views = append(views, view)
	}
	return views, nil
}

func (c *ReservationController) attachParties(ctx context.Context, reservation *Reservation) {
	if reservation.Owner == nil {
		if owner, err := c.ownerRepo.GetByID(ctx, c.db, reservation.OwnerID); err == nil {
			reservation.Owner = owner
		}
	}
	if reservation.Customer == nil {
		if customer, err := c.customerRepo.GetByID(ctx, c.db, reservation.CustomerID); err == nil {
			reservation.Customer = customer
		}
	}
}

func (c *ReservationController) publishUpdate(ctx context.Context, reservation *Reservation) {
	if c.publisher == nil {
		return
	}

	data := map[string]any{
		"id":           reservation.ID,
		"status":       reservation.Status,
		"resourceKind": reservation.ResourceKind,
		"resourceId":   reservation.ResourceID,
	}
	for _, recipient := range []Principal{
		NewPrincipal(PrincipalCustomer, reservation.CustomerID),
		NewPrincipal(PrincipalOwner, reservation.OwnerID),
	} {
		err := c.publisher.Publish(events.RESERVATION_CHANNEL, events.Event{
			Type:      events.RESERVATION_UPDATED,
			Recipient: &recipient,
			Data:      data,
		})
		if err != nil {
			c.log.TraceFromContext(ctx).
				Function("publishUpdate").
				Warn("failed to publish reservation update", "reservationID", reservation.ID, "error", err)
			return
		}
	}
}
