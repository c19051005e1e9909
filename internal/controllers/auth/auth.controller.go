package authController

import (
	"context"
	"errors"
	"strings"
	"time"

	"resorthub/internal/apperror"
	"resorthub/internal/database"
	"resorthub/internal/logger"
	. "resorthub/internal/models"
	"resorthub/internal/repositories"
	"resorthub/internal/services"
	"resorthub/internal/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthControllerInterface covers signup, password login and session lifecycle.
type AuthControllerInterface interface {
	SignupCustomer(ctx context.Context, req CustomerSignupRequest) (*Profile, error)
	SignupOwner(ctx context.Context, req OwnerSignupRequest) (*Profile, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, principal Principal) (*Profile, error)
}

type CustomerSignupRequest struct {
	Username              string `json:"username"              validate:"required,min=3,max=64"`
	Password              string `json:"password"              validate:"required,min=6,max=72"`
	Name                  string `json:"name"                  validate:"required"`
	Email                 string `json:"email"                 validate:"omitempty,email"`
	Birthdate             string `json:"birthdate"`
	Gender                string `json:"gender"`
	Address               string `json:"address"`
	ContactNumber         string `json:"contactNumber"`
	Facebook              string `json:"facebook"`
	EmergencyName         string `json:"emergencyName"`
	EmergencyNumber       string `json:"emergencyNumber"`
	EmergencyRelationship string `json:"emergencyRelationship"`
}

type OwnerSignupRequest struct {
	Username      string `json:"username"      validate:"required,min=3,max=64"`
	Password      string `json:"password"      validate:"required,min=6,max=72"`
	Name          string `json:"name"          validate:"required"`
	Email         string `json:"email"         validate:"omitempty,email"`
	ContactNumber string `json:"contactNumber"`
	Address       string `json:"address"`
	ResortName    string `json:"resortName"    validate:"required"`
	ResortAddress string `json:"resortAddress"`
	BusinessID    string `json:"businessId"`
	TaxID         string `json:"taxId"`
	BankAccount   string `json:"bankAccount"`
	GCash         string `json:"gcash"`
	PayMaya       string `json:"paymaya"`
	PayPal        string `json:"paypal"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Profile   Profile   `json:"profile"`
}

type Profile struct {
	Principal  Principal `json:"principal"`
	Username   string    `json:"username"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Avatar     string    `json:"avatar,omitempty"`
	ResortName string    `json:"resortName,omitempty"`
}

type AuthController struct {
	customerRepo repositories.CustomerRepository
	ownerRepo    repositories.OwnerRepository
	adminRepo    repositories.AdminRepository
	sessions     *services.SessionService
	notifier     services.Notifier
	db           *gorm.DB
	log          logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	db database.DB,
) AuthControllerInterface {
	return &AuthController{
		customerRepo: repos.Customer,
		ownerRepo:    repos.Owner,
		adminRepo:    repos.Admin,
		sessions:     services.Session,
		notifier:     services.Notification,
		db:           db.SQL,
		log:          logger.New("authController"),
	}
}

func (c *AuthController) SignupCustomer(ctx context.Context, req CustomerSignupRequest) (*Profile, error) {
	log := c.log.TraceFromContext(ctx).Function("SignupCustomer")

	req.Username = strings.TrimSpace(req.Username)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, log.Err("failed to hash password", apperror.Store(err))
	}

	customer := &Customer{
		Username:         req.Username,
		PasswordHash:     hash,
		Name:             strings.TrimSpace(req.Name),
		Email:            strings.TrimSpace(req.Email),
		Birthdate:        req.Birthdate,
		Gender:           req.Gender,
		Address:          req.Address,
		ContactNumber:    req.ContactNumber,
		Facebook:         req.Facebook,
		EmergencyName:    req.EmergencyName,
		EmergencyNumber:  req.EmergencyNumber,
		EmergencyRelated: req.EmergencyRelationship,
	}
	if err := c.customerRepo.Create(ctx, c.db, customer); err != nil {
		return nil, err
	}

	if err := c.notifier.Emit(ctx, c.db, NewCustomerSignupNotification(customer)); err != nil {
		log.Warn("customer signup notification failed", "customerID", customer.ID, "error", err)
	}

	log.Info("customer registered", "customerID", customer.ID)
	return customerProfile(customer), nil
}

func (c *AuthController) SignupOwner(ctx context.Context, req OwnerSignupRequest) (*Profile, error) {
	log := c.log.TraceFromContext(ctx).Function("SignupOwner")

	req.Username = strings.TrimSpace(req.Username)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, log.Err("failed to hash password", apperror.Store(err))
	}

	owner := &Owner{
		Username:      req.Username,
		PasswordHash:  hash,
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.TrimSpace(req.Email),
		ContactNumber: req.ContactNumber,
		Address:       req.Address,
		ResortName:    strings.TrimSpace(req.ResortName),
		ResortAddress: req.ResortAddress,
		BusinessID:    req.BusinessID,
		TaxID:         req.TaxID,
		BankAccount:   req.BankAccount,
		GCash:         req.GCash,
		PayMaya:       req.PayMaya,
		PayPal:        req.PayPal,
	}
	if err := c.ownerRepo.Create(ctx, c.db, owner); err != nil {
		return nil, err
	}

	if err := c.notifier.Emit(ctx, c.db, NewOwnerSignupNotification(owner)); err != nil {
		log.Warn("owner signup notification failed", "ownerID", owner.ID, "error", err)
	}

	log.Info("owner registered", "ownerID", owner.ID)
	return ownerProfile(owner), nil
}

// Login checks admins first, then owners, then customers. A username that
// exists in several tables resolves to the first match.
func (c *AuthController) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	log := c.log.TraceFromContext(ctx).Function("Login")

	req.Username = strings.TrimSpace(req.Username)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	profile, hash, err := c.lookup(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if profile == nil || !CheckPassword(hash, req.Password) {
		log.Info("login rejected", "username", req.Username)
		return nil, apperror.ErrInvalidCredentials
	}

	token, expiresAt, err := c.sessions.Create(ctx, profile.Principal)
	if err != nil {
		return nil, err
	}

	log.Info("login succeeded", "principal", profile.Principal.String())
	return &LoginResponse{Token: token, ExpiresAt: expiresAt, Profile: *profile}, nil
}

func (c *AuthController) lookup(ctx context.Context, username string) (*Profile, string, error) {
	admin, err := c.adminRepo.GetByUsername(ctx, c.db, username)
	if err == nil {
		return adminProfile(admin), admin.PasswordHash, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, "", err
	}

	owner, err := c.ownerRepo.GetByUsername(ctx, c.db, username)
	if err == nil {
		return ownerProfile(owner), owner.PasswordHash, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, "", err
	}

	customer, err := c.customerRepo.GetByUsername(ctx, c.db, username)
	if err == nil {
		return customerProfile(customer), customer.PasswordHash, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, "", err
	}
	return nil, "", nil
}

func (c *AuthController) Logout(ctx context.Context, token string) error {
	return c.sessions.Revoke(ctx, token)
}

func (c *AuthController) Me(ctx context.Context, principal Principal) (*Profile, error) {
	switch principal.Kind {
	case PrincipalAdmin:
		admin, err := c.adminRepo.GetByID(ctx, c.db, principal.ID)
		if err != nil {
			return nil, err
		}
		return adminProfile(admin), nil
	case PrincipalOwner:
		owner, err := c.ownerRepo.GetByID(ctx, c.db, principal.ID)
		if err != nil {
			return nil, err
		}
		return ownerProfile(owner), nil
	case PrincipalCustomer:
		customer, err := c.customerRepo.GetByID(ctx, c.db, principal.ID)
		if err != nil {
			return nil, err
		}
		return customerProfile(customer), nil
	}
	return nil, apperror.ErrSessionExpired
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func customerProfile(c *Customer) *Profile {
	return &Profile{
		Principal: c.Principal(),
		Username:  c.Username,
		Name:      c.DisplayName(),
		Email:     c.Email,
		Avatar:    c.Avatar,
	}
}

func ownerProfile(o *Owner) *Profile {
	return &Profile{
		Principal:  o.Principal(),
		Username:   o.Username,
		Name:       o.DisplayName(),
		Email:      o.Email,
		Avatar:     o.Avatar,
		ResortName: o.ResortDisplayName(),
	}
}

func adminProfile(a *Admin) *Profile {
	return &Profile{
		Principal: a.Principal(),
		Username:  a.Username,
		Name:      a.DisplayName(),
		Email:     a.Email,
	}
}
