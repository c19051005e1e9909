package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"resorthub/internal/apperror"
	"resorthub/internal/handlers/middleware"
	"resorthub/internal/logger"
	. "resorthub/internal/models"

	adminController "resorthub/internal/controllers/admin"
	listingController "resorthub/internal/controllers/listings"
	reservationController "resorthub/internal/controllers/reservations"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessions map[string]Principal

func (s stubSessions) Resolve(_ context.Context, token string) (Principal, error) {
	principal, ok := s[token]
	if !ok {
		return Principal{}, apperror.ErrSessionExpired
	}
	return principal, nil
}

// stubReservations embeds the interface so only the methods a test needs are implemented.
type stubReservations struct {
	reservationController.ReservationControllerInterface
	created   reservationController.CreateReservationRequest
	createErr error
	actedWith string
	query     reservationController.ConfirmedDatesQuery
}

func (s *stubReservations) Create(
	_ context.Context,
	_ Principal,
	req reservationController.CreateReservationRequest,
) (*reservationController.ReservationCreated, error) {
	s.created = req
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &reservationController.ReservationCreated{ID: uuid.New(), Status: ReservationPending}, nil
}

func (s *stubReservations) Act(
	_ context.Context,
	_ Principal,
	id uuid.UUID,
	action string,
) (*reservationController.ReservationView, error) {
	s.actedWith = action
	if action != reservationController.ActionConfirm {
		return nil, apperror.ErrInvalidAction
	}
	return &reservationController.ReservationView{ID: id, Status: ReservationConfirmed}, nil
}

func (s *stubReservations) ConfirmedDates(
	_ context.Context,
	query reservationController.ConfirmedDatesQuery,
) ([]string, error) {
	s.query = query
	return []string{"2026-05-01", "2026-05-02"}, nil
}

type stubAdmin struct {
	adminController.AdminControllerInterface
	deleted uuid.UUID
}

func (s *stubAdmin) DeleteOwner(_ context.Context, _ Principal, id uuid.UUID) error {
	s.deleted = id
	return nil
}

type stubListings struct {
	listingController.ListingControllerInterface
	input     listingController.ListingInput
	filenames []string
	contents  []string
}

func (s *stubListings) Create(
	_ context.Context,
	owner Principal,
	input listingController.ListingInput,
	images []listingController.ImageUpload,
) (*Listing, error) {
	s.input = input
	for _, image := range images {
		data, err := io.ReadAll(image.Reader)
		if err != nil {
			return nil, err
		}
		s.filenames = append(s.filenames, image.Filename)
		s.contents = append(s.contents, string(data))
	}
	return &Listing{OwnerID: owner.ID, Kind: ListingKind(input.Kind), Name: input.Name}, nil
}

type testServer struct {
	app      *fiber.App
	customer Principal
	owner    Principal
	admin    Principal
}

func newTestServer(
	t *testing.T,
	reservations reservationController.ReservationControllerInterface,
	admin adminController.AdminControllerInterface,
	listings listingController.ListingControllerInterface,
) testServer {
	t.Helper()

	s := testServer{
		customer: NewPrincipal(PrincipalCustomer, uuid.New()),
		owner:    NewPrincipal(PrincipalOwner, uuid.New()),
		admin:    NewPrincipal(PrincipalAdmin, uuid.New()),
	}
	sessions := stubSessions{"customer": s.customer, "owner": s.owner, "admin": s.admin}

	s.app = fiber.New()
	api := s.app.Group("/api")
	base := Handler{
		middleware: middleware.New(sessions, nil),
		log:        logger.New("handlers_test"),
		router:     api,
	}

	(&ReservationHandler{Handler: base, controller: reservations}).Register()
	(&AdminHandler{Handler: base, controller: admin}).Register()
	(&ListingHandler{Handler: base, controller: listings}).Register()
	return s
}

func (s testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return s.send(t, req)
}

func (s testServer) send(t *testing.T, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()

	resp, err := s.app.Test(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	decoded := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestReservationHandler_Create(t *testing.T) {
	reservations := &stubReservations{}
	s := newTestServer(t, reservations, &stubAdmin{}, &stubListings{})

	resp, body := s.do(t, http.MethodPost, "/api/reservations/", "customer", map[string]any{
		"resourceKind": "room",
		"resourceId":   uuid.NewString(),
		"ownerId":      uuid.NewString(),
		"checkIn":      "2026-05-01",
		"checkOut":     "2026-05-03",
		"guests":       2,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, string(ReservationPending), body["status"])
	assert.Equal(t, "room", reservations.created.ResourceKind)
	assert.Equal(t, 2, reservations.created.Guests)
}

func TestReservationHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		createErr  error
		wantStatus int
		wantCode   string
	}{
		{name: "no session", wantStatus: http.StatusUnauthorized, wantCode: "invalid_credentials"},
		{name: "owner cannot book", token: "owner", wantStatus: http.StatusForbidden, wantCode: "not_authorized"},
		{
			name:       "overlap",
			token:      "customer",
			createErr:  apperror.ErrDateRangeUnavailable,
			wantStatus: http.StatusConflict,
			wantCode:   "date_range_unavailable",
		},
		{
			name:       "validation",
			token:      "customer",
			createErr:  apperror.ErrInvalidDateRange,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_date_range",
		},
		{
			name:       "store failure hides cause",
			token:      "customer",
			createErr:  apperror.Store(assert.AnError),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "store_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &stubReservations{createErr: tt.createErr}, &stubAdmin{}, &stubListings{})

			resp, body := s.do(t, http.MethodPost, "/api/reservations/", tt.token, map[string]any{})
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCode, body["code"])
			assert.NotContains(t, body["error"], assert.AnError.Error())
		})
	}
}

func TestReservationHandler_Act(t *testing.T) {
	reservations := &stubReservations{}
	s := newTestServer(t, reservations, &stubAdmin{}, &stubListings{})
	id := uuid.New()

	resp, body := s.do(t, http.MethodPost, "/api/reservations/"+id.String()+"/action", "owner", map[string]any{
		"action": "confirm",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(ReservationConfirmed), body["status"])

	resp, body = s.do(t, http.MethodPost, "/api/reservations/"+id.String()+"/action", "owner", map[string]any{
		"action": "archive",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_action", body["code"])

	resp, _ = s.do(t, http.MethodPost, "/api/reservations/not-a-uuid/action", "owner", map[string]any{
		"action": "confirm",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReservationHandler_ConfirmedDates(t *testing.T) {
	reservations := &stubReservations{}
	s := newTestServer(t, reservations, &stubAdmin{}, &stubListings{})
	resourceID := uuid.NewString()

	resp, body := s.do(t, http.MethodGet,
		"/api/reservations/confirmed-dates?resource_kind=room&resource_id="+resourceID+"&month=5&year=2026",
		"customer", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["dates"], 2)
	assert.Equal(t, resourceID, reservations.query.ResourceID)
	assert.Equal(t, 5, reservations.query.Month)

	resp, body = s.do(t, http.MethodGet, "/api/reservations/confirmed-dates?resource_kind=room", "customer", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "missing_field", body["code"])
}

func TestAdminHandler_RequiresAdmin(t *testing.T) {
	admin := &stubAdmin{}
	s := newTestServer(t, &stubReservations{}, admin, &stubListings{})
	ownerID := uuid.New()

	resp, _ := s.do(t, http.MethodDelete, "/api/admin/owners/"+ownerID.String(), "owner", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, uuid.Nil, admin.deleted)

	resp, body := s.do(t, http.MethodDelete, "/api/admin/owners/"+ownerID.String(), "admin", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, ownerID, admin.deleted)
}

func TestListingHandler_CreateMultipart(t *testing.T) {
	listings := &stubListings{}
	s := newTestServer(t, &stubReservations{}, &stubAdmin{}, listings)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	require.NoError(t, form.WriteField("kind", "cottage"))
	require.NoError(t, form.WriteField("name", "Beach Cottage"))
	require.NoError(t, form.WriteField("price", "1200.50"))
	require.NoError(t, form.WriteField("capacity", "8"))
	require.NoError(t, form.WriteField("features", "Grill,Shade"))
	for _, name := range []string{"front.jpg", "side.jpg"} {
		part, err := form.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("bytes-of-" + name))
		require.NoError(t, err)
	}
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/owner/listings", &buf)
	req.Header.Set(fiber.HeaderContentType, form.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer owner")

	resp, body := s.send(t, req)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Beach Cottage", body["name"])

	assert.Equal(t, "cottage", listings.input.Kind)
	assert.Equal(t, "1200.50", listings.input.Price)
	assert.Equal(t, 8, listings.input.Capacity)
	assert.Equal(t, []string{"Grill", "Shade"}, listings.input.Features)
	assert.Equal(t, []string{"front.jpg", "side.jpg"}, listings.filenames)
	assert.Equal(t, []string{"bytes-of-front.jpg", "bytes-of-side.jpg"}, listings.contents)
}

func TestListingHandler_OwnerRoutesRejectCustomers(t *testing.T) {
	s := newTestServer(t, &stubReservations{}, &stubAdmin{}, &stubListings{})

	resp, body := s.do(t, http.MethodPost, "/api/owner/listings", "customer", map[string]any{"kind": "room"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "not_authorized", body["code"])
}
