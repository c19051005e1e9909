package handlers

import (
	"io"
	"strings"

	"resorthub/internal/app"
	"resorthub/internal/apperror"
	"resorthub/internal/models"

	listingController "resorthub/internal/controllers/listings"

	"github.com/gofiber/fiber/v2"
)

type ListingHandler struct {
	Handler
	controller listingController.ListingControllerInterface
}

func NewListingHandler(app app.App, router fiber.Router) *ListingHandler {
	return &ListingHandler{
		Handler:    newHandler(app, router, "listing_handler"),
		controller: app.Controllers.Listing,
	}
}

func (h *ListingHandler) Register() {
	resorts := h.router.Group("/resorts")
	resorts.Get("/:ownerId", h.resort)
	resorts.Get("/:ownerId/listings/:kind", h.browse)

	owner := h.router.Group(
		"/owner",
		h.middleware.RequireAuth(),
		h.middleware.RequireRole(models.PrincipalOwner),
	)
	owner.Get("/listings", h.ownerListings)
	owner.Post("/listings", h.create)
	owner.Put("/listings/:id", h.update)
	owner.Delete("/listings/:id", h.delete)
	owner.Post("/profile/images", h.resortImages)
	owner.Put("/profile/entrance-fee", h.entranceFee)
}

// listingForm accepts both multipart fields and a JSON body.
type listingForm struct {
	Kind     string   `json:"kind"     form:"kind"`
	Name     string   `json:"name"     form:"name"`
	Price    string   `json:"price"    form:"price"`
	Capacity int      `json:"capacity" form:"capacity"`
	Beds     *int     `json:"beds"     form:"beds"`
	Size     *string  `json:"size"     form:"size"`
	Features []string `json:"features" form:"features"`
}

func (f listingForm) input() listingController.ListingInput {
	features := f.Features
	if len(features) == 1 && strings.Contains(features[0], ",") {
		features = strings.Split(features[0], ",")
	}
	return listingController.ListingInput{
		Kind:     f.Kind,
		Name:     f.Name,
		Price:    f.Price,
		Capacity: f.Capacity,
		Beds:     f.Beds,
		Size:     f.Size,
		Features: features,
	}
}

func (h *ListingHandler) resort(c *fiber.Ctx) error {
	ownerID, err := paramUUID(c, "ownerId")
	if err != nil {
		return fail(c, err)
	}

	view, err := h.controller.Resort(c.UserContext(), ownerID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(view)
}

func (h *ListingHandler) browse(c *fiber.Ctx) error {
	ownerID, err := paramUUID(c, "ownerId")
	if err != nil {
		return fail(c, err)
	}

	listings, err := h.controller.Browse(c.UserContext(), ownerID, c.Params("kind"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"listings": listings})
}

func (h *ListingHandler) ownerListings(c *fiber.Ctx) error {
	listings, err := h.controller.OwnerListings(c.UserContext(), principal(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"listings": listings})
}

func (h *ListingHandler) create(c *fiber.Ctx) error {
	var form listingForm
	if err := bind(c, &form); err != nil {
		return fail(c, err)
	}

	images, closeAll, err := h.formImages(c, "images")
	if err != nil {
		return fail(c, err)
	}
	defer closeAll()

	listing, err := h.controller.Create(c.UserContext(), principal(c), form.input(), images)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(listing)
}

func (h *ListingHandler) update(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var form listingForm
	if err := bind(c, &form); err != nil {
		return fail(c, err)
	}

	images, closeAll, err := h.formImages(c, "images")
	if err != nil {
		return fail(c, err)
	}
	defer closeAll()

	listing, err := h.controller.Update(c.UserContext(), principal(c), id, form.input(), images)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(listing)
}

func (h *ListingHandler) delete(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	if err := h.controller.Delete(c.UserContext(), principal(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *ListingHandler) resortImages(c *fiber.Ctx) error {
	profiles, closeProfiles, err := h.formImages(c, "profileImage")
	if err != nil {
		return fail(c, err)
	}
	defer closeProfiles()

	backgrounds, closeBackgrounds, err := h.formImages(c, "backgroundImage")
	if err != nil {
		return fail(c, err)
	}
	defer closeBackgrounds()

	var profile, background *listingController.ImageUpload
	if len(profiles) > 0 {
		profile = &profiles[0]
	}
	if len(backgrounds) > 0 {
		background = &backgrounds[0]
	}

	view, err := h.controller.UpdateResortImages(c.UserContext(), principal(c), profile, background)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(view)
}

type entranceFeeRequest struct {
	EntranceFee string `json:"entranceFee" form:"entranceFee"`
}

func (h *ListingHandler) entranceFee(c *fiber.Ctx) error {
	var req entranceFeeRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	view, err := h.controller.UpdateEntranceFee(c.UserContext(), principal(c), req.EntranceFee)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(view)
}

// formImages opens every non-empty file under field. JSON requests carry no
// files and yield an empty slice.
func (h *ListingHandler) formImages(
	c *fiber.Ctx,
	field string,
) ([]listingController.ImageUpload, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return nil, noop, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, noop, apperror.ErrInvalidInput.WithMessage("Invalid multipart form")
	}

	var files []io.Closer
	closeAll := func() {
		for _, file := range files {
			_ = file.Close()
		}
	}

	var uploads []listingController.ImageUpload
	for _, header := range form.File[field] {
		if header.Size == 0 {
			continue
		}
		file, err := header.Open()
		if err != nil {
			closeAll()
			h.log.Function("formImages").Er("failed to open upload", err, "field", field)
			return nil, noop, apperror.ErrInvalidInput.WithMessage("Could not read uploaded file")
		}
		files = append(files, file)
		uploads = append(uploads, listingController.ImageUpload{Filename: header.Filename, Reader: file})
	}
	return uploads, closeAll, nil
}
