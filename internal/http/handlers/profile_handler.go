package handlers

import (
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"zando/internal/backend"
	applog "zando/internal/log"
	"zando/internal/services"
	"zando/internal/validate"
)

const maxImageBytes = 2 << 20

type ProfileHandler struct {
	Accounts *services.AccountService
}

var genders = []string{"Male", "Female", "Other"}

func (h *ProfileHandler) View(c *fiber.Ctx) error {
	sess := currentSession(c)
	prof, err := h.Accounts.Profile(c.UserContext(), sess.User)
	if err != nil {
		applog.Error(c, "profile.load.fail", err, nil)
		return notFound(c, fiber.StatusBadGateway, "Could not load your profile")
	}
	return render(c, "profile", fiber.Map{
		"Profile":   prof,
		"Genders":   genders,
		"LastOrder": sess.Checkout.LastOrder(),
	})
}

// readUpload reads an optional image part of a multipart form.
func readUpload(fh *multipart.FileHeader) (*backend.Upload, error) {
	if fh == nil || fh.Size == 0 {
		return nil, nil
	}
	if fh.Size > maxImageBytes {
		return nil, fiber.NewError(fiber.StatusRequestEntityTooLarge, "image is too large")
	}
	if ct := fh.Header.Get(fiber.HeaderContentType); ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, fiber.NewError(fiber.StatusUnsupportedMediaType, "only images can be uploaded")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := io.ReadAll(io.LimitReader(f, maxImageBytes))
	if err != nil {
		return nil, err
	}
	return &backend.Upload{Filename: fh.Filename, Content: b}, nil
}

// POST /profile
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	sess := currentSession(c)
	form := backend.ProfileForm{UserID: sess.User.ID}
	var ok bool
	if form.FirstName, ok = validate.Name(c.FormValue("firstName")); !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "firstName"})
		return redirectWith(c, "/profile", "First name is required.")
	}
	if form.LastName, ok = validate.Name(c.FormValue("lastName")); !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "lastName"})
		return redirectWith(c, "/profile", "Last name is required.")
	}
	if phone := c.FormValue("phoneNumber"); strings.TrimSpace(phone) != "" {
		if form.PhoneNumber, ok = validate.Phone(phone); !ok {
			return redirectWith(c, "/profile", "Enter a valid phone number.")
		}
	}
	if bday := c.FormValue("birthday"); strings.TrimSpace(bday) != "" {
		if form.Birthday, ok = validate.Date(bday); !ok {
			return redirectWith(c, "/profile", "Enter your birthday as yyyy-mm-dd.")
		}
	}
	if g := c.FormValue("gender"); g != "" {
		for _, allowed := range genders {
			if g == allowed {
				form.Gender = g
			}
		}
		if form.Gender == "" {
			return redirectWith(c, "/profile", "Choose a gender from the list.")
		}
	}

	fh, _ := c.FormFile("profileImage")
	img, err := readUpload(fh)
	if err != nil {
		applog.Security(c, "upload.reject", map[string]any{"field": "profileImage", "error": err.Error()})
		return redirectWith(c, "/profile", "Profile image must be an image under 2 MB.")
	}
	form.Image = img

	if _, err := h.Accounts.UpdateProfile(c.UserContext(), sess.User, form); err != nil {
		applog.Error(c, "profile.update.fail", err, nil)
		return redirectWith(c, "/profile", backendMessage(err, "Could not update your profile."))
	}
	applog.Audit(c, "profile.update", map[string]any{"image": img != nil})
	return redirectWith(c, "/profile", "Profile updated.")
}
