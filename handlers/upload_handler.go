package handlers

import (
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v2"

	"github.com/anjiri1684/teacheron/authz"
)

// UploadSignature signs a direct browser upload of a profile image into the
// configured Cloudinary folder.
func (h *Handler) UploadSignature(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := authz.Authorize(user, authz.RequestUpload); err != nil {
		return err
	}
	if h.cfg.CloudinaryURL == "" {
		return fiber.NewError(fiber.StatusServiceUnavailable, "uploads are not configured")
	}

	cld, err := cloudinary.NewFromURL(h.cfg.CloudinaryURL)
	if err != nil {
		h.logger.ErrorContext(c.UserContext(), "cloudinary init failed", "error", err)
		return fiber.NewError(fiber.StatusServiceUnavailable, "uploads are not configured")
	}

	folder := h.cfg.CloudinaryFolder + "/" + user.ID.String()
	paramsToSign, err := api.StructToParams(uploader.UploadParams{Folder: folder})
	if err != nil {
		return err
	}
	timestamp := time.Now().Unix()
	paramsToSign.Set("timestamp", strconv.FormatInt(timestamp, 10))

	signature, err := api.SignParameters(paramsToSign, cld.Config.Cloud.APISecret)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"signature":  signature,
		"timestamp":  timestamp,
		"api_key":    cld.Config.Cloud.APIKey,
		"cloud_name": cld.Config.Cloud.CloudName,
		"folder":     folder,
	})
}
