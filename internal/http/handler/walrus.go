package handler

import (
	"github.com/gofiber/fiber/v2"

	"suidoc/internal/config"
	"suidoc/internal/walrus"
)

type walrusServicesResponse struct {
	Data    []config.WalrusService `json:"data"`
	Default string                 `json:"default"`
}

// WalrusServices lists the configured publisher/aggregator pairs.
//
// @Summary Walrus services
// @Tags walrus
// @Produce json
// @Success 200 {object} walrusServicesResponse
// @Router /walrus/services [get]
func WalrusServices(blobs walrus.BlobStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res := walrusServicesResponse{Data: blobs.Services()}
		if def, err := blobs.Service(""); err == nil {
			res.Default = def.ID
		}
		return c.JSON(res)
	}
}

// BlobMetadata proxies the storage node metadata of a blob.
//
// @Summary Blob metadata
// @Tags walrus
// @Produce json
// @Param blobId path string true "walrus blob id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errorPayload
// @Router /walrus/blobs/{blobId}/metadata [get]
func BlobMetadata(blobs walrus.BlobStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("blobId")
		if id == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "blob id is required")
		}
		raw, err := blobs.Metadata(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(raw)
	}
}
