package handler

import (
	"github.com/gofiber/fiber/v2"

	"suidoc/internal/service"
)

// VerifySignature checks a wallet signature against an uploaded file.
// A mismatching signature is a 200 with is_valid=false.
//
// @Summary Verify a signature
// @Tags verification
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "signed document"
// @Param address formData string true "signer address"
// @Param signature formData string true "serialized personal message signature"
// @Success 200 {object} service.VerifyResult
// @Failure 400 {object} errorPayload
// @Router /verify [post]
func VerifySignature(svc service.VerificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		address := c.FormValue("address")
		signature := c.FormValue("signature")
		if address == "" || signature == "" {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "address and signature are required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		res, err := svc.Verify(c.UserContext(), service.VerifyInput{File: f, Address: address, Signature: signature})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}
