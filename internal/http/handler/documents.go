package handler

import (
	"fmt"
	"mime"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"suidoc/internal/http/middleware"
	"suidoc/internal/model"
	"suidoc/internal/service"
	"suidoc/internal/sui"
)

// documentID reads and validates the :id route param.
func documentID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// ListDocuments lists documents visible to the caller.
//
// @Summary List documents
// @Tags documents
// @Security BearerAuth
// @Produce json
// @Param limit query int false "page size" default(10)
// @Param offset query int false "offset" default(0)
// @Param search query string false "title search"
// @Param status query string false "draft, pending, signed or completed"
// @Success 200 {object} service.DocumentListResult
// @Failure 400 {object} errorPayload
// @Router /documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), middleware.Address(c), service.ListQuery{
			Search: c.Query("search"),
			Status: model.DocumentStatus(c.Query("status")),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// DocumentStats returns per-status counts for the caller's dashboard.
//
// @Summary Document statistics
// @Tags documents
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.DocumentStats
// @Router /documents/stats [get]
func DocumentStats(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := svc.Stats(c.UserContext(), middleware.Address(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(st)
	}
}

// UploadDocument accepts multipart/form-data with fields file, title and walrus_service.
//
// @Summary Upload a document
// @Description Encrypts the file, stores it on Walrus and registers it with a new allowlist.
// @Tags documents
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "document"
// @Param title formData string false "title, defaults to the filename"
// @Param walrus_service formData string false "walrus service id"
// @Success 201 {object} model.Document
// @Failure 400 {object} errorPayload
// @Failure 413 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /documents [post]
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		doc, err := svc.Upload(c.UserContext(), service.UploadInput{
			Title:         c.FormValue("title", fh.Filename),
			Filename:      fh.Filename,
			ContentType:   ct,
			UploadedBy:    middleware.Address(c),
			WalrusService: c.FormValue("walrus_service"),
			Reader:        f,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// GetDocument returns one document with its fields and sharing list.
//
// @Summary Get a document
// @Tags documents
// @Security BearerAuth
// @Produce json
// @Param id path string true "document id"
// @Success 200 {object} model.Document
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /documents/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), middleware.Address(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DeleteDocument removes a document owned by the caller.
//
// @Summary Delete a document
// @Tags documents
// @Security BearerAuth
// @Param id path string true "document id"
// @Success 204
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /documents/{id} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), middleware.Address(c), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DownloadDocument streams the decrypted file.
//
// @Summary Download a document
// @Tags documents
// @Security BearerAuth
// @Produce octet-stream
// @Param id path string true "document id"
// @Success 200 {file} binary
// @Failure 403 {object} errorPayload
// @Router /documents/{id}/download [get]
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		res, err := svc.Download(c.UserContext(), middleware.Address(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}

		ct := res.Document.ContentType
		if ct == "" {
			ct = fiber.MIMEOctetStream
		}
		name := res.Document.Filename
		if name == "" {
			name = res.Document.ID
		}
		c.Set(fiber.HeaderContentType, ct)
		c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": name}))
		c.Set(fiber.HeaderContentLength, fmt.Sprint(len(res.Data)))
		return c.Send(res.Data)
	}
}

// DocumentBlob returns where the encrypted payload can be fetched.
//
// @Summary Encrypted blob location
// @Tags documents
// @Security BearerAuth
// @Produce json
// @Param id path string true "document id"
// @Success 200 {object} service.BlobLink
// @Router /documents/{id}/blob [get]
func DocumentBlob(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		link, err := svc.BlobLink(c.UserContext(), middleware.Address(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(link)
	}
}

// AddSignatureField places a signature box on the document.
//
// @Summary Add a signature field
// @Tags signing
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "document id"
// @Param body body signatureFieldRequest true "field geometry"
// @Success 201 {object} model.SignatureField
// @Failure 409 {object} errorPayload
// @Router /documents/{id}/fields [post]
func AddSignatureField(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req signatureFieldRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		field, err := svc.AddSignatureField(c.UserContext(), middleware.Address(c), id, service.SignatureFieldInput{
			X: req.X, Y: req.Y, Width: req.Width, Height: req.Height,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(field)
	}
}

// SignDocument signs a field with a wallet signature over the content hash.
//
// @Summary Sign a field
// @Tags signing
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "document id"
// @Param body body signRequest true "field and personal message signature"
// @Success 200 {object} model.Document
// @Failure 401 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Router /documents/{id}/sign [post]
func SignDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req signRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		doc, err := svc.Sign(c.UserContext(), middleware.Address(c), id, req.FieldID, req.Signature)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// ShareDocument grants wallets access to the document.
//
// @Summary Share a document
// @Tags documents
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "document id"
// @Param body body shareRequest true "addresses"
// @Success 200 {object} model.Document
// @Router /documents/{id}/share [post]
func ShareDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req shareRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		doc, err := svc.Share(c.UserContext(), middleware.Address(c), id, req.Addresses)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DocumentSignatures lists signature events indexed from the chain.
//
// @Summary On-chain signatures of a document
// @Tags signing
// @Security BearerAuth
// @Produce json
// @Param id path string true "document id"
// @Success 200 {object} listResponse[model.SignatureRecord]
// @Router /documents/{id}/signatures [get]
func DocumentSignatures(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		recs, err := svc.Signatures(c.UserContext(), middleware.Address(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		if recs == nil {
			recs = []model.SignatureRecord{}
		}
		return c.JSON(listResponse[model.SignatureRecord]{Data: recs})
	}
}

// OnChainDocuments lists document objects owned by the caller's wallet.
//
// @Summary Documents owned on chain
// @Tags chain
// @Security BearerAuth
// @Produce json
// @Success 200 {object} listResponse[sui.ObjectData]
// @Router /chain/documents [get]
func OnChainDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		objs, err := svc.OnChain(c.UserContext(), middleware.Address(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		if objs == nil {
			objs = []sui.ObjectData{}
		}
		return c.JSON(listResponse[sui.ObjectData]{Data: objs})
	}
}
