package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"suidoc/internal/http/middleware"
	"suidoc/internal/service"
	"suidoc/internal/walrus"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	DB           *sql.DB
	Documents    service.DocumentService
	Verification service.VerificationService
	Sessions     service.SessionService
	Blobs        walrus.BlobStore
	Tokens       middleware.TokenVerifier
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Everything under /documents and /chain requires a wallet session.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	app.Post("/auth/challenge", RequestChallenge(d.Sessions))
	app.Post("/auth/login", Login(d.Sessions))

	app.Post("/verify", VerifySignature(d.Verification))

	app.Get("/walrus/services", WalrusServices(d.Blobs))
	app.Get("/walrus/blobs/:blobId/metadata", BlobMetadata(d.Blobs))

	requireAuth := middleware.Auth(d.Tokens)

	docs := app.Group("/documents", requireAuth)
	docs.Get("/", ListDocuments(d.Documents))
	docs.Post("/", UploadDocument(d.Documents))
	docs.Get("/stats", DocumentStats(d.Documents))
	docs.Get("/:id", GetDocument(d.Documents))
	docs.Delete("/:id", DeleteDocument(d.Documents))
	docs.Get("/:id/download", DownloadDocument(d.Documents))
	docs.Get("/:id/blob", DocumentBlob(d.Documents))
	docs.Get("/:id/signatures", DocumentSignatures(d.Documents))
	docs.Post("/:id/fields", AddSignatureField(d.Documents))
	docs.Post("/:id/sign", SignDocument(d.Documents))
	docs.Post("/:id/share", ShareDocument(d.Documents))

	chain := app.Group("/chain", requireAuth)
	chain.Get("/documents", OnChainDocuments(d.Documents))
}
