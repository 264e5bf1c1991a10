package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"suidoc/internal/auth"
	"suidoc/internal/config"
	"suidoc/internal/http/middleware"
	"suidoc/internal/model"
	"suidoc/internal/service"
	serviceMocks "suidoc/internal/service/mocks"
	"suidoc/internal/sui"
	"suidoc/internal/walrus"
	walrusMocks "suidoc/internal/walrus/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var caller = "0x" + strings.Repeat("a", 64)

// newApp returns an app whose requests are authenticated as caller.
func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(middleware.RequestID())
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(middleware.AddressLocalKey, caller)
		return c.Next()
	})
	return app
}

func jsonRequest(method, target string, body any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, target string, fields map[string]string, filename, content string) *http.Request {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, _ = part.Write([]byte(content))
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeError(t *testing.T, r io.Reader) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(r).Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp.Body).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp()
	app.Get("/documents", ListDocuments(mockSvc))

	t.Run("success", func(t *testing.T) {
		expected := &service.DocumentListResult{
			Items: []model.Document{{ID: uuid.New().String(), Title: "Lease"}},
			Total: 1,
		}
		mockSvc.On("List", mock.Anything, caller, service.ListQuery{
			Search: "lease", Status: model.StatusPending, Limit: 5, Offset: 10,
		}).Return(expected, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents?limit=5&offset=10&search=lease&status=pending", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.DocumentListResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents?limit=abc", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_LIMIT", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("invalid offset", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents?offset=x", nil))
		require.NoError(t, err)
		assert.Equal(t, "INVALID_OFFSET", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("invalid status", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, caller, mock.Anything).Return(nil, service.ErrInvalidStatus).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents?status=archived", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_STATUS", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, caller, mock.Anything).Return(nil, errors.New("service error")).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body := decodeError(t, resp.Body)
		assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
		assert.NotEmpty(t, body.RequestID)
	})
}

func TestUploadDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp()
	app.Post("/documents", UploadDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		docID := uuid.New().String()
		mockSvc.On("Upload", mock.Anything, mock.MatchedBy(func(in service.UploadInput) bool {
			return in.Title == "Lease" && in.Filename == "lease.pdf" && in.UploadedBy == caller && in.WalrusService == "service2"
		})).Return(&model.Document{ID: docID, Title: "Lease", Status: model.StatusDraft}, nil).Once()

		req := multipartRequest(t, "/documents", map[string]string{"title": "Lease", "walrus_service": "service2"}, "lease.pdf", "content")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var doc model.Document
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
		assert.Equal(t, docID, doc.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("title defaults to filename", func(t *testing.T) {
		mockSvc.On("Upload", mock.Anything, mock.MatchedBy(func(in service.UploadInput) bool {
			return in.Title == "notes.txt"
		})).Return(&model.Document{ID: "x"}, nil).Once()

		resp, err := app.Test(multipartRequest(t, "/documents", nil, "notes.txt", "n"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("missing file", func(t *testing.T) {
		resp, err := app.Test(multipartRequest(t, "/documents", map[string]string{"title": "x"}, "", ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp.Body).Error.Code)
	})

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"publisher failure", walrus.ErrPublishFailed, http.StatusBadGateway, "WALRUS_PUBLISH_FAILED"},
		{"unknown service", walrus.ErrUnknownService, http.StatusBadRequest, "UNKNOWN_WALRUS_SERVICE"},
		{"too large", service.ErrTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{"chain timeout", sui.ErrTxTimeout, http.StatusGatewayTimeout, "CHAIN_TIMEOUT"},
		{"internal", errors.New("db save failed: boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc.On("Upload", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			resp, err := app.Test(multipartRequest(t, "/documents", nil, "a.pdf", "a"))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body := decodeError(t, resp.Body)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.NotContains(t, body.Error.Message, "boom")
		})
	}
}

func TestGetDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp()
	app.Get("/documents/:id", GetDocument(mockSvc))
	docID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, caller, docID).Return(&model.Document{ID: docID}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+docID, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("invalid id", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents/invalid-uuid", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, caller, docID).Return(nil, service.ErrNotFound).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+docID, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("forbidden", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, caller, docID).Return(nil, service.ErrForbidden).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+docID, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestDeleteDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp()
	app.Delete("/documents/:id", DeleteDocument(mockSvc))
	docID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, caller, docID).Return(nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/documents/"+docID, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, caller, docID).Return(service.ErrNotFound).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/documents/"+docID, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDownloadDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp()
	app.Get("/documents/:id/download", DownloadDocument(mockSvc))
	docID := uuid.New().String()

	mockSvc.On("Download", mock.Anything, caller, docID).Return(&service.DownloadResult{
		Document: &model.Document{ID: docID, Filename: "lease.pdf", ContentType: "application/pdf"},
		Data:     []byte("%PDF-1.7"),
	}, nil).Once()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+docID+"/download", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename=lease.pdf`, resp.Header.Get("Content-Disposition"))
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "%PDF-1.7", string(b))
}

func TestSignDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp()
	app.Post("/documents/:id/sign", SignDocument(mockSvc))
	docID := uuid.New().String()
	target := "/documents/" + docID + "/sign"

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Sign", mock.Anything, caller, docID, "sig-1", "c2ln").
			Return(&model.Document{ID: docID, Status: model.StatusCompleted}, nil).Once()

		resp, err := app.Test(jsonRequest(http.MethodPost, target, signRequest{FieldID: "sig-1", Signature: "c2ln"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var doc model.Document
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
		assert.Equal(t, model.StatusCompleted, doc.Status)
	})

	t.Run("validation error", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, target, map[string]string{"field_id": "sig-1"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp.Body)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		assert.Equal(t, "signature is required", body.Error.Message)
	})

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"already signed", service.ErrAlreadySigned, http.StatusConflict, "ALREADY_SIGNED"},
		{"bad signature", service.ErrInvalidSignature, http.StatusUnauthorized, "INVALID_SIGNATURE"},
		{"unknown field", service.ErrFieldNotFound, http.StatusNotFound, "FIELD_NOT_FOUND"},
		{"tx failed", sui.ErrTxFailed, http.StatusBadGateway, "CHAIN_TX_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc.On("Sign", mock.Anything, caller, docID, "sig-1", "c2ln").Return(nil, tt.err).Once()

			resp, err := app.Test(jsonRequest(http.MethodPost, target, signRequest{FieldID: "sig-1", Signature: "c2ln"}))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCode, decodeError(t, resp.Body).Error.Code)
		})
	}
}

func TestAddSignatureField(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp()
	app.Post("/documents/:id/fields", AddSignatureField(mockSvc))
	docID := uuid.New().String()

	t.Run("created", func(t *testing.T) {
		in := service.SignatureFieldInput{X: 10, Y: 20, Width: 100, Height: 30}
		mockSvc.On("AddSignatureField", mock.Anything, caller, docID, in).
			Return(&model.SignatureField{ID: "sig-abc", DocumentID: docID}, nil).Once()

		resp, err := app.Test(jsonRequest(http.MethodPost, "/documents/"+docID+"/fields", signatureFieldRequest{X: 10, Y: 20, Width: 100, Height: 30}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("zero size rejected", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/documents/"+docID+"/fields", signatureFieldRequest{X: 1, Y: 1}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("not json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/documents/"+docID+"/fields", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "INVALID_BODY", decodeError(t, resp.Body).Error.Code)
	})
}

func TestShareDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp()
	app.Post("/documents/:id/share", ShareDocument(mockSvc))
	docID := uuid.New().String()
	target := "/documents/" + docID + "/share"

	t.Run("success", func(t *testing.T) {
		addrs := []string{"0x2", "0x" + strings.Repeat("b", 64)}
		mockSvc.On("Share", mock.Anything, caller, docID, addrs).
			Return(&model.Document{ID: docID, SharedWith: addrs}, nil).Once()

		resp, err := app.Test(jsonRequest(http.MethodPost, target, shareRequest{Addresses: addrs}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("bad address", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, target, shareRequest{Addresses: []string{"bob"}}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp.Body)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		assert.Contains(t, body.Error.Message, "must be a Sui address")
	})

	t.Run("empty list", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, target, shareRequest{Addresses: []string{}}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDocumentSignaturesAndChain(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp()
	app.Get("/documents/:id/signatures", DocumentSignatures(mockSvc))
	app.Get("/chain/documents", OnChainDocuments(mockSvc))
	docID := uuid.New().String()

	mockSvc.On("Signatures", mock.Anything, caller, docID).Return(nil, nil).Once()
	mockSvc.On("OnChain", mock.Anything, caller).Return([]sui.ObjectData{{ObjectID: "0xobj"}}, nil).Once()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+docID+"/signatures", nil))
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"data":[]}`, string(b))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/chain/documents", nil))
	require.NoError(t, err)
	var body listResponse[sui.ObjectData]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "0xobj", body.Data[0].ObjectID)
}

func TestVerifySignature(t *testing.T) {
	mockSvc := new(serviceMocks.MockVerificationService)
	app := newApp()
	app.Post("/verify", VerifySignature(mockSvc))

	t.Run("result returned", func(t *testing.T) {
		mockSvc.On("Verify", mock.Anything, mock.MatchedBy(func(in service.VerifyInput) bool {
			return in.Address == caller && in.Signature == "c2ln" && in.File != nil
		})).Return(&service.VerifyResult{IsValid: false, Message: "signature does not match"}, nil).Once()

		req := multipartRequest(t, "/verify", map[string]string{"address": caller, "signature": "c2ln"}, "a.pdf", "a")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var res service.VerifyResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.False(t, res.IsValid)
	})

	t.Run("missing signature", func(t *testing.T) {
		req := multipartRequest(t, "/verify", map[string]string{"address": caller}, "a.pdf", "a")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestSessionHandlers(t *testing.T) {
	mockSvc := new(serviceMocks.MockSessionService)
	app := newApp()
	app.Post("/auth/challenge", RequestChallenge(mockSvc))
	app.Post("/auth/login", Login(mockSvc))

	t.Run("challenge", func(t *testing.T) {
		mockSvc.On("Challenge", mock.Anything, caller).Return(&service.Challenge{Address: caller, Nonce: "n"}, nil).Once()

		resp, err := app.Test(jsonRequest(http.MethodPost, "/auth/challenge", challengeRequest{Address: caller}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("login rejected", func(t *testing.T) {
		mockSvc.On("Login", mock.Anything, caller, "c2ln").Return(nil, service.ErrChallengeNotFound).Once()

		resp, err := app.Test(jsonRequest(http.MethodPost, "/auth/login", loginRequest{Address: caller, Signature: "c2ln"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "CHALLENGE_NOT_FOUND", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("login ok", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
		mockSvc.On("Login", mock.Anything, caller, "c2ln").Return(&service.Session{Address: caller, Token: "tok", ExpiresAt: exp}, nil).Once()

		resp, err := app.Test(jsonRequest(http.MethodPost, "/auth/login", loginRequest{Address: caller, Signature: "c2ln"}))
		require.NoError(t, err)
		var sess service.Session
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&sess))
		assert.Equal(t, "tok", sess.Token)
	})
}

func TestWalrusHandlers(t *testing.T) {
	blobs := new(walrusMocks.MockBlobStore)
	app := newApp()
	app.Get("/walrus/services", WalrusServices(blobs))
	app.Get("/walrus/blobs/:blobId/metadata", BlobMetadata(blobs))

	services := []config.WalrusService{{ID: "service1"}, {ID: "service2"}}
	blobs.On("Services").Return(services)
	blobs.On("Service", "").Return(services[0], nil)
	blobs.On("Metadata", mock.Anything, "blob-1").Return(json.RawMessage(`{"V1":{}}`), nil)
	blobs.On("Metadata", mock.Anything, "gone").Return(nil, walrus.ErrBlobNotFound)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/walrus/services", nil))
	require.NoError(t, err)
	var list walrusServicesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list.Data, 2)
	assert.Equal(t, "service1", list.Default)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/walrus/blobs/blob-1/metadata", nil))
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"V1":{}}`, string(b))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/walrus/blobs/gone/metadata", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRegisterRoutes_RequiresSession(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tokens := auth.NewJWT("secret", time.Hour, nil)
	docs := new(serviceMocks.MockDocumentService)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	RegisterRoutes(app, Deps{
		DB:           db,
		Documents:    docs,
		Verification: new(serviceMocks.MockVerificationService),
		Sessions:     new(serviceMocks.MockSessionService),
		Blobs:        new(walrusMocks.MockBlobStore),
		Tokens:       tokens,
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents/stats", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp.Body).Error.Code)

	token, _, err := tokens.Generate(caller)
	require.NoError(t, err)
	docs.On("Stats", mock.Anything, caller).Return(&service.DocumentStats{Total: 3, Draft: 3}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/documents/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var st service.DocumentStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, 3, st.Total)
}
