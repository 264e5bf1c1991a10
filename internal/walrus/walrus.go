// Package walrus talks to Walrus publisher and aggregator HTTP endpoints.
package walrus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"suidoc/internal/config"
)

var (
	ErrUnknownService = errors.New("unknown walrus service")
	ErrPublishFailed  = errors.New("error publishing the blob on Walrus, please select a different Walrus service")
	ErrBlobNotFound   = errors.New("blob not found")
	ErrNoBlobID       = errors.New("walrus response did not contain a blob id")
	ErrBlobTooLarge   = errors.New("blob exceeds the upload limit")
)

// frameSlack covers the encryption frame header, nonce and box overhead
// on top of the plaintext upload limit.
const frameSlack = 1 << 10

// BlobStore stores and reads blobs.
type BlobStore interface {
	Store(ctx context.Context, serviceID string, data []byte) (*StoreResult, error)
	Read(ctx context.Context, serviceID, blobID string) ([]byte, error)
	Metadata(ctx context.Context, blobID string) (json.RawMessage, error)
	Services() []config.WalrusService
	Service(id string) (config.WalrusService, error)
}

// StoreResult describes a stored blob.
type StoreResult struct {
	BlobID           string `json:"blob_id"`
	ObjectID         string `json:"object_id,omitempty"`
	EndEpoch         int64  `json:"end_epoch,omitempty"`
	AlreadyCertified bool   `json:"already_certified"`
	ServiceID        string `json:"service_id"`
}

type storeResponse struct {
	NewlyCreated *struct {
		BlobObject struct {
			ID      string `json:"id"`
			BlobID  string `json:"blobId"`
			Storage struct {
				EndEpoch int64 `json:"endEpoch"`
			} `json:"storage"`
		} `json:"blobObject"`
	} `json:"newlyCreated"`
	AlreadyCertified *struct {
		BlobID   string `json:"blobId"`
		EndEpoch int64  `json:"endEpoch"`
	} `json:"alreadyCertified"`
}

// Client is the default BlobStore.
type Client struct {
	cfg  config.WalrusConfig
	http *http.Client
}

func NewClient(cfg config.WalrusConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{cfg: cfg, http: httpClient}
}

func (c *Client) Services() []config.WalrusService {
	return c.cfg.Services
}

// Service resolves id, falling back to the default service when id is empty.
func (c *Client) Service(id string) (config.WalrusService, error) {
	if id == "" {
		id = c.cfg.DefaultServiceID
	}
	s, ok := c.cfg.Service(id)
	if !ok {
		return config.WalrusService{}, fmt.Errorf("%w: %q", ErrUnknownService, id)
	}
	return s, nil
}

// endpoint joins base with path under /v1, tolerating leading slashes and a v1/ prefix.
func endpoint(base, path string) string {
	clean := strings.TrimLeft(path, "/")
	clean = strings.TrimPrefix(clean, "v1/")
	return strings.TrimRight(base, "/") + "/v1/" + clean
}

func (c *Client) Store(ctx context.Context, serviceID string, data []byte) (*StoreResult, error) {
	svc, err := c.Service(serviceID)
	if err != nil {
		return nil, err
	}

	target := endpoint(svc.PublisherURL, fmt.Sprintf("/v1/blobs?epochs=%d", c.cfg.Epochs))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build store request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w (status %d)", ErrPublishFailed, resp.StatusCode)
	}

	var sr storeResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode store response: %w", err)
	}

	out := &StoreResult{ServiceID: svc.ID}
	switch {
	case sr.NewlyCreated != nil && sr.NewlyCreated.BlobObject.BlobID != "":
		out.BlobID = sr.NewlyCreated.BlobObject.BlobID
		out.ObjectID = sr.NewlyCreated.BlobObject.ID
		out.EndEpoch = sr.NewlyCreated.BlobObject.Storage.EndEpoch
	case sr.AlreadyCertified != nil && sr.AlreadyCertified.BlobID != "":
		out.BlobID = sr.AlreadyCertified.BlobID
		out.EndEpoch = sr.AlreadyCertified.EndEpoch
		out.AlreadyCertified = true
	default:
		return nil, ErrNoBlobID
	}
	return out, nil
}

func (c *Client) Read(ctx context.Context, serviceID, blobID string) ([]byte, error) {
	svc, err := c.Service(serviceID)
	if err != nil {
		return nil, err
	}

	target := endpoint(svc.AggregatorURL, "blobs/"+url.PathEscape(blobID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build read request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", blobID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, blobID)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("read blob %s: unexpected status %d", blobID, resp.StatusCode)
	}

	limit := c.readLimit()
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", blobID, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s", ErrBlobTooLarge, blobID)
	}
	return data, nil
}

func (c *Client) readLimit() int64 {
	n := c.cfg.MaxUploadBytes
	if n <= 0 {
		n = 10 << 20
	}
	return n + frameSlack
}

// Metadata returns the raw metadata document of a blob.
func (c *Client) Metadata(ctx context.Context, blobID string) (json.RawMessage, error) {
	target := endpoint(c.cfg.MetadataURL, "blobs/"+url.PathEscape(blobID)+"/metadata")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build metadata request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("blob metadata %s: %w", blobID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, blobID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("blob metadata %s: unexpected status %d", blobID, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("blob metadata %s: %w", blobID, err)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("blob metadata %s: response is not json", blobID)
	}
	return json.RawMessage(raw), nil
}
