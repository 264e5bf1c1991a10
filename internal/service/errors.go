package service

import "errors"

var (
	ErrIDRequired        = errors.New("id is required")
	ErrNotFound          = errors.New("document not found")
	ErrReaderNil         = errors.New("reader is nil")
	ErrEmptyFile         = errors.New("file is empty")
	ErrTooLarge          = errors.New("file exceeds the maximum upload size")
	ErrTitleRequired     = errors.New("title is required")
	ErrInvalidAddress    = errors.New("invalid wallet address")
	ErrNoAddresses       = errors.New("at least one address is required")
	ErrInvalidStatus     = errors.New("invalid status filter")
	ErrForbidden         = errors.New("you do not have access to this document")
	ErrFieldNotFound     = errors.New("signature field not found")
	ErrInvalidField      = errors.New("signature field must have a positive size and a non-negative position")
	ErrAlreadySigned     = errors.New("signature field is already signed")
	ErrDocumentCompleted = errors.New("document is already completed")
	ErrInvalidSignature  = errors.New("signature is not valid for this wallet")
	ErrChallengeNotFound = errors.New("no active login challenge for this address")
)
