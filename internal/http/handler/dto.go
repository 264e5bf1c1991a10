package handler

type challengeRequest struct {
	Address string `json:"address" validate:"required,suiaddr"`
}

type loginRequest struct {
	Address   string `json:"address" validate:"required,suiaddr"`
	Signature string `json:"signature" validate:"required"`
}

type signatureFieldRequest struct {
	X      float64 `json:"x" validate:"gte=0"`
	Y      float64 `json:"y" validate:"gte=0"`
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
}

type signRequest struct {
	FieldID   string `json:"field_id" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

type shareRequest struct {
	Addresses []string `json:"addresses" validate:"required,min=1,max=50,dive,suiaddr"`
}

// listResponse wraps collection responses.
type listResponse[T any] struct {
	Data []T `json:"data"`
}
