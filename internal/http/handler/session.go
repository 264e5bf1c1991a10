package handler

import (
	"github.com/gofiber/fiber/v2"

	"suidoc/internal/service"
)

// RequestChallenge issues a login message for a wallet to sign.
//
// @Summary Request a login challenge
// @Tags auth
// @Accept json
// @Produce json
// @Param body body challengeRequest true "wallet address"
// @Success 200 {object} service.Challenge
// @Router /auth/challenge [post]
func RequestChallenge(svc service.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req challengeRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		ch, err := svc.Challenge(c.UserContext(), req.Address)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(ch)
	}
}

// Login exchanges a signed challenge for a bearer token.
//
// @Summary Log in with a wallet signature
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "address and signature"
// @Success 200 {object} service.Session
// @Failure 401 {object} errorPayload
// @Router /auth/login [post]
func Login(svc service.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if ok, err := bindJSON(c, &req); !ok {
			return err
		}
		sess, err := svc.Login(c.UserContext(), req.Address, req.Signature)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(sess)
	}
}
