package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"

	"suidoc/internal/wallet"
)

// TokenIssuer issues session tokens for a wallet address.
type TokenIssuer interface {
	Generate(address string) (string, time.Time, error)
}

// Challenge is the message a wallet signs to log in.
type Challenge struct {
	Address   string    `json:"address"`
	Nonce     string    `json:"nonce"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Session is an issued access token.
type Session struct {
	Address   string    `json:"address"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionService implements wallet login: a one-time challenge signed as a
// personal message is exchanged for a token.
type SessionService interface {
	Challenge(ctx context.Context, address string) (*Challenge, error)
	Login(ctx context.Context, address, signature string) (*Session, error)
}

type sessionService struct {
	tokens TokenIssuer
	ttl    time.Duration
	log    *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	pending map[string]Challenge
}

func NewSessionService(tokens TokenIssuer, challengeTTL time.Duration, logger *zap.Logger) SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if challengeTTL <= 0 {
		challengeTTL = 5 * time.Minute
	}
	return &sessionService{
		tokens:  tokens,
		ttl:     challengeTTL,
		log:     logger.With(zap.String("service", "session")),
		now:     time.Now,
		pending: make(map[string]Challenge),
	}
}

func challengeMessage(address, nonce string, exp time.Time) string {
	return fmt.Sprintf("Sign in to SuiDoc\n\nAddress: %s\nNonce: %s\nExpires: %s",
		address, nonce, exp.UTC().Format(time.RFC3339))
}

// prune drops expired challenges. Callers hold mu.
func (s *sessionService) prune(now time.Time) {
	for a, c := range s.pending {
		if now.After(c.ExpiresAt) {
			delete(s.pending, a)
		}
	}
}

func (s *sessionService) Challenge(ctx context.Context, address string) (*Challenge, error) {
	a, err := normalize(address)
	if err != nil {
		return nil, err
	}
	nonce, err := gonanoid.New(24)
	if err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	now := s.now()
	exp := now.Add(s.ttl)
	c := Challenge{Address: a, Nonce: nonce, Message: challengeMessage(a, nonce, exp), ExpiresAt: exp}

	s.mu.Lock()
	s.prune(now)
	s.pending[a] = c
	s.mu.Unlock()

	return &c, nil
}

// Login consumes the challenge only when the signature checks out, so a
// mistyped signature can be retried until the challenge expires.
func (s *sessionService) Login(ctx context.Context, address, signature string) (*Session, error) {
	a, err := normalize(address)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune(s.now())
	c, ok := s.pending[a]
	if !ok {
		return nil, ErrChallengeNotFound
	}
	if err := wallet.VerifyPersonalMessage([]byte(c.Message), signature, a); err != nil {
		s.log.Info("login rejected", zap.String("address", a), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	delete(s.pending, a)

	token, exp, err := s.tokens.Generate(a)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	s.log.Info("login", zap.String("address", a))
	return &Session{Address: a, Token: token, ExpiresAt: exp}, nil
}
