package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	SessionCookieName  = "stocks.sid"
	SessionRedisPrefix = "session:"
	userSessionsPrefix = "user_sessions:"
	defaultSessionTTL  = 24 * time.Hour

	userLocal      = "user"
	sessionIDLocal = "session_id"
)

var ErrInvalidSession = errors.New("invalid session token")

// SessionUser is the record stored in Redis under session:<sid> and placed in Locals as "user".
// The role comes from this server-side record, never from the client.
type SessionUser struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// SessionStore keeps sessions in Redis. Clients hold an HS256 token whose "sid" claim names
// the Redis record; each user's session ids are also tracked in user_sessions:<user_id> so all
// of them can be revoked at once.
type SessionStore struct {
	Rdb               *redis.Client
	Secret            []byte
	TTL               time.Duration
	AllowCrossSiteDev bool
	IsProduction      bool
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (s *SessionStore) ttl() time.Duration {
	if s.TTL <= 0 {
		return defaultSessionTTL
	}
	return s.TTL
}

// Create stores a new session for user and returns its signed token and id.
func (s *SessionStore) Create(ctx context.Context, user SessionUser) (string, string, error) {
	sid := uuid.New().String()
	b, err := json.Marshal(user)
	if err != nil {
		return "", "", err
	}
	setKey := userSessionsPrefix + strconv.FormatUint(uint64(user.UserID), 10)
	pipe := s.Rdb.TxPipeline()
	pipe.Set(ctx, SessionRedisPrefix+sid, b, s.ttl())
	pipe.SAdd(ctx, setKey, sid)
	pipe.Expire(ctx, setKey, s.ttl())
	if _, err := pipe.Exec(ctx); err != nil {
		return "", "", fmt.Errorf("store session: %w", err)
	}

	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.UserID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl())),
		},
	}).SignedString(s.Secret)
	if err != nil {
		return "", "", err
	}
	return token, sid, nil
}

// Load verifies token and returns the session it names. A missing or expired Redis record is
// ErrInvalidSession.
func (s *SessionStore) Load(ctx context.Context, token string) (*SessionUser, string, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || claims.SessionID == "" {
		return nil, "", ErrInvalidSession
	}
	b, err := s.Rdb.Get(ctx, SessionRedisPrefix+claims.SessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, "", ErrInvalidSession
	}
	if err != nil {
		return nil, "", err
	}
	var user SessionUser
	if err := json.Unmarshal(b, &user); err != nil {
		return nil, "", ErrInvalidSession
	}
	return &user, claims.SessionID, nil
}

// Destroy deletes one session.
func (s *SessionStore) Destroy(ctx context.Context, sid string, userID uint) error {
	pipe := s.Rdb.TxPipeline()
	pipe.Del(ctx, SessionRedisPrefix+sid)
	pipe.SRem(ctx, userSessionsPrefix+strconv.FormatUint(uint64(userID), 10), sid)
	_, err := pipe.Exec(ctx)
	return err
}

// DestroyUser deletes every session of a user.
func (s *SessionStore) DestroyUser(ctx context.Context, userID uint) error {
	setKey := userSessionsPrefix + strconv.FormatUint(uint64(userID), 10)
	sids, err := s.Rdb.SMembers(ctx, setKey).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(sids)+1)
	for _, sid := range sids {
		keys = append(keys, SessionRedisPrefix+sid)
	}
	keys = append(keys, setKey)
	return s.Rdb.Del(ctx, keys...).Err()
}

// Session loads the session named by the cookie or a Bearer token. Requests without a valid
// session continue anonymously; RequireAuth rejects them where needed.
func (s *SessionStore) Session() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := sessionToken(c)
		if token == "" {
			return c.Next()
		}
		user, sid, err := s.Load(c.UserContext(), token)
		if err != nil {
			if !errors.Is(err, ErrInvalidSession) {
				log.Error().Err(err).Msg("session lookup failed")
			}
			return c.Next()
		}
		c.Locals(userLocal, user)
		c.Locals(sessionIDLocal, sid)
		return c.Next()
	}
}

func sessionToken(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return c.Cookies(SessionCookieName)
}

// GetUser returns the session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) *SessionUser {
	u, _ := c.Locals(userLocal).(*SessionUser)
	return u
}

// SetUser places user in Locals. Tests and login use it.
func SetUser(c *fiber.Ctx, user *SessionUser) {
	c.Locals(userLocal, user)
}

// GetSessionID returns the current session ID from context (for logout).
func GetSessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(sessionIDLocal).(string)
	return sid
}

// Cookie returns the session cookie carrying token. An empty token with MaxAge -1 clears it.
func (s *SessionStore) Cookie(token string) *fiber.Cookie {
	sameSite := fiber.CookieSameSiteLaxMode
	if s.AllowCrossSiteDev {
		sameSite = fiber.CookieSameSiteNoneMode
	}
	maxAge := int(s.ttl().Seconds())
	if token == "" {
		maxAge = -1
	}
	return &fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HTTPOnly: true,
		Secure:   s.IsProduction || s.AllowCrossSiteDev,
		SameSite: sameSite,
	}
}
