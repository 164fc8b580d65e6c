package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/ride-booking/internal/notify"
)

var (
	// ErrOTPUnavailable means no code store is configured (Redis down).
	ErrOTPUnavailable = errors.New("otp store unavailable")
	// ErrOTPInvalid covers wrong, expired and already used codes.
	ErrOTPInvalid = errors.New("invalid or expired code")
)

// OTPStore keeps hashed codes keyed by phone.
type OTPStore interface {
	Save(ctx context.Context, phone, hash string, ttl time.Duration) error
	Get(ctx context.Context, phone string) (string, error)
	// Delete reports whether a code was removed.
	Delete(ctx context.Context, phone string) (bool, error)
}

// RedisOTPStore stores codes under "<prefix>:<phone>" with a TTL.
type RedisOTPStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisOTPStore(rdb *redis.Client, prefix string) *RedisOTPStore {
	if prefix == "" {
		prefix = "otp"
	}
	return &RedisOTPStore{rdb: rdb, prefix: prefix}
}

func (s *RedisOTPStore) key(phone string) string { return s.prefix + ":" + phone }

func (s *RedisOTPStore) Save(ctx context.Context, phone, hash string, ttl time.Duration) error {
	return s.rdb.Set(ctx, s.key(phone), hash, ttl).Err()
}

func (s *RedisOTPStore) Get(ctx context.Context, phone string) (string, error) {
	v, err := s.rdb.Get(ctx, s.key(phone)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrOTPInvalid
	}
	return v, err
}

func (s *RedisOTPStore) Delete(ctx context.Context, phone string) (bool, error) {
	n, err := s.rdb.Del(ctx, s.key(phone)).Result()
	return n > 0, err
}

// OTPService issues and verifies six digit one-time codes.
type OTPService struct {
	store    OTPStore
	notifier notify.Notifier
	ttl      time.Duration
	generate func() (string, error)
}

// NewOTPService returns a service; store may be nil, in which case every
// call fails with ErrOTPUnavailable.
func NewOTPService(store OTPStore, n notify.Notifier, ttl time.Duration) *OTPService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &OTPService{store: store, notifier: n, ttl: ttl, generate: sixDigits}
}

// OTPRequest describes an issued code.  The code itself is only sent to
// the phone.
type OTPRequest struct {
	Reference string    `json:"reference"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *OTPService) Request(ctx context.Context, phone string) (OTPRequest, error) {
	if s.store == nil {
		return OTPRequest{}, ErrOTPUnavailable
	}
	phone = strings.TrimSpace(phone)
	code, err := s.generate()
	if err != nil {
		return OTPRequest{}, internal("generate otp", err)
	}
	if err := s.store.Save(ctx, phone, hashCode(phone, code), s.ttl); err != nil {
		return OTPRequest{}, internal("store otp", err)
	}
	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(s.ttl.Minutes()))
	if err := s.notifier.Send(ctx, phone, body); err != nil {
		_, _ = s.store.Delete(ctx, phone)
		return OTPRequest{}, internal("send otp", err)
	}
	return OTPRequest{Reference: uuid.NewString(), ExpiresAt: time.Now().UTC().Add(s.ttl)}, nil
}

// Verify checks code for phone.  A matching code is consumed; only one
// concurrent verification can succeed.
func (s *OTPService) Verify(ctx context.Context, phone, code string) error {
	if s.store == nil {
		return ErrOTPUnavailable
	}
	phone = strings.TrimSpace(phone)
	stored, err := s.store.Get(ctx, phone)
	if errors.Is(err, ErrOTPInvalid) {
		return ErrOTPInvalid
	}
	if err != nil {
		return internal("load otp", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(hashCode(phone, strings.TrimSpace(code)))) != 1 {
		return ErrOTPInvalid
	}
	deleted, err := s.store.Delete(ctx, phone)
	if err != nil {
		return internal("consume otp", err)
	}
	if !deleted {
		return ErrOTPInvalid
	}
	return nil
}

func hashCode(phone, code string) string {
	sum := sha256.Sum256([]byte(phone + ":" + code))
	return hex.EncodeToString(sum[:])
}

func sixDigits() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
