package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"p2p-wallet/config"

	"golang.org/x/crypto/argon2"
)

const (
	argon2KeyLen  = 32
	argon2SaltLen = 16
)

// ErrMalformedHash is returned by Verify when a stored password hash cannot
// be decoded. It never means the password was wrong.
var ErrMalformedHash = errors.New("malformed password hash")

// Argon2Params tunes the cost of new hashes. Verification always uses the
// parameters recorded in the stored hash.
type Argon2Params struct {
	Memory  uint32 // KiB
	Time    uint32
	Threads uint8
}

// DefaultArgon2Params returns 64 MiB, one pass, four lanes.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{Memory: 64 * 1024, Time: 1, Threads: 4}
}

// Argon2ParamsFromConfig fills unset fields with the defaults.
func Argon2ParamsFromConfig(cfg config.PasswordConfig) Argon2Params {
	p := DefaultArgon2Params()
	if cfg.MemoryKiB > 0 {
		p.Memory = cfg.MemoryKiB
	}
	if cfg.Iterations > 0 {
		p.Time = cfg.Iterations
	}
	if cfg.Parallelism > 0 {
		p.Threads = cfg.Parallelism
	}
	return p
}

// Argon2HashService implements ports.HashService for user passwords.
type Argon2HashService struct {
	params Argon2Params
}

func NewArgon2HashService(params Argon2Params) *Argon2HashService {
	return &Argon2HashService{params: params}
}

// Hash returns $argon2id$v=19$m=<mem>,t=<time>,p=<threads>$<salt>$<key>.
func (s *Argon2HashService) Hash(password string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	p := s.params
	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, argon2KeyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password produces the stored key.
func (s *Argon2HashService) Verify(password string, encoded string) (bool, error) {
	stored, err := parseStoredHash(encoded)
	if err != nil {
		return false, err
	}

	p := stored.params
	key := argon2.IDKey([]byte(password), stored.salt, p.Time, p.Memory, p.Threads, uint32(len(stored.key)))

	return subtle.ConstantTimeCompare(stored.key, key) == 1, nil
}

type storedHash struct {
	params Argon2Params
	salt   []byte
	key    []byte
}

func parseStoredHash(encoded string) (*storedHash, error) {
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" {
		return nil, fmt.Errorf("%w: expected 6 fields, got %d", ErrMalformedHash, len(fields))
	}
	if fields[1] != "argon2id" {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrMalformedHash, fields[1])
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil {
		return nil, fmt.Errorf("%w: version: %v", ErrMalformedHash, err)
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedHash, version)
	}

	var h storedHash
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &h.params.Memory, &h.params.Time, &h.params.Threads); err != nil {
		return nil, fmt.Errorf("%w: params: %v", ErrMalformedHash, err)
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(fields[4]); err != nil {
		return nil, fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(fields[5]); err != nil {
		return nil, fmt.Errorf("%w: key: %v", ErrMalformedHash, err)
	}
	if len(h.key) == 0 {
		return nil, fmt.Errorf("%w: empty key", ErrMalformedHash)
	}
	return &h, nil
}
