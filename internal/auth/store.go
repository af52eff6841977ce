package auth

import (
	"bufio"
	"crypto/subtle"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tgienger/tasktracker/internal/errs"
)

// Store holds registered credentials
type Store interface {
	// Add registers a new user. An existing username is ErrDuplicate.
	Add(username, password string) error
	// Verify checks a username/password pair. A mismatch is ErrAuth.
	Verify(username, password string) error
}

// Hasher turns a password into its stored form and checks it again later
type Hasher interface {
	Hash(password string) (string, error)
	Compare(stored, password string) bool
}

// PlainHasher stores passwords as given and compares them byte for byte.
// It reads credential files written by earlier releases.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) { return password, nil }

func (PlainHasher) Compare(stored, password string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

// BcryptHasher stores salted bcrypt hashes
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: password is longer than 72 bytes", errs.ErrValidation)
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (BcryptHasher) Compare(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

// HasherFor maps the password_hashing setting to a Hasher
func HasherFor(mode string) (Hasher, error) {
	switch strings.ToLower(mode) {
	case "", "plain":
		return PlainHasher{}, nil
	case "bcrypt":
		return BcryptHasher{}, nil
	default:
		return nil, fmt.Errorf("unknown password hashing mode %q", mode)
	}
}

// FileStore keeps credentials in a text file of "username,password" lines.
// The file is read once when the store is opened and only ever appended to.
type FileStore struct {
	path   string
	hasher Hasher
	log    *zap.Logger

	mu    sync.Mutex
	users map[string]string
}

// OpenFileStore loads the credential file at path. A missing file is an
// empty store; it is created on the first registration.
func OpenFileStore(path string, hasher Hasher, log *zap.Logger) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		hasher: hasher,
		log:    log,
		users:  make(map[string]string),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: failed to open credentials: %w", errs.ErrStorage, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		username, password, ok := strings.Cut(line, ",")
		if !ok || username == "" {
			s.log.Warn("skipping malformed credential line", zap.String("path", s.path), zap.Int("line", lineNo))
			continue
		}
		// first registration wins, as with a linear scan of the file
		if _, exists := s.users[username]; !exists {
			s.users[username] = password
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: failed to read credentials: %w", errs.ErrStorage, err)
	}

	s.log.Debug("credentials loaded", zap.String("path", s.path), zap.Int("users", len(s.users)))
	return nil
}

func (s *FileStore) Add(username, password string) error {
	if err := checkCredential(username, password); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[username]; exists {
		return fmt.Errorf("%w: username %q already exists", errs.ErrDuplicate, username)
	}

	stored, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	if err := s.appendLine(username + "," + stored); err != nil {
		return err
	}

	s.users[username] = stored
	return nil
}

func (s *FileStore) Verify(username, password string) error {
	s.mu.Lock()
	stored, ok := s.users[username]
	s.mu.Unlock()

	if !ok || !s.hasher.Compare(stored, password) {
		return fmt.Errorf("%w: invalid username or password", errs.ErrAuth)
	}
	return nil
}

// Len returns the number of registered users
func (s *FileStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *FileStore) appendLine(line string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("%w: failed to create credentials dir: %w", errs.ErrStorage, err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("%w: failed to open credentials: %w", errs.ErrStorage, err)
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("%w: failed to write credentials: %w", errs.ErrStorage, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: failed to write credentials: %w", errs.ErrStorage, err)
	}
	return nil
}

// checkCredential rejects values that cannot round-trip through the file format
func checkCredential(username, password string) error {
	switch {
	case strings.TrimSpace(username) == "":
		return fmt.Errorf("%w: username is required", errs.ErrValidation)
	case password == "":
		return fmt.Errorf("%w: password is required", errs.ErrValidation)
	case strings.ContainsAny(username, ",\r\n"):
		return fmt.Errorf("%w: username may not contain commas or line breaks", errs.ErrValidation)
	case strings.ContainsAny(password, "\r\n"):
		return fmt.Errorf("%w: password may not contain line breaks", errs.ErrValidation)
	case strings.TrimSpace(username) != username, strings.TrimSpace(password) != password:
		// lines are trimmed when the file is loaded
		return fmt.Errorf("%w: username and password may not start or end with spaces", errs.ErrValidation)
	}
	return nil
}
