// Package secrets generates the credentials a run writes into generated files.
// Each named secret is drawn once and reused, so every file that mentions it and
// the final summary agree on the value.
package secrets

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// DefaultLength is the length of generated passwords.
const DefaultLength = 16

// Secret is a generated value and the label shown next to it in summaries.
type Secret struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Value string `json:"-"`
}

// Store memoizes secrets by name for the lifetime of one run.
type Store struct {
	mu      sync.Mutex
	rand    io.Reader
	secrets map[string]*Secret
	order   []string
}

// NewStore creates a Store reading entropy from r. A nil reader uses crypto/rand.
func NewStore(r io.Reader) *Store {
	if r == nil {
		r = rand.Reader
	}

	return &Store{
		rand:    r,
		secrets: make(map[string]*Secret),
	}
}

// Alphanumeric returns the secret registered under name, generating an
// n-character alphanumeric value on first use.
func (s *Store) Alphanumeric(name, label string, n int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sec, ok := s.secrets[name]; ok {
		return sec.Value, nil
	}

	if n <= 0 {
		return "", errors.New("secret length must be positive")
	}

	value, err := s.draw(n)
	if err != nil {
		return "", fmt.Errorf("generating secret %s: %w", name, err)
	}

	s.secrets[name] = &Secret{Name: name, Label: label, Value: value}
	s.order = append(s.order, name)

	return value, nil
}

// Reuse registers value under name unless a secret of that name already
// exists. Later calls to Alphanumeric return it instead of drawing a new one.
func (s *Store) Reuse(name, label, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.secrets[name]; ok {
		return
	}

	s.secrets[name] = &Secret{Name: name, Label: label, Value: value}
	s.order = append(s.order, name)
}

// Get returns a previously generated secret.
func (s *Store) Get(name string) (Secret, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sec, ok := s.secrets[name]
	if !ok {
		return Secret{}, false
	}

	return *sec, true
}

// All returns generated secrets in generation order.
func (s *Store) All() []Secret {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Secret, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, *s.secrets[name])
	}

	return out
}

// draw uses rejection sampling so every character is equally likely.
func (s *Store) draw(n int) (string, error) {
	const limit = 256 - (256 % len(alphanumeric))

	out := make([]byte, 0, n)
	buf := make([]byte, n)

	for len(out) < n {
		if _, err := io.ReadFull(s.rand, buf); err != nil {
			return "", err
		}

		for _, b := range buf {
			if int(b) >= limit {
				continue
			}

			out = append(out, alphanumeric[int(b)%len(alphanumeric)])
			if len(out) == n {
				break
			}
		}
	}

	return string(out), nil
}
