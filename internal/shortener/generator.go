package shortener

import (
	"fmt"
	"net/url"

	"github.com/jaevor/go-nanoid"
)

// CodeLength is the default number of characters in a generated short code.
const CodeLength = 6

// Alphabet lists the characters a generated code is drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// CodeGenerator returns a new random short code on every call. It does not check
// whether the code is already in use.
type CodeGenerator func() string

// NewCodeGenerator returns a generator of uniformly random codes of the given length
// drawn from Alphabet.
func NewCodeGenerator(length int) (CodeGenerator, error) {
	gen, err := nanoid.Standard(length)
	if err != nil {
		return nil, fmt.Errorf("code generator: %w", err)
	}

	return gen, nil
}

// ValidateURL checks that rawURL is a well-formed absolute URL with a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("%w: empty", ErrInvalidURL)
	}

	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: %q is not absolute", ErrInvalidURL, rawURL)
	}

	return nil
}
