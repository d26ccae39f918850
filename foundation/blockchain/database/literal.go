package database

import (
	"fmt"
	"strconv"
	"strings"
)

// Delimiter literals of the wire format.
const (
	TxBegin    = "----CEROCOIN_TRANSACTION_BEGIN"
	TxEnd      = "CEROCOIN_TRANSACTION_END----"
	CoinBegin  = "CEROCOIN_BEGIN"
	CoinEnd    = "CEROCOIN_END"
	BlockBegin = "CEROCOIN_BLOCK_BEGIN"
	BlockEnd   = "CEROCOIN_BLOCK_END"
)

var delimiters = map[string]bool{
	TxBegin:    true,
	TxEnd:      true,
	CoinBegin:  true,
	CoinEnd:    true,
	BlockBegin: true,
	BlockEnd:   true,
}

// ValidateShape checks that every token of the literal is either a KEY=VALUE
// pair or a known delimiter.
func ValidateShape(literal string) error {
	tokens := strings.Fields(literal)
	if len(tokens) == 0 {
		return fmt.Errorf("empty literal: %w", ErrMalformed)
	}

	for _, tok := range tokens {
		if delimiters[tok] {
			continue
		}

		key, _, found := strings.Cut(tok, "=")
		if !found || key == "" {
			return fmt.Errorf("token %.32q: %w", tok, ErrMalformed)
		}
	}

	return nil
}

// =============================================================================

// fieldSet holds the KEY=VALUE tokens of one literal segment.
type fieldSet map[string]string

// parseFields builds the field set for the tokens, skipping delimiters.
// A key appearing twice in one segment is rejected.
func parseFields(tokens []string) (fieldSet, error) {
	fs := make(fieldSet, len(tokens))
	for _, tok := range tokens {
		if delimiters[tok] {
			continue
		}

		key, value, found := strings.Cut(tok, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("token %.32q: %w", tok, ErrMalformed)
		}

		if _, exists := fs[key]; exists {
			return nil, fmt.Errorf("duplicate key %s: %w", key, ErrMalformed)
		}
		fs[key] = value
	}

	return fs, nil
}

// str returns the value for the key or records the missing key.
func (fs fieldSet) str(key string) (string, error) {
	v, exists := fs[key]
	if !exists {
		return "", fmt.Errorf("missing %s: %w", key, ErrMalformed)
	}
	return v, nil
}

// integer returns the value for the key as an integer.
func (fs fieldSet) integer(key string) (int, error) {
	v, err := fs.str(key)
	if err != nil {
		return 0, err
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%.16q not an integer: %w", key, v, ErrMalformed)
	}
	return n, nil
}

// strs fetches a list of keys in one pass.
func (fs fieldSet) strs(keys ...string) ([]string, error) {
	vals := make([]string, len(keys))
	for i, key := range keys {
		v, err := fs.str(key)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// segment returns the tokens between the begin and end delimiters and
// the tokens outside of them.
func segment(tokens []string, begin string, end string) (inner []string, outer []string, err error) {
	b, e := -1, -1
	for i, tok := range tokens {
		switch tok {
		case begin:
			if b != -1 {
				return nil, nil, fmt.Errorf("nested %s: %w", begin, ErrMalformed)
			}
			b = i
		case end:
			e = i
		}
	}

	if b == -1 || e == -1 || e < b {
		return nil, nil, fmt.Errorf("missing %s/%s: %w", begin, end, ErrMalformed)
	}

	outer = append(outer, tokens[:b]...)
	outer = append(outer, tokens[e+1:]...)

	return tokens[b : e+1], outer, nil
}

// wrapped validates the literal starts and ends with the delimiters.
func wrapped(tokens []string, begin string, end string) error {
	if len(tokens) < 2 || tokens[0] != begin || tokens[len(tokens)-1] != end {
		return fmt.Errorf("expecting %s ... %s: %w", begin, end, ErrMalformed)
	}
	return nil
}
