package apikeys

import (
	"errors"
	"strings"
)

// Wire format: csk_<prefix>.<secret>. The prefix is public and indexes the
// stored record; the secret never appears anywhere but the issued string.
const keyLabel = "csk"

var ErrInvalidFormat = errors.New("invalid api key format")

func Format(prefix, secret string) string {
	return keyLabel + "_" + prefix + "." + secret
}

func Parse(raw string) (prefix, secret string, err error) {
	if strings.TrimSpace(raw) == "" {
		return "", "", ErrInvalidFormat
	}

	dot := strings.Index(raw, ".")
	if dot <= 0 || dot >= len(raw)-1 {
		return "", "", ErrInvalidFormat
	}

	prefixPart := raw[:dot]
	secretPart := raw[dot+1:]

	expected := keyLabel + "_"
	if !strings.HasPrefix(prefixPart, expected) {
		return "", "", ErrInvalidFormat
	}

	prefix = prefixPart[len(expected):]
	if strings.TrimSpace(prefix) == "" || strings.TrimSpace(secretPart) == "" {
		return "", "", ErrInvalidFormat
	}

	return prefix, secretPart, nil
}
