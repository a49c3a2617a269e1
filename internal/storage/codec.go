package storage

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	apperrors "github.com/skanerxe/nutrition-helper/internal/errors"
)

// MarshalDocument encodes a whole-document value as the JSON stored remotely.
// Indented output keeps the repository contents diffable.
func MarshalDocument(v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return data, nil
}

// UnmarshalDocument decodes stored document bytes into v. A failure here is
// fatal for the read; partial data is never substituted.
func UnmarshalDocument(name string, data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return apperrors.NewDecodeError(err, name)
	}
	return nil
}

// encodeContent wraps document bytes in the transport's content encoding
func encodeContent(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// decodeContent unwraps the transport's content encoding. The contents API
// inserts newlines into long payloads, so whitespace is stripped first.
func decodeContent(name, content string) ([]byte, error) {
	compact := strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, content)

	data, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return nil, apperrors.NewDecodeError(err, name)
	}
	return data, nil
}
