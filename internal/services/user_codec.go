package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/charlesng35/lazyload/internal/models"
)

// UserCodec converts users to and from the cache payload format.
type UserCodec interface {
	Encode(user *models.User) ([]byte, error)
	Decode(payload []byte) (*models.User, error)
}

// JSONUserCodec encodes users as {"id":<int>,"name":"<string>"}.
type JSONUserCodec struct{}

type userPayload struct {
	ID   *int64  `json:"id"`
	Name *string `json:"name"`
}

// Encode serialises the user. A nil user or a name that is not valid UTF-8 is an error,
// since JSON would replace the invalid bytes and Decode could not return the same user.
func (JSONUserCodec) Encode(user *models.User) ([]byte, error) {
	if user == nil {
		return nil, errors.New("user codec: cannot encode nil user")
	}
	if !utf8.ValidString(user.Name) {
		return nil, fmt.Errorf("user codec: encode user %d: name is not valid UTF-8", user.ID)
	}
	payload, err := json.Marshal(userPayload{ID: &user.ID, Name: &user.Name})
	if err != nil {
		return nil, fmt.Errorf("user codec: encode: %w", err)
	}
	return payload, nil
}

// Decode parses a payload produced by Encode. Malformed JSON, trailing data and missing
// fields are reported as ErrUserPayloadInvalid.
func (JSONUserCodec) Decode(payload []byte) (*models.User, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))

	var decoded userPayload
	if err := dec.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserPayloadInvalid, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after object", ErrUserPayloadInvalid)
	}
	if decoded.ID == nil {
		return nil, fmt.Errorf("%w: missing id", ErrUserPayloadInvalid)
	}
	if decoded.Name == nil {
		return nil, fmt.Errorf("%w: missing name", ErrUserPayloadInvalid)
	}

	return &models.User{ID: *decoded.ID, Name: *decoded.Name}, nil
}
