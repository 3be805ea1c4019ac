// internal/models/audio.go
package models

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotDataURI     = errors.New("not a data URI")
	ErrNotBase64      = errors.New("data URI is not base64 encoded")
	ErrNotAudio       = errors.New("data URI is not audio")
	ErrEmptyAudio     = errors.New("audio clip is empty")
	ErrAudioTooLarge  = errors.New("audio clip exceeds size limit")
	ErrInvalidPayload = errors.New("invalid base64 payload")
)

// AudioClip is a decoded data:<mime>;base64,<data> URI.
type AudioClip struct {
	MIMEType string
	Data     []byte
}

// ParseDataURI decodes an audio data URI. maxBytes <= 0 disables the size check.
func ParseDataURI(uri string, maxBytes int) (*AudioClip, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "data:")
	if !ok {
		return nil, ErrNotDataURI
	}
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, ErrNotDataURI
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return nil, ErrNotBase64
	}
	// parameters such as ;codecs=opus stay on the mime type
	if !strings.HasPrefix(strings.ToLower(mime), "audio/") {
		return nil, fmt.Errorf("%w: %q", ErrNotAudio, mime)
	}
	if maxBytes > 0 && base64.StdEncoding.DecodedLen(len(encoded)) > maxBytes+2 {
		return nil, ErrAudioTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyAudio
	}
	if maxBytes > 0 && len(data) > maxBytes {
		return nil, ErrAudioTooLarge
	}
	return &AudioClip{MIMEType: mime, Data: data}, nil
}

// DataURI re-encodes the clip.
func (c *AudioClip) DataURI() string {
	return "data:" + c.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(c.Data)
}

// Hash is the hex sha256 of the clip bytes. It keys the intent cache.
func (c *AudioClip) Hash() string {
	sum := sha256.Sum256(c.Data)
	return hex.EncodeToString(sum[:])
}
