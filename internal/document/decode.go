package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// MaxDocumentSize limits decoded JSON input (default 32MB).
var MaxDocumentSize = 32 << 20

// Sentinel errors for decoding.
var (
	ErrEmptyDocument    = errors.New("document is empty")
	ErrDocumentTooLarge = errors.New("document exceeds maximum size")
	ErrDocumentParse    = errors.New("failed to parse document")
)

// Decoded is the result of Decode. Legacy is set when the input used the
// frame-based contract; Document is always the renderable form.
type Decoded struct {
	Document Document
	Legacy   *LegacyContract
}

// Decode parses either a renderable document or a legacy contract. Input with
// a "frames" array and no "renderVersion" is treated as legacy and converted
// through ToRenderable.
func Decode(data []byte) (Decoded, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Decoded{}, ErrEmptyDocument
	}
	if len(data) > MaxDocumentSize {
		return Decoded{}, fmt.Errorf("%w: %d bytes (max %d)", ErrDocumentTooLarge, len(data), MaxDocumentSize)
	}

	var probe struct {
		RenderVersion *int            `json:"renderVersion"`
		Frames        json.RawMessage `json:"frames"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Decoded{}, fmt.Errorf("%w: %v", ErrDocumentParse, err)
	}

	if probe.RenderVersion == nil && len(probe.Frames) > 0 {
		var legacy LegacyContract
		if err := json.Unmarshal(data, &legacy); err != nil {
			return Decoded{}, fmt.Errorf("%w: legacy contract: %v", ErrDocumentParse, err)
		}
		return Decoded{Document: ToRenderable(legacy), Legacy: &legacy}, nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Decoded{}, fmt.Errorf("%w: %v", ErrDocumentParse, err)
	}
	return Decoded{Document: doc}, nil
}
