package fingerprint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/alnah/go-pagepdf/internal/document"
)

// fields is a JSON object whose values are decoded lazily by the first
// matching key among several historical spellings.
type fields map[string]json.RawMessage

func (f fields) str(dst *string, keys ...string) error {
	for _, k := range keys {
		raw, ok := f[k]
		if !ok || isNull(raw) {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("%s: %v", k, err)
		}
		return nil
	}
	return nil
}

// integer accepts JSON numbers with an integral value.
func (f fields) integer(dst *int, keys ...string) error {
	for _, k := range keys {
		raw, ok := f[k]
		if !ok || isNull(raw) {
			continue
		}
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("%s: %v", k, err)
		}
		if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
			return fmt.Errorf("%s: %v is not an integer", k, v)
		}
		*dst = int(v)
		return nil
	}
	return nil
}

func (f fields) list(keys ...string) json.RawMessage {
	for _, k := range keys {
		if raw, ok := f[k]; ok && !isNull(raw) {
			return raw
		}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// UnmarshalJSON accepts camelCase and snake_case field names.
func (in *Input) UnmarshalJSON(data []byte) error {
	var f fields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}

	var out Input
	var target string
	for _, err := range []error{
		f.str(&out.StorybookID, "storybookId", "storybook_id"),
		f.str(&out.StorybookUpdatedAt, "storybookUpdatedAt", "storybook_updated_at"),
		f.str(&target, "exportTarget", "export_target"),
	} {
		if err != nil {
			return err
		}
	}
	out.ExportTarget = document.Target(target)

	if raw := f.list("pages"); raw != nil {
		if err := json.Unmarshal(raw, &out.Pages); err != nil {
			return fmt.Errorf("pages: %w", err)
		}
	}
	if raw := f.list("frames"); raw != nil {
		if err := json.Unmarshal(raw, &out.Frames); err != nil {
			return fmt.Errorf("frames: %w", err)
		}
	}

	*in = out
	return nil
}

// UnmarshalJSON accepts camelCase and snake_case field names.
func (p *PageRef) UnmarshalJSON(data []byte) error {
	var f fields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}

	var out PageRef
	for _, err := range []error{
		f.str(&out.ID, "id"),
		f.integer(&out.OrderIndex, "orderIndex", "order_index"),
		f.integer(&out.Version, "version"),
		f.str(&out.UpdatedAt, "updatedAt", "updated_at"),
	} {
		if err != nil {
			return err
		}
	}
	*p = out
	return nil
}

// UnmarshalJSON accepts camelCase and snake_case field names.
func (fr *FrameRef) UnmarshalJSON(data []byte) error {
	var f fields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}

	var out FrameRef
	for _, err := range []error{
		f.str(&out.ID, "id"),
		f.integer(&out.Version, "version"),
		f.str(&out.UpdatedAt, "updatedAt", "updated_at"),
	} {
		if err != nil {
			return err
		}
	}
	*fr = out
	return nil
}
