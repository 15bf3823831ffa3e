// Package fingerprint computes content hashes of documents for caching and
// idempotent exports.
//
// ExportHash covers the identity and version metadata of a storybook, so an
// unchanged document always maps to the same hash whatever the order of its
// pages and frames. Input accepts both the camelCase and the snake_case
// field names written by different generations of the backend.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/alnah/go-pagepdf/internal/document"
)

// HashLength is the number of hex characters kept from the SHA-256 digest.
const HashLength = 32

// ErrInvalidInput is returned when hash input cannot be decoded.
var ErrInvalidInput = errors.New("invalid fingerprint input")

// Input is the data covered by ExportHash.
type Input struct {
	StorybookID        string          `json:"storybookId"`
	StorybookUpdatedAt string          `json:"storybookUpdatedAt"`
	ExportTarget       document.Target `json:"exportTarget"`
	Pages              []PageRef       `json:"pages"`
	Frames             []FrameRef      `json:"frames"`
}

// PageRef identifies one version of a page.
type PageRef struct {
	ID         string `json:"id"`
	OrderIndex int    `json:"orderIndex"`
	Version    int    `json:"version"`
	UpdatedAt  string `json:"updatedAt"`
}

// FrameRef identifies one version of a frame.
type FrameRef struct {
	ID        string `json:"id"`
	Version   int    `json:"version"`
	UpdatedAt string `json:"updatedAt"`
}

// ExportHash returns the truncated SHA-256 of the canonical form of in.
func ExportHash(in Input) string {
	return digest(canonical(in))
}

// FromLegacy builds hash input from a legacy contract for target.
func FromLegacy(c document.LegacyContract, target document.Target) Input {
	in := Input{
		StorybookID:        c.StorybookID,
		StorybookUpdatedAt: c.StorybookUpdatedAt,
		ExportTarget:       target,
		Pages:              make([]PageRef, 0, len(c.Pages)),
		Frames:             make([]FrameRef, 0, len(c.Frames)),
	}
	for _, p := range c.Pages {
		in.Pages = append(in.Pages, PageRef{ID: p.ID, OrderIndex: p.OrderIndex, Version: p.Version, UpdatedAt: p.UpdatedAt})
	}
	for _, f := range c.Frames {
		in.Frames = append(in.Frames, FrameRef{ID: f.ID, Version: f.Version, UpdatedAt: f.UpdatedAt})
	}
	return in
}

// DocumentDigest hashes the full canonical JSON of a renderable document
// and target. It serves callers that have no version metadata.
func DocumentDigest(doc document.Document, target document.Target) (string, error) {
	doc.ExportTarget = target
	doc.Pages = append([]document.Page(nil), doc.Pages...)
	doc.Nodes = append([]document.Node(nil), doc.Nodes...)
	doc.Assets = append([]document.Asset(nil), doc.Assets...)

	sort.SliceStable(doc.Pages, func(i, j int) bool {
		if doc.Pages[i].OrderIndex != doc.Pages[j].OrderIndex {
			return doc.Pages[i].OrderIndex < doc.Pages[j].OrderIndex
		}
		return doc.Pages[i].ID < doc.Pages[j].ID
	})
	sort.SliceStable(doc.Nodes, func(i, j int) bool { return doc.Nodes[i].ID < doc.Nodes[j].ID })
	sort.SliceStable(doc.Assets, func(i, j int) bool { return doc.Assets[i].ID < doc.Assets[j].ID })

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return digest(data), nil
}

// Parse decodes hash input from JSON in either naming convention.
func Parse(data []byte) (Input, error) {
	var in Input
	if err := json.Unmarshal(data, &in); err != nil {
		return Input{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return in, nil
}

// canonical returns the JSON of in with pages sorted by (orderIndex, id) and
// frames by id. Struct field order makes the encoding stable.
func canonical(in Input) []byte {
	pages := append([]PageRef(nil), in.Pages...)
	frames := append([]FrameRef(nil), in.Frames...)

	sort.SliceStable(pages, func(i, j int) bool {
		a, b := pages[i], pages[j]
		if a.OrderIndex != b.OrderIndex {
			return a.OrderIndex < b.OrderIndex
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		if a.Version != b.Version {
			return a.Version < b.Version
		}
		return a.UpdatedAt < b.UpdatedAt
	})
	sort.SliceStable(frames, func(i, j int) bool {
		if frames[i].ID != frames[j].ID {
			return frames[i].ID < frames[j].ID
		}
		if frames[i].Version != frames[j].Version {
			return frames[i].Version < frames[j].Version
		}
		return frames[i].UpdatedAt < frames[j].UpdatedAt
	})
	if pages == nil {
		pages = []PageRef{}
	}
	if frames == nil {
		frames = []FrameRef{}
	}

	in.Pages = pages
	in.Frames = frames
	// Only strings and ints: Marshal cannot fail.
	data, _ := json.Marshal(in)
	return data
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:HashLength]
}
