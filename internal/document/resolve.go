package document

import (
	"context"
	"net/url"
	"strings"
)

// AssetResolver looks up resolved asset metadata by id. Implementations sit
// in front of the storage backend; the library only reads from them.
type AssetResolver interface {
	ResolveAsset(ctx context.Context, id string) (Asset, bool, error)
}

// ResolveAssets returns a copy of doc whose asset list also contains every
// asset referenced by an image or frame node that the resolver knows about.
// Assets already present in the document are kept as they are.
func ResolveAssets(ctx context.Context, doc Document, r AssetResolver) (Document, error) {
	if r == nil {
		return doc, nil
	}
	known := doc.AssetIndex()
	assets := append([]Asset(nil), doc.Assets...)

	for _, n := range doc.Nodes {
		if n.Type != NodeImage && n.Type != NodeFrame {
			continue
		}
		id := n.Content.AssetID
		if id == "" {
			continue
		}
		if _, ok := known[id]; ok {
			continue
		}
		a, ok, err := r.ResolveAsset(ctx, id)
		if err != nil {
			return Document{}, err
		}
		if !ok {
			continue
		}
		a.ID = id
		known[id] = a
		assets = append(assets, a)
	}

	doc.Assets = assets
	return doc, nil
}

// ResolveImageURL returns the URL an image or frame node should display:
// the referenced asset's source URL first, then the node's direct URL.
// Only http, https, data and file URLs are usable.
func ResolveImageURL(n Node, assets map[string]Asset) (string, bool) {
	if n.Content.AssetID != "" {
		if a, ok := assets[n.Content.AssetID]; ok && IsUsableURL(a.SourceURL) {
			return a.SourceURL, true
		}
	}
	if IsUsableURL(n.Content.URL) {
		return n.Content.URL, true
	}
	return "", false
}

// ImageAsset returns the asset referenced by n, if any.
func ImageAsset(n Node, assets map[string]Asset) (Asset, bool) {
	if n.Content.AssetID == "" {
		return Asset{}, false
	}
	a, ok := assets[n.Content.AssetID]
	return a, ok
}

// IsUsableURL reports whether raw is a URL the renderer can load.
func IsUsableURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.Host != ""
	case "data":
		return strings.HasPrefix(strings.ToLower(raw), "data:image/")
	case "file":
		return u.Path != ""
	}
	return false
}
