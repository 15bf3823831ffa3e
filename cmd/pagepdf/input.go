package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	pagepdf "github.com/alnah/go-pagepdf"
	"github.com/alnah/go-pagepdf/internal/document"
)

// stdinName is the argument that selects stdin explicitly.
const stdinName = "-"

// readInput reads the file named by args[0], or stdin when there is no
// argument or it is "-". The returned name is "" for stdin.
func (a *app) readInput(args []string) (data []byte, name string, err error) {
	if len(args) == 0 || args[0] == stdinName {
		data, err = io.ReadAll(io.LimitReader(a.env.Stdin, int64(document.MaxDocumentSize)+1))
		if err != nil {
			return nil, "", fmt.Errorf("%w: stdin: %v", ErrReadInput, err)
		}
		return data, "", nil
	}

	name = args[0]
	data, err = os.ReadFile(name) // #nosec G304 -- input path is user-provided
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	return data, name, nil
}

// readDocument reads and decodes a document in either contract.
func (a *app) readDocument(ctx context.Context, args []string) (document.Decoded, string, error) {
	data, name, err := a.readInput(args)
	if err != nil {
		return document.Decoded{}, "", err
	}
	decoded, err := document.Decode(data)
	if err != nil {
		return document.Decoded{}, "", err
	}
	if decoded.Legacy != nil {
		loggerFromContext(ctx).Debug("legacy contract converted", "pages", len(decoded.Document.Pages), "nodes", len(decoded.Document.Nodes))
	}
	return decoded, name, nil
}

// defaultOutputPath derives the PDF path from the input path.
func defaultOutputPath(input string) string {
	if input == "" {
		return "document.pdf"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".pdf"
}

// assetManifest is an AssetResolver backed by a JSON array of assets.
type assetManifest map[string]pagepdf.Asset

var _ pagepdf.AssetResolver = assetManifest(nil)

// loadAssetManifest reads a JSON array of assets, keyed by id.
func loadAssetManifest(path string) (assetManifest, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- manifest path is user-provided
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssets, err)
	}
	var list []pagepdf.Asset
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrAssets, path, err)
	}
	m := make(assetManifest, len(list))
	for _, as := range list {
		if as.ID == "" {
			return nil, fmt.Errorf("%w: %s: asset without id", ErrAssets, path)
		}
		m[as.ID] = as
	}
	return m, nil
}

// ResolveAsset implements pagepdf.AssetResolver.
func (m assetManifest) ResolveAsset(_ context.Context, id string) (pagepdf.Asset, bool, error) {
	as, ok := m[id]
	return as, ok, nil
}
