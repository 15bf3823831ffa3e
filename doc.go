// Package pagepdf validates page-layout documents and renders them to
// print-ready PDF using headless Chrome.
//
// # Quick Start
//
// Decode a document, export it, and close the exporter when done:
//
//	exp := pagepdf.New()
//	defer exp.Close()
//
//	res, err := exp.Export(ctx, doc, pagepdf.TargetHardcopy, pagepdf.DefaultSettings(), "")
//	var blocked *pagepdf.BlockedError
//	if errors.As(err, &blocked) {
//	    // show blocked.Result.BlockingIssues to the user
//	}
//	os.WriteFile("book.pdf", res.PDF, 0o644)
//
// # Validation
//
// Two independent passes check a document. The structural validator
// rejects malformed contracts (unknown node types, broken draw orders,
// missing image sources); its errors make a document unrenderable. The
// target rules check print safety for DIGITAL or HARDCOPY output: on
// HARDCOPY, nodes outside the trim box, text outside the safe area and
// images far below the minimum resolution block the export. DIGITAL
// exports are never blocked.
//
// ValidateOnly runs both passes without starting a browser, for preflight
// panels in editors. Findings are returned as data, never as errors.
//
// # Rendering
//
// Render and Export build one HTML document per call, open it in a new tab
// of a shared Chrome process, wait for the network to go quiet and print.
// The paper size comes from the first page: A4 and US_LETTER use the named
// formats, book presets explicit inches. Text that probably overflows its
// box is reported as a warning of the result.
//
// There is no timeout at this layer: cancel ctx to abandon a render. Use
// WithMaxTabs to bound the number of concurrent tabs.
//
// # Geometry
//
// Editors can share the renderer's math: NormalizeCrop and SerializeCrop
// read and write crop state of any editor version, ImagePresentation gives
// the object-position and scale the PDF uses, and BuildPageBoxModel the
// trim, bleed and safe boxes of a page. FlattenPage lists a page in paint
// order.
//
// # Caching
//
// Pass the export hash of a document (see ExportHash) as the fingerprint
// and configure WithCache: unchanged documents are then served from the
// cache without a browser.
//
// # Browser Requirements
//
// PDF generation requires Chrome/Chromium. The go-rod library downloads a
// managed Chromium on first run (~/.cache/rod/browser/) unless
// ROD_BROWSER_BIN names a binary. On AWS Lambda, Vercel, Netlify and Cloud
// Run the Chromium at PAGEPDF_SERVERLESS_CHROME (default /opt/chromium) is
// used; when it is missing the local browser is tried, except with
// PAGEPDF_ENV=production where the render fails.
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox.
package pagepdf
