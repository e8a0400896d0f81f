// Package mdprint converts Markdown documents with math and diagrams to PDF
// using headless Chrome.
//
// # Quick Start
//
//	conv, err := mdprint.NewConverter()
//	if err != nil {
//	    log.Fatal(err) // KaTeX not found, see Asset Requirements
//	}
//
//	result, err := conv.ConvertFile(ctx, "notes.md", "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.OutputPath, result.Pages)
//
// # Conversion Pipeline
//
//  1. Markdown preprocessing (BOM removal, line ending normalization)
//  2. Markdown to HTML via Goldmark (GFM, footnotes, math, diagram fences)
//  3. Math typesetting with KaTeX, run in-process
//  4. Document assembly (theme, KaTeX stylesheet, print layout, Mermaid)
//  5. Load in headless Chrome, wait for network idle and for every diagram
//  6. Print to A4 PDF with a "page / total" footer
//
// A render document (<output>.tmp.render.html) exists next to the output
// while a conversion runs. It is removed on every path unless WithKeepHTML
// is set.
//
// # Configuration
//
//	conv, err := mdprint.NewConverter(
//	    mdprint.WithLogger(slog.Default()),
//	    mdprint.WithKaTeXDir("/opt/katex/dist"),
//	    mdprint.WithHighlighting("github"),
//	    mdprint.WithRenderConfig(mdprint.DefaultRenderConfig()),
//	)
//
// # Asset Requirements
//
// Math needs a local KaTeX distribution (npm install katex). It is searched
// in the WithKaTeXDir directory, $MDPRINT_KATEX_DIR, node_modules/katex/dist
// under the WithSearchDirs directories, then global npm prefixes. Mermaid is
// loaded from a CDN and is the only network access.
//
// # Browser Requirements
//
// PDF generation requires Chrome/Chromium. The go-rod library automatically
// downloads a managed Chromium instance on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=true to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary.
package mdprint
