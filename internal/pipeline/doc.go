// Package pipeline turns Markdown into a self-contained HTML document ready
// to be loaded by a browser.
//
// The stages are:
//   - Preprocess: BOM removal and line ending normalization
//   - Renderer: Markdown to an HTML body fragment via goldmark, with math
//     spans typeset server-side and diagram fences passed through raw
//   - RewriteImagePaths: relative image sources to absolute file:// URLs
//   - Assembler: title, stylesheets, print layout, diagram runtime and body
//     in one document, plus the number of diagram placeholders it holds
//
// Waiting for diagrams and printing are handled by internal/render.
package pipeline
