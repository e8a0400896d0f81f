// Package assets supplies the static inputs of an assembled document: the
// theme stylesheet, the document template, and the math stylesheet taken
// from a local KaTeX distribution.
//
// # Loaders
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - styles/print.css and templates/document.html (go:embed)
//	    ├── FilesystemLoader  - {basePath}/styles/{name}.css, {basePath}/templates/{name}.html
//	    └── AssetResolver     - custom directory first, embedded fallback
//
// # Math stylesheet
//
// LocateKaTeX finds a KaTeX "dist" directory. LoadStyleBundle reads its
// katex.min.css and Rewrite turns every relative url() reference into an
// absolute file:// URL rooted at that directory, so the stylesheet can be
// inlined into a document that lives anywhere on disk and still load its
// fonts.
//
// # Security
//
// Asset names are validated to prevent path traversal. FilesystemLoader
// resolves symlinks and verifies paths stay within basePath.
package assets
