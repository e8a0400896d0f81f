// Package render drives a loaded document from navigation to a paginated
// capture.
//
// The Orchestrator is a small state machine:
//
//	Loading -> NetworkIdle -> AwaitingDiagrams -> Settling -> ReadyToCapture
//	                      \________________________/
//	                        (no diagrams: skip polling)
//
// Any non-terminal state may move to Failed when its bound elapses. Diagram
// completion is observed by polling the live document: the diagram runtime
// replaces each placeholder's text with an <svg> only once it has finished,
// and nothing else about its progress is visible from outside the page.
//
// The Exporter prints the ready page to PDF with fixed A4 geometry and a
// "page / total" footer.
//
// Both work against the Page and Browser interfaces so the state machine can
// be tested with fakes and short timings; the go-rod implementation lives in
// the root package.
package render
