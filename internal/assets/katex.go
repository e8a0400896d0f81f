package assets

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alnah/go-mdprint/internal/fileutil"
)

// Files a KaTeX distribution directory must hold.
const (
	KaTeXStylesheet = "katex.min.css"
	KaTeXScript     = "katex.min.js"
)

// KaTeXDirEnv names the environment variable consulted by KaTeXCandidates.
const KaTeXDirEnv = "MDPRINT_KATEX_DIR"

// KaTeXDist is a located KaTeX distribution.
type KaTeXDist struct {
	Dir        string // absolute
	Stylesheet string // Dir/katex.min.css
	Script     string // Dir/katex.min.js
}

// LocationError lists the directories searched for a KaTeX distribution.
type LocationError struct {
	Searched []string
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("%v: no %s/%s found in %d locations", ErrAssetResolution, KaTeXStylesheet, KaTeXScript, len(e.Searched))
}

func (e *LocationError) Unwrap() error { return ErrAssetResolution }

// KaTeXCandidates returns the directories searched for KaTeX, in order: the
// explicit directory, $MDPRINT_KATEX_DIR, node_modules under each base
// directory, then common global install prefixes. Empty entries are skipped.
func KaTeXCandidates(explicit string, baseDirs ...string) []string {
	var dirs []string
	add := func(d string) {
		if d != "" {
			dirs = append(dirs, d)
		}
	}

	add(explicit)
	add(os.Getenv(KaTeXDirEnv))
	for _, base := range baseDirs {
		if base != "" {
			add(filepath.Join(base, "node_modules", "katex", "dist"))
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		add(filepath.Join(home, ".npm-global", "lib", "node_modules", "katex", "dist"))
	}
	add("/usr/local/lib/node_modules/katex/dist")
	add("/usr/lib/node_modules/katex/dist")
	add("/opt/homebrew/lib/node_modules/katex/dist")
	return dirs
}

// LocateKaTeX returns the first candidate directory that holds both the
// KaTeX stylesheet and script. An explicit directory that does not qualify
// is still an error only if no later candidate qualifies.
func LocateKaTeX(candidates ...string) (*KaTeXDist, error) {
	searched := make([]string, 0, len(candidates))
	for _, dir := range candidates {
		abs, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		searched = append(searched, abs)
		if !fileutil.DirExists(abs) {
			continue
		}

		css := filepath.Join(abs, KaTeXStylesheet)
		js := filepath.Join(abs, KaTeXScript)
		if fileutil.FileExists(css) && fileutil.FileExists(js) {
			return &KaTeXDist{Dir: abs, Stylesheet: css, Script: js}, nil
		}
	}
	return nil, &LocationError{Searched: searched}
}
