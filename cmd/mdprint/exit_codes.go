package main

import (
	"errors"
	"os"

	mdprint "github.com/alnah/go-mdprint"
	"github.com/alnah/go-mdprint/internal/assets"
	"github.com/alnah/go-mdprint/internal/config"
	"github.com/alnah/go-mdprint/internal/hints"
)

// Exit codes for the mdprint CLI. Every failure exits 1, whether it is a
// malformed invocation, a bad config file or a conversion error.
const (
	ExitSuccess = 0 // Successful conversion
	ExitFailure = 1 // Any failure
)

// exitCodeFor returns the exit code for err. Usage errors are told apart by
// the usage text printed alongside, not by the code.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	return ExitFailure
}

// hintFor returns a remediation hint for known failure kinds, or "".
func hintFor(err error) string {
	var locErr *assets.LocationError
	var cfgErr *config.NotFoundError

	switch {
	case errors.As(err, &locErr):
		return hints.ForKaTeXNotFound(locErr.Searched)
	case errors.As(err, &cfgErr):
		return hints.ForConfigNotFound(cfgErr.Tried)
	case errors.Is(err, mdprint.ErrNavigationTimeout):
		return hints.ForNavigationTimeout()
	case errors.Is(err, mdprint.ErrDiagramRenderTimeout):
		return hints.ForDiagramTimeout()
	case errors.Is(err, mdprint.ErrBrowserLaunch):
		return hints.ForBrowserLaunch(err.Error())
	case errors.Is(err, mdprint.ErrWriteTransient),
		errors.Is(err, mdprint.ErrCaptureFailure) && (errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission)):
		return hints.ForOutputDirectory()
	case errors.Is(err, mdprint.ErrNavigation) && hints.MatchesBrowserDependency(err.Error()):
		return hints.ForBrowserLaunch(err.Error())
	}
	return ""
}
