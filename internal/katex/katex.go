// Package katex typesets TeX into HTML by running the KaTeX library inside an
// embedded JavaScript runtime.
//
// An Engine is safe for concurrent use; calls are serialised on one runtime.
package katex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dop251/goja"
)

// ErrColor is the color KaTeX uses for unparsable input, and the color of the
// fallback span used when the engine itself fails.
const ErrColor = "#cc0000"

// Sentinel errors.
var (
	ErrLoad     = errors.New("loading katex")
	ErrTypeset  = errors.New("typesetting failed")
	ErrCanceled = errors.New("typesetting canceled")
)

// Engine holds a runtime with KaTeX loaded.
type Engine struct {
	mu     sync.Mutex
	vm     *goja.Runtime
	render goja.Callable
}

// Load reads a KaTeX build (katex.min.js) from path and evaluates it.
func Load(path string) (*Engine, error) {
	src, err := os.ReadFile(path) // #nosec G304 -- path comes from the asset locator
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	return New(path, string(src))
}

// New evaluates script, which must define a global "katex" object with a
// renderToString(tex, options) function. name is used in stack traces.
func New(name, script string) (*Engine, error) {
	vm := goja.New()
	if _, err := vm.RunScript(name, script); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	lib := vm.Get("katex")
	if lib == nil || goja.IsUndefined(lib) || goja.IsNull(lib) {
		return nil, fmt.Errorf("%w: script does not define katex", ErrLoad)
	}
	render, ok := goja.AssertFunction(lib.ToObject(vm).Get("renderToString"))
	if !ok {
		return nil, fmt.Errorf("%w: katex.renderToString is not a function", ErrLoad)
	}

	return &Engine{vm: vm, render: render}, nil
}

// Typeset renders tex in inline or display mode. Parse errors in tex do not
// fail: KaTeX renders them as an error span in ErrColor. An error is returned
// only when the engine itself throws or ctx ends.
func (e *Engine) Typeset(ctx context.Context, tex string, display bool) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCanceled, err)
	}
	interrupted := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		e.vm.Interrupt(ctx.Err())
		close(interrupted)
	})
	defer func() {
		// A callback already started must land its Interrupt before the
		// flag is cleared, or the next call inherits it.
		if !stop() {
			<-interrupted
		}
		e.vm.ClearInterrupt()
	}()

	opts := e.vm.NewObject()
	_ = opts.Set("displayMode", display)
	_ = opts.Set("throwOnError", false)
	_ = opts.Set("errorColor", ErrColor)
	_ = opts.Set("output", "htmlAndMathml")

	out, err := e.render(goja.Undefined(), e.vm.ToValue(tex), opts)
	if err != nil {
		var ierr *goja.InterruptedError
		if errors.As(err, &ierr) {
			return "", fmt.Errorf("%w: %v", ErrCanceled, ierr.Value())
		}
		return "", fmt.Errorf("%w: %v", ErrTypeset, err)
	}
	return out.String(), nil
}
