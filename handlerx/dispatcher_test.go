package handlerx

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abraxas-365/exceptionx/errx"
	"github.com/Abraxas-365/exceptionx/hostx"
)

var (
	kindBase    = errx.NewKind("Base", errx.KindException)
	kindDerived = errx.NewKind("Derived", kindBase)
	kindSibling = errx.NewKind("Sibling", errx.KindException)
)

type kindedError struct{ kind *errx.Kind }

func (e kindedError) Error() string     { return e.kind.Name() }
func (e kindedError) Kind() *errx.Kind { return e.kind }

// invoke runs the matched handler and returns what it wrote
func invoke(t *testing.T, d *Dispatcher, err error) (string, bool) {
	t.Helper()
	h, ok := d.Handler(err)
	if !ok {
		return "", false
	}
	rec := hostx.NewRecorder(context.Background(), "/test")
	h(err, rec)
	return string(rec.Body()), true
}

func marker(name string) Handler {
	return func(_ error, host hostx.Host) {
		host.Status(http.StatusTeapot)
		host.(*hostx.Recorder).Write([]byte(name))
	}
}

func TestDispatcher_MostSpecificWins(t *testing.T) {
	d := NewDispatcher()
	d.Register(kindBase, marker("base"))
	d.Register(kindDerived, marker("derived"))

	got, ok := invoke(t, d, kindedError{kindDerived})
	require.True(t, ok)
	assert.Equal(t, "derived", got)

	got, ok = invoke(t, d, kindedError{kindBase})
	require.True(t, ok)
	assert.Equal(t, "base", got)
}

func TestDispatcher_DerivedFallsBackToAncestor(t *testing.T) {
	d := NewDispatcher()
	d.Register(kindBase, marker("base"))

	got, ok := invoke(t, d, fmt.Errorf("wrapped: %w", kindedError{kindDerived}))
	require.True(t, ok)
	assert.Equal(t, "base", got)
}

func TestDispatcher_SiblingMatchesNeither(t *testing.T) {
	d := NewDispatcher()
	d.Register(kindBase, marker("base"))
	d.Register(kindDerived, marker("derived"))

	_, ok := d.Handler(kindedError{kindSibling})
	assert.False(t, ok)
}

func TestDispatcher_CatchAll(t *testing.T) {
	d := NewDispatcher()
	d.Register(errx.KindError, marker("all"))
	d.Register(errx.KindHTTP, marker("http"))

	got, _ := invoke(t, d, stderrors.New("plain"))
	assert.Equal(t, "all", got)

	got, _ = invoke(t, d, errx.NewHTTPError("Forbidden", http.StatusForbidden))
	assert.Equal(t, "http", got)

	got, _ = invoke(t, d, kindedError{kindSibling})
	assert.Equal(t, "http", got)
}

func TestDispatcher_NoHandlers(t *testing.T) {
	d := NewDispatcher()
	_, ok := d.Handler(stderrors.New("plain"))
	assert.False(t, ok)

	var nilDispatcher *Dispatcher
	_, ok = nilDispatcher.Handler(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestDispatcher_RegisterReplaces(t *testing.T) {
	d := NewDispatcher()
	d.Register(kindBase, marker("first"))
	d.Register(kindBase, marker("second"))

	got, _ := invoke(t, d, kindedError{kindBase})
	assert.Equal(t, "second", got)
	assert.Equal(t, 1, d.Len())
}

func TestDispatcher_RegisterIgnoresNil(t *testing.T) {
	d := NewDispatcher()
	d.Register(nil, marker("x"))
	d.Register(kindBase, nil)
	assert.Equal(t, 0, d.Len())
}

func TestDispatcher_Unregister(t *testing.T) {
	d := NewDispatcher()
	d.Register(kindBase, marker("base"))
	d.Unregister(kindBase)

	_, ok := d.Handler(kindedError{kindBase})
	assert.False(t, ok)
}

func TestDispatcher_ConcurrentAccess(t *testing.T) {
	d := NewDispatcher()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			d.Register(kindBase, marker("base"))
		}()
		go func() {
			defer wg.Done()
			d.Handler(kindedError{kindDerived})
		}()
	}
	wg.Wait()

	_, ok := d.Handler(kindedError{kindDerived})
	assert.True(t, ok)
}
