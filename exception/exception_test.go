package exception

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecover(t *testing.T) {
	assert.NoError(t, Recover("ok", func() error { return nil }))

	sentinel := errors.New("boom")
	assert.ErrorIs(t, Recover("err", func() error { return sentinel }), sentinel)

	err := Recover("panic", func() error { panic("kaboom") })
	assert.ErrorContains(t, err, "panic in panic: kaboom")
}

func TestSafeGo(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(2)
	SafeGo("panics", func() {
		defer wg.Done()
		panic("ignored")
	})
	ran := false
	SafeGo("runs", func() {
		defer wg.Done()
		ran = true
	})
	wg.Wait()
	assert.True(t, ran)
}
