package stacktrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalFrames(t *testing.T) {
	stack := []byte(`goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/gotwofa/internal/pkg/stacktrace.helper()
	/src/gotwofa/internal/pkg/stacktrace/helper.go:10 +0x1d
github.com/shandysiswandi/gotwofa/internal/twofa/usecase.(*Usecase).Login(...)
	/src/gotwofa/internal/twofa/usecase/login.go:42 +0x1d
github.com/shandysiswandi/gotwofa/internal/twofa/usecase.(*Usecase).Login(...)
	/src/gotwofa/internal/twofa/usecase/login.go:42 +0x1d
github.com/shandysiswandi/gotwofa/internal/pkg/router.(*Router).endpoint.func1()
	/src/gotwofa/internal/pkg/router/router.go:163
net/http.HandlerFunc.ServeHTTP(...)
	/usr/local/go/src/net/http/server.go:2220 +0x29
`)

	got := InternalFrames(stack)

	assert.Equal(t, []string{
		"internal/twofa/usecase/login.go:42",
		"internal/pkg/router/router.go:163",
	}, got)
}

func TestInternalFrames_NoInternal(t *testing.T) {
	assert.Empty(t, InternalFrames([]byte("goroutine 1 [running]:\nmain.main()\n\t/src/main.go:5 +0x1\n")))
}
