package lambda

import (
	"testing"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGetListDeleteFunction(t *testing.T) {
	reg := NewRegistry(identity.New("", ""))
	reg.CreateFunction("hello", "go1.x", "main", "arn:aws:iam::000000000000:role/lambda", "now")

	fn, err := reg.Get("hello")
	require.NoError(t, err)
	assert.Contains(t, fn.ARN, "hello")

	assert.Len(t, reg.List(), 1)

	reg.Delete("hello")
	_, err = reg.Get("hello")
	require.Error(t, err)
	kind, _ := apperr.As(err)
	assert.Equal(t, apperr.NotFound, kind)
}

func TestInvokeStubNeverRunsHandler(t *testing.T) {
	reg := NewRegistry(identity.New("", ""))
	reg.CreateFunction("hello", "go1.x", "main", "role", "now")

	out, err := reg.Invoke("hello")
	require.NoError(t, err)
	assert.Contains(t, string(out), `"statusCode":200`)
}

func TestInvokeMissingFunctionIsNotFound(t *testing.T) {
	reg := NewRegistry(identity.New("", ""))
	_, err := reg.Invoke("missing")
	require.Error(t, err)
}
