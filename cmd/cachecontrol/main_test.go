package main

import (
	"bytes"
	"testing"

	transformer "github.com/always-cache/cachecontrol/pkg/response-transformer"
	"github.com/always-cache/cachecontrol/rfc9111"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestBuildResponse(t *testing.T) {
	rules := transformer.Rules{
		{Prefix: "/static/", Override: "public, max-age=600"},
		{Default: "no-cache"},
	}

	d, err := buildResponse("", rules, "GET", "/static/app.js", []string{"immutable", "stale-while-revalidate=30"}, []string{"public"})
	require.NoError(t, err)
	require.Equal(t, "max-age=600, immutable, stale-while-revalidate=30", d.ToHeader())

	d, err = buildResponse("private", rules, "GET", "/", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "private", d.ToHeader())

	d, err = buildResponse("", rules, "GET", "/", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "no-cache", d.ToHeader())
}

func TestBuildResponseInvalidSet(t *testing.T) {
	_, err := buildResponse("", nil, "GET", "/", []string{"max-age=soon"}, nil)
	require.True(t, errors.Is(err, rfc9111.ErrInvalidArgument))
}

func TestDescribe(t *testing.T) {
	var out bytes.Buffer
	describeRequest(&out, rfc9111.ParseRequest([]string{"max-age=5, max-stale"}))
	require.Equal(t, "Request: max-age=5, max-stale\n"+
		"  max-age = 5 (int)\n"+
		"  max-stale\n"+
		"  max age: 5s\n"+
		"  max stale: *\n", out.String())
}
