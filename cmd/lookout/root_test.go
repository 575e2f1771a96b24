package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoProcessor struct {
	seen []string
}

func (e *echoProcessor) Process(_ context.Context, query string) string {
	e.seen = append(e.seen, query)
	return "answer to " + query
}

func TestRunQueries_Format(t *testing.T) {
	var buf bytes.Buffer
	p := &echoProcessor{}

	runQueries(context.Background(), &buf, p, []string{"Say hello"})

	want := "\nQuery: Say hello\n" +
		strings.Repeat("-", 50) + "\n" +
		"answer to Say hello\n" +
		strings.Repeat("=", 50) + "\n"
	assert.Equal(t, want, buf.String())
}

func TestRunQueries_Order(t *testing.T) {
	var buf bytes.Buffer
	p := &echoProcessor{}

	runQueries(context.Background(), &buf, p, exampleQueries)

	assert.Equal(t, exampleQueries, p.seen)
	assert.Equal(t, len(exampleQueries), strings.Count(buf.String(), "\nQuery: "))
}

func TestRunQueries_StopsWhenCancelled(t *testing.T) {
	var buf bytes.Buffer
	p := &echoProcessor{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runQueries(ctx, &buf, p, []string{"a", "b"})

	assert.Empty(t, p.seen)
	assert.Empty(t, buf.String())
}

func TestRootCommand_MissingAPIKey(t *testing.T) {
	for _, key := range []string{"LOOKOUT_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("LOOKOUT_HOME", t.TempDir())

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"Say hello"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
	assert.Empty(t, out.String())
}
