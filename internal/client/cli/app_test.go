package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvoronkov/petvault/internal/client/config"
	"github.com/dvoronkov/petvault/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// setupApp wires a real App around a throwaway database with sync disabled.
func setupApp(t *testing.T) *App {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.LocalDBPath = filepath.Join(dir, "test.db")
	cfg.SessionFilePath = filepath.Join(dir, "session.jwt")

	app, err := NewApp(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app
}

// stubInput replaces the interactive prompts: text prompts pop from answers,
// the password prompt always returns pw, and printed output is captured.
func stubInput(t *testing.T, answers []string, pw string) *[]string {
	t.Helper()

	origText, origPass, origPrint := getSimpleText, getPassword, printlnFn
	t.Cleanup(func() {
		getSimpleText, getPassword, printlnFn = origText, origPass, origPrint
	})

	i := 0
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if i >= len(answers) {
			return "", io.EOF
		}
		v := answers[i]
		i++
		return v, nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) {
		return []byte(pw), nil
	}

	var printed []string
	printlnFn = func(args ...any) (int, error) {
		printed = append(printed, fmt.Sprint(args...))
		return 0, nil
	}
	return &printed
}

func TestApp_RegisterLoginAddListDelete(t *testing.T) {
	app := setupApp(t)
	ctx := context.Background()

	stubInput(t, []string{"alice", "alice"}, "secret1")
	require.NoError(t, app.Register(ctx))
	require.NoError(t, app.Login(ctx))
	require.True(t, app.isLoggedIn())
	assert.Equal(t, "(alice local)", app.getStatus())

	// name, species, breed via prompt stubs; age, weight, notes via reader
	stubInput(t, []string{"Rex", "Dog", "Husky"}, "")
	app.reader = bufio.NewReader(strings.NewReader("3\n12.5\ngood boy\n\n"))
	require.NoError(t, app.AddPet(ctx))

	printed := stubInput(t, nil, "")
	require.NoError(t, app.List(ctx))
	require.Len(t, *printed, 1)
	assert.Contains(t, (*printed)[0], "Rex")

	pets, err := app.petService.List(ctx, app.session.UserID)
	require.NoError(t, err)
	require.Len(t, pets, 1)
	assert.Equal(t, "good boy", pets[0].Notes)

	printed = stubInput(t, nil, "")
	require.NoError(t, app.Show(ctx, pets[0].ID))
	assert.Contains(t, (*printed)[0], "Husky")

	require.NoError(t, app.Delete(ctx, pets[0].ID))
	printed = stubInput(t, nil, "")
	require.NoError(t, app.List(ctx))
	assert.Contains(t, (*printed)[0], "No pets yet")
}

func TestApp_LoginWrongPassword(t *testing.T) {
	app := setupApp(t)
	ctx := context.Background()

	stubInput(t, []string{"alice"}, "secret1")
	require.NoError(t, app.Register(ctx))

	printed := stubInput(t, []string{"alice"}, "wrong")
	require.NoError(t, app.Login(ctx))
	assert.False(t, app.isLoggedIn())
	require.NotEmpty(t, *printed)
	assert.Contains(t, (*printed)[len(*printed)-1], "Invalid username or password")
}

func TestApp_CommandsRequireLogin(t *testing.T) {
	app := setupApp(t)
	ctx := context.Background()

	stubInput(t, nil, "")
	assert.ErrorIs(t, app.AddPet(ctx), errNotLoggedIn)
	assert.ErrorIs(t, app.List(ctx), errNotLoggedIn)
	assert.ErrorIs(t, app.Show(ctx, "x"), errNotLoggedIn)
	assert.ErrorIs(t, app.Delete(ctx, "x"), errNotLoggedIn)
}

func TestApp_StatusWithSyncDisabled(t *testing.T) {
	app := setupApp(t)

	printed := stubInput(t, nil, "")
	require.NoError(t, app.Status(context.Background()))
	assert.Contains(t, (*printed)[0], "disabled")
}
