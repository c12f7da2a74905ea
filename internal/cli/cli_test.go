package cli

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/fastygo/todoclient/domain"
	"github.com/fastygo/todoclient/internal/config"
	"github.com/fastygo/todoclient/internal/dialog"
	"github.com/fastygo/todoclient/internal/sandbox"
)

type env struct {
	cfg *config.Config
	ln  *fasthttputil.InmemoryListener
}

func newEnv(t *testing.T) *env {
	t.Helper()

	srv := sandbox.New(config.SandboxConfig{JWTSecret: "cli-secret", TokenTTL: time.Hour}, nil)
	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	return &env{
		ln: ln,
		cfg: &config.Config{
			AppName: "todoctl",
			API:     config.APIConfig{BaseURL: "http://sandbox.test", RequestTimeout: 5 * time.Second},
			Session: config.SessionConfig{
				Backend: config.SessionBackendBolt,
				Path:    filepath.Join(t.TempDir(), "session.db"),
			},
			Refresh: config.RefreshConfig{Interval: time.Second, MonitorInterval: time.Second},
			Context: config.ContextConfig{ShutdownTimeout: 2 * time.Second},
			Logger:  config.LoggerConfig{Level: "error", Encoding: "console"},
		},
	}
}

// run executes one todoctl invocation with a fresh App, the way separate
// processes would share only the session file.
func (e *env) run(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()

	app := &App{
		LoadConfig: func() (*config.Config, error) {
			cfg := *e.cfg
			return &cfg, nil
		},
		Dial: func(string) (net.Conn, error) { return e.ln.Dial() },
	}
	cmd := NewRootCmd(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	require.NoError(t, app.Close(context.Background()))
	return out.String(), err
}

func TestHelpListsCommands(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "", "--help")
	require.NoError(t, err)
	for _, name := range []string{"login", "register", "list", "add", "done", "rm", "categories", "watch", "sandbox"} {
		assert.Contains(t, out, name)
	}
}

func TestIconsNeedsNoSession(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "", "icons")
	require.NoError(t, err)
	assert.Contains(t, out, domain.DefaultIcon)
}

func TestSessionFlow(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "", "list")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))

	out, err := e.run(t, "", "register", "alice", "-p", "wonderland")
	require.NoError(t, err)
	assert.Contains(t, out, "todoctl login alice")

	out, err = e.run(t, "wonderland\n", "login", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as")
	assert.Contains(t, out, "alice")

	out, err = e.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Equal(t, "alice\n", out)

	out, err = e.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "logged in as alice")

	out, err = e.run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out alice")

	_, err = e.run(t, "", "whoami")
	require.Error(t, err)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "", "register", "bob", "-p", "builder")
	require.NoError(t, err)
	_, err = e.run(t, "", "login", "bob", "-p", "wrong")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))

	_, err = e.run(t, "", "whoami")
	require.Error(t, err)
}

func TestTodoCommands(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "", "register", "alice", "-p", "wonderland")
	require.NoError(t, err)
	_, err = e.run(t, "", "login", "alice", "-p", "wonderland")
	require.NoError(t, err)

	out, err := e.run(t, "", "categories", "add", "Errands", "--icon", "shop")
	require.NoError(t, err)
	assert.Contains(t, out, "Errands")

	_, err = e.run(t, "", "categories", "add", "Misc", "--icon", "nope")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	out, err = e.run(t, "", "add", "Buy", "milk", "--category", "errands", "--priority", "high")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "HIGH")
	assert.Contains(t, out, "Errands")

	_, err = e.run(t, "", "add", "Write report", "--due", "2024-06-01")
	require.NoError(t, err)

	_, err = e.run(t, "", "add", "Bad date", "--due", "tomorrow")
	require.Error(t, err)

	out, err = e.run(t, "", "list", "--priority", "high")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy milk")
	assert.NotContains(t, out, "Write report")

	out, err = e.run(t, "", "done", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "[x]")

	out, err = e.run(t, "", "edit", "2", "--title", "Write summary", "--priority", "medium")
	require.NoError(t, err)
	assert.Contains(t, out, "Write summary")
	assert.Contains(t, out, "MEDIUM")

	out, err = e.run(t, "n\n", "rm", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Delete todo")
	assert.Contains(t, out, "Cancelled")

	out, err = e.run(t, "y\n", "rm", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 1")

	_, err = e.run(t, "", "done", "1")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	out, err = e.run(t, "", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "Buy milk")
	assert.Contains(t, out, "Write summary")
}

func TestRejectedSessionLogsOut(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "", "register", "alice", "-p", "wonderland")
	require.NoError(t, err)
	_, err = e.run(t, "", "login", "alice", "-p", "wonderland")
	require.NoError(t, err)

	// a fresh sandbox accepts the token signature but no longer knows the account
	other := newEnv(t)
	other.cfg.Session.Path = e.cfg.Session.Path

	out, err := other.run(t, "", "list")
	require.Error(t, err)
	assert.Contains(t, out, "Session expired")

	_, err = e.run(t, "", "whoami")
	require.Error(t, err)
}

func TestIsYes(t *testing.T) {
	for _, in := range []string{"y", "Y", " yes ", "YES\r"} {
		assert.True(t, isYes(in), in)
	}
	for _, in := range []string{"", "n", "no", "yep"} {
		assert.False(t, isYes(in), in)
	}
}

func TestHTMLToText(t *testing.T) {
	got := htmlToText("<p>Delete <b>Buy milk</b>?</p><ul><li>one</li><li>two</li></ul><script>alert(1)</script>line<br>break")
	assert.Equal(t, "Delete Buy milk?\n- one\n- two\nline\nbreak", got)
}

func TestRenderDialog(t *testing.T) {
	confirm := renderDialog(dialog.State{
		Title:       "Delete todo",
		Content:     "<p>Sure?</p>",
		HTML:        true,
		ConfirmText: "Delete",
		CancelText:  dialog.DefaultCancelText,
		Mode:        dialog.ModeConfirm,
		IsOpen:      true,
	})
	assert.Contains(t, confirm, "Sure?")
	assert.NotContains(t, confirm, "<p>")
	assert.Contains(t, confirm, "[y] Delete")
	assert.Contains(t, confirm, "[n] Cancel")

	alert := renderDialog(dialog.State{
		Title:       "Saved",
		Content:     "All good",
		ConfirmText: dialog.AlertConfirmText,
		Mode:        dialog.ModeAlert,
		IsOpen:      true,
	})
	assert.Contains(t, alert, "[y] Got it")
	assert.NotContains(t, alert, "[n]")
}
