// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/herder-tui/internal/config"
	"github.com/jeranaias/herder-tui/internal/gateway"
	"github.com/jeranaias/herder-tui/internal/render"
	"github.com/jeranaias/herder-tui/internal/ui/styles"
)

// =============================================================================
// ARG PARSER TESTS
// =============================================================================

func TestArgParser(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantSub  string
		validate func(*testing.T, *ArgParser)
	}{
		{
			name:    "simple subcommand",
			args:    []string{"show"},
			wantSub: "show",
		},
		{
			name:    "flag with value",
			args:    []string{"--limit", "5"},
			wantSub: "",
			validate: func(t *testing.T, p *ArgParser) {
				assert.Equal(t, "5", p.Flag("--limit"))
				assert.Empty(t, p.Positional(0))
			},
		},
		{
			name:    "flag with equals",
			args:    []string{"get", "--limit=7", "server.url"},
			wantSub: "get",
			validate: func(t *testing.T, p *ArgParser) {
				assert.Equal(t, "7", p.Flag("limit"))
				assert.Equal(t, "server.url", p.Positional(1))
				assert.Empty(t, p.Positional(2))
			},
		},
		{
			name:    "boolean flag",
			args:    []string{"init", "--force"},
			wantSub: "init",
			validate: func(t *testing.T, p *ArgParser) {
				assert.True(t, p.BoolFlag("force"))
				assert.True(t, p.HasFlag("--force"))
			},
		},
		{
			name:    "explicit false",
			args:    []string{"--force=false"},
			wantSub: "",
			validate: func(t *testing.T, p *ArgParser) {
				assert.False(t, p.BoolFlag("force"))
				assert.True(t, p.HasFlag("force"))
			},
		},
		{
			name:    "switch swallows next word",
			args:    []string{"--force", "show"},
			wantSub: "",
			validate: func(t *testing.T, p *ArgParser) {
				assert.True(t, p.BoolFlag("force"))
				assert.False(t, p.HasFlag("missing"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewArgParser(tt.args)
			assert.Equal(t, tt.wantSub, p.Subcommand())
			if tt.validate != nil {
				tt.validate(t, p)
			}
		})
	}
}

func TestParsePositiveInt(t *testing.T) {
	n, err := ParsePositiveInt("12", "--limit")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	for _, in := range []string{"", "x", "0", "-3"} {
		_, err := ParsePositiveInt(in, "--limit")
		assert.Error(t, err, "input %q", in)
	}
}

// =============================================================================
// PARSE TESTS
// =============================================================================

func TestParse_Commands(t *testing.T) {
	tests := []struct {
		argv []string
		want Command
	}{
		{nil, CmdTUI},
		{[]string{"tui"}, CmdTUI},
		{[]string{"status"}, CmdStatus},
		{[]string{"s"}, CmdStatus},
		{[]string{"HISTORY"}, CmdHistory},
		{[]string{"config", "path"}, CmdConfig},
		{[]string{"version"}, CmdVersion},
		{[]string{"--version"}, CmdVersion},
		{[]string{"help"}, CmdHelp},
		{[]string{"-h"}, CmdHelp},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.argv), func(t *testing.T) {
			cmd, _, err := Parse(tt.argv)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd)
		})
	}
}

func TestParse_GlobalFlagsAnywhere(t *testing.T) {
	cmd, args, err := Parse([]string{"--url", "http://h:1", "status", "--json", "--token=abc", "-v", "--config", "/tmp/c.toml"})
	require.NoError(t, err)

	assert.Equal(t, CmdStatus, cmd)
	assert.Equal(t, "http://h:1", args.URL)
	assert.Equal(t, "abc", args.Token)
	assert.Equal(t, "/tmp/c.toml", args.ConfigPath)
	assert.True(t, args.JSON)
	assert.True(t, args.Verbose)
	assert.Empty(t, args.Raw)
}

func TestParse_History(t *testing.T) {
	_, args, err := Parse([]string{"history", "--limit", "10"})
	require.NoError(t, err)
	assert.Equal(t, 10, args.Limit)

	_, args, err = Parse([]string{"history"})
	require.NoError(t, err)
	assert.Equal(t, 0, args.Limit)

	for _, bad := range [][]string{
		{"history", "--limit", "0"},
		{"history", "--limit"},
		{"history", "--limit", "ten"},
	} {
		_, _, err := Parse(bad)
		assert.Equal(t, ExitUsageError, GetExitCode(err), "args %v", bad)
	}
}

func TestParse_Config(t *testing.T) {
	cmd, args, err := Parse([]string{"config", "get", "server.url"})
	require.NoError(t, err)
	assert.Equal(t, CmdConfig, cmd)
	assert.Equal(t, "get", args.Subcommand)
	assert.Equal(t, "server.url", args.ConfigKey)

	_, args, err = Parse([]string{"config", "init", "--force"})
	require.NoError(t, err)
	assert.Equal(t, "init", args.Subcommand)
	assert.True(t, args.Force)
}

func TestParse_Errors(t *testing.T) {
	_, _, err := Parse([]string{"frobnicate"})
	var usage *UsageError
	require.ErrorAs(t, err, &usage)
	assert.Equal(t, "frobnicate", usage.Arg)

	_, _, err = Parse([]string{"status", "--url"})
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestArgs_ApplyTo(t *testing.T) {
	cfg := config.Default()
	err := Args{URL: "https://herder.example.com/", Token: "t0k", Verbose: true}.ApplyTo(cfg)
	require.NoError(t, err)

	assert.Equal(t, "https://herder.example.com", cfg.Server.URL)
	assert.Equal(t, "t0k", cfg.Server.Token)
	assert.Equal(t, "debug", cfg.Log.Level)

	err = Args{URL: "ftp://nope"}.ApplyTo(config.Default())
	assert.Equal(t, ExitConfigError, GetExitCode(err))
}

// =============================================================================
// EXIT CODE TESTS
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", NewUsageError("x", "bad"), ExitUsageError},
		{"config", fmt.Errorf("load: %w", config.ValidateErrors{{Field: "ui.theme", Message: "bad"}}), ExitConfigError},
		{"transport", &gateway.Error{Kind: gateway.KindTransport, Cause: errors.New("refused")}, ExitNetworkError},
		{"unauthorized", &gateway.Error{Kind: gateway.KindRejected, Status: 401}, ExitAuthError},
		{"forbidden", &gateway.Error{Kind: gateway.KindRejected, Status: 403}, ExitAuthError},
		{"rejected", &gateway.Error{Kind: gateway.KindRejected, Status: 500}, ExitServerError},
		{"malformed", gateway.Malformed("nodes", "not an object", nil), ExitServerError},
		{"timeout", &gateway.Error{Kind: gateway.KindTransport, Cause: context.DeadlineExceeded}, ExitTimeoutError},
		{"other", errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestDisplayError(t *testing.T) {
	var buf bytes.Buffer
	DisplayError(&buf, "status", &gateway.Error{Kind: gateway.KindRejected, Status: 400, Detail: "bad node"}, false)
	assert.Contains(t, buf.String(), "bad node")

	buf.Reset()
	DisplayError(&buf, "status", errors.New("boom"), true)
	var resp JSONResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "boom", *resp.Error)
	assert.Equal(t, "status", resp.Command)
}

// =============================================================================
// STATUS / HISTORY TESTS
// =============================================================================

type fakeGateway struct {
	nodes    string
	prompts  string
	history  string
	nodesErr error
}

func (f *fakeGateway) Nodes(ctx context.Context) ([]byte, error) {
	if f.nodesErr != nil {
		return nil, f.nodesErr
	}
	return []byte(f.nodes), nil
}

func (f *fakeGateway) Prompts(ctx context.Context) ([]byte, error) {
	return []byte(f.prompts), nil
}

func (f *fakeGateway) History(ctx context.Context) ([]byte, error) {
	return []byte(f.history), nil
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		nodes: `{"node-a": {"models": [{"option": "llama3", "selected": true}, {"option": "phi"}], "worker_started": true},
		         "node-b": {"models": [{"option": "mistral", "selected": true}]}}`,
		prompts: `{
			"prompt_options": [{"prompt": "short", "name": "Keep it short"}, {"prompt": "sum", "name": "Summarize"}],
			"full_prompts": {"sum": {"variables": [{"text": ""}], "allowed": false}}
		}`,
		history: `[
			{"id": "1", "node_key": "node-a", "prompt_key": "short", "infer_input": "first question", "elapsed_seconds": 1},
			{"id": "2", "node_key": "node-a", "prompt_key": "short", "infer_input": "second question", "elapsed_seconds": 2},
			{"id": "3", "node_key": "node-b", "prompt_key": "sum", "infer_input": "third question", "elapsed_seconds": 3, "score": 4}
		]`,
	}
}

func TestFetchStatus(t *testing.T) {
	data, err := FetchStatus(context.Background(), newFakeGateway(), "http://h:1")
	require.NoError(t, err)

	require.Len(t, data.Nodes, 2)
	assert.Equal(t, "node-a", data.Nodes[0].NodeID)
	assert.Equal(t, "llama3", data.Nodes[0].Model)
	assert.Equal(t, []string{"llama3", "phi"}, data.Nodes[0].Models)
	assert.True(t, data.Nodes[0].WorkerStarted)
	assert.Equal(t, "mistral", data.Nodes[1].Model)
	assert.False(t, data.Nodes[1].WorkerStarted)

	require.Len(t, data.Prompts, 2)
	assert.True(t, data.Prompts[0].Allowed)
	assert.False(t, data.Prompts[1].Allowed)
	assert.Equal(t, []string{"text"}, data.Prompts[1].Variables)
}

func TestFetchStatus_Error(t *testing.T) {
	gw := newFakeGateway()
	gw.nodesErr = &gateway.Error{Kind: gateway.KindTransport, Cause: errors.New("refused")}

	_, err := FetchStatus(context.Background(), gw, "http://h:1")
	assert.ErrorIs(t, err, gateway.ErrTransport)
}

func TestHandleStatus_OfflineNodeReportedAlongsideOthers(t *testing.T) {
	gw := newFakeGateway()
	gw.nodes = `{"node-a": {"models": [{"option": "llama3", "selected": true}]},
	             "node-b": {"models": [{"option": "offline?"}]}}`

	data, err := FetchStatus(context.Background(), gw, "http://h:1")
	require.NoError(t, err)
	require.Len(t, data.Nodes, 2)
	assert.Equal(t, "llama3", data.Nodes[0].Model)
	assert.Empty(t, data.Nodes[0].Error)
	assert.Empty(t, data.Nodes[1].Model)
	assert.Equal(t, []string{"offline?"}, data.Nodes[1].Models)
	assert.Contains(t, data.Nodes[1].Error, "expected exactly one selected model")

	var buf bytes.Buffer
	require.NoError(t, HandleStatus(context.Background(), gw, "http://h:1", Args{}, &buf))
	out := buf.String()
	assert.Contains(t, out, "llama3")
	assert.Contains(t, out, "unavailable: ")
}

func TestHandleStatus_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HandleStatus(context.Background(), newFakeGateway(), "http://h:1", Args{}, &buf))

	out := buf.String()
	assert.Contains(t, out, "Nodes (2)")
	assert.Contains(t, out, "workers running")
	assert.Contains(t, out, "workers stopped")
	assert.Contains(t, out, "available: llama3, phi")
	assert.Contains(t, out, "[disabled]")
}

func TestHandleStatus_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HandleStatus(context.Background(), newFakeGateway(), "http://h:1", Args{JSON: true}, &buf))

	var resp struct {
		Success bool       `json:"success"`
		Data    StatusData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "http://h:1", resp.Data.Server)
	assert.Len(t, resp.Data.Nodes, 2)
}

func newTestEngine(t *testing.T) *render.Engine {
	t.Helper()
	e, err := render.New(render.Options{Theme: styles.NewThemeNamed("plain")})
	require.NoError(t, err)
	return e
}

func TestHandleHistory(t *testing.T) {
	var buf bytes.Buffer
	err := HandleHistory(context.Background(), newFakeGateway(), newTestEngine(t), Args{Limit: 2}, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "first question")
	assert.Contains(t, out, "second question")
	assert.NotContains(t, out, "third question")
}

func TestHandleHistory_JSON(t *testing.T) {
	var buf bytes.Buffer
	err := HandleHistory(context.Background(), newFakeGateway(), newTestEngine(t), Args{JSON: true}, &buf)
	require.NoError(t, err)

	var resp struct {
		Data []HistoryEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.Len(t, resp.Data, 3)
	assert.Equal(t, "third question", resp.Data[2].InferInput)
	assert.Equal(t, 4, resp.Data[2].Score)
	assert.Equal(t, "3.0", resp.Data[2].Elapsed)
}

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestHandleConfig_InitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "herder", "config.toml")
	args := Args{ConfigPath: path, Subcommand: "init"}

	var buf bytes.Buffer
	require.NoError(t, HandleConfig(config.Default(), args, &buf))
	assert.FileExists(t, path)

	err := HandleConfig(config.Default(), args, &buf)
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Contains(t, cmdErr.Reason, "already exists")

	args.Force = true
	require.NoError(t, HandleConfig(config.Default(), args, &buf))

	loaded, err := config.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().UI, loaded.UI)

	cfg := config.Default()
	cfg.Server.Token = "secret-token"
	buf.Reset()
	require.NoError(t, HandleConfig(cfg, Args{ConfigPath: path}, &buf))
	assert.Contains(t, buf.String(), path)
	assert.NotContains(t, buf.String(), "secret-token")
}

func TestHandleConfig_PathAndGet(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Token = "secret-token"

	var buf bytes.Buffer
	require.NoError(t, HandleConfig(cfg, Args{ConfigPath: "/etc/herder.toml", Subcommand: "path"}, &buf))
	assert.Equal(t, "/etc/herder.toml\n", buf.String())

	buf.Reset()
	require.NoError(t, HandleConfig(cfg, Args{Subcommand: "get", ConfigKey: "ui.default_tab", ConfigPath: "x"}, &buf))
	assert.Equal(t, "Prompts\n", buf.String())

	buf.Reset()
	require.NoError(t, HandleConfig(cfg, Args{Subcommand: "get", ConfigKey: "server.token", ConfigPath: "x"}, &buf))
	assert.Equal(t, "[REDACTED]\n", buf.String())

	err := HandleConfig(cfg, Args{Subcommand: "get", ConfigKey: "ui.nope", ConfigPath: "x"}, &buf)
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	err = HandleConfig(cfg, Args{Subcommand: "frob", ConfigPath: "x"}, &buf)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestHandleConfig_Keys(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HandleConfig(config.Default(), Args{Subcommand: "keys", ConfigPath: "x"}, &buf))
	assert.Contains(t, buf.String(), "server.url\n")
	assert.Contains(t, buf.String(), "capabilities.prompt_forms\n")
}

// =============================================================================
// VERSION / USAGE TESTS
// =============================================================================

func TestHandleVersion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HandleVersion(Args{}, &buf))
	assert.Contains(t, buf.String(), "herder version "+Version)

	buf.Reset()
	require.NoError(t, HandleVersion(Args{JSON: true}, &buf))
	var resp struct {
		Data VersionData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, Version, resp.Data.Version)
	assert.NotEmpty(t, resp.Data.GoVersion)
}

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	PrintUsage(&buf)
	for _, want := range []string{"herder status", "herder history", "--url", "Version: " + Version} {
		assert.Contains(t, buf.String(), want)
	}
}

// =============================================================================
// TERMINAL TESTS
// =============================================================================

func TestColorsWanted(t *testing.T) {
	env := func(vars map[string]string) func(string) string {
		return func(k string) string { return vars[k] }
	}
	tests := []struct {
		name string
		vars map[string]string
		tty  bool
		want bool
	}{
		{"tty", nil, true, true},
		{"pipe", nil, false, false},
		{"no color wins", map[string]string{"NO_COLOR": "1", "FORCE_COLOR": "1"}, true, false},
		{"forced on pipe", map[string]string{"FORCE_COLOR": "1"}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, colorsWanted(env(tt.vars), tt.tty))
		})
	}
}

func TestReadSecret_NoTerminal(t *testing.T) {
	if IsTTY() {
		t.Skip("stdin is a terminal")
	}
	var buf bytes.Buffer
	_, err := ReadSecret(&buf, "Token")
	var ttyErr *TTYRequiredError
	require.ErrorAs(t, err, &ttyErr)
	assert.Empty(t, buf.String())
	assert.Equal(t, ExitGeneralError, GetExitCode(err))
}
