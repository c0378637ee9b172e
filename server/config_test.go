package server_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/n9te9/go-graphql-product-web/graphql"
	"github.com/n9te9/go-graphql-product-web/server"
)

func writeConfig(t *testing.T, src string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "product-web.yaml")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOption(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
		env  string
		want server.Option
	}{
		{
			name: "missing file uses defaults",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") },
			want: server.DefaultOption(),
		},
		{
			name: "file overrides defaults",
			path: func(t *testing.T) string {
				return writeConfig(t, heredoc.Doc(`
					endpoint: http://api.example.com/graphql
					port: 8080
					enable_request_id: false
					retry:
					  attempts: 5
					  timeout: 1s
					opentelemetry:
					  tracing:
					    enable: true
				`))
			},
			want: server.Option{
				Endpoint:        "http://api.example.com/graphql",
				ServiceName:     "product-web",
				Port:            8080,
				TimeoutDuration: "5s",
				EnableRequestID: false,
				Retry:           graphql.RetryOption{Attempts: 5, Timeout: "1s"},
				Opentelemetry: server.OpentelemetrySetting{
					TracingSetting: server.OpentelemetryTracingSetting{Enable: true},
				},
			},
		},
		{
			name: "environment overrides the endpoint",
			path: func(t *testing.T) string {
				return writeConfig(t, "endpoint: http://api.example.com/graphql\n")
			},
			env: "http://env.example.com/graphql",
			want: func() server.Option {
				opt := server.DefaultOption()
				opt.Endpoint = "http://env.example.com/graphql"
				return opt
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(server.EndpointEnv, tt.env)

			got, err := server.LoadOption(tt.path(t))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d := cmp.Diff(tt.want, got); d != "" {
				t.Errorf("LoadOption() mismatch (-want +got):\n%s", d)
			}
		})
	}
}

func TestLoadOption_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{name: "bad port", src: "port: 70000\n", wantMsg: "port 70000 is out of range"},
		{name: "bad timeout", src: "timeout_duration: soon\n", wantMsg: "invalid timeout_duration"},
		{name: "bad yaml", src: "port: [1\n", wantMsg: "failed to parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(server.EndpointEnv, "")

			_, err := server.LoadOption(writeConfig(t, tt.src))
			if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("error = %v, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestInit(t *testing.T) {
	t.Setenv(server.EndpointEnv, "")
	path := filepath.Join(t.TempDir(), "product-web.yaml")

	if err := server.Init(path); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	got, err := server.LoadOption(path)
	if err != nil {
		t.Fatalf("LoadOption() error: %v", err)
	}
	if d := cmp.Diff(server.DefaultOption(), got); d != "" {
		t.Errorf("written config mismatch (-want +got):\n%s", d)
	}

	if err := server.Init(path); err == nil {
		t.Error("Init() should refuse to overwrite an existing file")
	}
}
