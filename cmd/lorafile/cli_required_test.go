package main

import (
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestRequiredFlagsErrors(t *testing.T) {
	tests := []struct {
		name    string
		cmd     func() *cobra.Command
		args    []string
		wantErr string
	}{
		{
			name:    "send missing device",
			cmd:     newSendCmd,
			args:    []string{"report.pdf"},
			wantErr: "required flag(s) \"device\" not set",
		},
		{
			name:    "receive missing device",
			cmd:     newReceiveCmd,
			args:    nil,
			wantErr: "required flag(s) \"device\" not set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := tt.cmd()
			cmd.SetOut(io.Discard)
			cmd.SetErr(io.Discard)
			cmd.SetArgs(tt.args)
			err := cmd.Execute()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error: got %q want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSendRequiresExactlyOneArg(t *testing.T) {
	cmd := newSendCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--device", "/dev/ttyUSB0"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for a missing file argument")
	}
}

func TestReceiveRejectsPositionalArgs(t *testing.T) {
	cmd := newReceiveCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--device", "/dev/ttyUSB0", "unexpected"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for an unexpected positional argument")
	}
}
