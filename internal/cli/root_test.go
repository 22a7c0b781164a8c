package cli

import (
	"io"
	"testing"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := []string{"play", "serve", "render", "frame", "info", "dot", "movies", "cache", "config", "completion"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command is missing %q", name)
		}
	}
}

func TestRootCommandSilencesUsage(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	if !root.SilenceUsage {
		t.Error("usage spam on runtime errors should be silenced")
	}
}
