package main

import (
	"testing"

	"github.com/alexanderramin/riff/internal/testsupport"
	"github.com/rogpeppe/go-internal/testscript"
)

func TestBackupScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/backup",
		Setup: func(env *testscript.Env) error {
			return testsupport.SetupScriptEnv(t, env)
		},
		Cmds: testsupport.Commands(),
	})
}
