package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/matheus3301/wpphistory/internal/app"
	"github.com/matheus3301/wpphistory/internal/config"
	"github.com/matheus3301/wpphistory/internal/paths"
	"go.uber.org/fx"
)

func main() {
	configFlag := flag.String("config", paths.ConfigPath(), "config file")
	envFlag := flag.String("env", paths.EnvPath(), ".env file with WPPHISTORY_* overrides")
	backupFlag := flag.String("backup", "", "backup directory (default: latest backup)")
	outputFlag := flag.String("output", "", "directory that receives the output_YYYY_MM_DD folder")
	verboseFlag := flag.Bool("verbose", false, "log debug messages")
	initFlag := flag.Bool("init-config", false, "write a default config file and exit")
	flag.Parse()

	if flag.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "usage: wpphistory [--config <file>] [--env <file>] [--backup <dir>] [--output <dir>] [--verbose] [--init-config]")
		os.Exit(1)
	}

	if *initFlag {
		if err := config.Init(*configFlag); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", *configFlag)
		return
	}

	fxApp := fx.New(
		app.Logger(),
		app.Module(app.Params{
			ConfigPath: *configFlag,
			EnvPath:    *envFlag,
			BackupDir:  *backupFlag,
			OutputRoot: *outputFlag,
			Verbose:    *verboseFlag,
		}),
	)
	if err := fxApp.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fxApp.Run()
}
