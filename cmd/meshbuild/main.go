package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/storefront-tools/meshbuild/internal/config"
	mberrors "github.com/storefront-tools/meshbuild/internal/errors"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"meshbuild.yaml"`
	Env     string `short:"e" help:"Target environment" default:"staging"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Force bool `short:"f" help:"Regenerate even when inputs are unchanged"`
	} `cmd:"" help:"Generate the mesh resolver artifact and mesh configuration"`

	Deploy struct {
		Force     bool `short:"f" help:"Regenerate even when inputs are unchanged"`
		SkipBuild bool `help:"Deploy the existing artifact without rebuilding"`
	} `cmd:"" help:"Build and deploy the mesh, then poll until provisioned"`

	Status struct{} `cmd:"" help:"Check the current mesh provisioning status"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Watch struct {
		Deploy bool `help:"Deploy automatically after each rebuild"`
	} `cmd:"" help:"Rebuild on template or configuration changes"`

	History struct {
		Limit int    `short:"n" help:"Number of runs to show" default:"20"`
		Env   string `help:"Filter by environment"`
	} `cmd:"" help:"Show recent build and deploy runs"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	adapter := mberrors.NewCLIErrorAdapter(CLI.Verbose, slog.Default())

	var err error
	switch ctx.Command() {
	case "build":
		err = runBuild(CLI.Build.Force)
	case "deploy":
		err = runDeploy(CLI.Deploy.Force, CLI.Deploy.SkipBuild)
	case "status":
		err = runStatus()
	case "init":
		err = config.Init(CLI.Config, CLI.Init.Force)
	case "watch":
		err = runWatch(CLI.Watch.Deploy)
	case "history":
		err = runHistory(CLI.History.Limit, CLI.History.Env)
	}

	if err != nil {
		adapter.HandleError(err)
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(CLI.Config)
}
