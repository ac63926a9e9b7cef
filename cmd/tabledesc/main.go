package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
)

// Context carries the global flags into every command.
type Context struct {
	Config  string
	Verbose bool
	Quiet   bool
}

// CLI is the top level command grammar.
var CLI struct {
	Config  string `help:"Configuration file path" default:"tabledesc.yaml"`
	Verbose bool   `help:"Enable verbose output" short:"v"`
	Quiet   bool   `help:"Suppress output" short:"q"`

	Describe    DescribeCmd    `cmd:"" help:"Describe a table's columns"`
	Tables      TablesCmd      `cmd:"" help:"List tables in a snapshot artefact"`
	Constraints ConstraintsCmd `cmd:"" help:"Manage recorded constraint declarations for SQLite databases"`
	Version     VersionCmd     `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run() error {
	fmt.Println("tabledesc v0.1.0")
	return nil
}

func main() {
	ctx := kong.Parse(&CLI)

	appCtx := &Context{
		Config:  CLI.Config,
		Verbose: CLI.Verbose,
		Quiet:   CLI.Quiet,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}
