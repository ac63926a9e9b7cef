package main

import (
	"fmt"

	"github.com/fatih/color"

	tabledesc "github.com/shibukawa/tabledesc"
	"github.com/shibukawa/tabledesc/snapshot"
)

// TablesCmd represents the tables command
type TablesCmd struct {
	Snapshot string `help:"tbls schema.json artefact to list" type:"path"`
}

func (cmd *TablesCmd) Run(appCtx *Context) error {
	config, err := tabledesc.LoadConfig(appCtx.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	path := cmd.Snapshot
	if path == "" {
		path = config.Describe.SnapshotPath
	}

	if path == "" {
		return ErrMissingSnapshot
	}

	src, err := snapshot.Load(path)
	if err != nil {
		return err
	}

	idents := src.Tables()

	if appCtx.Verbose {
		color.Blue("%s holds %d tables (%s)", path, len(idents), src.Dialect())
	}

	for _, ident := range idents {
		fmt.Println(ident.String())
	}

	return nil
}
