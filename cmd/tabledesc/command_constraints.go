package main

import (
	"fmt"

	"github.com/fatih/color"

	tabledesc "github.com/shibukawa/tabledesc"
)

// ConstraintsCmd groups the shadow constraint subcommands. SQLite cannot
// add or drop unique and foreign key constraints through ALTER TABLE, so
// declarations are recorded in a store file and overlaid onto describe
// output.
type ConstraintsCmd struct {
	Record ConstraintsRecordCmd `cmd:"" help:"Record a unique or foreign key declaration for a column"`
	List   ConstraintsListCmd   `cmd:"" help:"List recorded declarations for a table"`
	Remove ConstraintsRemoveCmd `cmd:"" help:"Remove recorded declarations"`
}

// ConstraintsRecordCmd records one declaration.
type ConstraintsRecordCmd struct {
	Table    string `arg:"" help:"Table the declaration belongs to"`
	Column   string `arg:"" help:"Column the declaration is on"`
	Unique   bool   `help:"Mark the column unique"`
	RefTable string `help:"Referenced table for a foreign key"`
	RefKey   string `help:"Referenced key column" default:"id"`
	File     string `help:"Constraint store file" type:"path"`
}

func (cmd *ConstraintsRecordCmd) Run(appCtx *Context) error {
	if !cmd.Unique && cmd.RefTable == "" {
		return ErrNothingToRecord
	}

	config, err := tabledesc.LoadConfig(appCtx.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	path := constraintsPath(cmd.File, config)

	store, err := loadShadowStore(path)
	if err != nil {
		return err
	}

	entry := tabledesc.ConstraintEntry{
		Table:  cmd.Table,
		Column: cmd.Column,
		Unique: cmd.Unique,
	}

	if cmd.RefTable != "" {
		entry.References = &tabledesc.ForeignKeyReference{Table: cmd.RefTable, Key: cmd.RefKey}
	}

	store.Record(entry)

	if err := saveShadowStore(path, store); err != nil {
		return err
	}

	if !appCtx.Quiet {
		color.Green("✓ Recorded declaration for %s.%s in %s", cmd.Table, cmd.Column, path)
	}

	return nil
}

// ConstraintsListCmd prints the declarations recorded for one table.
type ConstraintsListCmd struct {
	Table string `arg:"" help:"Table to list declarations for"`
	File  string `help:"Constraint store file" type:"path"`
}

func (cmd *ConstraintsListCmd) Run(appCtx *Context) error {
	config, err := tabledesc.LoadConfig(appCtx.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := loadShadowStore(constraintsPath(cmd.File, config))
	if err != nil {
		return err
	}

	entries := store.List(cmd.Table)
	if len(entries) == 0 {
		if !appCtx.Quiet {
			fmt.Printf("No declarations recorded for %s\n", cmd.Table)
		}

		return nil
	}

	for _, entry := range entries {
		line := entry.Column
		if entry.Unique {
			line += " unique"
		}

		if entry.References != nil {
			line += fmt.Sprintf(" references %s(%s)", entry.References.Table, entry.References.Key)
		}

		fmt.Println(line)
	}

	return nil
}

// ConstraintsRemoveCmd removes declarations for a table or one column.
type ConstraintsRemoveCmd struct {
	Table  string `arg:"" help:"Table to remove declarations from"`
	Column string `arg:"" optional:"" help:"Remove only this column's declaration"`
	File   string `help:"Constraint store file" type:"path"`
}

func (cmd *ConstraintsRemoveCmd) Run(appCtx *Context) error {
	config, err := tabledesc.LoadConfig(appCtx.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	path := constraintsPath(cmd.File, config)

	store, err := loadShadowStore(path)
	if err != nil {
		return err
	}

	if cmd.Column != "" {
		store.RemoveColumn(cmd.Table, cmd.Column)
	} else {
		store.Remove(cmd.Table)
	}

	if err := saveShadowStore(path, store); err != nil {
		return err
	}

	if !appCtx.Quiet {
		if cmd.Column != "" {
			color.Green("✓ Removed declaration for %s.%s", cmd.Table, cmd.Column)
		} else {
			color.Green("✓ Removed declarations for %s", cmd.Table)
		}
	}

	return nil
}
