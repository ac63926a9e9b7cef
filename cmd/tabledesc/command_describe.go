package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"

	tabledesc "github.com/shibukawa/tabledesc"
	"github.com/shibukawa/tabledesc/connect"
	"github.com/shibukawa/tabledesc/describe"
	"github.com/shibukawa/tabledesc/snapshot"
)

// DescribeCmd represents the describe command
type DescribeCmd struct {
	Table  string `arg:"" help:"Table name, optionally schema qualified (orders or sales.orders)"`
	Schema string `short:"s" help:"Schema to resolve the table in (wins over a schema prefix)"`

	// Source options, in priority order
	DB       string `help:"Database connection URL (postgres://, mysql://, sqlite://, sqlserver://)"`
	Database string `short:"d" help:"Named database from the configuration file"`
	Snapshot string `help:"Describe from a tbls schema.json artefact instead of a live connection" type:"path"`

	Format      string `short:"f" help:"Output format (table, json, yaml)"`
	Timeout     string `help:"Describe timeout" default:"30s"`
	Constraints string `help:"Constraint store file for sqlite databases" type:"path"`
}

func (cmd *DescribeCmd) Run(appCtx *Context) error {
	config, err := tabledesc.LoadConfig(appCtx.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	format := cmd.Format
	if format == "" {
		format = config.Describe.DefaultFormat
	}

	if format == "" {
		format = "table"
	}

	if !isValidFormat(format) {
		return fmt.Errorf("%w: %s", ErrInvalidOutputFormat, format)
	}

	timeout, err := time.ParseDuration(cmd.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout duration: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	desc, err := cmd.describe(ctx, appCtx, config)
	if err != nil {
		return err
	}

	return renderDescription(os.Stdout, desc, format)
}

// describe resolves the source in priority order: an explicit snapshot, an
// explicit URL, a configured database, then a configured snapshot path.
func (cmd *DescribeCmd) describe(ctx context.Context, appCtx *Context, config *tabledesc.Config) (*tabledesc.TableDescription, error) {
	if cmd.Snapshot != "" {
		return cmd.describeSnapshot(ctx, appCtx, cmd.Snapshot)
	}

	if cmd.DB != "" {
		db, dialect, err := connect.Open(cmd.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		return cmd.describeLive(ctx, appCtx, config, db, dialect, "")
	}

	if cmd.Database != "" || config.Describe.DefaultDatabase != "" {
		dbConfig, err := config.DatabaseFor(cmd.Database)
		if err != nil {
			return nil, err
		}

		db, dialect, err := openConfigured(dbConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		return cmd.describeLive(ctx, appCtx, config, db, dialect, dbConfig.Schema)
	}

	if config.Describe.SnapshotPath != "" {
		return cmd.describeSnapshot(ctx, appCtx, config.Describe.SnapshotPath)
	}

	return nil, ErrMissingSource
}

func (cmd *DescribeCmd) describeLive(ctx context.Context, appCtx *Context, config *tabledesc.Config, db *sql.DB, dialect tabledesc.Dialect, defaultSchema string) (*tabledesc.TableDescription, error) {
	if appCtx.Verbose {
		color.Blue("Describing %s over a live %s connection", cmd.Table, dialect)
	}

	var opts []describe.Option

	if defaultSchema != "" {
		opts = append(opts, describe.WithDefaultSchema(defaultSchema))
	}

	if appCtx.Verbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, describe.WithLogger(logger))
	}

	if dialect.NeedsConstraintShadow() {
		store, err := loadShadowStore(constraintsPath(cmd.Constraints, config))
		if err != nil {
			return nil, err
		}

		opts = append(opts, describe.WithShadowStore(store))
	}

	describer, err := describe.New(db, dialect, opts...)
	if err != nil {
		return nil, err
	}

	return describer.DescribeTable(ctx, cmd.Table, cmd.Schema)
}

func (cmd *DescribeCmd) describeSnapshot(ctx context.Context, appCtx *Context, path string) (*tabledesc.TableDescription, error) {
	if appCtx.Verbose {
		color.Blue("Describing %s from snapshot %s", cmd.Table, path)
	}

	src, err := snapshot.Load(path)
	if err != nil {
		return nil, err
	}

	return src.DescribeTable(ctx, cmd.Table, cmd.Schema)
}

// openConfigured opens a connection from a named database configuration.
// An explicit driver overrides URL scheme detection.
func openConfigured(dbConfig tabledesc.Database) (*sql.DB, tabledesc.Dialect, error) {
	if dbConfig.Connection == "" {
		return nil, "", ErrEmptyConnectionString
	}

	if dbConfig.Driver == "" {
		return connect.Open(dbConfig.Connection)
	}

	dialect, err := tabledesc.ParseDialect(dbConfig.Driver)
	if err != nil {
		return nil, "", err
	}

	connector := connect.NewConnector()

	db, err := connector.Connect(dbConfig.Connection)
	if err != nil {
		return nil, "", err
	}

	return db, dialect, nil
}
