package main

import (
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viant/geofeat/engine"
	"github.com/viant/geofeat/featadmin"
	"github.com/viant/geofeat/featvtab"
)

func (a *app) sqlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sql <statement>",
		Short: "Run SQL with the feat and feat_admin virtual tables available",
		Long: `Run a SQL statement against the database. Rows are printed tab separated.

  geofeat sql "CREATE VIRTUAL TABLE roads_q USING feat(roads)"
  geofeat sql "SELECT id FROM roads_q WHERE bbox MATCH '0,0,10,10'"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := engine.Open(engine.DSN(a.cfg.Database))
			if err != nil {
				return err
			}
			defer db.Close()
			opts := a.cfg.WorkspaceOptions()
			if err := featvtab.Register(db, opts...); err != nil {
				return err
			}
			if err := featadmin.Register(db, opts...); err != nil {
				return err
			}
			rows, err := db.QueryContext(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer rows.Close()
			return printRows(cmd.OutOrStdout(), rows)
		},
	}
}

func printRows(w io.Writer, rows *sql.Rows) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	line := make([]string, len(cols))
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		for i, v := range values {
			switch val := v.(type) {
			case nil:
				line[i] = "NULL"
			case []byte:
				line[i] = string(val)
			default:
				line[i] = fmt.Sprint(val)
			}
		}
		if _, err := fmt.Fprintln(w, strings.Join(line, "\t")); err != nil {
			return err
		}
	}
	return rows.Err()
}
