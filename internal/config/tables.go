package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"goDT/internal/column"
	"goDT/internal/sql"
)

// Tables is the table definition document:
//
//	tables:
//	  users:
//	    entities: {User: users, Organization: organizations}
//	    from: users
//	    joins: ["LEFT JOIN organizations ON organizations.id = users.org_id"]
//	    computed: {full_name: "users.first_name || ' ' || users.last_name"}
//	    columns:
//	      - {name: name, source: User.first_name, sortable: true, searchable: true}
type Tables struct {
	Tables map[string]TableDef `yaml:"tables"`
}

// TableDef defines one servable table. Exactly one of From (an SQL source)
// and Memory (seed rows for the in-memory store) is set.
type TableDef struct {
	Entities map[string]string `yaml:"entities"`
	From     string            `yaml:"from"`
	Joins    []string          `yaml:"joins"`
	// Computed maps a virtual column name to the SQL expression computing it.
	Computed map[string]string `yaml:"computed"`
	Memory   *MemoryTable      `yaml:"memory"`
	Columns  []ColumnDef       `yaml:"columns"`
}

type ColumnDef struct {
	Name       string `yaml:"name"`
	Source     string `yaml:"source"`
	Sortable   bool   `yaml:"sortable"`
	Searchable bool   `yaml:"searchable"`
	Legacy     bool   `yaml:"legacy"`
}

// MemoryTable is an in-memory table: its physical name, schema and rows.
type MemoryTable struct {
	Table   string         `yaml:"table"`
	Columns []MemoryColumn `yaml:"columns"`
	Rows    [][]any        `yaml:"rows"`
}

type MemoryColumn struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// LoadTables reads and validates a table definition file.
func LoadTables(path string) (*Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tables file: %w", err)
	}
	defer f.Close()
	return ParseTables(f)
}

// ParseTables decodes and validates a table definition document.
func ParseTables(r io.Reader) (*Tables, error) {
	var t Tables
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode tables: %w", err)
	}
	if len(t.Tables) == 0 {
		return nil, errors.New("tables: no tables defined")
	}
	for _, name := range t.Names() {
		if err := t.Tables[name].validate(); err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
	}
	return &t, nil
}

// Names returns the table names in sorted order.
func (t *Tables) Names() []string {
	names := make([]string, 0, len(t.Tables))
	for name := range t.Tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (d TableDef) validate() error {
	if len(d.Columns) == 0 {
		return errors.New("no columns")
	}
	switch {
	case d.From == "" && d.Memory == nil:
		return errors.New("one of from or memory is required")
	case d.From != "" && d.Memory != nil:
		return errors.New("from and memory are mutually exclusive")
	case d.Memory != nil && (len(d.Joins) > 0 || len(d.Computed) > 0):
		return errors.New("joins and computed columns need an SQL source")
	}
	if d.Memory != nil {
		for _, c := range d.Columns {
			if !strings.Contains(c.Source, ".") {
				return fmt.Errorf("column %s: computed source %q needs an SQL source", c.Name, c.Source)
			}
		}
		if _, err := d.Memory.Schema(); err != nil {
			return err
		}
		if _, err := d.Memory.Data(); err != nil {
			return err
		}
	}
	return nil
}

// Specs returns the column declarations for a column.Registry.
func (d TableDef) Specs() []column.Spec {
	out := make([]column.Spec, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = column.Spec{
			Name:       c.Name,
			Source:     c.Source,
			Sortable:   c.Sortable,
			Searchable: c.Searchable,
			Legacy:     c.Legacy,
		}
	}
	return out
}

// Schema returns the declared in-memory schema.
func (m *MemoryTable) Schema() ([]sql.Column, error) {
	if m.Table == "" {
		return nil, errors.New("memory: table name is required")
	}
	if len(m.Columns) == 0 {
		return nil, errors.New("memory: no columns")
	}
	cols := make([]sql.Column, len(m.Columns))
	for i, c := range m.Columns {
		typ, err := sql.ParseDataType(c.Type)
		if err != nil {
			return nil, fmt.Errorf("memory column %s: %w", c.Name, err)
		}
		cols[i] = sql.Column{Name: c.Name, Type: typ}
	}
	return cols, nil
}

// Data converts the seed rows to typed rows matching Schema.
func (m *MemoryTable) Data() ([]sql.Row, error) {
	cols, err := m.Schema()
	if err != nil {
		return nil, err
	}
	rows := make([]sql.Row, len(m.Rows))
	for i, raw := range m.Rows {
		if len(raw) != len(cols) {
			return nil, fmt.Errorf("memory row %d: expected %d values, got %d", i, len(cols), len(raw))
		}
		row := make(sql.Row, len(cols))
		for j, x := range raw {
			v, err := sql.FromAny(x)
			if err != nil {
				return nil, fmt.Errorf("memory row %d column %s: %w", i, cols[j].Name, err)
			}
			if row[j], err = sql.Coerce(v, cols[j].Type); err != nil {
				return nil, fmt.Errorf("memory row %d column %s: %w", i, cols[j].Name, err)
			}
		}
		rows[i] = row
	}
	return rows, nil
}
