package export

import "fmt"

// Column describes one exported field. Weight sizes the column relative to
// the others in paged formats; zero means 1.
type Column struct {
	Key    string
	Title  string
	Weight float64
}

// Dataset defines tabular export content.
type Dataset struct {
	Title   string
	Columns []Column
	Rows    []map[string]string
}

func (d Dataset) validate() error {
	if len(d.Columns) == 0 {
		return fmt.Errorf("export requires at least one column")
	}
	return nil
}

func (d Dataset) record(row map[string]string) []string {
	out := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		out[i] = row[col.Key]
	}
	return out
}
