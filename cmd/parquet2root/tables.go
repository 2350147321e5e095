package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/vegasq/parquet2root/convert"
	"github.com/vegasq/parquet2root/reader"
)

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

// printSchema lists the columns of path and the branch type each one maps
// to.
func printSchema(w io.Writer, path string) error {
	infos, err := reader.ExtractSchemaInfo(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Schema of %s:\n", path)
	table := newTable(w, []string{"column", "physical", "logical", "optional", "branch"})
	for _, info := range infos {
		branch := info.Kind
		if !info.Supported {
			branch = "unsupported"
		}
		table.Append([]string{
			info.Name,
			info.PhysicalType,
			info.LogicalType,
			strconv.FormatBool(info.Optional),
			branch,
		})
	}
	table.Render()
	return nil
}

// printPlan lists every input with its row and batch counts.
func printPlan(w io.Writer, plan *convert.Plan) {
	table := newTable(w, []string{"file", "rows", "batches"})
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT})
	for _, f := range plan.Files {
		table.Append([]string{f.Path, printer.Sprintf("%d", f.Rows), printer.Sprintf("%d", f.Batches)})
	}
	table.SetFooter([]string{"total", printer.Sprintf("%d", plan.TotalRows), printer.Sprintf("%d", plan.TotalBatches)})
	table.Render()
	fmt.Fprintf(w, "batch size: %s, schema: %s\n", printer.Sprintf("%d", plan.BatchSize), plan.Schema)
}
