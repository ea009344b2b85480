package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/huangsam/tsfeat/internal/contract"
	"github.com/huangsam/tsfeat/schema"
	"github.com/olekukonko/tablewriter"
)

// catalogListing is the JSON form of a catalog.
type catalogListing struct {
	Catalog  string               `json:"catalog"`
	Features []schema.FeatureInfo `json:"features"`
}

// PrintCatalog outputs the features of a catalog, dispatching based on the output format configured.
func PrintCatalog(name string, infos []schema.FeatureInfo, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, catalogListing{Catalog: name, Features: infos})
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"feature", "description"}, func(csvWriter *csv.Writer) error {
				for _, info := range infos {
					if err := csvWriter.Write([]string{info.Name, info.Description}); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for catalog listings")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCatalogText(w, name, infos, cfg)
		}, "Wrote table")
	}
}

func writeCatalogText(writer io.Writer, name string, infos []schema.FeatureInfo, cfg *contract.Config) error {
	table := tablewriter.NewWriter(writer)
	table.Header(headerText([]string{"Feature", "Description"}, cfg.UseColors))

	data := make([][]string, 0, len(infos))
	for _, info := range infos {
		data = append(data, []string{info.Name, info.Description})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(writer, "Catalog %s has %d features per column\n", name, len(infos))
	return err
}
