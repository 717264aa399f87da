package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/huangsam/pagepulse/internal/contract"
)

// naText is shown for absent metrics.
const naText = "NA"

// writeWithFile writes to outputFile when set, otherwise to fallback.
func writeWithFile(fallback io.Writer, outputFile string, writer func(io.Writer) error, successMsg string) error {
	if outputFile == "" {
		return writer(fallback)
	}
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	if err := writer(file); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writeRows(csvWriter); err != nil {
		return err
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// fmtIntPtr renders an optional integer, or NA.
func fmtIntPtr(v *int) string {
	if v == nil {
		return naText
	}
	return strconv.Itoa(*v)
}

// fmtFloatPtr renders an optional float with precision digits, or NA.
func fmtFloatPtr(v *float64, precision int) string {
	if v == nil {
		return naText
	}
	return strconv.FormatFloat(*v, 'f', precision, 64)
}

// csvIntPtr renders an optional integer for CSV; absent is empty.
func csvIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// csvFloatPtr renders an optional float for CSV; absent is empty.
func csvFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// csvStringPtr renders an optional string for CSV; absent is empty.
func csvStringPtr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
