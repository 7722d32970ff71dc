package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/patel999jay/uwacomm/schema"
)

// reportWidth is the column the bit counts are aligned to.
const reportWidth = 54

func analyzeFile(w io.Writer, path string, rate float64) error {
	descs, err := schema.LoadFile(path)
	if err != nil {
		return errors.Wrapf(err, "analyzing %s", path)
	}

	fmt.Fprintf(w, "%s uwacomm: underwater communications codec %s\n", strings.Repeat("|", 7), strings.Repeat("|", 7))
	plural := "s"
	if len(descs) == 1 {
		plural = ""
	}
	fmt.Fprintf(w, "%d message%s loaded. Field sizes are in bits unless noted.\n\n", len(descs), plural)

	for _, desc := range descs {
		printAnalysis(w, schema.Analyze(desc), rate)
	}
	return nil
}

func printAnalysis(w io.Writer, a *schema.Analysis, rate float64) {
	rule := strings.Repeat("=", 19)
	if a.ID != schema.NoID {
		fmt.Fprintf(w, "%s %d: %s %s\n", rule, a.ID, a.Name, rule)
	} else {
		fmt.Fprintf(w, "%s %s %s\n", rule, a.Name, rule)
	}

	fmt.Fprintf(w, "Actual maximum size of message: %d bytes / %d bits\n", a.BodyBytes, a.BodyBytes*8)
	if a.ID != schema.NoID {
		dotted(w, "        id head", fmt.Sprintf("%d (modes 2-3)", a.IDBytes*8))
	}
	dotted(w, "        body", fmt.Sprintf("%d", a.BodyBits))
	if a.PaddingBits > 0 {
		dotted(w, "        padding to full byte", fmt.Sprintf("%d", a.PaddingBits))
	}
	if a.MaxBytes > 0 {
		fmt.Fprintf(w, "Allowed maximum size of message: %d bytes / %d bits\n", a.MaxBytes, a.MaxBytes*8)
		if !a.WithinBudget() {
			fmt.Fprintf(w, "WARNING: body exceeds the allowed maximum by %d bytes\n", a.BodyBytes-a.MaxBytes)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s Body %s\n", strings.Repeat("-", 24), strings.Repeat("-", 24))
	for i, f := range a.Fields {
		label := fmt.Sprintf("        %d. %s", i+1, f.Name)
		value := fmt.Sprintf("%d bits", f.Bits)
		if f.Detail != "" {
			value += " " + f.Detail
		}
		dotted(w, label, value)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s Summary %s\n", strings.Repeat("=", 23), strings.Repeat("=", 23))
	fmt.Fprintf(w, "Wire bytes per mode: mode 1 = %d, mode 2 = %d, mode 3 = %d\n", a.Mode1Bytes, a.Mode2Bytes, a.Mode3Bytes)
	if rate > 0 {
		fmt.Fprintf(w, "Estimated transmission time @ %g bps: %.1f seconds\n", rate, float64(a.Mode1Bytes*8)/rate)
	}
	fmt.Fprintln(w)
}

// dotted prints "label......value" padded to the report width.
func dotted(w io.Writer, label, value string) {
	dots := reportWidth - len(label) - len(value)
	if dots < 1 {
		dots = 1
	}
	fmt.Fprintf(w, "%s%s%s\n", label, strings.Repeat(".", dots), value)
}
