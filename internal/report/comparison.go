package report

import (
	"io"
	"strings"

	"github.com/aletheia-ml/aletheia/internal/catalog"
)

// Comparison prints the synthetic vs. real model performance table followed
// by the list of key improvements.
func Comparison(w io.Writer) error {
	p := newPrinter(w)
	rows := catalog.Comparison()

	p.styled(p.title, "ALETHEIA Model Performance Comparison")
	p.line(rule)

	p.blank()
	p.styled(p.heading, "Performance Comparison:")
	p.line(strings.Repeat("-", 30))
	p.line("Metric                | Synthetic | Real C Code")
	p.line("----------------------|-----------|------------")
	for _, r := range rows {
		p.printf("%-22s| %-10s| %s\n", r.Metric, r.Synthetic, r.Real)
	}

	p.blank()
	p.styled(p.success, "Table formatting is now correct!")
	p.line("Each metric shows both the old (Synthetic) and new (Real C Code) values")

	p.blank()
	p.styled(p.heading, "Key Improvements:")
	for _, r := range rows {
		p.printf("%-22s: %s -> %s (%s)\n", r.Metric, r.Synthetic, r.Real, r.Improvement)
	}
	return p.err
}
