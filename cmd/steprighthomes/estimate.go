package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"steprighthomes/internal/pricing"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var estimateCommand = &cli.Command{
	Name:  "estimate",
	Usage: "Print the instant quote for a set of selections, or the whole price table",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "service", Usage: "fencing, roofing, electrical or plumbing"},
		&cli.StringFlag{Name: "size", Usage: "small, medium, large or commercial", Value: string(pricing.Medium)},
		&cli.StringFlag{Name: "urgency", Usage: "standard, priority or emergency", Value: string(pricing.Standard)},
		&cli.StringFlag{Name: "scope", Usage: "minor, moderate, major or full", Value: string(pricing.Moderate)},
		&cli.BoolFlag{Name: "all", Usage: "Print every combination as a table"},
		&cli.BoolFlag{Name: "json", Usage: "Print JSON instead of pretty output"},
	},
	Action: func(c *cli.Context) error {
		if c.Bool("all") {
			return printPriceTable()
		}

		factors, err := parseFactors(c)
		if err != nil {
			return err
		}

		out := struct {
			Factors  pricing.Factors  `json:"factors"`
			Estimate pricing.Estimate `json:"estimate"`
			Currency string           `json:"currency"`
		}{factors, pricing.Calculate(factors), pricing.Currency}

		if c.Bool("json") {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		pp.Println(out)
		return nil
	},
}

func parseFactors(c *cli.Context) (pricing.Factors, error) {
	service, err := pricing.ParseServiceType(c.String("service"))
	if err != nil {
		return pricing.Factors{}, err
	}
	size, err := pricing.ParsePropertySize(c.String("size"))
	if err != nil {
		return pricing.Factors{}, err
	}
	urgency, err := pricing.ParseUrgencyLevel(c.String("urgency"))
	if err != nil {
		return pricing.Factors{}, err
	}
	scope, err := pricing.ParseJobScope(c.String("scope"))
	if err != nil {
		return pricing.Factors{}, err
	}

	return pricing.Factors{Service: service, PropertySize: size, Urgency: urgency, Scope: scope}, nil
}

func printPriceTable() error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SERVICE\tSIZE\tURGENCY\tSCOPE\tMIN\tMAX\tDURATION")
	for _, f := range pricing.AllFactors() {
		est := pricing.Calculate(f)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n", f.Service, f.PropertySize, f.Urgency, f.Scope, est.MinPrice, est.MaxPrice, est.EstimatedDuration)
	}
	return w.Flush()
}
