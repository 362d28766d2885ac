package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"priceScope/internal/model"
)

func printPrices(w io.Writer, results []model.TokenPrice, elapsed time.Duration) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TOKEN\tPRICE\tPOOLS\tSTATUS")
	for _, result := range results {
		fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%s\n",
			result.Token.Name,
			formatPrice(result),
			result.Succeeded(),
			len(result.Quotes),
			status(result.Err),
		)
	}
	tw.Flush()
	fmt.Fprintf(w, "Completed in %s\n", elapsed)
}

func formatPrice(result model.TokenPrice) string {
	if result.Err != nil {
		return "-"
	}
	return "$" + strconv.FormatFloat(result.Price, 'f', 6, 64)
}

func status(err error) string {
	if err == nil {
		return "OK"
	}
	return "FAILED: " + err.Error()
}
