// Package importer turns an uploaded spreadsheet into a bulk import call:
// parse, normalize, validate, then dispatch the accepted rows in one batch.
package importer

import (
	"context"
	"io"

	"github.com/rs/zerolog/log"
)

// Run imports the spreadsheet read from r. fileName picks the format.
// ParseError and MissingColumnsError abort before anything is sent; rejected
// rows are reported in the summary.
func Run[T any](ctx context.Context, r io.Reader, fileName string, schema Schema[T], send SendFunc[T]) (Summary, error) {
	rows, err := Parse(r, fileName)
	if err != nil {
		return Summary{}, err
	}
	defer rows.Close()

	all, err := rows.Collect()
	if err != nil {
		return Summary{}, err
	}

	results, err := Validate(all, schema)
	if err != nil {
		return Summary{}, err
	}

	accepted := 0
	for _, res := range results {
		if res.Accepted() {
			accepted++
		}
	}
	log.Info().
		Str("collection", schema.Collection).
		Str("file", fileName).
		Int("rows", len(results)).
		Int("accepted", accepted).
		Msg("spreadsheet validated")

	summary, err := NewDispatcher(send).Dispatch(ctx, results)
	if err != nil {
		log.Error().Err(err).Str("collection", schema.Collection).Msg("import failed")
		return Summary{}, err
	}
	return summary, nil
}
