package importer

import (
	"context"
	"sort"

	"github.com/kinderhub/backend/internal/client"
	"github.com/kinderhub/backend/internal/dto"
	"github.com/rs/zerolog/log"
)

// Summary is the outcome of one import, rows numbered as in the file.
type Summary struct {
	Imported int
	Failed   int
	Errors   []dto.ImportRowError
}

func (s Summary) Total() int {
	return s.Imported + s.Failed
}

// SendFunc posts a batch to a collection's import endpoint. Client methods
// such as (*client.Client).ImportSemesters fit it directly.
type SendFunc[T any] func(ctx context.Context, records []T) client.Result[dto.ImportResult]

// Dispatcher sends the accepted records of a validated batch in one call
// and merges the server's verdicts with the local rejections.
type Dispatcher[T any] struct {
	send SendFunc[T]
}

func NewDispatcher[T any](send SendFunc[T]) *Dispatcher[T] {
	return &Dispatcher[T]{send: send}
}

// Dispatch never sends rejected rows. When nothing was accepted no request
// is made. A failed request fails the whole import.
func (d *Dispatcher[T]) Dispatch(ctx context.Context, results []ValidationResult[T]) (Summary, error) {
	summary := Summary{Errors: []dto.ImportRowError{}}

	var (
		records []T
		rowOf   []int
	)
	for _, r := range results {
		if r.Accepted() {
			records = append(records, r.Record)
			rowOf = append(rowOf, r.Row)
			continue
		}
		summary.Failed++
		summary.Errors = append(summary.Errors, dto.ImportRowError{Row: r.Row, Reason: r.Rejection.Reason})
	}

	if len(records) > 0 {
		res := d.send(ctx, records)
		if !res.OK() {
			return Summary{}, res.Err
		}

		summary.Imported += res.Value.Imported
		summary.Failed += res.Value.Failed
		for _, e := range res.Value.Details.Errors {
			row := e.Row
			if row >= 1 && row <= len(rowOf) {
				row = rowOf[row-1]
			} else {
				log.Warn().Int("row", e.Row).Int("sent", len(rowOf)).Msg("import response names a row that was not sent")
			}
			summary.Errors = append(summary.Errors, dto.ImportRowError{Row: row, Reason: e.Reason})
		}
	}

	sort.SliceStable(summary.Errors, func(i, j int) bool {
		return summary.Errors[i].Row < summary.Errors[j].Row
	})
	return summary, nil
}
