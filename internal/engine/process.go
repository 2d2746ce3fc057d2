package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"goDT/internal/query"
	"goDT/internal/request"
)

// Response is the envelope returned to the data-grid client.
type Response struct {
	Draw            int64 `json:"draw"`
	RecordsTotal    int64 `json:"recordsTotal"`
	RecordsFiltered int64 `json:"recordsFiltered"`
	Data            []any `json:"data"`
}

// ProcessRaw normalizes raw request parameters and processes them.
func (e *Engine) ProcessRaw(ctx context.Context, table string, raw map[string]any) (*Response, error) {
	p, err := e.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}
	return e.Process(ctx, table, p)
}

// Process answers one request against table. The raw record source is
// obtained once and shared by the total count, the filtered count and the
// page fetch.
func (e *Engine) Process(ctx context.Context, table string, p request.Params) (*Response, error) {
	t, err := e.Table(table)
	if err != nil {
		return nil, err
	}
	log := zerolog.Ctx(ctx).With().Str("table", t.Name).Logger()

	raw, err := t.Source.RawRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("raw records for %s: %w", t.Name, err)
	}
	total, err := raw.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", t.Name, err)
	}

	rv := t.Columns.Resolver(p.DisplayedColumns())
	view := raw

	if len(p.Order) > 0 {
		clauses, errs := e.builder.Order(rv, p.Order)
		e.dropped(&log, t.Name, "sort", errs)
		if len(clauses) > 0 {
			view = view.OrderBy(clauses...)
		}
	}

	var preds []query.Predicate
	if p.Search != "" {
		pred, errs := e.builder.Search(t.Columns, p.Search)
		e.dropped(&log, t.Name, "search", errs)
		preds = append(preds, pred)
	}
	if e.cfg.CompositeSearch && len(p.PerColumnSearch) > 0 {
		pred, errs := e.builder.CompositeSearch(rv, p.PerColumnSearch)
		e.dropped(&log, t.Name, "search", errs)
		preds = append(preds, pred)
	}

	filtered := total
	if pred := query.AllOf(preds...); pred != nil {
		view = view.Filter(pred)
		filtered, err = view.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count filtered %s: %w", t.Name, err)
		}
		// The source may have grown between the two counts.
		filtered = min(filtered, total)
	}

	if p.Paginated() {
		view = e.cfg.Paginator.Paginate(view, p.Start, p.Length)
	}

	cols, rows, err := view.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", t.Name, err)
	}
	data, err := t.Serializer.Serialize(cols, rows)
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", t.Name, err)
	}
	if data == nil {
		data = []any{}
	}

	log.Debug().
		Int64("draw", p.Draw).
		Strs("columns", rv.Displayed()).
		Int64("total", total).
		Int64("filtered", filtered).
		Int("rows", len(data)).
		Msg("request processed")

	return &Response{
		Draw:            p.Draw,
		RecordsTotal:    total,
		RecordsFiltered: filtered,
		Data:            data,
	}, nil
}

func (e *Engine) dropped(log *zerolog.Logger, table, kind string, errs []error) {
	for _, err := range errs {
		log.Debug().Err(err).Str("kind", kind).Msg("dropped term")
		if e.cfg.OnDropped != nil {
			e.cfg.OnDropped(table, kind, err)
		}
	}
}
