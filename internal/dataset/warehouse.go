package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"outlet-insights-go/internal/frame"
	"outlet-insights-go/internal/logger"
	"outlet-insights-go/internal/types"
)

const kpiSelect = `revenue_pct, new_car_reg_pct, used_car_pct, spare_parts_pct, service_revenue_pct,
  insurance_pct, finance_pct, csi_sales_pct, csi_service_pct, nps_pct, first_time_fix_pct,
  on_time_delivery_pct, complaint_resolution_pct, training_compliance_pct`

// Templates are the static per-tab query templates. $1 is the period label.
var Templates = map[types.Tab]map[string]string{
	types.Tab1: {
		types.TableDetail: `SELECT rgn, outlet_category, outlet_type, sales_outlet,
  rate_performance, rate_quality, total_score
FROM outlet_scores WHERE period = $1`,
	},
	types.Tab2: {
		types.TableDetail: `SELECT rgn, outlet_category, outlet_type, sales_outlet, sales_center_code,
  ` + kpiSelect + `
FROM outlet_kpis WHERE period = $1`,
	},
	types.Tab3: {
		types.TableDetail: `SELECT rgn, outlet_category, outlet_type, sales_outlet, sales_center_code,
  ` + kpiSelect + `
FROM outlet_kpis WHERE period = $1 AND outlet_category IN ('B','C','D')`,
		types.TableGap: `SELECT outlet_category, kpi, AVG(pct) AS avg_pct
FROM outlet_kpi_long WHERE period = $1 AND outlet_category IN ('B','C','D')
GROUP BY outlet_category, kpi`,
		types.TableRadarPrefilt: `SELECT outlet_type, ` + kpiSelect + `
FROM outlet_type_kpi_avg WHERE period = $1`,
	},
}

// WarehouseSource runs the query templates against the relational warehouse.
type WarehouseSource struct {
	db        *sql.DB
	templates map[types.Tab]map[string]string
}

func NewWarehouseSource(dsn string) (*WarehouseSource, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("open warehouse: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping warehouse: %w", err)
	}
	return &WarehouseSource{db: db, templates: Templates}, nil
}

// NewWarehouseSourceDB wraps an existing handle.
func NewWarehouseSourceDB(db *sql.DB) *WarehouseSource {
	return &WarehouseSource{db: db, templates: Templates}
}

func (s *WarehouseSource) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Fetch runs every template of the tab. A failing query degrades to an
// empty table for that name and is logged.
func (s *WarehouseSource) Fetch(ctx context.Context, tab types.Tab, period string) (Tables, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("warehouse is not connected")
	}
	log := logger.Component("dataset.warehouse").WithField("tab", tab).WithField("period", period)
	out := Tables{}
	for name, q := range s.templates[tab] {
		t, err := s.query(ctx, q, period)
		if err != nil {
			log.WithError(err).WithField("table", name).Warn("query failed, using empty table")
			out[name] = frame.New()
			continue
		}
		out[name] = t
	}
	return out, nil
}

func (s *WarehouseSource) query(ctx context.Context, q, period string) (*frame.Table, error) {
	rows, err := s.db.QueryContext(ctx, q, period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	t := frame.New(cols...)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(frame.Row, len(cols))
		for i, c := range cols {
			row[c] = cellValue(vals[i])
		}
		t.AddRow(row)
	}
	return t, rows.Err()
}

// cellValue maps driver values onto frame cell types. NUMERIC arrives as
// text and is parsed later by Normalize.
func cellValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(x)
	case int64:
		return float64(x)
	case int32:
		return float64(x)
	case float32:
		return float64(x)
	case float64, bool, string, time.Time:
		return x
	}
	return fmt.Sprint(v)
}
