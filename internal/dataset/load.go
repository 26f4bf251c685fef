package dataset

import (
	"context"

	"github.com/sirupsen/logrus"
	"outlet-insights-go/internal/logger"
	"outlet-insights-go/internal/types"
)

// Load fetches every tab for every period. A failed fetch is logged and
// contributes no tables; it never fails the load.
func Load(ctx context.Context, src Source, periods []string) Store {
	log := logger.Component("dataset.load")
	store := Store{}
	for _, tab := range types.Tabs {
		store[tab] = map[string]Tables{}
		for _, period := range periods {
			tables, err := src.Fetch(ctx, tab, period)
			if err != nil {
				log.WithError(err).WithFields(logrus.Fields{
					"tab":    tab,
					"period": period,
				}).Warn("fetch failed, using empty tables")
				tables = Tables{}
			}
			if tables == nil {
				tables = Tables{}
			}
			store[tab][period] = tables
			log.WithFields(logrus.Fields{
				"tab":    tab,
				"period": period,
				"tables": len(tables),
				"rows":   rowCount(tables),
			}).Info("period loaded")
		}
	}
	return store
}

func rowCount(t Tables) int {
	n := 0
	for _, tb := range t {
		n += tb.Len()
	}
	return n
}
