package report

import (
	"context"
	"sort"
	"time"

	"greeneats-be/internal/logger"
	"greeneats-be/internal/order"

	"go.uber.org/zap"
)

// Aggregation constants. DeliveryCost is charged per shipped order and, on a
// full refund, is the only amount the order contributes to either side.
// CostOfGoodsRatio approximates acquisition cost from the pre-discount price.
const (
	DeliveryCost     = 30.0
	CostOfGoodsRatio = 0.5
)

type Service interface {
	Revenue(ctx context.Context, start, end time.Time) (*RevenueReport, error)
	ProductDistribution(ctx context.Context, category *string) ([]ProductShare, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Revenue aggregates profit and loss over [start, end]. Canceled orders are
// excluded entirely. A refunded order contributes only the delivery cost to
// both sides; any other order contributes per line, with lines carrying an
// approved refund reversed, plus the delivery cost on both sides. The report
// also tallies units sold per product name over the same counted lines.
func (s *service) Revenue(ctx context.Context, start, end time.Time) (*RevenueReport, error) {
	orders, err := s.repo.OrdersBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	rep := &RevenueReport{
		Start:               start,
		End:                 end,
		ProductDistribution: map[string]int{},
	}
	for _, o := range orders {
		if o.Status == order.StatusCanceled {
			continue
		}
		rep.OrderCount++

		rep.Revenue += DeliveryCost
		rep.Cost += DeliveryCost
		if o.Status == order.StatusRefunded {
			continue
		}

		for _, l := range o.Lines {
			sign := 1.0
			if l.RefundApproved {
				sign = -1.0
			}
			rep.Revenue += sign * l.EffectivePrice() * float64(l.Quantity)
			rep.Cost += sign * CostOfGoodsRatio * l.CostBasis() * float64(l.Quantity)
			rep.ProductDistribution[l.ProductName] += l.Quantity
		}
	}

	rep.Net = rep.Revenue - rep.Cost
	if rep.Net >= 0 {
		rep.Profit = rep.Net
	} else {
		rep.Loss = -rep.Net
	}

	logger.FromCtx(ctx).Info("revenue report computed",
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Int("order_count", rep.OrderCount),
		zap.Float64("net", rep.Net),
	)
	return rep, nil
}

// ProductDistribution tallies units sold per product name, optionally
// limited to one category. Canceled and fully refunded orders are skipped;
// partial refunds are not reversed here, the units did ship.
func (s *service) ProductDistribution(ctx context.Context, category *string) ([]ProductShare, error) {
	orders, err := s.repo.Orders(ctx, category)
	if err != nil {
		return nil, err
	}

	var (
		total  int
		counts = map[string]int{}
	)
	for _, o := range orders {
		if o.Status == order.StatusCanceled || o.Status == order.StatusRefunded {
			continue
		}
		for _, l := range o.Lines {
			counts[l.ProductName] += l.Quantity
			total += l.Quantity
		}
	}

	shares := make([]ProductShare, 0, len(counts))
	for name, qty := range counts {
		share := 0.0
		if total > 0 {
			share = float64(qty) / float64(total)
		}
		shares = append(shares, ProductShare{ProductName: name, Quantity: qty, Share: share})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Quantity != shares[j].Quantity {
			return shares[i].Quantity > shares[j].Quantity
		}
		return shares[i].ProductName < shares[j].ProductName
	})
	return shares, nil
}
