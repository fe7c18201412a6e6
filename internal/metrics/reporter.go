package metrics

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/storefront-admin/internal/admin"
	"github.com/imrishuroy/storefront-admin/internal/aws"
)

const metricRevenue = "Revenue"

// RevenueSource is what the reporter reads from; *admin.Store satisfies it.
type RevenueSource interface {
	RevenueByRange(r admin.Range) (float64, error)
}

// RevenueReporter publishes revenue for every admin.Range as one CloudWatch
// metric with a Range dimension.
type RevenueReporter struct {
	client    aws.CloudWatchAPI
	namespace string
	log       zerolog.Logger
	nowFunc   func() time.Time
}

func NewRevenueReporter(client aws.CloudWatchAPI, namespace string, log zerolog.Logger) *RevenueReporter {
	return &RevenueReporter{
		client:    client,
		namespace: namespace,
		log:       log,
		nowFunc:   time.Now,
	}
}

// Report computes all ranges from src and sends them in a single call.
func (r *RevenueReporter) Report(ctx context.Context, src RevenueSource) error {
	now := r.nowFunc()
	data := make([]cwtypes.MetricDatum, 0, len(admin.Ranges))
	for _, rng := range admin.Ranges {
		v, err := src.RevenueByRange(rng)
		if err != nil {
			return fmt.Errorf("revenue for %s: %w", rng, err)
		}
		data = append(data, cwtypes.MetricDatum{
			MetricName: sdkaws.String(metricRevenue),
			Dimensions: []cwtypes.Dimension{
				{Name: sdkaws.String("Range"), Value: sdkaws.String(string(rng))},
			},
			Timestamp: sdkaws.Time(now),
			Unit:      cwtypes.StandardUnitNone,
			Value:     sdkaws.Float64(v),
		})
	}

	_, err := r.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  sdkaws.String(r.namespace),
		MetricData: data,
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	r.log.Debug().Int("metrics", len(data)).Str("namespace", r.namespace).Msg("revenue metrics published")
	return nil
}
