package aws

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cwlTypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	ceTypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/goccy/go-json"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
)

// Serviços consultados no Cost Explorer para o sinal derivado.
const (
	cloudTrailService = "AWS CloudTrail"
	ec2Service        = "Amazon Elastic Compute Cloud - Compute"
	lambdaService     = "AWS Lambda"
)

// maxFilterLimit é o limite da API FilterLogEvents por página.
const maxFilterLimit = 10_000

// QueryEvents lê uma página de registros do CloudTrail entregues ao
// CloudWatch Logs da conta.
func (r *Repository) QueryEvents(ctx context.Context, unit entity.Unit, start, end time.Time, nextToken string, limit int) (entity.EventPage, error) {
	client, err := r.getServiceClient(ctx, unit.ID, unit.Region, "cloudwatchlogs")
	if err != nil {
		return entity.EventPage{}, err
	}
	if limit <= 0 || limit > maxFilterLimit {
		limit = maxFilterLimit
	}

	input := &cloudwatchlogs.FilterLogEventsInput{
		LogGroupName: aws.String(r.options().EventLogGroup),
		StartTime:    aws.Int64(start.UnixMilli()),
		EndTime:      aws.Int64(end.UnixMilli()),
		Limit:        aws.Int32(int32(limit)),
	}
	if nextToken != "" {
		input.NextToken = aws.String(nextToken)
	}
	if pattern := regionPattern(unit); pattern != "" {
		input.FilterPattern = aws.String(pattern)
	}

	out, err := client.(*cloudwatchlogs.Client).FilterLogEvents(ctx, input)
	if err != nil {
		return entity.EventPage{}, classify(unit.ID, "FilterLogEvents", err)
	}

	return entity.EventPage{
		Records:   toEventRecords(out.Events),
		NextToken: aws.ToString(out.NextToken),
	}, nil
}

// regionPattern filtra os eventos CloudTrail da região numa coleta multi-região.
func regionPattern(unit entity.Unit) string {
	if !regionScoped(unit) {
		return ""
	}
	return fmt.Sprintf(`{ $.awsRegion = "%s" }`, unit.Region)
}

func toEventRecords(events []cwlTypes.FilteredLogEvent) []entity.EventRecord {
	records := make([]entity.EventRecord, 0, len(events))
	for _, e := range events {
		msg := aws.ToString(e.Message)
		records = append(records, entity.EventRecord{
			Timestamp: aws.ToInt64(e.Timestamp),
			Category:  eventCategory(msg),
			Message:   msg,
		})
	}
	return records
}

// eventCategory extrai o campo eventCategory do registro do CloudTrail.
func eventCategory(message string) string {
	var rec struct {
		EventCategory string `json:"eventCategory"`
	}
	if err := json.Unmarshal([]byte(message), &rec); err != nil || rec.EventCategory == "" {
		return "Unknown"
	}
	return rec.EventCategory
}

// DerivedSignal returns the CloudTrail usage quantity billed to the account
// (ratio 1). Without CloudTrail usage it falls back to EC2 and Lambda usage
// with ratio 0, leaving the conversion to the configured default.
func (r *Repository) DerivedSignal(ctx context.Context, unit entity.Unit, start, end time.Time) (entity.DerivedSignal, error) {
	self := r.self()
	client, err := r.getServiceClient(ctx, self.ID, "", "costexplorer")
	if err != nil {
		return entity.DerivedSignal{}, err
	}
	ce := client.(*costexplorer.Client)
	days := end.Sub(start).Hours() / 24
	if days <= 0 {
		days = 1
	}

	region := ""
	if regionScoped(unit) {
		region = unit.Region
	}

	trail, err := r.usageQuantity(ctx, ce, unit.ID, region, start, end, cloudTrailService)
	if err != nil {
		return entity.DerivedSignal{}, classify(unit.ID, "GetCostAndUsage", err)
	}
	if trail > 0 {
		return entity.DerivedSignal{Source: "cost-explorer:cloudtrail", CountPerDay: trail / days, EventRatio: 1}, nil
	}

	api, err := r.usageQuantity(ctx, ce, unit.ID, region, start, end, ec2Service, lambdaService)
	if err != nil {
		return entity.DerivedSignal{}, classify(unit.ID, "GetCostAndUsage", err)
	}
	return entity.DerivedSignal{Source: "cost-explorer:ec2+lambda", CountPerDay: api / days}, nil
}

// usageFilter restringe à conta e aos serviços e, quando region não é
// vazia, à região.
func usageFilter(accountID, region string, services []string) *ceTypes.Expression {
	and := []ceTypes.Expression{
		{Dimensions: &ceTypes.DimensionValues{Key: ceTypes.DimensionLinkedAccount, Values: []string{accountID}}},
		{Dimensions: &ceTypes.DimensionValues{Key: ceTypes.DimensionService, Values: services}},
	}
	if region != "" {
		and = append(and, ceTypes.Expression{Dimensions: &ceTypes.DimensionValues{Key: ceTypes.DimensionRegion, Values: []string{region}}})
	}
	return &ceTypes.Expression{And: and}
}

func (r *Repository) usageQuantity(ctx context.Context, client *costexplorer.Client, accountID, region string, start, end time.Time, services ...string) (float64, error) {
	filter := usageFilter(accountID, region, services)

	total := 0.0
	var token *string
	for {
		out, err := client.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
			TimePeriod: &ceTypes.DateInterval{
				Start: aws.String(start.Format("2006-01-02")),
				End:   aws.String(end.Format("2006-01-02")),
			},
			Granularity:   ceTypes.GranularityDaily,
			Metrics:       []string{"UsageQuantity"},
			Filter:        filter,
			NextPageToken: token,
		})
		if err != nil {
			return 0, err
		}
		total += sumMetric(out.ResultsByTime, "UsageQuantity")
		if out.NextPageToken == nil {
			return total, nil
		}
		token = out.NextPageToken
	}
}

func sumMetric(results []ceTypes.ResultByTime, metric string) float64 {
	total := 0.0
	for _, res := range results {
		m, ok := res.Total[metric]
		if !ok || m.Amount == nil {
			continue
		}
		v, err := strconv.ParseFloat(*m.Amount, 64)
		if err == nil && v > 0 {
			total += v
		}
	}
	return total
}
