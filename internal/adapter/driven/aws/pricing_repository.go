package aws

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	pricingTypes "github.com/aws/aws-sdk-go-v2/service/pricing/types"
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
	"github.com/diillson/falcon-cost-estimator-go/internal/shared/types"
)

// maxPricePages limita a varredura do Price List por consulta.
const maxPricePages = 10

// priceQuery describes how one dimension maps onto the Price List API.
type priceQuery struct {
	serviceCode string
	attributes  map[string]string
	usageSuffix string
	unit        entity.PriceUnit
	scale       float64
}

var priceQueries = map[entity.PriceDimension]priceQuery{
	entity.DimensionThroughputUnit: {
		serviceCode: "AmazonKinesis",
		attributes:  map[string]string{"productFamily": "Kinesis Streams"},
		usageSuffix: "Storage-ShardHour",
		unit:        entity.PerHour,
		scale:       1,
	},
	entity.DimensionStorageGB: {
		serviceCode: "AmazonS3",
		attributes:  map[string]string{"productFamily": "Storage", "volumeType": "Standard"},
		usageSuffix: "TimedStorage-ByteHrs",
		unit:        entity.PerGBMonth,
		scale:       1,
	},
	entity.DimensionSecretsPer10K: {
		serviceCode: "AWSSecretsManager",
		usageSuffix: "AWSSecretsManager-APIRequest",
		unit:        entity.Per10K,
		scale:       10_000,
	},
	entity.DimensionPrivateConnection: {
		serviceCode: "AmazonVPC",
		usageSuffix: "VpcEndpoint-Hours",
		unit:        entity.PerHour,
		scale:       1,
	},
	entity.DimensionGateway: {
		serviceCode: "AmazonEC2",
		attributes:  map[string]string{"productFamily": "NAT Gateway"},
		usageSuffix: "NatGateway-Hours",
		unit:        entity.PerHour,
		scale:       1,
	},
}

// Fargate é cobrado por vCPU-hora e GB-hora; o preço da instância junta os dois.
var (
	fargateCPU = priceQuery{serviceCode: "AmazonECS", usageSuffix: "Fargate-vCPU-Hours:perCPU", unit: entity.PerHour, scale: 1}
	fargateMem = priceQuery{serviceCode: "AmazonECS", usageSuffix: "Fargate-GB-Hours", unit: entity.PerHour, scale: 1}
)

// LookupPrice consulta o AWS Price List para uma dimensão na região.
func (r *Repository) LookupPrice(ctx context.Context, region string, dim entity.PriceDimension) (entity.Price, error) {
	if dim == entity.DimensionComputeInstance {
		return r.computePrice(ctx, region)
	}
	q, ok := priceQueries[dim]
	if !ok {
		return entity.Price{}, fmt.Errorf("%w: unknown dimension %s", types.ErrPricingUnavailable, dim)
	}
	amount, err := r.queryPrice(ctx, region, q)
	if err != nil {
		return entity.Price{}, err
	}
	return entity.Price{Amount: amount, Unit: q.unit, Currency: "USD"}, nil
}

func (r *Repository) computePrice(ctx context.Context, region string) (entity.Price, error) {
	opts := r.options()
	cpu, err := r.queryPrice(ctx, region, fargateCPU)
	if err != nil {
		return entity.Price{}, err
	}
	mem, err := r.queryPrice(ctx, region, fargateMem)
	if err != nil {
		return entity.Price{}, err
	}
	hourly := decimal.NewFromFloat(cpu).Mul(decimal.NewFromFloat(opts.ComputeVCPU)).
		Add(decimal.NewFromFloat(mem).Mul(decimal.NewFromFloat(opts.ComputeMemoryGB)))
	return entity.Price{Amount: hourly.Round(6).InexactFloat64(), Unit: entity.PerHour, Currency: "USD"}, nil
}

func (r *Repository) queryPrice(ctx context.Context, region string, q priceQuery) (float64, error) {
	self := r.self()
	client, err := r.getServiceClient(ctx, self.ID, "", "pricing")
	if err != nil {
		return 0, err
	}

	filters := []pricingTypes.Filter{{
		Type:  pricingTypes.FilterTypeTermMatch,
		Field: aws.String("regionCode"),
		Value: aws.String(region),
	}}
	for field, value := range q.attributes {
		filters = append(filters, pricingTypes.Filter{
			Type:  pricingTypes.FilterTypeTermMatch,
			Field: aws.String(field),
			Value: aws.String(value),
		})
	}

	paginator := pricing.NewGetProductsPaginator(client.(*pricing.Client), &pricing.GetProductsInput{
		ServiceCode:   aws.String(q.serviceCode),
		Filters:       filters,
		FormatVersion: aws.String("aws_v1"),
	})
	for pages := 0; paginator.HasMorePages() && pages < maxPricePages; pages++ {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, classify(self.ID, "GetProducts", err)
		}
		if usd, ok := matchOffer(page.PriceList, q.usageSuffix); ok {
			return decimal.NewFromFloat(usd).Mul(decimal.NewFromFloat(q.scale)).Round(6).InexactFloat64(), nil
		}
	}
	return 0, fmt.Errorf("%w: no %s offer for %s in %s", types.ErrPricingUnavailable, q.usageSuffix, q.serviceCode, region)
}

// priceDocument é o subconjunto usado de um item do Price List.
type priceDocument struct {
	Product struct {
		Attributes map[string]string `json:"attributes"`
	} `json:"product"`
	Terms struct {
		OnDemand map[string]struct {
			PriceDimensions map[string]struct {
				Unit         string            `json:"unit"`
				BeginRange   string            `json:"beginRange"`
				PricePerUnit map[string]string `json:"pricePerUnit"`
			} `json:"priceDimensions"`
		} `json:"OnDemand"`
	} `json:"terms"`
}

// matchOffer returns the first positive on-demand USD price whose usage type
// ends with suffix. Tiered prices use the tier that starts at zero.
func matchOffer(priceList []string, suffix string) (float64, bool) {
	for _, raw := range priceList {
		var doc priceDocument
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			continue
		}
		if !strings.HasSuffix(doc.Product.Attributes["usagetype"], suffix) {
			continue
		}
		for _, term := range doc.Terms.OnDemand {
			for _, pd := range term.PriceDimensions {
				if pd.BeginRange != "" && pd.BeginRange != "0" {
					continue
				}
				usd, err := strconv.ParseFloat(pd.PricePerUnit["USD"], 64)
				if err == nil && usd > 0 {
					return usd, true
				}
			}
		}
	}
	return 0, false
}
