package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2Types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
)

const optInNotOptedIn = "not-opted-in"

// EnabledRegions lista as regiões da conta, excluindo as opt-in não habilitadas.
func (r *Repository) EnabledRegions(ctx context.Context, unit entity.Unit) ([]string, error) {
	client, err := r.getServiceClient(ctx, unit.ID, unit.Region, "ec2")
	if err != nil {
		return nil, err
	}
	out, err := client.(*ec2.Client).DescribeRegions(ctx, &ec2.DescribeRegionsInput{AllRegions: aws.Bool(true)})
	if err != nil {
		return nil, classify(unit.ID, "DescribeRegions", err)
	}
	return enabledRegions(out.Regions), nil
}

func enabledRegions(regions []ec2Types.Region) []string {
	out := make([]string, 0, len(regions))
	for _, region := range regions {
		name := aws.ToString(region.RegionName)
		if name == "" || aws.ToString(region.OptInStatus) == optInNotOptedIn {
			continue
		}
		out = append(out, name)
	}
	return out
}

// regionScoped indica uma coleta multi-região: só então sinais globais da
// conta são filtrados pela região, para não serem somados várias vezes.
func regionScoped(unit entity.Unit) bool {
	return unit.Region != "" && len(unit.Regions) > 1
}

// CountBuckets counts the S3 buckets of the unit. In a multi-region run
// only the buckets located in unit.Region are counted.
func (r *Repository) CountBuckets(ctx context.Context, unit entity.Unit) (int, error) {
	client, err := r.getServiceClient(ctx, unit.ID, unit.Region, "s3")
	if err != nil {
		return 0, err
	}

	input := &s3.ListBucketsInput{MaxBuckets: aws.Int32(1000)}
	if regionScoped(unit) {
		input.BucketRegion = aws.String(unit.Region)
	}

	n := 0
	paginator := s3.NewListBucketsPaginator(client.(*s3.Client), input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return n, classify(unit.ID, "ListBuckets", err)
		}
		n += len(page.Buckets)
	}
	return n, nil
}

// CountInstances conta as instâncias EC2 ligadas ou paradas na região;
// toda plataforma que não é Windows conta como Linux.
func (r *Repository) CountInstances(ctx context.Context, unit entity.Unit) (entity.InstanceInventory, error) {
	client, err := r.getServiceClient(ctx, unit.ID, unit.Region, "ec2")
	if err != nil {
		return entity.InstanceInventory{}, err
	}

	var inv entity.InstanceInventory
	paginator := ec2.NewDescribeInstancesPaginator(client.(*ec2.Client), &ec2.DescribeInstancesInput{
		Filters: []ec2Types.Filter{{
			Name:   aws.String("instance-state-name"),
			Values: []string{"running", "stopped"},
		}},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return inv, classify(unit.ID, "DescribeInstances", err)
		}
		inv = addInstances(inv, page.Reservations)
	}
	return inv, nil
}

func addInstances(inv entity.InstanceInventory, reservations []ec2Types.Reservation) entity.InstanceInventory {
	for _, reservation := range reservations {
		for _, instance := range reservation.Instances {
			inv.Total++
			if instance.Platform != ec2Types.PlatformValuesWindows {
				inv.Linux++
			}
		}
	}
	return inv
}
