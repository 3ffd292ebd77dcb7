package aws

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
)

type resourceCounter func(ctx context.Context, unit entity.Unit) (int, error)

// CountResources soma o inventário da conta na sua região: instâncias e
// volumes EC2, funções Lambda, instâncias RDS, load balancers e buckets S3.
// Contadores que falham são ignorados; só quando todos falham o erro volta.
func (r *Repository) CountResources(ctx context.Context, unit entity.Unit) (int, error) {
	counters := map[string]resourceCounter{
		"ec2:instances":   r.countInstances,
		"ec2:volumes":     r.countVolumes,
		"lambda:function": r.countFunctions,
		"rds:instances":   r.countDatabases,
		"elbv2:lbs":       r.countLoadBalancers,
		"s3:buckets":      r.countBuckets,
	}

	var (
		mu       sync.Mutex
		total    int
		failures int
		lastErr  error
	)
	g, gctx := errgroup.WithContext(ctx)
	for name, count := range counters {
		g.Go(func() error {
			n, err := count(gctx, unit)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures++
				lastErr = err
				r.logger.Debug("resource counter failed", zap.String("unit_id", unit.ID), zap.String("counter", name), zap.Error(err))
				return nil
			}
			total += n
			return nil
		})
	}
	_ = g.Wait()

	if failures == len(counters) {
		return 0, fmt.Errorf("all resource counters failed: %w", lastErr)
	}
	return total, nil
}

func (r *Repository) countInstances(ctx context.Context, unit entity.Unit) (int, error) {
	client, err := r.getServiceClient(ctx, unit.ID, unit.Region, "ec2")
	if err != nil {
		return 0, err
	}
	n := 0
	paginator := ec2.NewDescribeInstancesPaginator(client.(*ec2.Client), &ec2.DescribeInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return n, classify(unit.ID, "DescribeInstances", err)
		}
		for _, reservation := range page.Reservations {
			n += len(reservation.Instances)
		}
	}
	return n, nil
}

func (r *Repository) countVolumes(ctx context.Context, unit entity.Unit) (int, error) {
	client, err := r.getServiceClient(ctx, unit.ID, unit.Region, "ec2")
	if err != nil {
		return 0, err
	}
	n := 0
	paginator := ec2.NewDescribeVolumesPaginator(client.(*ec2.Client), &ec2.DescribeVolumesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return n, classify(unit.ID, "DescribeVolumes", err)
		}
		n += len(page.Volumes)
	}
	return n, nil
}

func (r *Repository) countFunctions(ctx context.Context, unit entity.Unit) (int, error) {
	client, err := r.getServiceClient(ctx, unit.ID, unit.Region, "lambda")
	if err != nil {
		return 0, err
	}
	n := 0
	paginator := lambda.NewListFunctionsPaginator(client.(*lambda.Client), &lambda.ListFunctionsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return n, classify(unit.ID, "ListFunctions", err)
		}
		n += len(page.Functions)
	}
	return n, nil
}

func (r *Repository) countDatabases(ctx context.Context, unit entity.Unit) (int, error) {
	client, err := r.getServiceClient(ctx, unit.ID, unit.Region, "rds")
	if err != nil {
		return 0, err
	}
	n := 0
	paginator := rds.NewDescribeDBInstancesPaginator(client.(*rds.Client), &rds.DescribeDBInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return n, classify(unit.ID, "DescribeDBInstances", err)
		}
		n += len(page.DBInstances)
	}
	return n, nil
}

func (r *Repository) countLoadBalancers(ctx context.Context, unit entity.Unit) (int, error) {
	client, err := r.getServiceClient(ctx, unit.ID, unit.Region, "elbv2")
	if err != nil {
		return 0, err
	}
	n := 0
	paginator := elasticloadbalancingv2.NewDescribeLoadBalancersPaginator(client.(*elasticloadbalancingv2.Client), &elasticloadbalancingv2.DescribeLoadBalancersInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return n, classify(unit.ID, "DescribeLoadBalancers", err)
		}
		n += len(page.LoadBalancers)
	}
	return n, nil
}

func (r *Repository) countBuckets(ctx context.Context, unit entity.Unit) (int, error) {
	return r.CountBuckets(ctx, unit)
}
