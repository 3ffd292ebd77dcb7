package aws

import (
	"context"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	orgTypes "github.com/aws/aws-sdk-go-v2/service/organizations/types"
	"go.uber.org/zap"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
)

// ListUnits returns the ACTIVE accounts of the organization with their tags.
// Tags that cannot be read leave the account untagged.
func (r *Repository) ListUnits(ctx context.Context) ([]entity.Unit, error) {
	self := r.self()
	client, err := r.getServiceClient(ctx, self.ID, "", "organizations")
	if err != nil {
		return nil, err
	}
	orgClient := client.(*organizations.Client)

	var units []entity.Unit
	paginator := organizations.NewListAccountsPaginator(orgClient, &organizations.ListAccountsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify(self.ID, "ListAccounts", err)
		}
		for _, acct := range page.Accounts {
			if acct.Status != orgTypes.AccountStatusActive {
				continue
			}
			id := aws.ToString(acct.Id)
			tags, err := r.accountTags(ctx, orgClient, id)
			if err != nil {
				r.logger.Debug("account tags unavailable", zap.String("unit_id", id), zap.Error(err))
			}
			units = append(units, entity.Unit{
				ID:     id,
				Name:   aws.ToString(acct.Name),
				Region: self.Region,
				Tags:   tags,
			})
		}
	}

	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })
	return units, nil
}

func (r *Repository) accountTags(ctx context.Context, client *organizations.Client, accountID string) (map[string]string, error) {
	tags := make(map[string]string)
	paginator := organizations.NewListTagsForResourcePaginator(client, &organizations.ListTagsForResourceInput{
		ResourceId: aws.String(accountID),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return tags, classify(accountID, "ListTagsForResource", err)
		}
		for _, t := range page.Tags {
			tags[aws.ToString(t.Key)] = aws.ToString(t.Value)
		}
	}
	return tags, nil
}
