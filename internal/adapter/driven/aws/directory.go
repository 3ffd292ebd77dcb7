package aws

import (
	"context"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/budgets"
	"github.com/aws/aws-sdk-go-v2/service/iam"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
)

// CountPrincipals counts IAM users and roles of the caller account.
func (r *Repository) CountPrincipals(ctx context.Context) (int, error) {
	self := r.self()
	client, err := r.getServiceClient(ctx, self.ID, "", "iam")
	if err != nil {
		return 0, err
	}
	iamClient := client.(*iam.Client)

	n := 0
	users := iam.NewListUsersPaginator(iamClient, &iam.ListUsersInput{})
	for users.HasMorePages() {
		page, err := users.NextPage(ctx)
		if err != nil {
			return 0, classify(self.ID, "ListUsers", err)
		}
		n += len(page.Users)
	}

	roles := iam.NewListRolesPaginator(iamClient, &iam.ListRolesInput{})
	for roles.HasMorePages() {
		page, err := roles.NextPage(ctx)
		if err != nil {
			return 0, classify(self.ID, "ListRoles", err)
		}
		n += len(page.Roles)
	}
	return n, nil
}

// GetBudgets lista os orçamentos configurados na conta.
func (r *Repository) GetBudgets(ctx context.Context, unitID string) ([]entity.BudgetInfo, error) {
	client, err := r.getServiceClient(ctx, unitID, "", "budgets")
	if err != nil {
		return nil, err
	}

	result, err := client.(*budgets.Client).DescribeBudgets(ctx, &budgets.DescribeBudgetsInput{
		AccountId: aws.String(unitID),
	})
	if err != nil {
		return nil, classify(unitID, "DescribeBudgets", err)
	}

	budgetsData := []entity.BudgetInfo{}
	for _, budget := range result.Budgets {
		b := entity.BudgetInfo{Name: aws.ToString(budget.BudgetName)}
		if budget.BudgetLimit != nil {
			b.Limit = parseAmount(budget.BudgetLimit.Amount)
		}
		if budget.CalculatedSpend != nil {
			if budget.CalculatedSpend.ActualSpend != nil {
				b.Actual = parseAmount(budget.CalculatedSpend.ActualSpend.Amount)
			}
			if budget.CalculatedSpend.ForecastedSpend != nil {
				b.Forecast = parseAmount(budget.CalculatedSpend.ForecastedSpend.Amount)
			}
		}
		budgetsData = append(budgetsData, b)
	}
	return budgetsData, nil
}

func parseAmount(s *string) float64 {
	v, _ := strconv.ParseFloat(aws.ToString(s), 64)
	return v
}
