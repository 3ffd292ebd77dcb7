package aws

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/budgets"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"go.uber.org/zap"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
	"github.com/diillson/falcon-cost-estimator-go/internal/domain/repository"
	"github.com/diillson/falcon-cost-estimator-go/internal/shared/types"
)

var (
	_ repository.UsageRepository     = (*Repository)(nil)
	_ repository.PricingRepository   = (*Repository)(nil)
	_ repository.EventLogSource      = (*Repository)(nil)
	_ repository.DerivedSignalSource = (*Repository)(nil)
	_ repository.DirectorySource     = (*Repository)(nil)
	_ repository.BudgetSource        = (*Repository)(nil)
	_ repository.RegionSource        = (*Repository)(nil)
	_ repository.ScanInventorySource = (*Repository)(nil)
	_ repository.ObjectStore         = (*Repository)(nil)
)

// globalRegion hospeda os endpoints globais (Cost Explorer, Budgets, Pricing, Organizations).
const globalRegion = "us-east-1"

const roleSessionName = "falcon-cost-estimator"

// Options configures the AWS repository.
type Options struct {
	Region          string
	RoleNames       []string
	EventLogGroup   string
	ComputeVCPU     float64
	ComputeMemoryGB float64
}

// OptionsFromConfig extrai as opções do adaptador da configuração efetiva.
func OptionsFromConfig(c types.Config) Options {
	return Options{
		Region:          c.Region,
		RoleNames:       c.RoleNames,
		EventLogGroup:   c.EventLogGroup,
		ComputeVCPU:     c.ComputeVCPU,
		ComputeMemoryGB: c.ComputeMemoryGB,
	}
}

// Repository implements the usage, pricing and object-store ports on top of
// the AWS SDK, with one config per account and a client cache.
type Repository struct {
	opts   Options
	logger *zap.Logger

	mu          sync.Mutex
	base        *aws.Config
	identity    entity.CallerIdentity
	cfgCache    map[string]aws.Config
	clientCache map[string]interface{}
}

// NewRepository cria o repositório; Connect precisa ser chamado antes do uso.
func NewRepository(opts Options, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Region == "" {
		opts.Region = globalRegion
	}
	return &Repository{
		opts:        opts,
		logger:      logger,
		cfgCache:    make(map[string]aws.Config),
		clientCache: make(map[string]interface{}),
	}
}

// Configure replaces the options once the effective configuration is known.
func (r *Repository) Configure(opts Options) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if opts.Region == "" {
		opts.Region = globalRegion
	}
	r.opts = opts
}

// SetLogger troca o logger; deve ser chamado antes do primeiro Connect.
func (r *Repository) SetLogger(logger *zap.Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// Connect carrega as credenciais do perfil ("" usa a cadeia padrão) e
// confirma a identidade com o STS.
func (r *Repository) Connect(ctx context.Context, profile string) (entity.CallerIdentity, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(r.options().Region)}
	if profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return entity.CallerIdentity{}, fmt.Errorf("failed to load AWS config for profile %s: %w", profile, err)
	}

	out, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return entity.CallerIdentity{}, fmt.Errorf("error getting caller identity for profile %s: %w", profile, err)
	}

	id := entity.CallerIdentity{
		AccountID: aws.ToString(out.Account),
		ARN:       aws.ToString(out.Arn),
		Profile:   profile,
	}

	r.mu.Lock()
	r.base = &cfg
	r.identity = id
	r.cfgCache = make(map[string]aws.Config)
	r.clientCache = make(map[string]interface{})
	r.mu.Unlock()

	r.logger.Debug("aws session established", zap.String("account_id", id.AccountID), zap.String("arn", id.ARN))
	return id, nil
}

func (r *Repository) options() Options {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opts
}

// self is the caller account, used for organization-wide APIs.
func (r *Repository) self() entity.Unit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return entity.Unit{ID: r.identity.AccountID, Name: r.identity.AccountID, Region: r.opts.Region}
}

// configFor returns the config for a unit: the session itself for the caller
// account, otherwise the first role in RoleNames that can be assumed.
func (r *Repository) configFor(ctx context.Context, unitID string) (aws.Config, error) {
	r.mu.Lock()
	if r.base == nil {
		r.mu.Unlock()
		return aws.Config{}, fmt.Errorf("aws session not connected")
	}
	base := *r.base
	if unitID == "" || unitID == r.identity.AccountID {
		r.mu.Unlock()
		return base, nil
	}
	if cfg, ok := r.cfgCache[unitID]; ok {
		r.mu.Unlock()
		return cfg, nil
	}
	roles := r.opts.RoleNames
	r.mu.Unlock()

	stsClient := sts.NewFromConfig(base)
	var lastErr error = fmt.Errorf("no role names configured")
	for _, role := range roles {
		roleARN := fmt.Sprintf("arn:aws:iam::%s:role/%s", unitID, role)
		assumed := base.Copy()
		assumed.Credentials = aws.NewCredentialsCache(stscreds.NewAssumeRoleProvider(stsClient, roleARN, func(o *stscreds.AssumeRoleOptions) {
			o.RoleSessionName = roleSessionName
		}))

		if _, err := sts.NewFromConfig(assumed).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{}); err != nil {
			lastErr = err
			r.logger.Debug("assume role failed", zap.String("unit_id", unitID), zap.String("role", role), zap.Error(err))
			continue
		}

		r.mu.Lock()
		r.cfgCache[unitID] = assumed
		r.mu.Unlock()
		return assumed, nil
	}
	return aws.Config{}, types.NewUnitAccessError(unitID, "AssumeRole", lastErr)
}

func (r *Repository) getServiceClient(ctx context.Context, unitID, region, service string) (interface{}, error) {
	cacheKey := fmt.Sprintf("%s-%s-%s", unitID, region, service)

	r.mu.Lock()
	if client, ok := r.clientCache[cacheKey]; ok {
		r.mu.Unlock()
		return client, nil
	}
	r.mu.Unlock()

	cfg, err := r.configFor(ctx, unitID)
	if err != nil {
		return nil, err
	}

	regionalCfg := cfg.Copy()
	if region != "" {
		regionalCfg.Region = region
	}

	var client interface{}
	switch service {
	case "ec2":
		client = ec2.NewFromConfig(regionalCfg)
	case "rds":
		client = rds.NewFromConfig(regionalCfg)
	case "lambda":
		client = lambda.NewFromConfig(regionalCfg)
	case "elbv2":
		client = elasticloadbalancingv2.NewFromConfig(regionalCfg)
	case "cloudwatchlogs":
		client = cloudwatchlogs.NewFromConfig(regionalCfg)
	case "s3":
		client = s3.NewFromConfig(regionalCfg)
	case "iam":
		client = iam.NewFromConfig(regionalCfg)
	case "organizations":
		regionalCfg.Region = globalRegion
		client = organizations.NewFromConfig(regionalCfg)
	case "costexplorer":
		regionalCfg.Region = globalRegion
		client = costexplorer.NewFromConfig(regionalCfg)
	case "budgets":
		regionalCfg.Region = globalRegion
		client = budgets.NewFromConfig(regionalCfg)
	case "pricing":
		regionalCfg.Region = globalRegion
		client = pricing.NewFromConfig(regionalCfg)
	default:
		return nil, fmt.Errorf("unsupported service: %s", service)
	}

	r.mu.Lock()
	r.clientCache[cacheKey] = client
	r.mu.Unlock()

	return client, nil
}
