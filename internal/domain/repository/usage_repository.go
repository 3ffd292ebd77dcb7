package repository

import (
	"context"
	"time"

	"github.com/diillson/falcon-cost-estimator-go/internal/domain/entity"
)

// UsageRepository is the mandatory part of the usage data provider.
type UsageRepository interface {
	// Connect estabelece a sessão para o perfil ("" usa a cadeia padrão).
	Connect(ctx context.Context, profile string) (entity.CallerIdentity, error)

	// ListUnits returns every active unit reachable from the session.
	ListUnits(ctx context.Context) ([]entity.Unit, error)

	// CountResources returns the unit's inventory size used by the heuristic tier.
	CountResources(ctx context.Context, unit entity.Unit) (int, error)
}

// EventLogSource pages raw event records for a unit. Optional.
type EventLogSource interface {
	QueryEvents(ctx context.Context, unit entity.Unit, start, end time.Time, nextToken string, limit int) (entity.EventPage, error)
}

// DerivedSignalSource fornece um sinal correlato mais barato que os logs. Opcional.
type DerivedSignalSource interface {
	DerivedSignal(ctx context.Context, unit entity.Unit, start, end time.Time) (entity.DerivedSignal, error)
}

// DirectorySource counts the identity principals of the whole directory. Optional.
type DirectorySource interface {
	CountPrincipals(ctx context.Context) (int, error)
}

// RegionSource lists the regions enabled for a unit, opt-in ones included
// only when the unit opted in. Optional.
type RegionSource interface {
	EnabledRegions(ctx context.Context, unit entity.Unit) ([]string, error)
}

// ScanInventorySource conta, na região da unidade, o que as varreduras
// opcionais cobririam. Opcional.
type ScanInventorySource interface {
	CountBuckets(ctx context.Context, unit entity.Unit) (int, error)
	CountInstances(ctx context.Context, unit entity.Unit) (entity.InstanceInventory, error)
}

// BudgetSource lists the budgets configured in a unit. Optional.
type BudgetSource interface {
	GetBudgets(ctx context.Context, unitID string) ([]entity.BudgetInfo, error)
}

// ObjectStore recebe os relatórios enviados para armazenamento remoto.
type ObjectStore interface {
	PutObject(ctx context.Context, bucket, key, contentType string, body []byte) error
}
