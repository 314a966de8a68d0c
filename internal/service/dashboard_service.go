package service

import (
	"go-pos-kardex/internal/model"
	"go-pos-kardex/internal/repository"

	"github.com/shopspring/decimal"
)

type DashboardService interface {
	GetMetrics() (*DashboardMetrics, error)
}

// DashboardMetrics uses the field names the dashboard frontend expects.
type DashboardMetrics struct {
	TotalProducts  int64           `json:"totalProductos"`
	TotalStock     int64           `json:"totalStock"`
	InventoryValue decimal.Decimal `json:"valorInventario"`
	LowStockCount  int64           `json:"productosBajoStock"`
	TotalStockIn   int64           `json:"totalEntradas"`
	TotalStockOut  int64           `json:"totalSalidas"`
}

type dashboardService struct {
	productRepo  repository.ProductRepository
	movementRepo repository.MovementRepository
}

func NewDashboardService(pRepo repository.ProductRepository, mRepo repository.MovementRepository) DashboardService {
	return &dashboardService{productRepo: pRepo, movementRepo: mRepo}
}

// GetMetrics aggregates over live data without transactional isolation;
// concurrent writes may shift counts between queries, which is fine for
// a dashboard snapshot.
func (s *dashboardService) GetMetrics() (*DashboardMetrics, error) {
	metrics := &DashboardMetrics{}

	var err error
	if metrics.TotalProducts, err = s.productRepo.CountActive(); err != nil {
		return nil, err
	}
	if metrics.TotalStock, err = s.productRepo.TotalStock(); err != nil {
		return nil, err
	}
	if metrics.InventoryValue, err = s.productRepo.InventoryValuation(); err != nil {
		return nil, err
	}
	if metrics.LowStockCount, err = s.productRepo.LowStockCount(); err != nil {
		return nil, err
	}
	if metrics.TotalStockIn, err = s.movementRepo.CountByKind(model.KindStockIn); err != nil {
		return nil, err
	}
	if metrics.TotalStockOut, err = s.movementRepo.CountByKind(model.KindStockOut); err != nil {
		return nil, err
	}

	return metrics, nil
}
