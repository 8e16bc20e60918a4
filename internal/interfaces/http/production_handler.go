package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/molino-api/internal/application/dto"
	"github.com/jhoicas/molino-api/internal/application/orchestrator"
	"github.com/jhoicas/molino-api/internal/domain/entity"
)

// ProductionHandler corridas de molienda.
type ProductionHandler struct {
	orch *orchestrator.Orchestrator
}

// NewProductionHandler construye el handler.
func NewProductionHandler(orch *orchestrator.Orchestrator) *ProductionHandler {
	return &ProductionHandler{orch: orch}
}

// Record POST /api/production-runs
func (h *ProductionHandler) Record(c *fiber.Ctx) error {
	var in dto.ProductionRunRequest
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	outputs := make([]entity.ProductionOutput, 0, len(in.Outputs))
	for _, o := range in.Outputs {
		outputs = append(outputs, entity.ProductionOutput{ItemName: o.ItemName, BagWeight: o.BagWeight, BagQty: o.BagQty})
	}
	res, err := h.orch.RecordProduction(c.UserContext(), entity.ProductionRun{
		BatchNumber:       in.BatchNumber,
		InputWarehouseID:  in.InputWarehouseID,
		OutputWarehouseID: in.OutputWarehouseID,
		TotalWheatUsed:    in.TotalWheatUsed,
		Outputs:           outputs,
		CreatedBy:         GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	stock := make([]dto.StockEntryResponse, 0, len(res.Stock))
	for _, e := range res.Stock {
		stock = append(stock, dto.ToStockEntryResponse(e))
	}
	status := fiber.StatusCreated
	if res.Replayed {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(dto.ProductionRunResponse{
		BatchNumber:   res.BatchNumber,
		Stock:         stock,
		GrossWeightKg: res.GrossWeightKg,
		BranWeightKg:  res.BranWeightKg,
		YieldPct:      res.YieldPct,
		Replayed:      res.Replayed,
	})
}
