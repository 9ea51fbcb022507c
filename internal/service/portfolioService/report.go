package portfolioService

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mgupta0995/stockfolio/internal/model"
	"github.com/mgupta0995/stockfolio/internal/service"
	"github.com/mgupta0995/stockfolio/utils"
)

// GenerateReport renders the current portfolio into a workbook: one sheet
// per owner plus a combined sheet when several owners exist.
func (s *PortfolioService) GenerateReport(ctx context.Context) (fileBytes []byte, filename string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GenerateReport"

	slog.Debug("GenerateReport start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("GenerateReport finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	s.mu.RLock()
	holdings, quotes := s.holdings, s.quotes
	s.mu.RUnlock()

	owners := Owners(holdings)

	reports := make([]model.OwnerReport, 0, len(owners)+1)
	if len(owners) > 1 {
		reports = append(reports, model.OwnerReport{
			Owner:    model.OwnerAll,
			Snapshot: BuildSnapshot(EnrichHoldings(holdings, quotes)),
		})
	}

	for _, owner := range owners {
		reports = append(reports, model.OwnerReport{
			Owner:    owner,
			Snapshot: BuildSnapshot(EnrichHoldings(FilterByOwner(holdings, owner), quotes)),
		})
	}

	fileBytes, ext, err := s.reportGenerator.Generate(ctx, reports)
	if err != nil {
		slog.Error("got error from reportGenerator.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	filename = fmt.Sprintf("portfolio_%s%s", time.Now().Format("2006-01-02"), ext)

	return fileBytes, filename, nil
}

// ExportReport uploads the generated workbook to cloud storage and returns
// the shareable download link.
func (s *PortfolioService) ExportReport(ctx context.Context) (downloadLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ExportReport"

	slog.Debug("ExportReport start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("ExportReport finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	if s.cloudStorage == nil {
		return "", service.ErrCloudStorageDisabled
	}

	fileBytes, filename, err := s.GenerateReport(ctx)
	if err != nil {
		return "", err
	}

	downloadLink, err = s.cloudStorage.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
	if err != nil {
		slog.Error("got error from cloudStorage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	return downloadLink, nil
}
