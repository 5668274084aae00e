package grpc

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/mutualfund-backend/internal/domain"
	"github.com/simaogato/mutualfund-backend/internal/usecase/catalog"
	"github.com/simaogato/mutualfund-backend/internal/usecase/importer"
	"github.com/simaogato/mutualfund-backend/internal/usecase/portfolio"
)

// Server implements the MutualFundService gRPC server
type Server struct {
	CatalogService   *catalog.CatalogService
	PortfolioService *portfolio.PortfolioService
	Importer         *importer.Importer
}

var _ MutualFundServiceServer = (*Server)(nil)

// NewServer creates a new gRPC server instance
func NewServer(
	catalogService *catalog.CatalogService,
	portfolioService *portfolio.PortfolioService,
	imp *importer.Importer,
) *Server {
	return &Server{
		CatalogService:   catalogService,
		PortfolioService: portfolioService,
		Importer:         imp,
	}
}

// ListFundHouses handles the ListFundHouses RPC
func (s *Server) ListFundHouses(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fundHouses, err := s.CatalogService.ListFundHouses(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	items := make([]any, 0, len(fundHouses))
	for _, fh := range fundHouses {
		items = append(items, fundHouseToMap(fh))
	}

	return newResponse(map[string]any{"fund_houses": items})
}

// ImportFundHouses handles the ImportFundHouses RPC
func (s *Server) ImportFundHouses(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.Importer.ImportFundHouses(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	return newResponse(map[string]any{
		"created":  res.Created,
		"existing": res.Existing,
	})
}

// ImportSchemes handles the ImportSchemes RPC
func (s *Server) ImportSchemes(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.Importer.ImportSchemes(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	return newResponse(map[string]any{
		"created": res.Created,
		"skipped": res.Skipped,
	})
}

// ListSchemes handles the ListSchemes RPC
func (s *Server) ListSchemes(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	// Parse fund house ID
	fundHouseID, err := uuid.Parse(req.GetFields()["fund_house_id"].GetStringValue())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid fund_house_id format: %v", err)
	}

	schemes, err := s.CatalogService.ListSchemes(ctx, fundHouseID)
	if err != nil {
		return nil, mapError(err)
	}

	items := make([]any, 0, len(schemes))
	for _, sc := range schemes {
		items = append(items, schemeToMap(sc))
	}

	return newResponse(map[string]any{"schemes": items})
}

// ListPortfolio handles the ListPortfolio RPC
func (s *Server) ListPortfolio(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, ok := UserFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing x-user-id header")
	}

	positions, err := s.PortfolioService.List(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}

	items := make([]any, 0, len(positions))
	for i := range positions {
		items = append(items, positionToMap(&positions[i]))
	}

	return newResponse(map[string]any{"holdings": items})
}

// CreatePortfolio handles the CreatePortfolio RPC
func (s *Server) CreatePortfolio(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, ok := UserFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing x-user-id header")
	}

	// Parse scheme ID
	schemeID, err := uuid.Parse(req.GetFields()["scheme_id"].GetStringValue())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid scheme_id format: %v", err)
	}

	// Parse units, sent either as a decimal string or a number
	units, err := decimalField(req, "units")
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid units format: %v", err)
	}

	pos, err := s.PortfolioService.Create(ctx, userID, schemeID, units)
	if err != nil {
		return nil, mapError(err)
	}

	return newResponse(map[string]any{"holding": positionToMap(pos)})
}

func decimalField(req *structpb.Struct, key string) (decimal.Decimal, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return decimal.Zero, errors.New("field is required")
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return decimal.NewFromString(kind.StringValue)
	case *structpb.Value_NumberValue:
		return decimal.NewFromFloat(kind.NumberValue), nil
	default:
		return decimal.Zero, errors.New("expected a string or number")
	}
}

func newResponse(m map[string]any) (*structpb.Struct, error) {
	resp, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return resp, nil
}

func fundHouseToMap(fh *domain.FundHouse) map[string]any {
	return map[string]any{
		"id":   fh.ID.String(),
		"name": fh.Name,
	}
}

func schemeToMap(sc *domain.Scheme) map[string]any {
	return map[string]any{
		"id":                sc.ID.String(),
		"fund_house_id":     sc.FundHouseID.String(),
		"scheme_code":       sc.SchemeCode,
		"scheme_name":       sc.SchemeName,
		"scheme_type":       sc.SchemeType,
		"scheme_category":   sc.SchemeCategory,
		"isin_growth":       optionalString(sc.ISINGrowth),
		"isin_reinvestment": optionalString(sc.ISINReinvestment),
		"is_open_ended":     sc.IsOpenEnded,
	}
}

func positionToMap(pos *portfolio.Position) map[string]any {
	p := pos.Portfolio
	m := map[string]any{
		"id":            p.ID.String(),
		"units":         p.Units.String(),
		"current_nav":   p.CurrentNAV.String(),
		"current_value": p.CurrentValue.StringFixed(domain.ValuePrecision),
		"last_updated":  p.LastUpdated.UTC().Format(time.RFC3339),
		"nav_date":      nil,
	}
	if pos.Scheme != nil {
		m["scheme"] = schemeToMap(pos.Scheme)
	}
	if pos.NAVDate != nil {
		m["nav_date"] = pos.NAVDate.Format(time.DateOnly)
	}
	return m
}

func optionalString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	errorMsg := err.Error()

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return status.Errorf(codes.NotFound, "%s", errorMsg)
	case errors.Is(err, domain.ErrFeedUnavailable):
		return status.Errorf(codes.Unavailable, "%s", errorMsg)
	case errors.Is(err, domain.ErrCatalogNotReady):
		return status.Errorf(codes.FailedPrecondition, "%s", errorMsg)
	case errors.Is(err, portfolio.ErrInvalidUnits):
		return status.Errorf(codes.InvalidArgument, "%s", errorMsg)
	}

	// Map common validation errors to InvalidArgument
	if strings.Contains(errorMsg, "must be positive") ||
		strings.Contains(errorMsg, "must reference") ||
		strings.Contains(errorMsg, "cannot be empty") {
		return status.Errorf(codes.InvalidArgument, "%s", errorMsg)
	}

	// Default to Internal error for unknown errors
	return status.Errorf(codes.Internal, "%s", errorMsg)
}
