package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/mutualfund-backend/internal/adapter/repository/memory"
	"github.com/simaogato/mutualfund-backend/internal/domain"
	"github.com/simaogato/mutualfund-backend/internal/usecase/catalog"
	"github.com/simaogato/mutualfund-backend/internal/usecase/importer"
	"github.com/simaogato/mutualfund-backend/internal/usecase/portfolio"
	"github.com/simaogato/mutualfund-backend/internal/usecase/revaluation"
)

const testToken = "test-token-123"

type stubFeed struct {
	records []domain.RawRecord
	err     error
}

func (f *stubFeed) FetchLatestSnapshot(ctx context.Context) ([]domain.RawRecord, error) {
	return f.records, f.err
}

func newTestServer(store *memory.Store, feed *stubFeed) *Server {
	revaluator := revaluation.NewService(store.Portfolios(), store.NAVs(), nil)
	return NewServer(
		catalog.NewCatalogService(store.FundHouses(), store.Schemes()),
		portfolio.NewPortfolioService(store.Portfolios(), store.Schemes(), revaluator),
		importer.NewImporter(feed, store.FundHouses(), store.Schemes(), nil),
	)
}

// dial serves srv over an in-memory listener behind AuthInterceptor
func dial(t *testing.T, srv MutualFundServiceServer) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)

	gs := grpc.NewServer(grpc.UnaryInterceptor(AuthInterceptor(testToken)))
	RegisterMutualFundServiceServer(gs, srv)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return NewClient(conn)
}

func authed(t *testing.T, userID uuid.UUID) context.Context {
	md := metadata.Pairs("authorization", testToken)
	if userID != uuid.Nil {
		md.Append(UserIDHeader, userID.String())
	}
	ctx, cancel := context.WithTimeout(metadata.NewOutgoingContext(context.Background(), md), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestServer_ImportAndListOverTheWire(t *testing.T) {
	store := memory.NewStore()
	feed := &stubFeed{records: []domain.RawRecord{
		{"Scheme_Code": "120503", "Mutual_Fund_Family": "Axis Mutual Fund", "Scheme_Type": "Open Ended Schemes", "Scheme_Name": "Axis ELSS"},
		{"Scheme_Code": "100027", "Mutual_Fund_Family": "Quant Mutual Fund", "Scheme_Type": "Close Ended Schemes"},
	}}
	client := dial(t, newTestServer(store, feed))

	resp, err := client.Call(authed(t, uuid.Nil), "ImportFundHouses", nil)
	require.NoError(t, err)
	assert.Equal(t, 2.0, resp.GetFields()["created"].GetNumberValue())

	resp, err = client.Call(authed(t, uuid.Nil), "ImportSchemes", nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, resp.GetFields()["created"].GetNumberValue())
	assert.Equal(t, 0.0, resp.GetFields()["skipped"].GetNumberValue())

	resp, err = client.Call(authed(t, uuid.Nil), "ListFundHouses", nil)
	require.NoError(t, err)
	houses := resp.GetFields()["fund_houses"].GetListValue().GetValues()
	require.Len(t, houses, 2)
	axis := houses[0].GetStructValue().GetFields()
	assert.Equal(t, "Axis Mutual Fund", axis["name"].GetStringValue())

	req, err := structpb.NewStruct(map[string]any{"fund_house_id": axis["id"].GetStringValue()})
	require.NoError(t, err)
	resp, err = client.Call(authed(t, uuid.Nil), "ListSchemes", req)
	require.NoError(t, err)
	schemes := resp.GetFields()["schemes"].GetListValue().GetValues()
	require.Len(t, schemes, 1)
	assert.Equal(t, 120503.0, schemes[0].GetStructValue().GetFields()["scheme_code"].GetNumberValue())
}

func TestServer_RejectsMissingToken(t *testing.T) {
	client := dial(t, newTestServer(memory.NewStore(), &stubFeed{}))

	_, err := client.Call(context.Background(), "ListFundHouses", nil)

	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestServer_PortfolioRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	fh, _, err := store.FundHouses().GetOrCreate(ctx, "Axis Mutual Fund")
	require.NoError(t, err)
	scheme, _, err := store.Schemes().GetOrCreate(ctx, &domain.Scheme{FundHouseID: fh.ID, SchemeCode: 120503, IsOpenEnded: true})
	require.NoError(t, err)
	require.NoError(t, store.NAVs().Upsert(ctx, &domain.NAV{
		SchemeID: scheme.ID,
		Date:     time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		Value:    decimal.RequireFromString("250.3333"),
	}))

	client := dial(t, newTestServer(store, &stubFeed{}))
	userID := uuid.New()

	req, err := structpb.NewStruct(map[string]any{"scheme_id": scheme.ID.String(), "units": "10.5"})
	require.NoError(t, err)
	resp, err := client.Call(authed(t, userID), "CreatePortfolio", req)
	require.NoError(t, err)
	holding := resp.GetFields()["holding"].GetStructValue().GetFields()
	assert.Equal(t, "2628.50", holding["current_value"].GetStringValue())

	resp, err = client.Call(authed(t, userID), "ListPortfolio", nil)
	require.NoError(t, err)
	holdings := resp.GetFields()["holdings"].GetListValue().GetValues()
	require.Len(t, holdings, 1)
	fields := holdings[0].GetStructValue().GetFields()
	assert.Equal(t, "2628.50", fields["current_value"].GetStringValue())
	assert.Equal(t, "2024-04-01", fields["nav_date"].GetStringValue())

	// Portfolio calls need a principal
	_, err = client.Call(authed(t, uuid.Nil), "ListPortfolio", nil)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestServer_CreatePortfolioValidation(t *testing.T) {
	server := newTestServer(memory.NewStore(), &stubFeed{})
	ctx := ContextWithUser(context.Background(), uuid.New())

	tests := []struct {
		name string
		req  map[string]any
		code codes.Code
	}{
		{name: "Invalid scheme id", req: map[string]any{"scheme_id": "nope", "units": "1"}, code: codes.InvalidArgument},
		{name: "Missing units", req: map[string]any{"scheme_id": uuid.NewString()}, code: codes.InvalidArgument},
		{name: "Zero units", req: map[string]any{"scheme_id": uuid.NewString(), "units": 0}, code: codes.InvalidArgument},
		{name: "Unknown scheme", req: map[string]any{"scheme_id": uuid.NewString(), "units": 2.5}, code: codes.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := structpb.NewStruct(tt.req)
			require.NoError(t, err)

			_, err = server.CreatePortfolio(ctx, req)

			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{name: "Not found", err: domain.ErrNotFound, code: codes.NotFound},
		{name: "Feed unavailable", err: &domain.FeedUnavailableError{StatusCode: 503}, code: codes.Unavailable},
		{name: "Catalog not ready", err: domain.ErrCatalogNotReady, code: codes.FailedPrecondition},
		{name: "Validation", err: errors.New("portfolio units must be positive"), code: codes.InvalidArgument},
		{name: "Unknown", err: errors.New("boom"), code: codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, status.Code(mapError(tt.err)))
		})
	}
	assert.NoError(t, mapError(nil))
}
