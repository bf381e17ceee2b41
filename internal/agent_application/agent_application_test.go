package agentapplication

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	pb "github.com/ERRORIK404/Session_Calculator/pkg/proto"
)

// recordingServer запоминает метаданные последнего вызова
type recordingServer struct {
	pb.UnimplementedCalculatorServiceServer
	md metadata.MD
}

func (s *recordingServer) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{"token": "jwt-for-" + in.GetFields()["username"].GetStringValue()})
}

func (s *recordingServer) Calculate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	s.md, _ = metadata.FromIncomingContext(ctx)
	if len(s.md.Get(pb.SessionKeyHeader)) == 0 && len(s.md.Get(pb.AuthorizationKey)) == 0 {
		grpc.SetHeader(ctx, metadata.Pairs(pb.SessionKeyHeader, "issued-key"))
	}
	f := in.GetFields()
	return structpb.NewStruct(map[string]interface{}{
		"saved":  true,
		"result": f["operand1"].GetNumberValue() + f["operand2"].GetNumberValue(),
	})
}

func (s *recordingServer) ListHistory(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	s.md, _ = metadata.FromIncomingContext(ctx)
	return structpb.NewStruct(map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{
				"id": 3, "operand1": 1, "operand2": 2, "operator": "+", "result": 3,
				"note": "", "created_at": "2026-05-01T12:00:00.123Z",
			},
		},
	})
}

func (s *recordingServer) ClearHistory(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{"detail": "History cleared successfully", "deleted": 4})
}

func newTestAgent(t *testing.T) (*Agent, *recordingServer) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := &recordingServer{}
	server := grpc.NewServer()
	pb.RegisterCalculatorServiceServer(server, srv)
	go server.Serve(lis)
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return New(conn), srv
}

func TestAgentKeepsIssuedSessionKey(t *testing.T) {
	ctx := context.Background()
	a, srv := newTestAgent(t)

	result, err := a.Calculate(ctx, 1.5, 2, "+", "")
	require.NoError(t, err)
	require.Equal(t, 3.5, result)
	require.Equal(t, "issued-key", a.SessionKey())
	require.Empty(t, srv.md.Get(pb.SessionKeyHeader))

	_, err = a.Calculate(ctx, 1, 1, "+", "")
	require.NoError(t, err)
	require.Equal(t, []string{"issued-key"}, srv.md.Get(pb.SessionKeyHeader))
}

func TestAgentSendsBearerAfterLogin(t *testing.T) {
	ctx := context.Background()
	a, srv := newTestAgent(t)
	a.SetSessionKey("old-guest")

	require.NoError(t, a.Login(ctx, "alice", "secret"))
	_, err := a.History(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Bearer jwt-for-alice"}, srv.md.Get(pb.AuthorizationKey))
	require.Empty(t, srv.md.Get(pb.SessionKeyHeader))
}

func TestAgentHistoryAndClear(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAgent(t)

	items, err := a.History(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, int64(3), items[0].ID)
	require.Equal(t, "+", items[0].Operator)
	require.Equal(t, 123000000, items[0].CreatedAt.Nanosecond())

	n, err := a.Clear(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(4), n)

	// DeleteHistory не реализован на тестовом сервере
	require.Error(t, a.Delete(ctx, 1))
}
