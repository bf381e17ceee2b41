package agentapplication

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	pb "github.com/ERRORIK404/Session_Calculator/pkg/proto"
	structs "github.com/ERRORIK404/Session_Calculator/pkg/structs"
)

// Agent - клиент gRPC транспорта калькулятора.
// Помнит JWT после Login и ключ гостевой сессии, выданный сервером.
type Agent struct {
	conn       *grpc.ClientConn
	client     pb.CalculatorServiceClient
	token      string
	sessionKey string
}

// Dial подключается к оркестратору без TLS
func Dial(addr string) (*Agent, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("did not connect: %w", err)
	}
	a := New(conn)
	a.conn = conn
	return a, nil
}

func New(cc grpc.ClientConnInterface) *Agent {
	return &Agent{client: pb.NewCalculatorServiceClient(cc)}
}

func (a *Agent) Close() error {
	if a.conn == nil {
		return nil
	}
	return a.conn.Close()
}

func (a *Agent) SessionKey() string {
	return a.sessionKey
}

// SetSessionKey продолжает гостевую сессию, полученную раньше
func (a *Agent) SetSessionKey(key string) {
	a.sessionKey = key
}

func (a *Agent) SetToken(token string) {
	a.token = token
}

func (a *Agent) outgoing(ctx context.Context) context.Context {
	switch {
	case a.token != "":
		return metadata.AppendToOutgoingContext(ctx, pb.AuthorizationKey, "Bearer "+a.token)
	case a.sessionKey != "":
		return metadata.AppendToOutgoingContext(ctx, pb.SessionKeyHeader, a.sessionKey)
	}
	return ctx
}

// Login получает JWT, дальнейшие вызовы идут от имени пользователя
func (a *Agent) Login(ctx context.Context, username, password string) error {
	in, err := structpb.NewStruct(map[string]interface{}{"username": username, "password": password})
	if err != nil {
		return err
	}
	out, err := a.client.Login(ctx, in)
	if err != nil {
		return err
	}
	a.token = out.GetFields()["token"].GetStringValue()
	return nil
}

func (a *Agent) Calculate(ctx context.Context, operand1, operand2 float64, operator, note string) (float64, error) {
	in, err := structpb.NewStruct(map[string]interface{}{
		"operand1": operand1,
		"operand2": operand2,
		"operator": operator,
		"note":     note,
	})
	if err != nil {
		return 0, err
	}

	var header metadata.MD
	out, err := a.client.Calculate(a.outgoing(ctx), in, grpc.Header(&header))
	if err != nil {
		return 0, err
	}
	if keys := header.Get(pb.SessionKeyHeader); len(keys) > 0 {
		a.sessionKey = keys[0]
	}
	return out.GetFields()["result"].GetNumberValue(), nil
}

func (a *Agent) History(ctx context.Context) ([]structs.HistoryItem, error) {
	out, err := a.client.ListHistory(a.outgoing(ctx), &structpb.Struct{})
	if err != nil {
		return nil, err
	}

	values := out.GetFields()["items"].GetListValue().GetValues()
	items := make([]structs.HistoryItem, 0, len(values))
	for _, v := range values {
		f := v.GetStructValue().GetFields()
		createdAt, err := time.Parse(time.RFC3339Nano, f["created_at"].GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("bad created_at in history item: %w", err)
		}
		items = append(items, structs.HistoryItem{
			ID:        int64(f["id"].GetNumberValue()),
			Operand1:  f["operand1"].GetNumberValue(),
			Operand2:  f["operand2"].GetNumberValue(),
			Operator:  f["operator"].GetStringValue(),
			Result:    f["result"].GetNumberValue(),
			Note:      f["note"].GetStringValue(),
			CreatedAt: createdAt,
		})
	}
	return items, nil
}

func (a *Agent) Delete(ctx context.Context, id int64) error {
	in, err := structpb.NewStruct(map[string]interface{}{"id": id})
	if err != nil {
		return err
	}
	_, err = a.client.DeleteHistory(a.outgoing(ctx), in)
	return err
}

func (a *Agent) Clear(ctx context.Context) (int64, error) {
	out, err := a.client.ClearHistory(a.outgoing(ctx), &structpb.Struct{})
	if err != nil {
		return 0, err
	}
	return int64(out.GetFields()["deleted"].GetNumberValue()), nil
}
