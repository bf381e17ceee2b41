package orchestrator_application

import (
	"context"
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	calc "github.com/ERRORIK404/Session_Calculator/internal/calculator_application"
	identity "github.com/ERRORIK404/Session_Calculator/internal/identity_application"
	models "github.com/ERRORIK404/Session_Calculator/pkg/db_models"
	locerr "github.com/ERRORIK404/Session_Calculator/pkg/local_errors"
	"github.com/ERRORIK404/Session_Calculator/pkg/metrics"
	pb "github.com/ERRORIK404/Session_Calculator/pkg/proto"
	structs "github.com/ERRORIK404/Session_Calculator/pkg/structs"
)

type Server struct {
	pb.UnimplementedCalculatorServiceServer
	o *Orchestrator
}

// NewGRPCServer создает gRPC сервер с зарегистрированным CalculatorService
func (o *Orchestrator) NewGRPCServer() *grpc.Server {
	s := grpc.NewServer(grpc.UnaryInterceptor(loggingInterceptor))
	pb.RegisterCalculatorServiceServer(s, &Server{o: o})
	return s
}

func loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	log.WithFields(log.Fields{
		"method":   info.FullMethod,
		"code":     status.Code(err).String(),
		"duration": time.Since(start),
	}).Info("rpc")
	return resp, err
}

// grpcCaller - вызывающий по метаданным запроса. Реализует calculator_application.Caller.
type grpcCaller struct {
	store  *identity.SessionStore
	userID int64
	key    string
}

func (c *grpcCaller) UserID() (int64, bool) {
	return c.userID, c.userID != 0
}

func (c *grpcCaller) SessionKey() string {
	return c.key
}

// EnsureSessionKey создает гостевую сессию и отдает ключ клиенту в заголовке ответа
func (c *grpcCaller) EnsureSessionKey(ctx context.Context) (string, error) {
	if c.key != "" {
		return c.key, nil
	}
	session, err := c.store.Create(ctx, 0)
	if err != nil {
		return "", err
	}
	c.key = session.Key
	if err := grpc.SetHeader(ctx, metadata.Pairs(pb.SessionKeyHeader, session.Key)); err != nil {
		log.WithError(err).Warn("failed to send session key header")
	}
	return c.key, nil
}

func firstValue(md metadata.MD, key string) string {
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

// caller определяет вызывающего: JWT пользователя, ключ гостевой сессии или новый гость
func (s *Server) caller(ctx context.Context) (*grpcCaller, error) {
	c := &grpcCaller{store: s.o.sessions}
	md, _ := metadata.FromIncomingContext(ctx)

	if auth := firstValue(md, pb.AuthorizationKey); auth != "" {
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok {
			return nil, locerr.ErrInvalidToken
		}
		user, err := s.o.identity.Authenticate(ctx, strings.TrimSpace(token))
		if err != nil {
			return nil, err
		}
		c.userID = user.ID
		return c, nil
	}

	if key := firstValue(md, pb.SessionKeyHeader); key != "" {
		session, err := s.o.sessions.Load(ctx, key)
		switch {
		case err == nil:
			if session.Authenticated() {
				c.userID = session.UserID.Int64
			} else {
				c.key = session.Key
			}
		case errors.Is(err, locerr.ErrSessionNotFound):
			// истекший ключ: будет выдан новый
		default:
			return nil, err
		}
	}
	return c, nil
}

// toStatus переводит ошибки приложения в коды gRPC. Внутренние ошибки не раскрываются.
func toStatus(method string, err error) error {
	var fe locerr.FieldErrors
	var code codes.Code
	switch {
	case errors.As(err, &fe), locerr.IsValidation(err):
		code = codes.InvalidArgument
	case locerr.IsQuota(err):
		code = codes.ResourceExhausted
	case errors.Is(err, locerr.ErrAuthenticationRequired):
		code = codes.PermissionDenied
	case errors.Is(err, locerr.ErrInvalidCredentials), errors.Is(err, locerr.ErrInvalidToken):
		code = codes.Unauthenticated
	case errors.Is(err, locerr.ErrNotFound):
		code = codes.NotFound
	default:
		log.WithError(err).WithField("method", method).Error("rpc failed")
		return status.Error(codes.Internal, "internal server error")
	}
	metrics.ObserveRejection(rejectionReason(err))
	return status.Error(code, err.Error())
}

func (s *Server) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	fields := in.GetFields()
	user, err := s.o.identity.Login(ctx, fields["username"].GetStringValue(), fields["password"].GetStringValue())
	if err != nil {
		return nil, toStatus("Login", err)
	}
	token, err := s.o.identity.IssueToken(user)
	if err != nil {
		return nil, toStatus("Login", err)
	}
	return structpb.NewStruct(map[string]interface{}{
		"token":      token,
		"username":   user.Username,
		"expires_at": time.Now().Add(s.o.config.TOKEN_TTL).UTC().Format(time.RFC3339),
	})
}

func (s *Server) Calculate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, toStatus("Calculate", err)
	}
	fields := in.GetFields()
	record, err := s.o.calculator.Calculate(ctx, c, calc.Request{
		Operand1: operand(fields["operand1"]),
		Operand2: operand(fields["operand2"]),
		Operator: fields["operator"].GetStringValue(),
		Note:     fields["note"].GetStringValue(),
	})
	if err != nil {
		return nil, toStatus("Calculate", err)
	}
	return structpb.NewStruct(map[string]interface{}{
		"saved":  true,
		"result": record.Result,
		"id":     record.ID,
	})
}

// operand достает число или строку. Остальные виды значений считаются некорректным числом.
func operand(v *structpb.Value) interface{} {
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return kind.NumberValue
	case *structpb.Value_StringValue:
		return kind.StringValue
	default:
		return nil
	}
}

func (s *Server) ListHistory(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, toStatus("ListHistory", err)
	}
	records, err := s.o.history.List(ctx, c)
	if err != nil {
		return nil, toStatus("ListHistory", err)
	}
	return structpb.NewStruct(map[string]interface{}{"items": historyItems(records)})
}

func historyItems(records []models.CalculationRecord) []interface{} {
	items := make([]interface{}, 0, len(records))
	for _, item := range structs.NewHistory(records) {
		items = append(items, map[string]interface{}{
			"id":         item.ID,
			"operand1":   item.Operand1,
			"operand2":   item.Operand2,
			"operator":   item.Operator,
			"result":     item.Result,
			"note":       item.Note,
			"created_at": item.CreatedAt.Format(time.RFC3339Nano),
		})
	}
	return items
}

func (s *Server) ClearHistory(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, toStatus("ClearHistory", err)
	}
	deleted, err := s.o.history.Clear(ctx, c)
	if err != nil {
		return nil, toStatus("ClearHistory", err)
	}
	return structpb.NewStruct(map[string]interface{}{
		"detail":  "History cleared successfully",
		"deleted": deleted,
	})
}

func (s *Server) DeleteHistory(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	c, err := s.caller(ctx)
	if err != nil {
		return nil, toStatus("DeleteHistory", err)
	}
	id := int64(in.GetFields()["id"].GetNumberValue())
	if err := s.o.history.Delete(ctx, c, id); err != nil {
		return nil, toStatus("DeleteHistory", err)
	}
	return structpb.NewStruct(map[string]interface{}{"detail": "History item deleted"})
}
