// Package grpcapi exposes sessions and simulations over gRPC. Messages are
// google.protobuf.Struct values carrying the same JSON shapes as the HTTP API.
package grpcapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/gacha-sim/internal/gacha"
	"github.com/xtding233/gacha-sim/internal/session"
	"github.com/xtding233/gacha-sim/internal/sim"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "gacha.v1.GachaService"

type Deps struct {
	Sessions *session.Registry
	Rules    session.Provider
	Sink     session.Sink // nil disables Export
	Logger   zerolog.Logger
}

// Service implements ServiceName.
type Service struct {
	sessions *session.Registry
	rules    session.Provider
	sink     session.Sink
}

func NewService(deps Deps) *Service {
	return &Service{sessions: deps.Sessions, rules: deps.Rules, sink: deps.Sink}
}

// NewServer builds a gRPC server with the service, the standard health
// service and request logging installed.
func NewServer(deps Deps, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	opts = append(opts, grpc.ChainUnaryInterceptor(loggingInterceptor(deps.Logger)))
	srv := grpc.NewServer(opts...)
	Register(srv, NewService(deps))

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv, hs
}

// Register adds the service to a gRPC server.
func Register(s grpc.ServiceRegistrar, svc *Service) {
	s.RegisterService(&serviceDesc, svc)
}

func structFromValue(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out, err := structpb.NewStruct(payload)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func decodeStruct(in *structpb.Struct, dst any) error {
	data, err := json.Marshal(in.AsMap())
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	return nil
}

type target struct {
	SessionID string `json:"session_id"`
	Pool      string `json:"pool"`
}

// toStatus maps domain errors onto gRPC codes.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, session.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, session.ErrUnknownPool), errors.Is(err, sim.ErrInvalid):
		return status.Error(codes.InvalidArgument, err.Error())
	case gacha.IsPoolEmpty(err):
		return status.Error(codes.FailedPrecondition, err.Error())
	case gacha.IsInvalidPityState(err):
		return status.Error(codes.Internal, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func (s *Service) lookup(req *structpb.Struct, needPool bool) (*session.Session, gacha.PoolKind, error) {
	var t target
	if err := decodeStruct(req, &t); err != nil {
		return nil, "", err
	}
	if t.SessionID == "" {
		return nil, "", status.Error(codes.InvalidArgument, "session_id is required")
	}
	sess, err := s.sessions.Get(t.SessionID)
	if err != nil {
		return nil, "", toStatus(err)
	}
	if !needPool {
		return sess, "", nil
	}
	kind, err := gacha.ParsePoolKind(t.Pool)
	if err != nil {
		return nil, "", toStatus(fmt.Errorf("%w: %v", session.ErrUnknownPool, err))
	}
	return sess, kind, nil
}

func sessionInfo(s *session.Session) map[string]any {
	return map[string]any{"id": s.ID, "created_at": s.CreatedAt, "version": s.Version, "game": s.Game()}
}

func (s *Service) CreateSession(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.sessions.Create()
	if err != nil {
		return nil, toStatus(err)
	}
	return structFromValue(sessionInfo(sess))
}

func (s *Service) DeleteSession(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess, _, err := s.lookup(req, false)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Delete(sess.ID); err != nil {
		return nil, toStatus(err)
	}
	return structFromValue(map[string]any{"id": sess.ID})
}

func (s *Service) NewGame(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess, _, err := s.lookup(req, false)
	if err != nil {
		return nil, err
	}
	info := sessionInfo(sess)
	info["game"] = sess.NewGame()
	return structFromValue(info)
}

func (s *Service) PullSingle(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess, kind, err := s.lookup(req, true)
	if err != nil {
		return nil, err
	}
	res, err := sess.PullSingle(kind)
	if err != nil {
		return nil, toStatus(err)
	}
	return structFromValue(res)
}

// PullTen fails the call when any pull fails; the committed pulls stay in
// the pool history and show up in History.
func (s *Service) PullTen(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess, kind, err := s.lookup(req, true)
	if err != nil {
		return nil, err
	}
	res, err := sess.PullTen(kind)
	if err != nil {
		return nil, toStatus(fmt.Errorf("%d of %d pulls committed: %w", len(res.Records), gacha.TenPull, err))
	}
	return structFromValue(res)
}

func (s *Service) InspectPity(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess, kind, err := s.lookup(req, true)
	if err != nil {
		return nil, err
	}
	st, err := sess.Pity(kind)
	if err != nil {
		return nil, toStatus(err)
	}
	return structFromValue(st)
}

func (s *Service) InspectTable(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess, kind, err := s.lookup(req, true)
	if err != nil {
		return nil, err
	}
	t, err := sess.Table(kind)
	if err != nil {
		return nil, toStatus(err)
	}
	return structFromValue(t)
}

func (s *Service) History(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess, kind, err := s.lookup(req, true)
	if err != nil {
		return nil, err
	}
	recs, err := sess.History(kind)
	if err != nil {
		return nil, toStatus(err)
	}
	if recs == nil {
		recs = []gacha.PullRecord{}
	}
	return structFromValue(map[string]any{"records": recs})
}

func (s *Service) Stats(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sess, kind, err := s.lookup(req, true)
	if err != nil {
		return nil, err
	}
	st, err := sess.Stats(kind)
	if err != nil {
		return nil, toStatus(err)
	}
	return structFromValue(st)
}

func (s *Service) Export(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.sink == nil {
		return nil, status.Error(codes.Unavailable, "ledger sink is not configured")
	}
	sess, _, err := s.lookup(req, false)
	if err != nil {
		return nil, err
	}
	res, err := s.sessions.Export(ctx, sess.ID, s.sink)
	if err != nil {
		return nil, toStatus(err)
	}
	return structFromValue(map[string]any{"id": sess.ID, "game": res.Game, "exported": res.Exported})
}

func (s *Service) Simulate(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var r sim.Request
	if err := decodeStruct(req, &r); err != nil {
		return nil, err
	}
	res, err := sim.Run(s.rules, r)
	if err != nil {
		return nil, toStatus(err)
	}
	return structFromValue(res)
}
