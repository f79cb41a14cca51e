package grpc

import (
	"context"
	"net"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"github.com/kbecker/mrs/internal/master/core"
	"github.com/kbecker/mrs/internal/shared/config"
	"github.com/kbecker/mrs/internal/shared/logging"
	"github.com/kbecker/mrs/internal/shared/proto"
)

// Server hosts the master's MasterService, generalized from the teacher's
// coordinator gRPC server (same keepalive-enforcement-policy + reflection
// setup, one registered service).
type Server struct {
	addr       string
	grpcServer *grpc.Server
	logger     logging.Logger
}

func NewServer(cfg config.GRPCConfig, scheduler *core.Scheduler, logger logging.Logger) *Server {
	grpcServer := grpc.NewServer(
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             cfg.KeepaliveMinTime,
			PermitWithoutStream: true,
		}),
	)

	proto.RegisterMasterServiceServer(grpcServer, NewMasterService(scheduler, logger))

	if cfg.EnableReflection {
		reflection.Register(grpcServer)
	}

	return &Server{addr: cfg.Addr, grpcServer: grpcServer, logger: logger}
}

func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.grpcServer.Serve(lis)
}

func (s *Server) Stop() {
	s.grpcServer.GracefulStop()
}

// MasterService implements proto.MasterServiceServer over core.Scheduler.
type MasterService struct {
	proto.UnimplementedMasterServiceServer

	scheduler *core.Scheduler
	logger    logging.Logger
}

func NewMasterService(scheduler *core.Scheduler, logger logging.Logger) *MasterService {
	return &MasterService{scheduler: scheduler, logger: logger}
}

func (s *MasterService) Register(ctx context.Context, req *proto.RegisterRequest) (*proto.RegisterResponse, error) {
	id := uuid.New().String()
	s.logger.Info("slave register", "slave_id", id, "endpoint", req.Endpoint, "capacity", req.Capacity)
	s.scheduler.RegisterSlave(&core.SlaveInfo{
		ID:       id,
		Endpoint: req.Endpoint,
		Capacity: int(req.Capacity),
	})
	return &proto.RegisterResponse{SlaveId: id, HeartbeatIntervalSeconds: 5}, nil
}

func (s *MasterService) ReportDone(ctx context.Context, req *proto.ReportDoneRequest) (*proto.ReportDoneResponse, error) {
	id := core.TaskID{DatasetID: req.TaskId.DatasetId, SplitIndex: int(req.TaskId.SplitIndex)}
	ack := s.scheduler.ReportDone(req.SlaveId, id, int(req.Attempt), req.BucketUrls)
	return &proto.ReportDoneResponse{Ack: ack}, nil
}

func (s *MasterService) ReportFailed(ctx context.Context, req *proto.ReportFailedRequest) (*proto.ReportFailedResponse, error) {
	id := core.TaskID{DatasetID: req.TaskId.DatasetId, SplitIndex: int(req.TaskId.SplitIndex)}
	var missing *core.BucketRef
	if req.MissingInput != nil {
		missing = &core.BucketRef{
			DatasetID:   req.MissingInput.DatasetId,
			SourceIndex: int(req.MissingInput.SourceIndex),
			SplitIndex:  int(req.MissingInput.SplitIndex),
			Generation:  int(req.MissingInput.Generation),
		}
	}
	s.scheduler.ReportFailed(req.SlaveId, id, int(req.Attempt), req.Reason, missing)
	return &proto.ReportFailedResponse{Ack: true}, nil
}

func (s *MasterService) Heartbeat(ctx context.Context, req *proto.HeartbeatRequest) (*proto.HeartbeatResponse, error) {
	running := make([]core.TaskID, 0, len(req.RunningTaskIds))
	for _, t := range req.RunningTaskIds {
		running = append(running, core.TaskID{DatasetID: t.DatasetId, SplitIndex: int(t.SplitIndex)})
	}
	reassign := s.scheduler.Heartbeat(req.SlaveId, running)

	out := make([]*proto.TaskID, 0, len(reassign))
	for _, id := range reassign {
		out = append(out, &proto.TaskID{DatasetId: id.DatasetID, SplitIndex: int32(id.SplitIndex)})
	}
	return &proto.HeartbeatResponse{Ok: true, ReassignList: out}, nil
}
