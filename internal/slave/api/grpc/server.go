package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"github.com/kbecker/mrs/internal/bucket"
	"github.com/kbecker/mrs/internal/shared/config"
	"github.com/kbecker/mrs/internal/shared/logging"
	"github.com/kbecker/mrs/internal/shared/proto"
	"github.com/kbecker/mrs/internal/slave/core"
	"github.com/kbecker/mrs/internal/slave/service"
)

// Server hosts the slave's SlaveService, the counterpart to
// internal/master/api/grpc.Server one layer down — same keepalive and
// reflection setup, with exactly the methods spec.md §4.5's "master ->
// slave" direction requires.
type Server struct {
	addr       string
	grpcServer *grpc.Server
	logger     logging.Logger
}

func NewServer(cfg config.SlaveServerConfig, worker *service.Worker, logger logging.Logger) *Server {
	grpcServer := grpc.NewServer(
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             10 * time.Second, // slave has no separate keepalive_min_time knob
			PermitWithoutStream: true,
		}),
	)
	proto.RegisterSlaveServiceServer(grpcServer, NewSlaveService(worker, logger))
	reflection.Register(grpcServer)
	return &Server{addr: cfg.GRPCAddr, grpcServer: grpcServer, logger: logger}
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

// SlaveService implements proto.SlaveServiceServer over service.Worker,
// translating an AssignRequest into the slave-native core.Assignment.
type SlaveService struct {
	proto.UnimplementedSlaveServiceServer

	worker *service.Worker
	logger logging.Logger
}

func NewSlaveService(worker *service.Worker, logger logging.Logger) *SlaveService {
	return &SlaveService{worker: worker, logger: logger}
}

func (s *SlaveService) Assign(ctx context.Context, req *proto.AssignRequest) (*proto.AssignResponse, error) {
	a := core.Assignment{
		TaskID:          core.TaskID{DatasetID: req.TaskId.DatasetId, SplitIndex: int(req.TaskId.SplitIndex)},
		Attempt:         int(req.Attempt),
		Generation:      int(req.Generation),
		DatasetKind:     fromProtoKind(req.DatasetKind),
		DatasetID:       req.DatasetId,
		FanOut:          int(req.FanOut),
		Partitioner:     req.Partitioner,
		Mapper:          req.Mapper,
		Reducer:         req.Reducer,
		Combiner:        req.Combiner,
		KeySerializer:   req.KeySerializer,
		ValueSerializer: req.ValueSerializer,
		SourceURL:       req.SourceUrl,
	}

	for i, ref := range req.Sources {
		src := core.Source{Ref: toBucketRef(ref)}
		if i < len(req.SourceUrls) {
			src.URL = req.SourceUrls[i]
		}
		if i < len(req.SourceRaw) {
			src.Raw = req.SourceRaw[i]
		}
		a.Sources = append(a.Sources, src)
	}
	for _, r := range req.LocalRecords {
		a.LocalRecords = append(a.LocalRecords, bucketRecord(r))
	}

	accepted := s.worker.Assign(ctx, a)
	if !accepted {
		return &proto.AssignResponse{Accepted: false, Reason: "task already running"}, nil
	}
	return &proto.AssignResponse{Accepted: true}, nil
}

func (s *SlaveService) Cancel(ctx context.Context, req *proto.CancelRequest) (*proto.CancelResponse, error) {
	s.worker.Cancel(core.TaskID{DatasetID: req.TaskId.DatasetId, SplitIndex: int(req.TaskId.SplitIndex)})
	return &proto.CancelResponse{Ok: true}, nil
}

func (s *SlaveService) Ping(ctx context.Context, req *proto.PingRequest) (*proto.PingResponse, error) {
	running := s.worker.Running()
	out := make([]*proto.TaskID, 0, len(running))
	for _, id := range running {
		out = append(out, &proto.TaskID{DatasetId: id.DatasetID, SplitIndex: int32(id.SplitIndex)})
	}
	return &proto.PingResponse{RunningTaskIds: out}, nil
}

func (s *SlaveService) DropBucket(ctx context.Context, req *proto.DropBucketRequest) (*proto.DropBucketResponse, error) {
	id := core.TaskID{DatasetID: req.TaskId.DatasetId, SplitIndex: int(req.TaskId.SplitIndex)}
	if err := s.worker.DropBucket(id); err != nil {
		s.logger.Error("drop bucket failed", "dataset_id", id.DatasetID, "split_index", id.SplitIndex, "error", err)
		return &proto.DropBucketResponse{Ok: false}, nil
	}
	return &proto.DropBucketResponse{Ok: true}, nil
}

// Quit acknowledges a shutdown request; the process's own signal handling
// in cmd/slave drives the actual graceful stop, not this RPC.
func (s *SlaveService) Quit(ctx context.Context, req *proto.QuitRequest) (*proto.QuitResponse, error) {
	return &proto.QuitResponse{Ok: true}, nil
}

func toBucketRef(r *proto.BucketRef) bucket.Ref {
	return bucket.Ref{
		DatasetID:   r.DatasetId,
		SourceIndex: int(r.SourceIndex),
		SplitIndex:  int(r.SplitIndex),
		Generation:  int(r.Generation),
	}
}

func bucketRecord(r *proto.Record) bucket.Record {
	return bucket.Record{Key: r.Key, Value: r.Value}
}

func fromProtoKind(k proto.DatasetKind) core.DatasetKind {
	switch k {
	case proto.DatasetKind_SOURCE_URL:
		return core.DatasetSourceURL
	case proto.DatasetKind_SOURCE_LOCAL:
		return core.DatasetSourceLocal
	case proto.DatasetKind_MAP:
		return core.DatasetMap
	case proto.DatasetKind_REDUCE:
		return core.DatasetReduce
	case proto.DatasetKind_REDUCE_MAP:
		return core.DatasetReduceMap
	default:
		return ""
	}
}
