// Package grpc holds the master's gRPC surface: the MasterService server
// slaves register and report against, and a client pool the scheduler uses
// to reach each slave's SlaveService.
package grpc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"

	"github.com/kbecker/mrs/internal/master/core"
	"github.com/kbecker/mrs/internal/shared/proto"
)

// ClientPool implements core.SlaveClient over one lazily-created gRPC
// connection per slave endpoint, generalizing the teacher's single
// CoordinatorClient (one slave-side connection to one coordinator) to the
// master's need to hold many outbound connections concurrently.
type ClientPool struct {
	mu      sync.Mutex
	clients map[string]proto.SlaveServiceClient
	conns   map[string]*grpc.ClientConn

	tasks core.TaskStore
}

func NewClientPool(tasks core.TaskStore) *ClientPool {
	return &ClientPool{
		clients: make(map[string]proto.SlaveServiceClient),
		conns:   make(map[string]*grpc.ClientConn),
		tasks:   tasks,
	}
}

func (p *ClientPool) clientFor(endpoint string) (proto.SlaveServiceClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[endpoint]; ok {
		return c, nil
	}
	conn, err := grpc.NewClient(
		endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                10 * time.Second,
			Timeout:             5 * time.Second,
			PermitWithoutStream: true,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to slave %s: %w", endpoint, err)
	}
	c := proto.NewSlaveServiceClient(conn)
	p.clients[endpoint] = c
	p.conns[endpoint] = conn
	return c, nil
}

func (p *ClientPool) Assign(ctx context.Context, slave *core.SlaveInfo, t *core.Task, d *core.Dataset, parents map[int64]*core.Dataset) (bool, error) {
	client, err := p.clientFor(slave.Endpoint)
	if err != nil {
		return false, err
	}

	req := &proto.AssignRequest{
		TaskId:          &proto.TaskID{DatasetId: t.DatasetID, SplitIndex: int32(t.SplitIndex)},
		Attempt:         int32(t.Attempt),
		Generation:      int32(t.Generation),
		DatasetKind:     toProtoKind(d.Kind),
		DatasetId:       d.ID,
		FanOut:          int32(d.FanOut),
		Partitioner:     d.Partitioner,
		Mapper:          d.Mapper,
		Reducer:         d.Reducer,
		Combiner:        d.Combiner,
		KeySerializer:   d.KeySerializer,
		ValueSerializer: d.ValueSerializer,
	}

	switch d.Kind {
	case core.DatasetSourceURL:
		if t.SplitIndex < len(d.URLs) {
			req.SourceUrl = d.URLs[t.SplitIndex]
		}
	case core.DatasetSourceLocal:
		req.LocalRecords = toProtoRecords(d.Local)
	}

	req.Sources, req.SourceUrls, req.SourceRaw = p.resolveSources(t.Sources, parents)

	resp, err := client.Assign(ctx, req)
	if err != nil {
		return false, err
	}
	return resp.Accepted, nil
}

func (p *ClientPool) Cancel(ctx context.Context, slave *core.SlaveInfo, id core.TaskID) error {
	client, err := p.clientFor(slave.Endpoint)
	if err != nil {
		return err
	}
	_, err = client.Cancel(ctx, &proto.CancelRequest{
		TaskId: &proto.TaskID{DatasetId: id.DatasetID, SplitIndex: int32(id.SplitIndex)},
	})
	return err
}

func (p *ClientPool) DropBucket(ctx context.Context, slave *core.SlaveInfo, id core.TaskID) error {
	client, err := p.clientFor(slave.Endpoint)
	if err != nil {
		return err
	}
	_, err = client.DropBucket(ctx, &proto.DropBucketRequest{
		TaskId: &proto.TaskID{DatasetId: id.DatasetID, SplitIndex: int32(id.SplitIndex)},
	})
	return err
}

// Close tears down every pooled connection.
func (p *ClientPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, conn := range p.conns {
		_ = conn.Close()
	}
}

func toProtoKind(k core.DatasetKind) proto.DatasetKind {
	switch k {
	case core.DatasetSourceURL:
		return proto.DatasetKind_SOURCE_URL
	case core.DatasetSourceLocal:
		return proto.DatasetKind_SOURCE_LOCAL
	case core.DatasetMap:
		return proto.DatasetKind_MAP
	case core.DatasetReduce:
		return proto.DatasetKind_REDUCE
	case core.DatasetReduceMap:
		return proto.DatasetKind_REDUCE_MAP
	default:
		return proto.DatasetKind_DATASET_KIND_UNSPECIFIED
	}
}

func toProtoRecords(records []core.Record) []*proto.Record {
	out := make([]*proto.Record, 0, len(records))
	for _, r := range records {
		out = append(out, &proto.Record{Key: r.Key, Value: r.Value})
	}
	return out
}

// resolveSources turns a task's upstream BucketRefs into wire BucketRefs,
// their fetch URLs, and a raw/framed flag per entry, reading each producer
// task live rather than trusting refs.Generation: a producer's generation
// advances (scheduler.go invalidate) whenever its slave is lost after it
// already reported done, which can happen after this consumer task was
// materialized but before it is dispatched. Stamping the stale,
// Materialize-time zero value here would make every fetch permanently
// request a superseded generation and 410 forever (bucket.Store.Open
// rejects ref.Generation < current).
//
// A ref whose producer dataset is SOURCE_URL names a raw external input
// (materializeSourceURL stamps the task's Outputs[0] with the URL itself,
// never a framed bucket), so such refs are flagged raw for the slave to
// read as plain lines rather than decode as the bucket wire format.
func (p *ClientPool) resolveSources(refs []core.BucketRef, parents map[int64]*core.Dataset) ([]*proto.BucketRef, []string, []bool) {
	wire := make([]*proto.BucketRef, 0, len(refs))
	urls := make([]string, 0, len(refs))
	raw := make([]bool, 0, len(refs))
	for _, ref := range refs {
		producer, _ := p.tasks.GetTask(core.TaskID{DatasetID: ref.DatasetID, SplitIndex: ref.SourceIndex})
		generation := ref.Generation
		url := ""
		if producer != nil {
			generation = producer.Generation
			if ref.SplitIndex < len(producer.Outputs) {
				url = producer.Outputs[ref.SplitIndex]
			}
		}
		wire = append(wire, &proto.BucketRef{
			DatasetId:   ref.DatasetID,
			SourceIndex: int32(ref.SourceIndex),
			SplitIndex:  int32(ref.SplitIndex),
			Generation:  int32(generation),
		})
		urls = append(urls, url)
		raw = append(raw, parents[ref.DatasetID] != nil && parents[ref.DatasetID].Kind == core.DatasetSourceURL)
	}
	return wire, urls, raw
}
