// Package grpc holds the slave's gRPC surface: the client it uses to reach
// the master's MasterService, and the server the master's client pool
// dials to reach this slave's SlaveService.
package grpc

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"

	"github.com/kbecker/mrs/internal/bucket"
	"github.com/kbecker/mrs/internal/shared/proto"
	"github.com/kbecker/mrs/internal/slave/core"
)

// MasterClient implements core.MasterClient over proto.MasterServiceClient,
// generalizing the teacher's CoordinatorClient (one persistent connection,
// keepalive-tuned the same way) from worker-registration-only to the full
// register/report_done/report_failed/heartbeat surface.
type MasterClient struct {
	conn   *grpc.ClientConn
	client proto.MasterServiceClient
}

// NewMasterClient dials the master at addr.
func NewMasterClient(addr string) (*MasterClient, error) {
	conn, err := grpc.NewClient(
		addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                10 * time.Second,
			Timeout:             5 * time.Second,
			PermitWithoutStream: true,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to master: %w", err)
	}
	return &MasterClient{conn: conn, client: proto.NewMasterServiceClient(conn)}, nil
}

var _ core.MasterClient = (*MasterClient)(nil)

func (c *MasterClient) Register(endpoint string, capacity int) (string, int, error) {
	resp, err := c.client.Register(context.Background(), &proto.RegisterRequest{
		Endpoint: endpoint,
		Capacity: int32(capacity),
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to register with master: %w", err)
	}
	return resp.SlaveId, int(resp.HeartbeatIntervalSeconds), nil
}

func (c *MasterClient) ReportDone(slaveID string, id core.TaskID, attempt int, outputs []string) (bool, error) {
	resp, err := c.client.ReportDone(context.Background(), &proto.ReportDoneRequest{
		SlaveId:    slaveID,
		TaskId:     toProtoTaskID(id),
		Attempt:    int32(attempt),
		BucketUrls: outputs,
	})
	if err != nil {
		return false, fmt.Errorf("failed to report task done: %w", err)
	}
	return resp.Ack, nil
}

func (c *MasterClient) ReportFailed(slaveID string, id core.TaskID, attempt int, reason string, missing *bucket.Ref) error {
	req := &proto.ReportFailedRequest{
		SlaveId: slaveID,
		TaskId:  toProtoTaskID(id),
		Attempt: int32(attempt),
		Reason:  reason,
	}
	if missing != nil {
		req.MissingInput = &proto.BucketRef{
			DatasetId:   missing.DatasetID,
			SourceIndex: int32(missing.SourceIndex),
			SplitIndex:  int32(missing.SplitIndex),
			Generation:  int32(missing.Generation),
		}
	}
	_, err := c.client.ReportFailed(context.Background(), req)
	if err != nil {
		return fmt.Errorf("failed to report task failure: %w", err)
	}
	return nil
}

func (c *MasterClient) Heartbeat(slaveID string, running []core.TaskID) ([]core.TaskID, error) {
	req := &proto.HeartbeatRequest{SlaveId: slaveID}
	for _, id := range running {
		req.RunningTaskIds = append(req.RunningTaskIds, toProtoTaskID(id))
	}
	resp, err := c.client.Heartbeat(context.Background(), req)
	if err != nil {
		return nil, fmt.Errorf("failed to send heartbeat: %w", err)
	}
	reassign := make([]core.TaskID, 0, len(resp.ReassignList))
	for _, t := range resp.ReassignList {
		reassign = append(reassign, fromProtoTaskID(t))
	}
	return reassign, nil
}

// Close tears down the connection to the master.
func (c *MasterClient) Close() error {
	return c.conn.Close()
}

func toProtoTaskID(id core.TaskID) *proto.TaskID {
	return &proto.TaskID{DatasetId: id.DatasetID, SplitIndex: int32(id.SplitIndex)}
}

func fromProtoTaskID(t *proto.TaskID) core.TaskID {
	return core.TaskID{DatasetID: t.DatasetId, SplitIndex: int(t.SplitIndex)}
}
