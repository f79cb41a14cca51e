// Package proto holds the wire messages and gRPC service stubs for the
// master<->slave RPC contract. Hand-written in the pre-APIv2 "legacy"
// protoc-gen-go shape (plain struct + `protobuf:"..."` field tags +
// Reset/String/ProtoMessage) rather than generated from mrs.proto: messages
// in this shape are picked up by google.golang.org/protobuf's legacy
// message support (the same path github.com/golang/protobuf messages still
// go through) via struct-tag reflection, with no descriptor bytes required.
package proto

import "fmt"

type DatasetKind int32

const (
	DatasetKind_DATASET_KIND_UNSPECIFIED DatasetKind = 0
	DatasetKind_SOURCE_URL               DatasetKind = 1
	DatasetKind_SOURCE_LOCAL             DatasetKind = 2
	DatasetKind_MAP                      DatasetKind = 3
	DatasetKind_REDUCE                   DatasetKind = 4
	DatasetKind_REDUCE_MAP               DatasetKind = 5
)

func (k DatasetKind) String() string {
	switch k {
	case DatasetKind_SOURCE_URL:
		return "SOURCE_URL"
	case DatasetKind_SOURCE_LOCAL:
		return "SOURCE_LOCAL"
	case DatasetKind_MAP:
		return "MAP"
	case DatasetKind_REDUCE:
		return "REDUCE"
	case DatasetKind_REDUCE_MAP:
		return "REDUCE_MAP"
	default:
		return "DATASET_KIND_UNSPECIFIED"
	}
}

type TaskID struct {
	DatasetId  int64 `protobuf:"varint,1,opt,name=dataset_id,json=datasetId,proto3" json:"dataset_id,omitempty"`
	SplitIndex int32 `protobuf:"varint,2,opt,name=split_index,json=splitIndex,proto3" json:"split_index,omitempty"`
}

func (m *TaskID) Reset()         { *m = TaskID{} }
func (m *TaskID) String() string { return fmt.Sprintf("%+v", *m) }
func (m *TaskID) ProtoMessage()  {}

type BucketRef struct {
	DatasetId   int64 `protobuf:"varint,1,opt,name=dataset_id,json=datasetId,proto3" json:"dataset_id,omitempty"`
	SourceIndex int32 `protobuf:"varint,2,opt,name=source_index,json=sourceIndex,proto3" json:"source_index,omitempty"`
	SplitIndex  int32 `protobuf:"varint,3,opt,name=split_index,json=splitIndex,proto3" json:"split_index,omitempty"`
	Generation  int32 `protobuf:"varint,4,opt,name=generation,proto3" json:"generation,omitempty"`
}

func (m *BucketRef) Reset()         { *m = BucketRef{} }
func (m *BucketRef) String() string { return fmt.Sprintf("%+v", *m) }
func (m *BucketRef) ProtoMessage()  {}

type Record struct {
	Key   []byte `protobuf:"bytes,1,opt,name=key,proto3" json:"key,omitempty"`
	Value []byte `protobuf:"bytes,2,opt,name=value,proto3" json:"value,omitempty"`
}

func (m *Record) Reset()         { *m = Record{} }
func (m *Record) String() string { return fmt.Sprintf("%+v", *m) }
func (m *Record) ProtoMessage()  {}

type RegisterRequest struct {
	Endpoint string `protobuf:"bytes,1,opt,name=endpoint,proto3" json:"endpoint,omitempty"`
	Capacity int32  `protobuf:"varint,2,opt,name=capacity,proto3" json:"capacity,omitempty"`
}

func (m *RegisterRequest) Reset()         { *m = RegisterRequest{} }
func (m *RegisterRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (m *RegisterRequest) ProtoMessage()  {}

type RegisterResponse struct {
	SlaveId                  string `protobuf:"bytes,1,opt,name=slave_id,json=slaveId,proto3" json:"slave_id,omitempty"`
	HeartbeatIntervalSeconds int32  `protobuf:"varint,2,opt,name=heartbeat_interval_seconds,json=heartbeatIntervalSeconds,proto3" json:"heartbeat_interval_seconds,omitempty"`
}

func (m *RegisterResponse) Reset()         { *m = RegisterResponse{} }
func (m *RegisterResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (m *RegisterResponse) ProtoMessage()  {}

type ReportDoneRequest struct {
	SlaveId    string   `protobuf:"bytes,1,opt,name=slave_id,json=slaveId,proto3" json:"slave_id,omitempty"`
	TaskId     *TaskID  `protobuf:"bytes,2,opt,name=task_id,json=taskId,proto3" json:"task_id,omitempty"`
	Attempt    int32    `protobuf:"varint,3,opt,name=attempt,proto3" json:"attempt,omitempty"`
	BucketUrls []string `protobuf:"bytes,4,rep,name=bucket_urls,json=bucketUrls,proto3" json:"bucket_urls,omitempty"`
}

func (m *ReportDoneRequest) Reset()         { *m = ReportDoneRequest{} }
func (m *ReportDoneRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (m *ReportDoneRequest) ProtoMessage()  {}

type ReportDoneResponse struct {
	Ack bool `protobuf:"varint,1,opt,name=ack,proto3" json:"ack,omitempty"`
}

func (m *ReportDoneResponse) Reset()         { *m = ReportDoneResponse{} }
func (m *ReportDoneResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (m *ReportDoneResponse) ProtoMessage()  {}

type ReportFailedRequest struct {
	SlaveId string  `protobuf:"bytes,1,opt,name=slave_id,json=slaveId,proto3" json:"slave_id,omitempty"`
	TaskId  *TaskID `protobuf:"bytes,2,opt,name=task_id,json=taskId,proto3" json:"task_id,omitempty"`
	Attempt int32   `protobuf:"varint,3,opt,name=attempt,proto3" json:"attempt,omitempty"`
	Reason  string  `protobuf:"bytes,4,opt,name=reason,proto3" json:"reason,omitempty"`
	// missing_input is set when the failure was a fetch 404/410 against an
	// upstream bucket rather than a mapper/reducer error: it names the
	// producer task whose output the consumer could not read, so the master
	// can invalidate and re-run that producer instead of only retrying this
	// consumer against the same stale bucket.
	MissingInput *BucketRef `protobuf:"bytes,5,opt,name=missing_input,json=missingInput,proto3" json:"missing_input,omitempty"`
}

func (m *ReportFailedRequest) Reset()         { *m = ReportFailedRequest{} }
func (m *ReportFailedRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (m *ReportFailedRequest) ProtoMessage()  {}

type ReportFailedResponse struct {
	Ack bool `protobuf:"varint,1,opt,name=ack,proto3" json:"ack,omitempty"`
}

func (m *ReportFailedResponse) Reset()         { *m = ReportFailedResponse{} }
func (m *ReportFailedResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (m *ReportFailedResponse) ProtoMessage()  {}

type HeartbeatRequest struct {
	SlaveId        string    `protobuf:"bytes,1,opt,name=slave_id,json=slaveId,proto3" json:"slave_id,omitempty"`
	RunningTaskIds []*TaskID `protobuf:"bytes,2,rep,name=running_task_ids,json=runningTaskIds,proto3" json:"running_task_ids,omitempty"`
}

func (m *HeartbeatRequest) Reset()         { *m = HeartbeatRequest{} }
func (m *HeartbeatRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (m *HeartbeatRequest) ProtoMessage()  {}

type HeartbeatResponse struct {
	Ok           bool      `protobuf:"varint,1,opt,name=ok,proto3" json:"ok,omitempty"`
	ReassignList []*TaskID `protobuf:"bytes,2,rep,name=reassign_list,json=reassignList,proto3" json:"reassign_list,omitempty"`
}

func (m *HeartbeatResponse) Reset()         { *m = HeartbeatResponse{} }
func (m *HeartbeatResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (m *HeartbeatResponse) ProtoMessage()  {}

type AssignRequest struct {
	TaskId     *TaskID `protobuf:"bytes,1,opt,name=task_id,json=taskId,proto3" json:"task_id,omitempty"`
	Attempt    int32   `protobuf:"varint,2,opt,name=attempt,proto3" json:"attempt,omitempty"`
	Generation int32   `protobuf:"varint,3,opt,name=generation,proto3" json:"generation,omitempty"`

	DatasetKind DatasetKind `protobuf:"varint,4,opt,name=dataset_kind,json=datasetKind,proto3,enum=mrs.DatasetKind" json:"dataset_kind,omitempty"`
	DatasetId   int64       `protobuf:"varint,5,opt,name=dataset_id,json=datasetId,proto3" json:"dataset_id,omitempty"`
	FanOut      int32       `protobuf:"varint,6,opt,name=fan_out,json=fanOut,proto3" json:"fan_out,omitempty"`

	Partitioner     string `protobuf:"bytes,7,opt,name=partitioner,proto3" json:"partitioner,omitempty"`
	Mapper          string `protobuf:"bytes,8,opt,name=mapper,proto3" json:"mapper,omitempty"`
	Reducer         string `protobuf:"bytes,9,opt,name=reducer,proto3" json:"reducer,omitempty"`
	Combiner        string `protobuf:"bytes,10,opt,name=combiner,proto3" json:"combiner,omitempty"`
	KeySerializer   string `protobuf:"bytes,11,opt,name=key_serializer,json=keySerializer,proto3" json:"key_serializer,omitempty"`
	ValueSerializer string `protobuf:"bytes,12,opt,name=value_serializer,json=valueSerializer,proto3" json:"value_serializer,omitempty"`

	Sources     []*BucketRef `protobuf:"bytes,13,rep,name=sources,proto3" json:"sources,omitempty"`
	SourceUrls  []string     `protobuf:"bytes,14,rep,name=source_urls,json=sourceUrls,proto3" json:"source_urls,omitempty"`
	SourceUrl     string    `protobuf:"bytes,15,opt,name=source_url,json=sourceUrl,proto3" json:"source_url,omitempty"`
	LocalRecords  []*Record `protobuf:"bytes,16,rep,name=local_records,json=localRecords,proto3" json:"local_records,omitempty"`
	SourceRaw     []bool    `protobuf:"varint,17,rep,packed,name=source_raw,json=sourceRaw,proto3" json:"source_raw,omitempty"`
}

func (m *AssignRequest) Reset()         { *m = AssignRequest{} }
func (m *AssignRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (m *AssignRequest) ProtoMessage()  {}

type AssignResponse struct {
	Accepted bool   `protobuf:"varint,1,opt,name=accepted,proto3" json:"accepted,omitempty"`
	Reason   string `protobuf:"bytes,2,opt,name=reason,proto3" json:"reason,omitempty"`
}

func (m *AssignResponse) Reset()         { *m = AssignResponse{} }
func (m *AssignResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (m *AssignResponse) ProtoMessage()  {}

type CancelRequest struct {
	TaskId *TaskID `protobuf:"bytes,1,opt,name=task_id,json=taskId,proto3" json:"task_id,omitempty"`
}

func (m *CancelRequest) Reset()         { *m = CancelRequest{} }
func (m *CancelRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CancelRequest) ProtoMessage()  {}

type CancelResponse struct {
	Ok bool `protobuf:"varint,1,opt,name=ok,proto3" json:"ok,omitempty"`
}

func (m *CancelResponse) Reset()         { *m = CancelResponse{} }
func (m *CancelResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (m *CancelResponse) ProtoMessage()  {}

type PingRequest struct{}

func (m *PingRequest) Reset()         { *m = PingRequest{} }
func (m *PingRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (m *PingRequest) ProtoMessage()  {}

type PingResponse struct {
	RunningTaskIds   []*TaskID `protobuf:"bytes,1,rep,name=running_task_ids,json=runningTaskIds,proto3" json:"running_task_ids,omitempty"`
	ScratchBytesUsed int64     `protobuf:"varint,2,opt,name=scratch_bytes_used,json=scratchBytesUsed,proto3" json:"scratch_bytes_used,omitempty"`
}

func (m *PingResponse) Reset()         { *m = PingResponse{} }
func (m *PingResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (m *PingResponse) ProtoMessage()  {}

type DropBucketRequest struct {
	TaskId *TaskID `protobuf:"bytes,1,opt,name=task_id,json=taskId,proto3" json:"task_id,omitempty"`
}

func (m *DropBucketRequest) Reset()         { *m = DropBucketRequest{} }
func (m *DropBucketRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (m *DropBucketRequest) ProtoMessage()  {}

type DropBucketResponse struct {
	Ok bool `protobuf:"varint,1,opt,name=ok,proto3" json:"ok,omitempty"`
}

func (m *DropBucketResponse) Reset()         { *m = DropBucketResponse{} }
func (m *DropBucketResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (m *DropBucketResponse) ProtoMessage()  {}

type QuitRequest struct{}

func (m *QuitRequest) Reset()         { *m = QuitRequest{} }
func (m *QuitRequest) String() string { return fmt.Sprintf("%+v", *m) }
func (m *QuitRequest) ProtoMessage()  {}

type QuitResponse struct {
	Ok bool `protobuf:"varint,1,opt,name=ok,proto3" json:"ok,omitempty"`
}

func (m *QuitResponse) Reset()         { *m = QuitResponse{} }
func (m *QuitResponse) String() string { return fmt.Sprintf("%+v", *m) }
func (m *QuitResponse) ProtoMessage()  {}
