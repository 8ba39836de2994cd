package protocol

// ============================================================================
// Fetch (API Key 1)
// Supported versions: 0-3
// ============================================================================

// ----------------------------------------------------------------------------
// Request
// ----------------------------------------------------------------------------

type FetchRequest struct {
	ReplicaID int32
	MaxWaitMs int32
	MinBytes  int32
	MaxBytes  int32 // v3+
	Topics    []FetchRequestTopic
}

type FetchRequestTopic struct {
	Name       string
	Partitions []FetchRequestPartition
}

type FetchRequestPartition struct {
	Index       int32
	FetchOffset int64
	MaxBytes    int32
}

// Request Readers

func (r *FetchRequest) readReplicaID(d *Decoder) {
	r.ReplicaID, _ = d.ReadInt32()
}

func (r *FetchRequest) readWaitAndBytes(d *Decoder) {
	r.MaxWaitMs, _ = d.ReadInt32()
	r.MinBytes, _ = d.ReadInt32()
}

func (r *FetchRequest) readMaxBytes(d *Decoder) {
	r.MaxBytes, _ = d.ReadInt32()
}

func (r *FetchRequest) readTopics(d *Decoder, version int16) {
	count, _ := d.ReadInt32()
	r.Topics = make([]FetchRequestTopic, count)

	for i := range r.Topics {
		r.Topics[i].readFrom(d, version)
	}
}

func (t *FetchRequestTopic) readFrom(d *Decoder, version int16) {
	t.Name, _ = d.ReadString()

	count, _ := d.ReadInt32()
	t.Partitions = make([]FetchRequestPartition, count)

	for i := range t.Partitions {
		t.Partitions[i].readFrom(d, version)
	}
}

func (p *FetchRequestPartition) readFrom(d *Decoder, version int16) {
	p.Index, _ = d.ReadInt32()
	p.FetchOffset, _ = d.ReadInt64()
	p.MaxBytes, _ = d.ReadInt32()
}

// Decode - the recipe

func DecodeFetchRequest(d *Decoder, v int16) (*FetchRequest, error) {
	r := &FetchRequest{}

	r.readReplicaID(d)    // v0+
	r.readWaitAndBytes(d) // v0+
	if v >= 3 {
		r.readMaxBytes(d) // v3+
	}
	r.readTopics(d, v) // v0+

	return r, nil
}

// ----------------------------------------------------------------------------
// Response
// ----------------------------------------------------------------------------

type FetchResponse struct {
	ThrottleTimeMs int32 // v1+
	Topics         []FetchResponseTopic
}

type FetchResponseTopic struct {
	Name       string
	Partitions []FetchResponsePartition
}

type FetchResponsePartition struct {
	Index         int32
	ErrorCode     int16
	HighWatermark int64
	Records       []byte
}

// Response Writers

func (r *FetchResponse) writeThrottleTime(e *Encoder) {
	e.WriteInt32(r.ThrottleTimeMs)
}

func (r *FetchResponse) writeTopics(e *Encoder, version int16) {
	e.WriteArrayLen(len(r.Topics))

	for _, t := range r.Topics {
		t.writeTo(e, version)
	}
}

func (t *FetchResponseTopic) writeTo(e *Encoder, version int16) {
	e.WriteString(t.Name)
	e.WriteArrayLen(len(t.Partitions))

	for _, p := range t.Partitions {
		p.writeTo(e, version)
	}
}

func (p *FetchResponsePartition) writeTo(e *Encoder, version int16) {
	e.WriteInt32(p.Index)
	e.WriteInt16(p.ErrorCode)
	e.WriteInt64(p.HighWatermark)
	e.WriteBytes(p.Records) // v0+
}

// Encode - the recipe

func EncodeFetchResponse(e *Encoder, v int16, r *FetchResponse) {
	if v >= 1 {
		r.writeThrottleTime(e) // v1+
	}
	r.writeTopics(e, v) // v0+
}
