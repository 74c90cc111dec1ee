package realtime

import "encoding/json"

// MessageSyncTopic is the subscription topic that carries patch batches for
// the direct inbox. Frames on other topics pass through as rawRealtime only.
const MessageSyncTopic = "/ig_message_sync"

// Patch operation kinds used by the sync feed.
const (
	OpAdd     = "add"
	OpReplace = "replace"
	OpRemove  = "remove"
)

// syncEvent is one entry of a realtime message batch.
type syncEvent struct {
	Event string    `json:"event"`
	SeqID int64     `json:"seq_id"`
	Data  []patchOp `json:"data"`
}

// patchOp is a single path-keyed operation. Value is itself a JSON-encoded
// string and needs a nested decode against the shape the path implies.
type patchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value string `json:"value"`
}

func decodeSyncBatch(raw []byte) ([]syncEvent, error) {
	var batch []syncEvent
	if err := json.Unmarshal(raw, &batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// decodeItemID extracts a message id from a remove-operation value, which
// arrives either as a bare id or as a JSON-encoded string.
func decodeItemID(value string) string {
	var id string
	if err := json.Unmarshal([]byte(value), &id); err == nil {
		return id
	}
	return value
}
