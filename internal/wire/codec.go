package wire

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/tradecopy-relay/internal/domain"
)

// Decoded is the dispatcher's unit of work: a Kind plus the strongly-typed
// payload for it. Exactly one of the pointer fields is non-nil, matching
// Kind.
type Decoded struct {
	Kind             Kind
	Heartbeat        *HeartbeatMsg
	Register         *RegisterMsg
	Unregister       *UnregisterMsg
	RequestConfig    *RequestConfigMsg
	PositionSnapshot *PositionSnapshotMsg
	SyncRequest      *SyncRequestMsg
	TradeSignal      *TradeSignalMsg
}

// discriminateMap inspects a decoded MessagePack map (without committing to a
// concrete Go type) and returns which Kind it is, per spec.md §4.1: a
// message_type string field selects the kind directly; otherwise an
// action field means TradeSignal.
func discriminateMap(m map[string]interface{}) Kind {
	if mt, ok := m["message_type"].(string); ok {
		switch Kind(mt) {
		case KindHeartbeat, KindRegister, KindUnregister, KindRequestConfig, KindPositionSnapshot, KindSyncRequest:
			return Kind(mt)
		}
		return KindUnknown
	}
	if _, ok := m["action"]; ok {
		return KindTradeSignal
	}
	return KindUnknown
}

// Decode decodes one raw frame into a Decoded message. Malformed bytes
// return domain.ErrMalformedFrame; an unrecognized shape returns
// domain.ErrUnknownMessage. Both are recoverable per spec.md §7: the
// caller logs and drops the frame.
func Decode(raw []byte) (Decoded, error) {
	var generic map[string]interface{}
	if err := msgpack.Unmarshal(raw, &generic); err != nil {
		return Decoded{}, fmt.Errorf("%w: %v", domain.ErrMalformedFrame, err)
	}

	kind := discriminateMap(generic)
	switch kind {
	case KindHeartbeat:
		var m HeartbeatMsg
		if err := msgpack.Unmarshal(raw, &m); err != nil {
			// Permissive second pass: older clients may be missing fields.
			var p PermissiveHeartbeat
			if perr := msgpack.Unmarshal(raw, &p); perr != nil || p.AccountID == "" {
				return Decoded{}, fmt.Errorf("%w: %v", domain.ErrMalformedFrame, err)
			}
			return Decoded{Kind: KindHeartbeat, Heartbeat: &HeartbeatMsg{MessageType: string(KindHeartbeat), AccountID: p.AccountID}}, nil
		}
		return Decoded{Kind: KindHeartbeat, Heartbeat: &m}, nil

	case KindRegister:
		var m RegisterMsg
		if err := msgpack.Unmarshal(raw, &m); err != nil {
			return Decoded{}, fmt.Errorf("%w: %v", domain.ErrMalformedFrame, err)
		}
		return Decoded{Kind: KindRegister, Register: &m}, nil

	case KindUnregister:
		var m UnregisterMsg
		if err := msgpack.Unmarshal(raw, &m); err != nil {
			return Decoded{}, fmt.Errorf("%w: %v", domain.ErrMalformedFrame, err)
		}
		return Decoded{Kind: KindUnregister, Unregister: &m}, nil

	case KindRequestConfig:
		var m RequestConfigMsg
		if err := msgpack.Unmarshal(raw, &m); err != nil {
			return Decoded{}, fmt.Errorf("%w: %v", domain.ErrMalformedFrame, err)
		}
		return Decoded{Kind: KindRequestConfig, RequestConfig: &m}, nil

	case KindPositionSnapshot:
		var m PositionSnapshotMsg
		if err := msgpack.Unmarshal(raw, &m); err != nil {
			return Decoded{}, fmt.Errorf("%w: %v", domain.ErrMalformedFrame, err)
		}
		return Decoded{Kind: KindPositionSnapshot, PositionSnapshot: &m}, nil

	case KindSyncRequest:
		var m SyncRequestMsg
		if err := msgpack.Unmarshal(raw, &m); err != nil {
			return Decoded{}, fmt.Errorf("%w: %v", domain.ErrMalformedFrame, err)
		}
		return Decoded{Kind: KindSyncRequest, SyncRequest: &m}, nil

	case KindTradeSignal:
		var m TradeSignalMsg
		if err := msgpack.Unmarshal(raw, &m); err != nil {
			return Decoded{}, fmt.Errorf("%w: %v", domain.ErrMalformedFrame, err)
		}
		return Decoded{Kind: KindTradeSignal, TradeSignal: &m}, nil

	default:
		return Decoded{}, domain.ErrUnknownMessage
	}
}

// Encode serializes any of the outbound message types (MasterConfigMsg,
// SlaveConfigMsg, TradeSignalMsg, GlobalLogSettingsMsg) to MessagePack bytes.
func Encode(v interface{}) ([]byte, error) {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return b, nil
}
