// Package events encodes, chains and relays the session transition log.
package events

import (
	"fmt"
	"strconv"

	solana "github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mmynk/escrowd/internal/models"
)

var marshalOpts = proto.MarshalOptions{Deterministic: true}

// Encode serializes a snapshot as a protobuf Struct.
// Amount is carried as a decimal string; Struct numbers are float64.
func Encode(snap models.Snapshot) ([]byte, error) {
	fields := map[string]any{
		"session_id":           snap.SessionID.String(),
		"payer":                snap.Payer.String(),
		"merchant_id":          snap.MerchantID,
		"reference_id":         snap.ReferenceID,
		"amount":               strconv.FormatUint(snap.Amount, 10),
		"token_type":           snap.TokenType.String(),
		"custody_address":      snap.CustodyAddress.String(),
		"payer_source_address": snap.PayerSourceAddress.String(),
		"settlement_authority": snap.SettlementAuthority.String(),
		"status":               snap.Status.String(),
		"created_at":           float64(snap.CreatedAt),
		"expiry_at":            float64(snap.ExpiryAt),
		"funded_at":            optionalTime(snap.FundedAt),
		"settled_at":           optionalTime(snap.SettledAt),
		"external_payout_id":   snap.ExternalPayoutID,
	}

	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot struct: %w", err)
	}
	b, err := marshalOpts.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return b, nil
}

// Decode parses a payload written by Encode.
func Decode(payload []byte) (models.Snapshot, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(payload, &st); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	f := st.GetFields()

	var snap models.Snapshot
	var err error

	if snap.SessionID, err = uuid.Parse(f["session_id"].GetStringValue()); err != nil {
		return models.Snapshot{}, fmt.Errorf("bad session_id: %w", err)
	}
	keys := []struct {
		name string
		dst  *solana.PublicKey
	}{
		{"payer", &snap.Payer},
		{"token_type", &snap.TokenType},
		{"custody_address", &snap.CustodyAddress},
		{"payer_source_address", &snap.PayerSourceAddress},
		{"settlement_authority", &snap.SettlementAuthority},
	}
	for _, k := range keys {
		if *k.dst, err = solana.PublicKeyFromBase58(f[k.name].GetStringValue()); err != nil {
			return models.Snapshot{}, fmt.Errorf("bad %s: %w", k.name, err)
		}
	}
	if snap.Amount, err = strconv.ParseUint(f["amount"].GetStringValue(), 10, 64); err != nil {
		return models.Snapshot{}, fmt.Errorf("bad amount: %w", err)
	}
	if snap.Status, err = models.ParseStatus(f["status"].GetStringValue()); err != nil {
		return models.Snapshot{}, err
	}

	snap.MerchantID = f["merchant_id"].GetStringValue()
	snap.ReferenceID = f["reference_id"].GetStringValue()
	snap.ExternalPayoutID = f["external_payout_id"].GetStringValue()
	snap.CreatedAt = int64(f["created_at"].GetNumberValue())
	snap.ExpiryAt = int64(f["expiry_at"].GetNumberValue())
	snap.FundedAt = timeValue(f["funded_at"])
	snap.SettledAt = timeValue(f["settled_at"])

	return snap, nil
}

func optionalTime(ts *int64) any {
	if ts == nil {
		return nil
	}
	return float64(*ts)
}

func timeValue(v *structpb.Value) *int64 {
	if v == nil {
		return nil
	}
	if _, ok := v.GetKind().(*structpb.Value_NumberValue); !ok {
		return nil
	}
	ts := int64(v.GetNumberValue())
	return &ts
}
