// Package relay builds and parses the JSON payloads exchanged with a
// bundle relay. Transport, signing, and retries live in the external
// network collaborator; this package only shapes bytes, so the consumer
// thread can prepare a submission without leaving the process.
package relay

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/sugawarayuuta/sonnet"

	"mevcore/keccak"
	"mevcore/types"
)

// ErrNoTransactions reports a bundle with nothing to submit.
var ErrNoTransactions = errors.New("relay: bundle has no transactions")

// rpcRequest is the eth_sendBundle JSON-RPC envelope.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []types.Bundle `json:"params"`
}

// rpcResponse covers the two relay answer shapes we care about.
type rpcResponse struct {
	Result struct {
		BundleHash string `json:"bundleHash"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// BuildSendBundleBody marshals an eth_sendBundle request for the given
// bundle. The relay collaborator signs and posts the returned bytes.
func BuildSendBundleBody(id uint64, bundle types.Bundle) ([]byte, error) {
	if len(bundle.Txs) == 0 {
		return nil, ErrNoTransactions
	}
	return sonnet.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  "eth_sendBundle",
		Params:  []types.Bundle{bundle},
	})
}

// ParseSendBundleResponse extracts the relay-assigned bundle hash, or the
// relay's error as a Go error.
func ParseSendBundleResponse(body []byte) (string, error) {
	var resp rpcResponse
	if err := sonnet.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("relay: bad response body: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("relay: rpc error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	return resp.Result.BundleHash, nil
}

// WrapPayload hex-encodes one wire-ready transaction payload into a
// single-transaction bundle targeting blockNumber.
func WrapPayload(payload []byte, blockNumber uint64) types.Bundle {
	return types.Bundle{
		Txs:         []string{"0x" + hex.EncodeToString(payload)},
		BlockNumber: fmt.Sprintf("0x%x", blockNumber),
	}
}

// Fingerprint hashes the concatenated raw transaction payloads of a
// bundle, giving a stable identity for journaling and dedup before the
// relay assigns its own hash.
func Fingerprint(rawTxs [][]byte) [32]byte {
	total := 0
	for _, tx := range rawTxs {
		total += len(tx)
	}
	joined := make([]byte, 0, total)
	for _, tx := range rawTxs {
		joined = append(joined, tx...)
	}
	return keccak.Sum256(joined)
}
