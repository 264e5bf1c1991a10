package sui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcHandler func(params []json.RawMessage) (any, *RPCError)

func newRPCServer(t *testing.T, handlers map[string]rpcHandler) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     uint64            `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		h, ok := handlers[req.Method]
		if !ok {
			t.Fatalf("unexpected method %s", req.Method)
		}
		result, rpcErr := h(req.Params)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestCall_RPCError(t *testing.T) {
	srv := newRPCServer(t, map[string]rpcHandler{
		"sui_getObject": func(_ []json.RawMessage) (any, *RPCError) {
			return nil, &RPCError{Code: -32602, Message: "invalid params"}
		},
	})
	defer srv.Close()

	_, err := NewClient(srv.URL, srv.Client()).GetObject(context.Background(), "0x1")
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32602, rpcErr.Code)
}

func TestCall_HTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, nil).Call(context.Background(), "rpc.discover", nil, nil)
	assert.ErrorContains(t, err, "unexpected status 502")
}

func TestGetObject(t *testing.T) {
	srv := newRPCServer(t, map[string]rpcHandler{
		"sui_getObject": func(params []json.RawMessage) (any, *RPCError) {
			assert.JSONEq(t, `"0xabc"`, string(params[0]))
			return map[string]any{
				"data": map[string]any{
					"objectId": "0xabc",
					"version":  "3",
					"digest":   "d",
					"content": map[string]any{
						"dataType": "moveObject",
						"type":     "0x1::allowlist::Allowlist",
						"fields":   map[string]any{"list": []string{"0x1", "0x2"}},
					},
				},
			}, nil
		},
	})
	defer srv.Close()

	obj, err := NewClient(srv.URL, srv.Client()).GetObject(context.Background(), "0xabc")
	require.NoError(t, err)
	require.NotNil(t, obj.Data.Content)
	assert.Equal(t, "0x1::allowlist::Allowlist", obj.Data.Content.Type)
	assert.JSONEq(t, `{"list":["0x1","0x2"]}`, string(obj.Data.Content.Fields))
}

func TestGetObject_NotExists(t *testing.T) {
	srv := newRPCServer(t, map[string]rpcHandler{
		"sui_getObject": func(_ []json.RawMessage) (any, *RPCError) {
			return map[string]any{"error": map[string]any{"code": "notExists", "object_id": "0xabc"}}, nil
		},
	})
	defer srv.Close()

	_, err := NewClient(srv.URL, srv.Client()).GetObject(context.Background(), "0xabc")
	assert.ErrorContains(t, err, "notExists")
}

func TestQueryEvents(t *testing.T) {
	srv := newRPCServer(t, map[string]rpcHandler{
		"suix_queryEvents": func(params []json.RawMessage) (any, *RPCError) {
			assert.JSONEq(t, `{"MoveEventType":"0x2::document::SignatureRecorded"}`, string(params[0]))
			assert.JSONEq(t, `{"txDigest":"A","eventSeq":"0"}`, string(params[1]))
			assert.Equal(t, "25", string(params[2]))
			assert.Equal(t, "false", string(params[3]))
			return map[string]any{
				"data": []map[string]any{{
					"id":         map[string]string{"txDigest": "B", "eventSeq": "1"},
					"type":       "0x2::document::SignatureRecorded",
					"parsedJson": map[string]string{"signer": "0x9"},
				}},
				"nextCursor":  map[string]string{"txDigest": "B", "eventSeq": "1"},
				"hasNextPage": false,
			}, nil
		},
	})
	defer srv.Close()

	page, err := NewClient(srv.URL, srv.Client()).QueryEvents(context.Background(),
		"0x2::document::SignatureRecorded", &EventID{TxDigest: "A", EventSeq: "0"}, 25, false)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "B", page.Data[0].ID.TxDigest)
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, "1", page.NextCursor.EventSeq)
}

func TestGetOwnedObjects(t *testing.T) {
	srv := newRPCServer(t, map[string]rpcHandler{
		"suix_getOwnedObjects": func(params []json.RawMessage) (any, *RPCError) {
			assert.JSONEq(t, `"0xowner"`, string(params[0]))
			var q struct {
				Filter map[string]string `json:"filter"`
			}
			require.NoError(t, json.Unmarshal(params[1], &q))
			assert.Equal(t, "0x2::document::Document", q.Filter["StructType"])
			assert.Equal(t, "null", string(params[2]))
			return map[string]any{
				"data":        []map[string]any{{"data": map[string]any{"objectId": "0xd1", "version": "1", "digest": "x"}}},
				"hasNextPage": false,
			}, nil
		},
	})
	defer srv.Close()

	page, err := NewClient(srv.URL, srv.Client()).GetOwnedObjects(context.Background(), "0xowner", "0x2::document::Document", nil, 10)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "0xd1", page.Data[0].Data.ObjectID)
	assert.Nil(t, page.NextCursor)
}

func TestMoveCall(t *testing.T) {
	srv := newRPCServer(t, map[string]rpcHandler{
		"unsafe_moveCall": func(params []json.RawMessage) (any, *RPCError) {
			require.Len(t, params, 8)
			assert.JSONEq(t, `"0xsigner"`, string(params[0]))
			assert.JSONEq(t, `"allowlist"`, string(params[2]))
			assert.JSONEq(t, `"create_allowlist_entry"`, string(params[3]))
			assert.JSONEq(t, `[]`, string(params[4]))
			assert.JSONEq(t, `["contract"]`, string(params[5]))
			assert.Equal(t, "null", string(params[6]))
			assert.JSONEq(t, `"10000000"`, string(params[7]))
			return map[string]any{"txBytes": "AAEC"}, nil
		},
	})
	defer srv.Close()

	tx, err := NewClient(srv.URL, srv.Client()).MoveCall(context.Background(), MoveCallRequest{
		Signer:    "0xsigner",
		PackageID: "0xpkg",
		Module:    "allowlist",
		Function:  "create_allowlist_entry",
		Args:      []any{"contract"},
		GasBudget: 10000000,
	})
	require.NoError(t, err)
	assert.Equal(t, "AAEC", tx.TxBytes)
}

func TestMoveCall_EmptyBytes(t *testing.T) {
	srv := newRPCServer(t, map[string]rpcHandler{
		"unsafe_moveCall": func(_ []json.RawMessage) (any, *RPCError) {
			return map[string]any{}, nil
		},
	})
	defer srv.Close()

	_, err := NewClient(srv.URL, srv.Client()).MoveCall(context.Background(), MoveCallRequest{Module: "m", Function: "f"})
	assert.ErrorContains(t, err, "empty txBytes")
}

func TestExecuteTransactionBlock(t *testing.T) {
	srv := newRPCServer(t, map[string]rpcHandler{
		"sui_executeTransactionBlock": func(params []json.RawMessage) (any, *RPCError) {
			assert.JSONEq(t, `"AAEC"`, string(params[0]))
			assert.JSONEq(t, `["sig"]`, string(params[1]))
			assert.JSONEq(t, `{"showEffects":true,"showEvents":true,"showObjectChanges":true}`, string(params[2]))
			return map[string]any{
				"digest":  "D1",
				"effects": map[string]any{"status": map[string]string{"status": "success"}},
			}, nil
		},
	})
	defer srv.Close()

	resp, err := NewClient(srv.URL, srv.Client()).ExecuteTransactionBlock(context.Background(), "AAEC", []string{"sig"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "D1", resp.Digest)
	assert.True(t, resp.Succeeded())
}

func TestFindCreated(t *testing.T) {
	changes := []ObjectChange{
		{Type: "mutated", ObjectID: "0xgas", Owner: json.RawMessage(`{"AddressOwner":"0xme"}`)},
		{Type: "created", ObjectID: "0xcap", Owner: json.RawMessage(`{"AddressOwner":"0xme"}`)},
		{Type: "created", ObjectID: "0xlist", Owner: json.RawMessage(`{"Shared":{"initial_shared_version":7}}`)},
		{Type: "created", ObjectID: "0xpkg", Owner: json.RawMessage(`"Immutable"`)},
	}

	shared, ok := FindCreated(changes, "Shared")
	require.True(t, ok)
	assert.Equal(t, "0xlist", shared.ObjectID)

	owned, ok := FindCreated(changes, "AddressOwner")
	require.True(t, ok)
	assert.Equal(t, "0xcap", owned.ObjectID)
	assert.Equal(t, "0xme", owned.OwnerAddress())

	immutable, ok := FindCreated(changes, "Immutable")
	require.True(t, ok)
	assert.Equal(t, "0xpkg", immutable.ObjectID)

	_, ok = FindCreated(changes, "ObjectOwner")
	assert.False(t, ok)
}

func TestWaitForTransaction(t *testing.T) {
	var calls atomic.Int32
	srv := newRPCServer(t, map[string]rpcHandler{
		"sui_getTransactionBlock": func(_ []json.RawMessage) (any, *RPCError) {
			if calls.Add(1) < 3 {
				return nil, &RPCError{Code: -32602, Message: "Could not find the referenced transaction"}
			}
			return map[string]any{
				"digest":  "D1",
				"effects": map[string]any{"status": map[string]string{"status": "success"}},
			}, nil
		},
	})
	defer srv.Close()

	resp, err := NewClient(srv.URL, srv.Client()).WaitForTransaction(context.Background(), "D1", 10*time.Millisecond, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "D1", resp.Digest)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWaitForTransaction_Failed(t *testing.T) {
	srv := newRPCServer(t, map[string]rpcHandler{
		"sui_getTransactionBlock": func(_ []json.RawMessage) (any, *RPCError) {
			return map[string]any{
				"digest":  "D1",
				"effects": map[string]any{"status": map[string]string{"status": "failure", "error": "MoveAbort"}},
			}, nil
		},
	})
	defer srv.Close()

	_, err := NewClient(srv.URL, srv.Client()).WaitForTransaction(context.Background(), "D1", 10*time.Millisecond, time.Second)
	assert.ErrorIs(t, err, ErrTxFailed)
	assert.ErrorContains(t, err, "MoveAbort")
}

func TestWaitForTransaction_Timeout(t *testing.T) {
	srv := newRPCServer(t, map[string]rpcHandler{
		"sui_getTransactionBlock": func(_ []json.RawMessage) (any, *RPCError) {
			return nil, &RPCError{Code: -32602, Message: "not found"}
		},
	})
	defer srv.Close()

	_, err := NewClient(srv.URL, srv.Client()).WaitForTransaction(context.Background(), "D1", 10*time.Millisecond, 50*time.Millisecond)
	assert.ErrorIs(t, err, ErrTxTimeout)
}

func TestExplorerURL(t *testing.T) {
	assert.Equal(t, "https://suiscan.xyz/testnet/tx/D1", ExplorerURL("https://suiscan.xyz/testnet/tx/", "D1"))
}
