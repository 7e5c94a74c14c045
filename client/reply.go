package client

import (
	"encoding/json"
	"fmt"

	"github.com/buger/jsonparser"

	"github.com/felixgeelhaar/rpc-go/protocol"
)

// classify turns a reply body into a Response. body must already be valid
// JSON. Members are matched by exact key, and presence is read from the raw
// members so that "result": null counts as a result. A reply carrying an
// error member yields that error, unwrapped, as the second return value.
func classify(body []byte) (*protocol.Response, error) {
	if kindOf(body) != jsonparser.Object {
		return nil, fmt.Errorf("%w: reply is not an object", ErrSpecViolation)
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(body, &members); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSpecViolation, err)
	}

	reply := &protocol.Response{ID: members["id"]}
	if raw, ok := members["jsonrpc"]; ok {
		if err := json.Unmarshal(raw, &reply.JSONRPC); err != nil {
			return nil, fmt.Errorf("%w: jsonrpc member: %w", ErrSpecViolation, err)
		}
	}

	if raw, ok := members["error"]; ok {
		if typ := kindOf(raw); typ != jsonparser.Object {
			return nil, fmt.Errorf("%w: error member is %s, not an object", ErrSpecViolation, typ)
		}
		var rpcErr protocol.Error
		if err := json.Unmarshal(raw, &rpcErr); err != nil {
			return nil, fmt.Errorf("%w: error member: %w", ErrSpecViolation, err)
		}
		reply.Error = &rpcErr
		return reply, reply.Error
	}

	if raw, ok := members["result"]; ok {
		reply.Result = raw
		if len(reply.Result) == 0 {
			reply.Result = json.RawMessage("null")
		}
		return reply, nil
	}

	return nil, ErrSpecViolation
}

// kindOf reports the JSON type of a single value.
func kindOf(value []byte) jsonparser.ValueType {
	_, typ, _, err := jsonparser.Get(value)
	if err != nil {
		return jsonparser.Unknown
	}
	return typ
}

// verifyID checks that a reply answers the request with id sent. Error
// replies may carry a null id when the server could not read the request id.
func verifyID(sent json.RawMessage, reply *protocol.Response) error {
	if reply.Error != nil && (len(reply.ID) == 0 || protocol.SameID(reply.ID, protocol.NullID())) {
		return nil
	}
	if !protocol.SameID(sent, reply.ID) {
		return fmt.Errorf("%w: reply id %s does not match request id %s", ErrSpecViolation, printableID(reply.ID), sent)
	}
	return nil
}

func printableID(id json.RawMessage) string {
	if len(id) == 0 {
		return "<absent>"
	}
	return string(id)
}
