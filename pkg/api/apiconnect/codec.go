// Package apiconnect wires the ledger.v1 services to Connect: procedure
// names, handler and client constructors, and the JSON codec their
// messages travel in.
package apiconnect

import "encoding/json"

// Codec marshals messages as plain JSON. It registers under the "json"
// name, so Connect requests use Content-Type application/json.
type Codec struct{}

// Name implements connect.Codec.
func (Codec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (Codec) Marshal(msg any) ([]byte, error) { return json.Marshal(msg) }

// Unmarshal implements connect.Codec.
func (Codec) Unmarshal(data []byte, msg any) error { return json.Unmarshal(data, msg) }
