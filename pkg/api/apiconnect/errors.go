package apiconnect

import (
	"errors"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"
)

// NewError builds a Connect error whose detail carries kind, the
// machine-readable error category clients branch on.
func NewError(code connect.Code, err error, kind string) *connect.Error {
	connectErr := connect.NewError(code, err)
	if st, serr := structpb.NewStruct(map[string]any{"kind": kind}); serr == nil {
		if detail, derr := connect.NewErrorDetail(st); derr == nil {
			connectErr.AddDetail(detail)
		}
	}
	return connectErr
}

// ErrorKind returns the kind detail of err, or "" if it carries none.
func ErrorKind(err error) string {
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		return ""
	}
	for _, detail := range connectErr.Details() {
		msg, verr := detail.Value()
		if verr != nil {
			continue
		}
		if st, ok := msg.(*structpb.Struct); ok {
			return st.GetFields()["kind"].GetStringValue()
		}
	}
	return ""
}
