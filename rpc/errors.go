package rpc

import (
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"xdao.co/zkcred/credential"
	"xdao.co/zkcred/journal"
)

// mapErr converts pipeline and journal errors to gRPC status errors.
// Structured credential errors travel as "<RuleID>: <message>".
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var cerr *credential.Error
	if errors.As(err, &cerr) {
		msg := cerr.RuleID + ": " + cerr.Message
		switch {
		case cerr.Kind == credential.KindInternal:
			return status.Error(codes.Internal, msg)
		case cerr.Code == credential.CodeMalformedRecord:
			return status.Error(codes.InvalidArgument, msg)
		default:
			return status.Error(codes.FailedPrecondition, msg)
		}
	}
	switch {
	case errors.Is(err, journal.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, journal.ErrInvalidCID):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, journal.ErrCIDMismatch), errors.Is(err, journal.ErrImmutable):
		return status.Error(codes.DataLoss, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// mapRPC is the client-side inverse of mapErr.
func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	if ruleID, msg, found := strings.Cut(st.Message(), ": "); found {
		if _, known := credential.LookupRule(ruleID); known {
			return credential.WrapError(ruleID, msg, err)
		}
	}

	switch st.Message() {
	case journal.ErrNotFound.Error():
		return journal.ErrNotFound
	case journal.ErrInvalidCID.Error():
		return journal.ErrInvalidCID
	case journal.ErrCIDMismatch.Error():
		return journal.ErrCIDMismatch
	case journal.ErrImmutable.Error():
		return journal.ErrImmutable
	}
	switch st.Code() {
	case codes.NotFound:
		return journal.ErrNotFound
	case codes.DataLoss:
		return journal.ErrCIDMismatch
	default:
		return err
	}
}
