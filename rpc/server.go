// Package rpc exposes credential validation over gRPC.
package rpc

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/zkcred/cidutil"
	"xdao.co/zkcred/credential"
	"xdao.co/zkcred/journal"
)

// CIDHeader carries the journal CID of a committed output.
const CIDHeader = "x-zkcred-cid"

// Server runs Validator.Run for each request.
//
// Journal and Metrics are optional. With a journal, every accepted output is
// committed before it is returned.
type Server struct {
	UnimplementedValidatorServer
	Validator credential.Validator
	Journal   journal.Journal
	Metrics   *Metrics

	// MaxRecordBytes rejects larger records before decoding when non-zero.
	MaxRecordBytes int
}

func (s *Server) Validate(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	record := in.GetValue()

	start := time.Now()
	out, err := s.run(record)
	s.Metrics.observeValidation(err, time.Since(start))
	if err != nil {
		return nil, mapErr(err)
	}

	if s.Journal != nil {
		id, err := s.Journal.Commit(out)
		s.Metrics.observeCommit(err)
		if err != nil {
			return nil, mapErr(err)
		}
		if err := grpc.SetHeader(ctx, metadata.Pairs(CIDHeader, id.String())); err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
	}
	return wrapperspb.Bytes(out), nil
}

func (s *Server) run(record []byte) ([]byte, error) {
	if s.MaxRecordBytes > 0 && len(record) > s.MaxRecordBytes {
		return nil, credential.NewError(credential.RuleRecordOversized,
			fmt.Sprintf("record is %d bytes, limit %d", len(record), s.MaxRecordBytes))
	}
	return s.Validator.Run(record)
}

func (s *Server) Commitment(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	if s.Journal == nil {
		return nil, status.Error(codes.FailedPrecondition, "no journal configured")
	}
	id, err := cidutil.Parse(in.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, journal.ErrInvalidCID.Error())
	}
	b, err := s.Journal.Get(id)
	if err != nil {
		return nil, mapErr(err)
	}
	if !cidutil.Matches(id, b) {
		return nil, status.Error(codes.DataLoss, journal.ErrCIDMismatch.Error())
	}
	return wrapperspb.Bytes(b), nil
}
